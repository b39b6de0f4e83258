package auth

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/giftbay/giftbay-api/internal/domain/notification"
	"github.com/giftbay/giftbay-api/internal/domain/user"
	"github.com/giftbay/giftbay-api/internal/domain/wallet"
	"github.com/giftbay/giftbay-api/internal/pkg/codes"
	"github.com/giftbay/giftbay-api/internal/pkg/jwt"
	"github.com/giftbay/giftbay-api/internal/pkg/password"
)

const resetCodeTTL = 15 * time.Minute

// Mailer sends transactional mail; satisfied by email.Service. Nil
// disables outbound mail (dev).
type Mailer interface {
	SendWelcome(to, name string)
	SendWelcomeWithBonus(to, name string, bonusKobo int64)
	SendResetCode(to, name, code string)
}

// Notifier is the best-effort notification sink; satisfied by
// notification.Service.
type Notifier interface {
	Emit(userID uuid.UUID, kind notification.Kind, message string, amount int64, referenceID uuid.UUID, link string)
}

// RefreshTokenStore persists refresh token records; satisfied by
// RefreshTokenRepository.
type RefreshTokenStore interface {
	Create(ctx context.Context, rec *RefreshTokenRecord) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*RefreshTokenRecord, error)
	MarkUsed(ctx context.Context, tokenHash string) error
	Revoke(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID uuid.UUID) error
}

// Service handles authentication business logic
type Service struct {
	userRepo    user.Repository
	jwtService  *jwt.Service
	refreshRepo RefreshTokenStore
	resetCodes  codes.Store
	wallets     *wallet.Service
	mailer      Mailer
	notifier    Notifier

	// signupBonusKobo is credited to every new wallet; 0 disables it.
	signupBonusKobo int64
}

// NewService creates auth service
func NewService(
	userRepo user.Repository,
	jwtService *jwt.Service,
	refreshRepo RefreshTokenStore,
	resetCodes codes.Store,
	wallets *wallet.Service,
	mailer Mailer,
	notifier Notifier,
	signupBonusKobo int64,
) *Service {
	return &Service{
		userRepo:        userRepo,
		jwtService:      jwtService,
		refreshRepo:     refreshRepo,
		resetCodes:      resetCodes,
		wallets:         wallets,
		mailer:          mailer,
		notifier:        notifier,
		signupBonusKobo: signupBonusKobo,
	}
}

// Register creates a new account and its wallet, credits the signup
// bonus if one is configured, and returns a token pair.
func (s *Service) Register(ctx context.Context, req *RegisterRequest, userAgent, ip string) (*AuthResponse, error) {
	req.Email = normalizeEmail(req.Email)

	existing, _ := s.userRepo.GetByEmail(ctx, req.Email)
	if existing != nil {
		return nil, ErrEmailAlreadyExists
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	u := &user.User{
		ID:           uuid.New(),
		Email:        req.Email,
		PasswordHash: hash,
		FullName:     req.FullName,
		Phone:        sql.NullString{String: req.Phone, Valid: req.Phone != ""},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, u); err != nil {
		if errors.Is(err, user.ErrEmailAlreadyExists) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, err
	}

	s.grantSignupBonus(ctx, u)

	if s.mailer != nil {
		if s.signupBonusKobo > 0 {
			s.mailer.SendWelcomeWithBonus(u.Email, u.FullName, s.signupBonusKobo)
		} else {
			s.mailer.SendWelcome(u.Email, u.FullName)
		}
	}

	log.Info().Str("user_id", u.ID.String()).Msg("user registered")

	return s.generateTokens(ctx, u, userAgent, ip)
}

// grantSignupBonus credits the welcome amount. A failed bonus is logged
// and dropped; registration never fails because of it.
func (s *Service) grantSignupBonus(ctx context.Context, u *user.User) {
	if s.signupBonusKobo <= 0 {
		return
	}
	_, err := s.wallets.ApplyTransaction(ctx, u.ID, s.signupBonusKobo, wallet.TransactionTypeCredit,
		"Welcome bonus",
		wallet.Reference{Kind: wallet.RefUser, ID: u.ID},
		wallet.StatusCompleted)
	if err != nil {
		log.Error().Err(err).Str("user_id", u.ID.String()).Msg("signup bonus credit failed")
		return
	}
	if s.notifier != nil {
		s.notifier.Emit(u.ID, notification.KindSignupBonus,
			"Welcome! ₦"+wallet.FormatNaira(s.signupBonusKobo)+" was added to your wallet", s.signupBonusKobo, u.ID, "/wallet")
	}
}

// Login authenticates and returns a token pair.
func (s *Service) Login(ctx context.Context, req *LoginRequest, userAgent, ip string) (*AuthResponse, error) {
	req.Email = normalizeEmail(req.Email)

	u, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if u == nil || !password.Verify(req.Password, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	if u.IsBanned {
		return nil, ErrAccountBanned
	}

	if err := s.userRepo.UpdateLastLogin(ctx, u.ID, ip); err != nil {
		log.Warn().Err(err).Str("user_id", u.ID.String()).Msg("last login update failed")
	}

	return s.generateTokens(ctx, u, userAgent, ip)
}

// Refresh rotates a refresh token: the presented token is consumed and
// a fresh pair is issued. A reused or revoked token is rejected.
func (s *Service) Refresh(ctx context.Context, refreshToken, userAgent, ip string) (*AuthResponse, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	rec, err := s.refreshRepo.GetByTokenHash(ctx, jwt.HashRefreshToken(refreshToken))
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}
	if rec.UsedAt.Valid || rec.RevokedAt.Valid || time.Now().After(rec.ExpiresAt) {
		return nil, ErrInvalidRefreshToken
	}

	u, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrInvalidRefreshToken
	}
	if u.IsBanned {
		return nil, ErrAccountBanned
	}

	if err := s.refreshRepo.MarkUsed(ctx, rec.TokenHash); err != nil {
		return nil, err
	}

	return s.generateTokens(ctx, u, userAgent, ip)
}

// Logout revokes one refresh token.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	return s.refreshRepo.Revoke(ctx, jwt.HashRefreshToken(refreshToken))
}

// ForgotPassword issues a short-lived reset code. Always succeeds from
// the caller's perspective so the endpoint cannot be used to probe for
// registered emails.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)

	u, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if u == nil {
		return nil
	}

	code, err := generateResetCode()
	if err != nil {
		return err
	}
	if err := s.resetCodes.Put(ctx, resetKey(email), code, resetCodeTTL); err != nil {
		return err
	}

	if s.mailer != nil {
		s.mailer.SendResetCode(u.Email, u.FullName, code)
	} else {
		log.Info().Str("email", email).Str("code", code).Msg("password reset code issued")
	}
	return nil
}

// ResetPassword consumes a reset code and sets the new password,
// revoking every active session.
func (s *Service) ResetPassword(ctx context.Context, req *ResetPasswordRequest) error {
	email := normalizeEmail(req.Email)

	stored, err := s.resetCodes.Get(ctx, resetKey(email))
	if err != nil || stored != req.Code {
		return ErrInvalidResetCode
	}

	u, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if u == nil {
		return ErrInvalidResetCode
	}

	hash, err := password.Hash(req.NewPassword)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(ctx, u.ID, hash); err != nil {
		return err
	}

	_ = s.resetCodes.Invalidate(ctx, resetKey(email))
	if err := s.refreshRepo.RevokeAllForUser(ctx, u.ID); err != nil {
		log.Warn().Err(err).Str("user_id", u.ID.String()).Msg("session revocation failed after password reset")
	}

	log.Info().Str("user_id", u.ID.String()).Msg("password reset")
	return nil
}

// ChangePassword verifies the current password before setting the new one.
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, req *ChangePasswordRequest) error {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if u == nil {
		return user.ErrUserNotFound
	}
	if !password.Verify(req.CurrentPassword, u.PasswordHash) {
		return ErrInvalidCredentials
	}

	hash, err := password.Hash(req.NewPassword)
	if err != nil {
		return err
	}
	return s.userRepo.UpdatePassword(ctx, userID, hash)
}

func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*user.Public, error) {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, user.ErrUserNotFound
	}
	return u.ToPublic(), nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, req *UpdateProfileRequest) (*user.Public, error) {
	if err := s.userRepo.UpdateProfile(ctx, userID, req.FullName, req.Phone); err != nil {
		return nil, err
	}
	return s.GetProfile(ctx, userID)
}

func (s *Service) generateTokens(ctx context.Context, u *user.User, userAgent, ip string) (*AuthResponse, error) {
	accessToken, err := s.jwtService.GenerateAccessToken(u.ID, u.IsAdmin)
	if err != nil {
		return nil, err
	}

	refreshToken, jti, expiresAt, err := s.jwtService.GenerateRefreshToken(u.ID)
	if err != nil {
		return nil, err
	}

	rec := &RefreshTokenRecord{
		ID:        uuid.New(),
		UserID:    u.ID,
		TokenHash: jwt.HashRefreshToken(refreshToken),
		JTI:       jti,
		ExpiresAt: expiresAt,
		UserAgent: userAgent,
		IP:        ip,
	}
	if err := s.refreshRepo.Create(ctx, rec); err != nil {
		return nil, err
	}

	return &AuthResponse{
		User:         u.ToPublic(),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func resetKey(email string) string {
	return "pwreset:" + email
}

// generateResetCode returns a 6-digit numeric code.
func generateResetCode() (string, error) {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	n := uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
	return fmt.Sprintf("%06d", n%1000000), nil
}
