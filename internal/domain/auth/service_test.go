package auth_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/giftbay/giftbay-api/internal/domain/auth"
	"github.com/giftbay/giftbay-api/internal/domain/user"
	"github.com/giftbay/giftbay-api/internal/domain/wallet"
	"github.com/giftbay/giftbay-api/internal/pkg/codes"
	"github.com/giftbay/giftbay-api/internal/pkg/jwt"
)

type memUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*user.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[uuid.UUID]*user.User{}}
}

func (r *memUserRepo) Create(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return user.ErrEmailAlreadyExists
		}
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) List(_ context.Context, _ string, _, _ int) ([]*user.User, error) {
	return nil, nil
}

func (r *memUserRepo) Count(_ context.Context) (int, error) { return len(r.users), nil }

func (r *memUserRepo) UpdateProfile(_ context.Context, id uuid.UUID, fullName, phone string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.FullName = fullName
	}
	return nil
}

func (r *memUserRepo) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.PasswordHash = hash
	}
	return nil
}

func (r *memUserRepo) SetBanned(_ context.Context, id uuid.UUID, banned bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.IsBanned = banned
	}
	return nil
}

func (r *memUserRepo) UpdateLastLogin(_ context.Context, _ uuid.UUID, _ string) error { return nil }

type memRefreshStore struct {
	mu   sync.Mutex
	recs map[string]*auth.RefreshTokenRecord
}

func newMemRefreshStore() *memRefreshStore {
	return &memRefreshStore{recs: map[string]*auth.RefreshTokenRecord{}}
}

func (s *memRefreshStore) Create(_ context.Context, rec *auth.RefreshTokenRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *rec
	s.recs[rec.TokenHash] = &cp
	return nil
}

func (s *memRefreshStore) GetByTokenHash(_ context.Context, hash string) (*auth.RefreshTokenRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recs[hash]
	if !ok {
		return nil, errors.New("not found")
	}
	cp := *rec
	return &cp, nil
}

func (s *memRefreshStore) MarkUsed(_ context.Context, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.recs[hash]; ok {
		rec.UsedAt.Time = time.Now()
		rec.UsedAt.Valid = true
	}
	return nil
}

func (s *memRefreshStore) Revoke(_ context.Context, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.recs[hash]; ok {
		rec.RevokedAt.Time = time.Now()
		rec.RevokedAt.Valid = true
	}
	return nil
}

func (s *memRefreshStore) RevokeAllForUser(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.recs {
		if rec.UserID == userID {
			rec.RevokedAt.Time = time.Now()
			rec.RevokedAt.Valid = true
		}
	}
	return nil
}

type captureMailer struct {
	mu        sync.Mutex
	welcomes  int
	bonuses   int
	lastCode  string
	lastEmail string
}

func (m *captureMailer) SendWelcome(_, _ string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.welcomes++
}

func (m *captureMailer) SendWelcomeWithBonus(_, _ string, _ int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bonuses++
}

func (m *captureMailer) SendResetCode(to, _, code string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastEmail = to
	m.lastCode = code
}

type testEnv struct {
	svc     *auth.Service
	users   *memUserRepo
	wallets *wallet.Service
	mailer  *captureMailer
}

func newTestEnv(t *testing.T, bonusKobo int64) *testEnv {
	t.Helper()
	users := newMemUserRepo()
	walletSvc := wallet.NewService(wallet.NewMemoryStore(), nil, nil, 1000)
	mailer := &captureMailer{}
	jwtSvc := jwt.NewService("test-secret", 15*time.Minute, 7*24*time.Hour)
	svc := auth.NewService(users, jwtSvc, newMemRefreshStore(), codes.NewMemoryStore(),
		walletSvc, mailer, nil, bonusKobo)
	return &testEnv{svc: svc, users: users, wallets: walletSvc, mailer: mailer}
}

func register(t *testing.T, env *testEnv, email string) *auth.AuthResponse {
	t.Helper()
	resp, err := env.svc.Register(context.Background(), &auth.RegisterRequest{
		Email:    email,
		Password: "correct-horse-battery",
		FullName: "Ngozi Eze",
	}, "test-agent", "127.0.0.1")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	return resp
}

func TestRegisterGrantsSignupBonus(t *testing.T) {
	env := newTestEnv(t, 50000)

	resp := register(t, env, "ngozi@example.com")
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatal("expected a token pair")
	}

	view, err := env.wallets.GetView(context.Background(), resp.User.ID, wallet.EntryFilter{Limit: 10})
	if err != nil {
		t.Fatalf("GetView: %v", err)
	}
	if view.Balance != 50000 {
		t.Fatalf("expected bonus balance 50000, got %d", view.Balance)
	}
	if len(view.Transactions) != 1 || view.Transactions[0].Type != wallet.TransactionTypeCredit {
		t.Fatalf("expected one credit entry, got %+v", view.Transactions)
	}

	env.mailer.mu.Lock()
	bonuses := env.mailer.bonuses
	env.mailer.mu.Unlock()
	if bonuses != 1 {
		t.Fatalf("expected 1 bonus welcome mail, got %d", bonuses)
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	env := newTestEnv(t, 0)
	register(t, env, "ngozi@example.com")

	_, err := env.svc.Register(context.Background(), &auth.RegisterRequest{
		Email:    "NGOZI@example.com", // same address, different case
		Password: "another-password-1",
		FullName: "Someone Else",
	}, "test-agent", "127.0.0.1")
	if !errors.Is(err, auth.ErrEmailAlreadyExists) {
		t.Fatalf("expected ErrEmailAlreadyExists, got %v", err)
	}
}

func TestLoginRejectsBadPasswordAndBanned(t *testing.T) {
	env := newTestEnv(t, 0)
	resp := register(t, env, "ngozi@example.com")

	if _, err := env.svc.Login(context.Background(), &auth.LoginRequest{
		Email:    "ngozi@example.com",
		Password: "wrong-password",
	}, "test-agent", "127.0.0.1"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	if err := env.users.SetBanned(context.Background(), resp.User.ID, true); err != nil {
		t.Fatalf("SetBanned: %v", err)
	}
	if _, err := env.svc.Login(context.Background(), &auth.LoginRequest{
		Email:    "ngozi@example.com",
		Password: "correct-horse-battery",
	}, "test-agent", "127.0.0.1"); !errors.Is(err, auth.ErrAccountBanned) {
		t.Fatalf("expected ErrAccountBanned, got %v", err)
	}
}

func TestRefreshRotatesAndRejectsReuse(t *testing.T) {
	env := newTestEnv(t, 0)
	resp := register(t, env, "ngozi@example.com")

	rotated, err := env.svc.Refresh(context.Background(), resp.RefreshToken, "test-agent", "127.0.0.1")
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if rotated.RefreshToken == resp.RefreshToken {
		t.Fatal("expected a new refresh token")
	}

	// The consumed token must not work a second time.
	if _, err := env.svc.Refresh(context.Background(), resp.RefreshToken, "test-agent", "127.0.0.1"); !errors.Is(err, auth.ErrInvalidRefreshToken) {
		t.Fatalf("expected ErrInvalidRefreshToken on reuse, got %v", err)
	}

	// The rotated token still works.
	if _, err := env.svc.Refresh(context.Background(), rotated.RefreshToken, "test-agent", "127.0.0.1"); err != nil {
		t.Fatalf("Refresh with rotated token: %v", err)
	}
}

func TestPasswordResetFlow(t *testing.T) {
	env := newTestEnv(t, 0)
	resp := register(t, env, "ngozi@example.com")

	if err := env.svc.ForgotPassword(context.Background(), "ngozi@example.com"); err != nil {
		t.Fatalf("ForgotPassword: %v", err)
	}

	env.mailer.mu.Lock()
	code := env.mailer.lastCode
	env.mailer.mu.Unlock()
	if len(code) != 6 {
		t.Fatalf("expected a 6-digit code, got %q", code)
	}

	wrongCode := "000000"
	if code == wrongCode {
		wrongCode = "000001"
	}
	if err := env.svc.ResetPassword(context.Background(), &auth.ResetPasswordRequest{
		Email:       "ngozi@example.com",
		Code:        wrongCode,
		NewPassword: "a-brand-new-password",
	}); !errors.Is(err, auth.ErrInvalidResetCode) {
		t.Fatalf("expected ErrInvalidResetCode for wrong code, got %v", err)
	}

	if err := env.svc.ResetPassword(context.Background(), &auth.ResetPasswordRequest{
		Email:       "ngozi@example.com",
		Code:        code,
		NewPassword: "a-brand-new-password",
	}); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}

	// Old password out, new password in.
	if _, err := env.svc.Login(context.Background(), &auth.LoginRequest{
		Email:    "ngozi@example.com",
		Password: "correct-horse-battery",
	}, "test-agent", "127.0.0.1"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("expected old password rejected, got %v", err)
	}
	if _, err := env.svc.Login(context.Background(), &auth.LoginRequest{
		Email:    "ngozi@example.com",
		Password: "a-brand-new-password",
	}, "test-agent", "127.0.0.1"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}

	// Every pre-reset session is revoked.
	if _, err := env.svc.Refresh(context.Background(), resp.RefreshToken, "test-agent", "127.0.0.1"); !errors.Is(err, auth.ErrInvalidRefreshToken) {
		t.Fatalf("expected pre-reset refresh token revoked, got %v", err)
	}
}

func TestForgotPasswordDoesNotRevealAccounts(t *testing.T) {
	env := newTestEnv(t, 0)
	if err := env.svc.ForgotPassword(context.Background(), "nobody@example.com"); err != nil {
		t.Fatalf("expected nil error for unknown email, got %v", err)
	}
}
