package auth

import "errors"

var (
	ErrEmailAlreadyExists  = errors.New("email already exists")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrAccountBanned       = errors.New("account is suspended")
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
	ErrInvalidResetCode    = errors.New("invalid or expired reset code")
)
