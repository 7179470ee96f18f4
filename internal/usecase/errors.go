package usecase

import "errors"

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrInvalidInput    = errors.New("validation failed")
	ErrUserNotFound    = errors.New("user not found")

	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account is deactivated")
	ErrInvalidToken       = errors.New("invalid token")

	ErrOTPNotFound = errors.New("no outstanding OTP for this phone number")
	ErrOTPExpired  = errors.New("OTP has expired")
	ErrInvalidOTP  = errors.New("invalid OTP")
)
