package domain

import "errors"

// Session-side errors.
var (
	ErrStorageMiss       = errors.New("storage: entry not found")
	ErrMissingCredential = errors.New("auth response carried no credential")
	ErrSessionExpired    = errors.New("session expired")
)

// Backend-side errors, raised by the bundled stub API.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("email already exists")
	ErrAccountDisabled    = errors.New("account is deactivated")
	ErrPropertyNotFound   = errors.New("property not found")
	ErrForbidden          = errors.New("access forbidden")
)

// Fallback messages shown when the backend supplies none.
const (
	MsgLoginFailed        = "Login failed"
	MsgRegistrationFailed = "Registration failed"
	MsgLoginSucceeded     = "Login successful"
	MsgRegistered         = "Registration successful"
)
