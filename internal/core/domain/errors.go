package domain

import (
	"errors"
	"fmt"
)

var (
	ErrSessionExpired     = errors.New("session expired, please log in again")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("username already registered")
	ErrEmailExists        = errors.New("email already registered")
	ErrWrongPassword      = errors.New("old password is incorrect")
	ErrUnauthorized       = errors.New("please log in first")
)

// BusinessError is a non-zero, non-expiry envelope code. Message is the
// server text, surfaced verbatim.
type BusinessError struct {
	Code    int
	Message string
}

func (e *BusinessError) Error() string {
	return e.Message
}

// SessionExpiredError is returned when the backend signalled that the
// credential is no longer valid. It matches ErrSessionExpired.
type SessionExpiredError struct {
	// Code is the envelope code, or zero when the expiry came from HTTP 401.
	Code    int
	Message string
}

func (e *SessionExpiredError) Error() string {
	return ErrSessionExpired.Error()
}

func (e *SessionExpiredError) Is(target error) bool {
	return target == ErrSessionExpired
}

// TransportError means no envelope was received. Status is the HTTP status,
// zero when the request never got a response.
type TransportError struct {
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("network error: %v", e.Err)
	}
	if e.Err == nil {
		return fmt.Sprintf("unexpected http status %d", e.Status)
	}
	return fmt.Sprintf("http status %d: %v", e.Status, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransport reports whether err is a transport failure, which a view may
// offer to retry.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsBusiness reports whether err carries a backend business error.
func IsBusiness(err error) bool {
	var be *BusinessError
	return errors.As(err, &be)
}

// Message returns the human-readable text for err, falling back to fallback
// when err carries none.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
