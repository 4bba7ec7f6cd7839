package errors

import (
	"errors"
	"fmt"
)

// Common error types for the OAuth login bridge
var (
	// Authorization errors (rendered as access denied)
	ErrAccessDenied = errors.New("access denied")
	ErrStateMissing = errors.New("oauth state missing")
	ErrStateInvalid = errors.New("oauth state mismatch")
	ErrCodeMissing  = errors.New("oauth code missing")

	// Provider errors
	ErrTokenExchange    = errors.New("token exchange failed")
	ErrUserinfoFailed   = errors.New("userinfo request failed")
	ErrNoIdentitySource = errors.New("no userinfo endpoint or id_token available")

	// Template errors (operator misconfiguration)
	ErrFieldMissing = errors.New("template field missing from userinfo")

	// Gateway errors
	ErrAdminConnection = errors.New("unable to obtain admin connection")
	ErrAccountNotFound = errors.New("account not found")
	ErrSessionFailed   = errors.New("session creation failed")

	// Connector errors
	ErrIncompatibleServer = errors.New("incompatible server")
	ErrConnectionFailed   = errors.New("failed to login with session")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
