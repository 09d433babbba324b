package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrPermissionDenied indicates the actor may not perform the operation.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrValidation indicates rejected input.
	ErrValidation = errors.New("validation failed")
	// ErrAlreadyExists indicates a duplicate record or action.
	ErrAlreadyExists = errors.New("already exists")
	// ErrExpired indicates a session, poll or token past its lifetime.
	ErrExpired = errors.New("expired")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// UserSafeMessage returns the message that can be shown to the caller. Errors
// wrapping a known sentinel keep their text; anything else is hidden.
func UserSafeMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid username or password"
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrPermissionDenied),
		errors.Is(err, ErrValidation),
		errors.Is(err, ErrAlreadyExists),
		errors.Is(err, ErrExpired):
		return err.Error()
	default:
		return "Something went wrong, please try again"
	}
}
