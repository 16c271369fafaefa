package shared

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrCursorMismatch indicates a page cursor was presented with a
	// different filter/sort combination than the one that produced it.
	ErrCursorMismatch = errors.New("cursor does not match query")
)

// UserSafeMessage converts internal errors into a message suitable for
// the dashboard. Store errors stay generic.
func UserSafeMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "The requested record could not be found"
	case errors.Is(err, ErrInvalidCredentials):
		return "Email or password is incorrect"
	case errors.Is(err, ErrCursorMismatch):
		return "The listing changed, please reload from the first page"
	default:
		return "Something went wrong, please try again"
	}
}
