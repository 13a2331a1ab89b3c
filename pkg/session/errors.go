package session

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthRequired means there is no credential to act with: no access
	// token for a request, or no refresh token to recover one.
	ErrAuthRequired = errors.New("session: authentication required")

	// ErrNoTokens is wrapped in a RefreshError when the refresh endpoint
	// answered 2xx without a usable token pair.
	ErrNoTokens = errors.New("session: refresh returned no tokens")
)

// RefreshError reports a failed refresh. The session has already been
// cleared by the time a caller sees it.
type RefreshError struct {
	Err error
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("session: token refresh failed: %v", e.Err)
}

func (e *RefreshError) Unwrap() error { return e.Err }

// IsRefreshError reports whether err is, or wraps, a RefreshError.
func IsRefreshError(err error) bool {
	var re *RefreshError
	return errors.As(err, &re)
}
