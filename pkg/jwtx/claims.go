package jwtx

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMalformed is wrapped by every DecodeError so callers can match with
	// errors.Is without caring about the reason.
	ErrMalformed = errors.New("jwtx: malformed token")
)

// DecodeError reports why a token payload could not be read.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("jwtx: decode token: %s: %v", e.Reason, e.Err)
	}
	return "jwtx: decode token: " + e.Reason
}

// Unwrap lets errors.Is match both ErrMalformed and the underlying cause.
func (e *DecodeError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrMalformed}
	}
	return []error{ErrMalformed, e.Err}
}

// Claims are the access-token claims issued by the catalog API. Only the
// fields the console relies on are typed, the rest of the registered set
// comes along through jwt.RegisteredClaims.
type Claims struct {
	jwt.RegisteredClaims

	// Username of the authenticated user
	Username string `json:"username,omitempty"`

	// IsAdmin is true for accounts allowed to mutate the catalog
	IsAdmin bool `json:"is_admin,omitempty"`

	// Type is "refresh" on refresh tokens and empty on access tokens
	Type string `json:"type,omitempty"`
}

// Decode reads the payload segment of a three-part token without verifying
// the signature. The console never holds the signing key, it only needs the
// identity and expiry the server put there.
func Decode(token string) (*Claims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, &DecodeError{Reason: fmt.Sprintf("expected 3 segments, got %d", len(parts))}
	}

	parser := jwt.NewParser(jwt.WithPaddingAllowed())
	payload, err := parser.DecodeSegment(parts[1])
	if err != nil {
		return nil, &DecodeError{Reason: "payload is not base64url", Err: err}
	}

	var claims Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, &DecodeError{Reason: "payload is not JSON", Err: err}
	}

	return &claims, nil
}

// IsExpired reports whether the claims are expired at now. Comparison is done
// in milliseconds so a token expiring in the current second counts as expired.
// Claims without exp are treated as expired.
func IsExpired(c *Claims, now time.Time) bool {
	if c == nil || c.ExpiresAt == nil {
		return true
	}
	return c.ExpiresAt.Unix()*1000 <= now.UnixMilli()
}

// ExpiresIn returns the time left before expiry, or zero if already expired.
func (c *Claims) ExpiresIn(now time.Time) time.Duration {
	if IsExpired(c, now) {
		return 0
	}
	return c.ExpiresAt.Sub(now)
}
