package httpx

import (
	"net/http"

	"github.com/aussiebroadwan/budadmin/pkg/idx"
	"github.com/aussiebroadwan/budadmin/pkg/slogx"
)

// RequestIDTransport stamps X-Request-ID on requests that do not carry one.
// The request is cloned first, RoundTrippers must not mutate their input.
func RequestIDTransport(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return roundTripFunc(func(req *http.Request) (*http.Response, error) {
		if req.Header.Get(slogx.RequestIDHeader) == "" {
			req = req.Clone(req.Context())
			req.Header.Set(slogx.RequestIDHeader, idx.New().String())
		}
		return next.RoundTrip(req)
	})
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }
