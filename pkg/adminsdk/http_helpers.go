package adminsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// authPathSegment marks endpoints whose 401 means the credentials themselves
// were rejected. Those are never refreshed.
const authPathSegment = "/auth/"

// Authenticator supplies and renews the bearer token for an APIClient.
// *session.Manager implements it.
type Authenticator interface {
	// AccessToken returns the current token, or "" when there is none.
	AccessToken(ctx context.Context) (string, error)

	// Refresh renews the token pair and returns the new access token. On
	// failure the session has already been cleared.
	Refresh(ctx context.Context) (string, error)

	// Logout clears the session.
	Logout(ctx context.Context) error
}

// APIClient performs authenticated calls against the catalog API. It is safe
// for concurrent use.
type APIClient struct {
	client *SDKClient
	auth   Authenticator
}

// url builds a complete URL by appending the path to the base URL.
func (c *SDKClient) url(path string) string {
	return c.BaseURL + path
}

// doRequest performs an HTTP request with the SDKClient's HTTP client.
// This is for unauthenticated requests (no Authorization header).
func (c *SDKClient) doRequest(ctx context.Context, method, path string, body any) (*http.Response, error) {
	payload, err := encodeBody(body)
	if err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, method, path, payload, "")
	if err != nil {
		return nil, err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return resp, nil
}

func (c *SDKClient) newRequest(ctx context.Context, method, path string, payload []byte, token string) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// doAuthRequest sends a request with the session's bearer token attached.
//
// A 401 on a non-auth path triggers one refresh and one resubmission of the
// same request with the new token; whatever the resubmission returns is
// handed back as is. A 401 on an auth path clears the session instead, a
// refresh there would loop. Any other status is returned untouched.
func (a *APIClient) doAuthRequest(ctx context.Context, method, path string, body any) (*http.Response, error) {
	payload, err := encodeBody(body)
	if err != nil {
		return nil, err
	}

	token, err := a.auth.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := a.send(ctx, method, path, payload, token)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	if isAuthPath(path) {
		if err := a.auth.Logout(ctx); err != nil {
			resp.Body.Close()
			return nil, err
		}
		return resp, nil
	}

	drain(resp)

	token, err = a.auth.Refresh(ctx)
	if err != nil {
		return nil, err
	}

	return a.send(ctx, method, path, payload, token)
}

func (a *APIClient) send(ctx context.Context, method, path string, payload []byte, token string) (*http.Response, error) {
	req, err := a.client.newRequest(ctx, method, path, payload, token)
	if err != nil {
		return nil, err
	}

	resp, err := a.client.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return resp, nil
}

// do runs an authenticated request and decodes a 2xx JSON body into target.
// A nil target discards the body.
func (a *APIClient) do(ctx context.Context, method, path string, body, target any) error {
	resp, err := a.doAuthRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	return decodeJSON(resp, target)
}

// decodeJSON decodes a JSON response into the target.
// Returns an *APIError if the response is not 2xx.
func decodeJSON(resp *http.Response, target any) error {
	defer resp.Body.Close()

	// Read body once for both error parsing and success decoding
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if err := parseErrorResponse(resp, bodyBytes); err != nil {
		return err
	}

	if target == nil || len(bytes.TrimSpace(bodyBytes)) == 0 {
		return nil
	}

	if err := json.Unmarshal(bodyBytes, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func encodeBody(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}
	return b, nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}

func isAuthPath(path string) bool {
	return strings.Contains(path, authPathSegment)
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

// checkID rejects ids that are not UUIDs.
func checkID(id string) error {
	if err := uuid.Validate(id); err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidID, id, err)
	}
	return nil
}
