package adminsdk

import (
	"context"
	"net/http"

	"github.com/aussiebroadwan/budadmin/pkg/session"
)

// Login exchanges a username and password for a token pair.
func (c *SDKClient) Login(ctx context.Context, username, password string) (*TokenResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/auth/login", LoginRequest{
		Username: username,
		Password: password,
	})
	if err != nil {
		return nil, err
	}

	var tokenResp TokenResponse
	if err := decodeJSON(resp, &tokenResp); err != nil {
		return nil, err
	}
	return &tokenResp, nil
}

// RefreshGrant requests new tokens using a refresh token.
func (c *SDKClient) RefreshGrant(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/auth/refresh", RefreshRequest{
		RefreshToken: refreshToken,
	})
	if err != nil {
		return nil, err
	}

	var tokenResp TokenResponse
	if err := decodeJSON(resp, &tokenResp); err != nil {
		return nil, err
	}
	return &tokenResp, nil
}

// RefreshTokens implements session.Refresher. The API does not always rotate
// the refresh token; when the response omits one the presented token is kept.
func (c *SDKClient) RefreshTokens(ctx context.Context, refreshToken string) (session.Tokens, error) {
	tokenResp, err := c.RefreshGrant(ctx, refreshToken)
	if err != nil {
		return session.Tokens{}, err
	}

	tokens := session.Tokens{
		AccessToken:  tokenResp.AccessToken,
		RefreshToken: tokenResp.RefreshToken,
	}
	if tokens.AccessToken != "" && tokens.RefreshToken == "" {
		tokens.RefreshToken = refreshToken
	}
	return tokens, nil
}

// Setup creates the first admin account. The API only accepts it while no
// users exist.
func (c *SDKClient) Setup(ctx context.Context, req UserCreate) (*User, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/auth/setup", req)
	if err != nil {
		return nil, err
	}

	var user User
	if err := decodeJSON(resp, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
