package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aussiebroadwan/budadmin/pkg/jwtx"
	"golang.org/x/sync/singleflight"
)

// DefaultRefreshTimeout bounds a single call to the refresh endpoint. The
// refresh is shared between callers so it does not follow any one caller's
// context cancellation.
const DefaultRefreshTimeout = 30 * time.Second

// refreshFlightKey is the only key used on the singleflight group, there is
// one session per Manager.
const refreshFlightKey = "refresh"

// State is where the session is in its lifecycle.
//
//	Unauthenticated -> (login) -> Authenticated -> (logout | refresh failure) -> Unauthenticated
//	Authenticated -> (expiry detected) -> Refreshing -> Authenticated | Unauthenticated
type State int

const (
	StateUnauthenticated State = iota
	StateAuthenticated
	StateRefreshing
)

func (s State) String() string {
	switch s {
	case StateAuthenticated:
		return "authenticated"
	case StateRefreshing:
		return "refreshing"
	default:
		return "unauthenticated"
	}
}

// Identity is the user derived from the access token claims.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

// Tokens is the pair returned by login and refresh.
type Tokens struct {
	AccessToken  string
	RefreshToken string
}

// Refresher exchanges a refresh token for a new token pair. The SDK client
// implements it against POST /auth/refresh.
type Refresher interface {
	RefreshTokens(ctx context.Context, refreshToken string) (Tokens, error)
}

// Config carries the Manager's collaborators.
type Config struct {
	Store     Store
	Refresher Refresher
	Logger    *slog.Logger

	// OnLogout runs after every logout, explicit or forced. The CLI uses it
	// to tell the operator to log in again.
	OnLogout func()

	// Now defaults to time.Now.
	Now func() time.Time

	// RefreshTimeout defaults to DefaultRefreshTimeout.
	RefreshTimeout time.Duration
}

// Manager owns the session state and is the single place tokens get written
// or cleared. It is safe for concurrent use, and concurrent refreshes are
// collapsed into one call to the Refresher.
type Manager struct {
	store          Store
	refresher      Refresher
	logger         *slog.Logger
	onLogout       func()
	now            func() time.Time
	refreshTimeout time.Duration

	flight singleflight.Group

	mu       sync.RWMutex
	state    State
	identity *Identity
}

func NewManager(cfg Config) *Manager {
	m := &Manager{
		store:          cfg.Store,
		refresher:      cfg.Refresher,
		logger:         cfg.Logger,
		onLogout:       cfg.OnLogout,
		now:            cfg.Now,
		refreshTimeout: cfg.RefreshTimeout,
	}
	if m.store == nil {
		m.store = NewMemoryStore()
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.refreshTimeout <= 0 {
		m.refreshTimeout = DefaultRefreshTimeout
	}
	return m
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// IsAuthenticated is true once a decodable token has been adopted.
func (m *Manager) IsAuthenticated() bool {
	return m.State() == StateAuthenticated
}

// Identity returns a copy of the current user, or nil when unauthenticated.
func (m *Manager) Identity() *Identity {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.identity == nil {
		return nil
	}
	id := *m.identity
	return &id
}

// AccessToken returns the persisted access token, or "" when there is none.
func (m *Manager) AccessToken(ctx context.Context) (string, error) {
	tok, err := m.store.Get(ctx, KeyAccessToken)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("session: read access token: %w", err)
	}
	return tok, nil
}

// Login persists the token pair and adopts the identity in the access token.
// A token that cannot be decoded leaves the session unauthenticated; that is
// logged rather than returned. Only storage failures are returned.
func (m *Manager) Login(ctx context.Context, accessToken, refreshToken string) error {
	err := m.store.Put(ctx, map[string]string{
		KeyAccessToken:  accessToken,
		KeyRefreshToken: refreshToken,
	})
	if err != nil {
		return fmt.Errorf("session: persist tokens: %w", err)
	}

	claims, err := jwtx.Decode(accessToken)
	if err != nil {
		m.logger.Error("invalid access token on login", "error", err)
		m.setState(StateUnauthenticated, nil)
		return nil
	}

	m.authenticate(claims)
	return nil
}

// Logout clears every persisted session key and the in-memory identity, then
// runs the OnLogout hook.
func (m *Manager) Logout(ctx context.Context) error {
	err := m.store.Delete(ctx, KeyAccessToken, KeyRefreshToken, KeyUser)
	m.setState(StateUnauthenticated, nil)

	if m.onLogout != nil {
		m.onLogout()
	}

	if err != nil {
		return fmt.Errorf("session: clear tokens: %w", err)
	}
	return nil
}

// Restore adopts a persisted session at process start. An unexpired token is
// adopted as is, an expired one is refreshed, and an undecodable one is
// logged out. Refresh failures end in the unauthenticated state and are not
// returned; only storage read failures are.
func (m *Manager) Restore(ctx context.Context) error {
	tok, err := m.AccessToken(ctx)
	if err != nil {
		return err
	}
	if tok == "" {
		return nil
	}

	claims, err := jwtx.Decode(tok)
	if err != nil {
		m.logger.Warn("invalid persisted access token", "error", err)
		return m.Logout(ctx)
	}

	if !jwtx.IsExpired(claims, m.now()) {
		m.authenticate(claims)
		return nil
	}

	m.logger.Debug("persisted access token expired, refreshing", "sub", claims.Subject)
	if _, err := m.Refresh(ctx); err != nil {
		m.logger.Info("session not restored", "error", err)
	}
	return nil
}

// Refresh exchanges the persisted refresh token for a new pair and returns
// the new access token. Callers arriving while a refresh is in flight wait
// for that one instead of starting their own, so N concurrent 401s cost one
// refresh call. Each waiter still returns early if its own ctx is done.
//
// On failure the session is logged out before the error is returned:
// ErrAuthRequired when there was no refresh token, a *RefreshError otherwise.
func (m *Manager) Refresh(ctx context.Context) (string, error) {
	ch := m.flight.DoChan(refreshFlightKey, func() (any, error) {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.refreshTimeout)
		defer cancel()
		return m.refresh(rctx)
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (m *Manager) refresh(ctx context.Context) (string, error) {
	m.mu.Lock()
	prev := m.state
	m.state = StateRefreshing
	m.mu.Unlock()

	refreshToken, err := m.store.Get(ctx, KeyRefreshToken)
	if err != nil && !errors.Is(err, ErrNotFound) {
		m.mu.Lock()
		m.state = prev
		m.mu.Unlock()
		return "", fmt.Errorf("session: read refresh token: %w", err)
	}
	if refreshToken == "" {
		m.logger.Info("no refresh token, logging out")
		if err := m.Logout(ctx); err != nil {
			m.logger.Error("failed to clear session without refresh token", "error", err)
		}
		return "", ErrAuthRequired
	}

	if m.refresher == nil {
		return "", m.failRefresh(ctx, errors.New("no refresher configured"))
	}

	tokens, err := m.refresher.RefreshTokens(ctx, refreshToken)
	if err != nil {
		return "", m.failRefresh(ctx, err)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		return "", m.failRefresh(ctx, ErrNoTokens)
	}
	if _, err := jwtx.Decode(tokens.AccessToken); err != nil {
		return "", m.failRefresh(ctx, err)
	}

	if err := m.Login(ctx, tokens.AccessToken, tokens.RefreshToken); err != nil {
		return "", m.failRefresh(ctx, err)
	}

	m.logger.Debug("access token refreshed")
	return tokens.AccessToken, nil
}

func (m *Manager) failRefresh(ctx context.Context, cause error) error {
	m.logger.Warn("token refresh failed, logging out", "error", cause)
	if err := m.Logout(ctx); err != nil {
		m.logger.Error("failed to clear session after refresh failure", "error", err)
	}
	return &RefreshError{Err: cause}
}

// CacheUser stores v as JSON under the user key. It is cleared on logout.
func (m *Manager) CacheUser(ctx context.Context, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("session: encode user: %w", err)
	}
	if err := m.store.Put(ctx, map[string]string{KeyUser: string(b)}); err != nil {
		return fmt.Errorf("session: persist user: %w", err)
	}
	return nil
}

// CachedUser decodes the cached user record into v. It reports false when
// nothing is cached.
func (m *Manager) CachedUser(ctx context.Context, v any) (bool, error) {
	raw, err := m.store.Get(ctx, KeyUser)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("session: read user: %w", err)
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, fmt.Errorf("session: decode user: %w", err)
	}
	return true, nil
}

func (m *Manager) authenticate(c *jwtx.Claims) {
	m.setState(StateAuthenticated, &Identity{
		ID:       c.Subject,
		Username: c.Username,
		IsAdmin:  c.IsAdmin,
	})
}

func (m *Manager) setState(s State, id *Identity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = s
	m.identity = id
}
