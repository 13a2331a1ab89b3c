package session_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/budadmin/pkg/jwtx"
	"github.com/aussiebroadwan/budadmin/pkg/session"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func mintToken(t *testing.T, sub, username string, admin bool, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Username: username,
		IsAdmin:  admin,
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

// fakeRefresher counts calls and optionally blocks until released.
type fakeRefresher struct {
	calls   atomic.Int32
	release chan struct{}
	tokens  session.Tokens
	err     error
	lastRT  atomic.Value
}

func (f *fakeRefresher) RefreshTokens(ctx context.Context, rt string) (session.Tokens, error) {
	f.calls.Add(1)
	f.lastRT.Store(rt)
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return session.Tokens{}, ctx.Err()
		}
	}
	return f.tokens, f.err
}

type failingDeleteStore struct {
	*session.MemoryStore
	err error
}

func (s *failingDeleteStore) Delete(context.Context, ...string) error { return s.err }

type harness struct {
	store     *session.MemoryStore
	refresher *fakeRefresher
	manager   *session.Manager
	logouts   atomic.Int32
}

func newHarness(t *testing.T, r *fakeRefresher) *harness {
	t.Helper()
	h := &harness{store: session.NewMemoryStore(), refresher: r}
	h.manager = session.NewManager(session.Config{
		Store:     h.store,
		Refresher: r,
		OnLogout:  func() { h.logouts.Add(1) },
	})
	return h
}

func TestLoginLogoutRoundTrip(t *testing.T) {
	t.Parallel()

	h := newHarness(t, &fakeRefresher{})
	ctx := t.Context()

	access := mintToken(t, "user-1", "admin", true, time.Now().Add(time.Hour))
	require.NoError(t, h.manager.Login(ctx, access, "refresh-1"))

	require.Equal(t, map[string]string{
		session.KeyAccessToken:  access,
		session.KeyRefreshToken: "refresh-1",
	}, h.store.Snapshot())
	require.Equal(t, session.StateAuthenticated, h.manager.State())
	require.Equal(t, &session.Identity{ID: "user-1", Username: "admin", IsAdmin: true}, h.manager.Identity())

	require.NoError(t, h.manager.CacheUser(ctx, map[string]string{"email": "a@example.com"}))
	require.NoError(t, h.manager.Logout(ctx))

	require.Empty(t, h.store.Snapshot())
	require.Equal(t, session.StateUnauthenticated, h.manager.State())
	require.Nil(t, h.manager.Identity())
	require.EqualValues(t, 1, h.logouts.Load())
}

func TestLoginWithUndecodableToken(t *testing.T) {
	t.Parallel()

	h := newHarness(t, &fakeRefresher{})
	ctx := t.Context()

	require.NoError(t, h.manager.Login(ctx, "not-a-token", "refresh-1"))

	// Tokens are persisted, the identity is not adopted.
	require.Equal(t, "not-a-token", h.store.Snapshot()[session.KeyAccessToken])
	require.Equal(t, session.StateUnauthenticated, h.manager.State())
	require.Nil(t, h.manager.Identity())
}

func TestRestore(t *testing.T) {
	t.Parallel()

	ctx := t.Context()

	t.Run("no persisted token", func(t *testing.T) {
		h := newHarness(t, &fakeRefresher{})
		require.NoError(t, h.manager.Restore(ctx))
		require.Equal(t, session.StateUnauthenticated, h.manager.State())
		require.Zero(t, h.logouts.Load())
	})

	t.Run("unexpired token is adopted", func(t *testing.T) {
		h := newHarness(t, &fakeRefresher{})
		access := mintToken(t, "user-1", "alice", false, time.Now().Add(time.Hour))
		require.NoError(t, h.store.Put(ctx, map[string]string{
			session.KeyAccessToken:  access,
			session.KeyRefreshToken: "rt",
		}))

		require.NoError(t, h.manager.Restore(ctx))
		require.True(t, h.manager.IsAuthenticated())
		require.Equal(t, "alice", h.manager.Identity().Username)
		require.Zero(t, h.refresher.calls.Load())
	})

	t.Run("expired token triggers refresh", func(t *testing.T) {
		fresh := mintToken(t, "user-1", "alice", true, time.Now().Add(time.Hour))
		h := newHarness(t, &fakeRefresher{tokens: session.Tokens{AccessToken: fresh, RefreshToken: "rt-2"}})
		require.NoError(t, h.store.Put(ctx, map[string]string{
			session.KeyAccessToken:  mintToken(t, "user-1", "alice", true, time.Now().Add(-time.Minute)),
			session.KeyRefreshToken: "rt-1",
		}))

		require.NoError(t, h.manager.Restore(ctx))
		require.EqualValues(t, 1, h.refresher.calls.Load())
		require.Equal(t, "rt-1", h.refresher.lastRT.Load())
		require.True(t, h.manager.IsAuthenticated())
		require.Equal(t, map[string]string{
			session.KeyAccessToken:  fresh,
			session.KeyRefreshToken: "rt-2",
		}, h.store.Snapshot())
	})

	t.Run("expired token with failing refresh logs out", func(t *testing.T) {
		h := newHarness(t, &fakeRefresher{err: errors.New("boom")})
		require.NoError(t, h.store.Put(ctx, map[string]string{
			session.KeyAccessToken:  mintToken(t, "user-1", "alice", true, time.Now().Add(-time.Minute)),
			session.KeyRefreshToken: "rt-1",
		}))

		require.NoError(t, h.manager.Restore(ctx))
		require.Equal(t, session.StateUnauthenticated, h.manager.State())
		require.Empty(t, h.store.Snapshot())
		require.EqualValues(t, 1, h.logouts.Load())
	})

	t.Run("undecodable token logs out", func(t *testing.T) {
		h := newHarness(t, &fakeRefresher{})
		require.NoError(t, h.store.Put(ctx, map[string]string{
			session.KeyAccessToken:  "garbage",
			session.KeyRefreshToken: "rt-1",
		}))

		require.NoError(t, h.manager.Restore(ctx))
		require.Equal(t, session.StateUnauthenticated, h.manager.State())
		require.Empty(t, h.store.Snapshot())
		require.EqualValues(t, 1, h.logouts.Load())
		require.Zero(t, h.refresher.calls.Load())
	})
}

func TestRefresh(t *testing.T) {
	t.Parallel()

	ctx := t.Context()

	t.Run("absent refresh token", func(t *testing.T) {
		h := newHarness(t, &fakeRefresher{})
		require.NoError(t, h.store.Put(ctx, map[string]string{session.KeyUser: "{}"}))

		_, err := h.manager.Refresh(ctx)
		require.ErrorIs(t, err, session.ErrAuthRequired)
		require.Zero(t, h.refresher.calls.Load())
		require.Empty(t, h.store.Snapshot())
		require.EqualValues(t, 1, h.logouts.Load())
	})

	t.Run("absent refresh token with failing store", func(t *testing.T) {
		var logs bytes.Buffer
		store := &failingDeleteStore{MemoryStore: session.NewMemoryStore(), err: errors.New("disk full")}
		mgr := session.NewManager(session.Config{
			Store:     store,
			Refresher: &fakeRefresher{},
			Logger:    slog.New(slog.NewTextHandler(&logs, nil)),
		})

		_, err := mgr.Refresh(ctx)
		require.ErrorIs(t, err, session.ErrAuthRequired)
		require.Contains(t, logs.String(), "failed to clear session")
		require.Contains(t, logs.String(), "disk full")
	})

	t.Run("refresher error", func(t *testing.T) {
		cause := errors.New("401 from refresh endpoint")
		h := newHarness(t, &fakeRefresher{err: cause})
		require.NoError(t, h.manager.Login(ctx, mintToken(t, "u", "u", false, time.Now().Add(time.Hour)), "rt"))

		_, err := h.manager.Refresh(ctx)
		require.True(t, session.IsRefreshError(err))
		require.ErrorIs(t, err, cause)
		require.Empty(t, h.store.Snapshot())
		require.Equal(t, session.StateUnauthenticated, h.manager.State())
	})

	t.Run("empty token pair", func(t *testing.T) {
		h := newHarness(t, &fakeRefresher{tokens: session.Tokens{AccessToken: "only-access"}})
		require.NoError(t, h.store.Put(ctx, map[string]string{session.KeyRefreshToken: "rt"}))

		_, err := h.manager.Refresh(ctx)
		require.ErrorIs(t, err, session.ErrNoTokens)
		require.Empty(t, h.store.Snapshot())
	})

	t.Run("undecodable refreshed token", func(t *testing.T) {
		h := newHarness(t, &fakeRefresher{tokens: session.Tokens{AccessToken: "bad", RefreshToken: "rt-2"}})
		require.NoError(t, h.store.Put(ctx, map[string]string{session.KeyRefreshToken: "rt"}))

		_, err := h.manager.Refresh(ctx)
		require.ErrorIs(t, err, jwtx.ErrMalformed)
		require.True(t, session.IsRefreshError(err))
		require.Empty(t, h.store.Snapshot())
	})

	t.Run("concurrent callers share one refresh", func(t *testing.T) {
		fresh := mintToken(t, "user-1", "alice", true, time.Now().Add(time.Hour))
		r := &fakeRefresher{
			release: make(chan struct{}),
			tokens:  session.Tokens{AccessToken: fresh, RefreshToken: "rt-2"},
		}
		h := newHarness(t, r)
		require.NoError(t, h.store.Put(ctx, map[string]string{session.KeyRefreshToken: "rt-1"}))

		const callers = 8
		var wg, started sync.WaitGroup
		results := make([]string, callers)
		errs := make([]error, callers)
		for i := range callers {
			wg.Add(1)
			started.Add(1)
			go func(i int) {
				defer wg.Done()
				started.Done()
				results[i], errs[i] = h.manager.Refresh(ctx)
			}(i)
		}

		// Hold the flight open until every caller has had a chance to join.
		started.Wait()
		require.Eventually(t, func() bool { return r.calls.Load() == 1 }, time.Second, time.Millisecond)
		require.Equal(t, session.StateRefreshing, h.manager.State())
		time.Sleep(50 * time.Millisecond)
		close(r.release)
		wg.Wait()

		require.EqualValues(t, 1, r.calls.Load())
		for i := range callers {
			require.NoError(t, errs[i])
			require.Equal(t, fresh, results[i])
		}
		require.True(t, h.manager.IsAuthenticated())
	})

	t.Run("waiter cancellation does not cancel the flight", func(t *testing.T) {
		fresh := mintToken(t, "user-1", "alice", true, time.Now().Add(time.Hour))
		r := &fakeRefresher{
			release: make(chan struct{}),
			tokens:  session.Tokens{AccessToken: fresh, RefreshToken: "rt-2"},
		}
		h := newHarness(t, r)
		require.NoError(t, h.store.Put(ctx, map[string]string{session.KeyRefreshToken: "rt-1"}))

		cctx, cancel := context.WithCancel(ctx)
		done := make(chan error, 1)
		go func() {
			_, err := h.manager.Refresh(cctx)
			done <- err
		}()

		require.Eventually(t, func() bool { return r.calls.Load() == 1 }, time.Second, time.Millisecond)
		cancel()
		require.ErrorIs(t, <-done, context.Canceled)

		// A second caller joins the same flight and sees its result.
		go close(r.release)
		tok, err := h.manager.Refresh(ctx)
		require.NoError(t, err)
		require.Equal(t, fresh, tok)
		require.LessOrEqual(t, r.calls.Load(), int32(2))
	})
}

func TestCachedUser(t *testing.T) {
	t.Parallel()

	h := newHarness(t, &fakeRefresher{})
	ctx := t.Context()

	var out struct {
		Email string `json:"email"`
	}
	ok, err := h.manager.CachedUser(ctx, &out)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, h.manager.CacheUser(ctx, map[string]string{"email": "a@example.com"}))
	ok, err = h.manager.CachedUser(ctx, &out)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "a@example.com", out.Email)
}
