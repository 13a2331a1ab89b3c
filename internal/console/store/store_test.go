package store_test

import (
	"strings"
	"testing"

	"github.com/aussiebroadwan/budadmin/internal/console/store"
	"github.com/aussiebroadwan/budadmin/pkg/cryptox"
	"github.com/aussiebroadwan/budadmin/pkg/session"
	"github.com/stretchr/testify/require"
)

func TestSealedStore(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	sealer, err := cryptox.NewSealer([]byte("a master key for tests only"))
	require.NoError(t, err)

	inner := session.NewMemoryStore()
	s := store.NewSealedStore(inner, sealer)

	require.NoError(t, s.Put(ctx, map[string]string{
		session.KeyAccessToken:  "access",
		session.KeyRefreshToken: "refresh",
		session.KeyUser:         `{"username":"admin"}`,
	}))

	raw := inner.Snapshot()
	require.True(t, sealer.IsSealed(raw[session.KeyAccessToken]))
	require.True(t, sealer.IsSealed(raw[session.KeyRefreshToken]))
	require.False(t, strings.Contains(raw[session.KeyRefreshToken], "refresh"))
	require.Equal(t, `{"username":"admin"}`, raw[session.KeyUser])

	v, err := s.Get(ctx, session.KeyRefreshToken)
	require.NoError(t, err)
	require.Equal(t, "refresh", v)

	require.NoError(t, s.Delete(ctx, session.KeyAccessToken, session.KeyRefreshToken))
	_, err = s.Get(ctx, session.KeyAccessToken)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestSealedStoreReadsPlaintext(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	sealer, err := cryptox.NewSealer([]byte("a master key for tests only"))
	require.NoError(t, err)

	inner := session.NewMemoryStore()
	require.NoError(t, inner.Put(ctx, map[string]string{session.KeyAccessToken: "legacy"}))

	s := store.NewSealedStore(inner, sealer)
	v, err := s.Get(ctx, session.KeyAccessToken)
	require.NoError(t, err)
	require.Equal(t, "legacy", v)

	// The plaintext value is sealed in place on first read.
	require.True(t, sealer.IsSealed(inner.Snapshot()[session.KeyAccessToken]))

	v, err = s.Get(ctx, session.KeyAccessToken)
	require.NoError(t, err)
	require.Equal(t, "legacy", v)
}
