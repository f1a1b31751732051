package blacklist

import (
	"context"
	"testing"
	"time"

	"devlaunch/database/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDBStore(t *testing.T) {
	s := NewDBStore(testutil.DB(t))
	ctx := context.Background()

	revoked, err := s.IsRevoked(ctx, "tok-a")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, s.Revoke(ctx, "tok-a", time.Now().Add(time.Hour)))
	require.NoError(t, s.Revoke(ctx, "tok-a", time.Now().Add(time.Hour)), "revoking twice is harmless")
	require.NoError(t, s.Revoke(ctx, "tok-b", time.Now().Add(-time.Minute)))

	revoked, err = s.IsRevoked(ctx, "tok-a")
	require.NoError(t, err)
	assert.True(t, revoked)
	revoked, err = s.IsRevoked(ctx, "tok-b")
	require.NoError(t, err)
	assert.False(t, revoked, "expired entries no longer count")

	n, err := s.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestHashTokenIsStable(t *testing.T) {
	assert.Equal(t, hashToken("x"), hashToken("x"))
	assert.Len(t, hashToken("x"), 64)
	assert.NotEqual(t, hashToken("x"), hashToken("y"))
}
