package jwtutil_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/valentinaBarreto18/marketplaceRepo/internal/auth/jwtutil"
)

func TestGenerateTokens(t *testing.T) {
	t.Setenv("ACCESS_SECRET", "test-access-secret")
	t.Setenv("REFRESH_SECRET", "test-refresh-secret")

	access, refresh, err := jwtutil.GenerateTokens(42, true)
	require.NoError(t, err)

	require.Len(t, strings.Split(access, "."), 3)
	require.Len(t, strings.Split(refresh, "."), 3)
	require.NotEqual(t, access, refresh)

	claims, err := jwtutil.ValidateToken(access, false)
	require.NoError(t, err)
	require.Equal(t, int64(42), claims.UserID)
	require.True(t, claims.IsAdmin)

	refreshClaims, err := jwtutil.ValidateToken(refresh, true)
	require.NoError(t, err)
	require.Equal(t, int64(42), refreshClaims.UserID)
	require.False(t, refreshClaims.IsAdmin)
}

func TestValidateToken_WrongKind(t *testing.T) {
	t.Setenv("ACCESS_SECRET", "test-access-secret")
	t.Setenv("REFRESH_SECRET", "test-refresh-secret")

	access, refresh, err := jwtutil.GenerateTokens(7, false)
	require.NoError(t, err)

	_, err = jwtutil.ValidateToken(access, true)
	require.Error(t, err)

	_, err = jwtutil.ValidateToken(refresh, false)
	require.Error(t, err)
}

func TestGenerateTokens_MissingSecrets(t *testing.T) {
	t.Setenv("ACCESS_SECRET", "")
	t.Setenv("REFRESH_SECRET", "")

	_, _, err := jwtutil.GenerateTokens(1, false)
	require.Error(t, err)
}
