package auth

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yulishop/storefront/internal/clientstore"
	pkgauth "github.com/yulishop/storefront/pkg/auth"
	"github.com/yulishop/storefront/pkg/config"
	"github.com/yulishop/storefront/pkg/enums"
)

func mint(t *testing.T, issuedAt time.Time, role enums.AuthRole) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(config.JWTConfig{Secret: "s", Issuer: "yulishop", ExpirationMinutes: 60}, issuedAt, pkgauth.AccessTokenPayload{Subject: "cust-1", Role: role})
	require.NoError(t, err)
	return token
}

func TestSessionLoginLogout(t *testing.T) {
	ctx := context.Background()
	session := NewSession(clientstore.NewMemoryStore(), nil)

	assert.False(t, session.IsAuthenticated(ctx))
	assert.Equal(t, enums.AuthRole(""), session.Role(ctx))

	require.NoError(t, session.Login(ctx, mint(t, time.Now(), enums.AuthRoleAdmin), enums.AuthRoleAdmin))
	assert.True(t, session.IsAuthenticated(ctx))
	assert.True(t, session.IsAdmin(ctx))

	require.NoError(t, session.Logout(ctx))
	assert.False(t, session.IsAuthenticated(ctx))
	assert.False(t, session.IsAdmin(ctx))
}

func TestSessionDropsExpiredJWT(t *testing.T) {
	ctx := context.Background()
	session := NewSession(clientstore.NewMemoryStore(), nil)
	require.NoError(t, session.Login(ctx, mint(t, time.Now().Add(-2*time.Hour), enums.AuthRoleUser), enums.AuthRoleUser))

	assert.False(t, session.IsAuthenticated(ctx))

	req, _ := http.NewRequest(http.MethodPost, "http://example.test/orders", nil)
	session.Authorize(ctx, req)
	assert.Empty(t, req.Header.Get("Authorization"))
}

func TestSessionAcceptsOpaqueTokens(t *testing.T) {
	ctx := context.Background()
	session := NewSession(clientstore.NewMemoryStore(), nil)
	require.NoError(t, session.Login(ctx, "Bearer opaque-token", "superuser"))

	token, ok := session.Token(ctx)
	require.True(t, ok)
	assert.Equal(t, "opaque-token", token)
	assert.Equal(t, enums.AuthRoleUser, session.Role(ctx), "unknown roles fall back to user")

	req, _ := http.NewRequest(http.MethodPost, "http://example.test/orders", nil)
	session.Authorize(ctx, req)
	assert.Equal(t, "Bearer opaque-token", req.Header.Get("Authorization"))
}

func TestSessionToleratesMalformedStoredValues(t *testing.T) {
	ctx := context.Background()
	store := clientstore.NewMemoryStore()
	require.NoError(t, store.Set(ctx, clientstore.KeyAuthToken, []byte(`{broken`)))

	session := NewSession(store, nil)
	assert.False(t, session.IsAuthenticated(ctx))
}
