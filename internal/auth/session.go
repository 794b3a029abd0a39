// Package auth reads the credential the identity provider left in the client
// store. Login and registration screens live elsewhere; the order pipeline
// only asks whether a shopper is signed in and attaches their bearer token.
package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/yulishop/storefront/internal/clientstore"
	pkgauth "github.com/yulishop/storefront/pkg/auth"
	"github.com/yulishop/storefront/pkg/enums"
	"github.com/yulishop/storefront/pkg/logger"
	"go.uber.org/multierr"
)

// Session is the signed-in state of one client.
type Session struct {
	token *clientstore.Slot[string]
	role  *clientstore.Slot[enums.AuthRole]
	now   func() time.Time
}

func NewSession(store clientstore.Store, logg *logger.Logger) *Session {
	return &Session{
		token: clientstore.NewSlot[string](store, clientstore.KeyAuthToken, logg),
		role:  clientstore.NewSlot[enums.AuthRole](store, clientstore.KeyAuthRole, logg),
		now:   time.Now,
	}
}

// Login stores the credential and role handed back by the identity provider.
func (s *Session) Login(ctx context.Context, token string, role enums.AuthRole) error {
	if !role.IsValid() {
		role = enums.AuthRoleUser
	}
	if err := s.token.Save(ctx, pkgauth.StripBearer(token)); err != nil {
		return err
	}
	return s.role.Save(ctx, role)
}

// Logout forgets both values, attempting each even if the other fails.
func (s *Session) Logout(ctx context.Context) error {
	return multierr.Combine(s.token.Clear(ctx), s.role.Clear(ctx))
}

// Token returns the stored credential when the shopper is authenticated.
func (s *Session) Token(ctx context.Context) (string, bool) {
	token, ok := s.token.Load(ctx)
	token = strings.TrimSpace(token)
	if !ok || token == "" {
		return "", false
	}
	// Opaque tokens cannot be inspected; only a readable, expired JWT is dropped.
	if claims, err := pkgauth.InspectAccessToken(token); err == nil && pkgauth.Expired(claims, s.now()) {
		return "", false
	}
	return token, true
}

func (s *Session) IsAuthenticated(ctx context.Context) bool {
	_, ok := s.Token(ctx)
	return ok
}

// Role returns the stored role, or "" when signed out.
func (s *Session) Role(ctx context.Context) enums.AuthRole {
	if !s.IsAuthenticated(ctx) {
		return ""
	}
	role, ok := s.role.Load(ctx)
	if !ok || !role.IsValid() {
		return enums.AuthRoleUser
	}
	return role
}

func (s *Session) IsAdmin(ctx context.Context) bool {
	return s.Role(ctx) == enums.AuthRoleAdmin
}

// Authorize attaches the bearer credential to req when one is available.
func (s *Session) Authorize(ctx context.Context, req *http.Request) {
	if token, ok := s.Token(ctx); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}
