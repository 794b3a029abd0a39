package controllers

import (
	"context"
	"net/http"

	"github.com/yulishop/storefront/api/responses"
	"github.com/yulishop/storefront/api/validators"
	"github.com/yulishop/storefront/pkg/enums"
	pkgerrors "github.com/yulishop/storefront/pkg/errors"
	"github.com/yulishop/storefront/pkg/logger"
)

// SessionService is implemented by auth.Session.
type SessionService interface {
	Login(ctx context.Context, token string, role enums.AuthRole) error
	Logout(ctx context.Context) error
	IsAuthenticated(ctx context.Context) bool
	Role(ctx context.Context) enums.AuthRole
}

type sessionRequest struct {
	Token string `json:"token" validate:"not_blank"`
	Role  string `json:"role,omitempty"`
}

type sessionResponse struct {
	Authenticated bool           `json:"authenticated"`
	Role          enums.AuthRole `json:"role,omitempty"`
}

func currentSession(ctx context.Context, svc SessionService) sessionResponse {
	return sessionResponse{Authenticated: svc.IsAuthenticated(ctx), Role: svc.Role(ctx)}
}

func SessionGet(svc SessionService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session unavailable"))
			return
		}
		responses.WriteSuccess(w, currentSession(r.Context(), svc))
	}
}

// SessionLogin stores the credential the identity provider issued.
func SessionLogin(svc SessionService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session unavailable"))
			return
		}

		var payload sessionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		role := enums.AuthRoleUser
		if payload.Role != "" {
			parsed, err := enums.ParseAuthRole(payload.Role)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role").WithDetails(map[string]string{"role": "must be one of user admin"}))
				return
			}
			role = parsed
		}

		if err := svc.Login(r.Context(), payload.Token, role); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store session"))
			return
		}
		responses.WriteSuccess(w, currentSession(r.Context(), svc))
	}
}

func SessionLogout(svc SessionService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session unavailable"))
			return
		}
		if err := svc.Logout(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear session"))
			return
		}
		responses.WriteSuccess(w, sessionResponse{})
	}
}
