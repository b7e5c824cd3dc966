// Package auth contiene los controllers de login, refresh y sesión.
package auth

import (
	"context"
	"net/http"

	svc "github.com/dropDatabas3/accounts/internal/auth"
	"github.com/dropDatabas3/accounts/internal/http/dto"
	httperrors "github.com/dropDatabas3/accounts/internal/http/errors"
	"github.com/dropDatabas3/accounts/internal/http/helpers"
	"github.com/dropDatabas3/accounts/internal/http/middlewares"
	"github.com/dropDatabas3/accounts/internal/observability/logger"
)

// Service es lo que el controller necesita de auth.Service.
type Service interface {
	Login(ctx context.Context, in svc.Credentials) (*svc.LoginResult, error)
	Refresh(ctx context.Context, token string) (string, error)
}

// Controller maneja /v1/auth.
type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// Login maneja POST /v1/auth/login
func (c *Controller) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("AuthController.Login"))

	var req dto.LoginRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	res, err := c.service.Login(ctx, svc.Credentials{
		Email:          req.Email,
		Password:       req.Password,
		OrganizationID: req.OrganizationID,
	})
	if err != nil {
		log.Debug("login failed", logger.Err(err))
		httperrors.WriteError(w, err)
		return
	}

	w.Header().Set("Pragma", "no-cache")
	helpers.WriteJSON(w, http.StatusOK, dto.LoginResponse{
		AccessToken: res.AccessToken,
		TokenType:   res.TokenType,
		ExpiresIn:   res.ExpiresIn,
		ExpiresAt:   res.ExpiresAt,
		User:        dto.FromUser(res.User),
	})
}

// Refresh maneja POST /v1/auth/refresh
func (c *Controller) Refresh(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	tok, err := c.service.Refresh(r.Context(), req.AccessToken)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.RefreshResponse{AccessToken: tok, TokenType: "Bearer"})
}

// Me maneja GET /v1/auth/me. El operador no tiene usuario.
func (c *Controller) Me(w http.ResponseWriter, r *http.Request) {
	u := middlewares.GetUser(r.Context())
	if u == nil {
		httperrors.WriteError(w, httperrors.ErrForbidden.WithDetail("session token required"))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.FromUser(u))
}
