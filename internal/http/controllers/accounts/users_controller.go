package accounts

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	svc "github.com/dropDatabas3/accounts/internal/accounts"
	"github.com/dropDatabas3/accounts/internal/domain/repository"
	"github.com/dropDatabas3/accounts/internal/http/dto"
	httperrors "github.com/dropDatabas3/accounts/internal/http/errors"
	"github.com/dropDatabas3/accounts/internal/http/helpers"
	"github.com/dropDatabas3/accounts/internal/observability/logger"
)

// UsersController maneja /v1/organizations/{orgID}/users.
type UsersController struct {
	service svc.UserService
}

func NewUsersController(service svc.UserService) *UsersController {
	return &UsersController{service: service}
}

// List maneja GET /v1/organizations/{orgID}/users
func (c *UsersController) List(w http.ResponseWriter, r *http.Request) {
	orgID, ok := scopedOrganization(w, r)
	if !ok {
		return
	}
	p, err := helpers.ListParams(r)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	page, err := c.service.List(r.Context(), orgID, p)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.MapList(page.Items, page.Total, p.Limit, p.Offset, dto.FromUser))
}

// Create maneja POST /v1/organizations/{orgID}/users
func (c *UsersController) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("UsersController.Create"))

	orgID, ok := scopedOrganization(w, r)
	if !ok {
		return
	}
	var req dto.CreateUserRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	u, err := c.service.Create(ctx, svc.CreateUserInput{
		OrganizationID: orgID,
		Email:          req.Email,
		Password:       req.Password,
		Name:           req.Name,
	})
	if err != nil {
		log.Debug("create user failed", logger.Err(err))
		httperrors.WriteError(w, err)
		return
	}
	w.Header().Set("Location", "/v1/organizations/"+orgID+"/users/"+u.ID)
	helpers.WriteJSON(w, http.StatusCreated, dto.FromUser(u))
}

// Get maneja GET /v1/organizations/{orgID}/users/{userID}
func (c *UsersController) Get(w http.ResponseWriter, r *http.Request) {
	u, ok := c.load(w, r)
	if !ok {
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.FromUser(u))
}

// Activate maneja POST .../users/{userID}/activate
func (c *UsersController) Activate(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, c.service.Activate)
}

// Deactivate maneja POST .../users/{userID}/deactivate
func (c *UsersController) Deactivate(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, c.service.Deactivate)
}

// Suspend maneja POST .../users/{userID}/suspend
func (c *UsersController) Suspend(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, c.service.Suspend)
}

// load trae el usuario de la ruta. Un usuario de otra organización es 404.
func (c *UsersController) load(w http.ResponseWriter, r *http.Request) (*repository.User, bool) {
	orgID, ok := scopedOrganization(w, r)
	if !ok {
		return nil, false
	}
	id := chi.URLParam(r, ParamUserID)
	u, err := c.service.Get(r.Context(), id)
	if err != nil {
		httperrors.WriteError(w, err)
		return nil, false
	}
	if u.OrganizationID != orgID {
		httperrors.WriteError(w, repository.NotFound("User", id))
		return nil, false
	}
	return u, true
}

func (c *UsersController) transition(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, id string) (*repository.User, error)) {
	u, ok := c.load(w, r)
	if !ok {
		return
	}
	u, err := apply(r.Context(), u.ID)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.FromUser(u))
}
