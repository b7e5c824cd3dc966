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

// OrganizationsController maneja /v1/organizations.
type OrganizationsController struct {
	service svc.OrganizationService
}

func NewOrganizationsController(service svc.OrganizationService) *OrganizationsController {
	return &OrganizationsController{service: service}
}

// List maneja GET /v1/organizations (operador).
func (c *OrganizationsController) List(w http.ResponseWriter, r *http.Request) {
	p, err := helpers.ListParams(r)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	page, err := c.service.List(r.Context(), p)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.MapList(page.Items, page.Total, p.Limit, p.Offset, dto.FromOrganization))
}

// Create maneja POST /v1/organizations (operador).
func (c *OrganizationsController) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("OrganizationsController.Create"))

	var req dto.CreateOrganizationRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	org, err := c.service.Create(ctx, svc.CreateOrganizationInput{
		Name:     req.Name,
		Domain:   req.Domain,
		Metadata: req.Metadata,
	})
	if err != nil {
		log.Debug("create organization failed", logger.Err(err))
		httperrors.WriteError(w, err)
		return
	}
	w.Header().Set("Location", "/v1/organizations/"+org.ID)
	helpers.WriteJSON(w, http.StatusCreated, dto.FromOrganization(org))
}

// Get maneja GET /v1/organizations/{orgID}
func (c *OrganizationsController) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := scopedOrganization(w, r)
	if !ok {
		return
	}
	org, err := c.service.Get(r.Context(), id)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.FromOrganization(org))
}

// Update maneja PATCH /v1/organizations/{orgID}
func (c *OrganizationsController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := scopedOrganization(w, r)
	if !ok {
		return
	}
	var req dto.UpdateOrganizationRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	org, err := c.service.Update(r.Context(), id, svc.UpdateOrganizationInput{
		Name:     req.Name,
		Domain:   req.Domain,
		Metadata: req.Metadata,
	})
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.FromOrganization(org))
}

// Activate maneja POST /v1/organizations/{orgID}/activate (operador).
func (c *OrganizationsController) Activate(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, c.service.Activate)
}

// Suspend maneja POST /v1/organizations/{orgID}/suspend (operador).
func (c *OrganizationsController) Suspend(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, c.service.Suspend)
}

// Reactivate maneja POST /v1/organizations/{orgID}/reactivate (operador).
func (c *OrganizationsController) Reactivate(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, c.service.Reactivate)
}

func (c *OrganizationsController) transition(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, id string) (*repository.Organization, error)) {
	org, err := apply(r.Context(), chi.URLParam(r, ParamOrganizationID))
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.FromOrganization(org))
}
