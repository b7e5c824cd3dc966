package accounts

import (
	"context"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	svc "github.com/dropDatabas3/accounts/internal/accounts"
	"github.com/dropDatabas3/accounts/internal/domain/repository"
	"github.com/dropDatabas3/accounts/internal/http/dto"
	httperrors "github.com/dropDatabas3/accounts/internal/http/errors"
	"github.com/dropDatabas3/accounts/internal/http/helpers"
	"github.com/dropDatabas3/accounts/internal/http/middlewares"
	"github.com/dropDatabas3/accounts/internal/observability/logger"
)

// MerchantsController maneja /v1/organizations/{orgID}/merchants y
// /v1/merchants/{merchantID}.
type MerchantsController struct {
	service svc.MerchantService
}

func NewMerchantsController(service svc.MerchantService) *MerchantsController {
	return &MerchantsController{service: service}
}

// List maneja GET /v1/organizations/{orgID}/merchants
func (c *MerchantsController) List(w http.ResponseWriter, r *http.Request) {
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
	helpers.WriteJSON(w, http.StatusOK, dto.MapList(page.Items, page.Total, p.Limit, p.Offset, dto.FromMerchant))
}

// Create maneja POST /v1/organizations/{orgID}/merchants
func (c *MerchantsController) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("MerchantsController.Create"))

	orgID, ok := scopedOrganization(w, r)
	if !ok {
		return
	}
	var req dto.CreateMerchantRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	m, err := c.service.Create(ctx, svc.CreateMerchantInput{
		OrganizationID: orgID,
		Name:           req.Name,
		Description:    req.Description,
		CountryCode:    req.CountryCode,
		Currency:       req.Currency,
		PaymentMethods: req.PaymentMethods,
		Metadata:       req.Metadata,
	})
	if err != nil {
		log.Debug("create merchant failed", logger.Err(err))
		httperrors.WriteError(w, err)
		return
	}
	w.Header().Set("Location", "/v1/merchants/"+m.ID)
	helpers.WriteJSON(w, http.StatusCreated, dto.FromMerchant(m))
}

// Get maneja GET /v1/merchants/{merchantID}
func (c *MerchantsController) Get(w http.ResponseWriter, r *http.Request) {
	m, ok := c.load(w, r)
	if !ok {
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.FromMerchant(m))
}

// AddPaymentMethod maneja POST /v1/merchants/{merchantID}/payment-methods
func (c *MerchantsController) AddPaymentMethod(w http.ResponseWriter, r *http.Request) {
	m, ok := c.load(w, r)
	if !ok {
		return
	}
	var req dto.PaymentMethodRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	m, err := c.service.AddPaymentMethod(r.Context(), m.ID, req.Method)
	c.respond(w, m, err)
}

// RemovePaymentMethod maneja DELETE /v1/merchants/{merchantID}/payment-methods/{method}
func (c *MerchantsController) RemovePaymentMethod(w http.ResponseWriter, r *http.Request) {
	m, ok := c.load(w, r)
	if !ok {
		return
	}
	method, err := url.PathUnescape(chi.URLParam(r, ParamMethod))
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrInvalidParameter.WithDetail("method"))
		return
	}
	m, err = c.service.RemovePaymentMethod(r.Context(), m.ID, method)
	c.respond(w, m, err)
}

// IssueAPIKey maneja POST /v1/merchants/{merchantID}/api-keys. Es la única
// respuesta que trae la key en claro.
func (c *MerchantsController) IssueAPIKey(w http.ResponseWriter, r *http.Request) {
	m, ok := c.load(w, r)
	if !ok {
		return
	}
	key, m, err := c.service.IssueAPIKey(r.Context(), m.ID)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	w.Header().Set("Pragma", "no-cache")
	helpers.WriteJSON(w, http.StatusCreated, dto.IssuedAPIKeyResponse{APIKey: key, Merchant: dto.FromMerchant(m)})
}

// RevokeAPIKey maneja POST /v1/merchants/{merchantID}/api-keys/revoke. La key
// va en el body para no dejarla en logs de acceso.
func (c *MerchantsController) RevokeAPIKey(w http.ResponseWriter, r *http.Request) {
	m, ok := c.load(w, r)
	if !ok {
		return
	}
	var req dto.RevokeAPIKeyRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	m, err := c.service.RevokeAPIKey(r.Context(), m.ID, req.APIKey)
	c.respond(w, m, err)
}

// Activate maneja POST /v1/merchants/{merchantID}/activate (operador).
func (c *MerchantsController) Activate(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, c.service.Activate)
}

// Suspend maneja POST /v1/merchants/{merchantID}/suspend (operador).
func (c *MerchantsController) Suspend(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, c.service.Suspend)
}

// Review maneja POST /v1/merchants/{merchantID}/review (operador).
func (c *MerchantsController) Review(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, c.service.PutUnderReview)
}

// load trae el merchant de la ruta. Uno de otra organización es 404.
func (c *MerchantsController) load(w http.ResponseWriter, r *http.Request) (*repository.Merchant, bool) {
	id := chi.URLParam(r, ParamMerchantID)
	m, err := c.service.Get(r.Context(), id)
	if err != nil {
		httperrors.WriteError(w, err)
		return nil, false
	}
	if !middlewares.CanAccessOrganization(r.Context(), m.OrganizationID) {
		httperrors.WriteError(w, repository.NotFound("Merchant", id))
		return nil, false
	}
	return m, true
}

func (c *MerchantsController) transition(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, id string) (*repository.Merchant, error)) {
	m, ok := c.load(w, r)
	if !ok {
		return
	}
	m, err := apply(r.Context(), m.ID)
	c.respond(w, m, err)
}

func (c *MerchantsController) respond(w http.ResponseWriter, m *repository.Merchant, err error) {
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.FromMerchant(m))
}
