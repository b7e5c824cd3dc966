// Package accounts contiene los controllers de organizaciones, usuarios y
// merchants.
package accounts

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	svc "github.com/dropDatabas3/accounts/internal/accounts"
	"github.com/dropDatabas3/accounts/internal/domain/repository"
	httperrors "github.com/dropDatabas3/accounts/internal/http/errors"
	"github.com/dropDatabas3/accounts/internal/http/middlewares"
)

// Parámetros de ruta.
const (
	ParamOrganizationID = "orgID"
	ParamUserID         = "userID"
	ParamMerchantID     = "merchantID"
	ParamMethod         = "method"
)

// Controllers agrupa los controllers del dominio accounts.
type Controllers struct {
	Organizations *OrganizationsController
	Users         *UsersController
	Merchants     *MerchantsController
}

// NewControllers crea el agregador de controllers accounts.
func NewControllers(orgs svc.OrganizationService, users svc.UserService, merchants svc.MerchantService) *Controllers {
	return &Controllers{
		Organizations: NewOrganizationsController(orgs),
		Users:         NewUsersController(users),
		Merchants:     NewMerchantsController(merchants),
	}
}

// scopedOrganization lee {orgID} y verifica que el caller pueda verla. Fuera
// de alcance responde 404 para no revelar qué IDs existen.
func scopedOrganization(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, ParamOrganizationID)
	if !middlewares.CanAccessOrganization(r.Context(), id) {
		httperrors.WriteError(w, repository.NotFound("Organization", id))
		return "", false
	}
	return id, true
}
