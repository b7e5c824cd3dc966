package helpers

import (
	"net/http"
	"strconv"

	"github.com/dropDatabas3/accounts/internal/accounts"
	httperrors "github.com/dropDatabas3/accounts/internal/http/errors"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ListParams lee ?limit=&offset=&status= con DefaultPageSize y tope MaxPageSize.
func ListParams(r *http.Request) (accounts.ListParams, error) {
	q := r.URL.Query()
	p := accounts.ListParams{Limit: DefaultPageSize, Status: q.Get("status")}

	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > MaxPageSize {
			return p, httperrors.ErrInvalidParameter.WithDetail("limit must be between 1 and 100")
		}
		p.Limit = n
	}
	if s := q.Get("offset"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return p, httperrors.ErrInvalidParameter.WithDetail("offset must be a non-negative integer")
		}
		p.Offset = n
	}
	return p, nil
}
