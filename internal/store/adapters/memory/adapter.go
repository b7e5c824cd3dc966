// Package memory implementa el adapter en memoria del store.
//
// Pensado para tests y desarrollo local: cada Connect crea un store vacío
// independiente y nada sobrevive al proceso.
package memory

import (
	"context"

	"github.com/dropDatabas3/accounts/internal/domain/repository"
	store "github.com/dropDatabas3/accounts/internal/store"
)

func init() {
	store.RegisterAdapter(&memoryAdapter{})
}

type memoryAdapter struct{}

func (a *memoryAdapter) Name() string { return "memory" }

func (a *memoryAdapter) Connect(ctx context.Context, cfg store.AdapterConfig) (store.AdapterConnection, error) {
	return NewConnection(), nil
}

// Connection implementa store.AdapterConnection.
type Connection struct {
	users         *store.UserRepo
	organizations *store.OrganizationRepo
	merchants     *store.MerchantRepo
}

// NewConnection crea un store en memoria vacío.
func NewConnection() *Connection {
	return &Connection{
		users:         store.NewUserRepo(NewGateway[*repository.User](repository.UserMapper{})),
		organizations: store.NewOrganizationRepo(NewGateway[*repository.Organization](repository.OrganizationMapper{})),
		merchants:     store.NewMerchantRepo(NewGateway[*repository.Merchant](repository.MerchantMapper{})),
	}
}

func (c *Connection) Name() string                   { return "memory" }
func (c *Connection) Ping(ctx context.Context) error { return nil }
func (c *Connection) Close() error                   { return nil }

func (c *Connection) Users() repository.UserRepository                 { return c.users }
func (c *Connection) Organizations() repository.OrganizationRepository { return c.organizations }
func (c *Connection) Merchants() repository.MerchantRepository         { return c.merchants }
