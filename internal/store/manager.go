package store

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/dropDatabas3/accounts/internal/domain/repository"
	"github.com/dropDatabas3/accounts/internal/observability/logger"
)

// Manager mantiene la conexión del adapter configurado. La conexión se abre
// de forma lazy en el primer uso; llamadas concurrentes comparten un único
// Connect vía singleflight. Un Connect fallido no queda cacheado.
type Manager struct {
	cfg AdapterConfig
	sf  singleflight.Group
	log *zap.Logger

	mu       sync.RWMutex
	conn     AdapterConnection
	openedAt time.Time
	closed   bool
}

// ManagerStats estado de la conexión.
type ManagerStats struct {
	Driver    string
	Connected bool
	OpenedAt  time.Time
}

// NewManager crea un Manager sin conectar.
func NewManager(cfg AdapterConfig) *Manager {
	return &Manager{
		cfg: cfg,
		log: logger.Named("store").With(logger.Backend(cfg.Name)),
	}
}

// Open conecta si hace falta y retorna la conexión activa.
func (m *Manager) Open(ctx context.Context) (AdapterConnection, error) {
	m.mu.RLock()
	conn, closed := m.conn, m.closed
	m.mu.RUnlock()
	if closed {
		return nil, repository.ErrNoDatabase
	}
	if conn != nil {
		return conn, nil
	}

	v, err, _ := m.sf.Do(m.cfg.Name, func() (any, error) {
		m.mu.RLock()
		existing := m.conn
		m.mu.RUnlock()
		if existing != nil {
			return existing, nil
		}

		c, err := OpenAdapter(ctx, m.cfg)
		if err != nil {
			m.log.Error("connect failed", logger.Err(err))
			return nil, err
		}

		m.mu.Lock()
		m.conn, m.openedAt = c, time.Now()
		m.mu.Unlock()
		m.log.Info("connected")
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(AdapterConnection), nil
}

// Users atajo para Open + Users.
func (m *Manager) Users(ctx context.Context) (repository.UserRepository, error) {
	c, err := m.Open(ctx)
	if err != nil {
		return nil, err
	}
	return c.Users(), nil
}

func (m *Manager) Organizations(ctx context.Context) (repository.OrganizationRepository, error) {
	c, err := m.Open(ctx)
	if err != nil {
		return nil, err
	}
	return c.Organizations(), nil
}

func (m *Manager) Merchants(ctx context.Context) (repository.MerchantRepository, error) {
	c, err := m.Open(ctx)
	if err != nil {
		return nil, err
	}
	return c.Merchants(), nil
}

// Ping verifica la conexión (conecta si no estaba conectado).
func (m *Manager) Ping(ctx context.Context) error {
	c, err := m.Open(ctx)
	if err != nil {
		return err
	}
	return c.Ping(ctx)
}

// Stats retorna el estado actual sin conectar.
func (m *Manager) Stats() ManagerStats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return ManagerStats{Driver: m.cfg.Name, Connected: m.conn != nil, OpenedAt: m.openedAt}
}

// Close cierra la conexión. Después de Close, Open retorna ErrNoDatabase.
func (m *Manager) Close() error {
	m.mu.Lock()
	conn := m.conn
	m.conn, m.closed = nil, true
	m.mu.Unlock()
	if conn == nil {
		return nil
	}
	return conn.Close()
}
