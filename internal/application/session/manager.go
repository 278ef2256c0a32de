// Package session es el dueño del token de autenticación y de la identidad
// del usuario actual. Política fail-closed: cualquier 401/403 observado en
// cualquier respuesta remota derriba la sesión completa, sin reintentos y
// sin distinguir entre credencial puntual o global expirada.
package session

import (
	"context"
	"sync"

	"github.com/tu-usuario/prospect-board/internal/domain/entity"
	"github.com/tu-usuario/prospect-board/internal/domain/remote"
	"github.com/tu-usuario/prospect-board/pkg/logger"
)

// Store persiste la sesión entre reinicios (el análogo de localStorage).
// La ausencia de token o de usuario al cargar significa "no autenticado".
type Store interface {
	Load() (entity.Session, error)
	Save(s entity.Session) error
	Clear() error
}

// Manager gestiona el ciclo de vida de la única sesión del proceso.
type Manager struct {
	mu      sync.RWMutex
	current entity.Session
	gateway remote.AuthGateway
	store   Store
	log     *logger.Logger
}

// NewManager construye el gestor y restaura la sesión persistida si existe.
// Una sesión incompleta en disco (token sin usuario o viceversa) se descarta.
func NewManager(gateway remote.AuthGateway, store Store, log *logger.Logger) *Manager {
	m := &Manager{gateway: gateway, store: store, log: log.Component("session")}
	if store != nil {
		saved, err := store.Load()
		if err != nil {
			m.log.Warn().Err(err).Msg("no se pudo restaurar la sesión persistida")
		} else if saved.Authenticated() {
			m.current = saved
		}
	}
	return m
}

// Current devuelve la sesión vigente (vacía si no hay login).
func (m *Manager) Current() entity.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Token implementa rest.TokenProvider: la credencial que viaja en cada
// llamada saliente. Vacío cuando no hay sesión (las llamadas salen sin auth).
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current.Token
}

// Login autentica contra el backend. En fallo no muta la sesión.
func (m *Manager) Login(ctx context.Context, username, password string) error {
	sess, err := m.gateway.Login(ctx, username, password)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.current = sess
	m.mu.Unlock()

	if m.store != nil {
		if err := m.store.Save(sess); err != nil {
			m.log.Warn().Err(err).Msg("no se pudo persistir la sesión")
		}
	}
	m.log.Info().Str("username", sess.User.Username).Str("role", string(sess.User.Role)).Msg("sesión iniciada")
	return nil
}

// Logout descarta token y usuario. Idempotente: limpiar una sesión ya vacía
// es un no-op.
func (m *Manager) Logout() {
	m.mu.Lock()
	wasAuthenticated := m.current.Authenticated()
	m.current = entity.Session{}
	m.mu.Unlock()

	if !wasAuthenticated {
		return
	}
	if m.store != nil {
		if err := m.store.Clear(); err != nil {
			m.log.Warn().Err(err).Msg("no se pudo limpiar la sesión persistida")
		}
	}
	m.log.Info().Msg("sesión cerrada")
}

// OnUnauthorized implementa rest.UnauthorizedObserver: el cliente HTTP lo
// invoca ante cualquier 401/403 entrante, sea de una lectura o de una
// mutación, y sin importar qué componente originó la llamada.
func (m *Manager) OnUnauthorized(status int) {
	m.log.Warn().Int("status", status).Msg("respuesta no autorizada; cerrando sesión")
	m.Logout()
}
