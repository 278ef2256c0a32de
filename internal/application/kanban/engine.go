// Package kanban implementa la máquina de estados del prospecto sobre la
// caché local: aplicación optimista, confirmación remota y rollback en fallo.
//
// Las mutaciones sobre un mismo prospecto se serializan con un sello de
// versión por id: el rollback de una transición vieja nunca pisa un estado
// optimista más nuevo del mismo prospecto.
package kanban

import (
	"context"
	"fmt"
	"sync"

	"github.com/tu-usuario/prospect-board/internal/application/store"
	"github.com/tu-usuario/prospect-board/internal/domain"
	"github.com/tu-usuario/prospect-board/internal/domain/entity"
	"github.com/tu-usuario/prospect-board/internal/domain/remote"
	"github.com/tu-usuario/prospect-board/pkg/logger"
)

// Engine consume gestos de arrastre sobre la caché de prospectos.
type Engine struct {
	mu      sync.Mutex
	seq     map[string]uint64 // sello de la mutación más reciente por id
	cache   *store.Store[entity.Prospect]
	gateway remote.ProspectGateway
	log     *logger.Logger
}

// New construye el motor sobre la caché de prospectos dada.
func New(cache *store.Store[entity.Prospect], gateway remote.ProspectGateway, log *logger.Logger) *Engine {
	return &Engine{
		seq:     make(map[string]uint64),
		cache:   cache,
		gateway: gateway,
		log:     log.Component("kanban"),
	}
}

// Move aplica una transición de arrastre (id, destino):
//
//  1. Prospecto ausente o destino igual al estado actual: no-op.
//  2. Se toma snapshot del estado para rollback.
//  3. El nuevo estado se aplica a la caché de inmediato (optimista).
//  4. Se confirma contra el backend.
//  5. Éxito: nada más que hacer.
//  6. Fallo: se restaura el snapshot, solo si esta sigue siendo la mutación
//     más reciente del prospecto y el prospecto sigue cacheado.
//
// Entre estados de tablero cualquier transición está permitida; la regla de
// negocio, si existe, la impone el backend. REAL_LOSS no es alcanzable por
// arrastre.
func (e *Engine) Move(ctx context.Context, id string, dest entity.ProspectStatus) error {
	if !dest.BoardVisible() {
		return fmt.Errorf("%w: %q no es destino de arrastre", domain.ErrInvalidStatus, dest)
	}

	e.mu.Lock()
	prospect, ok := e.cache.Get(id)
	if !ok || prospect.Status == dest {
		e.mu.Unlock()
		return nil
	}
	snapshot := prospect.Status
	stamp := e.seq[id] + 1
	e.seq[id] = stamp
	e.cache.Update(id, func(p *entity.Prospect) { p.Status = dest })
	e.mu.Unlock()

	if err := e.gateway.UpdateStatus(ctx, id, dest); err != nil {
		e.rollback(id, stamp, snapshot)
		return err
	}
	return nil
}

// rollback restaura el snapshot si ninguna mutación posterior lo invalidó.
// Una finalización tardía para un prospecto ya evicto se descarta.
func (e *Engine) rollback(id string, stamp uint64, snapshot entity.ProspectStatus) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.seq[id] != stamp {
		e.log.Debug().Str("no_project", id).Msg("rollback obsoleto descartado")
		return
	}
	if !e.cache.Update(id, func(p *entity.Prospect) { p.Status = snapshot }) {
		e.log.Debug().Str("no_project", id).Msg("rollback sobre prospecto evicto descartado")
		return
	}
	e.log.Warn().Str("no_project", id).Str("restaurado", string(snapshot)).Msg("transición revertida")
}

// MarkRealLoss ejecuta la transición explícita LOSS → REAL_LOSS. Solo es
// válida desde LOSS; la confirmación del usuario ocurre antes, en la vista.
// No hay aplicación optimista: se espera la confirmación remota (el backend
// crea además el proyecto completado) y recién entonces el prospecto sale de
// las colecciones visibles del tablero.
func (e *Engine) MarkRealLoss(ctx context.Context, id string) error {
	prospect, ok := e.cache.Get(id)
	if !ok {
		return domain.ErrNotFound
	}
	if prospect.Status != entity.StatusLoss {
		return fmt.Errorf("%w: real loss solo desde LOSS, no desde %s", domain.ErrConflict, prospect.Status)
	}

	e.mu.Lock()
	stamp := e.seq[id] + 1
	e.seq[id] = stamp
	e.mu.Unlock()

	if err := e.gateway.UpdateStatus(ctx, id, entity.StatusRealLoss); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.seq[id] == stamp {
		e.cache.Remove(id)
	}
	e.log.Info().Str("no_project", id).Msg("prospecto cerrado como real loss")
	return nil
}
