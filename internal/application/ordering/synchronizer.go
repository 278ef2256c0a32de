// Package ordering mantiene el orden de despliegue de los proyectos en curso.
// Contrato deliberadamente más laxo que el del kanban: un desorden transitorio
// es solo cosmético, por lo que el orden local se aplica incondicionalmente y
// la persistencia remota es best-effort, sin rollback y sin reintentos.
package ordering

import (
	"context"

	"github.com/tu-usuario/prospect-board/internal/application/store"
	"github.com/tu-usuario/prospect-board/internal/domain/entity"
	"github.com/tu-usuario/prospect-board/internal/domain/remote"
	"github.com/tu-usuario/prospect-board/pkg/logger"
)

// Synchronizer consume gestos de reordenamiento sobre la caché de proyectos.
type Synchronizer struct {
	cache   *store.Store[entity.Project]
	gateway remote.ProjectGateway
	log     *logger.Logger
}

// New construye el sincronizador sobre la caché de proyectos dada.
func New(cache *store.Store[entity.Project], gateway remote.ProjectGateway, log *logger.Logger) *Synchronizer {
	return &Synchronizer{cache: cache, gateway: gateway, log: log.Component("ordering")}
}

// Move reubica el proyecto de source a dest (semántica array-move), aplica la
// nueva secuencia a la caché de inmediato y persiste la lista completa de ids
// en una sola llamada. Un fallo de persistencia solo se registra: el orden
// local no se revierte. Devuelve los ids en el nuevo orden.
func (s *Synchronizer) Move(ctx context.Context, source, dest int) []string {
	if !s.cache.Move(source, dest) {
		s.log.Debug().Int("source", source).Int("dest", dest).Msg("reordenamiento fuera de rango ignorado")
		return s.cache.IDs()
	}

	orderedIDs := s.cache.IDs()
	if err := s.gateway.Reorder(ctx, orderedIDs); err != nil {
		// Solo log; sin notificación al usuario, sin revert, sin retry.
		s.log.Warn().Err(err).Msg("no se pudo persistir el orden de proyectos")
	}
	return orderedIDs
}
