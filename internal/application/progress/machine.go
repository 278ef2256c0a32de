// Package progress gobierna los checkpoints de subtarea y su agregación en
// el proyecto padre. A diferencia del kanban no hay aplicación optimista: el
// agregado (progress, is_done) lo computa el backend, así que cada mutación
// espera el round-trip y refetchea el proyecto para observar el agregado
// correcto.
package progress

import (
	"context"
	"fmt"

	"github.com/tu-usuario/prospect-board/internal/application/dto"
	"github.com/tu-usuario/prospect-board/internal/application/store"
	"github.com/tu-usuario/prospect-board/internal/domain"
	"github.com/tu-usuario/prospect-board/internal/domain/entity"
	"github.com/tu-usuario/prospect-board/internal/domain/remote"
	"github.com/tu-usuario/prospect-board/pkg/logger"
)

// Machine aplica mutaciones de subtarea y refresca el agregado del padre.
type Machine struct {
	projects *store.Store[entity.Project]
	subtasks remote.SubtaskGateway
	gateway  remote.ProjectGateway
	log      *logger.Logger
}

// New construye la máquina sobre la caché de proyectos dada.
func New(projects *store.Store[entity.Project], subtasks remote.SubtaskGateway, gateway remote.ProjectGateway, log *logger.Logger) *Machine {
	return &Machine{projects: projects, subtasks: subtasks, gateway: gateway, log: log.Component("progress")}
}

// SetCheckpoint fija el progreso de la subtarea en uno de los seis valores.
// Cualquier checkpoint es alcanzable desde cualquier otro (una subtarea puede
// retroceder, p.ej. DONE → IFA). Valores intermedios se rechazan sin llamada
// remota.
func (m *Machine) SetCheckpoint(ctx context.Context, projectID, subtaskID string, cp entity.Checkpoint) error {
	if !cp.Valid() {
		return fmt.Errorf("%w: %d", domain.ErrInvalidCheckpoint, int(cp))
	}
	v := int(cp)
	if err := m.subtasks.Update(ctx, subtaskID, dto.UpdateSubtaskRequest{Progress: &v}); err != nil {
		return err
	}
	return m.refreshParent(ctx, projectID)
}

// CreateSubtask crea la subtarea y refresca el padre para observar el nuevo
// agregado (un alta arranca en NEW=0, lo que puede bajar el porcentaje).
func (m *Machine) CreateSubtask(ctx context.Context, in dto.CreateSubtaskRequest) error {
	if _, err := m.subtasks.Create(ctx, in); err != nil {
		return err
	}
	if in.ProjectID != "" {
		return m.refreshParent(ctx, in.ProjectID)
	}
	return nil
}

// UpdateSubtask actualización general (nombre, descripción, deadline, link,
// progreso) seguida del refetch del padre.
func (m *Machine) UpdateSubtask(ctx context.Context, projectID, subtaskID string, in dto.UpdateSubtaskRequest) error {
	if in.Progress != nil && !entity.Checkpoint(*in.Progress).Valid() {
		return fmt.Errorf("%w: %d", domain.ErrInvalidCheckpoint, *in.Progress)
	}
	if err := m.subtasks.Update(ctx, subtaskID, in); err != nil {
		return err
	}
	return m.refreshParent(ctx, projectID)
}

// DeleteSubtask elimina la subtarea y refresca el padre.
func (m *Machine) DeleteSubtask(ctx context.Context, projectID, subtaskID string) error {
	if err := m.subtasks.Delete(ctx, subtaskID); err != nil {
		return err
	}
	return m.refreshParent(ctx, projectID)
}

// refreshParent refetchea el proyecto y lo vuelca en la caché. Si el proyecto
// salió de la caché mientras la llamada estaba en vuelo (vista descartada),
// el resultado se descarta en lugar de resucitarlo.
func (m *Machine) refreshParent(ctx context.Context, projectID string) error {
	fresh, err := m.gateway.Get(ctx, projectID)
	if err != nil {
		return err
	}
	if _, ok := m.projects.Get(projectID); !ok {
		m.log.Debug().Str("project_id", projectID).Msg("refetch sobre proyecto evicto descartado")
		return nil
	}
	m.projects.Upsert(fresh)
	return nil
}
