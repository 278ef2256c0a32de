// Package remote define los contratos hacia el backend REST autoritativo.
// El cliente solo conoce estas interfaces; internal/infrastructure/rest las
// implementa sobre HTTP. La caché local es fuente de verdad de *despliegue*
// entre round-trips, nunca de persistencia.
package remote

import (
	"context"

	"github.com/tu-usuario/prospect-board/internal/application/dto"
	"github.com/tu-usuario/prospect-board/internal/domain/entity"
)

// AuthGateway autenticación contra el backend.
type AuthGateway interface {
	// Login valida credenciales y devuelve la sesión (token + usuario).
	// Cualquier respuesta no-2xx es un fallo de login.
	Login(ctx context.Context, username, password string) (entity.Session, error)
}

// ProspectGateway operaciones remotas sobre la colección de prospectos.
type ProspectGateway interface {
	List(ctx context.Context) ([]entity.Prospect, error)
	Get(ctx context.Context, noProject string) (entity.Prospect, error)
	Create(ctx context.Context, in dto.CreateProspectRequest) (entity.Prospect, error)
	// UpdateStatus persiste una transición de estado; el backend aplica los
	// efectos secundarios (creación del proyecto en WON / REAL_LOSS).
	UpdateStatus(ctx context.Context, noProject string, status entity.ProspectStatus) error
}

// ProjectGateway operaciones remotas sobre la colección de proyectos.
type ProjectGateway interface {
	List(ctx context.Context, isDone bool) ([]entity.Project, error)
	Get(ctx context.Context, id string) (entity.Project, error)
	Update(ctx context.Context, id string, in dto.UpdateProjectRequest) error
	// Reorder persiste la lista completa de ids en el nuevo orden, en una
	// sola llamada. Contrato best-effort: el llamador no revierte en fallo.
	Reorder(ctx context.Context, orderedIDs []string) error
}

// SubtaskGateway operaciones remotas sobre subtareas.
type SubtaskGateway interface {
	Get(ctx context.Context, id string) (entity.Subtask, error)
	Create(ctx context.Context, in dto.CreateSubtaskRequest) (entity.Subtask, error)
	Update(ctx context.Context, id string, in dto.UpdateSubtaskRequest) error
	Delete(ctx context.Context, id string) error
}

// StatsGateway métricas agregadas del dashboard.
type StatsGateway interface {
	Stats(ctx context.Context) (dto.StatsResponse, error)
}
