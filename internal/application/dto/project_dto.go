package dto

import (
	"time"

	"github.com/tu-usuario/prospect-board/internal/domain/entity"
)

// UpdateProjectRequest actualización parcial de un proyecto.
// IsDone es el override manual: una vía independiente del agregado de
// subtareas, que no altera los registros de subtarea.
type UpdateProjectRequest struct {
	Link   *string `json:"link,omitempty"`
	IsDone *bool   `json:"is_done,omitempty"`
}

// ReorderRequest lista completa de ids en el nuevo orden de despliegue.
type ReorderRequest struct {
	OrderedIDs []string `json:"orderedIds"`
}

// ProjectResponse representación wire de un proyecto con su prospecto embebido.
type ProjectResponse struct {
	ID        string            `json:"id"`
	Prospect  ProspectResponse  `json:"prospect"`
	Link      string            `json:"link"`
	Progress  int               `json:"progress"`
	IsDone    bool              `json:"is_done"`
	Order     int               `json:"order"`
	Subtasks  []SubtaskResponse `json:"subtasks"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// ToEntity convierte la respuesta wire en la entidad de dominio.
func (r ProjectResponse) ToEntity() entity.Project {
	p := entity.Project{
		ID:        r.ID,
		Prospect:  r.Prospect.ToEntity(),
		Link:      r.Link,
		Progress:  r.Progress,
		IsDone:    r.IsDone,
		Order:     r.Order,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	for _, st := range r.Subtasks {
		p.Subtasks = append(p.Subtasks, st.ToEntity())
	}
	return p
}

// FromProject construye el DTO a partir de la entidad.
func FromProject(p entity.Project) ProjectResponse {
	out := ProjectResponse{
		ID:        p.ID,
		Prospect:  FromProspect(p.Prospect),
		Link:      p.Link,
		Progress:  p.Progress,
		IsDone:    p.IsDone,
		Order:     p.Order,
		Subtasks:  []SubtaskResponse{},
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	for _, st := range p.Subtasks {
		out.Subtasks = append(out.Subtasks, FromSubtask(st))
	}
	return out
}

// StatsResponse métricas del dashboard: prospectos totales, proyectos
// activos y revenue (suma de deal_value de los prospectos ganados).
type StatsResponse struct {
	TotalProspects int    `json:"totalProspects"`
	ActiveProjects int    `json:"activeProjects"`
	Revenue        string `json:"revenue"`
}
