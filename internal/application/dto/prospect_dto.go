package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tu-usuario/prospect-board/internal/domain/entity"
)

// CreateProspectRequest alta de prospecto desde el tablero.
// Status vacío equivale a LEAD.
type CreateProspectRequest struct {
	NoProject   string          `json:"no_project"`
	NameProject string          `json:"name_project"`
	ClientName  string          `json:"client_name"`
	ContactName string          `json:"contact_name"`
	DealValue   decimal.Decimal `json:"deal_value"`
	Status      string          `json:"status,omitempty"`
}

// UpdateProspectRequest actualización parcial; los punteros distinguen
// "no enviado" de "enviado vacío".
type UpdateProspectRequest struct {
	NameProject *string          `json:"name_project,omitempty"`
	ClientName  *string          `json:"client_name,omitempty"`
	ContactName *string          `json:"contact_name,omitempty"`
	DealValue   *decimal.Decimal `json:"deal_value,omitempty"`
	Status      *string          `json:"status,omitempty"`
}

// ProjectRefResponse resumen del proyecto asociado, embebido en el detalle.
type ProjectRefResponse struct {
	ID     string `json:"id"`
	IsDone bool   `json:"is_done"`
}

// ProspectResponse representación wire de un prospecto.
type ProspectResponse struct {
	NoProject   string              `json:"no_project"`
	NameProject string              `json:"name_project"`
	ClientName  string              `json:"client_name"`
	ContactName string              `json:"contact_name"`
	Status      string              `json:"status"`
	DealValue   decimal.Decimal     `json:"deal_value"`
	Project     *ProjectRefResponse `json:"project,omitempty"`
	Subtasks    []SubtaskResponse   `json:"subtasks,omitempty"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

// ToEntity convierte la respuesta wire en la entidad de dominio.
func (r ProspectResponse) ToEntity() entity.Prospect {
	p := entity.Prospect{
		NoProject:   r.NoProject,
		NameProject: r.NameProject,
		ClientName:  r.ClientName,
		ContactName: r.ContactName,
		Status:      entity.ProspectStatus(r.Status),
		DealValue:   r.DealValue,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.Project != nil {
		p.Project = &entity.ProjectRef{ID: r.Project.ID, IsDone: r.Project.IsDone}
	}
	for _, st := range r.Subtasks {
		p.Subtasks = append(p.Subtasks, st.ToEntity())
	}
	return p
}

// FromProspect construye el DTO a partir de la entidad.
func FromProspect(p entity.Prospect) ProspectResponse {
	out := ProspectResponse{
		NoProject:   p.NoProject,
		NameProject: p.NameProject,
		ClientName:  p.ClientName,
		ContactName: p.ContactName,
		Status:      string(p.Status),
		DealValue:   p.DealValue,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.Project != nil {
		out.Project = &ProjectRefResponse{ID: p.Project.ID, IsDone: p.Project.IsDone}
	}
	for _, st := range p.Subtasks {
		out.Subtasks = append(out.Subtasks, FromSubtask(st))
	}
	return out
}
