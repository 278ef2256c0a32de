package dto

import (
	"time"

	"github.com/tu-usuario/prospect-board/internal/domain/entity"
)

// CreateSubtaskRequest alta de subtarea. Exactamente uno de ProjectID /
// ProspectID debe venir informado (el padre).
type CreateSubtaskRequest struct {
	ProjectID   string    `json:"projectId,omitempty"`
	ProspectID  string    `json:"prospectId,omitempty"`
	Name        string    `json:"name"`
	Deadline    time.Time `json:"deadline"`
	Description string    `json:"description,omitempty"`
	Link        string    `json:"link,omitempty"`
}

// UpdateSubtaskRequest actualización parcial de una subtarea.
type UpdateSubtaskRequest struct {
	Name        *string    `json:"name,omitempty"`
	Description *string    `json:"description,omitempty"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	Progress    *int       `json:"progress,omitempty"`
	Link        *string    `json:"link,omitempty"`
}

// CreatedByResponse autor de la subtarea.
type CreatedByResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// SubtaskResponse representación wire de una subtarea.
type SubtaskResponse struct {
	ID          string            `json:"id"`
	ProjectID   string            `json:"projectId,omitempty"`
	ProspectID  string            `json:"prospectId,omitempty"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Deadline    time.Time         `json:"deadline"`
	Progress    int               `json:"progress"`
	Link        string            `json:"link"`
	CreatedBy   CreatedByResponse `json:"createdBy"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// ToEntity convierte la respuesta wire en la entidad de dominio.
func (r SubtaskResponse) ToEntity() entity.Subtask {
	return entity.Subtask{
		ID:          r.ID,
		ProjectID:   r.ProjectID,
		ProspectID:  r.ProspectID,
		Name:        r.Name,
		Description: r.Description,
		Deadline:    r.Deadline,
		Progress:    entity.Checkpoint(r.Progress),
		Link:        r.Link,
		CreatedBy:   entity.CreatedBy{ID: r.CreatedBy.ID, Username: r.CreatedBy.Username},
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// FromSubtask construye el DTO a partir de la entidad.
func FromSubtask(st entity.Subtask) SubtaskResponse {
	return SubtaskResponse{
		ID:          st.ID,
		ProjectID:   st.ProjectID,
		ProspectID:  st.ProspectID,
		Name:        st.Name,
		Description: st.Description,
		Deadline:    st.Deadline,
		Progress:    int(st.Progress),
		Link:        st.Link,
		CreatedBy:   CreatedByResponse{ID: st.CreatedBy.ID, Username: st.CreatedBy.Username},
		CreatedAt:   st.CreatedAt,
		UpdatedAt:   st.UpdatedAt,
	}
}
