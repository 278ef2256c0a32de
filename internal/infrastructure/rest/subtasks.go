package rest

import (
	"context"
	"net/http"
	"net/url"

	"github.com/tu-usuario/prospect-board/internal/application/dto"
	"github.com/tu-usuario/prospect-board/internal/domain/entity"
)

// SubtaskAPI implementa remote.SubtaskGateway.
type SubtaskAPI struct {
	c *Client
}

// Subtasks devuelve el gateway de subtareas.
func (c *Client) Subtasks() *SubtaskAPI { return &SubtaskAPI{c: c} }

// Get devuelve una subtarea por id.
func (a *SubtaskAPI) Get(ctx context.Context, id string) (entity.Subtask, error) {
	var out dto.SubtaskResponse
	if err := a.c.do(ctx, http.MethodGet, "/projects/subtasks/"+url.PathEscape(id), nil, &out); err != nil {
		return entity.Subtask{}, err
	}
	return out.ToEntity(), nil
}

// Create da de alta una subtarea colgada de un proyecto o de un prospecto.
func (a *SubtaskAPI) Create(ctx context.Context, in dto.CreateSubtaskRequest) (entity.Subtask, error) {
	var out dto.SubtaskResponse
	if err := a.c.do(ctx, http.MethodPost, "/projects/subtasks", in, &out); err != nil {
		return entity.Subtask{}, err
	}
	return out.ToEntity(), nil
}

// Update actualización parcial de la subtarea.
func (a *SubtaskAPI) Update(ctx context.Context, id string, in dto.UpdateSubtaskRequest) error {
	return a.c.do(ctx, http.MethodPut, "/projects/subtasks/"+url.PathEscape(id), in, nil)
}

// Delete elimina la subtarea.
func (a *SubtaskAPI) Delete(ctx context.Context, id string) error {
	return a.c.do(ctx, http.MethodDelete, "/projects/subtasks/"+url.PathEscape(id), nil, nil)
}
