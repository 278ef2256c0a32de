package rest

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/tu-usuario/prospect-board/internal/application/dto"
	"github.com/tu-usuario/prospect-board/internal/domain/entity"
)

// ProjectAPI implementa remote.ProjectGateway.
type ProjectAPI struct {
	c *Client
}

// Projects devuelve el gateway de proyectos.
func (c *Client) Projects() *ProjectAPI { return &ProjectAPI{c: c} }

// List devuelve los proyectos filtrados por is_done, en su orden persistido.
func (a *ProjectAPI) List(ctx context.Context, isDone bool) ([]entity.Project, error) {
	var out []dto.ProjectResponse
	path := "/projects?is_done=" + strconv.FormatBool(isDone)
	if err := a.c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	projects := make([]entity.Project, len(out))
	for i, r := range out {
		projects[i] = r.ToEntity()
	}
	return projects, nil
}

// Get devuelve el detalle de un proyecto con subtareas.
func (a *ProjectAPI) Get(ctx context.Context, id string) (entity.Project, error) {
	var out dto.ProjectResponse
	if err := a.c.do(ctx, http.MethodGet, "/projects/"+url.PathEscape(id), nil, &out); err != nil {
		return entity.Project{}, err
	}
	return out.ToEntity(), nil
}

// Update actualiza link y/o el override manual de is_done.
func (a *ProjectAPI) Update(ctx context.Context, id string, in dto.UpdateProjectRequest) error {
	return a.c.do(ctx, http.MethodPut, "/projects/"+url.PathEscape(id), in, nil)
}

// Reorder persiste la lista completa de ids en el nuevo orden, en una llamada.
func (a *ProjectAPI) Reorder(ctx context.Context, orderedIDs []string) error {
	return a.c.do(ctx, http.MethodPut, "/projects/reorder", dto.ReorderRequest{OrderedIDs: orderedIDs}, nil)
}

// Stats implementa remote.StatsGateway.
func (c *Client) Stats(ctx context.Context) (dto.StatsResponse, error) {
	var out dto.StatsResponse
	if err := c.do(ctx, http.MethodGet, "/stats", nil, &out); err != nil {
		return dto.StatsResponse{}, err
	}
	return out, nil
}
