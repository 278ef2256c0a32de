package rest

import (
	"context"
	"net/http"
	"net/url"

	"github.com/tu-usuario/prospect-board/internal/application/dto"
	"github.com/tu-usuario/prospect-board/internal/domain/entity"
)

// ProspectAPI implementa remote.ProspectGateway.
type ProspectAPI struct {
	c *Client
}

// Prospects devuelve el gateway de prospectos.
func (c *Client) Prospects() *ProspectAPI { return &ProspectAPI{c: c} }

// List devuelve la colección completa de prospectos.
func (a *ProspectAPI) List(ctx context.Context) ([]entity.Prospect, error) {
	var out []dto.ProspectResponse
	if err := a.c.do(ctx, http.MethodGet, "/prospects", nil, &out); err != nil {
		return nil, err
	}
	prospects := make([]entity.Prospect, len(out))
	for i, r := range out {
		prospects[i] = r.ToEntity()
	}
	return prospects, nil
}

// Get devuelve el detalle de un prospecto (incluye proyecto asociado y subtareas).
func (a *ProspectAPI) Get(ctx context.Context, noProject string) (entity.Prospect, error) {
	var out dto.ProspectResponse
	if err := a.c.do(ctx, http.MethodGet, "/prospects/"+url.PathEscape(noProject), nil, &out); err != nil {
		return entity.Prospect{}, err
	}
	return out.ToEntity(), nil
}

// Create da de alta un prospecto.
func (a *ProspectAPI) Create(ctx context.Context, in dto.CreateProspectRequest) (entity.Prospect, error) {
	var out dto.ProspectResponse
	if err := a.c.do(ctx, http.MethodPost, "/prospects", in, &out); err != nil {
		return entity.Prospect{}, err
	}
	return out.ToEntity(), nil
}

// UpdateStatus persiste una transición de estado.
func (a *ProspectAPI) UpdateStatus(ctx context.Context, noProject string, status entity.ProspectStatus) error {
	s := string(status)
	in := dto.UpdateProspectRequest{Status: &s}
	return a.c.do(ctx, http.MethodPut, "/prospects/"+url.PathEscape(noProject), in, nil)
}
