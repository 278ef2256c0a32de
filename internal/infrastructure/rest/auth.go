package rest

import (
	"context"
	"net/http"

	"github.com/tu-usuario/prospect-board/internal/application/dto"
	"github.com/tu-usuario/prospect-board/internal/domain/entity"
)

// Login implementa remote.AuthGateway. Sale sin credencial: en el momento
// del login todavía no hay token que adjuntar.
func (c *Client) Login(ctx context.Context, username, password string) (entity.Session, error) {
	var out dto.LoginResponse
	in := dto.LoginRequest{Username: username, Password: password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", in, &out); err != nil {
		return entity.Session{}, err
	}
	return out.ToSession(), nil
}
