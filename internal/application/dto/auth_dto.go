package dto

import "github.com/tu-usuario/prospect-board/internal/domain/entity"

// LoginRequest credenciales de acceso.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserResponse identidad pública del usuario autenticado.
type UserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// LoginResponse token + usuario, tal como lo entrega POST /auth/login.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// ToSession convierte la respuesta de login en una sesión de dominio.
func (r LoginResponse) ToSession() entity.Session {
	return entity.Session{
		Token: r.Token,
		User: &entity.User{
			ID:       r.User.ID,
			Username: r.User.Username,
			Role:     entity.Role(r.User.Role),
		},
	}
}

// FromUser construye el DTO a partir de la entidad.
func FromUser(u entity.User) UserResponse {
	return UserResponse{ID: u.ID, Username: u.Username, Role: string(u.Role)}
}
