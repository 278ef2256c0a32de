// Package http es la API del backend de pruebas. Replica el contrato que el
// cliente espera en producción, incluida la validación de roles en servidor.
package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/tu-usuario/prospect-board/internal/application/dto"
	"github.com/tu-usuario/prospect-board/internal/domain"
	"github.com/tu-usuario/prospect-board/internal/infrastructure/sqlite"
	"github.com/tu-usuario/prospect-board/pkg/jwt"
)

// AuthHandler maneja el login.
type AuthHandler struct {
	users      *sqlite.UserRepo
	jwtSecret  string
	jwtIssuer  string
	jwtMinutes int
}

// NewAuthHandler construye el handler de auth.
func NewAuthHandler(users *sqlite.UserRepo, secret, issuer string, expMinutes int) *AuthHandler {
	return &AuthHandler{users: users, jwtSecret: secret, jwtIssuer: issuer, jwtMinutes: expMinutes}
}

// Login valida credenciales y entrega token + usuario en un solo cuerpo.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.Username == "" || in.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "username y password son requeridos"})
	}

	user, err := h.users.GetByUsername(c.Context(), in.Username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// Mismo mensaje que una contraseña mala: no filtrar qué usuarios existen.
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "credenciales inválidas"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)) != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "credenciales inválidas"})
	}

	token, err := jwt.Generate(h.jwtSecret, user.ID, user.Username, string(user.Role), h.jwtIssuer, h.jwtMinutes)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(dto.LoginResponse{
		Token: token,
		User:  dto.UserResponse{ID: user.ID, Username: user.Username, Role: string(user.Role)},
	})
}
