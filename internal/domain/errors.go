package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrUserNotFound      = errors.New("usuario no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInvalidStatus     = errors.New("estado de prospecto inválido")
	ErrInvalidCheckpoint = errors.New("checkpoint de progreso inválido")
)

// APIError es la respuesta de error del backend remoto, con el status HTTP
// que la acompañó. Conserva el par {code, message} del contrato REST.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("api: %d %s", e.Status, e.Code)
}

// NetworkError envuelve fallos de transporte (timeout, conexión rechazada...)
// que nunca llegaron a producir una respuesta HTTP.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("red: %s: %v", e.Op, e.Err) }
func (e *NetworkError) Unwrap() error { return e.Err }

// IsAuthError reporta si err corresponde a un 401/403 del backend.
// Estos errores no son recuperables localmente: disparan el cierre de sesión global.
func IsAuthError(err error) bool {
	var api *APIError
	if errors.As(err, &api) {
		return api.Status == 401 || api.Status == 403
	}
	return errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrForbidden)
}

// IsValidationError reporta si err es un 4xx distinto de 401/403 en una
// mutación: se muestra inline y no toca más estado local que el rollback.
func IsValidationError(err error) bool {
	var api *APIError
	if errors.As(err, &api) {
		return api.Status >= 400 && api.Status < 500 && api.Status != 401 && api.Status != 403
	}
	return false
}

// IsNetworkError reporta si err fue un fallo de transporte o un error no clasificado.
func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}
