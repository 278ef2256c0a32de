package dto

// ErrorResponse es el cuerpo de error estándar de la API: {code, message}.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
