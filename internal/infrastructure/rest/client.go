// Package rest implementa los gateways de dominio sobre el backend HTTP.
// Todo request saliente lleva el bearer token vigente cuando existe; toda
// respuesta 401/403 entrante, venga de donde venga, se notifica al observador
// global antes de devolver el error (el interceptor de sesión fail-closed).
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tu-usuario/prospect-board/internal/application/dto"
	"github.com/tu-usuario/prospect-board/internal/domain"
	"github.com/tu-usuario/prospect-board/pkg/logger"
)

// TokenProvider entrega la credencial vigente; vacío = sin autenticar.
type TokenProvider interface {
	Token() string
}

// UnauthorizedObserver recibe cada 401/403 observado en cualquier respuesta.
type UnauthorizedObserver interface {
	OnUnauthorized(status int)
}

// Client cliente HTTP del backend. Implementa los cinco gateways de
// internal/domain/remote.
type Client struct {
	baseURL  string
	http     *http.Client
	tokens   TokenProvider
	observer UnauthorizedObserver
	log      *logger.Logger
}

// Option configura el cliente.
type Option func(*Client)

// WithTokenProvider instala la fuente del bearer token.
func WithTokenProvider(tp TokenProvider) Option {
	return func(c *Client) { c.tokens = tp }
}

// WithUnauthorizedObserver instala el observador global de 401/403.
func WithUnauthorizedObserver(o UnauthorizedObserver) Option {
	return func(c *Client) { c.observer = o }
}

// WithTimeout fija el timeout del cliente HTTP subyacente.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// NewClient construye el cliente contra baseURL (ej. http://localhost:5000/api).
func NewClient(baseURL string, log *logger.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		log:     log.Component("rest"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do ejecuta un request JSON y decodifica la respuesta en out (si no es nil).
// Clasificación de errores según el contrato: 401/403 → observador + APIError;
// otros ≥400 → APIError con el {code, message} del cuerpo; fallo de
// transporte → NetworkError.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("rest: serializar cuerpo: %w", err)
		}
		payload = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return fmt.Errorf("rest: construir request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if tok := c.tokens.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &domain.NetworkError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		if c.observer != nil {
			c.observer.OnUnauthorized(resp.StatusCode)
		}
		return c.apiError(resp)
	}
	if resp.StatusCode >= 400 {
		return c.apiError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("rest: decodificar respuesta de %s %s: %w", method, path, err)
		}
	}
	return nil
}

// apiError construye el APIError a partir del cuerpo {code, message}.
// Un cuerpo no parseable no oculta el status.
func (c *Client) apiError(resp *http.Response) error {
	var body dto.ErrorResponse
	_ = json.NewDecoder(resp.Body).Decode(&body)
	if body.Code == "" {
		body.Code = http.StatusText(resp.StatusCode)
	}
	c.log.Debug().Int("status", resp.StatusCode).Str("code", body.Code).Msg("respuesta de error de la API")
	return &domain.APIError{Status: resp.StatusCode, Code: body.Code, Message: body.Message}
}
