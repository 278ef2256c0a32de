// Package sessionfile persiste la sesión en un archivo JSON local, con las
// mismas claves fijas (token, user) que el backend entrega en el login.
package sessionfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/tu-usuario/prospect-board/internal/application/dto"
	"github.com/tu-usuario/prospect-board/internal/domain/entity"
)

// Store implementa session.Store sobre un archivo en disco.
type Store struct {
	path string
}

// NewStore crea el store apuntando a path. El directorio padre se crea en el
// primer Save, no aquí.
func NewStore(path string) *Store {
	return &Store{path: path}
}

type payload struct {
	Token string            `json:"token"`
	User  *dto.UserResponse `json:"user"`
}

// Load lee la sesión persistida. Un archivo ausente no es un error: devuelve
// la sesión vacía. Un archivo corrupto o incompleto también la devuelve vacía,
// pero con el error, para que el llamador lo registre.
func (s *Store) Load() (entity.Session, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return entity.Session{}, nil
	}
	if err != nil {
		return entity.Session{}, fmt.Errorf("leyendo sesión: %w", err)
	}

	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return entity.Session{}, fmt.Errorf("sesión corrupta en %s: %w", s.path, err)
	}
	if p.Token == "" || p.User == nil {
		// Token sin usuario (o al revés) no sirve: equivale a no autenticado.
		return entity.Session{}, nil
	}
	return entity.Session{
		Token: p.Token,
		User: &entity.User{
			ID:       p.User.ID,
			Username: p.User.Username,
			Role:     entity.Role(p.User.Role),
		},
	}, nil
}

// Save escribe token y usuario juntos. Permisos 0600: el token es una credencial.
func (s *Store) Save(sess entity.Session) error {
	if !sess.Authenticated() {
		return s.Clear()
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("creando directorio de sesión: %w", err)
	}

	u := dto.FromUser(*sess.User)
	raw, err := json.Marshal(payload{Token: sess.Token, User: &u})
	if err != nil {
		return fmt.Errorf("serializando sesión: %w", err)
	}

	// Escritura a archivo temporal + rename para no dejar una sesión a medias.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("guardando sesión: %w", err)
	}
	return os.Rename(tmp, s.path)
}

// Clear elimina el archivo. Que no exista no es un error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("limpiando sesión: %w", err)
	}
	return nil
}
