package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tu-usuario/prospect-board/internal/domain"
	"github.com/tu-usuario/prospect-board/internal/domain/entity"
)

// UserRecord es el usuario tal como vive en la base: identidad pública más
// el hash de la contraseña, que nunca sale por la API.
type UserRecord struct {
	ID           string
	Username     string
	PasswordHash string
	Role         entity.Role
	CreatedAt    time.Time
}

// UserRepo acceso a la tabla de usuarios.
type UserRepo struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

// Create persiste un usuario nuevo.
func (r *UserRepo) Create(ctx context.Context, u UserRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, role, created_at) VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.PasswordHash, string(u.Role), u.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByUsername obtiene un usuario por nombre. Devuelve ErrUserNotFound si no existe.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (UserRecord, error) {
	var u UserRecord
	var role string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, role, created_at FROM users WHERE username = ?`,
		username,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return UserRecord{}, domain.ErrUserNotFound
		}
		return UserRecord{}, fmt.Errorf("get user: %w", err)
	}
	u.Role = entity.Role(role)
	return u, nil
}

// Count devuelve el total de usuarios (decide si hace falta sembrar).
func (r *UserRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

// isUniqueViolation detecta la violación de unicidad del driver sin depender
// de sus tipos de error internos.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
