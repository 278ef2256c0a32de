// Package sqlite es la persistencia del backend de pruebas. Guarda usuarios,
// prospectos, proyectos y subtareas en un archivo local y es la única
// autoridad sobre los agregados de progreso.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	username      TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	role          TEXT NOT NULL,
	created_at    TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS prospects (
	no_project   TEXT PRIMARY KEY,
	name_project TEXT NOT NULL,
	client_name  TEXT NOT NULL,
	contact_name TEXT NOT NULL DEFAULT '',
	status       TEXT NOT NULL,
	deal_value   TEXT NOT NULL DEFAULT '0',
	created_at   TIMESTAMP NOT NULL,
	updated_at   TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS projects (
	id          TEXT PRIMARY KEY,
	prospect_no TEXT NOT NULL UNIQUE REFERENCES prospects(no_project),
	link        TEXT NOT NULL DEFAULT '',
	progress    INTEGER NOT NULL DEFAULT 0,
	is_done     INTEGER NOT NULL DEFAULT 0,
	sort_order  INTEGER NOT NULL DEFAULT 0,
	created_at  TIMESTAMP NOT NULL,
	updated_at  TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS subtasks (
	id              TEXT PRIMARY KEY,
	project_id      TEXT REFERENCES projects(id) ON DELETE CASCADE,
	prospect_no     TEXT REFERENCES prospects(no_project) ON DELETE CASCADE,
	name            TEXT NOT NULL,
	description     TEXT NOT NULL DEFAULT '',
	deadline        TIMESTAMP,
	progress        INTEGER NOT NULL DEFAULT 0,
	link            TEXT NOT NULL DEFAULT '',
	created_by_id   TEXT NOT NULL DEFAULT '',
	created_by_name TEXT NOT NULL DEFAULT '',
	created_at      TIMESTAMP NOT NULL,
	updated_at      TIMESTAMP NOT NULL,
	CHECK (project_id IS NOT NULL OR prospect_no IS NOT NULL)
);

CREATE INDEX IF NOT EXISTS idx_subtasks_project ON subtasks(project_id);
CREATE INDEX IF NOT EXISTS idx_subtasks_prospect ON subtasks(prospect_no);
CREATE INDEX IF NOT EXISTS idx_projects_done ON projects(is_done, sort_order);
`

// Open abre (o crea) la base en path y aplica el esquema. ":memory:" sirve
// para los tests.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creando directorio de datos: %w", err)
		}
	}
	// El nombre del driver de modernc.org/sqlite es "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("abriendo sqlite: %w", err)
	}
	// Un solo escritor evita los "database is locked" del driver puro Go.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			db.Close()
			return nil, fmt.Errorf("aplicando pragma: %w", err)
		}
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("aplicando esquema: %w", err)
	}
	return db, nil
}
