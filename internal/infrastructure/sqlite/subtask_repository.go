package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tu-usuario/prospect-board/internal/domain"
	"github.com/tu-usuario/prospect-board/internal/domain/entity"
)

// SubtaskRepo acceso a la tabla de subtareas. Toda mutación sobre una
// subtarea de proyecto recomputa los agregados del proyecto en la misma
// transacción: progress es la media de los checkpoints y is_done se cumple
// cuando todas llegan a 100.
type SubtaskRepo struct {
	db *sql.DB
}

func NewSubtaskRepository(db *sql.DB) *SubtaskRepo {
	return &SubtaskRepo{db: db}
}

const subtaskColumns = `id, project_id, prospect_no, name, description, deadline, progress, link, created_by_id, created_by_name, created_at, updated_at`

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func scanSubtask(row interface{ Scan(...any) error }) (entity.Subtask, error) {
	var st entity.Subtask
	var projectID, prospectNo sql.NullString
	var deadline sql.NullTime
	var progress int
	err := row.Scan(
		&st.ID, &projectID, &prospectNo, &st.Name, &st.Description,
		&deadline, &progress, &st.Link, &st.CreatedBy.ID, &st.CreatedBy.Username,
		&st.CreatedAt, &st.UpdatedAt,
	)
	if err != nil {
		return entity.Subtask{}, err
	}
	st.ProjectID = projectID.String
	st.ProspectID = prospectNo.String
	st.Deadline = deadline.Time
	st.Progress = entity.Checkpoint(progress)
	return st, nil
}

// listSubtasks carga las subtareas que cumplen el filtro dado. Compartida
// con los repositorios de prospectos y proyectos.
func listSubtasks(ctx context.Context, q querier, where string, args ...any) ([]entity.Subtask, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+subtaskColumns+` FROM subtasks WHERE `+where+` ORDER BY created_at ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("list subtasks: %w", err)
	}
	defer rows.Close()

	var list []entity.Subtask
	for rows.Next() {
		st, err := scanSubtask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subtask: %w", err)
		}
		list = append(list, st)
	}
	return list, rows.Err()
}

// Get obtiene una subtarea por id.
func (r *SubtaskRepo) Get(ctx context.Context, id string) (entity.Subtask, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+subtaskColumns+` FROM subtasks WHERE id = ?`, id)
	st, err := scanSubtask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.Subtask{}, domain.ErrNotFound
		}
		return entity.Subtask{}, fmt.Errorf("get subtask: %w", err)
	}
	return st, nil
}

// Create persiste una subtarea colgada de un proyecto o de un prospecto.
func (r *SubtaskRepo) Create(ctx context.Context, st entity.Subtask) (entity.Subtask, error) {
	if st.Name == "" {
		return entity.Subtask{}, domain.ErrInvalidInput
	}
	if (st.ProjectID == "") == (st.ProspectID == "") {
		// Exactamente un padre.
		return entity.Subtask{}, domain.ErrInvalidInput
	}
	if !st.Progress.Valid() {
		return entity.Subtask{}, domain.ErrInvalidCheckpoint
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return entity.Subtask{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	st.ID = uuid.NewString()
	st.CreatedAt, st.UpdatedAt = now, now

	_, err = tx.ExecContext(ctx, `
		INSERT INTO subtasks (`+subtaskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		st.ID, nullable(st.ProjectID), nullable(st.ProspectID), st.Name, st.Description,
		nullableTime(st.Deadline), int(st.Progress), st.Link,
		st.CreatedBy.ID, st.CreatedBy.Username, st.CreatedAt, st.UpdatedAt,
	)
	if err != nil {
		return entity.Subtask{}, fmt.Errorf("insert subtask: %w", err)
	}
	if err := recomputeAggregates(ctx, tx, st.ProjectID, now); err != nil {
		return entity.Subtask{}, err
	}
	if err := tx.Commit(); err != nil {
		return entity.Subtask{}, err
	}
	return st, nil
}

// Update aplica los campos presentes. Un progress fuera del conjunto cerrado
// de checkpoints se rechaza sin tocar nada.
func (r *SubtaskRepo) Update(ctx context.Context, id string, name, description, link *string, deadline *time.Time, progress *entity.Checkpoint) error {
	if progress != nil && !progress.Valid() {
		return domain.ErrInvalidCheckpoint
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var projectID sql.NullString
	err = tx.QueryRowContext(ctx, `SELECT project_id FROM subtasks WHERE id = ?`, id).Scan(&projectID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get subtask parent: %w", err)
	}

	now := time.Now().UTC()
	set := func(column string, value any) error {
		_, err := tx.ExecContext(ctx,
			`UPDATE subtasks SET `+column+` = ?, updated_at = ? WHERE id = ?`, value, now, id)
		if err != nil {
			return fmt.Errorf("update subtask %s: %w", column, err)
		}
		return nil
	}
	if name != nil {
		if *name == "" {
			return domain.ErrInvalidInput
		}
		if err := set("name", *name); err != nil {
			return err
		}
	}
	if description != nil {
		if err := set("description", *description); err != nil {
			return err
		}
	}
	if link != nil {
		if err := set("link", *link); err != nil {
			return err
		}
	}
	if deadline != nil {
		if err := set("deadline", nullableTime(*deadline)); err != nil {
			return err
		}
	}
	if progress != nil {
		if err := set("progress", int(*progress)); err != nil {
			return err
		}
		if err := recomputeAggregates(ctx, tx, projectID.String, now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Delete elimina la subtarea y recomputa los agregados del proyecto padre.
func (r *SubtaskRepo) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var projectID sql.NullString
	err = tx.QueryRowContext(ctx, `SELECT project_id FROM subtasks WHERE id = ?`, id).Scan(&projectID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get subtask parent: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM subtasks WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete subtask: %w", err)
	}
	now := time.Now().UTC()
	if err := recomputeAggregates(ctx, tx, projectID.String, now); err != nil {
		return err
	}
	return tx.Commit()
}

// recomputeAggregates recalcula progress (media redondeada) e is_done (todas
// en 100) del proyecto. Sin subtareas el proyecto queda en 0 y abierto.
// No-op para subtareas de prospecto (projectID vacío).
func recomputeAggregates(ctx context.Context, tx *sql.Tx, projectID string, now time.Time) error {
	if projectID == "" {
		return nil
	}
	var count, sum, done int
	err := tx.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(progress), 0), COALESCE(SUM(progress = 100), 0)
		FROM subtasks WHERE project_id = ?`, projectID,
	).Scan(&count, &sum, &done)
	if err != nil {
		return fmt.Errorf("aggregate subtasks: %w", err)
	}

	progress := 0
	isDone := false
	if count > 0 {
		progress = (sum + count/2) / count
		isDone = done == count
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE projects SET progress = ?, is_done = ?, updated_at = ? WHERE id = ?`,
		progress, isDone, now, projectID,
	)
	if err != nil {
		return fmt.Errorf("update aggregates: %w", err)
	}
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
