package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tu-usuario/prospect-board/internal/domain"
	"github.com/tu-usuario/prospect-board/internal/domain/entity"
)

// ProjectRepo acceso a la tabla de proyectos. Progress e is_done son
// agregados que recomputa el repositorio de subtareas; aquí solo se leen,
// salvo el cierre manual vía Update.
type ProjectRepo struct {
	db *sql.DB
}

func NewProjectRepository(db *sql.DB) *ProjectRepo {
	return &ProjectRepo{db: db}
}

const projectColumns = `
	pr.id, pr.link, pr.progress, pr.is_done, pr.sort_order, pr.created_at, pr.updated_at,
	p.no_project, p.name_project, p.client_name, p.contact_name, p.status, p.deal_value, p.created_at, p.updated_at`

func scanProject(row interface{ Scan(...any) error }) (entity.Project, error) {
	var pj entity.Project
	var status, dealValue string
	err := row.Scan(
		&pj.ID, &pj.Link, &pj.Progress, &pj.IsDone, &pj.Order, &pj.CreatedAt, &pj.UpdatedAt,
		&pj.Prospect.NoProject, &pj.Prospect.NameProject, &pj.Prospect.ClientName,
		&pj.Prospect.ContactName, &status, &dealValue,
		&pj.Prospect.CreatedAt, &pj.Prospect.UpdatedAt,
	)
	if err != nil {
		return entity.Project{}, err
	}
	pj.Prospect.Status = entity.ProspectStatus(status)
	pj.Prospect.DealValue, err = decimal.NewFromString(dealValue)
	if err != nil {
		return entity.Project{}, fmt.Errorf("deal_value corrupto en %s: %w", pj.Prospect.NoProject, err)
	}
	return pj, nil
}

// List devuelve los proyectos con is_done dado, ordenados por sort_order.
func (r *ProjectRepo) List(ctx context.Context, isDone bool) ([]entity.Project, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+projectColumns+`
		FROM projects pr
		JOIN prospects p ON p.no_project = pr.prospect_no
		WHERE pr.is_done = ?
		ORDER BY pr.sort_order ASC`, isDone)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var list []entity.Project
	for rows.Next() {
		pj, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		list = append(list, pj)
	}
	return list, rows.Err()
}

// Get obtiene un proyecto con su prospecto y sus subtareas.
func (r *ProjectRepo) Get(ctx context.Context, id string) (entity.Project, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+projectColumns+`
		FROM projects pr
		JOIN prospects p ON p.no_project = pr.prospect_no
		WHERE pr.id = ?`, id)
	pj, err := scanProject(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.Project{}, domain.ErrNotFound
		}
		return entity.Project{}, fmt.Errorf("get project: %w", err)
	}

	pj.Subtasks, err = listSubtasks(ctx, r.db, `project_id = ?`, id)
	if err != nil {
		return entity.Project{}, err
	}
	return pj, nil
}

// Update aplica los campos presentes: link y el cierre manual is_done. El
// cierre manual no toca progress ni las subtareas; es una vía independiente
// del agregado.
func (r *ProjectRepo) Update(ctx context.Context, id string, link *string, isDone *bool) error {
	now := time.Now().UTC()
	if link != nil {
		res, err := r.db.ExecContext(ctx,
			`UPDATE projects SET link = ?, updated_at = ? WHERE id = ?`, *link, now, id)
		if err != nil {
			return fmt.Errorf("update project link: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return domain.ErrNotFound
		}
	}
	if isDone != nil {
		res, err := r.db.ExecContext(ctx,
			`UPDATE projects SET is_done = ?, updated_at = ? WHERE id = ?`, *isDone, now, id)
		if err != nil {
			return fmt.Errorf("update project is_done: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return domain.ErrNotFound
		}
	}
	return nil
}

// Reorder persiste el orden completo del tablero "en curso". La lista es la
// verdad entera: cada id recibe su posición según el índice.
func (r *ProjectRepo) Reorder(ctx context.Context, orderedIDs []string) error {
	if len(orderedIDs) == 0 {
		return domain.ErrInvalidInput
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for i, id := range orderedIDs {
		res, err := tx.ExecContext(ctx,
			`UPDATE projects SET sort_order = ?, updated_at = ? WHERE id = ?`, i, now, id)
		if err != nil {
			return fmt.Errorf("reorder project %s: %w", id, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("%w: proyecto %s", domain.ErrNotFound, id)
		}
	}
	return tx.Commit()
}

// Stats agrega los tres indicadores del panel: prospectos visibles en el
// tablero, proyectos en curso y revenue (suma de deal_value de los WON).
func (r *ProjectRepo) Stats(ctx context.Context) (totalProspects, activeProjects int, revenue decimal.Decimal, err error) {
	err = r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM prospects WHERE status != ?`, string(entity.StatusRealLoss),
	).Scan(&totalProspects)
	if err != nil {
		return 0, 0, decimal.Zero, fmt.Errorf("count prospects: %w", err)
	}

	err = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects WHERE is_done = 0`).Scan(&activeProjects)
	if err != nil {
		return 0, 0, decimal.Zero, fmt.Errorf("count projects: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT deal_value FROM prospects WHERE status = ?`, string(entity.StatusWon))
	if err != nil {
		return 0, 0, decimal.Zero, fmt.Errorf("sum revenue: %w", err)
	}
	defer rows.Close()

	revenue = decimal.Zero
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return 0, 0, decimal.Zero, fmt.Errorf("scan deal_value: %w", err)
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return 0, 0, decimal.Zero, fmt.Errorf("deal_value corrupto: %w", err)
		}
		revenue = revenue.Add(d)
	}
	return totalProspects, activeProjects, revenue, rows.Err()
}
