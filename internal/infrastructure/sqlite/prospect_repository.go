package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/prospect-board/internal/domain"
	"github.com/tu-usuario/prospect-board/internal/domain/entity"
)

// ProspectRepo acceso a la tabla de prospectos. Las transiciones de estado
// con efecto colateral (WON y REAL_LOSS crean proyecto) viven aquí, en una
// sola transacción.
type ProspectRepo struct {
	db *sql.DB
}

func NewProspectRepository(db *sql.DB) *ProspectRepo {
	return &ProspectRepo{db: db}
}

const prospectColumns = `p.no_project, p.name_project, p.client_name, p.contact_name, p.status, p.deal_value, p.created_at, p.updated_at`

func scanProspect(row interface{ Scan(...any) error }) (entity.Prospect, error) {
	var p entity.Prospect
	var status, dealValue string
	var projID sql.NullString
	var projDone sql.NullBool
	err := row.Scan(
		&p.NoProject, &p.NameProject, &p.ClientName, &p.ContactName,
		&status, &dealValue, &p.CreatedAt, &p.UpdatedAt,
		&projID, &projDone,
	)
	if err != nil {
		return entity.Prospect{}, err
	}
	p.Status = entity.ProspectStatus(status)
	p.DealValue, err = decimal.NewFromString(dealValue)
	if err != nil {
		return entity.Prospect{}, fmt.Errorf("deal_value corrupto en %s: %w", p.NoProject, err)
	}
	if projID.Valid {
		p.Project = &entity.ProjectRef{ID: projID.String, IsDone: projDone.Bool}
	}
	return p, nil
}

// List devuelve todos los prospectos con su referencia de proyecto si existe.
// El llamador filtra por visibilidad de tablero.
func (r *ProspectRepo) List(ctx context.Context) ([]entity.Prospect, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+prospectColumns+`, pr.id, pr.is_done
		FROM prospects p
		LEFT JOIN projects pr ON pr.prospect_no = p.no_project
		ORDER BY p.created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list prospects: %w", err)
	}
	defer rows.Close()

	var list []entity.Prospect
	for rows.Next() {
		p, err := scanProspect(rows)
		if err != nil {
			return nil, fmt.Errorf("scan prospect: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// Get obtiene un prospecto con su proyecto y sus subtareas de checklist.
func (r *ProspectRepo) Get(ctx context.Context, noProject string) (entity.Prospect, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+prospectColumns+`, pr.id, pr.is_done
		FROM prospects p
		LEFT JOIN projects pr ON pr.prospect_no = p.no_project
		WHERE p.no_project = ?`, noProject)
	p, err := scanProspect(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.Prospect{}, domain.ErrNotFound
		}
		return entity.Prospect{}, fmt.Errorf("get prospect: %w", err)
	}

	p.Subtasks, err = listSubtasks(ctx, r.db, `prospect_no = ?`, noProject)
	if err != nil {
		return entity.Prospect{}, err
	}
	return p, nil
}

// Create persiste un prospecto nuevo en estado LEAD salvo que traiga otro.
func (r *ProspectRepo) Create(ctx context.Context, p entity.Prospect) (entity.Prospect, error) {
	if p.NoProject == "" || p.NameProject == "" || p.ClientName == "" {
		return entity.Prospect{}, domain.ErrInvalidInput
	}
	if p.Status == "" {
		p.Status = entity.StatusLead
	}
	if !p.Status.Valid() {
		return entity.Prospect{}, domain.ErrInvalidStatus
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO prospects (no_project, name_project, client_name, contact_name, status, deal_value, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.NoProject, p.NameProject, p.ClientName, p.ContactName,
		string(p.Status), p.DealValue.String(), p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return entity.Prospect{}, domain.ErrDuplicate
		}
		return entity.Prospect{}, fmt.Errorf("insert prospect: %w", err)
	}
	return p, nil
}

// Update aplica los campos editables presentes. El estado va por
// UpdateStatus, que es quien conoce los efectos colaterales.
func (r *ProspectRepo) Update(ctx context.Context, noProject string, name, client, contact *string, dealValue *decimal.Decimal) error {
	now := time.Now().UTC()
	set := func(column string, value any) error {
		res, err := r.db.ExecContext(ctx,
			`UPDATE prospects SET `+column+` = ?, updated_at = ? WHERE no_project = ?`, value, now, noProject)
		if err != nil {
			return fmt.Errorf("update prospect %s: %w", column, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return domain.ErrNotFound
		}
		return nil
	}
	if name != nil {
		if *name == "" {
			return domain.ErrInvalidInput
		}
		if err := set("name_project", *name); err != nil {
			return err
		}
	}
	if client != nil {
		if *client == "" {
			return domain.ErrInvalidInput
		}
		if err := set("client_name", *client); err != nil {
			return err
		}
	}
	if contact != nil {
		if err := set("contact_name", *contact); err != nil {
			return err
		}
	}
	if dealValue != nil {
		if err := set("deal_value", dealValue.String()); err != nil {
			return err
		}
	}
	return nil
}

// UpdateStatus mueve el prospecto de columna. WON crea el proyecto de entrega
// si no existe; REAL_LOSS solo es alcanzable desde LOSS y crea el proyecto ya
// cerrado. Ambos efectos son idempotentes.
func (r *ProspectRepo) UpdateStatus(ctx context.Context, noProject string, status entity.ProspectStatus) error {
	if !status.Valid() {
		return domain.ErrInvalidStatus
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var current string
	err = tx.QueryRowContext(ctx, `SELECT status FROM prospects WHERE no_project = ?`, noProject).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get prospect status: %w", err)
	}

	if status == entity.StatusRealLoss && entity.ProspectStatus(current) != entity.StatusLoss {
		return fmt.Errorf("%w: REAL_LOSS solo es alcanzable desde LOSS", domain.ErrConflict)
	}
	if entity.ProspectStatus(current) == entity.StatusRealLoss {
		// Terminal: nadie sale de REAL_LOSS.
		return fmt.Errorf("%w: el prospecto ya está en REAL_LOSS", domain.ErrConflict)
	}

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx,
		`UPDATE prospects SET status = ?, updated_at = ? WHERE no_project = ?`,
		string(status), now, noProject,
	); err != nil {
		return fmt.Errorf("update prospect status: %w", err)
	}

	switch status {
	case entity.StatusWon:
		if err := ensureProject(ctx, tx, noProject, false, now); err != nil {
			return err
		}
	case entity.StatusRealLoss:
		if err := ensureProject(ctx, tx, noProject, true, now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ensureProject crea el proyecto asociado si aún no existe. isDone marca el
// caso REAL_LOSS, que nace cerrado y con el progreso en 100.
func ensureProject(ctx context.Context, tx *sql.Tx, noProject string, isDone bool, now time.Time) error {
	var exists int
	err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects WHERE prospect_no = ?`, noProject).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check project: %w", err)
	}
	if exists > 0 {
		if isDone {
			_, err = tx.ExecContext(ctx,
				`UPDATE projects SET progress = 100, is_done = 1, updated_at = ? WHERE prospect_no = ?`, now, noProject)
			if err != nil {
				return fmt.Errorf("close project: %w", err)
			}
		}
		return nil
	}

	var maxOrder sql.NullInt64
	if err := tx.QueryRowContext(ctx, `SELECT MAX(sort_order) FROM projects`).Scan(&maxOrder); err != nil {
		return fmt.Errorf("max order: %w", err)
	}
	progress, done := 0, 0
	if isDone {
		progress, done = 100, 1
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO projects (id, prospect_no, link, progress, is_done, sort_order, created_at, updated_at)
		VALUES (?, ?, '', ?, ?, ?, ?, ?)`,
		uuid.NewString(), noProject, progress, done, maxOrder.Int64+1, now, now,
	)
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}
