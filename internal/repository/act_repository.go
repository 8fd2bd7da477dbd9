package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/stagepass/ticketing/internal/model"
)

// ActRepo manages persistence for acts.
type ActRepo struct {
	db *sql.DB
}

// NewActRepo constructs an ActRepo with the given DB handle.
func NewActRepo(db *sql.DB) *ActRepo {
	return &ActRepo{db: db}
}

// Create inserts a new act and populates the generated ID and
// DB-default timestamps.
func (r *ActRepo) Create(ctx context.Context, a *model.Act) error {
	const q = `INSERT INTO acts (tenant_id, name, genre, description) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, a.TenantID, a.Name, a.Genre, a.Description)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	const sel = `SELECT created_at, updated_at FROM acts WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, a.ID).Scan(&a.CreatedAt, &a.UpdatedAt)
}

// GetByID retrieves an act within the tenant's scope.
func (r *ActRepo) GetByID(ctx context.Context, tenantID, id uint64) (*model.Act, error) {
	const q = `SELECT id, tenant_id, name, genre, description, created_at, updated_at
               FROM acts WHERE id = ? AND tenant_id = ?`
	var a model.Act
	err := r.db.QueryRowContext(ctx, q, id, tenantID).Scan(
		&a.ID, &a.TenantID, &a.Name, &a.Genre, &a.Description, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrActNotFound
		}
		return nil, err
	}
	return &a, nil
}

// ListByTenant returns all acts of a tenant ordered by name.
func (r *ActRepo) ListByTenant(ctx context.Context, tenantID uint64) ([]model.Act, error) {
	const q = `SELECT id, tenant_id, name, genre, description, created_at, updated_at
               FROM acts WHERE tenant_id = ? ORDER BY name ASC`
	rows, err := r.db.QueryContext(ctx, q, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []model.Act
	for rows.Next() {
		var a model.Act
		if err := rows.Scan(
			&a.ID, &a.TenantID, &a.Name, &a.Genre, &a.Description, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Update applies name, genre and description within the tenant's
// scope. Returns ErrActNotFound when no row matches.
func (r *ActRepo) Update(ctx context.Context, a *model.Act) error {
	const q = `UPDATE acts
               SET name = ?, genre = ?, description = ?, updated_at = CURRENT_TIMESTAMP
               WHERE id = ? AND tenant_id = ?`
	res, err := r.db.ExecContext(ctx, q, a.Name, a.Genre, a.Description, a.ID, a.TenantID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		const qExists = `SELECT 1 FROM acts WHERE id = ? AND tenant_id = ? LIMIT 1`
		var one int
		if err := r.db.QueryRowContext(ctx, qExists, a.ID, a.TenantID).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrActNotFound
			}
			return err
		}
	}
	return nil
}

// Delete removes an act within the tenant's scope. Refused with
// ErrConflict while shows still reference the act.
func (r *ActRepo) Delete(ctx context.Context, tenantID, id uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	var one int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM acts WHERE id = ? AND tenant_id = ? LIMIT 1`, id, tenantID).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrActNotFound
		}
		return err
	}
	var shows int
	if err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM shows WHERE act_id = ?`, id).Scan(&shows); err != nil {
		return err
	}
	if shows > 0 {
		return ErrConflict
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM acts WHERE id = ?`, id); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
