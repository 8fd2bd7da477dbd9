package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/stagepass/ticketing/internal/model"
)

// VenueRepo manages persistence for venues. All operations are scoped
// to a tenant.
type VenueRepo struct {
	db *sql.DB
}

// NewVenueRepo constructs a VenueRepo with the given DB handle.
func NewVenueRepo(db *sql.DB) *VenueRepo {
	return &VenueRepo{db: db}
}

// Create inserts a new venue and populates the generated ID and
// DB-default timestamps on the given struct.
func (r *VenueRepo) Create(ctx context.Context, v *model.Venue) error {
	const q = `INSERT INTO venues (tenant_id, name, city, address, seating_capacity) VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, v.TenantID, v.Name, v.City, v.Address, v.SeatingCapacity)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	v.ID = uint64(id)
	const sel = `SELECT created_at, updated_at FROM venues WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, v.ID).Scan(&v.CreatedAt, &v.UpdatedAt)
}

// GetByID retrieves a venue within the tenant's scope. Returns
// ErrVenueNotFound when the venue is absent or belongs to another
// tenant.
func (r *VenueRepo) GetByID(ctx context.Context, tenantID, id uint64) (*model.Venue, error) {
	const q = `SELECT id, tenant_id, name, city, address, seating_capacity, created_at, updated_at
               FROM venues WHERE id = ? AND tenant_id = ?`
	var v model.Venue
	err := r.db.QueryRowContext(ctx, q, id, tenantID).Scan(
		&v.ID, &v.TenantID, &v.Name, &v.City, &v.Address, &v.SeatingCapacity, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVenueNotFound
		}
		return nil, err
	}
	return &v, nil
}

// ListByTenant returns all venues of a tenant ordered by name. When no
// venues exist it returns an empty slice and nil error.
func (r *VenueRepo) ListByTenant(ctx context.Context, tenantID uint64) ([]model.Venue, error) {
	const q = `SELECT id, tenant_id, name, city, address, seating_capacity, created_at, updated_at
               FROM venues WHERE tenant_id = ? ORDER BY name ASC`
	rows, err := r.db.QueryContext(ctx, q, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []model.Venue
	for rows.Next() {
		var v model.Venue
		if err := rows.Scan(
			&v.ID, &v.TenantID, &v.Name, &v.City, &v.Address, &v.SeatingCapacity, &v.CreatedAt, &v.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Update applies name, city, address and seating capacity to a venue
// within the tenant's scope. Returns ErrVenueNotFound when no row
// matches.
func (r *VenueRepo) Update(ctx context.Context, v *model.Venue) error {
	const q = `UPDATE venues
               SET name = ?, city = ?, address = ?, seating_capacity = ?, updated_at = CURRENT_TIMESTAMP
               WHERE id = ? AND tenant_id = ?`
	res, err := r.db.ExecContext(ctx, q, v.Name, v.City, v.Address, v.SeatingCapacity, v.ID, v.TenantID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Distinguish "no such venue" from "values identical": re-check existence.
		const qExists = `SELECT 1 FROM venues WHERE id = ? AND tenant_id = ? LIMIT 1`
		var one int
		if err := r.db.QueryRowContext(ctx, qExists, v.ID, v.TenantID).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrVenueNotFound
			}
			return err
		}
	}
	return nil
}

// Delete removes a venue within the tenant's scope. The deletion is
// refused with ErrConflict while any show still references the venue;
// shows must be removed first so that no capacity allocations dangle.
func (r *VenueRepo) Delete(ctx context.Context, tenantID, id uint64) error {
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
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM venues WHERE id = ? AND tenant_id = ? LIMIT 1`, id, tenantID).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrVenueNotFound
		}
		return err
	}
	var shows int
	if err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM shows WHERE venue_id = ?`, id).Scan(&shows); err != nil {
		return err
	}
	if shows > 0 {
		return ErrConflict
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM venues WHERE id = ?`, id); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
