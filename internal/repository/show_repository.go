package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/stagepass/ticketing/internal/ledger"
	"github.com/stagepass/ticketing/internal/model"
)

// ErrShowNotFound aliases the ledger's sentinel so handlers can match
// a missing show with one errors.Is check regardless of which layer
// reported it.
var ErrShowNotFound = ledger.ErrShowNotFound

// ShowRepo manages persistence for shows. Total ticket capacity is set
// at creation and never updated here; only the ledger's transactional
// path touches the offers that allocate against it.
type ShowRepo struct {
	db *sql.DB
}

// NewShowRepo constructs a ShowRepo with the given DB handle.
func NewShowRepo(db *sql.DB) *ShowRepo {
	return &ShowRepo{db: db}
}

// Create inserts a new show and populates the generated ID and
// DB-default fields (status, timestamps). The caller is responsible
// for having validated total_tickets against the venue's seating
// capacity.
func (r *ShowRepo) Create(ctx context.Context, s *model.Show) error {
	const q = `INSERT INTO shows (tenant_id, venue_id, act_id, starts_at, total_tickets) VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, s.TenantID, s.VenueID, s.ActID, s.StartsAt.UTC(), s.TotalTickets)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	const sel = `SELECT status, created_at, updated_at FROM shows WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, s.ID).Scan(&s.Status, &s.CreatedAt, &s.UpdatedAt)
}

// GetByID retrieves a show within the tenant's scope. Returns
// ErrShowNotFound when the show is absent or belongs to another
// tenant.
func (r *ShowRepo) GetByID(ctx context.Context, tenantID, id uint64) (*model.Show, error) {
	const q = `SELECT id, tenant_id, venue_id, act_id, starts_at, total_tickets, status, created_at, updated_at
               FROM shows WHERE id = ? AND tenant_id = ?`
	var s model.Show
	err := r.db.QueryRowContext(ctx, q, id, tenantID).Scan(
		&s.ID, &s.TenantID, &s.VenueID, &s.ActID, &s.StartsAt, &s.TotalTickets, &s.Status, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrShowNotFound
		}
		return nil, err
	}
	return &s, nil
}

// ListByVenue returns all shows of a venue within the tenant's scope,
// ordered by start time ascending.
func (r *ShowRepo) ListByVenue(ctx context.Context, tenantID, venueID uint64) ([]model.Show, error) {
	const q = `SELECT id, tenant_id, venue_id, act_id, starts_at, total_tickets, status, created_at, updated_at
               FROM shows WHERE venue_id = ? AND tenant_id = ?
               ORDER BY starts_at ASC`
	return r.list(ctx, q, venueID, tenantID)
}

// ListUpcomingByTenant returns shows of a tenant whose start time lies
// in the future, ordered by start time ascending. Used by the public
// browse surface.
func (r *ShowRepo) ListUpcomingByTenant(ctx context.Context, tenantID uint64) ([]model.Show, error) {
	const q = `SELECT id, tenant_id, venue_id, act_id, starts_at, total_tickets, status, created_at, updated_at
               FROM shows WHERE tenant_id = ? AND starts_at > UTC_TIMESTAMP() AND status = 'SCHEDULED'
               ORDER BY starts_at ASC`
	return r.list(ctx, q, tenantID)
}

func (r *ShowRepo) list(ctx context.Context, q string, args ...any) ([]model.Show, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []model.Show
	for rows.Next() {
		var s model.Show
		if err := rows.Scan(
			&s.ID, &s.TenantID, &s.VenueID, &s.ActID, &s.StartsAt, &s.TotalTickets, &s.Status, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Update applies starts_at and status to a show within the tenant's
// scope. Total tickets are deliberately not updatable: the capacity is
// immutable after creation. Returns ErrShowNotFound when no row
// matches.
func (r *ShowRepo) Update(ctx context.Context, s *model.Show) error {
	const q = `UPDATE shows
               SET starts_at = ?, status = ?, updated_at = CURRENT_TIMESTAMP
               WHERE id = ? AND tenant_id = ?`
	res, err := r.db.ExecContext(ctx, q, s.StartsAt.UTC(), s.Status, s.ID, s.TenantID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		const qExists = `SELECT 1 FROM shows WHERE id = ? AND tenant_id = ? LIMIT 1`
		var one int
		if err := r.db.QueryRowContext(ctx, qExists, s.ID, s.TenantID).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrShowNotFound
			}
			return err
		}
	}
	return nil
}

// Delete removes a show and its ticket offers within the tenant's
// scope. The show owns its offers, so they are deleted in the same
// transaction; their allocations vanish with them.
func (r *ShowRepo) Delete(ctx context.Context, tenantID, id uint64) error {
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
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM shows WHERE id = ? AND tenant_id = ? LIMIT 1`, id, tenantID).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrShowNotFound
		}
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM ticket_offers WHERE show_id = ?`, id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM shows WHERE id = ?`, id); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
