package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/stagepass/ticketing/internal/ledger"
	"github.com/stagepass/ticketing/internal/model"
)

// ErrOfferNotFound aliases the ledger's sentinel, mirroring
// ErrShowNotFound.
var ErrOfferNotFound = ledger.ErrOfferNotFound

// OfferRepo provides the non-transactional reads and the delete for
// ticket offers. Creation and count updates go exclusively through the
// ledger so the capacity invariant stays protected; no other component
// writes ticket_offers.ticket_count.
type OfferRepo struct {
	db *sql.DB
}

// NewOfferRepo constructs an OfferRepo with the given DB handle.
func NewOfferRepo(db *sql.DB) *OfferRepo {
	return &OfferRepo{db: db}
}

// GetByID retrieves an offer, enforcing tenant scope through the
// owning show.
func (r *OfferRepo) GetByID(ctx context.Context, tenantID, id uint64) (*model.TicketOffer, error) {
	const q = `SELECT o.id, o.show_id, o.name, o.price_cents, o.ticket_count, o.created_at, o.updated_at
               FROM ticket_offers o
               JOIN shows s ON s.id = o.show_id
               WHERE o.id = ? AND s.tenant_id = ?`
	var o model.TicketOffer
	err := r.db.QueryRowContext(ctx, q, id, tenantID).Scan(
		&o.ID, &o.ShowID, &o.Name, &o.PriceCents, &o.TicketCount, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOfferNotFound
		}
		return nil, err
	}
	return &o, nil
}

// ListByShow returns all offers of a show within the tenant's scope,
// ordered by creation. When no offers exist it returns an empty slice
// and nil error.
func (r *OfferRepo) ListByShow(ctx context.Context, tenantID, showID uint64) ([]model.TicketOffer, error) {
	const q = `SELECT o.id, o.show_id, o.name, o.price_cents, o.ticket_count, o.created_at, o.updated_at
               FROM ticket_offers o
               JOIN shows s ON s.id = o.show_id
               WHERE o.show_id = ? AND s.tenant_id = ?
               ORDER BY o.id ASC`
	rows, err := r.db.QueryContext(ctx, q, showID, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []model.TicketOffer
	for rows.Next() {
		var o model.TicketOffer
		if err := rows.Scan(
			&o.ID, &o.ShowID, &o.Name, &o.PriceCents, &o.TicketCount, &o.CreatedAt, &o.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Delete removes an offer within the tenant's scope, which frees its
// allocation implicitly: the next capacity computation no longer
// includes it. Returns ErrOfferNotFound when no row matches.
func (r *OfferRepo) Delete(ctx context.Context, tenantID, id uint64) error {
	const q = `DELETE o FROM ticket_offers o
               JOIN shows s ON s.id = o.show_id
               WHERE o.id = ? AND s.tenant_id = ?`
	res, err := r.db.ExecContext(ctx, q, id, tenantID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrOfferNotFound
	}
	return nil
}
