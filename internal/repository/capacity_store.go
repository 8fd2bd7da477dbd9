package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/stagepass/ticketing/internal/ledger"
	"github.com/stagepass/ticketing/internal/model"
)

// CapacityStore is the MySQL implementation of the ledger's store. The
// row lock in LockShow (SELECT ... FOR UPDATE) serializes all capacity
// validations for one show: a concurrent transaction validating against
// the same show blocks until this one commits or rolls back, so both
// can never validate against the same stale allocated sum.
type CapacityStore struct {
	db *sql.DB
}

// NewCapacityStore constructs a CapacityStore with the given DB handle.
func NewCapacityStore(db *sql.DB) *CapacityStore {
	return &CapacityStore{db: db}
}

// ShowCapacity computes the capacity read model for a show in one
// query. It runs outside a transaction; the result may be momentarily
// stale with respect to concurrent writers but can never observe a
// violated invariant, since only transactional writers change offers.
func (s *CapacityStore) ShowCapacity(ctx context.Context, tenantID, showID uint64) (model.ShowCapacity, error) {
	const q = `SELECT s.total_tickets, COALESCE(SUM(o.ticket_count), 0)
               FROM shows s
               LEFT JOIN ticket_offers o ON o.show_id = s.id
               WHERE s.id = ? AND s.tenant_id = ?
               GROUP BY s.total_tickets`
	var total, allocated uint32
	err := s.db.QueryRowContext(ctx, q, showID, tenantID).Scan(&total, &allocated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.ShowCapacity{}, ledger.ErrShowNotFound
		}
		return model.ShowCapacity{}, err
	}
	return model.ShowCapacity{
		ShowID:            showID,
		TotalTickets:      total,
		AllocatedTickets:  allocated,
		AvailableCapacity: total - allocated,
	}, nil
}

// Begin opens a database transaction and wraps it as a ledger.Tx.
func (s *CapacityStore) Begin(ctx context.Context) (ledger.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &capacityTx{tx: tx}, nil
}

// capacityTx adapts one *sql.Tx to the ledger.Tx interface.
type capacityTx struct {
	tx *sql.Tx
}

// LockShow reads the show's total capacity under a row write lock. The
// lock is held until the transaction ends.
func (t *capacityTx) LockShow(ctx context.Context, tenantID, showID uint64) (uint32, error) {
	const q = `SELECT total_tickets FROM shows WHERE id = ? AND tenant_id = ? FOR UPDATE`
	var total uint32
	err := t.tx.QueryRowContext(ctx, q, showID, tenantID).Scan(&total)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ledger.ErrShowNotFound
		}
		return 0, err
	}
	return total, nil
}

// SumAllocated sums ticket counts over all offers of the show.
func (t *capacityTx) SumAllocated(ctx context.Context, showID uint64) (uint32, error) {
	const q = `SELECT COALESCE(SUM(ticket_count), 0) FROM ticket_offers WHERE show_id = ?`
	var sum uint32
	if err := t.tx.QueryRowContext(ctx, q, showID).Scan(&sum); err != nil {
		return 0, err
	}
	return sum, nil
}

// SumAllocatedExcluding sums ticket counts over the show's offers with
// one offer left out of the total.
func (t *capacityTx) SumAllocatedExcluding(ctx context.Context, showID, offerID uint64) (uint32, error) {
	const q = `SELECT COALESCE(SUM(ticket_count), 0) FROM ticket_offers WHERE show_id = ? AND id <> ?`
	var sum uint32
	if err := t.tx.QueryRowContext(ctx, q, showID, offerID).Scan(&sum); err != nil {
		return 0, err
	}
	return sum, nil
}

// GetOffer loads an offer, enforcing tenant scope through the owning
// show.
func (t *capacityTx) GetOffer(ctx context.Context, tenantID, offerID uint64) (model.TicketOffer, error) {
	const q = `SELECT o.id, o.show_id, o.name, o.price_cents, o.ticket_count, o.created_at, o.updated_at
               FROM ticket_offers o
               JOIN shows s ON s.id = o.show_id
               WHERE o.id = ? AND s.tenant_id = ?`
	var o model.TicketOffer
	err := t.tx.QueryRowContext(ctx, q, offerID, tenantID).Scan(
		&o.ID, &o.ShowID, &o.Name, &o.PriceCents, &o.TicketCount, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.TicketOffer{}, ledger.ErrOfferNotFound
		}
		return model.TicketOffer{}, err
	}
	return o, nil
}

// InsertOffer inserts the offer row and reads back the DB-assigned ID
// and timestamps.
func (t *capacityTx) InsertOffer(ctx context.Context, offer *model.TicketOffer) error {
	const q = `INSERT INTO ticket_offers (show_id, name, price_cents, ticket_count) VALUES (?, ?, ?, ?)`
	res, err := t.tx.ExecContext(ctx, q, offer.ShowID, offer.Name, offer.PriceCents, offer.TicketCount)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	offer.ID = uint64(id)
	const sel = `SELECT created_at, updated_at FROM ticket_offers WHERE id = ?`
	return t.tx.QueryRowContext(ctx, sel, offer.ID).Scan(&offer.CreatedAt, &offer.UpdatedAt)
}

// UpdateOffer applies the offer's name, price and count.
func (t *capacityTx) UpdateOffer(ctx context.Context, offer *model.TicketOffer) error {
	const q = `UPDATE ticket_offers
               SET name = ?, price_cents = ?, ticket_count = ?, updated_at = CURRENT_TIMESTAMP
               WHERE id = ?`
	if _, err := t.tx.ExecContext(ctx, q, offer.Name, offer.PriceCents, offer.TicketCount, offer.ID); err != nil {
		return err
	}
	const sel = `SELECT updated_at FROM ticket_offers WHERE id = ?`
	return t.tx.QueryRowContext(ctx, sel, offer.ID).Scan(&offer.UpdatedAt)
}

func (t *capacityTx) Commit() error   { return t.tx.Commit() }
func (t *capacityTx) Rollback() error { return t.tx.Rollback() }
