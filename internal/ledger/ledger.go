package ledger

import (
	"context"

	"github.com/stagepass/ticketing/internal/model"
)

// Store is the transactional storage the ledger runs against. Begin
// opens a unit of work; read-only capacity queries go through
// ShowCapacity without a transaction. The SQL implementation lives in
// the repository package; tests substitute an in-memory fake.
type Store interface {
	// ShowCapacity returns the capacity read model for a show scoped
	// to the given tenant. It returns ErrShowNotFound when the show is
	// absent or owned by a different tenant.
	ShowCapacity(ctx context.Context, tenantID, showID uint64) (model.ShowCapacity, error)
	// Begin opens a transaction. The returned Tx must be finished with
	// exactly one Commit or Rollback call.
	Begin(ctx context.Context) (Tx, error)
}

// Tx is one atomic unit of work. LockShow must acquire a write lock on
// the show row so that the allocated-sum read and the offer write are
// atomic with respect to any concurrent transaction doing the same for
// the same show; this is the sole source of the no-joint-overflow
// guarantee.
type Tx interface {
	// LockShow locks the show row within the tenant's scope and
	// returns its total ticket capacity. Returns ErrShowNotFound when
	// the show is absent or cross-tenant.
	LockShow(ctx context.Context, tenantID, showID uint64) (uint32, error)
	// SumAllocated returns the sum of ticket counts over all offers of
	// the show, read inside the transaction.
	SumAllocated(ctx context.Context, showID uint64) (uint32, error)
	// SumAllocatedExcluding is SumAllocated with one offer left out,
	// used on the update path so an offer's own prior allocation does
	// not count against it.
	SumAllocatedExcluding(ctx context.Context, showID, offerID uint64) (uint32, error)
	// GetOffer loads an offer within the tenant's scope. Returns
	// ErrOfferNotFound when absent or cross-tenant.
	GetOffer(ctx context.Context, tenantID, offerID uint64) (model.TicketOffer, error)
	// InsertOffer persists a new offer and populates its ID and
	// timestamps.
	InsertOffer(ctx context.Context, offer *model.TicketOffer) error
	// UpdateOffer applies name, price and count of the given offer and
	// refreshes its UpdatedAt.
	UpdateOffer(ctx context.Context, offer *model.TicketOffer) error

	Commit() error
	Rollback() error
}

// Ledger validates and applies ticket offer allocations. It keeps no
// state between calls; all state lives in the store, and the tenant
// identity is an explicit parameter on every method.
type Ledger struct {
	store Store
}

// New constructs a Ledger on top of the given store.
func New(store Store) *Ledger {
	if store == nil {
		panic("nil store passed to ledger.New")
	}
	return &Ledger{store: store}
}

// Capacity returns the capacity read model for a show: total tickets,
// allocated tickets and the remaining available capacity. Read-only;
// repeated calls without intervening writes return identical results.
func (l *Ledger) Capacity(ctx context.Context, tenantID, showID uint64) (model.ShowCapacity, error) {
	return l.store.ShowCapacity(ctx, tenantID, showID)
}

// CreateOffer validates and persists a new ticket offer for a show.
// Price and count are range-checked before any transaction is opened.
// Inside the transaction the show row is locked and the allocated sum
// is re-read fresh, so two concurrent creates that would jointly
// overflow capacity cannot both commit. On overflow a *CapacityError
// carrying the actual available capacity is returned and nothing is
// written.
func (l *Ledger) CreateOffer(ctx context.Context, tenantID, showID uint64, name string, priceCents, count uint32) (model.TicketOffer, error) {
	if priceCents == 0 {
		return model.TicketOffer{}, ErrInvalidPrice
	}
	if count == 0 {
		return model.TicketOffer{}, ErrInvalidCount
	}

	tx, err := l.store.Begin(ctx)
	if err != nil {
		return model.TicketOffer{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	total, err := tx.LockShow(ctx, tenantID, showID)
	if err != nil {
		return model.TicketOffer{}, err
	}
	allocated, err := tx.SumAllocated(ctx, showID)
	if err != nil {
		return model.TicketOffer{}, err
	}
	available := total - allocated
	if count > available {
		return model.TicketOffer{}, &CapacityError{Requested: count, Available: available}
	}

	offer := model.TicketOffer{
		ShowID:      showID,
		Name:        name,
		PriceCents:  priceCents,
		TicketCount: count,
	}
	if err := tx.InsertOffer(ctx, &offer); err != nil {
		return model.TicketOffer{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.TicketOffer{}, err
	}
	committed = true
	return offer, nil
}

// UpdateOffer validates and applies new name, price and count to an
// existing offer. The capacity check excludes the offer's own prior
// allocation, so updates that reduce or keep the count always fit.
// The reported available capacity on overflow is likewise computed
// excluding the offer itself.
func (l *Ledger) UpdateOffer(ctx context.Context, tenantID, offerID uint64, name string, priceCents, count uint32) (model.TicketOffer, error) {
	if priceCents == 0 {
		return model.TicketOffer{}, ErrInvalidPrice
	}
	if count == 0 {
		return model.TicketOffer{}, ErrInvalidCount
	}

	tx, err := l.store.Begin(ctx)
	if err != nil {
		return model.TicketOffer{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	offer, err := tx.GetOffer(ctx, tenantID, offerID)
	if err != nil {
		return model.TicketOffer{}, err
	}
	total, err := tx.LockShow(ctx, tenantID, offer.ShowID)
	if err != nil {
		return model.TicketOffer{}, err
	}
	others, err := tx.SumAllocatedExcluding(ctx, offer.ShowID, offer.ID)
	if err != nil {
		return model.TicketOffer{}, err
	}
	available := total - others
	if count > available {
		return model.TicketOffer{}, &CapacityError{Requested: count, Available: available}
	}

	offer.Name = name
	offer.PriceCents = priceCents
	offer.TicketCount = count
	if err := tx.UpdateOffer(ctx, &offer); err != nil {
		return model.TicketOffer{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.TicketOffer{}, err
	}
	committed = true
	return offer, nil
}
