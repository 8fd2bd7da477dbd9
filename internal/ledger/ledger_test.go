package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagepass/ticketing/internal/model"
)

// memStore is an in-memory Store. Begin takes the store mutex and
// Commit/Rollback release it, so transactions are fully serialized the
// way row locks serialize them in MySQL. Writes are staged in the
// transaction and applied on Commit, so a rollback leaves no trace.
type memStore struct {
	mu         sync.Mutex
	nextID     uint64
	shows      map[uint64]memShow
	offers     map[uint64]model.TicketOffer
	beginCalls int
}

type memShow struct {
	tenantID uint64
	total    uint32
}

func newMemStore() *memStore {
	return &memStore{
		nextID: 1,
		shows:  make(map[uint64]memShow),
		offers: make(map[uint64]model.TicketOffer),
	}
}

func (s *memStore) addShow(tenantID uint64, total uint32) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.shows[id] = memShow{tenantID: tenantID, total: total}
	return id
}

func (s *memStore) ShowCapacity(ctx context.Context, tenantID, showID uint64) (model.ShowCapacity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sh, ok := s.shows[showID]
	if !ok || sh.tenantID != tenantID {
		return model.ShowCapacity{}, ErrShowNotFound
	}
	var allocated uint32
	for _, o := range s.offers {
		if o.ShowID == showID {
			allocated += o.TicketCount
		}
	}
	return model.ShowCapacity{
		ShowID:            showID,
		TotalTickets:      sh.total,
		AllocatedTickets:  allocated,
		AvailableCapacity: sh.total - allocated,
	}, nil
}

func (s *memStore) Begin(ctx context.Context) (Tx, error) {
	s.mu.Lock()
	s.beginCalls++
	return &memTx{store: s, staged: make(map[uint64]model.TicketOffer)}, nil
}

type memTx struct {
	store  *memStore
	staged map[uint64]model.TicketOffer
	done   bool
}

func (t *memTx) LockShow(ctx context.Context, tenantID, showID uint64) (uint32, error) {
	sh, ok := t.store.shows[showID]
	if !ok || sh.tenantID != tenantID {
		return 0, ErrShowNotFound
	}
	return sh.total, nil
}

func (t *memTx) sum(showID uint64, exclude uint64) uint32 {
	var total uint32
	for id, o := range t.store.offers {
		if _, shadowed := t.staged[id]; shadowed {
			continue
		}
		if o.ShowID == showID && id != exclude {
			total += o.TicketCount
		}
	}
	for id, o := range t.staged {
		if o.ShowID == showID && id != exclude {
			total += o.TicketCount
		}
	}
	return total
}

func (t *memTx) SumAllocated(ctx context.Context, showID uint64) (uint32, error) {
	return t.sum(showID, 0), nil
}

func (t *memTx) SumAllocatedExcluding(ctx context.Context, showID, offerID uint64) (uint32, error) {
	return t.sum(showID, offerID), nil
}

func (t *memTx) GetOffer(ctx context.Context, tenantID, offerID uint64) (model.TicketOffer, error) {
	o, ok := t.store.offers[offerID]
	if !ok {
		return model.TicketOffer{}, ErrOfferNotFound
	}
	sh, ok := t.store.shows[o.ShowID]
	if !ok || sh.tenantID != tenantID {
		return model.TicketOffer{}, ErrOfferNotFound
	}
	return o, nil
}

func (t *memTx) InsertOffer(ctx context.Context, offer *model.TicketOffer) error {
	offer.ID = t.store.nextID
	t.store.nextID++
	now := time.Now().UTC()
	offer.CreatedAt = now
	offer.UpdatedAt = now
	t.staged[offer.ID] = *offer
	return nil
}

func (t *memTx) UpdateOffer(ctx context.Context, offer *model.TicketOffer) error {
	offer.UpdatedAt = time.Now().UTC()
	t.staged[offer.ID] = *offer
	return nil
}

func (t *memTx) Commit() error {
	for id, o := range t.staged {
		t.store.offers[id] = o
	}
	return t.finish()
}

func (t *memTx) Rollback() error {
	return t.finish()
}

func (t *memTx) finish() error {
	if t.done {
		return nil
	}
	t.done = true
	t.store.mu.Unlock()
	return nil
}

func TestCapacityEmptyShow(t *testing.T) {
	store := newMemStore()
	showID := store.addShow(1, 500)
	l := New(store)

	capacity, err := l.Capacity(context.Background(), 1, showID)
	require.NoError(t, err)
	assert.Equal(t, uint32(500), capacity.TotalTickets)
	assert.Equal(t, uint32(0), capacity.AllocatedTickets)
	assert.Equal(t, uint32(500), capacity.AvailableCapacity)

	// Repeated reads without writes in between are identical.
	again, err := l.Capacity(context.Background(), 1, showID)
	require.NoError(t, err)
	assert.Equal(t, capacity, again)
}

func TestCapacityCrossTenant(t *testing.T) {
	store := newMemStore()
	showID := store.addShow(1, 500)
	l := New(store)

	_, err := l.Capacity(context.Background(), 2, showID)
	assert.ErrorIs(t, err, ErrShowNotFound)
}

func TestCreateOfferInvalidArguments(t *testing.T) {
	store := newMemStore()
	showID := store.addShow(1, 500)
	l := New(store)

	_, err := l.CreateOffer(context.Background(), 1, showID, "GA", 0, 10)
	assert.ErrorIs(t, err, ErrInvalidPrice)

	_, err = l.CreateOffer(context.Background(), 1, showID, "GA", 2500, 0)
	assert.ErrorIs(t, err, ErrInvalidCount)

	// Validation failures must not open a transaction.
	assert.Equal(t, 0, store.beginCalls)
}

func TestCreateOfferShowNotFound(t *testing.T) {
	store := newMemStore()
	showID := store.addShow(1, 500)
	l := New(store)

	_, err := l.CreateOffer(context.Background(), 1, showID+100, "GA", 2500, 10)
	assert.ErrorIs(t, err, ErrShowNotFound)

	// Another tenant's show looks exactly like a missing one.
	_, err = l.CreateOffer(context.Background(), 2, showID, "GA", 2500, 10)
	assert.ErrorIs(t, err, ErrShowNotFound)
}

func TestCreateOfferExactFit(t *testing.T) {
	store := newMemStore()
	showID := store.addShow(1, 100)
	l := New(store)

	offer, err := l.CreateOffer(context.Background(), 1, showID, "GA", 2500, 100)
	require.NoError(t, err)
	assert.NotZero(t, offer.ID)
	assert.Equal(t, uint32(100), offer.TicketCount)

	capacity, err := l.Capacity(context.Background(), 1, showID)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), capacity.AvailableCapacity)
}

func TestCreateOfferOverflow(t *testing.T) {
	store := newMemStore()
	showID := store.addShow(1, 500)
	l := New(store)

	_, err := l.CreateOffer(context.Background(), 1, showID, "GA", 2500, 350)
	require.NoError(t, err)

	_, err = l.CreateOffer(context.Background(), 1, showID, "VIP", 9900, 200)
	var capErr *CapacityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, uint32(200), capErr.Requested)
	assert.Equal(t, uint32(150), capErr.Available)

	// The rejected offer left nothing behind.
	capacity, err := l.Capacity(context.Background(), 1, showID)
	require.NoError(t, err)
	assert.Equal(t, uint32(350), capacity.AllocatedTickets)
}

func TestUpdateOfferExcludesOwnAllocation(t *testing.T) {
	store := newMemStore()
	showID := store.addShow(1, 500)
	l := New(store)

	offer, err := l.CreateOffer(context.Background(), 1, showID, "GA", 2500, 400)
	require.NoError(t, err)

	// 400 -> 500 fits because the offer's own 400 does not count
	// against it; only the remaining 0 from other offers does.
	updated, err := l.UpdateOffer(context.Background(), 1, offer.ID, "GA", 2500, 500)
	require.NoError(t, err)
	assert.Equal(t, uint32(500), updated.TicketCount)
}

func TestUpdateOfferReduceAlwaysFits(t *testing.T) {
	store := newMemStore()
	showID := store.addShow(1, 100)
	l := New(store)

	offer, err := l.CreateOffer(context.Background(), 1, showID, "GA", 2500, 100)
	require.NoError(t, err)

	updated, err := l.UpdateOffer(context.Background(), 1, offer.ID, "GA", 2000, 10)
	require.NoError(t, err)
	assert.Equal(t, uint32(10), updated.TicketCount)
	assert.Equal(t, uint32(2000), updated.PriceCents)

	capacity, err := l.Capacity(context.Background(), 1, showID)
	require.NoError(t, err)
	assert.Equal(t, uint32(90), capacity.AvailableCapacity)
}

func TestUpdateOfferOverflow(t *testing.T) {
	store := newMemStore()
	showID := store.addShow(1, 500)
	l := New(store)

	_, err := l.CreateOffer(context.Background(), 1, showID, "GA", 2500, 300)
	require.NoError(t, err)
	vip, err := l.CreateOffer(context.Background(), 1, showID, "VIP", 9900, 100)
	require.NoError(t, err)

	// Available for VIP excludes its own 100: 500 - 300 = 200.
	_, err = l.UpdateOffer(context.Background(), 1, vip.ID, "VIP", 9900, 250)
	var capErr *CapacityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, uint32(250), capErr.Requested)
	assert.Equal(t, uint32(200), capErr.Available)

	// The failed update changed nothing.
	capacity, err := l.Capacity(context.Background(), 1, showID)
	require.NoError(t, err)
	assert.Equal(t, uint32(400), capacity.AllocatedTickets)
}

func TestUpdateOfferNotFound(t *testing.T) {
	store := newMemStore()
	showID := store.addShow(1, 500)
	l := New(store)

	offer, err := l.CreateOffer(context.Background(), 1, showID, "GA", 2500, 10)
	require.NoError(t, err)

	_, err = l.UpdateOffer(context.Background(), 1, offer.ID+100, "GA", 2500, 10)
	assert.ErrorIs(t, err, ErrOfferNotFound)

	// Cross-tenant updates are indistinguishable from missing offers.
	_, err = l.UpdateOffer(context.Background(), 2, offer.ID, "GA", 2500, 10)
	assert.ErrorIs(t, err, ErrOfferNotFound)
}

func TestConcurrentCreatesNeverOverflow(t *testing.T) {
	store := newMemStore()
	showID := store.addShow(1, 100)
	l := New(store)

	// Two concurrent creates of 60 each would jointly overflow a show
	// of 100; exactly one may commit.
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = l.CreateOffer(context.Background(), 1, showID, "Batch", 2500, 60)
		}(i)
	}
	wg.Wait()

	var capErr *CapacityError
	switch {
	case errs[0] == nil:
		require.ErrorAs(t, errs[1], &capErr)
	case errs[1] == nil:
		require.ErrorAs(t, errs[0], &capErr)
	default:
		t.Fatalf("expected exactly one create to succeed, got %v and %v", errs[0], errs[1])
	}
	assert.Equal(t, uint32(60), capErr.Requested)
	assert.Equal(t, uint32(40), capErr.Available)

	capacity, err := l.Capacity(context.Background(), 1, showID)
	require.NoError(t, err)
	assert.Equal(t, uint32(60), capacity.AllocatedTickets)
}

func TestAllocationLifecycle(t *testing.T) {
	store := newMemStore()
	showID := store.addShow(1, 500)
	l := New(store)
	ctx := context.Background()

	_, err := l.CreateOffer(ctx, 1, showID, "General Admission", 2500, 200)
	require.NoError(t, err)
	vip, err := l.CreateOffer(ctx, 1, showID, "VIP", 9900, 150)
	require.NoError(t, err)

	capacity, err := l.Capacity(ctx, 1, showID)
	require.NoError(t, err)
	assert.Equal(t, uint32(350), capacity.AllocatedTickets)
	assert.Equal(t, uint32(150), capacity.AvailableCapacity)

	// 200 no longer fits.
	_, err = l.CreateOffer(ctx, 1, showID, "Balcony", 1500, 200)
	var capErr *CapacityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, uint32(200), capErr.Requested)
	assert.Equal(t, uint32(150), capErr.Available)

	// Shrinking VIP frees room.
	_, err = l.UpdateOffer(ctx, 1, vip.ID, "VIP", 9900, 100)
	require.NoError(t, err)

	capacity, err = l.Capacity(ctx, 1, showID)
	require.NoError(t, err)
	assert.Equal(t, uint32(300), capacity.AllocatedTickets)
	assert.Equal(t, uint32(200), capacity.AvailableCapacity)

	// Now the 200-ticket offer fits exactly.
	_, err = l.CreateOffer(ctx, 1, showID, "Balcony", 1500, 200)
	require.NoError(t, err)

	capacity, err = l.Capacity(ctx, 1, showID)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), capacity.AvailableCapacity)
}
