package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagepass/ticketing/internal/ledger"
	"github.com/stagepass/ticketing/internal/model"
)

// fakeStore is a minimal single-threaded ledger.Store for handler
// tests. Writes apply immediately on Commit; Rollback discards them.
type fakeStore struct {
	nextID uint64
	shows  map[uint64]fakeShow
	offers map[uint64]model.TicketOffer
}

type fakeShow struct {
	tenantID uint64
	total    uint32
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		nextID: 1,
		shows:  make(map[uint64]fakeShow),
		offers: make(map[uint64]model.TicketOffer),
	}
}

func (s *fakeStore) addShow(tenantID uint64, total uint32) uint64 {
	id := s.nextID
	s.nextID++
	s.shows[id] = fakeShow{tenantID: tenantID, total: total}
	return id
}

func (s *fakeStore) allocated(showID, exclude uint64) uint32 {
	var sum uint32
	for id, o := range s.offers {
		if o.ShowID == showID && id != exclude {
			sum += o.TicketCount
		}
	}
	return sum
}

func (s *fakeStore) ShowCapacity(ctx context.Context, tenantID, showID uint64) (model.ShowCapacity, error) {
	sh, ok := s.shows[showID]
	if !ok || sh.tenantID != tenantID {
		return model.ShowCapacity{}, ledger.ErrShowNotFound
	}
	alloc := s.allocated(showID, 0)
	return model.ShowCapacity{
		ShowID:            showID,
		TotalTickets:      sh.total,
		AllocatedTickets:  alloc,
		AvailableCapacity: sh.total - alloc,
	}, nil
}

func (s *fakeStore) Begin(ctx context.Context) (ledger.Tx, error) {
	return &fakeTx{store: s, staged: make(map[uint64]model.TicketOffer)}, nil
}

type fakeTx struct {
	store  *fakeStore
	staged map[uint64]model.TicketOffer
}

func (t *fakeTx) LockShow(ctx context.Context, tenantID, showID uint64) (uint32, error) {
	sh, ok := t.store.shows[showID]
	if !ok || sh.tenantID != tenantID {
		return 0, ledger.ErrShowNotFound
	}
	return sh.total, nil
}

func (t *fakeTx) SumAllocated(ctx context.Context, showID uint64) (uint32, error) {
	return t.store.allocated(showID, 0), nil
}

func (t *fakeTx) SumAllocatedExcluding(ctx context.Context, showID, offerID uint64) (uint32, error) {
	return t.store.allocated(showID, offerID), nil
}

func (t *fakeTx) GetOffer(ctx context.Context, tenantID, offerID uint64) (model.TicketOffer, error) {
	o, ok := t.store.offers[offerID]
	if !ok {
		return model.TicketOffer{}, ledger.ErrOfferNotFound
	}
	sh, ok := t.store.shows[o.ShowID]
	if !ok || sh.tenantID != tenantID {
		return model.TicketOffer{}, ledger.ErrOfferNotFound
	}
	return o, nil
}

func (t *fakeTx) InsertOffer(ctx context.Context, offer *model.TicketOffer) error {
	offer.ID = t.store.nextID
	t.store.nextID++
	now := time.Now().UTC()
	offer.CreatedAt = now
	offer.UpdatedAt = now
	t.staged[offer.ID] = *offer
	return nil
}

func (t *fakeTx) UpdateOffer(ctx context.Context, offer *model.TicketOffer) error {
	offer.UpdatedAt = time.Now().UTC()
	t.staged[offer.ID] = *offer
	return nil
}

func (t *fakeTx) Commit() error {
	for id, o := range t.staged {
		t.store.offers[id] = o
	}
	return nil
}

func (t *fakeTx) Rollback() error { return nil }

// newOfferRequest builds an echo context carrying the identity the JWT
// middleware would have injected.
func newOfferRequest(t *testing.T, method, target, body string, tenantID uint64) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", uint64(7))
	c.Set("tenant_id", tenantID)
	c.Set("role", "ADMIN")
	return c, rec
}

func TestGetShowCapacity(t *testing.T) {
	store := newFakeStore()
	showID := store.addShow(1, 500)
	h := &TenantHandler{Ledger: ledger.New(store)}

	c, rec := newOfferRequest(t, http.MethodGet, "/v1/shows/1/capacity", "", 1)
	c.SetParamNames("id")
	c.SetParamValues("1")

	require.NoError(t, h.GetShowCapacity(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body model.ShowCapacity
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, showID, body.ShowID)
	assert.Equal(t, uint32(500), body.TotalTickets)
	assert.Equal(t, uint32(500), body.AvailableCapacity)
}

func TestGetShowCapacityCrossTenant(t *testing.T) {
	store := newFakeStore()
	store.addShow(1, 500)
	h := &TenantHandler{Ledger: ledger.New(store)}

	c, rec := newOfferRequest(t, http.MethodGet, "/v1/shows/1/capacity", "", 2)
	c.SetParamNames("id")
	c.SetParamValues("1")

	require.NoError(t, h.GetShowCapacity(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateOfferHandler(t *testing.T) {
	store := newFakeStore()
	store.addShow(1, 500)
	h := &TenantHandler{Ledger: ledger.New(store)}

	c, rec := newOfferRequest(t, http.MethodPost, "/v1/shows/1/offers",
		`{"name":"General Admission","price_cents":2500,"ticket_count":200}`, 1)
	c.SetParamNames("id")
	c.SetParamValues("1")

	require.NoError(t, h.CreateOffer(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var body offerResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotZero(t, body.ID)
	assert.Equal(t, "General Admission", body.Name)
	assert.Equal(t, uint32(2500), body.PriceCents)
	assert.Equal(t, uint32(200), body.TicketCount)
}

func TestCreateOfferHandlerValidation(t *testing.T) {
	store := newFakeStore()
	store.addShow(1, 500)
	h := &TenantHandler{Ledger: ledger.New(store)}

	cases := []struct {
		name string
		body string
	}{
		{"missing name", `{"price_cents":2500,"ticket_count":10}`},
		{"zero price", `{"name":"GA","price_cents":0,"ticket_count":10}`},
		{"zero count", `{"name":"GA","price_cents":2500,"ticket_count":0}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := newOfferRequest(t, http.MethodPost, "/v1/shows/1/offers", tc.body, 1)
			c.SetParamNames("id")
			c.SetParamValues("1")

			require.NoError(t, h.CreateOffer(c))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestCreateOfferHandlerCapacityExceeded(t *testing.T) {
	store := newFakeStore()
	store.addShow(1, 100)
	h := &TenantHandler{Ledger: ledger.New(store)}

	c, rec := newOfferRequest(t, http.MethodPost, "/v1/shows/1/offers",
		`{"name":"GA","price_cents":2500,"ticket_count":60}`, 1)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.CreateOffer(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	c, rec = newOfferRequest(t, http.MethodPost, "/v1/shows/1/offers",
		`{"name":"VIP","price_cents":9900,"ticket_count":60}`, 1)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.CreateOffer(c))
	assert.Equal(t, http.StatusConflict, rec.Code)

	var body struct {
		ErrorCode string `json:"error_code"`
		Requested uint32 `json:"requested"`
		Available uint32 `json:"available"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "CAPACITY_EXCEEDED", body.ErrorCode)
	assert.Equal(t, uint32(60), body.Requested)
	assert.Equal(t, uint32(40), body.Available)
}

func TestUpdateOfferHandler(t *testing.T) {
	store := newFakeStore()
	showID := store.addShow(1, 100)
	h := &TenantHandler{Ledger: ledger.New(store)}

	offer, err := h.Ledger.CreateOffer(context.Background(), 1, showID, "GA", 2500, 80)
	require.NoError(t, err)

	// Raising 80 -> 100 fits because the offer's own allocation does
	// not count against it.
	c, rec := newOfferRequest(t, http.MethodPut, "/v1/offers/1",
		`{"name":"GA","price_cents":2500,"ticket_count":100}`, 1)
	c.SetParamNames("id")
	c.SetParamValues(strconv.FormatUint(offer.ID, 10))

	require.NoError(t, h.UpdateOffer(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body offerResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, uint32(100), body.TicketCount)
}

func TestUpdateOfferHandlerNotFound(t *testing.T) {
	store := newFakeStore()
	store.addShow(1, 100)
	h := &TenantHandler{Ledger: ledger.New(store)}

	c, rec := newOfferRequest(t, http.MethodPut, "/v1/offers/99",
		`{"name":"GA","price_cents":2500,"ticket_count":10}`, 1)
	c.SetParamNames("id")
	c.SetParamValues("99")

	require.NoError(t, h.UpdateOffer(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
