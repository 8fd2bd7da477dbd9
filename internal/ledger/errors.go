// Package ledger enforces the capacity invariant of a show: the sum of
// ticket counts across all of a show's offers never exceeds the show's
// total ticket capacity, including under concurrent offer writes.
package ledger

import (
	"errors"
	"fmt"
)

// ErrShowNotFound indicates that the show does not exist within the
// caller's tenant. A show that belongs to another tenant produces the
// same error so that cross-tenant existence cannot be probed.
var ErrShowNotFound = errors.New("show not found")

// ErrOfferNotFound indicates that the ticket offer does not exist
// within the caller's tenant. As with shows, offers of other tenants
// are indistinguishable from missing ones.
var ErrOfferNotFound = errors.New("ticket offer not found")

// ErrInvalidPrice indicates a price of zero. Prices are validated
// before any transaction is opened.
var ErrInvalidPrice = errors.New("price must be greater than zero")

// ErrInvalidCount indicates a ticket count of zero. Counts are
// validated before any transaction is opened.
var ErrInvalidCount = errors.New("ticket count must be greater than zero")

// CapacityError reports that a requested allocation would push the
// show's allocated ticket sum above its total capacity. It carries the
// requested and the actually available amount so callers can present
// an actionable message ("requested 500, only 400 available"). It is
// an expected outcome, not an infrastructure failure; handlers branch
// on it with errors.As.
type CapacityError struct {
	Requested uint32 // ticket count the caller asked for
	Available uint32 // capacity that was actually free at validation time
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("capacity exceeded: requested %d tickets, %d available", e.Requested, e.Available)
}
