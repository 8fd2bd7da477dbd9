// Package queue defines message payloads exchanged over the message
// broker and the background consumer that processes them.
package queue

// OfferAllocatedEvent is published after a ticket offer allocation
// commits (create or update). It carries enough information for
// downstream consumers to log, notify or feed analytics without
// querying the primary database.
type OfferAllocatedEvent struct {
	OfferID     uint64 `json:"offer_id"`
	ShowID      uint64 `json:"show_id"`
	TenantID    uint64 `json:"tenant_id"`
	Name        string `json:"name"`
	PriceCents  uint32 `json:"price_cents"`
	TicketCount uint32 `json:"ticket_count"`
	Action      string `json:"action"` // "created" or "updated"
	OccurredAt  string `json:"occurred_at"`
}
