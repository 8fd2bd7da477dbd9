package model

import "time"

// Show represents a scheduled performance of an act at a venue. The
// total ticket capacity is fixed when the show is created (bounded by
// the venue's seating capacity) and never changes afterwards; ticket
// offers partition this capacity and the sum of their counts must
// never exceed it.
//
// Fields:
//  ID           – primary key identifier.
//  TenantID     – owning tenant.
//  VenueID      – venue where the show takes place.
//  ActID        – act that performs.
//  StartsAt     – when the show begins.
//  TotalTickets – fixed total ticket capacity of the show.
//  Status       – current state of the show (SCHEDULED, CANCELLED,
//                 FINISHED).
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type Show struct {
	ID           uint64    // shows.id
	TenantID     uint64    // shows.tenant_id
	VenueID      uint64    // shows.venue_id
	ActID        uint64    // shows.act_id
	StartsAt     time.Time // shows.starts_at
	TotalTickets uint32    // shows.total_tickets
	Status       string    // shows.status
	CreatedAt    time.Time // shows.created_at
	UpdatedAt    time.Time // shows.updated_at
}
