package model

import "time"

// TicketOffer represents one sellable slice of a show's capacity, such
// as "General Admission" or "VIP". Offers belong to their show; when a
// show is deleted its offers are removed with it, and deleting an offer
// implicitly frees its allocation (the next capacity computation simply
// no longer includes it).
//
// Fields:
//  ID          – primary key identifier.
//  ShowID      – owning show.
//  Name        – display name of the offer.
//  PriceCents  – unit price in cents, always > 0.
//  TicketCount – number of tickets allocated to this offer, always > 0.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type TicketOffer struct {
	ID          uint64    // ticket_offers.id
	ShowID      uint64    // ticket_offers.show_id
	Name        string    // ticket_offers.name
	PriceCents  uint32    // ticket_offers.price_cents
	TicketCount uint32    // ticket_offers.ticket_count
	CreatedAt   time.Time // ticket_offers.created_at
	UpdatedAt   time.Time // ticket_offers.updated_at
}

// ShowCapacity is a derived read model for a show's ticket capacity.
// It is computed on demand from the show row and its offers and is
// never persisted, so it cannot go stale independently of them.
type ShowCapacity struct {
	ShowID            uint64 `json:"show_id"`
	TotalTickets      uint32 `json:"total_tickets"`
	AllocatedTickets  uint32 `json:"allocated_tickets"`
	AvailableCapacity uint32 `json:"available_capacity"`
}
