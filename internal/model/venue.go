package model

import "time"

// Venue represents a physical location where shows take place. The
// seating capacity is the upper bound for the total ticket capacity
// of any show scheduled at the venue.
//
// Fields:
//  ID              – primary key identifier.
//  TenantID        – owning tenant.
//  Name            – venue name.
//  City            – city the venue is located in.
//  Address         – street address.
//  SeatingCapacity – maximum number of seats available at the venue.
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last update timestamp.
type Venue struct {
	ID              uint64    // venues.id
	TenantID        uint64    // venues.tenant_id
	Name            string    // venues.name
	City            string    // venues.city
	Address         string    // venues.address
	SeatingCapacity uint32    // venues.seating_capacity
	CreatedAt       time.Time // venues.created_at
	UpdatedAt       time.Time // venues.updated_at
}
