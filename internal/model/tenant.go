package model

import "time"

// Tenant represents an event organizer. Every venue, act, show and
// ticket offer belongs to exactly one tenant, and all repository
// queries are scoped by tenant ID so that rows of other tenants are
// indistinguishable from rows that do not exist.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – display name of the organizer.
//  Slug      – unique, URL-safe identifier used for joining a tenant
//              at registration and for public browse URLs.
//  CreatedAt – timestamp of creation.
//  UpdatedAt – timestamp of last update.
type Tenant struct {
	ID        uint64    // tenants.id
	Name      string    // tenants.name
	Slug      string    // tenants.slug
	CreatedAt time.Time // tenants.created_at
	UpdatedAt time.Time // tenants.updated_at
}
