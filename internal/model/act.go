package model

import "time"

// Act represents a performer or production that can be scheduled for
// shows: a band, a theatre company, a comedian.
//
// Fields:
//  ID          – primary key identifier.
//  TenantID    – owning tenant.
//  Name        – act name.
//  Genre       – free-form genre label (e.g. "rock", "comedy").
//  Description – longer description shown on public pages.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Act struct {
	ID          uint64    // acts.id
	TenantID    uint64    // acts.tenant_id
	Name        string    // acts.name
	Genre       string    // acts.genre
	Description string    // acts.description
	CreatedAt   time.Time // acts.created_at
	UpdatedAt   time.Time // acts.updated_at
}
