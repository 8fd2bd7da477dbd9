// Package repository contains the raw-SQL data access layer. Each
// repository owns the queries for one table and returns sentinel
// errors that handlers translate into HTTP responses. Every query on
// tenant-owned tables carries the tenant ID in its WHERE clause, so a
// row belonging to another tenant behaves exactly like a missing row.
package repository

import "errors"

// ErrVenueNotFound indicates that a venue was not located within the
// tenant's scope. Handlers should translate this into 404.
var ErrVenueNotFound = errors.New("venue not found")

// ErrActNotFound indicates that an act was not located within the
// tenant's scope. Handlers should translate this into 404.
var ErrActNotFound = errors.New("act not found")

// ErrTenantNotFound indicates that no tenant exists for the given
// identifier or slug.
var ErrTenantNotFound = errors.New("tenant not found")

// ErrConflict is returned when a delete cannot be performed because of
// dependent records, such as removing a venue that still has shows
// scheduled. Handlers should translate this into 409.
var ErrConflict = errors.New("conflict")
