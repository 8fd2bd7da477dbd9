package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/stagepass/ticketing/internal/model"
)

// ErrSlugExists indicates that a tenant with the requested slug
// already exists.
var ErrSlugExists = errors.New("tenant slug already exists")

// TenantRepo manages persistence for tenants.
type TenantRepo struct{ DB *sql.DB }

// NewTenantRepo constructs a TenantRepo with the given DB handle.
func NewTenantRepo(db *sql.DB) *TenantRepo { return &TenantRepo{DB: db} }

// CreateTx inserts a new tenant using the provided transaction so that
// tenant and first user can be created atomically during registration.
func (r *TenantRepo) CreateTx(ctx context.Context, tx *sql.Tx, t *model.Tenant) error {
	t.Slug = strings.ToLower(strings.TrimSpace(t.Slug))
	res, err := tx.ExecContext(ctx,
		"INSERT INTO tenants (name, slug) VALUES (?, ?)",
		t.Name, t.Slug)
	if err != nil {
		// MySQL duplicate key error code.
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrSlugExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return tx.QueryRowContext(ctx,
		"SELECT created_at, updated_at FROM tenants WHERE id = ?", t.ID,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
}

// GetByID fetches a tenant by id.
func (r *TenantRepo) GetByID(ctx context.Context, id uint64) (model.Tenant, error) {
	var t model.Tenant
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, name, slug, created_at, updated_at FROM tenants WHERE id = ? LIMIT 1",
		id).Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Tenant{}, ErrTenantNotFound
	}
	return t, err
}

// GetBySlug fetches a tenant by its normalized slug.
func (r *TenantRepo) GetBySlug(ctx context.Context, slug string) (model.Tenant, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	var t model.Tenant
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, name, slug, created_at, updated_at FROM tenants WHERE slug = ? LIMIT 1",
		slug).Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Tenant{}, ErrTenantNotFound
	}
	return t, err
}
