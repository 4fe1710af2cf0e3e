package domain

import (
	"context"
	"io"
)

// Option is a single entry of a select field's option list.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Payload is a validated write payload keyed by column name.
// File uploads are resolved to public URLs before the payload is built,
// so repositories only ever see scalar values.
type Payload map[string]any

// Repository is the per-entity persistence contract the controllers
// consume. Implementations are schema-driven; one implementation serves
// every configured entity.
type Repository interface {
	// FetchVisible returns all rows where visible = true, honoring the
	// entity's join/select specification, ordered by identifier ascending.
	FetchVisible(ctx context.Context) ([]Record, error)

	// FetchByParent returns all rows scoped to the entity's parent key
	// (order lines by id_orden), hidden rows included; callers filter
	// on visibility themselves. Entities without a parent key error.
	FetchByParent(ctx context.Context, parentID string) ([]Record, error)

	// GetByID retrieves a single record by identifier.
	GetByID(ctx context.Context, id string) (Record, error)

	// Create inserts a new row.
	Create(ctx context.Context, payload Payload) error

	// Update modifies an existing row.
	Update(ctx context.Context, id string, payload Payload) error

	// SetVisibility performs soft delete / restore and returns the new
	// state. Re-applying the current state is a no-op (no write issued).
	SetVisibility(ctx context.Context, id string, targetVisible bool) (bool, error)

	// ListOptions returns {value, label} pairs for select fields,
	// optionally scoped to a parent identifier (cascading selects).
	ListOptions(ctx context.Context, filterParentID string) ([]Option, error)
}

// FileStore uploads a file and returns its public URL.
// Only file-bearing entities (producto) use it.
type FileStore interface {
	UploadFile(ctx context.Context, name string, size int64, r io.Reader) (string, error)
}

// RepositorySet resolves the repository for an entity name.
// A missing entry is a configuration error, fatal to that view only.
type RepositorySet interface {
	Repo(entity string) (Repository, bool)
}
