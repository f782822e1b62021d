package catalog

import "context"

// Store persists the whole catalog. Every mutation rewrites the complete
// ordered collection.
type Store interface {
	// Init prepares empty storage if none exists.
	Init(ctx context.Context) error
	Load(ctx context.Context) ([]Item, error)
	Save(ctx context.Context, items []Item) error
	Ping(ctx context.Context) error
}
