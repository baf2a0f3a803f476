// Package service defines the interfaces for all application services.
package service

import "context"

// Storage is the durable key-value string store the ledger persists into.
// Values are opaque strings; the ledger owns their format.
type Storage interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	// SetMany writes all entries together; either all are written or none.
	SetMany(ctx context.Context, entries map[string]string) error
	Delete(ctx context.Context, key string) error
	// DeleteMany removes all keys together; either all are removed or none.
	DeleteMany(ctx context.Context, keys ...string) error
	Keys(ctx context.Context) ([]string, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}
