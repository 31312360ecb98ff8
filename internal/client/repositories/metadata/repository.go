// Package metadata is a small key/value store in the client database.
// The session store keeps the bearer token here under a fixed key.
package metadata

import "context"

// Repository persists string values by key. Get returns ("", false, nil)
// for an absent key.
type Repository interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
}
