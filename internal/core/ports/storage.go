package ports

import (
	"context"
	"time"
)

// Storage is the durable key-value mechanism behind the token store.
// Expiry is enforced by the implementation: an expired key reads as a miss.
type Storage interface {
	// Get returns domain.ErrStorageMiss when key is absent or expired.
	Get(ctx context.Context, key string) (string, error)
	// Set writes value under key. ttl <= 0 means no expiry.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Delete removes the keys; missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
}

// Pinger is implemented by storages that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}
