package ports

import (
	"context"
	"time"

	"venuebook/internal/domain/shared/events"
)

// Cache is a best-effort read-through cache. Callers treat every failure
// as a miss; correctness always comes from the authoritative store.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// BulkInvalidator is an optional cache capability. Backends without it
// fall back to targeted deletes plus a bounded TTL.
type BulkInvalidator interface {
	DeletePrefix(ctx context.Context, prefix string) error
}

// Locker serializes check-then-act sequences against a shared key, closing
// the race between two concurrent availability checks on the same venue.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// Publisher emits domain events after successful mutations. Delivery is
// fire-and-forget: failures are logged by the caller and never propagated.
type Publisher interface {
	Publish(ctx context.Context, event events.DomainEvent) error
}

// Atomic runs fn inside one transactional unit when the backing store
// supports it; the in-memory implementation simply invokes fn.
type Atomic interface {
	Within(ctx context.Context, fn func(ctx context.Context) error) error
}
