package keystore

import (
	"context"
	"time"
)

// Record is a stored idempotency record. Response is nil until the owning
// caller attaches the outcome of the guarded operation.
type Record struct {
	Key       string
	Response  []byte
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Store persists idempotency records.
//
// InsertIfAbsent is the single concurrency-correctness primitive of the
// checkout path: it must be atomic, backed by the store's native uniqueness
// guarantee (unique index, primary key, or equivalent). A separate
// find-then-insert sequence is not an acceptable implementation; it
// reintroduces the duplicate-execution race this store exists to prevent.
type Store interface {
	// InsertIfAbsent atomically creates a record for key with a nil response.
	// It returns created=true when this call inserted the record, false when a
	// live record for key already exists. A record whose ExpiresAt is at or
	// before now counts as absent and may be reclaimed by the insert.
	InsertIfAbsent(ctx context.Context, key string, expiresAt, now time.Time) (created bool, err error)

	// Find returns the record for key, expired or not. ok=false when absent.
	Find(ctx context.Context, key string) (rec Record, ok bool, err error)

	// Update attaches a response to an existing record. Returns ErrNotFound
	// when no record for key exists.
	Update(ctx context.Context, key string, response []byte) error

	// Delete removes the record for key. Deleting an absent key is a no-op.
	Delete(ctx context.Context, key string) error
}
