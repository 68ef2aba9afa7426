package idempotency

import "errors"

// ErrKeyNotFound is returned by UpdateResponse for a key that was never
// claimed (or was already reaped). It indicates a caller logic error, not a
// normal race outcome.
var ErrKeyNotFound = errors.New("idempotency key not found")
