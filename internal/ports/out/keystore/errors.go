package keystore

import "errors"

var ErrNotFound = errors.New("idempotency record not found")
