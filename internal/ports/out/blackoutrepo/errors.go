package blackoutrepo

import "errors"

var (
	ErrNotFound      = errors.New("blackout not found")
	ErrAlreadyExists = errors.New("blackout already exists")
)
