package bookingrepo

import "errors"

var (
	ErrNotFound      = errors.New("booking not found")
	ErrAlreadyExists = errors.New("booking already exists")
)
