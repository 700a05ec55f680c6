package store

import "errors"

// Registry errors.
var (
	ErrNotRegistered     = errors.New("store: entity type not registered")
	ErrAlreadyRegistered = errors.New("store: entity type already registered")
	ErrNilEntity         = errors.New("store: entity is nil")
	ErrNilTask           = errors.New("store: task is nil")
)
