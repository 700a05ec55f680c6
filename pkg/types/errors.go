package types

import "errors"

// Identifier errors. IdentifierError values match ErrInvalidIdentifier.
var (
	ErrInvalidIdentifier = errors.New("dux: invalid identifier")
)

// Cache lifecycle errors.
var (
	ErrCacheDetached   = errors.New("dux: cache is detached")
	ErrAlreadyAttached = errors.New("dux: cache is already attached")
	ErrStateNotFound   = errors.New("dux: no cached state for entity")
)
