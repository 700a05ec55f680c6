package normalize

import (
	"errors"
	"fmt"
)

// Normalization errors.
var (
	ErrNoSchema      = errors.New("dux: list schema has no entity")
	ErrBadPath       = errors.New("dux: invalid list path")
	ErrListNotFound  = errors.New("dux: list not found in response")
	ErrListNotArray  = errors.New("dux: list is not an array")
	ErrItemNotObject = errors.New("dux: list item is not an object")
)

// Error locates a normalization failure inside the response.
type Error struct {
	Entity string
	Index  int
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("normalize %s[%d]: %v", e.Entity, e.Index, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
