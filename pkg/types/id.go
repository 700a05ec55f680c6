package types

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// ID identifies an entity within its type. Numeric identifiers are stored in
// their canonical decimal text form so that 7 and "7" address the same slot.
type ID string

// String returns the identifier text.
func (id ID) String() string { return string(id) }

// IdentifierError reports an identifier that is missing or of an
// unsupported type. It matches ErrInvalidIdentifier with errors.Is.
type IdentifierError struct {
	Value   any
	Missing bool
}

func (e *IdentifierError) Error() string {
	if e.Missing {
		return "dux: id is required"
	}
	return fmt.Sprintf("dux: id %v (%T) is invalid", e.Value, e.Value)
}

// Is reports whether target is ErrInvalidIdentifier.
func (e *IdentifierError) Is(target error) bool {
	return target == ErrInvalidIdentifier
}

// ParseID validates v and returns its canonical ID.
//
// Falsy values (nil, "", numeric zero, NaN, false) are rejected as missing;
// anything that is neither a string nor a number is rejected as invalid.
// Zero is deliberately not a usable identifier.
func ParseID(v any) (ID, error) {
	switch x := v.(type) {
	case nil:
		return "", &IdentifierError{Value: v, Missing: true}
	case ID:
		if x == "" {
			return "", &IdentifierError{Value: v, Missing: true}
		}
		return x, nil
	case string:
		if x == "" {
			return "", &IdentifierError{Value: v, Missing: true}
		}
		return ID(x), nil
	case bool:
		if !x {
			return "", &IdentifierError{Value: v, Missing: true}
		}
		return "", &IdentifierError{Value: v}
	case int:
		return intID(int64(x), v)
	case int8:
		return intID(int64(x), v)
	case int16:
		return intID(int64(x), v)
	case int32:
		return intID(int64(x), v)
	case int64:
		return intID(x, v)
	case uint:
		return uintID(uint64(x), v)
	case uint8:
		return uintID(uint64(x), v)
	case uint16:
		return uintID(uint64(x), v)
	case uint32:
		return uintID(uint64(x), v)
	case uint64:
		return uintID(x, v)
	case float32:
		return floatID(float64(x), v)
	case float64:
		return floatID(x, v)
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return intID(n, v)
		}
		f, err := x.Float64()
		if err != nil {
			return "", &IdentifierError{Value: v}
		}
		return floatID(f, v)
	default:
		return "", &IdentifierError{Value: v}
	}
}

func intID(n int64, raw any) (ID, error) {
	if n == 0 {
		return "", &IdentifierError{Value: raw, Missing: true}
	}
	return ID(strconv.FormatInt(n, 10)), nil
}

func uintID(n uint64, raw any) (ID, error) {
	if n == 0 {
		return "", &IdentifierError{Value: raw, Missing: true}
	}
	return ID(strconv.FormatUint(n, 10)), nil
}

func floatID(f float64, raw any) (ID, error) {
	if f == 0 || math.IsNaN(f) {
		return "", &IdentifierError{Value: raw, Missing: true}
	}
	return ID(strconv.FormatFloat(f, 'f', -1, 64)), nil
}
