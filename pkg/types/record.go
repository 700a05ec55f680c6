package types

// DefaultIDField is the record attribute holding the entity identifier.
const DefaultIDField = "id"

// Record is a single entity as returned by the server. The core only ever
// inspects its identifier field; every other attribute is opaque.
type Record map[string]any

// IDOf returns the validated identifier stored under field. An empty field
// name selects DefaultIDField.
func (r Record) IDOf(field string) (ID, error) {
	if field == "" {
		field = DefaultIDField
	}
	if r == nil {
		return "", &IdentifierError{Missing: true}
	}
	return ParseID(r[field])
}

// AsRecord converts a decoded JSON value into a Record when it is an object.
func AsRecord(v any) (Record, bool) {
	switch x := v.(type) {
	case Record:
		return x, true
	case map[string]any:
		return Record(x), true
	default:
		return nil, false
	}
}
