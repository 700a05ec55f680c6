package normalize

import "github.com/mesh-intelligence/dux/pkg/types"

// DefaultListPath locates the entity list of a bulk-read response.
const DefaultListPath = "$.objects"

// Schema describes one entity type and the entities embedded in it.
type Schema struct {
	// Name is the entity type name used as the key in Normalized.Entities.
	Name string

	// IDField is the record attribute holding the id. Default: "id".
	IDField string

	// Nested maps a field name to the schema of the entity stored in it.
	// The field may hold a single object or an array of objects.
	Nested map[string]*Schema
}

// idField returns the configured id attribute or the default.
func (s *Schema) idField() string {
	if s.IDField == "" {
		return types.DefaultIDField
	}
	return s.IDField
}

// ListSchema declares that the value at Path is a sequence of Entity.
type ListSchema struct {
	Entity *Schema

	// Path is a JSONPath expression. Default: "$.objects".
	Path string
}

// EntitySchema returns the ListSchema for a flat list of name entities
// stored under the default path.
func EntitySchema(name string) ListSchema {
	return ListSchema{Entity: &Schema{Name: name}, Path: DefaultListPath}
}
