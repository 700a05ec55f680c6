package types

// DefaultIPP is the items-per-page value of a fresh list view.
const DefaultIPP = 20

// ListView is the ordered membership index of an entity type together with
// the query that produced it. Objects holds identifiers only; field data
// lives in State.Entities.
type ListView struct {
	Filters map[string]any `json:"filters"`
	Params  map[string]any `json:"params"`
	Objects []ID           `json:"objects"`
	Page    int            `json:"page"`
	IPP     int            `json:"ipp"`
	Total   int            `json:"total"`
}

// State is the normalized client-side state of one entity type.
//
// A key present in Entities with a nil Record is a tombstone: the entity was
// deleted and its id removed from List.Objects, but the slot is retained.
// State values are treated as immutable; transitions build new values.
type State struct {
	List     ListView      `json:"list"`
	Entities map[ID]Record `json:"entities"`
}

// NewState returns the initial empty state of an entity type.
func NewState() State {
	return State{
		List: ListView{
			Filters: map[string]any{},
			Params:  map[string]any{},
			Objects: []ID{},
			Page:    0,
			IPP:     DefaultIPP,
			Total:   0,
		},
		Entities: map[ID]Record{},
	}
}

// IsTombstone reports whether id was deleted while present in the state.
func (s State) IsTombstone(id ID) bool {
	r, ok := s.Entities[id]
	return ok && r == nil
}
