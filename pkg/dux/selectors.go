package dux

import "github.com/mesh-intelligence/dux/pkg/types"

// Predicate gates list selectors on the current list metadata.
type Predicate func(list types.ListView) bool

// List is a denormalized list view: the metadata of types.ListView with
// Objects expanded into records. Tombstoned or unknown ids expand to nil.
type List struct {
	Filters map[string]any `json:"filters"`
	Params  map[string]any `json:"params"`
	Objects []types.Record `json:"objects"`
	Page    int            `json:"page"`
	IPP     int            `json:"ipp"`
	Total   int            `json:"total"`
}

// GetList returns the denormalized list of s, or nil when pred is given and
// rejects the list metadata.
func GetList(s types.State, pred Predicate) *List {
	if pred != nil && !pred(s.List) {
		return nil
	}
	return &List{
		Filters: s.List.Filters,
		Params:  s.List.Params,
		Objects: denormalize(s),
		Page:    s.List.Page,
		IPP:     s.List.IPP,
		Total:   s.List.Total,
	}
}

// GetListArr is GetList without the metadata wrapper. It returns nil when
// pred rejects the list and a non-nil slice otherwise.
func GetListArr(s types.State, pred Predicate) []types.Record {
	if pred != nil && !pred(s.List) {
		return nil
	}
	return denormalize(s)
}

// GetItem looks id up directly. A tombstone yields (nil, true); an unknown
// id yields (nil, false).
func GetItem(s types.State, id types.ID) (types.Record, bool) {
	r, ok := s.Entities[id]
	return r, ok
}

// SelectOptions choose between a single item (ID set) and the list.
type SelectOptions struct {
	ID        types.ID
	Predicate Predicate
}

// Selection is the result of Select. Exactly one of the item fields or List
// is meaningful, depending on whether an ID was requested.
type Selection struct {
	Item  types.Record
	Found bool
	List  *List
}

// Select returns the item opts.ID when set, otherwise the list as GetList.
func Select(s types.State, opts SelectOptions) Selection {
	if opts.ID != "" {
		item, found := GetItem(s, opts.ID)
		return Selection{Item: item, Found: found}
	}
	return Selection{List: GetList(s, opts.Predicate)}
}

func denormalize(s types.State) []types.Record {
	out := make([]types.Record, len(s.List.Objects))
	for i, id := range s.List.Objects {
		out[i] = s.Entities[id]
	}
	return out
}
