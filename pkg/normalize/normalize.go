package normalize

import (
	"fmt"
	"math"

	"github.com/ohler55/ojg/jp"

	"github.com/mesh-intelligence/dux/pkg/types"
)

// Normalize decomposes raw into a flat entity map and the ordered ids of
// the list found at ls.Path. Integer page, ipp and total values found at the
// top level of an object response are carried into the result.
func Normalize(raw any, ls ListSchema) (*types.Normalized, error) {
	if ls.Entity == nil {
		return nil, ErrNoSchema
	}
	path := ls.Path
	if path == "" {
		path = DefaultListPath
	}

	root := plain(raw)
	list, err := locateList(root, path)
	if err != nil {
		return nil, err
	}

	n := &types.Normalized{
		Entities: map[string]map[types.ID]types.Record{
			ls.Entity.Name: {},
		},
		Result: types.ListResult{Objects: make([]types.ID, 0, len(list))},
	}

	for i, item := range list {
		id, err := visit(n.Entities, ls.Entity, item)
		if err != nil {
			return nil, &Error{Entity: ls.Entity.Name, Index: i, Err: err}
		}
		n.Result.Objects = append(n.Result.Objects, id)
	}

	if top, ok := root.(map[string]any); ok {
		n.Result.Page = intField(top, "page")
		n.Result.IPP = intField(top, "ipp")
		n.Result.Total = intField(top, "total")
	}

	return n, nil
}

// locateList evaluates path against root and returns the first match as an
// array.
func locateList(root any, path string) ([]any, error) {
	x, err := jp.ParseString(path)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrBadPath, path, err)
	}
	matches := x.Get(root)
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrListNotFound, path)
	}
	list, ok := plain(matches[0]).([]any)
	if !ok {
		if matches[0] == nil {
			return []any{}, nil
		}
		return nil, fmt.Errorf("%w: %s is %T", ErrListNotArray, path, matches[0])
	}
	return list, nil
}

// visit stores item and its nested entities in into and returns item's id.
func visit(into map[string]map[types.ID]types.Record, s *Schema, item any) (types.ID, error) {
	obj, ok := asObject(item)
	if !ok {
		return "", fmt.Errorf("%w: got %T", ErrItemNotObject, item)
	}
	id, err := types.ParseID(obj[s.idField()])
	if err != nil {
		return "", err
	}

	rec := make(types.Record, len(obj))
	for k, v := range obj {
		rec[k] = v
	}

	for field, nested := range s.Nested {
		v, present := obj[field]
		if !present || v == nil {
			continue
		}
		ref, err := visitNested(into, nested, v)
		if err != nil {
			return "", fmt.Errorf("field %s: %w", field, err)
		}
		rec[field] = ref
	}

	bucket, ok := into[s.Name]
	if !ok {
		bucket = map[types.ID]types.Record{}
		into[s.Name] = bucket
	}
	if prev, seen := bucket[id]; seen {
		merged := make(types.Record, len(prev)+len(rec))
		for k, v := range prev {
			merged[k] = v
		}
		for k, v := range rec {
			merged[k] = v
		}
		rec = merged
	}
	bucket[id] = rec
	return id, nil
}

// visitNested replaces an embedded object or array of objects by id
// references.
func visitNested(into map[string]map[types.ID]types.Record, s *Schema, v any) (any, error) {
	if obj, ok := asObject(v); ok {
		id, err := visit(into, s, obj)
		if err != nil {
			return nil, err
		}
		return string(id), nil
	}
	arr, ok := plain(v).([]any)
	if !ok {
		// Already a reference.
		return v, nil
	}
	ids := make([]any, 0, len(arr))
	for i, el := range arr {
		id, err := visit(into, s, el)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", s.Name, i, err)
		}
		ids = append(ids, string(id))
	}
	return ids, nil
}

// asObject returns v as a plain map when it is an object of either form.
func asObject(v any) (map[string]any, bool) {
	switch x := v.(type) {
	case map[string]any:
		return x, true
	case types.Record:
		return map[string]any(x), true
	default:
		return nil, false
	}
}

// intField returns m[key] as an int when it holds a whole number.
func intField(m map[string]any, key string) *int {
	var n int
	switch v := m[key].(type) {
	case int:
		n = v
	case int64:
		n = int(v)
	case float64:
		if v != math.Trunc(v) {
			return nil
		}
		n = int(v)
	default:
		return nil
	}
	return &n
}

// plain converts named map and slice types into the plain forms that
// JSONPath evaluation and type switches expect.
func plain(v any) any {
	switch x := v.(type) {
	case types.Record:
		return map[string]any(x)
	case []types.Record:
		out := make([]any, len(x))
		for i, r := range x {
			out[i] = map[string]any(r)
		}
		return out
	case []map[string]any:
		out := make([]any, len(x))
		for i, r := range x {
			out[i] = r
		}
		return out
	default:
		return v
	}
}
