package dux

import (
	"log/slog"

	"github.com/mesh-intelligence/dux/internal/logging"
	"github.com/mesh-intelligence/dux/pkg/normalize"
	"github.com/mesh-intelligence/dux/pkg/types"
)

// Entity is the state unit of one entity type: its operations, its reducer
// and its initial state.
type Entity struct {
	name   string
	opts   Options
	schema normalize.ListSchema
	log    *slog.Logger
}

// New creates the Entity for name. It fails when name, Options.DataGetter
// or Options.BaseURL is missing.
func New(name string, opts Options) (*Entity, error) {
	if err := opts.validate(name); err != nil {
		return nil, err
	}

	schema := normalize.ListSchema{
		Entity: &normalize.Schema{Name: name, IDField: opts.IDField},
		Path:   normalize.DefaultListPath,
	}
	if opts.Schema != nil {
		schema = *opts.Schema
	}

	return &Entity{
		name:   name,
		opts:   opts,
		schema: schema,
		log:    logging.OrNop(opts.Logger).With("entity", name),
	}, nil
}

// Name returns the entity type name.
func (e *Entity) Name() string { return e.name }

// IDField returns the record attribute holding the id.
func (e *Entity) IDField() string { return e.opts.IDField }

// InitialState returns the empty state of the entity type.
func (e *Entity) InitialState() types.State { return types.NewState() }

// Reduce applies a to s and returns the next state. s is never modified;
// the maps and slices of the result that changed are fresh copies.
//
// Actions naming another entity type, and Created records without a valid
// id, leave s unchanged.
func (e *Entity) Reduce(s types.State, a types.Action) types.State {
	if a == nil || a.Entity() != e.name {
		return s
	}

	switch act := a.(type) {
	case types.Created:
		id, err := act.Data.IDOf(e.opts.IDField)
		if err != nil {
			return s
		}
		next := s
		next.Entities = withEntity(s.Entities, id, act.Data)
		next.List.Objects = appendID(s.List.Objects, id)
		return next

	case types.ItemRead:
		next := s
		next.Entities = withEntity(s.Entities, act.ID, act.Data)
		return next

	case types.ListRead:
		if act.Result == nil {
			return s
		}
		next := s
		next.Entities = mergeEntities(s.Entities, act.Result.Entities[e.name])
		next.List = s.List
		next.List.Objects = append([]types.ID{}, act.Result.Result.Objects...)
		if act.Result.Result.Page != nil {
			next.List.Page = *act.Result.Result.Page
		}
		if act.Result.Result.IPP != nil {
			next.List.IPP = *act.Result.Result.IPP
		}
		if act.Result.Result.Total != nil {
			next.List.Total = *act.Result.Result.Total
		}
		next.List.Filters = act.Filters
		next.List.Params = act.Params
		return next

	case types.Updated:
		next := s
		next.Entities = withEntity(s.Entities, act.ID, act.Data)
		return next

	case types.Deleted:
		next := s
		next.Entities = withEntity(s.Entities, act.ID, nil)
		next.List.Objects = withoutID(s.List.Objects, act.ID)
		return next
	}

	return s
}

// withEntity returns a copy of m with m[id] = r.
func withEntity(m map[types.ID]types.Record, id types.ID, r types.Record) map[types.ID]types.Record {
	out := make(map[types.ID]types.Record, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	out[id] = r
	return out
}

// mergeEntities returns a copy of m overlaid with updates.
func mergeEntities(m, updates map[types.ID]types.Record) map[types.ID]types.Record {
	out := make(map[types.ID]types.Record, len(m)+len(updates))
	for k, v := range m {
		out[k] = v
	}
	for k, v := range updates {
		out[k] = v
	}
	return out
}

// appendID returns a new slice holding ids followed by id.
func appendID(ids []types.ID, id types.ID) []types.ID {
	out := make([]types.ID, len(ids), len(ids)+1)
	copy(out, ids)
	return append(out, id)
}

// withoutID returns a new slice holding ids minus every occurrence of id.
func withoutID(ids []types.ID, id types.ID) []types.ID {
	out := make([]types.ID, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
