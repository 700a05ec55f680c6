package dux

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/dux/pkg/normalize"
	"github.com/mesh-intelligence/dux/pkg/types"
)

// ResponseError reports a successful transport call whose body cannot be
// stored, such as a single-item read answered with a non-object.
type ResponseError struct {
	Entity string
	Kind   types.Kind
	Got    any
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("dux: %s %s: unexpected response of type %T", e.Kind, e.Entity, e.Got)
}

// Create returns a Task that POSTs data to the create URL. The stored record
// is the response object, or data when the server answers without one.
func (e *Entity) Create(data types.Record, opts ActionOptions) *Task {
	if e.opts.AssignIDs {
		data = e.ensureID(data)
	}

	meta := Meta{Params: opts.Params}
	return NewTask(types.KindCreate, e.name, meta, func(ctx context.Context) (Outcome, error) {
		url := ResolveURL(e.opts.CreateURL, e.opts.BaseURL, opts.Params)
		e.log.Debug("create", "url", url)

		resp, err := e.opts.DataGetter.Do(ctx, url, Request{Method: http.MethodPost, Body: data})
		if err != nil {
			return Outcome{}, err
		}

		rec, ok := types.AsRecord(resp)
		if !ok {
			rec = data
		}
		out := Outcome{
			Action:   types.Created{EntityName: e.name, Data: rec},
			Response: resp,
		}
		if e.hookEnabled(e.opts.OnCreate != nil) {
			out.FollowUps = appendTask(out.FollowUps, e.opts.OnCreate(data, opts))
		}
		return out, nil
	})
}

// Read returns a Task fetching either one item (opts.ID set) or a list.
//
// Item reads GET BaseURL + id + "/" and ignore ReadListURL. List reads GET
// the read-list URL with opts.Filters attached and normalize the response.
// An invalid opts.ID fails immediately with ErrInvalidIdentifier, and a
// schema naming another entity with ErrSchemaName.
func (e *Entity) Read(opts ActionOptions) (*Task, error) {
	if opts.ID != nil {
		id, err := types.ParseID(opts.ID)
		if err != nil {
			return nil, err
		}
		return e.readItem(id, opts), nil
	}
	if err := checkSchema(e.name, opts.Schema); err != nil {
		return nil, err
	}
	return e.readList(opts), nil
}

func (e *Entity) readItem(id types.ID, opts ActionOptions) *Task {
	meta := Meta{ID: id}
	return NewTask(types.KindRead, e.name, meta, func(ctx context.Context) (Outcome, error) {
		url := e.opts.BaseURL.Resolve(opts.Params) + string(id) + "/"
		e.log.Debug("read item", "url", url, "id", id)

		resp, err := e.opts.DataGetter.Do(ctx, url, Request{Method: http.MethodGet})
		if err != nil {
			return Outcome{}, err
		}

		rec, ok := types.AsRecord(resp)
		if !ok {
			return Outcome{}, &ResponseError{Entity: e.name, Kind: types.KindRead, Got: resp}
		}
		return Outcome{
			Action:   types.ItemRead{EntityName: e.name, ID: id, Data: rec},
			Response: resp,
		}, nil
	})
}

func (e *Entity) readList(opts ActionOptions) *Task {
	meta := Meta{Filters: opts.Filters, Params: opts.Params}
	schema := e.schema
	if opts.Schema != nil {
		schema = *opts.Schema
	}

	return NewTask(types.KindRead, e.name, meta, func(ctx context.Context) (Outcome, error) {
		url := ResolveURL(e.opts.ReadListURL, e.opts.BaseURL, opts.Params)
		e.log.Debug("read list", "url", url, "filters", opts.Filters)

		resp, err := e.opts.DataGetter.Do(ctx, url, Request{Method: http.MethodGet, Filters: opts.Filters})
		if err != nil {
			return Outcome{}, err
		}

		n, err := normalize.Normalize(resp, schema)
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{
			Action: types.ListRead{
				EntityName: e.name,
				Filters:    opts.Filters,
				Params:     opts.Params,
				Result:     n,
			},
			Response: resp,
		}, nil
	})
}

// Update returns a Task that PUTs data to the update URL + id + "/". The
// stored record is the response object, or data when the server answers
// without one. An invalid id fails immediately with ErrInvalidIdentifier.
func (e *Entity) Update(id any, data types.Record, opts ActionOptions) (*Task, error) {
	key, err := types.ParseID(id)
	if err != nil {
		return nil, err
	}

	meta := Meta{ID: key, Params: opts.Params}
	return NewTask(types.KindUpdate, e.name, meta, func(ctx context.Context) (Outcome, error) {
		url := ResolveURL(e.opts.UpdateURL, e.opts.BaseURL, opts.Params) + string(key) + "/"
		e.log.Debug("update", "url", url, "id", key)

		resp, err := e.opts.DataGetter.Do(ctx, url, Request{Method: http.MethodPut, Body: data})
		if err != nil {
			return Outcome{}, err
		}

		rec, ok := types.AsRecord(resp)
		if !ok {
			rec = data
		}
		out := Outcome{
			Action:   types.Updated{EntityName: e.name, ID: key, Data: rec},
			Response: resp,
		}
		if e.opts.OnUpdate != nil {
			out.FollowUps = appendTask(out.FollowUps, e.opts.OnUpdate(key, data, opts))
		}
		return out, nil
	}), nil
}

// Delete returns a Task that sends DELETE to the delete URL + id + "/". An
// invalid id fails immediately with ErrInvalidIdentifier.
func (e *Entity) Delete(id any, opts ActionOptions) (*Task, error) {
	key, err := types.ParseID(id)
	if err != nil {
		return nil, err
	}

	meta := Meta{ID: key, Params: opts.Params}
	return NewTask(types.KindDelete, e.name, meta, func(ctx context.Context) (Outcome, error) {
		url := ResolveURL(e.opts.DeleteURL, e.opts.BaseURL, opts.Params) + string(key) + "/"
		e.log.Debug("delete", "url", url, "id", key)

		resp, err := e.opts.DataGetter.Do(ctx, url, Request{Method: http.MethodDelete})
		if err != nil {
			return Outcome{}, err
		}

		out := Outcome{
			Action:   types.Deleted{EntityName: e.name, ID: key},
			Response: resp,
		}
		if e.hookEnabled(e.opts.OnDelete != nil) {
			out.FollowUps = appendTask(out.FollowUps, e.opts.OnDelete(key, opts))
		}
		return out, nil
	}), nil
}

// hookEnabled decides whether the create or delete hook fires. Under
// LegacyHookGating the update hook must be configured as well.
func (e *Entity) hookEnabled(own bool) bool {
	if e.opts.LegacyHookGating {
		return own && e.opts.OnUpdate != nil
	}
	return own
}

// ensureID returns data with a fresh UUID v7 in the id field when it has no
// valid id. data itself is not modified.
func (e *Entity) ensureID(data types.Record) types.Record {
	if _, err := data.IDOf(e.opts.IDField); err == nil {
		return data
	}
	out := make(types.Record, len(data)+1)
	for k, v := range data {
		out[k] = v
	}
	out[e.opts.IDField] = newUUID()
	return out
}

// newUUID generates a UUID v7 string, falling back to v4.
func newUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

func appendTask(tasks []*Task, t *Task) []*Task {
	if t == nil {
		return tasks
	}
	return append(tasks, t)
}
