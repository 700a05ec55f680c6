package dux

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mesh-intelligence/dux/pkg/normalize"
	"github.com/mesh-intelligence/dux/pkg/types"
)

// Request describes one transport call.
type Request struct {
	// Method is the HTTP method. Empty means GET.
	Method string

	// Body is the payload to encode, or nil.
	Body any

	// Filters are attached to the request by the transport, typically as
	// query parameters.
	Filters map[string]any
}

// DataGetter performs transport calls and returns the decoded response
// body. Errors are handed back to callers unmodified.
type DataGetter interface {
	Do(ctx context.Context, url string, req Request) (any, error)
}

// DataGetterFunc adapts a function to DataGetter.
type DataGetterFunc func(ctx context.Context, url string, req Request) (any, error)

// Do calls f.
func (f DataGetterFunc) Do(ctx context.Context, url string, req Request) (any, error) {
	return f(ctx, url, req)
}

// Hooks run after a successful operation and may return a Task to be
// dispatched as a follow-up. Returning nil dispatches nothing.
type (
	CreateHook func(data types.Record, opts ActionOptions) *Task
	UpdateHook func(id types.ID, data types.Record, opts ActionOptions) *Task
	DeleteHook func(id types.ID, opts ActionOptions) *Task
)

// Options configures an Entity.
type Options struct {
	// BaseURL is the collection address, e.g. "https://api/users/".
	// Item addresses are BaseURL + id + "/".
	BaseURL URL

	// Per-operation overrides of BaseURL.
	CreateURL   URL
	ReadListURL URL
	UpdateURL   URL
	DeleteURL   URL

	// DataGetter performs the transport calls. Required.
	DataGetter DataGetter

	OnCreate CreateHook
	OnUpdate UpdateHook
	OnDelete DeleteHook

	// Schema normalizes bulk reads. Default: a flat list of this entity
	// under "$.objects".
	Schema *normalize.ListSchema

	// IDField is the record attribute holding the id. Default: "id".
	IDField string

	// AssignIDs gives records created without an id a UUID v7 before they
	// are sent.
	AssignIDs bool

	// LegacyHookGating fires the create and delete hooks only when OnUpdate
	// is also configured, matching older clients that keyed every hook on
	// the update hook.
	LegacyHookGating bool

	// Logger receives debug traces of transport calls. Default: discard.
	Logger *slog.Logger
}

// ActionOptions are the per-call arguments of an operation.
type ActionOptions struct {
	// ID selects a single-item read.
	ID any

	// Filters are sent with bulk reads and echoed into the list view.
	Filters map[string]any

	// Params feed computed URLs and are echoed into the list view on bulk
	// reads.
	Params map[string]any

	// Schema overrides the entity schema for one bulk read.
	Schema *normalize.ListSchema
}

// Configuration errors returned by New.
var (
	ErrEmptyName    = errors.New("dux: entity name must not be empty")
	ErrNoDataGetter = errors.New("dux: data getter is required")
	ErrNoBaseURL    = errors.New("dux: base url is required")
	ErrSchemaName   = errors.New("dux: list schema names another entity")
)

// validate checks required fields.
func (o *Options) validate(name string) error {
	if name == "" {
		return ErrEmptyName
	}
	if o.DataGetter == nil {
		return ErrNoDataGetter
	}
	if o.BaseURL.IsZero() {
		return ErrNoBaseURL
	}
	if o.IDField == "" {
		o.IDField = types.DefaultIDField
	}
	return checkSchema(name, o.Schema)
}

// checkSchema fails when ls describes a list of entities other than name.
// Such a list would fill the id list without storing any records.
func checkSchema(name string, ls *normalize.ListSchema) error {
	if ls == nil || ls.Entity == nil || ls.Entity.Name == name {
		return nil
	}
	return fmt.Errorf("%w: %q for entity %q", ErrSchemaName, ls.Entity.Name, name)
}
