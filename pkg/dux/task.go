package dux

import (
	"context"
	"fmt"

	"github.com/mesh-intelligence/dux/pkg/types"
)

// Meta is the payload metadata a Task is tagged with: the id of item
// operations, or the query of a bulk read.
type Meta struct {
	ID      types.ID
	Filters map[string]any
	Params  map[string]any
}

// Outcome is the result of a successful Task.
type Outcome struct {
	// Action is ready to be applied with Entity.Reduce.
	Action types.Action

	// Response is the raw transport response.
	Response any

	// FollowUps are hook tasks to dispatch after Action is applied.
	FollowUps []*Task
}

// Task is a deferred operation. It does nothing until Run is called.
type Task struct {
	kind   types.Kind
	entity string
	meta   Meta
	run    func(ctx context.Context) (Outcome, error)
}

// NewTask wraps run as a Task tagged with kind, entity and meta. Entity
// operations build their tasks with it; hooks may use it to emit custom
// follow-ups.
func NewTask(kind types.Kind, entity string, meta Meta, run func(ctx context.Context) (Outcome, error)) *Task {
	return &Task{kind: kind, entity: entity, meta: meta, run: run}
}

// Kind returns the operation kind.
func (t *Task) Kind() types.Kind { return t.kind }

// Entity returns the entity type name.
func (t *Task) Entity() string { return t.entity }

// Meta returns the payload metadata.
func (t *Task) Meta() Meta { return t.meta }

// Run performs the operation. A returned error leaves every state alone:
// no Action is produced.
func (t *Task) Run(ctx context.Context) (Outcome, error) {
	return t.run(ctx)
}

func (t *Task) String() string {
	if t.meta.ID != "" {
		return fmt.Sprintf("%s %s %s", t.kind, t.entity, t.meta.ID)
	}
	return fmt.Sprintf("%s %s", t.kind, t.entity)
}
