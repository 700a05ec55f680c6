package store

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/mesh-intelligence/dux/internal/logging"
	"github.com/mesh-intelligence/dux/pkg/dux"
	"github.com/mesh-intelligence/dux/pkg/types"
)

// Listener observes a state change of entity type name. Listeners run while
// the store is applying the action that caused the change, so they must not
// call Apply, Dispatch or Restore.
type Listener func(name string, s types.State)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger for dispatch traces and follow-up failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.log = logging.OrNop(l) }
}

// entry is the registered entity with its current state.
type entry struct {
	entity *dux.Entity
	state  types.State
}

// Store holds one state per registered entity type.
type Store struct {
	mu      sync.Mutex // serializes state transitions
	entries *xsync.MapOf[string, entry]

	subsMu  sync.RWMutex
	subs    map[int]Listener
	nextSub int

	log *slog.Logger
}

// New creates an empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		entries: xsync.NewMapOf[string, entry](),
		subs:    make(map[int]Listener),
		log:     logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register adds e with its initial state.
func (s *Store) Register(e *dux.Entity) error {
	if e == nil {
		return ErrNilEntity
	}
	_, loaded := s.entries.LoadOrStore(e.Name(), entry{entity: e, state: e.InitialState()})
	if loaded {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, e.Name())
	}
	return nil
}

// Entity returns the registered entity named name.
func (s *Store) Entity(name string) (*dux.Entity, bool) {
	en, ok := s.entries.Load(name)
	if !ok {
		return nil, false
	}
	return en.entity, true
}

// Names returns the registered entity type names in sorted order.
func (s *Store) Names() []string {
	var names []string
	s.entries.Range(func(name string, _ entry) bool {
		names = append(names, name)
		return true
	})
	sort.Strings(names)
	return names
}

// State returns the current state of entity type name.
func (s *Store) State(name string) (types.State, bool) {
	en, ok := s.entries.Load(name)
	if !ok {
		return types.State{}, false
	}
	return en.state, true
}

// Snapshot returns the current state of every registered entity type.
func (s *Store) Snapshot() map[string]types.State {
	out := make(map[string]types.State)
	s.entries.Range(func(name string, en entry) bool {
		out[name] = en.state
		return true
	})
	return out
}

// Apply reduces a into the state of the entity type it names and notifies
// listeners.
func (s *Store) Apply(a types.Action) error {
	if a == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	name := a.Entity()
	en, ok := s.entries.Load(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotRegistered, name)
	}
	en.state = en.entity.Reduce(en.state, a)
	s.entries.Store(name, en)
	s.notify(name, en.state)
	return nil
}

// Restore replaces the state of entity type name, typically with one loaded
// from a cache, and notifies listeners.
func (s *Store) Restore(name string, st types.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	en, ok := s.entries.Load(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotRegistered, name)
	}
	en.state = st
	s.entries.Store(name, en)
	s.notify(name, st)
	return nil
}

// Dispatch runs t, applies its action and then dispatches its follow-up
// tasks in order. A failure of t is returned and leaves every state
// unchanged. Follow-up failures are logged and do not fail the dispatch.
func (s *Store) Dispatch(ctx context.Context, t *dux.Task) (dux.Outcome, error) {
	if t == nil {
		return dux.Outcome{}, ErrNilTask
	}
	if _, ok := s.entries.Load(t.Entity()); !ok {
		return dux.Outcome{}, fmt.Errorf("%w: %s", ErrNotRegistered, t.Entity())
	}

	s.log.Debug("dispatch", "task", t.String())
	out, err := t.Run(ctx)
	if err != nil {
		return dux.Outcome{}, err
	}
	if err := s.Apply(out.Action); err != nil {
		return dux.Outcome{}, err
	}

	for _, f := range out.FollowUps {
		if _, err := s.Dispatch(ctx, f); err != nil {
			s.log.Warn("follow-up failed", "task", t.String(), "follow_up", f.String(), "error", err)
		}
	}
	return out, nil
}

// Subscribe registers fn for every state change and returns a function that
// removes it.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.subsMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subsMu.Lock()
			delete(s.subs, id)
			s.subsMu.Unlock()
		})
	}
}

// notify calls listeners in subscription order.
func (s *Store) notify(name string, st types.State) {
	s.subsMu.RLock()
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	listeners := make([]Listener, len(ids))
	for i, id := range ids {
		listeners[i] = s.subs[id]
	}
	s.subsMu.RUnlock()

	for _, fn := range listeners {
		fn(name, st)
	}
}
