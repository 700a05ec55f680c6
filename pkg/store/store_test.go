package store

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/dux/pkg/dux"
	"github.com/mesh-intelligence/dux/pkg/types"
)

// routeGetter answers by url; unknown urls fail.
type routeGetter struct {
	mu     sync.Mutex
	routes map[string]any
	calls  []string
}

func (g *routeGetter) Do(_ context.Context, url string, _ dux.Request) (any, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, url)
	resp, ok := g.routes[url]
	if !ok {
		return nil, errors.New("no route for " + url)
	}
	return resp, nil
}

func newEntity(t *testing.T, name string, g dux.DataGetter, mutate func(*dux.Options)) *dux.Entity {
	t.Helper()
	opts := dux.Options{BaseURL: dux.Literal("/" + name + "s/"), DataGetter: g}
	if mutate != nil {
		mutate(&opts)
	}
	e, err := dux.New(name, opts)
	require.NoError(t, err)
	return e
}

func setupStore(t *testing.T, g dux.DataGetter) (*Store, *dux.Entity) {
	t.Helper()
	s := New()
	users := newEntity(t, "user", g, nil)
	require.NoError(t, s.Register(users))
	return s, users
}

func TestRegister(t *testing.T) {
	s, users := setupStore(t, &routeGetter{})

	err := s.Register(users)
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
	assert.ErrorIs(t, s.Register(nil), ErrNilEntity)

	st, ok := s.State("user")
	require.True(t, ok)
	assert.Equal(t, types.NewState(), st)

	_, ok = s.State("order")
	assert.False(t, ok)

	got, ok := s.Entity("user")
	require.True(t, ok)
	assert.Same(t, users, got)

	require.NoError(t, s.Register(newEntity(t, "order", &routeGetter{}, nil)))
	assert.Equal(t, []string{"order", "user"}, s.Names())
}

func TestApply(t *testing.T) {
	s, _ := setupStore(t, &routeGetter{})
	require.NoError(t, s.Register(newEntity(t, "order", &routeGetter{}, nil)))

	require.NoError(t, s.Apply(types.Created{EntityName: "user", Data: types.Record{"id": "a"}}))

	users, _ := s.State("user")
	orders, _ := s.State("order")
	assert.Equal(t, []types.ID{"a"}, users.List.Objects)
	assert.Empty(t, orders.List.Objects, "other entity types are untouched")

	err := s.Apply(types.Created{EntityName: "ghost", Data: types.Record{"id": "a"}})
	assert.ErrorIs(t, err, ErrNotRegistered)

	assert.NoError(t, s.Apply(nil))
}

func TestDispatch(t *testing.T) {
	ctx := context.Background()
	g := &routeGetter{routes: map[string]any{
		"/users/": map[string]any{"objects": []any{
			map[string]any{"id": 1.0, "name": "a"},
			map[string]any{"id": 2.0, "name": "b"},
		}},
	}}
	s, users := setupStore(t, g)

	task, err := users.Read(dux.ActionOptions{})
	require.NoError(t, err)
	_, err = s.Dispatch(ctx, task)
	require.NoError(t, err)

	st, _ := s.State("user")
	assert.Equal(t, []types.ID{"1", "2"}, st.List.Objects)
	assert.Equal(t, "b", st.Entities["2"]["name"])
}

func TestDispatchFailureLeavesState(t *testing.T) {
	ctx := context.Background()
	s, users := setupStore(t, &routeGetter{})
	require.NoError(t, s.Apply(types.Created{EntityName: "user", Data: types.Record{"id": "a"}}))
	before, _ := s.State("user")

	notified := 0
	s.Subscribe(func(string, types.State) { notified++ })

	task, err := users.Delete("a", dux.ActionOptions{})
	require.NoError(t, err)
	_, err = s.Dispatch(ctx, task)
	require.Error(t, err)

	after, _ := s.State("user")
	assert.Equal(t, before, after)
	assert.Zero(t, notified)
}

func TestDispatchFollowUps(t *testing.T) {
	ctx := context.Background()
	var logs bytes.Buffer

	g := &routeGetter{routes: map[string]any{
		"/orders/":   map[string]any{"id": "o1"},
		"/users/u1/": map[string]any{"id": "u1", "orders": 1.0},
	}}
	s := New(WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))

	users := newEntity(t, "user", g, nil)
	orders := newEntity(t, "order", g, func(o *dux.Options) {
		o.OnCreate = func(data types.Record, _ dux.ActionOptions) *dux.Task {
			task, err := users.Read(dux.ActionOptions{ID: data["owner"]})
			if err != nil {
				return nil
			}
			return task
		}
	})
	require.NoError(t, s.Register(users))
	require.NoError(t, s.Register(orders))

	var order []string
	s.Subscribe(func(name string, _ types.State) { order = append(order, name) })

	_, err := s.Dispatch(ctx, orders.Create(types.Record{"owner": "u1"}, dux.ActionOptions{}))
	require.NoError(t, err)

	assert.Equal(t, []string{"order", "user"}, order, "primary action is applied before follow-ups")
	st, _ := s.State("user")
	assert.Equal(t, 1.0, st.Entities["u1"]["orders"])

	t.Run("follow-up failure is logged not returned", func(t *testing.T) {
		_, err := s.Dispatch(ctx, orders.Create(types.Record{"owner": "missing"}, dux.ActionOptions{}))
		require.NoError(t, err)
		assert.Contains(t, logs.String(), "follow-up failed")

		st, _ := s.State("order")
		assert.Len(t, st.List.Objects, 2)
	})
}

func TestDispatchErrors(t *testing.T) {
	s := New()
	_, err := s.Dispatch(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNilTask)

	users := newEntity(t, "user", &routeGetter{}, nil)
	_, err = s.Dispatch(context.Background(), users.Create(types.Record{"id": "a"}, dux.ActionOptions{}))
	assert.ErrorIs(t, err, ErrNotRegistered)
}

func TestSubscribe(t *testing.T) {
	s, _ := setupStore(t, &routeGetter{})

	var got []types.State
	unsubscribe := s.Subscribe(func(name string, st types.State) {
		assert.Equal(t, "user", name)
		got = append(got, st)
	})

	require.NoError(t, s.Apply(types.Created{EntityName: "user", Data: types.Record{"id": "a"}}))
	require.Len(t, got, 1)
	assert.Equal(t, []types.ID{"a"}, got[0].List.Objects)

	unsubscribe()
	unsubscribe()
	require.NoError(t, s.Apply(types.Deleted{EntityName: "user", ID: "a"}))
	assert.Len(t, got, 1)
}

func TestRestoreAndSnapshot(t *testing.T) {
	s, _ := setupStore(t, &routeGetter{})

	st := types.NewState()
	st.Entities["x"] = types.Record{"id": "x"}
	st.List.Objects = []types.ID{"x"}
	require.NoError(t, s.Restore("user", st))

	snap := s.Snapshot()
	require.Contains(t, snap, "user")
	assert.Equal(t, st, snap["user"])

	assert.ErrorIs(t, s.Restore("ghost", st), ErrNotRegistered)
}

func TestConcurrentApply(t *testing.T) {
	s, _ := setupStore(t, &routeGetter{})

	const n = 50
	var wg sync.WaitGroup
	for i := 1; i <= n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.Apply(types.Created{EntityName: "user", Data: types.Record{"id": i}})
			_, _ = s.State("user")
		}(i)
	}
	wg.Wait()

	st, _ := s.State("user")
	assert.Len(t, st.List.Objects, n)
	assert.Len(t, st.Entities, n)
}
