package dux

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/dux/pkg/types"
)

func sampleState() types.State {
	s := types.NewState()
	s.Entities = map[types.ID]types.Record{
		"a": {"id": "a"},
		"b": {"id": "b"},
		"c": nil,
	}
	s.List.Objects = []types.ID{"b", "a"}
	s.List.Total = 2
	s.List.Filters = map[string]any{"active": true}
	return s
}

func TestGetList(t *testing.T) {
	s := sampleState()

	list := GetList(s, nil)
	require.NotNil(t, list)
	require.Len(t, list.Objects, 2)
	assert.Equal(t, "b", list.Objects[0]["id"])
	assert.Equal(t, "a", list.Objects[1]["id"])
	assert.Equal(t, 2, list.Total)
	assert.Equal(t, types.DefaultIPP, list.IPP)
	assert.Equal(t, s.List.Filters, list.Filters)

	accept := func(types.ListView) bool { return true }
	reject := func(types.ListView) bool { return false }

	assert.NotNil(t, GetList(s, accept))
	assert.Nil(t, GetList(s, reject))
	assert.Nil(t, GetListArr(s, reject))
}

func TestGetListArrEmpty(t *testing.T) {
	arr := GetListArr(types.NewState(), nil)
	assert.NotNil(t, arr)
	assert.Empty(t, arr)
}

func TestGetItem(t *testing.T) {
	s := sampleState()

	tests := []struct {
		name      string
		id        types.ID
		wantFound bool
		wantNil   bool
	}{
		{"present", "a", true, false},
		{"tombstone", "c", true, true},
		{"unknown", "zzz", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := GetItem(s, tt.id)
			assert.Equal(t, tt.wantFound, found)
			assert.Equal(t, tt.wantNil, got == nil)
		})
	}
}

func TestSelect(t *testing.T) {
	s := sampleState()

	item := Select(s, SelectOptions{ID: "a"})
	assert.True(t, item.Found)
	assert.Equal(t, "a", item.Item["id"])
	assert.Nil(t, item.List)

	list := Select(s, SelectOptions{})
	require.NotNil(t, list.List)
	assert.Len(t, list.List.Objects, 2)

	gated := Select(s, SelectOptions{Predicate: func(l types.ListView) bool { return l.Total > 10 }})
	assert.Nil(t, gated.List)
}
