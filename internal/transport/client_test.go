package transport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/dux/pkg/dux"
)

// captured is what the test server saw.
type captured struct {
	method string
	path   string
	query  string
	header http.Header
	body   map[string]any
}

func newServer(t *testing.T, status int, respBody string) (*httptest.Server, *captured) {
	t.Helper()
	seen := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen.method = r.Method
		seen.path = r.URL.Path
		seen.query = r.URL.RawQuery
		seen.header = r.Header.Clone()
		data, _ := io.ReadAll(r.Body)
		if len(data) > 0 {
			_ = json.Unmarshal(data, &seen.body)
		}
		w.WriteHeader(status)
		_, _ = io.WriteString(w, respBody)
	}))
	t.Cleanup(srv.Close)
	return srv, seen
}

func TestDoGet(t *testing.T) {
	srv, seen := newServer(t, http.StatusOK, `{"objects":[{"id":1}],"total":1}`)
	c := New(WithHeader("X-Trace", "abc"), WithBearerToken("tok"))

	out, err := c.Do(context.Background(), srv.URL+"/users/", dux.Request{
		Filters: map[string]any{"role": "admin", "tag": []any{"a", "b"}, "skip": nil},
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodGet, seen.method)
	assert.Equal(t, "/users/", seen.path)
	assert.Equal(t, "role=admin&tag=a&tag=b", seen.query)
	assert.Equal(t, "abc", seen.header.Get("X-Trace"))
	assert.Equal(t, "Bearer tok", seen.header.Get("Authorization"))

	obj, ok := out.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 1.0, obj["total"])
}

func TestDoPostBody(t *testing.T) {
	srv, seen := newServer(t, http.StatusCreated, `{"id":"a","name":"x"}`)
	c := New()

	out, err := c.Do(context.Background(), srv.URL+"/users/", dux.Request{
		Method: http.MethodPost,
		Body:   map[string]any{"name": "x"},
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, seen.method)
	assert.Equal(t, "application/json", seen.header.Get("Content-Type"))
	assert.Equal(t, map[string]any{"name": "x"}, seen.body)
	assert.Equal(t, map[string]any{"id": "a", "name": "x"}, out)
}

func TestDoEmptyBody(t *testing.T) {
	srv, _ := newServer(t, http.StatusNoContent, "")
	out, err := New().Do(context.Background(), srv.URL+"/users/1/", dux.Request{Method: http.MethodDelete})
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestDoStatusErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"json message", http.StatusBadRequest, `{"message":"name required"}`, "name required"},
		{"json error", http.StatusConflict, `{"error":"duplicate"}`, "duplicate"},
		{"plain text", http.StatusInternalServerError, "boom\n", "boom"},
		{"empty", http.StatusNotFound, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newServer(t, tt.status, tt.body)
			_, err := New().Do(context.Background(), srv.URL+"/x/", dux.Request{})

			var se *StatusError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.status, se.StatusCode)
			assert.Equal(t, tt.wantMsg, se.Message)
			assert.Equal(t, http.MethodGet, se.Method)
		})
	}
}

func TestDoInvalidJSON(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, "{not json")
	_, err := New().Do(context.Background(), srv.URL, dux.Request{})
	assert.ErrorContains(t, err, "decode response")
}

func TestDoTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	t.Cleanup(srv.Close)

	_, err := New(WithTimeout(20*time.Millisecond)).Do(context.Background(), srv.URL, dux.Request{})
	assert.Error(t, err)
}

func TestDoCanceledContext(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, "{}")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Do(ctx, srv.URL, dux.Request{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWithQueryKeepsExisting(t *testing.T) {
	got, err := withQuery("https://api/users/?v=2", map[string]any{"page": 3})
	require.NoError(t, err)
	assert.Equal(t, "https://api/users/?page=3&v=2", got)

	got, err = withQuery("https://api/users/", nil)
	require.NoError(t, err)
	assert.Equal(t, "https://api/users/", got)
}

func TestClientWithEntity(t *testing.T) {
	srv, seen := newServer(t, http.StatusOK, `{"objects":[{"id":1,"name":"a"},{"id":2,"name":"b"}],"page":1}`)

	users, err := dux.New("user", dux.Options{BaseURL: dux.Literal(srv.URL + "/users/"), DataGetter: New()})
	require.NoError(t, err)

	task, err := users.Read(dux.ActionOptions{Filters: map[string]any{"active": true}})
	require.NoError(t, err)
	out, err := task.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "active=true", seen.query)
	state := users.Reduce(users.InitialState(), out.Action)
	list := dux.GetList(state, nil)
	require.Len(t, list.Objects, 2)
	assert.Equal(t, "b", list.Objects[1]["name"])
	assert.Equal(t, 1, list.Page)
}
