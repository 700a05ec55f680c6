package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/dux/internal/transport"
	"github.com/mesh-intelligence/dux/pkg/dux"
	"github.com/mesh-intelligence/dux/pkg/types"
)

// parseKV parses key=value pairs. Values that are valid JSON are decoded,
// anything else is kept as a string.
func parseKV(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(pairs))
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid pair %q (expected key=value)", p)
		}
		var parsed any
		if err := json.Unmarshal([]byte(value), &parsed); err != nil {
			parsed = value
		}
		out[key] = parsed
	}
	return out, nil
}

// parseIDArg passes integer arguments on as numbers so that they are
// validated and canonicalized like numeric ids.
func parseIDArg(s string) any {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	return s
}

// parseRecord decodes a JSON object given inline or, for "-", read from in.
func parseRecord(arg string, in io.Reader) (types.Record, error) {
	data := []byte(arg)
	if arg == "-" {
		var err error
		if data, err = io.ReadAll(in); err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
	}
	var rec types.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("invalid JSON object: %w", err)
	}
	if rec == nil {
		return nil, errors.New("invalid JSON object: null")
	}
	return rec, nil
}

// writeJSON prints v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return sysError(fmt.Errorf("marshal output: %w", err))
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// classify marks an operation error with its exit code: invalid input and
// 4xx answers are user errors, everything else is a system error.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, types.ErrInvalidIdentifier) {
		return userError(err)
	}
	var se *transport.StatusError
	if errors.As(err, &se) && se.StatusCode >= 400 && se.StatusCode < 500 {
		return userError(err)
	}
	return sysError(err)
}

// withSession checks that entity is configured, opens a session, runs fn
// and closes the session.
func (a *app) withSession(cmd *cobra.Command, entity string, fn func(s *session, e *dux.Entity) error) error {
	if _, err := a.cfg.entity(entity); err != nil {
		return userError(err)
	}
	s, err := a.openSession(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer s.close()

	e, err := s.entity(entity)
	if err != nil {
		return err
	}
	return fn(s, e)
}

// dispatch runs t through the store and prints the raw response.
func dispatch(cmd *cobra.Command, s *session, t *dux.Task) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out, err := s.store.Dispatch(ctx, t)
	if err != nil {
		return classify(err)
	}
	return writeJSON(cmd.OutOrStdout(), out.Response)
}
