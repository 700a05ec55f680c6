package sqlite

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/mesh-intelligence/dux/pkg/types"
)

// ExportJSONL writes one <entity>.jsonl file per stored entity type into dir
// and returns the written paths. Each file holds the live records, listed
// ids first in list order and then the remaining ids sorted. Tombstones are
// skipped.
func (b *Backend) ExportJSONL(dir string) ([]string, error) {
	names, err := b.EntityNames()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	var paths []string
	for _, name := range names {
		state, err := b.LoadState(name)
		if err != nil {
			return paths, err
		}
		records, err := liveRecords(state)
		if err != nil {
			return paths, fmt.Errorf("export %s: %w", name, err)
		}
		path := filepath.Join(dir, name+".jsonl")
		if err := writeJSONL(path, records); err != nil {
			return paths, fmt.Errorf("export %s: %w", name, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// liveRecords encodes the non-tombstone records of state in export order.
func liveRecords(state types.State) ([]json.RawMessage, error) {
	seen := make(map[types.ID]bool, len(state.Entities))
	order := make([]types.ID, 0, len(state.Entities))
	for _, id := range state.List.Objects {
		if !seen[id] {
			seen[id] = true
			order = append(order, id)
		}
	}
	var rest []types.ID
	for id := range state.Entities {
		if !seen[id] {
			rest = append(rest, id)
		}
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i] < rest[j] })
	order = append(order, rest...)

	records := make([]json.RawMessage, 0, len(order))
	for _, id := range order {
		rec := state.Entities[id]
		if rec == nil {
			continue
		}
		data, err := json.Marshal(rec)
		if err != nil {
			return nil, err
		}
		records = append(records, data)
	}
	return records, nil
}

// writeJSONL atomically writes records to a JSONL file using the temp-file,
// fsync, rename pattern.
func writeJSONL(path string, records []json.RawMessage) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".jsonl-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	fail := func(step string, err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%s: %w", step, err)
	}

	w := bufio.NewWriter(tmp)
	for _, rec := range records {
		if _, err := w.Write(rec); err != nil {
			return fail("writing record", err)
		}
		if err := w.WriteByte('\n'); err != nil {
			return fail("writing newline", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fail("flushing buffer", err)
	}
	if err := tmp.Sync(); err != nil {
		return fail("syncing temp file", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
