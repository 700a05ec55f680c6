package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mesh-intelligence/dux/pkg/types"
)

// SaveState replaces the stored state of entity in one transaction.
func (b *Backend) SaveState(entity string, state types.State) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrCacheDetached
	}

	filters, err := encodeMap(state.List.Filters)
	if err != nil {
		return fmt.Errorf("encode filters: %w", err)
	}
	params, err := encodeMap(state.List.Params)
	if err != nil {
		return fmt.Errorf("encode params: %w", err)
	}

	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"list_objects", "entities", "lists"} {
		if _, err := tx.Exec(`DELETE FROM `+table+` WHERE entity = ?`, entity); err != nil {
			return fmt.Errorf("clear %s %s: %w", table, entity, err)
		}
	}
	_, err = tx.Exec(
		`INSERT INTO lists (entity, filters, params, page, ipp, total, saved_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entity, filters, params, state.List.Page, state.List.IPP, state.List.Total,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert list %s: %w", entity, err)
	}

	for i, id := range state.List.Objects {
		if _, err := tx.Exec(
			`INSERT INTO list_objects (entity, position, object_id) VALUES (?, ?, ?)`,
			entity, i, string(id),
		); err != nil {
			return fmt.Errorf("insert list object %s/%s: %w", entity, id, err)
		}
	}

	for id, rec := range state.Entities {
		var record sql.NullString
		if rec != nil {
			data, err := json.Marshal(rec)
			if err != nil {
				return fmt.Errorf("encode %s/%s: %w", entity, id, err)
			}
			record = sql.NullString{String: string(data), Valid: true}
		}
		if _, err := tx.Exec(
			`INSERT INTO entities (entity, object_id, record) VALUES (?, ?, ?)`,
			entity, string(id), record,
		); err != nil {
			return fmt.Errorf("insert entity %s/%s: %w", entity, id, err)
		}
	}

	return tx.Commit()
}

// LoadState returns the stored state of entity. Returns ErrStateNotFound if
// nothing was saved for it.
func (b *Backend) LoadState(entity string) (types.State, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return types.State{}, types.ErrCacheDetached
	}

	state := types.NewState()
	var filters, params string
	err := b.db.QueryRow(
		`SELECT filters, params, page, ipp, total FROM lists WHERE entity = ?`, entity,
	).Scan(&filters, &params, &state.List.Page, &state.List.IPP, &state.List.Total)
	if errors.Is(err, sql.ErrNoRows) {
		return types.State{}, fmt.Errorf("%w: %s", types.ErrStateNotFound, entity)
	}
	if err != nil {
		return types.State{}, fmt.Errorf("load list %s: %w", entity, err)
	}
	if state.List.Filters, err = decodeMap(filters); err != nil {
		return types.State{}, fmt.Errorf("decode filters: %w", err)
	}
	if state.List.Params, err = decodeMap(params); err != nil {
		return types.State{}, fmt.Errorf("decode params: %w", err)
	}

	if state.List.Objects, err = b.loadObjects(entity); err != nil {
		return types.State{}, err
	}
	if state.Entities, err = b.loadEntities(entity); err != nil {
		return types.State{}, err
	}
	return state, nil
}

func (b *Backend) loadObjects(entity string) ([]types.ID, error) {
	rows, err := b.db.Query(
		`SELECT object_id FROM list_objects WHERE entity = ? ORDER BY position`, entity,
	)
	if err != nil {
		return nil, fmt.Errorf("load list objects %s: %w", entity, err)
	}
	defer rows.Close()

	ids := []types.ID{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan list object: %w", err)
		}
		ids = append(ids, types.ID(id))
	}
	return ids, rows.Err()
}

func (b *Backend) loadEntities(entity string) (map[types.ID]types.Record, error) {
	rows, err := b.db.Query(
		`SELECT object_id, record FROM entities WHERE entity = ?`, entity,
	)
	if err != nil {
		return nil, fmt.Errorf("load entities %s: %w", entity, err)
	}
	defer rows.Close()

	out := map[types.ID]types.Record{}
	for rows.Next() {
		var id string
		var record sql.NullString
		if err := rows.Scan(&id, &record); err != nil {
			return nil, fmt.Errorf("scan entity: %w", err)
		}
		if !record.Valid {
			out[types.ID(id)] = nil
			continue
		}
		var rec types.Record
		if err := json.Unmarshal([]byte(record.String), &rec); err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", entity, id, err)
		}
		out[types.ID(id)] = rec
	}
	return out, rows.Err()
}

// EntityNames lists the entity types with a stored state, sorted.
func (b *Backend) EntityNames() ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrCacheDetached
	}

	rows, err := b.db.Query(`SELECT entity FROM lists ORDER BY entity`)
	if err != nil {
		return nil, fmt.Errorf("list entities: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan entity name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func encodeMap(m map[string]any) (string, error) {
	if m == nil {
		return "null", nil
	}
	data, err := json.Marshal(m)
	return string(data), err
}

func decodeMap(s string) (map[string]any, error) {
	var m map[string]any
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil, err
	}
	return m, nil
}
