package types

// Cache persists entity states between process runs. Callers attach to a
// backend, save and load whole states by entity name, and detach when done.
type Cache interface {
	// Attach connects the Cache to the backend described by config.
	// Creates the DataDir if it does not exist. Returns ErrAlreadyAttached
	// if called while already attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent: multiple calls succeed.
	// After Detach, operations return ErrCacheDetached.
	Detach() error

	// SaveState replaces the stored state of the named entity type.
	SaveState(entity string, state State) error

	// LoadState returns the stored state of the named entity type.
	// Returns ErrStateNotFound if nothing was saved for it.
	LoadState(entity string) (State, error)

	// EntityNames lists the entity types with a stored state, sorted.
	EntityNames() ([]string, error)

	// ExportJSONL writes the live records of every stored entity type to
	// <dir>/<entity>.jsonl, one JSON object per line, and returns the paths.
	ExportJSONL(dir string) ([]string, error)
}
