// Package sqlite provides the public API for the SQLite snapshot cache.
// This package exposes the factory function for creating SQLite caches
// while keeping implementation details internal.
package sqlite

import (
	"github.com/mesh-intelligence/dux/internal/sqlite"
	"github.com/mesh-intelligence/dux/pkg/types"
)

// NewCache creates a new SQLite cache instance.
// The cache is not attached; call Attach with a Config to initialize.
//
// Example:
//
//	cache := sqlite.NewCache()
//	err := cache.Attach(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".dux-db",
//	})
//	defer cache.Detach()
func NewCache() types.Cache {
	return sqlite.NewBackend()
}
