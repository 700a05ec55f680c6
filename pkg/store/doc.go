// Package store holds the state of several entity types and applies actions
// to them.
//
// A Store is the dispatcher that dux.Entity values plug into: Register adds
// an entity type with its initial state, Dispatch runs a dux.Task and applies
// its action, and Subscribe observes every applied change. Actions are
// applied one at a time; states can be read concurrently.
package store
