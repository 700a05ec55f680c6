// Package types defines the entity state model shared by every dux package:
// identifiers, records, the normalized per-entity State, the tagged Action
// variants consumed by reducers, the snapshot Cache interface, and the
// standard errors.
package types
