// Package sqlite implements the SQLite snapshot cache for entity states.
package sqlite

// Schema DDL. A NULL record in entities is a tombstone.
const (
	createLists = `CREATE TABLE IF NOT EXISTS lists (
    entity TEXT PRIMARY KEY,
    filters TEXT NOT NULL,
    params TEXT NOT NULL,
    page INTEGER NOT NULL,
    ipp INTEGER NOT NULL,
    total INTEGER NOT NULL,
    saved_at TEXT NOT NULL
);`

	createListObjects = `CREATE TABLE IF NOT EXISTS list_objects (
    entity TEXT NOT NULL,
    position INTEGER NOT NULL,
    object_id TEXT NOT NULL,
    PRIMARY KEY (entity, position),
    FOREIGN KEY (entity) REFERENCES lists(entity) ON DELETE CASCADE
);`

	createEntities = `CREATE TABLE IF NOT EXISTS entities (
    entity TEXT NOT NULL,
    object_id TEXT NOT NULL,
    record TEXT,
    PRIMARY KEY (entity, object_id),
    FOREIGN KEY (entity) REFERENCES lists(entity) ON DELETE CASCADE
);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createLists,
	createListObjects,
	createEntities,
}
