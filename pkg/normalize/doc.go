// Package normalize flattens bulk-read responses into the shape stored by
// the entity reducer.
//
// A ListSchema names where the list of entities sits in a response (a
// JSONPath, "$.objects" by default) and the Schema of those entities.
// Normalize walks the list, replaces every embedded entity declared in
// Schema.Nested by its id, and collects each entity into a flat map keyed
// by entity name and id:
//
//	users := &normalize.Schema{Name: "user"}
//	posts := &normalize.Schema{Name: "post", Nested: map[string]*normalize.Schema{"author": users}}
//
//	n, err := normalize.Normalize(resp, normalize.ListSchema{Entity: posts})
//	// n.Result.Objects            -> ids of the posts, in response order
//	// n.Entities["post"]["p1"]    -> {"id": "p1", "author": "u1", ...}
//	// n.Entities["user"]["u1"]    -> {"id": "u1", ...}
//
// The response is never modified; records in the result are fresh maps.
package normalize
