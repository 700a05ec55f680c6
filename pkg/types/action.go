package types

// Kind tags the CRUD operation an Action completes.
type Kind int

// Operation kinds.
const (
	KindCreate Kind = iota + 1
	KindRead
	KindUpdate
	KindDelete
)

var kindNames = map[Kind]string{
	KindCreate: "CREATE",
	KindRead:   "READ",
	KindUpdate: "UPDATE",
	KindDelete: "DELETE",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "UNKNOWN"
}

// Action is the completed result of an operation, ready to be applied to
// the state of the entity type it names. The set of implementations is
// closed: Created, ItemRead, ListRead, Updated and Deleted.
type Action interface {
	Kind() Kind
	Entity() string
	sealed()
}

// Created carries the record returned for a create.
type Created struct {
	EntityName string
	Data       Record
}

// ItemRead carries a single record fetched by id.
type ItemRead struct {
	EntityName string
	ID         ID
	Data       Record
}

// ListRead carries a normalized bulk-read response and the query that
// produced it.
type ListRead struct {
	EntityName string
	Filters    map[string]any
	Params     map[string]any
	Result     *Normalized
}

// Updated carries the record stored for an update.
type Updated struct {
	EntityName string
	ID         ID
	Data       Record
}

// Deleted names the removed entity.
type Deleted struct {
	EntityName string
	ID         ID
}

func (Created) Kind() Kind  { return KindCreate }
func (ItemRead) Kind() Kind { return KindRead }
func (ListRead) Kind() Kind { return KindRead }
func (Updated) Kind() Kind  { return KindUpdate }
func (Deleted) Kind() Kind  { return KindDelete }

func (a Created) Entity() string  { return a.EntityName }
func (a ItemRead) Entity() string { return a.EntityName }
func (a ListRead) Entity() string { return a.EntityName }
func (a Updated) Entity() string  { return a.EntityName }
func (a Deleted) Entity() string  { return a.EntityName }

func (Created) sealed()  {}
func (ItemRead) sealed() {}
func (ListRead) sealed() {}
func (Updated) sealed()  {}
func (Deleted) sealed()  {}

// Normalized is a flattened bulk-read response: every embedded entity keyed
// by type and id, plus the ordered ids of the top-level list.
type Normalized struct {
	Entities map[string]map[ID]Record
	Result   ListResult
}

// ListResult is the list part of a normalized response. Page, IPP and Total
// are nil when the response did not report them.
type ListResult struct {
	Objects []ID
	Page    *int
	IPP     *int
	Total   *int
}
