// Package dux builds client-side state units for REST entity types.
//
// New returns an Entity for one entity type. The Entity provides:
//
//   - Create, Read, Update and Delete, which validate their inputs and return
//     a Task. Running the Task performs one transport call and yields an
//     Outcome carrying a tagged types.Action.
//   - Reduce, the pure transition function applying an Action to a
//     types.State without modifying the input.
//
// The package-level selectors GetList, GetListArr, GetItem and Select read
// denormalized views from a State.
//
// A typical round trip without a store:
//
//	users, _ := dux.New("user", dux.Options{
//	    BaseURL:    dux.Literal("https://api.example.com/users/"),
//	    DataGetter: client,
//	})
//	state := users.InitialState()
//
//	task, err := users.Read(dux.ActionOptions{Filters: map[string]any{"active": true}})
//	if err != nil { ... }                   // invalid identifier
//	out, err := task.Run(ctx)
//	if err != nil { ... }                   // transport failure, state untouched
//	state = users.Reduce(state, out.Action)
//
//	list := dux.GetList(state, nil)
//
// The store package wires the same steps together and dispatches hook
// follow-ups.
package dux
