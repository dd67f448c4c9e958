// Package grid provides the tabular data-state engine behind the data grid.
//
// The engine takes an arbitrary row dataset and a column configuration and
// produces an interactive view: filtered, sorted, paginated, with column
// visibility and row selection tracked. It has no UI or transport
// dependencies; rendering layers consume [View] and send user interaction
// back through [Engine.Dispatch].
//
// # Ownership
//
// Visibility, filters, selection, sort and pagination each have two
// potential owners: the caller, who supplies "controlled" values through
// [Props], and the engine, which mutates its own "uncontrolled" copy in
// response to events. Every call to [Engine.SetProps] is one reconciliation
// cycle:
//
//  1. Internal state wins for every key it has touched. Caller values only
//     fill keys the engine has never seen.
//  2. When a caller value changes by deep equality (not by reference), the
//     engine adopts it for the keys the caller defines. This is the only
//     path that overrides a prior user interaction.
//  3. Reserved-column invariants are enforced on the merged result.
//  4. A change callback fires only when the merged value differs from the
//     value last exchanged with the caller.
//
// # Update cycle
//
//	caller props  -> SetProps -> internal State -> View -> render
//	user event    -> Dispatch -> internal State -> callbacks -> caller
//
// # Row order
//
// Filtering, sorting and pagination never mutate the dataset. They operate
// on row indices, so clearing a sort restores the caller's insertion order.
// Selection is positional: it is re-mapped through [Props.RowKey] or cleared
// whenever the dataset is replaced.
//
// The engine is single-owner and not safe for concurrent use; hosts that
// share an engine across goroutines must serialize access.
package grid
