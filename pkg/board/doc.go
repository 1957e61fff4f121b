// Package board provides the value types and pure mutation operations of a
// kanban-style board: an ordered sequence of columns, each holding an ordered
// sequence of short text items.
//
// # Overview
//
// A Board is a plain slice of Columns. Every operation in this package takes a
// Board and returns a new Board; the receiver is never modified, so callers can
// keep the previous value around (the editor compares old and new values to
// decide whether a mutation had any effect).
//
// # Invariants
//
// A Board always holds at least one Column. DeleteColumn refuses to remove the
// last one. Items are only ever appended to a column (by AddItems or MoveItem)
// or removed from it (by DeleteItem, MoveItem or DeleteColumn); they are never
// reordered in place.
//
// # Stale references
//
// Operations given an id that is no longer present return the board unchanged.
// UI events can race against structural changes (a column deleted by one
// control while a click on another is in flight), so a missing reference is an
// expected condition rather than an error.
//
// # Usage Example
//
//	ids := board.UUIDGenerator{}
//	b := board.New()
//	b = b.AddColumnAdjacent(ids, board.InitialColumnID, board.Right)
//	b = b.AddItems(ids, board.InitialColumnID, "wash\ndry")
//	wash := b[0].Tasks[0]
//	b = b.MoveItem(wash.ID, board.InitialColumnID, board.Right)
//	b, payload := b.DeleteColumn(b[1].ID)
//	// payload == "wash", b == [initial-column: dry]
package board
