// Package history provides undo/redo for the document.
//
// Every primitive edit is recorded as a Command that can reverse itself
// exactly:
//   - InsertCommand: text inserted at a global index
//   - RemoveCommand: text removed at a global index
//
// # Manager
//
// The Manager keeps a bounded undo list (oldest entries are evicted first)
// and an unbounded redo stack that any new command clears:
//
//	m := NewManager(100)
//	m.AddCommand(NewInsertCommand(0, "hello", 0))
//
//	m.Undo(target)
//	m.Redo(target)
//
// Undo and Redo on empty stacks are no-ops. Changing the maximum depth
// clears all history.
//
// # Pairing
//
// Compound edits such as a replace (remove then insert) or an auto-indented
// line break are recorded as several commands chained by Pairing flags:
//
//	rm := NewRemoveCommand(4, "old", 0)
//	ins := NewInsertCommand(4, "new", 0)
//	Pair(rm, ins)
//
// BeginGroup/EndGroup pair every command added in between.
//
// # Replay
//
// While Undo or Redo calls into the Target, AcceptsChanges is false so
// that the edits the target performs are not recorded again.
package history
