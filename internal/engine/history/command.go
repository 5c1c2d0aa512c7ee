package history

import (
	"fmt"
	"unicode/utf8"
)

// Target applies primitive edits. It is implemented by the document, which
// performs the edit without recording it.
type Target interface {
	// InsertText inserts text at a global index and reports success.
	InsertText(start int, text string, col int) bool

	// RemoveText removes length characters at a global index and returns
	// the removed text.
	RemoveText(start, length, col int) (string, bool)
}

// Pairing chains a command to its neighbor in the undo list.
//
// UndoPair on a command means that undoing the command recorded right after
// it also undoes this one. RedoPair means that redoing this command also
// redoes the command recorded right after it. The flags are independent.
type Pairing struct {
	UndoPair bool
	RedoPair bool
}

// Flags returns the pairing flags.
func (p *Pairing) Flags() *Pairing { return p }

// Command is a recorded primitive edit that can be reversed exactly.
type Command interface {
	// Execute re-applies the edit.
	Execute(t Target) error

	// Undo reverses the edit.
	Undo(t Target) error

	// Description returns a human-readable description of the command.
	Description() string

	// Flags returns the pairing flags of the command.
	Flags() *Pairing
}

// InsertCommand records text inserted at Start.
type InsertCommand struct {
	Pairing
	Text   string
	Start  int
	Column int
}

// NewInsertCommand creates an insert command.
func NewInsertCommand(start int, text string, col int) *InsertCommand {
	return &InsertCommand{Text: text, Start: start, Column: col}
}

// Execute inserts the text again.
func (c *InsertCommand) Execute(t Target) error {
	if !t.InsertText(c.Start, c.Text, c.Column) {
		return fmt.Errorf("insert %d chars at %d: %w", utf8.RuneCountInString(c.Text), c.Start, ErrNotApplied)
	}
	return nil
}

// Undo removes the inserted text.
func (c *InsertCommand) Undo(t Target) error {
	n := utf8.RuneCountInString(c.Text)
	if _, ok := t.RemoveText(c.Start, n, c.Column); !ok {
		return fmt.Errorf("remove %d chars at %d: %w", n, c.Start, ErrNotApplied)
	}
	return nil
}

// Description returns "add '<text>'".
func (c *InsertCommand) Description() string {
	return describe("add", c.Text)
}

// RemoveCommand records Text removed at Start.
type RemoveCommand struct {
	Pairing
	Text   string
	Start  int
	Column int
}

// NewRemoveCommand creates a remove command.
func NewRemoveCommand(start int, removed string, col int) *RemoveCommand {
	return &RemoveCommand{Text: removed, Start: start, Column: col}
}

// Execute removes the text again.
func (c *RemoveCommand) Execute(t Target) error {
	n := utf8.RuneCountInString(c.Text)
	if _, ok := t.RemoveText(c.Start, n, c.Column); !ok {
		return fmt.Errorf("remove %d chars at %d: %w", n, c.Start, ErrNotApplied)
	}
	return nil
}

// Undo restores the removed text.
func (c *RemoveCommand) Undo(t Target) error {
	if !t.InsertText(c.Start, c.Text, c.Column) {
		return fmt.Errorf("insert %d chars at %d: %w", utf8.RuneCountInString(c.Text), c.Start, ErrNotApplied)
	}
	return nil
}

// Description returns "remove '<text>'".
func (c *RemoveCommand) Description() string {
	return describe("remove", c.Text)
}

// Pair chains consecutive commands so that they undo and redo as one step.
// Every command but the last gets both flags.
func Pair(cmds ...Command) {
	for i := 0; i+1 < len(cmds); i++ {
		f := cmds[i].Flags()
		f.UndoPair = true
		f.RedoPair = true
	}
}
