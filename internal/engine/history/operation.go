package history

import (
	"strings"
	"time"
	"unicode/utf8"
)

// maxDescribed is the number of characters of edited text shown in a
// command description.
const maxDescribed = 15

// OperationInfo provides read-only info about a recorded command.
// Used for displaying undo/redo history to users.
type OperationInfo struct {
	Description string    // Human-readable description
	Timestamp   time.Time // When the command was recorded
	CharsDelta  int       // Positive for insertions, negative for removals
}

func describe(verb, text string) string {
	shown := text
	if utf8.RuneCountInString(text) > maxDescribed {
		shown = string([]rune(text)[:maxDescribed]) + "..."
	}
	shown = strings.ReplaceAll(shown, "\n", `\n`)
	return verb + " '" + shown + "'"
}

func charsDelta(cmd Command) int {
	switch c := cmd.(type) {
	case *InsertCommand:
		return utf8.RuneCountInString(c.Text)
	case *RemoveCommand:
		return -utf8.RuneCountInString(c.Text)
	default:
		return 0
	}
}
