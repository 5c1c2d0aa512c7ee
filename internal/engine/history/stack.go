package history

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultMaxDepth is the default number of undo entries kept.
const DefaultMaxDepth = 100

// Common errors for history operations.
var (
	// ErrNegativeDepth is returned when a negative history depth is requested.
	ErrNegativeDepth = errors.New("history depth must not be negative")

	// ErrNotApplied is returned when the target refused to replay a command.
	ErrNotApplied = errors.New("command could not be applied")
)

// undoEntry wraps a command with metadata.
type undoEntry struct {
	command   Command
	timestamp time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger used for history events.
func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// Manager keeps a bounded undo list and an unbounded redo stack.
//
// Commands recorded while the manager replays history are ignored: Undo and
// Redo switch AcceptsChanges off around their calls into the target.
type Manager struct {
	mu sync.Mutex

	undoList  []*undoEntry
	redoStack []*undoEntry

	maxDepth int
	accepts  bool

	// Grouping state
	grouping  bool
	groupCmds []Command

	logger *zap.Logger
}

// NewManager creates a history manager keeping up to maxDepth undo entries.
// A negative maxDepth panics.
func NewManager(maxDepth int, opts ...Option) *Manager {
	if maxDepth < 0 {
		panic(ErrNegativeDepth)
	}
	m := &Manager{
		maxDepth: maxDepth,
		accepts:  true,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AcceptsChanges reports whether AddCommand records commands.
func (m *Manager) AcceptsChanges() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accepts
}

// SetAcceptsChanges enables or disables recording.
func (m *Manager) SetAcceptsChanges(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accepts = v
}

// AddCommand records an executed command and clears the redo stack. When
// the undo list is full the oldest entry is evicted. It reports whether
// the command was recorded.
func (m *Manager) AddCommand(cmd Command) bool {
	if cmd == nil {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.accepts || m.maxDepth == 0 {
		return false
	}

	if len(m.undoList) >= m.maxDepth {
		excess := len(m.undoList) - m.maxDepth + 1
		m.logger.Debug("evicting undo entries", zap.Int("count", excess))
		m.undoList = m.undoList[excess:]
	}

	m.undoList = append(m.undoList, &undoEntry{
		command:   cmd,
		timestamp: time.Now(),
	})
	m.redoStack = nil

	if m.grouping {
		m.groupCmds = append(m.groupCmds, cmd)
	}
	return true
}

// Undo reverses the most recent command. When the command recorded before
// it carries UndoPair, that command is undone too, and so on. It returns
// the number of commands undone; an empty history is a no-op.
//
// The lock is released while the target replays the command.
func (m *Manager) Undo(t Target) (int, error) {
	n := 0
	for {
		m.mu.Lock()
		if len(m.undoList) == 0 {
			m.mu.Unlock()
			return n, nil
		}
		entry := m.undoList[len(m.undoList)-1]
		m.undoList = m.undoList[:len(m.undoList)-1]
		m.mu.Unlock()

		if err := m.replay(func() error { return entry.command.Undo(t) }); err != nil {
			m.mu.Lock()
			m.undoList = append(m.undoList, entry)
			m.mu.Unlock()
			return n, err
		}
		n++

		m.mu.Lock()
		m.redoStack = append(m.redoStack, entry)
		chained := len(m.undoList) > 0 && m.undoList[len(m.undoList)-1].command.Flags().UndoPair
		m.mu.Unlock()

		if !chained {
			return n, nil
		}
	}
}

// Redo re-applies the most recently undone command. When that command
// carries RedoPair, the command recorded after it is redone too. It returns
// the number of commands redone; an empty redo stack is a no-op.
func (m *Manager) Redo(t Target) (int, error) {
	n := 0
	for {
		m.mu.Lock()
		if len(m.redoStack) == 0 {
			m.mu.Unlock()
			return n, nil
		}
		entry := m.redoStack[len(m.redoStack)-1]
		m.redoStack = m.redoStack[:len(m.redoStack)-1]
		m.mu.Unlock()

		if err := m.replay(func() error { return entry.command.Execute(t) }); err != nil {
			m.mu.Lock()
			m.redoStack = append(m.redoStack, entry)
			m.mu.Unlock()
			return n, err
		}
		n++

		m.mu.Lock()
		m.undoList = append(m.undoList, entry)
		m.mu.Unlock()

		if !entry.command.Flags().RedoPair {
			return n, nil
		}
	}
}

// replay runs fn with recording switched off.
func (m *Manager) replay(fn func() error) error {
	m.mu.Lock()
	prev := m.accepts
	m.accepts = false
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.accepts = prev
		m.mu.Unlock()
	}()
	return fn()
}

// CanUndo returns true if undo is available.
func (m *Manager) CanUndo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.undoList) > 0
}

// CanRedo returns true if redo is available.
func (m *Manager) CanRedo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.redoStack) > 0
}

// UndoCount returns the number of undo entries.
func (m *Manager) UndoCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.undoList)
}

// RedoCount returns the number of redo entries.
func (m *Manager) RedoCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.redoStack)
}

// PeekUndo returns the command Undo would reverse first.
func (m *Manager) PeekUndo() (Command, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.undoList) == 0 {
		return nil, false
	}
	return m.undoList[len(m.undoList)-1].command, true
}

// PeekRedo returns the command Redo would re-apply first.
func (m *Manager) PeekRedo() (Command, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.redoStack) == 0 {
		return nil, false
	}
	return m.redoStack[len(m.redoStack)-1].command, true
}

// UndoInfo returns info about the undo entries, oldest first.
func (m *Manager) UndoInfo() []OperationInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	return infos(m.undoList)
}

// RedoInfo returns info about the redo entries, the next redo last.
func (m *Manager) RedoInfo() []OperationInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	return infos(m.redoStack)
}

func infos(entries []*undoEntry) []OperationInfo {
	result := make([]OperationInfo, len(entries))
	for i, entry := range entries {
		result[i] = OperationInfo{
			Description: entry.command.Description(),
			Timestamp:   entry.timestamp,
			CharsDelta:  charsDelta(entry.command),
		}
	}
	return result
}

// ClearAll removes all undo/redo history.
func (m *Manager) ClearAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.undoList = nil
	m.redoStack = nil
	m.grouping = false
	m.groupCmds = nil
}

// SetMaxDepth changes the maximum number of undo entries. A different
// value clears all history. Depth 0 disables recording.
func (m *Manager) SetMaxDepth(n int) error {
	if n < 0 {
		return ErrNegativeDepth
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if n == m.maxDepth {
		return nil
	}
	m.maxDepth = n
	m.undoList = nil
	m.redoStack = nil
	m.groupCmds = nil
	return nil
}

// MaxDepth returns the maximum number of undo entries.
func (m *Manager) MaxDepth() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxDepth
}
