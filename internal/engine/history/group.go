package history

// BeginGroup starts collecting the commands added from now on. EndGroup
// pairs them so they undo and redo as a single step.
func (m *Manager) BeginGroup() {
	m.beginGroup()
}

// beginGroup reports whether it opened a new group. Nested calls join the
// open group.
func (m *Manager) beginGroup() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.grouping {
		return false
	}
	m.grouping = true
	m.groupCmds = nil
	return true
}

// EndGroup finishes a command group and returns the number of commands it
// chained.
func (m *Manager) EndGroup() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.grouping {
		return 0
	}
	m.grouping = false
	cmds := m.groupCmds
	m.groupCmds = nil

	Pair(cmds...)
	return len(cmds)
}

// IsGrouping returns true if currently in a command group.
func (m *Manager) IsGrouping() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.grouping
}

// GroupScope provides a convenient way to group commands using defer.
// Usage:
//
//	func replaceAll(doc *Document) {
//	    defer doc.History().GroupScope().End()
//	    // ... multiple edits ...
//	}
type GroupScope struct {
	manager *Manager
	active  bool
}

// GroupScope starts a new group scope. A scope opened inside another one
// joins the outer group and its End leaves that group open.
func (m *Manager) GroupScope() *GroupScope {
	return &GroupScope{manager: m, active: m.beginGroup()}
}

// End ends the group scope.
// Safe to call multiple times; only the first call has effect.
func (g *GroupScope) End() {
	if g.active {
		g.manager.EndGroup()
		g.active = false
	}
}
