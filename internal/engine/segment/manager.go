package segment

import (
	"iter"
	"unicode"

	"go.uber.org/zap"

	"github.com/dshills/annotext/internal/engine/lines"
	"github.com/dshills/annotext/internal/engine/style"
	"github.com/dshills/annotext/internal/engine/word"
)

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger used for recovered invariant violations.
func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// Filter selects annotations in lookups.
type Filter func(*lines.Annotation) bool

// ByKind selects annotations of one kind.
func ByKind(k style.Kind) Filter {
	return func(a *lines.Annotation) bool { return a.Kind() == k }
}

// ByKey selects annotations of one style.
func ByKey(key string) Filter {
	return func(a *lines.Annotation) bool { return a.Key() == key }
}

// Manager keeps the annotations of a line store in step with its text.
//
// The store adjusts annotation geometry during an edit. The manager then
// decides whether the annotations around the edit still hold, finds new
// ones, and serves position lookups. Like the store, it is not safe for
// concurrent use.
type Manager struct {
	store  *lines.Store
	styles *style.Registry
	logger *zap.Logger
}

// New creates a manager over store using the styles of registry.
func New(store *lines.Store, styles *style.Registry, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		styles: styles,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Styles returns the style registry.
func (m *Manager) Styles() *style.Registry {
	return m.styles
}

// Inserted re-validates annotations after c was inserted at rel in l.
func (m *Manager) Inserted(l *lines.Line, rel int, c rune) {
	m.rematch(l, rel, c, min(l.Len(0), rel+1))
}

// Erased re-validates annotations after characters were removed at rel in
// l. A removal always counts as a finalizing change.
func (m *Manager) Erased(l *lines.Line, rel int) {
	m.rematch(l, rel, 0, rel)
}

// FakeFinalizingKey re-validates the annotations at a global index as if a
// token had just been completed there, without changing any text.
func (m *Manager) FakeFinalizingKey(index int) {
	l, rel, ok := m.locate(index)
	if !ok {
		return
	}
	m.rematch(l, rel, 0, min(l.Len(0), rel+1))
}

// rematch runs the before/after probes for every content-derived annotation
// touched by an edit at rel, then searches the token left of rel.
func (m *Manager) rematch(l *lines.Line, rel int, c rune, after int) {
	m.clip(l)

	text := l.Runes(0)
	finalizing := word.IsFinalizer(c)
	before := max(0, rel-1)
	inserted := c != 0

	for _, a := range l.Annotations() {
		if !a.Attached() || a.Kind() != style.Automatic {
			continue
		}
		if inserted {
			if a.RelIndex() > rel+1 || a.End() < rel {
				continue
			}
		} else if a.RelIndex() > rel || a.End() < rel {
			continue
		}

		st := a.Style()
		if st.UpdateOnlyOnFinalizingChange() && !finalizing {
			continue
		}

		bm, bok := st.FindMatch(text, before)
		am, aok := st.FindMatch(text, after)
		switch {
		case !bok && !aok:
			m.store.Detach(a)
			continue
		case !bok:
			bm, aok = am, false
		case aok && am.Start == bm.Start && am.Length == bm.Length:
			aok = false
		}

		if !a.Same(bm) {
			m.store.Detach(a)
			m.attach(l, st, bm)
		}
		if aok {
			m.attach(l, st, am)
		}
	}

	m.SearchAndApplyTo(l, before, 1, finalizing)
}

// clip enforces the annotation bounds of l. A violation is a defect in the
// edit bookkeeping; it is logged and repaired rather than propagated.
func (m *Manager) clip(l *lines.Line) {
	n := l.Len(0)
	for _, a := range l.Annotations() {
		switch {
		case a.RelIndex() > n:
			m.logger.Warn("dropping annotation past line end",
				zap.String("style", a.Key()),
				zap.Int("rel", a.RelIndex()),
				zap.Int("lineLen", n))
			m.store.Detach(a)
		case a.End() > n:
			m.logger.Warn("clipping annotation to line end",
				zap.String("style", a.Key()),
				zap.Int("rel", a.RelIndex()),
				zap.Int("len", a.Len()),
				zap.Int("lineLen", n))
			m.store.Resize(a, n-a.RelIndex())
		}
	}
}

// attach adds a match of st to l unless an identical annotation exists.
func (m *Manager) attach(l *lines.Line, st style.Style, match style.Match) bool {
	if match.Start < 0 || match.End() > l.Len(0) {
		return false
	}
	for _, a := range l.Annotations() {
		if a.Key() == st.Key() && a.RelIndex() == match.Start && a.Len() == match.Length {
			return false
		}
	}
	return m.store.Attach(lines.FromMatch(st, match), l.Handle(), match.Start)
}

// SearchAndApplyTo scans length characters of l starting at rel and
// evaluates every searchable style once per token, at the first character
// after whitespace. Styles that only update on finalizing changes are
// skipped unless finalizing is set. It reports whether an annotation was
// added or replaced.
func (m *Manager) SearchAndApplyTo(l *lines.Line, rel, length int, finalizing bool) bool {
	if m.styles == nil {
		return false
	}
	styles := m.styles.Searchable()
	if len(styles) == 0 {
		return false
	}

	text := l.Runes(0)
	end := min(len(text), rel+length)
	applied := false
	inToken := false

	for i := max(0, rel); i < end; i++ {
		if unicode.IsSpace(text[i]) {
			inToken = false
			continue
		}
		if inToken {
			continue
		}
		inToken = true

		for _, st := range styles {
			if st.UpdateOnlyOnFinalizingChange() && !finalizing {
				continue
			}
			if m.apply(l, st, text, i) {
				applied = true
			}
		}
	}
	return applied
}

// apply evaluates st at i and stores the match. An annotation of the same
// style overlapping the match is replaced unless it is identical.
func (m *Manager) apply(l *lines.Line, st style.Style, text []rune, i int) bool {
	match, ok := st.FindMatch(text, i)
	if !ok {
		return false
	}
	for _, a := range l.Annotations() {
		if a.Key() != st.Key() || !a.Contains(match.Start, match.Length, false, false) {
			continue
		}
		if a.Same(match) {
			return false
		}
		m.store.Detach(a)
	}
	return m.attach(l, st, match)
}

// SearchLine evaluates every searchable style over line i.
func (m *Manager) SearchLine(i int) bool {
	l := m.store.At(i)
	if l == nil {
		return false
	}
	return m.SearchAndApplyTo(l, 0, l.Len(0), true)
}

// FindAndApply searches length characters of line i from the line-relative
// index and reports whether an annotation was added.
func (m *Manager) FindAndApply(i, index, length int, finalizing bool) bool {
	l := m.store.At(i)
	if l == nil {
		return false
	}
	return m.SearchAndApplyTo(l, index, length, finalizing)
}

// Refresh drops every Automatic annotation and searches the whole text
// again. It is used after a style changes its matching rules.
func (m *Manager) Refresh() {
	for _, a := range m.collect(ByKind(style.Automatic)) {
		m.store.Detach(a)
	}
	for i := range m.store.Count() {
		m.SearchLine(i)
	}
}

func (m *Manager) locate(index int) (*lines.Line, int, bool) {
	i := m.store.LineFromCharIndex(index, 0)
	if i == -1 {
		return nil, 0, false
	}
	l := m.store.At(i)
	rel := index - l.Start()
	if rel < 0 || rel > l.Len(0) {
		return nil, 0, false
	}
	return l, rel, true
}

// Get returns the annotations covering a global index. An annotation
// covers the positions from its start to its end, both included.
func (m *Manager) Get(index int) []*lines.Annotation {
	l, rel, ok := m.locate(index)
	if !ok {
		return nil
	}
	var out []*lines.Annotation
	for _, a := range l.Annotations() {
		if a.Contains(rel, 0, true, true) {
			out = append(out, a)
		}
	}
	return out
}

// GetClosest returns the annotation starting at or before a global index
// that starts closest to it. Lines are searched backward from the one
// holding the index; the search stops at the first line with a candidate.
func (m *Manager) GetClosest(index int, filter Filter) (*lines.Annotation, bool) {
	i := m.store.LineFromCharIndex(index, 0)
	for ; i >= 0; i-- {
		l := m.store.At(i)
		var best *lines.Annotation
		for _, a := range l.Annotations() {
			if filter != nil && !filter(a) {
				continue
			}
			if l.Start()+a.RelIndex() > index {
				continue
			}
			if best == nil || a.RelIndex() > best.RelIndex() {
				best = a
			}
		}
		if best != nil {
			return best, true
		}
	}
	return nil, false
}

// AddManual attaches a detached annotation at a global index. The
// annotation must fit inside the line holding the index.
func (m *Manager) AddManual(a *lines.Annotation, index int) bool {
	l, rel, ok := m.locate(index)
	if !ok || rel+a.Len() > l.Len(0) {
		m.logger.Debug("annotation does not fit",
			zap.String("style", a.Key()),
			zap.Int("index", index),
			zap.Int("len", a.Len()))
		return false
	}
	return m.store.Attach(a, l.Handle(), rel)
}

// Remove detaches an annotation.
func (m *Manager) Remove(a *lines.Annotation) {
	m.store.Detach(a)
}

// RemoveStyle detaches every annotation of a style.
func (m *Manager) RemoveStyle(key string) int {
	found := m.collect(ByKey(key))
	for _, a := range found {
		m.store.Detach(a)
	}
	return len(found)
}

// Clear detaches every annotation. Pinned annotations are kept unless
// includingPinned is set.
func (m *Manager) Clear(includingPinned bool) {
	for _, a := range m.collect(nil) {
		if a.Kind() == style.Pinned && !includingPinned {
			continue
		}
		m.store.Detach(a)
	}
}

// All iterates every annotation in line order.
func (m *Manager) All() iter.Seq[*lines.Annotation] {
	return m.Select(nil)
}

// ByStyle iterates the annotations of one style in line order.
func (m *Manager) ByStyle(key string) iter.Seq[*lines.Annotation] {
	return m.Select(ByKey(key))
}

// Select iterates the annotations accepted by filter in line order.
func (m *Manager) Select(filter Filter) iter.Seq[*lines.Annotation] {
	return func(yield func(*lines.Annotation) bool) {
		for _, a := range m.store.Annotations() {
			if filter != nil && !filter(a) {
				continue
			}
			if !yield(a) {
				return
			}
		}
	}
}

// Count returns the number of annotations accepted by filter.
func (m *Manager) Count(filter Filter) int {
	n := 0
	for range m.Select(filter) {
		n++
	}
	return n
}

func (m *Manager) collect(filter Filter) []*lines.Annotation {
	var out []*lines.Annotation
	for a := range m.Select(filter) {
		out = append(out, a)
	}
	return out
}
