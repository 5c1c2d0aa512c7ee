// Package style defines the annotation styles that the segment manager
// applies to document text.
//
// A style decides two things: whether a position in a line belongs to a
// styled span (FindMatch) and how that span looks by default
// (NaturalColors). Painting is left to renderers; matching lives here
// because re-matching after every edit is engine behavior.
//
// # Kinds
//
//   - Automatic styles are derived from content (spell-check, highlighting,
//     URLs, syntax) and are re-validated after edits.
//   - Manual styles are attached by callers (template placeholders) and only
//     track edits.
//   - Pinned styles (notes) survive the removal of the text they mark for as
//     long as their line exists.
package style

import (
	"errors"
	"sync"
)

// Kind classifies how annotations of a style behave during edits.
type Kind uint8

const (
	// Automatic annotations are content derived and continuously re-validated.
	Automatic Kind = iota
	// Manual annotations are inserted by callers and never rediscovered.
	Manual
	// Pinned annotations persist when their text is edited away.
	Pinned
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Automatic:
		return "automatic"
	case Manual:
		return "manual"
	case Pinned:
		return "pinned"
	default:
		return "unknown"
	}
}

// Match is a styled span found by a style, relative to the line start.
type Match struct {
	Start   int
	Length  int
	Payload any
}

// End returns the exclusive end of the match.
func (m Match) End() int {
	return m.Start + m.Length
}

// Style is an annotation style.
type Style interface {
	// Key uniquely identifies the style. It is the first field of sidecar
	// records.
	Key() string

	// Name is a human readable name.
	Name() string

	// Kind reports how annotations of this style react to edits.
	Kind() Kind

	// UpdateOnlyOnFinalizingChange reports whether the style is only
	// searched when a token is completed.
	UpdateOnlyOnFinalizingChange() bool

	// FindMatch looks for a styled span covering index in text.
	FindMatch(text []rune, index int) (Match, bool)

	// NaturalColors are the default colors of the style.
	NaturalColors() Colors
}

// Base carries the fixed attributes of a style. Embed it and implement
// FindMatch to build a style.
type Base struct {
	StyleKey   string
	StyleName  string
	StyleKind  Kind
	Finalizing bool
	Colors     Colors
}

// Key implements Style.
func (b *Base) Key() string { return b.StyleKey }

// Name implements Style.
func (b *Base) Name() string {
	if b.StyleName == "" {
		return b.StyleKey
	}
	return b.StyleName
}

// Kind implements Style.
func (b *Base) Kind() Kind { return b.StyleKind }

// UpdateOnlyOnFinalizingChange implements Style.
func (b *Base) UpdateOnlyOnFinalizingChange() bool { return b.Finalizing }

// NaturalColors implements Style.
func (b *Base) NaturalColors() Colors { return b.Colors }

// Errors returned by the registry.
var (
	// ErrDuplicateStyle indicates a style key is already registered.
	ErrDuplicateStyle = errors.New("style already registered")

	// ErrEmptyKey indicates a style without a key.
	ErrEmptyKey = errors.New("style key is empty")
)

// Registry holds the styles active for a document, in registration order.
// Search order follows registration order.
type Registry struct {
	mu     sync.RWMutex
	styles []Style
	byKey  map[string]Style
}

// NewRegistry creates a registry holding the given styles.
// Styles with empty or duplicate keys are ignored.
func NewRegistry(styles ...Style) *Registry {
	r := &Registry{byKey: make(map[string]Style)}
	for _, s := range styles {
		_ = r.Register(s)
	}
	return r
}

// Register adds a style.
func (r *Registry) Register(s Style) error {
	if s.Key() == "" {
		return ErrEmptyKey
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byKey[s.Key()]; ok {
		return ErrDuplicateStyle
	}
	r.styles = append(r.styles, s)
	r.byKey[s.Key()] = s
	return nil
}

// Unregister removes a style by key. It reports whether a style was removed.
func (r *Registry) Unregister(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byKey[key]; !ok {
		return false
	}
	delete(r.byKey, key)
	for i, s := range r.styles {
		if s.Key() == key {
			r.styles = append(r.styles[:i], r.styles[i+1:]...)
			break
		}
	}
	return true
}

// Get returns the style registered under key.
func (r *Registry) Get(key string) (Style, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byKey[key]
	return s, ok
}

// All returns every registered style.
func (r *Registry) All() []Style {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Style, len(r.styles))
	copy(out, r.styles)
	return out
}

// Searchable returns the styles that can be discovered from content.
func (r *Registry) Searchable() []Style {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Style
	for _, s := range r.styles {
		if s.Kind() == Automatic {
			out = append(out, s)
		}
	}
	return out
}

// Len returns the number of registered styles.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.styles)
}
