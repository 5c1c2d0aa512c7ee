package lines

import (
	"github.com/dshills/annotext/internal/engine/style"
)

// Annotation is a styled segment anchored to a line.
//
// An annotation only knows the handle of its line and its offset inside
// it; the store moves it between lines. Once detached its handle is NoLine
// and it must not be returned by queries.
type Annotation struct {
	style   style.Style
	payload any

	line   Handle
	rel    int
	length int
}

// NewAnnotation creates a detached annotation.
func NewAnnotation(s style.Style, length int, payload any) *Annotation {
	if length < 0 {
		panic("lines: negative annotation length")
	}
	return &Annotation{style: s, length: length, payload: payload}
}

// FromMatch creates a detached annotation from a style match.
func FromMatch(s style.Style, m style.Match) *Annotation {
	return NewAnnotation(s, m.Length, m.Payload)
}

// Style returns the annotation style.
func (a *Annotation) Style() style.Style { return a.style }

// Key returns the style key.
func (a *Annotation) Key() string { return a.style.Key() }

// Kind returns the style kind.
func (a *Annotation) Kind() style.Kind { return a.style.Kind() }

// Payload returns the opaque value attached by the style.
func (a *Annotation) Payload() any { return a.payload }

// Line returns the handle of the owning line.
func (a *Annotation) Line() Handle { return a.line }

// Attached reports whether the annotation belongs to a line.
func (a *Annotation) Attached() bool { return a.line != NoLine }

// RelIndex returns the offset inside the owning line.
func (a *Annotation) RelIndex() int { return a.rel }

// Len returns the annotation length.
func (a *Annotation) Len() int { return a.length }

// End returns the exclusive line-relative end.
func (a *Annotation) End() int { return a.rel + a.length }

// Contains tests the annotation against the span [index, index+length].
// matchFirst admits an annotation starting right at the end of the span;
// matchLast admits an annotation ending right at its start.
func (a *Annotation) Contains(index, length int, matchFirst, matchLast bool) bool {
	end := a.rel + a.length
	if matchLast {
		if end < index {
			return false
		}
	} else if end <= index {
		return false
	}

	if matchFirst {
		if a.rel > index+length {
			return false
		}
	} else if a.rel >= index+length {
		return false
	}
	return true
}

// Same reports whether the annotation matches m exactly in bounds and
// payload.
func (a *Annotation) Same(m style.Match) bool {
	return a.rel == m.Start && a.length == m.Length && SamePayload(a.payload, m.Payload)
}

// SamePayload compares two payloads, treating non comparable values as
// different.
func SamePayload(x, y any) (same bool) {
	defer func() {
		if recover() != nil {
			same = false
		}
	}()
	return x == y
}
