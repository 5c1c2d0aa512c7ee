// Package word extracts words from line text using a simplified Unicode
// category model.
//
// Letters, digits, marks, connector and dash punctuation, and apostrophes all
// collapse into a single "letter" class, so tokens like "it's", "snake_case"
// and "well-known" are one word. Strict extraction additionally trims
// non-letters from both ends and drops a trailing possessive "'s".
package word

import (
	"strings"
	"unicode"
)

// Category is a simplified Unicode category.
type Category uint8

const (
	// CategoryLetter covers letters, digits, marks, connector/dash
	// punctuation and apostrophes.
	CategoryLetter Category = iota
	// CategorySpace covers whitespace and separators.
	CategorySpace
	// CategoryOpen covers opening punctuation such as ( [ {.
	CategoryOpen
	// CategoryClose covers closing punctuation such as ) ] }.
	CategoryClose
	// CategoryPunct covers any other punctuation.
	CategoryPunct
	// CategorySymbol covers math, currency and other symbols.
	CategorySymbol
	// CategoryOther covers control characters and everything else.
	CategoryOther
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryLetter:
		return "letter"
	case CategorySpace:
		return "space"
	case CategoryOpen:
		return "open"
	case CategoryClose:
		return "close"
	case CategoryPunct:
		return "punct"
	case CategorySymbol:
		return "symbol"
	default:
		return "other"
	}
}

// Classify returns the simplified category of r.
func Classify(r rune) Category {
	switch {
	case r == '\'' || r == '’':
		return CategoryLetter
	case unicode.IsLetter(r), unicode.IsDigit(r), unicode.IsNumber(r), unicode.IsMark(r):
		return CategoryLetter
	case unicode.In(r, unicode.Pc, unicode.Pd):
		return CategoryLetter
	case unicode.IsSpace(r), unicode.In(r, unicode.Z):
		return CategorySpace
	case unicode.In(r, unicode.Ps, unicode.Pi):
		return CategoryOpen
	case unicode.In(r, unicode.Pe, unicode.Pf):
		return CategoryClose
	case unicode.IsPunct(r):
		return CategoryPunct
	case unicode.IsSymbol(r):
		return CategorySymbol
	default:
		return CategoryOther
	}
}

// IsFinalizer reports whether typing r completes a token. The zero rune
// stands for an explicit flush.
func IsFinalizer(r rune) bool {
	if r == 0 || r == '\n' {
		return true
	}
	return unicode.IsSpace(r) ||
		unicode.IsPunct(r) ||
		unicode.In(r, unicode.Z) ||
		unicode.IsControl(r) ||
		unicode.IsSymbol(r)
}

// Segment is a word found in a line. Start and End are rune offsets
// relative to the text passed to Get; End is exclusive.
type Segment struct {
	Start int
	End   int
	Text  string
}

// Len returns the word length in runes.
func (s Segment) Len() int {
	return s.End - s.Start
}

// contractions keep their "'s" in strict mode.
var contractions = map[string]struct{}{
	"it's": {}, "he's": {}, "she's": {}, "that's": {}, "what's": {},
	"there's": {}, "here's": {}, "who's": {}, "where's": {}, "how's": {},
	"let's": {}, "when's": {}, "why's": {},
}

// Get returns the word around index in text.
//
// When index sits on whitespace directly after a word, the word to the left
// is returned (a caret at the end of a word selects that word). Non-strict
// extraction stops only at whitespace and bracket punctuation. Strict
// extraction stops at any category change, trims non-letters and removes a
// trailing possessive "'s" unless the word is a known contraction.
func Get(text []rune, index int, strict bool) (Segment, bool) {
	n := len(text)
	if n == 0 {
		return Segment{}, false
	}

	i := min(max(index, 0), n-1)
	origin := Classify(text[i])
	if i > 0 && origin == CategorySpace {
		if prev := Classify(text[i-1]); prev != CategorySpace {
			origin = prev
			i--
		}
	}

	same := func(r rune) bool {
		c := Classify(r)
		if strict {
			return c == origin
		}
		return c != CategorySpace && c != CategoryOpen && c != CategoryClose
	}

	if !same(text[i]) {
		return Segment{}, false
	}

	start, end := i, i+1
	for start > 0 && same(text[start-1]) {
		start--
	}
	for end < n && same(text[end]) {
		end++
	}

	if strict {
		for start < end && !unicode.IsLetter(text[start]) {
			start++
		}
		for end > start && !unicode.IsLetter(text[end-1]) {
			end--
		}
		if end-start > 2 && isPossessive(text[end-2:end]) {
			key := strings.ReplaceAll(strings.ToLower(string(text[start:end])), "’", "'")
			if _, ok := contractions[key]; !ok {
				end -= 2
			}
		}
	}

	if start >= end {
		return Segment{}, false
	}

	return Segment{Start: start, End: end, Text: string(text[start:end])}, true
}

func isPossessive(tail []rune) bool {
	return (tail[0] == '\'' || tail[0] == '’') && unicode.ToLower(tail[1]) == 's'
}
