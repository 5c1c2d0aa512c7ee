package style

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dshills/annotext/internal/engine/word"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"
	"golang.org/x/text/cases"
)

// Keys of the built-in styles.
const (
	KeySpellcheck    = "Spellcheck"
	KeyHighlight     = "Highlight"
	KeyURL           = "URL"
	KeyNote          = "Note"
	KeyTemplateToken = "TemplateToken"
)

// DefaultMinWordLength is the shortest word the spell checker looks at.
const DefaultMinWordLength = 3

// Checker decides whether a word is spelled correctly.
type Checker interface {
	Correct(word string) bool
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(word string) bool

// Correct implements Checker.
func (f CheckerFunc) Correct(word string) bool { return f(word) }

// Spellcheck marks misspelled words. The payload is the word.
type Spellcheck struct {
	Base
	checker   Checker
	minLength int
}

// NewSpellcheck creates a spell-check style backed by checker.
func NewSpellcheck(checker Checker) *Spellcheck {
	return &Spellcheck{
		Base: Base{
			StyleKey:   KeySpellcheck,
			StyleName:  "Spelling",
			StyleKind:  Automatic,
			Finalizing: true,
			Colors:     Colors{Foreground: tcell.ColorRed, Background: tcell.ColorDefault, Underline: true},
		},
		checker:   checker,
		minLength: DefaultMinWordLength,
	}
}

// SetMinLength changes the shortest checked word, in graphemes.
func (s *Spellcheck) SetMinLength(n int) {
	if n > 0 {
		s.minLength = n
	}
}

// FindMatch implements Style.
func (s *Spellcheck) FindMatch(text []rune, index int) (Match, bool) {
	if s.checker == nil {
		return Match{}, false
	}
	seg, ok := word.Get(text, index, true)
	if !ok {
		return Match{}, false
	}
	if uniseg.GraphemeClusterCount(seg.Text) < s.minLength {
		return Match{}, false
	}
	if s.checker.Correct(seg.Text) {
		return Match{}, false
	}
	return Match{Start: seg.Start, Length: seg.Len(), Payload: seg.Text}, true
}

type term struct {
	raw    string
	folded string
}

// Highlight marks occurrences of listed terms, ignoring case.
// The payload is the term as configured.
type Highlight struct {
	Base
	terms []term
}

// NewHighlight creates a highlight style for terms.
func NewHighlight(key string, terms []string, colors Colors) *Highlight {
	if key == "" {
		key = KeyHighlight
	}
	h := &Highlight{
		Base: Base{
			StyleKey:  key,
			StyleName: "Highlight",
			StyleKind: Automatic,
			Colors:    colors,
		},
	}
	caser := cases.Fold()
	for _, t := range terms {
		if t == "" {
			continue
		}
		h.terms = append(h.terms, term{raw: t, folded: caser.String(t)})
	}
	return h
}

// Terms returns the configured terms.
func (h *Highlight) Terms() []string {
	out := make([]string, len(h.terms))
	for i, t := range h.terms {
		out[i] = t.raw
	}
	return out
}

// FindMatch implements Style.
func (h *Highlight) FindMatch(text []rune, index int) (Match, bool) {
	if index < 0 || index >= len(text) {
		return Match{}, false
	}

	caser := cases.Fold()
	folded := make([]string, len(text))
	fold := func(i int) string {
		if folded[i] == "" {
			folded[i] = caser.String(string(text[i]))
		}
		return folded[i]
	}

	// A rune may fold to several, so the window is grown until its folded
	// form equals the term or stops being a prefix of it.
	for _, t := range h.terms {
		for start := max(0, index-utf8.RuneCountInString(t.folded)+1); start <= index; start++ {
			var b strings.Builder
			for end := start; end < len(text); end++ {
				b.WriteString(fold(end))
				w := b.String()
				if !strings.HasPrefix(t.folded, w) {
					break
				}
				if len(w) == len(t.folded) {
					if end >= index {
						return Match{Start: start, Length: end - start + 1, Payload: t.raw}, true
					}
					break
				}
			}
		}
	}
	return Match{}, false
}

var urlPrefixes = []string{"http://", "https://", "www."}

// URL marks whitespace delimited tokens that look like web addresses.
// The payload is the address.
type URL struct {
	Base
}

// NewURL creates the URL style.
func NewURL() *URL {
	return &URL{Base: Base{
		StyleKey:  KeyURL,
		StyleName: "Link",
		StyleKind: Automatic,
		Colors:    Colors{Foreground: tcell.ColorBlue, Background: tcell.ColorDefault, Underline: true},
	}}
}

// FindMatch implements Style.
func (u *URL) FindMatch(text []rune, index int) (Match, bool) {
	if index < 0 || index >= len(text) || unicode.IsSpace(text[index]) {
		return Match{}, false
	}
	start, end := index, index+1
	for start > 0 && !unicode.IsSpace(text[start-1]) {
		start--
	}
	for end < len(text) && !unicode.IsSpace(text[end]) {
		end++
	}
	token := string(text[start:end])
	lower := strings.ToLower(token)
	for _, p := range urlPrefixes {
		if strings.HasPrefix(lower, p) && len(lower) > len(p) {
			return Match{Start: start, Length: end - start, Payload: token}, true
		}
	}
	return Match{}, false
}

// Note is the pinned style used for user notes and bookmarks.
type Note struct {
	Base
}

// NewNote creates the note style.
func NewNote() *Note {
	return &Note{Base: Base{
		StyleKey:  KeyNote,
		StyleName: "Note",
		StyleKind: Pinned,
		Colors:    Colors{Foreground: tcell.ColorRed, Background: Tint(tcell.ColorRed, 0.8)},
	}}
}

// FindMatch implements Style. Notes are never discovered from content.
func (n *Note) FindMatch([]rune, int) (Match, bool) {
	return Match{}, false
}

// TemplateToken marks unresolved template placeholders.
type TemplateToken struct {
	Base
}

// NewTemplateToken creates the template token style.
func NewTemplateToken() *TemplateToken {
	return &TemplateToken{Base: Base{
		StyleKey:  KeyTemplateToken,
		StyleName: "Template token",
		StyleKind: Manual,
		Colors:    Colors{Foreground: tcell.ColorBlack, Background: tcell.ColorYellow},
	}}
}

// FindMatch implements Style. Template tokens are placed by templates only.
func (t *TemplateToken) FindMatch([]rune, int) (Match, bool) {
	return Match{}, false
}
