package style

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
)

// KeySyntax is the default key of the syntax style.
const KeySyntax = "Syntax"

// Syntax marks tokens of one chroma token category (keywords by default)
// using the lexer of a language. The payload is the token text.
//
// Lines are lexed in isolation, so constructs spanning several lines are
// not recognized.
type Syntax struct {
	Base
	lexer    chroma.Lexer
	category chroma.TokenType
}

// NewSyntax creates a syntax style for language, marking tokens in category.
func NewSyntax(key, language string, category chroma.TokenType, colors Colors) (*Syntax, error) {
	l := lexers.Get(language)
	if l == nil {
		return nil, fmt.Errorf("syntax style: no lexer for %q", language)
	}
	if key == "" {
		key = KeySyntax
	}
	if category == 0 {
		category = chroma.Keyword
	}
	return &Syntax{
		Base: Base{
			StyleKey:  key,
			StyleName: "Syntax (" + language + ")",
			StyleKind: Automatic,
			Colors:    colors,
		},
		lexer:    chroma.Coalesce(l),
		category: category,
	}, nil
}

// ParseCategory maps a category name such as "keyword", "comment",
// "string" or "number" to a chroma token type.
func ParseCategory(name string) (chroma.TokenType, error) {
	switch strings.ToLower(name) {
	case "", "keyword":
		return chroma.Keyword, nil
	case "name":
		return chroma.Name, nil
	case "literal":
		return chroma.Literal, nil
	case "string":
		return chroma.LiteralString, nil
	case "number":
		return chroma.LiteralNumber, nil
	case "operator":
		return chroma.Operator, nil
	case "comment":
		return chroma.Comment, nil
	default:
		return 0, fmt.Errorf("unknown token category %q", name)
	}
}

// FindMatch implements Style.
func (s *Syntax) FindMatch(text []rune, index int) (Match, bool) {
	if index < 0 || index >= len(text) {
		return Match{}, false
	}
	it, err := s.lexer.Tokenise(nil, string(text))
	if err != nil {
		return Match{}, false
	}

	pos := 0
	for _, tok := range it.Tokens() {
		value := []rune(strings.TrimSuffix(tok.Value, "\n"))
		end := pos + len(value)
		if index >= pos && index < end {
			if !s.inCategory(tok.Type) {
				return Match{}, false
			}
			start, stop := pos, end
			for start < stop && unicode.IsSpace(text[start]) {
				start++
			}
			for stop > start && unicode.IsSpace(text[stop-1]) {
				stop--
			}
			if start >= stop || index < start || index >= stop {
				return Match{}, false
			}
			return Match{Start: start, Length: stop - start, Payload: string(text[start:stop])}, true
		}
		pos = end
		if pos > index {
			break
		}
	}
	return Match{}, false
}

func (s *Syntax) inCategory(tt chroma.TokenType) bool {
	if s.category%1000 == 0 {
		return tt.InCategory(s.category)
	}
	if s.category%100 == 0 {
		return tt.InSubCategory(s.category)
	}
	return tt == s.category
}
