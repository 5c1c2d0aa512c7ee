// Package template expands text templates into a document.
//
// A template is plain text with placeholders of the form
//
//	[{Name} attributes]
//
// Name selects a token type (Date, LongDate, File, or a caller-registered
// type; anything else goes to the dynamic type). Attributes are separated
// by '|' and written either as key=value or as a one-character key
// followed by its value:
//
//	[{Date}]
//	[{author} D=anonymous]
//	[{count} L5|-1]
//
// A template may start with $$hotkey$$ to declare a keyboard shortcut.
//
// Apply inserts the template with each placeholder shown as "[?]" under a
// TemplateToken annotation, then resolves the placeholders one by one.
// The whole expansion is a single undo step.
package template

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dshills/annotext/internal/engine/history"
	"github.com/dshills/annotext/internal/engine/lines"
	"github.com/dshills/annotext/internal/engine/segment"
	"github.com/dshills/annotext/internal/engine/style"
	"github.com/dshills/annotext/internal/logging"
	"go.uber.org/zap"
)

// Placeholder is the text shown for an unresolved token.
const Placeholder = "[?]"

var (
	placeholderPattern = regexp.MustCompile(`\[\{(.*?)\}\s*(.*?)\]`)
	hotkeyPattern      = regexp.MustCompile(`^\$\$(.*?)\$\$`)
)

// Document is the part of a text document templates are applied to.
type Document interface {
	Insert(index int, text string, col int) (history.Command, error)
	Remove(index, length, col int) (history.Command, error)
	AddAnnotation(a *lines.Annotation, index int) (bool, error)
	RemoveAnnotation(a *lines.Annotation)
	AnnotationIndex(a *lines.Annotation) (int, bool)
	Annotations(filter segment.Filter) []*lines.Annotation
	FakeFinalizingKey(index int)
	Styles() *style.Registry
	History() *history.Manager
}

// Template is a named template.
type Template struct {
	Name    string
	Hotkey  string
	Content string
}

// New creates a template. A leading $$hotkey$$ is stripped from content
// and stored in Hotkey.
func New(name, content string) *Template {
	t := &Template{Name: name}
	if m := hotkeyPattern.FindStringSubmatchIndex(content); m != nil {
		t.Hotkey = content[m[2]:m[3]]
		content = content[m[1]:]
	}
	t.Content = strings.ReplaceAll(content, "\r\n", "\n")
	return t
}

// Part is a piece of a parsed template: literal text or a token.
type Part struct {
	Text  string
	Token *Token
}

// Parse splits the template into literal text and tokens.
func (t *Template) Parse(types *Types) ([]Part, error) {
	var parts []Part
	last := 0
	for _, m := range placeholderPattern.FindAllStringSubmatchIndex(t.Content, -1) {
		if m[0] > last {
			parts = append(parts, Part{Text: t.Content[last:m[0]]})
		}
		last = m[1]

		name := strings.TrimSpace(t.Content[m[2]:m[3]])
		tt, ok := types.Lookup(name)
		if !ok || name == "" {
			return nil, &ParseError{
				Template: t.Name,
				Offset:   m[0],
				Message:  fmt.Sprintf("unknown token %q", name),
				Err:      ErrUnknownToken,
			}
		}

		attrs, err := parseAttributes(t.Content[m[4]:m[5]])
		if err != nil {
			return nil, &ParseError{
				Template: t.Name,
				Offset:   m[0],
				Message:  fmt.Sprintf("token %q: %v", name, err),
				Err:      err,
			}
		}
		parts = append(parts, Part{Token: &Token{Name: name, Type: tt, Attributes: attrs}})
	}
	if last < len(t.Content) {
		parts = append(parts, Part{Text: t.Content[last:]})
	}
	return parts, nil
}

// Apply expands the template at a global index of doc and returns the index
// right after the expanded text.
func (t *Template) Apply(ctx context.Context, doc Document, index int, types *Types, env Env) (int, error) {
	parts, err := t.Parse(types)
	if err != nil {
		return index, err
	}
	tokenStyle := ensureTokenStyle(doc.Styles())

	defer doc.History().GroupScope().End()

	pos := index
	var pending []*lines.Annotation
	for _, p := range parts {
		text := p.Text
		if p.Token != nil {
			text = Placeholder
		}
		cmd, err := doc.Insert(pos, text, 0)
		if err != nil {
			return pos, fmt.Errorf("apply template %s: %w", t.Name, err)
		}
		if cmd == nil {
			return pos, fmt.Errorf("apply template %s: index %d no longer exists", t.Name, pos)
		}

		if p.Token != nil {
			a := lines.NewAnnotation(tokenStyle, utf8.RuneCountInString(Placeholder), p.Token)
			if ok, err := doc.AddAnnotation(a, pos); err != nil {
				return pos, err
			} else if ok {
				pending = append(pending, a)
			}
		}
		pos += utf8.RuneCountInString(text)
	}

	pos += resolve(doc, pending, env)

	logging.L(ctx).Debug("template applied",
		zap.String("template", t.Name),
		zap.Int("index", index),
		zap.Int("tokens", len(pending)),
	)
	return pos, nil
}

// ResolveAll resolves every unresolved placeholder in doc.
func ResolveAll(doc Document, env Env) {
	defer doc.History().GroupScope().End()
	resolve(doc, doc.Annotations(segment.ByKey(style.KeyTemplateToken)), env)
}

// resolve replaces each placeholder with its token value and returns the
// resulting change in text length.
func resolve(doc Document, anns []*lines.Annotation, env Env) int {
	delta := 0
	for _, a := range anns {
		tok, ok := a.Payload().(*Token)
		if !ok {
			continue
		}
		idx, ok := doc.AnnotationIndex(a)
		if !ok {
			continue
		}
		length := a.Len()
		doc.RemoveAnnotation(a)

		value := tok.Process(env)
		if cmd, _ := doc.Remove(idx, length, 0); cmd != nil {
			delta -= length
		}
		if value != "" {
			if cmd, _ := doc.Insert(idx, value, 0); cmd != nil {
				delta += utf8.RuneCountInString(value)
			}
		}
		doc.FakeFinalizingKey(idx)
	}
	return delta
}

func ensureTokenStyle(r *style.Registry) style.Style {
	if s, ok := r.Get(style.KeyTemplateToken); ok {
		return s
	}
	s := style.NewTemplateToken()
	_ = r.Register(s)
	return s
}
