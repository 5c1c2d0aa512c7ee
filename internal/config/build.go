package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/dshills/annotext/internal/engine"
	"github.com/dshills/annotext/internal/engine/style"
	"github.com/dshills/annotext/internal/logging"
	"github.com/dshills/annotext/internal/spell"
	"github.com/dshills/annotext/internal/template"
	"go.uber.org/zap"
)

// Path resolves a path from the configuration: "~/" expands to the home
// directory and relative paths are taken from the directory of the loaded
// file.
func (c *Config) Path(p string) string {
	if p == "" {
		return ""
	}
	if rest, ok := strings.CutPrefix(p, "~/"); ok {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, rest)
		}
	}
	if !filepath.IsAbs(p) && c.dir != "" {
		return filepath.Join(c.dir, p)
	}
	return p
}

// EngineOptions translates the document settings into engine options.
func (c *Config) EngineOptions(styles *style.Registry, logger *zap.Logger) []engine.Option {
	return []engine.Option{
		engine.WithColumns(c.Editor.Columns),
		engine.WithMaxUndoEntries(c.History.MaxEntries),
		engine.WithStyles(styles),
		engine.WithLogger(logger),
	}
}

// LineFilter returns the filter applied by InsertLineBreak, or nil.
func (c *Config) LineFilter() engine.LineFilter {
	if !c.Editor.TrimTrailingSpace {
		return nil
	}
	return func(s string) string {
		return strings.TrimRightFunc(s, unicode.IsSpace)
	}
}

// Logging returns the logger settings writing to out.
func (c *Config) Logging(out io.Writer) logging.Config {
	return logging.Config{Level: c.Log.Level, Format: c.Log.Format, Output: out}
}

// SpellChecker loads the configured dictionaries. The returned user
// dictionary is part of the checker and may be kept in sync with
// spell.Watcher.
func (c *Config) SpellChecker(opts ...spell.CheckerOption) (*spell.Checker, *spell.Dictionary, error) {
	var dicts []*spell.Dictionary
	for _, p := range c.Spell.Dictionaries {
		d := spell.NewDictionary()
		if err := d.LoadFile(c.Path(p)); err != nil {
			return nil, nil, err
		}
		dicts = append(dicts, d)
	}

	user := spell.NewDictionary()
	if c.Spell.UserDictionary != "" {
		if err := user.LoadFile(c.Path(c.Spell.UserDictionary)); err != nil {
			return nil, nil, err
		}
	}
	dicts = append(dicts, user)

	exp := c.CacheExpiration()
	opts = append([]spell.CheckerOption{spell.WithCacheExpiration(exp, 2*exp)}, opts...)
	return spell.NewChecker(dicts, opts...), user, nil
}

// Styles builds the style registry. The spell-check style is added when
// spelling is enabled and checker is not nil.
func (c *Config) Styles(checker style.Checker) (*style.Registry, error) {
	r := style.NewRegistry()

	if c.Spell.Enabled && checker != nil {
		sc := style.NewSpellcheck(checker)
		sc.SetMinLength(c.Spell.MinWordLength)
		_ = r.Register(sc)
	}

	if len(c.Highlight.Terms) > 0 {
		fg, err := style.ParseColor(c.Highlight.Color)
		if err != nil {
			return nil, fmt.Errorf("highlight: %w", err)
		}
		bg, err := style.ParseColor(c.Highlight.Background)
		if err != nil {
			return nil, fmt.Errorf("highlight: %w", err)
		}
		_ = r.Register(style.NewHighlight(style.KeyHighlight, c.Highlight.Terms,
			style.Colors{Foreground: fg, Background: bg}))
	}

	if c.Editor.URLs {
		_ = r.Register(style.NewURL())
	}

	if c.Syntax.Language != "" {
		cat, err := style.ParseCategory(c.Syntax.Category)
		if err != nil {
			return nil, err
		}
		fg, err := style.ParseColor(c.Syntax.Color)
		if err != nil {
			return nil, fmt.Errorf("syntax: %w", err)
		}
		s, err := style.NewSyntax(style.KeySyntax, c.Syntax.Language, cat, style.Colors{Foreground: fg})
		if err != nil {
			return nil, err
		}
		_ = r.Register(s)
	}

	for _, sc := range c.Script {
		src, err := os.ReadFile(c.Path(sc.File))
		if err != nil {
			return nil, fmt.Errorf("script %s: %w", sc.Key, err)
		}
		fg, err := style.ParseColor(sc.Color)
		if err != nil {
			return nil, fmt.Errorf("script %s: %w", sc.Key, err)
		}
		s, err := style.NewScript(sc.Key, string(src), style.Colors{Foreground: fg})
		if err != nil {
			return nil, err
		}
		if err := r.Register(s); err != nil {
			s.Close()
			return nil, fmt.Errorf("script %s: %w", sc.Key, err)
		}
	}

	note := style.NewNote()
	if c.Editor.NoteColor != "" {
		fg, err := style.ParseColor(c.Editor.NoteColor)
		if err != nil {
			return nil, fmt.Errorf("note: %w", err)
		}
		note.Colors = style.Colors{Foreground: fg, Background: style.Tint(fg, 0.8)}
	}
	_ = r.Register(note)
	_ = r.Register(style.NewTemplateToken())

	return r, nil
}

// LoadTemplates loads the template manifest and the template directory.
// Manifest entries win over directory templates with the same name.
func (c *Config) LoadTemplates() (*template.Manifest, error) {
	m := &template.Manifest{}
	if c.Templates.Manifest != "" {
		var err error
		if m, err = template.LoadManifest(c.Path(c.Templates.Manifest)); err != nil {
			return nil, err
		}
	}
	if c.Templates.Dir != "" {
		ts, err := template.LoadDir(c.Path(c.Templates.Dir))
		if err != nil {
			return nil, err
		}
		m.Add(ts...)
	}
	return m, nil
}
