package config

import (
	"errors"
	"strings"
	"time"

	"github.com/dshills/annotext/internal/engine/style"
	"github.com/dshills/annotext/internal/logging"
)

// Validate checks every setting and returns the failures joined.
func (c *Config) Validate() error {
	var errs []error
	fail := func(path, msg string, v any) {
		errs = append(errs, &ValidationError{Path: path, Message: msg, Value: v})
	}

	if c.Editor.Columns < 1 {
		fail("editor.columns", "must be at least 1", c.Editor.Columns)
	}
	if _, err := style.ParseColor(c.Editor.NoteColor); err != nil {
		fail("editor.note_color", "not a #rrggbb color", c.Editor.NoteColor)
	}

	if c.History.MaxEntries < 0 {
		fail("history.max_entries", "must not be negative", c.History.MaxEntries)
	}

	if c.Spell.MinWordLength < 1 {
		fail("spell.min_word_length", "must be at least 1", c.Spell.MinWordLength)
	}
	if d, err := time.ParseDuration(c.Spell.CacheExpiration); err != nil || d <= 0 {
		fail("spell.cache_expiration", "not a positive duration", c.Spell.CacheExpiration)
	}

	for path, color := range map[string]string{
		"highlight.color":      c.Highlight.Color,
		"highlight.background": c.Highlight.Background,
		"syntax.color":         c.Syntax.Color,
	} {
		if _, err := style.ParseColor(color); err != nil {
			fail(path, "not a #rrggbb color", color)
		}
	}
	if _, err := style.ParseCategory(c.Syntax.Category); err != nil {
		fail("syntax.category", "unknown token category", c.Syntax.Category)
	}

	seen := make(map[string]bool)
	for _, s := range c.Script {
		switch {
		case s.Key == "":
			fail("script.key", "must not be empty", s.Key)
		case seen[s.Key]:
			fail("script.key", "duplicate", s.Key)
		}
		seen[s.Key] = true
		if s.File == "" {
			fail("script.file", "must not be empty", s.Key)
		}
		if _, err := style.ParseColor(s.Color); err != nil {
			fail("script.color", "not a #rrggbb color", s.Color)
		}
	}

	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		fail("log.level", "must be debug, info, warn or error", c.Log.Level)
	}
	switch c.Log.Format {
	case "", logging.FormatConsole, logging.FormatJSON:
	default:
		fail("log.format", "must be console or json", c.Log.Format)
	}

	return errors.Join(errs...)
}
