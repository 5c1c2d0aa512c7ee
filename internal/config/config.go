// Package config provides the annotext configuration: TOML sections with
// defaults, file loading with @include support, validation, and the
// translation of settings into engine options and styles.
//
// A configuration file looks like this:
//
//	"@include" = "shared.toml"
//
//	[editor]
//	columns = 2
//	trim_trailing_space = true
//
//	[history]
//	max_entries = 500
//
//	[spell]
//	enabled = true
//	dictionaries = ["/usr/share/dict/words"]
//	user_dictionary = "~/.config/annotext/user.dic"
//
//	[highlight]
//	terms = ["TODO", "FIXME"]
//	color = "#ffcc00"
//
//	[[script]]
//	key = "Issue"
//	file = "issue.lua"
//
//	[log]
//	level = "debug"
//
// Included files are merged below the including file: its values win.
package config

import (
	"time"

	"github.com/dshills/annotext/internal/engine"
	"github.com/dshills/annotext/internal/engine/style"
	"github.com/dshills/annotext/internal/logging"
	"github.com/dshills/annotext/internal/spell"
)

// Config is the complete annotext configuration.
type Config struct {
	Editor    EditorConfig    `toml:"editor"`
	History   HistoryConfig   `toml:"history"`
	Spell     SpellConfig     `toml:"spell"`
	Highlight HighlightConfig `toml:"highlight"`
	Syntax    SyntaxConfig    `toml:"syntax"`
	Script    []ScriptConfig  `toml:"script"`
	Templates TemplatesConfig `toml:"templates"`
	Log       LogConfig       `toml:"log"`

	// dir is the directory of the loaded file.
	dir string
}

// EditorConfig holds document settings.
type EditorConfig struct {
	// Columns is the number of text columns per line.
	Columns int `toml:"columns"`

	// TrimTrailingSpace strips trailing blanks from a line completed by a
	// line break.
	TrimTrailingSpace bool `toml:"trim_trailing_space"`

	// URLs enables the URL style.
	URLs bool `toml:"urls"`

	// NoteColor overrides the foreground of pinned notes.
	NoteColor string `toml:"note_color"`
}

// HistoryConfig holds undo settings.
type HistoryConfig struct {
	// MaxEntries bounds the undo list. Zero disables history.
	MaxEntries int `toml:"max_entries"`
}

// SpellConfig holds spell-check settings.
type SpellConfig struct {
	Enabled bool `toml:"enabled"`

	// Dictionaries are word list files, one word per line.
	Dictionaries []string `toml:"dictionaries"`

	// UserDictionary is a word list reloaded when it changes.
	UserDictionary string `toml:"user_dictionary"`

	MinWordLength int `toml:"min_word_length"`

	// CacheExpiration is a duration such as "10m".
	CacheExpiration string `toml:"cache_expiration"`
}

// HighlightConfig holds the highlighted terms.
type HighlightConfig struct {
	Terms      []string `toml:"terms"`
	Color      string   `toml:"color"`
	Background string   `toml:"background"`
}

// SyntaxConfig enables chroma-based token marking.
type SyntaxConfig struct {
	// Language is a chroma lexer name; empty disables the style.
	Language string `toml:"language"`
	Category string `toml:"category"`
	Color    string `toml:"color"`
}

// ScriptConfig declares a Lua matcher style.
type ScriptConfig struct {
	Key   string `toml:"key"`
	File  string `toml:"file"`
	Color string `toml:"color"`
}

// TemplatesConfig locates text templates.
type TemplatesConfig struct {
	// Manifest is a YAML file of named templates.
	Manifest string `toml:"manifest"`

	// Dir holds one template per *.txt file.
	Dir string `toml:"dir"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Editor: EditorConfig{
			Columns: engine.DefaultColumns,
			URLs:    true,
		},
		History: HistoryConfig{
			MaxEntries: engine.DefaultMaxUndoEntries,
		},
		Spell: SpellConfig{
			MinWordLength:   style.DefaultMinWordLength,
			CacheExpiration: spell.DefaultCacheExpiration.String(),
		},
		Syntax: SyntaxConfig{
			Category: "keyword",
		},
		Log: LogConfig{
			Level:  "info",
			Format: logging.FormatConsole,
		},
	}
}

// CacheExpiration returns the parsed spell cache expiration.
func (c *Config) CacheExpiration() time.Duration {
	d, err := time.ParseDuration(c.Spell.CacheExpiration)
	if err != nil || d <= 0 {
		return spell.DefaultCacheExpiration
	}
	return d
}
