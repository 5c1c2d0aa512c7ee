package template

import (
	"path/filepath"
	"sync"
	"time"
)

// Built-in token type keys.
const (
	KeyDate     = "Date"
	KeyLongDate = "LongDate"
	KeyFile     = "File"
)

// Date layouts of the built-in date tokens.
const (
	DateLayout     = "2006-01-02"
	LongDateLayout = "Monday, January 2, 2006"
)

// Env is the environment a template is expanded in.
type Env struct {
	// FilePath is the path of the document receiving the template.
	FilePath string
	// Now is the expansion time. The zero value means time.Now.
	Now time.Time
	// Variables feed the dynamic token type.
	Variables map[string]string
}

func (e Env) now() time.Time {
	if e.Now.IsZero() {
		return time.Now()
	}
	return e.Now
}

// TokenType produces the values of a placeholder.
type TokenType interface {
	Key() string
	Values(name string, env Env) []string
}

// TypeFunc adapts a function to TokenType.
type TypeFunc struct {
	Name string
	Fn   func(name string, env Env) []string
}

// Key implements TokenType.
func (f TypeFunc) Key() string { return f.Name }

// Values implements TokenType.
func (f TypeFunc) Values(name string, env Env) []string { return f.Fn(name, env) }

type dateType struct {
	key, layout string
}

func (d dateType) Key() string { return d.key }

func (d dateType) Values(_ string, env Env) []string {
	return []string{env.now().Format(d.layout)}
}

type fileType struct{}

func (fileType) Key() string { return KeyFile }

func (fileType) Values(_ string, env Env) []string {
	if env.FilePath == "" {
		return nil
	}
	return []string{filepath.Base(env.FilePath)}
}

// Variable is the dynamic token type: it resolves any placeholder name from
// Env.Variables.
type Variable struct{}

// Key implements TokenType.
func (Variable) Key() string { return "[Variable]" }

// Values implements TokenType.
func (Variable) Values(name string, env Env) []string {
	if v, ok := env.Variables[name]; ok {
		return []string{v}
	}
	return nil
}

// Types is a registry of token types. Placeholders naming no registered
// type go to Dynamic; without one they fail to parse.
type Types struct {
	mu      sync.RWMutex
	byKey   map[string]TokenType
	Dynamic TokenType
}

// NewTypes creates a registry with the built-in types and Variable as the
// dynamic type.
func NewTypes() *Types {
	t := &Types{byKey: make(map[string]TokenType), Dynamic: Variable{}}
	t.Register(dateType{key: KeyDate, layout: DateLayout})
	t.Register(dateType{key: KeyLongDate, layout: LongDateLayout})
	t.Register(fileType{})
	return t
}

// Register adds or replaces a token type.
func (t *Types) Register(tt TokenType) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.byKey[tt.Key()] = tt
}

// Lookup returns the type for a placeholder name.
func (t *Types) Lookup(name string) (TokenType, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if tt, ok := t.byKey[name]; ok {
		return tt, true
	}
	if t.Dynamic != nil {
		return t.Dynamic, true
	}
	return nil, false
}
