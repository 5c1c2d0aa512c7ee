package style

import (
	"errors"
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"
)

// ScriptFunc is the global Lua function a script style must define.
//
//	function match(line, index)
//	  -- index is 1-based; return 1-based start, length and an optional payload
//	  return start, length, payload
//	end
//
// Returning nil means no match. Offsets count characters, which equals Lua's
// byte offsets for ASCII text.
const ScriptFunc = "match"

// ErrScriptClosed indicates the Lua state has been closed.
var ErrScriptClosed = errors.New("script style closed")

// Script is an Automatic style whose matcher is written in Lua.
// Only the base, table, string and math libraries are available.
//
// gopher-lua states are single threaded; calls are serialized.
type Script struct {
	Base

	mu      sync.Mutex
	L       *lua.LState
	lastErr error
}

// NewScript compiles source and returns a script style.
func NewScript(key, source string, colors Colors) (*Script, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(L)

	if err := L.DoString(source); err != nil {
		L.Close()
		return nil, fmt.Errorf("script style %s: %w", key, err)
	}
	if fn := L.GetGlobal(ScriptFunc); fn.Type() != lua.LTFunction {
		L.Close()
		return nil, fmt.Errorf("script style %s: global %q is not a function (got %s)", key, ScriptFunc, fn.Type())
	}

	return &Script{
		Base: Base{
			StyleKey:  key,
			StyleName: key,
			StyleKind: Automatic,
			Colors:    colors,
		},
		L: L,
	}, nil
}

// openSafeLibraries opens the libraries that cannot touch the host.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// FindMatch implements Style.
func (s *Script) FindMatch(text []rune, index int) (Match, bool) {
	if index < 0 || index >= len(text) {
		return Match{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.L == nil {
		s.lastErr = ErrScriptClosed
		return Match{}, false
	}

	err := s.L.CallByParam(lua.P{
		Fn:      s.L.GetGlobal(ScriptFunc),
		NRet:    3,
		Protect: true,
	}, lua.LString(string(text)), lua.LNumber(index+1))
	if err != nil {
		s.lastErr = err
		return Match{}, false
	}

	startVal, lengthVal, payloadVal := s.L.Get(-3), s.L.Get(-2), s.L.Get(-1)
	s.L.Pop(3)

	start, ok1 := startVal.(lua.LNumber)
	length, ok2 := lengthVal.(lua.LNumber)
	if !ok1 || !ok2 {
		return Match{}, false
	}

	m := Match{Start: int(start) - 1, Length: int(length)}
	if m.Start < 0 || m.Length <= 0 || m.End() > len(text) {
		return Match{}, false
	}

	if p, ok := payloadVal.(lua.LString); ok {
		m.Payload = string(p)
	} else {
		m.Payload = string(text[m.Start:m.End()])
	}
	return m, true
}

// LastError returns the last error raised by the script, if any.
func (s *Script) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Close releases the Lua state.
func (s *Script) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.L != nil {
		s.L.Close()
		s.L = nil
	}
}
