package style

import (
	"strings"
	"testing"

	"github.com/alecthomas/chroma/v2"
	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dictionary(words ...string) Checker {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[strings.ToLower(w)] = true
	}
	return CheckerFunc(func(w string) bool { return set[strings.ToLower(w)] })
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "automatic", Automatic.String())
	assert.Equal(t, "manual", Manual.String())
	assert.Equal(t, "pinned", Pinned.String())
	assert.Equal(t, "unknown", Kind(42).String())
}

func TestRegistry(t *testing.T) {
	note := NewNote()
	url := NewURL()
	r := NewRegistry(url, note)

	assert.Equal(t, 2, r.Len())
	assert.ErrorIs(t, r.Register(NewURL()), ErrDuplicateStyle)
	assert.ErrorIs(t, r.Register(&Note{}), ErrEmptyKey)

	got, ok := r.Get(KeyNote)
	require.True(t, ok)
	assert.Same(t, note, got)

	searchable := r.Searchable()
	require.Len(t, searchable, 1)
	assert.Equal(t, KeyURL, searchable[0].Key())

	assert.True(t, r.Unregister(KeyURL))
	assert.False(t, r.Unregister(KeyURL))
	assert.Empty(t, r.Searchable())
	assert.Equal(t, []Style{note}, r.All())
}

func TestSpellcheckFindMatch(t *testing.T) {
	s := NewSpellcheck(dictionary("hello", "world", "it's"))

	tests := []struct {
		name    string
		text    string
		index   int
		want    bool
		start   int
		length  int
		payload string
	}{
		{"correct word", "hello world", 1, false, 0, 0, ""},
		{"misspelled", "helo world", 1, true, 0, 4, "helo"},
		{"misspelled second", "hello wrold", 8, true, 6, 5, "wrold"},
		{"too short", "xy world", 0, false, 0, 0, ""},
		{"contraction correct", "it's", 0, false, 0, 0, ""},
		{"caret after word", "helo ", 4, true, 0, 4, "helo"},
		{"on space", "hello  world", 6, false, 0, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := s.FindMatch([]rune(tt.text), tt.index)
			require.Equal(t, tt.want, ok)
			if !tt.want {
				return
			}
			assert.Equal(t, tt.start, m.Start)
			assert.Equal(t, tt.length, m.Length)
			assert.Equal(t, tt.payload, m.Payload)
		})
	}

	assert.True(t, s.UpdateOnlyOnFinalizingChange())
	assert.Equal(t, Automatic, s.Kind())
}

func TestSpellcheckMinLength(t *testing.T) {
	s := NewSpellcheck(dictionary())
	s.SetMinLength(5)
	_, ok := s.FindMatch([]rune("abcd"), 0)
	assert.False(t, ok)
	_, ok = s.FindMatch([]rune("abcde"), 0)
	assert.True(t, ok)
}

func TestSpellcheckNilChecker(t *testing.T) {
	_, ok := NewSpellcheck(nil).FindMatch([]rune("anything"), 0)
	assert.False(t, ok)
}

func TestHighlightFindMatch(t *testing.T) {
	h := NewHighlight("", []string{"TODO", "fix me", "Straße"}, Colors{})
	assert.Equal(t, KeyHighlight, h.Key())
	assert.Equal(t, []string{"TODO", "fix me", "Straße"}, h.Terms())

	tests := []struct {
		name    string
		text    string
		index   int
		want    bool
		start   int
		length  int
		payload string
	}{
		{"exact at start", "TODO later", 0, true, 0, 4, "TODO"},
		{"case folded middle", "a todo here", 4, true, 2, 4, "TODO"},
		{"phrase", "please Fix Me now", 10, true, 7, 6, "fix me"},
		{"expanding fold", "die Straße hier", 5, true, 4, 6, "Straße"},
		{"expanding fold at last rune", "die Straße hier", 9, true, 4, 6, "Straße"},
		{"expanded spelling", "die STRASSE hier", 10, true, 4, 7, "Straße"},
		{"outside", "a todo here", 7, false, 0, 0, ""},
		{"out of range", "todo", 4, false, 0, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := h.FindMatch([]rune(tt.text), tt.index)
			require.Equal(t, tt.want, ok)
			if tt.want {
				assert.Equal(t, tt.start, m.Start)
				assert.Equal(t, tt.length, m.Length)
				assert.Equal(t, tt.payload, m.Payload)
			}
		})
	}
}

func TestURLFindMatch(t *testing.T) {
	u := NewURL()
	text := []rune("see https://example.com now")

	m, ok := u.FindMatch(text, 8)
	require.True(t, ok)
	assert.Equal(t, 4, m.Start)
	assert.Equal(t, 19, m.Length)
	assert.Equal(t, "https://example.com", m.Payload)

	_, ok = u.FindMatch(text, 1)
	assert.False(t, ok)
	_, ok = u.FindMatch(text, 3)
	assert.False(t, ok)

	m, ok = u.FindMatch([]rune("www.go.dev"), 0)
	require.True(t, ok)
	assert.Equal(t, 10, m.Length)
}

func TestManualStylesNeverMatch(t *testing.T) {
	_, ok := NewNote().FindMatch([]rune("anything"), 0)
	assert.False(t, ok)
	_, ok = NewTemplateToken().FindMatch([]rune("[?]"), 0)
	assert.False(t, ok)
	assert.Equal(t, Pinned, NewNote().Kind())
	assert.Equal(t, Manual, NewTemplateToken().Kind())
}

func TestSyntaxFindMatch(t *testing.T) {
	s, err := NewSyntax("", "go", chroma.Keyword, Colors{})
	require.NoError(t, err)
	assert.Equal(t, KeySyntax, s.Key())

	text := []rune("func main() {")
	m, ok := s.FindMatch(text, 2)
	require.True(t, ok)
	assert.Equal(t, 0, m.Start)
	assert.Equal(t, 4, m.Length)
	assert.Equal(t, "func", m.Payload)

	_, ok = s.FindMatch(text, 6)
	assert.False(t, ok)

	_, err = NewSyntax("", "no-such-language-xyz", chroma.Keyword, Colors{})
	assert.Error(t, err)
}

func TestParseCategory(t *testing.T) {
	tt, err := ParseCategory("comment")
	require.NoError(t, err)
	assert.Equal(t, chroma.Comment, tt)

	tt, err = ParseCategory("")
	require.NoError(t, err)
	assert.Equal(t, chroma.Keyword, tt)

	_, err = ParseCategory("bogus")
	assert.Error(t, err)
}

func TestScriptFindMatch(t *testing.T) {
	src := `
function match(line, index)
  local s, e = string.find(line, "%d+")
  while s do
    if index >= s and index <= e then
      return s, e - s + 1, "number"
    end
    s, e = string.find(line, "%d+", e + 1)
  end
  return nil
end
`
	s, err := NewScript("Numbers", src, Colors{})
	require.NoError(t, err)
	defer s.Close()

	m, ok := s.FindMatch([]rune("abc 1234 def"), 5)
	require.True(t, ok)
	assert.Equal(t, 4, m.Start)
	assert.Equal(t, 4, m.Length)
	assert.Equal(t, "number", m.Payload)

	_, ok = s.FindMatch([]rune("abc 1234 def"), 1)
	assert.False(t, ok)
	assert.NoError(t, s.LastError())

	s.Close()
	_, ok = s.FindMatch([]rune("1"), 0)
	assert.False(t, ok)
	assert.ErrorIs(t, s.LastError(), ErrScriptClosed)
}

func TestScriptRejectsBadSource(t *testing.T) {
	_, err := NewScript("Bad", "this is not lua", Colors{})
	assert.Error(t, err)

	_, err = NewScript("NoFunc", "x = 1", Colors{})
	assert.Error(t, err)

	_, err = NewScript("", "function match() end", Colors{})
	assert.ErrorIs(t, err, ErrEmptyKey)
}

func TestScriptSandbox(t *testing.T) {
	_, err := NewScript("Sandboxed", `os.exit(1) function match() end`, Colors{})
	assert.Error(t, err)
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#ff0000")
	require.NoError(t, err)
	r, g, b := c.RGB()
	assert.Equal(t, int32(255), r)
	assert.Equal(t, int32(0), g)
	assert.Equal(t, int32(0), b)

	c, err = ParseColor("")
	require.NoError(t, err)
	assert.Equal(t, tcell.ColorDefault, c)

	_, err = ParseColor("not-a-color")
	assert.Error(t, err)
}

func TestTint(t *testing.T) {
	red := tcell.NewRGBColor(255, 0, 0)
	r, g, b := Tint(red, 1).RGB()
	assert.Equal(t, int32(255), r)
	assert.Equal(t, int32(255), g)
	assert.Equal(t, int32(255), b)

	assert.Equal(t, tcell.ColorDefault, Tint(tcell.ColorDefault, 0.5))
}

func TestColorsStyle(t *testing.T) {
	c := Colors{Foreground: tcell.ColorRed, Background: tcell.ColorBlue}
	fg, bg, _ := c.Style().Decompose()
	assert.Equal(t, tcell.ColorRed, fg)
	assert.Equal(t, tcell.ColorBlue, bg)
}
