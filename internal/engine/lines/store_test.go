package lines

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/annotext/internal/engine/style"
)

func load(t *testing.T, text string) *Store {
	t.Helper()
	s := New()
	for _, l := range strings.Split(text, "\n") {
		s.Append(l, 0)
	}
	require.NoError(t, s.Validate())
	return s
}

func TestNewStoreHasOneEmptyLine(t *testing.T) {
	s := New()
	assert.Equal(t, 1, s.Count())
	assert.Equal(t, 0, s.TextLength())
	assert.Equal(t, "", s.Text(0))
	assert.NoError(t, s.Validate())
}

func TestAppend(t *testing.T) {
	s := load(t, "\nfoo")
	assert.Equal(t, 2, s.Count())
	assert.Equal(t, "\nfoo", s.Text(0))
	assert.Equal(t, 1, s.FirstCharIndex(1))
	assert.Equal(t, 4, s.TextLength())

	s.Reset()
	s.Append("bar", 0)
	assert.Equal(t, 1, s.Count())
	assert.Equal(t, "bar", s.Text(0))
}

func TestLineFromCharIndex(t *testing.T) {
	s := load(t, "hello\n\nabc")
	require.Equal(t, []int{0, 6, 7}, []int{s.FirstCharIndex(0), s.FirstCharIndex(1), s.FirstCharIndex(2)})

	tests := []struct {
		index int
		want  int
	}{
		{0, 0},
		{3, 0},
		{5, 0},
		{6, 1},
		{7, 2},
		{10, 2},
		{100, 2},
		{-1, -1},
		{-7, -1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, s.LineFromCharIndex(tt.index, 0), "index %d", tt.index)
	}
}

func TestCharAt(t *testing.T) {
	s := load(t, "ab\n\ncd")

	tests := []struct {
		index int
		want  rune
		ok    bool
	}{
		{0, 'a', true},
		{2, '\n', true},
		{3, 0, true},
		{4, 'c', true},
		{6, '\n', true},
		{-1, 0, false},
	}
	for _, tt := range tests {
		r, ok := s.CharAt(tt.index, 0)
		assert.Equal(t, tt.ok, ok, "index %d", tt.index)
		assert.Equal(t, tt.want, r, "index %d", tt.index)
	}
}

func TestStreamAndTextGet(t *testing.T) {
	s := load(t, "one\ntwo\nthree")

	var fwd []rune
	for r := range s.Stream(2, true, 0) {
		fwd = append(fwd, r)
	}
	assert.Equal(t, "e\ntwo\nthree", string(fwd))

	var back []rune
	for r := range s.Stream(5, false, 0) {
		back = append(back, r)
	}
	assert.Equal(t, "wt\neno", string(back))

	assert.Equal(t, "e\ntw", s.TextGet(2, 4, -1))
	assert.Equal(t, "three", s.TextGet(8, 100, 0))
	assert.Equal(t, "", s.TextGet(0, 0, 0))
}

func TestInsertSplitAndMerge(t *testing.T) {
	s := load(t, "hello")

	require.True(t, s.Insert(3, "\n", 0, nil))
	require.Equal(t, 2, s.Count())
	assert.Equal(t, "hel", s.At(0).Text(0))
	assert.Equal(t, "lo", s.At(1).Text(0))
	assert.Equal(t, 4, s.At(1).Start())
	require.NoError(t, s.Validate())

	removed, ok := s.Remove(3, 1, 0, nil)
	require.True(t, ok)
	assert.Equal(t, "\n", removed)
	require.Equal(t, 1, s.Count())
	assert.Equal(t, "hello", s.Text(0))
	require.NoError(t, s.Validate())
}

func TestInsertMultiline(t *testing.T) {
	s := load(t, "ab\nxy")
	require.True(t, s.Insert(1, "1\n2\n3", 0, nil))
	assert.Equal(t, "a1\n2\n3b\nxy", s.Text(0))
	assert.Equal(t, 4, s.Count())
	require.NoError(t, s.Validate())
}

func TestInsertRefused(t *testing.T) {
	s := load(t, "abc")
	assert.False(t, s.Insert(4, "x", 0, nil))
	assert.False(t, s.Insert(-1, "x", 0, nil))
	assert.False(t, s.Insert(0, "", 0, nil))
	assert.Equal(t, "abc", s.Text(0))
}

func TestRemoveRefused(t *testing.T) {
	s := load(t, "abc\nde")

	_, ok := s.Remove(5, 3, 0, nil)
	assert.False(t, ok)
	_, ok = s.Remove(-1, 1, 0, nil)
	assert.False(t, ok)
	_, ok = s.Remove(0, 0, 0, nil)
	assert.False(t, ok)
	assert.Panics(t, func() { s.Remove(0, -1, 0, nil) })

	assert.Equal(t, "abc\nde", s.Text(0))
	require.NoError(t, s.Validate())
}

func TestRemoveAcrossLines(t *testing.T) {
	s := load(t, "one\ntwo\nthree\nfour")
	removed, ok := s.Remove(2, 9, 0, nil)
	require.True(t, ok)
	assert.Equal(t, "e\ntwo\nthr", removed)
	assert.Equal(t, "onee\nfour", s.Text(0))
	assert.Equal(t, 2, s.Count())
	require.NoError(t, s.Validate())
}

func TestAnnotationSurvival(t *testing.T) {
	note := style.NewNote()
	url := style.NewURL()

	t.Run("insert after end shifts nothing", func(t *testing.T) {
		s := load(t, "abc def ghi")
		a := NewAnnotation(url, 3, nil)
		require.True(t, s.Attach(a, s.At(0).Handle(), 4))

		require.True(t, s.Insert(8, "xx", 0, nil))
		assert.Equal(t, 4, a.RelIndex())
		assert.Equal(t, 3, a.Len())
	})

	t.Run("insert before start shifts", func(t *testing.T) {
		s := load(t, "abc def ghi")
		a := NewAnnotation(url, 3, nil)
		s.Attach(a, s.At(0).Handle(), 4)

		require.True(t, s.Insert(1, "xyz", 0, nil))
		assert.Equal(t, 7, a.RelIndex())
		assert.Equal(t, 3, a.Len())
	})

	t.Run("insert inside grows", func(t *testing.T) {
		s := load(t, "abc def ghi")
		a := NewAnnotation(url, 3, nil)
		s.Attach(a, s.At(0).Handle(), 4)

		require.True(t, s.Insert(5, "ee", 0, nil))
		assert.Equal(t, 4, a.RelIndex())
		assert.Equal(t, 5, a.Len())
	})

	t.Run("remove deletes automatic", func(t *testing.T) {
		s := load(t, "abc def ghi")
		a := NewAnnotation(url, 3, nil)
		s.Attach(a, s.At(0).Handle(), 4)

		_, ok := s.Remove(3, 5, 0, nil)
		require.True(t, ok)
		assert.False(t, a.Attached())
		assert.Empty(t, s.At(0).Annotations())
	})

	t.Run("remove keeps pinned clamped", func(t *testing.T) {
		s := load(t, "abc def ghi")
		a := NewAnnotation(note, 3, "n")
		s.Attach(a, s.At(0).Handle(), 4)

		_, ok := s.Remove(3, 5, 0, nil)
		require.True(t, ok)
		require.True(t, a.Attached())
		assert.Equal(t, 3, a.RelIndex())
		assert.Equal(t, 0, a.Len())
		require.NoError(t, s.Validate())
	})

	t.Run("remove overlapping start clamps", func(t *testing.T) {
		s := load(t, "abc def ghi")
		a := NewAnnotation(url, 3, nil)
		s.Attach(a, s.At(0).Handle(), 4)

		_, ok := s.Remove(2, 3, 0, nil)
		require.True(t, ok)
		assert.Equal(t, 2, a.RelIndex())
		assert.Equal(t, 2, a.Len())
	})

	t.Run("split moves and merge returns", func(t *testing.T) {
		s := load(t, "abc def")
		a := NewAnnotation(note, 3, nil)
		s.Attach(a, s.At(0).Handle(), 4)
		first := s.At(0).Handle()

		require.True(t, s.Insert(3, "\n", 0, nil))
		second := s.At(1).Handle()
		assert.Equal(t, second, a.Line())
		assert.Equal(t, 1, a.RelIndex())
		gi, ok := s.GlobalIndex(a)
		require.True(t, ok)
		assert.Equal(t, 5, gi)

		_, ok = s.Remove(3, 1, 0, nil)
		require.True(t, ok)
		assert.Equal(t, first, a.Line())
		assert.Equal(t, 4, a.RelIndex())
		_, ok = s.Get(second)
		assert.False(t, ok)
		require.NoError(t, s.Validate())
	})
}

func TestAuxiliaryColumn(t *testing.T) {
	s := load(t, "abc\ndef")
	s.InitializeColumn(1)
	assert.Equal(t, 2, s.Columns())
	require.True(t, s.SetColumnText(1, 1, "DEF"))

	assert.True(t, s.Insert(5, "x", 1, nil))
	assert.Equal(t, "DxEF", s.At(1).Text(1))
	assert.Equal(t, 4, s.At(1).Start())

	assert.False(t, s.Insert(4, "a\nb", 1, nil))
	_, ok := s.Remove(4, 10, 1, nil)
	assert.False(t, ok)

	removed, ok := s.Remove(5, 2, 1, nil)
	require.True(t, ok)
	assert.Equal(t, "xE", removed)
	assert.Equal(t, "abc\ndef", s.Text(0))
	require.NoError(t, s.Validate())

	require.True(t, s.Insert(1, "\n", 0, nil))
	assert.Equal(t, "", s.At(1).Text(1))
	_, ok = s.Remove(1, 1, 0, nil)
	require.True(t, ok)
	assert.Equal(t, 2, s.Count())
}

type recorder struct {
	events []string
}

func (r *recorder) Altered(*Line, int) { r.events = append(r.events, "altered") }

func (r *recorder) Added(*Line) { r.events = append(r.events, "added") }

func (r *recorder) Removed(*Line, int) { r.events = append(r.events, "removed") }

func (r *recorder) CharInserted(_ *Line, _ int, c rune) {
	r.events = append(r.events, "char:"+string(c))
}

func (r *recorder) CharsRemoved(*Line, int, int) { r.events = append(r.events, "erased") }

func TestHooks(t *testing.T) {
	s := load(t, "ab")
	r := &recorder{}

	require.True(t, s.Insert(1, "x\ny", 0, r))
	assert.Equal(t, []string{"char:x", "altered", "added", "char:\n", "char:y", "altered"}, r.events)

	r.events = nil
	_, ok := s.Remove(2, 1, 0, r)
	require.True(t, ok)
	assert.Equal(t, []string{"removed", "altered", "erased"}, r.events)
}
