package spell

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dshills/annotext/internal/engine"
	"github.com/dshills/annotext/internal/engine/style"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDictionary(t *testing.T) {
	d := NewDictionary("Hello", "world", " ", "")
	assert.Equal(t, 2, d.Len())
	assert.True(t, d.Contains("hello"))
	assert.True(t, d.Contains("HELLO"))
	assert.True(t, d.Contains("World"))
	assert.False(t, d.Contains("word"))

	assert.True(t, d.Remove("WORLD"))
	assert.False(t, d.Remove("world"))
	assert.Equal(t, []string{"Hello"}, d.Words())

	// Folding handles more than ASCII.
	d.Add("Straße")
	assert.True(t, d.Contains("STRASSE"))
}

func TestDictionaryReadWrite(t *testing.T) {
	d := NewDictionary("stale")
	_, err := d.ReadFrom(strings.NewReader("# comment\nzeta\n\n  alpha  \nbeta\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta", "zeta"}, d.Words())

	var buf bytes.Buffer
	_, err = d.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, "alpha\nbeta\nzeta\n", buf.String())
}

func TestDictionaryFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user.dic")

	d := NewDictionary("one", "two")
	require.NoError(t, d.SaveFile(path))

	loaded := NewDictionary()
	require.NoError(t, loaded.LoadFile(path))
	assert.Equal(t, []string{"one", "two"}, loaded.Words())

	require.NoError(t, loaded.LoadFile(filepath.Join(t.TempDir(), "missing.dic")))
	assert.Zero(t, loaded.Len())
}

func TestChecker(t *testing.T) {
	base := NewDictionary("hello")
	c := NewChecker([]*Dictionary{base})

	assert.True(t, c.Correct("Hello"))
	assert.False(t, c.Correct("helo"))
	assert.True(t, c.Correct("abc123"), "words with digits are accepted")
	assert.Equal(t, 3, c.Cached())

	// Cached verdicts survive dictionary changes until purged.
	base.Add("helo")
	assert.False(t, c.Correct("helo"))
	c.Purge()
	assert.True(t, c.Correct("helo"))

	c.AddDictionary(NewDictionary("gopher"))
	assert.Equal(t, 0, c.Cached())
	assert.True(t, c.Correct("gopher"))
}

func TestCheckerAsStyle(t *testing.T) {
	c := NewChecker([]*Dictionary{NewDictionary("the", "quick", "fox")})
	styles := style.NewRegistry(style.NewSpellcheck(c))
	d := engine.New(engine.WithStyles(styles), engine.WithContent("the quikc fox"))

	anns := d.Annotations(engine.ByKey(style.KeySpellcheck))
	require.Len(t, anns, 1)
	assert.Equal(t, "quikc", anns[0].Payload())
}

func TestWatcherReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "user.dic")
	require.NoError(t, os.WriteFile(path, []byte("alpha\n"), 0o644))

	dict := NewDictionary()
	checker := NewChecker([]*Dictionary{dict})
	styles := style.NewRegistry(style.NewSpellcheck(checker))
	doc := engine.New(engine.WithStyles(styles), engine.WithContent("alpha betta"))
	require.Equal(t, 2, doc.CountAnnotations(engine.ByKey(style.KeySpellcheck)))

	var reloads atomic.Int32
	w, err := NewWatcher(path, dict, checker,
		WithDebounce(10*time.Millisecond),
		WithReloadHook(func() {
			reloads.Add(1)
			doc.RefreshAnnotations()
		}),
	)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Stop()

	assert.EqualValues(t, 1, reloads.Load())
	assert.True(t, dict.Contains("alpha"))

	assert.Equal(t, 1, doc.CountAnnotations(engine.ByKey(style.KeySpellcheck)))

	require.NoError(t, os.WriteFile(path, []byte("alpha\nbetta\n"), 0o644))

	require.Eventually(t, func() bool {
		return doc.CountAnnotations(engine.ByKey(style.KeySpellcheck)) == 0
	}, 5*time.Second, 10*time.Millisecond)
	assert.True(t, dict.Contains("betta"))

	// Other files in the directory are ignored.
	before := reloads.Load()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644))
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, before, reloads.Load())

	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
}
