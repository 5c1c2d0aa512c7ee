package engine

import (
	"strings"
	"testing"

	"github.com/dshills/annotext/internal/engine/style"
)

// ============================================================================
// Setup Helpers
// ============================================================================

func setupLargeDocument(b *testing.B, lines int, opts ...Option) *Document {
	b.Helper()
	var sb strings.Builder
	line := strings.Repeat("word ", 16)
	for i := 0; i < lines; i++ {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(line)
	}
	return New(append(opts, WithContent(sb.String()))...)
}

// ============================================================================
// Read Operation Benchmarks
// ============================================================================

func BenchmarkDocumentText(b *testing.B) {
	d := setupLargeDocument(b, 10000)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_ = d.Text()
	}
}

func BenchmarkDocumentTextGet(b *testing.B) {
	d := setupLargeDocument(b, 10000)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_ = d.TextGet(400000, 1000, 0)
	}
}

func BenchmarkGetLineFromCharIndex(b *testing.B) {
	d := setupLargeDocument(b, 10000)
	n := d.TextLength()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_ = d.GetLineFromCharIndex(i%n, 0)
	}
}

func BenchmarkGetCharAt(b *testing.B) {
	d := setupLargeDocument(b, 10000)
	n := d.TextLength()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_, _ = d.GetCharAt(i%n, 0)
	}
}

// ============================================================================
// Edit Benchmarks
// ============================================================================

func BenchmarkInsertChar(b *testing.B) {
	d := setupLargeDocument(b, 1000)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		d.Insert(40000, "x", 0)
	}
}

func BenchmarkInsertNewline(b *testing.B) {
	d := setupLargeDocument(b, 1000)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		d.Insert(40000, "\n", 0)
	}
}

func BenchmarkInsertRemove(b *testing.B) {
	d := setupLargeDocument(b, 1000)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		d.Insert(40000, "hello\nworld", 0)
		d.Remove(40000, 11, 0)
	}
}

func BenchmarkInsertWithStyles(b *testing.B) {
	styles := style.NewRegistry(
		style.NewURL(),
		style.NewHighlight(style.KeyHighlight, []string{"word"}, style.Colors{}),
	)
	d := setupLargeDocument(b, 1000, WithStyles(styles))
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		d.Insert(40000, "w", 0)
	}
}

func BenchmarkUndoRedo(b *testing.B) {
	d := setupLargeDocument(b, 1000)
	d.Insert(40000, "hello", 0)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		d.Undo()
		d.Redo()
	}
}
