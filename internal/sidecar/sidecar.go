// Package sidecar persists Pinned annotations next to the document they
// belong to.
//
// The sidecar of "notes/todo.txt" is "notes/todo.anchors". It holds one
// UTF-8 line per Pinned annotation:
//
//	styleKey|globalIndex|length|payload
//
// The file exists only while the document has Pinned annotations. Loading
// skips malformed lines and reports them instead of failing.
package sidecar

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dshills/annotext/internal/engine/lines"
	"github.com/dshills/annotext/internal/engine/segment"
	"github.com/dshills/annotext/internal/engine/style"
	"github.com/dshills/annotext/internal/logging"
	"go.uber.org/zap"
)

// Ext is the sidecar file extension.
const Ext = ".anchors"

const fieldSep = "|"

// Errors describing rejected records.
var (
	// ErrMalformedRecord indicates a line without four fields or with a non-integer position.
	ErrMalformedRecord = errors.New("malformed anchor record")

	// ErrUnknownStyle indicates a record naming a style that is not registered.
	ErrUnknownStyle = errors.New("unknown style")

	// ErrOutOfRange indicates a record that does not fit the document text.
	ErrOutOfRange = errors.New("anchor out of range")

	// ErrNotPinned indicates a record naming a style whose annotations are not Pinned.
	ErrNotPinned = errors.New("style is not pinned")

	// ErrRecordTooLong indicates a line longer than MaxRecordLength.
	ErrRecordTooLong = errors.New("anchor record too long")
)

// MaxRecordLength is the longest sidecar line, in bytes, Decode accepts.
var MaxRecordLength = 16 << 20

// RecordError reports a skipped sidecar line.
type RecordError struct {
	Line int
	Text string
	Err  error
}

// Error implements the error interface.
func (e *RecordError) Error() string {
	return fmt.Sprintf("anchors line %d: %v", e.Line, e.Err)
}

// Unwrap returns the underlying error.
func (e *RecordError) Unwrap() error {
	return e.Err
}

// Record is one persisted annotation.
type Record struct {
	StyleKey string
	Index    int
	Length   int
	Payload  string

	// Line is the sidecar line the record was read from, zero otherwise.
	Line int
}

// Document is the part of a document the sidecar reads and writes.
type Document interface {
	Annotations(filter segment.Filter) []*lines.Annotation
	AnnotationIndex(a *lines.Annotation) (int, bool)
	AddAnnotation(a *lines.Annotation, index int) (bool, error)
}

// Path returns the sidecar path for a document path.
func Path(docPath string) string {
	dir, base := filepath.Split(docPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, base+Ext)
}

// Collect returns the records of every Pinned annotation in doc.
func Collect(doc Document) []Record {
	var out []Record
	for _, a := range doc.Annotations(segment.ByKind(style.Pinned)) {
		index, ok := doc.AnnotationIndex(a)
		if !ok {
			continue
		}
		payload := ""
		if p := a.Payload(); p != nil {
			payload = fmt.Sprint(p)
		}
		out = append(out, Record{
			StyleKey: a.Key(),
			Index:    index,
			Length:   a.Len(),
			Payload:  payload,
		})
	}
	return out
}

// Save writes the sidecar of the document stored at docPath. When doc has
// no Pinned annotation an existing sidecar is removed. It returns the
// number of records written.
func Save(docPath string, doc Document) (int, error) {
	path := Path(docPath)
	recs := Collect(doc)

	if len(recs) == 0 {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return 0, fmt.Errorf("remove sidecar: %w", err)
		}
		return 0, nil
	}

	var b strings.Builder
	if err := Encode(&b, recs); err != nil {
		return 0, err
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return 0, fmt.Errorf("write sidecar: %w", err)
	}
	return len(recs), nil
}

// Load reads the sidecar of the document stored at docPath and attaches
// its annotations to doc using the styles of registry. A missing sidecar
// is not an error. Skipped lines are returned as RecordErrors.
func Load(ctx context.Context, docPath string, doc Document, registry *style.Registry) (int, []*RecordError, error) {
	f, err := os.Open(Path(docPath))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil, nil
		}
		return 0, nil, fmt.Errorf("open sidecar: %w", err)
	}
	defer f.Close()

	recs, skipped, err := Decode(f)
	if err != nil {
		return 0, skipped, err
	}

	log := logging.L(ctx)
	loaded := 0
	for _, rec := range recs {
		if rerr := apply(doc, registry, rec); rerr != nil {
			skipped = append(skipped, &RecordError{Line: rec.Line, Text: rec.StyleKey, Err: rerr})
			continue
		}
		loaded++
	}
	for _, s := range skipped {
		log.Debug("skipping anchor record", zap.Int("line", s.Line), zap.Error(s.Err))
	}
	return loaded, skipped, nil
}

func apply(doc Document, registry *style.Registry, rec Record) error {
	st, ok := registry.Get(rec.StyleKey)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownStyle, rec.StyleKey)
	}
	if st.Kind() != style.Pinned {
		return fmt.Errorf("%w: %s is %s", ErrNotPinned, rec.StyleKey, st.Kind())
	}
	a := lines.NewAnnotation(st, rec.Length, rec.Payload)
	added, err := doc.AddAnnotation(a, rec.Index)
	if err != nil {
		return err
	}
	if !added {
		return fmt.Errorf("%w: %d+%d", ErrOutOfRange, rec.Index, rec.Length)
	}
	return nil
}

// Encode writes records in sidecar format.
func Encode(w io.Writer, recs []Record) error {
	bw := bufio.NewWriter(w)
	for _, r := range recs {
		fmt.Fprintf(bw, "%s|%d|%d|%s\n", r.StyleKey, r.Index, r.Length, escape(r.Payload))
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write records: %w", err)
	}
	return nil
}

// Decode parses sidecar lines. Malformed lines and lines longer than
// MaxRecordLength are skipped and reported; the error is only set when r
// fails.
func Decode(r io.Reader) ([]Record, []*RecordError, error) {
	var (
		out     []Record
		skipped []*RecordError
	)
	br := bufio.NewReader(r)
	n := 0
	for {
		line, rerr := br.ReadString('\n')
		if line != "" {
			n++
			text := strings.TrimRight(line, "\r\n")
			switch {
			case text == "":
			case len(text) > MaxRecordLength:
				key, _, _ := strings.Cut(text, fieldSep)
				skipped = append(skipped, &RecordError{
					Line: n,
					Text: key,
					Err:  fmt.Errorf("%w: %d bytes", ErrRecordTooLong, len(text)),
				})
			default:
				rec, err := parseRecord(text)
				if err != nil {
					skipped = append(skipped, &RecordError{Line: n, Text: text, Err: err})
					break
				}
				rec.Line = n
				out = append(out, rec)
			}
		}
		if errors.Is(rerr, io.EOF) {
			break
		}
		if rerr != nil {
			return out, skipped, fmt.Errorf("read sidecar: %w", rerr)
		}
	}
	return out, skipped, nil
}

func parseRecord(text string) (Record, error) {
	fields := strings.SplitN(text, fieldSep, 4)
	if len(fields) != 4 || fields[0] == "" {
		return Record{}, fmt.Errorf("%w: want 4 fields, got %d", ErrMalformedRecord, len(fields))
	}
	index, err := strconv.Atoi(fields[1])
	if err != nil || index < 0 {
		return Record{}, fmt.Errorf("%w: index %q", ErrMalformedRecord, fields[1])
	}
	length, err := strconv.Atoi(fields[2])
	if err != nil || length < 0 {
		return Record{}, fmt.Errorf("%w: length %q", ErrMalformedRecord, fields[2])
	}
	return Record{
		StyleKey: fields[0],
		Index:    index,
		Length:   length,
		Payload:  unescape(fields[3]),
	}, nil
}

var (
	escaper   = strings.NewReplacer(`\`, `\\`, "\n", `\n`, "\r", `\r`)
	unescaper = strings.NewReplacer(`\\`, `\`, `\n`, "\n", `\r`, "\r")
)

func escape(s string) string { return escaper.Replace(s) }

func unescape(s string) string { return unescaper.Replace(s) }
