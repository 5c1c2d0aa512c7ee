// Package spell provides the word lists behind the spell-check style.
//
// A Dictionary is a set of words compared case-insensitively. A Checker
// consults one or more dictionaries and caches its verdicts; it implements
// style.Checker. A Watcher reloads a dictionary file whenever it changes on
// disk.
package spell

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/cases"
)

// Dictionary is a case-insensitive word set. It is safe for concurrent use.
type Dictionary struct {
	mu    sync.RWMutex
	words map[string]string
}

// NewDictionary creates a dictionary holding words.
func NewDictionary(words ...string) *Dictionary {
	d := &Dictionary{words: make(map[string]string)}
	for _, w := range words {
		d.Add(w)
	}
	return d
}

// key case-folds a word. Casers keep state, so each call gets its own.
func (d *Dictionary) key(word string) string {
	return cases.Fold().String(word)
}

// Add inserts a word. Blank words are ignored.
func (d *Dictionary) Add(word string) {
	word = strings.TrimSpace(word)
	if word == "" {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.words[d.key(word)] = word
}

// Remove deletes a word and reports whether it was present.
func (d *Dictionary) Remove(word string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	k := d.key(word)
	if _, ok := d.words[k]; !ok {
		return false
	}
	delete(d.words, k)
	return true
}

// Contains reports whether word is in the dictionary, ignoring case.
func (d *Dictionary) Contains(word string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.words[d.key(word)]
	return ok
}

// Len returns the number of words.
func (d *Dictionary) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.words)
}

// Words returns the words as added, sorted.
func (d *Dictionary) Words() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]string, 0, len(d.words))
	for _, w := range d.words {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

// ReadFrom replaces the content with the words read from r, one per line.
// Blank lines and lines starting with '#' are skipped.
func (d *Dictionary) ReadFrom(r io.Reader) (int64, error) {
	words := make(map[string]string)
	var n int64

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		n += int64(len(line)) + 1
		w := strings.TrimSpace(line)
		if w == "" || strings.HasPrefix(w, "#") {
			continue
		}
		words[d.key(w)] = w
	}
	if err := sc.Err(); err != nil {
		return n, fmt.Errorf("reading dictionary: %w", err)
	}

	d.mu.Lock()
	d.words = words
	d.mu.Unlock()
	return n, nil
}

// WriteTo writes the words, sorted, one per line.
func (d *Dictionary) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var n int64
	for _, word := range d.Words() {
		c, err := bw.WriteString(word + "\n")
		n += int64(c)
		if err != nil {
			return n, err
		}
	}
	return n, bw.Flush()
}

// LoadFile replaces the content with the words of a file. A missing file
// empties the dictionary.
func (d *Dictionary) LoadFile(path string) error {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		d.mu.Lock()
		d.words = make(map[string]string)
		d.mu.Unlock()
		return nil
	}
	if err != nil {
		return fmt.Errorf("opening dictionary: %w", err)
	}
	defer f.Close()

	_, err = d.ReadFrom(f)
	return err
}

// SaveFile writes the dictionary to a file.
func (d *Dictionary) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating dictionary: %w", err)
	}
	if _, err := d.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("writing dictionary: %w", err)
	}
	return f.Close()
}
