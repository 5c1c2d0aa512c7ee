package template

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Ext is the file extension of single-template files.
const Ext = ".txt"

// Manifest is a set of named templates with the variables they expand with.
type Manifest struct {
	Templates []*Template
	Variables map[string]string
}

type manifestFile struct {
	Variables map[string]string `yaml:"variables"`
	Templates []struct {
		Name    string `yaml:"name"`
		Hotkey  string `yaml:"hotkey"`
		Content string `yaml:"content"`
	} `yaml:"templates"`
}

// ReadManifest decodes a YAML manifest:
//
//	variables:
//	  author: Jane
//	templates:
//	  - name: signature
//	    hotkey: Ctrl+Shift+S
//	    content: "-- [{author}], [{Date}]"
//
// A hotkey field overrides a $$hotkey$$ prefix in the content.
func ReadManifest(r io.Reader) (*Manifest, error) {
	var f manifestFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}

	m := &Manifest{Variables: f.Variables}
	seen := make(map[string]bool)
	for i, e := range f.Templates {
		if e.Name == "" {
			return nil, fmt.Errorf("manifest template %d: missing name", i)
		}
		if seen[e.Name] {
			return nil, fmt.Errorf("manifest template %q: duplicate name", e.Name)
		}
		seen[e.Name] = true

		t := New(e.Name, e.Content)
		if e.Hotkey != "" {
			t.Hotkey = e.Hotkey
		}
		m.Templates = append(m.Templates, t)
	}
	return m, nil
}

// LoadManifest reads a YAML manifest file.
func LoadManifest(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening manifest: %w", err)
	}
	defer f.Close()
	return ReadManifest(f)
}

// LoadDir reads every *.txt file of dir as a template named after the file.
// A missing directory yields no templates.
func LoadDir(dir string) ([]*Template, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading template dir: %w", err)
	}

	var out []*Template
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), Ext) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading template %s: %w", e.Name(), err)
		}
		name := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		out = append(out, New(name, string(data)))
	}
	return out, nil
}

// Get returns the template named name.
func (m *Manifest) Get(name string) (*Template, bool) {
	for _, t := range m.Templates {
		if t.Name == name {
			return t, true
		}
	}
	return nil, false
}

// Add appends templates whose names are not already present.
func (m *Manifest) Add(ts ...*Template) {
	for _, t := range ts {
		if _, ok := m.Get(t.Name); !ok {
			m.Templates = append(m.Templates, t)
		}
	}
}

// Names returns the template names, sorted.
func (m *Manifest) Names() []string {
	names := make([]string, 0, len(m.Templates))
	for _, t := range m.Templates {
		names = append(names, t.Name)
	}
	sort.Strings(names)
	return names
}

// Env returns an expansion environment carrying the manifest variables.
func (m *Manifest) Env(filePath string) Env {
	return Env{FilePath: filePath, Variables: m.Variables}
}
