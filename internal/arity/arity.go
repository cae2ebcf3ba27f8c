// Package arity resolves a term identifier to its declared argument count.
package arity

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Lookup returns the argument count of term id, or false if id is unknown.
// Implementations must be pure from the caller's point of view.
type Lookup interface {
	Arity(id uint32) (uint32, bool)
}

// Func adapts a plain function to Lookup
type Func func(id uint32) (uint32, bool)

func (f Func) Arity(id uint32) (uint32, bool) {
	return f(id)
}

// Term declares one term constructor.
type Term struct {
	ID   uint32 `yaml:"id"`
	Name string `yaml:"name,omitempty"`
	Args uint32 `yaml:"args"`
}

// Table is a Lookup backed by a map. The zero value is empty and ready to use.
type Table struct {
	terms map[uint32]Term
}

// NewTable builds a table from term declarations. Duplicate ids are rejected.
func NewTable(terms ...Term) (*Table, error) {
	t := &Table{terms: make(map[uint32]Term, len(terms))}
	for _, term := range terms {
		if err := t.Add(term); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Add declares a term. Redeclaring an id is an error.
func (t *Table) Add(term Term) error {
	if t.terms == nil {
		t.terms = make(map[uint32]Term)
	}
	if prev, ok := t.terms[term.ID]; ok {
		return fmt.Errorf("term %d already declared (as %q)", term.ID, prev.Name)
	}
	t.terms[term.ID] = term
	return nil
}

func (t *Table) Arity(id uint32) (uint32, bool) {
	term, ok := t.terms[id]
	return term.Args, ok
}

// Name returns the declared name of term id, or "" if it has none.
func (t *Table) Name(id uint32) string {
	return t.terms[id].Name
}

// IDs returns the declared term ids in increasing order.
func (t *Table) IDs() []uint32 {
	ids := make([]uint32, 0, len(t.terms))
	for id := range t.terms {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Len returns the number of declared terms
func (t *Table) Len() int {
	return len(t.terms)
}

type file struct {
	Terms []Term `yaml:"terms"`
}

// Load reads a YAML file with a top-level "terms" list.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading terms %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse parses term declarations from YAML.
// The path argument is used only for error messages.
func Parse(data []byte, path string) (*Table, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	t, err := NewTable(f.Terms...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}
