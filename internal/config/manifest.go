package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/mmbconv/internal/arity"
)

// Manifest is the top-level mmbconv.yaml: a term table and the jobs to convert.
type Manifest struct {
	// Terms declares term ids and their argument counts.
	Terms []arity.Term `yaml:"terms,omitempty"`

	// TermsFile names a separate YAML file with more term declarations,
	// relative to the manifest. Ids must not collide with Terms.
	TermsFile string `yaml:"terms_file,omitempty"`

	// Workers bounds concurrent conversions. Defaults to DefaultWorkers.
	Workers int `yaml:"workers,omitempty"`

	// StrictHeap reports heap slots consumed out of order as errors.
	StrictHeap bool `yaml:"strict_heap,omitempty"`

	// Jobs lists the unify streams to convert.
	Jobs []Job `yaml:"jobs"`

	// path is where the manifest was read from (for error messages and TermsFile)
	path string
}

// Job is one unify stream. Exactly one of Unify and Hex must be set.
type Job struct {
	// Name identifies the job in logs and in the output bundle.
	Name string `yaml:"name"`

	// InitVars is the heap size before the stream runs.
	InitVars uint32 `yaml:"init_vars"`

	// Unify is the stream in assembly form, e.g. "term 2; ref 0; ref 1".
	Unify string `yaml:"unify,omitempty"`

	// Hex is the binary stream, hex-encoded. Whitespace is ignored.
	Hex string `yaml:"hex,omitempty"`
}

// LoadManifest reads and parses a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	return ParseManifest(data, path)
}

// ParseManifest parses manifest content from bytes.
// The path argument is used for error messages and to resolve terms_file.
func ParseManifest(data []byte, path string) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	m.path = path
	if err := m.validate(); err != nil {
		return nil, err
	}
	m.setDefaults()
	return &m, nil
}

func (m *Manifest) validate() error {
	if len(m.Jobs) == 0 {
		return fmt.Errorf("%s: no jobs defined", m.path)
	}
	if m.Workers < 0 {
		return fmt.Errorf("%s: workers must not be negative, got %d", m.path, m.Workers)
	}

	seen := make(map[string]int)
	for i, job := range m.Jobs {
		if job.Name == "" {
			return fmt.Errorf("%s: jobs[%d]: name is required", m.path, i)
		}
		if prev, ok := seen[job.Name]; ok {
			return fmt.Errorf("%s: jobs[%d]: name %q already used by jobs[%d]", m.path, i, job.Name, prev)
		}
		seen[job.Name] = i

		if job.Unify != "" && job.Hex != "" {
			return fmt.Errorf("%s: jobs[%d] (%s): unify and hex are mutually exclusive", m.path, i, job.Name)
		}
		if job.Unify == "" && job.Hex == "" {
			return fmt.Errorf("%s: jobs[%d] (%s): either unify or hex is required", m.path, i, job.Name)
		}
	}
	return nil
}

func (m *Manifest) setDefaults() {
	if m.Workers == 0 {
		m.Workers = DefaultWorkers
	}
}

// Path returns the file the manifest was parsed from.
func (m *Manifest) Path() string {
	return m.path
}

// Arities builds the term table from Terms and TermsFile.
func (m *Manifest) Arities() (*arity.Table, error) {
	table, err := arity.NewTable(m.Terms...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", m.path, err)
	}
	if m.TermsFile == "" {
		return table, nil
	}

	termsPath := m.TermsFile
	if !filepath.IsAbs(termsPath) {
		termsPath = filepath.Join(filepath.Dir(m.path), termsPath)
	}
	extra, err := arity.Load(termsPath)
	if err != nil {
		return nil, err
	}
	for _, id := range extra.IDs() {
		n, _ := extra.Arity(id)
		if err := table.Add(arity.Term{ID: id, Name: extra.Name(id), Args: n}); err != nil {
			return nil, fmt.Errorf("%s: %w", termsPath, err)
		}
	}
	return table, nil
}
