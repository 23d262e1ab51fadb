package series

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/notargets/DGExport/vtk"
)

// ErrNoSteps is returned for a manifest without [[step]] tables
var ErrNoSteps = errors.New("series: manifest has no steps")

// Manifest describes a series on disk:
//
//	output   = "out/run.pvd"
//	encoding = "binary"
//
//	[[step]]
//	time = 0.0
//	mesh = "mesh_0.neu"
//	output = "run_t0.vtu"   # optional
//
// Relative output and mesh paths are resolved against the manifest's
// directory. A step output names a file in the collection's directory, the
// same name the .pvd references.
type Manifest struct {
	Output   string         `toml:"output"`
	Encoding string         `toml:"encoding"`
	Header   string         `toml:"header"`
	Workers  int            `toml:"workers"`
	Steps    []ManifestStep `toml:"step"`

	dir string
}

// ManifestStep is one [[step]] table
type ManifestStep struct {
	Time   float64 `toml:"time"`
	Mesh   string  `toml:"mesh"`
	Output string  `toml:"output"`
}

// LoadManifest reads and checks a manifest file
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	m, err := ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m.dir = filepath.Dir(path)
	return m, nil
}

// ParseManifest decodes manifest text; relative paths stay relative to the
// working directory.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	if m.Output == "" {
		return nil, fmt.Errorf("parsing manifest: missing output")
	}
	if !strings.HasSuffix(m.Output, ".pvd") {
		m.Output += ".pvd"
	}
	if len(m.Steps) == 0 {
		return nil, ErrNoSteps
	}
	for i, s := range m.Steps {
		if s.Mesh == "" {
			return nil, fmt.Errorf("parsing manifest: step %d has no mesh", i)
		}
	}
	m.dir = "."
	return &m, nil
}

func (m *Manifest) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.dir, p)
}

// Exporter builds an exporter writing next to the collection file. Manifest
// encoding and header settings are appended after opts and so win.
func (m *Manifest) Exporter(opts ...vtk.Option) (*Exporter, error) {
	out := m.resolve(m.Output)
	if m.Encoding != "" {
		enc, err := vtk.ParseEncoding(m.Encoding)
		if err != nil {
			return nil, err
		}
		opts = append(opts, vtk.WithEncoding(enc))
	}
	if m.Header != "" {
		h, err := vtk.ParseHeaderType(m.Header)
		if err != nil {
			return nil, err
		}
		opts = append(opts, vtk.WithHeaderType(h))
	}
	e, err := NewExporter(filepath.Dir(out), strings.TrimSuffix(filepath.Base(out), ".pvd"), opts...)
	if err != nil {
		return nil, err
	}
	e.Workers = m.Workers
	return e, nil
}

// Load reads every step's mesh with read. A mesh file named by several
// steps is read once and shared.
func (m *Manifest) Load(read func(path string) (vtk.Mesh, error)) ([]Step, error) {
	cache := make(map[string]vtk.Mesh)
	steps := make([]Step, len(m.Steps))
	for i, s := range m.Steps {
		p := m.resolve(s.Mesh)
		mesh, ok := cache[p]
		if !ok {
			var err error
			if mesh, err = read(p); err != nil {
				return nil, fmt.Errorf("step %d: %w", i, err)
			}
			cache[p] = mesh
		}
		steps[i] = Step{Time: s.Time, Mesh: mesh, File: s.Output}
	}
	return steps, nil
}

// MeshPaths returns the resolved mesh path of every step, duplicates removed
func (m *Manifest) MeshPaths() []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range m.Steps {
		p := m.resolve(s.Mesh)
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}
