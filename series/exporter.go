// Package series writes a time series of meshes: one .vtu per step and a
// .pvd collection referencing them in step order.
package series

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/notargets/DGExport/vtk"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Step is one time level to export
type Step struct {
	Time float64
	Mesh vtk.Mesh
	File string // optional; defaults to <Prefix>_<index>.vtu
}

// Exporter writes steps into Dir and the collection to Dir/<Prefix>.pvd
type Exporter struct {
	Dir     string
	Prefix  string
	Workers int // <= 0 uses GOMAXPROCS
	Options []vtk.Option
	Log     *logrus.Entry
}

// NewExporter creates an exporter writing into dir, creating it if needed
func NewExporter(dir, prefix string, opts ...vtk.Option) (*Exporter, error) {
	if prefix == "" {
		return nil, fmt.Errorf("series: empty prefix")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %w", vtk.ErrIO, err)
	}
	return &Exporter{
		Dir:     dir,
		Prefix:  prefix,
		Options: opts,
		Log:     logrus.WithField("series", prefix),
	}, nil
}

// FileName returns the default file name of step i
func (e *Exporter) FileName(i int) string { return fmt.Sprintf("%s_%04d.vtu", e.Prefix, i) }

// CollectionPath returns the path of the .pvd file
func (e *Exporter) CollectionPath() string { return filepath.Join(e.Dir, e.Prefix+".pvd") }

// Export writes every step on a bounded pool, then the collection. Entries
// follow the order of steps whatever order the writes finish in. The first
// error cancels the steps not yet started and no collection is written.
func (e *Exporter) Export(ctx context.Context, steps []Step) ([]vtk.SeriesEntry, error) {
	workers := e.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	log := e.Log
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	opts := append([]vtk.Option{vtk.WithLogger(log)}, e.Options...)

	entries := make([]vtk.SeriesEntry, len(steps))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, s := range steps {
		name := s.File
		if name == "" {
			name = e.FileName(i)
		}
		entries[i] = vtk.SeriesEntry{Time: s.Time, File: name}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := vtk.WriteMesh(filepath.Join(e.Dir, name), s.Mesh, opts...); err != nil {
				return fmt.Errorf("step %d (t=%g): %w", i, s.Time, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := vtk.WriteSeries(e.CollectionPath(), entries, vtk.WithLogger(log)); err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{"steps": len(steps), "workers": workers}).Info("exported series")
	return entries, nil
}
