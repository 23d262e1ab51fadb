package partitions

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/notargets/DGExport/vtk"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// PieceName returns the file name of partition id of base
func PieceName(base string, id int) string { return fmt.Sprintf("%s_%d.vtu", base, id) }

// ParallelWriter writes partitioned meshes as Dir/<Base>_<p>.vtu pieces plus
// the Dir/<Base>.pvtu index
type ParallelWriter struct {
	Dir     string
	Base    string
	Workers int // <= 0 uses GOMAXPROCS
	Options []vtk.Option
	Log     *logrus.Entry
}

// Write splits mesh by layout, writes every piece on a bounded pool and then
// the index. The first failing piece cancels the pieces not yet started.
func (w *ParallelWriter) Write(ctx context.Context, mesh vtk.Mesh, layout *PartitionLayout) error {
	pieces, err := Split(mesh, layout)
	if err != nil {
		return err
	}
	workers := w.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	log := w.Log
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	opts := append([]vtk.Option{vtk.WithLogger(log)}, w.Options...)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	sources := make([]string, len(pieces))
	for i, pc := range pieces {
		sources[i] = PieceName(w.Base, pc.ID)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := vtk.WriteMesh(filepath.Join(w.Dir, sources[i]), pc.Mesh, opts...); err != nil {
				return fmt.Errorf("partition %d: %w", pc.ID, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	idx := vtk.ParallelIndex{
		PointData: vtk.SpecsOf(mesh.PointData),
		CellData:  vtk.SpecsOf(mesh.CellData),
		Sources:   sources,
	}
	if err := vtk.WriteParallelIndex(filepath.Join(w.Dir, w.Base+".pvtu"), idx, opts...); err != nil {
		return err
	}
	stats := layout.PartitionStatistics()
	log.WithFields(logrus.Fields{
		"dir":        w.Dir,
		"base":       w.Base,
		"workers":    workers,
		"partitions": stats.NumPartitions,
		"imbalance":  stats.Imbalance,
	}).Debug("wrote partitioned mesh")
	return nil
}
