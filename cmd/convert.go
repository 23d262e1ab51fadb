package cmd

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/notargets/DGExport/meshio"
	"github.com/notargets/DGExport/partitions"
	"github.com/notargets/DGExport/vtk"
	"github.com/notargets/DGExport/watch"
)

var convertCmd = &cobra.Command{
	Use:   "convert <mesh>",
	Short: "Convert a mesh file to a .vtu grid, or partitioned .pvtu pieces",
	Args:  cobra.ExactArgs(1),
	RunE:  runConvert,
}

func init() {
	f := convertCmd.Flags()
	f.StringP("output", "o", "", "output .vtu path (default <mesh>.vtu)")
	f.Bool("watch", false, "convert again whenever the mesh file changes")
	f.Int("partitions", 0, "write this many .vtu pieces plus a .pvtu index")
	f.String("strategy", "morton", "partition strategy: block, roundrobin, morton or metis")
}

// convertJob is one conversion, repeated on every change in watch mode
type convertJob struct {
	input, output string
	parts         int
	workers       int
	strategy      partitions.PartitionStrategy
	opts          []vtk.Option
	log           *logrus.Entry
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, opts, log, err := setup(cmd)
	if err != nil {
		return err
	}
	f := cmd.Flags()
	output, _ := f.GetString("output")
	watching, _ := f.GetBool("watch")
	parts, _ := f.GetInt("partitions")
	strategyName, _ := f.GetString("strategy")
	strategy, err := partitions.ParseStrategy(strategyName)
	if err != nil {
		return err
	}
	if output == "" {
		output = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".vtu"
	}
	job := convertJob{
		input:    args[0],
		output:   output,
		parts:    parts,
		workers:  cfg.Workers,
		strategy: strategy,
		opts:     opts,
		log:      log.WithField("mesh", args[0]),
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	if err = job.run(ctx); err != nil && !watching {
		return err
	}
	if !watching {
		return nil
	}
	if err != nil {
		job.log.WithError(err).Error("convert failed")
	}

	w, err := watch.New(cfg.Debounce, job.log, job.input)
	if err != nil {
		return err
	}
	go w.Run(ctx)
	job.log.Info("watching for changes")
	for range w.Changes {
		if err := job.run(ctx); err != nil {
			job.log.WithError(err).Error("convert failed")
		}
	}
	return nil
}

func (j convertJob) run(ctx context.Context) error {
	mesh, err := readMesh(j.input)
	if err != nil {
		return err
	}
	if j.parts > 1 {
		layout, err := (&partitions.PartitionBuilder{
			Mesh:          &mesh,
			NumPartitions: j.parts,
			Strategy:      j.strategy,
		}).BuildPartitions()
		if err != nil {
			return err
		}
		dir := filepath.Dir(j.output)
		base := strings.TrimSuffix(filepath.Base(j.output), filepath.Ext(j.output))
		pw := &partitions.ParallelWriter{
			Dir:     dir,
			Base:    base,
			Workers: j.workers,
			Options: j.opts,
			Log:     j.log,
		}
		if err = pw.Write(ctx, mesh, layout); err != nil {
			return err
		}
		j.log.WithFields(logrus.Fields{
			"output":     filepath.Join(dir, base+".pvtu"),
			"partitions": j.parts,
		}).Infof("converted %s", meshio.Summarize(mesh))
		return nil
	}
	if err = vtk.WriteMesh(j.output, mesh, j.opts...); err != nil {
		return err
	}
	j.log.WithField("output", j.output).Infof("converted %s", meshio.Summarize(mesh))
	return nil
}
