package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/notargets/DGExport/series"
	"github.com/notargets/DGExport/watch"
)

var seriesCmd = &cobra.Command{
	Use:   "series <manifest.toml>",
	Short: "Write one .vtu per manifest step and a .pvd collection",
	Args:  cobra.ExactArgs(1),
	RunE:  runSeries,
}

func init() {
	seriesCmd.Flags().Bool("watch", false, "export again when the manifest or a step mesh changes")
}

func runSeries(cmd *cobra.Command, args []string) error {
	cfg, opts, log, err := setup(cmd)
	if err != nil {
		return err
	}
	log = log.WithField("manifest", args[0])
	watching, _ := cmd.Flags().GetBool("watch")

	export := func(ctx context.Context) ([]string, error) {
		m, err := series.LoadManifest(args[0])
		if err != nil {
			return nil, err
		}
		steps, err := m.Load(readMesh)
		if err != nil {
			return nil, err
		}
		e, err := m.Exporter(opts...)
		if err != nil {
			return nil, err
		}
		e.Log = log
		if m.Workers <= 0 {
			e.Workers = cfg.Workers
		}
		if _, err = e.Export(ctx, steps); err != nil {
			return nil, err
		}
		cmd.Printf("wrote %s (%d steps)\n", e.CollectionPath(), len(steps))
		return m.MeshPaths(), nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	meshes, err := export(ctx)
	if err != nil || !watching {
		return err
	}

	w, err := watch.New(cfg.Debounce, log, append(meshes, args[0])...)
	if err != nil {
		return err
	}
	go w.Run(ctx)
	log.Info("watching for changes")
	for range w.Changes {
		if _, err := export(ctx); err != nil {
			log.WithError(err).Error("export failed")
		}
	}
	return nil
}

