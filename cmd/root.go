// Package cmd implements the dgexport command line.
package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/DGExport/config"
	"github.com/notargets/DGExport/meshio"
	"github.com/notargets/DGExport/vtk"
)

var rootCmd = &cobra.Command{
	Use:          "dgexport",
	Short:        "Export DG meshes and fields to ParaView",
	Long:         "dgexport converts mesh files to VTK unstructured grids, time series collections and partitioned pieces.",
	SilenceUsage: true,
}

// readMesh is swapped in tests
var readMesh = meshio.Read

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default .dgexport.yaml)")
	pf.BoolP("verbose", "v", false, "debug logging")
	pf.String("encoding", "ascii", "payload encoding: ascii or binary")
	pf.String("header", "uint32", "binary block header: uint32 or uint64")
	pf.String("index-type", "Int32", "connectivity and offsets type: Int32 or Int64")
	pf.Bool("inline", false, "write binary blocks inside each DataArray instead of AppendedData")
	pf.Bool("ranges", false, "write RangeMin/RangeMax on arrays")
	pf.Int("workers", 0, "concurrent writers (default GOMAXPROCS)")

	for key, flag := range map[string]string{
		"verbose":    "verbose",
		"encoding":   "encoding",
		"header":     "header",
		"index_type": "index-type",
		"inline":     "inline",
		"ranges":     "ranges",
		"workers":    "workers",
	} {
		_ = viper.BindPFlag(key, pf.Lookup(flag))
	}

	rootCmd.AddCommand(convertCmd, seriesCmd, inspectCmd)
}

func initConfig() {
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".dgexport")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix(config.EnvPrefix)
	viper.AutomaticEnv()

	// a missing config file leaves the defaults
	_ = viper.ReadInConfig()
}

// setup loads the configuration, sets the log level and returns the writer
// options every subcommand shares
func setup(cmd *cobra.Command) (config.Config, []vtk.Option, *logrus.Entry, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, nil, err
	}
	logrus.SetLevel(cfg.LogLevel())
	log := logrus.WithField("cmd", cmd.Name())
	opts, err := cfg.Options(log)
	if err != nil {
		return config.Config{}, nil, nil, err
	}
	return cfg, opts, log, nil
}
