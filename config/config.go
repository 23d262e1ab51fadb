// Package config loads dgexport settings from .dgexport.yaml, DGEXPORT_*
// environment variables and command line flags through viper.
package config

import (
	"fmt"
	"runtime"
	"time"

	"github.com/notargets/DGExport/vtk"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// EnvPrefix maps DGEXPORT_ENCODING to the "encoding" key and so on
const EnvPrefix = "DGEXPORT"

// Config holds the writer settings shared by every subcommand
type Config struct {
	Encoding  string        `mapstructure:"encoding"`   // ascii | binary
	Header    string        `mapstructure:"header"`     // uint32 | uint64
	IndexType string        `mapstructure:"index_type"` // Int32 | Int64
	Inline    bool          `mapstructure:"inline"`
	Ranges    bool          `mapstructure:"ranges"`
	Workers   int           `mapstructure:"workers"`
	Debounce  time.Duration `mapstructure:"debounce"`
	Verbose   bool          `mapstructure:"verbose"`
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() (Config, error) {
	viper.SetDefault("encoding", "ascii")
	viper.SetDefault("header", "uint32")
	viper.SetDefault("index_type", "Int32")
	viper.SetDefault("inline", false)
	viper.SetDefault("ranges", false)
	viper.SetDefault("workers", runtime.GOMAXPROCS(0))
	viper.SetDefault("debounce", 250*time.Millisecond)
	viper.SetDefault("verbose", false)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return cfg, nil
}

// Options converts the settings into writer options. Unknown encodings,
// header widths or index types are reported here rather than at write time.
func (c Config) Options(log *logrus.Entry) ([]vtk.Option, error) {
	enc, err := vtk.ParseEncoding(c.Encoding)
	if err != nil {
		return nil, err
	}
	h, err := vtk.ParseHeaderType(c.Header)
	if err != nil {
		return nil, err
	}
	it, err := vtk.ParseDataType(c.IndexType)
	if err != nil {
		return nil, err
	}
	if it != vtk.Int32 && it != vtk.Int64 {
		return nil, fmt.Errorf("config: index_type %s is not Int32 or Int64", it)
	}
	opts := []vtk.Option{
		vtk.WithEncoding(enc),
		vtk.WithHeaderType(h),
		vtk.WithIndexType(it),
		vtk.WithLogger(log),
	}
	if c.Inline {
		opts = append(opts, vtk.WithInlineBinary())
	}
	if c.Ranges {
		opts = append(opts, vtk.WithRanges())
	}
	return opts, nil
}

// LogLevel is Debug when verbose, Info otherwise
func (c Config) LogLevel() logrus.Level {
	if c.Verbose {
		return logrus.DebugLevel
	}
	return logrus.InfoLevel
}
