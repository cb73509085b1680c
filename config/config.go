// Package config loads the broker/solver/dispatcher tunables this
// module's example programs and operators use to tune a deployment
// without recompiling. The library's Go API itself never requires this
// package: every constructor accepts an explicit struct or functional
// options, so importing config is opt-in.
package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/spf13/viper"

	"github.com/svetzal/mojentic-go/pkg/mjerrors"
)

// LogConfig controls the ambient zap logger (see internal/obslog).
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// Tunables is the full set of values this module's example programs
// load from YAML/env instead of hardcoding.
type Tunables struct {
	DefaultModel string `mapstructure:"default_model"`

	MaxIterations int `mapstructure:"max_iterations"`
	MaxContext    int `mapstructure:"max_context"`

	DispatcherBatchSize    int           `mapstructure:"dispatcher_batch_size"`
	DispatcherPollInterval time.Duration `mapstructure:"dispatcher_poll_interval"`

	SolverTimeout time.Duration `mapstructure:"solver_timeout"`

	Log LogConfig `mapstructure:"log"`
}

// Default returns the tunables this module uses when no config file or
// environment override is present, matching the defaults named
// throughout §4 of the spec (batch size 5, poll interval 100ms, max
// context 32768, solver timeout 300s).
func Default() Tunables {
	return Tunables{
		DefaultModel:           "gpt-4o-mini",
		MaxIterations:          10,
		MaxContext:             32768,
		DispatcherBatchSize:    5,
		DispatcherPollInterval: 100 * time.Millisecond,
		SolverTimeout:          300 * time.Second,
		Log: LogConfig{
			Level:      "info",
			Format:     "json",
			OutputPath: "stdout",
		},
	}
}

// Loader reads Tunables from a YAML file with environment-variable
// overrides (prefix MOJENTIC_, e.g. MOJENTIC_MAX_ITERATIONS=20),
// following the teacher's viper-based loader shape.
type Loader struct {
	v *viper.Viper
}

// NewLoader constructs a Loader targeting path. path may not exist yet;
// Load then returns Default() unless the file is present and valid.
func NewLoader(path string) *Loader {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("MOJENTIC")
	v.AutomaticEnv()
	applyDefaults(v)
	return &Loader{v: v}
}

func applyDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("default_model", d.DefaultModel)
	v.SetDefault("max_iterations", d.MaxIterations)
	v.SetDefault("max_context", d.MaxContext)
	v.SetDefault("dispatcher_batch_size", d.DispatcherBatchSize)
	v.SetDefault("dispatcher_poll_interval", d.DispatcherPollInterval)
	v.SetDefault("solver_timeout", d.SolverTimeout)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.output_path", d.Log.OutputPath)
}

// Load reads the config file (if present) merged over the defaults and
// environment overrides, decoding into Tunables. A missing file is not
// an error; a malformed one is.
func (l *Loader) Load() (Tunables, error) {
	if err := l.v.ReadInConfig(); err != nil {
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !notFound && !errors.Is(err, fs.ErrNotExist) {
			return Tunables{}, mjerrors.NewConfigError("reading config file: " + err.Error())
		}
	}
	var t Tunables
	if err := l.v.Unmarshal(&t); err != nil {
		return Tunables{}, mjerrors.NewConfigError("decoding config: " + err.Error())
	}
	return t, nil
}
