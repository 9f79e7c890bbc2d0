// Package config holds the analysis settings shared by the rnpbind commands.
// Settings are read from an optional YAML, JSON or TOML file through viper;
// environment variables prefixed with RNPBIND_ override the file, e.g.
// RNPBIND_BASE_STRINGENCY=50.
package config

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/rnpbind/ingest"
	"github.com/grailbio/rnpbind/interval"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "RNPBIND"

// Analysis is the root-level settings struct.
type Analysis struct {
	// BaseStringency is the bp threshold beyond which two sites are
	// considered unrelated.
	BaseStringency int `mapstructure:"base-stringency"`
	// DisplayThreshold hides correlations at or below it.
	DisplayThreshold float64 `mapstructure:"display-threshold"`

	// CollapseMode names the interval.CollapseMode applied after loading.
	CollapseMode string `mapstructure:"collapse-mode"`
	// CoverageRatio is used by the BaseCoverNumber collapse mode.
	CoverageRatio float64 `mapstructure:"coverage-ratio"`
	// CollapseThreshold is used by the other collapse modes.
	CollapseThreshold float64 `mapstructure:"collapse-threshold"`

	RowDelimiter    string `mapstructure:"row-delimiter"`
	ColumnDelimiter string `mapstructure:"column-delimiter"`

	// Chrom and Displacement place the analysed sequence on the genome in
	// exported tracks.
	Chrom        string `mapstructure:"chrom"`
	Displacement int    `mapstructure:"displacement"`

	// OutDir is the root directory of generated files.
	OutDir string `mapstructure:"out-dir"`
	// Bgzip compresses exported tracks.
	Bgzip bool `mapstructure:"bgzip"`
	// Parallelism bounds the goroutines used by correlation and compression.
	Parallelism int `mapstructure:"parallelism"`
}

// Default returns the settings used when nothing is configured.
func Default() Analysis {
	return Analysis{
		BaseStringency:   30,
		DisplayThreshold: 0.8,
		CollapseMode:     interval.BaseCoverNumber.String(),
		CoverageRatio:    1,
		RowDelimiter:     ingest.DefaultRowDelimiter,
		ColumnDelimiter:  ingest.DefaultColumnDelimiter,
		Chrom:            "1",
		OutDir:           ".",
		Parallelism:      runtime.NumCPU(),
	}
}

// defaults mirrors Default in viper keys.
func defaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("base-stringency", d.BaseStringency)
	v.SetDefault("display-threshold", d.DisplayThreshold)
	v.SetDefault("collapse-mode", d.CollapseMode)
	v.SetDefault("coverage-ratio", d.CoverageRatio)
	v.SetDefault("collapse-threshold", d.CollapseThreshold)
	v.SetDefault("row-delimiter", d.RowDelimiter)
	v.SetDefault("column-delimiter", d.ColumnDelimiter)
	v.SetDefault("chrom", d.Chrom)
	v.SetDefault("displacement", d.Displacement)
	v.SetDefault("out-dir", d.OutDir)
	v.SetDefault("bgzip", d.Bgzip)
	v.SetDefault("parallelism", d.Parallelism)
}

// Load reads the settings from path, or only from the defaults and the
// environment if path is empty.
func Load(path string) (Analysis, error) {
	v := viper.New()
	defaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Analysis{}, errors.E(errors.Invalid, err, fmt.Sprintf("config.Load %s", path))
		}
	}
	var a Analysis
	if err := v.Unmarshal(&a); err != nil {
		return Analysis{}, errors.E(errors.Invalid, err, fmt.Sprintf("config.Load %s", path))
	}
	if err := a.Validate(); err != nil {
		return Analysis{}, err
	}
	return a, nil
}

// Validate checks that the settings are usable.
func (a Analysis) Validate() error {
	if a.BaseStringency < 0 || a.BaseStringency >= interval.PosTypeMax {
		return errors.E(errors.Invalid, fmt.Sprintf("config: base-stringency %d out of range [0, %d)", a.BaseStringency, interval.PosTypeMax))
	}
	if a.CoverageRatio < 0 {
		return errors.E(errors.Invalid, fmt.Sprintf("config: negative coverage-ratio %v", a.CoverageRatio))
	}
	if a.RowDelimiter == "" || a.ColumnDelimiter == "" {
		return errors.E(errors.Invalid, "config: empty annotation delimiter")
	}
	_, err := a.Mode()
	return err
}

// Mode returns the parsed collapse mode.
func (a Analysis) Mode() (interval.CollapseMode, error) {
	return interval.ParseCollapseMode(a.CollapseMode)
}

// Stringency returns BaseStringency as a coordinate distance.
func (a Analysis) Stringency() interval.PosType {
	return interval.PosType(a.BaseStringency)
}

// IngestOpts returns the ingest.Load options matching the settings.
func (a Analysis) IngestOpts() (ingest.Opts, error) {
	mode, err := a.Mode()
	if err != nil {
		return ingest.Opts{}, err
	}
	return ingest.Opts{
		Mode:            mode,
		CoverageRatio:   a.CoverageRatio,
		Threshold:       a.CollapseThreshold,
		ColumnDelimiter: a.ColumnDelimiter,
		RowDelimiter:    a.RowDelimiter,
		Parallelism:     a.Parallelism,
	}, nil
}
