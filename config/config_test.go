package config_test

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/grailbio/rnpbind/config"
	"github.com/grailbio/rnpbind/interval"
	"github.com/grailbio/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	a, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), a)
	mode, err := a.Mode()
	require.NoError(t, err)
	assert.Equal(t, interval.BaseCoverNumber, mode)
	assert.Equal(t, interval.PosType(30), a.Stringency())
}

func TestLoadFile(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	path := filepath.Join(dir, "rnpbind.yaml")
	require.NoError(t, ioutil.WriteFile(path, []byte(
		"base-stringency: 50\n"+
			"collapse-mode: minimumDepthNumber\n"+
			"collapse-threshold: 2\n"+
			"chrom: chr11\n"), 0600))
	a, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 50, a.BaseStringency)
	assert.Equal(t, "chr11", a.Chrom)
	assert.Equal(t, 0.8, a.DisplayThreshold)

	opts, err := a.IngestOpts()
	require.NoError(t, err)
	assert.Equal(t, interval.MinimumDepthNumber, opts.Mode)
	assert.Equal(t, 2.0, opts.Threshold)
	assert.Equal(t, ";;;;;", opts.RowDelimiter)
}

func TestLoadEnv(t *testing.T) {
	require.NoError(t, os.Setenv("RNPBIND_BASE_STRINGENCY", "12"))
	defer os.Unsetenv("RNPBIND_BASE_STRINGENCY")
	a, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, 12, a.BaseStringency)
}

func TestLoadInvalid(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, ioutil.WriteFile(path, []byte("collapse-mode: TopSitesRatio\n"), 0600))
	_, err := config.Load(path)
	assert.True(t, interval.IsUnsupportedMode(err))

	_, err = config.Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	a := config.Default()
	a.CoverageRatio = -1
	assert.Error(t, a.Validate())

	for _, bp := range []int{-1, interval.PosTypeMax} {
		a = config.Default()
		a.BaseStringency = bp
		assert.Error(t, a.Validate(), "base-stringency %d", bp)
	}
}
