package cmd

import (
	"bytes"
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grailbio/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"v.io/x/lib/cmdline"
)

const evidence = "factor\tstart\tend\tannotation\n" +
	"rbp1\t100\t120\ta\n" +
	"rbp1\t300\t320\tb\n" +
	"rbp2\t110\t130\tc\n" +
	"rbp2\t290\t310\td\n" +
	"rbp3\t900\t950\te\n"

func setup(t *testing.T) (dir string, cleanup func()) {
	dir, cleanup = testutil.TempDir(t, "", "")
	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, "clip.tsv"), []byte(evidence), 0644))
	cfg := "out-dir: " + dir + "\nparallelism: 2\n"
	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, "rnpbind.yaml"), []byte(cfg), 0644))
	return dir, cleanup
}

func run(t *testing.T, args ...string) (string, error) {
	var stdout, stderr bytes.Buffer
	env := &cmdline.Env{Stdout: &stdout, Stderr: &stderr}
	err := cmdline.ParseAndRun(newRoot(context.Background()), env, args)
	return stdout.String(), err
}

func TestSummary(t *testing.T) {
	dir, cleanup := setup(t)
	defer cleanup()
	out, err := run(t, "summary", "-tsv", filepath.Join(dir, "clip.tsv"))
	require.NoError(t, err)
	assert.Equal(t, "clip\t3 factors\t5 sites\n", out)
}

func TestNoSources(t *testing.T) {
	_, err := run(t, "summary")
	assert.Error(t, err)
}

func TestCorrelate(t *testing.T) {
	dir, cleanup := setup(t)
	defer cleanup()
	out, err := run(t, "correlate", "-rna", "XIST", "-heatmap",
		"-config", filepath.Join(dir, "rnpbind.yaml"),
		"-tsv", filepath.Join(dir, "clip.tsv"))
	require.NoError(t, err)
	assert.Equal(t, "", out, "no distinct pair is both below 1 and above 0.8")

	data, err := ioutil.ReadFile(filepath.Join(dir, "csv", "xist-clip-30.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, ",RBP1,RBP2,RBP3", lines[0])
	assert.Equal(t, "RBP1,1,1,0,", lines[1])
	assert.FileExists(t, filepath.Join(dir, "csv", "xist-clip-30.png"))
}

func TestNear(t *testing.T) {
	dir, cleanup := setup(t)
	defer cleanup()
	out, err := run(t, "near", "-tsv", filepath.Join(dir, "clip.tsv"), "chr1:131-140")
	require.NoError(t, err)
	assert.Equal(t, "clip\tRBP1\t100\t120\nclip\tRBP2\t110\t130\n", out)

	_, err = run(t, "near", "-tsv", filepath.Join(dir, "clip.tsv"))
	assert.Error(t, err)
}

func TestBED(t *testing.T) {
	dir, cleanup := setup(t)
	defer cleanup()
	path := filepath.Join(dir, "sites.bed")
	_, err := run(t, "bed", "-tsv", filepath.Join(dir, "clip.tsv"), "-out", path)
	require.NoError(t, err)
	data, err := ioutil.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 5, strings.Count(string(data), "\n"))
	assert.Contains(t, string(data), "chr1\t900\t950\tRBP3")
}

func TestWIG(t *testing.T) {
	dir, cleanup := setup(t)
	defer cleanup()
	out, err := run(t, "wig", "-header=false", "-tsv", filepath.Join(dir, "clip.tsv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 952)
	assert.Equal(t, "fixedStep chrom=chr1 start=1 step=1", lines[0])
	assert.Equal(t, "0", lines[100])
	assert.Equal(t, "1", lines[101])
	assert.Equal(t, "2", lines[111])
	assert.Equal(t, "1", lines[951])
}

func TestRepeatedBaseName(t *testing.T) {
	dir, cleanup := setup(t)
	defer cleanup()
	for _, sub := range []string{"a", "b"} {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, sub), 0755))
	}
	tsv := filepath.Join(dir, "a", "postar.tsv")
	require.NoError(t, ioutil.WriteFile(tsv, []byte("factor\tstart\tend\nRBPA\t0\t9\n"), 0644))
	bed := filepath.Join(dir, "b", "postar.bed")
	require.NoError(t, ioutil.WriteFile(bed, []byte("chr1\t100\t200\tRBPB\n"), 0644))

	out, err := run(t, "summary", "-tsv", tsv, "-bed", bed)
	require.NoError(t, err)
	assert.Equal(t, "postar\t1 factors\t1 sites\npostar-2\t1 factors\t1 sites\n", out)
}
