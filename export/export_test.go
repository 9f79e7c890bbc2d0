package export_test

import (
	"bytes"
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/grailbio/rnpbind/export"
	"github.com/grailbio/rnpbind/factor"
	"github.com/grailbio/rnpbind/interval"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/expect"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T, sets map[string][]interval.Interval) *factor.Store {
	s := factor.New()
	for name, ivs := range sets {
		m, err := interval.NewMergedSet(nil, ivs...)
		require.NoError(t, err)
		s.Set(name, m)
	}
	return s
}

func TestWriteBED(t *testing.T) {
	s := newStore(t, map[string][]interval.Interval{
		"rbp1": {interval.Must(100, 200), interval.Must(300, 400)},
		"rbp2": {interval.Must(300, 400, "x")},
	})
	var buf bytes.Buffer
	require.NoError(t, export.WriteBED(&buf, s, export.BEDOpts{Chrom: "1", Displacement: 1000, Header: true}))
	expect.EQ(t, buf.String(),
		`track name="RBP1-RBP2" description="A list of binding sites of various RBPs, including RBP1,RBP2"`+"\n"+
			"chr1\t1100\t1200\tRBP1\n"+
			"chr1\t1300\t1400\tRBP1\n"+
			"chr1\t1300\t1400\tRBP2\n")

	buf.Reset()
	sub, err := s.Subset("rbp2")
	require.NoError(t, err)
	opts := export.BEDOpts{
		Chrom:    "chr7",
		HalfOpen: true,
		Color:    true,
		Columns: func(a interval.Annotation) []string {
			return []string{a.String(), "", "a b"}
		},
	}
	require.NoError(t, export.WriteBED(&buf, sub, opts))
	expect.EQ(t, buf.String(), "chr7\t300\t401\tRBP2\t1000\t+\t300\t401\t0,0,0\tx\t.\ta_b\n")

	raw := factor.New()
	require.NoError(t, raw.Add("r", interval.Must(1, 2)))
	err = export.WriteBED(&buf, raw, export.BEDOpts{})
	assert.True(t, interval.IsModeViolation(err))
}

func TestWriteWIG(t *testing.T) {
	set, err := interval.NewRawSet(interval.Must(0, 2), interval.Must(1, 3))
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, export.WriteWIG(&buf, set, export.WIGOpts{Chrom: "chr2", Displacement: 10, Header: true, Name: "n"}))
	expect.EQ(t, buf.String(),
		"track type=wiggle_0 name=\"n\" visibility=full\n"+
			"fixedStep chrom=chr2 start=11 step=1\n"+
			"1\n2\n2\n1\n")

	buf.Reset()
	require.NoError(t, export.WriteWIG(&buf, set, export.WIGOpts{Chrom: "X", Length: 6}))
	expect.EQ(t, buf.String(), "fixedStep chrom=chrX start=1 step=1\n1\n2\n2\n1\n0\n0\n")

	empty, err := interval.NewRawSet()
	require.NoError(t, err)
	err = export.WriteWIG(&buf, empty, export.WIGOpts{})
	assert.True(t, interval.IsEmptySetDepth(err))
}

func correlation(t *testing.T) *factor.Correlation {
	s := newStore(t, map[string][]interval.Interval{
		"a": {interval.Must(0, 10)},
		"b": {interval.Must(0, 10)},
		"c": {interval.Must(1000, 1010)},
	})
	c, err := s.SelfAnalysis(30)
	require.NoError(t, err)
	return c
}

func TestWriteCorrelationCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteCorrelationCSV(&buf, correlation(t)))
	expect.EQ(t, buf.String(), ",A,B,C\nA,1,1,0,\nB,1,1,0,\nC,0,0,1,\n")
}

func TestCorrelationPath(t *testing.T) {
	expect.EQ(t, export.CorrelationPath("/tmp/out", "NEAT1", []string{"rbpdb", "postar"}, 30),
		"/tmp/out/csv/neat1-rbpdb-postar-30.csv")
}

func TestCreate(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ctx := context.Background()
	for _, bgzip := range []bool{false, true} {
		path := filepath.Join(dir, "out.txt")
		out, err := export.Create(ctx, path, bgzip, 2)
		require.NoError(t, err)
		_, err = out.Write([]byte("hello\n"))
		require.NoError(t, err)
		require.NoError(t, out.Close())

		f, err := os.Open(path)
		require.NoError(t, err)
		var data []byte
		if bgzip {
			r, err := gzip.NewReader(f)
			require.NoError(t, err)
			data, err = ioutil.ReadAll(r)
			require.NoError(t, err)
		} else {
			data, err = ioutil.ReadAll(f)
			require.NoError(t, err)
		}
		require.NoError(t, f.Close())
		expect.EQ(t, string(data), "hello\n")
	}
}

func TestWriteHeatMap(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	path := filepath.Join(dir, "heat.png")
	require.NoError(t, export.WriteHeatMap(context.Background(), path, correlation(t), "test"))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, info.Size() > 0)

	_, err = export.HeatMap(&factor.Correlation{}, "empty")
	assert.Error(t, err)
	err = export.WriteHeatMap(context.Background(), filepath.Join(dir, "heat.xyz"), correlation(t), "bad")
	assert.Error(t, err)
}
