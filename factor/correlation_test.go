package factor_test

import (
	"math/rand"
	"testing"

	"github.com/grailbio/rnpbind/factor"
	"github.com/grailbio/rnpbind/interval"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelfAnalysis(t *testing.T) {
	for _, parallelism := range []int{1, 2, 8} {
		s := newFixture(t, factor.WithParallelism(parallelism))
		c, err := s.SelfAnalysis(30)
		require.NoError(t, err)
		assert.Equal(t, []string{"RBP1", "RBP2", "RBP3"}, c.Names)

		d, ok := c.Directed("rbp1", "rbp2")
		require.True(t, ok)
		assert.Equal(t, 1.0, d)
		d, _ = c.Directed("rbp2", "rbp1")
		assert.InDelta(t, 2.0/3, d, 1e-12)

		tests := []struct {
			a, b string
			want float64
		}{
			{"RBP1", "RBP2", factor.FScore(1, 2.0/3)},
			{"RBP1", "RBP3", factor.FScore(1, 1.0/3)},
			{"RBP2", "RBP3", factor.FScore(1, 1.0/2)},
			{"RBP1", "RBP1", 1},
		}
		for _, test := range tests {
			got, ok := c.Symmetric(test.a, test.b)
			require.True(t, ok)
			assert.InDelta(t, test.want, got, 1e-12, "%s/%s", test.a, test.b)
			got, _ = c.Symmetric(test.b, test.a)
			assert.InDelta(t, test.want, got, 1e-12, "%s/%s", test.b, test.a)
		}
		_, ok = c.Symmetric("RBP1", "RBP9")
		assert.False(t, ok)

		require.Len(t, c.Ranked, 9)
		assert.Equal(t, factor.Pair{A: "RBP1", B: "RBP1", Score: 1}, c.Ranked[0])
		assert.Equal(t, "RBP1", c.Ranked[3].A)
		assert.Equal(t, "RBP2", c.Ranked[3].B)
		assert.InDelta(t, 0.8, c.Ranked[3].Score, 1e-12)
		for i := 1; i < len(c.Ranked); i++ {
			assert.True(t, c.Ranked[i-1].Score >= c.Ranked[i].Score)
		}
	}
}

func TestFScore(t *testing.T) {
	assert.Equal(t, 0.0, factor.FScore(0, 0))
	assert.Equal(t, 0.0, factor.FScore(1, 0))
	assert.Equal(t, 1.0, factor.FScore(1, 1))
	assert.InDelta(t, 0.8, factor.FScore(1, 2.0/3), 1e-12)
}

func TestSelfAnalysisCache(t *testing.T) {
	s := newFixture(t)
	c1, err := s.SelfAnalysis(30)
	require.NoError(t, err)
	c2, err := s.SelfAnalysis(30)
	require.NoError(t, err)
	assert.True(t, c1 == c2)

	c3, err := s.SelfAnalysis(10)
	require.NoError(t, err)
	assert.True(t, c3 != c2)
	assert.Equal(t, interval.PosType(10), c3.Threshold)

	// Mutating a member behind the store's back still invalidates the cache.
	m, err := s.Merged("rbp3")
	require.NoError(t, err)
	require.NoError(t, m.Add(interval.Must(100, 200)))
	c4, err := s.SelfAnalysis(10)
	require.NoError(t, err)
	assert.True(t, c4 != c3)
	f, _ := c4.Symmetric("rbp1", "rbp3")
	assert.InDelta(t, factor.FScore(1, 2.0/3), f, 1e-12)

	s.Set("rbp4", merged(t))
	c5, err := s.SelfAnalysis(10)
	require.NoError(t, err)
	assert.True(t, c5 != c4)
	f, ok := c5.Symmetric("rbp4", "rbp4")
	require.True(t, ok)
	assert.Equal(t, 0.0, f)
}

func TestSelfAnalysisSymmetric(t *testing.T) {
	r := rand.New(rand.NewSource(0))
	s := factor.New(factor.WithParallelism(3))
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		set := merged(t)
		for i := 0; i < 20; i++ {
			start := interval.PosType(r.Intn(5000))
			require.NoError(t, set.Add(interval.Must(start, start+interval.PosType(r.Intn(80)))))
		}
		s.Set(name, set)
	}
	c, err := s.SelfAnalysis(50)
	require.NoError(t, err)
	for i := range c.Names {
		assert.Equal(t, 1.0, c.FScore[i][i])
		for j := range c.Names {
			assert.Equal(t, c.FScore[i][j], c.FScore[j][i])
			assert.True(t, c.Directional[i][j] >= 0 && c.Directional[i][j] <= 1)
		}
	}
}

func TestLookup(t *testing.T) {
	s := newFixture(t)
	pairs, err := s.Lookup("rbp2", 30, -0.1)
	require.NoError(t, err)
	require.Len(t, pairs, 3)
	assert.Equal(t, "RBP2", pairs[0].B)
	assert.Equal(t, "RBP1", pairs[1].B)
	assert.Equal(t, "RBP3", pairs[2].B)

	pairs, err = s.Lookup("rbp2", 30, 0.7)
	require.NoError(t, err)
	assert.Len(t, pairs, 2)

	f, err := s.LookupPair("rbp3", "rbp2", 30)
	require.NoError(t, err)
	assert.InDelta(t, 2.0/3, f, 1e-12)

	_, err = s.Lookup("rbp7", 30, 0)
	assert.True(t, interval.IsNotFound(err))
	_, err = s.LookupPair("rbp1", "rbp7", 30)
	assert.True(t, interval.IsNotFound(err))
}
