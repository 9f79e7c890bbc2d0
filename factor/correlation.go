package factor

import (
	"fmt"
	"sort"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/traverse"
	"github.com/grailbio/rnpbind/interval"
)

// Pair is one entry of a correlation ranking.
type Pair struct {
	A, B  string
	Score float64
}

// Correlation holds the pairwise proximity scores of every factor of a Store,
// computed at one bp threshold.
type Correlation struct {
	// Threshold is the bp threshold passed to MergedSet.Dist.
	Threshold interval.PosType
	// Names lists the factors in sorted order; it indexes both tables.
	Names []string
	// Directional[i][j] is Names[i]'s set Dist Names[j]'s set: how close the
	// sites of j lie to those of i.
	Directional [][]float64
	// FScore[i][j] is the harmonic mean of Directional[i][j] and
	// Directional[j][i], or 0 when both are 0.
	FScore [][]float64
	// Ranked holds every ordered pair, highest FScore first.
	Ranked []Pair

	index map[string]int
}

// FScore returns 2pq/(p+q), or 0 if both p and q are 0.
func FScore(p, q float64) float64 {
	if p == 0 && q == 0 {
		return 0
	}
	return 2 * p * q / (p + q)
}

// Directed returns Directional for the pair (a, b).  ok is false if either
// name is absent.
func (c *Correlation) Directed(a, b string) (score float64, ok bool) {
	i, j, ok := c.pair(a, b)
	if !ok {
		return 0, false
	}
	return c.Directional[i][j], true
}

// Symmetric returns FScore for the pair (a, b).  ok is false if either name
// is absent.
func (c *Correlation) Symmetric(a, b string) (score float64, ok bool) {
	i, j, ok := c.pair(a, b)
	if !ok {
		return 0, false
	}
	return c.FScore[i][j], true
}

func (c *Correlation) pair(a, b string) (i, j int, ok bool) {
	if i, ok = c.index[Normalize(a)]; !ok {
		return
	}
	j, ok = c.index[Normalize(b)]
	return
}

// fresh reports whether the cached correlation was computed at bp and no
// member changed since.
func (s *Store) fresh(bp interval.PosType) bool {
	if s.corr == nil || s.corr.Threshold != bp || len(s.versions) != len(s.sets) {
		return false
	}
	for name, set := range s.sets {
		if v, ok := s.versions[name]; !ok || v != set.Version() {
			return false
		}
	}
	return true
}

// SelfAnalysis computes, for every ordered pair of factors (i, j), the
// directional score i.Dist(j, bp), and derives the f-score table and ranking
// from it.  The result is cached until the store or one of its members
// changes, or a different bp is requested.  Every member must be a MergedSet.
//
// The n² Dist calls are spread over the store's parallelism; each goroutine
// fills a disjoint set of rows.
func (s *Store) SelfAnalysis(bp interval.PosType) (*Correlation, error) {
	if s.fresh(bp) {
		return s.corr, nil
	}
	names := s.Names()
	sets := make([]*interval.MergedSet, len(names))
	for i, name := range names {
		m, err := interval.AsMerged(s.sets[name], fmt.Sprintf("factor.SelfAnalysis(%s)", name))
		if err != nil {
			return nil, err
		}
		sets[i] = m
	}
	n := len(names)
	c := &Correlation{
		Threshold:   bp,
		Names:       names,
		Directional: make([][]float64, n),
		FScore:      make([][]float64, n),
		index:       make(map[string]int, n),
	}
	for i, name := range names {
		c.index[name] = i
		c.Directional[i] = make([]float64, n)
		c.FScore[i] = make([]float64, n)
	}

	parallelism := s.parallelism
	if parallelism > n {
		parallelism = n
	}
	if n > 0 {
		err := traverse.Each(parallelism, func(jobIdx int) error {
			for i := jobIdx; i < n; i += parallelism {
				for j := range sets {
					c.Directional[i][j] = sets[i].Dist(sets[j], bp)
				}
			}
			return nil
		})
		if err != nil {
			return nil, errors.E(err, "factor.SelfAnalysis")
		}
	}

	c.Ranked = make([]Pair, 0, n*n)
	for i := range names {
		for j := range names {
			f := FScore(c.Directional[i][j], c.Directional[j][i])
			c.FScore[i][j] = f
			c.Ranked = append(c.Ranked, Pair{A: names[i], B: names[j], Score: f})
		}
	}
	sort.SliceStable(c.Ranked, func(i, j int) bool {
		return c.Ranked[i].Score > c.Ranked[j].Score
	})

	s.corr = c
	s.versions = make(map[string]uint64, n)
	for name, set := range s.sets {
		s.versions[name] = set.Version()
	}
	return c, nil
}

// Lookup returns the factors correlated with name at bp, highest f-score
// first, keeping only scores above displayThreshold.  The factor itself is
// included.
func (s *Store) Lookup(name string, bp interval.PosType, displayThreshold float64) ([]Pair, error) {
	key, err := s.resolve("factor.Lookup", name)
	if err != nil {
		return nil, err
	}
	c, err := s.SelfAnalysis(bp)
	if err != nil {
		return nil, err
	}
	i := c.index[key]
	var pairs []Pair
	for j, other := range c.Names {
		if f := c.FScore[i][j]; f > displayThreshold {
			pairs = append(pairs, Pair{A: key, B: other, Score: f})
		}
	}
	sort.SliceStable(pairs, func(a, b int) bool { return pairs[a].Score > pairs[b].Score })
	return pairs, nil
}

// LookupPair returns the f-score of a and b at bp.
func (s *Store) LookupPair(a, b string, bp interval.PosType) (float64, error) {
	ka, err := s.resolve("factor.LookupPair", a)
	if err != nil {
		return 0, err
	}
	kb, err := s.resolve("factor.LookupPair", b)
	if err != nil {
		return 0, err
	}
	c, err := s.SelfAnalysis(bp)
	if err != nil {
		return 0, err
	}
	f, _ := c.Symmetric(ka, kb)
	return f, nil
}
