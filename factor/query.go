package factor

import (
	"fmt"

	"github.com/grailbio/rnpbind/interval"
)

// mergedMembers returns every member as a MergedSet, in name order.
func (s *Store) mergedMembers(op string) ([]string, []*interval.MergedSet, error) {
	names := s.Names()
	sets := make([]*interval.MergedSet, len(names))
	for i, name := range names {
		m, err := interval.AsMerged(s.sets[name], fmt.Sprintf("%s(%s)", op, name))
		if err != nil {
			return nil, nil, err
		}
		sets[i] = m
	}
	return names, sets, nil
}

// BindsNear returns the factors with at least one interval overlapping q
// widened by bp on each side.  The sets are shared with s.
func (s *Store) BindsNear(q interval.Interval, bp interval.PosType) (*Store, error) {
	names, sets, err := s.mergedMembers("factor.BindsNear")
	if err != nil {
		return nil, err
	}
	wide := q.Expand(bp)
	out := s.derive()
	for i, set := range sets {
		if set.IsOverlap(wide) {
			out.sets[names[i]] = set
		}
	}
	return out, nil
}

// Filter returns the factors whose name satisfies keep.  The sets are shared
// with s.
func (s *Store) Filter(keep func(name string) bool) *Store {
	out := s.derive()
	for name, set := range s.sets {
		if keep(name) {
			out.sets[name] = set
		}
	}
	return out
}

// AllSitesIn returns, for every factor with an interval overlapping q widened
// by bp, a new set reduced to those intervals.  Factors with no such interval
// are left out.
func (s *Store) AllSitesIn(q interval.Interval, bp interval.PosType) (*Store, error) {
	names, sets, err := s.mergedMembers("factor.AllSitesIn")
	if err != nil {
		return nil, err
	}
	out := s.derive()
	for i, set := range sets {
		if near := set.FilterOverlap(q, bp); near.Len() > 0 {
			out.sets[names[i]] = near
		}
	}
	return out, nil
}

// SiteNeighborhood pairs one site of a factor with the sites of every factor
// within reach of it.
type SiteNeighborhood struct {
	Site      interval.Interval
	Neighbors *Store
}

// SitesAnalysis returns, for each site of name in ascending order, the
// factors (name included) binding within bp of the site, each reduced to
// the nearby sites.
func (s *Store) SitesAnalysis(name string, bp interval.PosType) ([]SiteNeighborhood, error) {
	own, err := s.Merged(name)
	if err != nil {
		return nil, err
	}
	var (
		out  []SiteNeighborhood
		qErr error
	)
	own.Do(func(site interval.Interval) bool {
		var near *Store
		if near, qErr = s.AllSitesIn(site, bp); qErr != nil {
			return true
		}
		out = append(out, SiteNeighborhood{Site: site, Neighbors: near})
		return false
	})
	if qErr != nil {
		return nil, qErr
	}
	return out, nil
}

// SumOverAll returns every interval of every factor in a single RawSet, so
// that Depth reports the combined support across factors.  The factor name is
// added to each annotation, which keeps identical sites of different factors
// apart.
func (s *Store) SumOverAll() *interval.RawSet {
	all := &interval.RawSet{}
	s.Do(func(name string, set interval.Set) bool {
		set.Do(func(iv interval.Interval) bool {
			iv.Annotation = interval.Multi(append(iv.Annotation.Values(), name)...)
			// Stored intervals are already valid.
			_ = all.Add(iv)
			return false
		})
		return false
	})
	return all
}
