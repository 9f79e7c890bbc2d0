package interval

import (
	"sort"
)

type rawKey struct {
	start, end PosType
	ann        string
}

func keyOf(iv Interval) rawKey {
	return rawKey{iv.Start, iv.End, iv.Annotation.key()}
}

// RawSet accumulates binding evidence without merging.  Overlapping intervals
// are kept as-is, which makes Depth meaningful; identical intervals (same
// endpoints and annotation) are stored once.
//
// Reads sort the underlying storage lazily, so a RawSet must not be read
// concurrently with anything, including other reads.
type RawSet struct {
	ivs     []Interval
	seen    map[rawKey]struct{}
	sorted  bool
	version uint64
}

// NewRawSet returns a RawSet holding ivs.  It returns an InvalidInterval error
// if any of them has start > end.
func NewRawSet(ivs ...Interval) (*RawSet, error) {
	s := &RawSet{seen: map[rawKey]struct{}{}, sorted: true}
	for _, iv := range ivs {
		if err := s.Add(iv); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Mode implements Set.
func (s *RawSet) Mode() Mode { return Raw }

// Len implements Set.
func (s *RawSet) Len() int { return len(s.ivs) }

// Add appends iv in amortized constant time.
func (s *RawSet) Add(iv Interval) error {
	if err := iv.Validate(); err != nil {
		return err
	}
	if s.seen == nil {
		s.seen = map[rawKey]struct{}{}
	}
	k := keyOf(iv)
	if _, ok := s.seen[k]; ok {
		return nil
	}
	s.seen[k] = struct{}{}
	if n := len(s.ivs); n > 0 && s.sorted && less(iv, s.ivs[n-1]) {
		s.sorted = false
	}
	s.ivs = append(s.ivs, iv)
	s.version++
	return nil
}

// Remove implements Set.
func (s *RawSet) Remove(iv Interval) error {
	k := keyOf(iv)
	if _, ok := s.seen[k]; !ok {
		return notFound("RawSet.Remove", iv)
	}
	delete(s.seen, k)
	for i := range s.ivs {
		if s.ivs[i].Equal(iv) {
			s.ivs = append(s.ivs[:i], s.ivs[i+1:]...)
			break
		}
	}
	s.version++
	return nil
}

// Version implements Set.
func (s *RawSet) Version() uint64 { return s.version }

func (s *RawSet) sort() {
	if s.sorted {
		return
	}
	sort.Slice(s.ivs, func(i, j int) bool { return less(s.ivs[i], s.ivs[j]) })
	s.sorted = true
}

// Do implements Set.
func (s *RawSet) Do(fn func(iv Interval) bool) bool {
	s.sort()
	for _, iv := range s.ivs {
		if fn(iv) {
			return true
		}
	}
	return false
}

// Intervals implements Set.
func (s *RawSet) Intervals() []Interval {
	s.sort()
	return append([]Interval(nil), s.ivs...)
}

// Depth implements Set.  Every stored interval counts, so overlapping evidence
// stacks up.
func (s *RawSet) Depth(length int) ([]int, error) {
	return depthOf("RawSet.Depth", s.ivs, length)
}

// BaseCover implements Set.
func (s *RawSet) BaseCover() int {
	if len(s.ivs) == 0 {
		return 0
	}
	depth, _ := s.Depth(InferLength)
	return coveredCount(depth, 0)
}

func (s *RawSet) String() string { return format("RawSet", s) }

// Collapse converts the raw evidence into a MergedSet.  The depth array is
// computed, a cutoff is derived from mode and threshold (see DepthCutoff), and
// every maximal run of positions deeper than the cutoff becomes one interval.
// The annotation of each raw interval that overlaps or touches an output
// interval is folded into it with merge (DefaultMerge if nil).  Annotations of
// evidence that falls entirely below the cutoff are dropped.
//
// An empty RawSet collapses to an empty MergedSet.  s is not modified.
func (s *RawSet) Collapse(mode CollapseMode, threshold float64, merge MergeFunc) (*MergedSet, error) {
	out := newMergedSet(merge)
	if len(s.ivs) == 0 {
		// Still reject a bad mode or ratio.
		if _, err := DepthCutoff(nil, mode, threshold); err != nil {
			return nil, err
		}
		return out, nil
	}
	depth, err := s.Depth(InferLength)
	if err != nil {
		return nil, err
	}
	cutoff, err := DepthCutoff(depth, mode, threshold)
	if err != nil {
		return nil, err
	}
	for _, r := range runs(depth, cutoff) {
		out.insert(r)
	}
	if out.Len() == 0 {
		return out, nil
	}
	folded := map[PosType][]Annotation{}
	s.Do(func(raw Interval) bool {
		if raw.Annotation.IsEmpty() {
			return false
		}
		out.doOverlapping(raw, func(hit Interval) {
			folded[hit.Start] = append(folded[hit.Start], raw.Annotation)
		})
		return false
	})
	for start, anns := range folded {
		hit := out.get(start)
		hit.Annotation = out.mergeFunc(merge)(append([]Annotation{hit.Annotation}, anns...))
		out.insert(hit)
	}
	return out, nil
}
