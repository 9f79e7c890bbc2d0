package interval

import (
	"math"

	"github.com/biogo/store/llrb"
	"gonum.org/v1/gonum/stat"
)

// site is the llrb element of a MergedSet.  Stored intervals never overlap,
// so the start coordinate alone is a unique key.
type site struct {
	Interval
}

// Compare compares two site objects for use in llrb.
func (s site) Compare(c llrb.Comparable) int {
	return int(s.Start) - int(c.(site).Start)
}

func key(pos PosType) site {
	return site{Interval{Start: pos}}
}

// MergedSet is an ordered union of disjoint intervals.  Adding an interval
// that overlaps or touches stored intervals replaces all of them by their
// union, with the annotations combined by a MergeFunc.
//
// Concurrent reads are safe; writes must not overlap with any other access.
type MergedSet struct {
	tree    llrb.Tree
	merge   MergeFunc
	version uint64
}

func newMergedSet(merge MergeFunc) *MergedSet {
	return &MergedSet{merge: merge}
}

// NewMergedSet returns a MergedSet holding the union of ivs.  merge is the
// default MergeFunc for Add; nil selects DefaultMerge.  It returns an
// InvalidInterval error if any of ivs has start > end.
func NewMergedSet(merge MergeFunc, ivs ...Interval) (*MergedSet, error) {
	s := newMergedSet(merge)
	for _, iv := range ivs {
		if err := s.Add(iv); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// mergeFunc returns m if set, else the set's default.
func (s *MergedSet) mergeFunc(m MergeFunc) MergeFunc {
	if m != nil {
		return m
	}
	if s.merge != nil {
		return s.merge
	}
	return DefaultMerge
}

// Mode implements Set.
func (s *MergedSet) Mode() Mode { return Merged }

// Len implements Set.
func (s *MergedSet) Len() int { return s.tree.Len() }

func (s *MergedSet) insert(iv Interval) {
	s.tree.Insert(site{iv})
	s.version++
}

// Version implements Set.
func (s *MergedSet) Version() uint64 { return s.version }

func (s *MergedSet) get(start PosType) Interval {
	return s.tree.Get(key(start)).(site).Interval
}

// doOverlapping calls fn, in ascending order, on every stored interval that
// overlaps q.  fn must not modify s.
func (s *MergedSet) doOverlapping(q Interval, fn func(iv Interval)) {
	if s.tree.Len() == 0 || q.Start > q.End {
		return
	}
	// Only the floor of q.Start can overlap q from the left; anything earlier
	// ends before the floor starts.
	from := key(q.Start)
	if f := s.tree.Floor(from); f != nil {
		from = f.(site)
	}
	s.tree.DoRange(func(c llrb.Comparable) bool {
		if iv := c.(site).Interval; iv.Overlaps(q) {
			fn(iv)
		}
		return false
	}, from, key(q.End+1))
}

// Add implements Set using the set's default MergeFunc.
func (s *MergedSet) Add(iv Interval) error {
	return s.AddWith(iv, nil)
}

// AddWith inserts iv.  Every stored interval overlapping iv is removed, and
// their union with iv is inserted in their place; the annotations of the
// stored intervals, in order, followed by that of iv are combined with merge.
// A nil merge selects the set's default.
func (s *MergedSet) AddWith(iv Interval, merge MergeFunc) error {
	if err := iv.Validate(); err != nil {
		return err
	}
	var hits []Interval
	s.doOverlapping(iv, func(hit Interval) { hits = append(hits, hit) })
	if len(hits) == 0 {
		s.insert(iv)
		return nil
	}
	union := Interval{Start: iv.Start, End: iv.End}
	anns := make([]Annotation, 0, len(hits)+1)
	for _, hit := range hits {
		s.tree.Delete(site{hit})
		if hit.Start < union.Start {
			union.Start = hit.Start
		}
		if hit.End > union.End {
			union.End = hit.End
		}
		anns = append(anns, hit.Annotation)
	}
	anns = append(anns, iv.Annotation)
	union.Annotation = s.mergeFunc(merge)(anns)
	s.insert(union)
	return nil
}

// Remove implements Set.
func (s *MergedSet) Remove(iv Interval) error {
	c := s.tree.Get(site{iv})
	if c == nil || !c.(site).Interval.Equal(iv) {
		return notFound("MergedSet.Remove", iv)
	}
	s.tree.Delete(c)
	s.version++
	return nil
}

// Do implements Set.
func (s *MergedSet) Do(fn func(iv Interval) bool) bool {
	return s.tree.Do(func(c llrb.Comparable) bool {
		return fn(c.(site).Interval)
	})
}

// Intervals implements Set.
func (s *MergedSet) Intervals() []Interval {
	ivs := make([]Interval, 0, s.tree.Len())
	s.Do(func(iv Interval) bool {
		ivs = append(ivs, iv)
		return false
	})
	return ivs
}

// Depth implements Set.  Since stored intervals are disjoint, the result only
// holds zeros and ones.
func (s *MergedSet) Depth(length int) ([]int, error) {
	return depthOf("MergedSet.Depth", s.Intervals(), length)
}

// BaseCover implements Set.
func (s *MergedSet) BaseCover() int {
	if s.Len() == 0 {
		return 0
	}
	depth, _ := s.Depth(InferLength)
	return coveredCount(depth, 0)
}

// IsOverlap returns true if q overlaps or touches any stored interval.  Only
// the two stored neighbours of q.Start are inspected.
func (s *MergedSet) IsOverlap(q Interval) bool {
	k := key(q.Start)
	if f := s.tree.Floor(k); f != nil && f.(site).Overlaps(q) {
		return true
	}
	if c := s.tree.Ceil(k); c != nil && c.(site).Overlaps(q) {
		return true
	}
	return false
}

// NearestSite returns the stored interval closest to q, and the distance
// between them (0 if q overlaps or touches it).  When the stored intervals on
// either side of q are equally far, either one may be returned.  It returns a
// NotFound error if s is empty.
func (s *MergedSet) NearestSite(q Interval) (Interval, PosType, error) {
	k := key(q.Start)
	f, c := s.tree.Floor(k), s.tree.Ceil(k)
	switch {
	case f == nil && c == nil:
		return Interval{}, 0, notFound("MergedSet.NearestSite", q)
	case f == nil:
		right := c.(site).Interval
		return right, gap(q.End, right.Start), nil
	case c == nil:
		left := f.(site).Interval
		return left, gap(left.End, q.Start), nil
	}
	left, right := f.(site).Interval, c.(site).Interval
	dl, dr := gap(left.End, q.Start), gap(q.End, right.Start)
	if dr < dl {
		return right, dr, nil
	}
	return left, dl, nil
}

// gap returns to - from, or 0 if that is negative.
func gap(from, to PosType) PosType {
	if to < from {
		return 0
	}
	return to - from
}

// Score rates how close q lies to the stored intervals: 1 when q overlaps or
// touches one, otherwise 1 - gap/bp, floored at 0, where gap is the distance to
// the nearest stored interval.  With bp <= 0 only overlaps score.  An empty
// set scores 0.
func (s *MergedSet) Score(q Interval, bp PosType) float64 {
	_, d, err := s.NearestSite(q)
	if err != nil {
		return 0
	}
	if d == 0 {
		return 1
	}
	if bp <= 0 {
		return 0
	}
	return math.Max(0, 1-float64(d)/float64(bp))
}

// Dist returns the mean Score of every interval of other against s, a value
// in [0, 1].  It is 0 if other is empty.
//
// Dist is directional: s.Dist(other) asks how close other's intervals lie to
// s, which differs from other.Dist(s) whenever one set binds more widely than
// the other.  For example with s = {[100, 200], [300, 400]} and
// other = {[300, 400]}, s.Dist(other) is 1 but other.Dist(s) is 0.5 for any bp
// below 100.
func (s *MergedSet) Dist(other Set, bp PosType) float64 {
	n := other.Len()
	if n == 0 {
		return 0
	}
	scores := make([]float64, 0, n)
	other.Do(func(iv Interval) bool {
		scores = append(scores, s.Score(iv, bp))
		return false
	})
	return stat.Mean(scores, nil)
}

// FilterOverlap returns a new MergedSet holding the stored intervals that
// overlap q widened by bp on each side.
func (s *MergedSet) FilterOverlap(q Interval, bp PosType) *MergedSet {
	out := newMergedSet(s.merge)
	s.doOverlapping(q.Expand(bp), out.insert)
	return out
}

func (s *MergedSet) String() string { return format("MergedSet", s) }
