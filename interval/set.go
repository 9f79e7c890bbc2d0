package interval

import (
	"fmt"
	"strings"

	"github.com/grailbio/base/errors"
)

// Mode tells whether a Set merges overlapping intervals.
type Mode int

const (
	// Merged sets hold disjoint intervals.
	Merged Mode = iota
	// Raw sets hold overlapping evidence verbatim.
	Raw
)

func (m Mode) String() string {
	if m == Raw {
		return "raw"
	}
	return "merged"
}

// Set is the interface shared by RawSet and MergedSet.
type Set interface {
	// Mode returns Raw or Merged.
	Mode() Mode
	// Len returns the number of stored intervals.
	Len() int
	// Add inserts iv.  A MergedSet merges it with any interval it overlaps.
	Add(iv Interval) error
	// Remove deletes an interval equal to iv (annotation included).  It
	// returns a NotFound error if there is none.
	Remove(iv Interval) error
	// Do calls fn on every interval in ascending order, stopping early when fn
	// returns true.  It returns true if it stopped early.
	Do(fn func(iv Interval) (done bool)) bool
	// Intervals returns every interval in ascending order.
	Intervals() []Interval
	// Depth returns the per-position coverage count over [0, length).  A
	// negative length is inferred as the largest end coordinate plus one.
	Depth(length int) ([]int, error)
	// BaseCover returns the number of positions covered by at least one
	// interval.
	BaseCover() int
	// Version changes whenever the contents of the set change.
	Version() uint64
	String() string
}

// AsMerged returns s as a *MergedSet, or a ModeViolation error for raw
// evidence.  op names the calling operation in the error.
func AsMerged(s Set, op string) (*MergedSet, error) {
	m, ok := s.(*MergedSet)
	if !ok {
		return nil, ModeViolation(op)
	}
	return m, nil
}

// FromPairs builds a set of the given mode from [start, end] pairs without
// annotations.
func FromPairs(mode Mode, pairs [][2]PosType) (Set, error) {
	ivs := make([]Interval, len(pairs))
	for i, p := range pairs {
		ivs[i] = Interval{Start: p[0], End: p[1]}
	}
	switch mode {
	case Raw:
		return NewRawSet(ivs...)
	case Merged:
		return NewMergedSet(nil, ivs...)
	}
	return nil, errors.E(KindUnsupportedMode, fmt.Sprintf("interval.FromPairs: mode %d", int(mode)))
}

// format renders the intervals of s after name, e.g. "MergedSet[(1, 5) (9, 12)]".
func format(name string, s Set) string {
	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('[')
	first := true
	s.Do(func(iv Interval) bool {
		if !first {
			b.WriteByte(' ')
		}
		first = false
		b.WriteString(iv.String())
		return false
	})
	b.WriteByte(']')
	return b.String()
}
