package interval

import (
	"fmt"
	"strings"

	"github.com/grailbio/base/errors"
)

// This file computes per-position support depth and the cutoffs used to
// collapse raw evidence.
//
// Depth is computed with a difference array instead of incrementing every
// covered position: each interval [start, end] contributes +1 at start and -1
// at end+1, and a running sum recovers the coverage.  For example, given
//   [7, 9]
//   [14, 20]
//   [15, 18]
// the difference array has +1 at 7, 14, 15 and -1 at 10, 19, 21, so the depth
// is 1 on [7, 9], 1 on 14, 2 on [15, 18], 1 on [19, 20] and 0 elsewhere.

// InferLength asks Depth to use the largest end coordinate plus one.
const InferLength = -1

// depthOf returns the coverage of ivs over [0, length).  Positions outside
// [0, length) are ignored.
func depthOf(op string, ivs []Interval, length int) ([]int, error) {
	if length < 0 {
		if len(ivs) == 0 {
			return nil, errors.E(KindEmptySetDepth, op+": depth of an empty set requires an explicit length")
		}
		maxEnd := ivs[0].End
		for _, iv := range ivs[1:] {
			if iv.End > maxEnd {
				maxEnd = iv.End
			}
		}
		length = int(maxEnd) + 1
		if length < 0 {
			length = 0
		}
	}
	diff := make([]int, length+1)
	for _, iv := range ivs {
		start, end := int(iv.Start), int(iv.End)
		if start < 0 {
			start = 0
		}
		if end >= length {
			end = length - 1
		}
		if start > end {
			continue
		}
		diff[start]++
		diff[end+1]--
	}
	depth := diff[:length]
	running := 0
	for i := range depth {
		running += depth[i]
		depth[i] = running
	}
	return depth, nil
}

// coveredCount returns the number of positions whose depth exceeds cutoff.
func coveredCount(depth []int, cutoff float64) int {
	n := 0
	for _, d := range depth {
		if float64(d) > cutoff {
			n++
		}
	}
	return n
}

// maxDepth returns the largest value in depth, or 0 if depth is empty.
func maxDepth(depth []int) int {
	m := 0
	for _, d := range depth {
		if d > m {
			m = d
		}
	}
	return m
}

// CollapseMode selects how RawSet.Collapse derives its depth cutoff from a
// threshold.
type CollapseMode int

const (
	// BaseCoverNumber keeps the most positions possible without covering more
	// than threshold bases.
	BaseCoverNumber CollapseMode = iota
	// TopDepthRatio keeps positions whose depth is within the top threshold
	// fraction (in [0, 1]) of the maximum depth.
	TopDepthRatio
	// TopDepthNumber keeps the threshold depth layers below the maximum.
	TopDepthNumber
	// MinimumDepthNumber keeps positions with depth of at least threshold.
	MinimumDepthNumber
)

var collapseModeNames = []string{
	BaseCoverNumber:    "BaseCoverNumber",
	TopDepthRatio:      "TopDepthRatio",
	TopDepthNumber:     "TopDepthNumber",
	MinimumDepthNumber: "MinimumDepthNumber",
}

func (m CollapseMode) String() string {
	if m < 0 || int(m) >= len(collapseModeNames) {
		return fmt.Sprintf("CollapseMode(%d)", int(m))
	}
	return collapseModeNames[m]
}

// ParseCollapseMode parses a mode name, ignoring case.
func ParseCollapseMode(s string) (CollapseMode, error) {
	for i, name := range collapseModeNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return CollapseMode(i), nil
		}
	}
	return 0, errors.E(KindUnsupportedMode, fmt.Sprintf("interval.ParseCollapseMode: mode %q is not supported", s))
}

// DepthCutoff returns the cutoff selected by mode and threshold for the given
// depth array: positions with depth strictly greater than the cutoff are kept.
// The result is never negative, so uncovered positions are never kept.
func DepthCutoff(depth []int, mode CollapseMode, threshold float64) (float64, error) {
	top := maxDepth(depth)
	var cutoff float64
	switch mode {
	case BaseCoverNumber:
		cutoff = -1
		for cutoff < float64(top) && float64(coveredCount(depth, cutoff)) > threshold {
			cutoff++
		}
	case TopDepthRatio:
		if threshold < 0 || threshold > 1 {
			return 0, errors.E(KindUnsupportedMode, fmt.Sprintf("interval.DepthCutoff: ratio %v is outside [0, 1]", threshold))
		}
		cutoff = float64(top) * (1 - threshold)
	case TopDepthNumber:
		cutoff = float64(top) - threshold
	case MinimumDepthNumber:
		cutoff = threshold - 1
	default:
		return 0, errors.E(KindUnsupportedMode, fmt.Sprintf("interval.DepthCutoff: %v", mode))
	}
	if cutoff < 0 {
		cutoff = 0
	}
	return cutoff, nil
}

// runs returns one interval per maximal run of positions whose depth exceeds
// cutoff.
func runs(depth []int, cutoff float64) []Interval {
	var out []Interval
	inRun := false
	var start int
	for pos, d := range depth {
		if float64(d) > cutoff {
			if !inRun {
				start = pos
				inRun = true
			}
			continue
		}
		if inRun {
			out = append(out, Interval{Start: PosType(start), End: PosType(pos - 1)})
			inRun = false
		}
	}
	if inRun {
		out = append(out, Interval{Start: PosType(start), End: PosType(len(depth) - 1)})
	}
	return out
}
