package interval

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/grailbio/base/errors"
)

// Region is a named range on a reference sequence, with 0-based closed
// coordinates.
type Region struct {
	Chrom string
	Start PosType
	End   PosType
}

// Interval returns the range covered by r.
func (r Region) Interval() Interval {
	return Interval{Start: r.Start, End: r.End}
}

func (r Region) String() string {
	return fmt.Sprintf("%s:%d-%d", r.Chrom, r.Start+1, r.End+1)
}

// ParseRegion parses a region string of one of the forms
//   [chrom]:[1-based first pos]-[1-based last pos]
//   [chrom]:[1-based pos]
//   [chrom]
// returning 0-based closed coordinates.  The range [0, PosTypeMax - 1] is
// returned if there is no positional restriction.  Thousands separators (',')
// are accepted in positions.
func ParseRegion(region string) (result Region, err error) {
	region = strings.TrimSpace(region)
	if len(region) == 0 {
		err = errors.E(errors.Invalid, "interval.ParseRegion: empty region string")
		return
	}
	colonPos := strings.IndexByte(region, ':')
	if colonPos == -1 {
		result.Chrom = region
		result.Start = 0
		result.End = PosTypeMax - 1
		return
	}
	if colonPos == 0 {
		err = errors.E(errors.Invalid, "interval.ParseRegion: empty contig ID")
		return
	}
	result.Chrom = region[:colonPos]
	rangeStr := strings.Replace(region[colonPos+1:], ",", "", -1)
	dashPos := strings.IndexByte(rangeStr, '-')
	if dashPos == -1 {
		var pos1 PosType
		if pos1, err = parsePos1(rangeStr); err != nil {
			return
		}
		result.Start = pos1 - 1
		result.End = pos1 - 1
		return
	}
	var start1, end1 PosType
	if start1, err = parsePos1(rangeStr[:dashPos]); err != nil {
		return
	}
	if end1, err = parsePos1(rangeStr[dashPos+1:]); err != nil {
		return
	}
	if end1 < start1 {
		err = errors.E(KindInvalidInterval, fmt.Sprintf("interval.ParseRegion: invalid range string %v", rangeStr))
		return
	}
	result.Start = start1 - 1
	result.End = end1 - 1
	return
}

// parsePos1 parses a 1-based position.
func parsePos1(s string) (PosType, error) {
	pos1, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, errors.E(errors.Invalid, err, fmt.Sprintf("interval.ParseRegion: bad position %q", s))
	}
	if pos1 <= 0 || pos1 >= PosTypeMax {
		return 0, errors.E(errors.Invalid, fmt.Sprintf("interval.ParseRegion: position %v out of range", s))
	}
	return PosType(pos1), nil
}
