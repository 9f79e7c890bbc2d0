package interval

import (
	"fmt"
	"math"

	"github.com/grailbio/base/errors"
)

// PosType is the coordinate type.  int32 matches the BAM limit and is wide
// enough for any transcript.
type PosType int32

// PosTypeMax is the maximum value that can be represented by a PosType.  No
// interval may end at PosTypeMax.
const PosTypeMax = math.MaxInt32

// Interval is the closed range [Start, End] on a reference sequence, with an
// optional annotation.
type Interval struct {
	Start      PosType
	End        PosType
	Annotation Annotation
}

// New returns the interval [start, end].  The values, if any, become its
// annotation (see Multi).  start > end is an InvalidInterval error.
func New(start, end PosType, values ...string) (Interval, error) {
	iv := Interval{Start: start, End: end, Annotation: Multi(values...)}
	if err := iv.Validate(); err != nil {
		return Interval{}, err
	}
	return iv, nil
}

// Must is like New, but panics on error.  It is meant for literals.
func Must(start, end PosType, values ...string) Interval {
	iv, err := New(start, end, values...)
	if err != nil {
		panic(err)
	}
	return iv
}

// Validate returns an InvalidInterval error unless Start <= End < PosTypeMax.
func (iv Interval) Validate() error {
	if iv.Start > iv.End || iv.End >= PosTypeMax {
		return errInvalid("interval.Validate", iv)
	}
	return nil
}

// Overlaps returns true if the closed ranges of iv and other share at least
// one position.  Touching endpoints count as overlap.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start <= other.End && other.Start <= iv.End
}

// Expand returns iv widened by bp positions on each side.  The annotation is
// dropped.
func (iv Interval) Expand(bp PosType) Interval {
	start, end := int64(iv.Start)-int64(bp), int64(iv.End)+int64(bp)
	if start < math.MinInt32 {
		start = math.MinInt32
	}
	if end >= PosTypeMax {
		end = PosTypeMax - 1
	}
	return Interval{Start: PosType(start), End: PosType(end)}
}

// Span returns iv without its annotation.
func (iv Interval) Span() Interval {
	return Interval{Start: iv.Start, End: iv.End}
}

// Equal returns true if iv and other have the same endpoints and annotation.
func (iv Interval) Equal(other Interval) bool {
	return iv.Start == other.Start && iv.End == other.End && iv.Annotation.Equal(other.Annotation)
}

func (iv Interval) String() string {
	if iv.Annotation.IsEmpty() {
		return fmt.Sprintf("(%d, %d)", iv.Start, iv.End)
	}
	return fmt.Sprintf("(%d, %d, %v)", iv.Start, iv.End, iv.Annotation)
}

// Distance returns the number of positions separating a and b: 0 if they
// overlap or touch, otherwise the gap between the closer pair of endpoints.
func Distance(a, b Interval) PosType {
	if a.Overlaps(b) {
		return 0
	}
	if a.End < b.Start {
		return b.Start - a.End
	}
	return a.Start - b.End
}

// less orders intervals by start, then end, then annotation.
func less(a, b Interval) bool {
	if a.Start != b.Start {
		return a.Start < b.Start
	}
	if a.End != b.End {
		return a.End < b.End
	}
	return a.Annotation.key() < b.Annotation.key()
}

// notFound is returned by Remove and NearestSite.
func notFound(op string, iv Interval) error {
	return errors.E(KindNotFound, fmt.Sprintf("%s: interval %v not found", op, iv))
}
