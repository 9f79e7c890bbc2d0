package interval

import (
	"fmt"

	"github.com/grailbio/base/errors"
)

// Error kinds returned by this package.  Callers can also test with
// errors.Is(kind, err) directly.
const (
	// KindInvalidInterval is returned when start > end, or a coordinate is out
	// of range.
	KindInvalidInterval = errors.Invalid
	// KindModeViolation is returned when a merged-only operation is attempted
	// on raw evidence.
	KindModeViolation = errors.NotAllowed
	// KindNotFound is returned when an interval or name is absent.
	KindNotFound = errors.NotExist
	// KindUnsupportedMode is returned for an unknown collapse mode or an
	// out-of-range ratio.
	KindUnsupportedMode = errors.NotSupported
	// KindEmptySetDepth is returned when the depth of an empty set is
	// requested without an explicit length.
	KindEmptySetDepth = errors.Precondition
)

// IsInvalidInterval reports whether err is an invalid-interval error.
func IsInvalidInterval(err error) bool { return errors.Is(KindInvalidInterval, err) }

// IsModeViolation reports whether err was caused by using raw evidence where a
// merged set is required.
func IsModeViolation(err error) bool { return errors.Is(KindModeViolation, err) }

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool { return errors.Is(KindNotFound, err) }

// IsUnsupportedMode reports whether err is an unsupported-collapse-mode error.
func IsUnsupportedMode(err error) bool { return errors.Is(KindUnsupportedMode, err) }

// IsEmptySetDepth reports whether err was returned by a depth computation on an
// empty set.
func IsEmptySetDepth(err error) bool { return errors.Is(KindEmptySetDepth, err) }

func errInvalid(op string, iv Interval) error {
	return errors.E(KindInvalidInterval, fmt.Sprintf("%s: invalid interval [%d, %d]", op, iv.Start, iv.End))
}

// ModeViolation returns the error reported when op needs a MergedSet but was
// handed raw evidence.
func ModeViolation(op string) error {
	return errors.E(KindModeViolation, fmt.Sprintf("%s: not supported on a raw (overlapping) interval set; collapse it first", op))
}
