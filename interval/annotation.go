package interval

import (
	"sort"
	"strings"
)

// Annotation is the opaque payload carried by an interval.  The zero value
// carries nothing.  Otherwise it holds a single value, or several distinct
// values once annotations of merged intervals have been combined.
type Annotation struct {
	values []string
}

// Single returns an annotation holding v.  An empty v yields the zero
// Annotation.
func Single(v string) Annotation {
	if v == "" {
		return Annotation{}
	}
	return Annotation{values: []string{v}}
}

// Multi returns an annotation holding the distinct nonempty values in vs, in
// sorted order.  It collapses to a single-valued annotation when only one
// distinct value remains.
func Multi(vs ...string) Annotation {
	var kept []string
	for _, v := range vs {
		if v != "" {
			kept = append(kept, v)
		}
	}
	if len(kept) <= 1 {
		return Annotation{values: kept}
	}
	sort.Strings(kept)
	n := 1
	for _, v := range kept[1:] {
		if v != kept[n-1] {
			kept[n] = v
			n++
		}
	}
	return Annotation{values: kept[:n]}
}

// IsEmpty returns true if the annotation carries nothing.
func (a Annotation) IsEmpty() bool { return len(a.values) == 0 }

// IsMulti returns true if the annotation holds more than one value.
func (a Annotation) IsMulti() bool { return len(a.values) > 1 }

// Value returns the value of a single-valued annotation.  ok is false for an
// empty or multi-valued annotation.
func (a Annotation) Value() (v string, ok bool) {
	if len(a.values) != 1 {
		return "", false
	}
	return a.values[0], true
}

// Values returns a copy of every value held by the annotation.
func (a Annotation) Values() []string {
	if len(a.values) == 0 {
		return nil
	}
	return append([]string(nil), a.values...)
}

// Equal returns true if a and b hold the same values in the same order.
func (a Annotation) Equal(b Annotation) bool {
	if len(a.values) != len(b.values) {
		return false
	}
	for i, v := range a.values {
		if b.values[i] != v {
			return false
		}
	}
	return true
}

// key is used to detect duplicate raw evidence.
func (a Annotation) key() string {
	return strings.Join(a.values, "\x00")
}

func (a Annotation) String() string {
	switch len(a.values) {
	case 0:
		return ""
	case 1:
		return a.values[0]
	}
	return "{" + strings.Join(a.values, ", ") + "}"
}

// MergeFunc combines the annotations of intervals that are merged into one.
type MergeFunc func(anns []Annotation) Annotation

// flatten returns every value held by anns, in order, skipping empty
// annotations.
func flatten(anns []Annotation) []string {
	var vals []string
	for _, a := range anns {
		vals = append(vals, a.values...)
	}
	return vals
}

// DefaultMerge collects all values into a set of distinct values.  The result
// is single-valued when only one distinct value remains.
func DefaultMerge(anns []Annotation) Annotation {
	return Multi(flatten(anns)...)
}

// JoinMerge returns a MergeFunc that concatenates all values, in order, with
// sep into a single value.  Duplicates are kept.
func JoinMerge(sep string) MergeFunc {
	return func(anns []Annotation) Annotation {
		vals := flatten(anns)
		switch len(vals) {
		case 0:
			return Annotation{}
		case 1:
			return Single(vals[0])
		}
		return Single(strings.Join(vals, sep))
	}
}
