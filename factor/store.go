// Package factor keys interval sets by binding-factor name and derives
// cross-factor proximity scores from them.
package factor

import (
	"fmt"
	"sort"
	"strings"

	"github.com/antzucaro/matchr"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/rnpbind/interval"
)

const (
	// maxSuggestions bounds the number of close names reported by Get.
	maxSuggestions = 3
	// minSimilarity is the smallest Jaro-Winkler similarity for a name to be
	// suggested.
	minSimilarity = 0.6
)

// Store holds the interval sets of every factor observed on one reference
// sequence.  Names are case-insensitive and surrounding whitespace is ignored.
//
// A Store is not safe for concurrent mutation.  Once all writes are done,
// reads may run concurrently, except for SelfAnalysis and the Lookup methods,
// which fill the correlation cache.
type Store struct {
	sets        map[string]interval.Set
	merge       interval.MergeFunc
	synonym     func(string) string
	parallelism int

	// corr caches the last SelfAnalysis result.  versions records the Version
	// of every member when it was computed.
	corr     *Correlation
	versions map[string]uint64
}

// Opt configures a Store.
type Opt func(*Store)

// WithMerge sets the MergeFunc used by Add when a new MergedSet is created,
// and by CollapseAll when none is given.
func WithMerge(merge interval.MergeFunc) Opt {
	return func(s *Store) { s.merge = merge }
}

// WithSynonyms sets a function mapping alternative factor names to the name
// used as the key.  It is consulted by lookups that miss.
func WithSynonyms(fn func(name string) string) Opt {
	return func(s *Store) { s.synonym = fn }
}

// WithParallelism sets the number of goroutines used by SelfAnalysis.
func WithParallelism(n int) Opt {
	return func(s *Store) { s.parallelism = n }
}

// New creates an empty Store.
func New(opts ...Opt) *Store {
	s := &Store{sets: map[string]interval.Set{}, parallelism: 1}
	for _, opt := range opts {
		opt(s)
	}
	if s.parallelism < 1 {
		s.parallelism = 1
	}
	return s
}

// derive returns an empty Store sharing the options of s.
func (s *Store) derive() *Store {
	return &Store{
		sets:        map[string]interval.Set{},
		merge:       s.merge,
		synonym:     s.synonym,
		parallelism: s.parallelism,
	}
}

// Normalize returns the key under which name is stored.
func Normalize(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// Reset drops the cached correlation tables.
func (s *Store) Reset() {
	s.corr = nil
	s.versions = nil
}

// Set stores set under name, replacing any previous set.
func (s *Store) Set(name string, set interval.Set) {
	s.sets[Normalize(name)] = set
	s.Reset()
}

// Add appends iv to the set of name, creating a RawSet on first sight.
func (s *Store) Add(name string, iv interval.Interval) error {
	key := Normalize(name)
	set, ok := s.sets[key]
	if !ok {
		set = &interval.RawSet{}
		s.sets[key] = set
	}
	if err := set.Add(iv); err != nil {
		return err
	}
	s.Reset()
	return nil
}

// Delete removes the set of name.
func (s *Store) Delete(name string) error {
	key, err := s.resolve("factor.Delete", name)
	if err != nil {
		return err
	}
	delete(s.sets, key)
	s.Reset()
	return nil
}

// resolve returns the key of name, trying the synonym function when name is
// not stored.  A miss yields a NotFound error listing similar names.
func (s *Store) resolve(op, name string) (string, error) {
	key := Normalize(name)
	if _, ok := s.sets[key]; ok {
		return key, nil
	}
	if s.synonym != nil {
		if alt := Normalize(s.synonym(name)); alt != "" {
			if _, ok := s.sets[alt]; ok {
				return alt, nil
			}
		}
	}
	msg := fmt.Sprintf("%s: factor %q not found", op, key)
	if close := s.suggest(key); len(close) > 0 {
		msg += fmt.Sprintf("; did you mean %s?", strings.Join(close, ", "))
	}
	return "", errors.E(interval.KindNotFound, msg)
}

// suggest returns up to maxSuggestions stored names close to key, the
// closest first.
func (s *Store) suggest(key string) []string {
	type candidate struct {
		name  string
		score float64
	}
	var cands []candidate
	for name := range s.sets {
		if score := matchr.JaroWinkler(key, name, false); score >= minSimilarity {
			cands = append(cands, candidate{name, score})
		}
	}
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].score != cands[j].score {
			return cands[i].score > cands[j].score
		}
		return cands[i].name < cands[j].name
	})
	if len(cands) > maxSuggestions {
		cands = cands[:maxSuggestions]
	}
	names := make([]string, len(cands))
	for i, c := range cands {
		names[i] = c.name
	}
	return names
}

// Get returns the set of name.
func (s *Store) Get(name string) (interval.Set, error) {
	key, err := s.resolve("factor.Get", name)
	if err != nil {
		return nil, err
	}
	return s.sets[key], nil
}

// Merged returns the set of name, which must have been collapsed or built in
// merged mode.
func (s *Store) Merged(name string) (*interval.MergedSet, error) {
	set, err := s.Get(name)
	if err != nil {
		return nil, err
	}
	return interval.AsMerged(set, fmt.Sprintf("factor.Merged(%s)", Normalize(name)))
}

// Subset returns a Store holding only the given factors.  The sets are shared,
// not copied.
func (s *Store) Subset(names ...string) (*Store, error) {
	out := s.derive()
	for _, name := range names {
		key, err := s.resolve("factor.Subset", name)
		if err != nil {
			return nil, err
		}
		out.sets[key] = s.sets[key]
	}
	return out, nil
}

// Len returns the number of factors.
func (s *Store) Len() int { return len(s.sets) }

// Names returns the factor names in sorted order.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.sets))
	for name := range s.sets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Do calls fn for every factor in name order, stopping early when fn returns
// true.  It returns true if it stopped early.
func (s *Store) Do(fn func(name string, set interval.Set) (done bool)) bool {
	for _, name := range s.Names() {
		if fn(name, s.sets[name]) {
			return true
		}
	}
	return false
}

// Summary returns the number of factors and the total number of intervals
// across them.
func (s *Store) Summary() (factors, sites int) {
	for _, set := range s.sets {
		sites += set.Len()
	}
	return len(s.sets), sites
}

// CollapseAll replaces every raw member by the result of its Collapse.
// Merged members are left alone.  A nil merge selects the store's default.
func (s *Store) CollapseAll(mode interval.CollapseMode, threshold float64, merge interval.MergeFunc) error {
	if merge == nil {
		merge = s.merge
	}
	for _, name := range s.Names() {
		raw, ok := s.sets[name].(*interval.RawSet)
		if !ok {
			continue
		}
		merged, err := raw.Collapse(mode, threshold, merge)
		if err != nil {
			return errors.E(err, fmt.Sprintf("factor.CollapseAll: %s", name))
		}
		s.sets[name] = merged
	}
	s.Reset()
	return nil
}

// MaxBaseCover returns the largest BaseCover among the members, or 0 for an
// empty store.
func (s *Store) MaxBaseCover() int {
	max := 0
	for _, set := range s.sets {
		if n := set.BaseCover(); n > max {
			max = n
		}
	}
	return max
}

func (s *Store) String() string {
	factors, sites := s.Summary()
	var b strings.Builder
	fmt.Fprintf(&b, "Store with %d factors and %d sites", factors, sites)
	s.Do(func(name string, set interval.Set) bool {
		fmt.Fprintf(&b, "\n%s: %v", name, set)
		return false
	})
	return b.String()
}
