package ingest

import (
	"context"
	"fmt"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/rnpbind/factor"
	"github.com/grailbio/rnpbind/interval"
)

// Default delimiters used to pack annotation columns and rows into a single
// annotation value.
const (
	DefaultColumnDelimiter = ",,,,,"
	DefaultRowDelimiter    = ";;;;;"
)

// Opts controls Load.
type Opts struct {
	// Mode selects how raw evidence is collapsed.  The zero value is
	// interval.BaseCoverNumber.
	Mode interval.CollapseMode
	// CoverageRatio scales the largest per-factor base cover of a source into
	// the number of bases each factor may keep.  It is only used by
	// interval.BaseCoverNumber.
	CoverageRatio float64
	// Threshold is passed to RawSet.Collapse by the other modes.
	Threshold float64
	// ColumnDelimiter joins the annotation columns of one record.
	ColumnDelimiter string
	// RowDelimiter joins the annotations of records merged by the collapse.
	RowDelimiter string
	// Synonyms, if set, maps alternative factor names to the stored name.
	Synonyms func(string) string
	// Parallelism is passed to every store, see factor.WithParallelism.
	Parallelism int
}

// DefaultOpts keeps all the evidence.
var DefaultOpts = Opts{
	CoverageRatio:   1,
	ColumnDelimiter: DefaultColumnDelimiter,
	RowDelimiter:    DefaultRowDelimiter,
	Parallelism:     1,
}

// Load reads every source into its own factor.Store, keyed by the source name.
// The records of each factor are accumulated as raw evidence, then collapsed.
// With interval.BaseCoverNumber each factor may keep CoverageRatio times the
// largest base cover seen among the factors of the source.  Two sources with
// the same name are an Invalid error.
func Load(ctx context.Context, sources []Source, opts Opts) (map[string]*factor.Store, error) {
	stores := make(map[string]*factor.Store, len(sources))
	for i, src := range sources {
		if _, ok := stores[src.Name()]; ok {
			return nil, errors.E(errors.Invalid, fmt.Sprintf("ingest.Load: duplicate source name %q", src.Name()))
		}
		log.Printf("%d/%d. Loading binding sites from %s", i+1, len(sources), src.Name())
		store, err := loadOne(ctx, src, opts)
		if err != nil {
			return nil, err
		}
		stores[src.Name()] = store
		factors, sites := store.Summary()
		log.Printf("%s: %d factor(s), %d site(s) after collapse", src.Name(), factors, sites)
	}
	return stores, nil
}

func loadOne(ctx context.Context, src Source, opts Opts) (*factor.Store, error) {
	merge := interval.JoinMerge(opts.RowDelimiter)
	storeOpts := []factor.Opt{factor.WithMerge(merge), factor.WithParallelism(opts.Parallelism)}
	if opts.Synonyms != nil {
		storeOpts = append(storeOpts, factor.WithSynonyms(opts.Synonyms))
	}
	store := factor.New(storeOpts...)
	n := 0
	err := src.Records(ctx, func(rec Record) error {
		n++
		iv, err := recordInterval(rec, opts.ColumnDelimiter)
		if err != nil {
			return errors.E(err, fmt.Sprintf("ingest.Load: %s: record %d (%s)", src.Name(), n, rec.Factor))
		}
		name := rec.Factor
		if opts.Synonyms != nil {
			name = opts.Synonyms(name)
		}
		return store.Add(name, iv)
	})
	if err != nil {
		return nil, err
	}
	log.Debug.Printf("%s: %d record(s) read", src.Name(), n)
	if store.Len() == 0 {
		return store, nil
	}
	threshold := opts.Threshold
	if opts.Mode == interval.BaseCoverNumber {
		threshold = opts.CoverageRatio * float64(store.MaxBaseCover())
	}
	log.Debug.Printf("%s: collapsing with %v, threshold %v", src.Name(), opts.Mode, threshold)
	if err := store.CollapseAll(opts.Mode, threshold, merge); err != nil {
		return nil, errors.E(err, fmt.Sprintf("ingest.Load: %s", src.Name()))
	}
	return store, nil
}

func recordInterval(rec Record, columnDelimiter string) (interval.Interval, error) {
	if strings.TrimSpace(rec.Factor) == "" {
		return interval.Interval{}, errors.E(errors.Invalid, "empty factor name")
	}
	// Checked before narrowing to PosType, which would wrap.
	if rec.Start < 0 || rec.End < rec.Start || rec.End >= interval.PosTypeMax {
		return interval.Interval{}, errors.E(interval.KindInvalidInterval,
			fmt.Sprintf("invalid coordinates [%d, %d]", rec.Start, rec.End))
	}
	return interval.New(interval.PosType(rec.Start), interval.PosType(rec.End), strings.Join(rec.Annotation, columnDelimiter))
}

// AnnotationColumns splits an annotation built by Load back into columns.
// Duplicate rows are dropped; column j joins the j-th value of every remaining
// row with sep.
func AnnotationColumns(ann string, opts Opts, sep string) []string {
	if ann == "" {
		return nil
	}
	var (
		seen = map[string]bool{}
		rows [][]string
	)
	for _, row := range strings.Split(ann, opts.RowDelimiter) {
		if seen[row] {
			continue
		}
		seen[row] = true
		rows = append(rows, strings.Split(row, opts.ColumnDelimiter))
	}
	cols := make([]string, len(rows[0]))
	for j := range cols {
		vals := make([]string, 0, len(rows))
		for _, row := range rows {
			if j < len(row) {
				vals = append(vals, row[j])
			}
		}
		cols[j] = strings.Join(vals, sep)
	}
	return cols
}
