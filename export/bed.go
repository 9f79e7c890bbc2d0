package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/grailbio/base/tsv"
	"github.com/grailbio/rnpbind/factor"
	"github.com/grailbio/rnpbind/interval"
	"github.com/pkg/errors"
)

// maxHeaderNames is the number of factor names quoted in a BED track line.
const maxHeaderNames = 3

// BEDOpts controls WriteBED.
type BEDOpts struct {
	// Chrom is the chromosome the sites lie on.  "chr" is prepended unless
	// already present.
	Chrom string
	// Displacement is added to every coordinate, placing the sites on the
	// chromosome.
	Displacement int
	// HalfOpen writes end+1 in the end column, the usual BED convention.
	// Otherwise the closed end coordinate is written.
	HalfOpen bool
	// Header writes a track line first.
	Header bool
	// Color adds the score, strand, thick start/end and itemRgb columns.
	Color bool
	// Columns, if set, converts an annotation into extra trailing columns.
	Columns func(interval.Annotation) []string
}

// ChromName returns chrom with a "chr" prefix.
func ChromName(chrom string) string {
	if strings.HasPrefix(chrom, "chr") {
		return chrom
	}
	return "chr" + chrom
}

// WriteBED writes one BED line per site of every factor of store, factors in
// name order.  Every member must be merged.
func WriteBED(w io.Writer, store *factor.Store, opts BEDOpts) error {
	tw := tsv.NewWriter(w)
	chrom := ChromName(opts.Chrom)
	if opts.Header {
		names := store.Names()
		if len(names) > maxHeaderNames {
			names = names[:maxHeaderNames]
		}
		header := fmt.Sprintf("track name=%q description=\"A list of binding sites of various RBPs, including %s\"",
			strings.Join(names, "-"), strings.Join(names, ","))
		if opts.Color {
			header += ` itemRgb="On"`
		}
		tw.WriteString(header)
		if err := tw.EndLine(); err != nil {
			return errors.Wrap(err, "export.WriteBED")
		}
	}
	var err error
	store.Do(func(name string, set interval.Set) bool {
		var m *interval.MergedSet
		if m, err = interval.AsMerged(set, "export.WriteBED("+name+")"); err != nil {
			return true
		}
		m.Do(func(iv interval.Interval) bool {
			start := opts.Displacement + int(iv.Start)
			end := opts.Displacement + int(iv.End)
			if opts.HalfOpen {
				end++
			}
			tw.WriteString(chrom)
			tw.WriteString(strconv.Itoa(start))
			tw.WriteString(strconv.Itoa(end))
			tw.WriteString(name)
			if opts.Color {
				tw.WriteString("1000")
				tw.WriteString("+")
				tw.WriteString(strconv.Itoa(start))
				tw.WriteString(strconv.Itoa(end))
				tw.WriteString("0,0,0")
			}
			if opts.Columns != nil {
				for _, col := range opts.Columns(iv.Annotation) {
					if col == "" {
						col = "."
					}
					tw.WriteString(strings.Replace(col, " ", "_", -1))
				}
			}
			err = tw.EndLine()
			return err != nil
		})
		return err != nil
	})
	if err != nil {
		return err
	}
	return errors.Wrap(tw.Flush(), "export.WriteBED")
}
