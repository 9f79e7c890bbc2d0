package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/grailbio/base/tsv"
	"github.com/grailbio/rnpbind/interval"
	"github.com/pkg/errors"
)

// WIGOpts controls WriteWIG.
type WIGOpts struct {
	// Chrom is the chromosome the set lies on; see ChromName.
	Chrom string
	// Displacement is the 0-based chromosome position of coordinate 0.
	Displacement int
	// Name and Description are added to the track line when nonempty.
	Name, Description string
	// Header writes the track line.
	Header bool
	// Length is the number of positions written.  A value <= 0 writes up to
	// the largest end coordinate of set.
	Length int
}

// WriteWIG writes the depth of set as a fixedStep wiggle track, one value per
// position.  Pass factor.Store.SumOverAll to write the combined depth of a
// store.
func WriteWIG(w io.Writer, set interval.Set, opts WIGOpts) error {
	length := opts.Length
	if length <= 0 {
		length = interval.InferLength
	}
	depth, err := set.Depth(length)
	if err != nil {
		return err
	}
	tw := tsv.NewWriter(w)
	if opts.Header {
		var b strings.Builder
		b.WriteString("track type=wiggle_0 ")
		if opts.Name != "" {
			fmt.Fprintf(&b, "name=%q ", opts.Name)
		}
		if opts.Description != "" {
			fmt.Fprintf(&b, "description=%q ", opts.Description)
		}
		b.WriteString("visibility=full")
		tw.WriteString(b.String())
		if err := tw.EndLine(); err != nil {
			return errors.Wrap(err, "export.WriteWIG")
		}
	}
	// Wiggle positions are 1-based.
	tw.WriteString(fmt.Sprintf("fixedStep chrom=%s start=%d step=1", ChromName(opts.Chrom), opts.Displacement+1))
	if err := tw.EndLine(); err != nil {
		return errors.Wrap(err, "export.WriteWIG")
	}
	for _, d := range depth {
		tw.WriteUint32(uint32(d))
		if err := tw.EndLine(); err != nil {
			return errors.Wrap(err, "export.WriteWIG")
		}
	}
	return errors.Wrap(tw.Flush(), "export.WriteWIG")
}
