package ingest

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/tsv"
)

// tsvRow is one line of a TSV source.
type tsvRow struct {
	Factor     string `tsv:"factor"`
	Start      int    `tsv:"start"`
	End        int    `tsv:"end"`
	Annotation string `tsv:"annotation"`
}

// siteRow is a line of a TSV source without the annotation column.
type siteRow struct {
	Factor string `tsv:"factor"`
	Start  int    `tsv:"start"`
	End    int    `tsv:"end"`
}

const annotationColumn = "annotation"

// hasColumn reports whether the tab-separated header line names col.
func hasColumn(header, col string) bool {
	for _, name := range strings.Split(strings.TrimRight(header, "\r\n"), "\t") {
		if name == col {
			return true
		}
	}
	return false
}

// TSVSource reads tab-separated evidence with the header
//   factor  start  end  [annotation]
// Coordinates are 0-based and closed.  The annotation column may be left out;
// an empty value means the record carries none.  The file may be gzipped.
type TSVSource struct {
	// Path is the file to read.
	Path string
	// Label is returned by Name; Path is used if it is empty.
	Label string
}

// Name implements Source.
func (s TSVSource) Name() string {
	if s.Label != "" {
		return s.Label
	}
	return s.Path
}

// Records implements Source.
func (s TSVSource) Records(ctx context.Context, fn func(Record) error) (err error) {
	reader, closeFn, err := openReader(ctx, s.Path)
	if err != nil {
		return errors.E(err, fmt.Sprintf("ingest.TSVSource: open %s", s.Path))
	}
	defer func() {
		if cerr := closeFn(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	// The header is peeked to pick the row type, then handed back to the tsv
	// reader.
	br := bufio.NewReader(reader)
	header, err := br.ReadString('\n')
	if err != nil && err != io.EOF {
		return errors.E(err, fmt.Sprintf("ingest.TSVSource: %s", s.Path))
	}
	annotated := hasColumn(header, annotationColumn)
	r := tsv.NewReader(io.MultiReader(strings.NewReader(header), br))
	r.HasHeaderRow = true
	r.UseHeaderNames = true
	for nLine := 2; ; nLine++ {
		if nLine%checkInterval == 0 {
			if err = ctx.Err(); err != nil {
				return err
			}
		}
		var rec Record
		if annotated {
			var row tsvRow
			err = r.Read(&row)
			rec = Record{Factor: row.Factor, Start: row.Start, End: row.End}
			if row.Annotation != "" {
				rec.Annotation = []string{row.Annotation}
			}
		} else {
			var row siteRow
			err = r.Read(&row)
			rec = Record{Factor: row.Factor, Start: row.Start, End: row.End}
		}
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return errors.E(errors.Invalid, err, fmt.Sprintf("ingest.TSVSource: %s:%d", s.Path, nLine))
		}
		if err = fn(rec); err != nil {
			return err
		}
	}
}
