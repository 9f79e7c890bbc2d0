// Package ingest reads binding evidence from external files and loads it
// into factor stores.
package ingest

import (
	"context"
	"io"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/klauspost/compress/gzip"
)

// Record is one piece of evidence that a factor binds the 0-based closed
// range [Start, End].
type Record struct {
	Factor     string
	Start, End int
	// Annotation holds the optional payload columns of the record.
	Annotation []string
}

// Source produces Records.
type Source interface {
	// Name identifies the source, e.g. the database the records came from.
	Name() string
	// Records calls fn on every record in input order.  It stops at the first
	// error returned by fn, and returns it.
	Records(ctx context.Context, fn func(Record) error) error
}

// checkInterval is the number of lines read between context checks.
const checkInterval = 1024

// openReader opens path for reading, decompressing it if its extension says
// it is gzipped.  The returned function closes the file.
func openReader(ctx context.Context, path string) (io.Reader, func() error, error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() error { return in.Close(ctx) }
	reader := io.Reader(in.Reader(ctx))
	switch fileio.DetermineType(path) {
	case fileio.Gzip:
		gz, err := gzip.NewReader(reader)
		if err != nil {
			_ = closeFn()
			return nil, nil, err
		}
		reader = gz
	}
	return reader, closeFn, nil
}
