// Package export writes factor stores and correlation tables in the text
// formats consumed by genome browsers and spreadsheets.
package export

import (
	"context"
	"io"

	"github.com/grailbio/base/file"
	"github.com/grailbio/hts/bgzf"
	"github.com/pkg/errors"
	"v.io/x/lib/vlog"
)

// Output is a file opened for writing, optionally bgzf-compressed.
type Output struct {
	ctx  context.Context
	path string
	f    file.File
	bgz  *bgzf.Writer
	w    io.Writer
}

// Create opens path for writing.  If bgzip is set, the content is
// bgzf-compressed with the given number of goroutines.
func Create(ctx context.Context, path string, bgzip bool, parallelism int) (*Output, error) {
	f, err := file.Create(ctx, path)
	if err != nil {
		return nil, errors.Wrapf(err, "export.Create %s", path)
	}
	o := &Output{ctx: ctx, path: path, f: f, w: f.Writer(ctx)}
	if bgzip {
		if parallelism < 1 {
			parallelism = 1
		}
		o.bgz = bgzf.NewWriter(o.w, parallelism)
		o.w = o.bgz
	}
	vlog.VI(1).Infof("export: writing %s (bgzip=%v)", path, bgzip)
	return o, nil
}

// Write implements io.Writer.
func (o *Output) Write(p []byte) (int, error) { return o.w.Write(p) }

// Close flushes the compressor, if any, and closes the file.  The first
// error encountered is returned.
func (o *Output) Close() error {
	var err error
	if o.bgz != nil {
		if e := o.bgz.Close(); e != nil {
			err = errors.Wrapf(e, "export: bgzf close %s", o.path)
		}
	}
	if e := o.f.Close(o.ctx); e != nil && err == nil {
		err = errors.Wrapf(e, "export: close %s", o.path)
	}
	return err
}
