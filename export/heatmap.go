package export

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/rnpbind/factor"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"v.io/x/lib/vlog"
)

// heatColors is the number of palette steps of a heat map.
const heatColors = 64

// cellSize is the size of one factor row or column in a heat map.
const cellSize = 0.6 * vg.Centimeter

// corrGrid adapts the f-score table of a Correlation to plotter.GridXYZ.
type corrGrid struct {
	c *factor.Correlation
}

func (g corrGrid) Dims() (c, r int)   { return len(g.c.Names), len(g.c.Names) }
func (g corrGrid) Z(c, r int) float64 { return g.c.FScore[r][c] }
func (g corrGrid) X(c int) float64    { return float64(c) }
func (g corrGrid) Y(r int) float64    { return float64(r) }

// scoreRange returns the smallest and largest f-score of c.
func scoreRange(c *factor.Correlation) (min, max float64) {
	all := make([]float64, 0, len(c.Names)*len(c.Names))
	for _, row := range c.FScore {
		all = append(all, row...)
	}
	return floats.Min(all), floats.Max(all)
}

// HeatMap returns a plot of the f-score table of c.
func HeatMap(c *factor.Correlation, title string) (*plot.Plot, error) {
	if len(c.Names) == 0 {
		return nil, errors.New("export.HeatMap: empty correlation table")
	}
	p := plot.New()
	p.Title.Text = title
	h := plotter.NewHeatMap(corrGrid{c}, palette.Heat(heatColors, 1))
	h.Min, h.Max = scoreRange(c)
	if h.Min == h.Max {
		// A flat table still needs a nonempty color range.
		h.Min = h.Max - 1
	}
	p.Add(h)
	p.NominalX(c.Names...)
	p.NominalY(c.Names...)
	p.X.Tick.Label.Rotation = 1.2
	return p, nil
}

// WriteHeatMap saves the heat map of c to path.  The format is taken from the
// extension, e.g. ".png" or ".svg".
func WriteHeatMap(ctx context.Context, path string, c *factor.Correlation, title string) (err error) {
	p, err := HeatMap(c, title)
	if err != nil {
		return err
	}
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	side := vg.Length(len(c.Names)+4) * cellSize
	wt, err := p.WriterTo(side, side, format)
	if err != nil {
		return errors.Wrapf(err, "export.WriteHeatMap %s", path)
	}
	out, err := file.Create(ctx, path)
	if err != nil {
		return errors.Wrapf(err, "export.WriteHeatMap %s", path)
	}
	defer file.CloseAndReport(ctx, out, &err)
	if _, err = wt.WriteTo(out.Writer(ctx)); err != nil {
		return errors.Wrapf(err, "export.WriteHeatMap %s", path)
	}
	vlog.VI(1).Infof("export: wrote %dx%d heat map to %s", len(c.Names), len(c.Names), path)
	return nil
}
