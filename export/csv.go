package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/grailbio/rnpbind/factor"
	"github.com/grailbio/rnpbind/interval"
	"github.com/pkg/errors"
)

// CorrelationPath returns the path under dir at which the correlation matrix
// of rna, computed from the given sources at bp, is stored.
func CorrelationPath(dir, rna string, sources []string, bp interval.PosType) string {
	name := fmt.Sprintf("%s-%s-%d.csv", strings.ToLower(rna), strings.Join(sources, "-"), bp)
	return filepath.Join(dir, "csv", name)
}

// WriteCorrelationCSV writes the f-score table of c.  The first row lists the
// factor names after an empty cell; every following row starts with a factor
// name.  Each data row ends with an empty cell.
func WriteCorrelationCSV(w io.Writer, c *factor.Correlation) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{""}, c.Names...)); err != nil {
		return errors.Wrap(err, "export.WriteCorrelationCSV")
	}
	row := make([]string, len(c.Names)+2)
	for i, name := range c.Names {
		row[0] = name
		for j := range c.Names {
			row[j+1] = strconv.FormatFloat(c.FScore[i][j], 'g', -1, 64)
		}
		if err := cw.Write(row); err != nil {
			return errors.Wrap(err, "export.WriteCorrelationCSV")
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "export.WriteCorrelationCSV")
}
