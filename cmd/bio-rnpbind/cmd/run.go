package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/rnpbind/config"
	"github.com/grailbio/rnpbind/export"
	"github.com/grailbio/rnpbind/factor"
	"github.com/grailbio/rnpbind/ingest"
	"github.com/grailbio/rnpbind/interval"
	"v.io/x/lib/cmdline"
)

type commonFlags struct {
	tsv, bed string
	oneBased bool
	config   string
}

type bedFlags struct {
	out                              *string
	header, halfOpen, color, columns *bool
}

type wigFlags struct {
	out, name, description *string
	header                 *bool
	length                 *int
}

// loaded is the result of reading every source.
type loaded struct {
	cfg   config.Analysis
	names []string
	// stores is keyed by source name.
	stores map[string]*factor.Store
}

func splitList(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// sourceName labels a source file by its base name without extensions.
func sourceName(path string) string {
	name := filepath.Base(path)
	if i := strings.IndexByte(name, '.'); i > 0 {
		name = name[:i]
	}
	return name
}

// labeler returns a function that names sources with sourceName, adding a
// numeric suffix to names already handed out.
func labeler() func(path string) string {
	used := map[string]bool{}
	return func(path string) string {
		base := sourceName(path)
		name := base
		for i := 2; used[name]; i++ {
			name = fmt.Sprintf("%s-%d", base, i)
		}
		used[name] = true
		return name
	}
}

// load reads the settings and every source named by the flags.
func load(ctx context.Context, f *commonFlags) (*loaded, error) {
	cfg, err := config.Load(f.config)
	if err != nil {
		return nil, err
	}
	var (
		sources []ingest.Source
		label   = labeler()
	)
	for _, path := range splitList(f.tsv) {
		sources = append(sources, ingest.TSVSource{Path: path, Label: label(path)})
	}
	for _, path := range splitList(f.bed) {
		sources = append(sources, ingest.BEDSource{Path: path, Label: label(path), OneBased: f.oneBased})
	}
	if len(sources) == 0 {
		return nil, errors.E(errors.Invalid, "no evidence files; use -tsv or -bed")
	}
	opts, err := cfg.IngestOpts()
	if err != nil {
		return nil, err
	}
	stores, err := ingest.Load(ctx, sources, opts)
	if err != nil {
		return nil, err
	}
	l := &loaded{cfg: cfg, stores: stores}
	for _, src := range sources {
		l.names = append(l.names, src.Name())
	}
	return l, nil
}

// withOutput calls fn with the file at path, or with stdout if path is empty.
func withOutput(ctx context.Context, env *cmdline.Env, path string, cfg config.Analysis, fn func(w io.Writer) error) error {
	if path == "" {
		return fn(env.Stdout)
	}
	out, err := export.Create(ctx, path, cfg.Bgzip, cfg.Parallelism)
	if err != nil {
		return err
	}
	err = fn(out)
	if cerr := out.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

func correlate(ctx context.Context, env *cmdline.Env, f *commonFlags, rna string, heatMap bool) error {
	l, err := load(ctx, f)
	if err != nil {
		return err
	}
	bp := l.cfg.Stringency()
	for _, name := range l.names {
		c, err := l.stores[name].SelfAnalysis(bp)
		if err != nil {
			return err
		}
		path := export.CorrelationPath(l.cfg.OutDir, rna, []string{name}, bp)
		if err := writeCSV(ctx, path, c); err != nil {
			return err
		}
		log.Printf("%s: correlation matrix written to %s", name, path)
		if heatMap {
			png := strings.TrimSuffix(path, ".csv") + ".png"
			if err := export.WriteHeatMap(ctx, png, c, fmt.Sprintf("%s %s (%dbp)", rna, name, bp)); err != nil {
				return err
			}
		}
		for _, p := range c.Ranked {
			// Only distinct factors; self pairs always score 1.
			if p.A < p.B && p.Score < 1 && p.Score > l.cfg.DisplayThreshold {
				fmt.Fprintf(env.Stdout, "%s\t%s\t%s\t%.4f\n", name, p.A, p.B, p.Score)
			}
		}
	}
	return nil
}

// ensureDir creates the parent directory of a local path.
func ensureDir(path string) error {
	if scheme, _, err := file.ParsePath(path); err != nil || scheme != "" {
		return err
	}
	return os.MkdirAll(filepath.Dir(path), 0777)
}

func writeCSV(ctx context.Context, path string, c *factor.Correlation) (err error) {
	if err = ensureDir(path); err != nil {
		return err
	}
	out, err := file.Create(ctx, path)
	if err != nil {
		return err
	}
	defer file.CloseAndReport(ctx, out, &err)
	return export.WriteCorrelationCSV(out.Writer(ctx), c)
}

func writeBED(ctx context.Context, env *cmdline.Env, f *commonFlags, flags bedFlags) error {
	l, err := load(ctx, f)
	if err != nil {
		return err
	}
	opts := export.BEDOpts{
		Chrom:        l.cfg.Chrom,
		Displacement: l.cfg.Displacement,
		HalfOpen:     *flags.halfOpen,
		Header:       *flags.header,
		Color:        *flags.color,
	}
	if *flags.columns {
		ingestOpts, err := l.cfg.IngestOpts()
		if err != nil {
			return err
		}
		opts.Columns = func(a interval.Annotation) []string {
			var cols []string
			for _, v := range a.Values() {
				cols = append(cols, ingest.AnnotationColumns(v, ingestOpts, "______")...)
			}
			return cols
		}
	}
	return withOutput(ctx, env, *flags.out, l.cfg, func(w io.Writer) error {
		for _, name := range l.names {
			if err := export.WriteBED(w, l.stores[name], opts); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeWIG(ctx context.Context, env *cmdline.Env, f *commonFlags, flags wigFlags) error {
	l, err := load(ctx, f)
	if err != nil {
		return err
	}
	all := &interval.RawSet{}
	for _, name := range l.names {
		for _, iv := range l.stores[name].SumOverAll().Intervals() {
			// Keep identical sites reported by several sources apart.
			iv.Annotation = interval.Multi(append(iv.Annotation.Values(), name)...)
			if err := all.Add(iv); err != nil {
				return err
			}
		}
	}
	opts := export.WIGOpts{
		Chrom:        l.cfg.Chrom,
		Displacement: l.cfg.Displacement,
		Name:         *flags.name,
		Description:  *flags.description,
		Header:       *flags.header,
		Length:       *flags.length,
	}
	return withOutput(ctx, env, *flags.out, l.cfg, func(w io.Writer) error {
		return export.WriteWIG(w, all, opts)
	})
}

func near(ctx context.Context, env *cmdline.Env, f *commonFlags, regionStr string) error {
	region, err := interval.ParseRegion(regionStr)
	if err != nil {
		return err
	}
	l, err := load(ctx, f)
	if err != nil {
		return err
	}
	bp := l.cfg.Stringency()
	for _, name := range l.names {
		found, err := l.stores[name].AllSitesIn(region.Interval(), bp)
		if err != nil {
			return err
		}
		found.Do(func(factorName string, set interval.Set) bool {
			for _, iv := range set.Intervals() {
				fmt.Fprintf(env.Stdout, "%s\t%s\t%d\t%d\n", name, factorName, iv.Start, iv.End)
			}
			return false
		})
	}
	return nil
}

func summary(ctx context.Context, env *cmdline.Env, f *commonFlags) error {
	l, err := load(ctx, f)
	if err != nil {
		return err
	}
	for _, name := range l.names {
		factors, sites := l.stores[name].Summary()
		fmt.Fprintf(env.Stdout, "%s\t%d factors\t%d sites\n", name, factors, sites)
	}
	return nil
}
