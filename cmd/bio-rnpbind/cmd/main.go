package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/base/vcontext"
	"v.io/x/lib/cmdline"
)

const sourcesHelp = `Evidence is read from the files given with -tsv and -bed.  Each file is
loaded into its own set of factors and collapsed separately, under its base
name without extensions ("-2", "-3" ... are appended to repeated names).

TSV files have the header "factor start end annotation" with 0-based closed
coordinates; the annotation column is optional.  BED files carry the factor
name in the fourth column; columns after it become the annotation.  Gzipped
files are accepted.`

// addCommonFlags registers the flags shared by every subcommand.
func addCommonFlags(cmd *cmdline.Command) *commonFlags {
	f := &commonFlags{}
	cmd.Flags.StringVar(&f.tsv, "tsv", "", "Comma-separated list of TSV evidence files")
	cmd.Flags.StringVar(&f.bed, "bed", "", "Comma-separated list of BED evidence files")
	cmd.Flags.BoolVar(&f.oneBased, "one-based", false, "Interpret BED coordinates as one-based [start, end]")
	cmd.Flags.StringVar(&f.config, "config", "", "Settings file (YAML, JSON or TOML); RNPBIND_* environment variables override it")
	return f
}

func newCmdCorrelate(ctx context.Context) *cmdline.Command {
	cmd := &cmdline.Command{
		Name:  "correlate",
		Short: "Write the pairwise correlation matrix of every source",
		Long: `Correlate computes, for every pair of factors, how close their binding sites
lie, and writes the f-score matrix of each source as CSV under <out-dir>/csv.
Pairs scoring above the display threshold are printed.

` + sourcesHelp,
	}
	common := addCommonFlags(cmd)
	rna := cmd.Flags.String("rna", "rna", "Name of the RNA, used in output file names")
	heatMap := cmd.Flags.Bool("heatmap", false, "Also write a PNG heat map next to each CSV file")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 0 {
			return fmt.Errorf("correlate takes no arguments, but got %v", argv)
		}
		return correlate(ctx, env, common, *rna, *heatMap)
	})
	return cmd
}

func newCmdBED(ctx context.Context) *cmdline.Command {
	cmd := &cmdline.Command{
		Name:  "bed",
		Short: "Write the collapsed binding sites as BED",
		Long:  "Bed writes one line per collapsed binding site of every factor.\n\n" + sourcesHelp,
	}
	common := addCommonFlags(cmd)
	flags := bedFlags{
		out:      cmd.Flags.String("out", "", "Output path; standard output if empty"),
		header:   cmd.Flags.Bool("header", false, "Write a track line first"),
		halfOpen: cmd.Flags.Bool("half-open", false, "Write end+1 in the end column"),
		color:    cmd.Flags.Bool("color", false, "Add the score, strand, thick and itemRgb columns"),
		columns:  cmd.Flags.Bool("annotation", false, "Add the annotation columns"),
	}
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 0 {
			return fmt.Errorf("bed takes no arguments, but got %v", argv)
		}
		return writeBED(ctx, env, common, flags)
	})
	return cmd
}

func newCmdWIG(ctx context.Context) *cmdline.Command {
	cmd := &cmdline.Command{
		Name:  "wig",
		Short: "Write the combined binding depth of all factors as a wiggle track",
		Long:  "Wig writes, per position, the number of binding sites of any factor covering it.\n\n" + sourcesHelp,
	}
	common := addCommonFlags(cmd)
	flags := wigFlags{
		out:         cmd.Flags.String("out", "", "Output path; standard output if empty"),
		name:        cmd.Flags.String("name", "", "Track name"),
		description: cmd.Flags.String("description", "", "Track description"),
		header:      cmd.Flags.Bool("header", true, "Write a track line first"),
		length:      cmd.Flags.Int("length", 0, "Number of positions to write; inferred from the sites if 0"),
	}
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 0 {
			return fmt.Errorf("wig takes no arguments, but got %v", argv)
		}
		return writeWIG(ctx, env, common, flags)
	})
	return cmd
}

func newCmdNear(ctx context.Context) *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "near",
		Short:    "List the factors binding within the base stringency of a region",
		ArgsName: "region",
		ArgsLong: "region is 'chr:start-end', 'chr:pos' or 'chr', 1-based and closed, in RNA coordinates.",
		Long:     "Near lists every factor with a site near the region, and the sites concerned.\n\n" + sourcesHelp,
	}
	common := addCommonFlags(cmd)
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 1 {
			return fmt.Errorf("near takes one region argument, but got %v", argv)
		}
		return near(ctx, env, common, argv[0])
	})
	return cmd
}

func newCmdSummary(ctx context.Context) *cmdline.Command {
	cmd := &cmdline.Command{
		Name:  "summary",
		Short: "Print the number of factors and sites of every source",
		Long:  sourcesHelp,
	}
	common := addCommonFlags(cmd)
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 0 {
			return fmt.Errorf("summary takes no arguments, but got %v", argv)
		}
		return summary(ctx, env, common)
	})
	return cmd
}

func newRoot(ctx context.Context) *cmdline.Command {
	return &cmdline.Command{
		Name:     "bio-rnpbind",
		Short:    "Tools for analysing RNA-binding factor sites",
		LookPath: false,
		Children: []*cmdline.Command{
			newCmdCorrelate(ctx),
			newCmdBED(ctx),
			newCmdWIG(ctx),
			newCmdNear(ctx),
			newCmdSummary(ctx),
		},
	}
}

// Run runs the command line tool.
func Run() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile)
	cmdline.HideGlobalFlagsExcept()
	cmdline.Main(newRoot(vcontext.Background()))
}
