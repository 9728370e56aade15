// Package lbls exposes the label manipulation functions.
package lbls

import (
	"context"
	"flag"
	"strconv"

	"github.com/miracl/miracl/cli"
	"github.com/miracl/miracl/internal/modules/optcheck"
	"github.com/miracl/miracl/internal/pipeline"
)

// Command returns the "lbls" command group.
func Command(r *pipeline.Runner) *cli.Command {
	return &cli.Command{
		Name:      "lbls",
		Usage:     "miracl lbls <command> [flags]",
		ShortHelp: "Label manipulation functions",
		SubCommands: []*cli.Command{
			statsCommand(r),
			graphInfoCommand(r),
		},
	}
}

// StatsOptions configures computation of intensity statistics per label.
type StatsOptions struct {
	Input  string
	Labels string
	Out    string
	// Metric is the per-label summary: mean, median or sum.
	Metric string
}

// RunStats computes label statistics.
func RunStats(ctx context.Context, r *pipeline.Runner, opts StatsOptions) error {
	if err := optcheck.Required("i", opts.Input); err != nil {
		return err
	}
	if err := optcheck.Required("l", opts.Labels); err != nil {
		return err
	}
	if err := optcheck.Required("o", opts.Out); err != nil {
		return err
	}
	if err := optcheck.OneOf("m", opts.Metric, "mean", "median", "sum"); err != nil {
		return err
	}
	if err := optcheck.ExpandPaths(&opts.Input, &opts.Labels, &opts.Out); err != nil {
		return err
	}
	return r.Run(ctx, pipeline.Step{
		Script: "lbls/miracl_lbls_stats.py",
		Args:   []string{"-i", opts.Input, "-l", opts.Labels, "-o", opts.Out, "-m", opts.Metric},
	})
}

func statsCommand(r *pipeline.Runner) *cli.Command {
	return &cli.Command{
		Name:      "stats",
		Usage:     "miracl lbls stats -i <nifti> -l <nifti> [flags]",
		ShortHelp: "compute intensity statistics per label",
		Flags: cli.FlagsFunc(func(f *flag.FlagSet) {
			f.String("i", "", "input image `nifti`")
			f.String("l", "", "labels `nifti` in the image space")
			f.String("o", "label_stats.csv", "output `csv`")
			f.String("m", "mean", "statistic: mean, median or sum")
		}),
		FlagsMetadata: []cli.FlagMetadata{
			{Name: "i", Required: true},
			{Name: "l", Required: true},
		},
		Exec: func(ctx context.Context, s *cli.State) error {
			if err := optcheck.NoArgs(s); err != nil {
				return err
			}
			return RunStats(ctx, r, StatsOptions{
				Input:  cli.GetFlag[string](s, "i"),
				Labels: cli.GetFlag[string](s, "l"),
				Out:    cli.GetFlag[string](s, "o"),
				Metric: cli.GetFlag[string](s, "m"),
			})
		},
	}
}

// GraphInfoOptions selects the Allen label whose hierarchy information is printed.
type GraphInfoOptions struct {
	LabelID int
}

// RunGraphInfo prints the parent, children and depth of a label in the atlas ontology.
func RunGraphInfo(ctx context.Context, r *pipeline.Runner, opts GraphInfoOptions) error {
	if err := optcheck.Positive("l", opts.LabelID); err != nil {
		return err
	}
	return r.Run(ctx, pipeline.Step{
		Script: "lbls/miracl_lbls_get_graph_info.py",
		Args:   []string{"-l", strconv.Itoa(opts.LabelID)},
	})
}

func graphInfoCommand(r *pipeline.Runner) *cli.Command {
	return &cli.Command{
		Name:      "graph_info",
		Usage:     "miracl lbls graph_info -l <id>",
		ShortHelp: "print the atlas hierarchy of a label",
		Flags: cli.FlagsFunc(func(f *flag.FlagSet) {
			f.Int("l", 0, "Allen label `id`")
		}),
		FlagsMetadata: []cli.FlagMetadata{{Name: "l", Required: true}},
		Exec: func(ctx context.Context, s *cli.State) error {
			if err := optcheck.NoArgs(s); err != nil {
				return err
			}
			return RunGraphInfo(ctx, r, GraphInfoOptions{LabelID: cli.GetFlag[int](s, "l")})
		},
	}
}
