// Package connect exposes the connectivity functions.
package connect

import (
	"context"
	"flag"
	"strconv"

	"github.com/miracl/miracl/cli"
	"github.com/miracl/miracl/internal/modules/optcheck"
	"github.com/miracl/miracl/internal/pipeline"
)

// Command returns the "connect" command group.
func Command(r *pipeline.Runner) *cli.Command {
	return &cli.Command{
		Name:      "connect",
		Usage:     "miracl connect <command> [flags]",
		ShortHelp: "connect functions",
		SubCommands: []*cli.Command{
			roiMatCommand(r),
		},
	}
}

// ROIMatOptions configures generation of a connectivity matrix and connectogram from Allen
// atlas projection data.
type ROIMatOptions struct {
	// Label is the seed label abbreviation, e.g. "CP".
	Label string
	// Projections is the number of strongest target regions kept.
	Projections int
}

// RunROIMat builds the connectivity matrix of a seed label.
func RunROIMat(ctx context.Context, r *pipeline.Runner, opts ROIMatOptions) error {
	if err := optcheck.Required("l", opts.Label); err != nil {
		return err
	}
	if err := optcheck.Positive("n", opts.Projections); err != nil {
		return err
	}
	return r.Run(ctx, pipeline.Step{
		Script: "connect/miracl_connect_ROI_matrix_connectogram.py",
		Args:   []string{"-l", opts.Label, "-n", strconv.Itoa(opts.Projections)},
	})
}

func roiMatCommand(r *pipeline.Runner) *cli.Command {
	return &cli.Command{
		Name:      "roi_mat",
		Usage:     "miracl connect roi_mat -l <label> [flags]",
		ShortHelp: "build a connectivity matrix and connectogram for a label",
		Flags: cli.FlagsFunc(func(f *flag.FlagSet) {
			f.String("l", "", "seed `label` abbreviation")
			f.Int("n", 5, "number of target regions")
		}),
		FlagsMetadata: []cli.FlagMetadata{{Name: "l", Required: true}},
		Exec: func(ctx context.Context, s *cli.State) error {
			if err := optcheck.NoArgs(s); err != nil {
				return err
			}
			return RunROIMat(ctx, r, ROIMatOptions{
				Label:       cli.GetFlag[string](s, "l"),
				Projections: cli.GetFlag[int](s, "n"),
			})
		},
	}
}
