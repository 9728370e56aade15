// Package utils exposes the utility functions. It owns its flag schema; no other module's
// options apply here.
package utils

import (
	"context"
	"flag"
	"strconv"

	"github.com/miracl/miracl/cli"
	"github.com/miracl/miracl/internal/modules/optcheck"
	"github.com/miracl/miracl/internal/pipeline"
)

// Command returns the "utils" command group.
func Command(r *pipeline.Runner) *cli.Command {
	return &cli.Command{
		Name:      "utils",
		Usage:     "miracl utils <command> [flags]",
		ShortHelp: "Utils functions",
		SubCommands: []*cli.Command{
			intCorrCommand(r),
		},
	}
}

// IntCorrOptions configures intensity correction of a tiff stack.
type IntCorrOptions struct {
	Folder string
	OutDir string
	// Power is the exponent applied to the estimated bias field.
	Power float64
}

// RunIntCorr corrects intensity inhomogeneity in a tiff stack.
func RunIntCorr(ctx context.Context, r *pipeline.Runner, opts IntCorrOptions) error {
	if err := optcheck.Required("f", opts.Folder); err != nil {
		return err
	}
	if err := optcheck.Required("o", opts.OutDir); err != nil {
		return err
	}
	if err := optcheck.Positive("p", opts.Power); err != nil {
		return err
	}
	if err := optcheck.ExpandPaths(&opts.Folder, &opts.OutDir); err != nil {
		return err
	}
	return r.Run(ctx, pipeline.Step{
		Script: "utilfn/miracl_utilfn_int_corr.py",
		Args: []string{
			"-f", opts.Folder,
			"-o", opts.OutDir,
			"-p", strconv.FormatFloat(opts.Power, 'g', -1, 64),
		},
	})
}

func intCorrCommand(r *pipeline.Runner) *cli.Command {
	return &cli.Command{
		Name:      "int_corr",
		Usage:     "miracl utils int_corr -f <dir> [flags]",
		ShortHelp: "correct intensity inhomogeneity of a tiff stack",
		Flags: cli.FlagsFunc(func(f *flag.FlagSet) {
			f.String("f", "", "input tiff `folder`")
			f.String("o", "int_corr_tiffs", "output `directory`")
			f.Float64("p", 1, "bias field power")
		}),
		FlagsMetadata: []cli.FlagMetadata{{Name: "f", Required: true}},
		Exec: func(ctx context.Context, s *cli.State) error {
			if err := optcheck.NoArgs(s); err != nil {
				return err
			}
			return RunIntCorr(ctx, r, IntCorrOptions{
				Folder: cli.GetFlag[string](s, "f"),
				OutDir: cli.GetFlag[string](s, "o"),
				Power:  cli.GetFlag[float64](s, "p"),
			})
		},
	}
}
