// Package sta exposes structure tensor analysis.
package sta

import (
	"context"
	"flag"
	"strconv"

	"github.com/miracl/miracl/cli"
	"github.com/miracl/miracl/internal/modules/optcheck"
	"github.com/miracl/miracl/internal/pipeline"
)

// Command returns the "sta" command group.
func Command(r *pipeline.Runner) *cli.Command {
	return &cli.Command{
		Name:      "sta",
		Usage:     "miracl sta <command> [flags]",
		ShortHelp: "STA functions",
		SubCommands: []*cli.Command{
			trackTensorCommand(r),
		},
	}
}

// TrackTensorOptions configures tractography along the primary eigenvector of the structure
// tensor.
type TrackTensorOptions struct {
	Input string
	// Seed and Brain are the seed and brain mask niftis.
	Seed, Brain string
	Derivative  float64
	Gaussian    float64
	Angle       float64
	OutDir      string
}

// RunTrackTensor computes the structure tensor and tracks fibers from the seed mask.
func RunTrackTensor(ctx context.Context, r *pipeline.Runner, opts TrackTensorOptions) error {
	for _, req := range []struct{ flag, value string }{
		{"i", opts.Input},
		{"s", opts.Seed},
		{"b", opts.Brain},
		{"o", opts.OutDir},
	} {
		if err := optcheck.Required(req.flag, req.value); err != nil {
			return err
		}
	}
	for _, pos := range []struct {
		flag  string
		value float64
	}{
		{"g", opts.Derivative},
		{"k", opts.Gaussian},
		{"a", opts.Angle},
	} {
		if err := optcheck.Positive(pos.flag, pos.value); err != nil {
			return err
		}
	}
	if err := optcheck.ExpandPaths(&opts.Input, &opts.Seed, &opts.Brain, &opts.OutDir); err != nil {
		return err
	}
	return r.Run(ctx, pipeline.Step{
		Script: "sta/miracl_sta_track_primary_eigen.sh",
		Args: []string{
			"-i", opts.Input,
			"-s", opts.Seed,
			"-b", opts.Brain,
			"-g", formatFloat(opts.Derivative),
			"-k", formatFloat(opts.Gaussian),
			"-a", formatFloat(opts.Angle),
			"-o", opts.OutDir,
		},
	})
}

func trackTensorCommand(r *pipeline.Runner) *cli.Command {
	return &cli.Command{
		Name:      "track_tensor",
		Usage:     "miracl sta track_tensor -i <nifti> -s <nifti> -b <nifti> [flags]",
		ShortHelp: "track fibers along the primary structure tensor eigenvector",
		Flags: cli.FlagsFunc(func(f *flag.FlagSet) {
			f.String("i", "", "input CLARITY `nifti`")
			f.String("s", "", "seed mask `nifti`")
			f.String("b", "", "brain mask `nifti`")
			f.Float64("g", 1.5, "derivative of gaussian sigma")
			f.Float64("k", 2, "gaussian smoothing sigma")
			f.Float64("a", 25, "tracking angle threshold in degrees")
			f.String("o", "sta", "output `directory`")
		}),
		FlagsMetadata: []cli.FlagMetadata{
			{Name: "i", Required: true},
			{Name: "s", Required: true},
			{Name: "b", Required: true},
		},
		Exec: func(ctx context.Context, s *cli.State) error {
			if err := optcheck.NoArgs(s); err != nil {
				return err
			}
			return RunTrackTensor(ctx, r, TrackTensorOptions{
				Input:      cli.GetFlag[string](s, "i"),
				Seed:       cli.GetFlag[string](s, "s"),
				Brain:      cli.GetFlag[string](s, "b"),
				Derivative: cli.GetFlag[float64](s, "g"),
				Gaussian:   cli.GetFlag[float64](s, "k"),
				Angle:      cli.GetFlag[float64](s, "a"),
				OutDir:     cli.GetFlag[string](s, "o"),
			})
		},
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
