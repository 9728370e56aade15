// Package seg exposes the post-segmentation functions.
package seg

import (
	"context"
	"flag"
	"strconv"

	"github.com/miracl/miracl/cli"
	"github.com/miracl/miracl/internal/modules/optcheck"
	"github.com/miracl/miracl/internal/pipeline"
)

// Command returns the "seg" command group.
func Command(r *pipeline.Runner) *cli.Command {
	return &cli.Command{
		Name:      "seg",
		Usage:     "miracl seg <command> [flags]",
		ShortHelp: "segmentation functions",
		SubCommands: []*cli.Command{
			voxelizeCommand(r),
			featExtractCommand(r),
		},
	}
}

// VoxelizeOptions configures voxelization of a segmentation mask into an atlas resolution
// density map.
type VoxelizeOptions struct {
	Seg  string
	Down int
}

// RunVoxelize voxelizes a segmentation mask.
func RunVoxelize(ctx context.Context, r *pipeline.Runner, opts VoxelizeOptions) error {
	if err := optcheck.Required("s", opts.Seg); err != nil {
		return err
	}
	if err := optcheck.Positive("d", opts.Down); err != nil {
		return err
	}
	if err := optcheck.ExpandPaths(&opts.Seg); err != nil {
		return err
	}
	return r.Run(ctx, pipeline.Step{
		Script: "seg/miracl_seg_voxelize_parallel.py",
		Args:   []string{"-s", opts.Seg, "-d", strconv.Itoa(opts.Down)},
	})
}

func voxelizeCommand(r *pipeline.Runner) *cli.Command {
	return &cli.Command{
		Name:      "voxelize",
		Usage:     "miracl seg voxelize -s <nifti> [flags]",
		ShortHelp: "voxelize a segmentation mask to a density map",
		Flags: cli.FlagsFunc(func(f *flag.FlagSet) {
			f.String("s", "", "segmentation mask `nifti`")
			f.Int("d", 5, "down-sample ratio")
		}),
		FlagsMetadata: []cli.FlagMetadata{{Name: "s", Required: true}},
		Exec: func(ctx context.Context, s *cli.State) error {
			if err := optcheck.NoArgs(s); err != nil {
				return err
			}
			return RunVoxelize(ctx, r, VoxelizeOptions{
				Seg:  cli.GetFlag[string](s, "s"),
				Down: cli.GetFlag[int](s, "d"),
			})
		},
	}
}

// FeatExtractOptions configures extraction of per-label features from a segmentation.
type FeatExtractOptions struct {
	Seg string
	// Labels are the registered labels in native space.
	Labels string
}

// RunFeatExtract extracts segmentation features per label.
func RunFeatExtract(ctx context.Context, r *pipeline.Runner, opts FeatExtractOptions) error {
	if err := optcheck.Required("s", opts.Seg); err != nil {
		return err
	}
	if err := optcheck.Required("l", opts.Labels); err != nil {
		return err
	}
	if err := optcheck.ExpandPaths(&opts.Seg, &opts.Labels); err != nil {
		return err
	}
	return r.Run(ctx, pipeline.Step{
		Script: "seg/miracl_seg_feat_extract.py",
		Args:   []string{"-s", opts.Seg, "-l", opts.Labels},
	})
}

func featExtractCommand(r *pipeline.Runner) *cli.Command {
	return &cli.Command{
		Name:      "feat_extract",
		Usage:     "miracl seg feat_extract -s <nifti> -l <nifti>",
		ShortHelp: "extract segmentation features per label",
		Flags: cli.FlagsFunc(func(f *flag.FlagSet) {
			f.String("s", "", "segmentation mask `nifti`")
			f.String("l", "", "registered labels `nifti`")
		}),
		FlagsMetadata: []cli.FlagMetadata{
			{Name: "s", Required: true},
			{Name: "l", Required: true},
		},
		Exec: func(ctx context.Context, s *cli.State) error {
			if err := optcheck.NoArgs(s); err != nil {
				return err
			}
			return RunFeatExtract(ctx, r, FeatExtractOptions{
				Seg:    cli.GetFlag[string](s, "s"),
				Labels: cli.GetFlag[string](s, "l"),
			})
		},
	}
}
