// Package reg exposes the registration pipelines: CLARITY and MRI data to the Allen atlas, and
// warping of CLARITY data into atlas space.
package reg

import (
	"context"
	"flag"
	"strconv"

	"github.com/miracl/miracl/cli"
	"github.com/miracl/miracl/internal/modules/optcheck"
	"github.com/miracl/miracl/internal/pipeline"
)

// Command returns the "reg" command group.
func Command(r *pipeline.Runner) *cli.Command {
	return &cli.Command{
		Name:      "reg",
		Usage:     "miracl reg <command> [flags]",
		ShortHelp: "registration functions",
		SubCommands: []*cli.Command{
			clarAllenCommand(r),
			mriAllenCommand(r),
			warpClarCommand(r),
		},
	}
}

// ClarAllenOptions configures registration of down-sampled CLARITY data to the Allen atlas.
type ClarAllenOptions struct {
	Input      string
	Orient     string
	Hemi       string
	Resolution int
}

func (o *ClarAllenOptions) validate() error {
	if err := optcheck.Required("i", o.Input); err != nil {
		return err
	}
	if err := optcheck.Orientation("o", o.Orient); err != nil {
		return err
	}
	if err := optcheck.OneOf("m", o.Hemi, "combined", "split"); err != nil {
		return err
	}
	return optcheck.OneOf("v", strconv.Itoa(o.Resolution), "10", "25", "50")
}

func (o *ClarAllenOptions) step() pipeline.Step {
	return pipeline.Step{
		Script: "reg/miracl_reg_clar-allen.sh",
		Args: []string{
			"-i", o.Input,
			"-o", o.Orient,
			"-m", o.Hemi,
			"-v", strconv.Itoa(o.Resolution),
		},
	}
}

// RunClarAllen registers CLARITY data to the Allen atlas.
func RunClarAllen(ctx context.Context, r *pipeline.Runner, opts ClarAllenOptions) error {
	if err := opts.validate(); err != nil {
		return err
	}
	if err := optcheck.ExpandPaths(&opts.Input); err != nil {
		return err
	}
	return r.Run(ctx, opts.step())
}

func clarAllenCommand(r *pipeline.Runner) *cli.Command {
	return &cli.Command{
		Name:      "clar_allen",
		Usage:     "miracl reg clar_allen -i <nifti> [flags]",
		ShortHelp: "register down-sampled CLARITY data to the Allen atlas",
		Flags: cli.FlagsFunc(func(f *flag.FlagSet) {
			f.String("i", "", "input down-sampled CLARITY `nifti`")
			f.String("o", "ARS", "orientation code of the input")
			f.String("m", "combined", "hemisphere mirrored labels: combined or split")
			f.Int("v", 10, "atlas resolution in um: 10, 25 or 50")
		}),
		FlagsMetadata: []cli.FlagMetadata{{Name: "i", Required: true}},
		Exec: func(ctx context.Context, s *cli.State) error {
			if err := optcheck.NoArgs(s); err != nil {
				return err
			}
			return RunClarAllen(ctx, r, ClarAllenOptions{
				Input:      cli.GetFlag[string](s, "i"),
				Orient:     cli.GetFlag[string](s, "o"),
				Hemi:       cli.GetFlag[string](s, "m"),
				Resolution: cli.GetFlag[int](s, "v"),
			})
		},
	}
}

// MRIAllenOptions configures registration of in-vivo or ex-vivo MRI to the Allen atlas.
type MRIAllenOptions struct {
	Input  string
	Orient string
	// SkipBias disables N4 bias field correction.
	SkipBias bool
}

func (o *MRIAllenOptions) step() pipeline.Step {
	bias := "1"
	if o.SkipBias {
		bias = "0"
	}
	return pipeline.Step{
		Script: "reg/miracl_reg_mri-allen.sh",
		Args:   []string{"-i", o.Input, "-o", o.Orient, "-b", bias},
	}
}

// RunMRIAllen registers MRI data to the Allen atlas.
func RunMRIAllen(ctx context.Context, r *pipeline.Runner, opts MRIAllenOptions) error {
	if err := optcheck.Required("i", opts.Input); err != nil {
		return err
	}
	if err := optcheck.Orientation("o", opts.Orient); err != nil {
		return err
	}
	if err := optcheck.ExpandPaths(&opts.Input); err != nil {
		return err
	}
	return r.Run(ctx, opts.step())
}

func mriAllenCommand(r *pipeline.Runner) *cli.Command {
	return &cli.Command{
		Name:      "mri_allen",
		Usage:     "miracl reg mri_allen -i <nifti> [flags]",
		ShortHelp: "register MRI data to the Allen atlas",
		Flags: cli.FlagsFunc(func(f *flag.FlagSet) {
			f.String("i", "", "input MRI `nifti`")
			f.String("o", "RSP", "orientation code of the input")
			f.Bool("skip-bias", false, "skip N4 bias field correction")
		}),
		FlagsMetadata: []cli.FlagMetadata{{Name: "i", Required: true}},
		Exec: func(ctx context.Context, s *cli.State) error {
			if err := optcheck.NoArgs(s); err != nil {
				return err
			}
			return RunMRIAllen(ctx, r, MRIAllenOptions{
				Input:    cli.GetFlag[string](s, "i"),
				Orient:   cli.GetFlag[string](s, "o"),
				SkipBias: cli.GetFlag[bool](s, "skip-bias"),
			})
		},
	}
}

// WarpClarOptions configures warping of CLARITY derived data to Allen atlas space using the
// transforms of a previous registration.
type WarpClarOptions struct {
	RegDir string
	Input  string
	// Type is "image" for intensity data or "seg" for segmentation masks, which are warped with
	// nearest neighbour interpolation.
	Type string
}

// RunWarpClar warps CLARITY data into Allen atlas space.
func RunWarpClar(ctx context.Context, r *pipeline.Runner, opts WarpClarOptions) error {
	if err := optcheck.Required("r", opts.RegDir); err != nil {
		return err
	}
	if err := optcheck.Required("i", opts.Input); err != nil {
		return err
	}
	if err := optcheck.OneOf("t", opts.Type, "image", "seg"); err != nil {
		return err
	}
	if err := optcheck.ExpandPaths(&opts.RegDir, &opts.Input); err != nil {
		return err
	}
	return r.Run(ctx, pipeline.Step{
		Script: "reg/miracl_reg_warp_clar_data_to_allen.sh",
		Args:   []string{"-r", opts.RegDir, "-i", opts.Input, "-t", opts.Type},
	})
}

func warpClarCommand(r *pipeline.Runner) *cli.Command {
	return &cli.Command{
		Name:      "warp_clar",
		Usage:     "miracl reg warp_clar -r <dir> -i <nifti> [flags]",
		ShortHelp: "warp CLARITY data to Allen atlas space",
		Flags: cli.FlagsFunc(func(f *flag.FlagSet) {
			f.String("r", "", "registration output `directory`")
			f.String("i", "", "input `nifti` to warp")
			f.String("t", "image", "data type: image or seg")
		}),
		FlagsMetadata: []cli.FlagMetadata{
			{Name: "r", Required: true},
			{Name: "i", Required: true},
		},
		Exec: func(ctx context.Context, s *cli.State) error {
			if err := optcheck.NoArgs(s); err != nil {
				return err
			}
			return RunWarpClar(ctx, r, WarpClarOptions{
				RegDir: cli.GetFlag[string](s, "r"),
				Input:  cli.GetFlag[string](s, "i"),
				Type:   cli.GetFlag[string](s, "t"),
			})
		},
	}
}
