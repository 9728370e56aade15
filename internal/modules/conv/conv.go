// Package conv exposes the image format conversions between tiff stacks and nifti volumes.
package conv

import (
	"context"
	"flag"
	"strconv"

	"github.com/miracl/miracl/cli"
	"github.com/miracl/miracl/internal/modules/optcheck"
	"github.com/miracl/miracl/internal/pipeline"
)

// Command returns the "conv" command group.
func Command(r *pipeline.Runner) *cli.Command {
	return &cli.Command{
		Name:      "conv",
		Usage:     "miracl conv <command> [flags]",
		ShortHelp: "conv functions",
		SubCommands: []*cli.Command{
			tiffNiiCommand(r),
			niiTiffCommand(r),
		},
	}
}

// TiffNiiOptions configures conversion of a CLARITY tiff stack to a down-sampled nifti volume.
type TiffNiiOptions struct {
	Folder string
	// Out is the output file name, without extension.
	Out  string
	Down int
	// ChannelNum selects the channel when the tiff files hold several.
	ChannelNum    int
	ChannelPrefix string
	// ResXY and ResZ are the voxel sizes in um.
	ResXY, ResZ float64
}

func (o *TiffNiiOptions) validate() error {
	if err := optcheck.Required("f", o.Folder); err != nil {
		return err
	}
	if err := optcheck.Required("o", o.Out); err != nil {
		return err
	}
	if err := optcheck.Positive("d", o.Down); err != nil {
		return err
	}
	if o.ChannelNum < 0 {
		return cli.UsageErrorf("-cn must not be negative, got %d", o.ChannelNum)
	}
	if err := optcheck.Positive("vx", o.ResXY); err != nil {
		return err
	}
	return optcheck.Positive("vz", o.ResZ)
}

func (o *TiffNiiOptions) step() pipeline.Step {
	args := []string{
		"-f", o.Folder,
		"-o", o.Out,
		"-d", strconv.Itoa(o.Down),
		"-cn", strconv.Itoa(o.ChannelNum),
	}
	if o.ChannelPrefix != "" {
		args = append(args, "-cp", o.ChannelPrefix)
	}
	args = append(args,
		"-vx", strconv.FormatFloat(o.ResXY, 'g', -1, 64),
		"-vz", strconv.FormatFloat(o.ResZ, 'g', -1, 64),
	)
	return pipeline.Step{Script: "conv/miracl_conv_convertTIFFtoNII.py", Args: args}
}

// RunTiffNii converts a tiff stack to nifti.
func RunTiffNii(ctx context.Context, r *pipeline.Runner, opts TiffNiiOptions) error {
	if err := opts.validate(); err != nil {
		return err
	}
	if err := optcheck.ExpandPaths(&opts.Folder); err != nil {
		return err
	}
	return r.Run(ctx, opts.step())
}

func tiffNiiCommand(r *pipeline.Runner) *cli.Command {
	return &cli.Command{
		Name:      "tiff_nii",
		Usage:     "miracl conv tiff_nii -f <dir> [flags]",
		ShortHelp: "convert a tiff stack to a down-sampled nifti",
		Flags: cli.FlagsFunc(func(f *flag.FlagSet) {
			f.String("f", "", "input tiff `folder`")
			f.String("o", "clarity", "output nifti `name`")
			f.Int("d", 5, "down-sample ratio")
			f.Int("cn", 0, "channel number")
			f.String("cp", "", "channel `prefix` of the tiff files")
			f.Float64("vx", 5, "in-plane voxel size in um")
			f.Float64("vz", 5, "z voxel size in um")
		}),
		FlagsMetadata: []cli.FlagMetadata{{Name: "f", Required: true}},
		Exec: func(ctx context.Context, s *cli.State) error {
			if err := optcheck.NoArgs(s); err != nil {
				return err
			}
			return RunTiffNii(ctx, r, TiffNiiOptions{
				Folder:        cli.GetFlag[string](s, "f"),
				Out:           cli.GetFlag[string](s, "o"),
				Down:          cli.GetFlag[int](s, "d"),
				ChannelNum:    cli.GetFlag[int](s, "cn"),
				ChannelPrefix: cli.GetFlag[string](s, "cp"),
				ResXY:         cli.GetFlag[float64](s, "vx"),
				ResZ:          cli.GetFlag[float64](s, "vz"),
			})
		},
	}
}

// NiiTiffOptions configures conversion of a nifti volume to a tiff stack.
type NiiTiffOptions struct {
	Input string
	// OutDir receives one tiff per slice.
	OutDir string
}

// RunNiiTiff converts a nifti volume to a tiff stack.
func RunNiiTiff(ctx context.Context, r *pipeline.Runner, opts NiiTiffOptions) error {
	if err := optcheck.Required("i", opts.Input); err != nil {
		return err
	}
	if err := optcheck.Required("o", opts.OutDir); err != nil {
		return err
	}
	if err := optcheck.ExpandPaths(&opts.Input, &opts.OutDir); err != nil {
		return err
	}
	return r.Run(ctx, pipeline.Step{
		Script: "conv/miracl_conv_convertNIItoTIFF.py",
		Args:   []string{"-i", opts.Input, "-o", opts.OutDir},
	})
}

func niiTiffCommand(r *pipeline.Runner) *cli.Command {
	return &cli.Command{
		Name:      "nii_tiff",
		Usage:     "miracl conv nii_tiff -i <nifti> [flags]",
		ShortHelp: "convert a nifti to a tiff stack",
		Flags: cli.FlagsFunc(func(f *flag.FlagSet) {
			f.String("i", "", "input `nifti`")
			f.String("o", "tiff", "output `directory`")
		}),
		FlagsMetadata: []cli.FlagMetadata{{Name: "i", Required: true}},
		Exec: func(ctx context.Context, s *cli.State) error {
			if err := optcheck.NoArgs(s); err != nil {
				return err
			}
			return RunNiiTiff(ctx, r, NiiTiffOptions{
				Input:  cli.GetFlag[string](s, "i"),
				OutDir: cli.GetFlag[string](s, "o"),
			})
		},
	}
}
