// Package flow exposes the end-to-end workflows, which chain conversion, registration,
// segmentation and tractography scripts for a whole CLARITY dataset.
package flow

import (
	"context"
	"flag"
	"strconv"

	"github.com/miracl/miracl/cli"
	"github.com/miracl/miracl/internal/modules/optcheck"
	"github.com/miracl/miracl/internal/pipeline"
)

// Command returns the "flow" command group.
func Command(r *pipeline.Runner) *cli.Command {
	return &cli.Command{
		Name:      "flow",
		Usage:     "miracl flow <command> [flags]",
		ShortHelp: "workflows to run",
		SubCommands: []*cli.Command{
			regClarCommand(r),
			segCommand(r),
			staCommand(r),
		},
	}
}

// RegClarOptions configures the whole-brain CLARITY registration workflow: tiff conversion
// followed by registration to the Allen atlas.
type RegClarOptions struct {
	// Folder holds the raw tiff stack.
	Folder     string
	Down       int
	Orient     string
	Hemi       string
	Resolution int
}

// RunRegClar runs the CLARITY to Allen registration workflow.
func RunRegClar(ctx context.Context, r *pipeline.Runner, opts RegClarOptions) error {
	if err := optcheck.Required("f", opts.Folder); err != nil {
		return err
	}
	if err := optcheck.Positive("d", opts.Down); err != nil {
		return err
	}
	if err := optcheck.Orientation("o", opts.Orient); err != nil {
		return err
	}
	if err := optcheck.OneOf("m", opts.Hemi, "combined", "split"); err != nil {
		return err
	}
	if err := optcheck.OneOf("v", strconv.Itoa(opts.Resolution), "10", "25", "50"); err != nil {
		return err
	}
	if err := optcheck.ExpandPaths(&opts.Folder); err != nil {
		return err
	}
	return r.Run(ctx, pipeline.Step{
		Script: "flow/miracl_workflow_registration_clarity-allen_wb.sh",
		Args: []string{
			"-f", opts.Folder,
			"-d", strconv.Itoa(opts.Down),
			"-o", opts.Orient,
			"-m", opts.Hemi,
			"-v", strconv.Itoa(opts.Resolution),
		},
	})
}

func regClarCommand(r *pipeline.Runner) *cli.Command {
	return &cli.Command{
		Name:      "reg_clar",
		Usage:     "miracl flow reg_clar -f <dir> [flags]",
		ShortHelp: "convert and register CLARITY data to the Allen atlas",
		Flags: cli.FlagsFunc(func(f *flag.FlagSet) {
			f.String("f", "", "input CLARITY tiff `folder`")
			f.Int("d", 5, "down-sample ratio")
			f.String("o", "ARS", "orientation code of the input")
			f.String("m", "combined", "hemisphere mirrored labels: combined or split")
			f.Int("v", 10, "atlas resolution in um: 10, 25 or 50")
		}),
		FlagsMetadata: []cli.FlagMetadata{{Name: "f", Required: true}},
		Exec: func(ctx context.Context, s *cli.State) error {
			if err := optcheck.NoArgs(s); err != nil {
				return err
			}
			return RunRegClar(ctx, r, RegClarOptions{
				Folder:     cli.GetFlag[string](s, "f"),
				Down:       cli.GetFlag[int](s, "d"),
				Orient:     cli.GetFlag[string](s, "o"),
				Hemi:       cli.GetFlag[string](s, "m"),
				Resolution: cli.GetFlag[int](s, "v"),
			})
		},
	}
}

// SegOptions configures the CLARITY segmentation workflow.
type SegOptions struct {
	Folder string
	// Type is the kind of signal to segment.
	Type string
	// Channel restricts segmentation to tiff files whose name contains it. Optional.
	Channel string
}

// RunSeg runs the segmentation workflow.
func RunSeg(ctx context.Context, r *pipeline.Runner, opts SegOptions) error {
	if err := optcheck.Required("f", opts.Folder); err != nil {
		return err
	}
	if err := optcheck.OneOf("t", opts.Type, "virus", "cFos", "sparse", "nuclear"); err != nil {
		return err
	}
	if err := optcheck.ExpandPaths(&opts.Folder); err != nil {
		return err
	}
	args := []string{"-f", opts.Folder, "-t", opts.Type}
	if opts.Channel != "" {
		args = append(args, "-p", opts.Channel)
	}
	return r.Run(ctx, pipeline.Step{
		Script: "flow/miracl_workflow_segmentation_clarity.sh",
		Args:   args,
	})
}

func segCommand(r *pipeline.Runner) *cli.Command {
	return &cli.Command{
		Name:      "seg",
		Usage:     "miracl flow seg -f <dir> -t <type> [flags]",
		ShortHelp: "segment CLARITY data and summarize it per label",
		Flags: cli.FlagsFunc(func(f *flag.FlagSet) {
			f.String("f", "", "input CLARITY tiff `folder`")
			f.String("t", "", "segmentation type: virus, cFos, sparse or nuclear")
			f.String("p", "", "channel prefix of the tiff files")
		}),
		FlagsMetadata: []cli.FlagMetadata{
			{Name: "f", Required: true},
			{Name: "t", Required: true},
		},
		Exec: func(ctx context.Context, s *cli.State) error {
			if err := optcheck.NoArgs(s); err != nil {
				return err
			}
			return RunSeg(ctx, r, SegOptions{
				Folder:  cli.GetFlag[string](s, "f"),
				Type:    cli.GetFlag[string](s, "t"),
				Channel: cli.GetFlag[string](s, "p"),
			})
		},
	}
}

// STAOptions configures the structure tensor analysis workflow, run on registered data.
type STAOptions struct {
	Folder string
	// RegDir is the output directory of a previous registration.
	RegDir     string
	Label      string
	Derivative float64
	Gaussian   float64
	Angle      float64
}

// RunSTA runs the structure tensor analysis workflow.
func RunSTA(ctx context.Context, r *pipeline.Runner, opts STAOptions) error {
	if err := optcheck.Required("f", opts.Folder); err != nil {
		return err
	}
	if err := optcheck.Required("r", opts.RegDir); err != nil {
		return err
	}
	if err := optcheck.Required("n", opts.Label); err != nil {
		return err
	}
	if err := optcheck.Positive("g", opts.Derivative); err != nil {
		return err
	}
	if err := optcheck.Positive("k", opts.Gaussian); err != nil {
		return err
	}
	if err := optcheck.Positive("a", opts.Angle); err != nil {
		return err
	}
	if err := optcheck.ExpandPaths(&opts.Folder, &opts.RegDir); err != nil {
		return err
	}
	return r.Run(ctx, pipeline.Step{
		Script: "flow/miracl_workflow_sta.sh",
		Args: []string{
			"-f", opts.Folder,
			"-r", opts.RegDir,
			"-n", opts.Label,
			"-g", formatFloat(opts.Derivative),
			"-k", formatFloat(opts.Gaussian),
			"-a", formatFloat(opts.Angle),
		},
	})
}

func staCommand(r *pipeline.Runner) *cli.Command {
	return &cli.Command{
		Name:      "sta",
		Usage:     "miracl flow sta -f <dir> -r <dir> -n <label> [flags]",
		ShortHelp: "run structure tensor analysis seeded in a label",
		Flags: cli.FlagsFunc(func(f *flag.FlagSet) {
			f.String("f", "", "input CLARITY tiff `folder`")
			f.String("r", "", "registration output `directory`")
			f.String("n", "", "seed label abbreviation, e.g. CP")
			f.Float64("g", 1.5, "derivative of gaussian sigma")
			f.Float64("k", 2, "gaussian smoothing sigma")
			f.Float64("a", 25, "tracking angle threshold in degrees")
		}),
		FlagsMetadata: []cli.FlagMetadata{
			{Name: "f", Required: true},
			{Name: "r", Required: true},
			{Name: "n", Required: true},
		},
		Exec: func(ctx context.Context, s *cli.State) error {
			if err := optcheck.NoArgs(s); err != nil {
				return err
			}
			return RunSTA(ctx, r, STAOptions{
				Folder:     cli.GetFlag[string](s, "f"),
				RegDir:     cli.GetFlag[string](s, "r"),
				Label:      cli.GetFlag[string](s, "n"),
				Derivative: cli.GetFlag[float64](s, "g"),
				Gaussian:   cli.GetFlag[float64](s, "k"),
				Angle:      cli.GetFlag[float64](s, "a"),
			})
		},
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
