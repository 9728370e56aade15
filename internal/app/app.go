// Package app wires the miracl command line: it resolves the installation, loads the
// configuration, registers the sub-tools and dispatches to the selected one.
package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/miracl/miracl/cli"
	"github.com/miracl/miracl/internal/config"
	"github.com/miracl/miracl/internal/home"
	"github.com/miracl/miracl/internal/logging"
	"github.com/miracl/miracl/internal/modules/connect"
	"github.com/miracl/miracl/internal/modules/conv"
	"github.com/miracl/miracl/internal/modules/flow"
	"github.com/miracl/miracl/internal/modules/lbls"
	"github.com/miracl/miracl/internal/modules/reg"
	"github.com/miracl/miracl/internal/modules/seg"
	"github.com/miracl/miracl/internal/modules/sta"
	"github.com/miracl/miracl/internal/modules/utils"
	"github.com/miracl/miracl/internal/pipeline"
)

// Exit codes. A pipeline script that fails with an exit status passes that status through
// instead of ExitError.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

const (
	rootName      = "miracl"
	rootUsage     = "miracl <command> [flags]"
	rootShortHelp = "MIRACL: Multi-modal Image Registration And Connectivity anaLysis"
)

// NewRegistry registers every sub-tool against r.
func NewRegistry(r *pipeline.Runner) *cli.Registry {
	registry := cli.NewRegistry()
	registry.MustRegister(
		flow.Command(r),
		reg.Command(r),
		seg.Command(r),
		sta.Command(r),
		connect.Command(r),
		conv.Command(r),
		lbls.Command(r),
		utils.Command(r),
	)
	return registry
}

// NewRoot returns the root command over the registered sub-tools.
func NewRoot(registry *cli.Registry) *cli.Command {
	return registry.Root(rootName, rootUsage, rootShortHelp)
}

// Dispatch parses args against root, runs the selected command and maps the outcome to an exit
// code. Help exits with ExitOK, usage errors with ExitUsage.
func Dispatch(ctx context.Context, root *cli.Command, args []string, stdio *cli.RunOptions) int {
	stdio = withDefaults(stdio)
	if code, ok := parse(root, args, stdio); !ok {
		return code
	}
	return run(ctx, root, stdio)
}

// parse reports false with the exit code when args do not select a runnable command.
func parse(root *cli.Command, args []string, stdio *cli.RunOptions) (int, bool) {
	err := cli.Parse(root, args)
	switch {
	case err == nil:
		return ExitOK, true
	case errors.Is(err, flag.ErrHelp):
		fmt.Fprintln(stdio.Stdout, cli.DefaultUsage(root))
		return ExitOK, false
	case cli.IsUsage(err):
		fmt.Fprintln(stdio.Stderr, cli.DefaultUsage(root))
	}
	return exitCode(err, stdio.Stderr), false
}

func run(ctx context.Context, root *cli.Command, stdio *cli.RunOptions) int {
	err := cli.Run(ctx, root, stdio)
	if cli.IsUsage(err) {
		fmt.Fprintln(stdio.Stderr, cli.DefaultUsage(root))
	}
	return exitCode(err, stdio.Stderr)
}

func exitCode(err error, stderr io.Writer) int {
	if err == nil {
		return ExitOK
	}
	fmt.Fprintf(stderr, "error: %v\n", err)
	if cli.IsUsage(err) {
		return ExitUsage
	}
	if code, ok := pipeline.ExitCode(err); ok && code != 0 {
		return code
	}
	return ExitError
}

func withDefaults(stdio *cli.RunOptions) *cli.RunOptions {
	opts := &cli.RunOptions{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
	if stdio == nil {
		return opts
	}
	if stdio.Stdin != nil {
		opts.Stdin = stdio.Stdin
	}
	if stdio.Stdout != nil {
		opts.Stdout = stdio.Stdout
	}
	if stdio.Stderr != nil {
		opts.Stderr = stdio.Stderr
	}
	return opts
}

// Options configures [Main].
type Options struct {
	Stdin          io.Reader
	Stdout, Stderr io.Writer
	// HomeDir overrides the installation directory, which is otherwise derived from the
	// running executable.
	HomeDir string
	// ConfigFile is an explicit config file. Empty means searching the default locations.
	ConfigFile string
}

// Main runs the miracl command line and returns the process exit code. MIRACL_HOME is
// published before any command is parsed, so every sub-tool and pipeline script sees it.
// Configuration and logging are set up only once args select a command to run, so help and
// usage errors do not depend on them.
func Main(ctx context.Context, args []string, opts *Options) int {
	if opts == nil {
		opts = &Options{}
	}
	stdio := withDefaults(&cli.RunOptions{Stdin: opts.Stdin, Stdout: opts.Stdout, Stderr: opts.Stderr})

	h, err := resolveHome(opts.HomeDir)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "error: %v\n", err)
		return ExitError
	}

	// Commands read the runner when they execute, after it is configured below.
	runner := &pipeline.Runner{
		Home:   h,
		Stdin:  stdio.Stdin,
		Stdout: stdio.Stdout,
		Stderr: stdio.Stderr,
	}
	root := NewRoot(NewRegistry(runner))
	if code, ok := parse(root, args, stdio); !ok {
		return code
	}

	cfg, err := config.Load(h.Dir, opts.ConfigFile)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "error: %v\n", err)
		return ExitError
	}
	logger, err := logging.New(cfg.Log, stdio.Stderr)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "error: %v\n", err)
		return ExitError
	}
	defer func() { _ = logger.Sync() }()
	logger.Debug("starting",
		zap.String(home.EnvVar, h.Dir),
		zap.Bool("dry_run", cfg.DryRun),
		zap.Strings("args", args),
	)

	runner.Python = cfg.Python
	runner.DryRun = cfg.DryRun
	runner.Logger = logger
	return run(ctx, root, stdio)
}

func resolveHome(dir string) (*home.Home, error) {
	var (
		h   *home.Home
		err error
	)
	if dir != "" {
		h, err = home.FromDir(dir)
	} else {
		h, err = home.Resolve()
	}
	if err != nil {
		return nil, err
	}
	if err := h.Publish(); err != nil {
		return nil, err
	}
	return h, nil
}
