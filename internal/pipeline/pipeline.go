// Package pipeline runs the shell and python pipeline scripts shipped below the miracl
// installation directory.
//
// Shell scripts are interpreted in-process with mvdan.cc/sh; python scripts are started through
// the same interpreter as "<python> <script> <args>". Every script sees MIRACL_HOME and a
// MIRACL_RUN_ID identifying the invocation in the logs.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/mitchellh/go-homedir"
	"go.uber.org/zap"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"github.com/miracl/miracl/internal/home"
)

// RunIDEnvVar identifies one pipeline invocation.
const RunIDEnvVar = "MIRACL_RUN_ID"

var (
	// ErrScriptNotFound is returned when a step's script is not installed.
	ErrScriptNotFound = errors.New("pipeline script not found")
	// ErrUnsupportedScript is returned for scripts that are neither shell nor python.
	ErrUnsupportedScript = errors.New("unsupported pipeline script")
)

// Step is one pipeline script invocation.
type Step struct {
	// Script is the script path relative to the installation directory, e.g.
	// "reg/miracl_reg_mri-allen.sh".
	Script string
	// Args are passed to the script verbatim.
	Args []string
	// Dir is the working directory. Empty means the current directory.
	Dir string
}

// Runner executes pipeline steps. It carries everything a command needs besides its own options:
// the installation directory, the shared settings and the logger.
type Runner struct {
	Home *home.Home
	// Python is the interpreter for .py scripts.
	Python string
	// DryRun prints each step instead of running it, as the equivalent command line: "bash
	// <script> <args>" for shell scripts, which otherwise run in the embedded interpreter, and
	// "<python> <script> <args>" for python scripts.
	DryRun bool
	Logger *zap.Logger

	Stdin          io.Reader
	Stdout, Stderr io.Writer
}

// Run executes step and returns once the script exits. A script exiting with a non-zero status
// yields an error from which [ExitCode] recovers the status.
func (r *Runner) Run(ctx context.Context, step Step) error {
	script := r.Home.Path(filepath.FromSlash(step.Script))
	runID := uuid.NewString()
	logger := r.logger().With(
		zap.String("run_id", runID),
		zap.String("script", step.Script),
	)

	argv, err := r.argv(script, step.Args)
	if err != nil {
		return err
	}
	line, err := quoteLine(argv)
	if err != nil {
		return err
	}

	_, statErr := os.Stat(script)
	if r.DryRun {
		if statErr != nil {
			logger.Warn("pipeline script not installed", zap.Error(statErr))
		}
		_, err := fmt.Fprintln(r.stdout(), line)
		return err
	}
	if statErr != nil {
		return fmt.Errorf("%w: %s", ErrScriptNotFound, script)
	}

	var prog *syntax.File
	if filepath.Ext(script) == ".sh" {
		f, err := os.Open(script)
		if err != nil {
			return fmt.Errorf("open %s: %w", script, err)
		}
		defer f.Close()
		prog, err = syntax.NewParser().Parse(f, script)
		if err != nil {
			return fmt.Errorf("parse %s: %w", step.Script, err)
		}
	} else {
		prog, err = syntax.NewParser().Parse(strings.NewReader(line), step.Script)
		if err != nil {
			return fmt.Errorf("parse command line: %w", err)
		}
	}

	opts := []interp.RunnerOption{
		interp.Env(expand.ListEnviron(r.environ(runID)...)),
		interp.StdIO(r.Stdin, r.stdout(), r.stderr()),
	}
	if step.Dir != "" {
		opts = append(opts, interp.Dir(step.Dir))
	}
	if filepath.Ext(script) == ".sh" {
		// "--" keeps arguments such as "-i" from being taken as shell options.
		opts = append(opts, interp.Params(append([]string{"--"}, step.Args...)...))
	}
	runner, err := interp.New(opts...)
	if err != nil {
		return fmt.Errorf("create interpreter: %w", err)
	}

	logger.Info("running pipeline", zap.Strings("args", step.Args))
	if err := runner.Run(ctx, prog); err != nil {
		logger.Error("pipeline failed", zap.Error(err))
		return fmt.Errorf("%s: %w", step.Script, err)
	}
	logger.Info("pipeline finished")
	return nil
}

// ExitCode returns the exit status carried by err, if a script exited with one.
func ExitCode(err error) (int, bool) {
	if status, ok := interp.IsExitStatus(err); ok {
		return int(status), true
	}
	return 0, false
}

// ExpandPath expands a leading ~ in a user supplied path.
func ExpandPath(path string) (string, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf("expand %q: %w", path, err)
	}
	return expanded, nil
}

func (r *Runner) argv(script string, args []string) ([]string, error) {
	switch filepath.Ext(script) {
	case ".sh":
		return append([]string{"bash", script}, args...), nil
	case ".py":
		return append([]string{r.Python, script}, args...), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScript, script)
	}
}

func (r *Runner) environ(runID string) []string {
	env := os.Environ()
	return append(env, home.EnvVar+"="+r.Home.Dir, RunIDEnvVar+"="+runID)
}

func (r *Runner) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

func (r *Runner) stdout() io.Writer {
	if r.Stdout == nil {
		return os.Stdout
	}
	return r.Stdout
}

func (r *Runner) stderr() io.Writer {
	if r.Stderr == nil {
		return os.Stderr
	}
	return r.Stderr
}

// quoteLine renders argv as a bash command line.
func quoteLine(argv []string) (string, error) {
	quoted := make([]string, len(argv))
	for i, a := range argv {
		q, err := syntax.Quote(a, syntax.LangBash)
		if err != nil {
			return "", fmt.Errorf("quote %q: %w", a, err)
		}
		quoted[i] = q
	}
	return strings.Join(quoted, " "), nil
}
