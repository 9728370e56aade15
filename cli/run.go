package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
)

// ParseAndRun parses the command hierarchy and runs the command. A convenience function that
// combines [Parse] and [Run] into a single call.
//
// Help requests print the selected command's usage to Stdout and return [flag.ErrHelp]. Usage
// errors, from parsing or from the command itself, print the usage to Stderr and are returned.
func ParseAndRun(
	ctx context.Context,
	root *Command,
	args []string,
	options *RunOptions,
) error {
	options = checkAndSetRunOptions(options)
	if err := Parse(root, args); err != nil {
		switch {
		case errors.Is(err, flag.ErrHelp):
			fmt.Fprintln(options.Stdout, DefaultUsage(root))
		case IsUsage(err):
			fmt.Fprintln(options.Stderr, DefaultUsage(root))
		}
		return err
	}
	err := Run(ctx, root, options)
	if IsUsage(err) {
		fmt.Fprintln(options.Stderr, DefaultUsage(root))
	}
	return err
}

// RunOptions specifies options for running a command.
type RunOptions struct {
	// Stdin, Stdout, and Stderr are the standard input, output, and error streams for the command.
	// If any of these are nil, the command will use the default streams ([os.Stdin], [os.Stdout],
	// and [os.Stderr], respectively).
	Stdin          io.Reader
	Stdout, Stderr io.Writer
}

// Run executes the command selected by the last [Parse] of root. Selecting a command without an
// Exec function, such as the root itself, is a usage error. Errors returned by Exec are passed
// through unchanged.
//
// The options parameter may be nil, in which case default values are used.
func Run(ctx context.Context, root *Command, options *RunOptions) error {
	selected, state := root.terminal()
	if state == nil {
		return errors.New("command has not been parsed")
	}
	options = checkAndSetRunOptions(options)
	updateState(state, options)

	if selected.Exec == nil {
		return UsageErrorf("command %q requires a subcommand", getCommandPath(state.commandPath))
	}
	return selected.Exec(ctx, state)
}

func updateState(s *State, opt *RunOptions) {
	if s.Stdin == nil {
		s.Stdin = opt.Stdin
	}
	if s.Stdout == nil {
		s.Stdout = opt.Stdout
	}
	if s.Stderr == nil {
		s.Stderr = opt.Stderr
	}
}

func checkAndSetRunOptions(opt *RunOptions) *RunOptions {
	if opt == nil {
		opt = &RunOptions{}
	}
	if opt.Stdin == nil {
		opt.Stdin = os.Stdin
	}
	if opt.Stdout == nil {
		opt.Stdout = os.Stdout
	}
	if opt.Stderr == nil {
		opt.Stderr = os.Stderr
	}
	return opt
}
