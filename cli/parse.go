package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/mfridman/xflag"
)

// Parse resolves the command selected by args and parses its flags. Only the flag sets of the
// selected command and its parents are consulted, so flags of unrelated commands never affect
// the result. It returns [flag.ErrHelp] when help was requested, and a usage error (see
// [IsUsage]) for unknown commands, unknown or malformed flags and missing required flags.
//
// Parse should be called with the root command and the arguments to parse, typically
// os.Args[1:]. Once parsing is complete, the root command is ready to be executed with [Run].
func Parse(root *Command, args []string) error {
	if root == nil {
		return errors.New("failed to parse: root command is nil")
	}
	if err := validateCommands(root, nil); err != nil {
		return fmt.Errorf("failed to parse: %w", err)
	}

	argsToParse, remainingArgs := splitDelimiter(args)

	root.state = &State{commandPath: []*Command{root}}
	current := root
	resolved := false
	// First pass: resolve the command chain and capture help requests before any flag
	// parsing errors.
	for _, arg := range argsToParse {
		if isHelpFlag(arg) {
			return flag.ErrHelp
		}
		if resolved || strings.HasPrefix(arg, "-") {
			continue
		}
		if len(current.SubCommands) == 0 {
			resolved = true
			continue
		}
		sub := current.findSubCommand(arg)
		if sub == nil {
			return current.formatUnknownCommandError(arg)
		}
		current = sub
		root.state.commandPath = append(root.state.commandPath, sub)
	}
	path := root.state.commandPath

	combinedFlags := flag.NewFlagSet(getCommandPath(path), flag.ContinueOnError)
	combinedFlags.SetOutput(io.Discard)
	// Add flags from the selected command up, so the closest definition wins.
	for i := len(path) - 1; i >= 0; i-- {
		if path[i].Flags == nil {
			continue
		}
		path[i].Flags.VisitAll(func(f *flag.Flag) {
			if combinedFlags.Lookup(f.Name) == nil {
				combinedFlags.Var(f.Value, f.Name, f.Usage)
			}
		})
	}
	if err := xflag.ParseToEnd(combinedFlags, argsToParse); err != nil {
		return NewError(ErrUsage, fmt.Errorf("command %q: %w", current.Name, err))
	}

	set := make(map[string]bool)
	combinedFlags.Visit(func(f *flag.Flag) { set[f.Name] = true })
	var missing []string
	for _, md := range current.FlagsMetadata {
		if md.Required && !set[md.Name] {
			missing = append(missing, formatFlagName(md.Name))
		}
	}
	if len(missing) > 0 {
		return UsageErrorf("command %q: required flags %q not set",
			getCommandPath(path), strings.Join(missing, ", "))
	}

	// The leading positional arguments are the command names consumed above.
	parsed := combinedFlags.Args()
	finalArgs := append([]string{}, parsed[min(len(path)-1, len(parsed)):]...)
	finalArgs = append(finalArgs, remainingArgs...)
	if len(finalArgs) == 0 {
		finalArgs = nil
	}
	root.state.Args = finalArgs
	return nil
}

func splitDelimiter(args []string) (before, after []string) {
	if i := slices.Index(args, "--"); i >= 0 {
		return args[:i], args[i+1:]
	}
	return args, nil
}

func isHelpFlag(arg string) bool {
	switch arg {
	case "-h", "--h", "-help", "--help":
		return true
	}
	return false
}

// checkName reports whether name can be typed as a command on the command line.
func checkName(name string) error {
	switch {
	case name == "":
		return errors.New("command has no name")
	case strings.ContainsAny(name, " \t\n"):
		return fmt.Errorf("command name %q contains spaces, must be a single word", name)
	case strings.HasPrefix(name, "-"):
		return fmt.Errorf("command name %q must not start with %q", name, "-")
	}
	return nil
}

func validateCommands(cmd *Command, path []string) error {
	if cmd.Name == "" {
		if len(path) == 0 {
			return errors.New("root command has no name")
		}
		return fmt.Errorf("subcommand in path %q has no name", strings.Join(path, " "))
	}
	if err := checkName(cmd.Name); err != nil {
		return err
	}
	currentPath := append(slices.Clone(path), cmd.Name)
	fullName := strings.Join(currentPath, " ")

	if cmd.Flags != nil {
		for _, name := range []string{"h", "help"} {
			if cmd.Flags.Lookup(name) != nil {
				return fmt.Errorf("command %q: flag %s is reserved for help", fullName, formatFlagName(name))
			}
		}
	}
	for _, md := range cmd.FlagsMetadata {
		if cmd.Flags == nil || cmd.Flags.Lookup(md.Name) == nil {
			return fmt.Errorf("command %q: internal error: required flag %s not found in flag set",
				fullName, formatFlagName(md.Name))
		}
	}
	if len(path) > 0 && len(cmd.SubCommands) == 0 && cmd.Exec == nil {
		return &NoExecError{Path: fullName}
	}

	seen := make(map[string]bool)
	for _, sub := range cmd.SubCommands {
		if sub.Name != "" && seen[sub.Name] {
			return fmt.Errorf("command %q: duplicate subcommand %q", fullName, sub.Name)
		}
		seen[sub.Name] = true
		if err := validateCommands(sub, currentPath); err != nil {
			return err
		}
	}
	return nil
}
