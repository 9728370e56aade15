package cli

import (
	"context"
	"flag"
	"strings"

	"github.com/miracl/miracl/internal/textutil"
)

// Command represents a command, or a group of subcommands, in the command hierarchy.
type Command struct {
	// Name is always a single word representing the command's name. It is used to select the
	// command on the command line and in help text.
	Name string

	// Usage provides the command's full usage pattern.
	//
	// Example: "miracl reg clar_allen [flags]"
	Usage string

	// ShortHelp is a one-line description shown in the parent's command listing and at the top of
	// the command's own help.
	ShortHelp string

	// UsageFunc optionally replaces the generated help text.
	UsageFunc func(*Command) string

	// Flags holds the command-specific flag definitions. Every command owns its flag set; only
	// the flag sets of the selected command and its parents take part in parsing.
	Flags *flag.FlagSet
	// FlagsMetadata extends Flags with metadata such as which flags are required.
	FlagsMetadata []FlagMetadata

	// SubCommands is a list of nested commands that exist under this command.
	SubCommands []*Command

	// Exec is the command's entry point. It receives the parsed [State]. Leaf commands must set
	// it; group commands may leave it nil, in which case selecting the group is a usage error.
	Exec func(ctx context.Context, s *State) error

	state *State
}

// FlagMetadata holds additional metadata for a flag, such as whether it is required.
type FlagMetadata struct {
	// Name is the flag's name. Must match the flag name in the flag set.
	Name string

	// Required indicates whether the flag is required.
	Required bool
}

// FlagsFunc is a helper function that creates a new [flag.FlagSet] and applies the given function
// to it. Intended for use in command definitions to simplify flag setup. Example usage:
//
//	cmd.Flags = cli.FlagsFunc(func(f *flag.FlagSet) {
//	    f.String("i", "", "input nifti file")
//	    f.Int("d", 5, "down-sample ratio")
//	})
func FlagsFunc(fn func(*flag.FlagSet)) *flag.FlagSet {
	fset := flag.NewFlagSet("", flag.ContinueOnError)
	fn(fset)
	return fset
}

// Selected returns the command chosen by the last [Parse] of root, or nil.
func (c *Command) Selected() *Command {
	if c.state == nil || len(c.state.commandPath) == 0 {
		return nil
	}
	return c.state.commandPath[len(c.state.commandPath)-1]
}

func (c *Command) terminal() (*Command, *State) {
	if c.state == nil || len(c.state.commandPath) == 0 {
		return c, c.state
	}
	return c.state.commandPath[len(c.state.commandPath)-1], c.state
}

// findSubCommand returns the subcommand with the given name, or nil.
func (c *Command) findSubCommand(name string) *Command {
	for _, sub := range c.SubCommands {
		if sub.Name == name {
			return sub
		}
	}
	return nil
}

func (c *Command) formatUnknownCommandError(unknownCmd string) error {
	var known []string
	for _, sub := range c.SubCommands {
		known = append(known, sub.Name)
	}
	suggestions := textutil.Suggest(unknownCmd, known, 3)
	if len(suggestions) > 0 {
		return UsageErrorf("unknown command %q. Did you mean one of these?\n\t%s",
			unknownCmd,
			strings.Join(suggestions, "\n\t"))
	}
	return UsageErrorf("unknown command %q", unknownCmd)
}

func getCommandPath(commands []*Command) string {
	var commandPath []string
	for _, c := range commands {
		commandPath = append(commandPath, c.Name)
	}
	return strings.Join(commandPath, " ")
}

func formatFlagName(name string) string {
	return "-" + name
}
