package cli

import (
	"errors"
	"fmt"
	"slices"
)

// Registry maps command names to top-level commands. The root command's subcommand list is
// generated from it, so each registered command keeps its own flag set and entry point.
type Registry struct {
	commands map[string]*Command
	order    []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]*Command)}
}

// Register adds cmd under cmd.Name. It fails if the name is taken or cannot be typed as a
// command, or if cmd has neither an entry point nor subcommands.
func (r *Registry) Register(cmd *Command) error {
	if cmd == nil {
		return errors.New("register: command is nil")
	}
	if err := checkName(cmd.Name); err != nil {
		return fmt.Errorf("register: %w", err)
	}
	if cmd.Exec == nil && len(cmd.SubCommands) == 0 {
		return fmt.Errorf("register: command %q has no execution function", cmd.Name)
	}
	if _, exists := r.commands[cmd.Name]; exists {
		return fmt.Errorf("register: command %q already registered", cmd.Name)
	}
	r.commands[cmd.Name] = cmd
	r.order = append(r.order, cmd.Name)
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(cmds ...*Command) {
	for _, cmd := range cmds {
		if err := r.Register(cmd); err != nil {
			panic(err)
		}
	}
}

// Lookup returns the command registered under name and whether it exists.
func (r *Registry) Lookup(name string) (*Command, bool) {
	cmd, ok := r.commands[name]
	return cmd, ok
}

// Names returns the registered command names in sorted order.
func (r *Registry) Names() []string {
	names := slices.Clone(r.order)
	slices.Sort(names)
	return names
}

// Root builds a root command selecting among the registered commands. The root accepts no
// flags of its own besides help, and has no entry point: invoking it without a subcommand is a
// usage error.
func (r *Registry) Root(name, usage, shortHelp string) *Command {
	root := &Command{
		Name:      name,
		Usage:     usage,
		ShortHelp: shortHelp,
	}
	for _, n := range r.order {
		root.SubCommands = append(root.SubCommands, r.commands[n])
	}
	return root
}
