package cli

import (
	"cmp"
	"flag"
	"fmt"
	"slices"
	"strings"

	"github.com/miracl/miracl/internal/textutil"
)

// DefaultUsage renders the help text of the command selected by the last [Parse] of root, or of
// root itself if it has not been parsed. Only the flags of the selected command chain are listed;
// flags of the selected command's parents appear under "Global Flags".
func DefaultUsage(root *Command) string {
	if root == nil {
		return ""
	}
	terminalCmd, state := root.terminal()
	if terminalCmd.UsageFunc != nil {
		return terminalCmd.UsageFunc(terminalCmd)
	}
	path := []*Command{root}
	if state != nil && len(state.commandPath) > 0 {
		path = state.commandPath
	}
	cmdPath := getCommandPath(path)

	var b strings.Builder
	if terminalCmd.ShortHelp != "" {
		for _, line := range textutil.Wrap(terminalCmd.ShortHelp, 80) {
			b.WriteString(line + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("Usage:\n")
	if terminalCmd.Usage != "" {
		b.WriteString("  " + terminalCmd.Usage + "\n")
	} else {
		usage := cmdPath
		if len(terminalCmd.SubCommands) > 0 {
			usage += " <command>"
		}
		if terminalCmd.Flags != nil {
			usage += " [flags]"
		}
		b.WriteString("  " + usage + "\n")
	}
	b.WriteString("\n")

	if len(terminalCmd.SubCommands) > 0 {
		b.WriteString("Available Commands:\n")
		sorted := slices.Clone(terminalCmd.SubCommands)
		slices.SortFunc(sorted, func(a, b *Command) int {
			return cmp.Compare(a.Name, b.Name)
		})
		rows := make([][2]string, 0, len(sorted))
		for _, sub := range sorted {
			rows = append(rows, [2]string{sub.Name, sub.ShortHelp})
		}
		textutil.Columns(&b, rows)
		b.WriteString("\n")
	}

	var local, global [][2]string
	for i, cmd := range path {
		if cmd.Flags == nil {
			continue
		}
		rows := flagRows(cmd)
		if i == len(path)-1 {
			local = append(local, rows...)
		} else {
			global = append(global, rows...)
		}
	}
	if len(local) > 0 {
		b.WriteString("Flags:\n")
		textutil.Columns(&b, local)
		b.WriteString("\n")
	}
	if len(global) > 0 {
		b.WriteString("Global Flags:\n")
		textutil.Columns(&b, global)
		b.WriteString("\n")
	}

	if len(terminalCmd.SubCommands) > 0 {
		fmt.Fprintf(&b, "Use \"%s [command] --help\" for more information about a command.\n", cmdPath)
	}
	return strings.TrimRight(b.String(), "\n")
}

// flagRows describes the flags of cmd, sorted by name.
func flagRows(cmd *Command) [][2]string {
	required := make(map[string]bool)
	for _, md := range cmd.FlagsMetadata {
		required[md.Name] = md.Required
	}
	var rows [][2]string
	cmd.Flags.VisitAll(func(f *flag.Flag) {
		valueName, usage := flag.UnquoteUsage(f)
		name := formatFlagName(f.Name)
		if valueName != "" {
			name += " " + valueName
		}
		switch {
		case required[f.Name]:
			usage += " (required)"
		case f.DefValue != "" && f.DefValue != "false":
			usage += fmt.Sprintf(" (default: %s)", f.DefValue)
		}
		rows = append(rows, [2]string{name, usage})
	})
	return rows
}
