package cli

import (
	"flag"
	"fmt"
	"io"
)

// State is the result of parsing, handed to the selected command's Exec function. Use [GetFlag]
// to read flag values of the selected command and its parents.
type State struct {
	// Args contains the remaining arguments after flag parsing.
	Args []string

	// Standard I/O streams.
	Stdin          io.Reader
	Stdout, Stderr io.Writer

	commandPath []*Command
}

// Path returns the space-separated names of the selected command chain, e.g. "miracl reg
// clar_allen".
func (s *State) Path() string {
	return getCommandPath(s.commandPath)
}

// GetFlag retrieves a flag value by name, with type inference. The selected command is searched
// first, then its parents. Example usage:
//
//	down := GetFlag[int](state, "d")
//	input := GetFlag[string](state, "i")
//
// It panics if the flag is not defined or was registered with another type. Both are
// programming errors in the command definition, not user errors.
func GetFlag[T any](s *State, name string) T {
	for i := len(s.commandPath) - 1; i >= 0; i-- {
		cmd := s.commandPath[i]
		if cmd.Flags == nil {
			continue
		}
		f := cmd.Flags.Lookup(name)
		if f == nil {
			continue
		}
		getter, ok := f.Value.(flag.Getter)
		if !ok {
			panic(fmt.Errorf("internal error: flag %q in command %q does not implement flag.Getter",
				formatFlagName(name), cmd.Name))
		}
		value := getter.Get()
		if v, ok := value.(T); ok {
			return v
		}
		panic(fmt.Errorf("internal error: type mismatch for flag %q in command %q: registered %T, requested %T",
			formatFlagName(name), cmd.Name, value, *new(T)))
	}
	cmdName := "<nil>"
	if len(s.commandPath) > 0 {
		cmdName = s.commandPath[len(s.commandPath)-1].Name
	}
	panic(fmt.Errorf("internal error: flag %q not found in command %q flag set",
		formatFlagName(name), cmdName))
}
