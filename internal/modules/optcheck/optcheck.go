// Package optcheck validates sub-tool options. Every check returns a usage error naming the
// offending flag.
package optcheck

import (
	"strings"

	"github.com/miracl/miracl/cli"
	"github.com/miracl/miracl/internal/pipeline"
)

// Required fails if value is empty.
func Required(flag, value string) error {
	if strings.TrimSpace(value) == "" {
		return cli.UsageErrorf("-%s is required", flag)
	}
	return nil
}

// OneOf fails unless value is one of allowed.
func OneOf(flag, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return cli.UsageErrorf("-%s: invalid choice %q (choose from %s)", flag, value, strings.Join(allowed, ", "))
}

// Positive fails unless v > 0.
func Positive[T int | float64](flag string, v T) error {
	if v <= 0 {
		return cli.UsageErrorf("-%s must be positive, got %v", flag, v)
	}
	return nil
}

// Orientation fails unless code names each anatomical axis once, e.g. "ARS" or "LPI".
func Orientation(flag, code string) error {
	axes := []string{"RL", "AP", "SI"}
	seen := make([]bool, len(axes))
	upper := strings.ToUpper(code)
	if len(upper) == len(axes) {
		for _, c := range upper {
			for i, axis := range axes {
				if strings.ContainsRune(axis, c) && !seen[i] {
					seen[i] = true
					break
				}
			}
		}
	}
	for _, ok := range seen {
		if !ok {
			return cli.UsageErrorf("-%s: invalid orientation code %q", flag, code)
		}
	}
	return nil
}

// NoArgs fails if positional arguments were given.
func NoArgs(s *cli.State) error {
	if len(s.Args) > 0 {
		return cli.UsageErrorf("unexpected arguments: %s", strings.Join(s.Args, " "))
	}
	return nil
}

// ExpandPaths expands a leading ~ in each non-empty path, in place.
func ExpandPaths(paths ...*string) error {
	for _, p := range paths {
		if *p == "" {
			continue
		}
		expanded, err := pipeline.ExpandPath(*p)
		if err != nil {
			return err
		}
		*p = expanded
	}
	return nil
}
