// Package home locates the miracl installation directory and publishes it to the process
// environment, where the pipeline scripts look for their shared resources.
package home

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
)

// EnvVar is the environment variable holding the installation directory.
const EnvVar = "MIRACL_HOME"

// ErrUnresolved is returned when the installation directory cannot be determined.
var ErrUnresolved = errors.New("cannot resolve installation directory")

// Home is the installation directory of the running program.
type Home struct {
	// Dir is the absolute path of the directory.
	Dir string
}

// Resolve returns the directory containing the running executable, with symbolic links
// resolved.
func Resolve() (*Home, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnresolved, err)
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnresolved, err)
	}
	return FromDir(filepath.Dir(exe))
}

// FromDir returns the installation directory dir. A leading ~ is expanded. The directory must
// exist.
func FromDir(dir string) (*Home, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: empty path", ErrUnresolved)
	}
	expanded, err := homedir.Expand(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnresolved, err)
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnresolved, err)
	}
	fi, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnresolved, err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrUnresolved, abs)
	}
	return &Home{Dir: abs}, nil
}

// Publish sets [EnvVar] to the installation directory. Calling it again publishes the same
// value.
func (h *Home) Publish() error {
	if err := os.Setenv(EnvVar, h.Dir); err != nil {
		return fmt.Errorf("publish %s: %w", EnvVar, err)
	}
	return nil
}

// Path joins elem below the installation directory.
func (h *Home) Path(elem ...string) string {
	return filepath.Join(append([]string{h.Dir}, elem...)...)
}
