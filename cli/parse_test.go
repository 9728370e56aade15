package cli

import (
	"context"
	"errors"
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testTree holds the commands used across the parse tests
//
//	miracl
//	├── conv
//	│   └── tiff_nii -f (required) -d
//	├── reg -o
//	│   ├── clar_allen -i (required)
//	│   └── warp_clar -r
//	└── lbls -l
type testTree struct {
	root                     *Command
	conv, tiffNii            *Command
	reg, clarAllen, warpClar *Command
	lbls                     *Command
}

func newTestTree() testTree {
	exec := func(ctx context.Context, s *State) error { return errors.New("not implemented") }
	tiffNii := &Command{
		Name: "tiff_nii",
		Flags: FlagsFunc(func(f *flag.FlagSet) {
			f.String("f", "", "input folder with `tiff` files")
			f.Int("d", 5, "down-sample ratio")
		}),
		FlagsMetadata: []FlagMetadata{{Name: "f", Required: true}},
		Exec:          exec,
	}
	conv := &Command{
		Name:        "conv",
		ShortHelp:   "conv functions",
		SubCommands: []*Command{tiffNii},
	}
	clarAllen := &Command{
		Name: "clar_allen",
		Flags: FlagsFunc(func(f *flag.FlagSet) {
			f.String("i", "", "input nifti")
		}),
		FlagsMetadata: []FlagMetadata{{Name: "i", Required: true}},
		Exec:          exec,
	}
	warpClar := &Command{
		Name: "warp_clar",
		Flags: FlagsFunc(func(f *flag.FlagSet) {
			f.String("r", "", "registration folder")
		}),
		Exec: exec,
	}
	reg := &Command{
		Name:      "reg",
		ShortHelp: "registration functions",
		Flags: FlagsFunc(func(f *flag.FlagSet) {
			f.String("o", "ARS", "orientation code")
		}),
		SubCommands: []*Command{clarAllen, warpClar},
	}
	lbls := &Command{
		Name:      "lbls",
		ShortHelp: "Label manipulation functions",
		Flags: FlagsFunc(func(f *flag.FlagSet) {
			f.String("l", "", "label file")
		}),
		Exec: exec,
	}
	root := &Command{
		Name:        "miracl",
		SubCommands: []*Command{conv, reg, lbls},
	}
	return testTree{
		root:      root,
		conv:      conv,
		tiffNii:   tiffNii,
		reg:       reg,
		clarAllen: clarAllen,
		warpClar:  warpClar,
		lbls:      lbls,
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("error on parse with no exec", func(t *testing.T) {
		t.Parallel()
		cmd := &Command{
			Name: "miracl",
			SubCommands: []*Command{
				{Name: "flow"},
			},
		}
		err := Parse(cmd, []string{"flow"})
		require.Error(t, err)
		var noExecErr *NoExecError
		require.ErrorAs(t, err, &noExecErr)
		assert.ErrorContains(t, err, `command "miracl flow" has no execution function`)
	})
	t.Run("parsing errors", func(t *testing.T) {
		t.Parallel()

		err := Parse(nil, nil)
		require.Error(t, err)
		require.Contains(t, err.Error(), "command is nil")

		err = Parse(&Command{}, nil)
		require.Error(t, err)
		require.Contains(t, err.Error(), "root command has no name")
	})
	t.Run("subcommand nil flags", func(t *testing.T) {
		t.Parallel()

		err := Parse(&Command{
			Name: "miracl",
			SubCommands: []*Command{{
				Name: "utils",
				Exec: func(ctx context.Context, s *State) error { return nil },
			}},
		}, []string{"utils"})
		require.NoError(t, err)
	})
	t.Run("no arguments selects root", func(t *testing.T) {
		t.Parallel()
		s := newTestTree()

		err := Parse(s.root, nil)
		require.NoError(t, err)
		assert.Equal(t, s.root, s.root.Selected())
	})
	t.Run("subcommand flags", func(t *testing.T) {
		t.Parallel()
		s := newTestTree()

		err := Parse(s.root, []string{"conv", "tiff_nii", "-f", "/data/clarity", "-d", "3"})
		require.NoError(t, err)
		cmd, state := s.root.terminal()
		assert.Equal(t, s.tiffNii, cmd)
		assert.Equal(t, "/data/clarity", GetFlag[string](state, "f"))
		assert.Equal(t, 3, GetFlag[int](state, "d"))
		assert.Equal(t, "miracl conv tiff_nii", state.Path())
	})
	t.Run("command names are case sensitive", func(t *testing.T) {
		t.Parallel()
		for _, args := range [][]string{
			{"LBLS"},
			{"Conv", "tiff_nii", "-f", "/data/clarity"},
			{"reg", "CLAR_ALLEN", "-i", "/data/clar.nii.gz"},
		} {
			s := newTestTree()
			err := Parse(s.root, args)
			require.Error(t, err, args)
			assert.True(t, IsUsage(err), args)
			assert.ErrorContains(t, err, "unknown command", args)
		}
	})
	t.Run("unknown flag", func(t *testing.T) {
		t.Parallel()
		s := newTestTree()

		err := Parse(s.root, []string{"lbls", "--unknown", "item1"})
		require.Error(t, err)
		assert.True(t, IsUsage(err))
		require.Contains(t, err.Error(), `command "lbls": flag provided but not defined: -unknown`)
	})
	t.Run("invalid flag value", func(t *testing.T) {
		t.Parallel()
		s := newTestTree()

		err := Parse(s.root, []string{"conv", "tiff_nii", "-f", "dir", "-d", "abc"})
		require.Error(t, err)
		assert.True(t, IsUsage(err))
		require.ErrorContains(t, err, `command "tiff_nii": invalid value "abc" for flag -d: parse error`)
	})
	t.Run("help flag", func(t *testing.T) {
		t.Parallel()
		s := newTestTree()

		err := Parse(s.root, []string{"--help"})
		require.ErrorIs(t, err, flag.ErrHelp)
		assert.Equal(t, s.root, s.root.Selected())
	})
	t.Run("help flag with subcommand", func(t *testing.T) {
		t.Parallel()
		s := newTestTree()

		err := Parse(s.root, []string{"conv", "-h"})
		require.ErrorIs(t, err, flag.ErrHelp)
		assert.Equal(t, s.conv, s.root.Selected())
	})
	t.Run("help flag before subcommand", func(t *testing.T) {
		t.Parallel()
		s := newTestTree()

		err := Parse(s.root, []string{"--help", "conv"})
		require.ErrorIs(t, err, flag.ErrHelp)
		assert.Equal(t, s.root, s.root.Selected())
	})
	t.Run("help flag wins over missing required flags", func(t *testing.T) {
		t.Parallel()
		s := newTestTree()

		err := Parse(s.root, []string{"conv", "tiff_nii", "extra", "--help", "--bogus"})
		require.ErrorIs(t, err, flag.ErrHelp)
		assert.Equal(t, s.tiffNii, s.root.Selected())
	})
	t.Run("unknown subcommand", func(t *testing.T) {
		t.Parallel()
		s := newTestTree()

		err := Parse(s.root, []string{"bogus"})
		require.Error(t, err)
		assert.True(t, IsUsage(err))
		require.Contains(t, err.Error(), `unknown command "bogus"`)
	})
	t.Run("unknown nested subcommand", func(t *testing.T) {
		t.Parallel()
		s := newTestTree()

		err := Parse(s.root, []string{"reg", "clar_alen"})
		require.Error(t, err)
		require.Contains(t, err.Error(), `unknown command "clar_alen". Did you mean one of these?`)
		require.Contains(t, err.Error(), "\tclar_allen")
		assert.Equal(t, s.reg, s.root.Selected())
	})
	t.Run("parent flags inherited in subcommand", func(t *testing.T) {
		t.Parallel()
		s := newTestTree()

		err := Parse(s.root, []string{"reg", "clar_allen", "-i", "clar.nii.gz", "-o", "LPS"})
		require.NoError(t, err)
		cmd, state := s.root.terminal()
		assert.Equal(t, s.clarAllen, cmd)
		assert.Equal(t, "clar.nii.gz", GetFlag[string](state, "i"))
		assert.Equal(t, "LPS", GetFlag[string](state, "o"))
	})
	t.Run("parent flag default", func(t *testing.T) {
		t.Parallel()
		s := newTestTree()

		err := Parse(s.root, []string{"reg", "warp_clar"})
		require.NoError(t, err)
		_, state := s.root.terminal()
		assert.Equal(t, "ARS", GetFlag[string](state, "o"))
		assert.Equal(t, "", GetFlag[string](state, "r"))
	})
	t.Run("flags of other commands are not visible", func(t *testing.T) {
		t.Parallel()
		for _, args := range [][]string{
			{"reg", "clar_allen", "-i", "x", "-f", "dir"},
			{"reg", "warp_clar", "-i", "x"},
			{"lbls", "-d", "3"},
			{"conv", "tiff_nii", "-f", "dir", "-o", "LPS"},
			{"-l"},
		} {
			s := newTestTree()
			err := Parse(s.root, args)
			require.Error(t, err, "args %q", args)
			require.ErrorContains(t, err, "flag provided but not defined")
		}
	})
	t.Run("end of options delimiter", func(t *testing.T) {
		t.Parallel()
		s := newTestTree()

		err := Parse(s.root, []string{"lbls", "-l", "labels.nii.gz", "--", "-z", "reg"})
		require.NoError(t, err)
		cmd, state := s.root.terminal()
		assert.Equal(t, s.lbls, cmd)
		assert.Equal(t, []string{"-z", "reg"}, state.Args)
		assert.Equal(t, "labels.nii.gz", GetFlag[string](state, "l"))
	})
	t.Run("flags and args", func(t *testing.T) {
		t.Parallel()
		s := newTestTree()

		err := Parse(s.root, []string{"lbls", "a.nii", "-l", "labels.nii.gz", "b.nii"})
		require.NoError(t, err)
		_, state := s.root.terminal()
		assert.Equal(t, []string{"a.nii", "b.nii"}, state.Args)
	})
	t.Run("no positional args", func(t *testing.T) {
		t.Parallel()
		s := newTestTree()

		err := Parse(s.root, []string{"reg", "warp_clar", "-r", "reg_final"})
		require.NoError(t, err)
		_, state := s.root.terminal()
		assert.Nil(t, state.Args)
	})
	t.Run("required flag", func(t *testing.T) {
		t.Parallel()
		{
			s := newTestTree()
			err := Parse(s.root, []string{"conv", "tiff_nii"})
			require.Error(t, err)
			assert.True(t, IsUsage(err))
			require.ErrorContains(t, err, `command "miracl conv tiff_nii": required flags "-f" not set`)
		}
		{
			s := newTestTree()
			err := Parse(s.root, []string{"conv", "tiff_nii", "-f=/data"})
			require.NoError(t, err)
			_, state := s.root.terminal()
			assert.Equal(t, "/data", GetFlag[string](state, "f"))
		}
	})
	t.Run("empty name in subcommand", func(t *testing.T) {
		t.Parallel()
		s := newTestTree()
		s.warpClar.Name = ""

		err := Parse(s.root, nil)
		require.Error(t, err)
		require.ErrorContains(t, err, `subcommand in path "miracl reg" has no name`)
	})
	t.Run("unknown required flag set by cli author", func(t *testing.T) {
		t.Parallel()
		cmd := &Command{
			Name: "miracl",
			FlagsMetadata: []FlagMetadata{
				{Name: "some-other-flag", Required: true},
			},
		}
		err := Parse(cmd, nil)
		require.Error(t, err)
		require.ErrorContains(t, err, `command "miracl": internal error: required flag -some-other-flag not found in flag set`)
	})
	t.Run("space in command name", func(t *testing.T) {
		t.Parallel()
		cmd := &Command{
			Name: "miracl",
			SubCommands: []*Command{
				{Name: "sub command"},
			},
		}
		err := Parse(cmd, nil)
		require.Error(t, err)
		require.ErrorContains(t, err, `command name "sub command" contains spaces, must be a single word`)
	})
	t.Run("command name looks like a flag", func(t *testing.T) {
		t.Parallel()
		cmd := &Command{
			Name: "miracl",
			SubCommands: []*Command{
				{Name: "-h", Exec: func(ctx context.Context, s *State) error { return nil }},
			},
		}
		err := Parse(cmd, nil)
		require.Error(t, err)
		require.ErrorContains(t, err, `command name "-h" must not start with "-"`)
	})
	t.Run("help flag is reserved", func(t *testing.T) {
		t.Parallel()
		s := newTestTree()
		s.lbls.Flags.Bool("h", false, "show help")

		err := Parse(s.root, []string{"reg"})
		require.Error(t, err)
		require.ErrorContains(t, err, `command "miracl lbls": flag -h is reserved for help`)
	})
	t.Run("duplicate subcommand", func(t *testing.T) {
		t.Parallel()
		s := newTestTree()
		s.root.SubCommands = append(s.root.SubCommands, &Command{
			Name: "conv",
			Exec: func(ctx context.Context, s *State) error { return nil },
		})

		err := Parse(s.root, nil)
		require.Error(t, err)
		require.ErrorContains(t, err, `command "miracl": duplicate subcommand "conv"`)
	})
	t.Run("names differing in case are distinct", func(t *testing.T) {
		t.Parallel()
		s := newTestTree()
		s.root.SubCommands = append(s.root.SubCommands, &Command{
			Name: "Conv",
			Exec: func(ctx context.Context, s *State) error { return nil },
		})

		require.NoError(t, Parse(s.root, []string{"conv", "tiff_nii", "-f", "/data/clarity"}))
		assert.Equal(t, s.tiffNii, s.root.Selected())
	})
}
