package reg

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miracl/miracl/cli"
	"github.com/miracl/miracl/internal/home"
	"github.com/miracl/miracl/internal/pipeline"
)

func dryRunner(t *testing.T) (*pipeline.Runner, *bytes.Buffer) {
	t.Helper()
	h, err := home.FromDir(t.TempDir())
	require.NoError(t, err)
	var out bytes.Buffer
	return &pipeline.Runner{Home: h, Python: "python3", DryRun: true, Stdout: &out}, &out
}

func run(t *testing.T, r *pipeline.Runner, args ...string) error {
	t.Helper()
	root := &cli.Command{Name: "miracl", SubCommands: []*cli.Command{Command(r)}}
	return cli.ParseAndRun(context.Background(), root, append([]string{"reg"}, args...), &cli.RunOptions{
		Stdout: &bytes.Buffer{},
		Stderr: &bytes.Buffer{},
	})
}

func TestClarAllenStep(t *testing.T) {
	t.Parallel()

	opts := ClarAllenOptions{Input: "clar.nii.gz", Orient: "ARS", Hemi: "split", Resolution: 25}
	require.NoError(t, opts.validate())
	got := opts.step()
	want := pipeline.Step{
		Script: "reg/miracl_reg_clar-allen.sh",
		Args:   []string{"-i", "clar.nii.gz", "-o", "ARS", "-m", "split", "-v", "25"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("step mismatch (-want +got):\n%s", diff)
	}
}

func TestClarAllenValidate(t *testing.T) {
	t.Parallel()

	valid := ClarAllenOptions{Input: "clar.nii.gz", Orient: "ARS", Hemi: "combined", Resolution: 10}
	for name, mutate := range map[string]func(*ClarAllenOptions){
		"missing input":  func(o *ClarAllenOptions) { o.Input = "" },
		"bad orient":     func(o *ClarAllenOptions) { o.Orient = "AAA" },
		"bad hemi":       func(o *ClarAllenOptions) { o.Hemi = "left" },
		"bad resolution": func(o *ClarAllenOptions) { o.Resolution = 20 },
	} {
		opts := valid
		mutate(&opts)
		err := opts.validate()
		require.Error(t, err, name)
		assert.True(t, cli.IsUsage(err), name)
	}
}

func TestCommand(t *testing.T) {
	t.Parallel()

	t.Run("clar_allen", func(t *testing.T) {
		t.Parallel()
		r, out := dryRunner(t)
		require.NoError(t, run(t, r, "clar_allen", "-i", "/data/clar.nii.gz", "-v", "50"))
		assert.Equal(t, "bash "+r.Home.Path("reg", "miracl_reg_clar-allen.sh")+
			" -i /data/clar.nii.gz -o ARS -m combined -v 50\n", out.String())
	})
	t.Run("mri_allen", func(t *testing.T) {
		t.Parallel()
		r, out := dryRunner(t)
		require.NoError(t, run(t, r, "mri_allen", "-i", "/data/mri.nii.gz", "-skip-bias"))
		assert.Contains(t, out.String(), "miracl_reg_mri-allen.sh -i /data/mri.nii.gz -o RSP -b 0\n")
	})
	t.Run("warp_clar", func(t *testing.T) {
		t.Parallel()
		r, out := dryRunner(t)
		require.NoError(t, run(t, r, "warp_clar", "-r", "/data/reg_final", "-i", "/data/seg.nii.gz", "-t", "seg"))
		assert.Contains(t, out.String(), "miracl_reg_warp_clar_data_to_allen.sh -r /data/reg_final -i /data/seg.nii.gz -t seg\n")
	})
	t.Run("missing required flag", func(t *testing.T) {
		t.Parallel()
		r, out := dryRunner(t)
		err := run(t, r, "warp_clar", "-i", "/data/seg.nii.gz")
		require.Error(t, err)
		assert.True(t, cli.IsUsage(err))
		assert.Empty(t, out.String())
	})
	t.Run("invalid choice", func(t *testing.T) {
		t.Parallel()
		r, out := dryRunner(t)
		err := run(t, r, "clar_allen", "-i", "/data/clar.nii.gz", "-m", "left")
		require.Error(t, err)
		assert.True(t, cli.IsUsage(err))
		assert.Empty(t, out.String())
	})
	t.Run("unexpected arguments", func(t *testing.T) {
		t.Parallel()
		r, _ := dryRunner(t)
		err := run(t, r, "mri_allen", "-i", "/data/mri.nii.gz", "extra")
		require.Error(t, err)
		assert.ErrorContains(t, err, "unexpected arguments: extra")
	})
}
