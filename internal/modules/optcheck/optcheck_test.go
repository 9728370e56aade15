package optcheck

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miracl/miracl/cli"
)

func TestChecks(t *testing.T) {
	t.Parallel()

	require.NoError(t, Required("f", "/data"))
	err := Required("f", " ")
	require.Error(t, err)
	assert.True(t, cli.IsUsage(err))
	assert.EqualError(t, err, "-f is required")

	require.NoError(t, OneOf("m", "split", "combined", "split"))
	assert.EqualError(t, OneOf("m", "both", "combined", "split"), `-m: invalid choice "both" (choose from combined, split)`)

	require.NoError(t, Positive("d", 5))
	require.NoError(t, Positive("g", 0.5))
	assert.EqualError(t, Positive("d", 0), "-d must be positive, got 0")
	assert.Error(t, Positive("k", -1.5))
}

func TestOrientation(t *testing.T) {
	t.Parallel()

	for _, code := range []string{"ARS", "LPI", "ras", "SAL", "IPR"} {
		assert.NoError(t, Orientation("o", code), code)
	}
	for _, code := range []string{"", "AR", "AAS", "ARSI", "XYZ", "RLA"} {
		err := Orientation("o", code)
		require.Error(t, err, code)
		assert.True(t, cli.IsUsage(err))
	}
}

func TestExpandPaths(t *testing.T) {
	t.Parallel()

	a, b, empty := "~/clarity", "/abs/path", ""
	require.NoError(t, ExpandPaths(&a, &b, &empty))
	assert.False(t, strings.HasPrefix(a, "~"))
	assert.Equal(t, "/abs/path", b)
	assert.Empty(t, empty)
}
