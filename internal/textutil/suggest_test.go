package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuggest(t *testing.T) {
	t.Parallel()

	commands := []string{"flow", "reg", "seg", "sta", "connect", "conv", "lbls", "utils"}
	tests := []struct {
		name     string
		target   string
		n        int
		expected []string
	}{
		{name: "typo", target: "flw", n: 3, expected: []string{"flow"}},
		{name: "prefix", target: "con", n: 3, expected: []string{"connect", "conv"}},
		{name: "case insensitive", target: "REG", n: 3, expected: []string{"reg", "seg"}},
		{name: "limit", target: "con", n: 1, expected: []string{"connect"}},
		{name: "empty target", target: "", n: 3, expected: []string{}},
		{name: "no matches", target: "xyzzy", n: 3, expected: []string{}},
		{name: "invalid max results", target: "reg", n: -1, expected: []string{}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Suggest(tt.target, commands, tt.n))
		})
	}
}

func TestDistance(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b     string
		expected int
	}{
		{"hello", "hello", 0},
		{"hello", "hallo", 1},
		{"hello", "hello1", 1},
		{"hello", "hell", 1},
		{"", "hello", 5},
		{"hello", "", 5},
		{"", "", 0},
		{"hello", "world", 4},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, distance(tt.a, tt.b), "distance(%q, %q)", tt.a, tt.b)
	}
}

func TestSimilarity(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 1.0, similarity("Seg", "seg"), 0.001)
	assert.InDelta(t, 0.9, similarity("lb", "lbls"), 0.001)
	assert.InDelta(t, 0.2, similarity("hello", "world"), 0.001)
	assert.InDelta(t, 0.0, similarity("hello", ""), 0.001)
}
