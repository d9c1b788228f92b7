package main

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opal-lang/interact/core/nodetree"
)

func leaf(s string) *nodetree.Node { return nodetree.NewLeaf(s) }

func group(open rune, close rune, items ...*nodetree.Node) *nodetree.Node {
	return nodetree.NewGrouped(open, nodetree.NewDelimited(',', items), close)
}

func TestToJSON(t *testing.T) {
	tests := []struct {
		name     string
		node     *nodetree.Node
		expected any
	}{
		{
			name:     "integer leaf",
			node:     leaf("-12"),
			expected: -12,
		},
		{
			name:     "float leaf",
			node:     leaf("1.5"),
			expected: 1.5,
		},
		{
			name:     "quoted string",
			node:     leaf(`"a b"`),
			expected: "a b",
		},
		{
			name:     "bool",
			node:     leaf("true"),
			expected: true,
		},
		{
			name:     "list",
			node:     group('[', ']', leaf("1"), leaf("2")),
			expected: []any{1, 2},
		},
		{
			name:     "empty list",
			node:     group('[', ']'),
			expected: []any{},
		},
		{
			name: "named record",
			node: nodetree.NewNamed("Foo", group('{', '}',
				nodetree.NewKeyValue(leaf("a"), ":", leaf("1")),
				nodetree.NewKeyValue(leaf(`"k"`), ":", nodetree.NewMarker(nodetree.Locked)),
			)),
			expected: map[string]any{"$type": "Foo", "a": 1, "k": "<locked>"},
		},
		{
			name:     "named tuple",
			node:     nodetree.NewNamed("Pair", group('(', ')', leaf("1"), leaf(`'x'`))),
			expected: map[string]any{"$type": "Pair", "$value": []any{1, "x"}},
		},
		{
			name:     "unit struct",
			node:     leaf("Unit"),
			expected: "Unit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.expected, toJSON(tt.node)); diff != "" {
				t.Errorf("JSON mismatch (-expected +actual):\n%s", diff)
			}
		})
	}
}

func TestRunJQ(t *testing.T) {
	n := group('[', ']', leaf("1"), leaf("2"), leaf("3"))
	n.Resolve()

	var out bytes.Buffer
	require.NoError(t, runJQ(&out, n, ".[] | select(. > 1)"))
	assert.Equal(t, "2\n3\n", out.String())

	out.Reset()
	err := runJQ(&out, n, ".foo")
	var cliErr *CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, "jq filter failed", cliErr.Message)
}
