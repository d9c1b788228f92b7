package formatter

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/opal-lang/interact/core/nodetree"
)

func fooStruct() *nodetree.Node {
	n := nodetree.NewNamed("Foo", nodetree.NewGrouped('{', nodetree.NewDelimited(',', []*nodetree.Node{
		nodetree.NewKeyValue(nodetree.NewLeaf("a"), ":", nodetree.NewLeaf("1")),
		nodetree.NewKeyValue(nodetree.NewLeaf("b"), ":", nodetree.NewLeaf("2")),
	}), '}'))
	n.Resolve()
	return n
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		maxLine  int
		expected string
	}{
		{"single_line", 120, "Foo { a: 1, b: 2 }\n"},
		{"broken", 10, "Foo {\n    a: 1,\n    b: 2\n}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := Settings{MaxLineLength: tt.maxLine, IndentStep: 4}
			actual := FormatString(fooStruct(), settings)
			if diff := cmp.Diff(tt.expected, actual); diff != "" {
				t.Errorf("Output mismatch (-expected +actual):\n%s", diff)
			}
		})
	}
}

func TestFormatTupleHasNoInnerPadding(t *testing.T) {
	n := nodetree.NewGrouped('(', nodetree.NewDelimited(',', []*nodetree.Node{
		nodetree.NewLeaf("1"), nodetree.NewLeaf("2"),
	}), ')')
	n.Resolve()
	assert.Equal(t, "(1, 2)\n", FormatString(n, DefaultSettings()))
}

func TestFormatLabelsRepeatedValues(t *testing.T) {
	m := nodetree.NewMeta()
	n := nodetree.NewGrouped('[', nodetree.NewDelimited(',', []*nodetree.Node{
		nodetree.NewLeaf("1"),
		nodetree.NewMarker(nodetree.Repeated).WithMeta(m),
	}), ']').WithMeta(m)
	m.Inc()
	n.Resolve()

	assert.Equal(t, "[#1] [ 1, [#1] ]\n", FormatString(n, DefaultSettings()))
}

func TestFormatMarkers(t *testing.T) {
	tests := []struct {
		kind     nodetree.Kind
		expected string
	}{
		{nodetree.Limited, "...<<<>>>...\n"},
		{nodetree.Locked, "< locked >\n"},
		{nodetree.BorrowedMut, "< borrowed-mut >\n"},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			n := nodetree.NewMarker(tt.kind)
			n.Resolve()
			assert.Equal(t, tt.expected, FormatString(n, DefaultSettings()))
		})
	}
}

func TestFormatColor(t *testing.T) {
	n := nodetree.NewMarker(nodetree.Locked)
	n.Resolve()
	out := FormatString(n, Settings{MaxLineLength: 120, IndentStep: 4, Color: true})
	assert.Equal(t, ColorBold+ColorRed+"< locked >"+ColorReset+"\n", out)
}
