package snapshot_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opal-lang/interact/core/nodetree"
	"github.com/opal-lang/interact/core/nodetree/formatter"
	"github.com/opal-lang/interact/core/snapshot"
)

// sharedTree renders as `Pair { a : 1, b : <repeated> }` where both values
// carry the same tag.
func sharedTree() (*nodetree.Node, *nodetree.Meta) {
	shared := nodetree.NewMeta()
	first := nodetree.NewLeaf("1").WithMeta(shared)
	shared.Inc()
	again := nodetree.NewMarker(nodetree.Repeated).WithMeta(shared)

	tree := nodetree.NewNamed("Pair", nodetree.NewGrouped('{', nodetree.NewDelimited(',', []*nodetree.Node{
		nodetree.NewKeyValue(nodetree.NewLeaf("a"), ":", first),
		nodetree.NewKeyValue(nodetree.NewLeaf("b"), ":", again),
	}), '}'))
	tree.Resolve()
	return tree, shared
}

func TestRoundTrip(t *testing.T) {
	// Given: a resolved tree with a shared tag
	tree, _ := sharedTree()

	// When: written and read back
	var buf bytes.Buffer
	written, err := snapshot.Write(&buf, "pair", tree)
	require.NoError(t, err)

	snap, read, err := snapshot.Read(&buf)
	require.NoError(t, err)

	// Then: query, rendering, sizes and digest survive
	assert.Equal(t, "pair", snap.Query)
	assert.Equal(t, written, read)
	assert.Equal(t, tree.String(), snap.Tree.String())
	assert.Equal(t, tree.Size, snap.Tree.Size)

	settings := formatter.Settings{MaxLineLength: 120, IndentStep: 4}
	if diff := cmp.Diff(formatter.FormatString(tree, settings), formatter.FormatString(snap.Tree, settings)); diff != "" {
		t.Errorf("formatted mismatch (-expected +actual):\n%s", diff)
	}
}

func TestSharedTagsRelinked(t *testing.T) {
	tree, shared := sharedTree()

	var buf bytes.Buffer
	_, err := snapshot.Write(&buf, "pair", tree)
	require.NoError(t, err)
	snap, _, err := snapshot.Read(&buf)
	require.NoError(t, err)

	fields := snap.Tree.Children[1].Sub().Children
	first := fields[0].Children[1]
	again := fields[1].Children[1]

	require.NotNil(t, first.Meta)
	assert.Same(t, first.Meta, again.Meta)
	assert.Equal(t, shared.Refs(), first.Meta.Refs())
	assert.Nil(t, snap.Tree.Meta)
}

func TestWriteIsDeterministic(t *testing.T) {
	var first, second bytes.Buffer

	tree, _ := sharedTree()
	d1, err := snapshot.Write(&first, "q", tree)
	require.NoError(t, err)

	tree, _ = sharedTree()
	d2, err := snapshot.Write(&second, "q", tree)
	require.NoError(t, err)

	assert.Equal(t, d1, d2)
	assert.Equal(t, first.Bytes(), second.Bytes())
}

func TestPreamble(t *testing.T) {
	tree, _ := sharedTree()
	var buf bytes.Buffer
	_, err := snapshot.Write(&buf, "q", tree)
	require.NoError(t, err)

	data := buf.Bytes()
	assert.Equal(t, "ITSN", string(data[0:4]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(data[4:6]))
	assert.Equal(t, uint16(0), binary.LittleEndian.Uint16(data[6:8]))
	assert.Equal(t, uint16(0), binary.LittleEndian.Uint16(data[8:10]))
	assert.Equal(t, uint64(len(data)-50), binary.LittleEndian.Uint64(data[42:50]))
}

func TestReadRejects(t *testing.T) {
	tests := []struct {
		name    string
		corrupt func(data []byte)
		errText string
	}{
		{
			name:    "bad magic",
			corrupt: func(data []byte) { copy(data[0:4], "NOPE") },
			errText: "invalid magic",
		},
		{
			name:    "newer major version",
			corrupt: func(data []byte) { binary.LittleEndian.PutUint16(data[4:6], 2) },
			errText: "unsupported version",
		},
		{
			name:    "flipped payload byte",
			corrupt: func(data []byte) { data[len(data)-1] ^= 0xff },
			errText: "digest mismatch",
		},
		{
			name:    "oversized payload",
			corrupt: func(data []byte) { binary.LittleEndian.PutUint64(data[42:50], 1<<40) },
			errText: "exceeds maximum",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, _ := sharedTree()
			var buf bytes.Buffer
			_, err := snapshot.Write(&buf, "q", tree)
			require.NoError(t, err)

			data := buf.Bytes()
			tt.corrupt(data)

			_, _, err = snapshot.Read(bytes.NewReader(data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errText)
		})
	}
}

func TestNewerMinorVersionAccepted(t *testing.T) {
	tree, _ := sharedTree()
	var buf bytes.Buffer
	_, err := snapshot.Write(&buf, "q", tree)
	require.NoError(t, err)

	data := buf.Bytes()
	binary.LittleEndian.PutUint16(data[6:8], 3)

	_, _, err = snapshot.Read(bytes.NewReader(data))
	assert.NoError(t, err)
}

func TestTruncated(t *testing.T) {
	_, _, err := snapshot.Read(strings.NewReader("ITSN"))
	assert.Error(t, err)
}

func TestWriteUnresolvedHole(t *testing.T) {
	ch := make(chan *nodetree.Node, 1)
	tree := nodetree.NewGrouped('[', nodetree.NewDelimited(',', []*nodetree.Node{nodetree.NewHole(ch)}), ']')

	var buf bytes.Buffer
	_, err := snapshot.Write(&buf, "q", tree)
	assert.True(t, errors.Is(err, snapshot.ErrUnresolved), "got %v", err)
	assert.Zero(t, buf.Len())
}

func TestMarkersRoundTrip(t *testing.T) {
	tree := nodetree.NewGrouped('[', nodetree.NewDelimited(',', []*nodetree.Node{
		nodetree.NewMarker(nodetree.Locked),
		nodetree.NewMarker(nodetree.BorrowedMut),
		nodetree.NewMarker(nodetree.Limited),
		nodetree.NewGrouped('(', nodetree.NewDelimited(',', nil), ')'),
	}), ']')
	tree.Resolve()

	var buf bytes.Buffer
	_, err := snapshot.Write(&buf, "markers", tree)
	require.NoError(t, err)
	snap, _, err := snapshot.Read(&buf)
	require.NoError(t, err)

	assert.Equal(t, "[ <locked>, <borrowed-mut>, ..., () ]", snap.Tree.String())
	assert.Equal(t, tree.Size, snap.Tree.Size)
}
