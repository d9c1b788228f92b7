package snapshot

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/Masterminds/semver/v3"
	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"

	"github.com/opal-lang/interact/core/invariant"
	"github.com/opal-lang/interact/core/nodetree"
)

// Write writes query and its resolved tree to w and returns the BLAKE2b-256
// digest of the payload.
func Write(w io.Writer, query string, tree *nodetree.Node) ([32]byte, error) {
	invariant.NotNil(tree, "tree")

	wr := &writer{refs: make(map[*nodetree.Meta]uint32)}
	root, err := wr.toWire(tree, 0)
	if err != nil {
		return [32]byte{}, err
	}

	encMode, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return [32]byte{}, fmt.Errorf("failed to create CBOR encoder: %w", err)
	}
	payload, err := encMode.Marshal(document{Query: query, Refs: wr.counts, Tree: root})
	if err != nil {
		return [32]byte{}, fmt.Errorf("CBOR encoding failed: %w", err)
	}
	if len(payload) > maxPayloadLen {
		return [32]byte{}, fmt.Errorf("payload length %d exceeds maximum %d", len(payload), maxPayloadLen)
	}

	digest := blake2b.Sum256(payload)

	var buf bytes.Buffer
	buf.Grow(preambleLen + len(payload))
	if err := writePreamble(&buf, digest, uint64(len(payload))); err != nil {
		return [32]byte{}, err
	}
	buf.Write(payload)

	if _, err := w.Write(buf.Bytes()); err != nil {
		return [32]byte{}, err
	}
	return digest, nil
}

func writePreamble(buf *bytes.Buffer, digest [32]byte, payloadLen uint64) error {
	v := semver.MustParse(Version)
	buf.WriteString(Magic)
	for _, part := range []uint64{v.Major(), v.Minor(), v.Patch()} {
		if part > math.MaxUint16 {
			return fmt.Errorf("version component %d exceeds maximum %d", part, math.MaxUint16)
		}
		if err := binary.Write(buf, binary.LittleEndian, uint16(part)); err != nil {
			return err
		}
	}
	buf.Write(digest[:])
	return binary.Write(buf, binary.LittleEndian, payloadLen)
}

type writer struct {
	// ref ids by tag, numbered from 1 in first-seen order
	refs   map[*nodetree.Meta]uint32
	counts []int64
}

func (wr *writer) ref(m *nodetree.Meta) uint32 {
	if m == nil {
		return 0
	}
	if id, ok := wr.refs[m]; ok {
		return id
	}
	wr.counts = append(wr.counts, m.Refs())
	id := uint32(len(wr.counts))
	wr.refs[m] = id
	return id
}

func (wr *writer) toWire(n *nodetree.Node, depth int) (wireNode, error) {
	if depth > maxDepth {
		return wireNode{}, depthError(depth)
	}
	if n.Kind == nodetree.Hole {
		return wireNode{}, ErrUnresolved
	}

	wn := wireNode{
		Kind:  uint8(n.Kind),
		Text:  n.Text,
		Open:  n.Open,
		Close: n.Close,
		Delim: n.Delim,
		Sep:   n.Sep,
		Ref:   wr.ref(n.Meta),
	}
	if len(n.Children) > 0 {
		wn.Children = make([]wireNode, len(n.Children))
		for i, c := range n.Children {
			child, err := wr.toWire(c, depth+1)
			if err != nil {
				return wireNode{}, err
			}
			wn.Children[i] = child
		}
	}
	return wn, nil
}
