package snapshot

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/Masterminds/semver/v3"
	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"

	"github.com/opal-lang/interact/core/nodetree"
)

// Read reads a snapshot from r and returns it with its digest. The returned
// tree is resolved.
func Read(r io.Reader) (*Snapshot, [32]byte, error) {
	var preamble [preambleLen]byte
	if _, err := io.ReadFull(r, preamble[:]); err != nil {
		return nil, [32]byte{}, fmt.Errorf("read preamble: %w", err)
	}

	magic := string(preamble[0:4])
	if magic != Magic {
		return nil, [32]byte{}, fmt.Errorf("invalid magic: got %q, expected %q", magic, Magic)
	}

	version := fmt.Sprintf("%d.%d.%d",
		binary.LittleEndian.Uint16(preamble[4:6]),
		binary.LittleEndian.Uint16(preamble[6:8]),
		binary.LittleEndian.Uint16(preamble[8:10]))
	if err := checkVersion(version); err != nil {
		return nil, [32]byte{}, err
	}

	var digest [32]byte
	copy(digest[:], preamble[10:42])

	payloadLen := binary.LittleEndian.Uint64(preamble[42:50])
	if payloadLen > maxPayloadLen {
		return nil, [32]byte{}, fmt.Errorf("payload length %d exceeds maximum %d", payloadLen, maxPayloadLen)
	}

	payload := make([]byte, payloadLen)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, [32]byte{}, fmt.Errorf("read payload: %w", err)
	}
	if blake2b.Sum256(payload) != digest {
		return nil, [32]byte{}, ErrDigestMismatch
	}

	decMode, err := cbor.DecOptions{MaxNestedLevels: 2*maxDepth + 8}.DecMode()
	if err != nil {
		return nil, [32]byte{}, fmt.Errorf("failed to create CBOR decoder: %w", err)
	}
	var doc document
	if err := decMode.NewDecoder(bytes.NewReader(payload)).Decode(&doc); err != nil {
		return nil, [32]byte{}, fmt.Errorf("parse payload: %w", err)
	}

	rd := &reader{counts: doc.Refs, metas: make(map[uint32]*nodetree.Meta)}
	tree, err := rd.fromWire(doc.Tree, 0)
	if err != nil {
		return nil, [32]byte{}, fmt.Errorf("parse tree: %w", err)
	}
	tree.Resolve()

	return &Snapshot{Query: doc.Query, Tree: tree}, digest, nil
}

func checkVersion(version string) error {
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("invalid version %q: %w", version, err)
	}
	c, err := semver.NewConstraint(Compatible)
	if err != nil {
		return err
	}
	if !c.Check(v) {
		return fmt.Errorf("unsupported version: got %s, expected %s", v, Compatible)
	}
	return nil
}

type reader struct {
	counts []int64
	metas  map[uint32]*nodetree.Meta
}

// meta returns the tag for id, creating it with its recorded count on first
// use so that every node carrying id shares it.
func (rd *reader) meta(id uint32) (*nodetree.Meta, error) {
	if id == 0 {
		return nil, nil
	}
	if m, ok := rd.metas[id]; ok {
		return m, nil
	}
	if int(id) > len(rd.counts) {
		return nil, fmt.Errorf("ref %d out of range (%d refs)", id, len(rd.counts))
	}
	m := nodetree.NewMeta()
	for range rd.counts[id-1] - 1 {
		m.Inc()
	}
	rd.metas[id] = m
	return m, nil
}

func (rd *reader) fromWire(wn wireNode, depth int) (*nodetree.Node, error) {
	if depth > maxDepth {
		return nil, depthError(depth)
	}

	kind := nodetree.Kind(wn.Kind)
	if kind > nodetree.Limited || kind == nodetree.Hole {
		return nil, fmt.Errorf("invalid node kind %d", wn.Kind)
	}
	if want := arity(kind); want >= 0 && len(wn.Children) != want {
		return nil, fmt.Errorf("%s node has %d children, expected %d", kind, len(wn.Children), want)
	}

	m, err := rd.meta(wn.Ref)
	if err != nil {
		return nil, err
	}

	n := &nodetree.Node{
		Kind:  kind,
		Text:  wn.Text,
		Open:  wn.Open,
		Close: wn.Close,
		Delim: wn.Delim,
		Sep:   wn.Sep,
		Meta:  m,
	}
	if len(wn.Children) > 0 {
		n.Children = make([]*nodetree.Node, len(wn.Children))
		for i, c := range wn.Children {
			child, err := rd.fromWire(c, depth+1)
			if err != nil {
				return nil, err
			}
			n.Children[i] = child
		}
	}
	return n, nil
}
