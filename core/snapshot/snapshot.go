// Package snapshot persists the rendered result of one evaluation.
//
// A snapshot file is a fixed preamble followed by a CBOR payload:
//
//	MAGIC(4) | MAJOR(2) | MINOR(2) | PATCH(2) | DIGEST(32) | PAYLOAD_LEN(8) | PAYLOAD
//
// Integers are little-endian. DIGEST is the BLAKE2b-256 of PAYLOAD. The
// payload is the canonical CBOR encoding of the query and its tree, so equal
// trees always produce equal bytes.
package snapshot

import (
	"errors"
	"fmt"

	"github.com/opal-lang/interact/core/nodetree"
)

const (
	// Magic is the file magic number "ITSN" (4 bytes)
	Magic = "ITSN"

	// Version is the format version written by this package.
	Version = "1.0.0"

	// Compatible is the range of format versions Read accepts.
	Compatible = "^1.0"

	preambleLen = 4 + 3*2 + 32 + 8

	maxPayloadLen = 32 * 1024 * 1024
	maxDepth      = 1000
)

// ErrUnresolved is returned when writing a tree that still holds a hole.
var ErrUnresolved = errors.New("snapshot: tree has unresolved holes")

// ErrDigestMismatch is returned when a payload does not match its digest.
var ErrDigestMismatch = errors.New("snapshot: digest mismatch")

// Snapshot is a decoded snapshot file.
type Snapshot struct {
	Query string
	Tree  *nodetree.Node
}

// document is the CBOR payload.
type document struct {
	Query string `cbor:"1,keyasint"`
	// Refs holds the reference count of every identity tag, indexed by
	// ref id minus one.
	Refs []int64  `cbor:"2,keyasint,omitempty"`
	Tree wireNode `cbor:"3,keyasint"`
}

type wireNode struct {
	Kind     uint8      `cbor:"1,keyasint"`
	Text     string     `cbor:"2,keyasint,omitempty"`
	Open     int32      `cbor:"3,keyasint,omitempty"`
	Close    int32      `cbor:"4,keyasint,omitempty"`
	Delim    int32      `cbor:"5,keyasint,omitempty"`
	Sep      string     `cbor:"6,keyasint,omitempty"`
	Children []wireNode `cbor:"7,keyasint,omitempty"`
	Ref      uint32     `cbor:"8,keyasint,omitempty"` // 0 when untagged
}

// arity is the child count each kind requires; -1 for any.
func arity(k nodetree.Kind) int {
	switch k {
	case nodetree.Grouped:
		return 1
	case nodetree.Named, nodetree.KeyValue:
		return 2
	case nodetree.Delimited:
		return -1
	default:
		return 0
	}
}

func depthError(depth int) error {
	return fmt.Errorf("tree depth %d exceeds maximum %d", depth, maxDepth)
}
