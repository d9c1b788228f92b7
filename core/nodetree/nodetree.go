// Package nodetree holds the rendered form of a value.
//
// A tree may be partial: nodes can stand for values that were cut by the
// render budget, visited twice, locked, or not yet delivered (holes). Resolve
// waits for every hole and computes the sizes used for line breaking.
package nodetree

import (
	"strings"
	"sync/atomic"
)

// Kind identifies the shape of a node.
type Kind int

const (
	Grouped   Kind = iota // Open, Children[0], Close
	Delimited             // Children separated by Delim
	Named                 // Children[0] followed by Children[1]
	KeyValue              // Children[0] Sep Children[1]
	Leaf                  // Text
	Hole                  // value still to be received
	BorrowedMut
	Locked
	Repeated // value already rendered elsewhere in the tree
	Limited  // render budget exhausted
)

func (k Kind) String() string {
	switch k {
	case Grouped:
		return "Grouped"
	case Delimited:
		return "Delimited"
	case Named:
		return "Named"
	case KeyValue:
		return "KeyValue"
	case Leaf:
		return "Leaf"
	case Hole:
		return "Hole"
	case BorrowedMut:
		return "BorrowedMut"
	case Locked:
		return "Locked"
	case Repeated:
		return "Repeated"
	case Limited:
		return "Limited"
	default:
		return "Unknown"
	}
}

// Meta is the identity tag of a rendered value. It counts how many times the
// value was reached during one render; nodes share a tag by pointer.
type Meta struct {
	refs atomic.Int64
}

// NewMeta returns a tag with a count of one.
func NewMeta() *Meta {
	m := &Meta{}
	m.refs.Store(1)
	return m
}

// Inc records one more reference.
func (m *Meta) Inc() {
	m.refs.Add(1)
}

// Refs returns the current reference count.
func (m *Meta) Refs() int64 {
	return m.refs.Load()
}

// Node is one element of a rendered tree.
type Node struct {
	Kind     Kind
	Text     string // Leaf
	Open     rune   // Grouped
	Close    rune   // Grouped
	Delim    rune   // Delimited
	Sep      string // KeyValue
	Children []*Node
	Meta     *Meta
	Size     int // set by Resolve

	hole <-chan *Node
}

// NewLeaf returns a text leaf.
func NewLeaf(text string) *Node {
	return &Node{Kind: Leaf, Text: text}
}

// NewGrouped wraps sub between open and close.
func NewGrouped(open rune, sub *Node, close rune) *Node {
	return &Node{Kind: Grouped, Open: open, Close: close, Children: []*Node{sub}}
}

// NewDelimited joins children with delim.
func NewDelimited(delim rune, children []*Node) *Node {
	return &Node{Kind: Delimited, Delim: delim, Children: children}
}

// NewNamed prefixes body with a name leaf.
func NewNamed(name string, body *Node) *Node {
	return &Node{Kind: Named, Children: []*Node{NewLeaf(name), body}}
}

// NewKeyValue pairs key and value around sep.
func NewKeyValue(key *Node, sep string, value *Node) *Node {
	return &Node{Kind: KeyValue, Sep: sep, Children: []*Node{key, value}}
}

// NewHole returns a placeholder filled by the first node received from ch.
func NewHole(ch <-chan *Node) *Node {
	return &Node{Kind: Hole, hole: ch}
}

// NewMarker returns a childless node of the given kind.
func NewMarker(kind Kind) *Node {
	return &Node{Kind: kind}
}

// WithMeta tags n and returns it.
func (n *Node) WithMeta(m *Meta) *Node {
	n.Meta = m
	return n
}

// Sub returns the grouped body.
func (n *Node) Sub() *Node {
	return n.Children[0]
}

// Resolve fills every hole, blocking until each has been delivered, and
// computes Size for the whole tree. It returns the size of n.
func (n *Node) Resolve() int {
	for n.Kind == Hole {
		*n = *<-n.hole
	}

	count := 1
	switch n.Kind {
	case Grouped:
		count += 2 + n.Sub().Resolve()
	case Delimited:
		for _, c := range n.Children {
			count += c.Resolve() + 2
		}
	case KeyValue:
		count += n.Children[0].Resolve()
		count += len(n.Sep) + 2
		count += n.Children[1].Resolve()
	case Named:
		count += n.Children[0].Resolve()
		count += n.Children[1].Resolve()
	case Leaf:
		count += len(n.Text)
	}

	n.Size = count
	return count
}

// String renders the tree on one line.
func (n *Node) String() string {
	var b strings.Builder
	n.write(&b)
	return b.String()
}

func (n *Node) write(b *strings.Builder) {
	switch n.Kind {
	case Grouped:
		space := " "
		if sub := n.Sub(); sub.Kind == Delimited && len(sub.Children) == 0 {
			space = ""
		}
		b.WriteRune(n.Open)
		b.WriteString(space)
		n.Sub().write(b)
		b.WriteString(space)
		b.WriteRune(n.Close)
	case Delimited:
		for i, c := range n.Children {
			if i > 0 {
				b.WriteRune(n.Delim)
				b.WriteByte(' ')
			}
			c.write(b)
		}
	case KeyValue:
		n.Children[0].write(b)
		b.WriteString(" " + n.Sep + " ")
		n.Children[1].write(b)
	case Named:
		n.Children[0].write(b)
		b.WriteByte(' ')
		n.Children[1].write(b)
	case Leaf:
		b.WriteString(n.Text)
	case Hole:
		b.WriteString("<hole>")
	case BorrowedMut:
		b.WriteString("<borrowed-mut>")
	case Locked:
		b.WriteString("<locked>")
	case Repeated:
		b.WriteString("<repeated>")
	case Limited:
		b.WriteString("...")
	}
}
