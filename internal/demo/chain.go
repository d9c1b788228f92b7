package demo

import (
	"github.com/opal-lang/interact/runtime/interact"
)

// Link is a shared, borrow-checked Chain.
type Link = interact.Shared[*interact.Cell[Chain]]

// Chain is a linked list whose links may loop back.
type Chain struct {
	Value uint32
	Nest  *Link
}

// NewLink wraps ch into a fresh shared link.
func NewLink(ch Chain) *Link {
	l := interact.NewShared(interact.NewCell(ch))
	return &l
}

func (ch *Chain) Desc() interact.StructDesc {
	return interact.StructDesc{Name: "Chain", Kind: interact.FieldsStruct, Fields: []string{"value", "nest"}}
}

func (ch *Chain) FieldByName(name string) interact.Access {
	switch name {
	case "value":
		return interact.Uint32(&ch.Value)
	case "nest":
		return interact.Option(&ch.Nest, linkAccess)
	}
	return nil
}

func (ch *Chain) FieldByIdx(int) interact.Access { return nil }

func linkAccess(l *Link) interact.Access {
	return interact.SharedAccess(*l, func(cell **interact.Cell[Chain]) interact.Access {
		return interact.CellAccess(*cell, func(ch *Chain) interact.Access { return interact.Struct(ch) })
	})
}

// LocalRcLoop holds a plain chain and one that loops back on itself.
type LocalRcLoop struct {
	Chain     Chain
	LoopChain Chain
}

func (l *LocalRcLoop) Desc() interact.StructDesc {
	return interact.StructDesc{Name: "LocalRcLoop", Kind: interact.FieldsStruct, Fields: []string{"chain", "loop_chain"}}
}

func (l *LocalRcLoop) FieldByName(name string) interact.Access {
	switch name {
	case "chain":
		return interact.Struct(&l.Chain)
	case "loop_chain":
		return interact.Struct(&l.LoopChain)
	}
	return nil
}

func (l *LocalRcLoop) FieldByIdx(int) interact.Access { return nil }
