package interact

import (
	"iter"
	"sync"
	"sync/atomic"

	"github.com/opal-lang/interact/core/invariant"
	"github.com/opal-lang/interact/core/nodetree"
)

type reflectorState struct {
	limit int64
	used  atomic.Int64

	mu   sync.Mutex
	seen map[any]*nodetree.Meta
}

// Reflector renders values into node trees.
//
// A Reflector is created per query. It limits the number of rendered nodes
// and tags every rendered value with an identity so that a value reached a
// second time renders as a back-reference instead of being walked again.
//
// Identity is the pointer a value is adapted from: an interface holding a
// pointer compares by dynamic type and address, so a struct and its first
// field stay distinct.
type Reflector struct {
	state *reflectorState

	// synced is false for views used inside Indirect callbacks, where waiting
	// for another hop could deadlock. Those render pending hops as holes.
	synced bool
}

// NewReflector returns a reflector that renders at most limit nodes.
func NewReflector(limit int) *Reflector {
	return &Reflector{
		state: &reflectorState{
			limit: int64(limit),
			seen:  make(map[any]*nodetree.Meta),
		},
		synced: true,
	}
}

func (r *Reflector) remote() *Reflector {
	return &Reflector{state: r.state}
}

func (r *Reflector) exhausted() bool {
	return r.state.limit <= r.state.used.Load()
}

// Seen records id as rendered. On the first visit it returns a fresh
// identity tag; afterwards it returns a Repeated node carrying the tag of the
// first rendering.
func (r *Reflector) Seen(id any) (*nodetree.Meta, *nodetree.Node) {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	if meta, ok := r.state.seen[id]; ok {
		meta.Inc()
		return nil, nodetree.NewMarker(nodetree.Repeated).WithMeta(meta)
	}
	meta := nodetree.NewMeta()
	r.state.seen[id] = meta
	return meta, nil
}

// Reflect renders a.
func (r *Reflector) Reflect(a Access) *nodetree.Node {
	ia := a.ImmutAccess()

	var n *nodetree.Node
	switch {
	case ia.Direct != nil:
		n = ia.Direct.Reflect(r)
	case ia.Indirect != nil:
		ch := make(chan *nodetree.Node, 1)
		remote := r.remote()
		ia.Indirect.Indirect(func(v Access) {
			ch <- remote.Reflect(v)
		})
		if r.synced {
			n = <-ch
		} else {
			n = nodetree.NewHole(ch)
		}
	default:
		invariant.Invariant(false, "value of type %T exposes neither direct nor indirect access", a)
	}

	r.state.used.Add(1)
	return n
}

// ReflectStruct renders s according to desc. Anonymous renderings omit the
// type name.
func (r *Reflector) ReflectStruct(desc StructDesc, s ReflectStruct, anon bool) *nodetree.Node {
	meta, rep := r.Seen(s)
	if rep != nil {
		return rep
	}

	var body *nodetree.Node
	switch desc.Kind {
	case UnitStruct:
		return nodetree.NewLeaf(desc.Name).WithMeta(meta)

	case TupleStruct:
		var children []*nodetree.Node
		for i := 0; i < desc.Len; i++ {
			if r.exhausted() {
				children = append(children, nodetree.NewMarker(nodetree.Limited))
				break
			}
			children = append(children, r.Reflect(s.FieldByIdx(i)))
		}
		body = nodetree.NewGrouped('(', nodetree.NewDelimited(',', children), ')')

	case FieldsStruct:
		var items []keyed
		missing := false
		for _, name := range desc.Fields {
			if r.exhausted() {
				missing = true
				break
			}
			r.state.used.Add(1)
			items = append(items, keyed{key: nodetree.NewLeaf(name), value: s.FieldByName(name)})
		}
		body = nodetree.NewGrouped('{', nodetree.NewDelimited(',', r.keyValues(items, missing)), '}')
	}

	if desc.Name != "" && !anon {
		body = nodetree.NewNamed(desc.Name, body)
	}
	return body.WithMeta(meta)
}

type keyed struct {
	key   *nodetree.Node
	value Access
}

// keyValues renders the values of items counted in a first pass.
func (r *Reflector) keyValues(items []keyed, missing bool) []*nodetree.Node {
	result := make([]*nodetree.Node, 0, len(items)+1)
	for _, item := range items {
		var value *nodetree.Node
		if r.exhausted() {
			value = nodetree.NewMarker(nodetree.Limited)
		} else {
			value = r.Reflect(item.value)
		}
		result = append(result, nodetree.NewKeyValue(item.key, ":", value))
	}
	if missing {
		result = append(result, nodetree.NewMarker(nodetree.Limited))
	}
	return result
}

// ReflectMap renders the entries of a map as `name { k : v, ... }`.
func (r *Reflector) ReflectMap(id any, name string, entries iter.Seq2[Access, Access]) *nodetree.Node {
	meta, rep := r.Seen(id)
	if rep != nil {
		return rep
	}

	var items []keyed
	missing := false
	for k, v := range entries {
		if r.exhausted() {
			missing = true
			break
		}
		r.state.used.Add(1)
		items = append(items, keyed{key: r.Reflect(k), value: v})
	}

	body := nodetree.NewGrouped('{', nodetree.NewDelimited(',', r.keyValues(items, missing)), '}')
	return nodetree.NewNamed(name, body).WithMeta(meta)
}

// ReflectSet renders the members of a set as `name { m, ... }`.
func (r *Reflector) ReflectSet(id any, name string, members iter.Seq[Access]) *nodetree.Node {
	meta, rep := r.Seen(id)
	if rep != nil {
		return rep
	}

	var children []*nodetree.Node
	for m := range members {
		if r.exhausted() {
			children = append(children, nodetree.NewMarker(nodetree.Limited))
			break
		}
		children = append(children, r.Reflect(m))
	}

	body := nodetree.NewGrouped('{', nodetree.NewDelimited(',', children), '}')
	return nodetree.NewNamed(name, body).WithMeta(meta)
}

// ReflectVec renders n items as `[ ... ]`, prefixed by name when not empty.
func (r *Reflector) ReflectVec(id any, name string, n int, item func(int) Access) *nodetree.Node {
	meta, rep := r.Seen(id)
	if rep != nil {
		return rep
	}

	var children []*nodetree.Node
	for i := 0; i < n; i++ {
		if r.exhausted() {
			children = append(children, nodetree.NewMarker(nodetree.Limited))
			break
		}
		children = append(children, r.Reflect(item(i)))
	}

	body := nodetree.NewGrouped('[', nodetree.NewDelimited(',', children), ']')
	if name != "" {
		body = nodetree.NewNamed(name, body)
	}
	return body.WithMeta(meta)
}
