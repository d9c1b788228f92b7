package demo

import (
	"math/rand/v2"
	"time"

	"github.com/opal-lang/interact/runtime/interact"
)

// Seed is the seed the CLI graph is generated from.
const Seed = 42

const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_"

// NewRand returns a deterministic generator for seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

func randomString(r *rand.Rand) string {
	b := make([]byte, 20)
	for i := range b {
		b[i] = charset[r.IntN(len(charset))]
	}
	return string(b)
}

// NewBasic returns a Basic with random contents.
func NewBasic(r *rand.Rand) *Basic {
	some := uint8(r.Uint32())
	return &Basic{
		US:         uint(r.Uint64()),
		Is:         int(r.Int64()),
		U64:        r.Uint64(),
		U32:        r.Uint32(),
		U16:        uint16(r.Uint32()),
		U8:         uint8(r.Uint32()),
		Arr:        []uint8{uint8(r.Uint32()), uint8(r.Uint32()), uint8(r.Uint32()), uint8(r.Uint32())},
		Bo:         r.IntN(2) == 1,
		St:         randomString(r),
		Ch:         rune(charset[r.IntN(len(charset))]),
		I64:        r.Int64(),
		I32:        r.Int32(),
		I16:        int16(r.Uint32()),
		I8:         int8(r.Uint32()),
		OptionSome: &some,
		ResultOk:   Result{Ok: uint8(r.Uint32())},
		ResultErr:  Result{IsErr: true, Err: r.Uint32()},
	}
}

func newKey(r *rand.Rand) Key {
	return Key{FieldA: r.Uint64(), FieldB: r.Uint32()}
}

// newRefsAndLocks shares arc_b with arc_c and arc_a with arc_d.
func newRefsAndLocks(r *rand.Rand) RefsAndLocks {
	a := interact.NewShared(r.Uint32())
	b := interact.NewShared(newKey(r))
	return RefsAndLocks{
		ArcA: a,
		ArcB: b,
		ArcC: b.Clone(),
		ArcD: a.Clone(),
		ArcE: interact.NewShared(r.Uint32()),
		ArcF: interact.NewShared(r.Uint32()),
	}
}

// NewComplex returns a Complex with random contents.
func NewComplex(r *rand.Rand) *Complex {
	c := &Complex{
		Simple:     make(map[uint64]uint32),
		ComplexKey: make(map[Key]uint32),
		Map:        make(map[string]uint32),
	}
	for range 2 + r.IntN(8) {
		c.ComplexKey[newKey(r)] = r.Uint32()
	}
	for range 2 + r.IntN(8) {
		c.Simple[r.Uint64()] = r.Uint32()
	}
	for range 2 + r.IntN(8) {
		c.Map[randomString(r)] = r.Uint32()
	}

	c.StructUnnamed = UnnamedFields{S: randomString(r), N: r.Uint32()}
	c.EnumUnit = EnumExample{Kind: VarUnit}
	c.EnumUnnamed = EnumExample{Kind: VarUnnamed, U0: uint8(r.Uint32()), U1: r.Uint32()}
	c.EnumNamed = EnumExample{Kind: VarNamed, A: uint8(r.Uint32()), B: uint16(r.Uint32())}
	c.Boxed = &EnumExample{Kind: VarUnit}
	c.Tuple = Nested{
		N:    r.Uint32(),
		E:    EnumExample{Kind: VarUnit},
		Pair: [2]uint8{uint8(r.Uint32()), uint8(r.Uint32())},
	}
	c.TupleI = r.Int32()
	c.Refs = newRefsAndLocks(r)
	c.BehindArcMutex = interact.NewShared(&Guarded{V: r.Uint32()})
	c.BehindMutex = r.Uint32()
	c.BehindPseudoMutex = NewPseudoMutex(r.Uint64(), interact.Uint64)
	c.Vec = []VecItem{
		{N: r.Uint32(), E: EnumExample{Kind: VarUnit}},
		{N: r.Uint32(), E: EnumExample{Kind: VarNamed, A: 3, B: 4}},
	}
	c.Instant = time.Now()
	return c
}

// NewLocalRcLoop returns a plain chain of three links and a chain whose
// second and third links point at each other.
func NewLocalRcLoop(r *rand.Rand) *LocalRcLoop {
	second := NewLink(Chain{Value: r.Uint32()})
	first := NewLink(Chain{Value: r.Uint32(), Nest: second})
	loop := first.Clone()
	ch, release, _ := (*second.Get()).TryBorrowMut()
	ch.Nest = &loop
	release()

	l := &LocalRcLoop{}
	l.Chain = Chain{
		Value: r.Uint32(),
		Nest: NewLink(Chain{
			Value: r.Uint32(),
			Nest:  NewLink(Chain{Value: r.Uint32()}),
		}),
	}
	l.LoopChain = Chain{Value: r.Uint32(), Nest: first}
	return l
}
