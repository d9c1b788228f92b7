package root

import (
	"bytes"
	"log/slog"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opal-lang/interact/core/assist"
	"github.com/opal-lang/interact/internal/demo"
	"github.com/opal-lang/interact/runtime/interact"
	"github.com/opal-lang/interact/runtime/lexer"
)

type fixture struct {
	root    *Root
	state   *demo.State
	basic   *demo.Basic
	complex *demo.Complex
}

func newFixture(opts ...Option) *fixture {
	r := demo.NewRand(demo.Seed)
	f := &fixture{
		state:   demo.NewState(),
		basic:   demo.NewBasic(r),
		complex: demo.NewComplex(r),
	}

	send := NewSend()
	send.Insert("state", interact.Struct(f.state))
	send.Insert("basic", interact.Struct(f.basic))
	send.Insert("complex", interact.Struct(f.complex))

	local := NewLocal()
	local.Insert("rc_loops", interact.Struct(demo.NewLocalRcLoop(r)))

	f.root = New(send, local, opts...)
	return f
}

func assertAssist(t *testing.T, expected, actual assist.Assist[string]) {
	t.Helper()
	if diff := cmp.Diff(expected, actual, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("assist mismatch (-expected +actual):\n%s", diff)
	}
}

func TestStateQueries(t *testing.T) {
	tests := []struct {
		path     string
		rendered string
		assist   assist.Assist[string]
	}{
		{
			path:     "state.u",
			rendered: "10",
			assist:   assist.Assist[string]{Valid: 7, Next: assist.Avail(0, []string{})},
		},
		{
			path:     "state.m",
			rendered: "map { 3 : 4, 7 : 8 }",
			assist:   assist.Assist[string]{Valid: 7, Next: assist.Avail(0, []string{".len(", "["})},
		},
		{
			path:     "state.m[3]",
			rendered: "4",
			assist:   assist.Assist[string]{Valid: 10, Next: assist.Avail(0, []string{})},
		},
		{
			path:     "state.m.len()",
			rendered: "2",
			assist:   assist.Assist[string]{Valid: 13, Next: assist.Avail(0, []string{})},
		},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			f := newFixture()
			node, a, err := f.root.Access(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.rendered, node.String())
			assertAssist(t, tt.assist, a)
		})
	}
}

func TestLeafSize(t *testing.T) {
	f := newFixture()
	node, _, err := f.root.Access("state.u")
	require.NoError(t, err)
	assert.Equal(t, 3, node.Size)
}

func TestUnknownField(t *testing.T) {
	f := newFixture()
	node, a, err := f.root.Access("state.nonexist")
	assert.Nil(t, node)
	assert.True(t, interact.IsKind(err, interact.UnexpectedToken), "got %v", err)
	assertAssist(t, assist.Assist[string]{Valid: 5, Pending: 1, Next: assist.Avail(1, []string{})}, a)
}

func TestPartialField(t *testing.T) {
	f := newFixture()
	_, a, err := f.root.Probe("basic.u_")
	assert.True(t, interact.IsKind(err, interact.UnexpectedToken), "got %v", err)

	// The typed "u_" stays pending and every completion replaces it.
	expected := assist.Assist[string]{
		Valid:   5,
		Pending: 3,
		Next:    assist.Avail(1, []string{"u_s", "u_64", "u_32", "u_16", "u_8"}),
	}
	assertAssist(t, expected, a)

	pos, items := a.Next.IntoPosition(a.Valid)
	assert.Equal(t, "basic.", "basic.u_"[:pos])
	assert.Len(t, items, 5)
}

func TestReadScalar(t *testing.T) {
	f := newFixture()
	node, _, err := f.root.Access("basic.u_16")
	require.NoError(t, err)
	assert.Equal(t, strconv.FormatUint(uint64(f.basic.U16), 10), node.String())
}

func TestMissingRoot(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		suggestions []string
		assist      assist.Assist[string]
	}{
		{
			name:        "prefix of a root",
			path:        "sta",
			suggestions: []string{"state"},
			assist:      assist.Assist[string]{Pending: 3, Next: assist.Avail(0, []string{"state"})},
		},
		{
			name:        "transposed letters",
			path:        "tsate",
			suggestions: []string{"state"},
			assist:      assist.Assist[string]{Next: assist.Avail(0, []string{})},
		},
		{
			name:   "nothing close",
			path:   "zzz",
			assist: assist.Assist[string]{Next: assist.Avail(0, []string{})},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			node, a, err := f.root.Access(tt.path)
			assert.Nil(t, node)

			var ce *interact.ClimbError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, interact.MissingStartComponent, ce.Kind)
			if diff := cmp.Diff(tt.suggestions, ce.Suggestions, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("suggestions mismatch (-expected +actual):\n%s", diff)
			}
			assertAssist(t, tt.assist, a)
		})
	}
}

func TestNullPath(t *testing.T) {
	f := newFixture()
	_, a, err := f.root.Probe("")
	assert.True(t, interact.IsKind(err, interact.NullPath), "got %v", err)
	assertAssist(t, assist.Assist[string]{
		Next: assist.Avail(0, []string{"basic", "complex", "rc_loops", "state"}),
	}, a)
}

func TestLexError(t *testing.T) {
	f := newFixture()
	_, _, err := f.root.Access("state.m[99999999999999999999999]")

	var le *lexer.LexError
	assert.ErrorAs(t, err, &le)
	assert.True(t, interact.IsKind(err, interact.UnexpectedToken), "got %v", err)
}

func TestLexTraceLoggedOnFailure(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	f := newFixture(WithLogger(logger), WithLexTrace())
	_, _, err := f.root.Access("state.m[99999999999999999999999]")
	require.Error(t, err)
	assert.Contains(t, buf.String(), "lex trace")
	assert.Contains(t, buf.String(), "event=enter_lexNumber")

	buf.Reset()
	f = newFixture(WithLogger(logger))
	_, _, err = f.root.Access("state.m[99999999999999999999999]")
	require.Error(t, err)
	assert.NotContains(t, buf.String(), "lex trace")
}

func TestKeys(t *testing.T) {
	f := newFixture()
	assert.Equal(t, []string{"basic", "complex", "rc_loops", "state"}, f.root.Keys())

	empty := New(nil, nil)
	assert.Empty(t, empty.Keys())
}

func TestProbeIsIdempotent(t *testing.T) {
	f := newFixture()

	_, first, err := f.root.Probe("state.u = 3")
	require.NoError(t, err)
	_, second, err := f.root.Probe("state.u = 3")
	require.NoError(t, err)

	assertAssist(t, first, second)
	assert.Equal(t, uint32(10), f.state.U)
}

func TestAssignmentRoundTrip(t *testing.T) {
	f := newFixture()

	_, a, err := f.root.Access("state.u = 3")
	require.NoError(t, err)
	assert.Equal(t, 11, a.Valid)

	node, _, err := f.root.Access("state.u")
	require.NoError(t, err)
	assert.Equal(t, "3", node.String())

	_, _, err = f.root.Access("state.foo = Foo { a: 7, b: 8 }")
	require.NoError(t, err)
	assert.Equal(t, demo.Foo{A: 7, B: 8}, f.state.Foo)
}

func TestSignedBoundsRoundTrip(t *testing.T) {
	tests := []struct {
		field string
		value string
	}{
		{"i_8", "127"},
		{"i_8", "-128"},
		{"i_16", "32767"},
		{"i_16", "-32768"},
		{"i_32", "2147483647"},
		{"i_64", "9223372036854775807"},
		{"i_64", "-9223372036854775808"},
	}

	for _, tt := range tests {
		t.Run(tt.field+"="+tt.value, func(t *testing.T) {
			f := newFixture()
			path := "basic." + tt.field

			_, _, err := f.root.Access(path + " = " + tt.value)
			require.NoError(t, err)

			node, _, err := f.root.Access(path)
			require.NoError(t, err)
			assert.Equal(t, tt.value, node.String())
		})
	}

	f := newFixture()
	_, _, err := f.root.Access("basic.i_8 = 128")
	assert.True(t, interact.IsKind(err, interact.AssignFailed), "got %v", err)
}

func TestMethodCalls(t *testing.T) {
	f := newFixture()

	node, _, err := f.root.Access("complex.check()")
	require.NoError(t, err)
	assert.Equal(t, strconv.FormatBool(f.complex.Check()), node.String())

	before := f.complex.Vec[0].N
	_, _, err = f.root.Probe("complex.add(3)")
	require.NoError(t, err)
	assert.Equal(t, before, f.complex.Vec[0].N)

	node, _, err = f.root.Access("complex.add(3)")
	require.NoError(t, err)
	assert.Equal(t, "()", node.String())
	assert.Equal(t, before+3, f.complex.Vec[0].N)
}

func TestCycleSafety(t *testing.T) {
	f := newFixture()
	node, _, err := f.root.Access("rc_loops.loop_chain")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(node.String(), "<repeated>"), node.String())

	node, _, err = f.root.Access("rc_loops.chain")
	require.NoError(t, err)
	assert.NotContains(t, node.String(), "<repeated>")
}

func TestSharedHandlesRenderOnce(t *testing.T) {
	f := newFixture()
	node, _, err := f.root.Access("complex.refs")
	require.NoError(t, err)

	// arc_c repeats arc_b and arc_d repeats arc_a.
	assert.Equal(t, 2, strings.Count(node.String(), "<repeated>"), node.String())
}

func TestBudgetTruncation(t *testing.T) {
	f := newFixture(WithMaxNodes(5))
	node, _, err := f.root.Access("complex")
	require.NoError(t, err)
	assert.Contains(t, node.String(), "...")

	node, _, err = f.root.Access("state.v")
	require.NoError(t, err)
	assert.Equal(t, "[ 1, 2, 3 ]", node.String())
}

func TestLockPromotion(t *testing.T) {
	f := newFixture()

	_, _, err := f.root.Access("state.test.a = 5")
	require.NoError(t, err)
	guard := *f.state.Test.Get()
	assert.Equal(t, uint32(5), guard.Foo.A)

	guard.Lock()
	_, _, err = f.root.Access("state.test.a")
	guard.Unlock()
	assert.True(t, interact.IsKind(err, interact.Locked), "got %v", err)

	_, _, err = f.root.Access("complex.behind_pseudo_mutex = 3")
	require.NoError(t, err)
	node, _, err := f.root.Access("complex.behind_pseudo_mutex")
	require.NoError(t, err)
	assert.Equal(t, "3", node.String())
}

func TestMapIndexing(t *testing.T) {
	f := newFixture()

	_, _, err := f.root.Access("state.m[5]")
	assert.True(t, interact.IsKind(err, interact.NotFound), "got %v", err)

	_, _, err = f.root.Access("state.m[7] = 9")
	require.NoError(t, err)
	assert.Equal(t, uint32(9), f.state.M[7])
}

func TestActorRoot(t *testing.T) {
	worker := demo.NewWorker(demo.Foo{A: 1, B: 2})
	defer worker.Close()

	send := NewSend()
	send.Insert("worker", worker)
	r := New(send, nil)

	node, _, err := r.Access("worker.a")
	require.NoError(t, err)
	assert.Equal(t, "1", node.String())

	_, _, err = r.Access("worker.b = 5")
	require.NoError(t, err)

	node, _, err = r.Access("worker")
	require.NoError(t, err)
	assert.Equal(t, "Foo { a : 1, b : 5 }", node.String())

	send.Remove("worker")
	assert.Empty(t, r.Keys())
}

func TestLocalShadowsSend(t *testing.T) {
	a, b := uint32(1), uint32(2)
	send := NewSend()
	send.Insert("x", interact.Uint32(&a))
	local := NewLocal()
	local.Insert("x", interact.Uint32(&b))

	node, _, err := New(send, local).Access("x")
	require.NoError(t, err)
	assert.Equal(t, "2", node.String())
}
