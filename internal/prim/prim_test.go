package prim

import (
	"testing"

	"github.com/eug-vs/lambo/internal/heap"
	"github.com/eug-vs/lambo/internal/ids"
)

// identityRuntime forces nothing: every id it is handed is assumed to
// already be in the shape the test constructed, which is enough to
// exercise primitives (like #sharing_probe and #eq over flat Num/Data
// trees) that only need Whnf/ForceDeep over already-value-form nodes.
// Full Thunk-forcing behaviour is exercised against the real reducer.
type identityRuntime struct{}

func (identityRuntime) Whnf(id ids.NodeID, env ids.EnvID) (ids.NodeID, error) { return id, nil }
func (identityRuntime) ForceDeep(id ids.NodeID) (ids.NodeID, error)           { return id, nil }

func callPrim(t *testing.T, h *heap.Heap, id ids.PrimID, args ...ids.NodeID) ids.NodeID {
	t.Helper()
	e, ok := Get(id)
	if !ok {
		t.Fatalf("no entry for %d", id)
	}
	if uint32(len(args)) != e.Arity {
		t.Fatalf("%s: wrong arg count", e.Name)
	}
	r, err := e.Handler(h, identityRuntime{}, args)
	if err != nil {
		t.Fatalf("%s: unexpected error: %v", e.Name, err)
	}
	return r
}

func TestLookupKnownPrimitives(t *testing.T) {
	cases := []struct {
		name  string
		arity uint32
	}{
		{"#constructor", 1}, {"#match", 4}, {"+", 2}, {"-", 2}, {"*", 2}, {"/", 2},
		{"modulo", 2}, {"=num", 2}, {"#bytes_new", 1}, {"#bytes_get", 2},
		{"#bytes_push", 2}, {"#eq", 2}, {"#io_pure", 1}, {"#io_print", 1},
		{"#io_read", 0}, {"#io_putchar", 1}, {"#io_flatmap", 2}, {"#io_throw", 1},
	}
	for _, c := range cases {
		id, arity, ok := Lookup(c.name)
		if !ok {
			t.Fatalf("%s: not found", c.name)
		}
		if arity != c.arity {
			t.Fatalf("%s: expected arity %d, got %d", c.name, c.arity, arity)
		}
		if Arity(id) != c.arity {
			t.Fatalf("%s: Arity(id) mismatch", c.name)
		}
	}
}

func TestLookupUnknownFails(t *testing.T) {
	if _, _, ok := Lookup("#nope"); ok {
		t.Fatalf("expected lookup failure")
	}
}

func TestArithmeticWrapsAndSaturates(t *testing.T) {
	h := heap.New()
	a := h.Alloc(heap.Node{Kind: heap.KNum, Num: 3})
	b := h.Alloc(heap.Node{Kind: heap.KNum, Num: 5})

	sum := callPrim(t, h, Add, a, b)
	if h.Get(sum).Num != 8 {
		t.Fatalf("3+5 = %d", h.Get(sum).Num)
	}

	diff := callPrim(t, h, Sub, a, b) // 3 - 5, saturates at 0
	if h.Get(diff).Num != 0 {
		t.Fatalf("saturating sub: got %d", h.Get(diff).Num)
	}

	prod := callPrim(t, h, Mul, a, b)
	if h.Get(prod).Num != 15 {
		t.Fatalf("3*5 = %d", h.Get(prod).Num)
	}
}

// TestModuloIsDivisorFirstValueLast covers the point-free convention
// ("num | modulo m" reads as "num modulo m"): the first argument is the
// divisor, the second is the value being reduced.
func TestModuloIsDivisorFirstValueLast(t *testing.T) {
	h := heap.New()
	m := h.Alloc(heap.Node{Kind: heap.KNum, Num: 3})
	num := h.Alloc(heap.Node{Kind: heap.KNum, Num: 10})

	r := callPrim(t, h, Modulo, m, num)
	if h.Get(r).Num != 1 {
		t.Fatalf("10 modulo 3 should be 1, got %d", h.Get(r).Num)
	}
}

func TestModuloByZeroDivisorFails(t *testing.T) {
	h := heap.New()
	zero := h.Alloc(heap.Node{Kind: heap.KNum, Num: 0})
	num := h.Alloc(heap.Node{Kind: heap.KNum, Num: 10})
	e, _ := Get(Modulo)
	if _, err := e.Handler(h, identityRuntime{}, []ids.NodeID{zero, num}); err == nil {
		t.Fatalf("expected division by zero error")
	}
}

func TestDivByZero(t *testing.T) {
	h := heap.New()
	a := h.Alloc(heap.Node{Kind: heap.KNum, Num: 10})
	zero := h.Alloc(heap.Node{Kind: heap.KNum, Num: 0})
	e, _ := Get(Div)
	if _, err := e.Handler(h, identityRuntime{}, []ids.NodeID{a, zero}); err == nil {
		t.Fatalf("expected division by zero error")
	}
}

// churchSelect manually applies a churchBool result without a reducer,
// by inspecting the two nested Lambda nodes the handler built.
func churchSelect(h *heap.Heap, boolID ids.NodeID, a, b ids.NodeID) ids.NodeID {
	inner := h.Get(boolID).Body
	v := h.Get(inner).Body
	if h.Get(v).Depth == 2 {
		return a
	}
	return b
}

func TestEqNumChurchBoolean(t *testing.T) {
	h := heap.New()
	x := h.Alloc(heap.Node{Kind: heap.KNum, Num: 7})
	y := h.Alloc(heap.Node{Kind: heap.KNum, Num: 7})
	z := h.Alloc(heap.Node{Kind: heap.KNum, Num: 8})

	trueResult := callPrim(t, h, EqNum, x, y)
	a, b := h.Alloc(heap.Node{Kind: heap.KNum, Num: 1}), h.Alloc(heap.Node{Kind: heap.KNum, Num: 2})
	if churchSelect(h, trueResult, a, b) != a {
		t.Fatalf("=num 7 7 should select first (true)")
	}

	falseResult := callPrim(t, h, EqNum, x, z)
	if churchSelect(h, falseResult, a, b) != b {
		t.Fatalf("=num 7 8 should select second (false)")
	}
}

func TestConstructorMintsFreshTags(t *testing.T) {
	h := heap.New()
	n1 := h.Alloc(heap.Node{Kind: heap.KNum, Num: 1})
	some := callPrim(t, h, Constructor, n1)
	none := callPrim(t, h, Constructor, n1)
	if h.Get(some).CtorTag == h.Get(none).CtorTag {
		t.Fatalf("two #constructor calls produced the same tag")
	}
}

func TestBytesNewGetPush(t *testing.T) {
	h := heap.New()
	zero := h.Alloc(heap.Node{Kind: heap.KNum, Num: 0})
	buf := callPrim(t, h, BytesNew, zero)

	hi := h.Alloc(heap.Node{Kind: heap.KNum, Num: 'h'})
	pushed := callPrim(t, h, BytesPush, buf, hi)
	if len(h.Get(pushed).Buf.Data) != 1 || h.Get(pushed).Buf.Data[0] != 'h' {
		t.Fatalf("push did not append: %v", h.Get(pushed).Buf.Data)
	}

	idx := h.Alloc(heap.Node{Kind: heap.KNum, Num: 0})
	got := callPrim(t, h, BytesGet, idx, pushed)
	if h.Get(got).Num != 'h' {
		t.Fatalf("get returned %d", h.Get(got).Num)
	}
}

func TestBytesGetOutOfBounds(t *testing.T) {
	h := heap.New()
	zero := h.Alloc(heap.Node{Kind: heap.KNum, Num: 0})
	buf := callPrim(t, h, BytesNew, zero)
	idx := h.Alloc(heap.Node{Kind: heap.KNum, Num: 0})
	e, _ := Get(BytesGet)
	if _, err := e.Handler(h, identityRuntime{}, []ids.NodeID{idx, buf}); err == nil {
		t.Fatalf("expected index out of bounds error")
	}
}

func TestSharingProbeCountsForces(t *testing.T) {
	ResetSharingProbeCount()
	h := heap.New()
	x := h.Alloc(heap.Node{Kind: heap.KNum, Num: 1})
	callPrim(t, h, SharingProbe, x)
	callPrim(t, h, SharingProbe, x)
	if SharingProbeCount() != 2 {
		t.Fatalf("expected 2 direct invocations, got %d", SharingProbeCount())
	}
}

func TestEqDeepStructuralEquality(t *testing.T) {
	h := heap.New()
	a1 := h.Alloc(heap.Node{Kind: heap.KNum, Num: 1})
	a2 := h.Alloc(heap.Node{Kind: heap.KNum, Num: 1})
	b := h.Alloc(heap.Node{Kind: heap.KNum, Num: 2})

	r := callPrim(t, h, Eq, a1, a2)
	yes, no := h.Alloc(heap.Node{Kind: heap.KNum, Num: 9}), h.Alloc(heap.Node{Kind: heap.KNum, Num: 10})
	if churchSelect(h, r, yes, no) != yes {
		t.Fatalf("#eq 1 1 should be true")
	}

	r2 := callPrim(t, h, Eq, a1, b)
	if churchSelect(h, r2, yes, no) != no {
		t.Fatalf("#eq 1 2 should be false")
	}
}

func TestIOPrimitivesTagData(t *testing.T) {
	h := heap.New()
	x := h.Alloc(heap.Node{Kind: heap.KNum, Num: 65})

	pure := callPrim(t, h, IOPure, x)
	if h.Get(pure).CtorTag != heap.IOTagPure {
		t.Fatalf("#io_pure did not tag IOTagPure")
	}

	read := callPrim(t, h, IORead)
	if h.Get(read).CtorTag != heap.IOTagRead || h.Get(read).Filled != 0 {
		t.Fatalf("#io_read should build a 0-arity Data")
	}

	putchar := callPrim(t, h, IOPutchar, x)
	if h.Get(putchar).CtorTag != heap.IOTagPutchar || len(h.Get(putchar).Slots) != 1 {
		t.Fatalf("#io_putchar did not carry the forced Num")
	}
}
