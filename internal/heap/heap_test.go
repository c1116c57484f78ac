package heap

import (
	"testing"

	"github.com/eug-vs/lambo/internal/ids"
)

func TestAllocGetRoundtrip(t *testing.T) {
	h := New()
	id := h.Alloc(Node{Kind: KNum, Num: 42})
	if h.Get(id).Num != 42 {
		t.Fatalf("expected 42, got %d", h.Get(id).Num)
	}
}

func TestSetMemoisesThunk(t *testing.T) {
	h := New()
	id := h.Alloc(Node{Kind: KThunk, State: Unevaluated, Body: 0, Env: ids.EmptyEnv})
	result := h.Alloc(Node{Kind: KNum, Num: 7})
	h.Set(id, Node{Kind: KThunk, State: Evaluated, Result: result})
	if h.Get(id).State != Evaluated || h.Get(id).Result != result {
		t.Fatalf("thunk not memoised")
	}
}

func TestTryTakeUniqueFreshAllocIsUnique(t *testing.T) {
	h := New()
	id := h.Alloc(Node{Kind: KBytes, Buf: NewBuffer([]byte("hi"))})
	if !h.TryTakeUnique(id) {
		t.Fatalf("freshly allocated node should be unique")
	}
}

func TestShareForfeitsUniqueness(t *testing.T) {
	h := New()
	id := h.Alloc(Node{Kind: KBytes, Buf: NewBuffer([]byte("hi"))})
	h.Share(id) // e.g. bound into a second environment frame
	if h.TryTakeUnique(id) {
		t.Fatalf("shared node should no longer be reported unique")
	}
}

func TestGCReclaimsUnreachable(t *testing.T) {
	h := New()
	garbage := h.Alloc(Node{Kind: KNum, Num: 1})
	_ = garbage
	root := h.Alloc(Node{Kind: KNum, Num: 2})
	roots, freed := h.GC([]ids.NodeID{root}, func(ids.EnvID) []ids.NodeID { return nil })
	if freed != 1 {
		t.Fatalf("expected 1 freed node, got %d", freed)
	}
	if h.Get(roots[0]).Num != 2 {
		t.Fatalf("root value lost across GC: %d", h.Get(roots[0]).Num)
	}
}

func TestGCKeepsAppSubterms(t *testing.T) {
	h := New()
	arg := h.Alloc(Node{Kind: KNum, Num: 9})
	fn := h.Alloc(Node{Kind: KNum, Num: 1}) // stand-in value form
	app := h.Alloc(Node{Kind: KApp, Fun: fn, Arg: arg})
	roots, freed := h.GC([]ids.NodeID{app}, func(ids.EnvID) []ids.NodeID { return nil })
	if freed != 0 {
		t.Fatalf("expected nothing freed, got %d", freed)
	}
	got := h.Get(roots[0])
	if h.Get(got.Fun).Num != 1 || h.Get(got.Arg).Num != 9 {
		t.Fatalf("App subterms not preserved after remap")
	}
}

// TestGCKeepsPartialPrimitiveSlots covers a partially-applied (arity 2,
// filled 1) Primitive surviving collection as a root: its one filled slot
// must be walked and remapped like a Data constructor's, or the surviving
// primitive loses its argument.
func TestGCKeepsPartialPrimitiveSlots(t *testing.T) {
	h := New()
	garbage := h.Alloc(Node{Kind: KNum, Num: 999})
	_ = garbage
	arg := h.Alloc(Node{Kind: KNum, Num: 5})
	prim := h.Alloc(Node{Kind: KPrimitive, Op: 1, Arity: 2, Filled: 1, Slots: []ids.NodeID{arg}})

	roots, freed := h.GC([]ids.NodeID{prim}, func(ids.EnvID) []ids.NodeID { return nil })
	if freed != 1 {
		t.Fatalf("expected 1 freed node, got %d", freed)
	}
	got := h.Get(roots[0])
	if got.Kind != KPrimitive || len(got.Slots) != 1 {
		t.Fatalf("primitive node not preserved: %+v", got)
	}
	if h.Get(got.Slots[0]).Num != 5 {
		t.Fatalf("partial primitive's argument lost across GC: %+v", h.Get(got.Slots[0]))
	}
}
