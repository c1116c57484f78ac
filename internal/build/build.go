// Package build lowers a parsed *term.Node tree into the initial Heap
// graph the reducer operates on (spec §3's "Nodes are created by the
// parser (Term->Node lowering)"). It is the one package allowed to depend
// on both internal/term and internal/heap, so that neither of those needs
// to depend on the other.
package build

import (
	"github.com/eug-vs/lambo/internal/heap"
	"github.com/eug-vs/lambo/internal/ids"
	"github.com/eug-vs/lambo/internal/term"
)

// Load allocates t and everything it references into h, returning the root
// NodeID. Each term.Node becomes exactly one heap.Node; Lambda/App/Var
// nodes are lowered as "raw" (non-Closure, non-Thunk) heap nodes, matching
// the reducer's expectation that a bare Lambda/App arriving without an
// env is self-contained until the reducer itself wraps it in a Closure or
// Thunk during reduction.
func Load(h *heap.Heap, t *term.Node) ids.NodeID {
	switch t.Kind {
	case term.Var:
		return h.Alloc(heap.Node{Kind: heap.KVar, Depth: t.Depth})
	case term.Lambda:
		body := Load(h, t.Body)
		return h.Alloc(heap.Node{Kind: heap.KLambda, Body: body})
	case term.App:
		fun := Load(h, t.Fun)
		arg := Load(h, t.Arg)
		return h.Alloc(heap.Node{Kind: heap.KApp, Fun: fun, Arg: arg})
	case term.Num:
		return h.Alloc(heap.Node{Kind: heap.KNum, Num: t.Num})
	case term.Bytes:
		content := make([]byte, len(t.Bytes))
		copy(content, t.Bytes)
		return h.Alloc(heap.Node{Kind: heap.KBytes, Buf: heap.NewBuffer(content)})
	case term.Prim:
		// A Primitive in the term graph is re-entered every time its
		// enclosing lambda body runs, so it is marked shared: currying it
		// must copy rather than fill this node in place.
		id := h.Alloc(heap.Node{Kind: heap.KPrimitive, Op: t.Prim, Arity: t.PrimArity, Filled: 0})
		h.Share(id)
		return id
	default:
		panic("build: unknown term kind")
	}
}
