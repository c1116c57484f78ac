// Package heap implements the evaluator's sole reducible/irreducible
// storage arena: the Heap of Nodes addressed by stable ids.NodeID values.
// Every term-graph node the reducer ever touches — variables, closures,
// thunks, numbers, byte strings, data constructors, and primitives — lives
// here (spec §3/§4.1).
package heap

import (
	"fmt"

	"github.com/eug-vs/lambo/internal/ids"
)

// Kind tags the variant of a Node.
type Kind uint8

const (
	KVar Kind = iota
	KLambda
	KApp
	KClosure
	KThunk
	KNum
	KBytes
	KData
	KPrimitive
)

func (k Kind) String() string {
	switch k {
	case KVar:
		return "Var"
	case KLambda:
		return "Lambda"
	case KApp:
		return "App"
	case KClosure:
		return "Closure"
	case KThunk:
		return "Thunk"
	case KNum:
		return "Num"
	case KBytes:
		return "Bytes"
	case KData:
		return "Data"
	case KPrimitive:
		return "Primitive"
	default:
		return "Unknown"
	}
}

// ThunkState is the evaluation state of a Thunk node.
type ThunkState uint8

const (
	Unevaluated ThunkState = iota
	InProgress
	Evaluated
)

// ByteBuffer is the shared, logically-immutable backing store of a Bytes
// value. Several Nodes may legitimately point at the same *ByteBuffer (a
// Thunk forced once and read from many Vars shares one); refs approximates
// how many such Nodes are known to exist so that byte-append primitives can
// decide whether in-place mutation is safe. See Heap.TryTakeUnique.
type ByteBuffer struct {
	Data []byte
	refs int32
}

// Node is the single heap entity; only the fields relevant to Kind carry
// meaning (spec §3's Node table).
type Node struct {
	Kind Kind

	// Var
	Depth uint32

	// Lambda / Closure / Thunk body
	Body ids.NodeID

	// Closure / Thunk
	Env ids.EnvID

	// Thunk
	State  ThunkState
	Result ids.NodeID

	// App
	Fun, Arg ids.NodeID

	// Num
	Num uint64

	// Bytes
	Buf *ByteBuffer

	// Data
	CtorTag ids.PrimID // unique per #constructor call, not a PrimID semantically, just a fresh uint tag
	Arity   uint32
	Slots   []ids.NodeID
	Filled  uint32

	// Primitive
	Op ids.PrimID

	// refs approximates how many places hold this exact NodeID; see
	// Heap.TryTakeUnique. It only ever increases (conservative undercount
	// of uniqueness, never an incorrect overcount).
	refs int32
}

// Reserved Data.CtorTag values identifying the IO action built by each IO
// primitive (spec §4.4/§4.5). User tags minted by #constructor start at
// firstUserTag, above every reserved IO tag, so they can never collide.
const (
	IOTagPure ids.PrimID = iota + 1
	IOTagPrint
	IOTagRead
	IOTagPutchar
	IOTagFlatmap
	IOTagThrow
	firstUserTag
)

// Heap is an arena of Nodes. Index 0 is never allocated so the zero value
// of ids.NodeID can serve as a "no node" sentinel where useful.
type Heap struct {
	nodes   []Node
	nextTag ids.PrimID
}

// New creates an empty Heap.
func New() *Heap {
	return &Heap{nodes: make([]Node, 1, 256), nextTag: firstUserTag} // nodes[0] reserved
}

// FreshTag mints a tag unique within this Heap's lifetime, for
// #constructor (spec §9: "each evaluation of #constructor N must mint a
// tag unique within the run").
func (h *Heap) FreshTag() ids.PrimID {
	t := h.nextTag
	h.nextTag++
	return t
}

// Alloc appends a new Node and returns its stable id.
func (h *Heap) Alloc(n Node) ids.NodeID {
	n.refs = 1
	h.nodes = append(h.nodes, n)
	return ids.NodeID(len(h.nodes) - 1)
}

// Get returns a pointer to the Node at id. The pointer is valid until the
// next Alloc (which may grow the backing array); callers that need it to
// survive an Alloc should copy the value first.
func (h *Heap) Get(id ids.NodeID) *Node {
	return &h.nodes[id]
}

// Set overwrites the Node at id in place. It is used only to memoise
// thunks (Unevaluated/InProgress -> Evaluated) and to advance curried
// Data/Primitive slots.
func (h *Heap) Set(id ids.NodeID, n Node) {
	refs := h.nodes[id].refs
	n.refs = refs
	h.nodes[id] = n
}

// Share marks id as referenced from one more persistent location (a
// memoised Thunk result, or a Primitive node of the loaded term graph). It is the
// only way refs grows past 1, and it never shrinks: a later
// TryTakeUnique may therefore refuse an optimisation that would in fact
// have been safe, but it will never allow one that is not.
func (h *Heap) Share(id ids.NodeID) {
	h.nodes[id].refs++
}

// TryTakeUnique reports whether id is still referenced from exactly the
// one place that is asking, letting a primitive mutate the Node's payload
// in place (append to Bytes, advance a curried Data/Primitive) instead of
// allocating a fresh Node. Returning false (including always returning
// false) never changes program semantics, only whether the optimisation
// fires (spec §4.1).
func (h *Heap) TryTakeUnique(id ids.NodeID) bool {
	return h.nodes[id].refs <= 1
}

// ShareBuffer marks a ByteBuffer as aliased from one more Bytes Node,
// mirroring Share but at buffer granularity (a Bytes Node's refs tracks the
// Node id; the buffer's own refs tracks whether *that slice* is still
// exclusively owned by one live Node, which matters when #bytes_push wants
// to append into the backing array without copying).
func ShareBuffer(b *ByteBuffer) {
	b.refs++
}

// UniqueBuffer reports whether b is referenced by exactly one live Bytes
// Node and so can be appended to in place.
func UniqueBuffer(b *ByteBuffer) bool {
	return b.refs <= 1
}

// NewBuffer wraps data as a freshly-owned ByteBuffer (refs == 1).
func NewBuffer(data []byte) *ByteBuffer {
	return &ByteBuffer{Data: data, refs: 1}
}

// Len returns the number of allocated nodes (for diagnostics and gc stats).
func (h *Heap) Len() int {
	return len(h.nodes) - 1
}

// GC performs a stop-the-world mark-and-sweep from roots, compacting the
// arena and remapping every surviving id. It returns the remapped roots (in
// the same order given) and the number of nodes reclaimed. Callers must
// discard any ids.NodeID obtained before calling GC other than those
// returned.
func (h *Heap) GC(roots []ids.NodeID, envLive func(ids.EnvID) []ids.NodeID) ([]ids.NodeID, int) {
	mark := make([]bool, len(h.nodes))
	var walk func(id ids.NodeID)
	walk = func(id ids.NodeID) {
		if id == 0 || int(id) >= len(mark) || mark[id] {
			return
		}
		mark[id] = true
		n := &h.nodes[id]
		switch n.Kind {
		case KLambda, KClosure, KThunk:
			walk(n.Body)
			if n.State == Evaluated {
				walk(n.Result)
			}
			if n.Kind != KLambda {
				for _, live := range envLive(n.Env) {
					walk(live)
				}
			}
		case KApp:
			walk(n.Fun)
			walk(n.Arg)
		case KData, KPrimitive:
			for _, s := range n.Slots {
				walk(s)
			}
		}
	}
	for _, r := range roots {
		walk(r)
	}

	remap := make([]ids.NodeID, len(h.nodes))
	newNodes := make([]Node, 1, len(h.nodes))
	freed := 0
	for i := 1; i < len(h.nodes); i++ {
		if !mark[i] {
			freed++
			continue
		}
		newNodes = append(newNodes, h.nodes[i])
		remap[i] = ids.NodeID(len(newNodes) - 1)
	}
	for i := range newNodes {
		n := &newNodes[i]
		switch n.Kind {
		case KLambda, KClosure, KThunk:
			n.Body = remap[n.Body]
			if n.State == Evaluated {
				n.Result = remap[n.Result]
			}
		case KApp:
			n.Fun = remap[n.Fun]
			n.Arg = remap[n.Arg]
		case KData, KPrimitive:
			for i, s := range n.Slots {
				n.Slots[i] = remap[s]
			}
		}
	}
	h.nodes = newNodes

	remappedRoots := make([]ids.NodeID, len(roots))
	for i, r := range roots {
		remappedRoots[i] = remap[r]
	}
	return remappedRoots, freed
}

// Describe renders a short, non-recursive summary of a node for error
// context (spec §7: "current focus summary").
func (h *Heap) Describe(id ids.NodeID) string {
	if id == 0 || int(id) >= len(h.nodes) {
		return "<invalid>"
	}
	n := &h.nodes[id]
	switch n.Kind {
	case KNum:
		return fmt.Sprintf("Num(%d)", n.Num)
	case KBytes:
		return fmt.Sprintf("Bytes(len=%d)", len(n.Buf.Data))
	case KData:
		return fmt.Sprintf("Data(tag=%d, %d/%d filled)", n.CtorTag, n.Filled, n.Arity)
	case KPrimitive:
		return fmt.Sprintf("Primitive(op=%d, %d/%d filled)", n.Op, n.Filled, n.Arity)
	case KClosure:
		return "Closure"
	case KThunk:
		return fmt.Sprintf("Thunk(%v)", n.State)
	default:
		return n.Kind.String()
	}
}

func (s ThunkState) String() string {
	switch s {
	case Unevaluated:
		return "Unevaluated"
	case InProgress:
		return "InProgress"
	case Evaluated:
		return "Evaluated"
	default:
		return "?"
	}
}
