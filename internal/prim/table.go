package prim

import (
	"github.com/eug-vs/lambo/internal/heap"
	"github.com/eug-vs/lambo/internal/ids"
	"github.com/eug-vs/lambo/internal/rterr"
)

var sharingProbeCount int64

// ResetSharingProbeCount zeroes the sharing-probe counter; call at the
// start of a test that relies on it.
func ResetSharingProbeCount() { sharingProbeCount = 0 }

// SharingProbeCount returns how many times #sharing_probe's argument has
// actually been forced since the last reset.
func SharingProbeCount() int64 { return sharingProbeCount }

// churchBool allocates λx.λy.x (selectFirst) or λx.λy.y, as two nested
// bare Lambda nodes. Neither lambda has any free variable, so whichever
// environment the reducer later threads through them while they are
// unapplied is never actually consulted by Lookup.
func churchBool(h *heap.Heap, selectFirst bool) ids.NodeID {
	depth := uint32(1)
	if selectFirst {
		depth = 2
	}
	v := h.Alloc(heap.Node{Kind: heap.KVar, Depth: depth})
	inner := h.Alloc(heap.Node{Kind: heap.KLambda, Body: v})
	outer := h.Alloc(heap.Node{Kind: heap.KLambda, Body: inner})
	return outer
}

func num(h *heap.Heap, v uint64) ids.NodeID {
	return h.Alloc(heap.Node{Kind: heap.KNum, Num: v})
}

func expectKind(h *heap.Heap, id ids.NodeID, want heap.Kind, context string) error {
	got := h.Get(id).Kind
	if got != want {
		return rterr.NewTypeMismatchError(want.String(), got.String(), context)
	}
	return nil
}

// appChain builds App(App(...App(fun, args[0])..., args[n-1]) left to
// right, over already value-form or self-contained node ids.
func appChain(h *heap.Heap, fun ids.NodeID, args ...ids.NodeID) ids.NodeID {
	result := fun
	for _, a := range args {
		result = h.Alloc(heap.Node{Kind: heap.KApp, Fun: result, Arg: a})
	}
	return result
}

func deepEqual(h *heap.Heap, rt Runtime, a, b ids.NodeID) (bool, error) {
	fa, err := rt.ForceDeep(a)
	if err != nil {
		return false, err
	}
	fb, err := rt.ForceDeep(b)
	if err != nil {
		return false, err
	}
	return structEqual(h, fa, fb), nil
}

func structEqual(h *heap.Heap, a, b ids.NodeID) bool {
	na, nb := h.Get(a), h.Get(b)
	if na.Kind != nb.Kind {
		return false
	}
	switch na.Kind {
	case heap.KNum:
		return na.Num == nb.Num
	case heap.KBytes:
		if len(na.Buf.Data) != len(nb.Buf.Data) {
			return false
		}
		for i := range na.Buf.Data {
			if na.Buf.Data[i] != nb.Buf.Data[i] {
				return false
			}
		}
		return true
	case heap.KData:
		if na.CtorTag != nb.CtorTag || na.Filled != nb.Filled || len(na.Slots) != len(nb.Slots) {
			return false
		}
		for i := range na.Slots {
			if !structEqual(h, na.Slots[i], nb.Slots[i]) {
				return false
			}
		}
		return true
	case heap.KClosure, heap.KLambda:
		// Structural equality under binders is not attempted; two
		// closures are equal only by identity.
		return a == b
	default:
		return a == b
	}
}

var entries map[ids.PrimID]Entry

func init() {
	entries = map[ids.PrimID]Entry{
		Constructor: {
			ID: Constructor, Name: "#constructor", Arity: 1, Modes: []Mode{Whnf},
			Handler: func(h *heap.Heap, rt Runtime, args []ids.NodeID) (ids.NodeID, error) {
				if err := expectKind(h, args[0], heap.KNum, "#constructor"); err != nil {
					return 0, err
				}
				arity := h.Get(args[0]).Num
				tag := h.FreshTag()
				return h.Alloc(heap.Node{Kind: heap.KData, CtorTag: tag, Arity: uint32(arity), Filled: 0}), nil
			},
		},
		Match: {
			ID: Match, Name: "#match", Arity: 4, Modes: []Mode{Whnf, Lazy, Lazy, Whnf},
			Handler: func(h *heap.Heap, rt Runtime, args []ids.NodeID) (ids.NodeID, error) {
				ctor, transform, fallback, value := args[0], args[1], args[2], args[3]
				if err := expectKind(h, ctor, heap.KData, "#match"); err != nil {
					return 0, err
				}
				ctorTag := h.Get(ctor).CtorTag
				v := h.Get(value)
				if v.Kind == heap.KData && v.CtorTag == ctorTag && v.Filled == v.Arity {
					app := appChain(h, transform, v.Slots...)
					return rt.Whnf(app, ids.EmptyEnv)
				}
				app := appChain(h, fallback, value)
				return rt.Whnf(app, ids.EmptyEnv)
			},
		},
		Add: arithEntry(Add, "+", func(a, b uint64) (uint64, error) { return a + b, nil }),
		Sub: arithEntry(Sub, "-", func(a, b uint64) (uint64, error) {
			if a < b {
				return 0, nil
			}
			return a - b, nil
		}),
		Mul: arithEntry(Mul, "*", func(a, b uint64) (uint64, error) { return a * b, nil }),
		Div: arithEntry(Div, "/", func(a, b uint64) (uint64, error) {
			if b == 0 {
				return 0, rterr.NewDivByZeroError("/")
			}
			return a / b, nil
		}),
		// modulo's first argument is the divisor and its second is the
		// value, the reverse of the usual a-op-b order: this is what lets
		// "num | modulo m" read naturally as "num modulo m" once the pipe
		// supplies num as the final applied argument.
		Modulo: arithEntry(Modulo, "modulo", func(divisor, value uint64) (uint64, error) {
			if divisor == 0 {
				return 0, rterr.NewDivByZeroError("modulo")
			}
			return value % divisor, nil
		}),
		EqNum: {
			ID: EqNum, Name: "=num", Arity: 2, Modes: []Mode{Whnf, Whnf},
			Handler: func(h *heap.Heap, rt Runtime, args []ids.NodeID) (ids.NodeID, error) {
				if err := expectKind(h, args[0], heap.KNum, "=num"); err != nil {
					return 0, err
				}
				if err := expectKind(h, args[1], heap.KNum, "=num"); err != nil {
					return 0, err
				}
				eq := h.Get(args[0]).Num == h.Get(args[1]).Num
				return churchBool(h, eq), nil
			},
		},
		BytesNew: {
			ID: BytesNew, Name: "#bytes_new", Arity: 1, Modes: []Mode{Whnf},
			Handler: func(h *heap.Heap, rt Runtime, args []ids.NodeID) (ids.NodeID, error) {
				if err := expectKind(h, args[0], heap.KNum, "#bytes_new"); err != nil {
					return 0, err
				}
				n := h.Get(args[0]).Num
				return h.Alloc(heap.Node{Kind: heap.KBytes, Buf: heap.NewBuffer(make([]byte, 0, n))}), nil
			},
		},
		BytesGet: {
			ID: BytesGet, Name: "#bytes_get", Arity: 2, Modes: []Mode{Whnf, Whnf},
			Handler: func(h *heap.Heap, rt Runtime, args []ids.NodeID) (ids.NodeID, error) {
				if err := expectKind(h, args[0], heap.KNum, "#bytes_get"); err != nil {
					return 0, err
				}
				if err := expectKind(h, args[1], heap.KBytes, "#bytes_get"); err != nil {
					return 0, err
				}
				i := h.Get(args[0]).Num
				buf := h.Get(args[1]).Buf
				if i >= uint64(len(buf.Data)) {
					return 0, rterr.NewIndexOutOfBoundsError(i, len(buf.Data))
				}
				return num(h, uint64(buf.Data[i])), nil
			},
		},
		BytesPush: {
			ID: BytesPush, Name: "#bytes_push", Arity: 2, Modes: []Mode{Whnf, Whnf},
			Handler: func(h *heap.Heap, rt Runtime, args []ids.NodeID) (ids.NodeID, error) {
				if err := expectKind(h, args[0], heap.KBytes, "#bytes_push"); err != nil {
					return 0, err
				}
				if err := expectKind(h, args[1], heap.KNum, "#bytes_push"); err != nil {
					return 0, err
				}
				buf := h.Get(args[0]).Buf
				b := byte(h.Get(args[1]).Num)
				if heap.UniqueBuffer(buf) && h.TryTakeUnique(args[0]) {
					buf.Data = append(buf.Data, b)
					return args[0], nil
				}
				fresh := make([]byte, len(buf.Data), len(buf.Data)+1)
				copy(fresh, buf.Data)
				fresh = append(fresh, b)
				return h.Alloc(heap.Node{Kind: heap.KBytes, Buf: heap.NewBuffer(fresh)}), nil
			},
		},
		Eq: {
			ID: Eq, Name: "#eq", Arity: 2, Modes: []Mode{Whnf, Whnf},
			Handler: func(h *heap.Heap, rt Runtime, args []ids.NodeID) (ids.NodeID, error) {
				eq, err := deepEqual(h, rt, args[0], args[1])
				if err != nil {
					return 0, err
				}
				return churchBool(h, eq), nil
			},
		},
		IOPure: ioBuilder(IOPure, "#io_pure", 1, []Mode{Lazy}, heap.IOTagPure),
		IOPrint: ioBuilder(IOPrint, "#io_print", 1, []Mode{Lazy}, heap.IOTagPrint),
		IORead:  ioBuilder(IORead, "#io_read", 0, nil, heap.IOTagRead),
		IOPutchar: ioBuilder(IOPutchar, "#io_putchar", 1, []Mode{Whnf}, heap.IOTagPutchar),
		IOFlatmap: ioBuilder(IOFlatmap, "#io_flatmap", 2, []Mode{Lazy, Lazy}, heap.IOTagFlatmap),
		IOThrow:   ioBuilder(IOThrow, "#io_throw", 1, []Mode{Lazy}, heap.IOTagThrow),
		SharingProbe: {
			ID: SharingProbe, Name: "#sharing_probe", Arity: 1, Modes: []Mode{Lazy},
			Handler: func(h *heap.Heap, rt Runtime, args []ids.NodeID) (ids.NodeID, error) {
				sharingProbeCount++
				return rt.Whnf(args[0], ids.EmptyEnv)
			},
		},
	}
}

func arithEntry(id ids.PrimID, name string, op func(a, b uint64) (uint64, error)) Entry {
	return Entry{
		ID: id, Name: name, Arity: 2, Modes: []Mode{Whnf, Whnf},
		Handler: func(h *heap.Heap, rt Runtime, args []ids.NodeID) (ids.NodeID, error) {
			if err := expectKind(h, args[0], heap.KNum, name); err != nil {
				return 0, err
			}
			if err := expectKind(h, args[1], heap.KNum, name); err != nil {
				return 0, err
			}
			r, err := op(h.Get(args[0]).Num, h.Get(args[1]).Num)
			if err != nil {
				return 0, err
			}
			return num(h, r), nil
		},
	}
}

// ioBuilder returns an Entry whose handler performs no side effects: it
// only tags its (mode-disciplined) arguments as a Data value the IO
// driver later recognises and interprets (spec §4.4/§4.5).
func ioBuilder(id ids.PrimID, name string, arity uint32, modes []Mode, tag ids.PrimID) Entry {
	return Entry{
		ID: id, Name: name, Arity: arity, Modes: modes,
		Handler: func(h *heap.Heap, rt Runtime, args []ids.NodeID) (ids.NodeID, error) {
			slots := make([]ids.NodeID, len(args))
			copy(slots, args)
			return h.Alloc(heap.Node{Kind: heap.KData, CtorTag: tag, Arity: arity, Slots: slots, Filled: uint32(len(slots))}), nil
		},
	}
}

// Get returns the table entry for id.
func Get(id ids.PrimID) (Entry, bool) {
	e, ok := entries[id]
	return e, ok
}
