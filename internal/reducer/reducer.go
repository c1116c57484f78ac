// Package reducer is the call-by-need evaluation core: it drives a Heap
// and Environment pair from a root NodeID to weak-head normal form using a
// push/enter spine-stack walk (spec §4.3), dispatching to internal/prim
// once a Primitive node is fully applied.
package reducer

import (
	"github.com/eug-vs/lambo/internal/env"
	"github.com/eug-vs/lambo/internal/heap"
	"github.com/eug-vs/lambo/internal/ids"
	"github.com/eug-vs/lambo/internal/prim"
	"github.com/eug-vs/lambo/internal/rterr"
)

// Reducer owns no state of its own beyond references to the shared Heap
// and Env arenas; the spine stack and current focus live on the Go stack
// of a single Whnf call, never across calls.
type Reducer struct {
	H *heap.Heap
	E *env.Env
}

// New builds a Reducer over h and e.
func New(h *heap.Heap, e *env.Env) *Reducer {
	return &Reducer{H: h, E: e}
}

// Whnf reduces root under env to a value-form NodeID: Closure, Num, Bytes,
// Data (any fill level), or Primitive with filled < arity. The walk is
// trampolined: each beta-reduction and each curried-slot advance is one
// iteration of the loop below, consuming no additional native stack frame.
// Only thunk-forcing (via Reducer.force) recurses, proportional to data
// nesting depth rather than beta-step count (spec §5).
func (r *Reducer) Whnf(root ids.NodeID, envID ids.EnvID) (ids.NodeID, error) {
	focus := root
	curEnv := envID
	var spine []ids.NodeID // Thunk ids, pushed/popped at the tail (LIFO)

	for {
		n := *r.H.Get(focus)

		switch n.Kind {
		case heap.KVar:
			target, err := r.E.Lookup(curEnv, n.Depth)
			if err != nil {
				return 0, err
			}
			if r.H.Get(target).Kind == heap.KThunk {
				result, err := r.force(target)
				if err != nil {
					return 0, err
				}
				focus, curEnv = result, ids.EmptyEnv
				continue
			}
			focus, curEnv = target, ids.EmptyEnv
			continue

		case heap.KLambda:
			if len(spine) == 0 {
				return r.H.Alloc(heap.Node{Kind: heap.KClosure, Body: n.Body, Env: curEnv}), nil
			}
			arg := spine[len(spine)-1]
			spine = spine[:len(spine)-1]
			curEnv = r.E.Extend(curEnv, arg)
			focus = n.Body
			continue

		case heap.KApp:
			thunk := r.H.Alloc(heap.Node{Kind: heap.KThunk, Body: n.Arg, Env: curEnv, State: heap.Unevaluated})
			spine = append(spine, thunk)
			focus = n.Fun
			continue

		case heap.KClosure:
			if len(spine) == 0 {
				return focus, nil
			}
			arg := spine[len(spine)-1]
			spine = spine[:len(spine)-1]
			curEnv = r.E.Extend(n.Env, arg)
			focus = n.Body
			continue

		case heap.KThunk:
			result, err := r.force(focus)
			if err != nil {
				return 0, err
			}
			focus, curEnv = result, ids.EmptyEnv
			continue

		case heap.KNum, heap.KBytes:
			if len(spine) != 0 {
				return 0, rterr.NewNotCallableError(n.Kind.String())
			}
			return focus, nil

		case heap.KData:
			if len(spine) == 0 {
				return focus, nil
			}
			if n.Filled == n.Arity {
				return 0, rterr.NewNotCallableError("Data")
			}
			arg := spine[len(spine)-1]
			spine = spine[:len(spine)-1]
			focus = r.fillData(focus, n, arg)
			continue

		case heap.KPrimitive:
			if n.Filled == n.Arity {
				if len(spine) != 0 {
					return 0, rterr.NewNotCallableError("Primitive")
				}
				entry, ok := prim.Get(n.Op)
				if !ok {
					return 0, rterr.NewNotCallableError("Primitive")
				}
				result, err := entry.Handler(r.H, r, n.Slots)
				if err != nil {
					return 0, err
				}
				focus, curEnv = result, ids.EmptyEnv
				continue
			}
			if len(spine) == 0 {
				return focus, nil
			}
			arg := spine[len(spine)-1]
			spine = spine[:len(spine)-1]

			entry, ok := prim.Get(n.Op)
			if !ok {
				return 0, rterr.NewNotCallableError("Primitive")
			}
			slotIdx := n.Filled
			if entry.Modes[slotIdx] == prim.Whnf {
				forced, err := r.Whnf(arg, ids.EmptyEnv)
				if err != nil {
					return 0, err
				}
				arg = forced
			}
			next := r.fillPrimitive(focus, n, arg)
			nn := *r.H.Get(next)
			if nn.Filled < nn.Arity {
				focus = next
				continue
			}
			result, err := entry.Handler(r.H, r, nn.Slots)
			if err != nil {
				return 0, err
			}
			focus, curEnv = result, ids.EmptyEnv
			continue

		default:
			return 0, rterr.NewNotCallableError(n.Kind.String())
		}
	}
}

// force resolves a Thunk to its value form, memoising the result (the
// sharing guarantee that makes this call-by-need rather than call-by-name).
func (r *Reducer) force(id ids.NodeID) (ids.NodeID, error) {
	n := *r.H.Get(id)
	switch n.State {
	case heap.Evaluated:
		return n.Result, nil
	case heap.InProgress:
		return 0, rterr.NewInfiniteLoopError()
	}

	r.H.Set(id, heap.Node{Kind: heap.KThunk, Body: n.Body, Env: n.Env, State: heap.InProgress})
	result, err := r.Whnf(n.Body, n.Env)
	if err != nil {
		return 0, err
	}
	// The Thunk's Result is now reachable from every place this Thunk id
	// is bound, which may be more than one Var occurrence; treat it as
	// shared from this point so a later curried Data/Primitive advance or
	// Bytes append copies instead of mutating in place.
	r.H.Share(result)
	r.H.Set(id, heap.Node{Kind: heap.KThunk, State: heap.Evaluated, Result: result})
	return result, nil
}

func (r *Reducer) fillData(id ids.NodeID, n heap.Node, arg ids.NodeID) ids.NodeID {
	if r.H.TryTakeUnique(id) {
		slots := append(n.Slots, arg)
		r.H.Set(id, heap.Node{Kind: heap.KData, CtorTag: n.CtorTag, Arity: n.Arity, Slots: slots, Filled: n.Filled + 1})
		return id
	}
	slots := make([]ids.NodeID, len(n.Slots), len(n.Slots)+1)
	copy(slots, n.Slots)
	slots = append(slots, arg)
	return r.H.Alloc(heap.Node{Kind: heap.KData, CtorTag: n.CtorTag, Arity: n.Arity, Slots: slots, Filled: n.Filled + 1})
}

func (r *Reducer) fillPrimitive(id ids.NodeID, n heap.Node, arg ids.NodeID) ids.NodeID {
	if r.H.TryTakeUnique(id) {
		slots := append(n.Slots, arg)
		r.H.Set(id, heap.Node{Kind: heap.KPrimitive, Op: n.Op, Arity: n.Arity, Slots: slots, Filled: n.Filled + 1})
		return id
	}
	slots := make([]ids.NodeID, len(n.Slots), len(n.Slots)+1)
	copy(slots, n.Slots)
	slots = append(slots, arg)
	return r.H.Alloc(heap.Node{Kind: heap.KPrimitive, Op: n.Op, Arity: n.Arity, Slots: slots, Filled: n.Filled + 1})
}

// ForceDeep reduces root to whnf, then recursively forces every slot of a
// resulting Data value (spec §4.3). It does not normalise under Closures or
// partially-applied Primitives: the printer renders those via their raw
// body/accumulated-args structure without further reduction (spec §4.6),
// so there is nothing beneath them that ForceDeep needs to touch.
func (r *Reducer) ForceDeep(root ids.NodeID) (ids.NodeID, error) {
	v, err := r.Whnf(root, ids.EmptyEnv)
	if err != nil {
		return 0, err
	}
	n := *r.H.Get(v)
	if n.Kind != heap.KData || len(n.Slots) == 0 {
		return v, nil
	}

	newSlots := make([]ids.NodeID, len(n.Slots))
	changed := false
	for i, s := range n.Slots {
		forced, err := r.ForceDeep(s)
		if err != nil {
			return 0, err
		}
		newSlots[i] = forced
		if forced != s {
			changed = true
		}
	}
	if !changed {
		return v, nil
	}
	return r.H.Alloc(heap.Node{Kind: heap.KData, CtorTag: n.CtorTag, Arity: n.Arity, Slots: newSlots, Filled: n.Filled}), nil
}
