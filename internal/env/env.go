// Package env implements the evaluator's Environment: a persistent,
// shareable linked list of frames binding de Bruijn depths to heap node
// ids (spec §3/§4.2). Frames are arena-allocated like heap Nodes so that
// extending an environment for a closure never copies the parent chain.
package env

import (
	"github.com/eug-vs/lambo/internal/ids"
	"github.com/eug-vs/lambo/internal/rterr"
)

type frame struct {
	value  ids.NodeID
	parent ids.EnvID
}

// Env is the frame arena. The zero Env (after New) already contains the
// reserved ids.EmptyEnv sentinel at index 0.
type Env struct {
	frames []frame
}

// New creates an empty frame arena.
func New() *Env {
	return &Env{frames: make([]frame, 1, 64)} // frames[0] == ids.EmptyEnv
}

// Empty returns the root environment id with no bindings.
func Empty() ids.EnvID {
	return ids.EmptyEnv
}

// Empty returns the root environment id with no bindings. It is the method
// form of the package-level Empty, for callers that already have an *Env in
// hand and want e.Empty() rather than a separate env.Empty() import alias.
func (e *Env) Empty() ids.EnvID {
	return ids.EmptyEnv
}

// Extend returns a new environment id that binds depth 1 to value and
// defers every other lookup to outer. This is non-destructive: outer and
// any closures already holding it are unaffected.
func (e *Env) Extend(outer ids.EnvID, value ids.NodeID) ids.EnvID {
	e.frames = append(e.frames, frame{value: value, parent: outer})
	return ids.EnvID(len(e.frames) - 1)
}

// Lookup walks depth-1 parents from id and returns the binding found at
// that frame, or rterr.UnboundVariableError if the chain is shorter than
// depth.
func (e *Env) Lookup(id ids.EnvID, depth uint32) (ids.NodeID, error) {
	if depth == 0 {
		return 0, rterr.NewUnboundVariableError(depth)
	}
	cur := id
	for i := uint32(1); i < depth; i++ {
		if cur == ids.EmptyEnv {
			return 0, rterr.NewUnboundVariableError(depth)
		}
		cur = e.frames[cur].parent
	}
	if cur == ids.EmptyEnv {
		return 0, rterr.NewUnboundVariableError(depth)
	}
	return e.frames[cur].value, nil
}

// Live returns every NodeID directly bound in id's frame chain, for the
// heap's GC root walk.
func (e *Env) Live(id ids.EnvID) []ids.NodeID {
	var out []ids.NodeID
	for cur := id; cur != ids.EmptyEnv; cur = e.frames[cur].parent {
		out = append(out, e.frames[cur].value)
	}
	return out
}
