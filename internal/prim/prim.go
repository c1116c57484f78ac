// Package prim is the primitive-operator table: the fixed registry of
// host-provided built-ins (arithmetic, byte arrays, data constructors,
// matching, IO builders) that the reducer dispatches to once a Primitive
// node is fully applied (spec §4.4).
package prim

import (
	"github.com/eug-vs/lambo/internal/heap"
	"github.com/eug-vs/lambo/internal/ids"
)

// Mode is the evaluation discipline the reducer applies to an argument
// slot before the handler sees it.
type Mode uint8

const (
	// Lazy passes the argument as-is (typically a freshly allocated Thunk);
	// the handler forces it itself if and when it needs the value.
	Lazy Mode = iota
	// Whnf means the reducer forces the argument to weak-head normal form
	// before the handler is invoked.
	Whnf
)

// Runtime is the subset of reducer/heap capability a primitive handler
// needs: forcing an argument, forcing one deeply (for #eq), and allocating
// results. internal/prim depends on internal/heap for Node/Heap but takes
// this interface instead of internal/reducer directly, since reducer in
// turn depends on prim (Entry.Handler is invoked by the reducer) and a
// reducer->prim->reducer cycle would otherwise result.
type Runtime interface {
	// Whnf reduces id under env to a value-form node id.
	Whnf(id ids.NodeID, env ids.EnvID) (ids.NodeID, error)
	// ForceDeep reduces id to whnf and recursively forces every Data slot.
	ForceDeep(id ids.NodeID) (ids.NodeID, error)
}

// Entry is one row of the primitive table.
type Entry struct {
	ID    ids.PrimID
	Name  string
	Arity uint32
	Modes []Mode // len == Arity; Modes[i] applies to the i-th applied argument
	// Handler runs once all Arity arguments are filled. args are the
	// accumulated slot NodeIDs in application order, already forced to
	// whnf wherever Modes says Whnf; Lazy slots carry the argument's
	// already-captured Thunk/value id as-is. h is the heap the result must
	// be allocated into.
	Handler func(h *heap.Heap, rt Runtime, args []ids.NodeID) (ids.NodeID, error)
}

const (
	Constructor ids.PrimID = iota + 1
	Match
	Add
	Sub
	Mul
	Div
	Modulo
	EqNum
	BytesNew
	BytesGet
	BytesPush
	Eq
	IOPure
	IOPrint
	IORead
	IOPutchar
	IOFlatmap
	IOThrow
	// SharingProbe is test-only: it increments a counter each time its
	// single Lazy argument is forced, letting tests observe that a shared
	// thunk's body runs at most once (spec §8 property 2).
	SharingProbe
)

// names maps surface spelling to PrimID; this is "the contract between
// parser and reducer" (spec §4.4).
var names = map[string]ids.PrimID{
	"#constructor":    Constructor,
	"#match":          Match,
	"+":               Add,
	"-":               Sub,
	"*":               Mul,
	"/":               Div,
	"modulo":          Modulo,
	"=num":            EqNum,
	"#bytes_new":      BytesNew,
	"#bytes_get":      BytesGet,
	"#bytes_push":     BytesPush,
	"#eq":             Eq,
	"#io_pure":        IOPure,
	"#io_print":       IOPrint,
	"#io_read":        IORead,
	"#io_putchar":     IOPutchar,
	"#io_flatmap":     IOFlatmap,
	"#io_throw":       IOThrow,
	"#sharing_probe":  SharingProbe,
}

var arities = map[ids.PrimID]uint32{
	Constructor:  1,
	Match:        4,
	Add:          2,
	Sub:          2,
	Mul:          2,
	Div:          2,
	Modulo:       2,
	EqNum:        2,
	BytesNew:     1,
	BytesGet:     2,
	BytesPush:    2,
	Eq:           2,
	IOPure:       1,
	IOPrint:      1,
	IORead:       0,
	IOPutchar:    1,
	IOFlatmap:    2,
	IOThrow:      1,
	SharingProbe: 1,
}

// Lookup resolves a surface spelling to its PrimID and declared arity, for
// the parser.
func Lookup(name string) (id ids.PrimID, arity uint32, ok bool) {
	id, ok = names[name]
	if !ok {
		return 0, 0, false
	}
	return id, arities[id], true
}

// Arity returns the declared arity of a resolved PrimID.
func Arity(id ids.PrimID) uint32 {
	return arities[id]
}
