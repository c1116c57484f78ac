// Package term defines the immutable term tree the parser hands to the
// evaluator. It is the "Term" of the evaluator's design: a fully
// de-sugared, de Bruijn-indexed lambda tree with numeric and byte-string
// literals and resolved primitive references. Nothing under internal/term
// depends on the heap, environment, or reducer — the parser is the only
// producer, and the heap-loader (internal/build) is the only consumer.
package term

import (
	"github.com/eug-vs/lambo/internal/ids"
	"github.com/eug-vs/lambo/internal/lexer"
)

// Kind tags the variant of a Node.
type Kind uint8

const (
	Var Kind = iota
	Lambda
	App
	Num
	Bytes
	Prim
)

// Node is one node of the term tree. Only the fields relevant to Kind are
// meaningful; the zero value of the others is ignored.
type Node struct {
	Kind Kind
	Pos  lexer.Position

	Depth uint32 // Var: de Bruijn depth, innermost = 1

	Body *Node // Lambda: body

	Fun *Node // App: function
	Arg *Node // App: argument

	Num uint64 // Num: literal value

	Bytes []byte // Bytes: literal content

	Prim      ids.PrimID // Prim: resolved primitive identity, shared with the heap's Primitive/Data tag space
	PrimArity uint32 // Prim: arity from the primitive table, for the initial Primitive node
	PrimName  string // Prim: surface spelling, kept for diagnostics
}

// NewVar builds a Var node referring to the binder at the given depth
// (innermost enclosing lambda = 1).
func NewVar(pos lexer.Position, depth uint32) *Node {
	return &Node{Kind: Var, Pos: pos, Depth: depth}
}

// NewLambda builds a unary abstraction.
func NewLambda(pos lexer.Position, body *Node) *Node {
	return &Node{Kind: Lambda, Pos: pos, Body: body}
}

// NewApp builds an application of fun to arg.
func NewApp(pos lexer.Position, fun, arg *Node) *Node {
	return &Node{Kind: App, Pos: pos, Fun: fun, Arg: arg}
}

// NewNum builds a numeric literal.
func NewNum(pos lexer.Position, value uint64) *Node {
	return &Node{Kind: Num, Pos: pos, Num: value}
}

// NewBytes builds a byte-string literal.
func NewBytes(pos lexer.Position, content []byte) *Node {
	return &Node{Kind: Bytes, Pos: pos, Bytes: content}
}

// NewPrim builds a reference to a primitive operator, curried with zero
// arguments filled.
func NewPrim(pos lexer.Position, id ids.PrimID, arity uint32, name string) *Node {
	return &Node{Kind: Prim, Pos: pos, Prim: id, PrimArity: arity, PrimName: name}
}

// NApp curries fun over args left-to-right: NApp(f, a, b) == App(App(f, a), b).
func NApp(pos lexer.Position, fun *Node, args ...*Node) *Node {
	result := fun
	for _, a := range args {
		result = NewApp(pos, result, a)
	}
	return result
}

// NLambda curries n unary binders around body: the innermost binder is the
// last parameter, matching "N-ary surface sugar is de-sugared into nested
// Lambdas" (spec §6). depths of Var nodes inside body must already account
// for all n binders; this helper only wraps, it does not shift indices.
func NLambda(pos lexer.Position, n int, body *Node) *Node {
	result := body
	for i := 0; i < n; i++ {
		result = NewLambda(pos, result)
	}
	return result
}
