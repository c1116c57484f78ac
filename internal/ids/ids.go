// Package ids defines the small numeric handle types shared by the heap,
// environment, and primitive-table packages.
//
// NodeID and EnvID are opaque arena indices, not pointers: the heap and the
// environment are both append-only (plus in-place update) arenas, and
// keeping their index types in one leaf package lets heap, env, and prim
// refer to each other's handles without importing each other.
package ids

// NodeID addresses a Node in the Heap arena.
type NodeID uint32

// EnvID addresses a Frame in the Environment arena.
type EnvID uint32

// EmptyEnv is the reserved EnvID denoting "no bindings, no parent" — the
// environment a top-level closed term is reduced under.
const EmptyEnv EnvID = 0

// PrimID identifies a primitive operator in the primitive table. The zero
// value is never assigned to a real primitive.
type PrimID uint16
