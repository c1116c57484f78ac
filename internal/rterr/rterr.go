// Package rterr defines the evaluator's fatal runtime error kinds (spec
// §7). All of them are terminal to the current evaluation: the language
// has no catch primitive, so a reducer call either returns a value-form
// NodeID or one of these errors, never both.
package rterr

import "fmt"

// UnboundVariableError reports a Var whose depth exceeds the current
// environment's frame count.
type UnboundVariableError struct {
	Depth uint32
}

func (e *UnboundVariableError) Error() string {
	return fmt.Sprintf("unbound variable at depth %d", e.Depth)
}

// NewUnboundVariableError constructs an UnboundVariableError.
func NewUnboundVariableError(depth uint32) error {
	return &UnboundVariableError{Depth: depth}
}

// IsUnboundVariableError reports whether err is an UnboundVariableError.
func IsUnboundVariableError(err error) bool {
	_, ok := err.(*UnboundVariableError)
	return ok
}

// NotCallableError reports a spine non-empty against a non-applicable
// focus: a Num, Bytes, fully-filled Data, or an exhausted Primitive.
type NotCallableError struct {
	Kind string // "Num", "Bytes", "Data", "Primitive"
}

func (e *NotCallableError) Error() string {
	return fmt.Sprintf("value of kind %s is not callable", e.Kind)
}

// NewNotCallableError constructs a NotCallableError.
func NewNotCallableError(kind string) error {
	return &NotCallableError{Kind: kind}
}

// IsNotCallableError reports whether err is a NotCallableError.
func IsNotCallableError(err error) bool {
	_, ok := err.(*NotCallableError)
	return ok
}

// TypeMismatchError reports a primitive receiving an argument of the wrong
// variant (e.g. `+` applied to Bytes).
type TypeMismatchError struct {
	Expected string
	Got      string
	Context  string // primitive or operation name
}

func (e *TypeMismatchError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("type mismatch in %s: expected %s, got %s", e.Context, e.Expected, e.Got)
	}
	return fmt.Sprintf("type mismatch: expected %s, got %s", e.Expected, e.Got)
}

// NewTypeMismatchError constructs a TypeMismatchError.
func NewTypeMismatchError(expected, got, context string) error {
	return &TypeMismatchError{Expected: expected, Got: got, Context: context}
}

// IsTypeMismatchError reports whether err is a TypeMismatchError.
func IsTypeMismatchError(err error) bool {
	_, ok := err.(*TypeMismatchError)
	return ok
}

// DivByZeroError reports an arithmetic primitive applied with a zero
// divisor.
type DivByZeroError struct {
	Op string
}

func (e *DivByZeroError) Error() string {
	return fmt.Sprintf("division by zero in %s", e.Op)
}

// NewDivByZeroError constructs a DivByZeroError.
func NewDivByZeroError(op string) error {
	return &DivByZeroError{Op: op}
}

// IsDivByZeroError reports whether err is a DivByZeroError.
func IsDivByZeroError(err error) bool {
	_, ok := err.(*DivByZeroError)
	return ok
}

// InfiniteLoopError reports a thunk re-entered while InProgress: an
// unguarded self-reference (a black-hole).
type InfiniteLoopError struct{}

func (e *InfiniteLoopError) Error() string {
	return "infinite loop: thunk re-entered while already being forced"
}

// NewInfiniteLoopError constructs an InfiniteLoopError.
func NewInfiniteLoopError() error {
	return &InfiniteLoopError{}
}

// IsInfiniteLoopError reports whether err is an InfiniteLoopError.
func IsInfiniteLoopError(err error) bool {
	_, ok := err.(*InfiniteLoopError)
	return ok
}

// IndexOutOfBoundsError reports a byte access past the buffer's length.
type IndexOutOfBoundsError struct {
	Index  uint64
	Length int
}

func (e *IndexOutOfBoundsError) Error() string {
	return fmt.Sprintf("index %d out of bounds for bytes of length %d", e.Index, e.Length)
}

// NewIndexOutOfBoundsError constructs an IndexOutOfBoundsError.
func NewIndexOutOfBoundsError(index uint64, length int) error {
	return &IndexOutOfBoundsError{Index: index, Length: length}
}

// IsIndexOutOfBoundsError reports whether err is an IndexOutOfBoundsError.
func IsIndexOutOfBoundsError(err error) bool {
	_, ok := err.(*IndexOutOfBoundsError)
	return ok
}

// IoError reports an underlying stdin/stdout read or write failure.
type IoError struct {
	Cause error
}

func (e *IoError) Error() string {
	return fmt.Sprintf("io error: %v", e.Cause)
}

func (e *IoError) Unwrap() error {
	return e.Cause
}

// NewIoError constructs an IoError wrapping cause.
func NewIoError(cause error) error {
	return &IoError{Cause: cause}
}

// IsIoError reports whether err is an IoError.
func IsIoError(err error) bool {
	_, ok := err.(*IoError)
	return ok
}

// UserThrowError carries a value thrown by `#io_throw`, described as text
// by the printer before the process exits non-zero.
type UserThrowError struct {
	Description string
}

func (e *UserThrowError) Error() string {
	return fmt.Sprintf("uncaught throw: %s", e.Description)
}

// NewUserThrowError constructs a UserThrowError.
func NewUserThrowError(description string) error {
	return &UserThrowError{Description: description}
}

// IsUserThrowError reports whether err is a UserThrowError.
func IsUserThrowError(err error) bool {
	_, ok := err.(*UserThrowError)
	return ok
}
