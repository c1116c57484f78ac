// Package iodriver is the post-evaluation IO interpreter (spec §4.5): it
// walks a reduced Data value tagged with one of the reserved IO tags and
// performs the corresponding stdin/stdout side effect, trampolining through
// #io_flatmap chains so that unbounded interaction never grows the native
// call stack per step.
package iodriver

import (
	"bufio"
	"fmt"
	"io"

	"github.com/eug-vs/lambo/internal/errors"
	"github.com/eug-vs/lambo/internal/heap"
	"github.com/eug-vs/lambo/internal/ids"
	"github.com/eug-vs/lambo/internal/printer"
	"github.com/eug-vs/lambo/internal/reducer"
	"github.com/eug-vs/lambo/internal/rterr"
)

// Driver owns the scoped stdin/stdout resources an IO run borrows from the
// reducer (spec §5: "Standard input/output are acquired as scoped resources
// for each IO action").
type Driver struct {
	H   *heap.Heap
	R   *reducer.Reducer
	in  *bufio.Reader
	out io.Writer

	tracing bool
	Trace   errors.StackTrace
}

// New builds a Driver over the given heap/reducer pair and stdio streams.
func New(h *heap.Heap, r *reducer.Reducer, in io.Reader, out io.Writer) *Driver {
	return &Driver{H: h, R: r, in: bufio.NewReader(in), out: out}
}

// EnableTrace makes Drive record one errors.StackFrame per IO action it
// performs, oldest first, retrievable afterward via d.Trace. Positions are
// not tracked at the heap level (spec §3/§9), so frames carry only the
// action's name.
func (d *Driver) EnableTrace() {
	d.tracing = true
	d.Trace = errors.NewStackTrace()
}

func (d *Driver) recordFrame(name string) {
	if d.tracing {
		d.Trace = append(d.Trace, errors.NewStackFrame(name, "", nil))
	}
}

// Thrown is returned by Drive when the program ran #io_throw; callers use
// it to distinguish a clean result from a user-initiated abort so they can
// set an appropriate process exit code (spec §6: "non-zero on #io_throw").
type Thrown struct {
	Rendered string
}

func (t *Thrown) Error() string { return "thrown: " + t.Rendered }

// Drive reduces root to whnf and, if the result is a Data value carrying a
// reserved IO tag, interprets it; otherwise root was never an IO action and
// its value is returned unchanged (spec §4.5: "otherwise it prints the
// value and exits cleanly" — the caller is expected to print a non-IO
// result itself via internal/printer).
func (d *Driver) Drive(root ids.NodeID) (ids.NodeID, error) {
	focus := root
	// conts holds pending transforms from outer #io_flatmap calls, innermost
	// last: once the current focus bottoms out at a non-Flatmap action and
	// produces a plain result, conts is popped and reapplied one level at a
	// time. This keeps drive's native call stack flat regardless of how
	// many #io_flatmap calls are chained (spec §5: "trampoline the drive
	// loop and not accumulate native stack per step").
	var conts []ids.NodeID

	for {
		v, err := d.R.Whnf(focus, ids.EmptyEnv)
		if err != nil {
			return 0, err
		}
		n := *d.H.Get(v)
		if n.Kind != heap.KData || !isIOTag(n.CtorTag) {
			return v, nil
		}

		var result ids.NodeID
		switch n.CtorTag {
		case heap.IOTagFlatmap:
			d.recordFrame("#io_flatmap")
			conts = append(conts, n.Slots[0])
			focus = n.Slots[1]
			continue

		case heap.IOTagPure:
			d.recordFrame("#io_pure")
			result = n.Slots[0]

		case heap.IOTagPrint:
			d.recordFrame("#io_print")
			x, err := d.R.Whnf(n.Slots[0], ids.EmptyEnv)
			if err != nil {
				return 0, err
			}
			bn := *d.H.Get(x)
			if bn.Kind != heap.KBytes {
				return 0, rterr.NewTypeMismatchError("Bytes", bn.Kind.String(), "#io_print")
			}
			if _, err := d.out.Write(bn.Buf.Data); err != nil {
				return 0, rterr.NewIoError(err)
			}
			result = x

		case heap.IOTagPutchar:
			d.recordFrame("#io_putchar")
			x, err := d.R.Whnf(n.Slots[0], ids.EmptyEnv)
			if err != nil {
				return 0, err
			}
			nn := *d.H.Get(x)
			if nn.Kind != heap.KNum {
				return 0, rterr.NewTypeMismatchError("Num", nn.Kind.String(), "#io_putchar")
			}
			if _, err := d.out.Write([]byte{byte(nn.Num)}); err != nil {
				return 0, rterr.NewIoError(err)
			}
			result = x

		case heap.IOTagRead:
			d.recordFrame("#io_read")
			line, err := d.readLine()
			if err != nil {
				return 0, rterr.NewIoError(err)
			}
			result = d.H.Alloc(heap.Node{Kind: heap.KBytes, Buf: heap.NewBuffer(line)})

		case heap.IOTagThrow:
			d.recordFrame("#io_throw")
			x, err := d.R.Whnf(n.Slots[0], ids.EmptyEnv)
			if err != nil {
				return 0, err
			}
			rendered, rerr := printer.Render(d.H, d.R, x)
			if rerr != nil {
				rendered = d.H.Describe(x)
			}
			return 0, &Thrown{Rendered: rendered}

		default:
			return 0, fmt.Errorf("iodriver: unrecognised IO tag %d", n.CtorTag)
		}

		if len(conts) == 0 {
			return result, nil
		}
		transform := conts[len(conts)-1]
		conts = conts[:len(conts)-1]
		focus = d.H.Alloc(heap.Node{Kind: heap.KApp, Fun: transform, Arg: result})
	}
}

// readLine reads up to and including the next newline, returning the bytes
// with the newline stripped; EOF with no bytes read yields an empty line
// rather than an error, and EOF after a partial line returns that line (spec §6: "consumes up to and including the next
// newline; the newline is not included in the returned Bytes").
func (d *Driver) readLine() ([]byte, error) {
	line, err := d.in.ReadBytes('\n')
	if err != nil && err != io.EOF {
		return nil, err
	}
	if len(line) > 0 && line[len(line)-1] == '\n' {
		line = line[:len(line)-1]
	}
	if err == io.EOF && len(line) == 0 {
		return []byte{}, nil
	}
	return line, nil
}

func isIOTag(tag ids.PrimID) bool {
	switch tag {
	case heap.IOTagPure, heap.IOTagPrint, heap.IOTagRead, heap.IOTagPutchar, heap.IOTagFlatmap, heap.IOTagThrow:
		return true
	default:
		return false
	}
}
