// Package lambo is the public embedding facade: parse and run a Lambo
// program in one call, for hosts that want the interpreter without going
// through the CLI.
package lambo

import (
	"io"
	"strings"

	"github.com/eug-vs/lambo/internal/build"
	"github.com/eug-vs/lambo/internal/env"
	"github.com/eug-vs/lambo/internal/heap"
	"github.com/eug-vs/lambo/internal/iodriver"
	"github.com/eug-vs/lambo/internal/parser"
	"github.com/eug-vs/lambo/internal/printer"
	"github.com/eug-vs/lambo/internal/reducer"
)

// Result is the outcome of running a program to completion.
type Result struct {
	// Rendered is the printed form of the final value (internal/printer).
	Rendered string
	// NodeCount is the number of heap nodes allocated by the end of the run
	// (no collection is run, so unreachable nodes are included),
	// for callers that want a rough cost signal without reaching into
	// internal/heap themselves.
	NodeCount int
}

// Run parses source, reduces it to weak-head normal form, drives any IO actions it
// produces against in/out, and renders the final value. file is used only
// for diagnostics in parse errors.
func Run(source, file string, in io.Reader, out io.Writer) (Result, error) {
	tree, err := parser.Parse(source, file)
	if err != nil {
		return Result{}, err
	}

	h := heap.New()
	e := env.New()
	r := reducer.New(h, e)
	root := build.Load(h, tree)

	d := iodriver.New(h, r, in, out)
	final, err := d.Drive(root)
	if err != nil {
		return Result{}, err
	}

	rendered, err := printer.Render(h, r, final)
	if err != nil {
		return Result{}, err
	}
	return Result{Rendered: rendered, NodeCount: h.Len()}, nil
}

// RunString is Run with no IO streams wired, for pure (non-IO) programs:
// stdin reads as empty, stdout writes are discarded.
func RunString(source, file string) (Result, error) {
	return Run(source, file, strings.NewReader(""), io.Discard)
}
