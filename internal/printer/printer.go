// Package printer renders a reduced Node back to the textual form a user
// sees: decimal Num, quoted/escaped Bytes, λ-prefixed Closure bodies printed
// with raw Var indices, tagged Data with deeply-forced slots, and
// under-applied Primitives by name and accumulated args (spec §4.6).
package printer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/eug-vs/lambo/internal/heap"
	"github.com/eug-vs/lambo/internal/ids"
	"github.com/eug-vs/lambo/internal/prim"
	"github.com/eug-vs/lambo/internal/reducer"
)

// Render reduces id to whnf and formats it. Data slots are forced and
// rendered recursively, so a Data value is printed fully forced; one that
// becomes reachable from one of its own (still-lazy) slots renders as "…"
// instead of looping forever.
func Render(h *heap.Heap, r *reducer.Reducer, id ids.NodeID) (string, error) {
	return render(h, r, id, map[ids.NodeID]bool{})
}

func render(h *heap.Heap, r *reducer.Reducer, id ids.NodeID, visiting map[ids.NodeID]bool) (string, error) {
	v, err := r.Whnf(id, ids.EmptyEnv)
	if err != nil {
		return "", err
	}
	if visiting[v] {
		return "…", nil
	}

	n := *h.Get(v)
	switch n.Kind {
	case heap.KNum:
		return strconv.FormatUint(n.Num, 10), nil

	case heap.KBytes:
		return quoteBytes(n.Buf.Data), nil

	case heap.KClosure:
		body := renderRaw(h, n.Body)
		return "λ" + body, nil

	case heap.KData:
		visiting[v] = true
		defer delete(visiting, v)

		parts := make([]string, len(n.Slots))
		for i, s := range n.Slots {
			str, err := render(h, r, s, visiting)
			if err != nil {
				return "", err
			}
			parts[i] = str
		}
		suffix := ""
		if n.Filled < n.Arity {
			suffix = fmt.Sprintf(" (%d/%d filled)", n.Filled, n.Arity)
		}
		return fmt.Sprintf("#%d(%s)%s", n.CtorTag, strings.Join(parts, ", "), suffix), nil

	case heap.KPrimitive:
		entry, ok := prim.Get(n.Op)
		name := "?"
		if ok {
			name = entry.Name
		}
		if n.Filled == 0 {
			return name, nil
		}
		args := make([]string, len(n.Slots))
		for i, s := range n.Slots {
			str, err := render(h, r, s, visiting)
			if err != nil {
				return "", err
			}
			args[i] = str
		}
		return fmt.Sprintf("%s %s", name, strings.Join(args, " ")), nil

	default:
		return "", fmt.Errorf("printer: unexpected value-form kind %v", n.Kind)
	}
}

// renderRaw formats an unreduced term graph (a Closure's body, or nested
// sub-terms of it) using raw Var depths, never forcing anything: spec §4.6
// is explicit that Closure bodies print without further reduction.
func renderRaw(h *heap.Heap, id ids.NodeID) string {
	n := h.Get(id)
	switch n.Kind {
	case heap.KVar:
		return fmt.Sprintf("$%d", n.Depth)
	case heap.KLambda:
		return "λ" + renderRaw(h, n.Body)
	case heap.KApp:
		return fmt.Sprintf("(%s %s)", renderRaw(h, n.Fun), renderRaw(h, n.Arg))
	case heap.KNum:
		return strconv.FormatUint(n.Num, 10)
	case heap.KBytes:
		return quoteBytes(n.Buf.Data)
	case heap.KPrimitive:
		if entry, ok := prim.Get(n.Op); ok {
			return entry.Name
		}
		return "?prim"
	case heap.KClosure:
		return "λ" + renderRaw(h, n.Body)
	default:
		return "<" + n.Kind.String() + ">"
	}
}

func quoteBytes(data []byte) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, c := range data {
		switch {
		case c == '"' || c == '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\t':
			b.WriteString(`\t`)
		case c < 0x20 || c >= 0x7f:
			fmt.Fprintf(&b, `\x%02x`, c)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}
