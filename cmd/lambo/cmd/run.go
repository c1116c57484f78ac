package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/eug-vs/lambo/internal/build"
	"github.com/eug-vs/lambo/internal/env"
	"github.com/eug-vs/lambo/internal/heap"
	"github.com/eug-vs/lambo/internal/ids"
	"github.com/eug-vs/lambo/internal/iodriver"
	"github.com/eug-vs/lambo/internal/parser"
	"github.com/eug-vs/lambo/internal/printer"
	"github.com/eug-vs/lambo/internal/reducer"
	"github.com/spf13/cobra"
)

var (
	evalExpr string
	trace    bool
	gcFlag   bool
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run a Lambo program",
	Long: `Evaluate a Lambo program from a file or inline expression, driving
any IO actions it produces against stdin/stdout.

Examples:
  lambo run factorial.lambo
  lambo run -e "1 + 2"
  lambo run --trace --gc factorial.lambo`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScript,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

// readSource resolves the "file or -e expression" input convention shared
// by run/lex/parse, mirroring the teacher's cmd/dwscript/cmd/run.go.
func readSource(args []string) (source, filename string, err error) {
	if evalExpr != "" {
		return evalExpr, "<eval>", nil
	}
	if len(args) == 1 {
		content, err := os.ReadFile(args[0])
		if err != nil {
			return "", "", fmt.Errorf("failed to read file %s: %w", args[0], err)
		}
		return extractSource(string(content), args[0]), args[0], nil
	}
	return "", "", fmt.Errorf("either provide a file path or use -e for inline source")
}

// extractSource feeds only the contents of fenced code blocks to the parser
// when name looks like markdown (spec §6); every other extension is parsed
// whole.
func extractSource(content, name string) string {
	if !strings.HasSuffix(name, ".md") {
		return content
	}
	var fences []string
	lines := strings.Split(content, "\n")
	inFence := false
	var cur strings.Builder
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			if inFence {
				fences = append(fences, cur.String())
				cur.Reset()
			}
			inFence = !inFence
			continue
		}
		if inFence {
			cur.WriteString(line)
			cur.WriteString("\n")
		}
	}
	return strings.Join(fences, "")
}

func runScript(_ *cobra.Command, args []string) error {
	source, filename, err := readSource(args)
	if err != nil {
		return err
	}

	if trace {
		fmt.Fprintf(os.Stderr, "[trace] parsing %s\n", filename)
	}
	tree, err := parser.Parse(source, filename)
	if err != nil {
		return err
	}

	h := heap.New()
	e := env.New()
	r := reducer.New(h, e)
	root := build.Load(h, tree)

	if trace {
		fmt.Fprintf(os.Stderr, "[trace] evaluating %s\n", filename)
	}
	d := iodriver.New(h, r, os.Stdin, os.Stdout)
	if trace {
		d.EnableTrace()
	}
	final, err := d.Drive(root)
	if trace && len(d.Trace) > 0 {
		fmt.Fprintf(os.Stderr, "[trace] IO actions:\n%s\n", d.Trace.String())
	}
	if err != nil {
		if thrown, ok := err.(*iodriver.Thrown); ok {
			return fmt.Errorf("uncaught #io_throw: %s", thrown.Rendered)
		}
		return err
	}

	rendered, err := printer.Render(h, r, final)
	if err != nil {
		return err
	}
	fmt.Println(rendered)

	if gcFlag {
		_, freed := h.GC([]ids.NodeID{final}, func(id ids.EnvID) []ids.NodeID { return e.Live(id) })
		fmt.Fprintf(os.Stderr, "[gc] %d node(s) live, %d freed\n", h.Len(), freed)
	}

	return nil
}
