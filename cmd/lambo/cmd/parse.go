package cmd

import (
	"fmt"
	"strings"

	"github.com/eug-vs/lambo/internal/parser"
	"github.com/eug-vs/lambo/internal/term"
	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a Lambo program and dump its Term tree",
	Long: `Parse a Lambo program and print the de Bruijn-indexed Term tree the
evaluator would receive, for debugging the parser.

Examples:
  lambo parse factorial.lambo
  lambo parse -e "let x 1 in x + x"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

func runParse(_ *cobra.Command, args []string) error {
	source, filename, err := readSource(args)
	if err != nil {
		return err
	}

	tree, err := parser.Parse(source, filename)
	if err != nil {
		return err
	}

	dumpTerm(tree, 0)
	return nil
}

func dumpTerm(n *term.Node, indent int) {
	pad := strings.Repeat("  ", indent)
	switch n.Kind {
	case term.Var:
		fmt.Printf("%sVar(%d)\n", pad, n.Depth)
	case term.Lambda:
		fmt.Printf("%sLambda\n", pad)
		dumpTerm(n.Body, indent+1)
	case term.App:
		fmt.Printf("%sApp\n", pad)
		dumpTerm(n.Fun, indent+1)
		dumpTerm(n.Arg, indent+1)
	case term.Num:
		fmt.Printf("%sNum(%d)\n", pad, n.Num)
	case term.Bytes:
		fmt.Printf("%sBytes(%q)\n", pad, n.Bytes)
	case term.Prim:
		fmt.Printf("%sPrim(%s)\n", pad, n.PrimName)
	default:
		fmt.Printf("%s<unknown kind %d>\n", pad, n.Kind)
	}
}

