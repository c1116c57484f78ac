package cmd

import (
	"github.com/spf13/cobra"
)

var (
	// Version is set by build flags, per the teacher's cmd/dwscript/cmd/root.go convention.
	Version = "0.1.0-dev"
)

var rootCmd = &cobra.Command{
	Use:   "lambo [file]",
	Short: "An untyped, call-by-need lambda calculus interpreter",
	Long: `lambo evaluates programs written in a minimal untyped lambda
calculus: de Bruijn-indexed variables, call-by-need reduction with sharing,
data constructors, and a small IO monad for stdin/stdout.

Running "lambo script.lambo" parses, reduces to weak-head normal form, drives any IO
actions the program produced, and prints the result. Use the "lex" and
"parse" subcommands to inspect the tokens or Term tree instead.`,
	Version: Version,
	Args:    cobra.MaximumNArgs(1),
	RunE:    runScript,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&trace, "trace", false, "trace parsing, evaluation and the IO actions performed to stderr")
	rootCmd.PersistentFlags().StringVarP(&evalExpr, "eval", "e", "", "evaluate inline source instead of reading a file")
	rootCmd.PersistentFlags().BoolVar(&gcFlag, "gc", false, "force a heap collection after evaluation and report live/freed node counts")
}
