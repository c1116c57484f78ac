package cmd

import (
	"fmt"

	"github.com/eug-vs/lambo/internal/lexer"
	"github.com/spf13/cobra"
)

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize a Lambo program and print the resulting tokens",
	Long: `Tokenize (lex) a Lambo program and print the resulting tokens, for
debugging the lexer.

Examples:
  lambo lex factorial.lambo
  lambo lex -e "\x. x + 1"`,
	Args: cobra.MaximumNArgs(1),
	RunE: lexScript,
}

func init() {
	rootCmd.AddCommand(lexCmd)
}

func lexScript(_ *cobra.Command, args []string) error {
	source, _, err := readSource(args)
	if err != nil {
		return err
	}

	l := lexer.New(source)
	for {
		tok := l.NextToken()
		fmt.Printf("%v\n", tok)
		if tok.Type == lexer.EOF {
			break
		}
	}
	return nil
}
