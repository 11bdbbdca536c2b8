// Copyright © 2018 The ELPS authors

package cmd

import (
	"os"

	"github.com/luthersystems/mal/repl"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var replNoHistory bool

// replCmd represents the repl command
var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive mal REPL",
	Long: `Start an interactive read-eval-print loop.

Line editing, symbol completion, and command history are supported via
readline.  History is kept in $HOME/.mal_history unless history-file is
configured.  Conditions are reported with the offending input line and
the session continues.  Use Ctrl-D to exit.

Example REPL session:
  user> (def! square (fn* (x) (* x x)))
  #<function>
  user> (square 5)
  25
  user> (square)
  error: arity-error: square expects 1 arguments (got 0)`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger(os.Stderr)
		config, err := envConfig(os.Stderr, logger)
		if err != nil {
			return err
		}
		mode, err := colorMode()
		if err != nil {
			return err
		}
		opts := []repl.Option{
			repl.WithColor(mode),
			repl.WithLogger(logger),
			repl.WithEnvConfig(config...),
		}
		if replNoHistory {
			opts = append(opts, repl.WithHistoryFile(""))
		} else if path := viper.GetString("history-file"); path != "" {
			opts = append(opts, repl.WithHistoryFile(path))
		}
		return repl.RunRepl(viper.GetString("prompt"), opts...)
	},
}

func init() {
	rootCmd.AddCommand(replCmd)

	replCmd.Flags().BoolVar(&replNoHistory, "no-history", false,
		"Do not read or write the history file.")
}
