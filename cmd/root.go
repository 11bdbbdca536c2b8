// Copyright © 2018 The ELPS authors

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/luthersystems/mal/lisp"
	"github.com/luthersystems/mal/parser"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// errReported is returned by commands which have already rendered their
// failure to stderr.  Execute exits without printing it again.
var errReported = errors.New("error reported")

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mal",
	Short: "mal: a minimal Lisp interpreter",
	Long: `mal is a small Lisp interpreter implemented in Go.  It provides a
command line interface for running programs, evaluating expressions, and
exploring the language interactively.

Getting started:
  mal run file.mal             Run a source file
  mal run -e '(+ 1 2)' -p      Evaluate an expression and print its value
  mal repl                     Start an interactive REPL
  mal doc fn*                  Show documentation for a special form
  mal doc                      List every special form and builtin

Language overview:
  Programs are s-expressions.  Special forms are quote, if, def!, let*, do,
  fn*, cond and eval.  Only nil and false are falsy.  Functions are values
  created with (fn* (params) body) and close over their defining scope.
  Atoms created with (atom x) are the only mutable references.  Failures
  raise conditions such as unbound-symbol or arity-error, which abort the
  current top-level form.

Configuration is read from $HOME/.mal.yaml (or --config) and MAL_*
environment variables.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.mal.yaml)")
	flags.String("color", "auto",
		`Control colored output: "auto", "always", or "never".`)
	flags.String("log-level", "warn",
		"Logging level: trace, debug, info, warn, error, fatal, or panic.")
	flags.Int("max-stack-height", lisp.DefaultMaxStackHeight,
		"Maximum call stack height.  Zero removes the limit.")
	flags.String("parser", parser.ReaderRD,
		`Source reader: "rd" or "parsec".`)
	for _, name := range []string{"color", "log-level", "max-stack-height", "parser"} {
		_ = viper.BindPFlag(name, flags.Lookup(name))
	}
	viper.SetDefault("prompt", "user> ")
	viper.SetDefault("history-file", "")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		if err == nil {
			// Search config in home directory with name ".mal" (without extension).
			viper.AddConfigPath(home)
			viper.SetConfigName(".mal")
		}
	}

	viper.SetEnvPrefix("mal")
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		newLogger(os.Stderr).WithField("file", viper.ConfigFileUsed()).Debug("using config file")
	} else if cfgFile != "" {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newLogger returns a text logger writing to w at the configured level.  An
// unknown level falls back to warn.
func newLogger(w io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})
	level, err := logrus.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		level = logrus.WarnLevel
		logger.WithField("level", viper.GetString("log-level")).Warn("unknown log level")
	}
	logger.SetLevel(level)
	return logger
}

// envConfig returns the language configuration selected by flags and
// configuration files.
func envConfig(stderr io.Writer, logger logrus.FieldLogger) ([]lisp.Config, error) {
	reader, err := parser.NewReaderNamed(viper.GetString("parser"))
	if err != nil {
		return nil, err
	}
	return []lisp.Config{
		lisp.WithReader(reader),
		lisp.WithStderr(stderr),
		lisp.WithLogger(logger),
		lisp.WithMaximumStackHeight(viper.GetInt("max-stack-height")),
	}, nil
}

// newEnv returns an initialized root environment.
func newEnv(stderr io.Writer, logger logrus.FieldLogger, extra ...lisp.Config) (*lisp.LEnv, error) {
	config, err := envConfig(stderr, logger)
	if err != nil {
		return nil, err
	}
	env := lisp.NewEnv(nil)
	rc := lisp.InitializeUserEnv(env, append(config, extra...)...)
	if rc.Type == lisp.LError {
		return nil, fmt.Errorf("language initialization failure: %w", lisp.GoError(rc))
	}
	return env, nil
}
