// Copyright © 2018 The ELPS authors

package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/luthersystems/mal/lisp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type runOptions struct {
	expression bool
	print      bool
	profile    profileOptions
}

// RunCommand returns the run command.
func RunCommand(opts ...Option) *cobra.Command {
	cfg := newCmdConfig(opts...)
	var ro runOptions
	cmd := &cobra.Command{
		Use:   "run [flags] FILE...",
		Short: "Run lisp code",
		Long: `Run lisp code supplied via the command line or a file.

Each top-level form is evaluated in order in a single environment.  The
first condition raised stops the run; it is reported with its source
location and call stack and the command exits with a non-zero status.

Examples:
  mal run prog.mal
  mal run -e '(def! x 2)' '(* x 21)' -p
  mal run --callgrind prog.callgrind prog.mal`,
		Args:          cobra.MinimumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(cmd.Context(), cfg, &ro, args)
		},
	}

	cmd.Flags().BoolVarP(&ro.expression, "expression", "e", false,
		"Interpret arguments as lisp expressions")
	cmd.Flags().BoolVarP(&ro.print, "print", "p", false,
		"Print expression values to stdout")
	ro.profile.addFlags(cmd)
	return cmd
}

type runner struct {
	env     *lisp.LEnv
	stdout  io.Writer
	stderr  io.Writer
	print   bool
	sources map[string]string
	log     logrus.FieldLogger
}

func runExec(ctx context.Context, cfg *cmdConfig, ro *runOptions, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	logger := newLogger(cfg.stderr)
	if ro.profile.trace != "" && logger.GetLevel() < logrus.InfoLevel {
		// spans are logged at info
		logger.SetLevel(logrus.InfoLevel)
	}
	env := cfg.env
	if env == nil {
		var err error
		env, err = newEnv(cfg.stderr, logger, lisp.WithContext(ctx))
		if err != nil {
			return err
		}
	}

	names, sources, err := runReadSources(ro.expression, args)
	if err != nil {
		return err
	}

	stopProfile, err := ro.profile.start(ctx, env, logger)
	if err != nil {
		return err
	}
	r := &runner{
		env:     env,
		stdout:  cfg.stdout,
		stderr:  cfg.stderr,
		print:   ro.print,
		sources: sources,
		log:     logger,
	}
	runErr := r.runAll(names)
	if err := stopProfile(); err != nil {
		logger.WithError(err).Error("profiler failed")
		if runErr == nil {
			runErr = err
		}
	}
	return runErr
}

// runReadSources returns the source names in evaluation order along with
// their text.
func runReadSources(expression bool, args []string) ([]string, map[string]string, error) {
	names := make([]string, len(args))
	sources := make(map[string]string, len(args))
	for i, arg := range args {
		if expression {
			names[i] = fmt.Sprintf("expr%d", i+1)
			sources[names[i]] = arg
			continue
		}
		b, err := os.ReadFile(arg) //#nosec G304
		if err != nil {
			return nil, nil, err
		}
		names[i] = arg
		sources[arg] = string(b)
	}
	return names, sources, nil
}

func (r *runner) runAll(names []string) error {
	for _, name := range names {
		if err := r.runSource(name); err != nil {
			return err
		}
	}
	return nil
}

func (r *runner) runSource(name string) error {
	log := r.log.WithField("file", name)
	log.Debug("loading source")
	exprs, err := r.env.Runtime.Reader.Read(name, bytes.NewReader([]byte(r.sources[name])))
	if err != nil {
		log.WithError(err).Debug("read failed")
		renderError(r.stderr, err, r.sources)
		return errReported
	}
	for _, expr := range exprs {
		v := r.env.Eval(expr)
		if v.Type == lisp.LError {
			log.WithFields(logrus.Fields{
				"expr":      expr.String(),
				"condition": v.Str,
			}).Debug("evaluation failed")
			renderLispError(r.stderr, v, r.sources)
			if errors.Is(lisp.GoError(v), context.Canceled) {
				log.Warn("interrupted")
			}
			return errReported
		}
		if r.print {
			fmt.Fprintln(r.stdout, v) //nolint:errcheck // best-effort output
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(RunCommand())
}
