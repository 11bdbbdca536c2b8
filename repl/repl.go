// Copyright © 2018 The ELPS authors

// Package repl implements an interactive read-eval-print loop.
package repl

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ergochat/readline"
	"github.com/luthersystems/mal/diagnostic"
	"github.com/luthersystems/mal/lisp"
	"github.com/luthersystems/mal/parser"
	"github.com/luthersystems/mal/parser/lexer"
	"github.com/luthersystems/mal/parser/rdparser"
	"github.com/luthersystems/mal/parser/token"
	"github.com/sirupsen/logrus"
)

// SourceName is the source file name given to REPL input.
const SourceName = "stdin"

// DefaultPrompt is the prompt used when none is configured.
const DefaultPrompt = "user> "

type config struct {
	stdin       io.ReadCloser
	stdout      io.Writer
	stderr      io.Writer
	historyFile string
	noHistory   bool
	color       diagnostic.ColorMode
	logger      logrus.FieldLogger
	envConfig   []lisp.Config
}

func newConfig(opts ...Option) *config {
	config := &config{
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	for _, opt := range opts {
		opt(config)
	}
	if config.logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		config.logger = l
	}
	return config
}

type Option func(*config)

// WithStdin allows overriding the input to the REPL.
func WithStdin(stdin io.ReadCloser) Option {
	return func(c *config) {
		c.stdin = stdin
	}
}

// WithStdout allows overriding the writer that receives printed values.
func WithStdout(stdout io.Writer) Option {
	return func(c *config) {
		c.stdout = stdout
	}
}

// WithStderr allows overriding the writer that receives prompts and errors.
func WithStderr(stderr io.Writer) Option {
	return func(c *config) {
		c.stderr = stderr
	}
}

// WithHistoryFile sets the file used to persist line history.  An empty
// path disables persistent history.
func WithHistoryFile(path string) Option {
	return func(c *config) {
		c.historyFile = path
		c.noHistory = path == ""
	}
}

// WithColor sets when errors are rendered with ANSI colors.
func WithColor(mode diagnostic.ColorMode) Option {
	return func(c *config) {
		c.color = mode
	}
}

// WithLogger sets the logger for session events.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithEnvConfig adds configuration for the environment created by RunRepl.
func WithEnvConfig(cfgs ...lisp.Config) Option {
	return func(c *config) {
		c.envConfig = append(c.envConfig, cfgs...)
	}
}

// RunRepl runs a repl in a new root environment.
func RunRepl(prompt string, opts ...Option) error {
	cfg := newConfig(opts...)
	env := lisp.NewEnv(nil)
	envOpts := []lisp.Config{
		lisp.WithReader(parser.NewReader()),
		lisp.WithStderr(cfg.stderr),
		lisp.WithLogger(cfg.logger),
	}
	envOpts = append(envOpts, cfg.envConfig...)
	rc := lisp.InitializeUserEnv(env, envOpts...)
	if rc.Type == lisp.LError {
		return fmt.Errorf("language initialization failure: %w", lisp.GoError(rc))
	}
	return RunEnv(env, prompt, strings.Repeat(" ", len(prompt)), opts...)
}

// RunEnv runs a repl with env as a root environment.  Each top-level
// expression is evaluated and printed.  Conditions are rendered and the loop
// continues.  RunEnv returns when input is exhausted.
func RunEnv(env *lisp.LEnv, prompt, cont string, opts ...Option) error {
	if env.Parent != nil {
		return errors.New("REPL environment is not a root environment")
	}
	cfg := newConfig(opts...)

	p := rdparser.NewInteractive(nil)
	p.SetPrompts(prompt, cont)

	historyFile := cfg.historyFile
	if historyFile == "" && !cfg.noHistory {
		historyFile = historyPath()
	}
	ensureHistoryFilePermissions(historyFile)

	rlCfg := &readline.Config{
		Stdout:            cfg.stderr,
		Stderr:            cfg.stderr,
		Prompt:            p.Prompt(),
		HistoryFile:       historyFile,
		HistorySearchFold: true,
		AutoComplete:      &symbolCompleter{env: env},
	}
	if cfg.stdin != nil {
		rlCfg.Stdin = cfg.stdin
	}
	rl, err := readline.NewEx(rlCfg)
	if err != nil {
		return fmt.Errorf("readline: %w", err)
	}
	defer rl.Close() //nolint:errcheck // best-effort cleanup

	src := &session{}
	p.Read = func() []*token.Token {
		rl.SetPrompt(p.Prompt())
		for {
			line, err := rl.ReadSlice()
			if err == readline.ErrInterrupt {
				continue
			}
			if err != nil {
				return []*token.Token{{
					Type:   token.EOF,
					Source: &token.Location{File: SourceName},
				}}
			}
			line = bytes.TrimRight(line, " \t\r\n")
			if len(bytes.TrimSpace(line)) == 0 {
				continue
			}
			return src.tokens(line)
		}
	}

	renderer := &diagnostic.Renderer{
		Color:        cfg.color,
		SourceReader: src.read,
	}
	log := cfg.logger.WithField("session", SourceName)
	for {
		expr, err := p.Parse()
		if err == io.EOF {
			log.Debug("end of input")
			return nil
		}
		if err != nil {
			renderGoError(renderer, cfg.stderr, err)
			continue
		}
		val := env.Eval(expr)
		if val.Type == lisp.LError {
			log.WithField("condition", val.Str).Debug("evaluation failed")
			_ = renderer.Render(cfg.stderr, ErrorDiagnostic(val))
			continue
		}
		fmt.Fprintln(cfg.stdout, val) //nolint:errcheck // best-effort REPL output
	}
}

// session accumulates REPL input so that diagnostics can show the source of
// an error.  Token locations are numbered by input line.
type session struct {
	text  bytes.Buffer
	lines int
}

func (s *session) tokens(line []byte) []*token.Token {
	s.lines++
	s.text.Write(line)
	s.text.WriteByte('\n')
	lex := lexer.New(token.NewScanner(SourceName, bytes.NewReader(line)))
	var tokens []*token.Token
	for {
		tok := lex.ReadToken()
		for _, t := range tok {
			if t.Source != nil {
				t.Source.Line = s.lines
			}
		}
		if len(tok) == 0 || tok[0].Type == token.EOF {
			break
		}
		tokens = append(tokens, tok...)
		if tok[0].Type == token.ERROR {
			break
		}
	}
	if len(tokens) == 0 {
		// a line holding only a comment still yields a token so the parser
		// does not mistake it for the end of input
		tokens = append(tokens, &token.Token{
			Type:   token.COMMENT,
			Source: &token.Location{File: SourceName, Line: s.lines},
		})
	}
	return tokens
}

func (s *session) read(name string) ([]byte, error) {
	if name != SourceName {
		return os.ReadFile(name) //#nosec G304
	}
	return s.text.Bytes(), nil
}

func renderGoError(r *diagnostic.Renderer, w io.Writer, err error) {
	if lerr, ok := err.(*lisp.ErrorVal); ok {
		_ = r.Render(w, ErrorDiagnostic((*lisp.LVal)(lerr)))
		return
	}
	_ = r.Render(w, diagnostic.Diagnostic{Message: err.Error()})
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".mal_history")
}

// ensureHistoryFilePermissions creates path if necessary and restricts it
// to the current user.  REPL history may contain secrets.
func ensureHistoryFilePermissions(path string) {
	if path == "" {
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDONLY, 0600) //#nosec G304
	if err != nil {
		return
	}
	_ = f.Close()
	_ = os.Chmod(path, 0600)
}
