// Copyright © 2024 The ELPS authors

package cmd

import (
	"io"
	"os"
	"strings"

	"github.com/luthersystems/mal/lisp"
)

var envKeyReplacer = strings.NewReplacer("-", "_")

// Option configures an exported command factory (RunCommand, DocCommand).
type Option func(*cmdConfig)

type cmdConfig struct {
	env    *lisp.LEnv
	stdout io.Writer
	stderr io.Writer
}

func newCmdConfig(opts ...Option) *cmdConfig {
	c := &cmdConfig{
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithEnv injects a fully configured LEnv.  For the doc command this is the
// environment used for documentation queries.  For the run command programs
// are evaluated in env instead of a new environment.
func WithEnv(env *lisp.LEnv) Option {
	return func(c *cmdConfig) { c.env = env }
}

// WithOutput redirects command output.  Values and documentation are written
// to stdout; diagnostics are written to stderr.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(c *cmdConfig) {
		c.stdout = stdout
		c.stderr = stderr
	}
}
