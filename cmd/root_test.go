// Copyright © 2018 The ELPS authors

package cmd

import (
	"bytes"
	"io"
	"testing"

	"github.com/luthersystems/mal/diagnostic"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withSetting overrides a configuration key for the duration of a test.
func withSetting(t *testing.T, key string, value interface{}) {
	t.Helper()
	old := viper.Get(key)
	viper.Set(key, value)
	t.Cleanup(func() { viper.Set(key, old) })
}

func TestRootFlags(t *testing.T) {
	for _, name := range []string{"config", "color", "log-level", "max-stack-height", "parser"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), "missing flag: %s", name)
	}
	assert.Equal(t, "warn", viper.GetString("log-level"))
	assert.Equal(t, "user> ", viper.GetString("prompt"))
	for _, name := range []string{"run", "repl", "doc"} {
		sub, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, sub.Name())
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	withSetting(t, "log-level", "debug")
	logger := newLogger(&buf)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	logger.WithField("file", "prog.mal").Debug("loading source")
	assert.Equal(t, "level=debug msg=\"loading source\" file=prog.mal\n", buf.String())

	buf.Reset()
	withSetting(t, "log-level", "chatty")
	logger = newLogger(&buf)
	assert.Equal(t, logrus.WarnLevel, logger.GetLevel())
	assert.Contains(t, buf.String(), "unknown log level")
}

func TestNewEnvSettings(t *testing.T) {
	logger := newLogger(io.Discard)

	withSetting(t, "max-stack-height", 7)
	env, err := newEnv(io.Discard, logger)
	require.NoError(t, err)
	assert.Equal(t, 7, env.Runtime.Stack.MaxHeight)

	withSetting(t, "max-stack-height", -1)
	_, err = newEnv(io.Discard, logger)
	assert.ErrorContains(t, err, "negative stack height")

	withSetting(t, "max-stack-height", 10)
	withSetting(t, "parser", "parsec")
	env, err = newEnv(io.Discard, logger)
	require.NoError(t, err)
	v := env.EvalString("(+ 1 2)")
	assert.Equal(t, "3", v.String())

	withSetting(t, "parser", "yacc")
	_, err = newEnv(io.Discard, logger)
	assert.EqualError(t, err, `unknown parser: "yacc"`)
}

func TestColorMode(t *testing.T) {
	withSetting(t, "color", "always")
	mode, err := colorMode()
	require.NoError(t, err)
	assert.Equal(t, diagnostic.ColorAlways, mode)

	withSetting(t, "color", "sometimes")
	_, err = colorMode()
	assert.Error(t, err)
	assert.Equal(t, diagnostic.ColorNever, newRenderer(nil).Color)
}
