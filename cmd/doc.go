// Copyright © 2021 The ELPS authors

package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/luthersystems/mal/docs"
	"github.com/luthersystems/mal/lisp"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/cobra"
)

const docWidth = 72

// DocCommand returns the doc command.
func DocCommand(opts ...Option) *cobra.Command {
	cfg := newCmdConfig(opts...)
	var sourceFile string
	var short bool
	var guide bool
	cmd := &cobra.Command{
		Use:   "doc [flags] [NAME]",
		Short: "Show documentation for special forms, builtins, and definitions",
		Long: `Show built-in documentation for mal special forms and builtin functions.

Without a NAME every special form and builtin is listed.  Use -f to load a
source file first so that its definitions can be queried as well.

Examples:
  mal doc                      Document everything
  mal doc -s                   List signatures only
  mal doc let*                 Show docs for the let* special form
  mal doc -f lib.mal my-func   Load a file, then show my-func
  mal doc --guide              Print the language guide`,
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if guide {
				_, err := io.WriteString(cfg.stdout, docs.LangGuide)
				return err
			}
			env := cfg.env
			if env == nil {
				var err error
				env, err = docEnv(cfg, sourceFile)
				if err != nil {
					return err
				}
			}
			out := bufio.NewWriter(cfg.stdout)
			defer out.Flush() //nolint:errcheck // best-effort flush on exit
			if len(args) == 0 {
				return renderDocIndex(out, env, short)
			}
			return renderDocQuery(out, env, args[0])
		},
	}
	cmd.Flags().StringVarP(&sourceFile, "source-file", "f", "",
		"Evaluate a lisp source file before querying documentation.")
	cmd.Flags().BoolVarP(&short, "short", "s", false,
		"List signatures without documentation.")
	cmd.Flags().BoolVar(&guide, "guide", false,
		"Print the language guide.")
	return cmd
}

func docEnv(cfg *cmdConfig, sourceFile string) (*lisp.LEnv, error) {
	// interpreter output is discarded unless loading fails
	logger := newLogger(cfg.stderr)
	env, err := newEnv(io.Discard, logger)
	if err != nil {
		return nil, err
	}
	if sourceFile == "" {
		return env, nil
	}
	b, err := os.ReadFile(sourceFile) //#nosec G304
	if err != nil {
		return nil, err
	}
	res := env.LoadString(sourceFile, string(b))
	if res.Type == lisp.LError {
		renderLispError(cfg.stderr, res, map[string]string{sourceFile: string(b)})
		return nil, errReported
	}
	return env, nil
}

// docEntry is one documented symbol.
type docEntry struct {
	kind      string
	signature string
	doc       string
}

func builtinDocEntry(kind string, def lisp.LBuiltinDef) docEntry {
	e := docEntry{
		kind:      kind,
		signature: signature(def.Name(), def.Formals()),
	}
	if d, ok := def.(lisp.Documented); ok {
		e.doc = d.Docstring()
	}
	return e
}

func signature(name string, formals *lisp.LVal) string {
	parts := []string{name}
	if formals != nil {
		for _, c := range formals.Cells {
			parts = append(parts, c.String())
		}
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// userDocEntries returns definitions made in the root environment which do
// not shadow the core library.
func userDocEntries(env *lisp.LEnv) map[string]docEntry {
	core := make(map[string]bool)
	for _, def := range lisp.DefaultBuiltins() {
		core[def.Name()] = true
	}
	entries := make(map[string]docEntry)
	for name, v := range env.Root().Scope {
		if core[name] {
			continue
		}
		entries[name] = valueDocEntry(name, v)
	}
	return entries
}

func valueDocEntry(name string, v *lisp.LVal) docEntry {
	if v.Type != lisp.LFun {
		return docEntry{kind: "value", signature: name + " = " + v.String()}
	}
	var formals *lisp.LVal
	if len(v.Cells) > 0 {
		formals = v.Cells[0]
	}
	kind := "function"
	if v.Builtin() != nil {
		kind = "builtin"
	}
	return docEntry{kind: kind, signature: signature(name, formals), doc: v.Docstring()}
}

func renderDocIndex(w io.Writer, env *lisp.LEnv, short bool) error {
	var entries []docEntry
	for _, op := range lisp.SpecialForms() {
		entries = append(entries, builtinDocEntry("special form", op))
	}
	for _, def := range lisp.DefaultBuiltins() {
		entries = append(entries, builtinDocEntry("builtin", def))
	}
	user := userDocEntries(env)
	names := make([]string, 0, len(user))
	for name := range user {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		entries = append(entries, user[name])
	}
	for i, e := range entries {
		if short {
			if _, err := fmt.Fprintln(w, e.signature); err != nil {
				return err
			}
			continue
		}
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if err := renderDocEntry(w, e); err != nil {
			return err
		}
	}
	return nil
}

func renderDocQuery(w io.Writer, env *lisp.LEnv, name string) error {
	if lisp.IsSpecialForm(name) {
		for _, op := range lisp.SpecialForms() {
			if op.Name() == name {
				return renderDocEntry(w, builtinDocEntry("special form", op))
			}
		}
	}
	v := env.Get(lisp.Symbol(name))
	if v.Type == lisp.LError {
		return lisp.GoError(v)
	}
	return renderDocEntry(w, valueDocEntry(name, v))
}

func renderDocEntry(w io.Writer, e docEntry) error {
	_, err := fmt.Fprintf(w, "%s %s\n", e.kind, e.signature)
	if err != nil {
		return err
	}
	doc := cleanDocstring(e.doc)
	if doc != "" {
		_, err = fmt.Fprintln(w, doc)
	}
	return err
}

// cleanDocstring reflows doc to the documentation width and indents it
// beneath its signature.
func cleanDocstring(doc string) string {
	doc = strings.Join(strings.Fields(doc), " ")
	if doc == "" {
		return ""
	}
	doc = indent.String(wordwrap.String(doc, docWidth), 2)
	return strings.TrimSuffix(doc, "\n")
}

func init() {
	rootCmd.AddCommand(DocCommand())
}
