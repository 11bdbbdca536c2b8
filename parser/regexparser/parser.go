// Copyright © 2018 The ELPS authors

// Package regexparser provides a lisp reader built from parser combinators.
//
//	expr    := <list> | <quoted> | <deref> | <string> | <atom>
//	list    := '(' <expr>* ')'
//	quoted  := '\'' <expr>
//	deref   := '@' <expr>
//	string  := '"' /([^"\\]|\\.)*/ '"'
//	atom    := /[^\s()\[\]{}'"`,;@]+/
//
// Atoms are classified after matching.  Integer text becomes a number, the
// names nil, true, and false become literal values, and anything else is a
// symbol.  Comments (';' to end of line) and commas are skipped.
package regexparser

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"unicode"

	"github.com/luthersystems/mal/lisp"
	"github.com/luthersystems/mal/parser/token"
	parsec "github.com/prataprc/goparsec"
)

// NewReader returns a lisp.Reader.  The returned reader also implements
// lisp.ExpressionReader.
func NewReader() lisp.Reader {
	return &parsecReader{}
}

type parsecReader struct{}

// Read implements lisp.Reader.
func (p *parsecReader) Read(name string, r io.Reader) ([]*lisp.LVal, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return ParseLVal(name, b)
}

// ReadExpression implements lisp.ExpressionReader.
func (p *parsecReader) ReadExpression(name string, r io.Reader) (*lisp.LVal, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	loc := newLocator(name, b)
	v, _, err := parseOne(newParsecParser(loc), loc, parsec.NewScanner(prepareText(b)))
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, io.EOF
	}
	return v, nil
}

const (
	nodeInvalid nodeType = iota
	nodeAtom
	nodeString
	nodeSExpr
	nodeSExprOUnmatched
	nodeQuote
	nodeDeref
)

var nodeTypeStrings = []string{
	nodeInvalid:         "INVALID",
	nodeAtom:            "ATOM",
	nodeString:          "STRING",
	nodeSExpr:           "SEXPR",
	nodeSExprOUnmatched: "SEXPROPENUNMATCHED",
	nodeQuote:           "QUOTE",
	nodeDeref:           "DEREF",
}

// ParseLVal parses all LVal values from text.  Parsing stops at the first
// syntax error.
func ParseLVal(name string, text []byte) ([]*lisp.LVal, error) {
	var vals []*lisp.LVal
	loc := newLocator(name, text)
	parser := newParsecParser(loc)
	s := parsec.NewScanner(prepareText(text))
	for {
		v, next, err := parseOne(parser, loc, s)
		if err != nil {
			return nil, err
		}
		if v == nil {
			return vals, nil
		}
		vals = append(vals, v)
		s = next
	}
}

// parseOne reads the next value from s.  A nil value and nil error indicate
// that only whitespace and comments remain.
func parseOne(parser parsec.Parser, loc *locator, s parsec.Scanner) (*lisp.LVal, parsec.Scanner, error) {
	for {
		root, next := parser(s)
		if root == nil {
			break
		}
		s = next
		v := getLVal(root)
		if v == nil {
			continue
		}
		if v.Type == lisp.LError {
			return nil, s, lisp.GoError(v)
		}
		return v, s, nil
	}
	_, s = s.SkipWS()
	if s.Endof() {
		return nil, s, nil
	}
	pos := s.GetCursor()
	b, _ := s.Match(`[^\s]{1,16}`)
	if len(b) > 15 {
		b = append(b[:15:15], []byte("...")...)
	}
	err := lisp.ErrorConditionf(lisp.CondSyntaxError, "unexpected text starting with %q", b)
	err.Source = loc.at(pos)
	return nil, s, lisp.GoError(err)
}

func newParsecParser(loc *locator) parsec.Parser {
	openP := parsec.Atom("(", "OPENP")
	closeP := parsec.Atom(")", "CLOSEP")
	q := parsec.Atom("'", "QUOTE")
	at := parsec.Atom("@", "DEREF")
	comment := parsec.Token(`;[^\n]*`, "COMMENT")
	comma := parsec.Token(`,+`, "COMMA")
	str := parsec.Token(`"(?:[^"\\]|\\.)*"`, "STRING")
	atom := parsec.Token("[^\\s()\\[\\]{}'\"`,;@]+", "ATOM")
	node := func(t nodeType) parsec.Nodify {
		return func(nodes []parsec.ParsecNode) parsec.ParsecNode {
			return newAST(loc, t, nodes)
		}
	}

	var expr parsec.Parser // forward declaration allows for recursive parsing
	exprList := parsec.Kleene(nil, &expr)
	sexpr := parsec.And(node(nodeSExpr), openP, exprList, closeP)
	sexprOUnmatched := parsec.And(node(nodeSExprOUnmatched), openP, exprList, parsec.End())
	quoted := parsec.And(node(nodeQuote), q, &expr)
	deref := parsec.And(node(nodeDeref), at, &expr)
	expr = parsec.OrdChoice(nil,
		comment,
		comma,
		parsec.OrdChoice(node(nodeString), str),
		parsec.OrdChoice(node(nodeAtom), atom),
		sexpr,
		quoted,
		deref,
		// Error matching cases come last because they have the lowest
		// precedence.
		sexprOUnmatched,
	)
	return expr
}

type nodeType uint

func (t nodeType) String() string {
	if int(t) >= len(nodeTypeStrings) {
		return "INVALID"
	}
	return nodeTypeStrings[t]
}

var intPattern = regexp.MustCompile(`^-?[0-9]+$`)
var numberPrefix = regexp.MustCompile(`^-?[0-9]`)

func newAST(loc *locator, typ nodeType, nodes []parsec.ParsecNode) parsec.ParsecNode {
	nodes, ok := cleanParsecNodeList(nodes)
	if !ok {
		// There is an error in the first position.
		return nodes[0]
	}
	switch typ {
	case nodeAtom:
		term := nodes[0].(*parsec.Terminal)
		return atomLVal(loc, term)
	case nodeString:
		term := nodes[0].(*parsec.Terminal)
		s, err := token.UnquoteString(term.Value)
		if err != nil {
			return syntaxError(loc, term.Position, "invalid string literal %s: %v", term.Value, err)
		}
		return located(loc, term.Position, lisp.String(s))
	case nodeSExprOUnmatched:
		open := nodes[0].(*parsec.Terminal)
		return syntaxError(loc, open.Position, "unmatched %s", open.Value)
	case nodeSExpr:
		// the terminal parsec nodes '(' and ')' are dropped
		open := nodes[0].(*parsec.Terminal)
		lval := lisp.SExpr(make([]*lisp.LVal, 0, len(nodes)-2))
		for _, c := range nodes {
			if c, ok := c.(*lisp.LVal); ok {
				lval.Cells = append(lval.Cells, c)
			}
		}
		return located(loc, open.Position, lval)
	case nodeQuote, nodeDeref:
		mark := nodes[0].(*parsec.Terminal)
		if len(nodes) < 2 {
			return syntaxError(loc, mark.Position, "unexpected end of input")
		}
		c, ok := nodes[1].(*lisp.LVal)
		if !ok {
			return syntaxError(loc, mark.Position, "invalid expression following %s", mark.Value)
		}
		op := "quote"
		if typ == nodeDeref {
			op = "deref"
		}
		sym := located(loc, mark.Position, lisp.Symbol(op))
		return located(loc, mark.Position, lisp.SExpr([]*lisp.LVal{sym, c}))
	default:
		panic(fmt.Sprintf("unknown nodeType: %s (%d)", typ, typ))
	}
}

func atomLVal(loc *locator, term *parsec.Terminal) *lisp.LVal {
	text := term.Value
	switch {
	case intPattern.MatchString(text):
		x, err := strconv.Atoi(text)
		if err != nil {
			return syntaxError(loc, term.Position, "integer literal overflows int: %v", text)
		}
		return located(loc, term.Position, lisp.Int(x))
	case numberPrefix.MatchString(text):
		return syntaxError(loc, term.Position, "invalid number %q", text)
	case text == "nil":
		return located(loc, term.Position, lisp.Nil())
	case text == "true":
		return located(loc, term.Position, lisp.Bool(true))
	case text == "false":
		return located(loc, term.Position, lisp.Bool(false))
	default:
		return located(loc, term.Position, lisp.Symbol(text))
	}
}

func cleanParsecNodeList(lis []parsec.ParsecNode) ([]parsec.ParsecNode, bool) {
	var nodes []parsec.ParsecNode
	for _, n := range lis {
		switch node := n.(type) {
		case *parsec.Terminal:
			if node.Name == "COMMENT" || node.Name == "COMMA" {
				continue
			}
			nodes = append(nodes, node)
		case *lisp.LVal:
			if node.Type == lisp.LError {
				return []parsec.ParsecNode{node}, false
			}
			nodes = append(nodes, node)
		case []parsec.ParsecNode:
			clean, ok := cleanParsecNodeList(node)
			if !ok {
				return clean, false
			}
			nodes = append(nodes, clean...)
		case nil:
		default:
			nodes = append(nodes, node)
		}
	}
	return nodes, true
}

// getLVal returns the value of a root parse node, or nil when the node holds
// only comments or commas.
func getLVal(root parsec.ParsecNode) *lisp.LVal {
	nodes, _ := cleanParsecNodeList([]parsec.ParsecNode{root})
	if len(nodes) == 0 {
		return nil
	}
	lval, ok := nodes[0].(*lisp.LVal)
	if !ok {
		return nil
	}
	return lval
}

func syntaxError(loc *locator, pos int, format string, v ...interface{}) *lisp.LVal {
	return located(loc, pos, lisp.ErrorConditionf(lisp.CondSyntaxError, format, v...))
}

func located(loc *locator, pos int, v *lisp.LVal) *lisp.LVal {
	v.Source = loc.at(pos)
	return v
}

// prepareText blanks out a leading #! line and drops trailing whitespace.
// Byte offsets into the returned text remain valid offsets into text.
func prepareText(text []byte) []byte {
	text = bytes.TrimRightFunc(text, unicode.IsSpace)
	if len(text) < 2 || text[0] != '#' || text[1] != '!' {
		return text
	}
	out := make([]byte, len(text))
	copy(out, text)
	for i := 0; i < len(out) && out[i] != '\n'; i++ {
		out[i] = ' '
	}
	return out
}

// locator converts byte offsets into line and column locations.
type locator struct {
	name  string
	text  []byte
	lines []int // offset of the first byte of each line
}

func newLocator(name string, text []byte) *locator {
	lines := []int{0}
	for i, b := range text {
		if b == '\n' {
			lines = append(lines, i+1)
		}
	}
	return &locator{name: name, text: text, lines: lines}
}

func (loc *locator) at(pos int) *token.Location {
	line := sort.Search(len(loc.lines), func(i int) bool { return loc.lines[i] > pos }) - 1
	if line < 0 {
		line = 0
	}
	start := loc.lines[line]
	col := 1
	if pos <= len(loc.text) {
		col = len([]rune(string(loc.text[start:pos]))) + 1
	}
	return &token.Location{
		File: loc.name,
		Pos:  pos,
		Line: line + 1,
		Col:  col,
	}
}
