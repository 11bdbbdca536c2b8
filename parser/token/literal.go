// Copyright © 2018 The ELPS authors

package token

import (
	"strconv"
	"strings"
)

// UnquoteString interprets a double-quoted string literal.  The escapes \\, \",
// \n, and \t are recognized.  Any other escape is an error.
func UnquoteString(text string) (string, error) {
	if len(text) < 2 || text[0] != '"' || text[len(text)-1] != '"' {
		return "", strconv.ErrSyntax
	}
	text = text[1 : len(text)-1]
	if !strings.ContainsRune(text, '\\') {
		return text, nil
	}
	var b strings.Builder
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(text) {
			return "", strconv.ErrSyntax
		}
		switch text[i] {
		case '\\':
			b.WriteByte('\\')
		case '"':
			b.WriteByte('"')
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		default:
			return "", strconv.ErrSyntax
		}
	}
	return b.String(), nil
}
