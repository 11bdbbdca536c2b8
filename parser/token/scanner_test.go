// Copyright © 2018 The ELPS authors

package token

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScannerEOF(t *testing.T) {
	s := NewScanner("test", strings.NewReader("xyz"))
	for i := 0; i < 3; i++ {
		require.NoError(t, s.ScanRune())
	}
	tok := s.EmitToken(SYMBOL)
	assert.Equal(t, "xyz", tok.Text)
	assert.True(t, s.EOF())
	for i := 0; i < 3; i++ {
		assert.Equal(t, io.EOF, s.ScanRune())
		tok = s.EmitToken(0)
		assert.Equal(t, "", tok.Text)
	}
}

func TestScannerAcceptSeq(t *testing.T) {
	s := NewScanner("test", strings.NewReader("123  abc"))
	assert.Equal(t, 3, s.AcceptSeqDigit())
	assert.Equal(t, "123", s.EmitToken(INT).Text)
	assert.Equal(t, 2, s.AcceptSeqSpace())
	s.Ignore()
	assert.False(t, s.AcceptDigit())
	assert.True(t, s.AcceptAny("xyzab"))
	assert.True(t, s.AcceptRune('b'))
	assert.False(t, s.AcceptRune('b'))
	assert.Equal(t, 'b', s.Rune())
	tok := s.EmitToken(SYMBOL)
	assert.Equal(t, "ab", tok.Text)
	assert.Equal(t, "test:1:6", tok.Source.String())
}

func TestScannerLines(t *testing.T) {
	s := NewScanner("test", strings.NewReader("a\nβc"))
	require.NoError(t, s.ScanRune())
	s.Ignore()
	require.NoError(t, s.ScanRune())
	s.Ignore()
	require.NoError(t, s.ScanRune())
	assert.Equal(t, 'β', s.Rune())
	tok := s.EmitToken(SYMBOL)
	assert.Equal(t, &Location{File: "test", Pos: 2, Line: 2, Col: 1}, tok.Source)
	require.NoError(t, s.ScanRune())
	assert.Equal(t, &Location{File: "test", Pos: 4, Line: 2, Col: 2}, s.LocStart())
}

func TestScannerInvalidUTF8(t *testing.T) {
	s := NewScanner("test", strings.NewReader("a\xff"))
	require.NoError(t, s.ScanRune())
	_, ok := s.Peek()
	assert.False(t, ok)
	assert.Error(t, s.ScanRune())
	assert.Error(t, s.Err())
	assert.False(t, s.EOF())
}
