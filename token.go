// Copyright 2014 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Tokenizing and parsing of PDF syntax from a raw byte stream. This is
// the "out of scope, but must actually work" tokenizer and value
// parser collaborator: the core (registry, xref loader, object-stream
// decoder) never looks at a byte stream directly, it always goes
// through a *tokenizer.

package pdfio

import (
	"fmt"
	"io"
	"strconv"

	"github.com/Lance219/pdfio/internal/types"
)

// A token is one lexical unit of PDF syntax: bool, int64, float64,
// string (a decoded literal or hex string), keyword, or types.Name.
type token any

// A keyword is a bare PDF keyword, including structural delimiters
// ("<<", ">>", "[", "]") that are lexed the same way.
type keyword string

// tokenizer holds buffered input from one section of a PDF file.
type tokenizer struct {
	r      io.Reader
	buf    []byte
	pos    int
	offset int64 // offset in the file at the end of buf
	tmp    []byte
	unread []token
	eof    bool
}

func newTokenizer(r io.Reader, offset int64) *tokenizer {
	return &tokenizer{r: r, offset: offset, buf: make([]byte, 0, 4096)}
}

func (t *tokenizer) readByte() byte {
	if t.pos >= len(t.buf) {
		if !t.reload() {
			return '\n'
		}
	}
	c := t.buf[t.pos]
	t.pos++
	return c
}

func (t *tokenizer) reload() bool {
	n := cap(t.buf)
	n, err := t.r.Read(t.buf[:n])
	if n == 0 && err != nil {
		t.buf = t.buf[:0]
		t.pos = 0
		t.eof = true
		return false
	}
	t.offset += int64(n)
	t.buf = t.buf[:n]
	t.pos = 0
	return true
}

func (t *tokenizer) unreadByte() {
	if t.pos > 0 {
		t.pos--
	}
}

// readOffset returns the file offset of the next unread byte.
func (t *tokenizer) readOffset() int64 {
	return t.offset - int64(len(t.buf)) + int64(t.pos)
}

// readN reads exactly n raw bytes, bypassing token lexing. Used for
// the fixed-width classical xref entries, which are not
// delimiter-separated tokens.
func (t *tokenizer) readN(n int) ([]byte, error) {
	out := make([]byte, n)
	for i := range out {
		if t.pos >= len(t.buf) && !t.reload() {
			return nil, io.ErrUnexpectedEOF
		}
		out[i] = t.buf[t.pos]
		t.pos++
	}
	return out, nil
}

// skipSpace consumes whitespace bytes up to (but not including) the
// next non-whitespace byte. Used right before reading fixed-width
// binary records (classical xref entries) that follow a token line
// but are not themselves tokenized.
func (t *tokenizer) skipSpace() {
	for {
		c := t.readByte()
		if !isSpace(c) || t.eof {
			t.unreadByte()
			return
		}
	}
}

func (t *tokenizer) unreadToken(tok token) {
	t.unread = append(t.unread, tok)
}

func (t *tokenizer) readToken() (token, error) {
	if n := len(t.unread); n > 0 {
		tok := t.unread[n-1]
		t.unread = t.unread[:n-1]
		return tok, nil
	}

	c := t.readByte()
	for {
		if isSpace(c) {
			if t.eof {
				return nil, io.EOF
			}
			c = t.readByte()
		} else if c == '%' {
			for c != '\r' && c != '\n' {
				c = t.readByte()
			}
		} else {
			break
		}
	}

	switch c {
	case '<':
		if t.readByte() == '<' {
			return keyword("<<"), nil
		}
		t.unreadByte()
		return t.readHexString(), nil

	case '(':
		return t.readLiteralString(), nil

	case '[', ']', '{', '}':
		return keyword(string(c)), nil

	case '/':
		return t.readName(), nil

	case '>':
		if t.readByte() == '>' {
			return keyword(">>"), nil
		}
		t.unreadByte()
		return nil, fmt.Errorf("unexpected delimiter '>'")

	default:
		if isDelim(c) {
			return nil, fmt.Errorf("unexpected delimiter %q", rune(c))
		}
		t.unreadByte()
		return t.readKeyword(), nil
	}
}

func (t *tokenizer) readHexString() token {
	tmp := t.tmp[:0]
	for {
		c := t.readByte()
		for isSpace(c) {
			c = t.readByte()
		}
		if c == '>' {
			break
		}
		c2 := t.readByte()
		for isSpace(c2) {
			c2 = t.readByte()
		}
		x := unhex(c)<<4 | unhex(c2)
		if x < 0 {
			break
		}
		tmp = append(tmp, byte(x))
	}
	t.tmp = tmp
	return string(tmp)
}

func unhex(b byte) int {
	switch {
	case '0' <= b && b <= '9':
		return int(b - '0')
	case 'a' <= b && b <= 'f':
		return int(b-'a') + 10
	case 'A' <= b && b <= 'F':
		return int(b-'A') + 10
	}
	return -1
}

func (t *tokenizer) readLiteralString() token {
	tmp := t.tmp[:0]
	depth := 1
Loop:
	for !t.eof {
		c := t.readByte()
		switch c {
		default:
			tmp = append(tmp, c)
		case '(':
			depth++
			tmp = append(tmp, c)
		case ')':
			if depth--; depth == 0 {
				break Loop
			}
			tmp = append(tmp, c)
		case '\\':
			switch c = t.readByte(); c {
			case 'n':
				tmp = append(tmp, '\n')
			case 'r':
				tmp = append(tmp, '\r')
			case 'b':
				tmp = append(tmp, '\b')
			case 't':
				tmp = append(tmp, '\t')
			case 'f':
				tmp = append(tmp, '\f')
			case '(', ')', '\\':
				tmp = append(tmp, c)
			case '\r':
				if t.readByte() != '\n' {
					t.unreadByte()
				}
			case '\n':
				// line continuation, no output
			case '0', '1', '2', '3', '4', '5', '6', '7':
				x := int(c - '0')
				for i := 0; i < 2; i++ {
					c = t.readByte()
					if c < '0' || c > '7' {
						t.unreadByte()
						break
					}
					x = x*8 + int(c-'0')
				}
				tmp = append(tmp, byte(x))
			default:
				tmp = append(tmp, c)
			}
		}
	}
	t.tmp = tmp
	return string(tmp)
}

func (t *tokenizer) readName() token {
	tmp := t.tmp[:0]
	for {
		c := t.readByte()
		if isDelim(c) || isSpace(c) {
			t.unreadByte()
			break
		}
		if c == '#' {
			x := unhex(t.readByte())<<4 | unhex(t.readByte())
			if x >= 0 {
				tmp = append(tmp, byte(x))
				continue
			}
		}
		tmp = append(tmp, c)
	}
	t.tmp = tmp
	return types.Name(string(tmp))
}

func (t *tokenizer) readKeyword() token {
	tmp := t.tmp[:0]
	for {
		c := t.readByte()
		if isDelim(c) || isSpace(c) {
			t.unreadByte()
			break
		}
		tmp = append(tmp, c)
	}
	t.tmp = tmp
	s := string(tmp)
	switch {
	case s == "true":
		return true
	case s == "false":
		return false
	case isInteger(s):
		x, err := strconv.ParseInt(s, 10, 64)
		if err == nil {
			return x
		}
	case isReal(s):
		x, err := strconv.ParseFloat(s, 64)
		if err == nil {
			return x
		}
	}
	return keyword(s)
}

func isInteger(s string) bool {
	if len(s) > 0 && (s[0] == '+' || s[0] == '-') {
		s = s[1:]
	}
	if len(s) == 0 {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func isReal(s string) bool {
	if len(s) > 0 && (s[0] == '+' || s[0] == '-') {
		s = s[1:]
	}
	if len(s) == 0 {
		return false
	}
	ndot := 0
	for _, c := range s {
		if c == '.' {
			ndot++
			continue
		}
		if c < '0' || c > '9' {
			return false
		}
	}
	return ndot == 1
}

func isSpace(b byte) bool {
	switch b {
	case '\x00', '\t', '\n', '\f', '\r', ' ':
		return true
	}
	return false
}

func isDelim(b byte) bool {
	switch b {
	case '<', '>', '(', ')', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

// readIndirectHeader reads the "N G obj" triple that opens every
// top-level indirect object, validating the generation range.
func (t *tokenizer) readIndirectHeader() (uint32, uint16, error) {
	n1, err := t.readToken()
	if err != nil {
		return 0, 0, err
	}
	num, ok := n1.(int64)
	if !ok || num < 0 || int64(uint32(num)) != num {
		return 0, 0, fmt.Errorf("expected object number, got %#v", n1)
	}
	n2, err := t.readToken()
	if err != nil {
		return 0, 0, err
	}
	gen, ok := n2.(int64)
	if !ok || gen < 0 || gen > 65535 {
		return 0, 0, fmt.Errorf("expected generation number, got %#v", n2)
	}
	kw, err := t.readToken()
	if err != nil {
		return 0, 0, err
	}
	if kw != keyword("obj") {
		return 0, 0, fmt.Errorf("expected 'obj' keyword, got %#v", kw)
	}
	return uint32(num), uint16(gen), nil
}

// readValue reads one PDF value: null, bool, integer, real, name,
// string, array, dict, or (if the next two tokens are an integer pair
// followed by "R") an indirect reference. It never recognizes an
// "N G obj" header — that is only legal at the top of an indirect
// object and is handled by readIndirectHeader.
func (t *tokenizer) readValue() (types.Object, error) {
	tok, err := t.readToken()
	if err != nil {
		return nil, err
	}
	if kw, ok := tok.(keyword); ok {
		switch kw {
		case "null":
			return nil, nil
		case "<<":
			return t.readDict()
		case "[":
			return t.readArray()
		}
		return nil, fmt.Errorf("unexpected keyword %q parsing value", kw)
	}

	if n1, ok := tok.(int64); ok && int64(uint32(n1)) == n1 {
		tok2, err2 := t.readToken()
		if err2 == nil {
			if n2, ok := tok2.(int64); ok && int64(uint16(n2)) == n2 {
				tok3, err3 := t.readToken()
				if err3 == nil && tok3 == keyword("R") {
					return types.Objptr{ID: uint32(n1), Gen: uint16(n2)}, nil
				}
				if err3 == nil {
					t.unreadToken(tok3)
				}
			}
			t.unreadToken(tok2)
		}
	}
	return tok, nil
}

func (t *tokenizer) readArray() (types.Object, error) {
	var x types.Array
	for {
		tok, err := t.readToken()
		if err != nil {
			return nil, fmt.Errorf("array ended unexpectedly: %w", err)
		}
		if tok == nil || tok == keyword("]") {
			break
		}
		t.unreadToken(tok)
		v, err := t.readValue()
		if err != nil {
			return nil, err
		}
		x = append(x, v)
	}
	return x, nil
}

func (t *tokenizer) readDict() (types.Object, error) {
	x := make(types.Dict)
	for {
		tok, err := t.readToken()
		if err != nil {
			return nil, fmt.Errorf("dict ended unexpectedly: %w", err)
		}
		if tok == nil || tok == keyword(">>") {
			break
		}
		name, ok := tok.(types.Name)
		if !ok {
			return nil, fmt.Errorf("unexpected non-name key %#v parsing dict", tok)
		}
		v, err := t.readValue()
		if err != nil {
			return nil, err
		}
		x[name] = v
	}
	return x, nil
}
