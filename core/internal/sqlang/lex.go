package sqlang

import (
	"bytes"
	"errors"
	"fmt"
	"unicode"
	"unicode/utf8"
)

var (
	selectToken   = []byte("select")
	distinctToken = []byte("distinct")
	fromToken     = []byte("from")
	whereToken    = []byte("where")
	groupToken    = []byte("group")
	orderToken    = []byte("order")
	byToken       = []byte("by")
	limitToken    = []byte("limit")
	andToken      = []byte("and")
	ascToken      = []byte("asc")
	descToken     = []byte("desc")
	asToken       = []byte("as")

	signsToken = []byte(`+-`)
	digitToken = []byte(`0123456789`)
	dotToken   = []byte(`.`)
)

// Pos represents a byte position in the original input text.
type Pos int

// item represents a token returned from the scanner.
type item struct {
	_type MType  // The type of this item.
	pos   Pos    // The starting position, in bytes, of this item in the input string.
	val   []byte // The value of this item.
	line  int16  // The line number at the start of this item.
}

// MType identifies the type of lex items.
type MType int8

const (
	itemError      MType = iota // error
	itemEOF                     // end of input
	itemName                    // bare identifier or keyword
	itemQuotedName              // "quoted" identifier
	itemStringVal               // 'string'
	itemNumberVal               // number
	itemStar                    // *
	itemComma                   // ,
	itemParenOpen               // (
	itemParenClose              // )
	itemSemi                    // ;
	itemOp                      // comparison operator
)

const eof = -1

// stateFn represents the state of the scanner as a function that returns the next state.
type stateFn func(*lexer) stateFn

// lexer holds the state of the scanner.
type lexer struct {
	input  []byte // the string being scanned
	pos    Pos    // current position in the input
	start  Pos    // start position of this item
	width  Pos    // width of last rune read from input
	items  []item // array of scanned items
	itemsA [50]item
	line   int16 // 1+number of newlines seen
	err    error
}

// next returns the next rune in the input.
func (l *lexer) next() rune {
	if int(l.pos) >= len(l.input) {
		l.width = 0
		return eof
	}
	r, w := utf8.DecodeRune(l.input[l.pos:])
	l.width = Pos(w)
	l.pos += l.width
	if r == '\n' {
		l.line++
	}
	return r
}

// peek returns but does not consume the next rune in the input.
func (l *lexer) peek() rune {
	r := l.next()
	l.backup()
	return r
}

// backup steps back one rune. Can only be called once per call of next.
func (l *lexer) backup() {
	if l.pos != 0 {
		l.pos -= l.width
		// Correct newline count.
		if l.width == 1 && l.input[l.pos] == '\n' {
			l.line--
		}
	}
}

func (l *lexer) current() []byte {
	return l.input[l.start:l.pos]
}

// emit passes an item back to the client.
func (l *lexer) emit(t MType) {
	l.items = append(l.items, item{t, l.start, l.current(), l.line})
	if t == itemStringVal {
		for i := l.start; i < l.pos; i++ {
			if l.input[i] == '\n' {
				l.line++
			}
		}
	}
	l.start = l.pos
}

// ignore skips over the pending input before this point.
func (l *lexer) ignore() {
	l.start = l.pos
}

// accept consumes the next rune if it's from the valid set.
func (l *lexer) accept(valid []byte) (rune, bool) {
	r := l.next()
	if r != eof && bytes.ContainsRune(valid, r) {
		return r, true
	}
	l.backup()
	return r, false
}

// acceptRun consumes a run of runes from the valid set.
func (l *lexer) acceptRun(valid []byte) {
	for bytes.ContainsRune(valid, l.next()) {
	}
	l.backup()
}

// acceptComment consumes runes till the end of the line.
func (l *lexer) acceptComment() {
	for r := l.next(); !isEndOfLine(r); r = l.next() {
	}
}

// errorf returns an error token and terminates the scan by passing
// back a nil pointer that will be the next state.
func (l *lexer) errorf(format string, args ...interface{}) stateFn {
	l.err = fmt.Errorf(format, args...)
	l.items = append(l.items, item{itemError, l.start, l.input[l.start:l.pos], l.line})
	return nil
}

// lex creates a new scanner for the input string.
func lex(input []byte) (lexer, error) {
	var l lexer

	if len(input) == 0 {
		return l, errors.New("empty query")
	}

	l.input = input
	l.items = l.itemsA[:0]
	l.line = 1

	l.run()

	if last := l.items[len(l.items)-1]; last._type == itemError {
		return l, l.err
	}
	return l, nil
}

// run runs the state machine for the lexer.
func (l *lexer) run() {
	for state := lexRoot; state != nil; {
		state = state(l)
	}
}

func lexRoot(l *lexer) stateFn {
	r := l.next()

	switch {
	case r == eof:
		l.emit(itemEOF)
		return nil
	case isEndOfLine(r):
		l.ignore()
	case isSpace(r):
		l.ignore()
	case r == '-' && l.peek() == '-':
		l.acceptComment()
		l.ignore()
	case r == ',':
		l.emit(itemComma)
	case r == '(':
		l.emit(itemParenOpen)
	case r == ')':
		l.emit(itemParenClose)
	case r == ';':
		l.emit(itemSemi)
	case r == '*':
		l.emit(itemStar)
	case r == '=':
		l.emit(itemOp)
	case r == '!':
		if l.next() != '=' {
			return l.errorf("expecting '=' after '!'")
		}
		l.emit(itemOp)
	case r == '<':
		if n := l.peek(); n == '=' || n == '>' {
			l.next()
		}
		l.emit(itemOp)
	case r == '>':
		if l.peek() == '=' {
			l.next()
		}
		l.emit(itemOp)
	case r == '"':
		l.backup()
		return lexQuotedName
	case r == '\'':
		l.backup()
		return lexString
	case r == '+' || r == '-' || ('0' <= r && r <= '9'):
		l.backup()
		return lexNumber
	case isAlphaNumeric(r):
		l.backup()
		return lexName
	default:
		return l.errorf("unrecognized character in statement: %#U", r)
	}
	return lexRoot
}

// lexName scans a bare identifier or keyword.
func lexName(l *lexer) stateFn {
	for {
		r := l.next()
		if r == eof {
			l.emit(itemName)
			l.emit(itemEOF)
			return nil
		}
		if !isAlphaNumeric(r) {
			l.backup()
			l.emit(itemName)
			break
		}
	}
	return lexRoot
}

// lexQuotedName scans a double-quoted identifier.
func lexQuotedName(l *lexer) stateFn {
	l.next() // opening quote
	l.ignore()

	for {
		r := l.next()
		if r == eof {
			return l.errorf("unterminated quoted identifier")
		}
		if r == '"' {
			l.backup()
			l.emit(itemQuotedName)
			l.next()
			l.ignore()
			break
		}
	}
	return lexRoot
}

// lexString scans a single-quoted string with backslash escapes.
func lexString(l *lexer) stateFn {
	l.next() // opening quote
	l.ignore()

	var escaped bool
	for {
		r := l.next()
		if r == eof {
			return l.errorf("unterminated string")
		}
		if escaped {
			escaped = false
			continue
		}
		if r == '\\' {
			escaped = true
			continue
		}
		if r == '\'' {
			l.backup()
			l.emit(itemStringVal)
			l.next()
			l.ignore()
			break
		}
	}
	return lexRoot
}

// lexNumber scans a number: decimal and float. This isn't a perfect number
// scanner but when it's wrong the input is invalid and the parser
// (via strconv) should notice.
func lexNumber(l *lexer) stateFn {
	if !l.scanNumber() {
		return l.errorf("bad number syntax: %q", l.input[l.start:l.pos])
	}
	l.emit(itemNumberVal)
	return lexRoot
}

func (l *lexer) scanNumber() bool {
	// Optional leading sign.
	l.accept(signsToken)
	l.acceptRun(digitToken)
	if _, ok := l.accept(dotToken); ok {
		l.acceptRun(digitToken)
	}
	// Next thing mustn't be alphanumeric.
	if isAlphaNumeric(l.peek()) {
		l.next()
		return false
	}
	return true
}

// isSpace reports whether r is a space character.
func isSpace(r rune) bool {
	return r == ' ' || r == '\t'
}

// isEndOfLine reports whether r is an end-of-line character.
func isEndOfLine(r rune) bool {
	return r == '\r' || r == '\n' || r == eof
}

// isAlphaNumeric reports whether r is an alphabetic, digit, or underscore.
func isAlphaNumeric(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func equals(b, val []byte) bool {
	return bytes.EqualFold(b, val)
}

func (i item) String() string {
	switch i._type {
	case itemEOF:
		return "EOF"
	case itemError:
		return "error"
	case itemName:
		return "name"
	case itemQuotedName:
		return "quoted name"
	case itemStringVal:
		return "string"
	case itemNumberVal:
		return "number"
	case itemStar:
		return "*"
	case itemComma:
		return ","
	case itemParenOpen:
		return "("
	case itemParenClose:
		return ")"
	case itemSemi:
		return ";"
	case itemOp:
		return "operator"
	}
	return "unknown"
}

/*

Copyright (c) 2009 The Go Authors. All rights reserved.

Redistribution and use in source and binary forms, with or without
modification, are permitted provided that the following conditions are
met:

    * Redistributions of source code must retain the above copyright
notice, this list of conditions and the following disclaimer.
    * Redistributions in binary form must reproduce the above
copyright notice, this list of conditions and the following disclaimer
in the documentation and/or other materials provided with the
distribution.
    * Neither the name of Google Inc. nor the names of its
contributors may be used to endorse or promote products derived from
this software without specific prior written permission.

THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS
"AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT
LIMITED TO, THE IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR
A PARTICULAR PURPOSE ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT
OWNER OR CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT
LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR SERVICES; LOSS OF USE,
DATA, OR PROFITS; OR BUSINESS INTERRUPTION) HOWEVER CAUSED AND ON ANY
THEORY OF LIABILITY, WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT
(INCLUDING NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH DAMAGE.
*/
