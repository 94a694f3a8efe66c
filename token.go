// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xtract

import (
	"io"
	"strconv"
)

// ObjectId identifies an indirect object by its object and generation
// numbers. It is comparable and usable as a map key.
type ObjectId struct {
	Num uint64
	Gen uint64
}

// Less gives ObjectId a total order by (Num, Gen), as required by the
// data model.
func (id ObjectId) Less(other ObjectId) bool {
	if id.Num != other.Num {
		return id.Num < other.Num
	}
	return id.Gen < other.Gen
}

// TokenKind enumerates the PdfToken variants produced by the Tokenizer.
type TokenKind int

const (
	TokComment TokenKind = iota
	TokObjectHeader
	TokObjectEnd
	TokObjectReference
	TokDictionaryStart
	TokDictionaryEnd
	TokName
	TokArrayStart
	TokArrayEnd
	TokString
	TokHexString
	TokBoolean
	TokNumber
	TokNull
	TokStartXRef
	TokXRefSectionBegin
	TokXRefSubSectionHeader
	TokXRefEntry
	TokStreamBegin
	TokStreamEnd
	TokTrailerBegin
	TokDocumentEnd
)

// XRefHeader is a classical xref subsection header: "first count".
type XRefHeader struct {
	FirstObject uint64
	Count       uint64
}

// XRefEntryClassical is one 20-byte classical xref table record.
type XRefEntryClassical struct {
	Offset uint64
	Gen    uint64
	Free   bool
}

// PdfToken is the tagged union of everything the Tokenizer can emit.
// Go has no sum types, so unused fields for a given Kind are zero.
type PdfToken struct {
	Kind       TokenKind
	Text       string // Comment text, Name
	ObjID      ObjectId
	Bytes      []byte // String, HexString
	Bool       bool
	Num        float64
	U64        uint64 // StartXRef offset
	XRefHeader XRefHeader
	XRefEntry  XRefEntryClassical
}

type tokenizerState int

const (
	stStart tokenizerState = iota
	stObject
	stDictionaryKey
	stDictionaryValue
	stListValue
	stStream
	stStreamEnd
	stXRefSection
	stXRefEntry
	stTrailer
	stDocumentEnd
)

// Tokenizer is a pushdown lexer over a ByteCursor. It never buffers more
// than the token currently being built; state that spans tokens lives on
// the explicit stack so peek/rewind can snapshot and restore it cheaply.
type Tokenizer struct {
	cur   *ByteCursor
	stack []tokenizerState
}

// NewTokenizer creates a Tokenizer positioned at cur's current offset,
// starting in the Start state.
func NewTokenizer(cur *ByteCursor) *Tokenizer {
	return &Tokenizer{cur: cur, stack: []tokenizerState{stStart}}
}

// Position reports the cursor's current byte offset.
func (t *Tokenizer) Position() int64 {
	return t.cur.Position()
}

func (t *Tokenizer) state() tokenizerState {
	return t.stack[len(t.stack)-1]
}

func (t *Tokenizer) pushState(s tokenizerState) {
	t.stack = append(t.stack, s)
}

func (t *Tokenizer) popState() tokenizerState {
	n := len(t.stack)
	s := t.stack[n-1]
	t.stack = t.stack[:n-1]
	return s
}

func isPDFWhitespace(b byte) bool {
	switch b {
	case 0x00, 0x09, 0x0A, 0x0C, 0x0D, 0x20:
		return true
	}
	return false
}

func isDelimiter(b byte) bool {
	switch b {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

// nextByte consumes and returns the next byte.
func (t *Tokenizer) nextByte() (byte, error) {
	return t.cur.ReadByte()
}

func (t *Tokenizer) unreadByte() {
	t.cur.SeekRel(-1)
}

// readUntil accumulates bytes until one matches `until`, optionally
// seeking back over the terminator so the caller sees it again.
func (t *Tokenizer) readUntil(until func(byte) bool, seekBack bool) ([]byte, error) {
	var out []byte
	for {
		b, err := t.nextByte()
		if err != nil {
			if err == io.EOF {
				break
			}
			return out, err
		}
		if until(b) {
			if seekBack {
				t.unreadByte()
			}
			break
		}
		out = append(out, b)
	}
	return out, nil
}

func (t *Tokenizer) consumeWhitespace() {
	for {
		b, err := t.nextByte()
		if err != nil {
			return
		}
		if !isPDFWhitespace(b) {
			t.unreadByte()
			return
		}
	}
}

func isSpaceOrEOL(b byte) bool { return b == ' ' || b == '\n' || b == '\r' }

func isNumberTerminator(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '>', ']', '[', '/', '(', '<':
		return true
	}
	return false
}

// readNumber consumes leading whitespace then a run of digits/sign/dot
// terminated by whitespace or a delimiter, and parses it as a float.
func (t *Tokenizer) readNumber() (float64, error) {
	t.consumeWhitespace()
	raw, err := t.readUntil(isNumberTerminator, true)
	if err != nil {
		return 0, err
	}
	v, perr := strconv.ParseFloat(string(raw), 64)
	if perr != nil {
		return 0, perr
	}
	return v, nil
}

func (t *Tokenizer) readUnsigned() (uint64, error) {
	t.consumeWhitespace()
	raw, err := t.readUntil(isSpaceOrEOL, true)
	if err != nil {
		return 0, err
	}
	return strconv.ParseUint(string(raw), 10, 64)
}

func (t *Tokenizer) readKeyword() (string, error) {
	raw, err := t.readUntil(isSpaceOrEOL, false)
	return string(raw), err
}

// readComment consumes bytes through end of line (not included).
func (t *Tokenizer) readComment() string {
	raw, _ := t.readUntil(func(b byte) bool { return b == '\n' || b == '\r' }, false)
	return string(raw)
}

// readObjectHeader parses "N G obj" assuming the first digit has already
// been un-consumed (cursor sits right before it).
func (t *Tokenizer) readObjectHeader() (ObjectId, error) {
	num, err := t.readUnsigned()
	if err != nil {
		return ObjectId{}, err
	}
	gen, err := t.readUnsigned()
	if err != nil {
		return ObjectId{}, err
	}
	t.consumeWhitespace()
	kw, err := t.readKeyword()
	if err != nil {
		return ObjectId{}, err
	}
	if kw != "obj" {
		return ObjectId{}, newErr(ErrUnexpectedToken, t.Position(), "expected 'obj', found %q", kw)
	}
	return ObjectId{Num: num, Gen: gen}, nil
}

// readObjectReference speculatively parses "N G R". Callers must have
// saved (offset, stack depth) before calling and roll back on error.
func (t *Tokenizer) readObjectReference() (ObjectId, error) {
	num, err := t.readUnsigned()
	if err != nil {
		return ObjectId{}, err
	}
	gen, err := t.readUnsigned()
	if err != nil {
		return ObjectId{}, err
	}
	t.consumeWhitespace()
	b, err := t.nextByte()
	if err != nil {
		return ObjectId{}, err
	}
	if b != 'R' {
		return ObjectId{}, newErr(ErrBadNumber, t.Position(), "expected 'R', found %q", b)
	}
	return ObjectId{Num: num, Gen: gen}, nil
}

// readNameBody reads a /Name body (the '/' has already been consumed),
// terminated by whitespace or one of / < [ ( > ], per spec §4.1.
func (t *Tokenizer) readNameBody() (string, error) {
	raw, err := t.readUntil(func(b byte) bool {
		if isPDFWhitespace(b) {
			return true
		}
		switch b {
		case '/', '<', '[', '(', '>', ']':
			return true
		}
		return false
	}, true)
	return string(raw), err
}

// readLiteralString reads a balanced-parens literal string; the opening
// '(' has already been consumed.
func (t *Tokenizer) readLiteralString() ([]byte, error) {
	depth := 1
	var out []byte
	for {
		b, err := t.nextByte()
		if err != nil {
			return nil, wrapErr(ErrUnexpectedByte, t.Position(), err, "unterminated literal string")
		}
		switch b {
		case '(':
			depth++
			out = append(out, b)
		case ')':
			depth--
			if depth == 0 {
				return out, nil
			}
			out = append(out, b)
		case '\\':
			esc, err := t.nextByte()
			if err != nil {
				return nil, wrapErr(ErrUnexpectedByte, t.Position(), err, "unterminated escape in literal string")
			}
			switch esc {
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case 'b':
				out = append(out, 0x08)
			case 'f':
				out = append(out, 0x0C)
			case '\\', '(', ')':
				out = append(out, esc)
			case '\n':
				// line continuation: backslash-EOL produces no byte
			case '\r':
				// CR or CRLF line continuation
				if nb, perr := t.cur.PeekByte(); perr == nil && nb == '\n' {
					t.nextByte()
				}
			case '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
				// Octal escape: read greedily up to 3 digits total
				// (the original reads exactly 3, which over-reads past
				// short escapes like \0; spec §9 calls this out).
				digits := []byte{esc}
				for len(digits) < 3 {
					nb, perr := t.cur.PeekByte()
					if perr != nil || nb < '0' || nb > '7' {
						break
					}
					t.nextByte()
					digits = append(digits, nb)
				}
				code, perr := strconv.ParseUint(string(digits), 8, 16)
				if perr != nil {
					return nil, wrapErr(ErrBadEscape, t.Position(), perr, "bad octal escape %q", digits)
				}
				out = append(out, byte(code))
			default:
				return nil, newErr(ErrBadEscape, t.Position(), "unhandled escape character %q", esc)
			}
		default:
			out = append(out, b)
		}
	}
}

// hexStringToBytes converts a run of hex digits to bytes, padding an odd
// trailing digit with '0' per spec §9.3.4.3.
func hexStringToBytes(digits []byte) ([]byte, error) {
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	out := make([]byte, 0, len(digits)/2)
	for i := 0; i < len(digits); i += 2 {
		v, err := strconv.ParseUint(string(digits[i:i+2]), 16, 8)
		if err != nil {
			return nil, err
		}
		out = append(out, byte(v))
	}
	return out, nil
}

func (t *Tokenizer) readHexString() ([]byte, error) {
	raw, err := t.readUntil(func(b byte) bool { return b == '>' }, false)
	if err != nil {
		return nil, err
	}
	digits := make([]byte, 0, len(raw))
	for _, b := range raw {
		if isPDFWhitespace(b) {
			continue
		}
		digits = append(digits, b)
	}
	return hexStringToBytes(digits)
}

// Next produces the next token, advancing the tokenizer's state.
func (t *Tokenizer) Next() (PdfToken, *PDFError) {
	for {
		switch t.state() {
		case stStart:
			return t.nextStart()
		case stObject:
			return t.nextObject()
		case stDictionaryKey:
			return t.nextDictionaryKey()
		case stDictionaryValue:
			return t.nextValue(stDictionaryValue, true)
		case stListValue:
			return t.nextValue(stListValue, false)
		case stStream:
			return PdfToken{}, newErr(ErrStateViolation, t.Position(), "Next called while inside a stream body; use ReadStreamBytes")
		case stStreamEnd:
			return t.nextStreamEnd()
		case stXRefSection:
			return t.nextXRefSection()
		case stXRefEntry:
			return t.nextXRefEntry()
		case stTrailer:
			return t.nextTrailer()
		case stDocumentEnd:
			return PdfToken{}, newErr(ErrStateViolation, t.Position(), "end of document reached")
		default:
			return PdfToken{}, newErr(ErrStateViolation, t.Position(), "unknown tokenizer state")
		}
	}
}

func (t *Tokenizer) nextStart() (PdfToken, *PDFError) {
	for {
		b, err := t.nextByte()
		if err != nil {
			return PdfToken{}, newErr(ErrUnexpectedByte, t.Position(), "unexpected end of input in Start state")
		}
		switch {
		case isPDFWhitespace(b):
			continue
		case b == '%':
			text := t.readComment()
			if text == "%EOF" {
				t.popState()
				t.pushState(stDocumentEnd)
				return PdfToken{Kind: TokDocumentEnd}, nil
			}
			return PdfToken{Kind: TokComment, Text: text}, nil
		case b >= '1' && b <= '9':
			t.unreadByte()
			t.popState()
			t.pushState(stObject)
			id, perr := t.readObjectHeader()
			if perr != nil {
				return PdfToken{}, wrapErr(ErrUnexpectedToken, t.Position(), perr, "reading object header")
			}
			return PdfToken{Kind: TokObjectHeader, ObjID: id}, nil
		case b == 's':
			t.unreadByte()
			kw, kerr := t.readKeyword()
			if kerr != nil {
				return PdfToken{}, wrapErr(ErrUnexpectedByte, t.Position(), kerr, "reading keyword")
			}
			if kw != "startxref" {
				return PdfToken{}, newErr(ErrUnexpectedToken, t.Position(), "unexpected keyword %q at top level", kw)
			}
			off, nerr := t.readUnsigned()
			if nerr != nil {
				return PdfToken{}, wrapErr(ErrBadNumber, t.Position(), nerr, "reading startxref offset")
			}
			return PdfToken{Kind: TokStartXRef, U64: off}, nil
		case b == 'x':
			t.unreadByte()
			kw, kerr := t.readKeyword()
			if kerr != nil {
				return PdfToken{}, wrapErr(ErrUnexpectedByte, t.Position(), kerr, "reading keyword")
			}
			if kw != "xref" {
				return PdfToken{}, newErr(ErrUnexpectedToken, t.Position(), "unexpected keyword %q at top level", kw)
			}
			t.pushState(stXRefSection)
			return PdfToken{Kind: TokXRefSectionBegin}, nil
		case b == 't':
			t.unreadByte()
			kw, kerr := t.readKeyword()
			if kerr != nil {
				return PdfToken{}, wrapErr(ErrUnexpectedByte, t.Position(), kerr, "reading keyword")
			}
			if kw != "trailer" {
				return PdfToken{}, newErr(ErrUnexpectedToken, t.Position(), "unexpected keyword %q at top level", kw)
			}
			t.pushState(stTrailer)
			return PdfToken{Kind: TokTrailerBegin}, nil
		default:
			return PdfToken{}, newErr(ErrUnexpectedByte, t.Position(), "unexpected byte %q at top level", b)
		}
	}
}

func (t *Tokenizer) nextObject() (PdfToken, *PDFError) {
	for {
		b, err := t.nextByte()
		if err != nil {
			return PdfToken{}, newErr(ErrUnexpectedByte, t.Position(), "unexpected end of input inside object")
		}
		switch {
		case isPDFWhitespace(b):
			continue
		case b == '<':
			nb, nerr := t.peekOrErr()
			if nerr != nil {
				return PdfToken{}, nerr
			}
			if nb == '<' {
				t.nextByte()
				t.pushState(stDictionaryKey)
				return PdfToken{Kind: TokDictionaryStart}, nil
			}
			s, serr := t.readHexString()
			if serr != nil {
				return PdfToken{}, wrapErr(ErrBadEscape, t.Position(), serr, "reading hex string")
			}
			return PdfToken{Kind: TokHexString, Bytes: s}, nil
		case b == '[':
			t.pushState(stListValue)
			return PdfToken{Kind: TokArrayStart}, nil
		case b == '(':
			t.unreadByte()
			t.nextByte()
			s, serr := t.readLiteralString()
			if serr != nil {
				return PdfToken{}, serr.(*PDFError)
			}
			return PdfToken{Kind: TokString, Bytes: s}, nil
		case b == '/':
			name, nerr := t.readNameBody()
			if nerr != nil {
				return PdfToken{}, wrapErr(ErrUnexpectedByte, t.Position(), nerr, "reading name")
			}
			return PdfToken{Kind: TokName, Text: name}, nil
		case (b >= '0' && b <= '9') || b == '-' || b == '+' || b == '.':
			t.unreadByte()
			v, nerr := t.readNumber()
			if nerr != nil {
				return PdfToken{}, wrapErr(ErrBadNumber, t.Position(), nerr, "reading bare object value")
			}
			return PdfToken{Kind: TokNumber, Num: v}, nil
		case b == 't' || b == 'f':
			t.unreadByte()
			kw, kerr := t.readKeyword()
			if kerr != nil {
				return PdfToken{}, wrapErr(ErrUnexpectedByte, t.Position(), kerr, "reading boolean")
			}
			switch kw {
			case "true":
				return PdfToken{Kind: TokBoolean, Bool: true}, nil
			case "false":
				return PdfToken{Kind: TokBoolean, Bool: false}, nil
			case "endobj":
				t.popState()
				t.pushState(stStart)
				return PdfToken{Kind: TokObjectEnd}, nil
			}
			return PdfToken{}, newErr(ErrUnexpectedToken, t.Position(), "unexpected keyword %q in object", kw)
		case b == 'n':
			t.unreadByte()
			kw, kerr := t.readKeyword()
			if kerr != nil {
				return PdfToken{}, wrapErr(ErrUnexpectedByte, t.Position(), kerr, "reading null")
			}
			if kw != "null" {
				return PdfToken{}, newErr(ErrUnexpectedToken, t.Position(), "unexpected keyword %q in object", kw)
			}
			return PdfToken{Kind: TokNull}, nil
		case b == 's':
			t.unreadByte()
			kw, kerr := t.readKeyword()
			if kerr != nil {
				return PdfToken{}, wrapErr(ErrUnexpectedByte, t.Position(), kerr, "reading stream keyword")
			}
			if kw != "stream" {
				return PdfToken{}, newErr(ErrUnexpectedToken, t.Position(), "unexpected keyword %q in object", kw)
			}
			t.consumeStreamEOL()
			t.pushState(stStream)
			return PdfToken{Kind: TokStreamBegin}, nil
		case b == 'e':
			t.unreadByte()
			kw, kerr := t.readKeyword()
			if kerr != nil {
				return PdfToken{}, wrapErr(ErrUnexpectedByte, t.Position(), kerr, "reading endobj")
			}
			if kw != "endobj" {
				return PdfToken{}, newErr(ErrUnexpectedToken, t.Position(), "unexpected keyword %q in object", kw)
			}
			t.popState()
			t.pushState(stStart)
			return PdfToken{Kind: TokObjectEnd}, nil
		default:
			return PdfToken{}, newErr(ErrUnexpectedByte, t.Position(), "unexpected byte %q while looking for object value", b)
		}
	}
}

// consumeStreamEOL eats the single line terminator after the "stream"
// keyword: CR LF, LF, or bare CR.
func (t *Tokenizer) consumeStreamEOL() {
	b, err := t.nextByte()
	if err != nil {
		return
	}
	if b == '\r' {
		if nb, perr := t.cur.PeekByte(); perr == nil && nb == '\n' {
			t.nextByte()
		}
		return
	}
	if b == '\n' {
		return
	}
	// No EOL present (malformed); push the byte back for the stream body.
	t.unreadByte()
}

func (t *Tokenizer) nextDictionaryKey() (PdfToken, *PDFError) {
	for {
		b, err := t.nextByte()
		if err != nil {
			return PdfToken{}, newErr(ErrUnexpectedByte, t.Position(), "unexpected end of input in dictionary")
		}
		switch {
		case isPDFWhitespace(b):
			continue
		case b == '/':
			name, nerr := t.readNameBody()
			if nerr != nil {
				return PdfToken{}, wrapErr(ErrUnexpectedByte, t.Position(), nerr, "reading dictionary key")
			}
			t.pushState(stDictionaryValue)
			return PdfToken{Kind: TokName, Text: name}, nil
		case b == '>':
			nb, nerr := t.nextByte()
			if nerr != nil || nb != '>' {
				return PdfToken{}, newErr(ErrUnexpectedByte, t.Position(), "expected '>>' to close dictionary")
			}
			t.popState()
			if len(t.stack) > 0 && t.state() == stDictionaryValue {
				t.popState()
			}
			return PdfToken{Kind: TokDictionaryEnd}, nil
		default:
			return PdfToken{}, newErr(ErrUnexpectedByte, t.Position(), "unexpected byte %q while looking for dictionary key", b)
		}
	}
}

// nextValue handles DictionaryValue and ListValue states, which are
// identical except ListValue doesn't pop on completing a scalar and
// ']' ends the array rather than being disallowed.
func (t *Tokenizer) nextValue(expect tokenizerState, isDictValue bool) (PdfToken, *PDFError) {
	for {
		b, err := t.nextByte()
		if err != nil {
			return PdfToken{}, newErr(ErrUnexpectedByte, t.Position(), "unexpected end of input reading value")
		}
		switch {
		case isPDFWhitespace(b):
			continue
		case b == ']' && !isDictValue:
			t.popState()
			return PdfToken{Kind: TokArrayEnd}, nil
		case b == '[':
			if isDictValue {
				t.popState()
			}
			t.pushState(stListValue)
			return PdfToken{Kind: TokArrayStart}, nil
		case b == '<':
			nb, nerr := t.peekOrErr()
			if nerr != nil {
				return PdfToken{}, nerr
			}
			if nb == '<' {
				t.nextByte()
				t.pushState(stDictionaryKey)
				return PdfToken{Kind: TokDictionaryStart}, nil
			}
			if isDictValue {
				t.popState()
			}
			s, serr := t.readHexString()
			if serr != nil {
				return PdfToken{}, wrapErr(ErrBadEscape, t.Position(), serr, "reading hex string")
			}
			return PdfToken{Kind: TokHexString, Bytes: s}, nil
		case b == '/':
			name, nerr := t.readNameBody()
			if nerr != nil {
				return PdfToken{}, wrapErr(ErrUnexpectedByte, t.Position(), nerr, "reading name")
			}
			if isDictValue {
				t.popState()
			}
			return PdfToken{Kind: TokName, Text: name}, nil
		case b == '(':
			t.unreadByte()
			t.nextByte()
			s, serr := t.readLiteralString()
			if serr != nil {
				return PdfToken{}, serr.(*PDFError)
			}
			if isDictValue {
				t.popState()
			}
			return PdfToken{Kind: TokString, Bytes: s}, nil
		case b == 't' || b == 'f':
			t.unreadByte()
			kw, kerr := t.readKeyword()
			if kerr != nil {
				return PdfToken{}, wrapErr(ErrUnexpectedByte, t.Position(), kerr, "reading boolean")
			}
			var bv bool
			switch kw {
			case "true":
				bv = true
			case "false":
				bv = false
			default:
				return PdfToken{}, newErr(ErrUnexpectedToken, t.Position(), "unexpected value %q looking for boolean", kw)
			}
			if isDictValue {
				t.popState()
			}
			return PdfToken{Kind: TokBoolean, Bool: bv}, nil
		case b == 'n':
			t.unreadByte()
			kw, kerr := t.readKeyword()
			if kerr != nil {
				return PdfToken{}, wrapErr(ErrUnexpectedByte, t.Position(), kerr, "reading null")
			}
			if kw != "null" {
				return PdfToken{}, newErr(ErrUnexpectedToken, t.Position(), "unexpected value %q looking for null", kw)
			}
			if isDictValue {
				t.popState()
			}
			return PdfToken{Kind: TokNull}, nil
		case (b >= '0' && b <= '9') || b == '-':
			t.unreadByte()
			offset := t.cur.Position()
			id, rerr := t.readObjectReference()
			if rerr != nil {
				t.cur.Seek(offset)
				v, nerr := t.readNumber()
				if nerr != nil {
					return PdfToken{}, wrapErr(ErrBadNumber, t.Position(), nerr, "reading number")
				}
				if isDictValue {
					t.popState()
				}
				return PdfToken{Kind: TokNumber, Num: v}, nil
			}
			if isDictValue {
				t.popState()
			}
			return PdfToken{Kind: TokObjectReference, ObjID: id}, nil
		default:
			return PdfToken{}, newErr(ErrUnexpectedByte, t.Position(), "unexpected byte %q while looking for value", b)
		}
	}
}

func (t *Tokenizer) peekOrErr() (byte, *PDFError) {
	b, err := t.cur.PeekByte()
	if err != nil {
		return 0, newErr(ErrUnexpectedByte, t.Position(), "unexpected end of input")
	}
	return b, nil
}

func (t *Tokenizer) nextStreamEnd() (PdfToken, *PDFError) {
	for {
		b, err := t.nextByte()
		if err != nil {
			return PdfToken{}, newErr(ErrUnexpectedByte, t.Position(), "unexpected end of input after stream body")
		}
		if isPDFWhitespace(b) {
			continue
		}
		if b != 'e' {
			return PdfToken{}, newErr(ErrUnexpectedByte, t.Position(), "expected 'endstream'")
		}
		t.unreadByte()
		kw, kerr := t.readKeyword()
		if kerr != nil {
			return PdfToken{}, wrapErr(ErrUnexpectedByte, t.Position(), kerr, "reading endstream")
		}
		if kw != "endstream" {
			return PdfToken{}, newErr(ErrUnexpectedToken, t.Position(), "unexpected keyword %q, expected endstream", kw)
		}
		t.popState()
		return PdfToken{Kind: TokStreamEnd}, nil
	}
}

func (t *Tokenizer) nextXRefSection() (PdfToken, *PDFError) {
	t.consumeWhitespace()
	b, perr := t.peekOrErr()
	if perr != nil {
		return PdfToken{}, perr
	}
	if b == 't' {
		kw, kerr := t.readKeyword()
		if kerr != nil {
			return PdfToken{}, wrapErr(ErrUnexpectedByte, t.Position(), kerr, "reading trailer keyword")
		}
		if kw != "trailer" {
			return PdfToken{}, newErr(ErrUnexpectedToken, t.Position(), "unexpected keyword %q after xref table", kw)
		}
		t.popState()
		t.pushState(stTrailer)
		return PdfToken{Kind: TokTrailerBegin}, nil
	}
	first, ferr := t.readUnsigned()
	if ferr != nil {
		return PdfToken{}, wrapErr(ErrXRefFormat, t.Position(), ferr, "reading xref subsection first object")
	}
	count, cerr := t.readUnsigned()
	if cerr != nil {
		return PdfToken{}, wrapErr(ErrXRefFormat, t.Position(), cerr, "reading xref subsection count")
	}
	// Consume to end of the header line.
	t.readUntil(func(c byte) bool { return c == '\n' }, false)
	t.pushState(stXRefEntry)
	return PdfToken{Kind: TokXRefSubSectionHeader, XRefHeader: XRefHeader{FirstObject: first, Count: count}}, nil
}

func (t *Tokenizer) nextXRefEntry() (PdfToken, *PDFError) {
	raw, err := t.cur.ReadExact(20)
	if err != nil {
		return PdfToken{}, wrapErr(ErrXRefFormat, t.Position(), err, "reading 20-byte xref entry")
	}
	offset, oerr := strconv.ParseUint(string(trimASCIISpace(raw[0:10])), 10, 64)
	if oerr != nil {
		return PdfToken{}, wrapErr(ErrXRefFormat, t.Position(), oerr, "parsing xref entry offset")
	}
	gen, gerr := strconv.ParseUint(string(trimASCIISpace(raw[11:16])), 10, 64)
	if gerr != nil {
		return PdfToken{}, wrapErr(ErrXRefFormat, t.Position(), gerr, "parsing xref entry generation")
	}
	flag := raw[17]
	var free bool
	switch flag {
	case 'n':
		free = false
	case 'f':
		free = true
	default:
		return PdfToken{}, newErr(ErrXRefFormat, t.Position(), "unexpected xref entry flag %q", flag)
	}
	return PdfToken{Kind: TokXRefEntry, XRefEntry: XRefEntryClassical{Offset: offset, Gen: gen, Free: free}}, nil
}

func trimASCIISpace(b []byte) []byte {
	i, j := 0, len(b)
	for i < j && b[i] == ' ' {
		i++
	}
	for j > i && b[j-1] == ' ' {
		j--
	}
	return b[i:j]
}

func (t *Tokenizer) nextTrailer() (PdfToken, *PDFError) {
	for {
		b, err := t.nextByte()
		if err != nil {
			return PdfToken{}, newErr(ErrUnexpectedByte, t.Position(), "unexpected end of input looking for trailer dictionary")
		}
		if isPDFWhitespace(b) {
			continue
		}
		if b != '<' {
			return PdfToken{}, newErr(ErrUnexpectedByte, t.Position(), "unexpected byte %q looking for trailer dictionary", b)
		}
		nb, nerr := t.nextByte()
		if nerr != nil || nb != '<' {
			return PdfToken{}, newErr(ErrUnexpectedByte, t.Position(), "expected '<<' to start trailer dictionary")
		}
		t.popState()
		t.pushState(stDictionaryKey)
		return PdfToken{Kind: TokDictionaryStart}, nil
	}
}

// ReadStreamBytes consumes exactly n bytes of a stream body and
// transitions from Stream to StreamEnd state.
func (t *Tokenizer) ReadStreamBytes(n int) ([]byte, *PDFError) {
	if t.state() != stStream {
		return nil, newErr(ErrStateViolation, t.Position(), "ReadStreamBytes called outside Stream state")
	}
	raw, err := t.cur.ReadExact(n)
	if err != nil {
		return nil, wrapErr(ErrUnexpectedByte, t.Position(), err, "reading %d stream bytes", n)
	}
	t.popState()
	t.pushState(stStreamEnd)
	return raw, nil
}

// ReadXRefSubsection reads count fixed-width classical xref entries in
// one pass, tolerating both "SP CR LF" and "SP SP LF" terminators.
func (t *Tokenizer) ReadXRefSubsection(count uint64) ([]XRefEntryClassical, *PDFError) {
	if t.state() != stXRefEntry {
		return nil, newErr(ErrStateViolation, t.Position(), "ReadXRefSubsection called outside XRefEntry state")
	}
	entries := make([]XRefEntryClassical, 0, count)
	for i := uint64(0); i < count; i++ {
		tok, err := t.nextXRefEntry()
		if err != nil {
			return entries, err
		}
		entries = append(entries, tok.XRefEntry)
	}
	t.popState()
	return entries, nil
}

// Peek returns the next token without consuming it, restoring both
// cursor position and the full state stack.
func (t *Tokenizer) Peek() (PdfToken, *PDFError) {
	savedPos := t.cur.Position()
	savedStack := append([]tokenizerState(nil), t.stack...)
	tok, err := t.Next()
	t.stack = savedStack
	t.cur.Seek(savedPos)
	return tok, err
}

// PeekMultiple returns the next k tokens without consuming any of them.
func (t *Tokenizer) PeekMultiple(k int) ([]PdfToken, *PDFError) {
	savedPos := t.cur.Position()
	savedStack := append([]tokenizerState(nil), t.stack...)
	toks := make([]PdfToken, 0, k)
	for i := 0; i < k; i++ {
		tok, err := t.Next()
		if err != nil {
			t.stack = savedStack
			t.cur.Seek(savedPos)
			return toks, err
		}
		toks = append(toks, tok)
	}
	t.stack = savedStack
	t.cur.Seek(savedPos)
	return toks, nil
}
