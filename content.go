// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xtract

import (
	"bytes"
	"strconv"
)

// ContentOpKind enumerates the page-content operators this core
// understands, per spec.md §4.4's operator table. Operands are carried
// on the token; operators not in this table are a hard UnsupportedOperator
// error rather than being silently skipped (spec.md §9).
type ContentOpKind int

const (
	OpConcatMatrix ContentOpKind = iota // cm
	OpSaveState                          // q
	OpRestoreState                       // Q
	OpLineWidth                          // w
	OpMoveTo                             // m
	OpLineTo                             // l
	OpStroke                             // S
	OpEndPathNoOp                        // n
	OpFillEvenOdd                        // f*
	OpStrokeColorGray                    // G
	OpFillColorGray                      // g
	OpFlatness                           // i
	OpBeginMarkedContent                 // BMC
	OpBeginMarkedContentProps            // BDC
	OpEndMarkedContent                   // EMC
	OpBeginText                          // BT
	OpEndText                            // ET
	OpSetTextMatrix                      // Tm
	OpSetFont                            // Tf
	OpShowText                           // Tj
	OpPaintXObject                       // Do
)

// ContentToken is one decoded content-stream operator plus its operands.
type ContentToken struct {
	Kind      ContentOpKind
	Nums      []float64 // cm, w, m, l, G, g, i, Tm operands
	Name      string    // BMC tag, BDC tag, Tf font name, Do XObject name
	Props     PdfValue  // BDC properties dict (arbitrary PdfValue, per spec §9's fix)
	FontSize  float64   // Tf second operand
	Text      []byte    // Tj operand
}

// ContentStreamLexer is a hand-rolled operand-stack lexer over a page's
// decompressed content bytes: operands accumulate until an operator
// keyword is seen, at which point they're drained into a ContentToken.
// Unlike the nom-combinator original, it never tolerates a trailing
// unparsed remainder — any leftover bytes that aren't whitespace after
// the last recognized operator are a hard error.
type ContentStreamLexer struct {
	data []byte
	pos  int
}

// NewContentStreamLexer wraps already-decompressed content-stream bytes.
func NewContentStreamLexer(data []byte) *ContentStreamLexer {
	return &ContentStreamLexer{data: data}
}

// Tokenize consumes the entire content stream and returns its operator
// sequence.
func (l *ContentStreamLexer) Tokenize() ([]ContentToken, *PDFError) {
	var tokens []ContentToken
	var operands []pdfOperand

	for {
		l.skipWhitespace()
		if l.pos >= len(l.data) {
			break
		}
		b := l.data[l.pos]
		switch {
		case b == '/':
			name, err := l.readOperandName()
			if err != nil {
				return nil, err
			}
			operands = append(operands, pdfOperand{kind: operandName, name: name})
		case b == '(':
			s, err := l.readOperandLiteralString()
			if err != nil {
				return nil, err
			}
			operands = append(operands, pdfOperand{kind: operandString, str: s})
		case b == '<':
			if l.pos+1 < len(l.data) && l.data[l.pos+1] == '<' {
				v, err := l.readOperandDict()
				if err != nil {
					return nil, err
				}
				operands = append(operands, pdfOperand{kind: operandDict, dict: v})
			} else {
				s, err := l.readOperandHexString()
				if err != nil {
					return nil, err
				}
				operands = append(operands, pdfOperand{kind: operandString, str: s})
			}
		case b == '[':
			// Arrays appear as TJ operands in full content streams; this
			// core's operator table (spec.md §4.4) doesn't include TJ, so
			// arrays are consumed and discarded as an opaque operand.
			if err := l.skipOperandArray(); err != nil {
				return nil, err
			}
			operands = append(operands, pdfOperand{kind: operandOther})
		case (b >= '0' && b <= '9') || b == '-' || b == '+' || b == '.':
			n, err := l.readOperandNumber()
			if err != nil {
				return nil, err
			}
			operands = append(operands, pdfOperand{kind: operandNumber, num: n})
		default:
			kw, err := l.readKeyword()
			if err != nil {
				return nil, err
			}
			tok, ok, terr := buildContentToken(kw, operands)
			if terr != nil {
				return nil, terr
			}
			if !ok {
				return nil, newErr(ErrUnsupportedOperator, int64(l.pos), "unsupported content stream operator %q", kw)
			}
			tokens = append(tokens, tok)
			operands = operands[:0]
		}
	}
	if len(operands) > 0 {
		return nil, newErr(ErrUnexpectedToken, int64(l.pos), "content stream ends with %d operand(s) and no operator", len(operands))
	}
	return tokens, nil
}

type operandKind int

const (
	operandNumber operandKind = iota
	operandName
	operandString
	operandDict
	operandOther
)

type pdfOperand struct {
	kind operandKind
	num  float64
	name string
	str  []byte
	dict PdfValue
}

func buildContentToken(kw string, operands []pdfOperand) (ContentToken, bool, *PDFError) {
	nums := func() []float64 {
		out := make([]float64, 0, len(operands))
		for _, o := range operands {
			if o.kind == operandNumber {
				out = append(out, o.num)
			}
		}
		return out
	}

	switch kw {
	case "cm":
		return ContentToken{Kind: OpConcatMatrix, Nums: nums()}, true, nil
	case "q":
		return ContentToken{Kind: OpSaveState}, true, nil
	case "Q":
		return ContentToken{Kind: OpRestoreState}, true, nil
	case "w":
		return ContentToken{Kind: OpLineWidth, Nums: nums()}, true, nil
	case "m":
		return ContentToken{Kind: OpMoveTo, Nums: nums()}, true, nil
	case "l":
		return ContentToken{Kind: OpLineTo, Nums: nums()}, true, nil
	case "S":
		return ContentToken{Kind: OpStroke}, true, nil
	case "n":
		return ContentToken{Kind: OpEndPathNoOp}, true, nil
	case "f*":
		return ContentToken{Kind: OpFillEvenOdd}, true, nil
	case "G":
		return ContentToken{Kind: OpStrokeColorGray, Nums: nums()}, true, nil
	case "g":
		return ContentToken{Kind: OpFillColorGray, Nums: nums()}, true, nil
	case "i":
		return ContentToken{Kind: OpFlatness, Nums: nums()}, true, nil
	case "BMC":
		name := lastOperandName(operands)
		return ContentToken{Kind: OpBeginMarkedContent, Name: name}, true, nil
	case "BDC":
		name := firstOperandName(operands)
		props := lastOperandDict(operands)
		return ContentToken{Kind: OpBeginMarkedContentProps, Name: name, Props: props}, true, nil
	case "EMC":
		return ContentToken{Kind: OpEndMarkedContent}, true, nil
	case "BT":
		return ContentToken{Kind: OpBeginText}, true, nil
	case "ET":
		return ContentToken{Kind: OpEndText}, true, nil
	case "Tm":
		return ContentToken{Kind: OpSetTextMatrix, Nums: nums()}, true, nil
	case "Tf":
		name := firstOperandName(operands)
		size := lastOperandNumber(operands)
		return ContentToken{Kind: OpSetFont, Name: name, FontSize: size}, true, nil
	case "Tj":
		return ContentToken{Kind: OpShowText, Text: lastOperandString(operands)}, true, nil
	case "Do":
		name := firstOperandName(operands)
		return ContentToken{Kind: OpPaintXObject, Name: name}, true, nil
	default:
		return ContentToken{}, false, nil
	}
}

func firstOperandName(operands []pdfOperand) string {
	for _, o := range operands {
		if o.kind == operandName {
			return o.name
		}
	}
	return ""
}

func lastOperandName(operands []pdfOperand) string {
	name := ""
	for _, o := range operands {
		if o.kind == operandName {
			name = o.name
		}
	}
	return name
}

func lastOperandNumber(operands []pdfOperand) float64 {
	var n float64
	for _, o := range operands {
		if o.kind == operandNumber {
			n = o.num
		}
	}
	return n
}

func lastOperandString(operands []pdfOperand) []byte {
	var s []byte
	for _, o := range operands {
		if o.kind == operandString {
			s = o.str
		}
	}
	return s
}

func lastOperandDict(operands []pdfOperand) PdfValue {
	var v PdfValue
	for _, o := range operands {
		if o.kind == operandDict {
			v = o.dict
		}
	}
	return v
}

func (l *ContentStreamLexer) skipWhitespace() {
	for l.pos < len(l.data) && isPDFWhitespace(l.data[l.pos]) {
		l.pos++
	}
}

func (l *ContentStreamLexer) readKeyword() (string, *PDFError) {
	start := l.pos
	for l.pos < len(l.data) && !isPDFWhitespace(l.data[l.pos]) && !isDelimiter(l.data[l.pos]) {
		l.pos++
	}
	if l.pos == start {
		return "", newErr(ErrUnexpectedByte, int64(l.pos), "unexpected byte %q in content stream", l.data[l.pos])
	}
	return string(l.data[start:l.pos]), nil
}

func (l *ContentStreamLexer) readOperandNumber() (float64, *PDFError) {
	start := l.pos
	for l.pos < len(l.data) && !isPDFWhitespace(l.data[l.pos]) && !isDelimiter(l.data[l.pos]) {
		l.pos++
	}
	v, err := strconv.ParseFloat(string(l.data[start:l.pos]), 64)
	if err != nil {
		return 0, wrapErr(ErrBadNumber, int64(start), err, "reading content stream number")
	}
	return v, nil
}

func (l *ContentStreamLexer) readOperandName() (string, *PDFError) {
	l.pos++ // consume '/'
	start := l.pos
	for l.pos < len(l.data) && !isPDFWhitespace(l.data[l.pos]) && !isDelimiter(l.data[l.pos]) {
		l.pos++
	}
	return string(l.data[start:l.pos]), nil
}

func (l *ContentStreamLexer) readOperandLiteralString() ([]byte, *PDFError) {
	tok := newTokenizerOverBytes(l.data[l.pos:])
	tok.nextByte() // consume '('
	s, err := tok.readLiteralString()
	if err != nil {
		return nil, err.(*PDFError)
	}
	l.pos += int(tok.Position())
	return s, nil
}

func (l *ContentStreamLexer) readOperandHexString() ([]byte, *PDFError) {
	tok := newTokenizerOverBytes(l.data[l.pos:])
	tok.nextByte() // consume '<'
	s, err := tok.readHexString()
	if err != nil {
		return nil, wrapErr(ErrBadEscape, int64(l.pos), err, "reading hex string operand")
	}
	l.pos += int(tok.Position())
	return s, nil
}

// readOperandDict parses a BDC properties dictionary ("<< ... >>") as an
// arbitrary PdfValue, generalizing the Name-to-uint64-only map the
// original implementation built (spec.md §9's flagged limitation).
func (l *ContentStreamLexer) readOperandDict() (PdfValue, *PDFError) {
	tok := newTokenizerOverBytes(l.data[l.pos:])
	tok.nextByte() // consume first '<'
	tok.nextByte() // consume second '<'
	tok.pushState(stDictionaryKey)
	vp := NewValueParser(tok)
	v, verr := vp.parseDictionaryOrStream()
	if verr != nil {
		return PdfValue{}, verr
	}
	l.pos += int(tok.Position())
	return v, nil
}

func (l *ContentStreamLexer) skipOperandArray() *PDFError {
	depth := 0
	for l.pos < len(l.data) {
		b := l.data[l.pos]
		if b == '[' {
			depth++
		} else if b == ']' {
			depth--
			l.pos++
			if depth == 0 {
				return nil
			}
			continue
		}
		l.pos++
	}
	return newErr(ErrUnexpectedByte, int64(l.pos), "unterminated array operand in content stream")
}

// newTokenizerOverBytes builds a Tokenizer fixed over an in-memory byte
// slice, reusing the Tokenizer's literal/hex/number scanners for the
// content-stream lexer's operand parsing instead of duplicating them.
func newTokenizerOverBytes(b []byte) *Tokenizer {
	cur := NewByteCursor(bytes.NewReader(b), int64(len(b)))
	return &Tokenizer{cur: cur, stack: []tokenizerState{stObject}}
}
