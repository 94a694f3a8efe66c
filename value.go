// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xtract

import "sort"

// ValueKind enumerates the PdfValue variants. Go has no sum types, so
// PdfValue is a tagged struct rather than an interface hierarchy — this
// matches the teacher's own `Value` type in spirit, generalized to carry
// every variant the grammar allows.
type ValueKind int

const (
	ValNull ValueKind = iota
	ValBool
	ValNumber
	ValString
	ValName
	ValArray
	ValDictionary
	ValReference
	ValStream
)

// PdfValue is the parsed representation of any PDF object value: a
// scalar, a composite (array/dictionary), a reference to another
// indirect object, or a stream (a dictionary plus raw, still-encoded
// bytes).
type PdfValue struct {
	Kind    ValueKind
	Bool    bool
	Num     float64
	Str     []byte // String or HexString payload
	Name    string
	Array   []PdfValue
	Dict    map[string]PdfValue
	Ref     ObjectId
	Stream  *StreamValue
	keys    []string // insertion order, for stable dictionary iteration
}

// StreamValue pairs a stream's dictionary with its raw (still-filtered)
// bytes, exactly as read from the document; decoding happens lazily via
// Decompressor, not at parse time.
type StreamValue struct {
	Dict map[string]PdfValue
	Raw  []byte
}

// Keys returns a dictionary's keys in the order they were first parsed.
func (v PdfValue) Keys() []string {
	if v.keys != nil {
		return v.keys
	}
	keys := make([]string, 0, len(v.Dict))
	for k := range v.Dict {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get looks up a dictionary key, reporting whether it was present.
func (v PdfValue) Get(key string) (PdfValue, bool) {
	if v.Kind == ValStream {
		val, ok := v.Stream.Dict[key]
		return val, ok
	}
	val, ok := v.Dict[key]
	return val, ok
}

// ValueParser builds PdfValue trees by consuming tokens from a
// Tokenizer. It assumes the caller already consumed any ObjectHeader
// and is positioned at the first token of the value itself.
type ValueParser struct {
	tok *Tokenizer
	// ResolveLength resolves an indirect /Length reference to its
	// integer value. The DocumentAssembler sets this once it has a
	// complete xref table; it is nil while bootstrapping the xref
	// stream itself, which never has an indirect /Length.
	ResolveLength func(ObjectId) (int64, *PDFError)
}

// NewValueParser wraps tok for recursive value construction.
func NewValueParser(tok *Tokenizer) *ValueParser {
	return &ValueParser{tok: tok}
}

// ParseValue consumes one complete value starting from the given first
// token (already read by the caller, e.g. the driver loop that just saw
// an ObjectHeader or a dictionary value token).
func (p *ValueParser) ParseValue(first PdfToken) (PdfValue, *PDFError) {
	switch first.Kind {
	case TokNull:
		return PdfValue{Kind: ValNull}, nil
	case TokBoolean:
		return PdfValue{Kind: ValBool, Bool: first.Bool}, nil
	case TokNumber:
		return PdfValue{Kind: ValNumber, Num: first.Num}, nil
	case TokString, TokHexString:
		return PdfValue{Kind: ValString, Str: first.Bytes}, nil
	case TokName:
		return PdfValue{Kind: ValName, Name: first.Text}, nil
	case TokObjectReference:
		return PdfValue{Kind: ValReference, Ref: first.ObjID}, nil
	case TokArrayStart:
		return p.parseArray()
	case TokDictionaryStart:
		return p.parseDictionaryOrStream()
	default:
		return PdfValue{}, newErr(ErrUnexpectedToken, p.tok.Position(), "unexpected token kind %d while parsing value", first.Kind)
	}
}

// Next reads and parses the next value in full, for callers that have
// not already consumed the leading token.
func (p *ValueParser) Next() (PdfValue, *PDFError) {
	tok, err := p.tok.Next()
	if err != nil {
		return PdfValue{}, err
	}
	return p.ParseValue(tok)
}

func (p *ValueParser) parseArray() (PdfValue, *PDFError) {
	var items []PdfValue
	for {
		tok, err := p.tok.Next()
		if err != nil {
			return PdfValue{}, err
		}
		if tok.Kind == TokArrayEnd {
			return PdfValue{Kind: ValArray, Array: items}, nil
		}
		v, verr := p.ParseValue(tok)
		if verr != nil {
			return PdfValue{}, verr
		}
		items = append(items, v)
	}
}

func (p *ValueParser) parseDictionaryOrStream() (PdfValue, *PDFError) {
	dict := make(map[string]PdfValue)
	var keys []string
	for {
		tok, err := p.tok.Next()
		if err != nil {
			return PdfValue{}, err
		}
		if tok.Kind == TokDictionaryEnd {
			break
		}
		if tok.Kind != TokName {
			return PdfValue{}, newErr(ErrUnexpectedToken, p.tok.Position(), "expected dictionary key, found token kind %d", tok.Kind)
		}
		key := tok.Text
		val, verr := p.Next()
		if verr != nil {
			return PdfValue{}, verr
		}
		if _, dup := dict[key]; !dup {
			keys = append(keys, key)
		}
		dict[key] = val
	}

	// A dictionary immediately followed by "stream" becomes a StreamValue.
	peeked, perr := p.tok.Peek()
	if perr == nil && peeked.Kind == TokStreamBegin {
		begin, berr := p.tok.Next()
		if berr != nil {
			return PdfValue{}, berr
		}
		_ = begin
		length, lerr := p.streamLength(dict)
		if lerr != nil {
			return PdfValue{}, lerr
		}
		raw, rerr := p.tok.ReadStreamBytes(length)
		if rerr != nil {
			return PdfValue{}, rerr
		}
		end, eerr := p.tok.Next()
		if eerr != nil {
			return PdfValue{}, eerr
		}
		if end.Kind != TokStreamEnd {
			return PdfValue{}, newErr(ErrUnexpectedToken, p.tok.Position(), "expected endstream, found token kind %d", end.Kind)
		}
		return PdfValue{Kind: ValStream, Stream: &StreamValue{Dict: dict, Raw: raw}, keys: keys}, nil
	}

	return PdfValue{Kind: ValDictionary, Dict: dict, keys: keys}, nil
}

// streamLength extracts a stream's /Length, resolving it via
// ResolveLength when it is an indirect reference.
func (p *ValueParser) streamLength(dict map[string]PdfValue) (int, *PDFError) {
	lenVal, ok := dict["Length"]
	if !ok {
		return 0, newErr(ErrMissingDictEntry, p.tok.Position(), "stream dictionary has no /Length entry")
	}
	switch lenVal.Kind {
	case ValNumber:
		return int(lenVal.Num), nil
	case ValReference:
		if p.ResolveLength == nil {
			return 0, newErr(ErrUnresolvedReference, p.tok.Position(), "/Length is an indirect reference but no resolver is configured")
		}
		n, rerr := p.ResolveLength(lenVal.Ref)
		if rerr != nil {
			return 0, rerr
		}
		return int(n), nil
	default:
		return 0, newErr(ErrTypeMismatch, p.tok.Position(), "/Length has unexpected kind %d", lenVal.Kind)
	}
}
