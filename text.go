// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xtract

// TextRun is one Tj-shown string together with the text matrix in effect
// when it was painted. Shown strings are emitted as raw bytes with no
// font/CMap resolution to Unicode, per spec.md's explicit Non-goal —
// callers that need glyph-accurate text must resolve encoding themselves.
type TextRun struct {
	Text   []byte
	Matrix [6]float64
}

// TextObject groups every TextRun shown between one BT/ET pair, per
// spec.md's TextObject{runs: seq<TextRun>} entity — one logical line
// (or block) of text per content-stream text object.
type TextObject struct {
	Runs []TextRun
}

// TextExtractor walks a page's ContentTokens, tracking whether a text
// object is open, the text matrix most recently set within it, and the
// TextObject accumulating runs for the BT currently in progress —
// exactly the {inText, textMatrix, current} state original_source's
// get_text_objects state machine keeps — except state violations
// return a *PDFError instead of panicking.
type TextExtractor struct {
	inText     bool
	hasMatrix  bool
	textMatrix [6]float64
	current    TextObject
}

// NewTextExtractor returns a fresh TextExtractor.
func NewTextExtractor() *TextExtractor {
	return &TextExtractor{}
}

// Extract walks tokens and returns every text object, in order, each
// holding the TextRuns shown between its BT and ET.
func (e *TextExtractor) Extract(tokens []ContentToken) ([]TextObject, *PDFError) {
	var objects []TextObject
	for _, tok := range tokens {
		switch tok.Kind {
		case OpBeginText:
			if e.inText {
				return nil, newErr(ErrStateViolation, 0, "nested BT without a matching ET")
			}
			e.inText = true
			e.hasMatrix = false
			e.current = TextObject{}
		case OpEndText:
			if !e.inText {
				return nil, newErr(ErrStateViolation, 0, "ET without a matching BT")
			}
			e.inText = false
			e.hasMatrix = false
			objects = append(objects, e.current)
			e.current = TextObject{}
		case OpSetTextMatrix:
			if !e.inText {
				return nil, newErr(ErrStateViolation, 0, "Tm outside of a text object")
			}
			if len(tok.Nums) != 6 {
				return nil, newErr(ErrUnexpectedToken, 0, "Tm expects 6 operands, got %d", len(tok.Nums))
			}
			copy(e.textMatrix[:], tok.Nums)
			e.hasMatrix = true
		case OpShowText:
			if !e.inText {
				return nil, newErr(ErrStateViolation, 0, "Tj outside of a text object")
			}
			if !e.hasMatrix {
				return nil, newErr(ErrStateViolation, 0, "Tj before a text matrix was set")
			}
			e.current.Runs = append(e.current.Runs, TextRun{Text: tok.Text, Matrix: e.textMatrix})
		}
	}
	if e.inText {
		return nil, newErr(ErrStateViolation, 0, "content stream ended with an open text object")
	}
	return objects, nil
}
