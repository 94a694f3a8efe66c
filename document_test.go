// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xtract

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildMinimalPDF assembles a small, well-formed single-page PDF with a
// classical cross-reference table, computing every xref offset from the
// buffer as it's written rather than hardcoding byte positions.
func buildMinimalPDF(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	offsets := make([]int, 6) // index by object number, 1-based used

	buf.WriteString("%PDF-1.7\n%\xE2\xE3\xCF\xD3\n")

	write := func(num int, body string) {
		offsets[num] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", num, body)
	}

	write(1, "<< /Type /Catalog /Pages 2 0 R >>")
	write(2, "<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	write(3, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] "+
		"/Contents 4 0 R /Resources << /Font << /F1 5 0 R >> >> >>")

	content := "BT /F1 12 Tf 1 0 0 1 72 720 Tm (Hello) Tj ET\n" +
		"BT 1 0 0 1 72 700 Tm (World) Tj ET\n"
	offsets[4] = buf.Len()
	fmt.Fprintf(&buf, "4 0 obj\n<< /Length %d >>\nstream\n%sendstream\nendobj\n", len(content), content)

	write(5, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")

	xrefOff := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 6\n")
	buf.WriteString("0000000000 65535 f \n")
	for i := 1; i <= 5; i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size 6 /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", xrefOff)

	return buf.Bytes()
}

func TestDocument_MinimalEndToEnd(t *testing.T) {
	raw := buildMinimalPDF(t)
	doc, err := NewDocument(bytes.NewReader(raw), int64(len(raw)), NewDefaultConfig())
	require.NoError(t, err)

	pages, perr := doc.Pages()
	require.NoError(t, perr)
	require.Len(t, pages, 1)

	text, terr := pages[0].PlainText()
	require.NoError(t, terr)
	assert.Contains(t, text, "Hello")
	assert.Contains(t, text, "World")
}

func TestDocument_TextOnReturnsGroupedTextObjects(t *testing.T) {
	raw := buildMinimalPDF(t)
	doc, err := NewDocument(bytes.NewReader(raw), int64(len(raw)), NewDefaultConfig())
	require.NoError(t, err)

	objects, terr := doc.TextOn(0)
	require.NoError(t, terr)
	require.Len(t, objects, 2)
	require.Len(t, objects[0].Runs, 1)
	assert.Equal(t, []byte("Hello"), objects[0].Runs[0].Text)
	require.Len(t, objects[1].Runs, 1)
	assert.Equal(t, []byte("World"), objects[1].Runs[0].Text)
}

func TestDocument_TextOnOutOfRangeIndex(t *testing.T) {
	raw := buildMinimalPDF(t)
	doc, err := NewDocument(bytes.NewReader(raw), int64(len(raw)), NewDefaultConfig())
	require.NoError(t, err)

	_, terr := doc.TextOn(5)
	require.Error(t, terr)
}

func TestDocument_ResolveByObjectId(t *testing.T) {
	raw := buildMinimalPDF(t)
	doc, err := NewDocument(bytes.NewReader(raw), int64(len(raw)), NewDefaultConfig())
	require.NoError(t, err)

	catalog, cerr := doc.Resolve(ObjectId{Num: 1, Gen: 0})
	require.NoError(t, cerr)
	require.Equal(t, ValDictionary, catalog.Kind)
	typeVal, ok := catalog.Get("Type")
	require.True(t, ok)
	assert.Equal(t, "Catalog", typeVal.Name)
}

// buildPDFWithSwappedXRefEntries is like buildMinimalPDF but its xref
// table entries for objects 1 and 2 are swapped, so each points at the
// other's byte offset, to exercise StrictXRefOffsets validation.
func buildPDFWithSwappedXRefEntries(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	offsets := make([]int, 6)

	buf.WriteString("%PDF-1.7\n%\xE2\xE3\xCF\xD3\n")
	write := func(num int, body string) {
		offsets[num] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", num, body)
	}

	write(1, "<< /Type /Catalog /Pages 2 0 R >>")
	write(2, "<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	write(3, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] "+
		"/Contents 4 0 R /Resources << /Font << /F1 5 0 R >> >> >>")

	content := "BT /F1 12 Tf 1 0 0 1 72 720 Tm (Hello) Tj ET\n"
	offsets[4] = buf.Len()
	fmt.Fprintf(&buf, "4 0 obj\n<< /Length %d >>\nstream\n%sendstream\nendobj\n", len(content), content)

	write(5, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")

	offsets[1], offsets[2] = offsets[2], offsets[1]

	xrefOff := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 6\n")
	buf.WriteString("0000000000 65535 f \n")
	for i := 1; i <= 5; i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size 6 /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", xrefOff)

	return buf.Bytes()
}

func TestDocument_StrictXRefOffsetsRejectsMismatchedHeader(t *testing.T) {
	raw := buildPDFWithSwappedXRefEntries(t)
	cfg := NewDefaultConfig()
	cfg.StrictXRefOffsets = true
	doc, err := NewDocument(bytes.NewReader(raw), int64(len(raw)), cfg)
	require.NoError(t, err)

	_, rerr := doc.Resolve(ObjectId{Num: 1, Gen: 0})
	require.Error(t, rerr)
	assert.Equal(t, ErrXRefFormat, rerr.Kind)
}

func TestDocument_LenientXRefOffsetsToleratesMismatchedHeader(t *testing.T) {
	raw := buildPDFWithSwappedXRefEntries(t)
	cfg := NewDefaultConfig()
	cfg.StrictXRefOffsets = false
	doc, err := NewDocument(bytes.NewReader(raw), int64(len(raw)), cfg)
	require.NoError(t, err)

	val, rerr := doc.Resolve(ObjectId{Num: 1, Gen: 0})
	require.NoError(t, rerr)
	assert.Equal(t, ValDictionary, val.Kind)
}

func TestDocument_RejectsBadHeader(t *testing.T) {
	raw := []byte("not a pdf at all")
	_, err := NewDocument(bytes.NewReader(raw), int64(len(raw)), NewDefaultConfig())
	require.Error(t, err)
}

func TestDocument_LeafPageCarriesMediaBox(t *testing.T) {
	raw := buildMinimalPDF(t)
	doc, err := NewDocument(bytes.NewReader(raw), int64(len(raw)), NewDefaultConfig())
	require.NoError(t, err)
	pages, perr := doc.Pages()
	require.NoError(t, perr)
	require.Len(t, pages, 1)

	mb, ok := pages[0].Dict.Get("MediaBox")
	require.True(t, ok)
	require.Equal(t, ValArray, mb.Kind)
	assert.Equal(t, float64(612), mb.Array[2].Num)
}
