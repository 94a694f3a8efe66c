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

// buildMinimalPDFWithInfo is buildMinimalPDF plus a trailer /Info entry,
// to exercise Metadata() resolution.
func buildMinimalPDFWithInfo(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	offsets := make([]int, 7)

	buf.WriteString("%PDF-1.7\n%\xE2\xE3\xCF\xD3\n")
	write := func(num int, body string) {
		offsets[num] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", num, body)
	}

	write(1, "<< /Type /Catalog /Pages 2 0 R >>")
	write(2, "<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	write(3, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] "+
		"/Contents 4 0 R /Resources << /Font << /F1 5 0 R >> >> >>")

	content := "BT /F1 12 Tf 1 0 0 1 72 720 Tm (Hi) Tj ET\n"
	offsets[4] = buf.Len()
	fmt.Fprintf(&buf, "4 0 obj\n<< /Length %d >>\nstream\n%sendstream\nendobj\n", len(content), content)

	write(5, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")
	write(6, "<< /Title (Minimal PDF with Metadata) /Author (Tester) /Producer (UnitTest PDF Generator) >>")

	xrefOff := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 7\n")
	buf.WriteString("0000000000 65535 f \n")
	for i := 1; i <= 6; i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size 7 /Root 1 0 R /Info 6 0 R >>\nstartxref\n%d\n%%%%EOF\n", xrefOff)

	return buf.Bytes()
}

func TestDocument_MetadataWithInfo(t *testing.T) {
	raw := buildMinimalPDFWithInfo(t)
	doc, err := NewDocument(bytes.NewReader(raw), int64(len(raw)), NewDefaultConfig())
	require.NoError(t, err)

	meta, merr := doc.Metadata()
	require.NoError(t, merr)
	assert.Equal(t, "Minimal PDF with Metadata", meta.Title)
	assert.Equal(t, "Tester", meta.Author)
	assert.Equal(t, "UnitTest PDF Generator", meta.Producer)
}

func TestDocument_MetadataWithoutInfoIsZeroValue(t *testing.T) {
	raw := buildMinimalPDF(t)
	doc, err := NewDocument(bytes.NewReader(raw), int64(len(raw)), NewDefaultConfig())
	require.NoError(t, err)

	meta, merr := doc.Metadata()
	require.NoError(t, merr)
	assert.Equal(t, Meta{}, meta)
}

func TestMetadataJSON(t *testing.T) {
	m := Meta{Title: "T", Author: "A"}
	b, err := MetadataJSON(m)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"title":"T"`)
	assert.Contains(t, string(b), `"author":"A"`)
}
