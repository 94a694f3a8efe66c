// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xtract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentStreamLexer_TwoTextObjects(t *testing.T) {
	src := "BT /F1 12 Tf 1 0 0 1 72 720 Tm (Hello) Tj ET\n" +
		"BT 1 0 0 1 72 700 Tm (World) Tj ET\n"
	toks, err := NewContentStreamLexer([]byte(src)).Tokenize()
	require.NoError(t, err)

	var kinds []ContentOpKind
	for _, tk := range toks {
		kinds = append(kinds, tk.Kind)
	}
	assert.Equal(t, []ContentOpKind{
		OpBeginText, OpSetFont, OpSetTextMatrix, OpShowText, OpEndText,
		OpBeginText, OpSetTextMatrix, OpShowText, OpEndText,
	}, kinds)

	assert.Equal(t, "F1", toks[1].Name)
	assert.Equal(t, float64(12), toks[1].FontSize)
	assert.Equal(t, []byte("Hello"), toks[3].Text)
	assert.Equal(t, []byte("World"), toks[7].Text)
}

func TestContentStreamLexer_GraphicsOperators(t *testing.T) {
	src := "q 1 0 0 1 10 20 cm 0.5 w 100 100 m 200 200 l S n 0 g 1 G 0 i Q\n"
	toks, err := NewContentStreamLexer([]byte(src)).Tokenize()
	require.NoError(t, err)
	require.Len(t, toks, 11)
	assert.Equal(t, OpSaveState, toks[0].Kind)
	assert.Equal(t, OpConcatMatrix, toks[1].Kind)
	assert.Equal(t, []float64{1, 0, 0, 1, 10, 20}, toks[1].Nums)
	assert.Equal(t, OpRestoreState, toks[10].Kind)
}

func TestContentStreamLexer_BDCWithPropertiesDict(t *testing.T) {
	src := "/OC << /Name /Layer1 >> BDC EMC\n"
	toks, err := NewContentStreamLexer([]byte(src)).Tokenize()
	require.NoError(t, err)
	require.Len(t, toks, 2)
	assert.Equal(t, OpBeginMarkedContentProps, toks[0].Kind)
	assert.Equal(t, "OC", toks[0].Name)
	require.Equal(t, ValDictionary, toks[0].Props.Kind)
	nameVal, ok := toks[0].Props.Get("Name")
	require.True(t, ok)
	assert.Equal(t, "Layer1", nameVal.Name)
}

func TestContentStreamLexer_UnsupportedOperatorIsHardError(t *testing.T) {
	_, err := NewContentStreamLexer([]byte("1 2 3 TJ\n")).Tokenize()
	require.Error(t, err)
	assert.Equal(t, ErrUnsupportedOperator, err.Kind)
}

func TestContentStreamLexer_FillEvenOdd(t *testing.T) {
	toks, err := NewContentStreamLexer([]byte("f*\n")).Tokenize()
	require.NoError(t, err)
	require.Len(t, toks, 1)
	assert.Equal(t, OpFillEvenOdd, toks[0].Kind)
}

func TestContentStreamLexer_DoOperator(t *testing.T) {
	toks, err := NewContentStreamLexer([]byte("/Im0 Do\n")).Tokenize()
	require.NoError(t, err)
	require.Len(t, toks, 1)
	assert.Equal(t, OpPaintXObject, toks[0].Kind)
	assert.Equal(t, "Im0", toks[0].Name)
}
