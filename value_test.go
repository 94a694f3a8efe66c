// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xtract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseOneValue(t *testing.T, src string, resolveLength func(ObjectId) (int64, *PDFError)) PdfValue {
	t.Helper()
	tok := newTok(t, "1 0 obj\n"+src+"\nendobj\n")
	_, err := tok.Next() // ObjectHeader
	require.NoError(t, err)
	vp := NewValueParser(tok)
	vp.ResolveLength = resolveLength
	v, verr := vp.Next()
	require.NoError(t, verr)
	return v
}

func TestValueParser_ScalarKinds(t *testing.T) {
	assert.Equal(t, ValNull, parseOneValue(t, "null", nil).Kind)
	assert.True(t, parseOneValue(t, "true", nil).Bool)
	assert.Equal(t, float64(3.14), parseOneValue(t, "3.14", nil).Num)
	assert.Equal(t, "Foo", parseOneValue(t, "/Foo", nil).Name)
}

func TestValueParser_NestedArrayInDictionary(t *testing.T) {
	v := parseOneValue(t, "<< /Kids [2 0 R [3 0 R] ] >>", nil)
	require.Equal(t, ValDictionary, v.Kind)
	kids, ok := v.Get("Kids")
	require.True(t, ok)
	require.Equal(t, ValArray, kids.Kind)
	require.Len(t, kids.Array, 2)
	assert.Equal(t, ValReference, kids.Array[0].Kind)
	assert.Equal(t, uint64(2), kids.Array[0].Ref.Num)
	require.Equal(t, ValArray, kids.Array[1].Kind)
	assert.Equal(t, uint64(3), kids.Array[1].Array[0].Ref.Num)
}

func TestValueParser_DictionaryKeyOrderPreserved(t *testing.T) {
	v := parseOneValue(t, "<< /Z 1 /A 2 /M 3 >>", nil)
	assert.Equal(t, []string{"Z", "A", "M"}, v.Keys())
}

func TestValueParser_StreamWithDirectLength(t *testing.T) {
	v := parseOneValue(t, "<< /Length 5 >>\nstream\nhello\nendstream", nil)
	require.Equal(t, ValStream, v.Kind)
	assert.Equal(t, []byte("hello"), v.Stream.Raw)
}

func TestValueParser_StreamWithIndirectLength(t *testing.T) {
	resolve := func(id ObjectId) (int64, *PDFError) {
		if id == (ObjectId{Num: 9, Gen: 0}) {
			return 5, nil
		}
		return 0, newErr(ErrUnresolvedReference, 0, "unexpected id")
	}
	v := parseOneValue(t, "<< /Length 9 0 R >>\nstream\nhello\nendstream", resolve)
	require.Equal(t, ValStream, v.Kind)
	assert.Equal(t, []byte("hello"), v.Stream.Raw)
}

func TestValueParser_StreamIndirectLengthUnresolved(t *testing.T) {
	tok := newTok(t, "1 0 obj\n<< /Length 9 0 R >>\nstream\nhello\nendstream\nendobj\n")
	_, err := tok.Next()
	require.NoError(t, err)
	vp := NewValueParser(tok)
	_, verr := vp.Next()
	require.Error(t, verr)
	assert.Equal(t, ErrUnresolvedReference, verr.Kind)
}
