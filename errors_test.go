// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xtract

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPDFError_ErrorString(t *testing.T) {
	e := newErr(ErrBadNumber, 42, "unexpected digit %q", 'x')
	assert.Equal(t, `[BAD_NUMBER @42] unexpected digit 'x'`, e.Error())

	cause := errors.New("boom")
	wrapped := wrapErr(ErrDecompressionFailed, 10, cause, "flate failed")
	assert.Contains(t, wrapped.Error(), "boom")
	assert.Contains(t, wrapped.Error(), "DECOMPRESSION_FAILURE")
}

func TestPDFError_UnwrapAndIs(t *testing.T) {
	cause := errors.New("underlying")
	wrapped := wrapErr(ErrXRefFormat, 0, cause, "bad xref")
	assert.ErrorIs(t, wrapped, cause)

	a := newErr(ErrTypeMismatch, 1, "a")
	b := newErr(ErrTypeMismatch, 2, "b")
	assert.True(t, a.Is(b), "errors of the same Kind should compare equal via Is")

	c := newErr(ErrBadEscape, 1, "c")
	assert.False(t, a.Is(c))
}

func TestPDFError_WithContext(t *testing.T) {
	e := newErr(ErrMissingDictEntry, 5, "missing /Length")
	e.WithContext("key", "Length")
	assert.Equal(t, "Length", e.Context["key"])
}
