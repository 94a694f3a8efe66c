// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xtract

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempPDF(t *testing.T, data []byte) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.pdf")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func testProcessorConfig(mode ParsingMode) *Config {
	cfg := NewDefaultConfig()
	cfg.ParsingMode = mode
	cfg.WorkerTimeout = 5 * time.Second
	return cfg
}

func TestProcessor_ExtractSinglePage(t *testing.T) {
	path := writeTempPDF(t, buildMinimalPDF(t))
	proc := NewProcessor(testProcessorConfig(BestEffort))

	text, truncated, err := proc.Extract(context.Background(), path)
	require.NoError(t, err)
	assert.False(t, truncated)
	assert.Contains(t, text, "Hello")
	assert.Contains(t, text, "World")
}

func TestProcessor_ExtractRespectsMaxTotalChars(t *testing.T) {
	path := writeTempPDF(t, buildMinimalPDF(t))
	cfg := testProcessorConfig(BestEffort)
	cfg.MaxTotalChars = 3
	proc := NewProcessor(cfg)

	text, truncated, err := proc.Extract(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, truncated)
	assert.LessOrEqual(t, len(text), 3)
}

func TestProcessor_Metadata(t *testing.T) {
	path := writeTempPDF(t, buildMinimalPDFWithInfo(t))
	proc := NewProcessor(testProcessorConfig(BestEffort))

	var buf bytes.Buffer
	err := proc.Metadata(context.Background(), path, &buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Minimal PDF with Metadata")
}

func TestProcessor_StrictModeFailsOnBadDocument(t *testing.T) {
	path := writeTempPDF(t, []byte("not a pdf"))
	proc := NewProcessor(testProcessorConfig(Strict))

	_, _, err := proc.Extract(context.Background(), path)
	require.Error(t, err)
}
