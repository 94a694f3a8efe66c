// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xtract

import "io"

// ByteCursor is a seekable byte source over an io.ReaderAt. It owns no
// buffering beyond what a single read needs; the Tokenizer is the only
// caller and always knows exactly how many bytes it wants.
type ByteCursor struct {
	r   io.ReaderAt
	pos int64
	end int64
}

// NewByteCursor wraps r, which must serve size total bytes, for seekable
// byte-at-a-time reading starting at offset 0.
func NewByteCursor(r io.ReaderAt, size int64) *ByteCursor {
	return &ByteCursor{r: r, end: size}
}

// Position returns the current absolute offset.
func (c *ByteCursor) Position() int64 {
	return c.pos
}

// Len returns the total size of the underlying byte source.
func (c *ByteCursor) Len() int64 {
	return c.end
}

// Seek moves to an absolute offset.
func (c *ByteCursor) Seek(abs int64) {
	c.pos = abs
}

// SeekRel moves the cursor by delta bytes relative to its current position.
func (c *ByteCursor) SeekRel(delta int64) {
	c.pos += delta
}

// ReadByte reads and consumes a single byte, returning io.EOF at end of input.
func (c *ByteCursor) ReadByte() (byte, error) {
	if c.pos >= c.end {
		return 0, io.EOF
	}
	var buf [1]byte
	n, err := c.r.ReadAt(buf[:], c.pos)
	if n == 0 {
		if err == nil {
			err = io.EOF
		}
		return 0, err
	}
	c.pos++
	return buf[0], nil
}

// ReadExact reads exactly n bytes, advancing the cursor by n on success.
func (c *ByteCursor) ReadExact(n int) ([]byte, error) {
	if n < 0 {
		return nil, io.ErrShortBuffer
	}
	if c.pos+int64(n) > c.end {
		return nil, io.ErrUnexpectedEOF
	}
	buf := make([]byte, n)
	read := 0
	for read < n {
		m, err := c.r.ReadAt(buf[read:], c.pos+int64(read))
		read += m
		if err != nil {
			if err == io.EOF && read == n {
				break
			}
			return nil, err
		}
	}
	c.pos += int64(n)
	return buf, nil
}

// PeekByte returns the byte at the current position without consuming it.
func (c *ByteCursor) PeekByte() (byte, error) {
	b, err := c.ReadByte()
	if err != nil {
		return 0, err
	}
	c.pos--
	return b, nil
}
