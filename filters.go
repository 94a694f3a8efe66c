// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xtract

import (
	"bytes"
	"compress/zlib"
	"encoding/ascii85"
	"io"

	"github.com/hhrutter/lzw"
)

// Decompressor decodes a stream's raw bytes according to a named PDF
// filter plus its DecodeParms dictionary. Only FlateDecode is required
// by spec; LZWDecode and ASCII85Decode are wired in as the extension
// point "other filters may fail with UnknownFilter" describes.
type Decompressor interface {
	Decode(filterName string, parms PdfValue, raw []byte) ([]byte, *PDFError)
}

type defaultDecompressor struct{}

// NewDecompressor returns the default Decompressor, covering
// FlateDecode, LZWDecode and ASCII85Decode.
func NewDecompressor() Decompressor {
	return defaultDecompressor{}
}

func (defaultDecompressor) Decode(filterName string, parms PdfValue, raw []byte) ([]byte, *PDFError) {
	switch filterName {
	case "FlateDecode", "Fl":
		return decodeFlate(raw, parms)
	case "LZWDecode", "LZW":
		return decodeLZW(raw, parms)
	case "ASCII85Decode", "A85":
		return decodeASCII85(raw)
	default:
		return nil, newErr(ErrUnknownFilter, 0, "unsupported filter %q", filterName)
	}
}

func decodeFlate(raw []byte, parms PdfValue) ([]byte, *PDFError) {
	zr, err := zlib.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, wrapErr(ErrDecompressionFailed, 0, err, "opening FlateDecode stream")
	}
	defer zr.Close()
	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, wrapErr(ErrDecompressionFailed, 0, err, "reading FlateDecode stream")
	}
	return applyPredictor(data, parms)
}

func decodeLZW(raw []byte, parms PdfValue) ([]byte, *PDFError) {
	early := 1
	if parms.Kind == ValDictionary {
		if v, ok := parms.Get("EarlyChange"); ok && v.Kind == ValNumber {
			early = int(v.Num)
		}
	}
	lr := lzw.NewReader(bytes.NewReader(raw), early != 0)
	defer lr.Close()
	data, err := io.ReadAll(lr)
	if err != nil {
		return nil, wrapErr(ErrDecompressionFailed, 0, err, "reading LZWDecode stream")
	}
	return applyPredictor(data, parms)
}

func decodeASCII85(raw []byte) ([]byte, *PDFError) {
	trimmed := bytes.TrimSpace(raw)
	trimmed = bytes.TrimSuffix(trimmed, []byte("~>"))
	dec := ascii85.NewDecoder(bytes.NewReader(trimmed))
	data, err := io.ReadAll(dec)
	if err != nil {
		return nil, wrapErr(ErrDecompressionFailed, 0, err, "reading ASCII85Decode stream")
	}
	return data, nil
}

// applyPredictor undoes a PNG predictor (Predictor 10-15) via undoPNGUp.
// Predictor values below 10, including the TIFF predictor 2, pass the
// data through unchanged.
func applyPredictor(data []byte, parms PdfValue) ([]byte, *PDFError) {
	if parms.Kind != ValDictionary {
		return data, nil
	}
	predictor := 1
	if v, ok := parms.Get("Predictor"); ok && v.Kind == ValNumber {
		predictor = int(v.Num)
	}
	if predictor < 10 {
		return data, nil
	}
	columns := 1
	if v, ok := parms.Get("Columns"); ok && v.Kind == ValNumber {
		columns = int(v.Num)
	}
	colors := 1
	if v, ok := parms.Get("Colors"); ok && v.Kind == ValNumber {
		colors = int(v.Num)
	}
	bpc := 8
	if v, ok := parms.Get("BitsPerComponent"); ok && v.Kind == ValNumber {
		bpc = int(v.Num)
	}
	bytesPerPixel := (colors*bpc + 7) / 8
	rowBytes := (columns*colors*bpc + 7) / 8

	return undoPNGUp(data, rowBytes, bytesPerPixel)
}

// undoPNGUp reverses the PNG row filters PDF predictors 10-15 apply: every
// row is prefixed with a one-byte filter tag selecting None (0), Sub (1),
// Up (2), Average (3) or Paeth (4); for Up, each output byte is the sum
// (mod 256) of the encoded byte and the byte directly above it in the
// previous reconstructed row. Any other tag is an error.
func undoPNGUp(data []byte, rowBytes, bpp int) ([]byte, *PDFError) {
	if rowBytes <= 0 {
		return nil, newErr(ErrDecompressionFailed, 0, "invalid predictor row width %d", rowBytes)
	}
	stride := rowBytes + 1
	if len(data)%stride != 0 {
		return nil, newErr(ErrDecompressionFailed, 0, "predictor data length %d not a multiple of row stride %d", len(data), stride)
	}
	rows := len(data) / stride
	out := make([]byte, rows*rowBytes)
	prev := make([]byte, rowBytes)
	for r := 0; r < rows; r++ {
		tag := data[r*stride]
		row := data[r*stride+1 : r*stride+stride]
		cur := out[r*rowBytes : (r+1)*rowBytes]
		switch tag {
		case 0: // None
			copy(cur, row)
		case 2: // Up
			for i := 0; i < rowBytes; i++ {
				cur[i] = row[i] + prev[i]
			}
		case 1: // Sub
			for i := 0; i < rowBytes; i++ {
				var left byte
				if i >= bpp {
					left = cur[i-bpp]
				}
				cur[i] = row[i] + left
			}
		case 3: // Average
			for i := 0; i < rowBytes; i++ {
				var left int
				if i >= bpp {
					left = int(cur[i-bpp])
				}
				cur[i] = row[i] + byte((left+int(prev[i]))/2)
			}
		case 4: // Paeth
			for i := 0; i < rowBytes; i++ {
				var left, upLeft int
				if i >= bpp {
					left = int(cur[i-bpp])
					upLeft = int(prev[i-bpp])
				}
				cur[i] = row[i] + paeth(left, int(prev[i]), upLeft)
			}
		default:
			return nil, newErr(ErrDecompressionFailed, 0, "unsupported PNG predictor tag %d", tag)
		}
		prev = cur
	}
	return out, nil
}

func paeth(a, b, c int) byte {
	p := a + b - c
	pa, pb, pc := abs(p-a), abs(p-b), abs(p-c)
	switch {
	case pa <= pb && pa <= pc:
		return byte(a)
	case pb <= pc:
		return byte(b)
	default:
		return byte(c)
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
