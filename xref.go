// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xtract

// xrefEntryType mirrors the /W[0] field of a cross-reference stream.
type xrefEntryType int

const (
	xrefFree        xrefEntryType = 0
	xrefUncompressed xrefEntryType = 1
	xrefCompressed   xrefEntryType = 2
)

// xrefStreamEntry is one decoded record from a cross-reference stream,
// generalizing the three field layouts per spec.md §4.3's xref-stream
// table: Free carries a next-free-object number, Uncompressed carries a
// byte offset and generation, Compressed carries a containing ObjStm's
// object number and an index within it.
type xrefStreamEntry struct {
	Type          xrefEntryType
	Field2        uint64 // next free object | byte offset | containing ObjStm number
	Field3        uint64 // generation | index within ObjStm
}

// decodeXRefStreamData walks a cross-reference stream's decompressed
// byte tape in fixed-width records per the /W array, applying the
// /Index ranges to assign object numbers. W[0]==0 defaults that field's
// type to 1 (Uncompressed), per spec.md §4.3.
func decodeXRefStreamData(data []byte, w [3]int, index []int64) (map[uint64]xrefStreamEntry, *PDFError) {
	recordWidth := w[0] + w[1] + w[2]
	if recordWidth <= 0 {
		return nil, newErr(ErrXRefFormat, 0, "xref stream /W describes a zero-width record")
	}
	if len(index)%2 != 0 {
		return nil, newErr(ErrXRefFormat, 0, "xref stream /Index has an odd element count")
	}

	out := make(map[uint64]xrefStreamEntry)
	pos := 0
	for i := 0; i+1 < len(index); i += 2 {
		first := index[i]
		count := index[i+1]
		for j := int64(0); j < count; j++ {
			if pos+recordWidth > len(data) {
				return nil, newErr(ErrXRefFormat, 0, "xref stream data too short for /Index ranges")
			}
			objNum := uint64(first + j)
			entry, err := decodeXRefRecord(data[pos:pos+recordWidth], w)
			if err != nil {
				return nil, err
			}
			out[objNum] = entry
			pos += recordWidth
		}
	}
	return out, nil
}

func decodeXRefRecord(rec []byte, w [3]int) (xrefStreamEntry, *PDFError) {
	off := 0
	typeField := uint64(1) // W[0] == 0 defaults to type 1, per spec
	if w[0] > 0 {
		typeField = decodeBigEndian(rec[off : off+w[0]])
	}
	off += w[0]
	field2 := decodeBigEndian(rec[off : off+w[1]])
	off += w[1]
	field3 := decodeBigEndian(rec[off : off+w[2]])

	switch typeField {
	case 0, 1, 2:
		return xrefStreamEntry{Type: xrefEntryType(typeField), Field2: field2, Field3: field3}, nil
	default:
		return xrefStreamEntry{}, newErr(ErrXRefFormat, 0, "unknown xref stream entry type %d", typeField)
	}
}

func decodeBigEndian(b []byte) uint64 {
	var v uint64
	for _, x := range b {
		v = v<<8 | uint64(x)
	}
	return v
}
