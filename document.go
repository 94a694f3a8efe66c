// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xtract

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sassoftware/pdf-xtract/logger"
)

// Document is an assembled PDF: a cross-reference table mapping object
// identities to their storage location (direct byte offset or a slot
// inside a compressed object stream), plus a trailer and a lazily
// populated object cache. Objects are resolved on demand, matching the
// teacher's own lazy Reader.resolve rather than eagerly parsing every
// object up front.
type Document struct {
	src     io.ReaderAt
	size    int64
	cfg     *Config
	decomp  Decompressor
	xref    map[ObjectId]xrefLocation
	trailer map[string]PdfValue
	cache   map[ObjectId]PdfValue
}

type xrefLocKind int

const (
	locFree xrefLocKind = iota
	locOffset
	locCompressed
)

type xrefLocation struct {
	Kind         xrefLocKind
	Offset       int64
	Gen          uint64
	ContainerNum uint64
	Index        uint64
}

// Open opens path and assembles a Document from it. The returned *os.File
// must be closed by the caller once done with the Document; this mirrors
// the teacher's own Open, which hands back the file alongside the reader
// rather than owning its lifecycle.
func Open(path string, cfg *Config) (*os.File, *Document, *PDFError) {
	logger.Debug("Open file", true)
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, wrapErr(ErrUnexpectedByte, 0, err, "opening %s", path)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, wrapErr(ErrUnexpectedByte, 0, err, "stat %s", path)
	}
	logger.Debug(fmt.Sprintf("document: file:%s -- opened (size=%d)", path, fi.Size()), true)
	doc, derr := NewDocument(f, fi.Size(), cfg)
	if derr != nil {
		f.Close()
		return nil, nil, derr
	}
	return f, doc, nil
}

// NewDocument assembles a Document over src, which must serve size total
// bytes, validating the header/EOF marker and building the cross-
// reference table by following startxref and any /Prev chain.
func NewDocument(src io.ReaderAt, size int64, cfg *Config) (*Document, *PDFError) {
	if cfg == nil {
		cfg = NewDefaultConfig()
	}
	logger.Debug("Checking Header", true)
	if err := CheckHeader(src); err != nil {
		return nil, err
	}
	logger.Debug("Checking End of file Marker", true)
	if err := ValidateEOFMarker(src, size); err != nil {
		return nil, err
	}
	logger.Debug("Checking Startxref", true)
	startxref, err := FindStartXref(src, size)
	if err != nil {
		return nil, err
	}

	doc := &Document{
		src:     src,
		size:    size,
		cfg:     cfg,
		decomp:  NewDecompressor(),
		xref:    make(map[ObjectId]xrefLocation),
		trailer: make(map[string]PdfValue),
		cache:   make(map[ObjectId]PdfValue),
	}

	logger.Debug("Checking xref table + trailer", true)
	if err := doc.readXRefChain(startxref); err != nil {
		return nil, err
	}
	return doc, nil
}

// CheckHeader validates that src starts with "%PDF-x.y" for a version
// this core understands (1.0-1.7 or 2.0), tolerating leading bytes
// before the marker the way the teacher's own CheckHeader does.
func CheckHeader(src io.ReaderAt) *PDFError {
	buf := make([]byte, 16)
	n, rerr := src.ReadAt(buf, 0)
	if n == 0 && rerr != nil && rerr != io.EOF {
		return wrapErr(ErrUnexpectedByte, 0, rerr, "reading PDF header")
	}
	buf = buf[:n]
	p := bytes.Index(buf, []byte("%PDF-"))
	if p < 0 {
		return newErr(ErrUnexpectedByte, 0, "not a PDF file: missing %%PDF- header")
	}
	line := buf[p:]
	if end := bytes.IndexAny(line, "\r\n"); end >= 0 {
		line = line[:end]
	}
	line = bytes.TrimRight(line, " \t\x00")
	var major, minor int
	if _, serr := fmt.Sscanf(string(line), "%%PDF-%d.%d", &major, &minor); serr != nil {
		return wrapErr(ErrUnexpectedByte, 0, serr, "malformed PDF version line %q", line)
	}
	if !((major == 1 && minor >= 0 && minor <= 7) || (major == 2 && minor == 0)) {
		return newErr(ErrUnexpectedByte, 0, "unsupported PDF version %d.%d", major, minor)
	}
	logger.Debug(fmt.Sprintf("header: PDF-%d.%d", major, minor), true)
	return nil
}

// ValidateEOFMarker checks that the file's tail carries "%%EOF", within
// the trailing whitespace slack real-world writers leave.
func ValidateEOFMarker(src io.ReaderAt, size int64) *PDFError {
	const tail = 100
	start := size - tail
	if start < 0 {
		start = 0
	}
	buf := make([]byte, size-start)
	src.ReadAt(buf, start)
	buf = bytes.TrimRight(buf, " \t\r\n\x00")
	if !bytes.HasSuffix(buf, []byte("%%EOF")) {
		return newErr(ErrUnexpectedByte, size, "not a PDF file: missing trailing %%%%EOF marker")
	}
	return nil
}

// FindStartXref locates the final "startxref\n<offset>" pair near EOF.
func FindStartXref(src io.ReaderAt, size int64) (int64, *PDFError) {
	const tail = 1024
	start := size - tail
	if start < 0 {
		start = 0
	}
	buf := make([]byte, size-start)
	n, _ := src.ReadAt(buf, start)
	buf = buf[:n]

	i := findLastLine(buf, "startxref")
	if i < 0 {
		return 0, newErr(ErrUnexpectedByte, size, "malformed PDF: missing final startxref")
	}
	pos := start + int64(i)
	cur := NewByteCursor(src, size)
	cur.Seek(pos)
	tok := NewTokenizer(cur)
	first, terr := tok.Next()
	if terr != nil || first.Kind != TokStartXRef {
		return 0, newErr(ErrUnexpectedByte, pos, "malformed PDF: startxref not followed by an integer offset")
	}
	logger.Debug(fmt.Sprintf("xref: FindStartXref -- startxref=%d", first.U64), true)
	return int64(first.U64), nil
}

// findLastLine returns the index of the last occurrence of s in buf that
// is followed by at least one PDF whitespace byte, falling back to the
// last occurrence of s at all when none is; it returns -1 when s does not
// occur in buf.
func findLastLine(buf []byte, s string) int {
	bs := []byte(s)
	var indices []int
	for i := 0; ; {
		j := bytes.Index(buf[i:], bs)
		if j < 0 {
			break
		}
		indices = append(indices, i+j)
		i += j + 1
	}
	for k := len(indices) - 1; k >= 0; k-- {
		i := indices[k]
		j := i + len(bs)
		for j < len(buf) && isPDFWhitespace(buf[j]) {
			j++
		}
		if j > i+len(bs) {
			return i
		}
	}
	if len(indices) > 0 {
		return indices[len(indices)-1]
	}
	return -1
}

// readXRefChain reads the cross-reference section at off, then follows
// /Prev (classical or stream), reading at most Config.MaxXRefPrevChainDepth
// sections in total (the one at off included) and returning ErrXRefFormat
// for a longer chain, merging entries so the newest section's
// declarations win.
func (d *Document) readXRefChain(off int64) *PDFError {
	seen := 0
	for off != -1 {
		seen++
		if seen > d.cfg.MaxXRefPrevChainDepth {
			return newErr(ErrXRefFormat, off, "/Prev chain exceeds MaxXRefPrevChainDepth (%d)", d.cfg.MaxXRefPrevChainDepth)
		}
		next, trailerDict, err := d.readXRefSectionAt(off)
		if err != nil {
			return err
		}
		for k, v := range trailerDict {
			if _, exists := d.trailer[k]; !exists {
				d.trailer[k] = v
			}
		}
		if next == nil {
			break
		}
		off = *next
	}
	return nil
}

// readXRefSectionAt reads one xref section (classical table or stream)
// at off, merges its entries into d.xref (without overwriting entries a
// newer section already declared), and returns its /Prev offset if any.
func (d *Document) readXRefSectionAt(off int64) (*int64, map[string]PdfValue, *PDFError) {
	cur := NewByteCursor(d.src, d.size)
	cur.Seek(off)
	tok := NewTokenizer(cur)

	first, err := tok.Next()
	if err != nil {
		return nil, nil, err
	}

	switch first.Kind {
	case TokXRefSectionBegin:
		return d.readClassicalXRefSection(tok)
	case TokObjectHeader:
		return d.readXRefStreamSection(tok, first)
	default:
		return nil, nil, newErr(ErrXRefFormat, off, "expected 'xref' or an xref-stream object at offset %d", off)
	}
}

func (d *Document) readClassicalXRefSection(tok *Tokenizer) (*int64, map[string]PdfValue, *PDFError) {
	for {
		tk, err := tok.Next()
		if err != nil {
			return nil, nil, err
		}
		switch tk.Kind {
		case TokXRefSubSectionHeader:
			entries, eerr := tok.ReadXRefSubsection(tk.XRefHeader.Count)
			if eerr != nil {
				return nil, nil, eerr
			}
			for i, e := range entries {
				id := ObjectId{Num: tk.XRefHeader.FirstObject + uint64(i), Gen: e.Gen}
				if _, exists := d.xref[id]; exists {
					continue
				}
				if e.Free {
					d.xref[id] = xrefLocation{Kind: locFree}
				} else {
					d.xref[id] = xrefLocation{Kind: locOffset, Offset: int64(e.Offset), Gen: e.Gen}
				}
			}
		case TokTrailerBegin:
			trailerTok, terr := tok.Next()
			if terr != nil {
				return nil, nil, terr
			}
			vp := NewValueParser(tok)
			val, verr := vp.ParseValue(trailerTok)
			if verr != nil {
				return nil, nil, verr
			}
			if val.Kind != ValDictionary {
				return nil, nil, newErr(ErrTypeMismatch, tok.Position(), "trailer is not a dictionary")
			}
			return prevOffset(val.Dict), val.Dict, nil
		default:
			return nil, nil, newErr(ErrUnexpectedToken, tok.Position(), "unexpected token kind %d reading classical xref section", tk.Kind)
		}
	}
}

func (d *Document) readXRefStreamSection(tok *Tokenizer, header PdfToken) (*int64, map[string]PdfValue, *PDFError) {
	vp := NewValueParser(tok)
	first, err := tok.Next()
	if err != nil {
		return nil, nil, err
	}
	val, verr := vp.ParseValue(first)
	if verr != nil {
		return nil, nil, verr
	}
	if val.Kind != ValStream {
		return nil, nil, newErr(ErrTypeMismatch, tok.Position(), "expected a cross-reference stream object")
	}
	end, eerr := tok.Next()
	if eerr != nil {
		return nil, nil, eerr
	}
	if end.Kind != TokObjectEnd {
		return nil, nil, newErr(ErrUnexpectedToken, tok.Position(), "expected endobj after xref stream")
	}

	dict := val.Stream.Dict
	typeVal, ok := dict["Type"]
	if !ok || typeVal.Kind != ValName || typeVal.Name != "XRef" {
		return nil, nil, newErr(ErrXRefFormat, tok.Position(), "object at xref offset is not of /Type /XRef")
	}

	w, werr := readWArray(dict)
	if werr != nil {
		return nil, nil, werr
	}
	index, ierr := readIndexArray(dict, header.ObjID.Num)
	if ierr != nil {
		return nil, nil, ierr
	}

	filterName, parms := streamFilter(dict)
	raw := val.Stream.Raw
	var data []byte
	if filterName != "" {
		data, err = d.decomp.Decode(filterName, parms, raw)
		if err != nil {
			return nil, nil, err
		}
	} else {
		data = raw
	}

	entries, derr := decodeXRefStreamData(data, w, index)
	if derr != nil {
		return nil, nil, derr
	}
	for num, e := range entries {
		switch e.Type {
		case xrefFree:
			id := ObjectId{Num: num}
			if _, exists := d.xref[id]; !exists {
				d.xref[id] = xrefLocation{Kind: locFree}
			}
		case xrefUncompressed:
			id := ObjectId{Num: num, Gen: e.Field3}
			if _, exists := d.xref[id]; !exists {
				d.xref[id] = xrefLocation{Kind: locOffset, Offset: int64(e.Field2), Gen: e.Field3}
			}
		case xrefCompressed:
			id := ObjectId{Num: num}
			if _, exists := d.xref[id]; !exists {
				d.xref[id] = xrefLocation{Kind: locCompressed, ContainerNum: e.Field2, Index: e.Field3}
			}
		}
	}

	return prevOffset(dict), dict, nil
}

func prevOffset(dict map[string]PdfValue) *int64 {
	v, ok := dict["Prev"]
	if !ok || v.Kind != ValNumber {
		return nil
	}
	off := int64(v.Num)
	return &off
}

func readWArray(dict map[string]PdfValue) ([3]int, *PDFError) {
	var w [3]int
	v, ok := dict["W"]
	if !ok || v.Kind != ValArray || len(v.Array) != 3 {
		return w, newErr(ErrMissingDictEntry, 0, "xref stream missing a valid /W array")
	}
	for i := 0; i < 3; i++ {
		if v.Array[i].Kind != ValNumber {
			return w, newErr(ErrTypeMismatch, 0, "/W[%d] is not a number", i)
		}
		w[i] = int(v.Array[i].Num)
	}
	return w, nil
}

func readIndexArray(dict map[string]PdfValue, fallbackFirst uint64) ([]int64, *PDFError) {
	v, ok := dict["Index"]
	if !ok {
		sizeVal, sok := dict["Size"]
		if !sok || sizeVal.Kind != ValNumber {
			return nil, newErr(ErrMissingDictEntry, 0, "xref stream missing /Size and has no /Index")
		}
		return []int64{0, int64(sizeVal.Num)}, nil
	}
	if v.Kind != ValArray {
		return nil, newErr(ErrTypeMismatch, 0, "/Index is not an array")
	}
	out := make([]int64, 0, len(v.Array))
	for _, e := range v.Array {
		if e.Kind != ValNumber {
			return nil, newErr(ErrTypeMismatch, 0, "/Index entry is not a number")
		}
		out = append(out, int64(e.Num))
	}
	return out, nil
}

func streamFilter(dict map[string]PdfValue) (string, PdfValue) {
	f, ok := dict["Filter"]
	if !ok {
		return "", PdfValue{}
	}
	parms := dict["DecodeParms"]
	if f.Kind == ValName {
		return f.Name, parms
	}
	if f.Kind == ValArray && len(f.Array) > 0 && f.Array[0].Kind == ValName {
		p := PdfValue{}
		if parms.Kind == ValArray && len(parms.Array) > 0 {
			p = parms.Array[0]
		}
		return f.Array[0].Name, p
	}
	return "", PdfValue{}
}

// Trailer returns the merged trailer dictionary.
func (d *Document) Trailer() PdfValue {
	return PdfValue{Kind: ValDictionary, Dict: d.trailer}
}

// Resolve looks up and parses the indirect object identified by id,
// dereferencing through compressed object streams as needed. Resolved
// values are cached.
func (d *Document) Resolve(id ObjectId) (PdfValue, *PDFError) {
	if v, ok := d.cache[id]; ok {
		return v, nil
	}
	loc, ok := d.xref[id]
	if !ok {
		return PdfValue{}, newErr(ErrUnresolvedReference, 0, "object %d %d not found in cross-reference table", id.Num, id.Gen)
	}
	switch loc.Kind {
	case locFree:
		return PdfValue{Kind: ValNull}, nil
	case locOffset:
		v, err := d.resolveDirect(id, loc.Offset)
		if err != nil {
			return PdfValue{}, err
		}
		d.cache[id] = v
		return v, nil
	case locCompressed:
		v, err := d.resolveCompressed(loc.ContainerNum, loc.Index)
		if err != nil {
			return PdfValue{}, err
		}
		d.cache[id] = v
		return v, nil
	default:
		return PdfValue{}, newErr(ErrUnresolvedReference, 0, "object %d %d has no known location", id.Num, id.Gen)
	}
}

func (d *Document) resolveDirect(id ObjectId, offset int64) (PdfValue, *PDFError) {
	cur := NewByteCursor(d.src, d.size)
	cur.Seek(offset)
	tok := NewTokenizer(cur)
	header, err := tok.Next()
	if err != nil {
		return PdfValue{}, err
	}
	if header.Kind != TokObjectHeader {
		return PdfValue{}, newErr(ErrUnexpectedToken, offset, "expected object header for %d %d at offset %d", id.Num, id.Gen, offset)
	}
	if d.cfg.StrictXRefOffsets && header.ObjID != id {
		return PdfValue{}, newErr(ErrXRefFormat, offset, "xref offset for %d %d points at object header %d %d", id.Num, id.Gen, header.ObjID.Num, header.ObjID.Gen)
	}
	vp := NewValueParser(tok)
	vp.ResolveLength = func(ref ObjectId) (int64, *PDFError) {
		lv, lerr := d.Resolve(ref)
		if lerr != nil {
			return 0, lerr
		}
		if lv.Kind != ValNumber {
			return 0, newErr(ErrTypeMismatch, 0, "indirect /Length resolves to a non-number")
		}
		return int64(lv.Num), nil
	}
	val, verr := vp.Next()
	if verr != nil {
		return PdfValue{}, verr
	}
	end, eerr := tok.Next()
	if eerr != nil {
		return PdfValue{}, eerr
	}
	if end.Kind != TokObjectEnd {
		return PdfValue{}, newErr(ErrUnexpectedToken, tok.Position(), "expected endobj for %d %d", id.Num, id.Gen)
	}
	return val, nil
}

// resolveCompressed extracts the index-th object packed inside the
// ObjStm with object number containerNum, per spec.md's compressed
// cross-reference entries.
func (d *Document) resolveCompressed(containerNum, index uint64) (PdfValue, *PDFError) {
	container, err := d.Resolve(ObjectId{Num: containerNum})
	if err != nil {
		return PdfValue{}, err
	}
	if container.Kind != ValStream {
		return PdfValue{}, newErr(ErrTypeMismatch, 0, "object stream container %d is not a stream", containerNum)
	}
	data, derr := d.decodedStreamBytes(container)
	if derr != nil {
		return PdfValue{}, derr
	}
	dict := container.Stream.Dict
	nVal, ok := dict["N"]
	if !ok || nVal.Kind != ValNumber {
		return PdfValue{}, newErr(ErrMissingDictEntry, 0, "object stream missing /N")
	}
	firstVal, ok := dict["First"]
	if !ok || firstVal.Kind != ValNumber {
		return PdfValue{}, newErr(ErrMissingDictEntry, 0, "object stream missing /First")
	}
	n := int(nVal.Num)
	first := int64(firstVal.Num)
	if int(index) >= n {
		return PdfValue{}, newErr(ErrUnresolvedReference, 0, "object stream index %d out of range (N=%d)", index, n)
	}

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Split(bufio.ScanWords)
	offsets := make([]int64, n)
	for i := 0; i < n; i++ {
		if !sc.Scan() { // object number, unused: index is positional
			return PdfValue{}, newErr(ErrXRefFormat, 0, "object stream header truncated")
		}
		if !sc.Scan() {
			return PdfValue{}, newErr(ErrXRefFormat, 0, "object stream header truncated")
		}
		off, perr := strconv.ParseInt(sc.Text(), 10, 64)
		if perr != nil {
			return PdfValue{}, wrapErr(ErrXRefFormat, 0, perr, "parsing object stream header offset")
		}
		offsets[i] = off
	}

	body := data[first+offsets[index]:]
	cur := NewByteCursor(bytes.NewReader(body), int64(len(body)))
	tok := NewTokenizer(cur)
	tok.stack = []tokenizerState{stObject}
	vp := NewValueParser(tok)
	return vp.Next()
}

func (d *Document) decodedStreamBytes(v PdfValue) ([]byte, *PDFError) {
	filterName, parms := streamFilter(v.Stream.Dict)
	if filterName == "" {
		return v.Stream.Raw, nil
	}
	return d.decomp.Decode(filterName, parms, v.Stream.Raw)
}

// RootCatalog resolves and returns the document catalog (trailer /Root).
func (d *Document) RootCatalog() (PdfValue, *PDFError) {
	rootVal, ok := d.trailer["Root"]
	if !ok {
		return PdfValue{}, newErr(ErrMissingDictEntry, 0, "trailer has no /Root entry")
	}
	return d.followReference(rootVal)
}

func (d *Document) followReference(v PdfValue) (PdfValue, *PDFError) {
	if v.Kind != ValReference {
		return v, nil
	}
	return d.Resolve(v.Ref)
}

// Page is a single page dictionary within the document's page tree,
// together with the Document it belongs to so page content can be
// decoded and resolved on demand.
type Page struct {
	doc  *Document
	Dict PdfValue
}

// Pages walks the Catalog -> Pages tree and returns its leaf page
// dictionaries in document order, guarding against cyclic /Kids chains
// with a visited-ObjectId set.
func (d *Document) Pages() ([]*Page, *PDFError) {
	catalog, err := d.RootCatalog()
	if err != nil {
		return nil, err
	}
	pagesRef, ok := catalog.Get("Pages")
	if !ok {
		return nil, newErr(ErrMissingDictEntry, 0, "catalog has no /Pages entry")
	}
	root, rerr := d.followReference(pagesRef)
	if rerr != nil {
		return nil, rerr
	}

	var pages []*Page
	visited := make(map[ObjectId]bool)
	var walk func(node PdfValue, inherited map[string]PdfValue) *PDFError
	walk = func(node PdfValue, inherited map[string]PdfValue) *PDFError {
		if node.Kind != ValDictionary && node.Kind != ValStream {
			return newErr(ErrTypeMismatch, 0, "page tree node is not a dictionary")
		}
		merged := mergeInherited(node, inherited)
		typeVal, _ := node.Get("Type")
		kidsVal, hasKids := node.Get("Kids")
		if typeVal.Kind == ValName && typeVal.Name == "Page" || !hasKids {
			pages = append(pages, &Page{doc: d, Dict: dictWithInherited(node, merged)})
			return nil
		}
		kids, kerr := d.followReference(kidsVal)
		if kerr != nil {
			return kerr
		}
		if kids.Kind != ValArray {
			return newErr(ErrTypeMismatch, 0, "/Kids is not an array")
		}
		for _, kidRef := range kids.Array {
			if kidRef.Kind == ValReference {
				if visited[kidRef.Ref] {
					continue
				}
				visited[kidRef.Ref] = true
			}
			kid, kerr := d.followReference(kidRef)
			if kerr != nil {
				return kerr
			}
			if werr := walk(kid, merged); werr != nil {
				return werr
			}
		}
		return nil
	}
	if werr := walk(root, nil); werr != nil {
		return nil, werr
	}
	return pages, nil
}

// mergeInherited layers a node's own /Resources, /MediaBox, /CropBox and
// /Rotate over its ancestors' values, per the page-tree inheritance
// rules pages rely on for interpreting their content streams.
func mergeInherited(node PdfValue, inherited map[string]PdfValue) map[string]PdfValue {
	merged := make(map[string]PdfValue, len(inherited)+4)
	for k, v := range inherited {
		merged[k] = v
	}
	for _, key := range []string{"Resources", "MediaBox", "CropBox", "Rotate"} {
		if v, ok := node.Get(key); ok {
			merged[key] = v
		}
	}
	return merged
}

func dictWithInherited(node PdfValue, merged map[string]PdfValue) PdfValue {
	dict := node.Dict
	if node.Kind == ValStream {
		dict = node.Stream.Dict
	}
	out := make(map[string]PdfValue, len(dict)+len(merged))
	for k, v := range merged {
		out[k] = v
	}
	for k, v := range dict {
		out[k] = v
	}
	return PdfValue{Kind: ValDictionary, Dict: out}
}

// ContentBytes resolves and decodes the page's /Contents, concatenating
// multiple content streams with a newline the way every PDF consumer
// must (ISO 32000-1 §7.8.2: streams are logically joined, each is
// complete on its own token boundaries).
func (p *Page) ContentBytes() ([]byte, *PDFError) {
	contentsVal, ok := p.Dict.Get("Contents")
	if !ok {
		return nil, nil
	}
	contents, err := p.doc.followReference(contentsVal)
	if err != nil {
		return nil, err
	}

	var streams []PdfValue
	switch contents.Kind {
	case ValStream:
		streams = []PdfValue{contents}
	case ValArray:
		for _, ref := range contents.Array {
			v, rerr := p.doc.followReference(ref)
			if rerr != nil {
				return nil, rerr
			}
			if v.Kind != ValStream {
				return nil, newErr(ErrTypeMismatch, 0, "a /Contents array entry is not a stream")
			}
			streams = append(streams, v)
		}
	default:
		return nil, newErr(ErrTypeMismatch, 0, "/Contents has unexpected kind %d", contents.Kind)
	}

	var parts [][]byte
	for _, s := range streams {
		data, derr := p.doc.decodedStreamBytes(s)
		if derr != nil {
			return nil, derr
		}
		parts = append(parts, data)
	}
	return bytes.Join(parts, []byte("\n")), nil
}

// Tokens decodes the page's content stream into its operator sequence.
func (p *Page) Tokens() ([]ContentToken, *PDFError) {
	data, err := p.ContentBytes()
	if err != nil {
		return nil, err
	}
	return NewContentStreamLexer(data).Tokenize()
}

// Text extracts the page's text objects, each grouping the TextRuns
// shown between one BT/ET pair, in content-stream order.
func (p *Page) Text() ([]TextObject, *PDFError) {
	tokens, err := p.Tokens()
	if err != nil {
		return nil, err
	}
	return NewTextExtractor().Extract(tokens)
}

// PlainText concatenates a page's text runs with no layout inference,
// matching spec.md's "no faithful visual reflow" Non-goal. One newline
// per TextObject separates what each logical line/block painted.
func (p *Page) PlainText() (string, *PDFError) {
	objects, err := p.Text()
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, obj := range objects {
		for _, r := range obj.Runs {
			sb.Write(r.Text)
		}
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}

// TextOn extracts the text objects painted on the page at index (0-based,
// in document order), per the core text_on(page_index) operation.
func (d *Document) TextOn(index int) ([]TextObject, *PDFError) {
	pages, err := d.Pages()
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(pages) {
		return nil, newErr(ErrUnresolvedReference, 0, "page index %d out of range [0,%d)", index, len(pages))
	}
	return pages[index].Text()
}
