// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xtract

import "encoding/json"

// Meta is the document's Info-dictionary metadata. XMP metadata streams,
// digital-signature and access-permission fields the teacher's original
// Meta/MetadataFull also carried are dropped here: encryption and
// signatures are explicit Non-goals, and this core has no XML/XMP
// parsing dependency to ground an XMP reader on.
type Meta struct {
	Title        string `json:"title,omitempty"`
	Author       string `json:"author,omitempty"`
	Subject      string `json:"subject,omitempty"`
	Keywords     string `json:"keywords,omitempty"`
	Creator      string `json:"creator,omitempty"`
	Producer     string `json:"producer,omitempty"`
	CreationDate string `json:"creationDate,omitempty"`
	ModDate      string `json:"modDate,omitempty"`
}

// Metadata resolves the trailer's /Info dictionary into a Meta value.
// A document with no /Info entry returns a zero Meta, not an error —
// Info is optional per the format.
func (d *Document) Metadata() (Meta, *PDFError) {
	var m Meta
	infoVal, ok := d.trailer["Info"]
	if !ok {
		return m, nil
	}
	info, err := d.followReference(infoVal)
	if err != nil {
		return m, err
	}
	if info.Kind != ValDictionary {
		return m, nil
	}
	m.Title = infoString(info, "Title")
	m.Author = infoString(info, "Author")
	m.Subject = infoString(info, "Subject")
	m.Keywords = infoString(info, "Keywords")
	m.Creator = infoString(info, "Creator")
	m.Producer = infoString(info, "Producer")
	m.CreationDate = infoString(info, "CreationDate")
	m.ModDate = infoString(info, "ModDate")
	return m, nil
}

func infoString(info PdfValue, key string) string {
	v, ok := info.Get(key)
	if !ok || v.Kind != ValString {
		return ""
	}
	return string(v.Str)
}

// MetadataJSON marshals a Meta value to JSON, for callers building a
// quick inspection tool atop the core without their own model.
func MetadataJSON(m Meta) ([]byte, error) {
	return json.Marshal(m)
}
