// Copyright 2014 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package encoding decodes the two text-string encodings PDF uses for
// string values outside of content streams (trailer Info entries, ID
// entries): PDFDocEncoding, which agrees with Latin-1 for the byte
// range this engine needs, and big-endian UTF-16 with a leading BOM.
package encoding

import (
	"unicode/utf16"

	"golang.org/x/text/unicode/norm"
)

// IsUTF16 reports whether s looks like a PDF "text string" encoded as
// UTF-16BE, i.e. it begins with the 0xFE 0xFF byte-order mark.
func IsUTF16(s string) bool {
	return len(s) >= 2 && s[0] == 0xfe && s[1] == 0xff && len(s)%2 == 0
}

// UTF16Decode decodes s (without its leading BOM) as big-endian UTF-16
// and normalizes the result.
func UTF16Decode(s string) string {
	if len(s)%2 != 0 {
		return ""
	}
	u := make([]uint16, len(s)/2)
	for i := range u {
		u[i] = uint16(s[2*i])<<8 | uint16(s[2*i+1])
	}
	return norm.NFKC.String(string(utf16.Decode(u)))
}

// PDFDocDecode decodes s from PDFDocEncoding. Within the byte range
// pdfio's callers actually see (trailer strings), PDFDocEncoding
// agrees with Latin-1, so decoding is a direct rune widen.
func PDFDocDecode(s string) string {
	r := make([]rune, len(s))
	for i := 0; i < len(s); i++ {
		r[i] = rune(s[i])
	}
	return string(r)
}
