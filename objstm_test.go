package pdfio

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"testing"
)

func TestOpenCompressedObjectStream(t *testing.T) {
	b := newPDFBuilder("1.7")
	b.object(1, "<< /Type /Catalog /Pages 2 0 R >>")
	b.object(2, "<< /Type /Pages /Kids [3 0 R 4 0 R] /Count 2 >>")

	objStmOffset := int64(b.buf.Len())

	raw := "3 0 4 0 << /Type /Page /Parent 2 0 R >> << /Type /Page /Parent 2 0 R /Rotate 90 >>"
	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	if _, err := zw.Write([]byte(raw)); err != nil {
		t.Fatalf("zlib write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zlib close: %v", err)
	}

	fmt.Fprintf(&b.buf, "5 0 obj\n<< /Type /ObjStm /N 2 /First 8 /Filter /FlateDecode /Length %d >>\nstream\n", compressed.Len())
	b.buf.Write(compressed.Bytes())
	b.buf.WriteString("\nendstream\nendobj\n")

	xrefObjOffset := int64(b.buf.Len())
	var xbody bytes.Buffer
	xbody.Write([]byte{0}) // object 0, the free-list head
	xbody.Write(beBytes(0, 2))
	xbody.Write(beBytes(255, 1))
	xbody.Write([]byte{1})
	xbody.Write(beBytes(uint64(b.offsets[1]), 2))
	xbody.Write(beBytes(0, 1))
	xbody.Write([]byte{1})
	xbody.Write(beBytes(uint64(b.offsets[2]), 2))
	xbody.Write(beBytes(0, 1))
	xbody.Write([]byte{2}) // object 3, compressed in objStm 5
	xbody.Write(beBytes(5, 2))
	xbody.Write(beBytes(0, 1))
	xbody.Write([]byte{2}) // object 4, compressed in objStm 5
	xbody.Write(beBytes(5, 2))
	xbody.Write(beBytes(1, 1))
	xbody.Write([]byte{1}) // object 5, the object stream itself
	xbody.Write(beBytes(uint64(objStmOffset), 2))
	xbody.Write(beBytes(0, 1))
	xbody.Write([]byte{1}) // object 6, this xref stream
	xbody.Write(beBytes(uint64(xrefObjOffset), 2))
	xbody.Write(beBytes(0, 1))

	fmt.Fprintf(&b.buf, "6 0 obj\n<< /Type /XRef /Size 7 /W [1 2 1] /Root 1 0 R /Length %d >>\nstream\n", xbody.Len())
	b.buf.Write(xbody.Bytes())
	b.buf.WriteString("\nendstream\nendobj\n")
	fmt.Fprintf(&b.buf, "startxref\n%d\n%%%%EOF\n", xrefObjOffset)

	path := writeTempPDF(t, b.buf.Bytes())
	f, err := Open(path, noopReporter, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()

	if got := f.NumPages(); got != 2 {
		t.Errorf("NumPages() = %d, want 2", got)
	}
	page2 := f.GetPage(1)
	if page2 == nil {
		t.Fatalf("GetPage(1) = nil")
	}
	if got := page2.Value().Key("Rotate").Int64(); got != 90 {
		t.Errorf("second page Rotate = %d, want 90 (decoded from the compressed object stream)", got)
	}
}

// TestOpenCompressedObjectStreamExceedsMaxObjects builds an object
// stream whose header carries more pairs than WithMaxObjectStreamSize
// allows, and expects a hard error rather than silent truncation.
func TestOpenCompressedObjectStreamExceedsMaxObjects(t *testing.T) {
	b := newPDFBuilder("1.7")
	b.object(1, "<< /Type /Catalog /Pages 2 0 R >>")
	b.object(2, "<< /Type /Pages /Kids [3 0 R 4 0 R 5 0 R] /Count 3 >>")

	objStmOffset := int64(b.buf.Len())

	raw := "3 0 4 24 5 48 << /Type /Page /Parent 2 0 R >> << /Type /Page /Parent 2 0 R >> << /Type /Page /Parent 2 0 R >>"
	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	if _, err := zw.Write([]byte(raw)); err != nil {
		t.Fatalf("zlib write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zlib close: %v", err)
	}

	fmt.Fprintf(&b.buf, "6 0 obj\n<< /Type /ObjStm /N 3 /First 19 /Filter /FlateDecode /Length %d >>\nstream\n", compressed.Len())
	b.buf.Write(compressed.Bytes())
	b.buf.WriteString("\nendstream\nendobj\n")

	xrefObjOffset := int64(b.buf.Len())
	var xbody bytes.Buffer
	xbody.Write([]byte{0})
	xbody.Write(beBytes(0, 2))
	xbody.Write(beBytes(255, 1))
	xbody.Write([]byte{1})
	xbody.Write(beBytes(uint64(b.offsets[1]), 2))
	xbody.Write(beBytes(0, 1))
	xbody.Write([]byte{1})
	xbody.Write(beBytes(uint64(b.offsets[2]), 2))
	xbody.Write(beBytes(0, 1))
	for i := 0; i < 3; i++ { // objects 3, 4, 5: all compressed in objStm 6
		xbody.Write([]byte{2})
		xbody.Write(beBytes(6, 2))
		xbody.Write(beBytes(uint64(i), 1))
	}
	xbody.Write([]byte{1}) // object 6, the object stream itself
	xbody.Write(beBytes(uint64(objStmOffset), 2))
	xbody.Write(beBytes(0, 1))
	xbody.Write([]byte{1}) // object 7, this xref stream
	xbody.Write(beBytes(uint64(xrefObjOffset), 2))
	xbody.Write(beBytes(0, 1))

	fmt.Fprintf(&b.buf, "7 0 obj\n<< /Type /XRef /Size 8 /W [1 2 1] /Root 1 0 R /Length %d >>\nstream\n", xbody.Len())
	b.buf.Write(xbody.Bytes())
	b.buf.WriteString("\nendstream\nendobj\n")
	fmt.Fprintf(&b.buf, "startxref\n%d\n%%%%EOF\n", xrefObjOffset)

	path := writeTempPDF(t, b.buf.Bytes())
	f, err := Open(path, noopReporter, nil, WithMaxObjectStreamSize(2))
	if err == nil {
		f.Close()
		t.Fatalf("Open succeeded on an object stream with more members than WithMaxObjectStreamSize allows")
	}
}
