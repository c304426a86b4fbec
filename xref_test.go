package pdfio

import (
	"bytes"
	"fmt"
	"testing"
)

// beBytes encodes v as n big-endian bytes.
func beBytes(v uint64, n int) []byte {
	out := make([]byte, n)
	for i := n - 1; i >= 0; i-- {
		out[i] = byte(v)
		v >>= 8
	}
	return out
}

// TestOpenXrefStream builds a file whose cross-reference table is a
// stream (not a classical table), with an uncompressed (no /Filter)
// body so the test doesn't also need to exercise FlateDecode.
func TestOpenXrefStream(t *testing.T) {
	b := newPDFBuilder("1.7")
	b.object(1, "<< /Type /Catalog /Pages 2 0 R >>")
	b.object(2, "<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	b.object(3, "<< /Type /Page /Parent 2 0 R >>")

	xrefObjOffset := int64(b.buf.Len())

	var body bytes.Buffer
	body.Write([]byte{0})
	body.Write(beBytes(0, 2))
	body.Write(beBytes(65535, 1))
	for _, n := range []int{1, 2, 3} {
		body.Write([]byte{1})
		body.Write(beBytes(uint64(b.offsets[n]), 2))
		body.Write(beBytes(0, 1))
	}
	body.Write([]byte{1})
	body.Write(beBytes(uint64(xrefObjOffset), 2))
	body.Write(beBytes(0, 1))

	fmt.Fprintf(&b.buf, "4 0 obj\n<< /Type /XRef /Size 5 /W [1 2 1] /Root 1 0 R /Length %d >>\nstream\n", body.Len())
	b.buf.Write(body.Bytes())
	b.buf.WriteString("\nendstream\nendobj\n")
	fmt.Fprintf(&b.buf, "startxref\n%d\n%%%%EOF\n", xrefObjOffset)

	path := writeTempPDF(t, b.buf.Bytes())
	f, err := Open(path, noopReporter, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()

	if got := f.NumPages(); got != 1 {
		t.Errorf("NumPages() = %d, want 1", got)
	}
	if got := f.Root().Key("Type").Name(); got != "Catalog" {
		t.Errorf("Root Type = %q, want Catalog", got)
	}
}

func TestOpenXrefStreamRejectsMultiSegmentIndex(t *testing.T) {
	b := newPDFBuilder("1.7")
	b.object(1, "<< /Type /Catalog /Pages 2 0 R >>")
	b.object(2, "<< /Type /Pages /Kids [] /Count 0 >>")

	xrefObjOffset := int64(b.buf.Len())
	var body bytes.Buffer
	for _, n := range []int{1, 2} {
		body.Write([]byte{1})
		body.Write(beBytes(uint64(b.offsets[n]), 2))
		body.Write(beBytes(0, 1))
	}

	fmt.Fprintf(&b.buf, "3 0 obj\n<< /Type /XRef /Size 3 /W [1 2 1] /Index [1 1 2 1] /Root 1 0 R /Length %d >>\nstream\n", body.Len())
	b.buf.Write(body.Bytes())
	b.buf.WriteString("\nendstream\nendobj\n")
	fmt.Fprintf(&b.buf, "startxref\n%d\n%%%%EOF\n", xrefObjOffset)

	path := writeTempPDF(t, b.buf.Bytes())
	f, err := Open(path, noopReporter, nil)
	if err == nil {
		f.Close()
		t.Fatalf("Open succeeded on a cross-reference stream with a multi-segment Index")
	}
}

func TestOpenXrefStreamRejectsInvalidW(t *testing.T) {
	b := newPDFBuilder("1.7")
	b.object(1, "<< /Type /Catalog /Pages 2 0 R >>")

	xrefObjOffset := int64(b.buf.Len())
	fmt.Fprintf(&b.buf, "2 0 obj\n<< /Type /XRef /Size 2 /W [1 0 1] /Root 1 0 R /Length 0 >>\nstream\n\nendstream\nendobj\n")
	fmt.Fprintf(&b.buf, "startxref\n%d\n%%%%EOF\n", xrefObjOffset)

	path := writeTempPDF(t, b.buf.Bytes())
	f, err := Open(path, noopReporter, nil)
	if err == nil {
		f.Close()
		t.Fatalf("Open succeeded on a cross-reference stream with W[1] = 0")
	}
}
