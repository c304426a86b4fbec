package pdfio

import (
	"path/filepath"
	"testing"

	"github.com/Lance219/pdfio/internal/types"
)

func TestCreateWriteCloseReopenRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.pdf")

	f, err := Create(path, noopReporter, nil, WithVersion("1.6"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	page1, err := f.CreatePage(types.Dict{types.Name("Rotate"): int64(0)})
	if err != nil {
		t.Fatalf("CreatePage: %v", err)
	}
	page2, err := f.CreatePage(types.Dict{
		types.Name("Rotate"): int64(90),
		types.Name("Label"):  "Page (two) \\ with \"quotes\" and a\ttab",
	})
	if err != nil {
		t.Fatalf("CreatePage: %v", err)
	}
	if page1.Number == page2.Number {
		t.Fatalf("CreatePage assigned the same object number twice")
	}

	if !f.Close() {
		t.Fatalf("Close() = false, want true")
	}

	reopened, err := Open(path, noopReporter, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	if got := reopened.Version(); got != "1.6" {
		t.Errorf("Version() after round trip = %q, want %q", got, "1.6")
	}
	if got := reopened.NumPages(); got != 2 {
		t.Errorf("NumPages() after round trip = %d, want 2", got)
	}
	if got := reopened.Root().Key("Type").Name(); got != "Catalog" {
		t.Errorf("Root Type after round trip = %q, want Catalog", got)
	}
	if got := reopened.GetPage(1).Value().Key("Rotate").Int64(); got != 90 {
		t.Errorf("second page Rotate after round trip = %d, want 90", got)
	}
	wantLabel := "Page (two) \\ with \"quotes\" and a\ttab"
	if got := reopened.GetPage(1).Value().Key("Label").Text(); got != wantLabel {
		t.Errorf("second page Label after round trip = %q, want %q", got, wantLabel)
	}
}

func TestCreateObjectRejectedOutsideWriteMode(t *testing.T) {
	b := newPDFBuilder("1.7")
	b.object(1, "<< /Type /Catalog /Pages 2 0 R >>")
	b.object(2, "<< /Type /Pages /Kids [] /Count 0 >>")
	data := b.finish(2, 1)
	path := writeTempPDF(t, data)

	f, err := Open(path, noopReporter, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()

	if _, err := f.CreateObject(types.Dict{}); err == nil {
		t.Fatalf("CreateObject succeeded on a file opened for reading")
	}
}
