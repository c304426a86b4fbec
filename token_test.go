package pdfio

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Lance219/pdfio/internal/types"
)

func readAllValue(t *testing.T, src string) types.Object {
	t.Helper()
	tok := newTokenizer(strings.NewReader(src), 0)
	v, err := tok.readValue()
	if err != nil {
		t.Fatalf("readValue(%q): %v", src, err)
	}
	return v
}

func TestReadValueScalars(t *testing.T) {
	testCases := map[string]struct {
		input string
		want  types.Object
	}{
		"null":          {"null", nil},
		"true":          {"true", true},
		"false":         {"false", false},
		"integer":       {"123", int64(123)},
		"negative int":  {"-17", int64(-17)},
		"real":          {"3.14", 3.14},
		"name":          {"/Type", types.Name("Type")},
		"escaped name":  {"/A#42", types.Name("AB")},
		"literal string": {"(hello)", "hello"},
		"hex string":    {"<68656C6C6F>", "hello"},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			got := readAllValue(t, tc.input)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("readValue(%q) mismatch:\n%s", tc.input, diff)
			}
		})
	}
}

func TestReadValueIndirectReference(t *testing.T) {
	got := readAllValue(t, "12 0 R")
	want := types.Objptr{ID: 12, Gen: 0}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch:\n%s", diff)
	}
}

func TestReadValueArray(t *testing.T) {
	got := readAllValue(t, "[1 2 /Three (four)]")
	want := types.Array{int64(1), int64(2), types.Name("Three"), "four"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch:\n%s", diff)
	}
}

func TestReadValueDict(t *testing.T) {
	got := readAllValue(t, "<< /Type /Page /Parent 3 0 R >>")
	want := types.Dict{
		types.Name("Type"):   types.Name("Page"),
		types.Name("Parent"): types.Objptr{ID: 3, Gen: 0},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch:\n%s", diff)
	}
}

func TestReadValueDoesNotConsumeObjHeader(t *testing.T) {
	// readValue must not treat "N G obj" as an indirect reference: that
	// syntax is only legal at the top of a top-level indirect object.
	tok := newTokenizer(strings.NewReader("12 0 obj"), 0)
	got, err := tok.readValue()
	if err != nil {
		t.Fatalf("readValue: %v", err)
	}
	if got != int64(12) {
		t.Fatalf("readValue() = %v, want int64(12)", got)
	}
	next, err := tok.readToken()
	if err != nil || next != int64(0) {
		t.Fatalf("next token = %v, %v; want int64(0)", next, err)
	}
}

func TestReadIndirectHeader(t *testing.T) {
	tok := newTokenizer(strings.NewReader("7 0 obj"), 0)
	num, gen, err := tok.readIndirectHeader()
	if err != nil {
		t.Fatalf("readIndirectHeader: %v", err)
	}
	if num != 7 || gen != 0 {
		t.Errorf("readIndirectHeader() = (%d, %d), want (7, 0)", num, gen)
	}
}

func TestReadIndirectHeaderRejectsBadGeneration(t *testing.T) {
	tok := newTokenizer(strings.NewReader("7 99999999 obj"), 0)
	if _, _, err := tok.readIndirectHeader(); err == nil {
		t.Fatalf("readIndirectHeader accepted an out-of-range generation")
	}
}
