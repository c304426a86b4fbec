package pdfio

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/Lance219/pdfio/internal/encoding"
	"github.com/Lance219/pdfio/internal/types"
)

// A Value is a single PDF value: a null, bool, integer, real, name,
// string, array, dictionary, or stream. The zero Value is a PDF null
// (Kind() == NullKind, IsNull() == true).
//
// Unlike the teacher's lazily-resolving Value (which walks a flat
// xref slice on every Key/Index call), pdfio's Value resolves indirect
// references against the already-populated object registry, since the
// xref loader (spec.md §4.2) seeds every placeholder up front rather
// than on demand.
type Value struct {
	f    *File
	data types.Object
	obj  *Object // the indirect object this value was resolved from, if any
}

// owner returns the Object v was resolved from via an indirect
// reference, or nil if v is a direct (inline) value.
func (v Value) owner() *Object { return v.obj }

// ValueKind specifies the kind of data underlying a Value.
type ValueKind int

const (
	NullKind ValueKind = iota
	BoolKind
	IntegerKind
	RealKind
	StringKind
	NameKind
	DictKind
	ArrayKind
	StreamKind
)

// IsNull reports whether the value is a PDF null.
func (v Value) IsNull() bool { return v.data == nil }

// Kind reports the kind of value underlying v.
func (v Value) Kind() ValueKind {
	switch v.data.(type) {
	case bool:
		return BoolKind
	case int64:
		return IntegerKind
	case float64:
		return RealKind
	case string:
		return StringKind
	case types.Name:
		return NameKind
	case types.Dict:
		return DictKind
	case types.Array:
		return ArrayKind
	case types.Stream:
		return StreamKind
	default:
		return NullKind
	}
}

// Bool returns v's boolean value, or false if v.Kind() != BoolKind.
func (v Value) Bool() bool {
	x, _ := v.data.(bool)
	return x
}

// Int64 returns v's integer value, or 0 if v.Kind() != IntegerKind.
func (v Value) Int64() int64 {
	x, _ := v.data.(int64)
	return x
}

// Float64 returns v's value as a float64, converting from an integer
// if necessary, or 0 if v holds neither.
func (v Value) Float64() float64 {
	switch x := v.data.(type) {
	case float64:
		return x
	case int64:
		return float64(x)
	default:
		return 0
	}
}

// RawString returns v's raw string bytes, or "" if v.Kind() != StringKind.
func (v Value) RawString() string {
	x, _ := v.data.(string)
	return x
}

// Text returns v's string value interpreted as a PDF "text string"
// (PDFDocEncoding, or UTF-16BE with a leading BOM) and converted to
// UTF-8. Returns "" if v.Kind() != StringKind.
func (v Value) Text() string {
	x, ok := v.data.(string)
	if !ok {
		return ""
	}
	if encoding.IsUTF16(x) {
		return encoding.UTF16Decode(x[2:])
	}
	return encoding.PDFDocDecode(x)
}

// Name returns v's name value without the leading slash, or "" if
// v.Kind() != NameKind.
func (v Value) Name() string {
	x, _ := v.data.(types.Name)
	return string(x)
}

// dictOf returns the underlying dictionary for a Dict or Stream value.
func (v Value) dictOf() (types.Dict, bool) {
	if d, ok := v.data.(types.Dict); ok {
		return d, true
	}
	if s, ok := v.data.(types.Stream); ok {
		return s.Hdr, true
	}
	return nil, false
}

// Key returns the value associated with name in the dictionary v (or
// a stream's header dictionary). Returns a null Value if v is not a
// dict/stream or the key is absent.
func (v Value) Key(name string) Value {
	d, ok := v.dictOf()
	if !ok {
		return Value{}
	}
	return v.f.resolve(d[types.Name(name)])
}

// Keys returns the sorted list of keys in the dictionary v (or a
// stream's header dictionary). Returns nil if v is not a dict/stream.
func (v Value) Keys() []string {
	d, ok := v.dictOf()
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	return keys
}

// Index returns the i'th element of the array v, or a null Value if
// v.Kind() != ArrayKind or i is out of range.
func (v Value) Index(i int) Value {
	x, ok := v.data.(types.Array)
	if !ok || i < 0 || i >= len(x) {
		return Value{}
	}
	return v.f.resolve(x[i])
}

// Len returns the length of the array v, or 0 if v.Kind() != ArrayKind.
func (v Value) Len() int {
	x, _ := v.data.(types.Array)
	return len(x)
}

// String returns a debug representation of v.
func (v Value) String() string { return objfmt(v.data) }

// pdfLiteralString renders s as a PDF literal string: "(...)" with a
// backslash escape for '(', ')', and '\\', the named escapes \n, \r
// and \t for newline, carriage return and tab, and an octal escape for
// any other byte outside the printable ASCII range, so the tokenizer's
// readLiteralString can read it back unchanged.
func pdfLiteralString(s string) string {
	var buf bytes.Buffer
	buf.WriteByte('(')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '(', ')', '\\':
			buf.WriteByte('\\')
			buf.WriteByte(c)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			if c < 0x20 || c >= 0x7f {
				fmt.Fprintf(&buf, `\%03o`, c)
			} else {
				buf.WriteByte(c)
			}
		}
	}
	buf.WriteByte(')')
	return buf.String()
}

func objfmt(x any) string {
	switch x := x.(type) {
	case nil:
		return "null"
	case string:
		return pdfLiteralString(x)
	case types.Name:
		return "/" + string(x)
	case types.Dict:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, string(k))
		}
		sort.Strings(keys)
		var buf bytes.Buffer
		buf.WriteString("<<")
		for i, k := range keys {
			if i > 0 {
				buf.WriteString(" ")
			}
			fmt.Fprintf(&buf, "/%s %s", k, objfmt(x[types.Name(k)]))
		}
		buf.WriteString(">>")
		return buf.String()
	case types.Array:
		var buf bytes.Buffer
		buf.WriteString("[")
		for i, elem := range x {
			if i > 0 {
				buf.WriteString(" ")
			}
			buf.WriteString(objfmt(elem))
		}
		buf.WriteString("]")
		return buf.String()
	case types.Stream:
		return fmt.Sprintf("%s@%d", objfmt(x.Hdr), x.Offset)
	case types.Objptr:
		return fmt.Sprintf("%d %d R", x.ID, x.Gen)
	default:
		return fmt.Sprint(x)
	}
}
