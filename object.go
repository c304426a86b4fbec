package pdfio

import (
	"fmt"
	"io"

	"github.com/Lance219/pdfio/internal/types"
)

// Object is one indirect object: a top-level value identified by
// (Number, Generation) that may be referenced from elsewhere in the
// document. The zero value is not meaningful; Objects are created
// through the registry.
type Object struct {
	pdf        *File // weak, non-owning back-reference
	Number     uint32
	Generation uint16

	// Offset is the file offset of the object's "N G obj" header. It
	// is 0 for objects materialized out of a compressed object stream,
	// and momentarily 0 for the write-mode page-tree root between its
	// creation and the deferred write that finalizes it at Close.
	Offset int64

	// StreamOffset is the byte position immediately after the
	// "stream" keyword, or 0 if the object has no stream body. It is
	// only known once the object has been resolved.
	StreamOffset int64

	loaded bool
	value  types.Object
}

// Ref returns the indirect reference pointing at o, suitable for
// embedding as a dictionary or array entry. Ref returns the zero
// Objptr if o is nil.
func (o *Object) Ref() types.Objptr {
	if o == nil {
		return types.Objptr{}
	}
	return types.Objptr{ID: o.Number, Gen: o.Generation}
}

// Value returns the object's value, reading and caching it from the
// backing file on first access. Value returns a null Value if o is
// nil.
func (o *Object) Value() Value {
	if o == nil {
		return Value{}
	}
	data, err := o.resolve()
	if err != nil {
		o.pdf.report(err)
		return Value{}
	}
	return Value{f: o.pdf, data: data}
}

// resolve reads the object's value from the file if it has not
// already been loaded (either on a previous access, or by the xref
// loader / object-stream decoder at load time). Objects with no
// backing Offset already carry their final value.
func (o *Object) resolve() (types.Object, error) {
	if o.loaded {
		return o.value, nil
	}
	if o.Offset == 0 {
		o.loaded = true
		return o.value, nil
	}

	obj, streamOffset, err := o.pdf.readIndirectAt(o.Offset, o.Number, o.Generation)
	if err != nil {
		return nil, err
	}
	o.value = obj
	o.StreamOffset = streamOffset
	o.loaded = true
	return o.value, nil
}

// readIndirectAt parses the "N G obj <value> [stream ...] endobj"
// syntax starting at offset and returns the parsed value (a
// types.Stream if the object has a stream body) and the byte offset
// just past the "stream" keyword's end-of-line, or 0 if there is none.
func (f *File) readIndirectAt(offset int64, wantNumber uint32, wantGeneration uint16) (types.Object, int64, error) {
	t := newTokenizer(io.NewSectionReader(f.file, offset, f.end-offset), offset)

	num, gen, err := t.readIndirectHeader()
	if err != nil {
		return nil, 0, errf(KindXrefFormat, "reading object %d %d: %v", wantNumber, wantGeneration, err)
	}
	if num != wantNumber {
		return nil, 0, errf(KindXrefFormat, "object at offset %d is not numbered %d", offset, wantNumber)
	}

	value, err := t.readValue()
	if err != nil {
		return nil, 0, errf(KindXrefFormat, "object %d: %v", wantNumber, err)
	}

	dict, isDict := value.(types.Dict)
	if !isDict {
		return value, 0, nil
	}

	tok, err := t.readToken()
	if err != nil || tok != keyword("stream") {
		if err == nil {
			t.unreadToken(tok)
		}
		return dict, 0, nil
	}

	switch t.readByte() {
	case '\r':
		if t.readByte() != '\n' {
			t.unreadByte()
		}
	case '\n':
		// ok
	default:
		return nil, 0, errf(KindXrefFormat, "object %d: stream keyword not followed by newline", wantNumber)
	}

	streamOffset := t.readOffset()
	return types.Stream{Hdr: dict, Ptr: types.Objptr{ID: wantNumber, Gen: gen}, Offset: streamOffset}, streamOffset, nil
}

func (o *Object) String() string {
	if o == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%d %d obj", o.Number, o.Generation)
}
