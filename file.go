// Package pdfio implements the core of a PDF document engine: opening
// a PDF byte stream, reconstructing its object graph from the
// cross-reference data at the end of the file, and exposing that
// graph (the object registry, the page list, and the trailer) to
// higher-level consumers.
//
// A PDF is a graph of Values, each with one of the following Kinds:
//
//	Null, Bool, Integer, Real, Name, String, Dict, Array, Stream.
//
// Value's accessors (Int64, Name, Key, Index, ...) return a zero
// result when there is no matching view, which makes traversing a PDF
// possible without writing error checking at every step — at the cost
// of mistakes going unreported, same tradeoff the teacher this engine
// is grounded on makes.
//
// Out of scope: value-level tokenization detail, stream decompression
// filters beyond what xref/object streams need, encryption, fonts,
// and content-stream interpretation. See SPEC_FULL.md.
package pdfio

import (
	"bytes"
	"io"
	"os"
	"strconv"

	"github.com/Lance219/pdfio/internal/types"
)

// Mode is the mode a File was opened in.
type Mode int

const (
	// Read mode: the file was opened with Open.
	Read Mode = iota
	// Write mode: the file was opened with Create.
	Write
)

// File represents one opened PDF document. The File is the sole owner
// of every Object, page-list entry, and parsed value reachable from
// it; their lifetimes end at Close.
type File struct {
	filename string
	version  string
	mode     Mode
	file     *os.File
	end      int64 // size of the backing file

	cfg config

	reg   registry
	pages []*Object

	trailer types.Dict
	root    Value
	info    Value
	encrypt Value
	id      Value

	// rootObj/pagesObj are only set in write mode: the catalog and page
	// tree root that Create sets up so CreatePage has somewhere to
	// attach new pages.
	rootObj  *Object
	pagesObj *Object

	errorReporter ErrorReporter
	errorDatum    any

	// nextOffset tracks where the next object/trailer write lands in
	// write mode, mirroring the original's reliance on ftell().
	nextOffset int64
}

// Name returns f's filename.
func (f *File) Name() string {
	if f == nil {
		return ""
	}
	return f.filename
}

// Version returns f's declared PDF version string (e.g. "1.7").
func (f *File) Version() string {
	if f == nil {
		return ""
	}
	return f.version
}

// ID returns the trailer's ID array, or a null Value if absent.
func (f *File) ID() Value {
	if f == nil {
		return Value{}
	}
	return f.id
}

// FindObject looks up an object by its object number, or returns nil
// if there is none.
func (f *File) FindObject(number uint32) *Object {
	if f == nil {
		return nil
	}
	return f.reg.find(number)
}

// GetObject returns the object at the given insertion-ordinal index,
// starting at 0, or nil if out of range. The ordinal is informational
// only.
func (f *File) GetObject(index int) *Object {
	if f == nil {
		return nil
	}
	return f.reg.get(index)
}

// NumObjects returns the number of objects in the registry.
func (f *File) NumObjects() int {
	if f == nil {
		return 0
	}
	return f.reg.count()
}

// GetPage returns the page at index (0-based), or nil if out of range.
func (f *File) GetPage(index int) *Object {
	if f == nil || index < 0 || index >= len(f.pages) {
		return nil
	}
	return f.pages[index]
}

// NumPages returns the number of terminal pages found under the
// document's page tree.
func (f *File) NumPages() int {
	if f == nil {
		return 0
	}
	return len(f.pages)
}

// Root returns the document catalog.
func (f *File) Root() Value { return f.root }

// Info returns the document information dictionary, or a null Value
// if absent.
func (f *File) Info() Value { return f.info }

// Encrypt returns the trailer's Encrypt entry as an opaque, undecoded
// Value (encryption is out of scope for this engine; see SPEC_FULL.md).
func (f *File) Encrypt() Value { return f.encrypt }

// resolve turns a raw types.Object (possibly a types.Objptr) into a
// Value, looking up indirect references against the registry that the
// xref loader already populated.
func (f *File) resolve(x types.Object) Value {
	ptr, ok := x.(types.Objptr)
	if !ok {
		return Value{f: f, data: x}
	}
	obj := f.reg.find(ptr.ID)
	if obj == nil {
		return Value{}
	}
	data, err := obj.resolve()
	if err != nil {
		f.report(err)
		return Value{}
	}
	return Value{f: f, data: data, obj: obj}
}

// Open opens filename for reading. Close should be called when done
// with the returned File. If Open fails, it reports the error, closes
// the partly opened File itself, and returns a nil *File.
func Open(filename string, errorReporter ErrorReporter, errorDatum any, opts ...OpenOption) (*File, error) {
	if errorReporter == nil {
		errorReporter = DefaultErrorReporter
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	osFile, err := os.Open(filename)
	if err != nil {
		e := errf(KindIO, "unable to open file - %v", err)
		errorReporter(nil, e.Error(), errorDatum)
		return nil, e
	}
	fi, err := osFile.Stat()
	if err != nil {
		osFile.Close()
		e := errf(KindIO, "unable to stat file - %v", err)
		errorReporter(nil, e.Error(), errorDatum)
		return nil, e
	}

	f := &File{
		filename:      filename,
		mode:          Read,
		file:          osFile,
		end:           fi.Size(),
		cfg:           cfg,
		errorReporter: errorReporter,
		errorDatum:    errorDatum,
	}

	if err := f.open(); err != nil {
		f.report(err)
		f.Close()
		return nil, err
	}
	return f, nil
}

func (f *File) open() error {
	line := make([]byte, 1024)
	n, err := f.file.ReadAt(line, 0)
	if err != nil && err != io.EOF {
		return errf(KindIO, "unable to read header - %v", err)
	}
	line = line[:n]
	if i := bytes.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	trimmed := bytes.TrimRight(line, "\r")

	if len(trimmed) < 8 || !(bytes.HasPrefix(trimmed, []byte("%PDF-1.")) || bytes.HasPrefix(trimmed, []byte("%PDF-2."))) || trimmed[7] < '0' || trimmed[7] > '9' {
		return errf(KindHeader, "bad header %q", string(trimmed))
	}
	f.version = string(trimmed[5:])

	xrefOffset, err := f.findStartXref()
	if err != nil {
		return err
	}

	return f.loadXref(xrefOffset)
}

// findStartXref performs the tail scan described in spec.md §4.2 step
// 1: seek cfg.tailScanWindow bytes before EOF, locate "startxref", and
// parse the integer that follows it.
func (f *File) findStartXref() (int64, error) {
	window := f.cfg.tailScanWindow
	if window > f.end {
		window = f.end
	}
	buf := make([]byte, window)
	if _, err := f.file.ReadAt(buf, f.end-window); err != nil && err != io.EOF {
		return 0, errf(KindIO, "unable to read end of file - %v", err)
	}

	i := bytes.LastIndex(buf, []byte("startxref"))
	if i < 0 {
		return 0, errf(KindXrefLocate, "unable to find start of xref table")
	}

	rest := bytes.TrimLeft(buf[i+len("startxref"):], " \t\r\n")
	end := 0
	for end < len(rest) && (rest[end] == '-' || (rest[end] >= '0' && rest[end] <= '9')) {
		end++
	}
	off, err := strconv.ParseInt(string(rest[:end]), 10, 64)
	if err != nil || off < 0 {
		return 0, errf(KindXrefLocate, "unable to find start of xref table")
	}
	return off, nil
}

// Close closes f and releases every resource it owns. It is always
// best-effort for the release half of its job: even if f failed to
// open fully, Close must not itself fail to tear down what was
// allocated. The returned bool is the conjunction of the write-mode
// trailer commit (if any) and the backing file's close succeeding.
func (f *File) Close() bool {
	if f == nil {
		return true
	}
	ok := true
	if f.mode == Write {
		if err := f.writeTrailer(); err != nil {
			f.report(err)
			ok = false
		}
	}
	if f.file != nil {
		if err := f.file.Close(); err != nil {
			ok = false
		}
	}
	return ok
}
