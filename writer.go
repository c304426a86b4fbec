// File Lifecycle write path: creating a new PDF, appending objects to
// it, and committing a classical trailer at Close.
//
// Grounded on original_source/pdfio-file.c's pdfioFileCreate and
// CreateObject; write_trailer and pdfioFileCreatePage there are left
// as "// TODO: Implement me" stubs, but spec.md's round-trip invariant
// (close, then reopen, and see the same version and object graph)
// requires both to actually write bytes, so they are implemented here
// rather than carried over as stubs (see DESIGN.md's Open Question
// decisions).

package pdfio

import (
	"bytes"
	"fmt"
	"os"

	"github.com/Lance219/pdfio/internal/types"
)

// Create creates filename for writing, truncating it if it already
// exists, writes the PDF header plus a bare catalog, and sets up a page
// tree root (written at Close) so CreatePage has somewhere to attach
// pages. Close must be called to commit the trailer.
func Create(filename string, errorReporter ErrorReporter, errorDatum any, opts ...CreateOption) (*File, error) {
	if errorReporter == nil {
		errorReporter = DefaultErrorReporter
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	osFile, err := os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0666)
	if err != nil {
		e := errf(KindIO, "unable to create file - %v", err)
		errorReporter(nil, e.Error(), errorDatum)
		return nil, e
	}

	f := &File{
		filename:      filename,
		version:       cfg.version,
		mode:          Write,
		file:          osFile,
		cfg:           cfg,
		errorReporter: errorReporter,
		errorDatum:    errorDatum,
	}

	if err := f.writeHeader(); err != nil {
		f.report(err)
		f.Close()
		return nil, err
	}

	// The page-tree root's body is not written here: CreatePage mutates
	// its Kids/Count in place as pages are added, and those pages are
	// not yet known. Its write is deferred to writeTrailer, once its
	// final content is settled.
	pagesObj := f.reg.add(f, uint32(f.reg.count()+1), 0, 0)
	pagesObj.value = types.Dict{
		types.Name("Type"):  types.Name("Pages"),
		types.Name("Kids"):  types.Array{},
		types.Name("Count"): int64(0),
	}
	pagesObj.loaded = true

	catalogObj, err := f.CreateObject(types.Dict{
		types.Name("Type"):  types.Name("Catalog"),
		types.Name("Pages"): pagesObj.Ref(),
	})
	if err != nil {
		f.report(err)
		f.Close()
		return nil, err
	}

	f.pagesObj = pagesObj
	f.rootObj = catalogObj
	return f, nil
}

func (f *File) writeHeader() error {
	header := fmt.Sprintf("%%PDF-%s\n%%\xE2\xE3\xCF\xD3\n", f.cfg.version)
	if _, err := f.file.WriteString(header); err != nil {
		return errf(KindIO, "unable to write header - %v", err)
	}
	f.nextOffset = int64(len(header))
	return nil
}

// CreateObject writes dict as a new top-level indirect object at the
// file's current write position and registers it. f must have been
// opened with Create.
func (f *File) CreateObject(dict types.Dict) (*Object, error) {
	if f.mode != Write {
		return nil, errf(KindIO, "CreateObject: file not opened for writing")
	}

	number := uint32(f.reg.count() + 1)
	obj := f.reg.add(f, number, 0, 0)
	obj.value = dict
	obj.loaded = true

	if err := f.writeObjectBody(obj); err != nil {
		return nil, err
	}
	return obj, nil
}

// writeObjectBody serializes obj's current in-memory value as
// "N G obj ... endobj" at the file's current write position and
// records that position as obj.Offset. Called immediately by
// CreateObject, and deferred until writeTrailer for objects (the
// page-tree root) whose content keeps changing after creation.
func (f *File) writeObjectBody(obj *Object) error {
	obj.Offset = f.nextOffset

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%d %d obj\n%s\nendobj\n", obj.Number, obj.Generation, objfmt(obj.value))
	if _, err := f.file.WriteString(buf.String()); err != nil {
		return errf(KindIO, "unable to write object %d: %v", obj.Number, err)
	}
	f.nextOffset += int64(buf.Len())
	return nil
}

// CreatePage creates a new page with the given dictionary (Type and
// Parent are set or overwritten by CreatePage itself) and appends it
// to the document's page tree.
func (f *File) CreatePage(dict types.Dict) (*Object, error) {
	if f.mode != Write {
		return nil, errf(KindIO, "CreatePage: file not opened for writing")
	}
	if f.pagesObj == nil {
		return nil, errf(KindPageTree, "CreatePage: document has no page tree")
	}
	if dict == nil {
		dict = types.Dict{}
	}
	dict[types.Name("Type")] = types.Name("Page")
	dict[types.Name("Parent")] = f.pagesObj.Ref()

	page, err := f.CreateObject(dict)
	if err != nil {
		return nil, err
	}

	pagesDict, _ := f.pagesObj.value.(types.Dict)
	kids, _ := pagesDict[types.Name("Kids")].(types.Array)
	kids = append(kids, page.Ref())
	pagesDict[types.Name("Kids")] = kids
	pagesDict[types.Name("Count")] = int64(len(kids))

	f.pages = append(f.pages, page)
	return page, nil
}

// writeTrailer commits a classical xref table and trailer dictionary
// covering every object created since Create, then the startxref tail.
// It is a no-op for files opened with Open.
func (f *File) writeTrailer() error {
	if f.mode != Write {
		return nil
	}

	if f.pagesObj != nil {
		if err := f.writeObjectBody(f.pagesObj); err != nil {
			return err
		}
	}

	xrefOffset := f.nextOffset
	count := f.reg.count()

	var buf bytes.Buffer
	buf.WriteString("xref\n")
	fmt.Fprintf(&buf, "0 %d\n", count+1)
	buf.WriteString("0000000000 65535 f \n")
	for i := 0; i < count; i++ {
		obj := f.reg.get(i)
		fmt.Fprintf(&buf, "%010d %05d n \n", obj.Offset, obj.Generation)
	}

	trailer := types.Dict{types.Name("Size"): int64(count + 1)}
	if f.rootObj != nil {
		trailer[types.Name("Root")] = f.rootObj.Ref()
	}

	buf.WriteString("trailer\n")
	buf.WriteString(objfmt(trailer))
	buf.WriteString("\n")
	fmt.Fprintf(&buf, "startxref\n%d\n%%%%EOF\n", xrefOffset)

	if _, err := f.file.WriteString(buf.String()); err != nil {
		return errf(KindIO, "unable to write trailer: %v", err)
	}
	f.nextOffset += int64(buf.Len())
	return nil
}
