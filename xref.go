// Cross-reference loading: starting from the offset that file.go's
// findStartXref reads from the file tail, walks the Prev chain,
// dispatches between classical and stream-form xref, and seeds
// the registry with placeholders that point to file offsets.
//
// Grounded primarily on original_source/pdfio-file.c's load_xref (the
// hard-error messages and boundary checks come from there) and
// ScriptRock-pdf/read.go's readXrefTable/readXrefStream for Go-idiomatic
// buffer plumbing.

package pdfio

import (
	"io"
	"strconv"

	"github.com/Lance219/pdfio/internal/types"
)

func (f *File) loadXref(offset int64) error {
	var firstTrailer types.Dict
	seen := map[int64]bool{}

	for {
		if seen[offset] {
			return errf(KindXrefFormat, "xref Prev chain loops back to offset %d", offset)
		}
		seen[offset] = true

		t := newTokenizer(io.NewSectionReader(f.file, offset, f.end-offset), offset)
		tok, err := t.readToken()
		if err != nil {
			return errf(KindXrefFormat, "unable to read xref at offset %d: %v", offset, err)
		}

		var trailer types.Dict
		switch {
		case tok == keyword("xref"):
			trailer, err = f.loadClassicalXref(t)
		case isInt64(tok):
			t.unreadToken(tok)
			trailer, err = f.loadXrefStreamAt(t, offset)
		default:
			return errf(KindXrefFormat, "cross-reference table not found: %v", tok)
		}
		if err != nil {
			return err
		}

		if firstTrailer == nil {
			firstTrailer = trailer
		}

		prev := trailerPrevOffset(trailer)
		if prev <= 0 {
			break
		}
		offset = prev
	}

	return f.resolveTrailer(firstTrailer)
}

func isInt64(tok token) bool {
	_, ok := tok.(int64)
	return ok
}

func trailerPrevOffset(d types.Dict) int64 {
	switch v := d[types.Name("Prev")].(type) {
	case int64:
		return v
	case float64:
		return int64(v)
	default:
		return 0
	}
}

// loadClassicalXref reads subsections (each "first count" followed by
// count fixed 20-byte entries) until a "trailer" keyword, then parses
// the trailer dictionary.
func (f *File) loadClassicalXref(t *tokenizer) (types.Dict, error) {
	for {
		tok, err := t.readToken()
		if err != nil {
			return nil, errf(KindXrefFormat, "malformed xref table: %v", err)
		}
		if tok == keyword("trailer") {
			break
		}

		first, ok1 := tok.(int64)
		countTok, err2 := t.readToken()
		count, ok2 := countTok.(int64)
		if !ok1 || err2 != nil || !ok2 || first < 0 || count < 0 {
			return nil, errf(KindXrefFormat, "malformed xref table subsection header")
		}
		t.skipSpace()

		for i := int64(0); i < count; i++ {
			entry, err := t.readN(20)
			if err != nil {
				return nil, errf(KindXrefFormat, "malformed xref table entry: %v", err)
			}
			if err := f.applyClassicalEntry(uint32(first+i), entry); err != nil {
				return nil, err
			}
		}
	}

	val, err := t.readValue()
	if err != nil {
		return nil, errf(KindXrefFormat, "unable to read trailer dictionary: %v", err)
	}
	dict, ok := val.(types.Dict)
	if !ok {
		return nil, errf(KindXrefFormat, "trailer is not a dictionary")
	}
	return dict, nil
}

// applyClassicalEntry parses one fixed 20-byte classical xref entry:
// "oooooooooo ggggg t\r\n" with the terminator constraint from
// spec.md §4.2.
func (f *File) applyClassicalEntry(number uint32, entry []byte) error {
	term := string(entry[18:20])
	if term != "\r\n" && term != " \n" && term != " \r" {
		return errf(KindXrefFormat, "malformed xref table entry %q", string(entry))
	}

	offset, err := strconv.ParseInt(string(entry[0:10]), 10, 64)
	if err != nil || offset < 0 {
		return errf(KindXrefFormat, "malformed xref table entry %q", string(entry))
	}
	gen, err := strconv.ParseInt(string(entry[11:16]), 10, 64)
	if err != nil || gen < 0 || gen > 65535 {
		return errf(KindXrefFormat, "malformed xref table entry %q", string(entry))
	}
	switch entry[17] {
	case 'f':
		return nil // free entry, not an error, not inserted
	case 'n':
		// fall through to insertion below
	default:
		return errf(KindXrefFormat, "malformed xref table entry %q", string(entry))
	}

	if f.reg.find(number) != nil {
		return nil // newer revision wins
	}
	f.reg.add(f, number, uint16(gen), offset)
	return nil
}

// loadXrefStreamAt parses the xref-stream object's own "N G obj <<dict>>
// stream" header (t is positioned right at its start), registers the
// xref-stream object itself, and decodes its W-encoded body.
func (f *File) loadXrefStreamAt(t *tokenizer, offset int64) (types.Dict, error) {
	num, gen, err := t.readIndirectHeader()
	if err != nil {
		return nil, errf(KindXrefFormat, "cross-reference table not found: %v", err)
	}

	val, err := t.readValue()
	if err != nil {
		return nil, errf(KindXrefFormat, "unable to read cross-reference stream dictionary: %v", err)
	}
	dict, ok := val.(types.Dict)
	if !ok {
		return nil, errf(KindXrefFormat, "cross-reference stream does not have a dictionary")
	}

	tok, err := t.readToken()
	if err != nil || tok != keyword("stream") {
		return nil, errf(KindXrefFormat, "unable to get stream after xref dictionary")
	}
	switch t.readByte() {
	case '\r':
		if t.readByte() != '\n' {
			t.unreadByte()
		}
	case '\n':
		// ok
	default:
		return nil, errf(KindXrefFormat, "stream keyword not followed by newline")
	}
	streamOffset := t.readOffset()

	strm := types.Stream{Hdr: dict, Ptr: types.Objptr{ID: num, Gen: gen}, Offset: streamOffset}

	if f.reg.find(num) == nil {
		obj := f.reg.add(f, num, gen, offset)
		obj.value = strm
		obj.loaded = true
		obj.StreamOffset = streamOffset
	}

	if err := f.readXrefStreamBody(strm); err != nil {
		return nil, err
	}
	return dict, nil
}

// readXrefStreamBody decodes the fixed-width (type, field2, field3)
// records described in spec.md §4.2 step 5.
func (f *File) readXrefStreamBody(strm types.Stream) error {
	dict := strm.Hdr

	wArr, ok := dict[types.Name("W")].(types.Array)
	if !ok || len(wArr) < 3 {
		return errf(KindXrefFormat, "cross-reference stream does not have required W key")
	}
	w := make([]int, 3)
	for i := 0; i < 3; i++ {
		n, ok := wArr[i].(int64)
		if !ok || n < 0 {
			return errf(KindXrefFormat, "cross-reference stream has invalid W key")
		}
		w[i] = int(n)
	}
	wTotal := w[0] + w[1] + w[2]
	if w[1] < 1 || w[2] > 2 || wTotal > 32 {
		return errf(KindXrefFormat, "cross-reference stream has invalid W key")
	}

	start := int64(0)
	if idxArr, ok := dict[types.Name("Index")].(types.Array); ok {
		if len(idxArr) != 2 {
			return errf(KindXrefFormat, "multiple indices not supported in cross-reference stream")
		}
		n0, ok0 := idxArr[0].(int64)
		if !ok0 {
			return errf(KindXrefFormat, "cross-reference stream has invalid Index key")
		}
		start = n0
	}

	rd, err := f.openStream(strm)
	if err != nil {
		return errf(KindXrefFormat, "unable to open cross-reference stream: %v", err)
	}

	var pendingOrder []uint32
	pendingSeen := map[uint32]bool{}

	number := start
	buf := make([]byte, wTotal)
	for {
		if _, err := io.ReadFull(rd, buf); err != nil {
			break
		}

		typeByte := 1
		if w[0] > 0 {
			typeByte = int(buf[0])
		}
		if w[0] > 0 && typeByte == 0 {
			number++
			continue
		}

		field2 := beUint(buf[w[0] : w[0]+w[1]])
		field3 := beUint(buf[w[0]+w[1] : w[0]+w[1]+w[2]])

		if f.reg.find(uint32(number)) != nil {
			number++
			continue
		}

		if typeByte == 2 {
			owner := uint32(field2)
			if ownerObj := f.reg.find(owner); ownerObj != nil {
				if err := f.decodeObjectStream(ownerObj); err != nil {
					return err
				}
			} else if !pendingSeen[owner] {
				pendingSeen[owner] = true
				pendingOrder = append(pendingOrder, owner)
			}
		} else {
			f.reg.add(f, uint32(number), uint16(field3), int64(field2))
		}
		number++
	}

	for _, owner := range pendingOrder {
		ownerObj := f.reg.find(owner)
		if ownerObj == nil {
			return errf(KindObjectStream, "unable to find compressed object stream %d", owner)
		}
		if err := f.decodeObjectStream(ownerObj); err != nil {
			return err
		}
	}

	return nil
}

func beUint(b []byte) uint64 {
	var x uint64
	for _, c := range b {
		x = x<<8 | uint64(c)
	}
	return x
}

// resolveTrailer installs trailer as f's authoritative trailer,
// resolves Root/Info/Encrypt/ID, and flattens the page tree.
func (f *File) resolveTrailer(trailer types.Dict) error {
	f.trailer = trailer

	rootVal, ok := trailer[types.Name("Root")]
	if !ok {
		return errf(KindCatalog, "Missing Root object")
	}
	f.root = f.resolve(rootVal)
	f.info = f.resolve(trailer[types.Name("Info")])
	f.encrypt = f.resolve(trailer[types.Name("Encrypt")])
	f.id = f.resolve(trailer[types.Name("ID")])

	return f.loadPages(f.root.Key("Pages"))
}
