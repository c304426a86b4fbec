// Decoding of compressed object streams: a stream object whose body is
// a sequence of bare values preceded by a (number, offset) pair per
// value, used by xref streams to pack many small objects into one
// FlateDecode'd blob.
//
// Grounded on original_source/pdfio-file.c's load_obj_stream, including
// its fixed bound on the number of objects one object stream may carry
// (there: objs[1000]; here: cfg.maxObjStmObjects, defaulting to the
// same 1000).

package pdfio

import (
	"github.com/Lance219/pdfio/internal/types"
)

// decodeObjectStream materializes every object packed into owner's
// stream body and registers each one. owner's value is resolved here
// (read from the file if it is not loaded yet) and must be a
// types.Stream.
func (f *File) decodeObjectStream(owner *Object) error {
	data, err := owner.resolve()
	if err != nil {
		return err
	}
	strm, ok := data.(types.Stream)
	if !ok {
		return errf(KindObjectStream, "object %d is not a stream", owner.Number)
	}

	maxN := dictGetInt(strm.Hdr, "N")

	rd, err := f.openStream(strm)
	if err != nil {
		return errf(KindObjectStream, "unable to open object stream %d: %v", owner.Number, err)
	}
	t := newTokenizer(rd, 0)

	// Header: a whitespace-delimited sequence of (object number, byte
	// offset) pairs, ending at the first token that isn't an integer —
	// that token belongs to the first value and is pushed back. The
	// offset itself is redundant once header and body share one
	// tokenizer, since values are then read off in declaration order.
	var numbers []uint32
	for {
		numTok, err := t.readToken()
		if err != nil {
			return errf(KindObjectStream, "object stream %d: truncated header: %v", owner.Number, err)
		}
		num, ok := numTok.(int64)
		if !ok || num < 0 {
			t.unreadToken(numTok)
			break
		}

		offTok, err := t.readToken()
		if err != nil {
			return errf(KindObjectStream, "object stream %d: malformed header", owner.Number)
		}
		if _, ok := offTok.(int64); !ok {
			return errf(KindObjectStream, "object stream %d: malformed header", owner.Number)
		}

		numbers = append(numbers, uint32(num))
		if len(numbers) > f.cfg.maxObjStmObjects {
			return errf(KindObjectStream, "object stream %d exceeds the maximum of %d objects", owner.Number, f.cfg.maxObjStmObjects)
		}
	}
	if len(numbers) == 0 {
		return errf(KindObjectStream, "object stream %d has an empty header", owner.Number)
	}
	if maxN > 0 && len(numbers) != maxN {
		return errf(KindObjectStream, "object stream %d: header has %d pairs, /N says %d", owner.Number, len(numbers), maxN)
	}

	for _, number := range numbers {
		value, err := t.readValue()
		if err != nil {
			return errf(KindObjectStream, "object stream %d: unable to read member %d: %v", owner.Number, number, err)
		}
		if f.reg.find(number) != nil {
			continue // newer revision wins
		}
		obj := f.reg.add(f, number, 0, 0)
		obj.value = value
		obj.loaded = true
	}
	return nil
}
