package pdfio

import (
	"compress/zlib"
	"encoding/ascii85"
	"fmt"
	"io"
	"log/slog"

	"github.com/Lance219/pdfio/internal/types"
)

// openStream decodes the bytes backing s through its /Filter chain.
// This is the minimum stream-filter pipeline the xref loader and
// object-stream decoder need to even locate the objects they're
// looking for; full filter support (general-purpose decompression,
// encryption) is out of scope per spec.md §1 — pdfio only implements
// what xref streams and object streams are commonly encoded with.
//
// Grounded on ScriptRock-pdf/read.go's applyFilter/pngUpReader, minus
// the decryption hook (spec.md places encryption out of scope).
func (f *File) openStream(s types.Stream) (io.Reader, error) {
	length := int64(dictGetInt(s.Hdr, "Length"))
	rd := io.NewSectionReader(f.file, s.Offset, length)

	filter := s.Hdr["Filter"]
	parms := s.Hdr["DecodeParms"]

	switch ft := filter.(type) {
	case nil:
		return rd, nil
	case types.Name:
		return applyFilter(rd, string(ft), parms)
	case types.Array:
		parmArr, _ := parms.(types.Array)
		var r io.Reader = rd
		for i, fv := range ft {
			name, ok := fv.(types.Name)
			if !ok {
				return nil, fmt.Errorf("non-name filter %v in filter array", fv)
			}
			var p types.Object
			if i < len(parmArr) {
				p = parmArr[i]
			}
			var err error
			r, err = applyFilter(r, string(name), p)
			if err != nil {
				return nil, err
			}
		}
		return r, nil
	default:
		return nil, fmt.Errorf("unsupported filter value %v", filter)
	}
}

func applyFilter(rd io.Reader, name string, parms types.Object) (io.Reader, error) {
	switch name {
	case "FlateDecode":
		zr, err := zlib.NewReader(rd)
		if err != nil {
			return nil, fmt.Errorf("FlateDecode: %w", err)
		}
		pd, _ := parms.(types.Dict)
		if pd == nil {
			return zr, nil
		}
		predictor := dictGetInt(pd, "Predictor")
		if predictor == 0 || predictor == 1 {
			return zr, nil
		}
		if predictor != 12 {
			slog.Debug("unsupported PNG predictor", slog.Int("predictor", predictor))
			return zr, nil
		}
		columns := dictGetInt(pd, "Columns")
		if columns <= 0 {
			columns = 1
		}
		return &pngUpReader{r: zr, hist: make([]byte, 1+columns), tmp: make([]byte, 1+columns)}, nil

	case "ASCII85Decode":
		return ascii85.NewDecoder(rd), nil

	default:
		return nil, fmt.Errorf("unsupported filter %q", name)
	}
}

func dictGetInt(d types.Dict, key string) int {
	switch x := d[types.Name(key)].(type) {
	case int64:
		return int(x)
	case float64:
		return int(x)
	default:
		return 0
	}
}

// pngUpReader undoes the PNG "Up" predictor (type 2), the only
// predictor FlateDecode streams in practice use for xref/object
// streams.
type pngUpReader struct {
	r    io.Reader
	hist []byte
	tmp  []byte
	pend []byte
}

func (r *pngUpReader) Read(b []byte) (int, error) {
	n := 0
	for len(b) > 0 {
		if len(r.pend) > 0 {
			m := copy(b, r.pend)
			n += m
			b = b[m:]
			r.pend = r.pend[m:]
			continue
		}
		if _, err := io.ReadFull(r.r, r.tmp); err != nil {
			return n, err
		}
		if r.tmp[0] != 2 {
			return n, fmt.Errorf("unsupported PNG predictor tag %d", r.tmp[0])
		}
		for i, b := range r.tmp {
			r.hist[i] += b
		}
		r.pend = r.hist[1:]
	}
	return n, nil
}
