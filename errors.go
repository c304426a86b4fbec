package pdfio

import (
	"fmt"
	"log/slog"
)

// Kind classifies a fatal error encountered while opening, creating,
// or closing a PDF file.
type Kind int

// The error kinds named in this engine's error handling design.
const (
	KindIO Kind = iota
	KindAllocation
	KindHeader
	KindXrefLocate
	KindXrefFormat
	KindObjectStream
	KindCatalog
	KindPageTree
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "IO"
	case KindAllocation:
		return "Allocation"
	case KindHeader:
		return "Header"
	case KindXrefLocate:
		return "XrefLocate"
	case KindXrefFormat:
		return "XrefFormat"
	case KindObjectStream:
		return "ObjectStream"
	case KindCatalog:
		return "Catalog"
	case KindPageTree:
		return "PageTree"
	default:
		return "Unknown"
	}
}

// ErrorReporter receives one synchronous call for every fatal
// diagnostic raised while opening, creating, or closing a file, before
// the failing operation returns. f is nil if the failure happened
// before a *File could be allocated.
type ErrorReporter func(f *File, message string, datum any)

// DefaultErrorReporter logs the message via log/slog at Error level.
func DefaultErrorReporter(f *File, message string, datum any) {
	if f == nil {
		slog.Error(message)
		return
	}
	slog.Error(message, slog.String("file", f.filename))
}

// parseError is the error type threaded through the loader. It
// carries the Kind of the failure; the type and its kind field are
// unexported, so the Kind is not visible outside this package. Every
// parseError is also reported exactly once through the file's
// ErrorReporter before the operation that produced it returns.
type parseError struct {
	kind    Kind
	message string
}

func (e *parseError) Error() string { return e.message }

func errf(kind Kind, format string, args ...any) error {
	return &parseError{kind: kind, message: fmt.Sprintf(format, args...)}
}

// report sends message through f's error reporter exactly once. f may
// be nil before allocation finishes, in which case DefaultErrorReporter
// is used directly.
func (f *File) report(err error) {
	reporter := DefaultErrorReporter
	var datum any
	if f != nil {
		reporter = f.errorReporter
		datum = f.errorDatum
	}
	reporter(f, err.Error(), datum)
}
