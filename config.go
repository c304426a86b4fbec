package pdfio

// config holds the handful of tunables this engine exposes. There is
// no external configuration library here: the surface is a few
// scalars, and the teacher's own constructor-variant chain
// (Open -> NewReader -> NewReaderEncrypted) doesn't generalize past
// two or three knobs, so functional options are used instead.
type config struct {
	tailScanWindow   int64
	maxObjStmObjects int
	version          string
}

func defaultConfig() config {
	return config{
		tailScanWindow:   32,
		maxObjStmObjects: 1000,
		version:          "2.0",
	}
}

// OpenOption configures Open.
type OpenOption func(*config)

// CreateOption configures Create.
type CreateOption func(*config)

// WithTailScanWindow overrides the number of trailing bytes scanned
// for the startxref keyword (spec default: 32).
func WithTailScanWindow(n int64) OpenOption {
	return func(c *config) {
		if n > 0 {
			c.tailScanWindow = n
		}
	}
}

// WithMaxObjectStreamSize overrides the maximum number of objects
// pdfio will materialize out of a single compressed object stream
// (spec minimum: 1000).
func WithMaxObjectStreamSize(n int) OpenOption {
	return func(c *config) {
		if n > 0 {
			c.maxObjStmObjects = n
		}
	}
}

// WithVersion sets the PDF version string written by Create. The
// default is "2.0".
func WithVersion(v string) CreateOption {
	return func(c *config) {
		if v != "" {
			c.version = v
		}
	}
}
