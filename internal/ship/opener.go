package ship

import (
	"compress/bzip2"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// SourceKind classifies a path by its name suffix.
type SourceKind int

const (
	// KindPlain is an uncompressed text file.
	KindPlain SourceKind = iota
	// KindGzip is a gzip-compressed file.
	KindGzip
	// KindBzip2 is a bzip2-compressed file.
	KindBzip2
	// KindArchive is a multi-member archive. Archives are only processed via
	// the explicit archive selection, never through file or directory
	// selection, so the opener skips them.
	KindArchive
)

func (k SourceKind) String() string {
	switch k {
	case KindGzip:
		return "gzip"
	case KindBzip2:
		return "bzip2"
	case KindArchive:
		return "archive"
	default:
		return "plain"
	}
}

var archiveSuffixes = []string{".tar", ".tgz", ".tar.gz", ".tar.bz2", ".zip"}

// Classify determines how a path would be opened, by case-insensitive
// suffix. The content is never inspected.
func Classify(path string) SourceKind {
	lower := strings.ToLower(path)
	for _, suffix := range archiveSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return KindArchive
		}
	}
	switch {
	case strings.HasSuffix(lower, ".gz"):
		return KindGzip
	case strings.HasSuffix(lower, ".bz2"):
		return KindBzip2
	default:
		return KindPlain
	}
}

// OpenFile opens path as a decoded text stream according to its suffix.
// For KindArchive the returned stream is nil with no error; the caller
// reports the skip. The returned closer releases the decompressor and the
// underlying file together.
func OpenFile(path string) (io.ReadCloser, SourceKind, error) {
	kind := Classify(path)
	if kind == KindArchive {
		return nil, kind, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, kind, err
	}

	switch kind {
	case KindGzip:
		zr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, kind, fmt.Errorf("%s: %w", path, err)
		}
		return &layeredReadCloser{Reader: zr, closers: []io.Closer{zr, f}}, kind, nil
	case KindBzip2:
		return &layeredReadCloser{Reader: bzip2.NewReader(f), closers: []io.Closer{f}}, kind, nil
	default:
		return f, kind, nil
	}
}

// layeredReadCloser closes every layer of a decoded stream, keeping the
// first error.
type layeredReadCloser struct {
	io.Reader
	closers []io.Closer
}

func (l *layeredReadCloser) Close() error {
	var first error
	for _, c := range l.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
