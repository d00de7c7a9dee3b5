package ship

import (
	"archive/tar"
	"archive/zip"
	"bufio"
	"compress/bzip2"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// ErrUnknownFormat reports that no supported archive format recognized the
// file.
var ErrUnknownFormat = errors.New("unable to open archive")

// Member describes one archive entry considered for shipping.
type Member struct {
	Name string
	Size int64
}

// MemberOpen yields the content stream of a member. The visitor closes what
// it opens. Tar members share the archive's sequential reader, so the stream
// is only valid until the visit returns and its Close is a no-op.
type MemberOpen func() (io.ReadCloser, error)

// VisitFunc handles one matching member. A returned error aborts the whole
// archive scan; per-member failures the caller wants to survive must be
// absorbed inside the visit.
type VisitFunc func(m Member, open MemberOpen) error

// ScanArchive probes path against the supported archive formats in ranked
// order, tar before zip, and invokes visit for every regular member whose
// full stored path matches pattern, in archive order. Tar archives may be
// plain, gzip compressed, or bzip2 compressed. The detected format name is
// returned; if no probe recognizes the file the error is ErrUnknownFormat
// and visit is never called.
func ScanArchive(path string, pattern *Pattern, visit VisitFunc) (string, error) {
	probes := []struct {
		format string
		scan   func(string, *Pattern, VisitFunc) (bool, error)
	}{
		{"tar", scanTar},
		{"zip", scanZip},
	}

	for _, probe := range probes {
		applied, err := probe.scan(path, pattern, visit)
		if applied {
			return probe.format, err
		}
		if err != nil {
			// The file could not be read at all; later probes cannot do
			// better.
			return "", err
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

// ListArchive enumerates the members ScanArchive would ship, without
// reading their content.
func ListArchive(path string, pattern *Pattern) (string, []Member, error) {
	var members []Member
	format, err := ScanArchive(path, pattern, func(m Member, _ MemberOpen) error {
		members = append(members, m)
		return nil
	})
	return format, members, err
}

func scanTar(path string, pattern *Pattern, visit VisitFunc) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	br := bufio.NewReader(f)
	var src io.Reader = br
	magic, _ := br.Peek(3)
	switch {
	case len(magic) >= 2 && magic[0] == 0x1f && magic[1] == 0x8b:
		zr, err := gzip.NewReader(br)
		if err != nil {
			return false, nil
		}
		defer zr.Close()
		src = zr
	case len(magic) >= 3 && magic[0] == 'B' && magic[1] == 'Z' && magic[2] == 'h':
		src = bzip2.NewReader(br)
	}

	tr := tar.NewReader(src)
	hdr, err := tr.Next()
	if err != nil {
		// Anything that fails before the first valid header is not a tar
		// archive; empty files land here too.
		return false, nil
	}

	for {
		if hdr.Typeflag == tar.TypeReg && pattern.Match(hdr.Name) {
			member := Member{Name: hdr.Name, Size: hdr.Size}
			open := func() (io.ReadCloser, error) { return io.NopCloser(tr), nil }
			if err := visit(member, open); err != nil {
				return true, err
			}
		}

		hdr, err = tr.Next()
		if errors.Is(err, io.EOF) {
			return true, nil
		}
		if err != nil {
			return true, fmt.Errorf("read tar entry table: %w", err)
		}
	}
}

func scanZip(path string, pattern *Pattern, visit VisitFunc) (bool, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		if errors.Is(err, zip.ErrFormat) {
			return false, nil
		}
		return false, err
	}
	defer zr.Close()

	for _, entry := range zr.File {
		// Names with trailing slashes are directory markers.
		if strings.HasSuffix(entry.Name, "/") {
			continue
		}
		if !pattern.Match(entry.Name) {
			continue
		}
		member := Member{Name: entry.Name, Size: int64(entry.UncompressedSize64)}
		if err := visit(member, entry.Open); err != nil {
			return true, err
		}
	}
	return true, nil
}
