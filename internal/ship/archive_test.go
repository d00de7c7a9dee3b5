package ship

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
)

// bzip2-compressed tar holding logs/app.log ("tar a\ntar b\n") and
// logs/readme.txt ("readme\n").
var tarBzip2Fixture = []byte{
	0x42, 0x5a, 0x68, 0x39, 0x31, 0x41, 0x59, 0x26, 0x53, 0x59, 0x5a, 0x52,
	0xb2, 0xd1, 0x00, 0x00, 0xa0, 0x7b, 0x84, 0xcb, 0x10, 0x00, 0xc0, 0x40,
	0x01, 0xf7, 0x80, 0x24, 0x00, 0x76, 0x86, 0xde, 0x40, 0x00, 0x00, 0xa0,
	0x08, 0x20, 0x00, 0x80, 0x15, 0x48, 0x53, 0xd2, 0x7a, 0xa0, 0xf4, 0x6a,
	0x32, 0x34, 0xd9, 0x4d, 0x3c, 0x51, 0xfa, 0xa1, 0x86, 0x46, 0x04, 0xd3,
	0x02, 0x64, 0x31, 0x34, 0x61, 0x7d, 0xa3, 0x3c, 0x53, 0x51, 0x69, 0x02,
	0x55, 0x84, 0x44, 0x32, 0xe9, 0x25, 0x8c, 0x93, 0xa5, 0x95, 0x39, 0x24,
	0x88, 0x26, 0x8f, 0xac, 0xfb, 0xf0, 0x8a, 0xb5, 0x4d, 0x26, 0xb5, 0xd9,
	0x55, 0x84, 0x69, 0xa5, 0x91, 0xde, 0x4e, 0x18, 0xa4, 0xeb, 0x47, 0x3c,
	0xe3, 0x24, 0xf8, 0xf1, 0x4f, 0x42, 0x85, 0x12, 0xa2, 0x6c, 0x16, 0xed,
	0x45, 0x0f, 0x5e, 0x4d, 0x3b, 0x14, 0xe8, 0xd5, 0xd5, 0xb4, 0x78, 0xfb,
	0xbe, 0xcd, 0xe3, 0x03, 0x03, 0x3f, 0x28, 0x5f, 0x1e, 0x6d, 0xdb, 0xbf,
	0x96, 0x5e, 0x4d, 0x56, 0xfd, 0xf6, 0xbb, 0xe3, 0xd1, 0x10, 0x7f, 0x8b,
	0xb9, 0x22, 0x9c, 0x28, 0x48, 0x2d, 0x29, 0x59, 0x68, 0x80,
}

type tarEntry struct {
	name    string
	content string
	mode    byte // tar type flag; 0 means regular file
}

func buildTar(t *testing.T, entries []tarEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for _, e := range entries {
		hdr := &tar.Header{
			Name: e.name,
			Mode: 0o644,
			Size: int64(len(e.content)),
		}
		if e.mode != 0 {
			hdr.Typeflag = e.mode
			hdr.Size = 0
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatal(err)
		}
		if e.mode == 0 {
			if _, err := tw.Write([]byte(e.content)); err != nil {
				t.Fatal(err)
			}
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func buildZip(t *testing.T, entries map[string]string, dirs ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, dir := range dirs {
		if _, err := zw.Create(dir); err != nil {
			t.Fatal(err)
		}
	}
	for name, content := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func writeFixture(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func scanContents(t *testing.T, path, pattern string) (string, map[string]string, error) {
	t.Helper()
	p, err := CompilePattern(pattern)
	if err != nil {
		t.Fatal(err)
	}
	contents := map[string]string{}
	format, err := ScanArchive(path, p, func(m Member, open MemberOpen) error {
		r, err := open()
		if err != nil {
			return err
		}
		defer r.Close()
		data, err := io.ReadAll(r)
		if err != nil {
			return err
		}
		contents[m.Name] = string(data)
		return nil
	})
	return format, contents, err
}

func TestScanArchiveTarMatchesFullMemberPath(t *testing.T) {
	data := buildTar(t, []tarEntry{
		{name: "logs/", mode: tar.TypeDir},
		{name: "logs/app.log", content: "a1\na2\n"},
		{name: "logs/readme.txt", content: "docs\n"},
	})
	path := writeFixture(t, "bundle.tar", data)

	format, contents, err := scanContents(t, path, "*.log")
	if err != nil {
		t.Fatal(err)
	}
	if format != "tar" {
		t.Fatalf("format: got %q, want tar", format)
	}
	if len(contents) != 1 || contents["logs/app.log"] != "a1\na2\n" {
		t.Fatalf("got %v", contents)
	}
}

func TestScanArchiveTarGzip(t *testing.T) {
	plain := buildTar(t, []tarEntry{{name: "app.log", content: "z\n"}})
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(plain); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	path := writeFixture(t, "bundle.tar.gz", buf.Bytes())

	format, contents, err := scanContents(t, path, "*")
	if err != nil {
		t.Fatal(err)
	}
	if format != "tar" {
		t.Fatalf("format: got %q, want tar", format)
	}
	if contents["app.log"] != "z\n" {
		t.Fatalf("got %v", contents)
	}
}

func TestScanArchiveTarBzip2(t *testing.T) {
	path := writeFixture(t, "bundle.tar.bz2", tarBzip2Fixture)

	format, contents, err := scanContents(t, path, "*.log")
	if err != nil {
		t.Fatal(err)
	}
	if format != "tar" {
		t.Fatalf("format: got %q, want tar", format)
	}
	if len(contents) != 1 || contents["logs/app.log"] != "tar a\ntar b\n" {
		t.Fatalf("got %v", contents)
	}
}

func TestScanArchiveSkipsNonRegularTarEntries(t *testing.T) {
	data := buildTar(t, []tarEntry{
		{name: "a.log", content: "a\n"},
		{name: "link.log", mode: tar.TypeSymlink},
		{name: "dir.log/", mode: tar.TypeDir},
	})
	path := writeFixture(t, "bundle.tar", data)

	_, contents, err := scanContents(t, path, "*")
	if err != nil {
		t.Fatal(err)
	}
	if len(contents) != 1 {
		t.Fatalf("expected only the regular file, got %v", contents)
	}
}

func TestScanArchiveZip(t *testing.T) {
	data := buildZip(t, map[string]string{
		"logs/app.log":    "za\nzb\n",
		"logs/readme.txt": "docs\n",
	}, "logs/")
	path := writeFixture(t, "bundle.zip", data)

	format, contents, err := scanContents(t, path, "*.log")
	if err != nil {
		t.Fatal(err)
	}
	if format != "zip" {
		t.Fatalf("format: got %q, want zip", format)
	}
	if len(contents) != 1 || contents["logs/app.log"] != "za\nzb\n" {
		t.Fatalf("got %v", contents)
	}
}

func TestScanArchiveUnknownFormat(t *testing.T) {
	path := writeFixture(t, "bundle.tar", []byte("definitely not an archive"))

	_, _, err := scanContents(t, path, "*")
	if !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("got error %v, want ErrUnknownFormat", err)
	}
}

func TestScanArchiveEmptyFile(t *testing.T) {
	path := writeFixture(t, "empty.tar", nil)

	_, _, err := scanContents(t, path, "*")
	if !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("got error %v, want ErrUnknownFormat", err)
	}
}

func TestScanArchiveVisitErrorAborts(t *testing.T) {
	data := buildTar(t, []tarEntry{
		{name: "a.log", content: "a\n"},
		{name: "b.log", content: "b\n"},
	})
	path := writeFixture(t, "bundle.tar", data)

	p, err := CompilePattern("*")
	if err != nil {
		t.Fatal(err)
	}
	boom := errors.New("boom")
	var visited int
	_, err = ScanArchive(path, p, func(Member, MemberOpen) error {
		visited++
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("got error %v, want boom", err)
	}
	if visited != 1 {
		t.Fatalf("visited %d members, want 1", visited)
	}
}

func TestListArchive(t *testing.T) {
	data := buildZip(t, map[string]string{
		"logs/app.log": "za\n",
		"notes.txt":    "n\n",
	}, "logs/")
	path := writeFixture(t, "bundle.zip", data)

	p, err := CompilePattern("*.log")
	if err != nil {
		t.Fatal(err)
	}
	format, members, err := ListArchive(path, p)
	if err != nil {
		t.Fatal(err)
	}
	if format != "zip" {
		t.Fatalf("format: got %q, want zip", format)
	}
	if len(members) != 1 || members[0].Name != "logs/app.log" {
		t.Fatalf("got %v", members)
	}
	if members[0].Size != int64(len("za\n")) {
		t.Fatalf("size: got %d", members[0].Size)
	}
}
