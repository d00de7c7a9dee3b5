package ship

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"logship/internal/logging"
	"logship/internal/record"
)

// Mode is the input selection a run operates in. It is fixed once by
// Request.Validate and never changes afterwards.
type Mode int

const (
	// ModeStdin reads log lines from standard input. The default.
	ModeStdin Mode = iota
	// ModeFile processes the files matched by a glob pattern.
	ModeFile
	// ModeDir recursively processes matching files under a directory.
	ModeDir
	// ModeArchive processes matching members of a tar or zip archive.
	ModeArchive
)

// Request captures the selection options of one run. The Set booleans record
// whether the corresponding option was given at all, so an explicitly empty
// value can be rejected separately from an absent one.
type Request struct {
	File    string
	Dir     string
	Archive string
	Pattern string

	FileSet    bool
	DirSet     bool
	ArchiveSet bool
	PatternSet bool
}

// Validate enforces the mutual-exclusion and pattern rules before any input
// is touched, and resolves the run mode.
func (r *Request) Validate() (Mode, error) {
	if r.FileSet && r.DirSet {
		return ModeStdin, errors.New("-f and -d options can not be used together")
	}
	if r.FileSet && r.ArchiveSet {
		return ModeStdin, errors.New("-f and -a options can not be used together")
	}
	if r.DirSet && r.ArchiveSet {
		return ModeStdin, errors.New("-d and -a options can not be used together")
	}

	if r.FileSet && r.File == "" {
		return ModeStdin, errors.New("-f option requires a value")
	}
	if r.DirSet {
		if r.Dir == "" {
			return ModeStdin, errors.New("-d option requires a value")
		}
		info, err := os.Stat(r.Dir)
		if err != nil || !info.IsDir() {
			return ModeStdin, fmt.Errorf("%q is not an accessible directory", r.Dir)
		}
	}
	if r.ArchiveSet {
		if r.Archive == "" {
			return ModeStdin, errors.New("-a option requires a value")
		}
		info, err := os.Stat(r.Archive)
		if err != nil || !info.Mode().IsRegular() {
			return ModeStdin, fmt.Errorf("%q is not an accessible file", r.Archive)
		}
	}

	if r.PatternSet {
		if r.Pattern == "" {
			return ModeStdin, errors.New("-p option requires a value")
		}
		if !r.DirSet && !r.ArchiveSet {
			return ModeStdin, errors.New("-p option only makes sense with -d or -a options")
		}
	} else if r.DirSet || r.ArchiveSet {
		return ModeStdin, errors.New("a pattern must be given with the -p option when processing directories or archives")
	}

	switch {
	case r.FileSet && r.File != "-":
		return ModeFile, nil
	case r.DirSet:
		return ModeDir, nil
	case r.ArchiveSet:
		return ModeArchive, nil
	default:
		return ModeStdin, nil
	}
}

// Shipper drives one run of the pipeline: it resolves the selected inputs,
// decodes them, and emits records to out. Per-path failures are logged and
// skipped; only validation problems, sink failures, and cancellation surface
// as errors.
type Shipper struct {
	tmpl   *record.Template
	out    io.Writer
	stdin  io.Reader
	logger *slog.Logger
}

// New constructs a Shipper emitting records built from tmpl to out.
func New(tmpl *record.Template, out io.Writer, stdin io.Reader, logger *slog.Logger) *Shipper {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Shipper{tmpl: tmpl, out: out, stdin: stdin, logger: logger}
}

// Run validates the request and processes the selected inputs.
func (s *Shipper) Run(ctx context.Context, req Request) error {
	mode, err := req.Validate()
	if err != nil {
		return err
	}

	switch mode {
	case ModeFile:
		return s.runGlob(ctx, req.File)
	case ModeDir:
		return s.runDir(ctx, req.Dir, req.Pattern)
	case ModeArchive:
		return s.runArchive(ctx, req.Archive, req.Pattern)
	default:
		return s.runStdin(ctx)
	}
}

func (s *Shipper) runStdin(ctx context.Context) error {
	// Stdin is consumed as-is; no format sniffing.
	if err := EncodeStream(ctx, s.stdin, s.tmpl, s.out); err != nil {
		if isFatal(err) {
			return err
		}
		s.logger.Info("stream aborted", "source", "stdin", logging.Error(err))
	}
	return nil
}

func (s *Shipper) runGlob(ctx context.Context, pattern string) error {
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return fmt.Errorf("bad file pattern %q: %w", pattern, err)
	}
	for _, path := range paths {
		if err := s.shipPath(ctx, path); err != nil {
			return err
		}
	}
	return nil
}

func (s *Shipper) runDir(ctx context.Context, root, pattern string) error {
	compiled, err := CompilePattern(pattern)
	if err != nil {
		return err
	}
	for path, walkErr := range WalkMatches(root, compiled) {
		if walkErr != nil {
			s.logger.Info("directory traversal error", logging.Error(walkErr))
			continue
		}
		if err := s.shipPath(ctx, path); err != nil {
			return err
		}
	}
	return nil
}

func (s *Shipper) runArchive(ctx context.Context, path, pattern string) error {
	compiled, err := CompilePattern(pattern)
	if err != nil {
		return err
	}

	format, err := ScanArchive(path, compiled, func(m Member, open MemberOpen) error {
		s.logger.Debug("processing archive member", "member", m.Name)
		return s.shipMember(ctx, m, open)
	})
	switch {
	case err == nil:
		s.logger.Info("processed archive", "path", path, "format", format)
		return nil
	case isFatal(err):
		return err
	case errors.Is(err, ErrUnknownFormat):
		s.logger.Info("unable to open archive", "path", path)
		return nil
	default:
		s.logger.Info("archive aborted", "path", path, logging.Error(err))
		return nil
	}
}

// shipMember encodes one archive member, absorbing its decode errors so the
// scan continues with the next member.
func (s *Shipper) shipMember(ctx context.Context, m Member, open MemberOpen) error {
	r, err := open()
	if err != nil {
		s.logger.Info("skipping archive member", "member", m.Name, logging.Error(err))
		return nil
	}
	defer r.Close()

	if err := EncodeStream(ctx, r, s.tmpl, s.out); err != nil {
		if isFatal(err) {
			return err
		}
		s.logger.Info("archive member aborted", "member", m.Name, logging.Error(err))
	}
	return nil
}

// shipPath opens one filesystem path by suffix and encodes its stream.
// Everything short of cancellation or a sink failure is contained here.
func (s *Shipper) shipPath(ctx context.Context, path string) error {
	stream, kind, err := OpenFile(path)
	if err != nil {
		s.logger.Info("skipping file", "path", path, logging.Error(err))
		return nil
	}
	if kind == KindArchive {
		s.logger.Info("skipping archive file", "path", path)
		return nil
	}
	defer stream.Close()

	s.logger.Info(fmt.Sprintf("processing %s file", kind), "path", path)
	if err := EncodeStream(ctx, stream, s.tmpl, s.out); err != nil {
		if isFatal(err) {
			return err
		}
		s.logger.Info("stream aborted", "path", path, logging.Error(err))
	}
	return nil
}

// isFatal reports whether an error must stop the whole run rather than just
// the current unit: cancellation and record-sink failures.
func isFatal(err error) bool {
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, ErrSink)
}
