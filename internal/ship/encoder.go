package ship

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"logship/internal/record"
)

// ErrInvalidEncoding marks a line that is not valid UTF-8. Decoding cannot
// reliably continue on the same stream past such a line, so the stream is
// abandoned; records already written stand.
var ErrInvalidEncoding = errors.New("invalid character encoding")

// ErrSink marks a failure writing to the record sink. Unlike input errors,
// a broken sink stops the whole run.
var ErrSink = errors.New("record sink failure")

const encoderBufferSize = 64 * 1024

// EncodeStream reads r line by line and writes one JSON record per line to w,
// each record being the template's static fields plus `message` holding the
// raw line with its terminator intact. The stream is processed incrementally;
// nothing is retained across lines. Each record reaches w in a single Write
// so an interrupt between lines never truncates a record. Closing r stays
// with the caller that opened it.
func EncodeStream(ctx context.Context, r io.Reader, tmpl *record.Template, w io.Writer) error {
	br := bufio.NewReaderSize(r, encoderBufferSize)
	var rec []byte
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, err := br.ReadString('\n')
		if line != "" {
			if !utf8.ValidString(line) {
				return ErrInvalidEncoding
			}
			rec = tmpl.AppendRecord(rec[:0], line)
			if _, werr := w.Write(rec); werr != nil {
				return fmt.Errorf("%w: %v", ErrSink, werr)
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read stream: %w", err)
		}
	}
}
