// Package scan splits a stream of concatenated, pretty-printed JSON objects
// into decoded objects, one at a time.
//
// The default column mode relies on the export convention that a top-level
// object closes with a '}' in the first column and that nested content is
// always indented. Only the first character of each line is inspected; the
// decoding itself is left to encoding/json.
package scan

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"strings"

	"github.com/flarebyte/jsoncsv/internal/logging"
	"github.com/flarebyte/jsoncsv/internal/record"
)

// Mode selects how object boundaries are found.
type Mode int

const (
	// ColumnBrace ends an object at a line starting with '}'. A line made of a
	// single '}' ends the whole stream.
	ColumnBrace Mode = iota
	// Depth lets the JSON decoder track nesting across the stream.
	Depth
)

// ParseMode maps a config or flag value to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "column":
		return ColumnBrace, nil
	case "depth":
		return Depth, nil
	}
	return ColumnBrace, fmt.Errorf("invalid boundary mode: %q (expected column or depth)", s)
}

func (m Mode) String() string {
	if m == Depth {
		return "depth"
	}
	return "column"
}

// Scanner yields decoded objects from r. It is single pass and not
// restartable. The zero value is not usable; call New.
type Scanner struct {
	r      *bufio.Reader
	closer io.Closer
	mode   Mode
	log    *slog.Logger

	dec    *json.Decoder
	hist   *historyReader
	buf    bytes.Buffer
	obj    *record.Object
	err    error
	done   bool
	closed bool
	count  int
}

// New returns a Scanner reading from r. When r is an io.Closer it is closed
// by Close. A nil logger discards diagnostics.
func New(r io.Reader, mode Mode, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = logging.Discard()
	}
	s := &Scanner{r: bufio.NewReader(r), mode: mode, log: logger}
	if c, ok := r.(io.Closer); ok {
		s.closer = c
	}
	return s
}

// Scan advances to the next object. It returns false when the stream is
// exhausted, the stop line was seen or an error occurred.
func (s *Scanner) Scan() bool {
	s.obj = nil
	if s.done {
		return false
	}
	if s.mode == Depth {
		return s.scanDepth()
	}
	return s.scanColumn()
}

// Object returns the object produced by the last successful Scan.
func (s *Scanner) Object() *record.Object { return s.obj }

// Err returns the first non-EOF error encountered.
func (s *Scanner) Err() error { return s.err }

// Count returns the number of objects yielded so far.
func (s *Scanner) Count() int { return s.count }

// Close releases the underlying reader. It is safe to call more than once.
func (s *Scanner) Close() error {
	s.done = true
	if s.closed || s.closer == nil {
		s.closed = true
		return nil
	}
	s.closed = true
	return s.closer.Close()
}

// All returns the remaining objects as a sequence. A scan error is yielded
// last with a nil object. The scanner is closed when iteration ends,
// including on an early break.
func (s *Scanner) All() iter.Seq2[*record.Object, error] {
	return func(yield func(*record.Object, error) bool) {
		defer s.Close()
		for s.Scan() {
			if !yield(s.obj, nil) {
				return
			}
		}
		if s.err != nil {
			yield(nil, s.err)
		}
	}
}

func (s *Scanner) scanColumn() bool {
	for {
		line, rerr := s.r.ReadString('\n')
		if line == "" && rerr != nil {
			s.finish(rerr)
			return false
		}
		line = trimEOL(line)
		if len(line) == 0 || line[0] != '}' {
			s.buf.WriteString(line)
			s.buf.WriteByte('\n')
			if rerr != nil {
				s.finish(rerr)
				return false
			}
			continue
		}

		s.buf.WriteString("}\n")
		obj, err := record.Decode(s.buf.Bytes())
		s.buf.Reset()
		if err != nil {
			s.fail(fmt.Errorf("object %d: %w", s.count+1, err))
			return false
		}
		s.yielded(obj)
		if len(line) == 1 {
			s.log.Debug("scan stopped", "reason", "terminator line", "objects", s.count)
			s.done = true
			return true
		}
		s.buf.WriteString(line[1:])
		s.buf.WriteByte('\n')
		if rerr != nil {
			s.finish(rerr)
		}
		return true
	}
}

func (s *Scanner) yielded(obj *record.Object) {
	s.count++
	s.obj = obj
	s.log.Debug("object boundary", "ordinal", s.count, "keys", obj.Len())
}

// finish ends the scan on a read result. Unterminated text is dropped.
func (s *Scanner) finish(err error) {
	s.done = true
	if len(bytes.TrimSpace(s.buf.Bytes())) > 0 {
		s.log.Debug("discarding unterminated object", "bytes", s.buf.Len())
	}
	s.buf.Reset()
	if err != io.EOF {
		s.err = fmt.Errorf("read input: %w", err)
		return
	}
	s.log.Debug("scan stopped", "reason", "end of input", "objects", s.count)
}

func (s *Scanner) fail(err error) {
	s.done = true
	s.err = err
}

func trimEOL(line string) string {
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r")
}
