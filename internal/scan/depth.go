package scan

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/flarebyte/jsoncsv/internal/record"
)

// historyReader keeps the bytes handed to the JSON decoder since the end of
// the previous object, so the character before a closing brace can be
// inspected.
type historyReader struct {
	r    io.Reader
	buf  []byte
	base int64
}

func (h *historyReader) Read(p []byte) (int, error) {
	n, err := h.r.Read(p)
	h.buf = append(h.buf, p[:n]...)
	return n, err
}

func (h *historyReader) byteAt(off int64) (byte, bool) {
	i := off - h.base
	if i < 0 || i >= int64(len(h.buf)) {
		return 0, false
	}
	return h.buf[i], true
}

// forget drops history before off.
func (h *historyReader) forget(off int64) {
	i := off - h.base
	if i <= 0 {
		return
	}
	if i > int64(len(h.buf)) {
		i = int64(len(h.buf))
	}
	h.buf = append(h.buf[:0], h.buf[i:]...)
	h.base += i
}

func (s *Scanner) scanDepth() bool {
	if s.dec == nil {
		s.hist = &historyReader{r: s.r}
		s.dec = json.NewDecoder(s.hist)
	}
	obj, err := record.DecodeNext(s.dec)
	if err != nil {
		if err == io.EOF {
			s.log.Debug("scan stopped", "reason", "end of input", "objects", s.count)
			s.done = true
			return false
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			s.log.Debug("discarding unterminated object", "ordinal", s.count+1)
			s.done = true
			return false
		}
		s.fail(fmt.Errorf("object %d: %w", s.count+1, err))
		return false
	}
	s.yielded(obj)
	end := s.dec.InputOffset()
	if s.closesOnOwnLine(end) {
		s.log.Debug("scan stopped", "reason", "terminator line", "objects", s.count)
		s.done = true
	}
	s.hist.forget(end)
	return true
}

// closesOnOwnLine reports whether the brace ending just before end sits in
// the first column and is followed by a line break or the end of input: the
// same single '}' line that stops a column scan.
func (s *Scanner) closesOnOwnLine(end int64) bool {
	brace := end - 1
	if brace > 0 {
		if prev, ok := s.hist.byteAt(brace - 1); !ok || prev != '\n' {
			return false
		}
	}
	next := s.peekAfterObject(2)
	switch {
	case len(next) == 0:
		return true
	case next[0] == '\n':
		return true
	case next[0] == '\r':
		return len(next) == 1 || next[1] == '\n'
	}
	return false
}

// peekAfterObject returns up to n bytes following the last decoded object
// without consuming them: first what the decoder already buffered, then
// what the shared reader can peek.
func (s *Scanner) peekAfterObject(n int) []byte {
	out := make([]byte, n)
	got, _ := io.ReadFull(s.dec.Buffered(), out)
	out = out[:got]
	if got < n {
		more, _ := s.r.Peek(n - got)
		out = append(out, more...)
	}
	return out
}
