// Package term picks the stderr writer and decides whether to use colours.
package term

import (
	"io"
	"os"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// Highlighter wraps text in ANSI colour codes. A nil Highlighter prints
// text unchanged.
type Highlighter struct {
	Code  string
	Reset string
}

var errorHighlighter = Highlighter{Code: "\x1b[31m", Reset: "\x1b[0m"}

// Wrap returns s with colour codes around it.
func (h *Highlighter) Wrap(s string) string {
	if h == nil || s == "" {
		return s
	}
	return h.Code + s + h.Reset
}

// Stderr returns the writer for diagnostics and a highlighter for error
// text. The highlighter is nil unless stderr is a terminal.
func Stderr() (io.Writer, *Highlighter) {
	fd := os.Stderr.Fd()
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		return os.Stderr, nil
	}
	h := errorHighlighter
	return colorable.NewColorableStderr(), &h
}
