// Package project turns decoded objects into CSV rows.
//
// Every field is wrapped in double quotes and embedded quotes are doubled;
// nothing else is escaped. An object carrying both Message and StackTrace
// keys is an upstream failure: it is echoed to the error stream and ends
// the run.
package project

import (
	"context"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"strings"

	"github.com/flarebyte/jsoncsv/internal/logging"
	"github.com/flarebyte/jsoncsv/internal/naming"
	"github.com/flarebyte/jsoncsv/internal/record"
	"github.com/flarebyte/jsoncsv/internal/rename"
	"github.com/flarebyte/jsoncsv/internal/term"
)

const (
	// MessageKey is the error-record key echoed first to the error stream.
	MessageKey = "Message"
	// StackTraceKey is the error-record key echoed after the message when non-null.
	StackTraceKey = "StackTrace"

	// ExitCodeBad is the process exit code for error records and faults.
	ExitCodeBad = 0xBAD
)

// RecordError reports an error-shaped object found in the input. Its lines
// have already been written to the error stream.
type RecordError struct {
	Ordinal    int
	Message    string
	StackTrace string
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("error record at object %d: %s", e.Ordinal, e.Message)
}

// ExitCode returns ExitCodeBad.
func (e *RecordError) ExitCode() int { return ExitCodeBad }

// Silent reports that nothing more should be printed for this error.
func (e *RecordError) Silent() bool { return true }

// Projector holds the state of one conversion run: the rename rules and
// whether the header row has been written.
type Projector struct {
	Renames    rename.Map
	Out        io.Writer
	Err        io.Writer
	LineEnding string
	Highlight  *term.Highlighter
	Logger     *slog.Logger

	headerDone bool
	objects    int
	rows       int
}

// Stats returns how many objects were consumed and data rows written.
func (p *Projector) Stats() (objects, rows int) { return p.objects, p.rows }

// Run consumes objects until the sequence ends, an error record is found,
// the sequence yields an error or ctx is cancelled.
func (p *Projector) Run(ctx context.Context, objects iter.Seq2[*record.Object, error]) error {
	if p.LineEnding == "" {
		p.LineEnding = "\n"
	}
	if p.Logger == nil {
		p.Logger = logging.Discard()
	}
	for obj, err := range objects {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		p.objects++
		if err := p.Project(obj); err != nil {
			return err
		}
	}
	p.Logger.Debug("conversion done", "objects", p.objects, "rows", p.rows)
	return nil
}

// Project writes the rows for a single object.
func (p *Projector) Project(obj *record.Object) error {
	if IsErrorRecord(obj) {
		return p.reportErrorRecord(obj)
	}
	if !p.headerDone {
		if err := p.writeLine(p.Header(obj.Keys())); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		p.headerDone = true
	}
	if err := p.writeLine(Row(obj.Values())); err != nil {
		return fmt.Errorf("write row %d: %w", p.rows+1, err)
	}
	p.rows++
	return nil
}

// IsErrorRecord reports whether obj has both the Message and StackTrace keys.
func IsErrorRecord(obj *record.Object) bool {
	return obj.Has(MessageKey) && obj.Has(StackTraceKey)
}

func (p *Projector) reportErrorRecord(obj *record.Object) error {
	msg, _ := obj.Get(MessageKey)
	trace, _ := obj.Get(StackTraceKey)
	rerr := &RecordError{Ordinal: p.objects, Message: msg.String(), StackTrace: trace.String()}
	p.Logger.Debug("error record", "ordinal", p.objects)
	w := p.Err
	if w == nil {
		w = io.Discard
	}
	lines := p.Highlight.Wrap(msg.String()) + p.LineEnding
	if !trace.IsNull() {
		lines += trace.String() + p.LineEnding
	}
	if _, err := io.WriteString(w, lines); err != nil {
		return fmt.Errorf("write error record: %w", err)
	}
	return rerr
}

// Header returns the header line for keys: the renamed column when a rule
// matches, otherwise the screaming snake case form of the key.
func (p *Projector) Header(keys []string) string {
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		name, ok := p.Renames.Lookup(k)
		if !ok {
			name = naming.ScreamingFromPascal(k)
		}
		names = append(names, `"`+name+`"`)
	}
	return strings.Join(names, ",")
}

// Row returns the data line for values.
func Row(values []record.Value) string {
	fields := make([]string, 0, len(values))
	for _, v := range values {
		fields = append(fields, Field(v))
	}
	return strings.Join(fields, ",")
}

// Field quotes one value. Null becomes an empty quoted field.
func Field(v record.Value) string {
	return `"` + strings.ReplaceAll(v.String(), `"`, `""`) + `"`
}

// writeLine emits one complete line per write so rows appear as soon as
// they are produced.
func (p *Projector) writeLine(line string) error {
	_, err := io.WriteString(p.Out, line+p.LineEnding)
	return err
}
