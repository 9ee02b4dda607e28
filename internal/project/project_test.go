package project

import (
	"bytes"
	"context"
	"errors"
	"iter"
	"strings"
	"testing"

	"github.com/flarebyte/jsoncsv/internal/record"
	"github.com/flarebyte/jsoncsv/internal/rename"
	"github.com/flarebyte/jsoncsv/internal/scan"
)

func objects(t *testing.T, texts ...string) iter.Seq2[*record.Object, error] {
	t.Helper()
	objs := make([]*record.Object, 0, len(texts))
	for _, s := range texts {
		obj, err := record.Decode([]byte(s))
		if err != nil {
			t.Fatalf("decode %s: %v", s, err)
		}
		objs = append(objs, obj)
	}
	return func(yield func(*record.Object, error) bool) {
		for _, o := range objs {
			if !yield(o, nil) {
				return
			}
		}
	}
}

func newProjector(renames rename.Map) (*Projector, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return &Projector{Renames: renames, Out: &out, Err: &errOut}, &out, &errOut
}

func TestRun_HeaderThenRows(t *testing.T) {
	p, out, errOut := newProjector(rename.Map{})
	err := p.Run(context.Background(), objects(t, `{"Name":"A","Count":1}`, `{"Name":"B","Count":2}`))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	want := "\"NAME\",\"COUNT\"\n\"A\",\"1\"\n\"B\",\"2\"\n"
	if out.String() != want {
		t.Fatalf("stdout:\n%s\nwant:\n%s", out.String(), want)
	}
	if errOut.Len() != 0 {
		t.Fatalf("unexpected stderr: %q", errOut.String())
	}
	if o, r := p.Stats(); o != 2 || r != 2 {
		t.Fatalf("stats: objects=%d rows=%d", o, r)
	}
}

func TestRun_RenameIsVerbatim(t *testing.T) {
	m, _ := rename.Parse([]string{"ID=Identifier", "when=CreatedAt"})
	p, out, _ := newProjector(m)
	if err := p.Run(context.Background(), objects(t, `{"identifier":7,"CreatedAt":"x","HTTPStatus":200}`)); err != nil {
		t.Fatalf("run: %v", err)
	}
	header := strings.SplitN(out.String(), "\n", 2)[0]
	if header != `"ID","when","HTTP_STATUS"` {
		t.Fatalf("header: %s", header)
	}
}

func TestRun_QuotingAndNull(t *testing.T) {
	p, out, _ := newProjector(rename.Map{})
	err := p.Run(context.Background(), objects(t, `{"S":"He said \"hi\"","Z":null,"B":true,"N":1.5e3,"O":{"k":"v"},"E":""}`))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	want := `"He said ""hi""","","true","1.5e3","{""k"":""v""}",""`
	if lines[1] != want {
		t.Fatalf("row:\n%s\nwant:\n%s", lines[1], want)
	}
}

func TestRun_HeaderOnlyOnce(t *testing.T) {
	p, out, _ := newProjector(rename.Map{})
	err := p.Run(context.Background(), objects(t, `{"A":1}`, `{"B":2,"C":3}`))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	if len(lines) != 3 || lines[0] != `"A"` || lines[2] != `"2","3"` {
		t.Fatalf("unexpected lines: %q", lines)
	}
}

func TestRun_ErrorRecordStops(t *testing.T) {
	p, out, errOut := newProjector(rename.Map{})
	err := p.Run(context.Background(), objects(t,
		`{"Name":"A"}`,
		`{"Message":"boom","StackTrace":"at X"}`,
		`{"Name":"C"}`,
	))
	var rerr *RecordError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected RecordError, got %v", err)
	}
	if rerr.ExitCode() != 2989 || !rerr.Silent() || rerr.Ordinal != 2 {
		t.Fatalf("unexpected record error: %+v", rerr)
	}
	if errOut.String() != "boom\nat X\n" {
		t.Fatalf("stderr: %q", errOut.String())
	}
	if out.String() != "\"NAME\"\n\"A\"\n" {
		t.Fatalf("stdout: %q", out.String())
	}
}

func TestRun_ErrorRecordNullStackTrace(t *testing.T) {
	p, out, errOut := newProjector(rename.Map{})
	err := p.Run(context.Background(), objects(t, `{"StackTrace":null,"Message":"boom"}`))
	if err == nil {
		t.Fatalf("expected error")
	}
	if errOut.String() != "boom\n" {
		t.Fatalf("stderr: %q", errOut.String())
	}
	if out.Len() != 0 {
		t.Fatalf("stdout must be empty, got %q", out.String())
	}
}

func TestRun_MessageAloneIsData(t *testing.T) {
	p, out, _ := newProjector(rename.Map{})
	if err := p.Run(context.Background(), objects(t, `{"Message":"hello","stacktrace":"x"}`)); err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.String() != "\"MESSAGE\",\"STACKTRACE\"\n\"hello\",\"x\"\n" {
		t.Fatalf("stdout: %q", out.String())
	}
}

func TestRun_CRLF(t *testing.T) {
	p, out, _ := newProjector(rename.Map{})
	p.LineEnding = "\r\n"
	if err := p.Run(context.Background(), objects(t, `{"A":1}`)); err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.String() != "\"A\"\r\n\"1\"\r\n" {
		t.Fatalf("stdout: %q", out.String())
	}
}

func TestRun_PropagatesSequenceError(t *testing.T) {
	boom := errors.New("boom")
	p, _, _ := newProjector(rename.Map{})
	seq := func(yield func(*record.Object, error) bool) { yield(nil, boom) }
	if err := p.Run(context.Background(), seq); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p, out, _ := newProjector(rename.Map{})
	if err := p.Run(ctx, objects(t, `{"A":1}`)); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("nothing should be written")
	}
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestRun_WriteFailure(t *testing.T) {
	p := &Projector{Out: failWriter{}}
	err := p.Run(context.Background(), objects(t, `{"A":1}`))
	if err == nil || !strings.Contains(err.Error(), "write header") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRun_WithScanner(t *testing.T) {
	in := "{\n  \"Name\": \"A\",\n  \"Count\": 1\n}{\n  \"Name\": \"B\",\n  \"Count\": 2\n}\n"
	s := scan.New(strings.NewReader(in), scan.ColumnBrace, nil)
	p, out, _ := newProjector(rename.Map{})
	if err := p.Run(context.Background(), s.All()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.String() != "\"NAME\",\"COUNT\"\n\"A\",\"1\"\n\"B\",\"2\"\n" {
		t.Fatalf("stdout: %q", out.String())
	}
}

func TestFieldCountMatchesKeys(t *testing.T) {
	obj, _ := record.Decode([]byte(`{"A":"x,y","B":null,"C":"\"q\""}`))
	p, _, _ := newProjector(rename.Map{})
	if got := strings.Count(p.Header(obj.Keys()), `","`) + 1; got != obj.Len() {
		t.Fatalf("header columns: %d", got)
	}
	if got := Row(obj.Values()); got != `"x,y","","""q"""` {
		t.Fatalf("row: %s", got)
	}
}
