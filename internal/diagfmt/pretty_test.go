package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"ripple/internal/diag"
	"ripple/internal/source"
)

func sampleBag() (*diag.Bag, *source.FileSet, source.FileID) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("pipe.rpl", []byte("let x = true;\nlet y = x + 1;\n"))
	bag := diag.NewBag(16)
	bag.Add(diag.NewError(diag.InferTypeConflict,
		source.Span{File: id, Start: 22, End: 27}, "conflicting types for expression"))
	return bag, fs, id
}

func TestPrettyPointsAtSpan(t *testing.T) {
	bag, fs, _ := sampleBag()
	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{ShowNotes: true})

	out := buf.String()
	if !strings.Contains(out, "pipe.rpl:2:9") {
		t.Fatalf("missing position in output:\n%s", out)
	}
	if !strings.Contains(out, "RPL4001") {
		t.Fatalf("missing code in output:\n%s", out)
	}
	if !strings.Contains(out, "^~~~~") {
		t.Fatalf("missing caret underline:\n%s", out)
	}
	if !strings.Contains(out, "let y = x + 1;") {
		t.Fatalf("missing context line:\n%s", out)
	}
}

func TestJSONRoundTrips(t *testing.T) {
	bag, fs, _ := sampleBag()
	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, JSONOpts{IncludePositions: true, IncludeNotes: true}); err != nil {
		t.Fatalf("encode: %v", err)
	}
	var out Output
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if out.Count != 1 || len(out.Diagnostics) != 1 {
		t.Fatalf("unexpected output: %+v", out)
	}
	d := out.Diagnostics[0]
	if d.Code != "RPL4001" || d.Severity != "error" || d.Location.StartLine != 2 {
		t.Fatalf("diagnostic fields wrong: %+v", d)
	}
}

func TestJSONTruncation(t *testing.T) {
	bag, fs, id := sampleBag()
	bag.Add(diag.NewError(diag.InferUnresolvedType,
		source.Span{File: id, Start: 4, End: 5}, "cannot infer type"))
	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, JSONOpts{Max: 1}); err != nil {
		t.Fatalf("encode: %v", err)
	}
	var out Output
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Diagnostics) != 1 || !out.Truncated || out.Count != 2 {
		t.Fatalf("truncation wrong: %+v", out)
	}
}
