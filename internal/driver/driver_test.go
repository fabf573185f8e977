package driver

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"ripple/internal/ast"
	"ripple/internal/diag"
	"ripple/internal/project"
	"ripple/internal/source"
	"ripple/internal/types"
	"ripple/internal/unit"
)

func testConfig() project.Config {
	cfg := project.Default()
	cfg.Jobs = 2
	return cfg
}

func writeUnit(t *testing.T, dir, name string, broken bool) string {
	t.Helper()
	b := ast.NewBuilder(ast.Hints{})
	sp := source.Span{File: 1, Start: 0, End: 10}
	file := b.NewFile(sp)

	var init ast.ExprID
	if broken {
		// bool initializer against an int8 annotation
		init = b.Exprs.NewBoolLit(sp, true)
	} else {
		init = b.Exprs.NewIntLit(sp, 5, 0)
	}
	let := b.Stmts.NewLet(sp, b.Intern("x"), b.TypeSyns.NewNamed(sp, b.Intern("int8")), init)
	body := b.Stmts.NewBlock(sp, []ast.StmtID{let})
	b.PushItem(file, b.Items.NewStage(sp, b.Intern("main"), body))

	path := filepath.Join(dir, name)
	if err := unit.Save(path, unit.Snapshot(name, "let x: int8 = ...;", b, file)); err != nil {
		t.Fatalf("save unit: %v", err)
	}
	return path
}

func TestInferFile(t *testing.T) {
	dir := t.TempDir()
	path := writeUnit(t, dir, "good.rplu", false)

	res, err := InferFile(path, Options{Config: testConfig()})
	if err != nil {
		t.Fatalf("infer: %v", err)
	}
	if !res.OK {
		t.Fatalf("unit failed: %v", res.Bag.Items())
	}
	if res.Resolved == 0 {
		t.Fatal("no slots resolved")
	}
}

func TestInferFileReportsLoadFailures(t *testing.T) {
	dir := t.TempDir()

	foreign := filepath.Join(dir, "foreign.rplu")
	b := ast.NewBuilder(ast.Hints{})
	file := b.NewFile(source.Span{File: 1, Start: 0, End: 1})
	payload := unit.Snapshot("foreign.rplu", "x", b, file)
	payload.Schema = unit.SchemaVersion + 1
	var buf bytes.Buffer
	if err := unit.Encode(&buf, payload); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := os.WriteFile(foreign, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	corrupt := filepath.Join(dir, "corrupt.rplu")
	if err := os.WriteFile(corrupt, []byte("not msgpack"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	nosrc := filepath.Join(dir, "nosrc.rplu")
	b2 := ast.NewBuilder(ast.Hints{})
	file2 := b2.NewFile(source.Span{File: 1, Start: 0, End: 1})
	if err := unit.Save(nosrc, unit.Snapshot("nosrc.rplu", "", b2, file2)); err != nil {
		t.Fatalf("save: %v", err)
	}

	cases := []struct {
		name string
		path string
		code diag.Code
	}{
		{"missing", filepath.Join(dir, "absent.rplu"), diag.IOLoadUnitError},
		{"foreign schema", foreign, diag.UnitSchemaError},
		{"corrupt", corrupt, diag.UnitCorruptError},
		{"no source", nosrc, diag.UnitMissingSource},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := InferFile(tc.path, Options{Config: testConfig()})
			if err != nil {
				t.Fatalf("load failure should come back as a result: %v", err)
			}
			if res.OK {
				t.Fatal("expected a failing result")
			}
			items := res.Bag.Items()
			if len(items) != 1 || items[0].Code != tc.code {
				t.Fatalf("got diagnostics %v, want one %s", items, tc.code)
			}
		})
	}
}

func TestInferFileReportsConflict(t *testing.T) {
	dir := t.TempDir()
	path := writeUnit(t, dir, "bad.rplu", true)

	res, err := InferFile(path, Options{Config: testConfig()})
	if err != nil {
		t.Fatalf("infer: %v", err)
	}
	if res.OK {
		t.Fatal("expected failure for conflicting unit")
	}
	found := false
	for _, d := range res.Bag.Items() {
		if d.Code == diag.InferTypeConflict {
			found = true
		}
	}
	if !found {
		t.Fatalf("missing conflict diagnostic: %v", res.Bag.Items())
	}
}

func TestInferDirOrdersResults(t *testing.T) {
	dir := t.TempDir()
	writeUnit(t, dir, "b.rplu", true)
	writeUnit(t, dir, "a.rplu", false)

	sink := NewChannelSink(16)
	results, err := InferDir(context.Background(), dir, Options{Config: testConfig(), Sink: sink})
	if err != nil {
		t.Fatalf("infer dir: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if filepath.Base(results[0].Path) != "a.rplu" || filepath.Base(results[1].Path) != "b.rplu" {
		t.Fatalf("results out of order: %s, %s", results[0].Path, results[1].Path)
	}
	if !results[0].OK || results[1].OK {
		t.Fatalf("outcome flags wrong: %v, %v", results[0].OK, results[1].OK)
	}

	finished := 0
	for len(sink.C) > 0 {
		if ev := <-sink.C; ev.Kind == EventUnitFinished {
			finished++
		}
	}
	if finished != 2 {
		t.Fatalf("saw %d finish events, want 2", finished)
	}
}

func TestDiskCacheHit(t *testing.T) {
	dir := t.TempDir()
	path := writeUnit(t, dir, "good.rplu", false)
	cache, err := OpenDiskCacheAt(filepath.Join(dir, "cache"))
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}

	opts := Options{Config: testConfig(), Cache: cache}
	first, err := InferFile(path, opts)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.Cached {
		t.Fatal("first run should miss the cache")
	}

	second, err := InferFile(path, opts)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !second.Cached {
		t.Fatal("second run should hit the cache")
	}
	if second.OK != first.OK || second.Resolved != first.Resolved {
		t.Fatalf("cached outcome differs: %+v vs %+v", second, first)
	}
}

func TestDiskCacheHitHonorsWriteBack(t *testing.T) {
	dir := t.TempDir()
	path := writeUnit(t, dir, "good.rplu", false)
	cache, err := OpenDiskCacheAt(filepath.Join(dir, "cache"))
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}

	warm := Options{Config: testConfig(), Cache: cache, OutDir: filepath.Join(dir, "typed1")}
	first, err := InferFile(path, warm)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.Cached {
		t.Fatal("first run should miss the cache")
	}

	out2 := filepath.Join(dir, "typed2")
	second, err := InferFile(path, Options{Config: testConfig(), Cache: cache, OutDir: out2})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !second.Cached {
		t.Fatal("second run should hit the cache")
	}
	typed, err := unit.Load(filepath.Join(out2, "good.rplu"))
	if err != nil {
		t.Fatalf("cache hit skipped the write-back: %v", err)
	}

	found := false
	for _, e := range typed.AST.Exprs.Arena.Slice() {
		if e.Type != types.NoTypeID {
			found = true
		}
	}
	if !found {
		t.Fatal("typed unit from a cache hit carries no resolved types")
	}
}

func TestWriteBackProducesTypedUnit(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "typed")
	path := writeUnit(t, dir, "good.rplu", false)

	opts := Options{Config: testConfig(), OutDir: out}
	if _, err := InferFile(path, opts); err != nil {
		t.Fatalf("infer: %v", err)
	}
	typed, err := unit.Load(filepath.Join(out, "good.rplu"))
	if err != nil {
		t.Fatalf("load typed unit: %v", err)
	}

	found := false
	for _, e := range typed.AST.Exprs.Arena.Slice() {
		if e.Type != types.NoTypeID {
			found = true
		}
	}
	if !found {
		t.Fatal("typed unit carries no resolved expression types")
	}
}
