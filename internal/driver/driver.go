// Package driver runs the inference stage over unit files: decode, resolve
// aggregates, infer, optionally write the typed unit back. Directories are
// processed in parallel with deterministic result ordering; per-unit work
// stays single-threaded, the pass itself has no internal locking.
package driver

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"ripple/internal/aggtypes"
	"ripple/internal/diag"
	"ripple/internal/infer"
	"ripple/internal/observ"
	"ripple/internal/project"
	"ripple/internal/source"
	"ripple/internal/trace"
	"ripple/internal/types"
	"ripple/internal/unit"
)

// Options configures one driver run.
type Options struct {
	Config project.Config
	Tracer trace.Tracer
	Sink   Sink
	Cache  *DiskCache
	// OutDir receives typed copies of the processed units; empty skips the
	// write-back.
	OutDir string
}

func (o *Options) tracer() trace.Tracer {
	if o.Tracer == nil {
		return trace.Nop
	}
	return o.Tracer
}

func (o *Options) sink() Sink {
	if o.Sink == nil {
		return NopSink
	}
	return o.Sink
}

// UnitResult is the outcome for one unit.
type UnitResult struct {
	Path    string
	Name    string
	OK      bool
	Cached  bool
	Bag     *diag.Bag
	FileSet *source.FileSet
	Timings observ.Report
	// Resolved counts resolved slots, a cheap sanity signal for --timings.
	Resolved int
}

// InferFile processes one unit file. Load and decode failures come back as
// failing results with a diagnostic, not as Go errors, so one bad unit does
// not abort a directory run.
func InferFile(path string, opts Options) (*UnitResult, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return loadFailure(path, diag.IOLoadUnitError, err.Error()), nil
	}
	return inferRaw(path, raw, opts)
}

// loadFailure builds the result for a unit that never reached the solver.
func loadFailure(path string, code diag.Code, msg string) *UnitResult {
	fs := source.NewFileSet()
	file := fs.AddVirtual(path, nil)
	bag := diag.NewBag(1)
	bag.Add(diag.NewError(code, source.Span{File: file}, msg))
	return &UnitResult{
		Path:    path,
		Name:    filepath.Base(path),
		Bag:     bag,
		FileSet: fs,
	}
}

func inferRaw(path string, raw []byte, opts Options) (*UnitResult, error) {
	endUnit := trace.Span(opts.tracer(), trace.ScopeUnit, "unit:"+filepath.Base(path))
	defer endUnit("")

	key := cacheKey(raw)
	if opts.Cache != nil {
		var hit CachePayload
		found, err := opts.Cache.Get(key, &hit)
		if err == nil && found {
			if res, usable := reviveFromCache(path, &hit, opts); usable {
				return res, nil
			}
		}
	}

	timer := observ.NewTimer()

	decode := timer.Begin("decode")
	u, err := decodeUnit(path, raw)
	if err != nil {
		code := diag.UnitCorruptError
		if errors.Is(err, unit.ErrSchema) {
			code = diag.UnitSchemaError
		}
		return loadFailure(path, code, err.Error()), nil
	}
	if u.Source == "" {
		return loadFailure(path, diag.UnitMissingSource, "unit carries no source text"), nil
	}
	timer.End(decode, fmt.Sprintf("%d exprs", u.AST.Exprs.Arena.Len()))

	fs := source.NewFileSet()
	fs.AddVirtual(u.Name, []byte(u.Source))

	bag := diag.NewBag(opts.Config.MaxDiagnostics)
	reporter := diag.BagReporter{Bag: bag}
	interner := types.NewInterner()

	aggPhase := timer.Begin("aggregates")
	resolver := aggtypes.NewResolver(u.AST, interner, reporter)
	aggOK := resolver.Run(u.Root)
	timer.End(aggPhase, "")

	inferPhase := timer.Begin("infer")
	var resolved int
	inferOK := false
	if aggOK {
		endPass := trace.Span(opts.tracer(), trace.ScopePass, "infer")
		var res *infer.Result
		res, inferOK = infer.Run(u.AST, u.Root, interner, resolver, reporter)
		endPass(fmt.Sprintf("%d nodes, %d rounds", res.Nodes, res.Rounds))
		resolved = len(res.ExprTypes) + len(res.LetTypes)
	}
	timer.End(inferPhase, fmt.Sprintf("%d slots resolved", resolved))

	ok := aggOK && inferOK && !bag.HasErrors()
	bag.Sort()

	// The snapshot is taken after the solver's write-back, so it carries the
	// resolved slots. It feeds both the OutDir copy and the cache entry.
	var typed *unit.Payload
	if ok {
		typed = unit.Snapshot(u.Name, u.Source, u.AST, u.Root)
	}
	if typed != nil && opts.OutDir != "" {
		out := filepath.Join(opts.OutDir, filepath.Base(path))
		if err := unit.Save(out, typed); err != nil {
			return nil, fmt.Errorf("write typed unit: %w", err)
		}
	}

	result := &UnitResult{
		Path:     path,
		Name:     u.Name,
		OK:       ok,
		Bag:      bag,
		FileSet:  fs,
		Timings:  timer.Report(),
		Resolved: resolved,
	}
	if opts.Cache != nil {
		payload := makeCachePayload(u, result, typed)
		if err := opts.Cache.Put(key, payload); err != nil {
			trace.Point(opts.tracer(), trace.ScopeUnit, "cache-put-failed", err.Error())
		}
	}
	return result, nil
}

func decodeUnit(path string, raw []byte) (*unit.Unit, error) {
	p, err := unit.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p.Revive(), nil
}

func cacheKey(raw []byte) Digest {
	h := sha256.New()
	h.Write([]byte{byte(unit.SchemaVersion), byte(unit.SchemaVersion >> 8)})
	h.Write(raw)
	var d Digest
	copy(d[:], h.Sum(nil))
	return d
}

// InferDir processes every unit file under dir. Results come back in path
// order regardless of which worker finished first.
func InferDir(ctx context.Context, dir string, opts Options) ([]*UnitResult, error) {
	endRun := trace.Span(opts.tracer(), trace.ScopeDriver, "infer-dir")
	defer endRun("")

	paths, err := CollectUnits(dir, opts.Config.UnitSuffix)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no %s units under %s", opts.Config.UnitSuffix, dir)
	}

	results := make([]*UnitResult, len(paths))
	g, _ := errgroup.WithContext(ctx)
	jobs := opts.Config.Jobs
	if jobs < 1 {
		jobs = 1
	}
	g.SetLimit(jobs)

	sink := opts.sink()
	for i, path := range paths {
		g.Go(func() error {
			sink.Send(Event{Kind: EventUnitStarted, Unit: path, Index: i, Total: len(paths)})
			res, err := InferFile(path, opts)
			if err != nil {
				return err
			}
			results[i] = res
			sink.Send(Event{
				Kind: EventUnitFinished, Unit: path, Index: i, Total: len(paths),
				OK: res.OK, Cached: res.Cached,
			})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// CollectUnits lists the unit files under dir in path order, the same order
// InferDir reports results in.
func CollectUnits(dir, suffix string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, suffix) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}
