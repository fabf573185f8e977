// Package trace provides a lightweight event tracer for the driver and its
// passes. The stream tracer writes one text line per event; the nop tracer
// costs nothing when tracing is off.
package trace

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"
)

// Tracer emits trace events. Implementations must be goroutine-safe: the
// driver traces from worker goroutines.
type Tracer interface {
	Emit(ev Event)
	Flush() error
	Level() Level
	Enabled() bool
}

type nopTracer struct{}

func (nopTracer) Emit(Event)    {}
func (nopTracer) Flush() error  { return nil }
func (nopTracer) Level() Level  { return LevelOff }
func (nopTracer) Enabled() bool { return false }

// Nop is the shared no-op tracer.
var Nop Tracer = nopTracer{}

// StreamTracer writes events to a writer as they arrive.
type StreamTracer struct {
	mu    sync.Mutex
	w     io.Writer
	level Level
	seq   atomic.Uint64
}

func NewStream(w io.Writer, level Level) *StreamTracer {
	return &StreamTracer{w: w, level: level}
}

func (t *StreamTracer) Emit(ev Event) {
	if !t.level.ShouldEmit(ev.Scope) {
		return
	}
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}
	ev.Seq = t.seq.Add(1)

	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.w, "%s %06d %-6s %-6s %s",
		ev.Time.Format("15:04:05.000"), ev.Seq, ev.Scope, ev.Kind, ev.Name)
	if ev.Detail != "" {
		fmt.Fprintf(t.w, " (%s)", ev.Detail)
	}
	fmt.Fprintln(t.w)
}

func (t *StreamTracer) Flush() error  { return nil }
func (t *StreamTracer) Level() Level  { return t.level }
func (t *StreamTracer) Enabled() bool { return t.level > LevelOff }

// Span emits a begin event and returns a func emitting the matching end.
func Span(tr Tracer, scope Scope, name string) func(detail string) {
	if tr == nil || !tr.Enabled() {
		return func(string) {}
	}
	tr.Emit(Event{Kind: KindSpanBegin, Scope: scope, Name: name})
	start := time.Now()
	return func(detail string) {
		if detail == "" {
			detail = time.Since(start).Round(time.Microsecond).String()
		}
		tr.Emit(Event{Kind: KindSpanEnd, Scope: scope, Name: name, Detail: detail})
	}
}

// Point emits an instant event.
func Point(tr Tracer, scope Scope, name, detail string) {
	if tr == nil || !tr.Enabled() {
		return
	}
	tr.Emit(Event{Kind: KindPoint, Scope: scope, Name: name, Detail: detail})
}
