package tracer

import (
	"context"
	"sync"
)

// NoopTracer discards every span.
type NoopTracer struct{}

// NewNoop creates a new no-op tracer.
func NewNoop() *NoopTracer {
	return &NoopTracer{}
}

// Start returns the context unchanged and a no-op span.
func (t *NoopTracer) Start(ctx context.Context, _ string, _ ...Attribute) (context.Context, Span) {
	return ctx, noopSpan{}
}

type noopSpan struct{}

func (noopSpan) End(_ error)                       {}
func (noopSpan) SetAttributes(_ ...Attribute)      {}
func (noopSpan) AddEvent(_ string, _ ...Attribute) {}

// Recorder keeps finished span names and their errors in memory.
// Tests use it to assert which operations were traced.
type Recorder struct {
	mu    sync.Mutex
	spans []RecordedSpan
}

// RecordedSpan is a finished span captured by Recorder.
type RecordedSpan struct {
	Name   string
	Attrs  []Attribute
	Events []string
	Err    error
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Start opens a span that is captured when End is called.
func (r *Recorder) Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span) {
	return ctx, &recordedSpan{rec: r, span: RecordedSpan{Name: name, Attrs: append([]Attribute(nil), attrs...)}}
}

// Spans returns a snapshot of finished spans in completion order.
func (r *Recorder) Spans() []RecordedSpan {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]RecordedSpan(nil), r.spans...)
}

type recordedSpan struct {
	rec  *Recorder
	span RecordedSpan
}

func (s *recordedSpan) End(err error) {
	s.span.Err = err
	s.rec.mu.Lock()
	s.rec.spans = append(s.rec.spans, s.span)
	s.rec.mu.Unlock()
}

func (s *recordedSpan) SetAttributes(attrs ...Attribute) {
	s.span.Attrs = append(s.span.Attrs, attrs...)
}

func (s *recordedSpan) AddEvent(name string, _ ...Attribute) {
	s.span.Events = append(s.span.Events, name)
}

var (
	_ Tracer = (*NoopTracer)(nil)
	_ Tracer = (*Recorder)(nil)
	_ Span   = noopSpan{}
	_ Span   = (*recordedSpan)(nil)
)
