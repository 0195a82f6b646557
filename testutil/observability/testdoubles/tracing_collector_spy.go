package testdoubles

import (
	"context"
	"maps"
	"sync"

	"github.com/indraarianggi/nestjs-library-app-sub000/eventstore"
)

// SpanRecord is one span started through the spy. Status and EndAttrs are set once it is finished.
type SpanRecord struct {
	Name       string
	StartAttrs map[string]string
	EndAttrs   map[string]string
	Status     string
	Finished   bool
}

// SpySpanContext is the SpanContext handed out by TracingCollectorSpy.
type SpySpanContext struct {
	spy   *TracingCollectorSpy
	index int
}

func (c *SpySpanContext) SetStatus(status string) {
	c.spy.update(c.index, func(r *SpanRecord) { r.Status = status })
}

func (c *SpySpanContext) AddAttribute(key, value string) {
	c.spy.update(c.index, func(r *SpanRecord) {
		if r.EndAttrs == nil {
			r.EndAttrs = map[string]string{}
		}
		r.EndAttrs[key] = value
	})
}

// TracingCollectorSpy captures calls made through eventstore.TracingCollector.
type TracingCollectorSpy struct {
	mu    sync.Mutex
	spans []SpanRecord
}

func NewTracingCollectorSpy() *TracingCollectorSpy {
	return &TracingCollectorSpy{}
}

func (s *TracingCollectorSpy) StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, eventstore.SpanContext) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.spans = append(s.spans, SpanRecord{Name: name, StartAttrs: maps.Clone(attrs)})

	return ctx, &SpySpanContext{spy: s, index: len(s.spans) - 1}
}

func (s *TracingCollectorSpy) FinishSpan(spanCtx eventstore.SpanContext, status string, attrs map[string]string) {
	spySpan, ok := spanCtx.(*SpySpanContext)
	if !ok {
		return
	}

	s.update(spySpan.index, func(r *SpanRecord) {
		r.Status = status
		r.EndAttrs = maps.Clone(attrs)
		r.Finished = true
	})
}

func (s *TracingCollectorSpy) update(index int, fn func(*SpanRecord)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(&s.spans[index])
}

// Spans returns a copy of all captured spans in start order.
func (s *TracingCollectorSpy) Spans() []SpanRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]SpanRecord(nil), s.spans...)
}

var (
	_ eventstore.TracingCollector = (*TracingCollectorSpy)(nil)
	_ eventstore.SpanContext      = (*SpySpanContext)(nil)
)
