package core

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracer is a thin wrapper over the otel API. Spans stay no-ops until
// the embedding application installs a trace provider.
type tracer struct {
	t trace.Tracer
}

func newTracer() tracer {
	return tracer{t: otel.Tracer("hitsdb/core")}
}

func (t tracer) Start(c context.Context, name string) (context.Context, span) {
	c, s := t.t.Start(c, name)
	return c, span{s: s}
}

type span struct {
	s trace.Span
}

func (s span) End() { s.s.End() }

func (s span) Recording() bool { return s.s.IsRecording() }

// Error marks the span failed and records err on it.
func (s span) Error(err error) {
	if !s.s.IsRecording() {
		return
	}
	s.s.RecordError(err)
	s.s.SetStatus(codes.Error, err.Error())
}

// Attr sets a string attribute on the span.
func (s span) Attr(key, value string) {
	s.s.SetAttributes(attribute.String(key, value))
}
