// Package tracing wraps one traced operation in a step helper: a span is
// opened with the operation's attributes, annotated with events while the
// work runs, and closed exactly once with the operation's outcome. The
// step carries the operation's logger so failures surface in both
// signals.
package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Span is one in-flight traced operation.
type Span struct {
	span   trace.Span
	logger *zap.Logger
	ctx    context.Context
}

// StartSpan opens a span for the named operation. The returned context
// carries the span for nested operations.
func StartSpan(ctx context.Context, tracer trace.Tracer, logger *zap.Logger, name string, attrs ...attribute.KeyValue) (context.Context, *Span) {
	ctx, span := tracer.Start(ctx, name, trace.WithAttributes(attrs...))

	return ctx, &Span{
		span:   span,
		logger: logger,
		ctx:    ctx,
	}
}

// End closes the span with the operation's final error, recording and
// logging a failure. Meant to run deferred over a named error return.
func (s *Span) End(err error) {
	if err != nil {
		s.span.SetStatus(codes.Error, err.Error())
		s.span.RecordError(err)
		s.logger.Debug("Operation failed", zap.Error(err))
	} else {
		s.span.SetStatus(codes.Ok, "")
	}

	s.span.End()
}

func (s *Span) AddEvent(name string, attrs ...attribute.KeyValue) {
	s.span.AddEvent(name, trace.WithAttributes(attrs...))
}

func (s *Span) SetAttributes(attrs ...attribute.KeyValue) {
	s.span.SetAttributes(attrs...)
}
