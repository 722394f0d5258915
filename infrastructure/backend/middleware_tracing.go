package backend

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/go-verdict/internal/ports"
)

// tracedBackend adds distributed tracing spans around backend calls for
// debugging and performance analysis.
type tracedBackend struct {
	next   ports.JudgmentBackend
	tracer trace.Tracer
}

// TracingMiddleware creates middleware that wraps each backend call in an
// OpenTelemetry span named after the service.
func TracingMiddleware(serviceName string) Middleware {
	tracer := otel.Tracer(serviceName)

	return func(next ports.JudgmentBackend) ports.JudgmentBackend {
		return &tracedBackend{
			next:   next,
			tracer: tracer,
		}
	}
}

// SubmitJudgment executes the request within a trace span carrying the
// model, prompt length, and outcome attributes.
func (t *tracedBackend) SubmitJudgment(ctx context.Context, prompt string) (ports.JudgmentResult, error) {
	ctx, span := t.tracer.Start(ctx, "JudgmentBackend.SubmitJudgment",
		trace.WithAttributes(
			attribute.String("judgment.model", t.next.Model()),
			attribute.Int("judgment.prompt_length", len(prompt)),
		),
	)
	defer span.End()

	result, err := t.next.SubmitJudgment(ctx, prompt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return result, err
	}

	span.SetAttributes(
		attribute.Bool("judgment.structured", result.Structured),
		attribute.String("judgment.verdict", result.Verdict),
	)

	return result, nil
}

// Model returns the model name from the wrapped implementation.
func (t *tracedBackend) Model() string { return t.next.Model() }
