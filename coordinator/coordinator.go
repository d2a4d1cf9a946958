// Package coordinator runs a model priority list until one model yields a usable result.
// Each model is tried once; the first success wins and later models are never called.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"barkeep"
	"barkeep/completion"
	"barkeep/recipe"
)

// DefaultAttemptTimeout bounds a single completion call.
const DefaultAttemptTimeout = 60 * time.Second

// Options configures a Coordinator. Zero values fall back to defaults and the global
// OpenTelemetry providers.
type Options struct {
	AttemptTimeout time.Duration
	Params         completion.Params // sampling controls for structured generation
	Logger         barkeep.AttemptLogger
	Tracer         trace.Tracer
	Meter          metric.Meter
}

// Coordinator drives the fallback loop over a completion client.
type Coordinator struct {
	client  completion.Client
	timeout time.Duration
	params  completion.Params
	logger  barkeep.AttemptLogger
	tracer  trace.Tracer

	attempts metric.Int64Counter
	failures metric.Int64Counter
	duration metric.Float64Histogram
}

// New creates a Coordinator.
func New(client completion.Client, opts Options) *Coordinator {
	if opts.AttemptTimeout <= 0 {
		opts.AttemptTimeout = DefaultAttemptTimeout
	}
	if opts.Params == (completion.Params{}) {
		opts.Params = completion.StructuredParams
	}
	if opts.Logger == nil {
		opts.Logger = barkeep.NewNoOpAttemptLogger()
	}
	if opts.Tracer == nil {
		opts.Tracer = otel.Tracer(barkeep.TracerNameCoordinator)
	}
	if opts.Meter == nil {
		opts.Meter = otel.Meter(barkeep.TracerNameCoordinator)
	}

	c := &Coordinator{
		client:  client,
		timeout: opts.AttemptTimeout,
		params:  opts.Params,
		logger:  opts.Logger,
		tracer:  opts.Tracer,
	}
	c.attempts, _ = opts.Meter.Int64Counter("generation_attempts_total",
		metric.WithDescription("Total number of model attempts made by the fallback loop"))
	c.failures, _ = opts.Meter.Int64Counter("generation_failures_total",
		metric.WithDescription("Total number of fallback runs that exhausted every model"))
	c.duration, _ = opts.Meter.Float64Histogram("attempt_duration_seconds",
		metric.WithDescription("Duration of individual model attempts in seconds"))
	return c
}

// Client returns the completion client the coordinator calls.
func (c *Coordinator) Client() completion.Client { return c.client }

// Attempt is one single-shot try against model. raw is the model output, journaled
// whether or not it was usable.
type Attempt[T any] func(ctx context.Context, model string) (value T, raw string, err error)

// Fallback tries each model in order and returns the first successful value. Transport and
// parse failures are logged and the loop advances. Caller cancellation stops the loop and
// returns the context's error. Exhaustion returns a *GenerationFailure.
func Fallback[T any](ctx context.Context, c *Coordinator, task string, models []string, attempt Attempt[T]) (T, error) {
	var zero T

	ctx, span := c.tracer.Start(ctx, "Coordinator.Fallback", trace.WithAttributes(
		attribute.String("task", task),
		attribute.Int("models_count", len(models)),
	))
	defer span.End()

	slog.Info("COORDINATOR: Starting fallback run", "task", task, "models", models)

	failure := &GenerationFailure{Task: task}
	for i, model := range models {
		if err := ctx.Err(); err != nil {
			return zero, c.canceled(span, task, i+1, model, err)
		}

		attemptCtx, attemptSpan := c.tracer.Start(ctx, fmt.Sprintf("Coordinator.Fallback.Attempt.%d", i+1),
			trace.WithAttributes(attribute.String("model", model)))

		callCtx, cancel := context.WithTimeout(attemptCtx, c.timeout)
		start := time.Now()
		value, raw, err := attempt(callCtx, model)
		elapsed := time.Since(start)
		cancel()

		outcome := classify(err)
		if err != nil && ctx.Err() != nil {
			outcome = barkeep.OutcomeCanceled
		}

		c.logAttempt(barkeep.AttemptLog{
			Attempt:   i + 1,
			Task:      task,
			Model:     model,
			Timestamp: start,
			Duration:  elapsed.String(),
			Outcome:   outcome,
			Output:    raw,
			Error:     errString(err),
		})
		attrs := metric.WithAttributes(
			attribute.String("task", task),
			attribute.String("model", model),
			attribute.String("outcome", outcome),
		)
		c.attempts.Add(ctx, 1, attrs)
		c.duration.Record(ctx, elapsed.Seconds(), attrs)

		if err == nil {
			attemptSpan.SetStatus(codes.Ok, "")
			attemptSpan.End()
			span.SetAttributes(attribute.String("winning_model", model), attribute.Int("attempts", i+1))
			slog.Info("COORDINATOR: Attempt succeeded", "task", task, "attempt", i+1, "model", model, "duration_ms", elapsed.Milliseconds())
			return value, nil
		}

		attemptSpan.RecordError(err)
		attemptSpan.SetStatus(codes.Error, outcome)
		attemptSpan.End()

		if outcome == barkeep.OutcomeCanceled {
			return zero, c.canceled(span, task, i+1, model, ctx.Err())
		}

		slog.Warn("COORDINATOR: Attempt failed, advancing to next model",
			"task", task,
			"attempt", i+1,
			"model", model,
			"outcome", outcome,
			"error", err,
		)
		failure.Attempts = append(failure.Attempts, AttemptError{Model: model, Outcome: outcome, Err: err})
	}

	c.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("task", task)))
	span.RecordError(failure)
	span.SetStatus(codes.Error, "all models exhausted")
	slog.Error("COORDINATOR: All models exhausted", "task", task, "attempts", len(failure.Attempts))
	return zero, failure
}

func (c *Coordinator) canceled(span trace.Span, task string, attempt int, model string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, "canceled")
	slog.Warn("COORDINATOR: Run canceled by caller", "task", task, "attempt", attempt, "model", model, "error", err)
	return err
}

func (c *Coordinator) logAttempt(a barkeep.AttemptLog) {
	if err := c.logger.LogAttempt(a); err != nil {
		slog.Error("COORDINATOR: Failed to journal attempt", "attempt", a.Attempt, "error", err)
	}
}

func classify(err error) string {
	var pe *recipe.ParseError
	switch {
	case err == nil:
		return barkeep.OutcomeSuccess
	case errors.As(err, &pe), errors.Is(err, ErrEmptyReply):
		return barkeep.OutcomeParseFailure
	default:
		return barkeep.OutcomeTransportError
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// Generate asks each model for a structured recipe and returns the first complete parse.
func (c *Coordinator) Generate(ctx context.Context, p recipe.Prompt, models []string) (recipe.Recipe, error) {
	return Fallback(ctx, c, "generate recipe", models, func(ctx context.Context, model string) (recipe.Recipe, string, error) {
		req := completion.NewStructuredRequest(p.System, p.User, p.Schema, model)
		req.Params = c.params
		raw, err := c.client.Complete(ctx, req)
		if err != nil {
			return recipe.Recipe{}, "", err
		}
		r, err := recipe.Parse(raw)
		return r, raw, err
	})
}

// Reply runs free-text requests through the fallback loop; the first non-empty reply wins.
// build is called once per model to produce that model's request.
func (c *Coordinator) Reply(ctx context.Context, task string, models []string, build func(model string) completion.Request) (string, error) {
	return Fallback(ctx, c, task, models, func(ctx context.Context, model string) (string, string, error) {
		raw, err := c.client.Complete(ctx, build(model))
		if err != nil {
			return "", "", err
		}
		reply := strings.TrimSpace(raw)
		if reply == "" {
			return "", raw, ErrEmptyReply
		}
		return reply, raw, nil
	})
}
