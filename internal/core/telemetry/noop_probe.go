package telemetry

import (
	"context"
	"errors"
	"time"

	"taskboard/internal/core/port"
)

// NoOpProbe implements Telemetry with no operations - useful for testing or when telemetry is disabled
type NoOpProbe struct{}

func NewNoOpProbe() port.Telemetry {
	return &NoOpProbe{}
}

// NoOpSpan implements the Span interface with no operations
type NoOpSpan struct{}

func (s *NoOpSpan) End()                                       {}
func (s *NoOpSpan) SetAttributes(attrs map[string]interface{}) {}
func (s *NoOpSpan) SetStatus(code string, message string)      {}
func (s *NoOpSpan) RecordError(err error)                      {}

func (p *NoOpProbe) StartStorageSpan(ctx context.Context, operation string, backend string, attrs map[string]interface{}) (context.Context, port.Span) {
	return ctx, &NoOpSpan{}
}

func (p *NoOpProbe) StartServiceSpan(ctx context.Context, service string, operation string, attrs map[string]interface{}) (context.Context, port.Span) {
	return ctx, &NoOpSpan{}
}

func (p *NoOpProbe) RecordStorageOperation(ctx context.Context, operation string, backend string, duration time.Duration, err error) {
}

func (p *NoOpProbe) RecordServiceOperation(ctx context.Context, service string, operation string, duration time.Duration, err error) {
}

func (p *NoOpProbe) RecordBusinessEvent(ctx context.Context, event string, entity string, entityID string, metadata map[string]interface{}) {
}

func (p *NoOpProbe) RecordHTTPOperation(ctx context.Context, method string, path string, statusCode int, duration time.Duration) {
}

func (p *NoOpProbe) RecordError(ctx context.Context, operation string, err error, metadata map[string]interface{}) {
}

// TelemetryOperation is a helper to measure operation duration
type TelemetryOperation struct {
	probe     port.Telemetry
	ctx       context.Context
	startTime time.Time
	operation string
	backend   string
}

// StartOperation begins measuring a storage operation
func StartOperation(probe port.Telemetry, ctx context.Context, operation, backend string) *TelemetryOperation {
	return &TelemetryOperation{
		probe:     probe,
		ctx:       ctx,
		startTime: time.Now(),
		operation: operation,
		backend:   backend,
	}
}

// End marks the operation as completed. A missing key is not a failure.
func (op *TelemetryOperation) End(err error) {
	if errors.Is(err, port.ErrStateNotFound) {
		err = nil
	}

	if op.probe != nil {
		op.probe.RecordStorageOperation(op.ctx, op.operation, op.backend, time.Since(op.startTime), err)
	}
}
