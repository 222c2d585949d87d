// Package tracer provides a small tracing abstraction for the bag service.
//
// Services depend on the Tracer interface rather than on OpenTelemetry, so
// tests can run with NoopTracer while the server wires OTelTracer.
package tracer

import (
	"context"
	"time"
)

// Span represents an active trace span.
type Span interface {
	// End completes the span. A non-nil err marks the span as failed.
	// End must be called exactly once, typically via defer.
	End(err error)

	SetAttributes(attrs ...Attribute)

	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	// Start creates a new span with the given name and attributes.
	//
	// Example:
	//   ctx, span := t.Start(ctx, tracer.SpanBagClaim,
	//       tracer.Int64(tracer.AttrTokenID, int64(id)),
	//       tracer.String(tracer.AttrChannel, "public"),
	//   )
	//   defer func() { span.End(err) }()
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute represents a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

// String creates a string attribute.
func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

// Bool creates a boolean attribute.
func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

// Int64 creates an int64 attribute.
func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Float64 creates a float64 attribute.
func Float64(key string, value float64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Duration creates a duration attribute in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// Span names.
const (
	SpanBagClaim      = "bag.claim"
	SpanBagOwnerClaim = "bag.owner_claim"
	SpanBagQuery      = "bag.query"
	SpanBagDerive     = "bag.derive"
	SpanBagState      = "bag.state"
)

// Attribute keys. Credentials are never attached to spans.
const (
	AttrTokenID   = "bag.token_id"
	AttrChannel   = "bag.channel"
	AttrCategory  = "bag.category"
	AttrTier      = "bag.tier"
	AttrOperation = "bag.operation"
	AttrOutcome   = "bag.outcome"
)

// Event names.
const (
	EventCredentialDrawn = "credential.drawn"
	EventAuditEmitted    = "audit.emitted"
)
