package errors

import (
	"context"
	stderrors "errors"

	"github.com/fulmenhq/gofulmen/errors"
	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/google/uuid"

	"github.com/reliefvalve/prv/internal/relay"
)

// Error codes
const (
	CodeIOFailure     = "IO_FAILURE"
	CodeConfigInvalid = "CONFIG_INVALID"
	CodeInternal      = "INTERNAL_ERROR"
)

type correlationKey struct{}

// WithCorrelationID attaches the run's correlation ID to ctx.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

// CorrelationID returns the correlation ID stored in ctx, or "".
func CorrelationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}

// NewConfigInvalidError creates a config error without an underlying cause.
func NewConfigInvalidError(message string) *errors.ErrorEnvelope {
	return errors.NewErrorEnvelope(CodeConfigInvalid, message)
}

// WrapIO wraps a fatal relay I/O failure. The failed operation is recorded
// in the envelope context when err is a *relay.IOError.
func WrapIO(ctx context.Context, err error, message string) *errors.ErrorEnvelope {
	fields := map[string]interface{}{}
	var ioErr *relay.IOError
	if stderrors.As(err, &ioErr) {
		fields["operation"] = ioErr.Op
	}

	envelope := newEnvelope(ctx, CodeIOFailure, message, err, fields)
	if updated, sevErr := envelope.WithSeverity(errors.SeverityHigh); sevErr == nil {
		envelope = updated
	}
	return envelope
}

// WrapConfigInvalid wraps a configuration load or validation failure.
func WrapConfigInvalid(ctx context.Context, err error, message string) *errors.ErrorEnvelope {
	envelope := newEnvelope(ctx, CodeConfigInvalid, message, err, nil)
	if updated, sevErr := envelope.WithSeverity(errors.SeverityMedium); sevErr == nil {
		envelope = updated
	}
	return envelope
}

// WrapInternal wraps anything else.
func WrapInternal(ctx context.Context, err error, message string) *errors.ErrorEnvelope {
	return newEnvelope(ctx, CodeInternal, message, err, nil)
}

func newEnvelope(ctx context.Context, code, message string, err error, fields map[string]interface{}) *errors.ErrorEnvelope {
	envelope := errors.NewErrorEnvelope(code, message)
	envelope = envelope.WithCorrelationID(extractCorrelationID(ctx))
	return withContext(envelope, err, fields)
}

// extractCorrelationID gets the correlation ID from ctx, falls back to a new UUID
func extractCorrelationID(ctx context.Context) string {
	if id := CorrelationID(ctx); id != "" {
		return id
	}
	return uuid.New().String()
}

func withContext(envelope *errors.ErrorEnvelope, err error, fields map[string]interface{}) *errors.ErrorEnvelope {
	if envelope == nil {
		return envelope
	}

	merged := make(map[string]interface{}, len(fields)+1)
	for key, value := range fields {
		merged[key] = value
	}
	if err != nil {
		merged["wrapped_error"] = err.Error()
	}
	if len(merged) == 0 {
		return envelope
	}

	updated, updateErr := envelope.WithContext(merged)
	if updateErr != nil {
		return envelope
	}
	return updated
}

// EnsureEnvelope normalizes any error into a gofulmen ErrorEnvelope.
func EnsureEnvelope(err error) *errors.ErrorEnvelope {
	if err == nil {
		env := errors.NewErrorEnvelope(CodeInternal, "unexpected nil error")
		env, _ = env.WithSeverity(errors.SeverityCritical)
		return env
	}

	var envelope *errors.ErrorEnvelope
	if stderrors.As(err, &envelope) && envelope != nil {
		return envelope
	}

	var ioErr *relay.IOError
	if stderrors.As(err, &ioErr) {
		return WrapIO(context.Background(), err, "relay I/O failure")
	}

	return WrapInternal(context.Background(), err, "unexpected error")
}

// ExitCodeFor picks the process exit code for err.
func ExitCodeFor(err error) foundry.ExitCode {
	if err == nil {
		return foundry.ExitCode(0)
	}
	if EnsureEnvelope(err).Code == CodeConfigInvalid {
		return foundry.ExitConfigInvalid
	}
	return foundry.ExitFailure
}
