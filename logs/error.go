package logs

import (
	"context"
	"fmt"
)

// SpanError is an error that left the span Span.
type SpanError struct {
	Span Span
	Err  error
}

func (e *SpanError) Error() string {
	return fmt.Sprintf("%v (span: %s)", e.Err, e.Span)
}

func (e *SpanError) Unwrap() error {
	return e.Err
}

// WrapSpan tags err with the span of ctx. Errors already tagged with that span are returned as is.
func WrapSpan(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	span, ok := ctx.Value(SpanKey).(Span)
	if !ok {
		return err
	}
	if spanErr, ok := err.(*SpanError); ok && spanErr.Span == span {
		return err
	}
	return &SpanError{
		Span: span,
		Err:  err,
	}
}
