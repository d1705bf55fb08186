package command

import "context"

// Result is returned by a handler on success. The optional durations record
// sub-phases the handler measured internally, in milliseconds.
type Result struct {
	SyncResponseMs  *int64
	AsyncResponseMs *int64
}

// Millis is a convenience for building optional duration fields.
func Millis(ms int64) *int64 { return &ms }

// Handler services one command type to completion.
type Handler interface {
	Handle(ctx context.Context, env Envelope, recordID string) (Result, error)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, env Envelope, recordID string) (Result, error)

func (f HandlerFunc) Handle(ctx context.Context, env Envelope, recordID string) (Result, error) {
	return f(ctx, env, recordID)
}
