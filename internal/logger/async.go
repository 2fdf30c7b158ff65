package logger

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// defaultQueueSize is the record buffer used by New when async logging is enabled.
const defaultQueueSize = 1024

// asyncHandler decouples slog callers from the underlying handler with a
// buffered queue drained by a single goroutine. Records are dropped rather
// than blocking the caller when the queue is full.
type asyncHandler struct {
	inner   slog.Handler
	queue   chan slog.Record
	done    *sync.WaitGroup
	dropped *atomic.Int64
}

func newAsyncHandler(inner slog.Handler, queueSize int) *asyncHandler {
	h := &asyncHandler{
		inner:   inner,
		queue:   make(chan slog.Record, queueSize),
		done:    &sync.WaitGroup{},
		dropped: &atomic.Int64{},
	}
	h.done.Add(1)
	go h.drain()
	return h
}

func (h *asyncHandler) drain() {
	defer h.done.Done()
	for rec := range h.queue {
		_ = h.inner.Handle(context.Background(), rec)
	}
}

// Enabled delegates to the inner handler.
func (h *asyncHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle enqueues the record, dropping it if the queue is full.
func (h *asyncHandler) Handle(_ context.Context, rec slog.Record) error { //nolint:gocritic // slog.Handler interface requires value receiver
	select {
	case h.queue <- rec:
	default:
		h.dropped.Add(1)
	}
	return nil
}

// WithAttrs returns a handler sharing the queue but wrapping a new inner handler.
func (h *asyncHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &asyncHandler{
		inner:   h.inner.WithAttrs(attrs),
		queue:   h.queue,
		done:    h.done,
		dropped: h.dropped,
	}
}

// WithGroup returns a handler sharing the queue but wrapping a new inner handler.
func (h *asyncHandler) WithGroup(name string) slog.Handler {
	return &asyncHandler{
		inner:   h.inner.WithGroup(name),
		queue:   h.queue,
		done:    h.done,
		dropped: h.dropped,
	}
}

// Dropped returns the number of records dropped due to a full queue.
func (h *asyncHandler) Dropped() int64 {
	return h.dropped.Load()
}

// Close stops accepting records and waits for the drain goroutine.
func (h *asyncHandler) Close() {
	close(h.queue)
	h.done.Wait()
}
