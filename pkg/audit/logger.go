package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// contextExtractor reads a value from the request context. An empty string
// means the value is absent.
type contextExtractor func(context.Context) string

// Logger builds events from the request context and hands them to Storage.
type Logger struct {
	storage            Storage
	requestIDExtractor contextExtractor
	ipExtractor        contextExtractor
	now                func() time.Time
	async              *AsyncOptions
	writer             *AsyncWriter
}

// Option configures Logger behavior during initialization
type Option func(*Logger)

func WithRequestIDExtractor(fn func(context.Context) string) Option {
	return func(l *Logger) {
		l.requestIDExtractor = fn
	}
}

func WithIPExtractor(fn func(context.Context) string) Option {
	return func(l *Logger) {
		l.ipExtractor = fn
	}
}

func WithClock(now func() time.Time) Option {
	return func(l *Logger) {
		if now != nil {
			l.now = now
		}
	}
}

// WithAsync queues events and writes them in batches from a background
// goroutine. Call Close on shutdown to flush the queue.
func WithAsync(opts AsyncOptions) Option {
	return func(l *Logger) {
		l.async = &opts
	}
}

// NewLogger creates a new audit logger
func NewLogger(storage Storage, opts ...Option) *Logger {
	if storage == nil {
		panic("audit: storage cannot be nil")
	}

	l := &Logger{
		storage: storage,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}

	if l.async != nil {
		l.writer = NewAsyncWriter(storage, *l.async)
		l.storage = l.writer
	}

	return l
}

// Log records a successful action
func (l *Logger) Log(ctx context.Context, action string, opts ...EventOption) error {
	event := l.newEvent(ctx, action, ResultSuccess)
	for _, opt := range opts {
		opt(&event)
	}
	if err := event.Validate(); err != nil {
		return err
	}
	return l.storage.Store(ctx, event)
}

// LogError records a failed action
func (l *Logger) LogError(ctx context.Context, action string, err error, opts ...EventOption) error {
	event := l.newEvent(ctx, action, ResultError)
	if err != nil {
		event.Error = err.Error()
	}
	for _, opt := range opts {
		opt(&event)
	}
	if err := event.Validate(); err != nil {
		return err
	}
	return l.storage.Store(ctx, event)
}

// Close flushes queued events when the logger is async. It is a no-op
// otherwise.
func (l *Logger) Close(ctx context.Context) error {
	if l.writer == nil {
		return nil
	}
	return l.writer.Close(ctx)
}

func (l *Logger) newEvent(ctx context.Context, action string, result Result) Event {
	event := Event{
		ID:        uuid.New().String(),
		Action:    action,
		Result:    result,
		CreatedAt: l.now().UTC(),
	}

	if l.requestIDExtractor != nil {
		event.RequestID = l.requestIDExtractor(ctx)
	}
	if l.ipExtractor != nil {
		event.IP = l.ipExtractor(ctx)
	}

	return event
}
