package audit

import (
	"context"
	"sync"
	"time"
)

// AsyncOptions configures the batching and buffering behavior.
type AsyncOptions struct {
	BufferSize     int           // Max events queued before Store falls back to a synchronous write
	BatchSize      int           // Events per batch
	BatchTimeout   time.Duration // Max time a partial batch waits
	StorageTimeout time.Duration // Per-batch storage timeout

	// OnError receives batch write failures. Callers of Store never see them.
	OnError func(err error, dropped int)
}

// AsyncWriter queues events and writes them in batches. Store returns as soon
// as the event is queued.
type AsyncWriter struct {
	storage Storage
	events  chan Event
	options AsyncOptions

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// NewAsyncWriter starts the background writer over storage.
func NewAsyncWriter(storage Storage, opts AsyncOptions) *AsyncWriter {
	if storage == nil {
		panic("audit: storage cannot be nil")
	}

	if opts.BufferSize <= 0 {
		opts.BufferSize = 1000
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}
	if opts.BatchTimeout <= 0 {
		opts.BatchTimeout = 100 * time.Millisecond
	}
	if opts.StorageTimeout <= 0 {
		opts.StorageTimeout = 5 * time.Second
	}

	aw := &AsyncWriter{
		storage: storage,
		events:  make(chan Event, opts.BufferSize),
		options: opts,
		done:    make(chan struct{}),
	}
	go aw.worker()

	return aw
}

// Store queues event. When the buffer is full the event is written
// synchronously so that nothing is lost under bursts.
func (aw *AsyncWriter) Store(ctx context.Context, event Event) error {
	aw.mu.RLock()
	defer aw.mu.RUnlock()

	if aw.closed {
		return ErrStorageNotAvailable
	}

	select {
	case aw.events <- event:
		return nil
	default:
		return aw.storage.Store(ctx, event)
	}
}

func (aw *AsyncWriter) worker() {
	defer close(aw.done)

	batch := make([]Event, 0, aw.options.BatchSize)
	ticker := time.NewTicker(aw.options.BatchTimeout)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		// Request contexts are long gone by now.
		ctx, cancel := context.WithTimeout(context.Background(), aw.options.StorageTimeout)
		defer cancel()

		if err := aw.write(ctx, batch); err != nil && aw.options.OnError != nil {
			aw.options.OnError(err, len(batch))
		}
		clear(batch)
		batch = batch[:0]
	}

	for {
		select {
		case event, ok := <-aw.events:
			if !ok {
				flush()
				return
			}
			batch = append(batch, event)
			if len(batch) >= aw.options.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

func (aw *AsyncWriter) write(ctx context.Context, events []Event) error {
	if bs, ok := aw.storage.(BatchStorage); ok {
		return bs.StoreBatch(ctx, events)
	}
	for _, e := range events {
		if err := aw.storage.Store(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

// Close stops accepting events and waits for the queue to drain or ctx to
// end. Safe to call more than once.
func (aw *AsyncWriter) Close(ctx context.Context) error {
	aw.mu.Lock()
	if !aw.closed {
		aw.closed = true
		close(aw.events)
	}
	aw.mu.Unlock()

	select {
	case <-aw.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
