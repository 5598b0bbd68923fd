// Package audit records security-relevant actions as structured events.
//
// A Logger fills request metadata (request ID, client IP) from the context
// through extractors and hands each Event to a Storage. MemoryStorage keeps
// events in process; any type with Store (and optionally StoreBatch) can be
// plugged in.
//
// # Usage
//
//	log := audit.NewLogger(storage,
//	    audit.WithRequestIDExtractor(requestid.FromContext),
//	    audit.WithIPExtractor(clientip.FromContext),
//	    audit.WithAsync(audit.AsyncOptions{BufferSize: 1000}),
//	)
//	defer log.Close(context.Background())
//
//	_ = log.Log(ctx, "challenge.approved",
//	    audit.WithUser(userID.String()),
//	    audit.WithResource("challenge", challengeID.String()),
//	)
//
// # Async mode
//
// With WithAsync, Store returns once the event is queued. A background
// goroutine writes batches of BatchSize events or whatever has accumulated
// after BatchTimeout. When the queue is full the event is written
// synchronously instead of being dropped. Batch failures go to
// AsyncOptions.OnError.
package audit
