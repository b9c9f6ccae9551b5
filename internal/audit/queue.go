package audit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/liflo-ai/liflo/internal/metrics"
)

const (
	DefaultBatchSize     = 20
	DefaultFlushInterval = 3 * time.Second
	DefaultFlushTimeout  = 10 * time.Second
	DefaultBacklog       = 64
)

var ErrInvalidOption = errors.New("invalid audit queue option")

type QueueOptions struct {
	// BatchSize caps events per sink call and is the eager flush threshold.
	BatchSize int
	// FlushInterval is how long the first buffered event waits before a timed flush.
	FlushInterval time.Duration
	// FlushTimeout bounds a single sink call.
	FlushTimeout time.Duration
	// Backlog is the number of batches allowed to wait for a slow sink.
	Backlog int
}

// Queue accumulates events and hands them to the sink in FIFO batches, either
// as soon as BatchSize events are buffered or when the flush timer fires.
// Delivery is best effort: a failed batch is logged and dropped, never retried.
// Append never waits on the sink.
type Queue struct {
	sink      Sink
	sinkName  string
	batchSize int
	interval  time.Duration
	timeout   time.Duration

	mu       sync.Mutex
	buf      []Event
	timer    *time.Timer
	timerGen uint64
	closed   bool

	batches chan []Event
	done    chan struct{}
}

var _ Logger = (*Queue)(nil)

// NewQueue starts the delivery worker. Zero options take the defaults;
// a negative batch size, interval or timeout is rejected.
func NewQueue(sink Sink, opts QueueOptions) (*Queue, error) {
	if sink == nil {
		return nil, fmt.Errorf("%w: sink is required", ErrInvalidOption)
	}
	if opts.BatchSize < 0 {
		return nil, fmt.Errorf("%w: batch size must be at least 1, got %d", ErrInvalidOption, opts.BatchSize)
	}
	if opts.FlushInterval < 0 {
		return nil, fmt.Errorf("%w: flush interval must not be negative, got %s", ErrInvalidOption, opts.FlushInterval)
	}
	if opts.FlushTimeout < 0 {
		return nil, fmt.Errorf("%w: flush timeout must not be negative, got %s", ErrInvalidOption, opts.FlushTimeout)
	}
	if opts.BatchSize == 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.FlushInterval == 0 {
		opts.FlushInterval = DefaultFlushInterval
	}
	if opts.FlushTimeout == 0 {
		opts.FlushTimeout = DefaultFlushTimeout
	}
	if opts.Backlog <= 0 {
		opts.Backlog = DefaultBacklog
	}

	q := &Queue{
		sink:      sink,
		sinkName:  SinkName(sink),
		batchSize: opts.BatchSize,
		interval:  opts.FlushInterval,
		timeout:   opts.FlushTimeout,
		batches:   make(chan []Event, opts.Backlog),
		done:      make(chan struct{}),
	}
	go q.run()

	return q, nil
}

// Append buffers events in order. Crossing the batch size dispatches full
// batches immediately; anything left waits for the timer.
func (q *Queue) Append(events ...Event) {
	if len(events) == 0 {
		return
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		metrics.AuditDropped("closed", len(events))
		slog.Warn("audit queue closed, dropping events", "events", len(events))
		return
	}

	q.buf = append(q.buf, events...)
	metrics.AuditEnqueued(len(events))

	for len(q.buf) >= q.batchSize {
		q.dispatchLocked()
	}
	if len(q.buf) > 0 {
		q.armLocked()
	} else {
		q.disarmLocked()
	}
	metrics.AuditBuffered(len(q.buf))
}

// Len returns the number of buffered events not yet dispatched.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.buf)
}

// Close stops accepting events, hands the remaining buffer to the sink and
// waits for in-flight deliveries until ctx is done.
func (q *Queue) Close(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	q.disarmLocked()

	var pending [][]Event
	for len(q.buf) > 0 {
		pending = append(pending, q.takeLocked())
	}
	metrics.AuditBuffered(0)
	q.mu.Unlock()

	for i, batch := range pending {
		select {
		case q.batches <- batch:
		case <-ctx.Done():
			dropped := 0
			for _, b := range pending[i:] {
				dropped += len(b)
			}
			metrics.AuditDropped("closed", dropped)
			close(q.batches)
			return fmt.Errorf("audit queue close: %w", ctx.Err())
		}
	}
	close(q.batches)

	select {
	case <-q.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("audit queue close: %w", ctx.Err())
	}
}

// takeLocked removes up to batchSize events from the front of the buffer.
func (q *Queue) takeLocked() []Event {
	n := min(q.batchSize, len(q.buf))
	batch := make([]Event, n)
	copy(batch, q.buf[:n])
	q.buf = q.buf[n:]
	if len(q.buf) == 0 {
		q.buf = nil
	}
	return batch
}

func (q *Queue) dispatchLocked() {
	batch := q.takeLocked()
	select {
	case q.batches <- batch:
	default:
		metrics.AuditDropped("overflow", len(batch))
		slog.Warn("audit backlog full, dropping batch", "sink", q.sinkName, "events", len(batch))
	}
}

// armLocked starts the flush timer unless one is already pending.
func (q *Queue) armLocked() {
	if q.timer != nil {
		return
	}
	q.timerGen++
	gen := q.timerGen
	q.timer = time.AfterFunc(q.interval, func() { q.onTimer(gen) })
}

func (q *Queue) disarmLocked() {
	if q.timer == nil {
		return
	}
	q.timer.Stop()
	q.timer = nil
	q.timerGen++
}

func (q *Queue) onTimer(gen uint64) {
	q.mu.Lock()
	defer q.mu.Unlock()

	// A stale timer may fire after a threshold flush replaced it.
	if q.closed || gen != q.timerGen {
		return
	}
	q.timer = nil

	if len(q.buf) > 0 {
		q.dispatchLocked()
	}
	if len(q.buf) > 0 {
		q.armLocked()
	}
	metrics.AuditBuffered(len(q.buf))
}

func (q *Queue) run() {
	defer close(q.done)
	for batch := range q.batches {
		q.deliver(batch)
	}
}

func (q *Queue) deliver(batch []Event) {
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()

	start := time.Now()
	err := q.appendBatch(ctx, batch)
	metrics.AuditBatch(q.sinkName, err == nil)
	if err != nil {
		metrics.AuditDropped("sink_error", len(batch))
		slog.Warn("audit flush failed",
			"error", err,
			"sink", q.sinkName,
			"events", len(batch),
		)
		return
	}
	slog.Debug("audit flushed", "sink", q.sinkName, "events", len(batch), "duration_ms", time.Since(start).Milliseconds())
}

func (q *Queue) appendBatch(ctx context.Context, batch []Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sink panic: %v", r)
		}
	}()
	return q.sink.AppendBatch(ctx, batch)
}
