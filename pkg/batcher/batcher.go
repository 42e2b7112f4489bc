// Package batcher accumulates event records and hands bounded batches
// to the export pipeline. It owns the redelivery policy the pipeline
// deliberately does not carry: retryable export failures are retried
// with exponential backoff, everything else is dropped with an error
// log.
package batcher

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tsouza/eventdump/pkg/event"
	"github.com/tsouza/eventdump/pkg/export"
)

const shutdownFlushTimeout = 10 * time.Second // final drain budget on shutdown

// ExportFunc delivers one batch. It must be safe for repeated calls
// with the same batch.
type ExportFunc func(ctx context.Context, batch []*event.Record) error

type Config struct {
	MaxBatchSize  int           // size-triggered flush threshold
	FlushInterval time.Duration // time-triggered flush period
	MaxAttempts   int           // delivery attempts per batch
	BaseDelay     time.Duration // first backoff delay, doubled per attempt
	MaxDelay      time.Duration // backoff cap
}

type Batcher struct {
	cfg     Config
	deliver ExportFunc
	log     *zap.Logger

	mu  sync.Mutex
	buf []*event.Record

	kick chan struct{}
}

func New(cfg Config, deliver ExportFunc, log *zap.Logger) *Batcher {
	return &Batcher{
		cfg:     cfg,
		deliver: deliver,
		log:     log,
		kick:    make(chan struct{}, 1),
	}
}

// Add appends a record to the pending batch. It never blocks on the
// network; when the size threshold is reached it only signals the
// flusher goroutine.
func (b *Batcher) Add(rec *event.Record) {
	b.mu.Lock()
	b.buf = append(b.buf, rec)
	full := len(b.buf) >= b.cfg.MaxBatchSize
	b.mu.Unlock()

	if full {
		select {
		case b.kick <- struct{}{}:
		default:
		}
	}
}

// Size returns the number of pending records.
func (b *Batcher) Size() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.buf)
}

// Run flushes pending batches on the configured interval and on size
// triggers until ctx is cancelled, then drains what is left under a
// bounded shutdown budget.
func (b *Batcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(b.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			drainCtx, cancel := context.WithTimeout(context.Background(), shutdownFlushTimeout)
			b.flush(drainCtx)
			cancel()
			return nil
		case <-ticker.C:
			b.flush(ctx)
		case <-b.kick:
			b.flush(ctx)
		}
	}
}

// take swaps out the pending batch.
func (b *Batcher) take() []*event.Record {
	b.mu.Lock()
	defer b.mu.Unlock()
	batch := b.buf
	b.buf = nil
	return batch
}

func (b *Batcher) flush(ctx context.Context) {
	batch := b.take()
	if len(batch) == 0 {
		return
	}

	for attempt := 1; ; attempt++ {
		err := b.deliver(ctx, batch)
		if err == nil {
			return
		}

		if !export.IsRetryable(err) {
			b.log.Error("dropping batch after non-retryable export error",
				zap.Int("events", len(batch)),
				zap.Int("attempt", attempt),
				zap.Error(err))
			return
		}
		if attempt >= b.cfg.MaxAttempts {
			b.log.Error("dropping batch after exhausting delivery attempts",
				zap.Int("events", len(batch)),
				zap.Int("attempts", attempt),
				zap.Error(err))
			return
		}

		delay := b.backoff(attempt)
		b.log.Warn("export failed, redelivering batch",
			zap.Int("events", len(batch)),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", delay),
			zap.Error(err))

		select {
		case <-ctx.Done():
			b.log.Error("dropping batch, cancelled while waiting to redeliver",
				zap.Int("events", len(batch)),
				zap.Int("attempts", attempt))
			return
		case <-time.After(delay):
		}
	}
}

// backoff doubles the base delay per attempt, capped at MaxDelay.
func (b *Batcher) backoff(attempt int) time.Duration {
	delay := b.cfg.BaseDelay << (attempt - 1)
	if delay <= 0 || delay > b.cfg.MaxDelay {
		return b.cfg.MaxDelay
	}
	return delay
}
