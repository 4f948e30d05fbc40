// Package pipeline publishes derived tables to a message sink.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/epw-viewer/internal/derive"
	"github.com/couchcryptid/epw-viewer/internal/epw"
	"github.com/couchcryptid/epw-viewer/internal/observability"
)

const (
	defaultInitialBackoff = 200 * time.Millisecond
	defaultMaxBackoff     = 5 * time.Second
	defaultMaxAttempts    = 5
)

// BatchLoader writes multiple output events to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, events []OutputEvent) error
}

// Publisher writes the rows of derived tables to a BatchLoader in batches,
// retrying a failed batch with exponential backoff.
type Publisher struct {
	loader    BatchLoader
	clock     clockwork.Clock
	logger    *slog.Logger
	metrics   *observability.Metrics
	batchSize int

	initialBackoff time.Duration
	maxBackoff     time.Duration
	maxAttempts    int
}

// NewPublisher creates a Publisher. A nil clock uses the real clock.
func NewPublisher(l BatchLoader, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics, batchSize int) *Publisher {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Publisher{
		loader:         l,
		clock:          clock,
		logger:         logger,
		metrics:        metrics,
		batchSize:      max(batchSize, 1),
		initialBackoff: defaultInitialBackoff,
		maxBackoff:     defaultMaxBackoff,
		maxAttempts:    defaultMaxAttempts,
	}
}

// Publish sends one message per table row and returns how many were
// written. Batches are sent in row order; on failure the rows of earlier
// batches have already been written.
func (p *Publisher) Publish(ctx context.Context, loc epw.Location, table *derive.Table) (int, error) {
	derivedAt := p.clock.Now().UTC().Truncate(time.Second)
	p.logger.Info("publishing derived table",
		"station", loc.StationID(),
		"rows", len(table.Rows),
		"batch_size", p.batchSize,
	)

	written := 0
	for start := 0; start < len(table.Rows); start += p.batchSize {
		end := min(start+p.batchSize, len(table.Rows))

		batch := make([]OutputEvent, 0, end-start)
		for _, row := range table.Rows[start:end] {
			ev, err := NewRowMessage(loc, table.Columns, row, derivedAt).Event()
			if err != nil {
				return written, err
			}
			batch = append(batch, ev)
		}

		if err := p.loadWithRetry(ctx, batch); err != nil {
			return written, err
		}
		written += len(batch)
		p.metrics.MessagesProduced.Add(float64(len(batch)))
		p.metrics.PublishBatchSize.Observe(float64(len(batch)))
	}

	p.logger.Info("derived table published", "station", loc.StationID(), "messages", written)
	return written, nil
}

// loadWithRetry writes one batch, backing off between attempts.
func (p *Publisher) loadWithRetry(ctx context.Context, batch []OutputEvent) error {
	backoff := p.initialBackoff
	var err error
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		if err = p.loader.LoadBatch(ctx, batch); err == nil {
			return nil
		}
		p.metrics.PublishErrors.Inc()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		p.logger.Error("load batch failed",
			"error", err,
			"batch_size", len(batch),
			"attempt", attempt,
		)
		if attempt == p.maxAttempts {
			break
		}
		if !sleepWithContext(ctx, backoff) {
			return ctx.Err()
		}
		backoff = nextBackoff(backoff, p.maxBackoff)
	}
	return fmt.Errorf("load batch after %d attempts: %w", p.maxAttempts, err)
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
