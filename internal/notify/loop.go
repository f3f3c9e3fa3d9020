// Package notify drives the forever loop: sync, render, paginate, fan
// out to channels, trigger an upstream refresh, sleep.
package notify

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/finwatch-dev/finwatch/internal/auditlog"
	"github.com/finwatch-dev/finwatch/internal/block"
	"github.com/finwatch-dev/finwatch/internal/metrics"
	"github.com/finwatch-dev/finwatch/internal/render"
)

// Sink delivers rendered blocks to destination channels.
type Sink interface {
	ListMemberChannels(ctx context.Context) ([]string, error)
	SendMessage(ctx context.Context, channelID string, blocks []block.Block, fallback string) error
}

// Refresher kicks off an asynchronous data refresh on the aggregator.
type Refresher interface {
	TriggerRefresh(ctx context.Context) error
}

// Config sizes the loop's pagination and pacing.
type Config struct {
	Interval      time.Duration
	ChunkSize     int
	FallbackLimit int
}

// Loop is the top-level notifier scheduler.
type Loop struct {
	cfg       Config
	builder   *render.Builder
	sink      Sink
	refresher Refresher
	audit     *auditlog.Log // nil disables audit logging
	metrics   *metrics.Metrics
	log       *zap.Logger

	now func() time.Time
}

// NewLoop creates a Loop.
func NewLoop(cfg Config, builder *render.Builder, sink Sink, refresher Refresher, audit *auditlog.Log, m *metrics.Metrics, log *zap.Logger) *Loop {
	return &Loop{
		cfg:       cfg,
		builder:   builder,
		sink:      sink,
		refresher: refresher,
		audit:     audit,
		metrics:   m,
		log:       log,
		now:       time.Now,
	}
}

// Run cycles until ctx is cancelled. Any cycle error is fatal: the loop
// returns it and leaves the retry to process supervision.
func (l *Loop) Run(ctx context.Context) error {
	for {
		if err := l.RunOnce(ctx); err != nil {
			return err
		}

		l.log.Info("sleeping", zap.Duration("interval", l.cfg.Interval))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(l.cfg.Interval):
		}
	}
}

// RunOnce executes a single notifier cycle: build blocks for unseen
// transactions, append the money-buffer context if anything is new, send
// everything in fixed-size chunks to every member channel, then ask the
// aggregator to start refreshing. A failed chunk send is logged and
// skipped; everything upstream of dispatch is fatal.
func (l *Loop) RunOnce(ctx context.Context) error {
	l.log.Info("checking for new transactions")

	blocks, err := l.builder.UnseenTransactionBlocks(ctx)
	if err != nil {
		return err
	}
	l.metrics.UnseenTransactions.Add(float64(len(blocks)))

	if len(blocks) > 0 {
		buffer, err := l.builder.MoneyBuffer(ctx)
		if err != nil {
			return err
		}
		blocks = append(blocks, block.Context{Elements: []block.Text{buffer}})

		if err := l.dispatch(ctx, blocks); err != nil {
			return err
		}
	}

	if err := l.refresher.TriggerRefresh(ctx); err != nil {
		// Fire-and-forget: the refresh only warms the next cycle.
		l.log.Warn("refresh trigger failed", zap.Error(err))
	}

	l.metrics.SyncCycles.Inc()
	return nil
}

func (l *Loop) dispatch(ctx context.Context, blocks []block.Block) error {
	channels, err := l.sink.ListMemberChannels(ctx)
	if err != nil {
		return err
	}

	var entries []auditlog.Entry
	for i, chunk := range block.Chunk(blocks, l.cfg.ChunkSize) {
		fallback := block.Truncate(block.Flatten(chunk), l.cfg.FallbackLimit)

		for _, channel := range channels {
			if err := l.sink.SendMessage(ctx, channel, chunk, fallback); err != nil {
				l.metrics.DispatchErrors.Inc()
				l.log.Error("chunk send failed",
					zap.String("channel", channel),
					zap.Int("chunk", i),
					zap.Error(err))
				continue
			}
			l.metrics.ChunksSent.Inc()
			entries = append(entries, auditlog.Entry{
				Timestamp:  l.now(),
				Channel:    channel,
				BlockCount: len(chunk),
				Note:       block.Truncate(fallback, 80),
			})
		}
	}

	if l.audit != nil && len(entries) > 0 {
		if err := l.audit.Append(entries); err != nil {
			l.log.Warn("audit log append failed", zap.Error(err))
		}
	}
	return nil
}
