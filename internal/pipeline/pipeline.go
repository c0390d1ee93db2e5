package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/feral-file/ff-sales-indexer/internal/adapter"
	"github.com/feral-file/ff-sales-indexer/internal/domain"
	"github.com/feral-file/ff-sales-indexer/internal/logger"
	"github.com/feral-file/ff-sales-indexer/internal/messaging"
	"github.com/feral-file/ff-sales-indexer/internal/metrics"
	"github.com/feral-file/ff-sales-indexer/internal/normalizer"
	"github.com/feral-file/ff-sales-indexer/internal/store"
)

// Config holds the configuration of a chain pipeline
type Config struct {
	ChainID         uint64
	StartBlock      uint64        // used when no cursor is persisted, 0 means the chain head
	CursorSaveFreq  uint64        // Save cursor every N blocks
	CursorSaveDelay time.Duration // Or save cursor every N seconds

	RetryInitialInterval time.Duration // 0 means 1s
	RetryMaxInterval     time.Duration // 0 means 1m
	RetryMaxAttempts     uint64        // 0 retries forever
}

// Pipeline defines the interface of a per-chain sales pipeline
type Pipeline interface {
	// Run processes marketplace events until ctx is done or retries are exhausted
	Run(ctx context.Context) error
	// Close closes the pipeline and cleans up resources
	Close()
}

// pipeline subscribes to one chain, normalizes each event and persists the block cursor
type pipeline struct {
	subscriber messaging.Subscriber
	publisher  messaging.Publisher
	normalizer normalizer.Normalizer
	store      store.Store
	metrics    *metrics.Metrics
	config     Config
	clock      adapter.Clock

	chain domain.Chain
	// initialBlock is resolved once when no cursor exists so retries do not jump to a newer head
	initialBlock *uint64
}

// NewPipeline creates a new chain pipeline. m may be nil.
func NewPipeline(
	sub messaging.Subscriber,
	pub messaging.Publisher,
	norm normalizer.Normalizer,
	st store.Store,
	m *metrics.Metrics,
	cfg Config,
	clock adapter.Clock,
) Pipeline {
	if cfg.RetryInitialInterval == 0 {
		cfg.RetryInitialInterval = time.Second
	}
	if cfg.RetryMaxInterval == 0 {
		cfg.RetryMaxInterval = time.Minute
	}
	return &pipeline{
		subscriber: sub,
		publisher:  pub,
		normalizer: norm,
		store:      st,
		metrics:    m,
		config:     cfg,
		clock:      clock,
		chain:      domain.NewChain(cfg.ChainID),
	}
}

// Run starts the pipeline. A failed stream is re-established from the persisted cursor with exponential backoff.
func (p *pipeline) Run(ctx context.Context) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.config.RetryInitialInterval
	b.MaxInterval = p.config.RetryMaxInterval
	b.MaxElapsedTime = 0

	var policy backoff.BackOff = b
	if p.config.RetryMaxAttempts > 0 {
		policy = backoff.WithMaxRetries(b, p.config.RetryMaxAttempts)
	}

	operation := func() error {
		err := p.runOnce(ctx)
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		return err
	}

	var attemptCount int
	notifyOnError := func(err error, duration time.Duration) {
		attemptCount++
		p.metrics.Failure(p.config.ChainID)
		logger.WarnCtx(ctx, "Sales pipeline failed, resubscribing",
			zap.Error(err),
			zap.String("chain", string(p.chain)),
			zap.Int("attempt", attemptCount),
			zap.Duration("next_retry_in", duration),
		)
	}

	err := backoff.RetryNotify(operation, backoff.WithContext(policy, ctx), notifyOnError)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		p.metrics.Failure(p.config.ChainID)
		return fmt.Errorf("sales pipeline for %s stopped after %d retries: %w", p.chain, attemptCount, err)
	}
	return err
}

// startBlock resolves where a subscription starts
func (p *pipeline) startBlock(ctx context.Context) (uint64, error) {
	cursor, err := p.store.GetBlockCursor(ctx, p.chain)
	if err != nil {
		return 0, fmt.Errorf("failed to get block cursor: %w", err)
	}

	if cursor > 0 {
		// the cursor block may be partially processed, writes are idempotent so it is processed again
		logger.InfoCtx(ctx, "Resuming from block cursor", zap.String("chain", string(p.chain)), zap.Uint64("block", cursor))
		return cursor, nil
	}

	if p.initialBlock != nil {
		return *p.initialBlock, nil
	}

	start := p.config.StartBlock
	if start > 0 {
		logger.InfoCtx(ctx, "Starting from configured block", zap.String("chain", string(p.chain)), zap.Uint64("block", start))
	} else {
		latest, err := p.subscriber.GetLatestBlock(ctx)
		if err != nil {
			return 0, fmt.Errorf("failed to get latest block number: %w", err)
		}
		start = latest
		logger.InfoCtx(ctx, "Starting from latest block", zap.String("chain", string(p.chain)), zap.Uint64("block", start))
	}
	p.initialBlock = &start
	return start, nil
}

// runOnce runs a single subscription until it fails or ctx is done
func (p *pipeline) runOnce(ctx context.Context) error {
	from, err := p.startBlock(ctx)
	if err != nil {
		return err
	}

	lastSavedBlock := uint64(0)
	lastSaveTime := p.clock.Now()

	handler := func(ctx context.Context, event domain.MarketEvent) error {
		meta := event.Meta()
		market := string(event.Market())

		result, err := p.normalizer.Process(ctx, event)
		if err != nil {
			return fmt.Errorf("failed to normalize event %s: %w", meta.TxHash, err)
		}

		p.metrics.EventProcessed(meta.ChainID, market)
		if result.Skipped {
			p.metrics.EventSkipped(meta.ChainID, market)
		}
		p.metrics.SalesWritten(meta.ChainID, market, len(result.Sales))

		for _, sale := range result.Sales {
			if err := p.publisher.PublishSale(ctx, sale); err != nil {
				return fmt.Errorf("failed to publish sale %s: %w", sale.ID, err)
			}
		}

		// Save cursor periodically (every N blocks or N seconds)
		shouldSave := meta.BlockNumber-lastSavedBlock >= p.config.CursorSaveFreq ||
			p.clock.Since(lastSaveTime) >= p.config.CursorSaveDelay

		if shouldSave {
			if err := p.store.SetBlockCursor(ctx, p.chain, meta.BlockNumber); err != nil {
				logger.ErrorCtx(ctx, fmt.Errorf("failed to save block cursor: %w", err),
					zap.String("chain", string(p.chain)),
					zap.Uint64("block", meta.BlockNumber))
			} else {
				lastSavedBlock = meta.BlockNumber
				lastSaveTime = p.clock.Now()
				p.metrics.BlockCursor(meta.ChainID, meta.BlockNumber)
			}
		}

		return nil
	}

	logger.InfoCtx(ctx, "Starting marketplace subscription", zap.String("chain", string(p.chain)), zap.Uint64("fromBlock", from))
	return p.subscriber.SubscribeEvents(ctx, from, handler)
}

// Close closes the pipeline and cleans up resources
func (p *pipeline) Close() {
	p.subscriber.Close()
}
