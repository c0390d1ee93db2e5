package block

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/feral-file/ff-sales-indexer/internal/adapter"
	"github.com/feral-file/ff-sales-indexer/internal/logger"
)

// headInfo is the cached chain head
type headInfo struct {
	number    uint64
	fetchedAt time.Time
}

// BlockProvider provides cached access to the chain head and to block timestamps.
// Sale records carry the timestamp of their block and one block often holds many marketplace logs,
// so timestamps are fetched once per block.
//
//go:generate mockgen -source=block.go -destination=../mocks/block_provider.go -package=mocks -mock_names=BlockProvider=MockBlockProvider
type BlockProvider interface {
	// GetLatestBlock returns the latest block number, potentially from cache
	GetLatestBlock(ctx context.Context) (uint64, error)

	// GetBlockTimestamp returns the timestamp in seconds of a block, potentially from cache
	GetBlockTimestamp(ctx context.Context, blockNumber uint64) (uint64, error)
}

// BlockFetcher is the interface for fetching block information from the blockchain
//
//go:generate mockgen -source=block.go -destination=../mocks/block_provider.go -package=mocks -mock_names=BlockFetcher=MockBlockFetcher
type BlockFetcher interface {
	// FetchLatestBlock fetches the latest block from the blockchain
	FetchLatestBlock(ctx context.Context) (uint64, error)

	// FetchBlockTimestamp fetches the timestamp in seconds of a block
	FetchBlockTimestamp(ctx context.Context, blockNumber uint64) (uint64, error)
}

// Config holds configuration for the BlockProvider
type Config struct {
	// TTL is how long to cache the head block number
	TTL time.Duration

	// StaleWindow is how long a cached head may be served when fetching fails
	StaleWindow time.Duration

	// MaxCachedTimestamps bounds the timestamp cache, the lowest blocks are evicted first. 0 means 1024.
	MaxCachedTimestamps int
}

// blockProvider implements BlockProvider
type blockProvider struct {
	fetcher BlockFetcher
	config  Config
	clock   adapter.Clock

	mu         sync.RWMutex
	head       *headInfo
	timestamps map[uint64]uint64
}

// NewBlockProvider creates a new BlockProvider with caching
func NewBlockProvider(fetcher BlockFetcher, config Config, clock adapter.Clock) BlockProvider {
	if config.MaxCachedTimestamps <= 0 {
		config.MaxCachedTimestamps = 1024
	}
	return &blockProvider{
		fetcher:    fetcher,
		config:     config,
		clock:      clock,
		timestamps: make(map[uint64]uint64),
	}
}

// GetLatestBlock returns the latest block number, using cache if valid
func (p *blockProvider) GetLatestBlock(ctx context.Context) (uint64, error) {
	p.mu.RLock()
	cached := p.head
	p.mu.RUnlock()

	now := p.clock.Now()
	if cached != nil && now.Sub(cached.fetchedAt) < p.config.TTL {
		return cached.number, nil
	}

	blockNumber, err := p.fetcher.FetchLatestBlock(ctx)
	if err != nil {
		if cached != nil && now.Sub(cached.fetchedAt) < p.config.StaleWindow {
			logger.DebugCtx(ctx, "Using stale block number", zap.Uint64("blockNumber", cached.number))
			return cached.number, nil
		}
		return 0, fmt.Errorf("failed to fetch latest block and no valid cache available: %w", err)
	}

	p.mu.Lock()
	p.head = &headInfo{number: blockNumber, fetchedAt: now}
	p.mu.Unlock()

	return blockNumber, nil
}

// GetBlockTimestamp returns the timestamp of a block. Timestamps of confirmed blocks never change.
func (p *blockProvider) GetBlockTimestamp(ctx context.Context, blockNumber uint64) (uint64, error) {
	p.mu.RLock()
	timestamp, ok := p.timestamps[blockNumber]
	p.mu.RUnlock()
	if ok {
		return timestamp, nil
	}

	timestamp, err := p.fetcher.FetchBlockTimestamp(ctx, blockNumber)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch block timestamp for block %d: %w", blockNumber, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.timestamps) >= p.config.MaxCachedTimestamps {
		p.evictLowest()
	}
	p.timestamps[blockNumber] = timestamp

	return timestamp, nil
}

// evictLowest drops the cached timestamp of the lowest block. Callers hold mu.
func (p *blockProvider) evictLowest() {
	first := true
	var lowest uint64
	for number := range p.timestamps {
		if first || number < lowest {
			lowest = number
			first = false
		}
	}
	delete(p.timestamps, lowest)
}
