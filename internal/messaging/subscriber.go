package messaging

import (
	"context"

	"github.com/feral-file/ff-sales-indexer/internal/domain"
)

// EventHandler is called with every decoded marketplace event, in block and log order.
// A non-nil error stops the subscription.
type EventHandler func(ctx context.Context, event domain.MarketEvent) error

// Subscriber defines the common interface for subscribing to marketplace events of one chain
//
//go:generate mockgen -source=subscriber.go -destination=../mocks/subscriber.go -package=mocks -mock_names=Subscriber=MockSubscriber
type Subscriber interface {
	// SubscribeEvents backfills from fromBlock to the chain head, then follows new blocks.
	// It returns when ctx is done, the subscription fails or handler returns an error.
	SubscribeEvents(ctx context.Context, fromBlock uint64, handler EventHandler) error

	// GetLatestBlock returns the latest block number
	GetLatestBlock(ctx context.Context) (uint64, error)

	// Close closes the connection and cleans up resources
	Close()
}
