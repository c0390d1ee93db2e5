package messaging

import (
	"context"

	"github.com/feral-file/ff-sales-indexer/internal/store/schema"
)

// Publisher defines the interface for publishing sale notifications to message queue
//
//go:generate mockgen -source=publisher.go -destination=../mocks/publisher.go -package=mocks -mock_names=Publisher=MockPublisher
type Publisher interface {
	// PublishSale publishes a newly written sale to the message broker
	PublishSale(ctx context.Context, sale *schema.Sale) error
	// Close closes the connection
	Close()
	// CloseChan returns a channel that is closed when the publisher is closed
	CloseChan() <-chan struct{}
}
