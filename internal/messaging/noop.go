package messaging

import (
	"context"
	"sync"

	"github.com/feral-file/ff-sales-indexer/internal/store/schema"
)

type noopPublisher struct {
	once   sync.Once
	closed chan struct{}
}

// NewNoopPublisher returns a Publisher that drops every sale, used when no broker is configured
func NewNoopPublisher() Publisher {
	return &noopPublisher{closed: make(chan struct{})}
}

func (p *noopPublisher) PublishSale(context.Context, *schema.Sale) error {
	return nil
}

func (p *noopPublisher) Close() {
	p.once.Do(func() {
		close(p.closed)
	})
}

func (p *noopPublisher) CloseChan() <-chan struct{} {
	return p.closed
}
