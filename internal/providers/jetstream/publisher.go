package jetstream

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/feral-file/ff-sales-indexer/internal/adapter"
	"github.com/feral-file/ff-sales-indexer/internal/logger"
	"github.com/feral-file/ff-sales-indexer/internal/messaging"
	"github.com/feral-file/ff-sales-indexer/internal/store/schema"
)

// DefaultSubjectPrefix is the first token of every sale subject
const DefaultSubjectPrefix = "sales"

// Config holds the configuration for NATS JetStream connection
type Config struct {
	URL            string
	StreamName     string // when set, publishes expect this stream
	SubjectPrefix  string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectionName string
}

type publisher struct {
	nc            adapter.NatsConn
	js            adapter.JetStream
	streamName    string
	subjectPrefix string
	json          adapter.JSON

	closeOnce sync.Once
	closed    chan struct{}
}

// NewPublisher creates a new NATS JetStream publisher
func NewPublisher(cfg Config, natsJS adapter.NatsJetStream, jsonAdapter adapter.JSON) (messaging.Publisher, error) {
	p := &publisher{
		streamName:    cfg.StreamName,
		subjectPrefix: cfg.SubjectPrefix,
		json:          jsonAdapter,
		closed:        make(chan struct{}),
	}
	if p.subjectPrefix == "" {
		p.subjectPrefix = DefaultSubjectPrefix
	}

	opts := []nats.Option{
		nats.Name(cfg.ConnectionName),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				logger.Error(err, zap.String("message", "Disconnected from NATS"))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("Reconnected to NATS", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("NATS connection closed")
			p.markClosed()
		}),
	}

	nc, js, err := natsJS.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS and create JetStream: %w", err)
	}
	p.nc = nc
	p.js = js

	return p, nil
}

// PublishSale publishes a sale to NATS JetStream.
// The sale id is the message id so redelivered sales are deduplicated by the stream.
func (p *publisher) PublishSale(ctx context.Context, sale *schema.Sale) error {
	logger.DebugCtx(ctx, "Publishing sale", zap.String("saleID", sale.ID))

	data, err := p.json.Marshal(sale)
	if err != nil {
		return fmt.Errorf("failed to marshal sale: %w", err)
	}

	opts := []jetstream.PublishOpt{jetstream.WithMsgID(sale.ID)}
	if p.streamName != "" {
		opts = append(opts, jetstream.WithExpectStream(p.streamName))
	}

	if _, err := p.js.Publish(ctx, p.buildSubject(sale), data, opts...); err != nil {
		return fmt.Errorf("failed to publish sale: %w", err)
	}

	return nil
}

// buildSubject constructs the NATS subject of a sale
func (p *publisher) buildSubject(sale *schema.Sale) string {
	// Format: {prefix}.{chain_id}.{market}
	// e.g., sales.1.seaport, sales.8453.seadrop
	return fmt.Sprintf("%s.%d.%s", p.subjectPrefix, sale.ChainID, sale.Market)
}

// Close closes the NATS connection
func (p *publisher) Close() {
	if p.nc != nil {
		p.nc.Close()
	}
	p.markClosed()
}

// CloseChan returns a channel that is closed when the connection is closed
func (p *publisher) CloseChan() <-chan struct{} {
	return p.closed
}

func (p *publisher) markClosed() {
	p.closeOnce.Do(func() {
		close(p.closed)
	})
}
