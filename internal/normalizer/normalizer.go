package normalizer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/feral-file/ff-sales-indexer/internal/domain"
	"github.com/feral-file/ff-sales-indexer/internal/logger"
	"github.com/feral-file/ff-sales-indexer/internal/store"
	"github.com/feral-file/ff-sales-indexer/internal/store/schema"
)

// Result is the outcome of normalizing one event
type Result struct {
	// Sales are the Sale records written for the event, in creation order
	Sales []*schema.Sale
	// Skipped is true when the event was deliberately dropped, e.g. an auction finalized without a known creation
	Skipped bool
}

// Normalizer maps decoded marketplace events onto the canonical sale schema
//
//go:generate mockgen -source=normalizer.go -destination=../mocks/normalizer.go -package=mocks -mock_names=Normalizer=MockNormalizer
type Normalizer interface {
	// Process normalizes event and persists every derived record atomically
	Process(ctx context.Context, event domain.MarketEvent) (*Result, error)
}

// TokenIDSource selects how minted token ids are assigned
type TokenIDSource string

const (
	// TokenIDSourceCounter assigns sequential ids from the per-contract counter
	TokenIDSourceCounter TokenIDSource = "counter"
	// TokenIDSourceReceipt reads ids from the transfer logs of the mint transaction, falling back to the counter
	TokenIDSourceReceipt TokenIDSource = "receipt"
)

// SeaDropAlias remaps mint events of a proxy contract onto a canonical contract
type SeaDropAlias struct {
	Proxy          string
	Canonical      string
	InitialCounter uint64
}

// Config holds normalizer configuration
type Config struct {
	SeaDropAliases []SeaDropAlias
	TokenIDSource  TokenIDSource
}

type normalizer struct {
	store      store.Store
	mintLookup MintLookup
	config     Config
}

// New creates a normalizer writing to st. mintLookup may be nil when config uses the counter token id source.
func New(st store.Store, mintLookup MintLookup, config Config) Normalizer {
	if config.TokenIDSource == "" {
		config.TokenIDSource = TokenIDSourceCounter
	}
	return &normalizer{
		store:      st,
		mintLookup: mintLookup,
		config:     config,
	}
}

// Process normalizes event inside a single store transaction
func (n *normalizer) Process(ctx context.Context, event domain.MarketEvent) (*Result, error) {
	if event == nil {
		return nil, fmt.Errorf("%w: nil event", domain.ErrUnsupportedEvent)
	}

	var result *Result
	err := n.store.WithTx(ctx, func(tx store.Store) error {
		var err error
		result, err = n.dispatch(ctx, tx, event)
		return err
	})
	if err != nil {
		return nil, err
	}

	info := eventInfo(event)
	if result.Skipped {
		logger.InfoEvent(ctx, info, "Event skipped")
	}
	for _, sale := range result.Sales {
		logger.DebugEvent(ctx, info, "Sale written", zap.String("saleID", sale.ID))
	}

	return result, nil
}

// dispatch routes event to the normalizer of its protocol variant
func (n *normalizer) dispatch(ctx context.Context, tx store.Store, event domain.MarketEvent) (*Result, error) {
	switch e := event.(type) {
	case domain.SeaportOrderFulfilled:
		return single(n.seaportOrderFulfilled(ctx, tx, e))
	case domain.PunkBought:
		return single(n.punkBought(ctx, tx, e))
	case domain.FoundationReserveAuctionCreated:
		return &Result{}, n.foundationAuctionCreated(ctx, tx, e)
	case domain.FoundationReserveAuctionFinalized:
		return n.foundationAuctionFinalized(ctx, tx, e)
	case domain.FoundationBuyPriceAccepted:
		return single(n.foundationSettlement(ctx, tx, e.EventMeta, e.FoundationSettlement))
	case domain.FoundationOfferAccepted:
		return single(n.foundationSettlement(ctx, tx, e.EventMeta, e.FoundationSettlement))
	case domain.FoundationPrivateSaleFinalized:
		return single(n.foundationSettlement(ctx, tx, e.EventMeta, e.FoundationSettlement))
	case domain.SuperRareSold:
		return single(n.superRareSettlement(ctx, tx, e.EventMeta, e.SuperRareSettlement))
	case domain.SuperRareAcceptOffer:
		return single(n.superRareSettlement(ctx, tx, e.EventMeta, e.SuperRareSettlement))
	case domain.SuperRareAuctionSettled:
		return single(n.superRareSettlement(ctx, tx, e.EventMeta, e.SuperRareSettlement))
	case domain.SuperRareLegacySold:
		return single(n.superRareLegacySold(ctx, tx, e))
	case domain.SeaDropMint:
		sales, err := n.seaDropMint(ctx, tx, e)
		if err != nil {
			return nil, err
		}
		return &Result{Sales: sales}, nil
	default:
		return nil, fmt.Errorf("%w: %T", domain.ErrUnsupportedEvent, event)
	}
}

func single(sale *schema.Sale, err error) (*Result, error) {
	if err != nil {
		return nil, err
	}
	return &Result{Sales: []*schema.Sale{sale}}, nil
}

func eventInfo(event domain.MarketEvent) logger.EventInfo {
	meta := event.Meta()
	return logger.EventInfo{
		ChainID:     meta.ChainID,
		Market:      string(event.Market()),
		TxHash:      meta.TxHash,
		BlockNumber: meta.BlockNumber,
		LogIndex:    meta.LogIndex,
	}
}
