package ethereum

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/feral-file/ff-sales-indexer/internal/block"
	"github.com/feral-file/ff-sales-indexer/internal/domain"
	"github.com/feral-file/ff-sales-indexer/internal/logger"
	"github.com/feral-file/ff-sales-indexer/internal/registry"
)

// ErrMalformedLog is returned when a log carries a known topic but cannot be unpacked
var ErrMalformedLog = errors.New("malformed log")

// Decoder turns raw marketplace logs into protocol events
//
//go:generate mockgen -source=decoder.go -destination=../../mocks/decoder.go -package=mocks -mock_names=Decoder=MockDecoder
type Decoder interface {
	// Decode decodes a log. It returns nil without error for logs that are not marketplace events.
	Decode(ctx context.Context, vLog types.Log) (domain.MarketEvent, error)

	// Topics returns the topic0 of every decodable event
	Topics() []common.Hash
}

type decodeFunc func(spec eventSpec, meta domain.EventMeta, vLog types.Log) (domain.MarketEvent, error)

// eventSpec binds an event of a protocol ABI to its market and conversion
type eventSpec struct {
	market domain.Market
	abi    abi.ABI
	name   string
	decode decodeFunc
}

type decoder struct {
	chainID  uint64
	registry registry.MarketplaceRegistry
	blocks   block.BlockProvider
	specs    map[common.Hash]eventSpec
	topics   []common.Hash
}

// NewDecoder creates a decoder for one chain
func NewDecoder(chainID uint64, reg registry.MarketplaceRegistry, blocks block.BlockProvider) (Decoder, error) {
	d := &decoder{
		chainID:  chainID,
		registry: reg,
		blocks:   blocks,
		specs:    make(map[common.Hash]eventSpec),
	}

	protocols := []struct {
		market domain.Market
		json   string
		events map[string]decodeFunc
	}{
		{domain.MarketSeaport, seaportABI, map[string]decodeFunc{
			eventOrderFulfilled: decodeOrderFulfilled,
		}},
		{domain.MarketCryptoPunks, cryptoPunksABI, map[string]decodeFunc{
			eventPunkBought: decodePunkBought,
		}},
		{domain.MarketFoundation, foundationABI, map[string]decodeFunc{
			eventReserveAuctionCreated:   decodeReserveAuctionCreated,
			eventReserveAuctionFinalized: decodeReserveAuctionFinalized,
			eventBuyPriceAccepted:        decodeFoundationSettlement,
			eventOfferAccepted:           decodeFoundationSettlement,
			eventPrivateSaleFinalized:    decodeFoundationSettlement,
		}},
		{domain.MarketSuperRare, superRareABI, map[string]decodeFunc{
			eventSold:           decodeSuperRareSettlement,
			eventAcceptOffer:    decodeSuperRareSettlement,
			eventAuctionSettled: decodeSuperRareSettlement,
		}},
		{domain.MarketSuperRareV1, superRareLegacyABI, map[string]decodeFunc{
			eventSold:      decodeSuperRareLegacy,
			eventAcceptBid: decodeSuperRareLegacy,
		}},
		{domain.MarketSeaDrop, seaDropABI, map[string]decodeFunc{
			eventSeaDropMint: decodeSeaDropMint,
		}},
	}

	for _, p := range protocols {
		parsed, err := abi.JSON(strings.NewReader(p.json))
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s ABI: %w", p.market, err)
		}
		for name, fn := range p.events {
			event, ok := parsed.Events[name]
			if !ok {
				return nil, fmt.Errorf("event %s missing from %s ABI", name, p.market)
			}
			if _, dup := d.specs[event.ID]; dup {
				return nil, fmt.Errorf("duplicate event signature %s", event.Sig)
			}
			d.specs[event.ID] = eventSpec{market: p.market, abi: parsed, name: name, decode: fn}
			d.topics = append(d.topics, event.ID)
		}
	}

	sort.Slice(d.topics, func(i, j int) bool {
		return d.topics[i].Hex() < d.topics[j].Hex()
	})

	return d, nil
}

// Topics returns the topic0 of every decodable event
func (d *decoder) Topics() []common.Hash {
	return append([]common.Hash(nil), d.topics...)
}

// Decode decodes a marketplace log into a protocol event
func (d *decoder) Decode(ctx context.Context, vLog types.Log) (domain.MarketEvent, error) {
	if vLog.Removed {
		logger.DebugCtx(ctx, "Skipping removed log",
			zap.String("txHash", vLog.TxHash.Hex()),
			zap.Uint("logIndex", vLog.Index))
		return nil, nil
	}
	if len(vLog.Topics) == 0 {
		return nil, fmt.Errorf("%w: no topics", ErrMalformedLog)
	}

	spec, ok := d.specs[vLog.Topics[0]]
	if !ok {
		return nil, nil
	}

	market, ok := d.registry.MarketOf(d.chainID, vLog.Address.Hex())
	if !ok || market != spec.market {
		return nil, fmt.Errorf("%w: %s emitted %s on chain %d", domain.ErrUnknownMarketplace, vLog.Address.Hex(), spec.name, d.chainID)
	}

	timestamp, err := d.blocks.GetBlockTimestamp(ctx, vLog.BlockNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to get block timestamp: %w", err)
	}

	meta := domain.EventMeta{
		ChainID:        d.chainID,
		BlockNumber:    vLog.BlockNumber,
		BlockTimestamp: timestamp,
		TxHash:         vLog.TxHash.Hex(),
		LogIndex:       vLog.Index,
		Contract:       vLog.Address.Hex(),
	}

	event, err := spec.decode(spec, meta, vLog)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrMalformedLog, spec.market, spec.name, err)
	}
	return event, nil
}

// unpack fills out from the data and indexed topics of the log
func (s eventSpec) unpack(out interface{}, vLog types.Log) error {
	if err := s.abi.UnpackIntoInterface(out, s.name, vLog.Data); err != nil {
		return fmt.Errorf("failed to unpack data: %w", err)
	}

	var indexed abi.Arguments
	for _, arg := range s.abi.Events[s.name].Inputs {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	if len(vLog.Topics)-1 != len(indexed) {
		return fmt.Errorf("expected %d topics, got %d", len(indexed)+1, len(vLog.Topics))
	}

	if err := abi.ParseTopics(out, indexed, vLog.Topics[1:]); err != nil {
		return fmt.Errorf("failed to parse topics: %w", err)
	}
	return nil
}

func decimal(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

// seaportItemType collapses criteria-based item types onto their plain counterparts
func seaportItemType(t uint8) (domain.ItemType, error) {
	switch t {
	case 4:
		return domain.ItemTypeNonFungibleUnique, nil
	case 5:
		return domain.ItemTypeNonFungibleFractional, nil
	}
	itemType := domain.ItemType(t)
	if !itemType.Valid() {
		return 0, fmt.Errorf("invalid item type %d", t)
	}
	return itemType, nil
}

func decodeOrderFulfilled(spec eventSpec, meta domain.EventMeta, vLog types.Log) (domain.MarketEvent, error) {
	var l orderFulfilledLog
	if err := spec.unpack(&l, vLog); err != nil {
		return nil, err
	}

	event := domain.SeaportOrderFulfilled{
		EventMeta:     meta,
		OrderHash:     common.Hash(l.OrderHash).Hex(),
		Offerer:       l.Offerer.Hex(),
		Zone:          l.Zone.Hex(),
		Recipient:     l.Recipient.Hex(),
		Offer:         make([]domain.SpentItem, 0, len(l.Offer)),
		Consideration: make([]domain.ReceivedItem, 0, len(l.Consideration)),
	}
	for _, item := range l.Offer {
		itemType, err := seaportItemType(item.ItemType)
		if err != nil {
			return nil, err
		}
		event.Offer = append(event.Offer, domain.SpentItem{
			ItemType:   itemType,
			Token:      item.Token.Hex(),
			Identifier: decimal(item.Identifier),
			Amount:     decimal(item.Amount),
		})
	}
	for _, item := range l.Consideration {
		itemType, err := seaportItemType(item.ItemType)
		if err != nil {
			return nil, err
		}
		event.Consideration = append(event.Consideration, domain.ReceivedItem{
			ItemType:   itemType,
			Token:      item.Token.Hex(),
			Identifier: decimal(item.Identifier),
			Amount:     decimal(item.Amount),
			Recipient:  item.Recipient.Hex(),
		})
	}
	return event, nil
}

func decodePunkBought(spec eventSpec, meta domain.EventMeta, vLog types.Log) (domain.MarketEvent, error) {
	var l punkBoughtLog
	if err := spec.unpack(&l, vLog); err != nil {
		return nil, err
	}
	return domain.PunkBought{
		EventMeta:   meta,
		PunkIndex:   decimal(l.PunkIndex),
		Value:       decimal(l.Value),
		FromAddress: l.FromAddress.Hex(),
		ToAddress:   l.ToAddress.Hex(),
	}, nil
}

func decodeReserveAuctionCreated(spec eventSpec, meta domain.EventMeta, vLog types.Log) (domain.MarketEvent, error) {
	var l reserveAuctionCreatedLog
	if err := spec.unpack(&l, vLog); err != nil {
		return nil, err
	}
	return domain.FoundationReserveAuctionCreated{
		EventMeta:    meta,
		Seller:       l.Seller.Hex(),
		NFTContract:  l.NftContract.Hex(),
		TokenID:      decimal(l.TokenId),
		ReservePrice: decimal(l.ReservePrice),
		AuctionID:    decimal(l.AuctionId),
	}, nil
}

func decodeReserveAuctionFinalized(spec eventSpec, meta domain.EventMeta, vLog types.Log) (domain.MarketEvent, error) {
	var l reserveAuctionFinalizedLog
	if err := spec.unpack(&l, vLog); err != nil {
		return nil, err
	}
	return domain.FoundationReserveAuctionFinalized{
		EventMeta: meta,
		FoundationFees: domain.FoundationFees{
			ProtocolFee: decimal(l.ProtocolFee),
			CreatorFee:  decimal(l.CreatorFee),
			SellerRev:   decimal(l.SellerRev),
		},
		AuctionID: decimal(l.AuctionId),
		Seller:    l.Seller.Hex(),
		Bidder:    l.Bidder.Hex(),
	}, nil
}

func decodeFoundationSettlement(spec eventSpec, meta domain.EventMeta, vLog types.Log) (domain.MarketEvent, error) {
	var l foundationSettlementLog
	if err := spec.unpack(&l, vLog); err != nil {
		return nil, err
	}

	settlement := domain.FoundationSettlement{
		FoundationFees: domain.FoundationFees{
			ProtocolFee: decimal(l.ProtocolFee),
			CreatorFee:  decimal(l.CreatorFee),
			SellerRev:   decimal(l.SellerRev),
		},
		NFTContract: l.NftContract.Hex(),
		TokenID:     decimal(l.TokenId),
		Seller:      l.Seller.Hex(),
		Buyer:       l.Buyer.Hex(),
	}

	switch spec.name {
	case eventBuyPriceAccepted:
		return domain.FoundationBuyPriceAccepted{EventMeta: meta, FoundationSettlement: settlement}, nil
	case eventOfferAccepted:
		return domain.FoundationOfferAccepted{EventMeta: meta, FoundationSettlement: settlement}, nil
	case eventPrivateSaleFinalized:
		return domain.FoundationPrivateSaleFinalized{
			EventMeta:            meta,
			FoundationSettlement: settlement,
			Deadline:             decimal(l.Deadline),
		}, nil
	}
	return nil, fmt.Errorf("unexpected event %s", spec.name)
}

func decodeSuperRareSettlement(spec eventSpec, meta domain.EventMeta, vLog types.Log) (domain.MarketEvent, error) {
	var l superRareSettlementLog
	if err := spec.unpack(&l, vLog); err != nil {
		return nil, err
	}

	settlement := domain.SuperRareSettlement{
		TokenID:  decimal(l.TokenId),
		Seller:   l.Seller.Hex(),
		Currency: l.CurrencyAddress.Hex(),
		Amount:   decimal(l.Amount),
	}

	switch spec.name {
	case eventSold:
		settlement.NFTContract = l.OriginContract.Hex()
		settlement.Buyer = l.Buyer.Hex()
		return domain.SuperRareSold{EventMeta: meta, SuperRareSettlement: settlement}, nil
	case eventAcceptOffer:
		settlement.NFTContract = l.OriginContract.Hex()
		settlement.Buyer = l.Bidder.Hex()
		splits := make([]string, 0, len(l.SplitAddresses))
		for _, a := range l.SplitAddresses {
			splits = append(splits, a.Hex())
		}
		return domain.SuperRareAcceptOffer{
			EventMeta:           meta,
			SuperRareSettlement: settlement,
			SplitAddresses:      splits,
			SplitRatios:         l.SplitRatios,
		}, nil
	case eventAuctionSettled:
		settlement.NFTContract = l.ContractAddress.Hex()
		settlement.Buyer = l.Bidder.Hex()
		return domain.SuperRareAuctionSettled{EventMeta: meta, SuperRareSettlement: settlement}, nil
	}
	return nil, fmt.Errorf("unexpected event %s", spec.name)
}

func decodeSuperRareLegacy(spec eventSpec, meta domain.EventMeta, vLog types.Log) (domain.MarketEvent, error) {
	var l superRareLegacyLog
	if err := spec.unpack(&l, vLog); err != nil {
		return nil, err
	}

	buyer := l.Buyer
	if spec.name == eventAcceptBid {
		buyer = l.Bidder
	}
	return domain.SuperRareLegacySold{
		EventMeta: meta,
		Buyer:     buyer.Hex(),
		Seller:    l.Seller.Hex(),
		Amount:    decimal(l.Amount),
		TokenID:   decimal(l.TokenId),
	}, nil
}

func decodeSeaDropMint(spec eventSpec, meta domain.EventMeta, vLog types.Log) (domain.MarketEvent, error) {
	var l seaDropMintLog
	if err := spec.unpack(&l, vLog); err != nil {
		return nil, err
	}
	return domain.SeaDropMint{
		EventMeta:      meta,
		NFTContract:    l.NftContract.Hex(),
		Minter:         l.Minter.Hex(),
		FeeRecipient:   l.FeeRecipient.Hex(),
		Payer:          l.Payer.Hex(),
		QuantityMinted: decimal(l.QuantityMinted),
		UnitMintPrice:  decimal(l.UnitMintPrice),
		FeeBps:         decimal(l.FeeBps),
		DropStageIndex: decimal(l.DropStageIndex),
	}, nil
}
