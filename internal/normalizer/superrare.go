package normalizer

import (
	"context"

	"github.com/feral-file/ff-sales-indexer/internal/domain"
	"github.com/feral-file/ff-sales-indexer/internal/store"
	"github.com/feral-file/ff-sales-indexer/internal/store/schema"
)

// superRareSettlement pays the seller in native currency or in the ERC-20 named by the event
func (n *normalizer) superRareSettlement(ctx context.Context, tx store.Store, meta domain.EventMeta, s domain.SuperRareSettlement) (*schema.Sale, error) {
	payment := lineItem{
		itemType:   domain.CurrencyItemType(s.Currency),
		token:      s.Currency,
		identifier: domain.NATIVE_IDENTIFIER,
		amount:     s.Amount,
		recipient:  s.Seller,
	}

	return persist(ctx, tx, saleDraft{
		id:            domain.SaleID(meta.ChainID, meta.TxHash),
		meta:          meta,
		market:        domain.MarketSuperRare,
		offerer:       s.Seller,
		recipient:     s.Buyer,
		offer:         []lineItem{nftItem(s.NFTContract, s.TokenID)},
		consideration: []lineItem{payment},
		roles:         rolesSellerBuyer,
	})
}

// superRareLegacySold sells one token of the emitting contract for native currency
func (n *normalizer) superRareLegacySold(ctx context.Context, tx store.Store, e domain.SuperRareLegacySold) (*schema.Sale, error) {
	return persist(ctx, tx, saleDraft{
		id:            domain.SaleID(e.ChainID, e.TxHash),
		meta:          e.EventMeta,
		market:        e.Market(),
		offerer:       e.Seller,
		recipient:     e.Buyer,
		offer:         []lineItem{nftItem(e.Contract, e.TokenID)},
		consideration: []lineItem{nativePayment(e.Amount, e.Seller)},
		roles:         rolesSellerBuyer,
	})
}
