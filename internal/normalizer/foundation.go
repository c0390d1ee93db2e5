package normalizer

import (
	"context"

	"github.com/feral-file/ff-sales-indexer/internal/domain"
	"github.com/feral-file/ff-sales-indexer/internal/store"
	"github.com/feral-file/ff-sales-indexer/internal/store/schema"
)

// feePayments returns one native payment per non-zero fee component, ordered seller revenue, creator fee, protocol fee.
// The creator is not resolvable from the event, so the creator fee is attributed to the seller.
func feePayments(fees domain.FoundationFees, seller, market string) ([]lineItem, error) {
	components := []struct {
		amount    string
		recipient string
	}{
		{fees.SellerRev, seller},
		{fees.CreatorFee, seller},
		{fees.ProtocolFee, market},
	}

	payments := make([]lineItem, 0, len(components))
	for _, c := range components {
		zero, err := domain.IsZeroDecimal(c.amount)
		if err != nil {
			return nil, err
		}
		if zero {
			continue
		}
		payments = append(payments, nativePayment(c.amount, c.recipient))
	}
	return payments, nil
}

func (n *normalizer) foundationSale(ctx context.Context, tx store.Store, meta domain.EventMeta, fees domain.FoundationFees, nftContract, tokenID, seller, buyer string) (*schema.Sale, error) {
	consideration, err := feePayments(fees, seller, meta.Contract)
	if err != nil {
		return nil, err
	}

	return persist(ctx, tx, saleDraft{
		id:            domain.SaleID(meta.ChainID, meta.TxHash),
		meta:          meta,
		market:        domain.MarketFoundation,
		offerer:       seller,
		recipient:     buyer,
		offer:         []lineItem{nftItem(nftContract, tokenID)},
		consideration: consideration,
		roles:         rolesSellerBuyer,
	})
}

// foundationSettlement handles the single-step sales: accepted price, accepted offer and private sale
func (n *normalizer) foundationSettlement(ctx context.Context, tx store.Store, meta domain.EventMeta, s domain.FoundationSettlement) (*schema.Sale, error) {
	return n.foundationSale(ctx, tx, meta, s.FoundationFees, s.NFTContract, s.TokenID, s.Seller, s.Buyer)
}

// foundationAuctionCreated caches the auctioned NFT until the auction is finalized.
// A finalized auction stays finalized.
func (n *normalizer) foundationAuctionCreated(ctx context.Context, tx store.Store, e domain.FoundationReserveAuctionCreated) error {
	existing, err := store.Get[schema.FoundationAuction](ctx, tx, e.AuctionID)
	if err != nil {
		return err
	}
	if existing != nil && existing.Status == schema.AuctionStatusFinalized {
		return nil
	}

	return tx.Set(ctx, &schema.FoundationAuction{
		ID:          e.AuctionID,
		NFTContract: e.NFTContract,
		TokenID:     e.TokenID,
		Seller:      e.Seller,
		Status:      schema.AuctionStatusCreated,
	})
}

// foundationAuctionFinalized turns a finalized auction into a sale.
// An auction whose creation was never seen is skipped.
func (n *normalizer) foundationAuctionFinalized(ctx context.Context, tx store.Store, e domain.FoundationReserveAuctionFinalized) (*Result, error) {
	auction, err := store.Get[schema.FoundationAuction](ctx, tx, e.AuctionID)
	if err != nil {
		return nil, err
	}
	if auction == nil {
		return &Result{Skipped: true}, nil
	}

	sale, err := n.foundationSale(ctx, tx, e.EventMeta, e.FoundationFees, auction.NFTContract, auction.TokenID, e.Seller, e.Bidder)
	if err != nil {
		return nil, err
	}

	auction.Status = schema.AuctionStatusFinalized
	if err := tx.Set(ctx, auction); err != nil {
		return nil, err
	}

	return &Result{Sales: []*schema.Sale{sale}}, nil
}
