package normalizer

import (
	"context"

	"github.com/feral-file/ff-sales-indexer/internal/domain"
	"github.com/feral-file/ff-sales-indexer/internal/store"
	"github.com/feral-file/ff-sales-indexer/internal/store/schema"
)

// punkBought sells one punk of the emitting market contract for native currency
func (n *normalizer) punkBought(ctx context.Context, tx store.Store, e domain.PunkBought) (*schema.Sale, error) {
	return persist(ctx, tx, saleDraft{
		id:            domain.SaleID(e.ChainID, e.TxHash),
		meta:          e.EventMeta,
		market:        e.Market(),
		offerer:       e.FromAddress,
		recipient:     e.ToAddress,
		offer:         []lineItem{nftItem(e.Contract, e.PunkIndex)},
		consideration: []lineItem{nativePayment(e.Value, e.FromAddress)},
		roles:         rolesSellerBuyer,
	})
}
