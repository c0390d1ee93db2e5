package normalizer

import (
	"context"

	"github.com/feral-file/ff-sales-indexer/internal/domain"
	"github.com/feral-file/ff-sales-indexer/internal/store"
	"github.com/feral-file/ff-sales-indexer/internal/store/schema"
)

// seaportOrderFulfilled copies the order's offer and consideration verbatim
func (n *normalizer) seaportOrderFulfilled(ctx context.Context, tx store.Store, e domain.SeaportOrderFulfilled) (*schema.Sale, error) {
	offer := make([]lineItem, 0, len(e.Offer))
	for _, item := range e.Offer {
		offer = append(offer, lineItem{
			itemType:   item.ItemType,
			token:      item.Token,
			identifier: item.Identifier,
			amount:     item.Amount,
		})
	}

	consideration := make([]lineItem, 0, len(e.Consideration))
	for _, item := range e.Consideration {
		consideration = append(consideration, lineItem{
			itemType:   item.ItemType,
			token:      item.Token,
			identifier: item.Identifier,
			amount:     item.Amount,
			recipient:  item.Recipient,
		})
	}

	return persist(ctx, tx, saleDraft{
		id:            domain.SaleID(e.ChainID, e.TxHash),
		meta:          e.EventMeta,
		market:        e.Market(),
		offerer:       e.Offerer,
		recipient:     e.Recipient,
		offer:         offer,
		consideration: consideration,
		roles:         rolesByNFTSide,
	})
}
