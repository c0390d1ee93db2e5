package normalizer

import (
	"context"
	"strconv"

	"github.com/feral-file/ff-sales-indexer/internal/domain"
	"github.com/feral-file/ff-sales-indexer/internal/store"
	"github.com/feral-file/ff-sales-indexer/internal/store/schema"
)

// lineItem is one offer or consideration entry. recipient is ignored on the offer side.
type lineItem struct {
	itemType   domain.ItemType
	token      string
	identifier string
	amount     string
	recipient  string
}

// nftItem is a single unique NFT offer entry
func nftItem(contract, tokenID string) lineItem {
	return lineItem{
		itemType:   domain.ItemTypeNonFungibleUnique,
		token:      contract,
		identifier: tokenID,
		amount:     domain.SINGLE_UNIT,
	}
}

// nativePayment is a native currency consideration entry
func nativePayment(amount, recipient string) lineItem {
	return lineItem{
		itemType:   domain.ItemTypeNative,
		token:      domain.ETHEREUM_ZERO_ADDRESS,
		identifier: domain.NATIVE_IDENTIFIER,
		amount:     amount,
		recipient:  recipient,
	}
}

// saleDraft is a sale before it is persisted
type saleDraft struct {
	id            string
	meta          domain.EventMeta
	market        domain.Market
	offerer       string
	recipient     string
	offer         []lineItem
	consideration []lineItem
	roles         rolePolicy
}

// build returns the Sale record of the draft with its parallel arrays filled
func (d saleDraft) build() *schema.Sale {
	sale := &schema.Sale{
		ID:                       d.id,
		ChainID:                  d.meta.ChainID,
		BlockNumber:              d.meta.BlockNumber,
		LogIndex:                 d.meta.LogIndex,
		Timestamp:                strconv.FormatUint(d.meta.BlockTimestamp, 10),
		TransactionHash:          d.meta.TxHash,
		Market:                   string(d.market),
		OffererID:                domain.NormalizeAddress(d.offerer),
		RecipientID:              domain.NormalizeAddress(d.recipient),
		OfferItemTypes:           make([]int, 0, len(d.offer)),
		OfferTokens:              make([]string, 0, len(d.offer)),
		OfferIdentifiers:         make([]string, 0, len(d.offer)),
		OfferAmounts:             make([]string, 0, len(d.offer)),
		ConsiderationItemTypes:   make([]int, 0, len(d.consideration)),
		ConsiderationTokens:      make([]string, 0, len(d.consideration)),
		ConsiderationIdentifiers: make([]string, 0, len(d.consideration)),
		ConsiderationAmounts:     make([]string, 0, len(d.consideration)),
		ConsiderationRecipients:  make([]string, 0, len(d.consideration)),
	}

	for _, item := range d.offer {
		sale.OfferItemTypes = append(sale.OfferItemTypes, int(item.itemType))
		sale.OfferTokens = append(sale.OfferTokens, item.token)
		sale.OfferIdentifiers = append(sale.OfferIdentifiers, item.identifier)
		sale.OfferAmounts = append(sale.OfferAmounts, item.amount)
	}
	for _, item := range d.consideration {
		sale.ConsiderationItemTypes = append(sale.ConsiderationItemTypes, int(item.itemType))
		sale.ConsiderationTokens = append(sale.ConsiderationTokens, item.token)
		sale.ConsiderationIdentifiers = append(sale.ConsiderationIdentifiers, item.identifier)
		sale.ConsiderationAmounts = append(sale.ConsiderationAmounts, item.amount)
		sale.ConsiderationRecipients = append(sale.ConsiderationRecipients, item.recipient)
	}

	return sale
}

// persist writes the sale with its accounts, NFT junctions and role rows
func persist(ctx context.Context, tx store.Store, draft saleDraft) (*schema.Sale, error) {
	offerer, err := store.GetOrCreateAccount(ctx, tx, draft.offerer)
	if err != nil {
		return nil, err
	}
	recipient, err := store.GetOrCreateAccount(ctx, tx, draft.recipient)
	if err != nil {
		return nil, err
	}

	sale := draft.build()
	if err := tx.Set(ctx, sale); err != nil {
		return nil, err
	}

	nfts := ExtractNFTs(sale)
	if err := WriteJunctions(ctx, tx, sale.ID, nfts); err != nil {
		return nil, err
	}

	for _, role := range classifyRoles(draft.roles, offerer.ID, recipient.ID, sale.ID, nfts) {
		if err := tx.Set(ctx, role); err != nil {
			return nil, err
		}
	}

	return sale, nil
}
