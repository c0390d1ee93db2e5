package normalizer

import (
	"context"

	"github.com/feral-file/ff-sales-indexer/internal/domain"
	"github.com/feral-file/ff-sales-indexer/internal/store"
	"github.com/feral-file/ff-sales-indexer/internal/store/schema"
)

// NFTRef is an NFT touched by a sale
type NFTRef struct {
	Contract string
	TokenID  string
	ItemType domain.ItemType
	IsOffer  bool
}

// ExtractNFTs returns the NFT items of sale in input order, offer side before consideration side
func ExtractNFTs(sale *schema.Sale) []NFTRef {
	var refs []NFTRef
	for i, t := range sale.OfferItemTypes {
		if itemType := domain.ItemType(t); itemType.IsNFT() {
			refs = append(refs, NFTRef{
				Contract: sale.OfferTokens[i],
				TokenID:  sale.OfferIdentifiers[i],
				ItemType: itemType,
				IsOffer:  true,
			})
		}
	}
	for i, t := range sale.ConsiderationItemTypes {
		if itemType := domain.ItemType(t); itemType.IsNFT() {
			refs = append(refs, NFTRef{
				Contract: sale.ConsiderationTokens[i],
				TokenID:  sale.ConsiderationIdentifiers[i],
				ItemType: itemType,
				IsOffer:  false,
			})
		}
	}
	return refs
}

// WriteJunctions creates the contract and token of every ref and upserts its SaleNFT row.
// A token on both sides of one sale keeps the row of its last occurrence.
func WriteJunctions(ctx context.Context, tx store.Store, saleID string, refs []NFTRef) error {
	for _, ref := range refs {
		if _, err := store.GetOrCreateNFTContract(ctx, tx, ref.Contract); err != nil {
			return err
		}
		token, err := store.GetOrCreateNFTToken(ctx, tx, ref.Contract, ref.TokenID)
		if err != nil {
			return err
		}

		junction := &schema.SaleNFT{
			ID:         domain.SaleNFTID(saleID, token.ID),
			SaleID:     saleID,
			NFTTokenID: token.ID,
			IsOffer:    ref.IsOffer,
		}
		if err := tx.Set(ctx, junction); err != nil {
			return err
		}
	}
	return nil
}
