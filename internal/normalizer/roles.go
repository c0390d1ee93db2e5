package normalizer

import (
	"github.com/feral-file/ff-sales-indexer/internal/domain"
	"github.com/feral-file/ff-sales-indexer/internal/store/schema"
)

// rolePolicy decides which role rows a sale produces
type rolePolicy int

const (
	// rolesByNFTSide derives roles from which sides carry NFTs
	rolesByNFTSide rolePolicy = iota
	// rolesSellerBuyer marks the offerer as seller and the recipient as buyer
	rolesSellerBuyer
	// rolesBuyerOnly marks only the recipient, as buyer
	rolesBuyerOnly
)

func buy(accountID, saleID string) schema.Entity {
	return &schema.AccountBuy{ID: domain.RoleID(accountID, saleID), AccountID: accountID, SaleID: saleID}
}

func sell(accountID, saleID string) schema.Entity {
	return &schema.AccountSell{ID: domain.RoleID(accountID, saleID), AccountID: accountID, SaleID: saleID}
}

func swap(accountID, saleID string) schema.Entity {
	return &schema.AccountSwap{ID: domain.RoleID(accountID, saleID), AccountID: accountID, SaleID: saleID}
}

// classifyRoles returns the role rows of a sale
func classifyRoles(policy rolePolicy, offererID, recipientID, saleID string, nfts []NFTRef) []schema.Entity {
	switch policy {
	case rolesSellerBuyer:
		return []schema.Entity{sell(offererID, saleID), buy(recipientID, saleID)}
	case rolesBuyerOnly:
		return []schema.Entity{buy(recipientID, saleID)}
	}

	var offerNFT, considerationNFT bool
	for _, nft := range nfts {
		if nft.IsOffer {
			offerNFT = true
		} else {
			considerationNFT = true
		}
	}

	switch {
	case offerNFT && considerationNFT:
		return []schema.Entity{swap(offererID, saleID), swap(recipientID, saleID)}
	case offerNFT:
		return []schema.Entity{sell(offererID, saleID), buy(recipientID, saleID)}
	case considerationNFT:
		// the event does not name the sender of consideration NFTs, the offerer is assumed to receive them
		return []schema.Entity{buy(offererID, saleID), sell(recipientID, saleID)}
	default:
		return nil
	}
}
