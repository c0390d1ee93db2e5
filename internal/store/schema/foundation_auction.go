package schema

// AuctionStatus is the state of a two-phase auction
type AuctionStatus string

const (
	// AuctionStatusCreated indicates the creation event was seen
	AuctionStatusCreated AuctionStatus = "created"
	// AuctionStatusFinalized indicates the finalization event was normalized into a sale
	AuctionStatusFinalized AuctionStatus = "finalized"
)

// FoundationAuction represents the foundation_auctions table - the NFT identity cached at auction creation
type FoundationAuction struct {
	// ID is the auction id as a decimal string
	ID string `gorm:"column:id;primaryKey;type:text" json:"id"`
	// NFTContract is the auctioned NFT contract address, original case
	NFTContract string `gorm:"column:nft_contract;not null;type:text" json:"nft_contract"`
	// TokenID is the auctioned token id as a decimal string
	TokenID string `gorm:"column:token_id;not null;type:text" json:"token_id"`
	// Seller is the address that created the auction
	Seller string `gorm:"column:seller;type:text" json:"seller"`
	// Status is the auction state
	Status AuctionStatus `gorm:"column:status;not null;type:text" json:"status"`
}

// TableName specifies the table name for the FoundationAuction model
func (FoundationAuction) TableName() string {
	return "foundation_auctions"
}

func (a FoundationAuction) EntityID() string {
	return a.ID
}
