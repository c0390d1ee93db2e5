package schema

// SaleNFT represents the sale_nfts table - links a sale to every NFT it touched
type SaleNFT struct {
	// ID is {saleId}:{nftTokenId}
	ID string `gorm:"column:id;primaryKey;type:text" json:"id"`
	// SaleID references Sale.ID
	SaleID string `gorm:"column:sale_id;not null;type:text;index" json:"sale_id"`
	// NFTTokenID references NFTToken.ID
	NFTTokenID string `gorm:"column:nft_token_id;not null;type:text;index" json:"nft_token_id"`
	// IsOffer is true when the NFT was on the offer side of the sale
	IsOffer bool `gorm:"column:is_offer;not null" json:"is_offer"`
}

// TableName specifies the table name for the SaleNFT model
func (SaleNFT) TableName() string {
	return "sale_nfts"
}

func (j SaleNFT) EntityID() string {
	return j.ID
}

// AccountBuy represents the account_buys table - the account received NFTs in the sale
type AccountBuy struct {
	// ID is {accountId}:{saleId}
	ID        string `gorm:"column:id;primaryKey;type:text" json:"id"`
	AccountID string `gorm:"column:account_id;not null;type:text;index" json:"account_id"`
	SaleID    string `gorm:"column:sale_id;not null;type:text;index" json:"sale_id"`
}

// TableName specifies the table name for the AccountBuy model
func (AccountBuy) TableName() string {
	return "account_buys"
}

func (r AccountBuy) EntityID() string {
	return r.ID
}

// AccountSell represents the account_sells table - the account gave up NFTs in the sale
type AccountSell struct {
	// ID is {accountId}:{saleId}
	ID        string `gorm:"column:id;primaryKey;type:text" json:"id"`
	AccountID string `gorm:"column:account_id;not null;type:text;index" json:"account_id"`
	SaleID    string `gorm:"column:sale_id;not null;type:text;index" json:"sale_id"`
}

// TableName specifies the table name for the AccountSell model
func (AccountSell) TableName() string {
	return "account_sells"
}

func (r AccountSell) EntityID() string {
	return r.ID
}

// AccountSwap represents the account_swaps table - the account both gave and received NFTs in the sale
type AccountSwap struct {
	// ID is {accountId}:{saleId}
	ID        string `gorm:"column:id;primaryKey;type:text" json:"id"`
	AccountID string `gorm:"column:account_id;not null;type:text;index" json:"account_id"`
	SaleID    string `gorm:"column:sale_id;not null;type:text;index" json:"sale_id"`
}

// TableName specifies the table name for the AccountSwap model
func (AccountSwap) TableName() string {
	return "account_swaps"
}

func (r AccountSwap) EntityID() string {
	return r.ID
}
