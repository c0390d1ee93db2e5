package schema

// NFTContract represents the nft_contracts table
type NFTContract struct {
	// ID is the lower-cased contract address
	ID string `gorm:"column:id;primaryKey;type:text" json:"id"`
	// Address is the contract address in the case it was first observed
	Address string `gorm:"column:address;not null;type:text" json:"address"`
}

// TableName specifies the table name for the NFTContract model
func (NFTContract) TableName() string {
	return "nft_contracts"
}

func (c NFTContract) EntityID() string {
	return c.ID
}

// NFTToken represents the nft_tokens table
type NFTToken struct {
	// ID is {lower-cased contract}:{tokenId}
	ID string `gorm:"column:id;primaryKey;type:text" json:"id"`
	// ContractID references NFTContract.ID
	ContractID string `gorm:"column:contract_id;not null;type:text;index" json:"contract_id"`
	// TokenID is the token id as a decimal string (up to 78 digits)
	TokenID string `gorm:"column:token_id;not null;type:text" json:"token_id"`
}

// TableName specifies the table name for the NFTToken model
func (NFTToken) TableName() string {
	return "nft_tokens"
}

func (t NFTToken) EntityID() string {
	return t.ID
}
