package schema

import (
	"gorm.io/datatypes"
)

// SeadropCounter represents the seadrop_counters table - the next token id to assign per mint contract
type SeadropCounter struct {
	// ID is the canonical mint contract address, in its original case
	ID string `gorm:"column:id;primaryKey;type:text" json:"id"`
	// Counter is the next token id to assign, as a decimal string
	Counter string `gorm:"column:counter;not null;type:text" json:"counter"`
}

// TableName specifies the table name for the SeadropCounter model
func (SeadropCounter) TableName() string {
	return "seadrop_counters"
}

func (c SeadropCounter) EntityID() string {
	return c.ID
}

// SeadropMint represents the seadrop_mints table - the token ids assigned to one processed mint log
type SeadropMint struct {
	// ID is {chainId}_{txHash}_{logIndex}
	ID string `gorm:"column:id;primaryKey;type:text" json:"id"`
	// Contract is the canonical mint contract address, in its original case
	Contract string `gorm:"column:contract;not null;type:text" json:"contract"`
	// TokenIDs are the token ids assigned to the minted units, in order
	TokenIDs datatypes.JSONSlice[string] `gorm:"column:token_ids;not null" json:"token_ids"`
}

// TableName specifies the table name for the SeadropMint model
func (SeadropMint) TableName() string {
	return "seadrop_mints"
}

func (m SeadropMint) EntityID() string {
	return m.ID
}
