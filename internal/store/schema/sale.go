package schema

import (
	"gorm.io/datatypes"
)

// Sale represents the sales table - the canonical, protocol-agnostic record of one trade or one minted unit.
// Offer and consideration items are stored as parallel arrays of equal length.
type Sale struct {
	// ID is {chainId}_{txHash} or {chainId}_{txHash}_{tokenId} for per-unit mint sales
	ID string `gorm:"column:id;primaryKey;type:text" json:"id"`
	// ChainID is the EVM chain id the sale happened on
	ChainID uint64 `gorm:"column:chain_id;not null;index" json:"chain_id"`
	// BlockNumber is the block containing the settlement log
	BlockNumber uint64 `gorm:"column:block_number;not null" json:"block_number"`
	// LogIndex is the index of the settlement log in its block
	LogIndex uint `gorm:"column:log_index;not null" json:"log_index"`
	// Timestamp is the block timestamp in seconds, as a decimal string
	Timestamp string `gorm:"column:timestamp;not null;type:text" json:"timestamp"`
	// TransactionHash is the hash of the settlement transaction
	TransactionHash string `gorm:"column:transaction_hash;not null;type:text;index" json:"transaction_hash"`
	// Market is the protocol that produced the sale
	Market string `gorm:"column:market;not null;type:text;index" json:"market"`
	// OffererID references Account.ID of the party giving up the offer items
	OffererID string `gorm:"column:offerer_id;not null;type:text;index" json:"offerer_id"`
	// RecipientID references Account.ID of the party receiving the offer items
	RecipientID string `gorm:"column:recipient_id;not null;type:text;index" json:"recipient_id"`

	OfferItemTypes   datatypes.JSONSlice[int]    `gorm:"column:offer_item_types;not null" json:"offer_item_types"`
	OfferTokens      datatypes.JSONSlice[string] `gorm:"column:offer_tokens;not null" json:"offer_tokens"`
	OfferIdentifiers datatypes.JSONSlice[string] `gorm:"column:offer_identifiers;not null" json:"offer_identifiers"`
	OfferAmounts     datatypes.JSONSlice[string] `gorm:"column:offer_amounts;not null" json:"offer_amounts"`

	ConsiderationItemTypes   datatypes.JSONSlice[int]    `gorm:"column:consideration_item_types;not null" json:"consideration_item_types"`
	ConsiderationTokens      datatypes.JSONSlice[string] `gorm:"column:consideration_tokens;not null" json:"consideration_tokens"`
	ConsiderationIdentifiers datatypes.JSONSlice[string] `gorm:"column:consideration_identifiers;not null" json:"consideration_identifiers"`
	ConsiderationAmounts     datatypes.JSONSlice[string] `gorm:"column:consideration_amounts;not null" json:"consideration_amounts"`
	ConsiderationRecipients  datatypes.JSONSlice[string] `gorm:"column:consideration_recipients;not null" json:"consideration_recipients"`
}

// TableName specifies the table name for the Sale model
func (Sale) TableName() string {
	return "sales"
}

func (s Sale) EntityID() string {
	return s.ID
}

// ArraysConsistent checks that the offer arrays and the consideration arrays have matching lengths
func (s *Sale) ArraysConsistent() bool {
	n := len(s.OfferItemTypes)
	if len(s.OfferTokens) != n || len(s.OfferIdentifiers) != n || len(s.OfferAmounts) != n {
		return false
	}
	m := len(s.ConsiderationItemTypes)
	return len(s.ConsiderationTokens) == m &&
		len(s.ConsiderationIdentifiers) == m &&
		len(s.ConsiderationAmounts) == m &&
		len(s.ConsiderationRecipients) == m
}
