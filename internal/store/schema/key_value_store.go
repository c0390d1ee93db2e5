package schema

import "time"

// KeyValueStore stores arbitrary key-value pairs for indexer state
// Used for storing per-chain block cursors
type KeyValueStore struct {
	Key       string    `gorm:"primaryKey;type:text"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (KeyValueStore) TableName() string {
	return "key_value_store"
}

// All returns every model managed by the entity store, in migration order
func All() []any {
	return []any{
		&Account{},
		&NFTContract{},
		&NFTToken{},
		&Sale{},
		&SaleNFT{},
		&AccountBuy{},
		&AccountSell{},
		&AccountSwap{},
		&SeadropCounter{},
		&SeadropMint{},
		&FoundationAuction{},
		&KeyValueStore{},
	}
}
