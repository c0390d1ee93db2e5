package schema

// Account represents the accounts table - one row per address that took part in a sale
type Account struct {
	// ID is the lower-cased hex address
	ID string `gorm:"column:id;primaryKey;type:text" json:"id"`
	// Address is the address in the case it was first observed
	Address string `gorm:"column:address;not null;type:text" json:"address"`
}

// TableName specifies the table name for the Account model
func (Account) TableName() string {
	return "accounts"
}

func (a Account) EntityID() string {
	return a.ID
}
