package domain

// ItemType classifies an offer or consideration item
type ItemType uint8

const (
	ItemTypeNative                ItemType = 0
	ItemTypeFungible              ItemType = 1
	ItemTypeNonFungibleUnique     ItemType = 2
	ItemTypeNonFungibleFractional ItemType = 3
)

// Valid checks if the item type belongs to the closed set
func (t ItemType) Valid() bool {
	return t <= ItemTypeNonFungibleFractional
}

// IsNFT reports whether items of this type produce NFT contract, token and junction rows
func (t ItemType) IsNFT() bool {
	return t == ItemTypeNonFungibleUnique || t == ItemTypeNonFungibleFractional
}

// CurrencyItemType returns NATIVE for the zero currency address and FUNGIBLE otherwise
func CurrencyItemType(currency string) ItemType {
	if IsZeroAddress(currency) {
		return ItemTypeNative
	}
	return ItemTypeFungible
}
