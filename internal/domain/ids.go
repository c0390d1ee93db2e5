package domain

import (
	"fmt"
	"strings"
)

// SaleID builds the id of the single sale of a transaction: {chainId}_{txHash}
func SaleID(chainID uint64, txHash string) string {
	return fmt.Sprintf("%d_%s", chainID, txHash)
}

// UnitSaleID builds the id of one unit of a multi-unit mint: {chainId}_{txHash}_{tokenId}
func UnitSaleID(chainID uint64, txHash string, tokenID string) string {
	return fmt.Sprintf("%d_%s_%s", chainID, txHash, tokenID)
}

// TokenKey builds the NFT token id: {lower(contract)}:{tokenId}
func TokenKey(contract string, tokenID string) string {
	return fmt.Sprintf("%s:%s", strings.ToLower(contract), tokenID)
}

// SaleNFTID builds the junction id linking a sale to a token: {saleId}:{tokenKey}
func SaleNFTID(saleID string, tokenKey string) string {
	return fmt.Sprintf("%s:%s", saleID, tokenKey)
}

// RoleID builds the id of a buy, sell or swap row: {accountId}:{saleId}
func RoleID(accountID string, saleID string) string {
	return fmt.Sprintf("%s:%s", accountID, saleID)
}

// LogID identifies one log of a transaction: {chainId}_{txHash}_{logIndex}
func LogID(chainID uint64, txHash string, logIndex uint) string {
	return fmt.Sprintf("%d_%s_%d", chainID, txHash, logIndex)
}
