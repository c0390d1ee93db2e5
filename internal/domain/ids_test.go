package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSaleID(t *testing.T) {
	tests := []struct {
		name     string
		chainID  uint64
		txHash   string
		expected string
	}{
		{
			name:     "ethereum mainnet",
			chainID:  1,
			txHash:   "0xabc123",
			expected: "1_0xabc123",
		},
		{
			name:     "base mainnet",
			chainID:  8453,
			txHash:   "0xDEF456",
			expected: "8453_0xDEF456",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SaleID(tt.chainID, tt.txHash))
			// deterministic across calls
			assert.Equal(t, SaleID(tt.chainID, tt.txHash), SaleID(tt.chainID, tt.txHash))
		})
	}
}

func TestUnitSaleID(t *testing.T) {
	assert.Equal(t, "1_0xabc_0", UnitSaleID(1, "0xabc", "0"))
	assert.Equal(t,
		"1_0xabc_115792089237316195423570985008687907853269984665640564039457584007913129639935",
		UnitSaleID(1, "0xabc", "115792089237316195423570985008687907853269984665640564039457584007913129639935"))
	assert.NotEqual(t, UnitSaleID(1, "0xabc", "1"), UnitSaleID(5, "0xabc", "1"))
}

func TestTokenKey(t *testing.T) {
	tests := []struct {
		name     string
		contract string
		tokenID  string
		expected string
	}{
		{
			name:     "checksummed contract is lower-cased",
			contract: "0xb47e3cd837dDF8e4c57F05d70Ab865de6e193BBB",
			tokenID:  "123",
			expected: "0xb47e3cd837ddf8e4c57f05d70ab865de6e193bbb:123",
		},
		{
			name:     "lower-case contract unchanged",
			contract: "0x1111111111111111111111111111111111111111",
			tokenID:  "0",
			expected: "0x1111111111111111111111111111111111111111:0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TokenKey(tt.contract, tt.tokenID))
		})
	}
}

func TestJunctionIDs(t *testing.T) {
	saleID := SaleID(1, "0xabc")
	tokenKey := TokenKey("0xAAAA", "7")
	assert.Equal(t, "1_0xabc:0xaaaa:7", SaleNFTID(saleID, tokenKey))
	assert.Equal(t, "0xbbbb:1_0xabc", RoleID("0xbbbb", saleID))
}

func TestLogID(t *testing.T) {
	assert.Equal(t, "8453_0xdef_12", LogID(8453, "0xdef", 12))
}
