package domain

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Chain represents the blockchain network identifier using CAIP-2 format
type Chain string

const (
	ChainEthereumMainnet Chain = "eip155:1"
	ChainEthereumSepolia Chain = "eip155:11155111"
	ChainBaseMainnet     Chain = "eip155:8453"
)

// IsValidChain checks if a chain is a well-formed EVM CAIP-2 identifier
func IsValidChain(chain Chain) bool {
	_, err := chain.ChainID()
	return err == nil
}

// ChainID returns the numeric EVM chain id of the chain
func (c Chain) ChainID() (uint64, error) {
	namespace, reference, ok := strings.Cut(string(c), ":")
	if !ok || namespace != "eip155" {
		return 0, fmt.Errorf("unsupported chain: %s", c)
	}
	id, err := strconv.ParseUint(reference, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid chain reference %q: %w", reference, err)
	}
	return id, nil
}

// NewChain builds the CAIP-2 identifier for an EVM chain id
func NewChain(chainID uint64) Chain {
	return Chain(fmt.Sprintf("eip155:%d", chainID))
}

// NormalizeAddress returns the lower-cased form of an address, used for keys and references
func NormalizeAddress(address string) string {
	return strings.ToLower(address)
}

// ChecksumAddress returns the EIP-55 form of a hex address
func ChecksumAddress(address string) string {
	if strings.HasPrefix(address, "0x") {
		return common.HexToAddress(address).Hex()
	}
	return address
}

// IsZeroAddress checks if an address is the all-zero address
func IsZeroAddress(address string) bool {
	return NormalizeAddress(address) == ETHEREUM_ZERO_ADDRESS
}

// ParseDecimal parses an unsigned decimal string into an arbitrary-precision integer
func ParseDecimal(s string) (*big.Int, error) {
	if s == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidDecimal)
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return nil, fmt.Errorf("%w: %q", ErrInvalidDecimal, s)
		}
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDecimal, s)
	}
	return v, nil
}

// IsZeroDecimal reports whether a decimal string represents zero
func IsZeroDecimal(s string) (bool, error) {
	v, err := ParseDecimal(s)
	if err != nil {
		return false, err
	}
	return v.Sign() == 0, nil
}
