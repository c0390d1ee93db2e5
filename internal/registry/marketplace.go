package registry

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/feral-file/ff-sales-indexer/internal/adapter"
	"github.com/feral-file/ff-sales-indexer/internal/domain"
)

// MarketplaceRegistry maps marketplace contracts to the protocol they speak
//
//go:generate mockgen -source=marketplace.go -destination=../mocks/marketplace_registry.go -package=mocks -mock_names=MarketplaceRegistry=MockMarketplaceRegistry
type MarketplaceRegistry interface {
	// MarketOf returns the market of a contract on a chain
	MarketOf(chainID uint64, contractAddress string) (domain.Market, bool)

	// Addresses returns every registered contract of a chain, sorted
	Addresses(chainID uint64) []string
}

// MarketplaceData represents the structure of the marketplaces.json file
// Key format: "chain_id" -> market -> list of contract addresses
type MarketplaceData map[string]map[string][]string

// MarketplaceRegistryLoader loads the registry from a JSON file
type MarketplaceRegistryLoader struct {
	fs   adapter.FileSystem
	json adapter.JSON
}

// NewMarketplaceRegistryLoader creates a loader
func NewMarketplaceRegistryLoader(fs adapter.FileSystem, json adapter.JSON) *MarketplaceRegistryLoader {
	return &MarketplaceRegistryLoader{fs: fs, json: json}
}

// marketplaceRegistry is the internal implementation of MarketplaceRegistry
type marketplaceRegistry struct {
	// Fast lookup map: "chainID:contract" -> market
	contracts map[string]domain.Market
	addresses map[uint64][]string
}

func contractKey(chainID uint64, contractAddress string) string {
	return fmt.Sprintf("%d:%s", chainID, domain.NormalizeAddress(contractAddress))
}

// Load reads and indexes the registry file
func (l *MarketplaceRegistryLoader) Load(filePath string) (MarketplaceRegistry, error) {
	data, err := l.fs.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read marketplaces file: %w", err)
	}

	var marketplaceData MarketplaceData
	if err := l.json.Unmarshal(data, &marketplaceData); err != nil {
		return nil, fmt.Errorf("failed to parse marketplaces JSON: %w", err)
	}

	return NewMarketplaceRegistry(marketplaceData)
}

// NewMarketplaceRegistry indexes already parsed registry data
func NewMarketplaceRegistry(data MarketplaceData) (MarketplaceRegistry, error) {
	r := &marketplaceRegistry{
		contracts: make(map[string]domain.Market),
		addresses: make(map[uint64][]string),
	}

	for chain, markets := range data {
		chainID, err := strconv.ParseUint(chain, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid chain id %q: %w", chain, err)
		}

		for name, addresses := range markets {
			market := domain.Market(name)
			if !domain.IsValidMarket(market) {
				return nil, fmt.Errorf("%w: %s", domain.ErrUnknownMarketplace, name)
			}

			for _, addr := range addresses {
				key := contractKey(chainID, addr)
				if existing, ok := r.contracts[key]; ok && existing != market {
					return nil, fmt.Errorf("contract %s on chain %d registered for both %s and %s", addr, chainID, existing, market)
				}
				if _, ok := r.contracts[key]; !ok {
					r.addresses[chainID] = append(r.addresses[chainID], domain.ChecksumAddress(addr))
				}
				r.contracts[key] = market
			}
		}
		slices.Sort(r.addresses[chainID])
	}

	return r, nil
}

// MarketOf returns the market of a contract on a chain
func (r *marketplaceRegistry) MarketOf(chainID uint64, contractAddress string) (domain.Market, bool) {
	if r == nil {
		return "", false
	}
	market, ok := r.contracts[contractKey(chainID, contractAddress)]
	return market, ok
}

// Addresses returns every registered contract of a chain
func (r *marketplaceRegistry) Addresses(chainID uint64) []string {
	if r == nil {
		return nil
	}
	return slices.Clone(r.addresses[chainID])
}
