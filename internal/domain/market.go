package domain

// Market identifies the protocol that produced a sale
type Market string

const (
	MarketSeaport     Market = "seaport"
	MarketCryptoPunks Market = "cryptopunks"
	MarketFoundation  Market = "foundation"
	MarketSuperRare   Market = "superrare"
	MarketSuperRareV1 Market = "superrare_v1"
	MarketSeaDrop     Market = "seadrop"
)

// Markets lists every supported market
var Markets = []Market{
	MarketSeaport,
	MarketCryptoPunks,
	MarketFoundation,
	MarketSuperRare,
	MarketSuperRareV1,
	MarketSeaDrop,
}

// IsValidMarket checks if a market is supported
func IsValidMarket(market Market) bool {
	for _, m := range Markets {
		if m == market {
			return true
		}
	}
	return false
}
