package normalizer

import "context"

// MintLookup resolves the token ids minted by a transaction
//
//go:generate mockgen -source=mint_lookup.go -destination=../mocks/mint_lookup.go -package=mocks -mock_names=MintLookup=MockMintLookup
type MintLookup interface {
	// MintedTokenIDs returns the ids of the tokens of contract minted in txHash by the logs preceding beforeLogIndex,
	// as decimal strings in log order
	MintedTokenIDs(ctx context.Context, txHash string, contract string, beforeLogIndex uint) ([]string, error)
}
