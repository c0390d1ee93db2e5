package store

import (
	"context"

	"github.com/feral-file/ff-sales-indexer/internal/domain"
	"github.com/feral-file/ff-sales-indexer/internal/store/schema"
)

// GetOrCreateAccount returns the account for address, creating it on first reference.
// An existing account is returned unchanged.
func GetOrCreateAccount(ctx context.Context, s Store, address string) (*schema.Account, error) {
	id := domain.NormalizeAddress(address)
	account, err := Get[schema.Account](ctx, s, id)
	if err != nil {
		return nil, err
	}
	if account != nil {
		return account, nil
	}

	account = &schema.Account{ID: id, Address: address}
	if err := s.Set(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// GetOrCreateNFTContract returns the contract for address, creating it on first reference
func GetOrCreateNFTContract(ctx context.Context, s Store, address string) (*schema.NFTContract, error) {
	id := domain.NormalizeAddress(address)
	contract, err := Get[schema.NFTContract](ctx, s, id)
	if err != nil {
		return nil, err
	}
	if contract != nil {
		return contract, nil
	}

	contract = &schema.NFTContract{ID: id, Address: address}
	if err := s.Set(ctx, contract); err != nil {
		return nil, err
	}
	return contract, nil
}

// GetOrCreateNFTToken returns the token tokenID of contract, creating it on first reference
func GetOrCreateNFTToken(ctx context.Context, s Store, contract, tokenID string) (*schema.NFTToken, error) {
	id := domain.TokenKey(contract, tokenID)
	token, err := Get[schema.NFTToken](ctx, s, id)
	if err != nil {
		return nil, err
	}
	if token != nil {
		return token, nil
	}

	token = &schema.NFTToken{
		ID:         id,
		ContractID: domain.NormalizeAddress(contract),
		TokenID:    tokenID,
	}
	if err := s.Set(ctx, token); err != nil {
		return nil, err
	}
	return token, nil
}
