package normalizer

import (
	"context"
	"fmt"
	"math/big"

	"go.uber.org/zap"

	"github.com/feral-file/ff-sales-indexer/internal/domain"
	"github.com/feral-file/ff-sales-indexer/internal/logger"
	"github.com/feral-file/ff-sales-indexer/internal/store"
	"github.com/feral-file/ff-sales-indexer/internal/store/schema"
)

// resolveMintContract applies the alias table, returning the counting contract and its initial counter
func (n *normalizer) resolveMintContract(contract string) (string, *big.Int) {
	for _, alias := range n.config.SeaDropAliases {
		if domain.NormalizeAddress(alias.Proxy) == domain.NormalizeAddress(contract) {
			return alias.Canonical, new(big.Int).SetUint64(alias.InitialCounter)
		}
	}
	return contract, big.NewInt(0)
}

// nextCounter returns the current counter of contract, or initial when it has none
func nextCounter(ctx context.Context, tx store.Store, contract string, initial *big.Int) (*big.Int, error) {
	counter, err := store.Get[schema.SeadropCounter](ctx, tx, contract)
	if err != nil {
		return nil, err
	}
	if counter == nil {
		return initial, nil
	}
	return domain.ParseDecimal(counter.Counter)
}

// assignTokenIDs allocates quantity token ids and advances the contract counter by quantity
func (n *normalizer) assignTokenIDs(ctx context.Context, tx store.Store, e domain.SeaDropMint, contract string, initial *big.Int, quantity *big.Int) ([]string, error) {
	c, err := nextCounter(ctx, tx, contract, initial)
	if err != nil {
		return nil, err
	}

	next := new(big.Int).Add(c, quantity)
	if err := tx.Set(ctx, &schema.SeadropCounter{ID: contract, Counter: next.String()}); err != nil {
		return nil, err
	}

	if n.config.TokenIDSource == TokenIDSourceReceipt && n.mintLookup != nil {
		// earlier mint logs of the same transaction own the earlier transfers
		ids, err := n.mintLookup.MintedTokenIDs(ctx, e.TxHash, e.NFTContract, e.LogIndex)
		switch {
		case err != nil:
			logger.WarnEvent(ctx, eventInfo(e), "Mint receipt lookup failed, using counter", zap.Error(err))
		case int64(len(ids)) < quantity.Int64():
			logger.WarnEvent(ctx, eventInfo(e), "Mint receipt has fewer token ids than minted, using counter",
				zap.Int("tokenIDs", len(ids)),
				zap.String("quantity", quantity.String()))
		default:
			return ids[len(ids)-int(quantity.Int64()):], nil
		}
	}

	ids := make([]string, 0, quantity.Int64())
	id := new(big.Int).Set(c)
	for i := int64(0); i < quantity.Int64(); i++ {
		ids = append(ids, id.String())
		id.Add(id, big.NewInt(1))
	}
	return ids, nil
}

// seaDropMint writes one sale per minted unit. A redelivered mint log reuses the token ids recorded for it.
func (n *normalizer) seaDropMint(ctx context.Context, tx store.Store, e domain.SeaDropMint) ([]*schema.Sale, error) {
	quantity, err := domain.ParseDecimal(e.QuantityMinted)
	if err != nil {
		return nil, err
	}
	if quantity.Sign() == 0 {
		return nil, nil
	}
	if quantity.Cmp(big.NewInt(domain.MAX_MINT_QUANTITY)) > 0 {
		return nil, fmt.Errorf("%w: quantity %s out of range", domain.ErrInvalidDecimal, quantity)
	}

	contract, initial := n.resolveMintContract(e.NFTContract)

	mintID := domain.LogID(e.ChainID, e.TxHash, e.LogIndex)
	mint, err := store.Get[schema.SeadropMint](ctx, tx, mintID)
	if err != nil {
		return nil, err
	}

	var tokenIDs []string
	if mint != nil {
		tokenIDs = mint.TokenIDs
	} else {
		tokenIDs, err = n.assignTokenIDs(ctx, tx, e, contract, initial, quantity)
		if err != nil {
			return nil, err
		}
		mint = &schema.SeadropMint{ID: mintID, Contract: contract, TokenIDs: tokenIDs}
		if err := tx.Set(ctx, mint); err != nil {
			return nil, err
		}
	}

	sales := make([]*schema.Sale, 0, len(tokenIDs))
	for _, tokenID := range tokenIDs {
		sale, err := persist(ctx, tx, saleDraft{
			id:            domain.UnitSaleID(e.ChainID, e.TxHash, tokenID),
			meta:          e.EventMeta,
			market:        e.Market(),
			offerer:       domain.ETHEREUM_ZERO_ADDRESS,
			recipient:     e.Minter,
			offer:         []lineItem{nftItem(contract, tokenID)},
			consideration: []lineItem{nativePayment(e.UnitMintPrice, domain.ETHEREUM_ZERO_ADDRESS)},
			roles:         rolesBuyerOnly,
		})
		if err != nil {
			return nil, err
		}
		sales = append(sales, sale)
	}

	return sales, nil
}
