package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-sales-indexer/internal/domain"
	"github.com/feral-file/ff-sales-indexer/internal/store/schema"
)

// =============================================================================
// Test Data Builders
// =============================================================================

func buildTestSale(id string) *schema.Sale {
	return &schema.Sale{
		ID:                       id,
		ChainID:                  1,
		BlockNumber:              100,
		LogIndex:                 3,
		Timestamp:                "1700000000",
		TransactionHash:          "0xabc",
		Market:                   string(domain.MarketCryptoPunks),
		OffererID:                "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb",
		RecipientID:              "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		OfferItemTypes:           []int{2},
		OfferTokens:              []string{"0xb47e3cd837dDF8e4c57F05d70Ab865de6e193BBB"},
		OfferIdentifiers:         []string{"123"},
		OfferAmounts:             []string{"1"},
		ConsiderationItemTypes:   []int{0},
		ConsiderationTokens:      []string{domain.ETHEREUM_ZERO_ADDRESS},
		ConsiderationIdentifiers: []string{"0"},
		ConsiderationAmounts:     []string{"115792089237316195423570985008687907853269984665640564039457584007913129639935"},
		ConsiderationRecipients:  []string{"0xBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBB"},
	}
}

// RunStoreTests runs the shared store behaviour tests against an implementation.
// initDB must return a fresh, empty store for each test.
func RunStoreTests(t *testing.T, initDB func(t *testing.T) Store, cleanupDB func(t *testing.T)) {
	t.Run("GetMissing", func(t *testing.T) {
		s := initDB(t)
		defer cleanupDB(t)

		var account schema.Account
		found, err := s.Get(context.Background(), "0xmissing", &account)
		require.NoError(t, err)
		assert.False(t, found)

		got, err := Get[schema.Account](context.Background(), s, "0xmissing")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("SetAndGetSale", func(t *testing.T) {
		s := initDB(t)
		defer cleanupDB(t)
		ctx := context.Background()

		sale := buildTestSale("1_0xabc")
		require.NoError(t, s.Set(ctx, sale))

		got, err := Get[schema.Sale](ctx, s, "1_0xabc")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, sale.ID, got.ID)
		assert.Equal(t, sale.BlockNumber, got.BlockNumber)
		assert.Equal(t, sale.LogIndex, got.LogIndex)
		assert.Equal(t, []int(sale.OfferItemTypes), []int(got.OfferItemTypes))
		assert.Equal(t, []string(sale.OfferIdentifiers), []string(got.OfferIdentifiers))
		assert.Equal(t, []string(sale.ConsiderationAmounts), []string(got.ConsiderationAmounts))
		assert.Equal(t, []string(sale.ConsiderationRecipients), []string(got.ConsiderationRecipients))
		assert.True(t, got.ArraysConsistent())
	})

	t.Run("SetOverwrites", func(t *testing.T) {
		s := initDB(t)
		defer cleanupDB(t)
		ctx := context.Background()

		require.NoError(t, s.Set(ctx, &schema.SeadropCounter{ID: "0xC0ntract", Counter: "3"}))
		require.NoError(t, s.Set(ctx, &schema.SeadropCounter{ID: "0xC0ntract", Counter: "5"}))

		got, err := Get[schema.SeadropCounter](ctx, s, "0xC0ntract")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "5", got.Counter)

		// counter ids keep their case
		other, err := Get[schema.SeadropCounter](ctx, s, "0xc0ntract")
		require.NoError(t, err)
		assert.Nil(t, other)
	})

	t.Run("GetAllOrderedByID", func(t *testing.T) {
		s := initDB(t)
		defer cleanupDB(t)
		ctx := context.Background()

		for _, id := range []string{"c", "a", "b"} {
			require.NoError(t, s.Set(ctx, &schema.AccountBuy{ID: id + ":sale", AccountID: id, SaleID: "sale"}))
		}
		require.NoError(t, s.Set(ctx, &schema.AccountSell{ID: "z:sale", AccountID: "z", SaleID: "sale"}))

		buys, err := GetAll[schema.AccountBuy](ctx, s)
		require.NoError(t, err)
		require.Len(t, buys, 3)
		assert.Equal(t, "a:sale", buys[0].ID)
		assert.Equal(t, "b:sale", buys[1].ID)
		assert.Equal(t, "c:sale", buys[2].ID)

		swaps, err := GetAll[schema.AccountSwap](ctx, s)
		require.NoError(t, err)
		assert.Empty(t, swaps)
	})

	t.Run("WithTxCommits", func(t *testing.T) {
		s := initDB(t)
		defer cleanupDB(t)
		ctx := context.Background()

		err := s.WithTx(ctx, func(tx Store) error {
			if err := tx.Set(ctx, &schema.FoundationAuction{ID: "42", NFTContract: "0xNFT", TokenID: "7", Status: schema.AuctionStatusCreated}); err != nil {
				return err
			}
			// read-your-writes inside the transaction
			got, err := Get[schema.FoundationAuction](ctx, tx, "42")
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, "7", got.TokenID)

			all, err := GetAll[schema.FoundationAuction](ctx, tx)
			require.NoError(t, err)
			assert.Len(t, all, 1)
			return nil
		})
		require.NoError(t, err)

		got, err := Get[schema.FoundationAuction](ctx, s, "42")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, schema.AuctionStatusCreated, got.Status)
	})

	t.Run("WithTxRollsBackOnError", func(t *testing.T) {
		s := initDB(t)
		defer cleanupDB(t)
		ctx := context.Background()

		boom := errors.New("boom")
		err := s.WithTx(ctx, func(tx Store) error {
			require.NoError(t, tx.Set(ctx, &schema.Account{ID: "0xaaa", Address: "0xAAA"}))
			return boom
		})
		assert.ErrorIs(t, err, boom)

		got, err := Get[schema.Account](ctx, s, "0xaaa")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("BlockCursor", func(t *testing.T) {
		s := initDB(t)
		defer cleanupDB(t)
		ctx := context.Background()

		block, err := s.GetBlockCursor(ctx, domain.ChainEthereumMainnet)
		require.NoError(t, err)
		assert.Equal(t, uint64(0), block)

		require.NoError(t, s.SetBlockCursor(ctx, domain.ChainEthereumMainnet, 19000000))
		require.NoError(t, s.SetBlockCursor(ctx, domain.ChainEthereumMainnet, 19000001))
		require.NoError(t, s.SetBlockCursor(ctx, domain.ChainBaseMainnet, 5))

		block, err = s.GetBlockCursor(ctx, domain.ChainEthereumMainnet)
		require.NoError(t, err)
		assert.Equal(t, uint64(19000001), block)

		block, err = s.GetBlockCursor(ctx, domain.ChainBaseMainnet)
		require.NoError(t, err)
		assert.Equal(t, uint64(5), block)
	})

	t.Run("GetOrCreateAccountKeepsFirstCase", func(t *testing.T) {
		s := initDB(t)
		defer cleanupDB(t)
		ctx := context.Background()

		first, err := GetOrCreateAccount(ctx, s, "0xAbCdEf0000000000000000000000000000000001")
		require.NoError(t, err)
		assert.Equal(t, "0xabcdef0000000000000000000000000000000001", first.ID)
		assert.Equal(t, "0xAbCdEf0000000000000000000000000000000001", first.Address)

		second, err := GetOrCreateAccount(ctx, s, "0xABCDEF0000000000000000000000000000000001")
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, "0xAbCdEf0000000000000000000000000000000001", second.Address)

		accounts, err := GetAll[schema.Account](ctx, s)
		require.NoError(t, err)
		require.Len(t, accounts, 1)
		assert.Equal(t, "0xAbCdEf0000000000000000000000000000000001", accounts[0].Address)
	})

	t.Run("GetOrCreateNFT", func(t *testing.T) {
		s := initDB(t)
		defer cleanupDB(t)
		ctx := context.Background()

		contract, err := GetOrCreateNFTContract(ctx, s, "0xB47E3cd837dDF8e4c57F05d70Ab865de6e193BBB")
		require.NoError(t, err)
		assert.Equal(t, "0xb47e3cd837ddf8e4c57f05d70ab865de6e193bbb", contract.ID)

		token, err := GetOrCreateNFTToken(ctx, s, "0xB47E3cd837dDF8e4c57F05d70Ab865de6e193BBB", "123")
		require.NoError(t, err)
		assert.Equal(t, "0xb47e3cd837ddf8e4c57f05d70ab865de6e193bbb:123", token.ID)
		assert.Equal(t, contract.ID, token.ContractID)
		assert.Equal(t, "123", token.TokenID)

		again, err := GetOrCreateNFTToken(ctx, s, "0xb47e3cd837ddf8e4c57f05d70ab865de6e193bbb", "123")
		require.NoError(t, err)
		assert.Equal(t, token, again)

		tokens, err := GetAll[schema.NFTToken](ctx, s)
		require.NoError(t, err)
		assert.Len(t, tokens, 1)
	})

	t.Run("GetOrCreateInsideTx", func(t *testing.T) {
		s := initDB(t)
		defer cleanupDB(t)
		ctx := context.Background()

		err := s.WithTx(ctx, func(tx Store) error {
			a, err := GetOrCreateAccount(ctx, tx, "0xAAA")
			require.NoError(t, err)
			b, err := GetOrCreateAccount(ctx, tx, "0xaaa")
			require.NoError(t, err)
			assert.Equal(t, "0xAAA", b.Address)
			assert.Equal(t, a, b)
			return nil
		})
		require.NoError(t, err)

		accounts, err := GetAll[schema.Account](ctx, s)
		require.NoError(t, err)
		assert.Len(t, accounts, 1)
	})
}
