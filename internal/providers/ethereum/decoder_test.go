package ethereum

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-sales-indexer/internal/domain"
	"github.com/feral-file/ff-sales-indexer/internal/mocks"
)

const testTimestamp = uint64(1700000000)

var (
	marketContract = common.HexToAddress("0xb47e3cd837dDF8e4c57F05d70Ab865de6e193BBB")
	sellerAddr     = common.HexToAddress("0xaAaAaAaaAaAaAaaAaAAAAAAAAaaaAaAaAaaAaaAa")
	buyerAddr      = common.HexToAddress("0xbBbBBBBbbBBBbbbBbbBbbbbBBbBbbbbBbBbbBBbB")
	nftAddr        = common.HexToAddress("0x1111111111111111111111111111111111111111")
	currencyAddr   = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
)

// testDecoderMocks contains all the mocks needed for testing the decoder
type testDecoderMocks struct {
	ctrl     *gomock.Controller
	registry *mocks.MockMarketplaceRegistry
	blocks   *mocks.MockBlockProvider
	decoder  Decoder
}

func setupTestDecoder(t *testing.T) *testDecoderMocks {
	ctrl := gomock.NewController(t)
	tm := &testDecoderMocks{
		ctrl:     ctrl,
		registry: mocks.NewMockMarketplaceRegistry(ctrl),
		blocks:   mocks.NewMockBlockProvider(ctrl),
	}

	d, err := NewDecoder(1, tm.registry, tm.blocks)
	require.NoError(t, err)
	tm.decoder = d
	return tm
}

func tearDownTestDecoder(tm *testDecoderMocks) {
	tm.ctrl.Finish()
}

// buildLog packs a log of event name from abiJSON. indexed holds topics 1..n.
func buildLog(t *testing.T, abiJSON, name string, indexed []common.Hash, values ...interface{}) types.Log {
	parsed, err := abi.JSON(strings.NewReader(abiJSON))
	require.NoError(t, err)
	event, ok := parsed.Events[name]
	require.True(t, ok)

	data, err := event.Inputs.NonIndexed().Pack(values...)
	require.NoError(t, err)

	return types.Log{
		Address:     marketContract,
		Topics:      append([]common.Hash{event.ID}, indexed...),
		Data:        data,
		BlockNumber: 100,
		TxHash:      testTxHash,
		Index:       3,
	}
}

func expectedMeta() domain.EventMeta {
	return domain.EventMeta{
		ChainID:        1,
		BlockNumber:    100,
		BlockTimestamp: testTimestamp,
		TxHash:         testTxHash.Hex(),
		LogIndex:       3,
		Contract:       marketContract.Hex(),
	}
}

func wei(s string) *big.Int {
	v, _ := new(big.Int).SetString(s, 10)
	return v
}

func TestDecoder_Decode(t *testing.T) {
	tests := []struct {
		name     string
		market   domain.Market
		log      func(t *testing.T) types.Log
		expected domain.MarketEvent
	}{
		{
			name:   "punk bought",
			market: domain.MarketCryptoPunks,
			log: func(t *testing.T) types.Log {
				return buildLog(t, cryptoPunksABI, eventPunkBought,
					[]common.Hash{common.BigToHash(big.NewInt(123)), addressTopic(sellerAddr), addressTopic(buyerAddr)},
					wei("1000000000000000000"))
			},
			expected: domain.PunkBought{
				EventMeta:   expectedMeta(),
				PunkIndex:   "123",
				Value:       "1000000000000000000",
				FromAddress: sellerAddr.Hex(),
				ToAddress:   buyerAddr.Hex(),
			},
		},
		{
			name:   "seaport order with criteria items",
			market: domain.MarketSeaport,
			log: func(t *testing.T) types.Log {
				return buildLog(t, seaportABI, eventOrderFulfilled,
					[]common.Hash{addressTopic(sellerAddr), addressTopic(common.Address{})},
					[32]byte{0x01}, buyerAddr,
					[]seaportSpentItem{
						{ItemType: 4, Token: nftAddr, Identifier: big.NewInt(5), Amount: big.NewInt(1)},
					},
					[]seaportReceivedItem{
						{ItemType: 0, Token: common.Address{}, Identifier: big.NewInt(0), Amount: wei("900"), Recipient: sellerAddr},
						{ItemType: 5, Token: nftAddr, Identifier: big.NewInt(6), Amount: big.NewInt(2), Recipient: sellerAddr},
					})
			},
			expected: domain.SeaportOrderFulfilled{
				EventMeta: expectedMeta(),
				OrderHash: common.Hash([32]byte{0x01}).Hex(),
				Offerer:   sellerAddr.Hex(),
				Zone:      common.Address{}.Hex(),
				Recipient: buyerAddr.Hex(),
				Offer: []domain.SpentItem{
					{ItemType: domain.ItemTypeNonFungibleUnique, Token: nftAddr.Hex(), Identifier: "5", Amount: "1"},
				},
				Consideration: []domain.ReceivedItem{
					{ItemType: domain.ItemTypeNative, Token: common.Address{}.Hex(), Identifier: "0", Amount: "900", Recipient: sellerAddr.Hex()},
					{ItemType: domain.ItemTypeNonFungibleFractional, Token: nftAddr.Hex(), Identifier: "6", Amount: "2", Recipient: sellerAddr.Hex()},
				},
			},
		},
		{
			name:   "foundation auction created",
			market: domain.MarketFoundation,
			log: func(t *testing.T) types.Log {
				return buildLog(t, foundationABI, eventReserveAuctionCreated,
					[]common.Hash{addressTopic(sellerAddr), addressTopic(nftAddr), common.BigToHash(big.NewInt(7))},
					big.NewInt(86400), big.NewInt(900), wei("100"), big.NewInt(42))
			},
			expected: domain.FoundationReserveAuctionCreated{
				EventMeta:    expectedMeta(),
				Seller:       sellerAddr.Hex(),
				NFTContract:  nftAddr.Hex(),
				TokenID:      "7",
				ReservePrice: "100",
				AuctionID:    "42",
			},
		},
		{
			name:   "foundation auction finalized",
			market: domain.MarketFoundation,
			log: func(t *testing.T) types.Log {
				return buildLog(t, foundationABI, eventReserveAuctionFinalized,
					[]common.Hash{common.BigToHash(big.NewInt(42)), addressTopic(sellerAddr), addressTopic(buyerAddr)},
					big.NewInt(50), big.NewInt(0), big.NewInt(950))
			},
			expected: domain.FoundationReserveAuctionFinalized{
				EventMeta:      expectedMeta(),
				FoundationFees: domain.FoundationFees{ProtocolFee: "50", CreatorFee: "0", SellerRev: "950"},
				AuctionID:      "42",
				Seller:         sellerAddr.Hex(),
				Bidder:         buyerAddr.Hex(),
			},
		},
		{
			name:   "foundation offer accepted",
			market: domain.MarketFoundation,
			log: func(t *testing.T) types.Log {
				return buildLog(t, foundationABI, eventOfferAccepted,
					[]common.Hash{addressTopic(nftAddr), common.BigToHash(big.NewInt(7)), addressTopic(buyerAddr)},
					sellerAddr, big.NewInt(5), big.NewInt(10), big.NewInt(85))
			},
			expected: domain.FoundationOfferAccepted{
				EventMeta: expectedMeta(),
				FoundationSettlement: domain.FoundationSettlement{
					FoundationFees: domain.FoundationFees{ProtocolFee: "5", CreatorFee: "10", SellerRev: "85"},
					NFTContract:    nftAddr.Hex(),
					TokenID:        "7",
					Seller:         sellerAddr.Hex(),
					Buyer:          buyerAddr.Hex(),
				},
			},
		},
		{
			name:   "foundation private sale",
			market: domain.MarketFoundation,
			log: func(t *testing.T) types.Log {
				return buildLog(t, foundationABI, eventPrivateSaleFinalized,
					[]common.Hash{addressTopic(nftAddr), common.BigToHash(big.NewInt(7)), addressTopic(sellerAddr)},
					buyerAddr, big.NewInt(5), big.NewInt(10), big.NewInt(85), big.NewInt(1700000500))
			},
			expected: domain.FoundationPrivateSaleFinalized{
				EventMeta: expectedMeta(),
				FoundationSettlement: domain.FoundationSettlement{
					FoundationFees: domain.FoundationFees{ProtocolFee: "5", CreatorFee: "10", SellerRev: "85"},
					NFTContract:    nftAddr.Hex(),
					TokenID:        "7",
					Seller:         sellerAddr.Hex(),
					Buyer:          buyerAddr.Hex(),
				},
				Deadline: "1700000500",
			},
		},
		{
			name:   "superrare auction settled",
			market: domain.MarketSuperRare,
			log: func(t *testing.T) types.Log {
				return buildLog(t, superRareABI, eventAuctionSettled,
					[]common.Hash{addressTopic(nftAddr), addressTopic(buyerAddr), common.BigToHash(big.NewInt(9))},
					sellerAddr, currencyAddr, wei("2000"))
			},
			expected: domain.SuperRareAuctionSettled{
				EventMeta: expectedMeta(),
				SuperRareSettlement: domain.SuperRareSettlement{
					NFTContract: nftAddr.Hex(),
					TokenID:     "9",
					Seller:      sellerAddr.Hex(),
					Buyer:       buyerAddr.Hex(),
					Currency:    currencyAddr.Hex(),
					Amount:      "2000",
				},
			},
		},
		{
			name:   "superrare accept offer",
			market: domain.MarketSuperRare,
			log: func(t *testing.T) types.Log {
				return buildLog(t, superRareABI, eventAcceptOffer,
					[]common.Hash{addressTopic(nftAddr), addressTopic(buyerAddr), addressTopic(sellerAddr)},
					common.Address{}, wei("3000"), big.NewInt(9),
					[]common.Address{sellerAddr}, []uint8{100})
			},
			expected: domain.SuperRareAcceptOffer{
				EventMeta: expectedMeta(),
				SuperRareSettlement: domain.SuperRareSettlement{
					NFTContract: nftAddr.Hex(),
					TokenID:     "9",
					Seller:      sellerAddr.Hex(),
					Buyer:       buyerAddr.Hex(),
					Currency:    common.Address{}.Hex(),
					Amount:      "3000",
				},
				SplitAddresses: []string{sellerAddr.Hex()},
				SplitRatios:    []uint8{100},
			},
		},
		{
			name:   "superrare sold",
			market: domain.MarketSuperRare,
			log: func(t *testing.T) types.Log {
				return buildLog(t, superRareABI, eventSold,
					[]common.Hash{addressTopic(nftAddr), addressTopic(buyerAddr), addressTopic(sellerAddr)},
					currencyAddr, wei("3000"), big.NewInt(9))
			},
			expected: domain.SuperRareSold{
				EventMeta: expectedMeta(),
				SuperRareSettlement: domain.SuperRareSettlement{
					NFTContract: nftAddr.Hex(),
					TokenID:     "9",
					Seller:      sellerAddr.Hex(),
					Buyer:       buyerAddr.Hex(),
					Currency:    currencyAddr.Hex(),
					Amount:      "3000",
				},
			},
		},
		{
			name:   "superrare legacy accept bid",
			market: domain.MarketSuperRareV1,
			log: func(t *testing.T) types.Log {
				return buildLog(t, superRareLegacyABI, eventAcceptBid,
					[]common.Hash{addressTopic(buyerAddr), addressTopic(sellerAddr), common.BigToHash(big.NewInt(11))},
					wei("400"))
			},
			expected: domain.SuperRareLegacySold{
				EventMeta: expectedMeta(),
				Buyer:     buyerAddr.Hex(),
				Seller:    sellerAddr.Hex(),
				Amount:    "400",
				TokenID:   "11",
			},
		},
		{
			name:   "superrare legacy sold",
			market: domain.MarketSuperRareV1,
			log: func(t *testing.T) types.Log {
				return buildLog(t, superRareLegacyABI, eventSold,
					[]common.Hash{addressTopic(buyerAddr), addressTopic(sellerAddr), common.BigToHash(big.NewInt(11))},
					wei("400"))
			},
			expected: domain.SuperRareLegacySold{
				EventMeta: expectedMeta(),
				Buyer:     buyerAddr.Hex(),
				Seller:    sellerAddr.Hex(),
				Amount:    "400",
				TokenID:   "11",
			},
		},
		{
			name:   "seadrop mint",
			market: domain.MarketSeaDrop,
			log: func(t *testing.T) types.Log {
				return buildLog(t, seaDropABI, eventSeaDropMint,
					[]common.Hash{addressTopic(nftAddr), addressTopic(buyerAddr), addressTopic(sellerAddr)},
					buyerAddr, big.NewInt(3), wei("500000000000000000"), big.NewInt(1000), big.NewInt(0))
			},
			expected: domain.SeaDropMint{
				EventMeta:      expectedMeta(),
				NFTContract:    nftAddr.Hex(),
				Minter:         buyerAddr.Hex(),
				FeeRecipient:   sellerAddr.Hex(),
				Payer:          buyerAddr.Hex(),
				QuantityMinted: "3",
				UnitMintPrice:  "500000000000000000",
				FeeBps:         "1000",
				DropStageIndex: "0",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm := setupTestDecoder(t)
			defer tearDownTestDecoder(tm)

			ctx := context.Background()
			tm.registry.EXPECT().MarketOf(uint64(1), marketContract.Hex()).Return(tt.market, true)
			tm.blocks.EXPECT().GetBlockTimestamp(ctx, uint64(100)).Return(testTimestamp, nil)

			event, err := tm.decoder.Decode(ctx, tt.log(t))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, event)
			assert.Equal(t, tt.market, event.Market())
		})
	}
}

func TestDecoder_Decode_SkipsUnknownTopic(t *testing.T) {
	tm := setupTestDecoder(t)
	defer tearDownTestDecoder(tm)

	vLog := types.Log{
		Address: marketContract,
		Topics:  []common.Hash{transferEventSignature},
	}

	event, err := tm.decoder.Decode(context.Background(), vLog)
	assert.NoError(t, err)
	assert.Nil(t, event)
}

func TestDecoder_Decode_SkipsRemovedLog(t *testing.T) {
	tm := setupTestDecoder(t)
	defer tearDownTestDecoder(tm)

	vLog := buildLog(t, cryptoPunksABI, eventPunkBought,
		[]common.Hash{common.BigToHash(big.NewInt(1)), addressTopic(sellerAddr), addressTopic(buyerAddr)},
		big.NewInt(1))
	vLog.Removed = true

	event, err := tm.decoder.Decode(context.Background(), vLog)
	assert.NoError(t, err)
	assert.Nil(t, event)
}

func TestDecoder_Decode_RejectsWrongMarket(t *testing.T) {
	tm := setupTestDecoder(t)
	defer tearDownTestDecoder(tm)

	vLog := buildLog(t, cryptoPunksABI, eventPunkBought,
		[]common.Hash{common.BigToHash(big.NewInt(1)), addressTopic(sellerAddr), addressTopic(buyerAddr)},
		big.NewInt(1))

	tm.registry.EXPECT().MarketOf(uint64(1), marketContract.Hex()).Return(domain.MarketSeaport, true)

	event, err := tm.decoder.Decode(context.Background(), vLog)
	assert.ErrorIs(t, err, domain.ErrUnknownMarketplace)
	assert.Nil(t, event)
}

func TestDecoder_Decode_RejectsUnregisteredContract(t *testing.T) {
	tm := setupTestDecoder(t)
	defer tearDownTestDecoder(tm)

	vLog := buildLog(t, cryptoPunksABI, eventPunkBought,
		[]common.Hash{common.BigToHash(big.NewInt(1)), addressTopic(sellerAddr), addressTopic(buyerAddr)},
		big.NewInt(1))

	tm.registry.EXPECT().MarketOf(uint64(1), marketContract.Hex()).Return(domain.Market(""), false)

	_, err := tm.decoder.Decode(context.Background(), vLog)
	assert.ErrorIs(t, err, domain.ErrUnknownMarketplace)
}

func TestDecoder_Decode_MalformedLog(t *testing.T) {
	tm := setupTestDecoder(t)
	defer tearDownTestDecoder(tm)

	ctx := context.Background()
	vLog := buildLog(t, cryptoPunksABI, eventPunkBought,
		[]common.Hash{common.BigToHash(big.NewInt(1)), addressTopic(sellerAddr), addressTopic(buyerAddr)},
		big.NewInt(1))
	// drop the buyer topic
	vLog.Topics = vLog.Topics[:3]

	tm.registry.EXPECT().MarketOf(uint64(1), marketContract.Hex()).Return(domain.MarketCryptoPunks, true)
	tm.blocks.EXPECT().GetBlockTimestamp(ctx, uint64(100)).Return(testTimestamp, nil)

	_, err := tm.decoder.Decode(ctx, vLog)
	assert.ErrorIs(t, err, ErrMalformedLog)
}

func TestDecoder_Decode_InvalidSeaportItemType(t *testing.T) {
	tm := setupTestDecoder(t)
	defer tearDownTestDecoder(tm)

	ctx := context.Background()
	vLog := buildLog(t, seaportABI, eventOrderFulfilled,
		[]common.Hash{addressTopic(sellerAddr), addressTopic(common.Address{})},
		[32]byte{}, buyerAddr,
		[]seaportSpentItem{{ItemType: 9, Token: nftAddr, Identifier: big.NewInt(1), Amount: big.NewInt(1)}},
		[]seaportReceivedItem{})

	tm.registry.EXPECT().MarketOf(uint64(1), marketContract.Hex()).Return(domain.MarketSeaport, true)
	tm.blocks.EXPECT().GetBlockTimestamp(ctx, uint64(100)).Return(testTimestamp, nil)

	_, err := tm.decoder.Decode(ctx, vLog)
	assert.ErrorIs(t, err, ErrMalformedLog)
}

func TestDecoder_Decode_TimestampError(t *testing.T) {
	tm := setupTestDecoder(t)
	defer tearDownTestDecoder(tm)

	ctx := context.Background()
	vLog := buildLog(t, cryptoPunksABI, eventPunkBought,
		[]common.Hash{common.BigToHash(big.NewInt(1)), addressTopic(sellerAddr), addressTopic(buyerAddr)},
		big.NewInt(1))

	tm.registry.EXPECT().MarketOf(uint64(1), marketContract.Hex()).Return(domain.MarketCryptoPunks, true)
	tm.blocks.EXPECT().GetBlockTimestamp(ctx, uint64(100)).Return(uint64(0), errors.New("rpc down"))

	_, err := tm.decoder.Decode(ctx, vLog)
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrMalformedLog))
}

func TestDecoder_Topics(t *testing.T) {
	tm := setupTestDecoder(t)
	defer tearDownTestDecoder(tm)

	topics := tm.decoder.Topics()
	assert.Len(t, topics, 13)

	seen := make(map[common.Hash]bool)
	for _, topic := range topics {
		assert.False(t, seen[topic], "duplicate topic %s", topic.Hex())
		seen[topic] = true
	}
}
