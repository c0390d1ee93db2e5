package ethereum

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-sales-indexer/internal/domain"
	"github.com/feral-file/ff-sales-indexer/internal/messaging"
	"github.com/feral-file/ff-sales-indexer/internal/mocks"
)

// testSubscriberMocks contains all the mocks needed for testing the subscriber
type testSubscriberMocks struct {
	ctrl       *gomock.Controller
	client     *mocks.MockEthereumClient
	decoder    *mocks.MockDecoder
	registry   *mocks.MockMarketplaceRegistry
	subscriber messaging.Subscriber
}

func setupTestSubscriber(t *testing.T) *testSubscriberMocks {
	ctrl := gomock.NewController(t)
	tm := &testSubscriberMocks{
		ctrl:     ctrl,
		client:   mocks.NewMockEthereumClient(ctrl),
		decoder:  mocks.NewMockDecoder(ctrl),
		registry: mocks.NewMockMarketplaceRegistry(ctrl),
	}
	tm.subscriber = NewSubscriber(Config{ChainID: 1}, tm.client, tm.decoder, tm.registry)
	return tm
}

func tearDownTestSubscriber(tm *testSubscriberMocks) {
	tm.ctrl.Finish()
}

func idleSubscription() ethereum.Subscription {
	return event.NewSubscription(func(quit <-chan struct{}) error {
		<-quit
		return nil
	})
}

func punkAt(vLog types.Log) domain.MarketEvent {
	return domain.PunkBought{EventMeta: domain.EventMeta{ChainID: 1, BlockNumber: vLog.BlockNumber, LogIndex: vLog.Index}}
}

func TestSubscriber_BackfillThenLive(t *testing.T) {
	tm := setupTestSubscriber(t)
	defer tearDownTestSubscriber(tm)

	ctx := context.Background()
	topics := []common.Hash{common.HexToHash("0x01")}

	tm.registry.EXPECT().Addresses(uint64(1)).Return([]string{marketContract.Hex()})
	tm.decoder.EXPECT().Topics().Return(topics)

	tm.client.EXPECT().
		SubscribeFilterLogs(ctx, gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, q ethereum.FilterQuery, ch chan<- types.Log) (ethereum.Subscription, error) {
			assert.Equal(t, []common.Address{marketContract}, q.Addresses)
			assert.Equal(t, [][]common.Hash{topics}, q.Topics)
			// the first live log overlaps the backfill
			ch <- types.Log{BlockNumber: 101, Index: 1}
			ch <- types.Log{BlockNumber: 102, Index: 0}
			ch <- types.Log{BlockNumber: 103, Index: 0}
			return idleSubscription(), nil
		})
	tm.client.EXPECT().HeaderByNumber(ctx, nil).Return(&types.Header{Number: big.NewInt(101)}, nil)
	tm.client.EXPECT().
		FilterLogs(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
			assert.Equal(t, uint64(100), q.FromBlock.Uint64())
			assert.Equal(t, uint64(101), q.ToBlock.Uint64())
			return []types.Log{
				{BlockNumber: 101, Index: 1},
				{BlockNumber: 100, Index: 5},
				{BlockNumber: 100, Index: 2},
			}, nil
		})

	tm.decoder.EXPECT().
		Decode(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, vLog types.Log) (domain.MarketEvent, error) {
			if vLog.BlockNumber == 102 {
				return nil, ErrMalformedLog
			}
			return punkAt(vLog), nil
		}).
		Times(5)

	stop := errors.New("stop")
	var seen [][2]uint64
	err := tm.subscriber.SubscribeEvents(ctx, 100, func(_ context.Context, e domain.MarketEvent) error {
		seen = append(seen, [2]uint64{e.Meta().BlockNumber, uint64(e.Meta().LogIndex)})
		if e.Meta().BlockNumber == 103 {
			return stop
		}
		return nil
	})

	assert.ErrorIs(t, err, stop)
	assert.Equal(t, [][2]uint64{{100, 2}, {100, 5}, {101, 1}, {103, 0}}, seen)
}

func TestSubscriber_StartsAboveHead(t *testing.T) {
	tm := setupTestSubscriber(t)
	defer tearDownTestSubscriber(tm)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tm.registry.EXPECT().Addresses(uint64(1)).Return([]string{marketContract.Hex()})
	tm.decoder.EXPECT().Topics().Return(nil)
	tm.client.EXPECT().
		SubscribeFilterLogs(ctx, gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ ethereum.FilterQuery, ch chan<- types.Log) (ethereum.Subscription, error) {
			ch <- types.Log{BlockNumber: 200}
			return idleSubscription(), nil
		})
	tm.client.EXPECT().HeaderByNumber(ctx, nil).Return(&types.Header{Number: big.NewInt(199)}, nil)
	tm.decoder.EXPECT().
		Decode(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, vLog types.Log) (domain.MarketEvent, error) {
			return punkAt(vLog), nil
		})

	err := tm.subscriber.SubscribeEvents(ctx, 200, func(_ context.Context, e domain.MarketEvent) error {
		assert.Equal(t, uint64(200), e.Meta().BlockNumber)
		cancel()
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSubscriber_NoRegisteredContracts(t *testing.T) {
	tm := setupTestSubscriber(t)
	defer tearDownTestSubscriber(tm)

	tm.registry.EXPECT().Addresses(uint64(1)).Return(nil)

	err := tm.subscriber.SubscribeEvents(context.Background(), 0, func(context.Context, domain.MarketEvent) error {
		return nil
	})
	assert.ErrorContains(t, err, "no marketplace contracts registered")
}

func TestSubscriber_DecodeFailureStopsStream(t *testing.T) {
	tm := setupTestSubscriber(t)
	defer tearDownTestSubscriber(tm)

	ctx := context.Background()
	tm.registry.EXPECT().Addresses(uint64(1)).Return([]string{marketContract.Hex()})
	tm.decoder.EXPECT().Topics().Return(nil)
	tm.client.EXPECT().SubscribeFilterLogs(ctx, gomock.Any(), gomock.Any()).Return(idleSubscription(), nil)
	tm.client.EXPECT().HeaderByNumber(ctx, nil).Return(&types.Header{Number: big.NewInt(10)}, nil)
	tm.client.EXPECT().FilterLogs(ctx, gomock.Any()).Return([]types.Log{{BlockNumber: 10}}, nil)
	tm.decoder.EXPECT().Decode(ctx, gomock.Any()).Return(nil, errors.New("failed to get block timestamp"))

	err := tm.subscriber.SubscribeEvents(ctx, 10, func(context.Context, domain.MarketEvent) error {
		t.Fatal("handler must not be called")
		return nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode log")
}

func TestSubscriber_SubscriptionError(t *testing.T) {
	tm := setupTestSubscriber(t)
	defer tearDownTestSubscriber(tm)

	ctx := context.Background()
	boom := errors.New("websocket closed")
	tm.registry.EXPECT().Addresses(uint64(1)).Return([]string{marketContract.Hex()})
	tm.decoder.EXPECT().Topics().Return(nil)
	tm.client.EXPECT().
		SubscribeFilterLogs(ctx, gomock.Any(), gomock.Any()).
		Return(event.NewSubscription(func(<-chan struct{}) error { return boom }), nil)
	tm.client.EXPECT().HeaderByNumber(ctx, nil).Return(&types.Header{Number: big.NewInt(5)}, nil)

	err := tm.subscriber.SubscribeEvents(ctx, 6, func(context.Context, domain.MarketEvent) error {
		return nil
	})
	assert.ErrorIs(t, err, boom)
}

func TestSubscriber_GetLatestBlock(t *testing.T) {
	tm := setupTestSubscriber(t)
	defer tearDownTestSubscriber(tm)

	ctx := context.Background()
	tm.client.EXPECT().HeaderByNumber(ctx, nil).Return(&types.Header{Number: big.NewInt(19000000)}, nil)

	latest, err := tm.subscriber.GetLatestBlock(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(19000000), latest)
}
