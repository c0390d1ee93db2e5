package ethereum

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/feral-file/ff-sales-indexer/internal/domain"
	"github.com/feral-file/ff-sales-indexer/internal/logger"
	"github.com/feral-file/ff-sales-indexer/internal/messaging"
	"github.com/feral-file/ff-sales-indexer/internal/registry"
)

// Config holds the configuration for marketplace log subscription
type Config struct {
	ChainID    uint64 // EVM chain id, e.g. 1 for Ethereum mainnet
	LiveBuffer int    // buffered live logs while backfilling, 0 means 1024
}

type ethSubscriber struct {
	client   EthereumClient
	decoder  Decoder
	registry registry.MarketplaceRegistry
	config   Config
}

// NewSubscriber creates a new marketplace log subscriber
func NewSubscriber(cfg Config, client EthereumClient, decoder Decoder, reg registry.MarketplaceRegistry) messaging.Subscriber {
	if cfg.LiveBuffer <= 0 {
		cfg.LiveBuffer = 1024
	}
	return &ethSubscriber{
		client:   client,
		decoder:  decoder,
		registry: reg,
		config:   cfg,
	}
}

// SubscribeEvents subscribes to the registered marketplace contracts.
// The live subscription is opened first, then [fromBlock, head] is backfilled,
// then live logs above head are delivered.
func (s *ethSubscriber) SubscribeEvents(ctx context.Context, fromBlock uint64, handler messaging.EventHandler) error {
	registered := s.registry.Addresses(s.config.ChainID)
	if len(registered) == 0 {
		return fmt.Errorf("no marketplace contracts registered for chain %d", s.config.ChainID)
	}
	addresses := make([]common.Address, 0, len(registered))
	for _, a := range registered {
		addresses = append(addresses, common.HexToAddress(a))
	}

	query := ethereum.FilterQuery{
		Addresses: addresses,
		Topics:    [][]common.Hash{s.decoder.Topics()},
	}

	logs := make(chan types.Log, s.config.LiveBuffer)
	sub, err := s.client.SubscribeFilterLogs(ctx, query, logs)
	if err != nil {
		return fmt.Errorf("failed to subscribe to filter logs: %w", err)
	}
	defer func() {
		logger.InfoCtx(ctx, "Unsubscribing from marketplace logs", zap.Uint64("chainID", s.config.ChainID))
		sub.Unsubscribe()
	}()

	head, err := s.GetLatestBlock(ctx)
	if err != nil {
		return err
	}

	if fromBlock <= head {
		backfill := query
		backfill.FromBlock = new(big.Int).SetUint64(fromBlock)
		backfill.ToBlock = new(big.Int).SetUint64(head)

		history, err := s.client.FilterLogs(ctx, backfill)
		if err != nil {
			return fmt.Errorf("failed to backfill logs %d-%d: %w", fromBlock, head, err)
		}
		sort.SliceStable(history, func(i, j int) bool {
			if history[i].BlockNumber != history[j].BlockNumber {
				return history[i].BlockNumber < history[j].BlockNumber
			}
			return history[i].Index < history[j].Index
		})

		logger.InfoCtx(ctx, "Backfilling marketplace logs",
			zap.Uint64("chainID", s.config.ChainID),
			zap.Uint64("fromBlock", fromBlock),
			zap.Uint64("toBlock", head),
			zap.Int("logs", len(history)))

		for _, vLog := range history {
			if err := s.process(ctx, vLog, handler); err != nil {
				return err
			}
		}
	} else {
		head = fromBlock - 1
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-sub.Err():
			return fmt.Errorf("subscription error: %w", err)
		case vLog := <-logs:
			// already delivered by the backfill
			if vLog.BlockNumber <= head {
				continue
			}
			if err := s.process(ctx, vLog, handler); err != nil {
				return err
			}
		}
	}
}

// process decodes a log and hands the event to handler. Undecodable logs are skipped.
func (s *ethSubscriber) process(ctx context.Context, vLog types.Log, handler messaging.EventHandler) error {
	event, err := s.decoder.Decode(ctx, vLog)
	if err != nil {
		if errors.Is(err, ErrMalformedLog) || errors.Is(err, domain.ErrUnknownMarketplace) {
			logger.WarnCtx(ctx, "Skipping undecodable log",
				zap.Error(err),
				zap.Uint64("chainID", s.config.ChainID),
				zap.String("txHash", vLog.TxHash.Hex()),
				zap.Uint64("blockNumber", vLog.BlockNumber),
				zap.Uint("logIndex", vLog.Index))
			return nil
		}
		return fmt.Errorf("failed to decode log: %w", err)
	}

	if event == nil {
		return nil
	}

	if err := handler(ctx, event); err != nil {
		return fmt.Errorf("failed to handle event: %w", err)
	}
	return nil
}

// GetLatestBlock returns the latest block number
func (s *ethSubscriber) GetLatestBlock(ctx context.Context) (uint64, error) {
	header, err := s.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to get latest block: %w", err)
	}
	return header.Number.Uint64(), nil
}

// Close closes the connection
func (s *ethSubscriber) Close() {
	if s.client == nil {
		return
	}

	s.client.Close()
	logger.Info("Ethereum connection closed", zap.Uint64("chainID", s.config.ChainID))
}
