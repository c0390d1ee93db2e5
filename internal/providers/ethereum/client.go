package ethereum

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/feral-file/ff-sales-indexer/internal/adapter"
	"github.com/feral-file/ff-sales-indexer/internal/domain"
	"github.com/feral-file/ff-sales-indexer/internal/logger"
)

// EthereumClient is the RPC surface used by the sales indexer
//
//go:generate mockgen -source=client.go -destination=../../mocks/ethereum_client.go -package=mocks -mock_names=EthereumClient=MockEthereumClient
type EthereumClient interface {
	// SubscribeFilterLogs subscribes to filter logs
	SubscribeFilterLogs(ctx context.Context, query ethereum.FilterQuery, ch chan<- types.Log) (ethereum.Subscription, error)

	// FilterLogs retrieves logs matching the query, splitting large block ranges
	FilterLogs(ctx context.Context, query ethereum.FilterQuery) ([]types.Log, error)

	// BlockByNumber returns a block by number
	BlockByNumber(ctx context.Context, number *big.Int) (*types.Block, error)

	// HeaderByNumber returns a header by number
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)

	// MintedTokenIDs returns the ERC721 token ids minted by contract in a transaction before beforeLogIndex, in log order
	MintedTokenIDs(ctx context.Context, txHash, contract string, beforeLogIndex uint) ([]string, error)

	// Close closes the connection
	Close()
}

type ethereumClient struct {
	chain  domain.Chain
	client adapter.EthClient
}

func NewClient(chain domain.Chain, client adapter.EthClient) EthereumClient {
	return &ethereumClient{chain: chain, client: client}
}

// SubscribeFilterLogs subscribes to filter logs
func (c *ethereumClient) SubscribeFilterLogs(ctx context.Context, query ethereum.FilterQuery, ch chan<- types.Log) (ethereum.Subscription, error) {
	return c.client.SubscribeFilterLogs(ctx, query, ch)
}

// FilterLogs retrieves logs matching the query
func (c *ethereumClient) FilterLogs(ctx context.Context, query ethereum.FilterQuery) ([]types.Log, error) {
	return c.filterLogsWithPagination(ctx, query)
}

// filterLogsWithPagination is an internal method that handles pagination for FilterLogs
// to work around provider result limits on eth_getLogs
func (c *ethereumClient) filterLogsWithPagination(ctx context.Context, query ethereum.FilterQuery) ([]types.Log, error) {
	// Create a context with timeout (1 minute)
	timeoutCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	// If blockhash is specified, use it directly (no pagination needed)
	if query.BlockHash != nil {
		return c.client.FilterLogs(timeoutCtx, query)
	}

	// 1. Detect initial start/end blocks
	var fromBlock, toBlock *big.Int
	if query.FromBlock != nil {
		fromBlock = query.FromBlock
	} else {
		fromBlock = big.NewInt(0) // Genesis
	}

	if query.ToBlock != nil {
		toBlock = query.ToBlock
	} else {
		// Get latest block
		latestBlock, err := c.client.HeaderByNumber(timeoutCtx, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to get latest block: %w", err)
		}
		toBlock = latestBlock.Number
	}

	// 2. Step 1M blocks at a time
	var allLogs []types.Log
	currentFrom := new(big.Int).Set(fromBlock)
	stepSize := uint64(1000000) // 1M blocks

	for currentFrom.Cmp(toBlock) <= 0 {
		// Calculate current range
		currentTo := new(big.Int).Add(currentFrom, big.NewInt(int64(stepSize)))
		if currentTo.Cmp(toBlock) > 0 {
			currentTo.Set(toBlock)
		}

		// Create query for current range
		rangeQuery := query
		rangeQuery.FromBlock = new(big.Int).Set(currentFrom)
		rangeQuery.ToBlock = currentTo

		// Try to get logs for current range with retry logic
		logs, err := c.getLogsWithRetry(timeoutCtx, rangeQuery, stepSize)
		if err != nil {
			return nil, fmt.Errorf("failed to get logs for range %d-%d: %w", currentFrom.Uint64(), currentTo.Uint64(), err)
		}

		allLogs = append(allLogs, logs...)

		// Move to next range - use the actual end of the processed range
		currentFrom.SetUint64(currentTo.Uint64() + 1)
	}

	return allLogs, nil
}

// getLogsWithRetry attempts to get logs with retry logic and step size reduction
// It processes the entire range from query.FromBlock to query.ToBlock in chunks
func (c *ethereumClient) getLogsWithRetry(ctx context.Context, query ethereum.FilterQuery, stepSize uint64) ([]types.Log, error) {
	currentStepSize := stepSize

	var allLogs []types.Log
	currentFrom := new(big.Int).Set(query.FromBlock)

	// Process the entire range in chunks
	for currentFrom.Cmp(query.ToBlock) <= 0 {
		// Calculate current range based on current step size
		currentTo := new(big.Int).Add(currentFrom, new(big.Int).SetUint64(currentStepSize-1))
		if currentTo.Cmp(query.ToBlock) > 0 {
			currentTo.Set(query.ToBlock)
		}

		// Create query for current chunk
		queryCopy := query
		queryCopy.FromBlock = new(big.Int).Set(currentFrom)
		queryCopy.ToBlock = new(big.Int).Set(currentTo)

		logs, err := c.client.FilterLogs(ctx, queryCopy)
		if err == nil {
			// Success - accumulate logs and move to next chunk
			allLogs = append(allLogs, logs...)

			// Move to next chunk using the full step size
			currentFrom.SetUint64(currentTo.Uint64() + 1)
			continue
		}

		// 3. If other errors than rate limited, return error
		if !isTooManyResultsError(err) {
			return nil, err
		}

		// 4. If rate limited, divide the step by 2 and try again
		if currentStepSize == 1 {
			return nil, err
		}
		currentStepSize = currentStepSize / 2

		logger.WarnCtx(ctx, "Too many results, reducing step size",
			zap.Uint64("oldStepSize", currentStepSize*2),
			zap.Uint64("newStepSize", currentStepSize),
			zap.Uint64("fromBlock", currentFrom.Uint64()),
			zap.Uint64("toBlock", currentTo.Uint64()))
	}

	return allLogs, nil
}

// isTooManyResultsError checks if the error is related to too many results
func isTooManyResultsError(err error) bool {
	if err == nil {
		return false
	}

	errStr := err.Error()
	// Check for common "too many results" error messages
	return strings.Contains(errStr, "query returned more than 10000 results") ||
		strings.Contains(errStr, "query timeout exceeded") ||
		strings.Contains(errStr, "too many results") ||
		strings.Contains(errStr, "exceeded maximum")
}

// BlockByNumber returns a block by number
func (c *ethereumClient) BlockByNumber(ctx context.Context, number *big.Int) (*types.Block, error) {
	return c.client.BlockByNumber(ctx, number)
}

// HeaderByNumber returns a header by number
func (c *ethereumClient) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	return c.client.HeaderByNumber(ctx, number)
}

// MintedTokenIDs reads the token ids of the ERC721 mint Transfer logs emitted by contract in the receipt of txHash.
// Only logs before beforeLogIndex count: the token contract emits its transfers ahead of the mint log that caused them.
func (c *ethereumClient) MintedTokenIDs(ctx context.Context, txHash, contract string, beforeLogIndex uint) ([]string, error) {
	receipt, err := c.client.TransactionReceipt(ctx, common.HexToHash(txHash))
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction receipt %s: %w", txHash, err)
	}

	contractAddr := common.HexToAddress(contract)
	tokenIDs := make([]string, 0)
	for _, vLog := range receipt.Logs {
		if vLog == nil || vLog.Address != contractAddr || vLog.Index >= beforeLogIndex {
			continue
		}
		// ERC20 transfers have 3 topics
		if len(vLog.Topics) != 4 || vLog.Topics[0] != transferEventSignature {
			continue
		}
		// mints come from the zero address
		if vLog.Topics[1] != (common.Hash{}) {
			continue
		}
		tokenIDs = append(tokenIDs, new(big.Int).SetBytes(vLog.Topics[3].Bytes()).String())
	}

	logger.DebugCtx(ctx, "Read minted token ids from receipt",
		zap.String("chain", string(c.chain)),
		zap.String("txHash", txHash),
		zap.String("contract", contract),
		zap.Uint("beforeLogIndex", beforeLogIndex),
		zap.Int("count", len(tokenIDs)))

	return tokenIDs, nil
}

// Close closes the connection
func (c *ethereumClient) Close() {
	c.client.Close()
}
