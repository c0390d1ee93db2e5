package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/feral-file/ff-sales-indexer/internal/adapter"
	"github.com/feral-file/ff-sales-indexer/internal/block"
	"github.com/feral-file/ff-sales-indexer/internal/config"
	"github.com/feral-file/ff-sales-indexer/internal/logger"
	"github.com/feral-file/ff-sales-indexer/internal/messaging"
	"github.com/feral-file/ff-sales-indexer/internal/metrics"
	"github.com/feral-file/ff-sales-indexer/internal/normalizer"
	"github.com/feral-file/ff-sales-indexer/internal/pipeline"
	"github.com/feral-file/ff-sales-indexer/internal/providers/ethereum"
	"github.com/feral-file/ff-sales-indexer/internal/providers/jetstream"
	"github.com/feral-file/ff-sales-indexer/internal/registry"
	"github.com/feral-file/ff-sales-indexer/internal/store"
)

var skipMigrate bool

func init() {
	runCmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "Do not migrate the postgres schema on start")
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Index marketplace sales of every configured chain",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Load configuration
		config.ChdirRepoRoot()
		cfg, err := config.LoadSalesIndexerConfig(configFile, envPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		// Initialize logger with sentry integration
		err = logger.Initialize(logger.Config{
			Debug:           cfg.Debug,
			SentryDSN:       cfg.SentryDSN,
			BreadcrumbLevel: zapcore.InfoLevel,
			Tags: map[string]string{
				"service": "sales-indexer",
			},
		})
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer logger.Flush(2 * time.Second)
		logger.InfoCtx(ctx, "Starting Sales Indexer")

		return run(ctx, cfg)
	},
}

// chainComponents are the per-chain resources started by run
type chainComponents struct {
	pipeline pipeline.Pipeline
	clients  []adapter.EthClient
}

func (c *chainComponents) close() {
	if c.pipeline != nil {
		c.pipeline.Close()
	}
	for _, client := range c.clients {
		client.Close()
	}
}

func run(ctx context.Context, cfg *config.SalesIndexerConfig) error {
	// Initialize adapters
	clockAdapter := adapter.NewClock()
	jsonAdapter := adapter.NewJSON()

	// Initialize store
	dataStore, err := openStore(ctx, cfg, jsonAdapter, !skipMigrate)
	if err != nil {
		return err
	}
	defer func() {
		if err := dataStore.Close(); err != nil {
			logger.ErrorCtx(ctx, fmt.Errorf("failed to close store: %w", err))
		}
	}()

	// Load marketplace registry
	reg, err := registry.NewMarketplaceRegistryLoader(adapter.NewFileSystem(), jsonAdapter).Load(cfg.MarketplacesPath)
	if err != nil {
		return fmt.Errorf("failed to load marketplace registry: %w", err)
	}
	logger.InfoCtx(ctx, "Loaded marketplace registry", zap.String("path", cfg.MarketplacesPath))

	// Initialize publisher
	var publisher messaging.Publisher
	if cfg.NATS.URL == "" {
		publisher = messaging.NewNoopPublisher()
		logger.InfoCtx(ctx, "NATS url not set, sales are not published")
	} else {
		publisher, err = jetstream.NewPublisher(jetstream.Config{
			URL:            cfg.NATS.URL,
			StreamName:     cfg.NATS.StreamName,
			SubjectPrefix:  cfg.NATS.SubjectPrefix,
			MaxReconnects:  cfg.NATS.MaxReconnects,
			ReconnectWait:  cfg.NATS.ReconnectWait,
			ConnectionName: cfg.NATS.ConnectionName,
		}, adapter.NewNatsJetStream(), jsonAdapter)
		if err != nil {
			return fmt.Errorf("failed to create NATS publisher: %w", err)
		}
		logger.InfoCtx(ctx, "Connected to NATS JetStream", zap.String("url", cfg.NATS.URL))
	}
	defer publisher.Close()

	// Initialize metrics
	m := metrics.Init()
	if cfg.Metrics.Address != "" {
		srv := serveMetrics(cfg.Metrics.Address)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		logger.InfoCtx(ctx, "Metrics enabled", zap.String("address", cfg.Metrics.Address))
	}

	// Build one pipeline per chain
	chains := cfg.AllChains()
	if len(chains) == 0 {
		return errors.New("no chain configured")
	}

	components := make([]*chainComponents, 0, len(chains))
	defer func() {
		for _, c := range components {
			c.close()
		}
	}()
	for _, chainCfg := range chains {
		c, err := buildChain(ctx, cfg, chainCfg, dataStore, publisher, reg, m, clockAdapter)
		if err != nil {
			return err
		}
		components = append(components, c)
	}

	pool := pond.NewPool(len(components), pond.WithContext(ctx))
	defer pool.StopAndWait()

	// pipelines must stop before the pool is drained
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	group := pool.NewGroup()
	for _, c := range components {
		p := c.pipeline
		group.SubmitErr(func() error {
			return p.Run(runCtx)
		})
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- group.Wait()
	}()

	// Wait for shutdown signal or error
	select {
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	case <-publisher.CloseChan():
		logger.WarnCtx(ctx, "NATS connection closed unexpectedly")
		return errors.New("publisher closed")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.ErrorCtx(ctx, err, zap.String("component", "pipeline"))
			return err
		}
	}

	// Use non-context logger for final shutdown message since context is already canceled
	logger.Info("Sales Indexer stopped")
	return nil
}

// buildChain wires the subscriber, normalizer and pipeline of one chain
func buildChain(
	ctx context.Context,
	cfg *config.SalesIndexerConfig,
	chainCfg config.EthereumConfig,
	dataStore store.Store,
	publisher messaging.Publisher,
	reg registry.MarketplaceRegistry,
	m *metrics.Metrics,
	clock adapter.Clock,
) (*chainComponents, error) {
	chainID, err := chainCfg.ChainID.ChainID()
	if err != nil {
		return nil, err
	}
	c := &chainComponents{}

	// Initialize ethereum client
	dialer := adapter.NewEthClientDialer()
	wsClient, err := dialer.Dial(ctx, chainCfg.WebSocketURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s websocket: %w", chainCfg.ChainID, err)
	}
	c.clients = append(c.clients, wsClient)
	ethereumClient := ethereum.NewClient(chainCfg.ChainID, wsClient)

	// Receipts are read over http when an rpc url is configured
	mintLookup := ethereumClient
	if chainCfg.RPCURL != "" {
		rpcClient, err := dialer.Dial(ctx, chainCfg.RPCURL)
		if err != nil {
			c.close()
			return nil, fmt.Errorf("failed to dial %s rpc: %w", chainCfg.ChainID, err)
		}
		c.clients = append(c.clients, rpcClient)
		mintLookup = ethereum.NewClient(chainCfg.ChainID, rpcClient)
	}

	blockProvider := block.NewBlockProvider(
		ethereum.NewEthereumBlockFetcher(wsClient),
		block.Config{
			TTL:         chainCfg.BlockHeadTTL,
			StaleWindow: chainCfg.BlockHeadStaleWindow,
		},
		clock,
	)

	decoder, err := ethereum.NewDecoder(chainID, reg, blockProvider)
	if err != nil {
		c.close()
		return nil, err
	}

	subscriber := ethereum.NewSubscriber(ethereum.Config{ChainID: chainID}, ethereumClient, decoder, reg)

	aliases := make([]normalizer.SeaDropAlias, 0, len(cfg.SeaDrop.Aliases))
	for _, alias := range cfg.SeaDrop.Aliases {
		aliases = append(aliases, normalizer.SeaDropAlias{
			Proxy:          alias.Proxy,
			Canonical:      alias.Canonical,
			InitialCounter: alias.Counter(),
		})
	}
	norm := normalizer.New(dataStore, mintLookup, normalizer.Config{
		SeaDropAliases: aliases,
		TokenIDSource:  normalizer.TokenIDSource(cfg.SeaDrop.TokenIDSource),
	})

	c.pipeline = pipeline.NewPipeline(
		subscriber,
		publisher,
		norm,
		dataStore,
		m,
		pipeline.Config{
			ChainID:              chainID,
			StartBlock:           chainCfg.StartBlock,
			CursorSaveFreq:       cfg.Pipeline.CursorSaveFreq,
			CursorSaveDelay:      cfg.Pipeline.CursorSaveDelay,
			RetryInitialInterval: cfg.Pipeline.RetryInitialInterval,
			RetryMaxInterval:     cfg.Pipeline.RetryMaxInterval,
			RetryMaxAttempts:     cfg.Pipeline.RetryMaxAttempts,
		},
		clock,
	)

	logger.InfoCtx(ctx, "Chain pipeline ready",
		zap.String("chain", string(chainCfg.ChainID)),
		zap.Int("contracts", len(reg.Addresses(chainID))))
	return c, nil
}

// serveMetrics exposes the prometheus registry on address
func serveMetrics(address string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{
		Addr:              address,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(fmt.Errorf("metrics server error: %w", err))
		}
	}()
	return srv
}
