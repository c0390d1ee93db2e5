package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-sales-indexer/internal/domain"
)

func TestLoadSalesIndexerConfig(t *testing.T) {
	tests := []struct {
		name        string
		configFile  string
		expectError bool
		validate    func(*testing.T, *SalesIndexerConfig)
	}{
		{
			name: "valid config file",
			configFile: `
debug: true
sentry_dsn: "https://sentry.example.com"
database:
  host: localhost
  port: 5433
  user: testuser
  password: testpass
  dbname: testdb
  sslmode: require
  max_open_conns: 30
  conn_max_lifetime: "1h"
nats:
  url: "nats://localhost:4222"
  stream_name: "TEST_SALES"
  subject_prefix: "marketplace"
  max_reconnects: 5
  reconnect_wait: "5s"
ethereum:
  websocket_url: "ws://localhost:8545"
  rpc_url: "http://localhost:8545"
  chain_id: "eip155:1"
  start_block: 1000
chains:
  - websocket_url: "wss://base.example.com"
    chain_id: "eip155:8453"
    start_block: 2000
    block_head_ttl: "2s"
marketplaces_path: "config/marketplaces.test.json"
seadrop:
  token_id_source: receipt
  aliases:
    - proxy: "0x1111111111111111111111111111111111111111"
      canonical: "0x2222222222222222222222222222222222222222"
    - proxy: "0x3333333333333333333333333333333333333333"
      canonical: "0x4444444444444444444444444444444444444444"
      initial_counter: 0
metrics:
  address: ":9191"
pipeline:
  cursor_save_freq: 50
  cursor_save_delay: "30s"
  retry_max_attempts: 3
`,
			expectError: false,
			validate: func(t *testing.T, cfg *SalesIndexerConfig) {
				assert.True(t, cfg.Debug)
				assert.Equal(t, "https://sentry.example.com", cfg.SentryDSN)
				assert.Equal(t, "localhost", cfg.Database.Host)
				assert.Equal(t, 5433, cfg.Database.Port)
				assert.Equal(t, "require", cfg.Database.SSLMode)
				assert.Equal(t, 30, cfg.Database.MaxOpenConns)
				assert.Equal(t, time.Hour, cfg.Database.ConnMaxLifetime)
				assert.Equal(t, StoreBackendPostgres, cfg.Store.Backend)
				assert.Equal(t, "nats://localhost:4222", cfg.NATS.URL)
				assert.Equal(t, "TEST_SALES", cfg.NATS.StreamName)
				assert.Equal(t, "marketplace", cfg.NATS.SubjectPrefix)
				assert.Equal(t, 5, cfg.NATS.MaxReconnects)
				assert.Equal(t, 5*time.Second, cfg.NATS.ReconnectWait)
				assert.Equal(t, "ws://localhost:8545", cfg.Ethereum.WebSocketURL)
				assert.Equal(t, domain.ChainEthereumMainnet, cfg.Ethereum.ChainID)
				assert.Equal(t, uint64(1000), cfg.Ethereum.StartBlock)
				assert.Equal(t, "config/marketplaces.test.json", cfg.MarketplacesPath)
				assert.Equal(t, "receipt", cfg.SeaDrop.TokenIDSource)
				require.Len(t, cfg.SeaDrop.Aliases, 2)
				assert.Equal(t, uint64(1), cfg.SeaDrop.Aliases[0].Counter())
				assert.Equal(t, uint64(0), cfg.SeaDrop.Aliases[1].Counter())
				assert.Equal(t, ":9191", cfg.Metrics.Address)
				assert.Equal(t, uint64(50), cfg.Pipeline.CursorSaveFreq)
				assert.Equal(t, 30*time.Second, cfg.Pipeline.CursorSaveDelay)
				assert.Equal(t, uint64(3), cfg.Pipeline.RetryMaxAttempts)

				chains := cfg.AllChains()
				require.Len(t, chains, 2)
				assert.Equal(t, domain.ChainEthereumMainnet, chains[0].ChainID)
				assert.Equal(t, domain.ChainBaseMainnet, chains[1].ChainID)
				assert.Equal(t, uint64(2000), chains[1].StartBlock)
				assert.Equal(t, 2*time.Second, chains[1].BlockHeadTTL)
				// inherited from the primary chain
				assert.Equal(t, time.Minute, chains[1].BlockHeadStaleWindow)
			},
		},
		{
			name: "config with defaults",
			configFile: `
database:
  host: localhost
  user: testuser
  password: testpass
  dbname: testdb
ethereum:
  websocket_url: "ws://localhost:8545"
`,
			expectError: false,
			validate: func(t *testing.T, cfg *SalesIndexerConfig) {
				// Check defaults
				assert.Equal(t, 5432, cfg.Database.Port)
				assert.Equal(t, "disable", cfg.Database.SSLMode)
				assert.Equal(t, StoreBackendPostgres, cfg.Store.Backend)
				assert.Equal(t, "", cfg.NATS.URL)
				assert.Equal(t, 10, cfg.NATS.MaxReconnects)
				assert.Equal(t, "2s", cfg.NATS.ReconnectWait.String())
				assert.Equal(t, "SALES", cfg.NATS.StreamName)
				assert.Equal(t, "sales", cfg.NATS.SubjectPrefix)
				assert.Equal(t, domain.ChainEthereumMainnet, cfg.Ethereum.ChainID)
				assert.Equal(t, 12*time.Second, cfg.Ethereum.BlockHeadTTL)
				assert.Equal(t, time.Minute, cfg.Ethereum.BlockHeadStaleWindow)
				assert.Equal(t, "config/marketplaces.json", cfg.MarketplacesPath)
				assert.Equal(t, "counter", cfg.SeaDrop.TokenIDSource)
				assert.Equal(t, ":9090", cfg.Metrics.Address)
				assert.Equal(t, uint64(10), cfg.Pipeline.CursorSaveFreq)
				assert.Equal(t, 5*time.Second, cfg.Pipeline.CursorSaveDelay)
				assert.Equal(t, time.Second, cfg.Pipeline.RetryInitialInterval)
				assert.Equal(t, time.Minute, cfg.Pipeline.RetryMaxInterval)
				assert.Equal(t, uint64(0), cfg.Pipeline.RetryMaxAttempts)
				assert.Len(t, cfg.AllChains(), 1)
			},
		},
		{
			name: "kv backend needs no database",
			configFile: `
store:
  backend: kv
  kv_path: /tmp/sales
ethereum:
  websocket_url: "ws://localhost:8545"
`,
			expectError: false,
			validate: func(t *testing.T, cfg *SalesIndexerConfig) {
				assert.Equal(t, StoreBackendKV, cfg.Store.Backend)
				assert.Equal(t, "/tmp/sales", cfg.Store.KVPath)
			},
		},
		{
			name: "missing database host",
			configFile: `
ethereum:
  websocket_url: "ws://localhost:8545"
`,
			expectError: true,
		},
		{
			name: "unsupported store backend",
			configFile: `
store:
  backend: redis
ethereum:
  websocket_url: "ws://localhost:8545"
`,
			expectError: true,
		},
		{
			name: "unsupported token id source",
			configFile: `
store:
  backend: kv
seadrop:
  token_id_source: metadata
`,
			expectError: true,
		},
		{
			name: "alias without canonical contract",
			configFile: `
store:
  backend: kv
seadrop:
  aliases:
    - proxy: "0x1111111111111111111111111111111111111111"
`,
			expectError: true,
		},
		{
			name: "non EVM chain",
			configFile: `
store:
  backend: kv
ethereum:
  websocket_url: "ws://localhost:8545"
  chain_id: "tezos:mainnet"
`,
			expectError: true,
		},
		{
			name: "additional chain without websocket url",
			configFile: `
store:
  backend: kv
chains:
  - chain_id: "eip155:8453"
`,
			expectError: true,
		},
		{
			name: "duplicated chain",
			configFile: `
store:
  backend: kv
ethereum:
  websocket_url: "ws://localhost:8545"
chains:
  - websocket_url: "ws://other:8545"
    chain_id: "eip155:1"
`,
			expectError: true,
		},
		{
			name: "invalid yaml",
			configFile: `
				database:
				  host: localhost
				  port: invalid
			`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			configFile := filepath.Join(tmpDir, "config.yaml")
			err := os.WriteFile(configFile, []byte(tt.configFile), 0600)
			require.NoError(t, err)

			cfg, err := LoadSalesIndexerConfig(configFile, tmpDir)

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, cfg)
			} else {
				require.NoError(t, err)
				require.NotNil(t, cfg)
				if tt.validate != nil {
					tt.validate(t, cfg)
				}
			}
		})
	}
}

func TestSalesIndexerConfig_AllChainsWithoutPrimary(t *testing.T) {
	cfg := &SalesIndexerConfig{
		Ethereum: EthereumConfig{
			ChainID:      domain.ChainEthereumMainnet,
			BlockHeadTTL: 12 * time.Second,
		},
		Chains: []EthereumConfig{
			{WebSocketURL: "wss://sepolia", ChainID: domain.ChainEthereumSepolia},
		},
	}

	chains := cfg.AllChains()
	require.Len(t, chains, 1)
	assert.Equal(t, domain.ChainEthereumSepolia, chains[0].ChainID)
	assert.Equal(t, 12*time.Second, chains[0].BlockHeadTTL)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	tests := []struct {
		name     string
		config   DatabaseConfig
		expected string
	}{
		{
			name: "complete config",
			config: DatabaseConfig{
				Host:     "localhost",
				Port:     5432,
				User:     "testuser",
				Password: "testpass",
				DBName:   "testdb",
				SSLMode:  "require",
			},
			expected: "host=localhost port=5432 user=testuser password=testpass dbname=testdb sslmode=require",
		},
		{
			name: "with special characters in password",
			config: DatabaseConfig{
				Host:     "localhost",
				Port:     5432,
				User:     "testuser",
				Password: "p@ssw0rd!",
				DBName:   "testdb",
				SSLMode:  "disable",
			},
			expected: "host=localhost port=5432 user=testuser password=p@ssw0rd! dbname=testdb sslmode=disable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.config.DSN())
		})
	}
}

func TestConfigWithEnvironmentVariables(t *testing.T) {
	// restore the process environment once godotenv has overloaded it
	for _, key := range []string{
		"FF_SALES_INDEXER_DEBUG",
		"FF_SALES_INDEXER_DATABASE_HOST",
		"FF_SALES_INDEXER_DATABASE_PORT",
		"FF_SALES_INDEXER_DATABASE_DBNAME",
		"FF_SALES_INDEXER_STORE_BACKEND",
		"FF_SALES_INDEXER_ETHEREUM_WEBSOCKET_URL",
		"FF_SALES_INDEXER_ETHEREUM_RPC_URL",
		"FF_SALES_INDEXER_SEADROP_TOKEN_ID_SOURCE",
		"FF_SALES_INDEXER_PIPELINE_CURSOR_SAVE_DELAY",
	} {
		t.Setenv(key, "")
	}

	tmpDir := t.TempDir()

	// Create temporary directory for env files
	envDir := filepath.Join(tmpDir, "env")
	err := os.MkdirAll(envDir, 0750)
	require.NoError(t, err)

	envFile := filepath.Join(envDir, ".env")
	envContent := `FF_SALES_INDEXER_DEBUG=true
FF_SALES_INDEXER_DATABASE_HOST=env-host
FF_SALES_INDEXER_DATABASE_PORT=6543
FF_SALES_INDEXER_DATABASE_DBNAME=env-db
FF_SALES_INDEXER_ETHEREUM_WEBSOCKET_URL=wss://env-node
FF_SALES_INDEXER_ETHEREUM_RPC_URL=https://env-node
FF_SALES_INDEXER_PIPELINE_CURSOR_SAVE_DELAY=1m
`
	err = os.WriteFile(envFile, []byte(envContent), 0600)
	require.NoError(t, err)

	// the per-service file overrides the shared one
	serviceEnvFile := filepath.Join(envDir, ".env.sales-indexer.local")
	err = os.WriteFile(serviceEnvFile, []byte("FF_SALES_INDEXER_SEADROP_TOKEN_ID_SOURCE=receipt\n"), 0600)
	require.NoError(t, err)

	configPath := filepath.Join(tmpDir, "config.yaml")
	configFile := `
debug: false
database:
  host: file-host
  dbname: file-db
seadrop:
  token_id_source: counter
`
	err = os.WriteFile(configPath, []byte(configFile), 0600)
	require.NoError(t, err)

	cfg, err := LoadSalesIndexerConfig(configPath, envDir)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.True(t, cfg.Debug)
	assert.Equal(t, "env-host", cfg.Database.Host)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, "env-db", cfg.Database.DBName)
	assert.Equal(t, "wss://env-node", cfg.Ethereum.WebSocketURL)
	assert.Equal(t, "https://env-node", cfg.Ethereum.RPCURL)
	assert.Equal(t, "receipt", cfg.SeaDrop.TokenIDSource)
	assert.Equal(t, time.Minute, cfg.Pipeline.CursorSaveDelay)
}
