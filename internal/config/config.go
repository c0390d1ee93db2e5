package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/feral-file/ff-sales-indexer/internal/domain"
)

const serviceName = "sales-indexer"

// Store backends
const (
	StoreBackendPostgres = "postgres"
	StoreBackendKV       = "kv"
)

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug     bool   `mapstructure:"debug"`
	SentryDSN string `mapstructure:"sentry_dsn"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`     // Maximum number of open connections to the database
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`     // Maximum number of idle connections in the pool
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`  // Maximum amount of time a connection may be reused (e.g., "5m", "1h")
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"` // Maximum amount of time a connection may be idle (e.g., "10m", "30m")
}

// StoreConfig selects the entity store backend
type StoreConfig struct {
	Backend string `mapstructure:"backend"` // postgres or kv
	KVPath  string `mapstructure:"kv_path"` // badger directory of the kv backend
}

// NATSConfig holds NATS JetStream configuration. An empty URL disables publishing.
type NATSConfig struct {
	URL            string        `mapstructure:"url"`
	StreamName     string        `mapstructure:"stream_name"`
	SubjectPrefix  string        `mapstructure:"subject_prefix"`
	MaxReconnects  int           `mapstructure:"max_reconnects"`
	ReconnectWait  time.Duration `mapstructure:"reconnect_wait"`
	ConnectionName string        `mapstructure:"connection_name"`
}

// EthereumConfig holds the configuration of one EVM chain
type EthereumConfig struct {
	WebSocketURL         string        `mapstructure:"websocket_url"`
	RPCURL               string        `mapstructure:"rpc_url"`
	ChainID              domain.Chain  `mapstructure:"chain_id"`
	StartBlock           uint64        `mapstructure:"start_block"`
	BlockHeadTTL         time.Duration `mapstructure:"block_head_ttl"`
	BlockHeadStaleWindow time.Duration `mapstructure:"block_head_stale_window"`
}

// SeaDropAliasConfig remaps mints of a proxy contract onto a canonical contract
type SeaDropAliasConfig struct {
	Proxy          string  `mapstructure:"proxy"`
	Canonical      string  `mapstructure:"canonical"`
	InitialCounter *uint64 `mapstructure:"initial_counter"`
}

// Counter returns the first token id of the alias, 1 when unset
func (a SeaDropAliasConfig) Counter() uint64 {
	if a.InitialCounter == nil {
		return domain.DEFAULT_ALIAS_INITIAL_COUNTER
	}
	return *a.InitialCounter
}

// SeaDropConfig holds mint normalization configuration
type SeaDropConfig struct {
	Aliases       []SeaDropAliasConfig `mapstructure:"aliases"`
	TokenIDSource string               `mapstructure:"token_id_source"` // counter or receipt
}

// MetricsConfig holds the prometheus endpoint configuration
type MetricsConfig struct {
	Address string `mapstructure:"address"` // empty disables the endpoint
}

// PipelineConfig holds per-chain pipeline configuration
type PipelineConfig struct {
	CursorSaveFreq       uint64        `mapstructure:"cursor_save_freq"`
	CursorSaveDelay      time.Duration `mapstructure:"cursor_save_delay"`
	RetryInitialInterval time.Duration `mapstructure:"retry_initial_interval"`
	RetryMaxInterval     time.Duration `mapstructure:"retry_max_interval"`
	RetryMaxAttempts     uint64        `mapstructure:"retry_max_attempts"`
}

// SalesIndexerConfig holds configuration for sales-indexer
type SalesIndexerConfig struct {
	BaseConfig       `mapstructure:",squash"`
	Database         DatabaseConfig   `mapstructure:"database"`
	Store            StoreConfig      `mapstructure:"store"`
	NATS             NATSConfig       `mapstructure:"nats"`
	Ethereum         EthereumConfig   `mapstructure:"ethereum"`
	Chains           []EthereumConfig `mapstructure:"chains"`
	MarketplacesPath string           `mapstructure:"marketplaces_path"`
	SeaDrop          SeaDropConfig    `mapstructure:"seadrop"`
	Metrics          MetricsConfig    `mapstructure:"metrics"`
	Pipeline         PipelineConfig   `mapstructure:"pipeline"`
}

// LoadSalesIndexerConfig loads configuration for sales-indexer
func LoadSalesIndexerConfig(configFile string, envPath string) (*SalesIndexerConfig, error) {
	v := configureViper(serviceName, configFile, envPath)

	// Set defaults
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("store.backend", StoreBackendPostgres)
	v.SetDefault("store.kv_path", "data/sales")
	v.SetDefault("nats.max_reconnects", 10)
	v.SetDefault("nats.reconnect_wait", "2s")
	v.SetDefault("nats.stream_name", "SALES")
	v.SetDefault("nats.subject_prefix", "sales")
	v.SetDefault("nats.connection_name", serviceName)
	v.SetDefault("ethereum.chain_id", "eip155:1")
	v.SetDefault("ethereum.block_head_ttl", "12s")
	v.SetDefault("ethereum.block_head_stale_window", "1m")
	v.SetDefault("marketplaces_path", "config/marketplaces.json")
	v.SetDefault("seadrop.token_id_source", "counter")
	v.SetDefault("metrics.address", ":9090")
	v.SetDefault("pipeline.cursor_save_freq", 10)
	v.SetDefault("pipeline.cursor_save_delay", "5s")
	v.SetDefault("pipeline.retry_initial_interval", "1s")
	v.SetDefault("pipeline.retry_max_interval", "1m")

	if err := v.ReadInConfig(); err != nil {
		var error viper.ConfigFileNotFoundError
		if errors.As(err, &error) {
			// Config file not found, use environment variables
		} else {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg SalesIndexerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the fields the indexer cannot start without
func (c *SalesIndexerConfig) Validate() error {
	switch c.Store.Backend {
	case StoreBackendPostgres:
		if c.Database.Host == "" {
			return errors.New("database.host is required")
		}
		if c.Database.DBName == "" {
			return errors.New("database.dbname is required")
		}
	case StoreBackendKV:
		if c.Store.KVPath == "" {
			return errors.New("store.kv_path is required")
		}
	default:
		return fmt.Errorf("unsupported store.backend %q", c.Store.Backend)
	}

	switch c.SeaDrop.TokenIDSource {
	case "counter", "receipt":
	default:
		return fmt.Errorf("unsupported seadrop.token_id_source %q", c.SeaDrop.TokenIDSource)
	}

	for _, alias := range c.SeaDrop.Aliases {
		if alias.Proxy == "" || alias.Canonical == "" {
			return errors.New("seadrop.aliases entries need both proxy and canonical")
		}
	}

	seen := make(map[domain.Chain]bool)
	for _, chain := range c.AllChains() {
		if !domain.IsValidChain(chain.ChainID) {
			return fmt.Errorf("unsupported chain: %s", chain.ChainID)
		}
		if chain.WebSocketURL == "" {
			return fmt.Errorf("websocket_url is required for chain %s", chain.ChainID)
		}
		if seen[chain.ChainID] {
			return fmt.Errorf("chain %s is configured twice", chain.ChainID)
		}
		seen[chain.ChainID] = true
	}

	return nil
}

// AllChains returns the primary ethereum chain followed by the additional chains.
// The primary chain is omitted when it has no websocket url.
func (c *SalesIndexerConfig) AllChains() []EthereumConfig {
	chains := make([]EthereumConfig, 0, len(c.Chains)+1)
	if c.Ethereum.WebSocketURL != "" {
		chains = append(chains, c.Ethereum)
	}
	for _, chain := range c.Chains {
		if chain.BlockHeadTTL == 0 {
			chain.BlockHeadTTL = c.Ethereum.BlockHeadTTL
		}
		if chain.BlockHeadStaleWindow == 0 {
			chain.BlockHeadStaleWindow = c.Ethereum.BlockHeadStaleWindow
		}
		chains = append(chains, chain)
	}
	return chains
}

// configureViper returns a viper instance with the config file and environment variables set
func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	// Load environment variables
	loadEnv(envPath, service)

	// Set config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// Search for config.yaml in multiple locations:
		// 1. Current directory
		v.AddConfigPath(".")
		// 2. Service-specific directory (e.g., cmd/sales-indexer/)
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		// 3. Config directory
		v.AddConfigPath("config/")
	}

	// Set environment variables
	v.SetEnvPrefix("FF_SALES_INDEXER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicitly bind all environment variables
	bindAllEnvVars(v)
	return v
}

// bindAllEnvVars explicitly binds all possible environment variables
// This is required for viper to map env vars to config struct fields when no config file exists
func bindAllEnvVars(v *viper.Viper) {
	keys := []string{
		"debug",
		"sentry_dsn",
		// Database
		"database.host",
		"database.port",
		"database.user",
		"database.password",
		"database.dbname",
		"database.sslmode",
		"database.max_open_conns",
		"database.max_idle_conns",
		"database.conn_max_lifetime",
		"database.conn_max_idle_time",
		// Store
		"store.backend",
		"store.kv_path",
		// NATS
		"nats.url",
		"nats.stream_name",
		"nats.subject_prefix",
		"nats.max_reconnects",
		"nats.reconnect_wait",
		"nats.connection_name",
		// Ethereum
		"ethereum.websocket_url",
		"ethereum.rpc_url",
		"ethereum.chain_id",
		"ethereum.start_block",
		"ethereum.block_head_ttl",
		"ethereum.block_head_stale_window",
		// Normalization
		"marketplaces_path",
		"seadrop.token_id_source",
		// Metrics
		"metrics.address",
		// Pipeline
		"pipeline.cursor_save_freq",
		"pipeline.cursor_save_delay",
		"pipeline.retry_initial_interval",
		"pipeline.retry_max_interval",
		"pipeline.retry_max_attempts",
	}

	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

// loadEnv loads environment variables from the config directory
func loadEnv(envPath string, service string) {
	// Always try shared base first, then local, then optional per-service local.
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	// Default to config directory
	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		candidate := filepath.Join(envPath, envFile)
		_ = godotenv.Overload(candidate) // Overload lets later files override earlier ones
	}
}

// ChdirRepoRoot changes the current working directory to the repository root
func ChdirRepoRoot() {
	cwd, _ := os.Getwd()
	for range 5 {
		if _, err := os.Stat(filepath.Join(cwd, "config")); err == nil {
			_ = os.Chdir(cwd)
			return
		}
		cwd = filepath.Dir(cwd)
	}
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
