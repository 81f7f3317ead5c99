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
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // in seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // in seconds
	IdleTimeout  int    `mapstructure:"idle_timeout"`  // in seconds
}

// TelegramConfig holds Telegram Bot API configuration
type TelegramConfig struct {
	BotToken   string        `mapstructure:"bot_token"`
	APIBaseURL string        `mapstructure:"api_base_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// MarketplaceStreamConfig holds the marketplace websocket stream configuration
type MarketplaceStreamConfig struct {
	WebSocketURL    string        `mapstructure:"websocket_url"`
	APIKey          string        `mapstructure:"api_key"`
	Collections     []string      `mapstructure:"collections"`
	ReconnectWait   time.Duration `mapstructure:"reconnect_wait"`
	WorkerPoolSize  int           `mapstructure:"worker_pool_size"`
	WorkerQueueSize int           `mapstructure:"worker_queue_size"`
}

// SolanaConfig holds the second-chain sale webhook configuration
type SolanaConfig struct {
	SharedSecret string `mapstructure:"shared_secret"`
}

// DedupConfig holds deduplication cache configuration
type DedupConfig struct {
	Window        time.Duration `mapstructure:"window"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// ImagingConfig holds the image resolution pipeline configuration
type ImagingConfig struct {
	DefaultImagePath string        `mapstructure:"default_image_path"`
	WorkDir          string        `mapstructure:"work_dir"`
	TargetSize       int           `mapstructure:"target_size"`
	MaxAttempts      int           `mapstructure:"max_attempts"`
	RetryStep        time.Duration `mapstructure:"retry_step"`
	CleanupDelay     time.Duration `mapstructure:"cleanup_delay"`
}

// PricingConfig holds the USD price-quote collaborator configuration
type PricingConfig struct {
	QuoteURL string        `mapstructure:"quote_url"`
	APIKey   string        `mapstructure:"api_key"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// WorkerConfig holds worker pool configuration
type WorkerConfig struct {
	PoolSize  int `mapstructure:"pool_size"`
	QueueSize int `mapstructure:"queue_size"`
}

// NotifierConfig holds configuration for the notifier service
type NotifierConfig struct {
	BaseConfig      `mapstructure:",squash"`
	Server          ServerConfig            `mapstructure:"server"`
	Database        DatabaseConfig          `mapstructure:"database"`
	Telegram        TelegramConfig          `mapstructure:"telegram"`
	Marketplace     MarketplaceStreamConfig `mapstructure:"marketplace"`
	Solana          SolanaConfig            `mapstructure:"solana"`
	Dedup           DedupConfig             `mapstructure:"dedup"`
	Imaging         ImagingConfig           `mapstructure:"imaging"`
	Pricing         PricingConfig           `mapstructure:"pricing"`
	Worker          WorkerConfig            `mapstructure:"worker"`
	MarketplacePath string                  `mapstructure:"marketplace_registry_path"`
}

// LoadNotifierConfig loads configuration for the notifier service
func LoadNotifierConfig(configFile string, envPath string) (*NotifierConfig, error) {
	v := configureViper("notifier", configFile, envPath)

	// Set defaults
	v.SetDefault("debug", false)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.idle_timeout", 120)
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("telegram.api_base_url", "https://api.telegram.org")
	v.SetDefault("telegram.timeout", "30s")
	v.SetDefault("marketplace.reconnect_wait", "5s")
	v.SetDefault("marketplace.worker_pool_size", 20)
	v.SetDefault("marketplace.worker_queue_size", 2048)
	v.SetDefault("dedup.window", "10m")
	v.SetDefault("dedup.sweep_interval", "5m")
	v.SetDefault("imaging.default_image_path", "assets/default_nft.png")
	v.SetDefault("imaging.target_size", 512)
	v.SetDefault("imaging.max_attempts", 10)
	v.SetDefault("imaging.retry_step", "2s")
	v.SetDefault("imaging.cleanup_delay", "60s")
	v.SetDefault("pricing.timeout", "10s")
	v.SetDefault("worker.pool_size", 20)
	v.SetDefault("worker.queue_size", 2048)
	v.SetDefault("marketplace_registry_path", "config/marketplaces.json")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// Config file not found, use environment variables
		} else {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config NotifierConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if config.Telegram.BotToken == "" {
		return nil, errors.New("telegram.bot_token is required")
	}

	return &config, nil
}

// configureViper returns a viper instance with the config file and environment variables set
func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	loadEnv(envPath, service)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		v.AddConfigPath("config/")
	}

	v.SetEnvPrefix("NFTPULSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindAllEnvVars(v)
	return v
}

// bindAllEnvVars explicitly binds all possible environment variables.
// Required for viper to map env vars to config struct fields when no config file exists.
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
		// Server
		"server.host",
		"server.port",
		"server.read_timeout",
		"server.write_timeout",
		"server.idle_timeout",
		// Telegram
		"telegram.bot_token",
		"telegram.api_base_url",
		"telegram.timeout",
		// Marketplace stream
		"marketplace.websocket_url",
		"marketplace.api_key",
		"marketplace.collections",
		"marketplace.reconnect_wait",
		"marketplace.worker_pool_size",
		"marketplace.worker_queue_size",
		// Solana webhook
		"solana.shared_secret",
		// Dedup
		"dedup.window",
		"dedup.sweep_interval",
		// Imaging
		"imaging.default_image_path",
		"imaging.work_dir",
		"imaging.target_size",
		"imaging.max_attempts",
		"imaging.retry_step",
		"imaging.cleanup_delay",
		// Pricing
		"pricing.quote_url",
		"pricing.api_key",
		"pricing.timeout",
		// Worker
		"worker.pool_size",
		"worker.queue_size",
		// Registry
		"marketplace_registry_path",
	}

	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

// loadEnv loads environment variables from the config directory
func loadEnv(envPath string, service string) {
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		candidate := filepath.Join(envPath, envFile)
		_ = godotenv.Overload(candidate) // later files override earlier ones
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
