package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	Server Server `mapstructure:"server"`
	Store  Store  `mapstructure:"store"`
	Auth   Auth   `mapstructure:"auth"`
}

// Server configuration
type Server struct {
	Port string `mapstructure:"port"`
}

// Store configuration. Driver selects the AccountStore adapter; seed accounts
// only apply to the memory driver, since account creation is otherwise out of
// band.
type Store struct {
	Driver    string        `mapstructure:"driver"`
	DSN       string        `mapstructure:"dsn"`
	OpTimeout time.Duration `mapstructure:"opTimeout"`
	Seed      []SeedAccount `mapstructure:"seed"`
}

// SeedAccount is one pre-provisioned account record. Amounts are decimal
// strings so config round-trips without float conversion.
type SeedAccount struct {
	AccountID            string `mapstructure:"accountId"`
	CurrentBalance       string `mapstructure:"currentBalance"`
	DailyLimit           string `mapstructure:"dailyLimit"`
	DailyAmountWithdrawn string `mapstructure:"dailyAmountWithdrawn"`
}

// Auth configuration
type Auth struct {
	CredentialsFile string `mapstructure:"credentialsFile"`
}

// Store driver names
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

// LoadConfig loads configuration from YAML file
// Uses CONFIG_ENV environment variable to determine which config file to load
func LoadConfig(configDir string) (*Config, error) {
	configEnv := os.Getenv("CONFIG_ENV")
	if configEnv == "" {
		configEnv = "local"
	}

	// Load base app-config.yaml as template/defaults (if it exists)
	baseConfigPath := fmt.Sprintf("%s/app-config.yaml", configDir)
	baseConfigExists := false
	if _, err := os.Stat(baseConfigPath); err == nil {
		viper.SetConfigFile(baseConfigPath)
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read base config file: %w", err)
		}
		baseConfigExists = true
	}

	// Load environment-specific config (e.g., local.yaml when CONFIG_ENV=local)
	envConfigPath := fmt.Sprintf("%s/%s.yaml", configDir, configEnv)
	if _, err := os.Stat(envConfigPath); err == nil {
		if baseConfigExists {
			// Merge environment config on top of base config
			viper.SetConfigFile(envConfigPath)
			if err := viper.MergeInConfig(); err != nil {
				return nil, fmt.Errorf("failed to merge env config file: %w", err)
			}
		} else {
			// If no base config, load environment config directly
			viper.SetConfigFile(envConfigPath)
			if err := viper.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read env config file: %w", err)
			}
		}
	}
	// With neither file present the service still runs on defaults and
	// environment variables.

	// Also read from environment variables (with prefix)
	viper.SetEnvPrefix("LEDGER")
	viper.AutomaticEnv()

	// Bind environment variables
	viper.BindEnv("server.port", "LEDGER_SERVER_PORT", "PORT")
	viper.BindEnv("store.driver", "LEDGER_STORE_DRIVER", "STORE_DRIVER")
	viper.BindEnv("store.dsn", "LEDGER_STORE_DSN", "DATABASE_DSN")
	viper.BindEnv("store.opTimeout", "LEDGER_STORE_OP_TIMEOUT")
	viper.BindEnv("auth.credentialsFile", "LEDGER_CREDENTIALS_FILE", "CREDENTIALS_FILE")

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Set defaults if not provided
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = DriverMemory
	}
	if cfg.Store.OpTimeout == 0 {
		cfg.Store.OpTimeout = 5 * time.Second
	}

	// Handle op timeout given as a duration string (e.g., "5s", "500ms")
	if timeoutStr := viper.GetString("store.opTimeout"); timeoutStr != "" {
		if parsed, err := time.ParseDuration(timeoutStr); err == nil {
			cfg.Store.OpTimeout = parsed
		}
	}

	if cfg.Store.Driver != DriverMemory && cfg.Store.Driver != DriverPostgres {
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
	if cfg.Store.Driver == DriverPostgres && cfg.Store.DSN == "" {
		return nil, fmt.Errorf("store driver %q requires a dsn", DriverPostgres)
	}

	return &cfg, nil
}
