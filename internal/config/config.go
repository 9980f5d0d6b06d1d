package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Storage drivers accepted in STORAGE_DRIVER.
const (
	StorageDriverPostgres = "postgres"
	StorageDriverSQLite   = "sqlite"
	StorageDriverMemory   = "memory"
)

// ErrInvalidConfig is returned when loaded values are inconsistent.
var ErrInvalidConfig = errors.New("invalid config")

// Config stores configuration values for the application.
// These values can be read from a configuration file or environment variables.
type Config struct {
	// RESTAddress is the host:port the REST API listens on.
	RESTAddress string `mapstructure:"REST_ADDRESS"`
	// GRPCAddress is the host:port the gRPC API listens on.
	GRPCAddress string `mapstructure:"GRPC_ADDRESS"`
	// StorageDriver selects the identity store backend: postgres, sqlite or memory.
	StorageDriver string `mapstructure:"STORAGE_DRIVER"`
	// DatabaseURL is the connection string passed to the SQL driver.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// BcryptCost is the bcrypt cost used to hash passwords.
	BcryptCost int `mapstructure:"BCRYPT_COST"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"LOG_LEVEL"`
	// ReadTimeout bounds reading an incoming REST request.
	ReadTimeout time.Duration `mapstructure:"READ_TIMEOUT"`
	// WriteTimeout bounds writing a REST response.
	WriteTimeout time.Duration `mapstructure:"WRITE_TIMEOUT"`
	// ShutdownTimeout bounds graceful shutdown of both servers.
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("REST_ADDRESS", ":5000")
	v.SetDefault("GRPC_ADDRESS", ":5001")
	v.SetDefault("STORAGE_DRIVER", StorageDriverPostgres)
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("READ_TIMEOUT", 15*time.Second)
	v.SetDefault("WRITE_TIMEOUT", 15*time.Second)
	v.SetDefault("SHUTDOWN_TIMEOUT", 10*time.Second)
}

// Load loads configuration settings from a specified file or environment variables.
// If both a configuration file and environment variables are used, environment variables take precedence.
func Load(filePath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(filePath)
	v.SetConfigType("env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks that the configured storage backend can be opened.
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case StorageDriverPostgres, StorageDriverSQLite:
		if c.DatabaseURL == "" {
			return fmt.Errorf("%w: DATABASE_URL is required for storage driver %q", ErrInvalidConfig, c.StorageDriver)
		}
	case StorageDriverMemory:
	default:
		return fmt.Errorf("%w: unknown storage driver %q", ErrInvalidConfig, c.StorageDriver)
	}

	if c.RESTAddress == "" || c.GRPCAddress == "" {
		return fmt.Errorf("%w: REST_ADDRESS and GRPC_ADDRESS must be set", ErrInvalidConfig)
	}

	return nil
}
