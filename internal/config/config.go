// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	Inventory   InventoryConfig
	Pusher      PusherConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	ReadTimeout  int
	WriteTimeout int
	IdleTimeout  int
	ImagesDir    string
}

type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Database     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  int
	LogLevel     string
}

type InventoryConfig struct {
	LowStockThreshold    int
	RestockApprovalDelay time.Duration
	AutoSellInterval     time.Duration
	AutoSellEnabled      bool
}

type PusherConfig struct {
	AppID   string
	Key     string
	Secret  string
	Cluster string
	Enabled bool
}

func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "9000"),
			Host:         getEnv("SERVER_HOST", "localhost"),
			ReadTimeout:  getEnvAsInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:  getEnvAsInt("SERVER_IDLE_TIMEOUT", 60),
			ImagesDir:    getEnv("IMAGES_DIR", "./public/images"),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", ""),
			Database:     getEnv("DB_NAME", "store_inventory"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  getEnvAsInt("DB_MAX_LIFETIME", 300),
			LogLevel:     getEnv("DB_LOG_LEVEL", "silent"),
		},
		Inventory: InventoryConfig{
			LowStockThreshold:    getEnvAsInt("LOW_STOCK_THRESHOLD", 25),
			RestockApprovalDelay: getEnvAsDuration("RESTOCK_APPROVAL_DELAY", 15*time.Second),
			AutoSellInterval:     getEnvAsDuration("AUTO_SELL_INTERVAL", 30*time.Second),
			AutoSellEnabled:      getEnvAsBool("AUTO_SELL_ENABLED", true),
		},
		Pusher: PusherConfig{
			AppID:   getEnv("PUSHER_APP_ID", ""),
			Key:     getEnv("PUSHER_KEY", ""),
			Secret:  getEnv("PUSHER_SECRET", ""),
			Cluster: getEnv("PUSHER_CLUSTER", "ap2"),
			Enabled: getEnvAsBool("PUSHER_ENABLED", false),
		},
	}

	return config, config.Validate()
}

func (c *Config) Validate() error {
	if c.Database.Password == "" && c.Environment == "production" {
		return fmt.Errorf("database password is required in production")
	}

	if c.Inventory.LowStockThreshold < 0 {
		return fmt.Errorf("low stock threshold must not be negative")
	}

	if c.Inventory.RestockApprovalDelay <= 0 {
		return fmt.Errorf("restock approval delay must be positive")
	}

	if c.Inventory.AutoSellInterval <= 0 {
		return fmt.Errorf("auto-sell interval must be positive")
	}

	if c.Pusher.Enabled && (c.Pusher.AppID == "" || c.Pusher.Key == "" || c.Pusher.Secret == "") {
		return fmt.Errorf("pusher credentials are required when pusher is enabled")
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(strings.ToLower(value)); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
