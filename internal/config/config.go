package config

import (
	"os"
	"strconv"
	"time"

	_ "github.com/joho/godotenv/autoload"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Ledger   LedgerConfig
	Worker   WorkerConfig
}

type ServerConfig struct {
	Port string
	Host string
}

// DatabaseConfig selects the GORM dialector. "mysql" is the production
// driver; "sqlite" is used for local runs.
type DatabaseConfig struct {
	Driver          string
	MySQL           MySQLConfig
	SQLitePath      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type MySQLConfig struct {
	Host     string
	User     string
	Password string
	Database string
}

type RedisConfig struct {
	Enabled      bool
	Host         string
	Port         string
	Password     string
	DB           int
	PoolSize     int
	LoanCacheTTL time.Duration
}

// LedgerConfig holds the money and scheduling policy applied to new loans
// and payments.
type LedgerConfig struct {
	PenaltyPerDay          string
	BillingCadence         string
	InstallmentIntervalDay int
	IDRetryBudget          int
	TxRetries              int
}

type WorkerConfig struct {
	OutboxDrainInterval time.Duration
	OutboxBatchSize     int
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8072"),
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			Driver: getEnv("DB_DRIVER", "mysql"),
			MySQL: MySQLConfig{
				Host:     getEnv("MYSQL_HOST", "localhost:3306"),
				User:     getEnv("MYSQL_USER", "gigmile"),
				Password: getEnv("MYSQL_PASSWORD", "gigmile123"),
				Database: getEnv("MYSQL_DATABASE", "loan_ledger"),
			},
			SQLitePath:      getEnv("SQLITE_PATH", "loan_ledger.db"),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", time.Hour),
		},
		Redis: RedisConfig{
			Enabled:      getEnvAsBool("REDIS_ENABLED", true),
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnv("REDIS_PORT", "6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvAsInt("REDIS_DB", 0),
			PoolSize:     getEnvAsInt("REDIS_POOL_SIZE", 100),
			LoanCacheTTL: getEnvAsDuration("LOAN_CACHE_TTL", 5*time.Minute),
		},
		Ledger: LedgerConfig{
			PenaltyPerDay:          getEnv("LEDGER_PENALTY_PER_DAY", "75"),
			BillingCadence:         getEnv("LEDGER_BILLING_CADENCE", "fixed_interval"),
			InstallmentIntervalDay: getEnvAsInt("LEDGER_INSTALLMENT_INTERVAL_DAYS", 30),
			IDRetryBudget:          getEnvAsInt("LEDGER_ID_RETRY_BUDGET", 32),
			TxRetries:              getEnvAsInt("LEDGER_TX_RETRIES", 5),
		},
		Worker: WorkerConfig{
			OutboxDrainInterval: getEnvAsDuration("AUDIT_OUTBOX_DRAIN_INTERVAL", 10*time.Second),
			OutboxBatchSize:     getEnvAsInt("AUDIT_OUTBOX_BATCH_SIZE", 100),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
