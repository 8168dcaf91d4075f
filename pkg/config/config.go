package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/gorm/logger"
)

// DBConfig holds the reference database configuration
type DBConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	LogLevel        logger.LogLevel
}

// GetDSN returns the PostgreSQL connection string
func (c *DBConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// StorageConfig holds the ingestion source / result sink configuration.
// Backend "local" reads and writes under BasePath; backend "minio" talks to an
// object storage bucket.
type StorageConfig struct {
	Backend     string // "local" or "minio"
	BasePath    string
	Endpoint    string
	AccessKey   string
	SecretKey   string
	Bucket      string
	UseSSL      bool
	OrdersPath  string
	StockPath   string
	OutputPath  string
}

// PipelineConfig holds the tunables of the replenishment computation
type PipelineConfig struct {
	LoadWorkers         int
	HighDemandThreshold int
	StockPolicy         string // "first-seen", "sum" or "max"
}

// ServerConfig holds the scheduler-mode HTTP server configuration
type ServerConfig struct {
	Port string
	Env  string
}

// SchedulerConfig holds the daily run schedule
type SchedulerConfig struct {
	RunAt         string // "HH:MM" local time
	CheckInterval time.Duration
	GenerateData  bool
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Prefix string
}

// Config holds all configuration
type Config struct {
	ServiceName string
	DB          DBConfig
	Storage     StorageConfig
	Pipeline    PipelineConfig
	Server      ServerConfig
	Scheduler   SchedulerConfig
	Log         LogConfig
	Metrics     MetricsConfig
}

// Load loads configuration from environment variables
func Load(serviceName string) (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// Not returning error as .env file is optional
		fmt.Printf("Warning: .env file not found, using environment variables\n")
	}

	config := &Config{
		ServiceName: serviceName,
		DB: DBConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "password"),
			DBName:          getEnv("DB_NAME", "procurement"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 1*time.Hour),
			LogLevel:        getEnvAsLogLevel("DB_LOG_LEVEL", logger.Warn),
		},
		Storage: StorageConfig{
			Backend:    getEnv("STORAGE_BACKEND", "local"),
			BasePath:   getEnv("STORAGE_BASE_PATH", "data"),
			Endpoint:   getEnv("STORAGE_ENDPOINT", "localhost:9000"),
			AccessKey:  getEnv("STORAGE_ACCESS_KEY", "minioadmin"),
			SecretKey:  getEnv("STORAGE_SECRET_KEY", "minioadmin"),
			Bucket:     getEnv("STORAGE_BUCKET", "procurement"),
			UseSSL:     getEnvAsBool("STORAGE_USE_SSL", false),
			OrdersPath: getEnv("STORAGE_ORDERS_PATH", "orders"),
			StockPath:  getEnv("STORAGE_STOCK_PATH", "stock"),
			OutputPath: getEnv("STORAGE_OUTPUT_PATH", "output"),
		},
		Pipeline: PipelineConfig{
			LoadWorkers:         getEnvAsInt("PIPELINE_LOAD_WORKERS", 4),
			HighDemandThreshold: getEnvAsInt("PIPELINE_HIGH_DEMAND_THRESHOLD", 500),
			StockPolicy:         getEnv("PIPELINE_STOCK_POLICY", "first-seen"),
		},
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Env:  getEnv("APP_ENV", "development"),
		},
		Scheduler: SchedulerConfig{
			RunAt:         getEnv("SCHEDULER_RUN_AT", "22:00"),
			CheckInterval: getEnvAsDuration("SCHEDULER_CHECK_INTERVAL", 1*time.Minute),
			GenerateData:  getEnvAsBool("SCHEDULER_GENERATE_DATA", false),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Metrics: MetricsConfig{
			Prefix: getEnv("METRICS_PREFIX", "procurement_pipeline"),
		},
	}

	return config, nil
}

// Helper function to get environment variables with defaults
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as integers
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as booleans
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as durations
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as log levels
func getEnvAsLogLevel(key string, defaultValue logger.LogLevel) logger.LogLevel {
	switch getEnv(key, "") {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "warn":
		return logger.Warn
	case "info":
		return logger.Info
	default:
		return defaultValue
	}
}
