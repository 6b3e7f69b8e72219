package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/smukkama/weather-summary/internal/aggregation"
	"github.com/smukkama/weather-summary/internal/reading"
)

type Config struct {
	Database    DatabaseConfig
	Redis       RedisConfig
	Kafka       KafkaConfig
	Aggregation AggregationConfig
	API         APIConfig
	Log         LogConfig
}

type DatabaseConfig struct {
	Driver   string // postgres or sqlite3
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	Path     string // sqlite3 file
}

// DataSourceName returns the driver-specific connection string.
func (d DatabaseConfig) DataSourceName() string {
	if d.Driver == "sqlite3" {
		return d.Path
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// MigrationsDir returns the migrations directory for the configured driver.
func (d DatabaseConfig) MigrationsDir() string {
	return "migrations/" + d.Driver
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	IndexKey string
}

type KafkaConfig struct {
	Brokers         []string
	TopicReadings   string
	TopicSummaries  string
	NumPartitions   int
	StationID       string
	IngestBatchSize int
	IngestFlush     time.Duration
}

type AggregationConfig struct {
	Timezone          string
	ValidityThreshold int
	FullHourSamples   int
	MalformedPolicy   string
	OutputDir         string
	Lookback          time.Duration
	DailyTime         string
}

type APIConfig struct {
	Port int
}

type LogConfig struct {
	Env   string // dev or prod
	Level string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not present)
	_ = godotenv.Load()

	config := &Config{
		Database: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", "postgres"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "weather_user"),
			Password: getEnv("DB_PASSWORD", "weather_pass"),
			DBName:   getEnv("DB_NAME", "weather_db"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			Path:     getEnv("DB_PATH", "weather.db"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			IndexKey: getEnv("REDIS_INDEX_KEY", "weather:daily_index"),
		},
		Kafka: KafkaConfig{
			Brokers:         strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			TopicReadings:   getEnv("KAFKA_TOPIC_READINGS", "weather.readings.raw"),
			TopicSummaries:  getEnv("KAFKA_TOPIC_SUMMARIES", "weather.summaries"),
			NumPartitions:   getEnvAsInt("KAFKA_NUM_PARTITIONS", 3),
			StationID:       getEnv("KAFKA_STATION_ID", "station-1"),
			IngestBatchSize: getEnvAsInt("INGEST_BATCH_SIZE", 100),
			IngestFlush:     getEnvAsDuration("INGEST_FLUSH_INTERVAL", 5*time.Second),
		},
		Aggregation: AggregationConfig{
			Timezone:          getEnv("AGGREGATION_TIMEZONE", aggregation.DefaultTimezone),
			ValidityThreshold: getEnvAsInt("AGGREGATION_VALIDITY_THRESHOLD", aggregation.DefaultValidityThreshold),
			FullHourSamples:   getEnvAsInt("AGGREGATION_FULL_HOUR_SAMPLES", aggregation.DefaultFullHourSamples),
			MalformedPolicy:   getEnv("AGGREGATION_MALFORMED_POLICY", string(reading.PolicyFail)),
			OutputDir:         getEnv("AGGREGATION_OUTPUT_DIR", "output"),
			Lookback:          getEnvAsDuration("AGGREGATION_LOOKBACK", 7*24*time.Hour),
			DailyTime:         getEnv("AGGREGATION_DAILY_TIME", "00:05"),
		},
		API: APIConfig{
			Port: getEnvAsInt("API_PORT", 8081),
		},
		Log: LogConfig{
			Env:   getEnv("APP_ENV", "dev"),
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite3":
	default:
		return fmt.Errorf("invalid DB_DRIVER %q (allowed: postgres, sqlite3)", c.Database.Driver)
	}

	switch c.Log.Env {
	case "dev", "prod":
	default:
		return fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", c.Log.Env)
	}

	if _, err := reading.ParsePolicy(c.Aggregation.MalformedPolicy); err != nil {
		return err
	}
	if c.Aggregation.Lookback <= 0 {
		return fmt.Errorf("AGGREGATION_LOOKBACK must be positive, got %s", c.Aggregation.Lookback)
	}

	return nil
}

// EngineConfig builds the aggregation engine configuration.
func (a AggregationConfig) EngineConfig() (aggregation.Config, error) {
	cfg, err := aggregation.NewConfig(a.Timezone)
	if err != nil {
		return aggregation.Config{}, err
	}
	cfg.ValidityThreshold = a.ValidityThreshold
	cfg.FullHourSamples = a.FullHourSamples
	return cfg, nil
}

// Policy returns the parsed malformed-record policy.
func (a AggregationConfig) Policy() reading.Policy {
	p, _ := reading.ParsePolicy(a.MalformedPolicy)
	return p
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
