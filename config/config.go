package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all agent configuration
type Config struct {
	Port       string
	Tracker    TrackerConfig
	Delivery   DeliveryConfig
	Identity   IdentityConfig
	ClickHouse ClickHouseConfig
	Redis      RedisConfig
}

// DeliveryConfig holds transport settings that the host page cannot override
type DeliveryConfig struct {
	Sink          string // "http" or "clickhouse"
	QueueCapacity int    // maximum number of events waiting for delivery
	RetryDelayMS  int    // back-off between failed drain attempts
	SendTimeoutMS int    // per-request timeout for the HTTP transport
	GeoURL        string // geolocation lookup URL, empty disables the lookup
}

// IdentityConfig selects the persistent identity tier
type IdentityConfig struct {
	Store        string // "sqlite" or "redis"
	SQLitePath   string
	RedisKeyTTLS int64 // 0 keeps visitor ids forever
}

// ClickHouseConfig holds ClickHouse connection settings for the direct sink
type ClickHouseConfig struct {
	Host     string
	Port     string
	Database string
	User     string
	Password string
	DSN      string
	DedupTTL int64 // how long a delivered (session_id, type, ts) key is remembered, in milliseconds

	BufferChannelCapacity int // payloads accepted by the sink before it reports full
	BatchSize             int // rows per columnar insert
	FlushIntervalSeconds  int // time based insert for partial batches
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	Endpoint string
}

// Load reads configuration from environment variables
func Load() *Config {
	defaults := DefaultTrackerConfig()
	return &Config{
		Port: getEnv("PORT", "127.0.0.1:8123"),
		Tracker: TrackerConfig{
			Endpoint:      getEnv("TRACKER_ENDPOINT", defaults.Endpoint),
			TrackingID:    getEnv("TRACKER_TRACKING_ID", defaults.TrackingID),
			BatchSize:     getEnvAsPositiveInt("TRACKER_BATCH_SIZE", defaults.BatchSize),
			FlushInterval: time.Duration(getEnvAsPositiveInt("TRACKER_INTERVAL_MS", int(defaults.FlushInterval/time.Millisecond))) * time.Millisecond,
			Debug:         getEnv("TRACKER_DEBUG", "false") == "true",
		},
		Delivery: DeliveryConfig{
			Sink:          getEnv("TRACKER_SINK", "http"),
			QueueCapacity: getEnvAsPositiveInt("TRACKER_QUEUE_CAPACITY", 1000),
			RetryDelayMS:  getEnvAsPositiveInt("TRACKER_RETRY_DELAY_MS", 1000),
			SendTimeoutMS: getEnvAsPositiveInt("TRACKER_SEND_TIMEOUT_MS", 5000),
			GeoURL:        getEnv("TRACKER_GEO_URL", "https://ipapi.co/json/"),
		},
		Identity: IdentityConfig{
			Store:        getEnv("TRACKER_IDENTITY_STORE", "sqlite"),
			SQLitePath:   getEnv("TRACKER_IDENTITY_DB", "tracker-identity.db"),
			RedisKeyTTLS: getEnvAsInt64("TRACKER_IDENTITY_TTL_SECONDS", 0),
		},
		ClickHouse: ClickHouseConfig{
			Host:     getEnv("CLICKHOUSE_HOST", "127.0.0.1"),
			Port:     getEnv("CLICKHOUSE_PORT", "9000"),
			Database: getEnv("CLICKHOUSE_DATABASE", "default"),
			User:     getEnv("CLICKHOUSE_USER", "app"),
			Password: getEnv("CLICKHOUSE_PASSWORD", ""),
			DSN:      getEnv("CLICKHOUSE_DSN", ""),
			DedupTTL: getEnvAsInt64("TRACKER_DEDUP_TTL_MS", 60*60*1000),

			BufferChannelCapacity: getEnvAsPositiveInt("EVENT_BUFFER_CAPACITY", 50000),
			BatchSize:             getEnvAsPositiveInt("EVENT_BATCH_SIZE", 5000),
			FlushIntervalSeconds:  getEnvAsPositiveInt("EVENT_FLUSH_INTERVAL_SECONDS", 1),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "127.0.0.1"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			Endpoint: getEnv("REDIS_ENDPOINT", ""),
		},
	}
}

// RetryDelay returns the drain back-off as a duration
func (d DeliveryConfig) RetryDelay() time.Duration {
	return time.Duration(d.RetryDelayMS) * time.Millisecond
}

// SendTimeout returns the per-request timeout as a duration
func (d DeliveryConfig) SendTimeout() time.Duration {
	return time.Duration(d.SendTimeoutMS) * time.Millisecond
}

func (c *ClickHouseConfig) GetClickHouseDSN() string {
	if c.DSN != "" {
		return c.DSN
	}

	dsn := "clickhouse://"
	if c.User != "" {
		dsn += c.User
		if c.Password != "" {
			dsn += ":" + c.Password
		}
		dsn += "@"
	}
	return dsn + fmt.Sprintf("%s:%s/%s", c.Host, c.Port, c.Database)
}

func (r *RedisConfig) GetRedisAddr() string {
	if r.Endpoint != "" {
		return r.Endpoint
	}
	return r.Host + ":" + r.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsPositiveInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil && intValue > 0 {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
