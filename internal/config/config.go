package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Events    EventsConfig    `mapstructure:"events"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port               int      `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel           string   `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL                    string `mapstructure:"url" validate:"required,url"`
	MaxOpenConns           int    `mapstructure:"max_open_conns" validate:"gte=0"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes" validate:"gte=0"`
}

// ConnMaxLifetime returns the connection lifetime as a duration.
func (d DatabaseConfig) ConnMaxLifetime() time.Duration {
	return time.Duration(d.ConnMaxLifetimeMinutes) * time.Minute
}

// CacheConfig configures the Redis post cache. An empty RedisAddr disables it.
type CacheConfig struct {
	RedisAddr  string `mapstructure:"redis_addr" validate:"omitempty,hostname_port"`
	TTLSeconds int    `mapstructure:"ttl_seconds" validate:"gte=0"`
}

// TTL returns the cache entry lifetime as a duration.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// EventsConfig configures content event publishing. With no brokers, events
// are only logged.
type EventsConfig struct {
	KafkaBrokers []string `mapstructure:"kafka_brokers" validate:"dive,hostname_port"`
	Topic        string   `mapstructure:"topic" validate:"required_with=KafkaBrokers"`
	// Workers and QueueSize size the asynchronous delivery pool in front of Kafka.
	Workers   int `mapstructure:"workers" validate:"gte=0"`
	QueueSize int `mapstructure:"queue_size" validate:"gte=0"`
}

// TelemetryConfig configures trace export. An empty OTLPEndpoint disables it.
type TelemetryConfig struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	ServiceName  string  `mapstructure:"service_name" validate:"required"`
	SampleRatio  float64 `mapstructure:"sample_ratio" validate:"gte=0,lte=1"`
}
