package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the tool server
type Config struct {
	Server    ServerConfig
	FMP       FMPConfig
	RateLimit RateLimitConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Auth      AuthConfig
	Logging   LoggingConfig
}

// ServerConfig holds server specific configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// FMPConfig holds Financial Modeling Prep client configuration
type FMPConfig struct {
	APIKey            string
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond int
}

// RateLimitConfig holds inbound rate limiting configuration.
// ClientIPHeaderName is trusted as the client address, so it must only be
// set when a proxy in front of the server overwrites that header.
type RateLimitConfig struct {
	Enabled            bool
	RequestsPerMinute  int
	BurstSize          int
	ClientIPHeaderName string
}

// RedisConfig holds Redis configuration for the shared rate limiter
type RedisConfig struct {
	URL string
}

// KafkaConfig holds Kafka configuration for tool audit events
type KafkaConfig struct {
	Brokers  []string
	Topic    string
	ClientID string
}

// AuthConfig holds bearer token configuration. An empty secret disables auth.
type AuthConfig struct {
	JWTSecret string
}

// LoggingConfig holds logging specific configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// Addr returns the listen address
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// LoadConfig loads the configuration from .env, an optional file and environment variables
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read config file if there is one
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	// Environment variables override
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnv(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects configurations the server cannot start with
func (c *Config) Validate() error {
	if strings.TrimSpace(c.FMP.APIKey) == "" {
		return errors.New("FMP_API_KEY environment variable not set")
	}
	if c.FMP.RequestsPerSecond <= 0 {
		return fmt.Errorf("fmp.requestsPerSecond must be positive, got %d", c.FMP.RequestsPerSecond)
	}
	return nil
}

// bindEnv maps the short variable names used in deployments
func bindEnv(v *viper.Viper) {
	_ = v.BindEnv("fmp.apiKey", "FMP_API_KEY")
	_ = v.BindEnv("fmp.baseURL", "FMP_BASE_URL")
	_ = v.BindEnv("server.host", "HOST")
	_ = v.BindEnv("server.port", "PORT")
	_ = v.BindEnv("redis.url", "REDIS_URL")
	_ = v.BindEnv("kafka.brokers", "KAFKA_BROKERS")
	_ = v.BindEnv("auth.jwtSecret", "JWT_SECRET")
	_ = v.BindEnv("logging.level", "LOG_LEVEL")
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.readTimeout", "10s")
	v.SetDefault("server.writeTimeout", "60s")
	v.SetDefault("server.idleTimeout", "120s")
	v.SetDefault("server.shutdownTimeout", "10s")

	// FMP defaults
	v.SetDefault("fmp.apiKey", "")
	v.SetDefault("fmp.baseURL", "https://financialmodelingprep.com/api")
	v.SetDefault("fmp.timeout", "30s")
	v.SetDefault("fmp.requestsPerSecond", 5)

	// Rate limit defaults
	v.SetDefault("rateLimit.enabled", false)
	v.SetDefault("rateLimit.requestsPerMinute", 60)
	v.SetDefault("rateLimit.burstSize", 10)
	v.SetDefault("rateLimit.clientIPHeaderName", "")

	// Optional integrations are off unless configured
	v.SetDefault("redis.url", "")
	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "tool-invocations")
	v.SetDefault("kafka.clientID", "fmp-tool-server")
	v.SetDefault("auth.jwtSecret", "")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
