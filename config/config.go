package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

const (
	defaultServerAddress     = ":8080"
	defaultDatabaseDSN       = ""
	defaultCatalogAddr       = "http://localhost:8181"
	defaultReviewsAddr       = "http://localhost:8282"
	defaultRedisAddr         = ""
	defaultKafkaBrokers      = ""
	defaultKafkaTopic        = "homechef.orders"
	defaultOTLPEndpoint      = ""
	defaultLogLevel          = "debug"
	defaultChatRetryInterval = 10 * time.Second
)

type Config struct {
	ServerAddr        string        `env:"RUN_ADDRESS"`
	DatabaseDSN       string        `env:"DATABASE_URI"`
	CatalogAddr       string        `env:"CATALOG_ADDRESS"`
	ReviewsAddr       string        `env:"REVIEWS_ADDRESS"`
	RedisAddr         string        `env:"REDIS_ADDRESS"`
	KafkaBrokers      string        `env:"KAFKA_BROKERS"`
	KafkaTopic        string        `env:"KAFKA_TOPIC"`
	KafkaUsername     string        `env:"KAFKA_USERNAME"`
	KafkaPassword     string        `env:"KAFKA_PASSWORD"`
	OTLPEndpoint      string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	LogLevel          string        `env:"LOG_LEVEL"`
	TokenKey          string        `env:"AUTH_TOKEN_KEY"`
	ChatRetryInterval time.Duration `env:"CHAT_RETRY_INTERVAL"`
}

// Brokers returns kafka seed brokers, empty when events go to the log only
func (c *Config) Brokers() []string {
	var brokers []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

var (
	once      sync.Once
	singleton *Config
	loadErr   error
)

// New returns new Config. It parses command line, .env file and environment variables only once.
func New() (*Config, error) {
	once.Do(func() {
		singleton, loadErr = load(flag.CommandLine, os.Args[1:])
	})

	return singleton, loadErr
}

// load fills config from flags, then overrides it with environment variables
func load(fset *flag.FlagSet, args []string) (*Config, error) {
	cfg := Config{}

	// initialize flags
	fset.StringVar(&cfg.ServerAddr, "a", defaultServerAddress, "server address")
	fset.StringVar(&cfg.DatabaseDSN, "d", defaultDatabaseDSN, "database DSN")
	fset.StringVar(&cfg.CatalogAddr, "c", defaultCatalogAddr, "catalog service address")
	fset.StringVar(&cfg.ReviewsAddr, "v", defaultReviewsAddr, "reviews service address")
	fset.StringVar(&cfg.RedisAddr, "redis", defaultRedisAddr, "redis address, cache is disabled if empty")
	fset.StringVar(&cfg.KafkaBrokers, "k", defaultKafkaBrokers, "comma separated kafka brokers")
	fset.StringVar(&cfg.KafkaTopic, "t", defaultKafkaTopic, "kafka topic for order events")
	fset.StringVar(&cfg.KafkaUsername, "kafka-user", "", "kafka SASL username")
	fset.StringVar(&cfg.KafkaPassword, "kafka-password", "", "kafka SASL password")
	fset.StringVar(&cfg.OTLPEndpoint, "o", defaultOTLPEndpoint, "OTLP gRPC endpoint, tracing is disabled if empty")
	fset.StringVar(&cfg.LogLevel, "l", defaultLogLevel, "log level")
	fset.StringVar(&cfg.TokenKey, "s", "", "auth token signing key")
	fset.DurationVar(&cfg.ChatRetryInterval, "chat-retry", defaultChatRetryInterval, "chat channel retry interval")

	if err := fset.Parse(args); err != nil {
		return nil, err
	}

	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	// if environment variable is set, then using it
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.TokenKey == "" {
		return nil, errors.New("auth token key is not set")
	}

	return &cfg, nil
}
