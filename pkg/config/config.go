package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"petsitter/pkg/client"
	"petsitter/pkg/logger"
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Port string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	MaxBookingsPerDay int
	SitterLockTTL     time.Duration
	ReminderLeadTime  time.Duration

	KafkaEnabled bool

	Log    *logger.Logger
	Client *client.Client
}

// Load builds the service configuration from the environment, wires the
// logger, and validates everything up front. A bad value kills the
// process here rather than surfacing mid-request.
func Load(serviceName string) *Config {
	cfg := &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Port: getEnvStr(EnvPort, DefaultPort),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		MaxBookingsPerDay: getEnvNum(EnvMaxBookingsPerDay, DefaultMaxBookingsPerDay),
		SitterLockTTL:     getEnvDuration(EnvSitterLockTTL, DefaultSitterLockTTL),
		ReminderLeadTime:  getEnvDuration(EnvReminderLeadTime, DefaultReminderLeadTime),

		KafkaEnabled: getEnvBool(EnvKafkaEnabled, DefaultKafkaEnabled),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

var mongoSchemeRe = regexp.MustCompile(`^mongodb(\+srv)?://`)

func (cfg *Config) Validate() error {
	var faults []string
	fault := func(format string, args ...any) {
		faults = append(faults, fmt.Sprintf(format, args...))
	}

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		fault("Port must be between 1 and 65535, got: %s", cfg.Port)
	}

	switch {
	case cfg.MongoURI == "":
		fault("MongoURI cannot be empty")
	case !mongoSchemeRe.MatchString(cfg.MongoURI):
		fault("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", cfg.MongoURI)
	}
	if cfg.MongoDatabaseName == "" {
		fault("MongoDatabaseName cannot be empty")
	}

	for _, d := range []struct {
		name  string
		value time.Duration
	}{
		{"MongoConnTimeout", cfg.MongoConnTimeout},
		{"RateLimitWindow", cfg.RateLimitWindow},
		{"RequestTimeout", cfg.RequestTimeout},
		{"IdempotencyTTL", cfg.IdempotencyTTL},
		{"ReadTimeout", cfg.ReadTimeout},
		{"WriteTimeout", cfg.WriteTimeout},
		{"IdleTimeout", cfg.IdleTimeout},
		{"ShutdownTimeout", cfg.ShutdownTimeout},
		{"SitterLockTTL", cfg.SitterLockTTL},
		{"ReminderLeadTime", cfg.ReminderLeadTime},
	} {
		if d.value <= 0 {
			fault("%s must be positive, got: %s", d.name, d.value)
		}
	}

	for _, n := range []struct {
		name  string
		value int
	}{
		{"RateLimitRequests", cfg.RateLimitRequests},
		{"MaxRequestSize", cfg.MaxRequestSize},
		{"MaxBookingsPerDay", cfg.MaxBookingsPerDay},
	} {
		if n.value <= 0 {
			fault("%s must be positive, got: %d", n.name, n.value)
		}
	}

	if len(faults) == 0 {
		return nil
	}
	var b strings.Builder
	b.WriteString("Configuration validation failed:\n")
	for i, f := range faults {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, f)
	}
	return fmt.Errorf("%s", b.String())
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"port", cfg.Port,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"max_bookings_per_day", cfg.MaxBookingsPerDay,
		"sitter_lock_ttl", cfg.SitterLockTTL,
		"reminder_lead_time", cfg.ReminderLeadTime,
		"kafka_enabled", cfg.KafkaEnabled,
	)
}

var mongoCredentialRe = regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)

// redactMongoURI masks inline credentials before the URI hits a log line.
func redactMongoURI(uri string) string {
	return mongoCredentialRe.ReplaceAllString(uri, "${1}***:***@")
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown()
}

// NormalizePaginationLimit clamps a client-supplied page size into
// [1, DefaultPaginationLimit], substituting 10 for absent values.
func NormalizePaginationLimit(limit int) int {
	switch {
	case limit <= 0:
		return 10
	case limit > DefaultPaginationLimit:
		return DefaultPaginationLimit
	}
	return limit
}

func NormalizeOffset(offset int64) int64 {
	return max(0, offset)
}

func getEnvStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
