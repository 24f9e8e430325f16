package config

import (
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServiceName string
	ServerPort  int
	LogLevel    string

	DatabaseDriver string
	DatabaseURL    string

	JWTSecret    []byte
	AccessTTL    time.Duration
	InviteTTL    time.Duration
	CookieSecure bool
	CSRFEnabled  bool

	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	CheckoutLockTTL time.Duration

	KafkaBrokers []string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string

	// When true a declined card checkout commits the cancelled order and the failed payment.
	KeepFailedOrderRecords bool
}

func Load() Config {
	if err := godotenv.Load(".env"); err != nil {
		slog.Debug("env file not loaded, using process environment", "error", err)
	}

	return Config{
		ServiceName: EnvDefault("SERVICE_NAME", "storefront"),
		ServerPort:  EnvIntDefault("SERVER_PORT", 8080),
		LogLevel:    EnvDefault("LOG_LEVEL", "info"),

		DatabaseDriver: EnvDefault("DB_DRIVER", "postgres"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),

		JWTSecret: []byte(os.Getenv("JWT_SECRET")),
		AccessTTL: EnvDurationDefault("ACCESS_TTL", 15*time.Minute),
		InviteTTL: EnvDurationDefault("INVITE_TTL", 72*time.Hour),

		CookieSecure: EnvBoolDefault("COOKIE_SECURE", false),
		CSRFEnabled:  EnvBoolDefault("CSRF_ENABLED", true),

		RedisAddr:       os.Getenv("REDIS_ADDR"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		RedisDB:         EnvIntDefault("REDIS_DB", 0),
		CheckoutLockTTL: EnvDurationDefault("CHECKOUT_LOCK_TTL", 30*time.Second),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ESIndex:    EnvDefault("ES_INDEX", "products"),

		KeepFailedOrderRecords: EnvBoolDefault("KEEP_FAILED_ORDER_RECORDS", true),
	}
}

func (c Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("missing required env DATABASE_URL"))
	}
	if len(c.JWTSecret) == 0 {
		errs = append(errs, errors.New("missing required env JWT_SECRET"))
	}
	return errors.Join(errs...)
}
