package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName          string
	AppVersion       string
	Environment      string
	HTTPAddr         string
	AuthCookieSecure bool

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBSQLitePath      string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int
	DBSlowQueryMillis int

	Observability ObservabilityConfig
	Redis         RedisConfig
	Email         EmailConfig
	Events        EventsConfig
	Alert         AlertConfig
	Verification  VerificationConfig
	RateLimit     RateLimitConfig
	Bootstrap     BootstrapConfig
}

type ObservabilityConfig struct {
	LogLevel          string
	LogFormat         string
	OtelEnabled       bool
	OtelEndpoint      string
	OtelProtocol      string
	OtelSamplingRatio float64
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Enabled reports whether a redis address was configured.
func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	// AdminNotifyEmail receives verification codes for admin operations.
	AdminNotifyEmail string
}

const (
	EventsDriverMemory = "memory"
	EventsDriverKafka  = "kafka"
)

type EventsConfig struct {
	Driver  string
	Brokers []string
	Topic   string
	GroupID string
	Buffer  int
	Workers int
}

type AlertConfig struct {
	Timezone       string
	LockTTLSeconds int
}

type VerificationConfig struct {
	CodeTTLSeconds int
}

type RateLimitConfig struct {
	Enabled           bool
	LoginRate         float64
	LoginBurst        int
	VerificationRate  float64
	VerificationBurst int
}

type BootstrapConfig struct {
	AdminUsername string
	AdminEmail    string
	AdminPassword string
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	environment := getenv("ENVIRONMENT", "development")
	authCookieSecure := environment == "production"
	if !authCookieSecure {
		authCookieSecure = getenvBool("AUTH_COOKIE_SECURE", false)
	}

	cfg := Config{
		AppName:          getenv("APP_SERVICE", "stockroom"),
		AppVersion:       getenv("APP_VERSION", "0.1.0"),
		Environment:      environment,
		HTTPAddr:         getenv("HTTP_ADDR", ":8080"),
		AuthCookieSecure: authCookieSecure,

		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "stockroom"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBSQLitePath:      getenv("DATABASE_SQLITE_PATH", "stockroom.db"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 20),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 1800),
		DBConnMaxIdleTime: getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 300),
		DBSlowQueryMillis: getenvInt("DATABASE_SLOW_QUERY_MS", 200),

		Observability: ObservabilityConfig{
			LogLevel:          strings.ToLower(strings.TrimSpace(getenv("LOG_LEVEL", "info"))),
			LogFormat:         strings.ToLower(strings.TrimSpace(getenv("LOG_FORMAT", "json"))),
			OtelEnabled:       getenvBool("OTEL_ENABLED", false),
			OtelEndpoint:      strings.TrimSpace(getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")),
			OtelProtocol:      otlpProtocol(),
			OtelSamplingRatio: getenvFloat("OTEL_SAMPLING_RATIO", 0.1),
		},

		Redis: RedisConfig{
			Addr:     strings.TrimSpace(getenv("REDIS_ADDR", "")),
			Password: getenv("REDIS_PASSWORD", ""),
			DB:       getenvInt("REDIS_DB", 0),
		},
		Email: EmailConfig{
			SMTPHost:         strings.TrimSpace(getenv("SMTP_HOST", "")),
			SMTPPort:         getenvInt("SMTP_PORT", 587),
			SMTPUsername:     getenv("SMTP_USERNAME", ""),
			SMTPPassword:     getenv("SMTP_PASSWORD", ""),
			SMTPFrom:         getenv("SMTP_FROM", ""),
			AdminNotifyEmail: strings.TrimSpace(getenv("ADMIN_NOTIFY_EMAIL", "")),
		},
		Events: EventsConfig{
			Driver:  normalizeEventsDriver(getenv("EVENTS_DRIVER", EventsDriverMemory)),
			Brokers: splitList(getenv("KAFKA_BROKERS", "localhost:9092")),
			Topic:   getenv("KAFKA_TOPIC", "stockroom.stock-changed"),
			GroupID: getenv("KAFKA_GROUP_ID", "stockroom-notifier"),
			Buffer:  getenvInt("EVENTS_BUFFER", 256),
			Workers: getenvInt("EVENTS_WORKERS", 2),
		},
		Alert: AlertConfig{
			Timezone:       strings.TrimSpace(getenv("ALERT_TIMEZONE", "")),
			LockTTLSeconds: getenvInt("ALERT_LOCK_TTL_SECONDS", 30),
		},
		Verification: VerificationConfig{
			CodeTTLSeconds: getenvInt("VERIFICATION_CODE_TTL_SECONDS", 300),
		},
		RateLimit: RateLimitConfig{
			Enabled:           getenvBool("RATE_LIMIT_ENABLED", false),
			LoginRate:         getenvFloat("LOGIN_RATE", 0.2),
			LoginBurst:        getenvInt("LOGIN_BURST", 5),
			VerificationRate:  getenvFloat("VERIFICATION_RATE", 1.0/60),
			VerificationBurst: getenvInt("VERIFICATION_BURST", 3),
		},
		Bootstrap: BootstrapConfig{
			AdminUsername: getenv("BOOTSTRAP_ADMIN_USERNAME", "admin"),
			AdminEmail:    getenv("BOOTSTRAP_ADMIN_EMAIL", "admin@localhost"),
			AdminPassword: getenv("BOOTSTRAP_ADMIN_PASSWORD", ""),
		},
	}

	return cfg
}

// UsesKafka reports whether stock events go through Kafka.
func (c Config) UsesKafka() bool {
	return c.Events.Driver == EventsDriverKafka
}

// otlpProtocol lets the traces-specific variable override the shared one.
func otlpProtocol() string {
	protocol := getenv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc")
	if traces := strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_TRACES_PROTOCOL")); traces != "" {
		protocol = traces
	}
	return strings.ToLower(strings.TrimSpace(protocol))
}

func normalizeEventsDriver(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case EventsDriverKafka:
		return EventsDriverKafka
	default:
		return EventsDriverMemory
	}
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}
