package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// Config stores service and worker settings.
type Config struct {
	Port     int
	GRPCPort int
	LogLevel string

	DB           DB
	Redis        Redis
	Kafka        Kafka
	Notify       Notify
	Geocoder     Geocoder
	Availability Availability
	Countdown    Countdown
	Orders       Orders
	RateLimit    RateLimit
	Pprof        Pprof
}

// DB holds PostgreSQL connection settings.
type DB struct {
	Host        string
	Port        string
	User        string
	Pass        string
	Name        string
	AutoMigrate bool
}

// DSN builds a postgres connection string.
func (d DB) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Pass),
		Host:     d.Host + ":" + d.Port,
		Path:     "/" + d.Name,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// Redis holds countdown mark store settings. An empty Addr selects the in-memory store.
type Redis struct {
	Addr     string
	Password string
	DB       int
}

// Kafka holds upstream order event consumer settings.
type Kafka struct {
	Brokers []string
	GroupID string
	Topic   string
}

// Notification drivers.
const (
	DriverLog      = "log"
	DriverRabbitMQ = "rabbitmq"
	DriverNATS     = "nats"
)

// Notify holds notification delivery settings.
type Notify struct {
	Driver         string
	RabbitURL      string
	Exchange       string
	NATSURL        string
	Subject        string
	PublishTimeout time.Duration
}

// Geocoder holds geocoding provider settings.
type Geocoder struct {
	BaseURL     string
	APIKey      string
	Timeout     time.Duration
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// Availability holds the delivery time model.
type Availability struct {
	BaseMinutes  float64
	MinutesPerKm float64
	TimeZone     string
}

// Location resolves TimeZone.
func (a Availability) Location() (*time.Location, error) {
	return time.LoadLocation(a.TimeZone)
}

// Countdown holds countdown thresholds and watcher settings.
type Countdown struct {
	UrgentMinutes  int
	WarningMinutes int
	ScanInterval   time.Duration
	BatchSize      int
	MarkTTL        time.Duration
}

// Orders holds order lifecycle settings.
type Orders struct {
	ServiceLevelMinutes int
}

// RateLimit holds HTTP rate limiter settings.
type RateLimit struct {
	Enabled    bool
	Rate       float64
	Burst      int
	TTL        time.Duration
	MaxBuckets int
}

// Pprof holds debug server settings.
type Pprof struct {
	Enabled bool
	Addr    string
	User    string
	Pass    string
}

// Load reads configuration in order: .env (if present) → environment → flags.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		log.Printf("warning: .env not loaded: %v", err)
	}

	cfg := Default()
	r := envReader{}

	cfg.Port = r.int("PORT", cfg.Port)
	cfg.GRPCPort = r.int("GRPC_PORT", cfg.GRPCPort)
	cfg.LogLevel = r.str("LOG_LEVEL", cfg.LogLevel)

	cfg.DB.Host = r.str("POSTGRES_HOST", cfg.DB.Host)
	cfg.DB.Port = r.str("POSTGRES_PORT", cfg.DB.Port)
	cfg.DB.User = r.str("POSTGRES_USER", cfg.DB.User)
	cfg.DB.Pass = r.str("POSTGRES_PASSWORD", cfg.DB.Pass)
	cfg.DB.Name = r.str("POSTGRES_DB", cfg.DB.Name)
	cfg.DB.AutoMigrate = r.bool("POSTGRES_AUTO_MIGRATE", cfg.DB.AutoMigrate)

	cfg.Redis.Addr = r.str("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = r.str("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = r.int("REDIS_DB", cfg.Redis.DB)

	cfg.Kafka.Brokers = r.list("KAFKA_BROKERS", cfg.Kafka.Brokers)
	cfg.Kafka.GroupID = r.str("KAFKA_GROUP_ID", cfg.Kafka.GroupID)
	cfg.Kafka.Topic = r.str("KAFKA_ORDERS_TOPIC", cfg.Kafka.Topic)

	cfg.Notify.Driver = strings.ToLower(r.str("NOTIFY_DRIVER", cfg.Notify.Driver))
	cfg.Notify.RabbitURL = r.str("RABBITMQ_URL", cfg.Notify.RabbitURL)
	cfg.Notify.Exchange = r.str("RABBITMQ_EXCHANGE", cfg.Notify.Exchange)
	cfg.Notify.NATSURL = r.str("NATS_URL", cfg.Notify.NATSURL)
	cfg.Notify.Subject = r.str("NATS_SUBJECT", cfg.Notify.Subject)
	cfg.Notify.PublishTimeout = r.duration("NOTIFY_PUBLISH_TIMEOUT", cfg.Notify.PublishTimeout)

	cfg.Geocoder.BaseURL = r.str("GEOCODER_URL", cfg.Geocoder.BaseURL)
	cfg.Geocoder.APIKey = r.str("GEOCODER_API_KEY", cfg.Geocoder.APIKey)
	cfg.Geocoder.Timeout = r.duration("GEOCODER_TIMEOUT", cfg.Geocoder.Timeout)
	cfg.Geocoder.MaxAttempts = r.int("GEOCODER_MAX_ATTEMPTS", cfg.Geocoder.MaxAttempts)
	cfg.Geocoder.BaseDelay = r.duration("GEOCODER_BASE_DELAY", cfg.Geocoder.BaseDelay)
	cfg.Geocoder.MaxDelay = r.duration("GEOCODER_MAX_DELAY", cfg.Geocoder.MaxDelay)

	cfg.Availability.BaseMinutes = r.float("AVAILABILITY_BASE_MINUTES", cfg.Availability.BaseMinutes)
	cfg.Availability.MinutesPerKm = r.float("AVAILABILITY_MINUTES_PER_KM", cfg.Availability.MinutesPerKm)
	cfg.Availability.TimeZone = r.str("AVAILABILITY_TIMEZONE", cfg.Availability.TimeZone)

	cfg.Countdown.UrgentMinutes = r.int("COUNTDOWN_URGENT_MINUTES", cfg.Countdown.UrgentMinutes)
	cfg.Countdown.WarningMinutes = r.int("COUNTDOWN_WARNING_MINUTES", cfg.Countdown.WarningMinutes)
	cfg.Countdown.ScanInterval = r.duration("COUNTDOWN_SCAN_INTERVAL", cfg.Countdown.ScanInterval)
	cfg.Countdown.BatchSize = r.int("COUNTDOWN_BATCH_SIZE", cfg.Countdown.BatchSize)
	cfg.Countdown.MarkTTL = r.duration("COUNTDOWN_MARK_TTL", cfg.Countdown.MarkTTL)

	cfg.Orders.ServiceLevelMinutes = r.int("ORDERS_SERVICE_LEVEL_MINUTES", cfg.Orders.ServiceLevelMinutes)

	cfg.RateLimit.Enabled = r.bool("RATE_LIMIT_ENABLED", cfg.RateLimit.Enabled)
	cfg.RateLimit.Rate = r.float("RATE_LIMIT_RPS", cfg.RateLimit.Rate)
	cfg.RateLimit.Burst = r.int("RATE_LIMIT_BURST", cfg.RateLimit.Burst)
	cfg.RateLimit.TTL = r.duration("RATE_LIMIT_TTL", cfg.RateLimit.TTL)
	cfg.RateLimit.MaxBuckets = r.int("RATE_LIMIT_MAX_BUCKETS", cfg.RateLimit.MaxBuckets)

	cfg.Pprof.Enabled = r.bool("PPROF_ENABLED", cfg.Pprof.Enabled)
	cfg.Pprof.Addr = r.str("PPROF_ADDR", cfg.Pprof.Addr)
	cfg.Pprof.User = r.str("PPROF_USER", cfg.Pprof.User)
	cfg.Pprof.Pass = r.str("PPROF_PASSWORD", cfg.Pprof.Pass)

	if r.err != nil {
		return nil, r.err
	}

	fs := pflag.CommandLine
	// go test and other wrappers pass their own flags
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.IntVar(&cfg.Port, "port", cfg.Port, "HTTP port to listen on")
	fs.IntVar(&cfg.GRPCPort, "grpc-port", cfg.GRPCPort, "gRPC health port to listen on")
	if err := fs.Parse(os.Args[1:]); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.GRPCPort <= 0 || c.GRPCPort > 65535 || c.GRPCPort == c.Port {
		return fmt.Errorf("invalid grpc port: %d", c.GRPCPort)
	}
	if p, err := strconv.Atoi(c.DB.Port); err != nil || p <= 0 || p > 65535 {
		return fmt.Errorf("invalid POSTGRES_PORT: %q", c.DB.Port)
	}
	if _, err := c.Availability.Location(); err != nil {
		return fmt.Errorf("invalid AVAILABILITY_TIMEZONE %q: %w", c.Availability.TimeZone, err)
	}
	if c.Availability.BaseMinutes < 0 || c.Availability.MinutesPerKm < 0 {
		return fmt.Errorf("availability model must be non-negative")
	}
	if c.Countdown.UrgentMinutes <= 0 || c.Countdown.WarningMinutes < c.Countdown.UrgentMinutes {
		return fmt.Errorf("invalid countdown thresholds: urgent=%d warning=%d",
			c.Countdown.UrgentMinutes, c.Countdown.WarningMinutes)
	}
	if c.Countdown.ScanInterval <= 0 {
		return fmt.Errorf("invalid COUNTDOWN_SCAN_INTERVAL: %s", c.Countdown.ScanInterval)
	}
	if c.Orders.ServiceLevelMinutes <= 0 {
		return fmt.Errorf("invalid ORDERS_SERVICE_LEVEL_MINUTES: %d", c.Orders.ServiceLevelMinutes)
	}
	if g := c.Geocoder; g.MaxAttempts < 1 || g.BaseDelay < 0 || g.MaxDelay < g.BaseDelay {
		return fmt.Errorf("invalid geocoder retry: attempts=%d base=%s max=%s", g.MaxAttempts, g.BaseDelay, g.MaxDelay)
	}
	switch c.Notify.Driver {
	case DriverLog:
	case DriverRabbitMQ:
		if c.Notify.RabbitURL == "" {
			return fmt.Errorf("RABBITMQ_URL is required for notify driver %q", c.Notify.Driver)
		}
	case DriverNATS:
		if c.Notify.NATSURL == "" {
			return fmt.Errorf("NATS_URL is required for notify driver %q", c.Notify.Driver)
		}
	default:
		return fmt.Errorf("unknown NOTIFY_DRIVER %q", c.Notify.Driver)
	}
	return nil
}

// envReader keeps the first parse error so Load can report it once.
type envReader struct{ err error }

func (r *envReader) lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (r *envReader) fail(key, v string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("invalid %s=%q: %w", key, v, err)
	}
}

func (r *envReader) str(key, def string) string {
	if v, ok := r.lookup(key); ok {
		return v
	}
	return def
}

func (r *envReader) int(key string, def int) int {
	v, ok := r.lookup(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.fail(key, v, err)
		return def
	}
	return n
}

func (r *envReader) float(key string, def float64) float64 {
	v, ok := r.lookup(key)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		r.fail(key, v, err)
		return def
	}
	return f
}

func (r *envReader) bool(key string, def bool) bool {
	v, ok := r.lookup(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.fail(key, v, err)
		return def
	}
	return b
}

func (r *envReader) duration(key string, def time.Duration) time.Duration {
	v, ok := r.lookup(key)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.fail(key, v, err)
		return def
	}
	if d <= 0 {
		r.fail(key, v, fmt.Errorf("must be positive"))
		return def
	}
	return d
}

func (r *envReader) list(key string, def []string) []string {
	v, ok := r.lookup(key)
	if !ok {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
