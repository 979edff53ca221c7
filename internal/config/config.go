package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/pflag"
)

// Delivery transports understood by the orders service.
const (
	TransportHTTP  = "http"
	TransportKafka = "kafka"
)

// Config stores settings shared by every binary.
type Config struct {
	Port     int
	Log      Log
	DB       DB
	Redis    Redis
	Kafka    Kafka
	Services Services
	Gateway  Gateway
	Saga     Saga
	Delivery Delivery
}

// Log stores logger settings.
type Log struct {
	Level  string
	Format string
}

// DB stores postgres connection settings.
type DB struct {
	Host string
	Port string
	User string
	Pass string
	Name string
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

// Redis stores redis connection settings.
type Redis struct {
	Addr string
	DB   int
}

// Kafka stores order-event topic settings. Empty Brokers disables kafka.
type Kafka struct {
	Brokers []string
	Topic   string
	GroupID string
}

// Services stores base URLs of the peer services.
type Services struct {
	InventoryURL string
	OrdersURL    string
	DeliveryURL  string
}

// Gateway stores RPC retry settings.
type Gateway struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Timeout     time.Duration
}

// Saga stores reservation/restock confirmation settings.
type Saga struct {
	GracePeriod      time.Duration
	Deadline         time.Duration
	RetryInterval    time.Duration
	Workers          int
	QueueSize        int
	RecoveryInterval time.Duration
}

// Delivery stores scheduler settings.
type Delivery struct {
	CapacityPerDay     int
	TickInterval       time.Duration
	ProcessingSchedule string
	OnRouteSchedule    string
	DeliveredSchedule  string
	Location           string
	Transport          string
}

// Load reads configuration in order: .env (if present) → environment → flags.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		log.Printf("warning: .env not loaded: %v", err)
	}

	cfg := &Config{
		Port:     DefaultPort(),
		Log:      DefaultLog(),
		DB:       DefaultDB(),
		Redis:    DefaultRedis(),
		Kafka:    DefaultKafka(),
		Services: DefaultServices(),
		Gateway:  DefaultGateway(),
		Saga:     DefaultSaga(),
		Delivery: DefaultDelivery(),
	}

	r := envReader{}
	cfg.Port = r.int("PORT", cfg.Port)

	cfg.Log.Level = r.str("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = r.str("LOG_FORMAT", cfg.Log.Format)

	cfg.DB.Host = r.str("POSTGRES_HOST", cfg.DB.Host)
	cfg.DB.Port = r.str("POSTGRES_PORT", cfg.DB.Port)
	cfg.DB.User = r.str("POSTGRES_USER", cfg.DB.User)
	cfg.DB.Pass = r.str("POSTGRES_PASSWORD", cfg.DB.Pass)
	cfg.DB.Name = r.str("POSTGRES_DB", cfg.DB.Name)
	if _, err := strconv.Atoi(cfg.DB.Port); err != nil {
		r.fail("POSTGRES_PORT", cfg.DB.Port)
	}

	cfg.Redis.Addr = r.str("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.DB = r.int("REDIS_DB", cfg.Redis.DB)

	cfg.Kafka.Brokers = splitCSV(r.str("KAFKA_BROKERS", strings.Join(cfg.Kafka.Brokers, ",")))
	cfg.Kafka.Topic = r.str("KAFKA_ORDERS_TOPIC", cfg.Kafka.Topic)
	cfg.Kafka.GroupID = r.str("KAFKA_GROUP_ID", cfg.Kafka.GroupID)

	cfg.Services.InventoryURL = r.str("INVENTORY_SERVICE_URL", cfg.Services.InventoryURL)
	cfg.Services.OrdersURL = r.str("ORDERS_SERVICE_URL", cfg.Services.OrdersURL)
	cfg.Services.DeliveryURL = r.str("DELIVERY_SERVICE_URL", cfg.Services.DeliveryURL)

	cfg.Gateway.MaxAttempts = r.int("GATEWAY_MAX_ATTEMPTS", cfg.Gateway.MaxAttempts)
	cfg.Gateway.BaseDelay = r.duration("GATEWAY_BASE_DELAY", cfg.Gateway.BaseDelay)
	cfg.Gateway.MaxDelay = r.duration("GATEWAY_MAX_DELAY", cfg.Gateway.MaxDelay)
	cfg.Gateway.Timeout = r.duration("GATEWAY_TIMEOUT", cfg.Gateway.Timeout)

	cfg.Saga.GracePeriod = r.duration("SAGA_GRACE_PERIOD", cfg.Saga.GracePeriod)
	cfg.Saga.Deadline = r.duration("SAGA_DEADLINE", cfg.Saga.Deadline)
	cfg.Saga.RetryInterval = r.duration("SAGA_RETRY_INTERVAL", cfg.Saga.RetryInterval)
	cfg.Saga.Workers = r.int("SAGA_WORKERS", cfg.Saga.Workers)
	cfg.Saga.QueueSize = r.int("SAGA_QUEUE_SIZE", cfg.Saga.QueueSize)
	cfg.Saga.RecoveryInterval = r.duration("SAGA_RECOVERY_INTERVAL", cfg.Saga.RecoveryInterval)

	cfg.Delivery.CapacityPerDay = r.int("DELIVERY_CAPACITY_PER_DAY", cfg.Delivery.CapacityPerDay)
	cfg.Delivery.TickInterval = r.duration("DELIVERY_TICK_INTERVAL", cfg.Delivery.TickInterval)
	cfg.Delivery.ProcessingSchedule = r.str("DELIVERY_PROCESSING_SCHEDULE", cfg.Delivery.ProcessingSchedule)
	cfg.Delivery.OnRouteSchedule = r.str("DELIVERY_ON_ROUTE_SCHEDULE", cfg.Delivery.OnRouteSchedule)
	cfg.Delivery.DeliveredSchedule = r.str("DELIVERY_DELIVERED_SCHEDULE", cfg.Delivery.DeliveredSchedule)
	cfg.Delivery.Location = r.str("DELIVERY_TIMEZONE", cfg.Delivery.Location)
	cfg.Delivery.Transport = strings.ToLower(r.str("DELIVERY_TRANSPORT", cfg.Delivery.Transport))

	if r.err != nil {
		return nil, r.err
	}

	fs := pflag.NewFlagSet(os.Args[0], pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.IntVarP(&cfg.Port, "port", "p", cfg.Port, "port to listen on")
	if err := fs.Parse(os.Args[1:]); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// TimeLocation resolves the scheduler timezone.
func (d Delivery) TimeLocation() (*time.Location, error) {
	return time.LoadLocation(d.Location)
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.Gateway.MaxAttempts <= 0 {
		return fmt.Errorf("invalid GATEWAY_MAX_ATTEMPTS: %d", c.Gateway.MaxAttempts)
	}
	if c.Saga.Workers <= 0 || c.Saga.QueueSize <= 0 {
		return fmt.Errorf("invalid saga pool: workers=%d queue=%d", c.Saga.Workers, c.Saga.QueueSize)
	}
	if c.Saga.Deadline < c.Saga.GracePeriod {
		return fmt.Errorf("SAGA_DEADLINE %s is shorter than SAGA_GRACE_PERIOD %s", c.Saga.Deadline, c.Saga.GracePeriod)
	}
	if c.Delivery.CapacityPerDay <= 0 {
		return fmt.Errorf("invalid DELIVERY_CAPACITY_PER_DAY: %d", c.Delivery.CapacityPerDay)
	}
	if c.Delivery.TickInterval <= 0 {
		return fmt.Errorf("invalid DELIVERY_TICK_INTERVAL: %s", c.Delivery.TickInterval)
	}
	for _, spec := range []string{c.Delivery.ProcessingSchedule, c.Delivery.OnRouteSchedule, c.Delivery.DeliveredSchedule} {
		if _, err := cron.ParseStandard(spec); err != nil {
			return fmt.Errorf("invalid delivery schedule %q: %w", spec, err)
		}
	}
	if _, err := c.Delivery.TimeLocation(); err != nil {
		return fmt.Errorf("invalid DELIVERY_TIMEZONE: %w", err)
	}
	switch c.Delivery.Transport {
	case TransportHTTP:
	case TransportKafka:
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("DELIVERY_TRANSPORT=kafka requires KAFKA_BROKERS")
		}
	default:
		return fmt.Errorf("invalid DELIVERY_TRANSPORT: %q", c.Delivery.Transport)
	}
	return nil
}

// envReader collects the first parse error so Load can report it once.
type envReader struct{ err error }

func (r *envReader) str(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func (r *envReader) int(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.fail(key, v)
		return def
	}
	return n
}

func (r *envReader) duration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.fail(key, v)
		return def
	}
	return d
}

func (r *envReader) fail(key, value string) {
	if r.err == nil {
		r.err = fmt.Errorf("invalid %s: %q", key, value)
	}
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
