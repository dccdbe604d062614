package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration. The same file shape
// is used by all three services; each one reads only the sections it needs.
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Database     DatabaseConfig     `yaml:"database"`
	Remote       RemoteConfig       `yaml:"remote"`
	Reservations ReservationsConfig `yaml:"reservations"`
	Sweeper      SweeperConfig      `yaml:"sweeper"`
	Push         PushConfig         `yaml:"push"`
	WorkerPool   WorkerPoolConfig   `yaml:"worker_pool"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"` // postgres or sqlite
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
	LogSQL                 bool   `yaml:"log_sql"`
}

// RemoteConfig lists the leaf services the orchestrator calls.
type RemoteConfig struct {
	Rooms    ServiceEndpoint `yaml:"rooms"`
	Students ServiceEndpoint `yaml:"students"`
}

// ServiceEndpoint describes how to reach one remote service.
type ServiceEndpoint struct {
	BaseURL        string        `yaml:"base_url"`
	TimeoutSeconds int           `yaml:"timeout_seconds"`
	Timeout        time.Duration `yaml:"-"`
	HTTPProxy      string        `yaml:"http_proxy"`
	Breaker        BreakerConfig `yaml:"breaker"`
}

// BreakerConfig tunes the circuit breaker wrapped around every remote operation.
type BreakerConfig struct {
	FailureThreshold    uint32        `yaml:"failure_threshold"`
	OpenTimeoutSeconds  int           `yaml:"open_timeout_seconds"`
	OpenTimeout         time.Duration `yaml:"-"`
	HalfOpenMaxRequests uint32        `yaml:"half_open_max_requests"`
	IntervalSeconds     int           `yaml:"interval_seconds"`
	Interval            time.Duration `yaml:"-"`
}

// ReservationsConfig holds orchestrator settings.
type ReservationsConfig struct {
	// Timezone decides which calendar day "today" is when rejecting past check-ins.
	Timezone string         `yaml:"timezone"`
	Location *time.Location `yaml:"-"`
}

// SweeperConfig holds the configuration of the lifecycle sweeper.
type SweeperConfig struct {
	Enabled         bool          `yaml:"enabled"`
	IntervalSeconds int           `yaml:"interval_seconds"`
	Interval        time.Duration `yaml:"-"` // Ignored by YAML parser
	AutoActivate    bool          `yaml:"auto_activate"`
	AutoComplete    bool          `yaml:"auto_complete"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// Enabled reports whether VAPID keys are configured.
func (p PushConfig) Enabled() bool {
	return p.PublicKey != "" && p.PrivateKey != ""
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size      int `yaml:"size"`
	QueueSize int `yaml:"queue_size"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.ApplyDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyDefaults fills unset values and derives the durations and location.
func (cfg *Config) ApplyDefaults() error {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}

	applyEndpointDefaults(&cfg.Remote.Rooms)
	applyEndpointDefaults(&cfg.Remote.Students)

	if cfg.Reservations.Timezone == "" {
		cfg.Reservations.Timezone = "UTC"
	}
	loc, err := time.LoadLocation(cfg.Reservations.Timezone)
	if err != nil {
		return err
	}
	cfg.Reservations.Location = loc

	if cfg.Sweeper.IntervalSeconds <= 0 {
		cfg.Sweeper.IntervalSeconds = 3600
	}
	cfg.Sweeper.Interval = time.Duration(cfg.Sweeper.IntervalSeconds) * time.Second

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}
	if cfg.WorkerPool.QueueSize <= 0 {
		cfg.WorkerPool.QueueSize = 64
	}
	return nil
}

func applyEndpointDefaults(e *ServiceEndpoint) {
	if e.TimeoutSeconds <= 0 {
		e.TimeoutSeconds = 5
	}
	e.Timeout = time.Duration(e.TimeoutSeconds) * time.Second

	b := &e.Breaker
	if b.FailureThreshold == 0 {
		b.FailureThreshold = 5
	}
	if b.OpenTimeoutSeconds <= 0 {
		b.OpenTimeoutSeconds = 30
	}
	b.OpenTimeout = time.Duration(b.OpenTimeoutSeconds) * time.Second
	if b.HalfOpenMaxRequests == 0 {
		b.HalfOpenMaxRequests = 1
	}
	if b.IntervalSeconds > 0 {
		b.Interval = time.Duration(b.IntervalSeconds) * time.Second
	}
}
