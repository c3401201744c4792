package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/cwrk-planet/thread-service/internal/domain"

	"github.com/caarlos0/env/v11"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

type GRPC struct {
	Addr string `yaml:"addr" env:"GRPC_ADDR"`
}

type HTTP struct {
	Addr            string   `yaml:"addr" env:"HTTP_ADDR"`
	CORSOrigins     []string `yaml:"corsOrigins" env:"HTTP_CORS_ORIGINS" envSeparator:","`
	ReadTimeout     string   `yaml:"readTimeout" env:"HTTP_READ_TIMEOUT"`
	ShutdownTimeout string   `yaml:"shutdownTimeout" env:"HTTP_SHUTDOWN_TIMEOUT"`
}

type Logging struct {
	Env       string `yaml:"env" env:"APP_ENV"`              // dev|stage|prod
	Service   string `yaml:"service"`                        // thread-service
	Version   string `yaml:"version" env:"APP_VERSION"`      // v0.1.0
	Backend   string `yaml:"backend" env:"LOG_BACKEND"`      // std|zap
	AddSource bool   `yaml:"addSource" env:"LOG_ADD_SOURCE"` // false|true
	Debug     bool   `yaml:"debug" env:"LOG_DEBUG"`          // false|true
}

type Postgres struct {
	DSN      string `yaml:"dsn" env:"POSTGRES_DSN"`
	MaxConns int32  `yaml:"maxConns" env:"POSTGRES_MAX_CONNS"`
	MinConns int32  `yaml:"minConns" env:"POSTGRES_MIN_CONNS"`
}

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Storage struct {
	Driver string `yaml:"driver" env:"STORAGE_DRIVER"` // postgres|memory
}

// Features - флаги в файле; не указанный флаг считается включённым.
type Features struct {
	Reactions          *bool `yaml:"reactions" env:"FEATURE_REACTIONS"`
	Calling            *bool `yaml:"calling" env:"FEATURE_CALLING"`
	Broadcasting       *bool `yaml:"broadcasting" env:"FEATURE_BROADCASTING"`
	Events             *bool `yaml:"events" env:"FEATURE_EVENTS"`
	MaxUniqueReactions int   `yaml:"maxUniqueReactions" env:"FEATURE_MAX_UNIQUE_REACTIONS"`
}

type Presence struct {
	OnlineWindow    string `yaml:"onlineWindow" env:"PRESENCE_ONLINE_WINDOW"`
	BroadcastStatus bool   `yaml:"broadcastStatus" env:"PRESENCE_BROADCAST_STATUS"`
}

type Events struct {
	Buffer      int    `yaml:"buffer" env:"EVENTS_BUFFER"`
	SinkTimeout string `yaml:"sinkTimeout" env:"EVENTS_SINK_TIMEOUT"`
}

type Audit struct {
	Enabled bool   `yaml:"enabled" env:"AUDIT_ENABLED"`
	Dir     string `yaml:"dir" env:"AUDIT_DIR"`
	// Readers - кому доступен /api/admin/audit, записи вида "user:1".
	Readers []string `yaml:"readers" env:"AUDIT_READERS" envSeparator:","`
}

// ReaderRefs - Readers после validate(); неразборчивые записи туда не доходят.
func (a Audit) ReaderRefs() []domain.ActorRef {
	return lo.FilterMap(a.Readers, func(s string, _ int) (domain.ActorRef, bool) {
		ref, err := domain.ParseActorRef(s)
		return ref, err == nil
	})
}

type WebSocket struct {
	PingInterval string `yaml:"pingInterval" env:"WS_PING_INTERVAL"`
	SendQueue    int    `yaml:"sendQueue" env:"WS_SEND_QUEUE"`
}

type Config struct {
	HTTP      HTTP      `yaml:"http"`
	GRPC      GRPC      `yaml:"grpc"`
	Logging   Logging   `yaml:"logging"`
	Postgres  Postgres  `yaml:"postgres"`
	Storage   Storage   `yaml:"storage"`
	Features  Features  `yaml:"features"`
	Presence  Presence  `yaml:"presence"`
	Events    Events    `yaml:"events"`
	Audit     Audit     `yaml:"audit"`
	WebSocket WebSocket `yaml:"websocket"`
}

// Path - CONFIG_PATH или ./config/config.yaml.
func Path() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "./config/config.yaml"
}

func LoadConfig() (*Config, error) {
	return Load(Path())
}

// Load читает yaml, затем переменные окружения поверх файла.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := ParseEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func (c *Config) validate() error {
	if c.HTTP.Addr == "" {
		return errors.New("http.addr is required")
	}
	if c.GRPC.Addr == "" {
		return errors.New("grpc.addr is required")
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = DriverPostgres
	}
	switch c.Storage.Driver {
	case DriverPostgres:
		if c.Postgres.DSN == "" {
			return errors.New("postgres.dsn is required")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("storage.driver %q is not supported", c.Storage.Driver)
	}
	if c.Audit.Enabled && c.Audit.Dir == "" {
		return errors.New("audit.dir is required when audit is enabled")
	}
	for _, r := range c.Audit.Readers {
		if _, err := domain.ParseActorRef(r); err != nil {
			return fmt.Errorf("audit.readers: %w", err)
		}
	}
	if c.Features.MaxUniqueReactions < 0 {
		return errors.New("features.maxUniqueReactions must not be negative")
	}

	// установка дефолтов, если значения не указаны
	if c.Logging.Service == "" {
		c.Logging.Service = "thread-service"
	}
	if c.Logging.Env == "" {
		c.Logging.Env = "dev"
	}
	if c.Logging.Version == "" {
		c.Logging.Version = "v0.1.0"
	}
	if c.Logging.Backend == "" {
		c.Logging.Backend = "std"
	}
	if c.Events.Buffer <= 0 {
		c.Events.Buffer = 256
	}
	if c.WebSocket.SendQueue <= 0 {
		c.WebSocket.SendQueue = 64
	}
	return nil
}

func (h HTTP) ReadTimeoutOr(def time.Duration) time.Duration {
	return parseDurationOr(def, h.ReadTimeout)
}

func (h HTTP) ShutdownTimeoutOr(def time.Duration) time.Duration {
	return parseDurationOr(def, h.ShutdownTimeout)
}

func (p Presence) OnlineWindowOr(def time.Duration) time.Duration {
	return parseDurationOr(def, p.OnlineWindow)
}

func (e Events) SinkTimeoutOr(def time.Duration) time.Duration {
	return parseDurationOr(def, e.SinkTimeout)
}

func (w WebSocket) PingIntervalOr(def time.Duration) time.Duration {
	return parseDurationOr(def, w.PingInterval)
}

// helper для парсинга timeout-ов
func parseDurationOr(def time.Duration, s string) time.Duration {
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return def
}
