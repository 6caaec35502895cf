package config

import (
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

type Config struct {
	// Env is one of development, production or test.
	Env string `toml:"env"`

	Server    Server    `toml:"server"`
	Upstream  Upstream  `toml:"upstream"`
	Admin     Admin     `toml:"admin"`
	Blocklist Blocklist `toml:"blocklist"`
	Cache     Cache     `toml:"cache"`
	Stats     Stats     `toml:"stats"`
	Cors      Cors      `toml:"cors"`
	Log       Log       `toml:"log"`
	Metrics   Metrics   `toml:"metrics"`
	Notifier  Notifier  `toml:"notifier"`

	// Source is the file the config was read from, empty for defaults.
	Source string `toml:"-"`
}

type Server struct {
	Addr                    string   `toml:"addr"`
	ShutdownGracefulTimeout Duration `toml:"shutdown_graceful_timeout"`
	ReadTimeout             Duration `toml:"read_timeout"`
	ReadHeaderTimeout       Duration `toml:"read_header_timeout"`
	WriteTimeout            Duration `toml:"write_timeout"`
	IdleTimeout             Duration `toml:"idle_timeout"`

	// CertFile and KeyFile enable TLS when both are set.
	CertFile string `toml:"cert_file"`
	KeyFile  string `toml:"key_file"`
}

func (s Server) TLSEnabled() bool {
	return s.CertFile != "" && s.KeyFile != ""
}

// Upstream holds the two hosts requests are forwarded to. They are host
// names (optionally with port), never URLs.
type Upstream struct {
	IngestHost string `toml:"ingest_host"`
	AssetsHost string `toml:"assets_host"`
}

type Admin struct {
	// APIKey is compared in constant time with the bearer token.
	APIKey string `toml:"api_key"`
	// APIKeyHash is a bcrypt hash of the key, used instead of APIKey when set.
	APIKeyHash string `toml:"api_key_hash"`
}

type Blocklist struct {
	Path string `toml:"path"`
	// Watch reloads the blocklist when the file changes on disk.
	Watch bool `toml:"watch"`
}

// Cache memoizes blocklist decisions.
type Cache struct {
	Activated bool     `toml:"activated"`
	Level     string   `toml:"level"`
	TTL       Duration `toml:"ttl"`
}

// Stats tracks the busiest identifiers in a sliding window.
type Stats struct {
	Activated  bool   `toml:"activated"`
	K          int    `toml:"k"`
	WindowSize int    `toml:"window_size"`
	Width      int    `toml:"width"`
	Depth      int    `toml:"depth"`
	TickSize   uint64 `toml:"tick_size"`
}

type Cors struct {
	Activated bool `toml:"activated"`
	// AllowedOrigins restricts the reflected origins. Empty allows any origin.
	AllowedOrigins []string `toml:"allowed_origins"`
	MaxAge         Duration `toml:"max_age"`
}

type Log struct {
	Level   LogLevel   `toml:"level"`
	Request LogRequest `toml:"request"`
}

type LogRequest struct {
	Activated bool             `toml:"activated"`
	Limits    LogRequestLimits `toml:"limits"`
}

type LogRequestLimits struct {
	URILength       int `toml:"uri_length"`
	UserAgentLength int `toml:"user_agent_length"`
	RefererLength   int `toml:"referer_length"`
	RemoteIPLength  int `toml:"remote_ip_length"`
}

type Metrics struct {
	Activated  bool     `toml:"activated"`
	Endpoint   string   `toml:"endpoint"`
	AllowedIPs []string `toml:"allowed_ips"`
}

type Notifier struct {
	Discord Discord `toml:"discord"`
}

type Discord struct {
	Activated    bool     `toml:"activated"`
	WebhookURL   string   `toml:"webhook_url"`
	APIRateLimit Duration `toml:"api_rate_limit"`
	APIBurst     int      `toml:"api_burst"`
	SendTimeout  Duration `toml:"send_timeout"`
}

// Duration is a time.Duration that reads and writes as a TOML string.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

type LogLevel struct {
	slog.Level
}

func (l *LogLevel) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		return fmt.Errorf("empty log level")
	}
	return l.Level.UnmarshalText([]byte(strings.ToUpper(string(text))))
}

func (l LogLevel) MarshalText() ([]byte, error) {
	return []byte(strings.ToLower(l.Level.String())), nil
}

// Provider holds the current configuration. Get and Update are safe for
// concurrent use.
type Provider struct {
	value atomic.Value
}

func NewProvider(initialConfig *Config) *Provider {
	if initialConfig == nil {
		panic("initial config cannot be nil")
	}
	p := &Provider{}
	p.value.Store(initialConfig)
	return p
}

func (p *Provider) Get() *Config {
	return p.value.Load().(*Config)
}

func (p *Provider) Update(newConfig *Config) {
	p.value.Store(newConfig)
}
