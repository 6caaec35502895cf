package config

import (
	"log/slog"
	"time"
)

const (
	DefaultIngestHost    = "eu.i.posthog.com"
	DefaultAssetsHost    = "eu-assets.i.posthog.com"
	DefaultBlocklistPath = "blocklist.json"
)

// NewDefaultConfig creates a new Config with sensible defaults. The admin
// key has no default and must come from the file or the environment.
func NewDefaultConfig() *Config {
	return &Config{
		Env: EnvDevelopment,
		Server: Server{
			Addr:                    ":3010",
			ShutdownGracefulTimeout: Duration{Duration: 15 * time.Second},
			ReadTimeout:             Duration{Duration: 30 * time.Second},
			ReadHeaderTimeout:       Duration{Duration: 5 * time.Second},
			WriteTimeout:            Duration{Duration: 60 * time.Second},
			IdleTimeout:             Duration{Duration: 2 * time.Minute},
		},
		Upstream: Upstream{
			IngestHost: DefaultIngestHost,
			AssetsHost: DefaultAssetsHost,
		},
		Blocklist: Blocklist{
			Path:  DefaultBlocklistPath,
			Watch: true,
		},
		Cache: Cache{
			Activated: true,
			Level:     "small",
			TTL:       Duration{Duration: 5 * time.Minute},
		},
		Stats: Stats{
			Activated:  true,
			K:          20,
			WindowSize: 60,
			Width:      1024,
			Depth:      3,
			TickSize:   1000,
		},
		Cors: Cors{
			Activated: true,
			MaxAge:    Duration{Duration: 24 * time.Hour},
		},
		Log: Log{
			Level: LogLevel{Level: slog.LevelInfo},
			Request: LogRequest{
				Activated: true,
				Limits: LogRequestLimits{
					URILength:       512, // Minimum: 64
					UserAgentLength: 256, // Minimum: 32
					RefererLength:   512, // Minimum: 64
					RemoteIPLength:  64,  // Minimum: 15
				},
			},
		},
		Metrics: Metrics{
			Activated:  true,
			Endpoint:   "/metrics",
			AllowedIPs: []string{"127.0.0.1", "::1"}, // Only exact IPs allowed, no CIDR ranges
		},
		Notifier: Notifier{
			Discord: Discord{
				Activated:    false,
				WebhookURL:   "",
				APIRateLimit: Duration{Duration: 2 * time.Second},
				APIBurst:     1,
				SendTimeout:  Duration{Duration: 10 * time.Second},
			},
		},
	}
}
