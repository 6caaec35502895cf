package config

import (
	"context"
	"fmt"
	"net"

	"github.com/BurntSushi/toml"
	"github.com/sethvargo/go-envconfig"
)

// Load builds the configuration: defaults, then the TOML file at path (when
// path is not empty), then environment overrides, then validation.
func Load(ctx context.Context, path string, lookuper envconfig.Lookuper) (*Config, error) {
	cfg := NewDefaultConfig()

	if path != "" {
		md, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, fmt.Errorf("config: failed to decode %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("config: unknown keys in %s: %v", path, undecoded)
		}
		cfg.Source = path
	}

	if err := ApplyEnv(ctx, cfg, lookuper); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}
	return cfg, nil
}

// envOverrides are the variables understood by earlier deployments of the
// tunnel. Unset or empty variables leave the file value untouched.
type envOverrides struct {
	AdminAPIKey   string `env:"ADMIN_API_KEY"`
	Port          string `env:"PORT"`
	Env           string `env:"ENV"`
	IngestHost    string `env:"POSTHOG_HOST"`
	AssetsHost    string `env:"POSTHOG_ASSETS_HOST"`
	CertFile      string `env:"SSL_CERT_PATH"`
	KeyFile       string `env:"SSL_KEY_PATH"`
	BlocklistPath string `env:"BLOCKLIST_PATH"`
}

// ApplyEnv overrides cfg with environment variables read through lookuper.
// A nil lookuper reads the process environment.
func ApplyEnv(ctx context.Context, cfg *Config, lookuper envconfig.Lookuper) error {
	if lookuper == nil {
		lookuper = envconfig.OsLookuper()
	}

	var env envOverrides
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &env,
		Lookuper: lookuper,
	}); err != nil {
		return fmt.Errorf("config: failed to read environment: %w", err)
	}

	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.Admin.APIKey, env.AdminAPIKey)
	set(&cfg.Env, env.Env)
	set(&cfg.Upstream.IngestHost, env.IngestHost)
	set(&cfg.Upstream.AssetsHost, env.AssetsHost)
	set(&cfg.Server.CertFile, env.CertFile)
	set(&cfg.Server.KeyFile, env.KeyFile)
	set(&cfg.Blocklist.Path, env.BlocklistPath)

	if env.Port != "" {
		host, _, err := net.SplitHostPort(cfg.Server.Addr)
		if err != nil {
			host = ""
		}
		cfg.Server.Addr = net.JoinHostPort(host, env.Port)
	}
	return nil
}
