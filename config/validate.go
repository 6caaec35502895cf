package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

func Validate(cfg *Config) error {
	if err := validateEnv(cfg.Env); err != nil {
		return err
	}
	if err := validateServer(&cfg.Server); err != nil {
		return fmt.Errorf("server config validation failed: %w", err)
	}
	if err := validateUpstream(&cfg.Upstream); err != nil {
		return fmt.Errorf("upstream config validation failed: %w", err)
	}
	if err := validateAdmin(&cfg.Admin); err != nil {
		return fmt.Errorf("admin config validation failed: %w", err)
	}
	if cfg.Blocklist.Path == "" {
		return errors.New("blocklist path cannot be empty")
	}
	if err := validateCache(&cfg.Cache); err != nil {
		return fmt.Errorf("cache config validation failed: %w", err)
	}
	if err := validateStats(&cfg.Stats); err != nil {
		return fmt.Errorf("stats config validation failed: %w", err)
	}
	if err := validateMetrics(&cfg.Metrics); err != nil {
		return fmt.Errorf("metrics config validation failed: %w", err)
	}
	if err := validateDiscord(&cfg.Notifier.Discord); err != nil {
		return fmt.Errorf("discord config validation failed: %w", err)
	}
	return nil
}

func validateEnv(env string) error {
	switch env {
	case EnvDevelopment, EnvProduction, EnvTest:
		return nil
	}
	return fmt.Errorf("invalid env %q: must be one of %s, %s, %s", env, EnvDevelopment, EnvProduction, EnvTest)
}

// validateServer checks the Server configuration section.
// It ensures the Addr field is not empty and contains a valid host:port or :port format.
//
// Allowed formats:
//   - "host:port" (e.g., "example.com:8080", "127.0.0.1:8080", "[::1]:8080")
//   - ":port"     (e.g., ":3010", listens on all interfaces)
//
// The port part is mandatory.
func validateServer(server *Server) error {
	if server.Addr == "" {
		return fmt.Errorf("server address (Addr) cannot be empty")
	}

	_, port, err := net.SplitHostPort(server.Addr)
	if err != nil {
		return fmt.Errorf("invalid server address format '%s': %w", server.Addr, err)
	}
	if port == "" {
		return fmt.Errorf("server address '%s' must include a port", server.Addr)
	}
	if _, err := net.LookupPort("tcp", port); err != nil {
		return fmt.Errorf("invalid port '%s' in server address '%s': %w", port, server.Addr, err)
	}

	if (server.CertFile == "") != (server.KeyFile == "") {
		return errors.New("cert_file and key_file must be set together")
	}
	return nil
}

func validateUpstream(u *Upstream) error {
	for name, host := range map[string]string{"ingest_host": u.IngestHost, "assets_host": u.AssetsHost} {
		if host == "" {
			return fmt.Errorf("%s cannot be empty", name)
		}
		if strings.ContainsAny(host, "/?#@ ") {
			return fmt.Errorf("%s must be a bare host name, got %q", name, host)
		}
	}
	return nil
}

func validateAdmin(a *Admin) error {
	if a.APIKey == "" && a.APIKeyHash == "" {
		return errors.New("admin api key is required (set ADMIN_API_KEY or admin.api_key)")
	}
	if a.APIKeyHash != "" && !strings.HasPrefix(a.APIKeyHash, "$2") {
		return errors.New("admin api_key_hash must be a bcrypt hash")
	}
	return nil
}

var cacheLevels = map[string]bool{"small": true, "medium": true, "large": true, "very-large": true}

func validateCache(c *Cache) error {
	if !c.Activated {
		return nil
	}
	if !cacheLevels[c.Level] {
		return fmt.Errorf("invalid cache level %q", c.Level)
	}
	if c.TTL.Duration <= 0 {
		return errors.New("cache ttl must be positive")
	}
	return nil
}

func validateStats(s *Stats) error {
	if !s.Activated {
		return nil
	}
	if s.K <= 0 || s.WindowSize <= 0 || s.Width <= 0 || s.Depth <= 0 || s.TickSize == 0 {
		return errors.New("k, window_size, width, depth and tick_size must be positive")
	}
	return nil
}

func validateMetrics(m *Metrics) error {
	if !m.Activated {
		return nil
	}
	if !strings.HasPrefix(m.Endpoint, "/") {
		return fmt.Errorf("metrics endpoint must start with '/', got %q", m.Endpoint)
	}
	for _, ip := range m.AllowedIPs {
		if net.ParseIP(ip) == nil {
			return fmt.Errorf("invalid allowed ip %q", ip)
		}
	}
	return nil
}

func validateDiscord(d *Discord) error {
	if !d.Activated {
		return nil
	}
	if !strings.HasPrefix(d.WebhookURL, "https://") {
		return errors.New("webhook_url must be an https URL when discord is activated")
	}
	if d.APIBurst <= 0 {
		return errors.New("api_burst must be positive")
	}
	return nil
}
