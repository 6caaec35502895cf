package config

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sethvargo/go-envconfig"
)

// Reload rereads the configuration from the file the current config was
// loaded from and publishes it through provider. Fields that only take effect
// at startup are reported in the log and keep their running value until the
// next restart.
func Reload(ctx context.Context, provider *Provider, lookuper envconfig.Lookuper, logger *slog.Logger) error {
	current := provider.Get()

	logger.Debug("Reload: reading configuration", "source", current.Source)
	newCfg, err := Load(ctx, current.Source, lookuper)
	if err != nil {
		logger.Error("Reload: failed to load configuration", "source", current.Source, "error", err)
		return fmt.Errorf("reload: %w", err)
	}

	if changed := checkChangedRestartFields(current, newCfg); len(changed) > 0 {
		logger.Warn("Reload: some changes require a restart to take effect", "fields", changed)
	}

	provider.Update(newCfg)
	logger.Info("Reload: configuration successfully reloaded", "source", current.Source)
	return nil
}

// checkChangedRestartFields lists the fields that differ between oldCfg and newCfg
// and are only read when the server starts.
func checkChangedRestartFields(oldCfg, newCfg *Config) []string {
	changed := []string{}
	if oldCfg.Server.Addr != newCfg.Server.Addr {
		changed = append(changed, "Server.Addr")
	}
	if oldCfg.Server.CertFile != newCfg.Server.CertFile {
		changed = append(changed, "Server.CertFile")
	}
	if oldCfg.Server.KeyFile != newCfg.Server.KeyFile {
		changed = append(changed, "Server.KeyFile")
	}
	if oldCfg.Blocklist.Path != newCfg.Blocklist.Path {
		changed = append(changed, "Blocklist.Path")
	}
	if oldCfg.Blocklist.Watch != newCfg.Blocklist.Watch {
		changed = append(changed, "Blocklist.Watch")
	}
	if oldCfg.Cache != newCfg.Cache {
		changed = append(changed, "Cache")
	}
	if oldCfg.Stats != newCfg.Stats {
		changed = append(changed, "Stats")
	}
	if oldCfg.Notifier.Discord != newCfg.Notifier.Discord {
		changed = append(changed, "Notifier.Discord")
	}
	return changed
}
