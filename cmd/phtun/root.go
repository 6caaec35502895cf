package main

import (
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

const defaultURL = "http://localhost:3010"

// cli carries the state shared by every command.
type cli struct {
	url        string
	key        string
	configPath string
	httpClient *http.Client
}

func (c *cli) client() *client {
	return &client{baseURL: c.url, key: c.key, httpClient: c.httpClient}
}

// newRootCmd builds the command tree. Flag defaults come from the
// environment (through getenv), then the config file, then built-ins.
func newRootCmd(getenv func(string) string) *cobra.Command {
	c := &cli{
		configPath: configPath(getenv),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}

	// A broken config file must not prevent `phtun config init` from
	// rewriting it, so load errors only drop the file defaults.
	fileCfg, err := loadConfig(c.configPath)
	if err != nil {
		fileCfg = &cliConfig{}
	}

	defaultKey := firstNonEmpty(getenv("ADMIN_API_KEY"), fileCfg.Key)
	defaultTunnelURL := firstNonEmpty(getenv("TUNNEL_URL"), fileCfg.URL, defaultURL)

	rootCmd := &cobra.Command{
		Use:   "phtun",
		Short: "PostHog Tunnel admin CLI",
		Long: `phtun manages the blocklist of a running PostHog tunnel through its
admin API.

Examples:
  phtun list                              Show blocked identifiers and domains
  phtun block phc_abc --label "spam"      Block an identifier
  phtun domain block evil.com             Block a domain for every identifier
  phtun domain block phc_abc evil.com     Block a domain for one identifier
  phtun config set key <admin key>        Store the admin key`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&c.url, "url", defaultTunnelURL, "tunnel server URL (env TUNNEL_URL)")
	rootCmd.PersistentFlags().StringVar(&c.key, "key", defaultKey, "admin API key (env ADMIN_API_KEY)")

	rootCmd.AddCommand(
		newListCmd(c),
		newBlockCmd(c),
		newUnblockCmd(c),
		newDomainCmd(c),
		newConfigCmd(c),
	)
	return rootCmd
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
