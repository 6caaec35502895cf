package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/caasmo/phtunnel/config"
	"github.com/caasmo/phtunnel/notify"
)

type payload struct {
	Content string `json:"content"`
}

const (
	// discordMaxMessageLength is the maximum character limit for a Discord message.
	// Messages longer than this will be truncated.
	discordMaxMessageLength = 2000

	discordMessageFormat = "[%s] from *%s*:\n> %s\n"
)

// Notifier implements notify.Notifier by posting to a Discord webhook.
// Send does not block: the HTTP call runs in its own goroutine and failures
// are only logged.
type Notifier struct {
	webhookURL     string
	sendTimeout    time.Duration
	logger         *slog.Logger
	httpClient     *http.Client
	apiRateLimiter *rate.Limiter
}

// New creates a new Notifier from the discord section of the configuration.
func New(cfg config.Discord, logger *slog.Logger) (*Notifier, error) {
	if cfg.WebhookURL == "" {
		return nil, fmt.Errorf("discord: WebhookURL is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("discord: logger is required")
	}

	limit := rate.Every(2 * time.Second)
	if cfg.APIRateLimit.Duration > 0 {
		limit = rate.Every(cfg.APIRateLimit.Duration)
	}
	burst := cfg.APIBurst
	if burst <= 0 {
		burst = 1
	}
	timeout := cfg.SendTimeout.Duration
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Notifier{
		webhookURL:     cfg.WebhookURL,
		sendTimeout:    timeout,
		logger:         logger,
		apiRateLimiter: rate.NewLimiter(limit, burst),
		httpClient:     &http.Client{},
	}, nil
}

func (dn *Notifier) formatMessage(n notify.Notification) string {
	mainMessage := fmt.Sprintf(discordMessageFormat, n.Type.String(), n.Source, n.Message)

	keys := make([]string, 0, len(n.Fields))
	for k := range n.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var fieldsFormatted []string
	for _, k := range keys {
		v := n.Fields[k]
		if k == "" || v == nil {
			continue
		}
		valStr := fmt.Sprintf("%v", v)
		if valStr == "" {
			continue
		}
		fieldsFormatted = append(fieldsFormatted, fmt.Sprintf("> %s: `%s`\n", k, valStr))
	}

	var fieldsSection string
	if len(fieldsFormatted) > 0 {
		fieldsSection = "\n**Fields**:\n" + strings.Join(fieldsFormatted, "")
	}

	content := mainMessage + fieldsSection
	if len(content) > discordMaxMessageLength {
		return content[:discordMaxMessageLength-3] + "..."
	}
	return content
}

// Send implements notify.Notifier. Notifications over the rate limit are
// dropped with a warning.
func (dn *Notifier) Send(_ context.Context, n notify.Notification) error {
	if !dn.apiRateLimiter.Allow() {
		dn.logger.Warn("discord: API rate limit reached, dropping notification",
			"source", n.Source, "message", n.Message)
		return nil
	}

	// The request context is not reused: the admin request usually finishes
	// before the webhook call does.
	go func(notif notify.Notification) {
		sendCtx, cancel := context.WithTimeout(context.Background(), dn.sendTimeout)
		defer cancel()

		jsonBody, err := json.Marshal(payload{Content: dn.formatMessage(notif)})
		if err != nil {
			dn.logger.Error("discord: failed to marshal payload",
				"source", notif.Source, "error", err)
			return
		}

		req, err := http.NewRequestWithContext(sendCtx, http.MethodPost, dn.webhookURL, bytes.NewReader(jsonBody))
		if err != nil {
			dn.logger.Error("discord: failed to create request",
				"source", notif.Source, "error", err)
			return
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := dn.httpClient.Do(req)
		if err != nil {
			dn.logger.Error("discord: failed to send",
				"source", notif.Source, "message", notif.Message, "error", err)
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 300 {
			dn.logger.Error("discord: non-2xx status from webhook",
				"status_code", resp.StatusCode, "source", notif.Source, "message", notif.Message)
			if resp.StatusCode == http.StatusTooManyRequests {
				dn.logger.Warn("discord: received 429 Too Many Requests, rate limit settings may need adjustment")
			}
			return
		}

		dn.logger.Debug("discord: notification sent",
			"source", notif.Source, "message", notif.Message)
	}(n)

	return nil
}
