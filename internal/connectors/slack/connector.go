package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/evanhutch/helpbot/internal/gateway"
	"github.com/evanhutch/helpbot/internal/health"
	"github.com/evanhutch/helpbot/internal/observability"
)

type MessageGateway interface {
	HandleMessage(ctx context.Context, input gateway.MessageInput) (gateway.MessageOutput, error)
}

type Config struct {
	BotToken string
	AppToken string
	APIBase  string

	// AmbientDelay spaces out unsolicited replies so the bot does not look
	// like it is racing humans to answer.
	AmbientDelay time.Duration
}

type Connector struct {
	cfg        Config
	gateway    MessageGateway
	httpClient *http.Client
	logger     *slog.Logger
	health     *health.Registry
	metrics    *observability.Metrics

	botUserID string
}

func New(cfg Config, messageGateway MessageGateway, registry *health.Registry, metrics *observability.Metrics, logger *slog.Logger) *Connector {
	if strings.TrimSpace(cfg.APIBase) == "" {
		cfg.APIBase = "https://slack.com/api"
	}
	cfg.APIBase = strings.TrimRight(strings.TrimSpace(cfg.APIBase), "/")
	if cfg.AmbientDelay < 0 {
		cfg.AmbientDelay = 0
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Connector{
		cfg:        cfg,
		gateway:    messageGateway,
		httpClient: &http.Client{Timeout: 12 * time.Second},
		logger:     logger,
		health:     registry,
		metrics:    metrics,
	}
}

func (c *Connector) Name() string {
	return "slack"
}

// Enabled reports whether both Slack tokens are configured. Without them the
// bot still serves the HTTP API.
func (c *Connector) Enabled() bool {
	return strings.TrimSpace(c.cfg.BotToken) != "" && strings.TrimSpace(c.cfg.AppToken) != ""
}

func (c *Connector) postMessage(ctx context.Context, channel, threadTS, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	body := map[string]string{
		"channel": channel,
		"text":    text,
	}
	if threadTS != "" {
		body["thread_ts"] = threadTS
	}

	var result struct {
		OK    bool   `json:"ok"`
		Error string `json:"error"`
	}
	if err := c.callAPI(ctx, "chat.postMessage", c.cfg.BotToken, body, &result); err != nil {
		return err
	}
	if !result.OK {
		return fmt.Errorf("chat.postMessage failed: %s", result.Error)
	}
	return nil
}

func (c *Connector) resolveBotUserID(ctx context.Context) error {
	var result struct {
		OK     bool   `json:"ok"`
		Error  string `json:"error"`
		UserID string `json:"user_id"`
	}
	if err := c.callAPI(ctx, "auth.test", c.cfg.BotToken, map[string]string{}, &result); err != nil {
		return err
	}
	if !result.OK {
		return fmt.Errorf("auth.test failed: %s", result.Error)
	}
	c.botUserID = result.UserID
	return nil
}

func (c *Connector) callAPI(ctx context.Context, method, token string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIBase+"/"+method, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+token)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", method, err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return err
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("%s failed: status=%d body=%s", method, res.StatusCode, strings.TrimSpace(string(data)))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", method, err)
	}
	return nil
}
