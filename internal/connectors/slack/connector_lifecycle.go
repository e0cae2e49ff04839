package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/evanhutch/helpbot/internal/health"
)

const reconnectDelay = 2 * time.Second

// Start runs the Socket Mode session loop. A failure to establish the very
// first session is fatal: it almost always means bad tokens, and silently
// retrying would hide the misconfiguration. Later session errors reconnect.
func (c *Connector) Start(ctx context.Context) error {
	if !c.Enabled() {
		c.logger.Info("connector disabled, tokens missing")
		if c.health != nil {
			c.health.Set("connector", health.StateDisabled, "slack tokens not configured")
		}
		<-ctx.Done()
		return nil
	}

	if err := c.resolveBotUserID(ctx); err != nil {
		return fmt.Errorf("resolve bot identity: %w", err)
	}

	c.logger.Info("connector started", "mode", "socket", "bot_user_id", c.botUserID)
	everConnected := false
	for {
		if ctx.Err() != nil {
			c.logger.Info("connector stopped")
			return nil
		}
		connected, err := c.runSession(ctx)
		everConnected = everConnected || connected
		if err == nil || ctx.Err() != nil {
			c.logger.Info("connector stopped")
			return nil
		}
		if !everConnected {
			return fmt.Errorf("open first socket session: %w", err)
		}
		if c.health != nil {
			c.health.Set("connector", health.StateDegraded, err.Error())
		}
		if c.metrics != nil {
			c.metrics.ConnectorDrops.Inc()
		}
		c.logger.Error("slack session ended, reconnecting", "error", err)
		select {
		case <-ctx.Done():
			c.logger.Info("connector stopped")
			return nil
		case <-time.After(reconnectDelay):
		}
	}
}

func (c *Connector) runSession(ctx context.Context) (connected bool, err error) {
	socketURL, err := c.openSocketURL(ctx)
	if err != nil {
		return false, err
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, socketURL, nil)
	if err != nil {
		return false, fmt.Errorf("dial socket mode: %w", err)
	}
	defer conn.Close()

	// Unblock ReadMessage when the context ends.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return true, nil
			}
			return true, fmt.Errorf("read socket message: %w", err)
		}

		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			c.logger.Error("decode socket envelope failed", "error", err)
			continue
		}

		switch env.Type {
		case "hello":
			if c.health != nil {
				c.health.Set("connector", health.StateHealthy, "socket session open")
			}
			c.logger.Info("socket session established")
		case "disconnect":
			var d disconnectPayload
			_ = json.Unmarshal(env.Payload, &d)
			return true, fmt.Errorf("server requested disconnect: %s", d.Reason)
		case "events_api":
			c.ack(conn, env.EnvelopeID, nil)
			c.handleEventsEnvelope(ctx, env)
		case "slash_commands":
			c.handleSlashEnvelope(ctx, conn, env)
		default:
			c.ack(conn, env.EnvelopeID, nil)
		}
	}
}

// openSocketURL asks Slack for a fresh Socket Mode endpoint. This uses the
// app-level token, unlike every other API call.
func (c *Connector) openSocketURL(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIBase+"/apps.connections.open", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(c.cfg.AppToken))

	res, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("apps.connections.open: %w", err)
	}
	defer res.Body.Close()

	var result struct {
		OK    bool   `json:"ok"`
		Error string `json:"error"`
		URL   string `json:"url"`
	}
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode apps.connections.open response: %w", err)
	}
	if !result.OK || strings.TrimSpace(result.URL) == "" {
		return "", fmt.Errorf("apps.connections.open failed: %s", result.Error)
	}
	return result.URL, nil
}

func (c *Connector) ack(conn *websocket.Conn, envelopeID string, payload any) {
	if envelopeID == "" {
		return
	}
	response := map[string]any{"envelope_id": envelopeID}
	if payload != nil {
		response["payload"] = payload
	}
	if err := conn.WriteJSON(response); err != nil {
		c.logger.Error("ack envelope failed", "envelope_id", envelopeID, "error", err)
	}
}
