package slack

import (
	"context"
	"encoding/json"

	"github.com/gorilla/websocket"

	"github.com/evanhutch/helpbot/internal/gateway"
)

// handleSlashEnvelope acks the envelope with the reply attached, which Slack
// renders as an ephemeral response to the command.
func (c *Connector) handleSlashEnvelope(ctx context.Context, conn *websocket.Conn, env envelope) {
	var payload slashPayload
	if err := json.Unmarshal(env.Payload, &payload); err != nil {
		c.logger.Error("decode slash payload failed", "error", err)
		c.ack(conn, env.EnvelopeID, nil)
		return
	}

	output, err := c.gateway.HandleMessage(ctx, gateway.MessageInput{
		Kind:       gateway.KindCommand,
		Connector:  "slack",
		ExternalID: payload.Channel,
		FromUserID: payload.UserID,
		Text:       payload.Text,
		Command:    payload.Command,
	})
	if err != nil {
		c.logger.Error("handle slash command failed", "command", payload.Command, "error", err)
		c.ack(conn, env.EnvelopeID, map[string]string{"text": apologyReply})
		return
	}
	if !output.Handled || output.Reply == "" {
		c.ack(conn, env.EnvelopeID, nil)
		return
	}
	c.ack(conn, env.EnvelopeID, map[string]string{"text": output.Reply})
}
