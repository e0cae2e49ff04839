package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/evanhutch/helpbot/internal/gateway"
)

const apologyReply = "Sorry, something went wrong on my end. Please try again in a moment."

func (c *Connector) handleEventsEnvelope(ctx context.Context, env envelope) {
	var payload eventsPayload
	if err := json.Unmarshal(env.Payload, &payload); err != nil {
		c.logger.Error("decode events payload failed", "error", err)
		return
	}

	event := payload.Event
	if skip, reason := c.shouldSkip(event); skip {
		c.logger.Debug("event skipped", "type", event.Type, "reason", reason)
		return
	}

	switch event.Type {
	case "app_mention":
		c.handleMention(ctx, event)
	case "message":
		c.handleAmbient(ctx, event)
	}
}

// shouldSkip filters events the bot must never answer: its own messages,
// other bots, and edited/join/leave subtypes.
func (c *Connector) shouldSkip(event slackEvent) (bool, string) {
	if event.BotID != "" {
		return true, "bot message"
	}
	if event.Subtype != "" {
		return true, "subtype " + event.Subtype
	}
	if event.User == "" {
		return true, "no user"
	}
	if c.botUserID != "" && event.User == c.botUserID {
		return true, "own message"
	}
	return false, ""
}

func (c *Connector) handleMention(ctx context.Context, event slackEvent) {
	text := event.Text
	if c.botUserID != "" {
		text = strings.ReplaceAll(text, "<@"+c.botUserID+">", "")
	}

	output, err := c.gateway.HandleMessage(ctx, gateway.MessageInput{
		Kind:       gateway.KindMention,
		Connector:  "slack",
		ExternalID: event.Channel,
		FromUserID: event.User,
		Text:       strings.TrimSpace(text),
	})
	if err != nil {
		c.logger.Error("handle mention failed", "channel", event.Channel, "error", err)
		c.reply(ctx, event, fmt.Sprintf("<@%s> %s", event.User, apologyReply))
		return
	}
	if output.Handled {
		c.reply(ctx, event, output.Reply)
	}
}

// handleAmbient answers unprompted channel messages that look like help
// requests. The reply lands in a thread after a short delay so the bot does
// not talk over people.
func (c *Connector) handleAmbient(ctx context.Context, event slackEvent) {
	output, err := c.gateway.HandleMessage(ctx, gateway.MessageInput{
		Kind:       gateway.KindAmbient,
		Connector:  "slack",
		ExternalID: event.Channel,
		FromUserID: event.User,
		Text:       event.Text,
	})
	if err != nil {
		c.logger.Error("handle ambient message failed", "channel", event.Channel, "error", err)
		return
	}
	if !output.Handled {
		return
	}

	if c.cfg.AmbientDelay > 0 {
		select {
		case <-ctx.Done():
			return
		case <-time.After(c.cfg.AmbientDelay):
		}
	}

	threadTS := event.ThreadTS
	if threadTS == "" {
		threadTS = event.TS
	}
	if err := c.postMessage(ctx, event.Channel, threadTS, output.Reply); err != nil {
		c.logger.Error("post ambient reply failed", "channel", event.Channel, "error", err)
	}
}

func (c *Connector) reply(ctx context.Context, event slackEvent, text string) {
	if err := c.postMessage(ctx, event.Channel, event.ThreadTS, text); err != nil {
		c.logger.Error("post reply failed", "channel", event.Channel, "error", err)
	}
}
