package gateway

import (
	"context"
	"fmt"
	"strings"
)

type SlashCommand struct {
	Name                string `json:"name"`
	Description         string `json:"description"`
	ArgumentName        string `json:"argument_name,omitempty"`
	ArgumentDescription string `json:"argument_description,omitempty"`
	ArgumentRequired    bool   `json:"argument_required,omitempty"`
}

// SlashCommands is the catalog of commands the bot understands. The help
// reply and the info endpoint are generated from it.
func SlashCommands() []SlashCommand {
	return []SlashCommand{
		{
			Name:                "ask",
			Description:         "Ask the help bot a question",
			ArgumentName:        "question",
			ArgumentDescription: "What you need help with",
			ArgumentRequired:    true,
		},
		{
			Name:        "history",
			Description: "Show your recent questions",
		},
		{
			Name:        "help",
			Description: "Show what the bot can do",
		},
	}
}

const (
	askUsageReply = "Please ask a question after the /ask command. Example: `/ask how to reset password`"

	emptyHistoryReply = "You haven't had any conversations with me yet. Ask me something to get started!"

	historyFooter = "_Need more help? Just ask!_"
)

func (s *Service) handleCommand(ctx context.Context, input MessageInput) (MessageOutput, error) {
	switch strings.TrimPrefix(strings.TrimSpace(input.Command), "/") {
	case "ask":
		question := strings.TrimSpace(input.Text)
		if question == "" {
			return MessageOutput{Handled: true, Reply: askUsageReply}, nil
		}
		return MessageOutput{Handled: true, Reply: s.answer(ctx, input.FromUserID, question)}, nil
	case "history":
		return s.handleHistory(ctx, input)
	case "help":
		return MessageOutput{Handled: true, Reply: s.helpText()}, nil
	default:
		return MessageOutput{}, nil
	}
}

func (s *Service) handleHistory(ctx context.Context, input MessageInput) (MessageOutput, error) {
	records, err := s.memory.History(ctx, input.FromUserID)
	if err != nil {
		return MessageOutput{}, fmt.Errorf("load history: %w", err)
	}
	if len(records) == 0 {
		return MessageOutput{Handled: true, Reply: emptyHistoryReply}, nil
	}

	if len(records) > s.cfg.HistorySize {
		records = records[len(records)-s.cfg.HistorySize:]
	}

	var b strings.Builder
	b.WriteString("*Your recent conversations with me:*\n\n")
	// Newest first for readability.
	for i := len(records) - 1; i >= 0; i-- {
		question := truncate(records[i].Question, 100)
		fmt.Fprintf(&b, "%d. *You asked:* %s\n", len(records)-i, question)
	}
	b.WriteString("\n" + historyFooter)
	return MessageOutput{Handled: true, Reply: b.String()}, nil
}

func (s *Service) helpText() string {
	name := s.cfg.BotName
	if name == "" {
		name = "helpbot"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "*Hi! I'm %s, your workplace assistant.* :wave:\n\n", name)
	b.WriteString("Here's how to reach me:\n")
	fmt.Fprintf(&b, "• *Mention me* in any channel: `@%s how do I reset my password?`\n", name)
	for _, cmd := range SlashCommands() {
		usage := "/" + cmd.Name
		if cmd.ArgumentName != "" {
			usage += " <" + cmd.ArgumentName + ">"
		}
		fmt.Fprintf(&b, "• *%s* - %s\n", usage, cmd.Description)
	}
	b.WriteString("• I also jump in when a message looks like a request for help\n\n")
	b.WriteString("I answer from the team knowledge base first and fall back to AI when I have to.")
	return b.String()
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
