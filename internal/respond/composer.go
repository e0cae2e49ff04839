package respond

import (
	"fmt"
	"strings"

	"github.com/evanhutch/helpbot/internal/match"
)

// Picker abstracts the randomness used for conversational variety so tests
// can drive the composer deterministically.
type Picker interface {
	// Pick returns an index in [0, n).
	Pick(n int) int
	// Chance reports true with probability p.
	Chance(p float64) bool
}

var greetings = []string{
	"Hi %s! 👋",
	"Hello %s!",
	"Hey %s! How can I help?",
	"Hi there %s!",
	"Hey %s! What can I help you with today?",
}

var followUps = []string{
	"Did that answer your question?",
	"Is there anything else you need help with?",
	"Let me know if you need more details!",
	"Did that solve your issue?",
	"Need anything else?",
}

var unknownReplies = []string{
	"I'm not sure about that one. Try contacting IT support at helpdesk@company.com or check our documentation.",
	"I don't have information on that yet. You might want to check our company documentation or ask in #it-help.",
	"That's beyond my current knowledge. For this, please reach out to the support team at helpdesk@company.com.",
	"I'm still learning about that topic. For now, please contact the relevant department for assistance.",
}

const (
	followUpChance = 0.3

	aiDisclaimer = "_This is an AI-generated response. For official policies, please verify with the relevant department._"

	plainUnknownReply = "I'm not sure about that. Please contact IT support or check the company documentation."
)

// Composer turns a match result into a user-facing message. The "enhanced"
// profile adds conversational framing; any other profile renders answers
// plainly and uses a fixed support-redirect when nothing matched.
type Composer struct {
	conversational bool
	picker         Picker
}

func NewComposer(profile string, picker Picker) *Composer {
	return &Composer{
		conversational: !strings.EqualFold(strings.TrimSpace(profile), "basic"),
		picker:         picker,
	}
}

// Compose renders the reply for result, which may be nil when nothing
// matched. It has no side effects; logging and memory appends are the
// caller's job.
func (c *Composer) Compose(result *match.Result, userID string) string {
	if result != nil && result.Topic == match.TopicAIGenerated {
		return strings.TrimSpace(result.Answer) + "\n\n" + aiDisclaimer
	}

	if result != nil {
		if !c.conversational {
			return result.Answer
		}
		reply := c.greeting(userID) + "\n\n" + result.Answer
		if c.picker.Chance(followUpChance) {
			reply += "\n\n" + followUps[c.picker.Pick(len(followUps))]
		}
		return reply
	}

	if !c.conversational {
		return plainUnknownReply
	}
	return c.greeting(userID) + " " + unknownReplies[c.picker.Pick(len(unknownReplies))]
}

func (c *Composer) greeting(userID string) string {
	template := greetings[c.picker.Pick(len(greetings))]
	return fmt.Sprintf(template, "<@"+userID+">")
}
