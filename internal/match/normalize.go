package match

import (
	"regexp"
	"strings"
)

var (
	userMentionPattern    = regexp.MustCompile(`<@[^>]+>`)
	channelMentionPattern = regexp.MustCompile(`<#[^>]+>`)
	urlPattern            = regexp.MustCompile(`[a-zA-Z][a-zA-Z0-9+.-]*://\S+`)
	specialCharPattern    = regexp.MustCompile(`[^\w\s?]`)
)

// Normalize strips platform mention tokens, URLs and punctuation (question
// marks excepted), lowercases, and collapses whitespace runs. It is pure and
// idempotent; empty input yields empty output.
func Normalize(text string) string {
	text = userMentionPattern.ReplaceAllString(text, "")
	text = channelMentionPattern.ReplaceAllString(text, "")
	text = urlPattern.ReplaceAllString(text, "")
	text = specialCharPattern.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}
