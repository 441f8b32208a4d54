// Package prompt renders an agent policy into the system prompt sent ahead of
// the conversation history.
package prompt

import (
	"strings"

	"github.com/JaimeStill/agent-chat/internal/agents"
)

const header = "You are an AI assistant specialized according to the following instructions:\n"

// Build returns the system prompt for a. Purpose and tone are always present;
// domain context and topic lines are omitted when empty. The output depends
// only on a.
func Build(a agents.Agent) string {
	var b strings.Builder

	b.WriteString(header)
	line(&b, "Purpose", a.Purpose)
	line(&b, "Tone", a.Tone)

	if a.DomainContext != "" {
		line(&b, "Domain context", a.DomainContext)
	}
	if len(a.AllowedTopics) > 0 {
		line(&b, "Allowed topics", strings.Join(a.AllowedTopics, ", "))
	}
	if len(a.RestrictedTopics) > 0 {
		line(&b, "Avoid discussing", strings.Join(a.RestrictedTopics, ", "))
	}

	return b.String()
}

func line(b *strings.Builder, label, value string) {
	b.WriteString("- ")
	b.WriteString(label)
	b.WriteString(": ")
	b.WriteString(value)
	b.WriteByte('\n')
}
