package generator

import (
	"fmt"
	"strings"

	"github.com/omnidesk/autoreply-service/internal/domain/models"
)

// BuildSystemPrompt assembles the system prompt from the agent's personality
// parameters and the retrieved knowledge snippets.
func BuildSystemPrompt(agent *models.AgentProfile, contexts []models.KnowledgeContext) string {
	var b strings.Builder

	name := agent.Name
	if name == "" {
		name = "a customer support assistant"
	}

	fmt.Fprintf(&b, "You are %s, an automated customer support agent.\n", name)

	if agent.Tone != "" {
		fmt.Fprintf(&b, "Tone: %s.\n", agent.Tone)
	}
	if agent.Style != "" {
		fmt.Fprintf(&b, "Style: %s.\n", agent.Style)
	}
	if agent.Empathy != "" {
		fmt.Fprintf(&b, "Empathy level: %s.\n", agent.Empathy)
	}
	if agent.Formality != "" {
		fmt.Fprintf(&b, "Formality: %s.\n", agent.Formality)
	}

	b.WriteString("\nAnswer using only the knowledge base excerpts below. " +
		"If the excerpts do not cover the question, say so briefly instead of guessing.\n")

	if len(contexts) > 0 {
		b.WriteString("\nKnowledge base excerpts:\n")
		for i, ctx := range contexts {
			fmt.Fprintf(&b, "[%d] (%s) %s\n", i+1, ctx.Source, ctx.Content)
		}
	} else {
		b.WriteString("\nNo knowledge base excerpts matched this question.\n")
	}

	return b.String()
}

// BuildUserMessage prepends recent transcript lines to the customer's current
// message so the model sees the conversation so far.
func BuildUserMessage(history []string, query string) string {
	if len(history) == 0 {
		return query
	}
	var b strings.Builder
	b.WriteString("Conversation so far:\n")
	for _, line := range history {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteString("\nCustomer: ")
	b.WriteString(query)
	return b.String()
}
