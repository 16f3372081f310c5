package chat

import (
	"fmt"
	"strings"

	"github.com/futig/chatbot-backend/internal/entity"
)

const promptHeader = `You are AskIDC, a helpful support assistant. Answer the question using only the provided context. Be concise and factual. If the context does not contain the answer, say you don't know.`

// buildPrompt assembles the generation prompt from the recent
// conversation, the reranked context passages, and the subquestion.
func buildPrompt(history []entity.Turn, candidates []entity.Candidate, question string) string {
	var b strings.Builder
	b.WriteString(promptHeader)
	b.WriteString("\n\n")

	if len(history) > 0 {
		b.WriteString("Conversation so far:\n")
		for _, t := range history {
			switch t.Role {
			case entity.RoleUser:
				b.WriteString("User: ")
			case entity.RoleAssistant:
				b.WriteString("Assistant: ")
			}
			b.WriteString(t.Text)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("Context:\n")
	for _, c := range candidates {
		b.WriteString("- ")
		b.WriteString(c.Chunk.Text)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Question: \"%s\"\nAnswer:", question)
	return b.String()
}
