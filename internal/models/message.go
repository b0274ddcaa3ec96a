// Package models defines core data structures for papers, transcripts, and API payloads.
package models

// Message roles. The system instruction is not a transcript message; it is
// supplied once at session construction.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single visible turn in the conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// UserMessage returns a user-role message with the given content.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage returns an assistant-role message with the given content.
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}
