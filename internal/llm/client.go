// Package llm provides the language-model chat backend client.
package llm

import "context"

// Message is one turn sent to the backend. The system instruction travels as
// a leading message with role "system"; it is not part of the visible transcript.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client sends an ordered turn history to a chat backend and returns a single
// complete reply. Implementations block until the backend answers or fails.
type Client interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}
