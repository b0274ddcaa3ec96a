// Package tutor implements the conversation session and its lifecycle.
package tutor

import (
	"context"

	"github.com/paperlab/oshiete/internal/llm"
	"github.com/paperlab/oshiete/internal/models"
)

// ClientFactory constructs a backend client. It is invoked on every session
// create so a fixed credential or endpoint problem surfaces as a
// BackendInitError and a later retry can succeed.
type ClientFactory func() (llm.Client, error)

// Session owns one conversation with the backend: the fixed system
// instruction plus the committed turn history. History mutation is explicit;
// a failed call leaves the history exactly as it was, so a caller retry never
// duplicates the failed user turn.
type Session struct {
	client  llm.Client
	history []llm.Message
}

// NewSession builds a fresh backend handle seeded with systemPrompt.
// Fails with a BackendInitError when the backend cannot be constructed.
func NewSession(connect ClientFactory, systemPrompt string) (*Session, error) {
	client, err := connect()
	if err != nil {
		return nil, &BackendInitError{Err: err}
	}
	return &Session{
		client:  client,
		history: []llm.Message{{Role: "system", Content: systemPrompt}},
	}, nil
}

// Send submits one user turn and blocks until the backend returns a complete
// reply, which is then committed to the history together with the turn.
// Fails with a BackendCallError; the history is unchanged on failure.
func (s *Session) Send(ctx context.Context, userText string) (string, error) {
	attempt := make([]llm.Message, len(s.history), len(s.history)+2)
	copy(attempt, s.history)
	attempt = append(attempt, llm.Message{Role: models.RoleUser, Content: userText})

	reply, err := s.client.Complete(ctx, attempt)
	if err != nil {
		return "", &BackendCallError{Err: err}
	}
	s.history = append(attempt, llm.Message{Role: models.RoleAssistant, Content: reply})
	return reply, nil
}

// Turns reports how many visible turns (user + assistant) are committed,
// excluding the system instruction.
func (s *Session) Turns() int {
	return len(s.history) - 1
}
