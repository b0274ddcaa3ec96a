// Package storage provides the transcript archive.
//
// The archive is write-mostly: the live session lifecycle never reads its own
// state back from here. It exists so a user (or an operator) can review past
// tutoring conversations, including the error-bearing turns.
package storage

import (
	"context"

	"github.com/paperlab/oshiete/internal/models"
)

// Storage records sessions and their transcript messages.
type Storage interface {
	// RecordUpload registers (or replaces) the paper loaded into a session.
	// Replacing also clears the session's archived messages.
	RecordUpload(ctx context.Context, sessionID string, paper *models.Paper) error
	// RecordMessage appends one transcript message.
	RecordMessage(ctx context.Context, sessionID string, msg models.Message) error
	// ClearMessages removes all archived messages for a session.
	ClearMessages(ctx context.Context, sessionID string) error
	// SessionMessages returns the archived messages for a session in order.
	SessionMessages(ctx context.Context, sessionID string) ([]models.Message, error)
	// CountSessions reports how many sessions have been archived.
	CountSessions(ctx context.Context) (int64, error)
	Close() error
}
