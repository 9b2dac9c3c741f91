package archive

import (
	"context"
	"time"
)

// TurnRecord is one archived conversational turn. Unlike the in-session
// history window, the archive is append-only and unbounded.
type TurnRecord struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists conversation turns past the session's sliding window.
// Writes are best-effort; the relay never blocks a reply on the archive.
type Store interface {
	SaveTurn(ctx context.Context, record TurnRecord) error
	SessionTurns(ctx context.Context, sessionID string, limit int) ([]TurnRecord, error)
	Close() error
}
