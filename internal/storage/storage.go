// Package storage provides persistence for terminated negotiation sessions.
// The log is append-only: the negotiation core writes one record per
// session and never reads them back; only the API and CLI list them.
package storage

import (
	"github.com/nvraj/mandi/internal/core"
)

// Storage defines the interface for the session log sink.
type Storage interface {
	// Initialize sets up the storage (creates tables, etc.)
	Initialize() error

	// Close closes the storage connection.
	Close() error

	// SaveSession appends one terminated session record.
	SaveSession(rec *core.SessionRecord) error

	// GetSession retrieves a session record by ID. Returns nil when the
	// record does not exist.
	GetSession(id string) (*core.SessionRecord, error)

	// ListSessions returns session summaries, newest first.
	ListSessions(limit, offset int) ([]*core.SessionSummary, error)
}
