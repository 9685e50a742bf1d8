package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/nvraj/mandi/internal/core"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db   *sql.DB
	path string
}

// DefaultDBPath returns the default database location.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "mandi.db"
	}
	return filepath.Join(home, ".mandi", "mandi.db")
}

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &SQLiteStorage{
		db:   db,
		path: dbPath,
	}, nil
}

// Initialize creates the database schema.
func (s *SQLiteStorage) Initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		product TEXT NOT NULL,
		context_json TEXT NOT NULL,
		buyer_persona TEXT NOT NULL,
		seller_persona TEXT NOT NULL,
		status TEXT NOT NULL,
		messages_json TEXT NOT NULL,
		offers_json TEXT NOT NULL DEFAULT '[]',
		rounds_current INTEGER NOT NULL,
		rounds_max INTEGER NOT NULL,
		final_price INTEGER,
		margin_used INTEGER NOT NULL,
		summary_json TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		completed_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_created_at ON sessions(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_sessions_status ON sessions(status);
	`

	_, err := s.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// SaveSession appends a terminated session record.
func (s *SQLiteStorage) SaveSession(rec *core.SessionRecord) error {
	contextJSON, err := json.Marshal(rec.Context)
	if err != nil {
		return fmt.Errorf("failed to marshal context: %w", err)
	}

	messagesJSON, err := json.Marshal(rec.Messages)
	if err != nil {
		return fmt.Errorf("failed to marshal messages: %w", err)
	}

	offersJSON, err := json.Marshal(rec.Offers)
	if err != nil {
		return fmt.Errorf("failed to marshal offers: %w", err)
	}

	summaryJSON, err := json.Marshal(rec.Summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}

	var finalPrice sql.NullInt64
	if rec.FinalPrice != nil {
		finalPrice = sql.NullInt64{Int64: int64(*rec.FinalPrice), Valid: true}
	}

	query := `
	INSERT INTO sessions (id, product, context_json, buyer_persona, seller_persona, status, messages_json, offers_json, rounds_current, rounds_max, final_price, margin_used, summary_json, created_at, completed_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.Exec(query,
		rec.ID,
		rec.Context.Product,
		string(contextJSON),
		rec.BuyerPersona,
		rec.SellerPersona,
		string(rec.Status),
		string(messagesJSON),
		string(offersJSON),
		rec.Rounds.Current,
		rec.Rounds.Max,
		finalPrice,
		rec.MarginUsed,
		string(summaryJSON),
		rec.CreatedAt,
		rec.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	return nil
}

// GetSession retrieves a session record by ID.
func (s *SQLiteStorage) GetSession(id string) (*core.SessionRecord, error) {
	query := `
	SELECT id, buyer_persona, seller_persona, status, context_json, messages_json, offers_json, rounds_current, rounds_max, final_price, margin_used, summary_json, created_at, completed_at
	FROM sessions WHERE id = ?
	`

	rec := &core.SessionRecord{}
	var contextJSON, messagesJSON, offersJSON, summaryJSON string
	var finalPrice sql.NullInt64

	err := s.db.QueryRow(query, id).Scan(
		&rec.ID,
		&rec.BuyerPersona,
		&rec.SellerPersona,
		&rec.Status,
		&contextJSON,
		&messagesJSON,
		&offersJSON,
		&rec.Rounds.Current,
		&rec.Rounds.Max,
		&finalPrice,
		&rec.MarginUsed,
		&summaryJSON,
		&rec.CreatedAt,
		&rec.CompletedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if err := json.Unmarshal([]byte(contextJSON), &rec.Context); err != nil {
		return nil, fmt.Errorf("failed to unmarshal context: %w", err)
	}
	if err := json.Unmarshal([]byte(messagesJSON), &rec.Messages); err != nil {
		return nil, fmt.Errorf("failed to unmarshal messages: %w", err)
	}
	if err := json.Unmarshal([]byte(offersJSON), &rec.Offers); err != nil {
		return nil, fmt.Errorf("failed to unmarshal offers: %w", err)
	}
	if err := json.Unmarshal([]byte(summaryJSON), &rec.Summary); err != nil {
		return nil, fmt.Errorf("failed to unmarshal summary: %w", err)
	}
	if finalPrice.Valid {
		rec.FinalPrice = core.IntPtr(int(finalPrice.Int64))
	}

	return rec, nil
}

// ListSessions returns session summaries, newest first.
func (s *SQLiteStorage) ListSessions(limit, offset int) ([]*core.SessionSummary, error) {
	query := `
	SELECT id, product, buyer_persona, seller_persona, status, final_price, rounds_current, created_at
	FROM sessions
	ORDER BY created_at DESC
	LIMIT ? OFFSET ?
	`

	rows, err := s.db.Query(query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var summaries []*core.SessionSummary
	for rows.Next() {
		sum := &core.SessionSummary{}
		var finalPrice sql.NullInt64

		if err := rows.Scan(
			&sum.ID,
			&sum.Product,
			&sum.BuyerPersona,
			&sum.SellerPersona,
			&sum.Status,
			&finalPrice,
			&sum.TotalRounds,
			&sum.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		if finalPrice.Valid {
			sum.FinalPrice = core.IntPtr(int(finalPrice.Int64))
		}
		summaries = append(summaries, sum)
	}

	return summaries, rows.Err()
}
