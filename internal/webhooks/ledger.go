package webhooks

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS deliveries (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	event_id TEXT NOT NULL,
	event TEXT NOT NULL,
	url TEXT NOT NULL,
	status_code INTEGER NOT NULL DEFAULT 0,
	error_text TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_deliveries_event ON deliveries(event);
CREATE INDEX IF NOT EXISTS idx_deliveries_event_id ON deliveries(event_id);
`

// Delivery is one recorded webhook attempt.
type Delivery struct {
	ID         int64     `json:"id"`
	EventID    string    `json:"eventId"`
	Event      string    `json:"event"`
	URL        string    `json:"url"`
	StatusCode int       `json:"statusCode"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// OK reports whether the attempt got a 2xx response.
func (d Delivery) OK() bool { return d.Error == "" && d.StatusCode >= 200 && d.StatusCode < 300 }

// Ledger stores webhook attempts in SQLite.
type Ledger struct {
	db *sql.DB
}

// OpenLedger opens (creating if needed) the ledger at path.
func OpenLedger(path string) (*Ledger, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open delivery ledger: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply ledger schema: %w", err)
	}
	return &Ledger{db: db}, nil
}

// Close releases the database.
func (l *Ledger) Close() error { return l.db.Close() }

// Record appends an attempt.
func (l *Ledger) Record(ctx context.Context, d Delivery) error {
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO deliveries (event_id, event, url, status_code, error_text, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		d.EventID, d.Event, d.URL, d.StatusCode, d.Error, d.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("record delivery: %w", err)
	}
	return nil
}

// Recent returns up to limit attempts, newest first.
func (l *Ledger) Recent(ctx context.Context, limit int) ([]Delivery, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, event_id, event, url, status_code, error_text, created_at FROM deliveries ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list deliveries: %w", err)
	}
	defer rows.Close()

	var out []Delivery
	for rows.Next() {
		var d Delivery
		if err := rows.Scan(&d.ID, &d.EventID, &d.Event, &d.URL, &d.StatusCode, &d.Error, &d.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
