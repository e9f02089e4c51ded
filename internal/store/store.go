package store

import (
	"database/sql"
	"fmt"

	"github.com/conorfennell/ankimcp/internal/anki"
	"github.com/conorfennell/ankimcp/internal/review"
	_ "modernc.org/sqlite" // Registers the sqlite driver
)

// DB is the local review-log cache. It lives entirely outside the
// analytics core: the core only ever sees plain value slices.
type DB struct {
	conn *sql.DB
}

// Open creates the cache database at dsn and ensures the schema is up
// to date.
func Open(dsn string) (*DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to cache database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to apply cache schema: %w", err)
	}

	return &DB{conn: db}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// LatestID returns the highest cached review id for a deck, or zero
// when nothing is cached yet.
func (db *DB) LatestID(deck string) (int64, error) {
	var latest sql.NullInt64
	row := db.conn.QueryRow(`SELECT MAX(id) FROM reviews WHERE deck = ?`, deck)
	if err := row.Scan(&latest); err != nil {
		return 0, fmt.Errorf("failed to read latest review id for deck %s: %w", deck, err)
	}
	if !latest.Valid {
		return 0, nil
	}
	return latest.Int64, nil
}

// InsertRows caches freshly fetched review rows for a deck. Re-synced
// rows are ignored rather than duplicated.
func (db *DB) InsertRows(deck string, rows []anki.ReviewRow) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin insert for deck %s: %w", deck, err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR IGNORE INTO reviews (id, deck, card_id, rating, new_interval, last_interval, ease_after)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare review insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		_, err := stmt.Exec(r.ID, deck, r.CardID, r.Button, r.NewInterval, r.LastInterval, r.EaseAfter)
		if err != nil {
			return fmt.Errorf("failed to insert review %d for deck %s: %w", r.ID, deck, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reviews for deck %s: %w", deck, err)
	}
	return nil
}

// Entries returns cached review events for a deck with timestamps at
// or after sinceMillis, oldest first. An empty deck returns every
// cached deck's entries.
func (db *DB) Entries(deck string, sinceMillis int64) ([]review.LogEntry, error) {
	query := `
		SELECT id, card_id, rating, new_interval, last_interval, ease_after
		FROM reviews WHERE id >= ?`
	args := []any{sinceMillis}
	if deck != "" {
		query += ` AND deck = ?`
		args = append(args, deck)
	}
	query += ` ORDER BY id`

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query cached reviews: %w", err)
	}
	defer rows.Close()

	var entries []review.LogEntry
	for rows.Next() {
		var e review.LogEntry
		var rating int
		if err := rows.Scan(&e.TimestampMillis, &e.CardID, &rating, &e.NewInterval, &e.LastInterval, &e.EaseAfter); err != nil {
			return nil, fmt.Errorf("failed to scan cached review row: %w", err)
		}
		e.Rating = review.Rating(rating)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cached reviews: %w", err)
	}
	return entries, nil
}

// Decks lists the decks that have cached reviews.
func (db *DB) Decks() ([]string, error) {
	rows, err := db.conn.Query(`SELECT DISTINCT deck FROM reviews ORDER BY deck`)
	if err != nil {
		return nil, fmt.Errorf("failed to list cached decks: %w", err)
	}
	defer rows.Close()

	var decks []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan deck name: %w", err)
		}
		decks = append(decks, d)
	}
	return decks, rows.Err()
}
