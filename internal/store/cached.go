package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/conorfennell/ankimcp/internal/anki"
	"github.com/conorfennell/ankimcp/internal/review"
)

// CachedSource serves the review log from the local cache, topping it
// up incrementally from AnkiConnect before every read. When the
// upstream is unavailable it serves whatever is cached, degraded and
// logged rather than failed: the analytics treat a short log the same
// as a short history.
type CachedSource struct {
	db     *DB
	client *anki.Client
	log    *slog.Logger
}

// NewCachedSource wires a cache database in front of an AnkiConnect
// client.
func NewCachedSource(db *DB, client *anki.Client, log *slog.Logger) *CachedSource {
	return &CachedSource{db: db, client: client, log: log}
}

// ReviewLog returns review events for the deck (or all decks when
// empty) with timestamps at or after sinceMillis.
func (s *CachedSource) ReviewLog(ctx context.Context, deck string, sinceMillis int64) ([]review.LogEntry, error) {
	decks := []string{deck}
	if deck == "" {
		names, err := s.client.DeckNames(ctx)
		if err != nil {
			s.log.Warn("deck listing unavailable, serving cached decks only", "error", err)
			names, err = s.db.Decks()
			if err != nil {
				return nil, fmt.Errorf("listing cached decks: %w", err)
			}
		}
		decks = names
	}

	for _, d := range decks {
		if err := s.refresh(ctx, d); err != nil {
			// Stale data beats no data here; the caller still gets a
			// valid (possibly shorter) history.
			s.log.Warn("review cache refresh failed, serving cached data", "deck", d, "error", err)
		}
	}

	return s.db.Entries(deck, sinceMillis)
}

// refresh pulls the rows recorded since the last cached review of the
// deck.
func (s *CachedSource) refresh(ctx context.Context, deck string) error {
	latest, err := s.db.LatestID(deck)
	if err != nil {
		return err
	}
	rows, err := s.client.CardReviews(ctx, deck, latest)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	s.log.Debug("caching new reviews", "deck", deck, "count", len(rows))
	return s.db.InsertRows(deck, rows)
}
