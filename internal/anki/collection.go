package anki

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/conorfennell/ankimcp/internal/review"
)

// CardInfo is the scheduling view of one card as cardsInfo reports
// it. Factor is the ease in permille; a queue of -1 marks a suspended
// card.
type CardInfo struct {
	CardID   int64  `json:"cardId"`
	NoteID   int64  `json:"note"`
	DeckName string `json:"deckName"`
	Factor   int    `json:"factor"`
	Interval int    `json:"interval"`
	Reps     int    `json:"reps"`
	Lapses   int    `json:"lapses"`
	Queue    int    `json:"queue"`
}

// FindCards searches for cards using Anki's search syntax.
func (c *Client) FindCards(ctx context.Context, query string) ([]int64, error) {
	var ids []int64
	if err := c.invoke(ctx, "findCards", map[string]any{"query": query}, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// CardsInfo fetches scheduling details for the given card ids.
func (c *Client) CardsInfo(ctx context.Context, ids []int64) ([]CardInfo, error) {
	var cards []CardInfo
	if err := c.invoke(ctx, "cardsInfo", map[string]any{"cards": ids}, &cards); err != nil {
		return nil, err
	}
	return cards, nil
}

// ReviewRow mirrors one cardReviews tuple: [reviewTime, cardID, usn,
// buttonPressed, newInterval, previousInterval, newFactor,
// reviewDuration, reviewType]. The review time in milliseconds is
// also the review's unique, monotonically increasing id.
type ReviewRow struct {
	ID           int64
	CardID       int64
	USN          int64
	Button       int
	NewInterval  int
	LastInterval int
	EaseAfter    int
	TookMillis   int
	Kind         int
}

func (r *ReviewRow) UnmarshalJSON(data []byte) error {
	var row []int64
	if err := json.Unmarshal(data, &row); err != nil {
		return err
	}
	if len(row) < 9 {
		return fmt.Errorf("cardReviews row has %d fields, want 9", len(row))
	}
	r.ID = row[0]
	r.CardID = row[1]
	r.USN = row[2]
	r.Button = int(row[3])
	r.NewInterval = int(row[4])
	r.LastInterval = int(row[5])
	r.EaseAfter = int(row[6])
	r.TookMillis = int(row[7])
	r.Kind = int(row[8])
	return nil
}

// LogEntry converts the raw tuple into the analytics core's review
// event type.
func (r ReviewRow) LogEntry() review.LogEntry {
	return review.LogEntry{
		CardID:          r.CardID,
		TimestampMillis: r.ID,
		Rating:          review.Rating(r.Button),
		NewInterval:     r.NewInterval,
		LastInterval:    r.LastInterval,
		EaseAfter:       r.EaseAfter,
	}
}

// CardReviews fetches a deck's review rows with ids strictly greater
// than sinceID. Zero fetches the full history.
func (c *Client) CardReviews(ctx context.Context, deck string, sinceID int64) ([]ReviewRow, error) {
	var rows []ReviewRow
	params := map[string]any{"deck": deck, "startID": sinceID}
	if err := c.invoke(ctx, "cardReviews", params, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// LatestReviewID returns the id of a deck's most recent review, or
// zero when the deck has none.
func (c *Client) LatestReviewID(ctx context.Context, deck string) (int64, error) {
	var id int64
	if err := c.invoke(ctx, "getLatestReviewID", map[string]any{"deck": deck}, &id); err != nil {
		return 0, err
	}
	return id, nil
}

// NumCardsReviewedToday returns the collection-wide review count for
// the current Anki day.
func (c *Client) NumCardsReviewedToday(ctx context.Context) (int, error) {
	var n int
	if err := c.invoke(ctx, "getNumCardsReviewedToday", nil, &n); err != nil {
		return 0, err
	}
	return n, nil
}

// DayCount is one [date, count] pair from getNumCardsReviewedByDay.
type DayCount struct {
	Date  string
	Count int
}

func (d *DayCount) UnmarshalJSON(data []byte) error {
	var pair [2]json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if err := json.Unmarshal(pair[0], &d.Date); err != nil {
		return fmt.Errorf("parsing day count date: %w", err)
	}
	if err := json.Unmarshal(pair[1], &d.Count); err != nil {
		return fmt.Errorf("parsing day count value: %w", err)
	}
	return nil
}

// NumCardsReviewedByDay returns per-day review counts, most recent
// first.
func (c *Client) NumCardsReviewedByDay(ctx context.Context) ([]DayCount, error) {
	var days []DayCount
	if err := c.invoke(ctx, "getNumCardsReviewedByDay", nil, &days); err != nil {
		return nil, err
	}
	return days, nil
}

// DeckStat is the per-deck card-count summary from getDeckStats.
type DeckStat struct {
	DeckID      int64  `json:"deck_id"`
	Name        string `json:"name"`
	NewCount    int    `json:"new_count"`
	LearnCount  int    `json:"learn_count"`
	ReviewCount int    `json:"review_count"`
	TotalInDeck int    `json:"total_in_deck"`
}

// DeckStats fetches card-count summaries for the named decks, keyed
// by deck id.
func (c *Client) DeckStats(ctx context.Context, decks []string) (map[string]DeckStat, error) {
	stats := make(map[string]DeckStat)
	if err := c.invoke(ctx, "getDeckStats", map[string]any{"decks": decks}, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// ReviewLog fetches historical review events, optionally scoped to a
// deck and bounded below by a timestamp in epoch milliseconds. An
// empty deck means every deck in the collection. An empty result is a
// perfectly normal outcome, not an error.
func (c *Client) ReviewLog(ctx context.Context, deck string, sinceMillis int64) ([]review.LogEntry, error) {
	decks := []string{deck}
	if deck == "" {
		var err error
		decks, err = c.DeckNames(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing decks for review log: %w", err)
		}
	}

	sinceID := int64(0)
	if sinceMillis > 0 {
		sinceID = sinceMillis - 1 // cardReviews is exclusive of startID
	}

	var entries []review.LogEntry
	for _, d := range decks {
		rows, err := c.CardReviews(ctx, d, sinceID)
		if err != nil {
			return nil, fmt.Errorf("fetching reviews for deck %q: %w", d, err)
		}
		for _, r := range rows {
			entries = append(entries, r.LogEntry())
		}
	}
	return entries, nil
}

// CardStates fetches current scheduling snapshots. When cardIDs is
// empty the cards are found by deck (or the whole collection for an
// empty deck).
func (c *Client) CardStates(ctx context.Context, deck string, cardIDs []int64) ([]review.CardState, error) {
	ids := cardIDs
	if len(ids) == 0 {
		query := "deck:*"
		if deck != "" {
			query = fmt.Sprintf("deck:%q", deck)
		}
		var err error
		ids, err = c.FindCards(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("finding cards: %w", err)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	infos, err := c.CardsInfo(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetching card info: %w", err)
	}

	states := make([]review.CardState, 0, len(infos))
	for _, ci := range infos {
		states = append(states, review.CardState{
			CardID:       ci.CardID,
			NoteID:       ci.NoteID,
			DeckName:     ci.DeckName,
			Ease:         ci.Factor,
			Lapses:       ci.Lapses,
			ReviewCount:  ci.Reps,
			IntervalDays: ci.Interval,
			Suspended:    ci.Queue == -1,
		})
	}
	return states, nil
}
