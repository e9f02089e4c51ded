package review

// Rating is the answer button the learner pressed on a review.
// The values match Anki's 1-4 answer buttons:
// 1: Again (forgot)
// 2: Hard
// 3: Good
// 4: Easy
type Rating int

const (
	Again Rating = 1
	Hard  Rating = 2
	Good  Rating = 3
	Easy  Rating = 4
)

func (r Rating) String() string {
	switch r {
	case Again:
		return "again"
	case Hard:
		return "hard"
	case Good:
		return "good"
	case Easy:
		return "easy"
	}
	return "unknown"
}

// LogEntry is one historical review event, immutable once recorded.
// The sequence of entries for a card, ordered by timestamp, is its
// full review trajectory.
type LogEntry struct {
	CardID          int64
	TimestampMillis int64 // epoch milliseconds, UTC
	Rating          Rating
	NewInterval     int // scheduled interval after the review, days
	LastInterval    int // interval before the review; <= 0 means the card was new
	EaseAfter       int // ease factor after the review, permille
}

// CardState is a card's current scheduling snapshot, as opposed to
// its history. Lapses never exceeds ReviewCount.
type CardState struct {
	CardID       int64
	NoteID       int64
	DeckName     string
	Ease         int // permille, nominally 1300-5000
	Lapses       int
	ReviewCount  int
	IntervalDays int
	Suspended    bool
}
