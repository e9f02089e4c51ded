package tools

import (
	"strings"
	"testing"
	"time"

	"github.com/conorfennell/ankimcp/internal/anki"
	"github.com/conorfennell/ankimcp/internal/review"
)

func dayOf(t *testing.T, date string) review.Day {
	t.Helper()
	ts, err := time.Parse("2006-01-02", date)
	if err != nil {
		t.Fatalf("bad date %s: %v", date, err)
	}
	return review.Boundary{}.DayOf(ts.UnixMilli())
}

func TestFormatStreak(t *testing.T) {
	t.Run("no history", func(t *testing.T) {
		got := formatStreak(review.StreakResult{}, "")
		if got != "No study history found for all decks." {
			t.Errorf("Expected no-history message, got %q", got)
		}
	})

	t.Run("singular day", func(t *testing.T) {
		last := dayOf(t, "2025-06-10")
		got := formatStreak(review.StreakResult{CurrentDays: 1, LongestDays: 9, LastStudy: &last}, "Spanish")
		if !strings.Contains(got, "deck 'Spanish'") {
			t.Errorf("Expected deck scope in output, got %q", got)
		}
		if !strings.Contains(got, "Current streak: 1 day\n") {
			t.Errorf("Expected singular day form, got %q", got)
		}
		if !strings.Contains(got, "Longest streak: 9 days") {
			t.Errorf("Expected longest streak line, got %q", got)
		}
		if !strings.Contains(got, "Last studied: 2025-06-10") {
			t.Errorf("Expected last studied date, got %q", got)
		}
	})
}

func TestFormatRetention(t *testing.T) {
	t.Run("no data", func(t *testing.T) {
		got := formatRetention(review.RetentionSummary{}, "French", 30)
		if got != "No reviews found for deck 'French' in the last 30 days." {
			t.Errorf("Expected no-data message, got %q", got)
		}
	})

	t.Run("with reviews", func(t *testing.T) {
		summary := review.RetentionSummary{
			Total: 10,
			ByRating: map[review.Rating]int{
				review.Again: 2,
				review.Good:  6,
				review.Easy:  2,
			},
			SuccessRate: 0.8,
		}
		got := formatRetention(summary, "", 7)
		if !strings.Contains(got, "Success rate: 80.0%") {
			t.Errorf("Expected success rate line, got %q", got)
		}
		if !strings.Contains(got, "Lapse rate: 20.0%") {
			t.Errorf("Expected lapse rate line, got %q", got)
		}
		if !strings.Contains(got, "Again 2, Hard 0, Good 6, Easy 2") {
			t.Errorf("Expected answer breakdown, got %q", got)
		}
	})
}

func TestFormatCurve(t *testing.T) {
	d0 := dayOf(t, "2025-06-08")
	d1 := dayOf(t, "2025-06-09")
	d2 := dayOf(t, "2025-06-10")

	t.Run("empty window", func(t *testing.T) {
		points := []review.CurvePoint{{Day: d0}, {Day: d1}, {Day: d2}}
		got := formatCurve(points, "")
		if got != "No reviews found for all decks in the last 2 days." {
			t.Errorf("Expected no-data message, got %q", got)
		}
	})

	t.Run("mixed days", func(t *testing.T) {
		points := []review.CurvePoint{
			{Day: d0, Reviews: 4, NewCards: 1, SuccessRate: 0.5, HasRetention: true},
			{Day: d1},
			{Day: d2, Reviews: 6, NewCards: 0, SuccessRate: 1.0, HasRetention: true},
		}
		got := formatCurve(points, "Spanish")
		if !strings.Contains(got, "2025-06-08: 4 reviews, 1 new, 50.0% success") {
			t.Errorf("Expected full line for first day, got %q", got)
		}
		if !strings.Contains(got, "2025-06-09: no reviews") {
			t.Errorf("Expected zero-fill line, got %q", got)
		}
		if !strings.Contains(got, "Trend: improving") {
			t.Errorf("Expected improving trend, got %q", got)
		}
	})

	t.Run("trend omitted without both halves", func(t *testing.T) {
		points := []review.CurvePoint{
			{Day: d0},
			{Day: d1},
			{Day: d2, Reviews: 6, SuccessRate: 1.0, HasRetention: true},
		}
		got := formatCurve(points, "")
		if strings.Contains(got, "Trend:") {
			t.Errorf("Expected no trend line when older half has no data, got %q", got)
		}
	})
}

func TestFormatProblemCards(t *testing.T) {
	t.Run("none found", func(t *testing.T) {
		got := formatProblemCards(nil, review.LowEase, "Spanish")
		if got != "No problem cards found in deck 'Spanish' (criteria: low_ease)." {
			t.Errorf("Expected empty message, got %q", got)
		}
	})

	t.Run("lists cards", func(t *testing.T) {
		cards := []review.CardState{
			{CardID: 7, DeckName: "Spanish", Ease: 1300, Lapses: 9, ReviewCount: 40, IntervalDays: 3},
			{CardID: 8, DeckName: "Spanish", Ease: 1900, Lapses: 2, ReviewCount: 12, IntervalDays: 10, Suspended: true},
		}
		got := formatProblemCards(cards, review.AllProblems, "")
		if !strings.Contains(got, "Found 2 problem cards in all decks (criteria: all)") {
			t.Errorf("Expected header, got %q", got)
		}
		if !strings.Contains(got, "Card 7 (Spanish): ease 1300, lapses 9, 40 reviews, interval 3d") {
			t.Errorf("Expected card detail line, got %q", got)
		}
		if !strings.Contains(got, "Card 8 (Spanish): ease 1900, lapses 2, 12 reviews, interval 10d [suspended]") {
			t.Errorf("Expected suspended marker, got %q", got)
		}
	})
}

func TestMergeTags(t *testing.T) {
	got := mergeTags([]string{"spanish", "verb"}, []string{"verb", "irregular"})
	want := []string{"spanish", "verb", "irregular"}
	if len(got) != len(want) {
		t.Fatalf("Expected %d tags, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Expected tag %q at %d, got %q", want[i], i, got[i])
		}
	}
}

func TestFormatNoteFields(t *testing.T) {
	note := anki.NoteInfo{
		NoteID: 42,
		Fields: map[string]anki.NoteField{
			"Back":  {Value: strings.Repeat("x", 60), Order: 1},
			"Front": {Value: "hola", Order: 0},
		},
	}
	got := formatNoteFields(note)
	if !strings.HasPrefix(got, "Front: hola | Back: ") {
		t.Errorf("Expected fields in display order, got %q", got)
	}
	if strings.Contains(got, strings.Repeat("x", 51)) {
		t.Errorf("Expected back field truncated to 50 chars, got %q", got)
	}
}
