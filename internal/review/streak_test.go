package review

import "testing"

// entryOnDay places a single Good review at noon of the given day
// number under the default boundary.
func entryOnDay(day int64) LogEntry {
	return LogEntry{
		CardID:          1,
		TimestampMillis: day*millisPerDay + 12*60*60*1000,
		Rating:          Good,
	}
}

func noonOf(day int64) int64 {
	return day*millisPerDay + 12*60*60*1000
}

func TestStreak(t *testing.T) {
	b := Boundary{}

	t.Run("empty history", func(t *testing.T) {
		res := Streak(nil, noonOf(100), b)
		if res.CurrentDays != 0 || res.LongestDays != 0 {
			t.Errorf("Expected zero streaks for empty history, got %+v", res)
		}
		if res.LastStudy != nil {
			t.Errorf("Expected no last-study day, got %v", *res.LastStudy)
		}
	})

	t.Run("single day of study", func(t *testing.T) {
		res := Streak([]LogEntry{entryOnDay(100)}, noonOf(100), b)
		if res.CurrentDays != 1 {
			t.Errorf("Expected current streak of 1, got %d", res.CurrentDays)
		}
		if res.LongestDays != 1 {
			t.Errorf("Expected longest streak of 1, got %d", res.LongestDays)
		}
	})

	t.Run("four consecutive days ending today", func(t *testing.T) {
		entries := []LogEntry{entryOnDay(97), entryOnDay(98), entryOnDay(99), entryOnDay(100)}
		res := Streak(entries, noonOf(100), b)
		if res.CurrentDays != 4 {
			t.Errorf("Expected current streak of 4, got %d", res.CurrentDays)
		}
	})

	t.Run("grace period keeps yesterday's streak alive", func(t *testing.T) {
		// Studied up to yesterday, nothing yet today.
		entries := []LogEntry{entryOnDay(97), entryOnDay(98), entryOnDay(99)}
		res := Streak(entries, noonOf(100), b)
		if res.CurrentDays != 3 {
			t.Errorf("Expected the streak to survive an unfinished today, got %d", res.CurrentDays)
		}
	})

	t.Run("grace does not reach past yesterday", func(t *testing.T) {
		// Days 95..97 and 99, nothing on 98 or 100 (today). The run
		// counted from yesterday stops at the missing day 98.
		entries := []LogEntry{entryOnDay(95), entryOnDay(96), entryOnDay(97), entryOnDay(99)}
		res := Streak(entries, noonOf(100), b)
		if res.CurrentDays != 1 {
			t.Errorf("Expected current streak of 1, got %d", res.CurrentDays)
		}
		if res.LongestDays != 3 {
			t.Errorf("Expected longest streak of 3 (days 95..97), got %d", res.LongestDays)
		}
	})

	t.Run("gap of two days breaks the streak", func(t *testing.T) {
		entries := []LogEntry{entryOnDay(97)}
		res := Streak(entries, noonOf(100), b)
		if res.CurrentDays != 0 {
			t.Errorf("Expected a dead streak, got %d", res.CurrentDays)
		}
		if res.LongestDays != 1 {
			t.Errorf("Expected longest streak of 1, got %d", res.LongestDays)
		}
	})

	t.Run("unsorted input with many reviews per day", func(t *testing.T) {
		entries := []LogEntry{
			entryOnDay(99), entryOnDay(97), entryOnDay(98),
			entryOnDay(98), entryOnDay(100), entryOnDay(98),
		}
		res := Streak(entries, noonOf(100), b)
		if res.CurrentDays != 4 {
			t.Errorf("Expected current streak of 4 from unsorted input, got %d", res.CurrentDays)
		}
		if res.LastStudy == nil || res.LastStudy.String() != b.DayOf(noonOf(100)).String() {
			t.Errorf("Expected last study day to be today, got %v", res.LastStudy)
		}
	})

	t.Run("longest streak ignores now", func(t *testing.T) {
		// A long historical run, then a lone recent day.
		entries := []LogEntry{
			entryOnDay(10), entryOnDay(11), entryOnDay(12),
			entryOnDay(13), entryOnDay(14), entryOnDay(100),
		}
		res := Streak(entries, noonOf(100), b)
		if res.LongestDays != 5 {
			t.Errorf("Expected longest streak of 5, got %d", res.LongestDays)
		}
		if res.CurrentDays != 1 {
			t.Errorf("Expected current streak of 1, got %d", res.CurrentDays)
		}
	})
}

func TestStreakIdempotent(t *testing.T) {
	entries := []LogEntry{entryOnDay(98), entryOnDay(99), entryOnDay(100)}
	first := Streak(entries, noonOf(100), Boundary{})
	second := Streak(entries, noonOf(100), Boundary{})
	if first.CurrentDays != second.CurrentDays || first.LongestDays != second.LongestDays {
		t.Errorf("Expected identical results for identical inputs: %+v vs %+v", first, second)
	}
}
