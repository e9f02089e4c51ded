package review

import "sort"

// StreakResult holds the streak counts derived from a review history.
// LastStudy is nil when there is no history at all.
type StreakResult struct {
	CurrentDays int
	LongestDays int
	LastStudy   *Day
}

// Streak computes the current and longest runs of consecutive study
// days. Entries may arrive in any order; a day counts once no matter
// how many reviews it saw.
//
// "No review yet today" does not break the current streak as long as
// yesterday has one: the learner still has the rest of today to
// study. That one-day grace applies only to today itself, never to
// gaps further back, and the longest-streak scan ignores now
// entirely.
func Streak(entries []LogEntry, nowMillis int64, b Boundary) StreakResult {
	if len(entries) == 0 {
		return StreakResult{}
	}

	days := make(map[Day]bool, len(entries))
	last := b.DayOf(entries[0].TimestampMillis)
	for _, e := range entries {
		d := b.DayOf(e.TimestampMillis)
		days[d] = true
		if last.Before(d) {
			last = d
		}
	}

	today := b.DayOf(nowMillis)
	start := today
	if !days[start] {
		start = today.Prev() // grace period for an unfinished today
	}
	current := 0
	for d := start; days[d]; d = d.Prev() {
		current++
	}

	sorted := make([]Day, 0, len(days))
	for d := range days {
		sorted = append(sorted, d)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	longest, run := 0, 0
	for i, d := range sorted {
		if i > 0 && d.Sub(sorted[i-1]) == 1 {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}

	return StreakResult{CurrentDays: current, LongestDays: longest, LastStudy: &last}
}
