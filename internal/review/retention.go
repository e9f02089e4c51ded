package review

// RetentionSummary describes how a window of reviews went. The rates
// are meaningful only when HasData reports true: an empty window
// yields no computed rates, never a misleading zero.
type RetentionSummary struct {
	Total       int
	ByRating    map[Rating]int
	SuccessRate float64 // fraction of reviews rated better than Again
}

// HasData reports whether the summary covers at least one review.
func (s RetentionSummary) HasData() bool { return s.Total > 0 }

// LapseRate is derived from the success rate rather than counted
// separately, so the two always sum to one.
func (s RetentionSummary) LapseRate() float64 { return 1 - s.SuccessRate }

// Retention summarises a set of review entries. Windowing and deck
// filtering are the caller's job; entries are taken as given, in any
// order.
func Retention(entries []LogEntry) RetentionSummary {
	s := RetentionSummary{ByRating: make(map[Rating]int)}
	for _, e := range entries {
		s.Total++
		s.ByRating[e.Rating]++
	}
	if s.Total == 0 {
		return s
	}
	s.SuccessRate = float64(s.Total-s.ByRating[Again]) / float64(s.Total)
	return s
}
