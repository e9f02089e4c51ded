package review

import "fmt"

// CurvePoint is one day of the learning curve. SuccessRate is set
// only when HasRetention is true; a day without reviews has no
// retention figure rather than a zero one.
type CurvePoint struct {
	Day          Day
	Reviews      int
	NewCards     int // reviews that were a card's first ever sighting
	SuccessRate  float64
	HasRetention bool
}

// Curve builds a day-by-day series over the window [now - windowDays,
// now]: exactly windowDays+1 points, with days that saw no reviews
// zero-filled rather than omitted, so the series plots without gaps.
//
// A review whose previous interval is zero or negative is the first
// sighting of its card and counts towards NewCards; true "first seen"
// has to be derived from the interval since the log carries no
// separate flag. Entries outside the window are ignored.
func Curve(entries []LogEntry, windowDays int, nowMillis int64, b Boundary) ([]CurvePoint, error) {
	if windowDays < 0 {
		return nil, &ConfigError{Param: "window_days", Msg: fmt.Sprintf("must not be negative, got %d", windowDays)}
	}

	today := b.DayOf(nowMillis)

	type agg struct{ reviews, newCards, success int }
	byDay := make(map[Day]*agg)
	for _, e := range entries {
		d := b.DayOf(e.TimestampMillis)
		if today.Before(d) || today.Sub(d) > int64(windowDays) {
			continue
		}
		a := byDay[d]
		if a == nil {
			a = &agg{}
			byDay[d] = a
		}
		a.reviews++
		if e.LastInterval <= 0 {
			a.newCards++
		}
		if e.Rating != Again {
			a.success++
		}
	}

	points := make([]CurvePoint, 0, windowDays+1)
	for i := windowDays; i >= 0; i-- {
		d := today.AddDays(-i)
		p := CurvePoint{Day: d}
		if a := byDay[d]; a != nil {
			p.Reviews = a.reviews
			p.NewCards = a.newCards
			p.SuccessRate = float64(a.success) / float64(a.reviews)
			p.HasRetention = true
		}
		points = append(points, p)
	}
	return points, nil
}
