package review

import "time"

const millisPerDay = 24 * 60 * 60 * 1000

// Boundary decides which calendar day a timestamp belongs to.
// UTCOffsetMinutes shifts UTC into the learner's local time.
// DayStartHour moves the cutover away from midnight, the way Anki's
// "next day starts at" preference works: a review at local time
// before that hour still counts towards the previous day.
type Boundary struct {
	UTCOffsetMinutes int
	DayStartHour     int
}

// Day is a calendar-day bucket under some Boundary. Days compare and
// subtract as whole days, so consecutive study days differ by exactly
// one.
type Day struct {
	n int64 // days since the Unix epoch, boundary-local
}

// DayOf buckets an epoch-milliseconds timestamp. The mapping is
// monotone, and a timestamp exactly at the cutover instant belongs to
// the day that starts there, not the day that just ended.
func (b Boundary) DayOf(millis int64) Day {
	shifted := millis + int64(b.UTCOffsetMinutes)*60*1000 - int64(b.DayStartHour)*60*60*1000
	n := shifted / millisPerDay
	if shifted < 0 && shifted%millisPerDay != 0 {
		n-- // floor, not truncate, for pre-epoch timestamps
	}
	return Day{n: n}
}

func (d Day) Prev() Day { return Day{n: d.n - 1} }

func (d Day) Next() Day { return Day{n: d.n + 1} }

func (d Day) Before(o Day) bool { return d.n < o.n }

// Sub returns the number of days from o up to d.
func (d Day) Sub(o Day) int64 { return d.n - o.n }

// AddDays returns the day n days after d (or before, for negative n).
func (d Day) AddDays(n int) Day { return Day{n: d.n + int64(n)} }

// Date returns the bucket's civil date as a midnight UTC time. Only
// the year, month and day carry meaning.
func (d Day) Date() time.Time { return time.Unix(d.n*86400, 0).UTC() }

func (d Day) String() string { return d.Date().Format("2006-01-02") }
