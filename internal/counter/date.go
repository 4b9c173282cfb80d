package counter

import (
	"fmt"
	"sync"
	"time"
)

// DateLayout is the key suffix format, YYYY-MM-DD.
const DateLayout = "2006-01-02"

// Date is a calendar date in the local time zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.Local)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// AddDays returns the date n days after d. Negative n goes back.
func (d Date) AddDays(n int) Date {
	// Noon avoids DST edges shifting the day.
	t := time.Date(d.Year, d.Month, d.Day+n, 12, 0, 0, 0, time.Local)
	return DateOf(t)
}

// Before reports whether d is earlier than other.
func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

// Weekday returns the day of the week of d.
func (d Date) Weekday() time.Weekday {
	return time.Date(d.Year, d.Month, d.Day, 12, 0, 0, 0, time.Local).Weekday()
}

// Clock supplies the current local calendar date.
type Clock interface {
	Today() Date
}

// SystemClock reads the wall clock in the local zone.
type SystemClock struct{}

// Today implements Clock.
func (SystemClock) Today() Date {
	return DateOf(time.Now())
}

// ManualClock is a Clock whose date only moves when told to.
type ManualClock struct {
	mu   sync.Mutex
	date Date
}

// NewManualClock returns a clock fixed at d.
func NewManualClock(d Date) *ManualClock {
	return &ManualClock{date: d}
}

// Today implements Clock.
func (c *ManualClock) Today() Date {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.date
}

// Set moves the clock to d.
func (c *ManualClock) Set(d Date) {
	c.mu.Lock()
	c.date = d
	c.mu.Unlock()
}

// Advance moves the clock n days forward.
func (c *ManualClock) Advance(n int) {
	c.mu.Lock()
	c.date = c.date.AddDays(n)
	c.mu.Unlock()
}
