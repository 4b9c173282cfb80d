package models

// TimeRange represents the selected history window.
type TimeRange int

const (
	// TimeRange7Days shows the last week.
	TimeRange7Days TimeRange = iota
	// TimeRange14Days shows the last two weeks.
	TimeRange14Days
	// TimeRange30Days shows the last 30 days.
	TimeRange30Days
)

// String returns the display name for a time range.
func (t TimeRange) String() string {
	switch t {
	case TimeRange7Days:
		return "7 Days"
	case TimeRange14Days:
		return "14 Days"
	case TimeRange30Days:
		return "30 Days"
	default:
		return "Unknown"
	}
}

// Days returns the number of days in the window.
func (t TimeRange) Days() int {
	switch t {
	case TimeRange7Days:
		return 7
	case TimeRange14Days:
		return 14
	case TimeRange30Days:
		return 30
	default:
		return 7
	}
}

// Next cycles to the next time range.
func (t TimeRange) Next() TimeRange {
	return (t + 1) % 3
}

// TimeRangeFor returns the range whose window matches days, defaulting to
// seven days.
func TimeRangeFor(days int) TimeRange {
	switch days {
	case 14:
		return TimeRange14Days
	case 30:
		return TimeRange30Days
	default:
		return TimeRange7Days
	}
}
