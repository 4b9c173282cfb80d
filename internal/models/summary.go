package models

import (
	"cmp"
	"maps"
	"slices"

	"github.com/j-veylop/dhikr-tally/internal/counter"
)

// CategoryTotal is the sum of one category over a window.
type CategoryTotal struct {
	ID    string
	Label string
	Count int
}

// Summary aggregates a window of day records for one kind.
type Summary struct {
	Kind       Kind
	Days       []counter.DayRecord
	Categories []CategoryTotal
	Total      int
	Average    float64
	BestDay    counter.DayRecord
	Streak     int
	ActiveDays int
}

// BuildSummary aggregates days, which must be ordered oldest first.
func BuildSummary(kind Kind, days []counter.DayRecord, catalogue Catalogue) Summary {
	s := Summary{Kind: kind, Days: days}
	if len(days) == 0 {
		return s
	}

	perCategory := make(map[string]int)
	for _, d := range days {
		s.Total += d.Total
		if d.Total > 0 {
			s.ActiveDays++
		}
		if d.Total > s.BestDay.Total {
			s.BestDay = d
		}
		for id, n := range d.Details {
			perCategory[id] += n
		}
	}
	s.Average = float64(s.Total) / float64(len(days))

	// Streak counts back from the last day; an empty today does not break it.
	i := len(days) - 1
	if days[i].Total == 0 {
		i--
	}
	for ; i >= 0 && days[i].Total > 0; i-- {
		s.Streak++
	}

	for _, id := range slices.Sorted(maps.Keys(perCategory)) {
		s.Categories = append(s.Categories, CategoryTotal{
			ID:    id,
			Label: catalogue.Label(kind, id),
			Count: perCategory[id],
		})
	}
	slices.SortStableFunc(s.Categories, func(a, b CategoryTotal) int {
		return cmp.Compare(b.Count, a.Count)
	})

	return s
}

// HasData returns true if any day in the window has a count.
func (s Summary) HasData() bool {
	return s.Total > 0
}

// Series returns the daily totals as float64 for charting.
func (s Summary) Series() []float64 {
	out := make([]float64, len(s.Days))
	for i, d := range s.Days {
		out[i] = float64(d.Total)
	}
	return out
}

// Today returns the last record of the window.
func (s Summary) Today() counter.DayRecord {
	if len(s.Days) == 0 {
		return counter.DayRecord{}
	}
	return s.Days[len(s.Days)-1]
}
