package counter

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// DayRecord is one day's tally with its per-category breakdown.
type DayRecord struct {
	Date    Date           `json:"-"`
	Total   int            `json:"total"`
	Details map[string]int `json:"details"`
}

// EmptyRecord returns the zero tally for d.
func EmptyRecord(d Date) DayRecord {
	return DayRecord{Date: d, Details: map[string]int{}}
}

// Clone returns a deep copy of r.
func (r DayRecord) Clone() DayRecord {
	c := r
	c.Details = maps.Clone(r.Details)
	if c.Details == nil {
		c.Details = map[string]int{}
	}
	return c
}

// Categories returns the category ids present in the breakdown, sorted.
func (r DayRecord) Categories() []string {
	return slices.Sorted(maps.Keys(r.Details))
}

// Encode serializes r in the persisted JSON shape.
func (r DayRecord) Encode() (string, error) {
	if r.Details == nil {
		r.Details = map[string]int{}
	}
	b, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("failed to encode record: %w", err)
	}
	return string(b), nil
}

func sumDetails(details map[string]int) int {
	total := 0
	for _, n := range details {
		total += n
	}
	return total
}

// StoredValue is a decoded persisted value: either LegacyCount or Record.
type StoredValue interface {
	isStoredValue()
}

// LegacyCount is the older flat-integer format: a total with no breakdown.
type LegacyCount int

func (LegacyCount) isStoredValue() {}

// Record is the current {total, details} format.
type Record struct {
	Total   int            `json:"total"`
	Details map[string]int `json:"details"`
}

func (Record) isStoredValue() {}

// ParseStored decodes a raw persisted value. A bare decimal integer is a
// LegacyCount; a JSON object is a Record. Anything else, or a negative
// count, fails with ErrDecode.
func ParseStored(raw string) (StoredValue, error) {
	s := strings.TrimSpace(raw)

	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return nil, fmt.Errorf("%w: negative count %d", ErrDecode, n)
		}
		return LegacyCount(n), nil
	}

	if !strings.HasPrefix(s, "{") {
		return nil, fmt.Errorf("%w: unexpected value %q", ErrDecode, truncate(s, 32))
	}

	var rec Record
	if err := json.Unmarshal([]byte(s), &rec); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if rec.Total < 0 {
		return nil, fmt.Errorf("%w: negative total %d", ErrDecode, rec.Total)
	}
	for k, n := range rec.Details {
		if n < 0 {
			return nil, fmt.Errorf("%w: negative count for %q", ErrDecode, k)
		}
	}
	return rec, nil
}

// MigrateLegacy normalizes a stored value into a DayRecord. The returned
// record carries no date. A Record with a non-empty breakdown has its total
// recomputed from the breakdown.
func MigrateLegacy(v StoredValue) DayRecord {
	switch v := v.(type) {
	case LegacyCount:
		return DayRecord{Total: int(v), Details: map[string]int{}}
	case Record:
		details := maps.Clone(v.Details)
		if details == nil {
			details = map[string]int{}
		}
		total := v.Total
		if len(details) > 0 {
			total = sumDetails(details)
		}
		return DayRecord{Total: total, Details: details}
	default:
		return DayRecord{Details: map[string]int{}}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
