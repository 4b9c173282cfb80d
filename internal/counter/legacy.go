package counter

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/j-veylop/dhikr-tally/internal/kv"
	"github.com/j-veylop/dhikr-tally/internal/logger"
)

// SingleSlotCategory is the breakdown entry a migrated single-slot count is
// filed under. The single-slot scheme predates phrase selection, so its
// counts belong to the first phrase.
const SingleSlotCategory = "0"

// ImportSingleSlot migrates the older single-slot scheme, where one key held
// the running count and another held the date it belonged to. The count is
// written as {count, {"0": count}} under the dated key for that date unless
// a record already exists there. The single-slot keys are only read.
//
// It reports whether a record was written. Missing slots are not an error.
func (s *Store) ImportSingleSlot(ctx context.Context, countKey, dateKey string) (bool, error) {
	rawDate, ok, err := s.backend.Get(ctx, dateKey)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrStorageRead, err)
	}
	if !ok {
		return false, nil
	}

	rawCount, ok, err := s.backend.Get(ctx, countKey)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrStorageRead, err)
	}
	if !ok {
		return false, nil
	}

	d, err := ParseDate(strings.TrimSpace(rawDate))
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	count, err := strconv.Atoi(strings.TrimSpace(rawCount))
	if err != nil || count < 0 {
		return false, fmt.Errorf("%w: single-slot count %q", ErrDecode, rawCount)
	}
	if count == 0 {
		return false, nil
	}

	value, err := DayRecord{
		Total:   count,
		Details: map[string]int{SingleSlotCategory: count},
	}.Encode()
	if err != nil {
		return false, err
	}

	written, err := kv.SetIfAbsent(ctx, s.backend, s.Key(d), value)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrStorageWrite, err)
	}
	if written {
		logger.Info("imported single-slot count", "namespace", s.namespace, "date", d.String(), "count", count)
	}
	return written, nil
}
