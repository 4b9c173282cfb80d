package db

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// ReadAsyncStorageDump parses an AsyncStorage export from the mobile app.
// Two shapes are accepted: a JSON object of key -> string value, and the
// multiGet shape, an array of [key, value] pairs. Null values are skipped.
func ReadAsyncStorageDump(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dump: %w", err)
	}
	return ParseAsyncStorageDump(data)
}

// ParseAsyncStorageDump parses the bytes of an AsyncStorage export.
func ParseAsyncStorageDump(data []byte) (map[string]string, error) {
	// 1. Object form
	var obj map[string]*string
	if err := json.Unmarshal(data, &obj); err == nil {
		entries := make(map[string]string, len(obj))
		for k, v := range obj {
			if v != nil {
				entries[k] = *v
			}
		}
		return entries, nil
	}

	// 2. multiGet pairs
	var pairs [][]*string
	if err := json.Unmarshal(data, &pairs); err == nil {
		entries := make(map[string]string, len(pairs))
		for _, p := range pairs {
			if len(p) != 2 || p[0] == nil || p[1] == nil {
				continue
			}
			entries[*p[0]] = *p[1]
		}
		return entries, nil
	}

	return nil, fmt.Errorf("failed to parse dump: invalid format")
}

// ImportEntries copies entries whose key starts with one of prefixes into the
// database. Existing keys are left untouched. It returns how many were added.
func (db *DB) ImportEntries(ctx context.Context, entries map[string]string, prefixes []string) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin import: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, "INSERT OR IGNORE INTO kv_entries (key, value) VALUES (?, ?)")
	if err != nil {
		return 0, fmt.Errorf("failed to prepare import: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	imported := 0
	for k, v := range entries {
		if !hasAnyPrefix(k, prefixes) {
			continue
		}
		res, err := stmt.ExecContext(ctx, k, v)
		if err != nil {
			return 0, fmt.Errorf("failed to import %s: %w", k, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			imported += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit import: %w", err)
	}
	return imported, nil
}

func hasAnyPrefix(s string, prefixes []string) bool {
	if len(prefixes) == 0 {
		return true
	}
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
