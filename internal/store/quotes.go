package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/five82/quotebox/internal/quote"
)

// Keys used in the kv table.
const (
	KeyQuotes   = "quotes"
	KeyLastSync = "lastSync"
	KeyPrefs    = "prefs"
)

// LoadQuotes returns the stored collection. A missing or malformed value
// yields the seed collection; only database failures are returned as errors.
// Dirty flags survive a reload so unpushed edits are retried.
func (s *Store) LoadQuotes(ctx context.Context) ([]quote.Record, error) {
	now := s.now()
	raw, err := s.Get(ctx, KeyQuotes)
	if err != nil {
		return quote.Seed(now), err
	}
	if len(raw) == 0 {
		return quote.Seed(now), nil
	}
	var records []quote.Record
	if err := json.Unmarshal(raw, &records); err != nil {
		return quote.Seed(now), nil
	}
	return quote.NormalizeAll(records, now), nil
}

// SaveQuotes replaces the stored collection.
func (s *Store) SaveQuotes(ctx context.Context, records []quote.Record) error {
	if records == nil {
		records = []quote.Record{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode quotes: %w", err)
	}
	return s.Set(ctx, KeyQuotes, data)
}

// LastSync returns the advisory sync cursor, zero when never synced.
func (s *Store) LastSync(ctx context.Context) (time.Time, error) {
	raw, err := s.Get(ctx, KeyLastSync)
	if err != nil || len(raw) == 0 {
		return time.Time{}, err
	}
	ms, err := strconv.ParseInt(strings.TrimSpace(string(raw)), 10, 64)
	if err != nil {
		return time.Time{}, nil
	}
	return time.UnixMilli(ms), nil
}

// SetLastSync records the time of the last successful sync cycle.
func (s *Store) SetLastSync(ctx context.Context, at time.Time) error {
	return s.Set(ctx, KeyLastSync, []byte(strconv.FormatInt(at.UnixMilli(), 10)))
}
