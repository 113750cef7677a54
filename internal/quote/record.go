package quote

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// legacyNamespace scopes the text-derived IDs handed to records that predate
// explicit identifiers.
var legacyNamespace = uuid.MustParse("6f1c8f3e-5d1a-4c57-9a0b-3b8f0d6e2a41")

// Record is a single quote entry.
type Record struct {
	ID        string
	Text      string `validate:"required"`
	Category  string `validate:"required"`
	UpdatedAt time.Time
	// Dirty marks a local change the remote has not acknowledged yet. It is
	// kept in local storage but never exported or pushed.
	Dirty bool
}

// New builds a dirty record with a fresh ID stamped at now.
func New(text, category string, now time.Time) Record {
	return Record{
		ID:        uuid.NewString(),
		Text:      strings.TrimSpace(text),
		Category:  strings.TrimSpace(category),
		UpdatedAt: Stamp(now),
		Dirty:     true,
	}
}

// Stamp reduces t to the millisecond precision timestamps have on the wire,
// so a record read back from the remote or the store compares equal to the
// in-memory original.
func Stamp(t time.Time) time.Time {
	return t.Truncate(time.Millisecond)
}

// LegacyID returns the deterministic identifier for a record that arrived
// without one. The same text filed under two categories yields two IDs.
func LegacyID(text, category string) string {
	key := strings.TrimSpace(text) + "\x00" + strings.TrimSpace(category)
	return uuid.NewSHA1(legacyNamespace, []byte(key)).String()
}

// HasLegacyID reports whether the record's ID is still the one derived from
// its text and category.
func (r Record) HasLegacyID() bool {
	return r.ID == LegacyID(r.Text, r.Category)
}

// SameContent reports whether two records carry identical synced fields.
// Dirty is ignored.
func (r Record) SameContent(other Record) bool {
	return r.ID == other.ID &&
		r.Text == other.Text &&
		r.Category == other.Category &&
		r.UpdatedAt.Equal(other.UpdatedAt)
}

// Normalize trims fields and fills a missing ID or timestamp. It is applied
// once where records enter the program: store load, import and remote fetch.
func Normalize(r Record, now time.Time) Record {
	r.Text = strings.TrimSpace(r.Text)
	r.Category = strings.TrimSpace(r.Category)
	r.ID = strings.TrimSpace(r.ID)
	if r.ID == "" {
		r.ID = LegacyID(r.Text, r.Category)
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = now
	}
	r.UpdatedAt = Stamp(r.UpdatedAt)
	return r
}

// NormalizeAll normalizes every record and drops later duplicates of an ID.
func NormalizeAll(records []Record, now time.Time) []Record {
	if len(records) == 0 {
		return nil
	}
	out := make([]Record, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		r = Normalize(r, now)
		if _, dup := seen[r.ID]; dup {
			continue
		}
		seen[r.ID] = struct{}{}
		out = append(out, r)
	}
	return out
}

// Clone returns an independent copy of records.
func Clone(records []Record) []Record {
	if len(records) == 0 {
		return nil
	}
	dup := make([]Record, len(records))
	copy(dup, records)
	return dup
}

type recordJSON struct {
	ID        string          `json:"id,omitempty"`
	Text      string          `json:"text"`
	Category  string          `json:"category"`
	UpdatedAt json.RawMessage `json:"updatedAt,omitempty"`
	Dirty     bool            `json:"dirty,omitempty"`
}

// MarshalJSON encodes the record with UpdatedAt as Unix milliseconds.
func (r Record) MarshalJSON() ([]byte, error) {
	raw := recordJSON{
		ID:       r.ID,
		Text:     r.Text,
		Category: r.Category,
		Dirty:    r.Dirty,
	}
	if !r.UpdatedAt.IsZero() {
		raw.UpdatedAt = json.RawMessage(strconv.FormatInt(r.UpdatedAt.UnixMilli(), 10))
	}
	return json.Marshal(raw)
}

// UnmarshalJSON accepts UpdatedAt as milliseconds or an RFC3339 string.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw recordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	ts, err := ParseTimestamp(raw.UpdatedAt)
	if err != nil {
		return fmt.Errorf("updatedAt: %w", err)
	}
	*r = Record{
		ID:        raw.ID,
		Text:      raw.Text,
		Category:  raw.Category,
		UpdatedAt: ts,
		Dirty:     raw.Dirty,
	}
	return nil
}

// ParseTimestamp decodes a JSON timestamp that is either a number of Unix
// milliseconds or a time string. Empty and null values yield the zero time.
func ParseTimestamp(raw json.RawMessage) (time.Time, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return time.Time{}, nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return time.Time{}, err
		}
		return parseTimeString(s)
	}
	var ms json.Number
	if err := json.Unmarshal(trimmed, &ms); err != nil {
		return time.Time{}, err
	}
	if n, err := ms.Int64(); err == nil {
		return time.UnixMilli(n), nil
	}
	f, err := ms.Float64()
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(int64(f)), nil
}

func parseTimeString(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.UnixMilli(n), nil
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", value)
}
