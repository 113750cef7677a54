package remote

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/five82/quotebox/internal/quote"
)

// Post mirrors an item returned by the remote endpoint. Only id and title are
// guaranteed; text, category and updatedAt are used when the endpoint
// provides them.
type Post struct {
	ID        FlexID          `json:"id"`
	UserID    int             `json:"userId,omitempty"`
	Title     string          `json:"title"`
	Body      string          `json:"body"`
	Text      string          `json:"text,omitempty"`
	Category  string          `json:"category,omitempty"`
	UpdatedAt json.RawMessage `json:"updatedAt,omitempty"`
}

// FlexID accepts identifiers encoded as JSON numbers or strings.
type FlexID string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*f = ""
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*f = FlexID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return err
	}
	*f = FlexID(n.String())
	return nil
}

// PushPayload is the body sent when pushing a local record.
type PushPayload struct {
	ID        string `json:"id,omitempty"`
	UserID    int    `json:"userId"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	Category  string `json:"category"`
	UpdatedAt int64  `json:"updatedAt"`
}

// ToRecord maps a remote post into the local record shape. category is the
// fallback used when the post carries none. The post's own updatedAt is kept
// when present; only when it is missing or unreadable is fetchedAt stamped.
func (p Post) ToRecord(category string, fetchedAt time.Time) (quote.Record, bool) {
	text := strings.TrimSpace(p.Text)
	if text == "" {
		text = strings.TrimSpace(p.Title)
	}
	if text == "" {
		return quote.Record{}, false
	}
	cat := strings.TrimSpace(p.Category)
	if cat == "" {
		cat = category
	}
	ts, err := quote.ParseTimestamp(p.UpdatedAt)
	if err != nil {
		ts = time.Time{}
	}
	rec := quote.Normalize(quote.Record{
		ID:        string(p.ID),
		Text:      text,
		Category:  cat,
		UpdatedAt: ts,
	}, fetchedAt)
	return rec, true
}

func payloadFor(r quote.Record) PushPayload {
	return PushPayload{
		ID:        r.ID,
		UserID:    1,
		Title:     r.Text,
		Body:      r.Category,
		Category:  r.Category,
		UpdatedAt: r.UpdatedAt.UnixMilli(),
	}
}
