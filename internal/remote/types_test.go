package remote

import (
	"encoding/json"
	"testing"
	"time"
)

func TestFlexID_AcceptsNumbersAndStrings(t *testing.T) {
	cases := map[string]FlexID{
		`{"id":12}`:     "12",
		`{"id":" x1 "}`: "x1",
		`{"id":null}`:   "",
		`{}`:            "",
	}
	for in, want := range cases {
		var p Post
		if err := json.Unmarshal([]byte(in), &p); err != nil {
			t.Fatalf("Unmarshal(%s) returned error: %v", in, err)
		}
		if p.ID != want {
			t.Fatalf("Unmarshal(%s) id = %q, want %q", in, p.ID, want)
		}
	}
}

func TestPostToRecord_UnreadableTimestampFallsBack(t *testing.T) {
	fetchedAt := time.UnixMilli(77)
	p := Post{ID: "9", Title: "T", UpdatedAt: json.RawMessage(`"whenever"`)}
	rec, ok := p.ToRecord("Server", fetchedAt)
	if !ok {
		t.Fatalf("ToRecord returned !ok")
	}
	if !rec.UpdatedAt.Equal(fetchedAt) {
		t.Fatalf("UpdatedAt = %v, want %v", rec.UpdatedAt, fetchedAt)
	}
}

func TestPostToRecord_MissingIDUsesLegacyIdentity(t *testing.T) {
	rec, ok := Post{Title: "Untagged"}.ToRecord("Server", time.UnixMilli(1))
	if !ok {
		t.Fatalf("ToRecord returned !ok")
	}
	if !rec.HasLegacyID() {
		t.Fatalf("ID = %q, want legacy id for text", rec.ID)
	}
}
