package quote

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_StampsDirtyRecordWithID(t *testing.T) {
	now := time.UnixMilli(5000)
	r := New("  Stay curious.  ", " Wisdom ", now)

	assert.NotEmpty(t, r.ID)
	assert.Equal(t, "Stay curious.", r.Text)
	assert.Equal(t, "Wisdom", r.Category)
	assert.True(t, r.UpdatedAt.Equal(now))
	assert.True(t, r.Dirty)
	assert.False(t, r.HasLegacyID())
}

func TestNormalize_DefaultsMissingFields(t *testing.T) {
	now := time.UnixMilli(42)
	r := Normalize(Record{Text: " X ", Category: "C"}, now)

	assert.Equal(t, "X", r.Text)
	assert.Equal(t, LegacyID("X", "C"), r.ID)
	assert.True(t, r.HasLegacyID())
	assert.True(t, r.UpdatedAt.Equal(now))

	kept := Normalize(Record{ID: "a", Text: "X", Category: "C", UpdatedAt: time.UnixMilli(7)}, now)
	assert.Equal(t, "a", kept.ID)
	assert.Equal(t, int64(7), kept.UpdatedAt.UnixMilli())
}

func TestNew_StampsAtMillisecondPrecision(t *testing.T) {
	now := time.Date(2026, 1, 2, 0, 0, 0, 123_456_789, time.UTC)
	r := New("Stay curious.", "Wisdom", now)
	assert.Equal(t, 123_000_000, r.UpdatedAt.Nanosecond())

	data, err := json.Marshal(r)
	require.NoError(t, err)
	var back Record
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, r.SameContent(back), "encoded %s", data)

	n := Normalize(Record{Text: "X", Category: "C"}, now)
	assert.Equal(t, 123_000_000, n.UpdatedAt.Nanosecond())
}

func TestLegacyID_IsDeterministic(t *testing.T) {
	assert.Equal(t, LegacyID("same text", "C"), LegacyID(" same text ", " C "))
	assert.NotEqual(t, LegacyID("one", "C"), LegacyID("two", "C"))
	assert.NotEqual(t, LegacyID("same text", "Ethics"), LegacyID("same text", "Parenting"))
}

func TestNormalizeAll_DropsDuplicateIDs(t *testing.T) {
	now := time.UnixMilli(1)
	out := NormalizeAll([]Record{
		{ID: "a", Text: "first", Category: "C"},
		{ID: "a", Text: "second", Category: "C"},
		{Text: "legacy", Category: "C"},
		{Text: "legacy", Category: "D"},
	}, now)

	require.Len(t, out, 3)
	assert.Equal(t, "first", out[0].Text)
	assert.Equal(t, "C", out[1].Category)
	assert.Equal(t, "D", out[2].Category)
	assert.Nil(t, NormalizeAll(nil, now))
}

func TestRecordJSON_MillisecondTimestamps(t *testing.T) {
	r := Record{ID: "a", Text: "X", Category: "C1", UpdatedAt: time.UnixMilli(100)}
	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"a","text":"X","category":"C1","updatedAt":100}`, string(data))

	var back Record
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, r.SameContent(back))
}

func TestRecordJSON_AcceptsStringTimestampsAndDirty(t *testing.T) {
	var r Record
	require.NoError(t, json.Unmarshal([]byte(`{"text":"X","category":"C","updatedAt":"2024-05-01T10:00:00Z","dirty":true}`), &r))
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC).UnixMilli(), r.UpdatedAt.UnixMilli())
	assert.True(t, r.Dirty)

	require.NoError(t, json.Unmarshal([]byte(`{"text":"X","category":"C"}`), &r))
	assert.True(t, r.UpdatedAt.IsZero())

	err := json.Unmarshal([]byte(`{"text":"X","category":"C","updatedAt":"yesterday"}`), &r)
	assert.Error(t, err)
}

func TestParseTimestamp(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want int64
	}{
		{"null", `null`, 0},
		{"empty", ``, 0},
		{"millis", `1700000000000`, 1700000000000},
		{"float millis", `1700000000000.0`, 1700000000000},
		{"numeric string", `"1700000000000"`, 1700000000000},
		{"rfc3339", `"2023-11-14T22:13:20Z"`, 1700000000000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseTimestamp(json.RawMessage(tc.in))
			require.NoError(t, err)
			if tc.want == 0 {
				assert.True(t, got.IsZero())
				return
			}
			assert.Equal(t, tc.want, got.UnixMilli())
		})
	}
}
