package reconcile

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/quotebox/internal/quote"
)

func conflictFixture() ([]quote.Record, Conflict) {
	local := rec("a", "Mine", "C", 500)
	local.Dirty = true
	records := []quote.Record{rec("z", "Other", "C", 1), local}
	return records, Conflict{ID: "a", Local: local, Remote: rec("a", "Theirs", "S", 400)}
}

func TestResolve_KeepLocalMarksDirtyAndRestamps(t *testing.T) {
	records, c := conflictFixture()
	now := time.UnixMilli(9999)

	out, err := Resolve(records, c, KeepLocal, now)
	require.NoError(t, err)
	assert.Equal(t, "Mine", out[1].Text)
	assert.True(t, out[1].Dirty)
	assert.True(t, out[1].UpdatedAt.Equal(now))
	assert.Equal(t, int64(500), records[1].UpdatedAt.UnixMilli(), "input must not be modified")
}

func TestResolve_KeepLocalStampsAtMillisecondPrecision(t *testing.T) {
	records, c := conflictFixture()

	out, err := Resolve(records, c, KeepLocal, time.Unix(10, 987_654_321))
	require.NoError(t, err)
	assert.Equal(t, int64(10_987), out[1].UpdatedAt.UnixMilli())
	assert.Zero(t, out[1].UpdatedAt.Nanosecond()%int(time.Millisecond))
}

func TestResolve_AcceptServerReplacesLocal(t *testing.T) {
	records, c := conflictFixture()

	out, err := Resolve(records, c, AcceptServer, time.Now())
	require.NoError(t, err)
	assert.Equal(t, c.Remote, out[1])
	assert.False(t, out[1].Dirty)
	assert.Equal(t, records[0], out[0])
}

func TestResolve_Errors(t *testing.T) {
	records, c := conflictFixture()

	_, err := Resolve(records[:1], c, AcceptServer, time.Now())
	assert.True(t, errors.Is(err, ErrUnknownConflict))

	changed := quote.Clone(records)
	changed[1].Text = "Edited again"
	_, err = Resolve(changed, c, AcceptServer, time.Now())
	assert.True(t, errors.Is(err, ErrStaleConflict))

	_, err = Resolve(records, c, Choice("merge"), time.Now())
	assert.True(t, errors.Is(err, ErrUnknownChoice))
}
