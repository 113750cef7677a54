package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/quotebox/internal/quote"
)

func openMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSetAndGet_UpsertsValue(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k1", []byte("one")))
	require.NoError(t, s.Set(ctx, "k1", []byte("two")))

	v, err := s.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), v)
}

func TestGet_MissingKeyReturnsNil(t *testing.T) {
	s := openMemory(t)
	v, err := s.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestDeleteAndList(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "a", []byte("1")))
	require.NoError(t, s.Set(ctx, "b", []byte("2")))
	require.NoError(t, s.Delete(ctx, "a"))
	require.NoError(t, s.Delete(ctx, "missing"))

	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"b": []byte("2")}, all)
}

func TestLoadQuotes_EmptyStoreReturnsSeed(t *testing.T) {
	s := openMemory(t)
	got, err := s.LoadQuotes(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Motivation", got[0].Category)
}

func TestLoadQuotes_MalformedFallsBackToSeed(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, KeyQuotes, []byte("{not json")))

	got, err := s.LoadQuotes(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestSaveAndLoadQuotes_PreservesDirtyAndMigratesLegacy(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()

	records := []quote.Record{
		{ID: "a", Text: "X", Category: "C1", UpdatedAt: time.UnixMilli(100), Dirty: true},
	}
	require.NoError(t, s.SaveQuotes(ctx, records))

	got, err := s.LoadQuotes(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, records[0].SameContent(got[0]))
	assert.True(t, got[0].Dirty)

	require.NoError(t, s.Set(ctx, KeyQuotes, []byte(`[{"text":"Old","category":"Legacy"}]`)))
	got, err = s.LoadQuotes(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, quote.LegacyID("Old", "Legacy"), got[0].ID)
	assert.False(t, got[0].UpdatedAt.IsZero())
}

func TestSaveQuotes_EmptyCollectionStaysEmpty(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()
	require.NoError(t, s.SaveQuotes(ctx, nil))

	raw, err := s.Get(ctx, KeyQuotes)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))

	got, err := s.LoadQuotes(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLastSync_RoundTrip(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()

	got, err := s.LastSync(ctx)
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	at := time.UnixMilli(1700000000000)
	require.NoError(t, s.SetLastSync(ctx, at))
	got, err = s.LastSync(ctx)
	require.NoError(t, err)
	assert.True(t, at.Equal(got))
}

func TestOpen_CreatesFileAndReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "quotebox.db")
	ctx := context.Background()

	s, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "k", []byte("v")))
	require.NoError(t, s.Close())

	s, err = Open(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	v, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v)
}
