package remote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/quotebox/internal/quote"
)

func TestParseEndpoint_Normalizes(t *testing.T) {
	u, err := parseEndpoint("127.0.0.1:7488/posts#frag")
	require.NoError(t, err)
	assert.Equal(t, "http", u.Scheme)
	assert.Equal(t, "/posts", u.Path)
	assert.Empty(t, u.Fragment)

	_, err = parseEndpoint("   ")
	assert.Error(t, err)
}

func TestClient_FetchRemoteMapsPosts(t *testing.T) {
	t.Parallel()

	var gotQuery, gotUserAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("limit")
		gotUserAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"userId":1,"id":1,"title":"sunt aut facere","body":"quia et suscipit"},
			{"id":"abc","title":"ignored","text":"Own text","category":"Wisdom","updatedAt":200},
			{"id":3,"title":"   "},
			{"id":1,"title":"duplicate id"}
		]`))
	}))
	t.Cleanup(server.Close)

	fetchedAt := time.UnixMilli(5000)
	c, err := NewClient(Options{Endpoint: server.URL + "/posts", Limit: 7, Now: func() time.Time { return fetchedAt }})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	got, err := c.FetchRemote(ctx)
	require.NoError(t, err)
	assert.Equal(t, "7", gotQuery)
	assert.True(t, strings.HasPrefix(gotUserAgent, "quotebox/"))

	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "sunt aut facere", got[0].Text)
	assert.Equal(t, "Server", got[0].Category)
	assert.Equal(t, int64(5000), got[0].UpdatedAt.UnixMilli(), "missing remote timestamp falls back to fetch time")
	assert.False(t, got[0].Dirty)

	assert.Equal(t, "abc", got[1].ID)
	assert.Equal(t, "Own text", got[1].Text)
	assert.Equal(t, "Wisdom", got[1].Category)
	assert.Equal(t, int64(200), got[1].UpdatedAt.UnixMilli(), "remote timestamp is honored")
}

func TestClient_PushRecordSendsPayload(t *testing.T) {
	t.Parallel()

	var got PushPayload
	var method, contentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		contentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":101}`))
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(Options{Endpoint: server.URL + "/posts"})
	require.NoError(t, err)

	rec := quote.Record{ID: "a", Text: "X", Category: "C1", UpdatedAt: time.UnixMilli(100), Dirty: true}
	require.NoError(t, c.PushRecord(context.Background(), rec))

	assert.Equal(t, http.MethodPost, method)
	assert.True(t, strings.HasPrefix(contentType, "application/json"))
	assert.Equal(t, PushPayload{ID: "a", UserID: 1, Title: "X", Body: "C1", Category: "C1", UpdatedAt: 100}, got)
}

func TestClient_ErrorsAreNetworkErrors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte("{not-json"))
		default:
			http.Error(w, "nope", http.StatusInternalServerError)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(Options{Endpoint: server.URL})
	require.NoError(t, err)

	_, err = c.FetchRemote(context.Background())
	var nerr *NetworkError
	require.True(t, errors.As(err, &nerr))
	assert.Equal(t, "fetch", nerr.Op)
	assert.Contains(t, err.Error(), "decode response")

	err = c.PushRecord(context.Background(), quote.Record{ID: "a", Text: "X", Category: "C"})
	require.True(t, errors.As(err, &nerr))
	assert.Equal(t, "push", nerr.Op)
	assert.Equal(t, http.StatusInternalServerError, nerr.StatusCode)
	assert.Contains(t, err.Error(), "returned status 500")
}

func TestClient_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	endpoint := server.URL
	server.Close()

	c, err := NewClient(Options{Endpoint: endpoint, Timeout: time.Second})
	require.NoError(t, err)

	_, err = c.FetchRemote(context.Background())
	var nerr *NetworkError
	require.True(t, errors.As(err, &nerr))
	assert.Zero(t, nerr.StatusCode)
}
