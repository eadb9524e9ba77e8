package intake

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go-aduan/db"
)

func samplePost(uri, text, created string) FeedEntry {
	return FeedEntry{Post: Post{
		URI:       uri,
		Author:    Author{Handle: "warga.bsky.social"},
		IndexedAt: "2025-03-10T09:00:00Z",
		Record:    Record{Text: text, CreatedAt: created},
	}}
}

func TestReportsFromFeed(t *testing.T) {
	out := FeedResponse{Feed: []FeedEntry{
		samplePost("at://x/post/1", "  Jalan berlubang di Jl. Sudirman ", "2025-03-10T08:00:00+07:00"),
		samplePost("at://x/post/1", "duplikat", ""),
		samplePost("", "tanpa uri", ""),
		samplePost("at://x/post/2", "   ", ""),
		samplePost("at://x/post/3", "Sampah menumpuk", "bukan waktu"),
	}}

	reports := ReportsFromFeed(out)
	require.Len(t, reports, 2)

	assert.Equal(t, db.HashString("at://x/post/1"), reports[0].ID)
	assert.Equal(t, "Jalan berlubang di Jl. Sudirman", reports[0].Description)
	assert.Equal(t, time.Date(2025, 3, 10, 1, 0, 0, 0, time.UTC), reports[0].CreatedAt)
	assert.Equal(t, "bluesky:warga.bsky.social", reports[0].Source)
	assert.Empty(t, reports[0].ClusterID)

	// falls back to indexedAt when the record time does not parse
	assert.Equal(t, time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC), reports[1].CreatedAt)
}

func TestBlueskySource_Reports(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/xrpc/app.bsky.feed.getFeed", r.URL.Path)
		assert.Equal(t, "at://did:plc:feed/app.bsky.feed.generator/aduan", r.URL.Query().Get("feed"))
		assert.Equal(t, "100", r.URL.Query().Get("limit"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(FeedResponse{
			Cursor: "next",
			Feed:   []FeedEntry{samplePost("at://x/post/9", "Lampu jalan padam", "2025-03-10T08:00:00Z")},
		})
	}))
	defer srv.Close()

	src := NewBlueskySource(srv.URL)
	src.Limit = 500
	reports, err := src.Reports(context.Background(), "at://did:plc:feed/app.bsky.feed.generator/aduan")
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "Lampu jalan padam", reports[0].Description)
}

func TestBlueskySource_Error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"UnknownFeed","message":"feed not found"}`))
	}))
	defer srv.Close()

	_, err := NewBlueskySource(srv.URL).Reports(context.Background(), "at://missing")
	assert.Error(t, err)
}
