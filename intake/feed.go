package intake

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/bluesky-social/indigo/xrpc"
	"go-aduan/db"
	"go-aduan/types"
)

const (
	feedMethod   = "app.bsky.feed.getFeed"
	publicHost   = "https://public.api.bsky.app"
	defaultLimit = 30
	maxLimit     = 100
)

// FeedResponse represents the root structure of a getFeed response.
type FeedResponse struct {
	Cursor string      `json:"cursor"`
	Feed   []FeedEntry `json:"feed"`
}

type FeedEntry struct {
	Post Post `json:"post"`
}

// Post keeps the parts of a feed post that become a report.
type Post struct {
	Author    Author `json:"author"`
	CID       string `json:"cid"`
	IndexedAt string `json:"indexedAt"`
	Record    Record `json:"record"`
	URI       string `json:"uri"`
}

type Author struct {
	DID         string `json:"did"`
	DisplayName string `json:"displayName"`
	Handle      string `json:"handle"`
}

type Record struct {
	Type      string   `json:"$type"`
	CreatedAt string   `json:"createdAt"`
	Langs     []string `json:"langs"`
	Text      string   `json:"text"`
}

// BlueskySource reads citizen reports from a Bluesky feed generator.
type BlueskySource struct {
	client *xrpc.Client
	Limit  int
}

// NewBlueskySource creates a source against host, or the public API when
// host is empty.
func NewBlueskySource(host string) *BlueskySource {
	if host == "" {
		host = publicHost
	}
	return &BlueskySource{
		client: &xrpc.Client{
			Client: &http.Client{Timeout: 10 * time.Second},
			Host:   host,
		},
		Limit: defaultLimit,
	}
}

// Fetch calls app.bsky.feed.getFeed for the feed at feedURI.
func (s *BlueskySource) Fetch(ctx context.Context, feedURI string) (FeedResponse, error) {
	limit := s.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	params := map[string]interface{}{
		"feed":  feedURI,
		"limit": limit,
	}

	log.Printf("Fetching feed with params: %+v", params)

	var out FeedResponse
	if err := s.client.Do(ctx, xrpc.Query, "json", feedMethod, params, nil, &out); err != nil {
		return out, fmt.Errorf("error fetching feed %s: %w", feedURI, err)
	}
	return out, nil
}

// Reports fetches a feed and converts its posts to reports.
func (s *BlueskySource) Reports(ctx context.Context, feedURI string) ([]types.Report, error) {
	out, err := s.Fetch(ctx, feedURI)
	if err != nil {
		return nil, err
	}
	return ReportsFromFeed(out), nil
}

// ReportsFromFeed converts posts to unclustered reports. Posts without a URI
// or text are dropped; the report id is the hash of the post URI.
func ReportsFromFeed(out FeedResponse) []types.Report {
	reports := make([]types.Report, 0, len(out.Feed))
	seen := make(map[string]bool, len(out.Feed))
	for _, entry := range out.Feed {
		post := entry.Post
		text := strings.TrimSpace(post.Record.Text)
		if post.URI == "" || text == "" || seen[post.URI] {
			continue
		}
		seen[post.URI] = true

		reports = append(reports, types.Report{
			ID:          db.HashString(post.URI),
			Description: text,
			CreatedAt:   postTime(post),
			Source:      "bluesky:" + post.Author.Handle,
		})
	}
	return reports
}

func postTime(p Post) time.Time {
	for _, ts := range []string{p.Record.CreatedAt, p.IndexedAt} {
		if ts == "" {
			continue
		}
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
