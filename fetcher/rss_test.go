package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rssBody = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Job Board</title>
    <description>Latest openings</description>
    <item>
      <title>DevOps Engineer opening</title>
      <link>https://jobs.example.com/devops-1</link>
      <description>Remote DevOps role</description>
      <pubDate>Mon, 02 Jun 2025 14:00:00 +0200</pubDate>
    </item>
    <item>
      <title>Undated posting</title>
      <link>https://jobs.example.com/undated</link>
    </item>
  </channel>
</rss>`

const atomBody = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Atom Board</title>
  <entry>
    <title>Platform Engineer</title>
    <link href="https://jobs.example.com/platform-1"/>
    <summary>Build the paved road</summary>
    <updated>2025-06-02T10:30:00Z</updated>
  </entry>
</feed>`

func serve(t *testing.T, contentType, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRSSFetcherFetch(t *testing.T) {
	srv := serve(t, "application/rss+xml", rssBody)

	feed, err := NewRSSFetcher().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, "Job Board", feed.Title)
	require.Len(t, feed.Items, 2)

	first := feed.Items[0]
	assert.Equal(t, "DevOps Engineer opening", first.Title)
	assert.Equal(t, "https://jobs.example.com/devops-1", first.Link)
	assert.Equal(t, "Remote DevOps role", first.Description)
	require.NotNil(t, first.Published)
	// +0200 offset normalized to UTC
	assert.Equal(t, time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC), *first.Published)
	assert.Equal(t, time.UTC, first.Published.Location())

	second := feed.Items[1]
	assert.Equal(t, "Undated posting", second.Title)
	assert.Nil(t, second.Published)
}

func TestRSSFetcherFallsBackToUpdated(t *testing.T) {
	srv := serve(t, "application/atom+xml", atomBody)

	feed, err := NewRSSFetcher().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	require.Len(t, feed.Items, 1)
	item := feed.Items[0]
	assert.Equal(t, "Platform Engineer", item.Title)
	assert.Equal(t, "Build the paved road", item.Description)
	require.NotNil(t, item.Published)
	assert.Equal(t, time.Date(2025, 6, 2, 10, 30, 0, 0, time.UTC), *item.Published)
}

func TestRSSFetcherHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	_, err := NewRSSFetcher().Fetch(context.Background(), srv.URL)
	assert.Error(t, err)
}

func TestRSSFetcherMalformedFeed(t *testing.T) {
	srv := serve(t, "text/html", "<html>not a feed</html>")

	_, err := NewRSSFetcher().Fetch(context.Background(), srv.URL)
	assert.Error(t, err)
}

func TestRSSFetcherUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewRSSFetcher().Fetch(context.Background(), url)
	assert.Error(t, err)
}
