package fetcher

import (
	"context"
	"fmt"
	"time"

	"github.com/mmcdole/gofeed"
)

// RSSFetcher fetches RSS and Atom feeds using gofeed
type RSSFetcher struct{}

// NewRSSFetcher creates a new RSS fetcher
func NewRSSFetcher() *RSSFetcher {
	return &RSSFetcher{}
}

// Fetch retrieves and parses the feed at the given URL. Network and parse
// failures are returned as a single error; callers decide how to surface it.
// A fresh gofeed parser per call keeps concurrent fetches independent.
func (f *RSSFetcher) Fetch(ctx context.Context, url string) (Feed, error) {
	var feed Feed

	gofeedFeed, err := gofeed.NewParser().ParseURLWithContext(url, ctx)
	if err != nil {
		return feed, fmt.Errorf("failed to parse feed: %w", err)
	}

	feed.Title = gofeedFeed.Title
	feed.Description = gofeedFeed.Description
	feed.Items = make([]Item, 0, len(gofeedFeed.Items))

	for _, item := range gofeedFeed.Items {
		feedItem := Item{
			Title:       item.Title,
			Link:        item.Link,
			Description: item.Description,
			Content:     item.Content,
		}

		// Prefer the published date, fall back to updated
		if item.PublishedParsed != nil {
			feedItem.Published = utc(*item.PublishedParsed)
		} else if item.UpdatedParsed != nil {
			feedItem.Published = utc(*item.UpdatedParsed)
		}

		feed.Items = append(feed.Items, feedItem)
	}

	return feed, nil
}

func utc(t time.Time) *time.Time {
	u := t.UTC()
	return &u
}
