package fetcher

import (
	"context"
	"time"
)

// Feed represents a collection of items from a feed source
type Feed struct {
	Title       string
	Description string
	Items       []Item
}

// Item represents a single entry in a feed. Fields are populated
// defensively: any of them may be zero when the source omits them.
type Item struct {
	Title       string
	Link        string
	Description string
	Content     string
	Published   *time.Time // UTC, nil when the entry carries no usable timestamp
}

// Fetcher retrieves and parses the feed published at url
type Fetcher interface {
	Fetch(ctx context.Context, url string) (Feed, error)
}
