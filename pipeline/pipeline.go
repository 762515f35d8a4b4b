// Package pipeline turns raw feed entries into a clean, sorted result set.
// One run fetches every configured feed, filters entries by recency and
// keywords, normalizes survivors into postings, folds per-feed failures into
// error records, de-duplicates and sorts newest first.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/scipunch/jobscout/fetcher"
	"github.com/scipunch/jobscout/filter"
)

// Query holds the effective parameters of one run. It is built fresh per
// request and never mutated afterwards.
type Query struct {
	Feeds    []string
	Hours    int
	Keywords []string // lowercased
	Exclude  []string // lowercased
	Workers  int      // bound on parallel feed fetches, minimum 1
}

// Item is one element of a result set: either a Posting or a FetchError.
type Item interface {
	publishedAt() time.Time
}

// Posting is a normalized feed entry. Missing source fields default to the
// empty string; Published is absent when the entry carried no timestamp.
type Posting struct {
	Title     string     `json:"title"`
	Link      string     `json:"link"`
	Summary   string     `json:"summary"`
	Published *time.Time `json:"published,omitempty"` // always UTC
	Source    string     `json:"source"`
}

func (p Posting) publishedAt() time.Time {
	if p.Published == nil {
		return time.Time{}
	}
	return *p.Published
}

// FetchError records a feed that could not be fetched or parsed. It travels
// through the result set as data so one bad feed never hides the others.
type FetchError struct {
	Feed  string `json:"feed"`
	Error string `json:"error"`
}

func (e FetchError) publishedAt() time.Time { return time.Time{} }

// Runner executes pipeline runs against a fetcher implementation.
type Runner struct {
	fetcher fetcher.Fetcher
	log     *zap.SugaredLogger
}

func New(f fetcher.Fetcher, log *zap.SugaredLogger) *Runner {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Runner{fetcher: f, log: log}
}

// Run executes one pipeline pass over q.Feeds and returns the aggregated
// result set. Feeds are fetched by a bounded worker pool, but outcomes are
// pinned to their feed-list position so the output is identical to a
// sequential run regardless of completion order.
func (r *Runner) Run(ctx context.Context, q Query) []Item {
	now := time.Now().UTC()
	crit := filter.Criteria{Hours: q.Hours, Keywords: q.Keywords, Exclude: q.Exclude}

	type outcome struct {
		feed fetcher.Feed
		err  error
	}
	outcomes := make([]outcome, len(q.Feeds))

	workers := q.Workers
	if workers < 1 {
		workers = 1
	}
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i, feedURL := range q.Feeds {
		wg.Add(1)
		go func(i int, feedURL string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			feed, err := r.fetcher.Fetch(ctx, feedURL)
			outcomes[i] = outcome{feed: feed, err: err}
		}(i, feedURL)
	}
	wg.Wait()

	var items []Item
	var errs []error
	for i, out := range outcomes {
		feedURL := q.Feeds[i]
		if out.err != nil {
			errs = append(errs, fmt.Errorf("'%s' fetch failed with %w", feedURL, out.err))
			items = append(items, FetchError{
				Feed:  feedURL,
				Error: fmt.Sprintf("fetch failed with %s", out.err),
			})
			continue
		}
		for _, entry := range out.feed.Items {
			if !crit.Match(entry, now) {
				r.log.Debugw("entry filtered out", "title", entry.Title, "url", entry.Link)
				continue
			}
			items = append(items, normalize(entry))
		}
	}
	r.log.Infow("fetched feeds", "amount", len(q.Feeds), "failed", len(errs))
	if len(errs) > 0 {
		r.log.Warnw("several feeds were not fetched", "errors", errors.Join(errs...))
	}

	return aggregate(items)
}

// normalize maps a raw entry onto the canonical posting record. Every field
// defaults to its zero value; absence is never an error.
func normalize(entry fetcher.Item) Posting {
	return Posting{
		Title:     entry.Title,
		Link:      entry.Link,
		Summary:   entry.Description,
		Published: entry.Published,
		Source:    host(entry.Link),
	}
}

func host(link string) string {
	if link == "" {
		return ""
	}
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	return u.Host
}

// aggregate removes duplicate postings and sorts the result newest first.
// The dedup key is (link, title); the first occurrence wins. Error records
// occupy a distinct key space and always pass through. The sort is stable,
// and items without a publish time (error records included) sink to the
// tail in their pre-sort order.
func aggregate(items []Item) []Item {
	type key struct {
		link, title string
	}
	seen := make(map[key]struct{})
	deduped := make([]Item, 0, len(items))
	for _, it := range items {
		p, ok := it.(Posting)
		if !ok {
			deduped = append(deduped, it)
			continue
		}
		k := key{link: p.Link, title: p.Title}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		deduped = append(deduped, it)
	}

	sort.SliceStable(deduped, func(i, j int) bool {
		return deduped[i].publishedAt().After(deduped[j].publishedAt())
	})
	return deduped
}
