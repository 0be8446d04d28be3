package ics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/guilherme-santos/icssync/internal"
)

const DefaultTimeout = 30 * time.Second

// CachedFeed holds the last body received for a feed URL together with
// the validators needed for a conditional request.
type CachedFeed struct {
	URL          string
	ETag         string
	LastModified string
	Body         []byte
}

type Cache interface {
	FeedCache(_ context.Context, url string) (*CachedFeed, error)
	SaveFeedCache(context.Context, *CachedFeed) error
}

// Fetcher downloads feeds. With a Cache it sends If-None-Match /
// If-Modified-Since and reuses the cached body on 304; a failed request
// never falls back to the cached body.
type Fetcher struct {
	client *http.Client
	cache  Cache
	log    *internal.Logger
}

func NewFetcher(timeout time.Duration, cache Cache, log *internal.Logger) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
		cache:  cache,
		log:    log,
	}
}

// Fetch accepts http(s) URLs, file:// URLs and plain paths.
func (f *Fetcher) Fetch(ctx context.Context, feedURL string) ([]byte, error) {
	if feedURL == "" {
		return nil, errors.New("ics: feed URL is empty")
	}
	u, err := url.Parse(feedURL)
	if err != nil {
		return nil, fmt.Errorf("ics: invalid feed URL: %w", err)
	}
	switch u.Scheme {
	case "http", "https":
		return f.fetchHTTP(ctx, feedURL)
	case "webcal":
		u.Scheme = "https"
		return f.fetchHTTP(ctx, u.String())
	case "file":
		return os.ReadFile(u.Path)
	case "":
		return os.ReadFile(feedURL)
	}
	return nil, fmt.Errorf("ics: unsupported feed scheme %q", u.Scheme)
}

func (f *Fetcher) fetchHTTP(ctx context.Context, feedURL string) ([]byte, error) {
	var cached *CachedFeed
	if f.cache != nil {
		c, err := f.cache.FeedCache(ctx, feedURL)
		if err != nil && !errors.Is(err, internal.ErrNotFound) {
			f.log.Logf(nil, "Unable to read feed cache: %v", err)
		}
		cached = c
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, err
	}
	if cached != nil && len(cached.Body) > 0 {
		if cached.ETag != "" {
			req.Header.Set("If-None-Match", cached.ETag)
		}
		if cached.LastModified != "" {
			req.Header.Set("If-Modified-Since", cached.LastModified)
		}
	}

	f.log.Debugf(nil, "Fetching feed %s", redactURL(feedURL))

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ics: fetching %s: %w", redactURL(feedURL), err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotModified && cached != nil && len(cached.Body) > 0:
		f.log.Debugf(nil, "Feed not modified, using cached copy")
		return cached.Body, nil

	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("ics: reading %s: %w", redactURL(feedURL), err)
		}
		if f.cache != nil {
			err := f.cache.SaveFeedCache(ctx, &CachedFeed{
				URL:          feedURL,
				ETag:         resp.Header.Get("ETag"),
				LastModified: resp.Header.Get("Last-Modified"),
				Body:         body,
			})
			if err != nil {
				f.log.Logf(nil, "Unable to save feed cache: %v", err)
			}
		}
		f.log.Debugf(nil, "Downloaded %d bytes", len(body))
		return body, nil
	}

	return nil, &internal.FetchError{
		URL:        redactURL(feedURL),
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
	}
}

// redactURL drops path and query, feed URLs often embed a secret token.
func redactURL(u string) string {
	parsed, err := url.Parse(u)
	if err != nil || parsed.Host == "" {
		return "ics://...(redacted)"
	}
	if parsed.Path == "" || parsed.Path == "/" {
		return parsed.Scheme + "://" + parsed.Host
	}
	return parsed.Scheme + "://" + parsed.Host + "/...(redacted)"
}
