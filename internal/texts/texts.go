// Package texts checks which candidate books have a scanned full text on
// the Internet Archive, using the bulk scrape endpoint. Results feed the
// final report so a cleared title can be paired with a readable copy.
package texts

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"
)

// DefaultBaseURL is the production scrape endpoint.
const DefaultBaseURL = "https://archive.org/services/search/v1/scrape"

// emptyPageRetries bounds how often an empty page with a live cursor is
// retried before the year is abandoned. The endpoint intermittently
// returns empty pages mid-scroll.
const emptyPageRetries = 3

const pageSize = 10000

// Item is one text the archive holds.
type Item struct {
	Identifier string `json:"identifier"`
	Title      string `json:"title,omitempty"`
	Year       int    `json:"year,omitempty"`
}

type scrapeResponse struct {
	Items  []Item `json:"items"`
	Cursor string `json:"cursor"`
	Total  int    `json:"total"`
}

// Client scrolls the scrape endpoint year by year.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	concurrency int
}

// NewClient builds a client. baseURL empty means the production endpoint;
// concurrency values below 1 are clamped to 1.
func NewClient(baseURL string, concurrency int) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &Client{
		baseURL:     baseURL,
		httpClient:  &http.Client{Timeout: 60 * time.Second},
		concurrency: concurrency,
	}
}

// YearRange returns the publication years worth checking as of now: from
// ten years before the rolling public-domain cutoff through the last year
// a renewal could still matter.
func YearRange(now time.Time) (first, last int) {
	return now.Year() - 95 - 10, 1973
}

// FetchYear scrolls every text the archive lists for one publication year.
func (c *Client) FetchYear(ctx context.Context, year int) ([]Item, error) {
	var items []Item
	cursor := ""
	emptyPages := 0
	for {
		page, err := c.fetchPage(ctx, year, cursor)
		if err != nil {
			return nil, err
		}
		items = append(items, page.Items...)
		if page.Cursor == "" {
			return items, nil
		}
		if len(page.Items) == 0 {
			emptyPages++
			if emptyPages >= emptyPageRetries {
				slog.Warn("giving up on year after repeated empty pages", "year", year, "collected", len(items))
				return items, nil
			}
			continue
		}
		emptyPages = 0
		cursor = page.Cursor
	}
}

func (c *Client) fetchPage(ctx context.Context, year int, cursor string) (*scrapeResponse, error) {
	params := url.Values{}
	params.Set("q", fmt.Sprintf("mediatype:texts AND year:%d", year))
	params.Set("fields", "identifier,title,year")
	params.Set("count", fmt.Sprint(pageSize))
	if cursor != "" {
		params.Set("cursor", cursor)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create scrape request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scrape request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scrape endpoint returned status %d for year %d", resp.StatusCode, year)
	}

	var page scrapeResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("failed to decode scrape response: %w", err)
	}
	return &page, nil
}

// FetchRange fetches every year in [first, last] with bounded concurrency.
// A failed year is logged and skipped so one bad stretch doesn't lose the
// rest of the crawl.
func (c *Client) FetchRange(ctx context.Context, first, last int) []Item {
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, c.concurrency)
	var mu sync.Mutex
	var all []Item

	for year := first; year <= last; year++ {
		wg.Add(1)
		go func(year int) {
			defer wg.Done()
			semaphore <- struct{}{}        // Acquire
			defer func() { <-semaphore }() // Release

			items, err := c.FetchYear(ctx, year)
			if err != nil {
				slog.Warn("failed to fetch year", "year", year, "error", err)
				return
			}
			slog.Info("fetched year", "year", year, "items", len(items))
			mu.Lock()
			all = append(all, items...)
			mu.Unlock()
		}(year)
	}
	wg.Wait()
	return all
}

// SaveItems writes one item per line as JSON.
func SaveItems(path string, items []Item) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, item := range items {
		if err := enc.Encode(item); err != nil {
			f.Close()
			return fmt.Errorf("failed to write item: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	return f.Close()
}
