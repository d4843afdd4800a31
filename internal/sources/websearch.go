package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/bokangsibolla/sola-images/internal/domain"
	"github.com/bokangsibolla/sola-images/internal/trust"
)

const searchEndpoint = "https://www.googleapis.com/customsearch/v1"

// SearchOptions tunes one web image search request. Zero values fall back
// to xlarge photos, active safe search, duplicate filtering, 10 results.
type SearchOptions struct {
	Num         int
	ImgSize     string
	ImgType     string
	Safe        string
	Filter      string
	ExcludeSite string
}

// WebSearchClient queries the Custom Search JSON API for arbitrary web
// images. Trustworthiness of each result comes entirely from the domain
// trust classifier on its hosting domain.
type WebSearchClient struct {
	APIKey     string
	EngineID   string
	HTTPClient *http.Client
	BaseURL    string // defaults to the public endpoint
	Usage      *domain.Usage
	Log        zerolog.Logger

	// Delay is the pause between queries in SearchMulti, respecting the
	// API's burst rate limits.
	Delay time.Duration
}

type searchResponse struct {
	Items []struct {
		Title       string `json:"title"`
		Link        string `json:"link"`
		DisplayLink string `json:"displayLink"`
		Mime        string `json:"mime"`
		Image       struct {
			Width         int    `json:"width"`
			Height        int    `json:"height"`
			ByteSize      int64  `json:"byteSize"`
			ThumbnailLink string `json:"thumbnailLink"`
			ContextLink   string `json:"contextLink"`
		} `json:"image"`
	} `json:"items"`
}

// Search runs one image query and maps the raw items into candidates.
// Scores stay at zero; the scoring engine assigns them later.
func (c *WebSearchClient) Search(ctx context.Context, query string, opts SearchOptions) ([]domain.ImageCandidate, error) {
	base := c.BaseURL
	if base == "" {
		base = searchEndpoint
	}

	params := url.Values{}
	params.Set("key", c.APIKey)
	params.Set("cx", c.EngineID)
	params.Set("q", query)
	params.Set("searchType", "image")
	params.Set("imgSize", defaultString(opts.ImgSize, "xlarge"))
	params.Set("imgType", defaultString(opts.ImgType, "photo"))
	params.Set("safe", defaultString(opts.Safe, "active"))
	params.Set("filter", defaultString(opts.Filter, "1"))
	num := opts.Num
	if num <= 0 {
		num = 10
	}
	params.Set("num", strconv.Itoa(num))
	if opts.ExcludeSite != "" {
		params.Set("siteSearch", opts.ExcludeSite)
		params.Set("siteSearchFilter", "e")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	if c.Usage != nil {
		c.Usage.ImageSearches++
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("image search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("image search failed (%d): %s", resp.StatusCode, text)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	candidates := make([]domain.ImageCandidate, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		cls := trust.Classify(item.Link)
		candidates = append(candidates, domain.ImageCandidate{
			URL:          item.Link,
			Source:       domain.SourceWebSearch,
			Width:        item.Image.Width,
			Height:       item.Image.Height,
			ThumbnailURL: item.Image.ThumbnailLink,
			Title:        item.Title,
			ContextLink:  item.Image.ContextLink,
			Attribution:  item.DisplayLink,
			FileSize:     item.Image.ByteSize,
			MIMEType:     item.Mime,
			LicenseHint:  cls.Hint,
			DomainTrust:  cls.Trust,
		})
	}
	return candidates, nil
}

// SearchMulti runs several queries in sequence, de-duplicating by URL
// across all of them and pausing Delay between queries. A failed query is
// logged and skipped so the remaining queries still contribute results.
func (c *WebSearchClient) SearchMulti(ctx context.Context, queries []string, opts SearchOptions) []domain.ImageCandidate {
	seen := make(map[string]struct{})
	var all []domain.ImageCandidate

	for i, query := range queries {
		results, err := c.Search(ctx, query, opts)
		if err != nil {
			c.Log.Warn().Err(err).Str("query", query).Msg("image search query failed")
		}
		for _, r := range results {
			if _, ok := seen[r.URL]; ok {
				continue
			}
			seen[r.URL] = struct{}{}
			all = append(all, r)
		}

		if c.Delay > 0 && i < len(queries)-1 {
			select {
			case <-ctx.Done():
				return all
			case <-time.After(c.Delay):
			}
		}
	}
	return all
}

func (c *WebSearchClient) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func defaultString(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
