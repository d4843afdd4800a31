// Package sources holds the retrieval clients for the three upstream
// image/entity APIs. Every response is mapped into domain.ImageCandidate
// at ingestion; nothing downstream sees a source-specific shape.
package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/bokangsibolla/sola-images/internal/domain"
)

const placesEndpoint = "https://places.googleapis.com"

// CuratedPhotoTrust is the fixed trust assigned to curated place photos.
// Provenance is a controlled catalog, so per-domain rules do not apply.
const CuratedPhotoTrust = 0.85

// PlacesClient queries the Places (New) text search API for a place and
// its photo catalog.
type PlacesClient struct {
	APIKey     string
	HTTPClient *http.Client
	BaseURL    string // defaults to the public endpoint
	Usage      *domain.Usage
	Log        zerolog.Logger
}

// PlaceResult is one resolved place with its photo candidates.
type PlaceResult struct {
	PlaceID    string
	Candidates []domain.ImageCandidate
}

type placesSearchResponse struct {
	Places []struct {
		ID     string `json:"id"`
		Photos []struct {
			Name               string `json:"name"`
			WidthPx            int    `json:"widthPx"`
			HeightPx           int    `json:"heightPx"`
			AuthorAttributions []struct {
				DisplayName string `json:"displayName"`
			} `json:"authorAttributions"`
		} `json:"photos"`
	} `json:"places"`
}

// SearchPlacePhotos resolves the best-matching place for query and returns
// all of its photos as candidates. A query that resolves to nothing returns
// (nil, nil): no result is not an error.
func (c *PlacesClient) SearchPlacePhotos(ctx context.Context, query string) (*PlaceResult, error) {
	base := c.BaseURL
	if base == "" {
		base = placesEndpoint
	}

	body, err := json.Marshal(map[string]any{
		"textQuery":      query,
		"maxResultCount": 1,
		"languageCode":   "en",
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/v1/places:searchText", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.APIKey)
	req.Header.Set("X-Goog-FieldMask", "places.id,places.photos")

	if c.Usage != nil {
		c.Usage.PlaceSearches++
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("place search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("place search failed (%d): %s", resp.StatusCode, text)
	}

	var parsed placesSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Places) == 0 {
		return nil, nil
	}

	place := parsed.Places[0]
	result := &PlaceResult{PlaceID: place.ID}
	for _, p := range place.Photos {
		cand := domain.ImageCandidate{
			URL:         p.Name,
			Source:      domain.SourceCuratedPhoto,
			Width:       p.WidthPx,
			Height:      p.HeightPx,
			LicenseHint: domain.LicenseUnknown,
			DomainTrust: CuratedPhotoTrust,
		}
		if len(p.AuthorAttributions) > 0 {
			cand.Attribution = p.AuthorAttributions[0].DisplayName
		}
		result.Candidates = append(result.Candidates, cand)
	}

	c.Log.Debug().Str("query", query).Str("place_id", place.ID).
		Int("photos", len(result.Candidates)).Msg("place photos resolved")

	return result, nil
}

// PhotoMediaURL builds the download URL for a curated photo resource name.
func (c *PlacesClient) PhotoMediaURL(photoName string, maxWidth int) string {
	base := c.BaseURL
	if base == "" {
		base = placesEndpoint
	}
	return fmt.Sprintf("%s/v1/%s/media?maxWidthPx=%d&key=%s", base, photoName, maxWidth, c.APIKey)
}

func (c *PlacesClient) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}
