package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/bokangsibolla/sola-images/internal/domain"
)

const knowledgeEndpoint = "https://kgsearch.googleapis.com/v1/entities:search"

// Entity is one knowledge-graph match for a place name. It carries no
// images for the pipeline; its only use is refining query strings.
type Entity struct {
	ID                  string
	Name                string
	Types               []string
	Description         string
	DetailedDescription string
	URL                 string
	ImageURL            string
	ResultScore         float64
}

// RegionHints constrain entity disambiguation to the expected containing
// region ("Paris" + country France, not Paris, Texas).
type RegionHints struct {
	CountryName string
	CityName    string
}

// KnowledgeClient resolves place names to knowledge-graph entities.
type KnowledgeClient struct {
	APIKey     string
	HTTPClient *http.Client
	BaseURL    string // defaults to the public endpoint
	Limit      int    // max results per lookup, defaults to 3
	Usage      *domain.Usage
	Log        zerolog.Logger
}

type knowledgeResponse struct {
	ItemListElement []struct {
		Result struct {
			ID          string          `json:"@id"`
			Name        string          `json:"name"`
			Type        json.RawMessage `json:"@type"`
			Description string          `json:"description"`
			Detailed    struct {
				ArticleBody string `json:"articleBody"`
				URL         string `json:"url"`
			} `json:"detailedDescription"`
			Image struct {
				ContentURL string `json:"contentUrl"`
			} `json:"image"`
		} `json:"result"`
		ResultScore float64 `json:"resultScore"`
	} `json:"itemListElement"`
}

// SearchEntities returns ranked entity matches for a query, restricted to
// Place-typed entities in English.
func (c *KnowledgeClient) SearchEntities(ctx context.Context, query string) ([]Entity, error) {
	base := c.BaseURL
	if base == "" {
		base = knowledgeEndpoint
	}
	limit := c.Limit
	if limit <= 0 {
		limit = 3
	}

	params := url.Values{}
	params.Set("key", c.APIKey)
	params.Set("query", query)
	params.Set("limit", strconv.Itoa(limit))
	params.Add("types", "Place")
	params.Add("languages", "en")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	if c.Usage != nil {
		c.Usage.EntityLookups++
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("entity search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("entity search failed (%d): %s", resp.StatusCode, text)
	}

	var parsed knowledgeResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	entities := make([]Entity, 0, len(parsed.ItemListElement))
	for _, item := range parsed.ItemListElement {
		entities = append(entities, Entity{
			ID:                  strings.TrimPrefix(item.Result.ID, "kg:"),
			Name:                item.Result.Name,
			Types:               decodeTypes(item.Result.Type),
			Description:         item.Result.Description,
			DetailedDescription: item.Result.Detailed.ArticleBody,
			URL:                 item.Result.Detailed.URL,
			ImageURL:            item.Result.Image.ContentURL,
			ResultScore:         item.ResultScore,
		})
	}
	return entities, nil
}

// Disambiguate returns the best entity match for a destination name,
// optionally qualified by its containing city and country. When a country
// hint is supplied, a match whose description mentions the country is
// preferred over the highest-confidence result. No match returns (nil, nil).
func (c *KnowledgeClient) Disambiguate(ctx context.Context, name string, hints RegionHints) (*Entity, error) {
	parts := []string{name}
	if hints.CityName != "" {
		parts = append(parts, hints.CityName)
	}
	if hints.CountryName != "" {
		parts = append(parts, hints.CountryName)
	}

	entities, err := c.SearchEntities(ctx, strings.Join(parts, " "))
	if err != nil {
		return nil, err
	}
	if len(entities) == 0 {
		return nil, nil
	}

	if hints.CountryName != "" {
		country := strings.ToLower(hints.CountryName)
		for i := range entities {
			desc := strings.ToLower(entities[i].Description)
			detail := strings.ToLower(entities[i].DetailedDescription)
			if strings.Contains(desc, country) || strings.Contains(detail, country) {
				return &entities[i], nil
			}
		}
	}

	return &entities[0], nil
}

// CanonicalQuery builds a more precise search query from an entity, e.g.
// "Bangkok Capital of Thailand".
func CanonicalQuery(e *Entity) string {
	if e == nil {
		return ""
	}
	if e.Description != "" {
		return e.Name + " " + e.Description
	}
	return e.Name
}

// decodeTypes handles @type being either a single string or an array.
func decodeTypes(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var many []string
	if err := json.Unmarshal(raw, &many); err == nil {
		return many
	}
	var one string
	if err := json.Unmarshal(raw, &one); err == nil && one != "" {
		return []string{one}
	}
	return nil
}

func (c *KnowledgeClient) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}
