package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bokangsibolla/sola-images/internal/domain"
)

// Filter narrows which destinations a run processes.
type Filter struct {
	// Type limits to one destination type; empty or "all" means every type.
	Type    string
	Country string
	City    string
	Limit   int
	Offset  int
}

// ImageUpdate is the full set of image columns written back after a
// successful enrichment. Neighborhoods have a lighter schema and only
// receive the hero URL, source, and attribution.
type ImageUpdate struct {
	HeroURL        string
	GalleryURLs    []string
	Source         domain.Source
	Attribution    string
	LicenseHint    domain.LicenseHint
	QualityScore   int
	UsageRights    domain.UsageRights
	PlaceID        string
	CanonicalQuery string
}

// DestinationRepository reads destination rows and writes enrichment
// results. The pipeline does not own destination persistence beyond these
// image columns.
type DestinationRepository struct {
	pool *pgxpool.Pool
}

func NewDestinationRepository(pool *pgxpool.Pool) *DestinationRepository {
	return &DestinationRepository{pool: pool}
}

// List returns active destinations matching the filter, countries first,
// then cities, then neighborhoods, windowed by offset/limit.
func (r *DestinationRepository) List(ctx context.Context, f Filter) ([]domain.Destination, error) {
	var all []domain.Destination

	if f.Type == "" || f.Type == "all" || f.Type == string(domain.TypeCountry) {
		countries, err := r.listCountries(ctx, f)
		if err != nil {
			return nil, fmt.Errorf("list countries: %w", err)
		}
		all = append(all, countries...)
	}

	if f.Type == "" || f.Type == "all" || f.Type == string(domain.TypeCity) {
		cities, err := r.listCities(ctx, f)
		if err != nil {
			return nil, fmt.Errorf("list cities: %w", err)
		}
		all = append(all, cities...)
	}

	if f.Type == "" || f.Type == "all" || f.Type == string(domain.TypeNeighborhood) {
		areas, err := r.listNeighborhoods(ctx, f)
		if err != nil {
			return nil, fmt.Errorf("list neighborhoods: %w", err)
		}
		all = append(all, areas...)
	}

	if f.Offset > 0 {
		if f.Offset >= len(all) {
			return nil, nil
		}
		all = all[f.Offset:]
	}
	if f.Limit > 0 && len(all) > f.Limit {
		all = all[:f.Limit]
	}
	return all, nil
}

func (r *DestinationRepository) listCountries(ctx context.Context, f Filter) ([]domain.Destination, error) {
	query := `
		SELECT id, slug, name, google_place_id, hero_image_url, image_cached_at
		FROM countries
		WHERE is_active = TRUE
	`
	var args []any
	if f.Country != "" {
		args = append(args, "%"+f.Country+"%")
		query += fmt.Sprintf(" AND name ILIKE $%d", len(args))
	}
	query += " ORDER BY order_index"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var destinations []domain.Destination
	for rows.Next() {
		var (
			d        domain.Destination
			placeID  *string
			heroURL  *string
			cachedAt *time.Time
		)
		if err := rows.Scan(&d.ID, &d.Slug, &d.Name, &placeID, &heroURL, &cachedAt); err != nil {
			return nil, err
		}
		d.Type = domain.TypeCountry
		d.PlaceID = deref(placeID)
		d.HeroImageURL = deref(heroURL)
		d.ImageCachedAt = cachedAt
		destinations = append(destinations, d)
	}
	return destinations, rows.Err()
}

func (r *DestinationRepository) listCities(ctx context.Context, f Filter) ([]domain.Destination, error) {
	query := `
		SELECT c.id, c.slug, c.name, c.google_place_id, c.hero_image_url, c.image_cached_at,
		       co.name
		FROM cities c
		JOIN countries co ON co.id = c.country_id
		WHERE c.is_active = TRUE
	`
	var args []any
	if f.City != "" {
		args = append(args, "%"+f.City+"%")
		query += fmt.Sprintf(" AND c.name ILIKE $%d", len(args))
	}
	if f.Country != "" {
		args = append(args, "%"+f.Country+"%")
		query += fmt.Sprintf(" AND co.name ILIKE $%d", len(args))
	}
	query += " ORDER BY c.order_index"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var destinations []domain.Destination
	for rows.Next() {
		var (
			d        domain.Destination
			placeID  *string
			heroURL  *string
			cachedAt *time.Time
		)
		if err := rows.Scan(&d.ID, &d.Slug, &d.Name, &placeID, &heroURL, &cachedAt, &d.CountryName); err != nil {
			return nil, err
		}
		d.Type = domain.TypeCity
		d.PlaceID = deref(placeID)
		d.HeroImageURL = deref(heroURL)
		d.ImageCachedAt = cachedAt
		destinations = append(destinations, d)
	}
	return destinations, rows.Err()
}

func (r *DestinationRepository) listNeighborhoods(ctx context.Context, f Filter) ([]domain.Destination, error) {
	query := `
		SELECT a.id, a.slug, a.name, a.hero_image_url, a.image_cached_at,
		       c.name, c.slug, co.name
		FROM city_areas a
		JOIN cities c ON c.id = a.city_id
		JOIN countries co ON co.id = c.country_id
		WHERE a.is_active = TRUE
	`
	var args []any
	if f.City != "" {
		args = append(args, "%"+f.City+"%")
		query += fmt.Sprintf(" AND c.name ILIKE $%d", len(args))
	}
	if f.Country != "" {
		args = append(args, "%"+f.Country+"%")
		query += fmt.Sprintf(" AND co.name ILIKE $%d", len(args))
	}
	query += " ORDER BY a.name"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var destinations []domain.Destination
	for rows.Next() {
		var (
			d        domain.Destination
			slug     *string
			heroURL  *string
			cachedAt *time.Time
		)
		if err := rows.Scan(&d.ID, &slug, &d.Name, &heroURL, &cachedAt, &d.CityName, &d.CitySlug, &d.CountryName); err != nil {
			return nil, err
		}
		d.Type = domain.TypeNeighborhood
		d.Slug = deref(slug)
		if d.Slug == "" {
			d.Slug = Slugify(d.Name)
		}
		d.HeroImageURL = deref(heroURL)
		d.ImageCachedAt = cachedAt
		destinations = append(destinations, d)
	}
	return destinations, rows.Err()
}

// UpdateImages writes the enrichment result back to the destination's row.
func (r *DestinationRepository) UpdateImages(ctx context.Context, dest domain.Destination, u ImageUpdate) error {
	now := time.Now().UTC()

	if dest.Type == domain.TypeNeighborhood {
		const query = `
			UPDATE city_areas
			SET hero_image_url = $2,
			    image_source = $3,
			    image_attribution = $4,
			    image_cached_at = $5
			WHERE id = $1
		`
		_, err := r.pool.Exec(ctx, query, dest.ID, u.HeroURL, string(u.Source), nullable(u.Attribution), now)
		return err
	}

	table := "countries"
	if dest.Type == domain.TypeCity {
		table = "cities"
	}
	query := fmt.Sprintf(`
		UPDATE %s
		SET hero_image_url = $2,
		    image_source = $3,
		    image_attribution = $4,
		    image_gallery_urls = $5,
		    image_quality_score = $6,
		    image_license_hint = $7,
		    usage_rights_status = $8,
		    google_place_id = COALESCE($9, google_place_id),
		    canonical_query = COALESCE($10, canonical_query),
		    image_cached_at = $11
		WHERE id = $1
	`, table)

	_, err := r.pool.Exec(ctx, query,
		dest.ID,
		u.HeroURL,
		string(u.Source),
		nullable(u.Attribution),
		u.GalleryURLs,
		u.QualityScore,
		string(u.LicenseHint),
		string(u.UsageRights),
		nullable(u.PlaceID),
		nullable(u.CanonicalQuery),
		now,
	)
	return err
}

// Slugify lowercases a name and collapses everything non-alphanumeric
// into single hyphens.
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true // strip leading separators
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastHyphen = false
		} else if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
