// Package strategy decides, per destination type, which sources to query,
// in what order, and when to escalate to the more expensive web search.
// A dispatch always returns a StrategyResult even when every adapter
// fails; an empty hero is a soft failure the caller reports, not a crash.
package strategy

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/bokangsibolla/sola-images/internal/domain"
	"github.com/bokangsibolla/sola-images/internal/scoring"
	"github.com/bokangsibolla/sola-images/internal/sources"
)

// CuratedSource resolves a place and returns its photo catalog.
type CuratedSource interface {
	SearchPlacePhotos(ctx context.Context, query string) (*sources.PlaceResult, error)
}

// WebSource runs keyword image searches. Errors are absorbed inside
// SearchMulti, so it only ever returns candidates.
type WebSource interface {
	SearchMulti(ctx context.Context, queries []string, opts sources.SearchOptions) []domain.ImageCandidate
}

// EntitySource disambiguates destination names. Never supplies images.
type EntitySource interface {
	Disambiguate(ctx context.Context, name string, hints sources.RegionHints) (*sources.Entity, error)
}

// Options tune one dispatcher instance for a whole run.
type Options struct {
	// QualityThreshold is the hero score below which a city strategy
	// escalates from curated photos to web search.
	QualityThreshold int
	// GallerySize caps the diverse gallery.
	GallerySize int
	// SkipWebSearch forces curated-photo-only mode.
	SkipWebSearch bool
	// SearchOpts are passed through to every web search call.
	SearchOpts sources.SearchOptions
}

// minCuratedForNeighborhood is the candidate count under which a
// neighborhood strategy escalates to web search. Neighborhoods rarely
// have strong curated coverage, so the trigger is count, not score.
const minCuratedForNeighborhood = 3

// Dispatcher executes the per-type search plans.
type Dispatcher struct {
	curated  CuratedSource
	web      WebSource    // nil when web search is unavailable
	entities EntitySource // nil when entity lookup is unavailable
	scoring  scoring.Config
	opts     Options
	log      zerolog.Logger
}

func NewDispatcher(curated CuratedSource, web WebSource, entities EntitySource, scoringCfg scoring.Config, opts Options, log zerolog.Logger) *Dispatcher {
	if opts.QualityThreshold <= 0 {
		opts.QualityThreshold = 55
	}
	if opts.GallerySize <= 0 {
		opts.GallerySize = 4
	}
	return &Dispatcher{
		curated:  curated,
		web:      web,
		entities: entities,
		scoring:  scoringCfg,
		opts:     opts,
		log:      log,
	}
}

// Execute runs the plan for the destination's type.
func (d *Dispatcher) Execute(ctx context.Context, dest domain.Destination) domain.StrategyResult {
	switch dest.Type {
	case domain.TypeCountry:
		return d.country(ctx, dest)
	case domain.TypeCity:
		return d.city(ctx, dest)
	case domain.TypeNeighborhood:
		return d.neighborhood(ctx, dest)
	default:
		d.log.Error().Str("type", string(dest.Type)).Str("destination", dest.Name).
			Msg("unknown destination type")
		return domain.StrategyResult{}
	}
}

// country: web search runs first and unconditionally, since countries need
// more editorial imagery than any single place entity has. Curated photos
// act as a secondary gallery source.
func (d *Dispatcher) country(ctx context.Context, dest domain.Destination) domain.StrategyResult {
	result := domain.StrategyResult{}

	d.disambiguate(ctx, dest, sources.RegionHints{}, &result)

	if d.webEnabled() {
		candidates := d.web.SearchMulti(ctx, countryWebQueries(dest.Name), d.opts.SearchOpts)
		ranked := d.scoring.Rank(candidates, dest.Name, "", scoring.RoleHero)
		d.log.Debug().Str("destination", dest.Name).Int("raw", len(candidates)).
			Int("viable", len(ranked)).Msg("web search candidates")
		result.AllCandidates = append(result.AllCandidates, ranked...)
	}

	curated := d.fetchCurated(ctx, countryCuratedQueries(dest.Name), &result)
	ranked := d.scoring.Rank(curated, dest.Name, "", scoring.RoleGallery)
	result.AllCandidates = append(result.AllCandidates, ranked...)

	d.finish(dest, "", &result)
	return result
}

// city: curated photos first (cheap, usually adequate); escalate to web
// search only when the best curated hero misses the quality threshold.
func (d *Dispatcher) city(ctx context.Context, dest domain.Destination) domain.StrategyResult {
	result := domain.StrategyResult{}

	d.disambiguate(ctx, dest, sources.RegionHints{CountryName: dest.CountryName}, &result)

	curated := d.fetchCurated(ctx, cityCuratedQueries(dest.Name, dest.CountryName), &result)
	rankedCurated := d.scoring.Rank(curated, dest.Name, dest.CountryName, scoring.RoleHero)
	result.AllCandidates = append(result.AllCandidates, rankedCurated...)

	bestCurated := 0
	if len(rankedCurated) > 0 {
		bestCurated = rankedCurated[0].QualityScore
	}

	if d.webEnabled() && bestCurated < d.opts.QualityThreshold {
		d.log.Debug().Str("destination", dest.Name).Int("best_curated", bestCurated).
			Int("threshold", d.opts.QualityThreshold).Msg("escalating to web search")
		candidates := d.web.SearchMulti(ctx, cityWebQueries(dest.Name, dest.CountryName), d.opts.SearchOpts)
		ranked := d.scoring.Rank(candidates, dest.Name, dest.CountryName, scoring.RoleHero)
		result.AllCandidates = append(result.AllCandidates, ranked...)
	}

	d.finish(dest, dest.CountryName, &result)
	return result
}

// neighborhood: curated photos first; escalate when the curated catalog is
// thin (fewer than three candidates), regardless of score.
func (d *Dispatcher) neighborhood(ctx context.Context, dest domain.Destination) domain.StrategyResult {
	result := domain.StrategyResult{}

	d.disambiguate(ctx, dest, sources.RegionHints{CountryName: dest.CountryName, CityName: dest.CityName}, &result)

	curated := d.fetchCurated(ctx, neighborhoodCuratedQueries(dest.Name, dest.CityName), &result)
	rankedCurated := d.scoring.Rank(curated, dest.Name, dest.CountryName, scoring.RoleHero)
	result.AllCandidates = append(result.AllCandidates, rankedCurated...)

	if d.webEnabled() && len(rankedCurated) < minCuratedForNeighborhood {
		candidates := d.web.SearchMulti(ctx, neighborhoodWebQueries(dest.Name, dest.CityName), d.opts.SearchOpts)
		ranked := d.scoring.Rank(candidates, dest.Name, dest.CountryName, scoring.RoleHero)
		result.AllCandidates = append(result.AllCandidates, ranked...)
	}

	d.finish(dest, dest.CountryName, &result)
	return result
}

// disambiguate refines the canonical query via entity lookup. Failures are
// logged and ignored; the pipeline continues with the unmodified name.
func (d *Dispatcher) disambiguate(ctx context.Context, dest domain.Destination, hints sources.RegionHints, result *domain.StrategyResult) {
	if d.entities == nil {
		return
	}
	entity, err := d.entities.Disambiguate(ctx, dest.Name, hints)
	if err != nil {
		d.log.Warn().Err(err).Str("destination", dest.Name).Msg("entity disambiguation failed")
		return
	}
	if entity == nil {
		return
	}
	result.CanonicalQuery = sources.CanonicalQuery(entity)
	d.log.Debug().Str("destination", dest.Name).Str("entity", entity.Name).
		Str("description", entity.Description).Msg("entity resolved")
}

// fetchCurated tries each query until one resolves a place with photos.
// Per-query failures are absorbed so later queries still run.
func (d *Dispatcher) fetchCurated(ctx context.Context, queries []string, result *domain.StrategyResult) []domain.ImageCandidate {
	for _, q := range queries {
		place, err := d.curated.SearchPlacePhotos(ctx, q)
		if err != nil {
			d.log.Warn().Err(err).Str("query", q).Msg("curated photo query failed")
			continue
		}
		if place == nil || len(place.Candidates) == 0 {
			continue
		}
		result.PlaceID = place.PlaceID
		return place.Candidates
	}
	return nil
}

// finish re-ranks everything for the hero role, picks the hero, then ranks
// the remainder for the gallery role and selects a diverse subset.
func (d *Dispatcher) finish(dest domain.Destination, destCountry string, result *domain.StrategyResult) {
	heroRanked := d.scoring.Rank(result.AllCandidates, dest.Name, destCountry, scoring.RoleHero)
	if len(heroRanked) == 0 {
		return
	}
	hero := heroRanked[0]
	result.Hero = &hero

	pool := make([]domain.ImageCandidate, 0, len(heroRanked)-1)
	for _, c := range heroRanked[1:] {
		if c.URL != hero.URL {
			pool = append(pool, c)
		}
	}
	galleryRanked := d.scoring.Rank(pool, dest.Name, destCountry, scoring.RoleGallery)
	result.Gallery = scoring.SelectDiverse(galleryRanked, d.opts.GallerySize)
}

func (d *Dispatcher) webEnabled() bool {
	return d.web != nil && !d.opts.SkipWebSearch
}
