// Package pipeline drives a full enrichment run: destination enumeration,
// per-item skip/cache/dry-run logic, strategy dispatch, download and
// re-host of winning images, datastore writes, and the review CSV.
// Destinations are processed strictly one at a time with an explicit pause
// between metered calls; sequential processing is the mechanism that keeps
// the upstream APIs under their burst limits.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/bokangsibolla/sola-images/internal/domain"
	"github.com/bokangsibolla/sola-images/internal/ids"
	"github.com/bokangsibolla/sola-images/internal/media"
	"github.com/bokangsibolla/sola-images/internal/repository"
	"github.com/bokangsibolla/sola-images/internal/resultcache"
	"github.com/bokangsibolla/sola-images/internal/storage"
)

// galleryPause is the fixed delay between gallery image downloads.
const galleryPause = 100 * time.Millisecond

// Strategy dispatches the per-type search plan for one destination.
type Strategy interface {
	Execute(ctx context.Context, dest domain.Destination) domain.StrategyResult
}

// DestinationStore reads destination rows and writes enrichment results.
type DestinationStore interface {
	List(ctx context.Context, f repository.Filter) ([]domain.Destination, error)
	UpdateImages(ctx context.Context, dest domain.Destination, u repository.ImageUpdate) error
}

// ImageStore re-hosts image bytes and returns the public URL.
type ImageStore interface {
	PutJPEG(ctx context.Context, objectKey string, data []byte) (string, error)
}

// Downloader fetches and resizes winning images.
type Downloader interface {
	FetchCurated(ctx context.Context, photoName string, profile media.ResizeProfile) ([]byte, error)
	FetchDirect(ctx context.Context, rawURL string, profile media.ResizeProfile) (resized, raw []byte, err error)
}

// Options control one run.
type Options struct {
	Filter      repository.Filter
	DryRun      bool
	Refresh     bool
	ReviewCSV   bool
	ReviewDir   string
	Delay       time.Duration
	CacheMaxAge time.Duration
}

// Report summarizes a finished run.
type Report struct {
	RunID    string
	Results  []domain.PipelineResult
	Enriched int
	Skipped  int
	Failed   int
	CSVPath  string
}

// Pipeline wires the collaborators for sequential destination processing.
type Pipeline struct {
	repo     DestinationStore
	strategy Strategy
	cache    resultcache.Store
	images   ImageStore
	fetcher  Downloader
	usage    *domain.Usage
	opts     Options
	log      zerolog.Logger
}

func New(repo DestinationStore, strategy Strategy, cache resultcache.Store, images ImageStore, fetcher Downloader, usage *domain.Usage, opts Options, log zerolog.Logger) *Pipeline {
	if opts.CacheMaxAge <= 0 {
		opts.CacheMaxAge = resultcache.DefaultMaxAge
	}
	return &Pipeline{
		repo:     repo,
		strategy: strategy,
		cache:    cache,
		images:   images,
		fetcher:  fetcher,
		usage:    usage,
		opts:     opts,
		log:      log,
	}
}

// Run processes every destination matching the filter. A destination's
// total failure never stops the batch.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	report := &Report{RunID: ids.New()}
	log := p.log.With().Str("run_id", report.RunID).Logger()

	destinations, err := p.repo.List(ctx, p.opts.Filter)
	if err != nil {
		return nil, fmt.Errorf("list destinations: %w", err)
	}
	log.Info().Int("destinations", len(destinations)).Msg("starting enrichment run")

	for i, dest := range destinations {
		result := p.processDestination(ctx, dest)
		report.Results = append(report.Results, result)

		event := log.Info()
		switch result.Status {
		case domain.StatusEnriched:
			report.Enriched++
			event = event.Int("score", result.Hero.QualityScore).
				Str("source", string(result.Hero.Source)).
				Int("gallery", len(result.GalleryURLs))
		case domain.StatusSkipped:
			report.Skipped++
			event = event.Str("reason", result.Reason)
		case domain.StatusFailed:
			report.Failed++
			event = event.Str("reason", result.Reason)
		}
		event.Str("status", string(result.Status)).
			Str("type", string(dest.Type)).
			Str("destination", dest.Name).
			Msgf("[%d/%d]", i+1, len(destinations))

		if p.opts.Delay > 0 && i < len(destinations)-1 {
			pause(ctx, p.opts.Delay)
		}
	}

	log.Info().
		Int("total", len(report.Results)).
		Int("enriched", report.Enriched).
		Int("skipped", report.Skipped).
		Int("failed", report.Failed).
		Interface("usage", p.usage).
		Msg("run finished")

	if p.opts.ReviewCSV {
		path := filepath.Join(p.opts.ReviewDir, "image-review-"+report.RunID+".csv")
		if err := WriteReviewCSV(path, report.Results); err != nil {
			log.Error().Err(err).Msg("review csv export failed")
		} else {
			report.CSVPath = path
			log.Info().Str("path", path).Msg("review csv exported")
		}
	}

	return report, nil
}

// processDestination applies the per-destination decision ladder: the free
// datastore check first, then the result cache, then dry-run, and only
// then the paid strategy dispatch.
func (p *Pipeline) processDestination(ctx context.Context, dest domain.Destination) domain.PipelineResult {
	result := domain.PipelineResult{
		DestinationID:   dest.ID,
		DestinationType: dest.Type,
		Name:            dest.Name,
	}

	if !p.opts.Refresh && dest.ImageCachedAt != nil {
		result.Status = domain.StatusSkipped
		result.Reason = "already enriched in datastore (use --refresh to override)"
		return result
	}

	if !p.opts.Refresh {
		if cached, ok := p.cache.Get(ctx, dest.ID, p.opts.CacheMaxAge); ok {
			result.Hero = cached.Hero
			result.Gallery = cached.Gallery
			result.CanonicalQuery = cached.CanonicalQuery
			result.Status = domain.StatusSkipped
			result.Reason = "cached from previous run"
			return result
		}
	}

	if p.opts.DryRun {
		result.Status = domain.StatusSkipped
		result.Reason = "Dry run"
		return result
	}

	strat := p.strategy.Execute(ctx, dest)
	if err := p.cache.Set(ctx, dest.ID, strat); err != nil {
		p.log.Warn().Err(err).Str("destination", dest.Name).Msg("cache write failed")
	}

	if strat.Hero == nil {
		result.Status = domain.StatusFailed
		result.Reason = fmt.Sprintf("no viable images found (%d candidates evaluated)", len(strat.AllCandidates))
		return result
	}

	if err := p.publish(ctx, dest, strat, &result); err != nil {
		result.Status = domain.StatusFailed
		result.Reason = err.Error()
		return result
	}

	result.Status = domain.StatusEnriched
	return result
}

// publish downloads, re-hosts, and persists the hero and gallery. A hero
// failure is a destination failure; gallery failures are soft skips, with
// web-search images falling back to their original remote URL.
func (p *Pipeline) publish(ctx context.Context, dest domain.Destination, strat domain.StrategyResult, result *domain.PipelineResult) error {
	hero := *strat.Hero
	profile := media.HeroProfile
	if dest.Type == domain.TypeNeighborhood {
		profile = media.AreaProfile
	}

	var (
		heroData []byte
		err      error
	)
	licenseHint := hero.LicenseHint
	if hero.Source == domain.SourceCuratedPhoto {
		heroData, err = p.fetcher.FetchCurated(ctx, hero.URL, profile)
		if err != nil {
			return fmt.Errorf("hero download: %w", err)
		}
	} else {
		var raw []byte
		heroData, raw, err = p.fetcher.FetchDirect(ctx, hero.URL, profile)
		if err != nil {
			return fmt.Errorf("hero download: %w", err)
		}
		licenseHint = media.SniffLicense(raw, licenseHint)
	}

	heroURL, err := p.images.PutJPEG(ctx, storage.HeroKey(dest), heroData)
	if err != nil {
		return fmt.Errorf("hero upload: %w", err)
	}
	if p.usage != nil {
		p.usage.Uploads++
	}

	dedup := &media.DedupFilter{}
	dedup.SeenJPEG(heroData)

	galleryURLs := p.publishGallery(ctx, dest, strat.Gallery, dedup)

	usageRights := domain.RightsInternalTesting
	if hero.Source == domain.SourceWebSearch || licenseHint == domain.LicenseLikelyRestricted {
		usageRights = domain.RightsNeedsReview
	}

	update := repository.ImageUpdate{
		HeroURL:        heroURL,
		GalleryURLs:    galleryURLs,
		Source:         hero.Source,
		Attribution:    hero.Attribution,
		LicenseHint:    licenseHint,
		QualityScore:   hero.QualityScore,
		UsageRights:    usageRights,
		PlaceID:        strat.PlaceID,
		CanonicalQuery: strat.CanonicalQuery,
	}
	if err := p.repo.UpdateImages(ctx, dest, update); err != nil {
		return fmt.Errorf("datastore update: %w", err)
	}

	hero.URL = heroURL
	hero.LicenseHint = licenseHint
	result.Hero = &hero
	result.Gallery = strat.Gallery
	result.GalleryURLs = galleryURLs
	result.CanonicalQuery = strat.CanonicalQuery
	return nil
}

func (p *Pipeline) publishGallery(ctx context.Context, dest domain.Destination, gallery []domain.ImageCandidate, dedup *media.DedupFilter) []string {
	var urls []string
	for i, g := range gallery {
		var (
			data []byte
			err  error
		)
		if g.Source == domain.SourceCuratedPhoto {
			data, err = p.fetcher.FetchCurated(ctx, g.URL, media.GalleryProfile)
		} else {
			data, _, err = p.fetcher.FetchDirect(ctx, g.URL, media.GalleryProfile)
		}
		if err != nil {
			p.log.Debug().Err(err).Str("destination", dest.Name).Int("index", i).Msg("gallery download failed")
			// Lower stakes than the hero: link the original remote URL
			// for web images, skip curated ones.
			if g.Source == domain.SourceWebSearch {
				urls = append(urls, g.URL)
			}
			continue
		}

		if dedup.SeenJPEG(data) {
			p.log.Debug().Str("destination", dest.Name).Int("index", i).Msg("gallery image is a perceptual duplicate")
			continue
		}

		url, err := p.images.PutJPEG(ctx, storage.GalleryKey(dest, i), data)
		if err != nil {
			p.log.Debug().Err(err).Str("destination", dest.Name).Int("index", i).Msg("gallery upload failed")
			if g.Source == domain.SourceWebSearch {
				urls = append(urls, g.URL)
			}
			continue
		}
		if p.usage != nil {
			p.usage.Uploads++
		}
		urls = append(urls, url)

		if i < len(gallery)-1 {
			pause(ctx, galleryPause)
		}
	}
	return urls
}

// pause waits for d or until the context is done, whichever comes first.
func pause(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
