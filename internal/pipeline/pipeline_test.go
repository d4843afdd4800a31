package pipeline

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bokangsibolla/sola-images/internal/domain"
	"github.com/bokangsibolla/sola-images/internal/media"
	"github.com/bokangsibolla/sola-images/internal/repository"
	"github.com/bokangsibolla/sola-images/internal/resultcache"
)

type fakeRepo struct {
	destinations []domain.Destination
	updates      map[string]repository.ImageUpdate
	updateErr    error
}

func (f *fakeRepo) List(_ context.Context, _ repository.Filter) ([]domain.Destination, error) {
	return f.destinations, nil
}

func (f *fakeRepo) UpdateImages(_ context.Context, dest domain.Destination, u repository.ImageUpdate) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if f.updates == nil {
		f.updates = make(map[string]repository.ImageUpdate)
	}
	f.updates[dest.ID] = u
	return nil
}

type fakeStrategy struct {
	calls  int
	result domain.StrategyResult
}

func (f *fakeStrategy) Execute(_ context.Context, _ domain.Destination) domain.StrategyResult {
	f.calls++
	return f.result
}

type fakeImages struct {
	keys []string
	err  error
}

func (f *fakeImages) PutJPEG(_ context.Context, objectKey string, _ []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.keys = append(f.keys, objectKey)
	return "https://cdn.example.com/" + objectKey, nil
}

type fakeFetcher struct {
	curatedErr error
	directErr  error
	images     [][]byte // round-robin payloads; repeats the last one
	served     int
}

func (f *fakeFetcher) next() []byte {
	if len(f.images) == 0 {
		return nil
	}
	i := f.served
	if i >= len(f.images) {
		i = len(f.images) - 1
	}
	f.served++
	return f.images[i]
}

func (f *fakeFetcher) FetchCurated(_ context.Context, _ string, _ media.ResizeProfile) ([]byte, error) {
	if f.curatedErr != nil {
		return nil, f.curatedErr
	}
	return f.next(), nil
}

func (f *fakeFetcher) FetchDirect(_ context.Context, _ string, _ media.ResizeProfile) ([]byte, []byte, error) {
	if f.directErr != nil {
		return nil, nil, f.directErr
	}
	data := f.next()
	return data, data, nil
}

// memoryCache is an in-memory resultcache.Store for tests.
type memoryCache struct {
	entries map[string]domain.StrategyResult
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string]domain.StrategyResult)}
}

func (m *memoryCache) Get(_ context.Context, id string, _ time.Duration) (*domain.StrategyResult, bool) {
	r, ok := m.entries[id]
	if !ok {
		return nil, false
	}
	return &r, true
}

func (m *memoryCache) Set(_ context.Context, id string, result domain.StrategyResult) error {
	m.entries[id] = result
	return nil
}

func (m *memoryCache) Clear(_ context.Context) error {
	m.entries = make(map[string]domain.StrategyResult)
	return nil
}

// testJPEG produces small images with far-apart perceptual hashes:
// kind 0 is a rising ramp, 1 a falling ramp, 2 a tent.
func testJPEG(t *testing.T, kind int) []byte {
	t.Helper()
	const w, h = 64, 48
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var v int
			switch kind {
			case 1:
				v = w - x
			case 2:
				v = 2 * min(x, w-x)
			default:
				v = x
			}
			lum := uint8(255 * v / w)
			img.Set(x, y, color.RGBA{R: lum, G: lum, B: lum, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func cityDest(id string) domain.Destination {
	return domain.Destination{
		ID: id, Type: domain.TypeCity, Name: "Bangkok",
		Slug: "bangkok", CountryName: "Thailand",
	}
}

func curatedStrategyResult() domain.StrategyResult {
	hero := domain.ImageCandidate{
		URL: "places/p/photos/0", Source: domain.SourceCuratedPhoto,
		Width: 1600, Height: 1067, QualityScore: 70,
		Attribution: "A Photographer",
		LicenseHint: domain.LicenseUnknown,
	}
	return domain.StrategyResult{
		Hero: &hero,
		Gallery: []domain.ImageCandidate{
			{URL: "places/p/photos/1", Source: domain.SourceCuratedPhoto},
			{URL: "https://upload.wikimedia.org/g2.jpg", Source: domain.SourceWebSearch},
		},
		AllCandidates:  []domain.ImageCandidate{hero},
		CanonicalQuery: "Bangkok Capital of Thailand",
		PlaceID:        "place-1",
	}
}

func newTestPipeline(repo *fakeRepo, strat *fakeStrategy, cache resultcache.Store, images *fakeImages, fetcher *fakeFetcher, opts Options) *Pipeline {
	if cache == nil {
		cache = newMemoryCache()
	}
	return New(repo, strat, cache, images, fetcher, &domain.Usage{}, opts, zerolog.Nop())
}

func TestRunSkipsAlreadyEnriched(t *testing.T) {
	t.Parallel()

	cached := time.Now()
	dest := cityDest("city-1")
	dest.ImageCachedAt = &cached

	strat := &fakeStrategy{result: curatedStrategyResult()}
	p := newTestPipeline(&fakeRepo{destinations: []domain.Destination{dest}}, strat, nil, &fakeImages{}, &fakeFetcher{}, Options{})

	report, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, strat.calls)
	require.Len(t, report.Results, 1)
	assert.Equal(t, domain.StatusSkipped, report.Results[0].Status)
	assert.Contains(t, report.Results[0].Reason, "already enriched")
}

func TestRunRefreshOverridesSkip(t *testing.T) {
	t.Parallel()

	cached := time.Now()
	dest := cityDest("city-1")
	dest.ImageCachedAt = &cached

	strat := &fakeStrategy{result: curatedStrategyResult()}
	fetcher := &fakeFetcher{images: [][]byte{testJPEG(t, 0), testJPEG(t, 1), testJPEG(t, 2)}}
	repo := &fakeRepo{destinations: []domain.Destination{dest}}
	p := newTestPipeline(repo, strat, nil, &fakeImages{}, fetcher, Options{Refresh: true})

	report, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, strat.calls)
	assert.Equal(t, 1, report.Enriched)
}

func TestRunDryRun(t *testing.T) {
	t.Parallel()

	strat := &fakeStrategy{result: curatedStrategyResult()}
	p := newTestPipeline(&fakeRepo{destinations: []domain.Destination{cityDest("city-1")}}, strat, nil, &fakeImages{}, &fakeFetcher{}, Options{DryRun: true})

	report, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, strat.calls)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, "Dry run", report.Results[0].Reason)
}

func TestRunCacheMakesSecondRunFree(t *testing.T) {
	t.Parallel()

	repo := &fakeRepo{destinations: []domain.Destination{cityDest("city-1")}}
	cache := newMemoryCache()
	fetcher := &fakeFetcher{images: [][]byte{testJPEG(t, 0), testJPEG(t, 1), testJPEG(t, 2)}}

	first := &fakeStrategy{result: curatedStrategyResult()}
	p1 := newTestPipeline(repo, first, cache, &fakeImages{}, fetcher, Options{})
	_, err := p1.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first.calls)

	second := &fakeStrategy{result: curatedStrategyResult()}
	p2 := newTestPipeline(repo, second, cache, &fakeImages{}, fetcher, Options{})
	report, err := p2.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, second.calls, "cached strategy result must avoid new API work")
	require.Len(t, report.Results, 1)
	assert.Equal(t, domain.StatusSkipped, report.Results[0].Status)
	assert.Equal(t, "cached from previous run", report.Results[0].Reason)
	assert.NotNil(t, report.Results[0].Hero)
}

func TestRunNoViableImages(t *testing.T) {
	t.Parallel()

	strat := &fakeStrategy{result: domain.StrategyResult{
		AllCandidates: make([]domain.ImageCandidate, 12),
	}}
	p := newTestPipeline(&fakeRepo{destinations: []domain.Destination{cityDest("city-1")}}, strat, nil, &fakeImages{}, &fakeFetcher{}, Options{})

	report, err := p.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Results, 1)
	assert.Equal(t, domain.StatusFailed, report.Results[0].Status)
	assert.Contains(t, report.Results[0].Reason, "12 candidates evaluated")
}

func TestRunHeroDownloadFailureFailsDestination(t *testing.T) {
	t.Parallel()

	strat := &fakeStrategy{result: curatedStrategyResult()}
	fetcher := &fakeFetcher{curatedErr: errors.New("403 forbidden")}
	p := newTestPipeline(&fakeRepo{destinations: []domain.Destination{cityDest("city-1")}}, strat, nil, &fakeImages{}, fetcher, Options{})

	report, err := p.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Results, 1)
	assert.Equal(t, domain.StatusFailed, report.Results[0].Status)
	assert.Contains(t, report.Results[0].Reason, "hero download")
}

func TestRunEnrichesAndPersists(t *testing.T) {
	t.Parallel()

	repo := &fakeRepo{destinations: []domain.Destination{cityDest("city-1")}}
	strat := &fakeStrategy{result: curatedStrategyResult()}
	images := &fakeImages{}
	fetcher := &fakeFetcher{images: [][]byte{testJPEG(t, 0), testJPEG(t, 1), testJPEG(t, 2)}}
	p := newTestPipeline(repo, strat, nil, images, fetcher, Options{})

	report, err := p.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Results, 1)
	result := report.Results[0]
	assert.Equal(t, domain.StatusEnriched, result.Status)
	require.NotNil(t, result.Hero)
	assert.Equal(t, "https://cdn.example.com/cities/bangkok.jpg", result.Hero.URL)
	assert.Len(t, result.GalleryURLs, 2)

	update, ok := repo.updates["city-1"]
	require.True(t, ok)
	assert.Equal(t, "https://cdn.example.com/cities/bangkok.jpg", update.HeroURL)
	assert.Equal(t, domain.SourceCuratedPhoto, update.Source)
	assert.Equal(t, domain.RightsInternalTesting, update.UsageRights)
	assert.Equal(t, "A Photographer", update.Attribution)
	assert.Equal(t, 70, update.QualityScore)
	assert.Equal(t, "place-1", update.PlaceID)
	assert.Equal(t, "Bangkok Capital of Thailand", update.CanonicalQuery)
}

func TestRunWebHeroNeedsReview(t *testing.T) {
	t.Parallel()

	result := curatedStrategyResult()
	hero := domain.ImageCandidate{
		URL: "https://upload.wikimedia.org/hero.jpg", Source: domain.SourceWebSearch,
		Width: 2048, Height: 1365, QualityScore: 80,
		LicenseHint: domain.LicenseOpenLike,
	}
	result.Hero = &hero

	repo := &fakeRepo{destinations: []domain.Destination{cityDest("city-1")}}
	fetcher := &fakeFetcher{images: [][]byte{testJPEG(t, 0), testJPEG(t, 1), testJPEG(t, 2)}}
	p := newTestPipeline(repo, &fakeStrategy{result: result}, nil, &fakeImages{}, fetcher, Options{})

	report, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Enriched)
	update := repo.updates["city-1"]
	assert.Equal(t, domain.RightsNeedsReview, update.UsageRights)
	assert.Equal(t, domain.LicenseOpenLike, update.LicenseHint)
}

func TestRunGalleryFailureFallsBackForWebImages(t *testing.T) {
	t.Parallel()

	result := curatedStrategyResult()
	result.Gallery = []domain.ImageCandidate{
		{URL: "https://upload.wikimedia.org/g1.jpg", Source: domain.SourceWebSearch},
		{URL: "places/p/photos/1", Source: domain.SourceCuratedPhoto},
	}

	repo := &fakeRepo{destinations: []domain.Destination{cityDest("city-1")}}
	// Hero (curated) succeeds; every direct download fails; the curated
	// gallery image succeeds.
	fetcher := &fakeFetcher{
		directErr: errors.New("timeout"),
		images:    [][]byte{testJPEG(t, 0), testJPEG(t, 1)},
	}
	p := newTestPipeline(repo, &fakeStrategy{result: result}, nil, &fakeImages{}, fetcher, Options{})

	report, err := p.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Results, 1)
	assert.Equal(t, domain.StatusEnriched, report.Results[0].Status)
	urls := report.Results[0].GalleryURLs
	require.Len(t, urls, 2)
	// The failed web image keeps its original remote URL.
	assert.Equal(t, "https://upload.wikimedia.org/g1.jpg", urls[0])
	assert.Contains(t, urls[1], "cdn.example.com")
}

func TestRunDatastoreFailureFailsDestination(t *testing.T) {
	t.Parallel()

	repo := &fakeRepo{
		destinations: []domain.Destination{cityDest("city-1")},
		updateErr:    errors.New("connection reset"),
	}
	fetcher := &fakeFetcher{images: [][]byte{testJPEG(t, 0), testJPEG(t, 1), testJPEG(t, 2)}}
	p := newTestPipeline(repo, &fakeStrategy{result: curatedStrategyResult()}, nil, &fakeImages{}, fetcher, Options{})

	report, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.StatusFailed, report.Results[0].Status)
	assert.Contains(t, report.Results[0].Reason, "datastore update")
}
