package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bokangsibolla/sola-images/internal/domain"
)

func curatedCandidate() domain.ImageCandidate {
	return domain.ImageCandidate{
		URL:         "places/abc/photos/def",
		Source:      domain.SourceCuratedPhoto,
		Width:       1600,
		Height:      1067,
		DomainTrust: 0.85,
	}
}

func webCandidate() domain.ImageCandidate {
	return domain.ImageCandidate{
		URL:         "https://upload.wikimedia.org/bangkok.jpg",
		Source:      domain.SourceWebSearch,
		Width:       2048,
		Height:      1365,
		Title:       "Bangkok skyline at sunset",
		ContextLink: "https://en.wikipedia.org/wiki/Bangkok",
		DomainTrust: 0.9,
	}
}

func TestShouldReject(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()

	tests := []struct {
		name string
		mod  func(*domain.ImageCandidate)
		want bool
	}{
		{"acceptable web candidate", func(c *domain.ImageCandidate) {}, false},
		{"too narrow", func(c *domain.ImageCandidate) { c.Width = 599 }, true},
		{"too short", func(c *domain.ImageCandidate) { c.Height = 399 }, true},
		{"minimum size exactly", func(c *domain.ImageCandidate) { c.Width, c.Height = 600, 400 }, false},
		{"extreme portrait from the web", func(c *domain.ImageCandidate) { c.Width, c.Height = 800, 1000 }, true},
		{"portrait within tolerance", func(c *domain.ImageCandidate) { c.Width, c.Height = 800, 960 }, false},
		{"stock photo title", func(c *domain.ImageCandidate) { c.Title = "Bangkok Stock Photo 4000x3000 px" }, true},
		{"royalty-free title", func(c *domain.ImageCandidate) { c.Title = "Royalty-Free Thailand picture" }, true},
		{"map title", func(c *domain.ImageCandidate) { c.Title = "Map of Bangkok districts" }, true},
		{"flag title", func(c *domain.ImageCandidate) { c.Title = "Flag of Thailand" }, true},
		{"svg url", func(c *domain.ImageCandidate) { c.URL = "https://example.com/bangkok.svg" }, true},
		{"thumbnail path", func(c *domain.ImageCandidate) { c.URL = "https://example.com/thumbs/bangkok.jpg" }, true},
		{"trust at the floor", func(c *domain.ImageCandidate) { c.DomainTrust = 0.15 }, true},
		{"trust just above the floor", func(c *domain.ImageCandidate) { c.DomainTrust = 0.16 }, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			c := webCandidate()
			tc.mod(&c)
			assert.Equal(t, tc.want, cfg.ShouldReject(c))
		})
	}
}

func TestCuratedPortraitIsNotRejected(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()

	c := curatedCandidate()
	c.Width, c.Height = 800, 1200
	assert.False(t, cfg.ShouldReject(c))
}

func TestScoreRejectedIsZero(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()

	c := webCandidate()
	c.Width = 500
	assert.Equal(t, 0, cfg.Score(c, "Bangkok", "Thailand", RoleHero))
}

func TestScoreCuratedHero(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()

	// 1600x1067 is a 1.5 ratio at 1.7MP: 12 resolution points plus 9 for
	// megapixels. Sharpness, trust, and relevance get the flat curated
	// credits (9, 13, 11) and vibe lands on 16 with the curated and
	// high-trust bonuses.
	got := cfg.Score(curatedCandidate(), "Bangkok", "Thailand", RoleHero)
	assert.Equal(t, 70, got)
}

func TestScoreBounds(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()

	candidates := []domain.ImageCandidate{
		curatedCandidate(),
		webCandidate(),
		{Source: domain.SourceWebSearch, URL: "https://a.example.com/x.jpg", Width: 6000, Height: 4000, FileSize: 40 << 20, DomainTrust: 0.95, Title: "aerial panorama golden hour sunset skyline scenic landscape travel photography"},
		{Source: domain.SourceWebSearch, URL: "https://b.example.com/y.jpg", Width: 640, Height: 480, DomainTrust: 0.2, Title: "cheap flights top 10 tripadvisor selfie"},
	}
	for _, c := range candidates {
		for _, role := range []Role{RoleHero, RoleGallery} {
			got := cfg.Score(c, "Bangkok", "Thailand", role)
			assert.GreaterOrEqual(t, got, 0)
			assert.LessOrEqual(t, got, 100)
		}
	}
}

func TestScoreNegativeSignalsDragVibeDown(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()

	clean := webCandidate()
	listicle := webCandidate()
	listicle.Title = "Top 10 Bangkok things tripadvisor"

	assert.Greater(t,
		cfg.Score(clean, "Bangkok", "Thailand", RoleHero),
		cfg.Score(listicle, "Bangkok", "Thailand", RoleHero))
}

func TestRank(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()

	strong := curatedCandidate()
	weak := domain.ImageCandidate{
		URL:         "https://blog.example.com/photo.jpg",
		Source:      domain.SourceWebSearch,
		Width:       640,
		Height:      480,
		DomainTrust: 0.4,
	}
	rejected := domain.ImageCandidate{
		URL:    "https://blog.example.com/tiny.jpg",
		Source: domain.SourceWebSearch,
		Width:  500,
		Height: 300,
	}

	in := []domain.ImageCandidate{weak, strong, rejected}
	ranked := cfg.Rank(in, "Bangkok", "Thailand", RoleHero)

	assert.Len(t, ranked, 2)
	assert.Equal(t, strong.URL, ranked[0].URL)
	assert.Equal(t, weak.URL, ranked[1].URL)
	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].QualityScore, ranked[i].QualityScore)
	}
	for _, c := range ranked {
		assert.Greater(t, c.QualityScore, 0)
	}

	// Input order and scores are untouched.
	assert.Equal(t, "https://blog.example.com/photo.jpg", in[0].URL)
	assert.Zero(t, in[0].QualityScore)
}
