// Package scoring converts raw image candidates into 0-100 quality scores
// along five weighted dimensions, with role-specific weight profiles and a
// hard-rejection filter. Rank is the only sanctioned way to order
// candidates; no other component re-sorts by a different key.
package scoring

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/bokangsibolla/sola-images/internal/domain"
)

// Role selects a weight profile: heroes favor editorial vibe and
// resolution, gallery images favor relevance and source trust.
type Role string

const (
	RoleHero    Role = "hero"
	RoleGallery Role = "gallery"
)

// Weights are the maximum points per scoring dimension; they sum to 100.
type Weights struct {
	Resolution  int
	Sharpness   int
	SourceTrust int
	Relevance   int
	Vibe        int
}

// Config carries the denylists, signal lists, and weight profiles so that
// scoring is a pure function of (candidate, destination context, role,
// config) with no hidden mutable tables.
type Config struct {
	Hero    Weights
	Gallery Weights

	// TitleDenylist rejects stock/clipart/logo/icon/map/flag titles.
	TitleDenylist []*regexp.Regexp
	// URLDenylist rejects vector/animated/icon/thumbnail paths.
	URLDenylist []*regexp.Regexp

	// PositiveSignals and NegativeSignals adjust the editorial-vibe
	// dimension per keyword match in title + context link.
	PositiveSignals []*regexp.Regexp
	NegativeSignals []*regexp.Regexp

	// TravelKeywords feed the generic-keyword share of relevance.
	TravelKeywords *regexp.Regexp

	// MinTrust is the floor below which a candidate is rejected outright.
	MinTrust float64
}

// DefaultConfig returns the production scoring tables.
func DefaultConfig() Config {
	return Config{
		Hero:    Weights{Resolution: 30, Sharpness: 15, SourceTrust: 15, Relevance: 15, Vibe: 25},
		Gallery: Weights{Resolution: 25, Sharpness: 10, SourceTrust: 20, Relevance: 25, Vibe: 20},

		TitleDenylist: []*regexp.Regexp{
			regexp.MustCompile(`(?i)stock\s*(photo|image|picture)`),
			regexp.MustCompile(`(?i)royalty[\s-]free`),
			regexp.MustCompile(`(?i)watermark`),
			regexp.MustCompile(`(?i)\d+\s*x\s*\d+\s*(px|pixel)`),
			regexp.MustCompile(`(?i)download\s*free`),
			regexp.MustCompile(`(?i)clipart`),
			regexp.MustCompile(`(?i)vector`),
			regexp.MustCompile(`(?i)illustration`),
			regexp.MustCompile(`(?i)cartoon`),
			regexp.MustCompile(`(?i)\blogo\b`),
			regexp.MustCompile(`(?i)\bicon\b`),
			regexp.MustCompile(`(?i)\bmap\b`),
			regexp.MustCompile(`(?i)\bflag\b`),
		},
		URLDenylist: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\.svg$`),
			regexp.MustCompile(`(?i)\.gif$`),
			regexp.MustCompile(`(?i)favicon`),
			regexp.MustCompile(`(?i)logo`),
			regexp.MustCompile(`(?i)icon`),
			regexp.MustCompile(`(?i)thumb(nail)?s?/`),
		},

		PositiveSignals: []*regexp.Regexp{
			regexp.MustCompile(`(?i)travel\s*(photography|editorial)`),
			regexp.MustCompile(`(?i)cinematic`),
			regexp.MustCompile(`(?i)panoram(a|ic)`),
			regexp.MustCompile(`(?i)aerial`),
			regexp.MustCompile(`(?i)drone`),
			regexp.MustCompile(`(?i)golden\s*hour`),
			regexp.MustCompile(`(?i)blue\s*hour`),
			regexp.MustCompile(`(?i)sunset`),
			regexp.MustCompile(`(?i)sunrise`),
			regexp.MustCompile(`(?i)landscape`),
			regexp.MustCompile(`(?i)scenic`),
			regexp.MustCompile(`(?i)viewpoint`),
			regexp.MustCompile(`(?i)skyline`),
			regexp.MustCompile(`(?i)national\s*geographic`),
			regexp.MustCompile(`(?i)lonely\s*planet`),
			regexp.MustCompile(`(?i)cond[eé]\s*nast`),
			regexp.MustCompile(`(?i)tourism\s*(board|authority)`),
		},
		NegativeSignals: []*regexp.Regexp{
			regexp.MustCompile(`(?i)best\s*\d+\s*things`),
			regexp.MustCompile(`(?i)top\s*\d+`),
			regexp.MustCompile(`(?i)cheap\s*(flight|hotel)`),
			regexp.MustCompile(`(?i)booking\.com`),
			regexp.MustCompile(`(?i)tripadvisor`),
			regexp.MustCompile(`(?i)agoda`),
			regexp.MustCompile(`(?i)expedia`),
			regexp.MustCompile(`(?i)hostelworld`),
			regexp.MustCompile(`(?i)(happy|smiling)\s*(woman|man|people|tourist)`),
			regexp.MustCompile(`(?i)stock`),
			regexp.MustCompile(`(?i)selfie`),
			regexp.MustCompile(`(?i)instagram\s*spot`),
			regexp.MustCompile(`(?i)tiktok`),
		},

		TravelKeywords: regexp.MustCompile(`(?i)travel|tourism|visit|explore|guide`),

		MinTrust: 0.15,
	}
}

func (cfg Config) weights(role Role) Weights {
	if role == RoleGallery {
		return cfg.Gallery
	}
	return cfg.Hero
}

// ShouldReject runs the hard-rejection filter: tiny images, extreme
// portrait crops from the open web, denylisted titles and URL patterns,
// and hosting domains at or below the trust floor.
func (cfg Config) ShouldReject(c domain.ImageCandidate) bool {
	if c.Width < 600 || c.Height < 400 {
		return true
	}
	if c.Source == domain.SourceWebSearch && float64(c.Height) > float64(c.Width)*1.2 {
		return true
	}
	for _, pat := range cfg.TitleDenylist {
		if pat.MatchString(c.Title) {
			return true
		}
	}
	for _, pat := range cfg.URLDenylist {
		if pat.MatchString(c.URL) {
			return true
		}
	}
	return c.DomainTrust <= cfg.MinTrust
}

// Score rates one candidate 0-100 for the given destination and role.
// Rejected candidates score exactly 0.
func (cfg Config) Score(c domain.ImageCandidate, destName, destCountry string, role Role) int {
	if cfg.ShouldReject(c) {
		return 0
	}

	w := cfg.weights(role)
	total := cfg.scoreResolution(c, w.Resolution) +
		cfg.scoreSharpness(c, w.Sharpness) +
		cfg.scoreSourceTrust(c, w.SourceTrust) +
		cfg.scoreRelevance(c, destName, destCountry, w.Relevance) +
		cfg.scoreVibe(c, w.Vibe)

	if total > 100 {
		return 100
	}
	return total
}

// Rank scores every candidate, drops the zero-scored ones, and returns the
// rest sorted by score descending. The input slice is not modified.
func (cfg Config) Rank(candidates []domain.ImageCandidate, destName, destCountry string, role Role) []domain.ImageCandidate {
	ranked := make([]domain.ImageCandidate, 0, len(candidates))
	for _, c := range candidates {
		c.QualityScore = cfg.Score(c, destName, destCountry, role)
		if c.QualityScore > 0 {
			ranked = append(ranked, c)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].QualityScore > ranked[j].QualityScore
	})
	return ranked
}

// scoreResolution: 40% of the dimension from the aspect-ratio band (ideal
// landscape 1.3-1.8), 60% from megapixels saturating at 4MP.
func (cfg Config) scoreResolution(c domain.ImageCandidate, maxPts int) int {
	max := float64(maxPts)
	ratio := float64(c.Width) / float64(c.Height)

	var score float64
	switch {
	case ratio >= 1.3 && ratio <= 1.8:
		score += max * 0.4
	case ratio >= 1.0 && ratio < 1.3:
		score += max * 0.2
	case ratio > 1.8 && ratio <= 2.5:
		score += max * 0.3
	}

	mp := float64(c.Width) * float64(c.Height) / 1e6
	mpPortion := max * 0.6
	switch {
	case mp >= 4:
		score += mpPortion
	case mp >= 2:
		score += mpPortion * 0.8
	case mp >= 1:
		score += mpPortion * 0.5
	case mp >= 0.5:
		score += mpPortion * 0.3
	}

	return int(math.Round(score))
}

// scoreSharpness uses bytes-per-megapixel as a compression proxy. Curated
// photos carry no file size, so they get flat credit for upstream curation.
func (cfg Config) scoreSharpness(c domain.ImageCandidate, maxPts int) int {
	if c.FileSize == 0 || c.Width == 0 || c.Height == 0 {
		if c.Source == domain.SourceCuratedPhoto {
			return int(math.Round(float64(maxPts) * 0.6))
		}
		return 0
	}

	mp := float64(c.Width) * float64(c.Height) / 1e6
	bytesPerMp := float64(c.FileSize) / mp

	max := float64(maxPts)
	switch {
	case bytesPerMp >= 1_500_000:
		return maxPts
	case bytesPerMp >= 800_000:
		return int(math.Round(max * 0.8))
	case bytesPerMp >= 400_000:
		return int(math.Round(max * 0.5))
	case bytesPerMp >= 200_000:
		return int(math.Round(max * 0.3))
	}
	return int(math.Round(max * 0.1))
}

func (cfg Config) scoreSourceTrust(c domain.ImageCandidate, maxPts int) int {
	if c.Source == domain.SourceCuratedPhoto {
		return int(math.Round(float64(maxPts) * 0.85))
	}
	return int(math.Round(c.DomainTrust * float64(maxPts)))
}

// scoreRelevance checks title/context containment of the destination name
// (50%), containing-region mention (30%), and generic travel keywords
// (20%). Curated photos have no text, so they get flat credit.
func (cfg Config) scoreRelevance(c domain.ImageCandidate, destName, destCountry string, maxPts int) int {
	if c.Source == domain.SourceCuratedPhoto {
		return int(math.Round(float64(maxPts) * 0.7))
	}

	max := float64(maxPts)
	title := strings.ToLower(c.Title)
	combined := title + " " + strings.ToLower(c.ContextLink)

	var score float64
	if strings.Contains(title, strings.ToLower(destName)) {
		score += max * 0.5
	}
	if destCountry != "" && strings.Contains(combined, strings.ToLower(destCountry)) {
		score += max * 0.3
	}
	if cfg.TravelKeywords.MatchString(combined) {
		score += max * 0.2
	}

	return int(math.Min(max, math.Round(score)))
}

// scoreVibe starts at 40% of the dimension, adds a bonus per positive
// signal match, subtracts a penalty per negative match, and grants small
// flat bonuses to curated photos and high-trust domains.
func (cfg Config) scoreVibe(c domain.ImageCandidate, maxPts int) int {
	max := float64(maxPts)
	score := max * 0.4
	combined := strings.ToLower(c.Title + " " + c.ContextLink)

	for _, pat := range cfg.PositiveSignals {
		if pat.MatchString(combined) {
			score += max * 0.1
		}
	}
	for _, pat := range cfg.NegativeSignals {
		if pat.MatchString(combined) {
			score -= max * 0.15
		}
	}

	if c.Source == domain.SourceCuratedPhoto {
		score += max * 0.15
	}
	if c.DomainTrust >= 0.7 {
		score += max * 0.1
	}

	return int(math.Min(max, math.Max(0, math.Round(score))))
}
