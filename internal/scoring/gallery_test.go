package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bokangsibolla/sola-images/internal/domain"
)

func TestCategorize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		title string
		want  domain.VisualCategory
	}{
		{"Aerial drone shot of Cape Town", domain.CategoryAerial},
		{"Bangkok skyline panorama", domain.CategoryLandscape},
		{"Chatuchak weekend market", domain.CategoryStreet},
		{"Wat Arun temple at dusk", domain.CategoryIconic},
		{"Boulders Beach penguins", domain.CategoryCoastal},
		{"Table Mountain hike", domain.CategoryNature},
		{"Rooftop bar nightlife", domain.CategoryVibe},
		{"A picture", domain.CategoryGeneral},
	}

	for _, tc := range tests {
		t.Run(tc.title, func(t *testing.T) {
			t.Parallel()
			got := Categorize(domain.ImageCandidate{Title: tc.title})
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSelectDiverseReturnsAllWhenUnderCount(t *testing.T) {
	t.Parallel()

	ranked := []domain.ImageCandidate{
		{URL: "a", Title: "beach"},
		{URL: "b", Title: "beach"},
	}
	got := SelectDiverse(ranked, 4)
	assert.Equal(t, ranked, got)
}

func TestSelectDiversePrefersCategoryCoverage(t *testing.T) {
	t.Parallel()

	ranked := []domain.ImageCandidate{
		{URL: "a", Title: "aerial drone view", QualityScore: 90},
		{URL: "b", Title: "city skyline", QualityScore: 85},
		{URL: "c", Title: "skyline panorama", QualityScore: 80},
		{URL: "d", Title: "street market", QualityScore: 70},
		{URL: "e", Title: "temple landmark", QualityScore: 65},
		{URL: "f", Title: "beach cliffs", QualityScore: 60},
	}

	got := SelectDiverse(ranked, 4)

	urls := make([]string, len(got))
	for i, c := range got {
		urls[i] = c.URL
	}
	// The duplicate-category skyline (c) loses its slot to lower-scored
	// candidates from unseen categories.
	assert.Equal(t, []string{"a", "b", "d", "e"}, urls)
}

func TestSelectDiverseBackfillsByScore(t *testing.T) {
	t.Parallel()

	ranked := []domain.ImageCandidate{
		{URL: "a", Title: "beach one", QualityScore: 90},
		{URL: "b", Title: "beach two", QualityScore: 85},
		{URL: "c", Title: "beach three", QualityScore: 80},
		{URL: "d", Title: "beach four", QualityScore: 75},
	}

	got := SelectDiverse(ranked, 3)

	urls := make([]string, len(got))
	for i, c := range got {
		urls[i] = c.URL
	}
	assert.Equal(t, []string{"a", "b", "c"}, urls)
}
