package scoring

import (
	"regexp"
	"strings"

	"github.com/bokangsibolla/sola-images/internal/domain"
)

// categoryPatterns classify a candidate by its title and context text.
// Order matters: the first match wins.
var categoryPatterns = []struct {
	category domain.VisualCategory
	pattern  *regexp.Regexp
}{
	{domain.CategoryAerial, regexp.MustCompile(`aerial|drone|bird.s?.eye`)},
	{domain.CategoryLandscape, regexp.MustCompile(`skyline|panoram|cityscape|viewpoint`)},
	{domain.CategoryStreet, regexp.MustCompile(`street|market|bazaar|alley|neighborhood`)},
	{domain.CategoryIconic, regexp.MustCompile(`temple|mosque|church|castle|monument|landmark|palace`)},
	{domain.CategoryCoastal, regexp.MustCompile(`beach|coast|ocean|sea|cliff`)},
	{domain.CategoryNature, regexp.MustCompile(`mountain|valley|forest|nature|park`)},
	{domain.CategoryVibe, regexp.MustCompile(`cafe|restaurant|food|bar|nightlife`)},
}

// Categorize assigns a visual category from the candidate's text metadata.
func Categorize(c domain.ImageCandidate) domain.VisualCategory {
	text := strings.ToLower(c.Title + " " + c.ContextLink)
	for _, cp := range categoryPatterns {
		if cp.pattern.MatchString(text) {
			return cp.category
		}
	}
	return domain.CategoryGeneral
}

// SelectDiverse picks up to count gallery images from a ranked list,
// covering distinct visual categories before backfilling by score. This
// keeps a gallery from degenerating into near-duplicate skyline shots
// purely because they scored highest.
func SelectDiverse(ranked []domain.ImageCandidate, count int) []domain.ImageCandidate {
	if len(ranked) <= count {
		return ranked
	}

	categorized := make([]domain.ImageCandidate, len(ranked))
	for i, c := range ranked {
		c.VisualCategory = Categorize(c)
		categorized[i] = c
	}

	selected := make([]domain.ImageCandidate, 0, count)
	usedCategories := make(map[domain.VisualCategory]struct{})
	selectedURLs := make(map[string]struct{})

	// Pass 1: the highest-scored candidate from each distinct category.
	for _, c := range categorized {
		if len(selected) >= count {
			break
		}
		if _, used := usedCategories[c.VisualCategory]; used {
			continue
		}
		usedCategories[c.VisualCategory] = struct{}{}
		selectedURLs[c.URL] = struct{}{}
		selected = append(selected, c)
	}

	// Pass 2: backfill by score regardless of category.
	for _, c := range categorized {
		if len(selected) >= count {
			break
		}
		if _, ok := selectedURLs[c.URL]; ok {
			continue
		}
		selectedURLs[c.URL] = struct{}{}
		selected = append(selected, c)
	}

	return selected
}
