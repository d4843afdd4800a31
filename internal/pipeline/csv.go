package pipeline

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/bokangsibolla/sola-images/internal/domain"
)

var reviewHeader = []string{
	"destination_id",
	"type",
	"name",
	"status",
	"hero_url",
	"hero_score",
	"hero_source",
	"license_hint",
	"attribution",
	"gallery_urls",
	"canonical_query",
	"reason",
}

// WriteReviewCSV exports one row per processed destination so that hero
// picks flagged needs_review can be audited by hand.
func WriteReviewCSV(path string, results []domain.PipelineResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create review csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(reviewHeader); err != nil {
		return fmt.Errorf("write review csv header: %w", err)
	}
	for _, r := range results {
		if err := w.Write(reviewRow(r)); err != nil {
			return fmt.Errorf("write review csv row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

func reviewRow(r domain.PipelineResult) []string {
	row := []string{
		r.DestinationID,
		string(r.DestinationType),
		r.Name,
		string(r.Status),
		"", "", "", "", "",
		strings.Join(r.GalleryURLs, "; "),
		r.CanonicalQuery,
		r.Reason,
	}
	if r.Hero != nil {
		row[4] = r.Hero.URL
		row[5] = strconv.Itoa(r.Hero.QualityScore)
		row[6] = string(r.Hero.Source)
		row[7] = string(r.Hero.LicenseHint)
		row[8] = r.Hero.Attribution
	}
	return row
}
