package domain

// StrategyResult is the output of one strategy dispatch. Hero, when non-nil,
// is the highest-scoring candidate after final re-ranking; Gallery never
// contains the hero (by URL) and holds at most the configured gallery size.
type StrategyResult struct {
	Hero           *ImageCandidate  `json:"hero"`
	Gallery        []ImageCandidate `json:"gallery"`
	AllCandidates  []ImageCandidate `json:"allCandidates"`
	CanonicalQuery string           `json:"canonicalQuery,omitempty"`
	PlaceID        string           `json:"placeId,omitempty"`
}

// Status is the per-destination outcome of a pipeline run.
type Status string

const (
	StatusEnriched Status = "enriched"
	StatusSkipped  Status = "skipped"
	StatusFailed   Status = "failed"
)

// UsageRights tracks how far along manual license review an image is.
type UsageRights string

const (
	RightsUnknown         UsageRights = "unknown"
	RightsNeedsReview     UsageRights = "needs_review"
	RightsInternalTesting UsageRights = "ok_internal_testing"
)

// PipelineResult records what happened to one destination during a run.
type PipelineResult struct {
	DestinationID   string
	DestinationType DestinationType
	Name            string
	Hero            *ImageCandidate
	Gallery         []ImageCandidate
	GalleryURLs     []string
	CanonicalQuery  string
	Status          Status
	Reason          string
}
