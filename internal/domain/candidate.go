package domain

// Source identifies which API produced an image candidate. Set once at
// ingestion and never changed afterwards.
type Source string

const (
	SourceCuratedPhoto Source = "curated_photo"
	SourceWebSearch    Source = "web_search"
)

// LicenseHint is a coarse classification of likely usage rights based on
// the hosting domain (and, after download, embedded rights metadata).
type LicenseHint string

const (
	LicenseUnknown          LicenseHint = "unknown"
	LicenseLikelyRestricted LicenseHint = "likely_restricted"
	LicenseGovTourism       LicenseHint = "gov_tourism"
	LicenseOpenLike         LicenseHint = "open_license_like"
)

// VisualCategory tags a candidate during gallery diversity selection.
type VisualCategory string

const (
	CategoryAerial    VisualCategory = "aerial"
	CategoryLandscape VisualCategory = "landscape"
	CategoryStreet    VisualCategory = "street"
	CategoryIconic    VisualCategory = "iconic"
	CategoryCoastal   VisualCategory = "coastal"
	CategoryNature    VisualCategory = "nature"
	CategoryVibe      VisualCategory = "vibe"
	CategoryGeneral   VisualCategory = "general"
)

// ImageCandidate is a single image offered by one source, normalized at
// ingestion so nothing downstream has to branch on source-specific shapes.
// URL is a direct external URL for web search results, or an opaque photo
// resource name for curated photos.
type ImageCandidate struct {
	URL            string         `json:"url"`
	Source         Source         `json:"source"`
	Width          int            `json:"width"`
	Height         int            `json:"height"`
	ThumbnailURL   string         `json:"thumbnailUrl,omitempty"`
	Title          string         `json:"title,omitempty"`
	ContextLink    string         `json:"contextLink,omitempty"`
	Attribution    string         `json:"attribution,omitempty"`
	FileSize       int64          `json:"fileSize,omitempty"`
	MIMEType       string         `json:"mimeType,omitempty"`
	QualityScore   int            `json:"qualityScore"`
	LicenseHint    LicenseHint    `json:"licenseHint"`
	DomainTrust    float64        `json:"domainTrust"`
	VisualCategory VisualCategory `json:"visualCategory,omitempty"`
}

// Usage accumulates metered API call counts for one pipeline run. It is
// owned by the run and passed into source clients, so two runs in the same
// process never cross-contaminate counts. The pipeline is single-worker,
// so plain increments are safe.
type Usage struct {
	EntityLookups int
	PlaceSearches int
	ImageSearches int
	Downloads     int
	Uploads       int
}
