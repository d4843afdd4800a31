package domain

import "time"

// DestinationType selects the search strategy for a destination.
type DestinationType string

const (
	TypeCountry      DestinationType = "country"
	TypeCity         DestinationType = "city"
	TypeNeighborhood DestinationType = "neighborhood"
)

// Destination is the subject being illustrated, read from the datastore at
// the start of a run. The pipeline never mutates it in memory beyond
// producing an image update that is written back by the repository.
type Destination struct {
	ID   string
	Type DestinationType
	Name string
	Slug string

	// Parent context, present depending on type.
	CountryName string
	CityName    string
	CitySlug    string

	// Prior enrichment state.
	PlaceID       string
	HeroImageURL  string
	ImageCachedAt *time.Time
}
