package catalog

import "context"

// ItemRef points at one catalog item in the external numbering space.
type ItemRef struct {
	ID   int64
	Kind string // models.KindMovie or models.KindSeries
}

// Metadata is the external catalog record for a movie or series. Movies use
// Title/ReleaseDate; series come back with name/first_air_date and are
// normalized into the same fields by the client.
type Metadata struct {
	ID              int64   `json:"id"`
	Kind            string  `json:"kind"`
	Title           string  `json:"title"`
	PosterPath      string  `json:"poster_path"`
	ReleaseDate     string  `json:"release_date"`
	Overview        string  `json:"overview"`
	VoteAverage     float64 `json:"vote_average"`
	NumberOfSeasons int     `json:"number_of_seasons,omitempty"`
}

// Client fetches catalog metadata. Details returns (nil, nil) when the
// catalog has no record for the id; that is missing data, not an error.
type Client interface {
	Details(ctx context.Context, kind string, id int64) (*Metadata, error)
}
