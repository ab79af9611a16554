package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/huger6/filseries/internal/microservices/http-api/models"
)

const defaultTMDBBaseURL = "https://api.themoviedb.org/3"

// TMDBClient talks to the TMDB v3 API.
type TMDBClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewTMDBClient(apiKey string) *TMDBClient {
	return &TMDBClient{
		baseURL: defaultTMDBBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// tmdbDetails covers both movie and tv payloads; TMDB uses title/release_date
// for movies and name/first_air_date for series.
type tmdbDetails struct {
	ID              int64   `json:"id"`
	Title           string  `json:"title"`
	Name            string  `json:"name"`
	PosterPath      string  `json:"poster_path"`
	ReleaseDate     string  `json:"release_date"`
	FirstAirDate    string  `json:"first_air_date"`
	Overview        string  `json:"overview"`
	VoteAverage     float64 `json:"vote_average"`
	NumberOfSeasons int     `json:"number_of_seasons"`
}

func (c *TMDBClient) Details(ctx context.Context, kind string, id int64) (*Metadata, error) {
	if !models.ValidKind(kind) {
		return nil, fmt.Errorf("unsupported item kind %q", kind)
	}

	url := fmt.Sprintf("%s/%s/%d?api_key=%s", c.baseURL, kind, id, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build details request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch details for %s/%d: %w", kind, id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("details for %s/%d: unexpected status %d", kind, id, resp.StatusCode)
	}

	var d tmdbDetails
	if err := json.NewDecoder(resp.Body).Decode(&d); err != nil {
		return nil, fmt.Errorf("decode details for %s/%d: %w", kind, id, err)
	}

	meta := &Metadata{
		ID:          d.ID,
		Kind:        kind,
		Title:       d.Title,
		PosterPath:  d.PosterPath,
		ReleaseDate: d.ReleaseDate,
		Overview:    d.Overview,
		VoteAverage: d.VoteAverage,
	}
	if kind == models.KindSeries {
		meta.Title = d.Name
		meta.ReleaseDate = d.FirstAirDate
		meta.NumberOfSeasons = d.NumberOfSeasons
	}
	return meta, nil
}
