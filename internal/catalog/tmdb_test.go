package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/huger6/filseries/internal/microservices/http-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTMDBClient(serverURL string) *TMDBClient {
	c := NewTMDBClient("test-key")
	c.baseURL = serverURL
	return c
}

func TestTMDBClient_MovieDetails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/movie/550", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":550,"title":"Fight Club","poster_path":"/fc.jpg","release_date":"1999-10-15","vote_average":8.4}`))
	}))
	defer server.Close()

	client := newTestTMDBClient(server.URL)
	meta, err := client.Details(context.Background(), models.KindMovie, 550)

	require.NoError(t, err)
	require.NotNil(t, meta)
	assert.Equal(t, "Fight Club", meta.Title)
	assert.Equal(t, "/fc.jpg", meta.PosterPath)
	assert.Equal(t, "1999-10-15", meta.ReleaseDate)
	assert.Equal(t, models.KindMovie, meta.Kind)
}

func TestTMDBClient_SeriesDetailsNormalized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tv/1399", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":1399,"name":"Game of Thrones","first_air_date":"2011-04-17","number_of_seasons":8}`))
	}))
	defer server.Close()

	client := newTestTMDBClient(server.URL)
	meta, err := client.Details(context.Background(), models.KindSeries, 1399)

	require.NoError(t, err)
	require.NotNil(t, meta)
	// Series payloads use name/first_air_date; the client normalizes them.
	assert.Equal(t, "Game of Thrones", meta.Title)
	assert.Equal(t, "2011-04-17", meta.ReleaseDate)
	assert.Equal(t, 8, meta.NumberOfSeasons)
}

func TestTMDBClient_NotFoundIsMissingData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestTMDBClient(server.URL)
	meta, err := client.Details(context.Background(), models.KindMovie, 999999)

	require.NoError(t, err)
	assert.Nil(t, meta)
}

func TestTMDBClient_ServerErrorPropagates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestTMDBClient(server.URL)
	_, err := client.Details(context.Background(), models.KindMovie, 550)

	assert.Error(t, err)
}

func TestTMDBClient_RejectsUnknownKind(t *testing.T) {
	client := NewTMDBClient("test-key")
	_, err := client.Details(context.Background(), "book", 1)
	assert.Error(t, err)
}
