package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sunrisestay/internal/backend"
	"sunrisestay/internal/booking"
)

func newTestRepository(t *testing.T, handler http.HandlerFunc) Repository {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewRepository(backend.NewClient(srv.URL, time.Second, nil))
}

func TestRepository_ListRoomTypes(t *testing.T) {
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/room-types", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"id":1,"name":"Ocean Suite","price_per_night":"100.00","max_adults":2,"features":["Sea view"]}]}`))
	})

	rooms, err := repo.ListRoomTypes(context.Background())

	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "Ocean Suite", rooms[0].Name)
	assert.Equal(t, booking.Amount(100), rooms[0].PricePerNight)
	assert.Equal(t, []string{"Sea view"}, rooms[0].Features)
}

func TestRepository_ListRoomTypesMissingData(t *testing.T) {
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	rooms, err := repo.ListRoomTypes(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, rooms)
	assert.Empty(t, rooms)
}

func TestRepository_ListHotelImages(t *testing.T) {
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/hotel-images", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":[{"id":"img-1","image_url":"https://cdn.example.com/pool.jpg"}]}`))
	})

	images, err := repo.ListHotelImages(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []HotelImage{{ID: "img-1", ImageURL: "https://cdn.example.com/pool.jpg"}}, images)
}

func TestRepository_ServerError(t *testing.T) {
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"database down"}`))
	})

	_, err := repo.ListRoomTypes(context.Background())

	require.Error(t, err)
	kind, ok := backend.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, backend.KindServer, kind)
}
