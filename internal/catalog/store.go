package catalog

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"sunrisestay/internal/logger"
)

var ErrRoomNotFound = errors.New("room not found")

const (
	roomTypesKey   = "room-types"
	hotelImagesKey = "hotel-images"
)

// Store is the process-wide cache of room types and hotel images. Concurrent
// refreshes of the same list share one backend call.
type Store struct {
	repo    Repository
	ttl     time.Duration
	timeout time.Duration
	now     func() time.Time
	group   singleflight.Group

	mu          sync.RWMutex
	roomTypes   []RoomType
	roomsLoaded time.Time
	images      []HotelImage
}

// NewStore builds a cache refreshed from repo every ttl. timeout bounds each
// shared backend fetch.
func NewStore(repo Repository, ttl, timeout time.Duration) *Store {
	return &Store{
		repo:      repo,
		ttl:       ttl,
		timeout:   timeout,
		now:       time.Now,
		roomTypes: []RoomType{},
		images:    []HotelImage{},
	}
}

// detach gives a shared fetch its own deadline so that one caller going away
// does not fail it for every waiter.
func (s *Store) detach(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx = context.WithoutCancel(ctx)
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// FetchRoomTypes replaces the cached room types. Failures are logged and the
// previous list is kept.
func (s *Store) FetchRoomTypes(ctx context.Context) {
	logger.Debug("fetchRoomTypes: starting request")
	_, err, shared := s.group.Do(roomTypesKey, func() (interface{}, error) {
		ctx, cancel := s.detach(ctx)
		defer cancel()
		rooms, err := s.repo.ListRoomTypes(ctx)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.roomTypes = rooms
		s.roomsLoaded = s.now()
		s.mu.Unlock()
		return nil, nil
	})
	if err != nil {
		logger.Error("fetchRoomTypes failed", "error", err, "shared", shared)
	}
}

// EnsureRoomTypes fetches room types when nothing is cached or the cache is stale.
func (s *Store) EnsureRoomTypes(ctx context.Context) {
	s.mu.RLock()
	empty := len(s.roomTypes) == 0
	stale := s.ttl > 0 && s.now().Sub(s.roomsLoaded) > s.ttl
	s.mu.RUnlock()

	if empty || stale {
		s.FetchRoomTypes(ctx)
	}
}

func (s *Store) RoomTypes() []RoomType {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]RoomType, len(s.roomTypes))
	copy(out, s.roomTypes)
	return out
}

// FindRoom looks a room type up by its exact name.
func (s *Store) FindRoom(name string) (RoomType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.roomTypes {
		if r.Name == name {
			return r, nil
		}
	}
	return RoomType{}, ErrRoomNotFound
}

func (s *Store) FetchHotelImages(ctx context.Context) {
	logger.Debug("fetchHotelImages: starting request")
	_, err, _ := s.group.Do(hotelImagesKey, func() (interface{}, error) {
		ctx, cancel := s.detach(ctx)
		defer cancel()
		images, err := s.repo.ListHotelImages(ctx)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.images = images
		s.mu.Unlock()
		return nil, nil
	})
	if err != nil {
		logger.Error("fetchHotelImages failed", "error", err)
	}
}

func (s *Store) Images() []HotelImage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]HotelImage, len(s.images))
	copy(out, s.images)
	return out
}
