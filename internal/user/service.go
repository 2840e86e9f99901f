package user

import (
	"context"
	"fmt"
	"sync"
	"time"

	"sunrisestay/internal/logger"
)

type Service interface {
	Sync(ctx context.Context) (*Profile, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// Sync makes sure the backend has a profile for the caller and returns it.
func (s *service) Sync(ctx context.Context) (*Profile, error) {
	if err := s.repo.CreateProfile(ctx); err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}
	profile, err := s.repo.GetProfile(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}
	return profile, nil
}

// SyncState is one visitor's profile, synced at most once per signed-in subject.
type SyncState struct {
	mu      sync.Mutex
	subject string
	profile *Profile
	running bool
	wg      sync.WaitGroup
}

func (s *SyncState) Profile() *Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return nil
	}
	p := *s.profile
	return &p
}

// Clear forgets the profile, as on sign-out.
func (s *SyncState) Clear() {
	s.mu.Lock()
	s.subject = ""
	s.profile = nil
	s.mu.Unlock()
}

// Start runs svc.Sync in the background unless subject is already synced or
// a sync is in flight. It reports whether a sync was started.
func (s *SyncState) Start(ctx context.Context, svc Service, subject string, timeout time.Duration) bool {
	s.mu.Lock()
	if s.running || s.subject == subject {
		s.mu.Unlock()
		return false
	}
	s.running = true
	s.subject = subject
	s.profile = nil
	s.mu.Unlock()

	ctx = context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		profile, err := svc.Sync(ctx)

		s.mu.Lock()
		defer s.mu.Unlock()
		s.running = false
		if err != nil {
			logger.Warn("profile sync failed", "subject", subject, "error", err)
			s.subject = ""
			return
		}
		if s.subject == subject {
			s.profile = profile
		}
	}()
	return true
}

// Busy reports whether a sync is in flight.
func (s *SyncState) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Wait blocks until a running sync has finished.
func (s *SyncState) Wait() {
	s.wg.Wait()
}
