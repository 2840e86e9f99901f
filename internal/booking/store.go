package booking

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"sunrisestay/internal/backend"
	"sunrisestay/internal/logger"
	"sunrisestay/internal/metrics"
)

const (
	msgCreateFailed  = "Booking failed. Please log in to continue."
	msgConfirmFailed = "Failed to confirm booking"
	msgListFailed    = "Failed to fetch bookings"
	msgFetchFailed   = "Failed to fetch booking"
	msgCancelFailed  = "Failed to cancel booking"
)

const defaultRefreshTimeout = 10 * time.Second

// Snapshot is a read-only copy of a Store's state.
type Snapshot struct {
	Current      *Booking
	ClientSecret string
	Bookings     []Booking
	Loading      bool
	Error        string
}

type Listener func(Snapshot)

// Store holds one visitor's booking session: the booking being created, paid
// for or displayed, its payment secret, and the visitor's booking list.
// State changes only through the methods below; listeners are notified after
// every change.
type Store struct {
	repo           Repository
	refreshTimeout time.Duration

	mu           sync.Mutex
	current      *Booking
	clientSecret string
	bookings     []Booking
	inflight     int
	errMsg       string
	listeners    map[int]Listener
	nextListener int

	background sync.WaitGroup
	pending    atomic.Int32
}

func NewStore(repo Repository, refreshTimeout time.Duration) *Store {
	if refreshTimeout <= 0 {
		refreshTimeout = defaultRefreshTimeout
	}
	return &Store{
		repo:           repo,
		refreshTimeout: refreshTimeout,
		bookings:       []Booking{},
		listeners:      make(map[int]Listener),
	}
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{
		ClientSecret: s.clientSecret,
		Bookings:     make([]Booking, len(s.bookings)),
		Loading:      s.inflight > 0,
		Error:        s.errMsg,
	}
	copy(snap.Bookings, s.bookings)
	if s.current != nil {
		cur := *s.current
		snap.Current = &cur
	}
	return snap
}

// Subscribe registers fn for change notifications and returns a func that removes it.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Store) update(fn func()) {
	s.mu.Lock()
	fn()
	snap := s.snapshotLocked()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(snap)
	}
}

func (s *Store) begin() {
	s.update(func() {
		s.inflight++
		s.errMsg = ""
	})
}

func (s *Store) CreateBooking(ctx context.Context, sel Selection) error {
	logger.Debug("createBooking: starting request", "room_type", sel.RoomTypeName)
	s.begin()

	b, secret, err := s.repo.Create(ctx, sel)
	metrics.RecordBookingTransition("create", err)
	if err != nil {
		logger.Error("createBooking failed", "room_type", sel.RoomTypeName, "error", err)
		s.update(func() {
			s.inflight--
			s.current = nil
			s.clientSecret = ""
			s.errMsg = backend.UserMessage(err, msgCreateFailed)
		})
		return err
	}

	s.update(func() {
		s.inflight--
		s.current = b
		s.clientSecret = secret
	})
	logger.Info("booking created", "booking_id", b.ID, "status", b.Status)
	return nil
}

func (s *Store) ConfirmBooking(ctx context.Context, paymentIntentID string) error {
	logger.Debug("confirmBooking: starting request")
	s.begin()

	b, err := s.repo.Confirm(ctx, paymentIntentID)
	metrics.RecordBookingTransition("confirm", err)
	if err != nil {
		logger.Error("confirmBooking failed", "error", err)
		s.update(func() {
			s.inflight--
			s.errMsg = backend.UserMessage(err, msgConfirmFailed)
		})
		return err
	}

	s.update(func() {
		s.inflight--
		if s.current != nil && b.ID == "" {
			b.ID = s.current.ID
		}
		s.current = b
	})
	logger.Info("booking confirmed", "booking_id", b.ID)

	s.refreshInBackground(ctx)
	return nil
}

// refreshInBackground reloads the booking list without blocking the caller.
// Its failures are only logged.
func (s *Store) refreshInBackground(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	s.background.Add(1)
	s.pending.Add(1)
	go func() {
		defer s.background.Done()
		defer s.pending.Add(-1)
		ctx, cancel := context.WithTimeout(ctx, s.refreshTimeout)
		defer cancel()

		list, err := s.repo.ListMine(ctx)
		if err != nil {
			logger.Warn("background booking refresh failed", "error", err)
			return
		}
		s.update(func() {
			s.bookings = list
		})
	}()
}

// Busy reports whether a background refresh is still running.
func (s *Store) Busy() bool {
	return s.pending.Load() > 0
}

// Wait blocks until background refreshes started by ConfirmBooking have finished.
func (s *Store) Wait() {
	s.background.Wait()
}

func (s *Store) FetchUserBookings(ctx context.Context) {
	s.begin()

	list, err := s.repo.ListMine(ctx)
	metrics.RecordBookingTransition("list", err)
	if err != nil {
		logger.Error("fetchUserBookings failed", "error", err)
		s.update(func() {
			s.inflight--
			s.errMsg = backend.UserMessage(err, msgListFailed)
		})
		return
	}

	s.update(func() {
		s.inflight--
		s.bookings = list
	})
}

func (s *Store) FetchBookingByID(ctx context.Context, id string) {
	s.begin()

	b, err := s.repo.GetByID(ctx, id)
	metrics.RecordBookingTransition("fetch", err)
	if err != nil {
		logger.Error("fetchBookingById failed", "booking_id", id, "error", err)
		s.update(func() {
			s.inflight--
			s.current = nil
			s.clientSecret = ""
			s.errMsg = backend.UserMessage(err, msgFetchFailed)
		})
		return
	}

	s.update(func() {
		s.inflight--
		s.current = b
		s.clientSecret = ""
	})
}

func (s *Store) CancelBooking(ctx context.Context, id string) error {
	s.begin()

	err := s.repo.Cancel(ctx, id)
	metrics.RecordBookingTransition("cancel", err)
	if err != nil {
		logger.Error("cancelBooking failed", "booking_id", id, "error", err)
		s.update(func() {
			s.inflight--
			s.errMsg = backend.UserMessage(err, msgCancelFailed)
		})
		return err
	}

	s.update(func() {
		s.inflight--
		for i := range s.bookings {
			if s.bookings[i].ID == id {
				s.bookings[i].Status = StatusCancelled
			}
		}
		if s.current != nil && s.current.ID == id {
			s.current.Status = StatusCancelled
		}
	})
	logger.Info("booking cancelled", "booking_id", id)
	return nil
}

func (s *Store) ResetBooking() {
	s.update(func() {
		s.current = nil
		s.clientSecret = ""
		s.errMsg = ""
	})
}

func (s *Store) ClearError() {
	s.update(func() {
		s.errMsg = ""
	})
}
