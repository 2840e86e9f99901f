package session

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"sunrisestay/internal/booking"
	"sunrisestay/internal/logger"
	"sunrisestay/internal/metrics"
	"sunrisestay/internal/user"
)

// CookieName is the cookie holding the visitor id.
const CookieName = "sunrisestay_visitor"

const contextKey = "visitor_session"

// Session is the server-side state of one visitor.
type Session struct {
	ID       string
	Bookings *booking.Store
	Profile  *user.SyncState

	lastSeen time.Time
}

// Registry maps visitor ids to sessions and evicts sessions idle for longer than ttl.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	repo     booking.Repository
	timeout  time.Duration
	secure   bool
	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once
}

// NewRegistry creates a registry whose sessions talk to the backend through
// repo; timeout bounds background work started by a session.
func NewRegistry(repo booking.Repository, ttl, timeout time.Duration, secureCookie bool) *Registry {
	r := &Registry{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		repo:     repo,
		timeout:  timeout,
		secure:   secureCookie,
		now:      time.Now,
		stop:     make(chan struct{}),
	}

	go r.cleanup()

	return r
}

func (r *Registry) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// Sweep removes sessions idle for longer than the ttl. Sessions with
// background work still running are kept until a later sweep.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, s := range r.sessions {
		if r.now().Sub(s.lastSeen) > r.ttl && !s.Bookings.Busy() && !s.Profile.Busy() {
			delete(r.sessions, id)
			removed++
		}
	}
	metrics.ActiveSessions.Set(float64(len(r.sessions)))
	if removed > 0 {
		logger.Debug("evicted idle sessions", "count", removed)
	}
	return removed
}

// Get returns the session for id, creating it when id is unknown.
func (r *Registry) Get(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, exists := r.sessions[id]
	if !exists {
		s = &Session{
			ID:       id,
			Bookings: booking.NewStore(r.repo, r.timeout),
			Profile:  &user.SyncState{},
		}
		r.sessions[id] = s
		metrics.ActiveSessions.Set(float64(len(r.sessions)))
	}
	s.lastSeen = r.now()
	return s
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Close stops the sweeper and waits for background work of every session.
func (r *Registry) Close() {
	r.stopOnce.Do(func() { close(r.stop) })

	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.Unlock()

	for _, s := range sessions {
		s.Bookings.Wait()
		s.Profile.Wait()
	}
}

// Middleware attaches the visitor's session to the request, issuing a new
// visitor cookie when the request carries none.
func (r *Registry) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(CookieName)
		if err != nil || !isUUID(id) {
			id = uuid.NewString()
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(CookieName, id, int(r.ttl.Seconds()), "/", "", r.secure, true)

		c.Set(contextKey, r.Get(id))
		c.Next()
	}
}

// FromContext returns the session attached by Middleware.
func FromContext(c *gin.Context) *Session {
	v, ok := c.Get(contextKey)
	if !ok {
		return nil
	}
	s, _ := v.(*Session)
	return s
}

// BookingStore resolves the visitor's booking store.
func BookingStore(c *gin.Context) *booking.Store {
	if s := FromContext(c); s != nil {
		return s.Bookings
	}
	return nil
}

// ProfileState resolves the visitor's profile sync state.
func ProfileState(c *gin.Context) *user.SyncState {
	if s := FromContext(c); s != nil {
		return s.Profile
	}
	return nil
}

// VisitorID is the id the visitor is known by, or "".
func VisitorID(c *gin.Context) string {
	if s := FromContext(c); s != nil {
		return s.ID
	}
	return ""
}

func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
