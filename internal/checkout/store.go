package checkout

import (
	"sync"
	"time"

	"github.com/kurokira/storefront-backend/pkg/enums"
)

// SessionStore keeps checkout sessions in process memory with a TTL sweep.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	done     chan struct{}
	stopOnce sync.Once
}

// NewSessionStore builds the store and starts the expiry sweeper.
func NewSessionStore(ttl time.Duration, sweepEvery time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	if sweepEvery <= 0 {
		sweepEvery = time.Minute
	}
	s := &SessionStore{
		sessions: map[string]*Session{},
		ttl:      ttl,
		done:     make(chan struct{}),
	}
	go s.sweep(sweepEvery)
	return s
}

// Get returns a copy of the session, creating a fresh one on first touch.
func (s *SessionStore) Get(sessionID string) Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.sessions[sessionID]
	if sess == nil || time.Since(sess.UpdatedAt) > s.ttl {
		sess = &Session{SessionID: sessionID, Step: enums.CheckoutStepCart, UpdatedAt: time.Now()}
		s.sessions[sessionID] = sess
	}
	return *sess
}

// Put stores the session, refreshing its TTL.
func (s *SessionStore) Put(sess Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess.UpdatedAt = time.Now()
	s.sessions[sess.SessionID] = &sess
}

// Delete removes the session outright.
func (s *SessionStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

// TryBeginProcessing flips the processing flag if no dispatch is in flight.
// Returns false when a concurrent submit already holds it.
func (s *SessionStore) TryBeginProcessing(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.sessions[sessionID]
	if sess == nil {
		return false
	}
	if sess.Processing {
		return false
	}
	sess.Processing = true
	sess.UpdatedAt = time.Now()
	return true
}

// SetPaymentMethod records the method without touching the processing flag.
func (s *SessionStore) SetPaymentMethod(sessionID string, method enums.PaymentMethod) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess := s.sessions[sessionID]; sess != nil {
		sess.PaymentMethod = method
		sess.UpdatedAt = time.Now()
	}
}

// EndProcessing resets the processing flag. Safe to call unconditionally.
func (s *SessionStore) EndProcessing(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess := s.sessions[sessionID]; sess != nil {
		sess.Processing = false
		sess.UpdatedAt = time.Now()
	}
}

// Stop halts the expiry sweeper.
func (s *SessionStore) Stop() {
	s.stopOnce.Do(func() { close(s.done) })
}

func (s *SessionStore) sweep(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.expire()
		}
	}
}

func (s *SessionStore) expire() {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-s.ttl)
	for id, sess := range s.sessions {
		if sess.UpdatedAt.Before(cutoff) {
			delete(s.sessions, id)
		}
	}
}
