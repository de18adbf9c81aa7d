package service

import (
	"time"

	"yanalysis/cache"
	"yanalysis/customerrors"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"
)

const SessionCookie = "yanalysis_session"

type SessionService interface {
	// Resolve returns the dashboard for id, creating a new session when id is
	// unknown or expired. The returned id is the one the caller must keep.
	Resolve(id string) (string, *Dashboard)
	Get(id string) (*Dashboard, error)
	Delete(id string)
	Count() int
}

type SessionServiceImpl struct {
	sessions *gocache.Cache
	ttl      time.Duration
	factory  func() *Dashboard
}

// NewSessionService keeps one Dashboard per browser session. Expired or
// deleted sessions are closed so their pollers stop.
func NewSessionService(ttl time.Duration, factory func() *Dashboard) *SessionServiceImpl {
	s := &SessionServiceImpl{ttl: ttl, factory: factory}
	s.sessions = cache.NewSessionCache(ttl, func(id string, v interface{}) {
		if d, ok := v.(*Dashboard); ok {
			d.Close()
		}
		log.Info().Str("session", id).Msg("dashboard session closed")
	})
	return s
}

func (s *SessionServiceImpl) Resolve(id string) (string, *Dashboard) {
	if id != "" {
		if d, err := s.Get(id); err == nil {
			return id, d
		}
	}

	id = uuid.NewString()
	d := s.factory()
	s.sessions.Set(id, d, s.ttl)
	log.Info().Str("session", id).Msg("dashboard session created")
	return id, d
}

// Get slides the session's expiry forward on every access.
func (s *SessionServiceImpl) Get(id string) (*Dashboard, error) {
	v, ok := s.sessions.Get(id)
	if !ok {
		return nil, customerrors.ErrSessionNotFound
	}
	d := v.(*Dashboard)
	s.sessions.Set(id, d, s.ttl)
	return d, nil
}

func (s *SessionServiceImpl) Delete(id string) {
	s.sessions.Delete(id)
}

func (s *SessionServiceImpl) Count() int {
	return s.sessions.ItemCount()
}

// Close ends every session.
func (s *SessionServiceImpl) Close() {
	for id := range s.sessions.Items() {
		s.sessions.Delete(id)
	}
}
