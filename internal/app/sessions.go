package app

import (
	"sync"

	"github.com/google/uuid"

	"github.com/randomtoy/faas-go/internal/domain"
)

// Sessions is the in-memory registry of live divination sessions. Sessions
// are logically independent and share no in-flight request state; switching
// modes creates a new session.
type Sessions struct {
	mu        sync.Mutex
	env       *Env
	tarot     map[string]*TarotSession
	astrology map[string]*AstrologySession
	dream     map[string]*DreamSession
	huangli   map[string]*HuangliSession
}

func NewSessions(env *Env) *Sessions {
	return &Sessions{
		env:       env,
		tarot:     make(map[string]*TarotSession),
		astrology: make(map[string]*AstrologySession),
		dream:     make(map[string]*DreamSession),
		huangli:   make(map[string]*HuangliSession),
	}
}

func (s *Sessions) CreateTarot() *TarotSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := newTarotSession(uuid.NewString(), s.env)
	s.tarot[sess.ID()] = sess
	return sess
}

func (s *Sessions) Tarot(id string) (*TarotSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.tarot[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return sess, nil
}

func (s *Sessions) CreateAstrology() *AstrologySession {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := newAstrologySession(uuid.NewString(), s.env)
	s.astrology[sess.ID()] = sess
	return sess
}

func (s *Sessions) Astrology(id string) (*AstrologySession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.astrology[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return sess, nil
}

func (s *Sessions) CreateDream() *DreamSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := newDreamSession(uuid.NewString(), s.env)
	s.dream[sess.ID()] = sess
	return sess
}

func (s *Sessions) Dream(id string) (*DreamSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.dream[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return sess, nil
}

func (s *Sessions) CreateHuangli() *HuangliSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := newHuangliSession(uuid.NewString(), s.env)
	s.huangli[sess.ID()] = sess
	return sess
}

func (s *Sessions) Huangli(id string) (*HuangliSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.huangli[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return sess, nil
}
