package store

import (
	"sync"
	"time"

	"github.com/decisio/retail-dss/internal/models"
)

// Session holds one caller's dataset snapshot and the most recent result
// of each analysis. Results are replaced wholesale on each run.
type Session struct {
	ID           string                     `json:"id"`
	Rows         int                        `json:"rows"`
	Segmentation *models.SegmentationResult `json:"segmentation,omitempty"`
	Optimization *models.OptimizationResult `json:"optimization,omitempty"`
	Forecast     *models.ForecastResult     `json:"forecast,omitempty"`
	UpdatedAt    time.Time                  `json:"updated_at"`

	dataset []models.Transaction
}

// SessionStore is the explicit result store keyed by session id. It is
// the only shared mutable state in the system; engines always receive
// copies of the dataset so no intermediate state leaks across sessions.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*Session)}
}

// PutDataset snapshots rows for a session, replacing any previous
// dataset and clearing stale results.
func (s *SessionStore) PutDataset(id string, rows []models.Transaction) {
	snapshot := make([]models.Transaction, len(rows))
	copy(snapshot, rows)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = &Session{
		ID:        id,
		Rows:      len(snapshot),
		UpdatedAt: time.Now().UTC(),
		dataset:   snapshot,
	}
}

// Dataset returns a copy of the session's snapshot. Engines may reorder
// or annotate the copy freely.
func (s *SessionStore) Dataset(id string) ([]models.Transaction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	out := make([]models.Transaction, len(sess.dataset))
	copy(out, sess.dataset)
	return out, true
}

func (s *SessionStore) SetSegmentation(id string, res *models.SegmentationResult) bool {
	return s.update(id, func(sess *Session) { sess.Segmentation = res })
}

func (s *SessionStore) SetOptimization(id string, res *models.OptimizationResult) bool {
	return s.update(id, func(sess *Session) { sess.Optimization = res })
}

func (s *SessionStore) SetForecast(id string, res *models.ForecastResult) bool {
	return s.update(id, func(sess *Session) { sess.Forecast = res })
}

func (s *SessionStore) update(id string, fn func(*Session)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return false
	}
	fn(sess)
	sess.UpdatedAt = time.Now().UTC()
	return true
}

// Results returns a shallow copy of the session without its dataset.
func (s *SessionStore) Results(id string) (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, false
	}
	out := *sess
	out.dataset = nil
	return out, true
}

// Len reports the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
