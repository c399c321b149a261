package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/worksheetlab/worksheet-service/internal/models"
)

type memorySession struct {
	worksheet []byte
	index     int
	student   []byte
	completed bool
	expiresAt time.Time
}

// MemorySessionStore is the in-process backend, used for development and
// tests. Values are stored marshaled so callers can never alias state
// held by the store, matching the Redis backend's behavior. Expired
// sessions are dropped lazily on access.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*memorySession
	ttl      time.Duration
	now      func() time.Time
}

// NewMemorySessionStore creates an in-memory store. A nonpositive ttl
// disables expiry.
func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]*memorySession),
		ttl:      ttl,
		now:      time.Now,
	}
}

// session returns the live record for the id, creating it for writes.
// Callers must hold the write lock.
func (s *MemorySessionStore) session(sessionID string) *memorySession {
	if record, ok := s.live(sessionID); ok {
		record.expiresAt = s.deadline()
		return record
	}
	record := &memorySession{expiresAt: s.deadline()}
	s.sessions[sessionID] = record
	return record
}

// live looks up a record, discarding it when expired. Callers must hold
// at least the read lock; expired records are deleted by writers only.
func (s *MemorySessionStore) live(sessionID string) (*memorySession, bool) {
	record, ok := s.sessions[sessionID]
	if !ok {
		return nil, false
	}
	if s.ttl > 0 && s.now().After(record.expiresAt) {
		return nil, false
	}
	return record, true
}

func (s *MemorySessionStore) deadline() time.Time {
	if s.ttl <= 0 {
		return time.Time{}
	}
	return s.now().Add(s.ttl)
}

func (s *MemorySessionStore) SaveWorksheet(ctx context.Context, sessionID string, worksheet *models.Worksheet) error {
	data, err := json.Marshal(worksheet)
	if err != nil {
		return fmt.Errorf("failed to marshal worksheet: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.session(sessionID).worksheet = data
	return nil
}

func (s *MemorySessionStore) GetWorksheet(ctx context.Context, sessionID string) (*models.Worksheet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.live(sessionID)
	if !ok || record.worksheet == nil {
		return nil, ErrNotFound
	}

	var worksheet models.Worksheet
	if err := json.Unmarshal(record.worksheet, &worksheet); err != nil {
		return nil, fmt.Errorf("failed to unmarshal worksheet: %w", err)
	}
	return &worksheet, nil
}

func (s *MemorySessionStore) SaveCurrentIndex(ctx context.Context, sessionID string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session(sessionID).index = index
	return nil
}

func (s *MemorySessionStore) GetCurrentIndex(ctx context.Context, sessionID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.live(sessionID)
	if !ok {
		return 0, nil
	}
	return record.index, nil
}

func (s *MemorySessionStore) SaveStudentInfo(ctx context.Context, sessionID string, info *models.StudentInfo) error {
	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal student info: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.session(sessionID).student = data
	return nil
}

func (s *MemorySessionStore) GetStudentInfo(ctx context.Context, sessionID string) (*models.StudentInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.live(sessionID)
	if !ok || record.student == nil {
		return nil, ErrNotFound
	}

	var info models.StudentInfo
	if err := json.Unmarshal(record.student, &info); err != nil {
		return nil, fmt.Errorf("failed to unmarshal student info: %w", err)
	}
	return &info, nil
}

func (s *MemorySessionStore) MarkCompleted(ctx context.Context, sessionID string, completed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session(sessionID).completed = completed
	return nil
}

func (s *MemorySessionStore) IsCompleted(ctx context.Context, sessionID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.live(sessionID)
	if !ok {
		return false, nil
	}
	return record.completed, nil
}

func (s *MemorySessionStore) UpdateQuestionAnswer(ctx context.Context, sessionID, questionID, answer string, isCorrect bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.live(sessionID)
	if !ok || record.worksheet == nil {
		return nil
	}

	var worksheet models.Worksheet
	if err := json.Unmarshal(record.worksheet, &worksheet); err != nil {
		return fmt.Errorf("failed to unmarshal worksheet: %w", err)
	}

	updated, changed := worksheet.WithAnswer(questionID, answer, isCorrect)
	if !changed {
		return nil
	}

	data, err := json.Marshal(updated)
	if err != nil {
		return fmt.Errorf("failed to marshal worksheet: %w", err)
	}
	record.worksheet = data
	record.expiresAt = s.deadline()
	return nil
}

func (s *MemorySessionStore) Clear(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

func (s *MemorySessionStore) Ping(ctx context.Context) error {
	return nil
}

func (s *MemorySessionStore) Close() error {
	return nil
}
