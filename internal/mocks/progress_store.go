package mocks

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/phrazzld/thinkforge-api/internal/domain"
	"github.com/phrazzld/thinkforge-api/internal/domain/analytics"
	"github.com/phrazzld/thinkforge-api/internal/store"
)

// MockProgressStore implements store.ProgressStore in memory with the same
// merge semantics as the database: absent fields are left alone and quiz
// attempts are appended.
type MockProgressStore struct {
	GetErr error
	PutErr error
	// AfterGet, when set, runs after GetProgress has looked up the record
	// and before it returns.
	AfterGet func(userID uuid.UUID)

	mu      sync.Mutex
	records map[uuid.UUID]*progressEntry
	Updates []domain.ProgressUpdate
}

type progressEntry struct {
	count    int
	topic    string
	attempts []domain.QuizAttempt
	raw      json.RawMessage
}

var _ store.ProgressStore = (*MockProgressStore)(nil)

// NewMockProgressStore creates an empty MockProgressStore.
func NewMockProgressStore() *MockProgressStore {
	return &MockProgressStore{records: make(map[uuid.UUID]*progressEntry)}
}

func (m *MockProgressStore) GetProgress(_ context.Context, userID uuid.UUID) (*domain.ProgressRecord, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}

	record, err := m.read(userID)
	if m.AfterGet != nil {
		m.AfterGet(userID)
	}
	return record, err
}

func (m *MockProgressStore) read(userID uuid.UUID) (*domain.ProgressRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.records[userID]
	if !ok {
		return nil, store.ErrProgressNotFound
	}

	scores := entry.raw
	if scores == nil {
		encoded, err := json.Marshal(entry.attempts)
		if err != nil {
			return nil, err
		}
		scores = encoded
	}
	return &domain.ProgressRecord{
		UserID:         userID,
		FlashcardCount: entry.count,
		TopicName:      entry.topic,
		QuizScores:     scores,
		UpdatedAt:      time.Now().UTC(),
	}, nil
}

func (m *MockProgressStore) PutProgress(_ context.Context, userID uuid.UUID, update domain.ProgressUpdate) error {
	if m.PutErr != nil {
		return m.PutErr
	}
	if err := update.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.Updates = append(m.Updates, update)
	entry, ok := m.records[userID]
	if !ok {
		entry = &progressEntry{attempts: []domain.QuizAttempt{}}
		m.records[userID] = entry
	}
	if update.FlashcardCount != nil {
		entry.count = *update.FlashcardCount
	}
	if update.TopicName != nil {
		entry.topic = *update.TopicName
	}
	if update.AppendQuizAttempt != nil {
		return entry.appendAttempt(*update.AppendQuizAttempt)
	}
	return nil
}

// appendAttempt extends raw history when it decodes as a sequence and
// replaces it otherwise, like the database store.
func (e *progressEntry) appendAttempt(attempt domain.QuizAttempt) error {
	if e.raw == nil {
		e.attempts = append(e.attempts, attempt)
		return nil
	}

	normalized, err := analytics.NormalizeQuizScores(e.raw)
	if err != nil {
		e.raw = nil
		e.attempts = []domain.QuizAttempt{attempt}
		return nil
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(normalized, &entries); err != nil {
		return err
	}
	encoded, err := json.Marshal(attempt)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(append(entries, encoded))
	if err != nil {
		return err
	}
	e.raw = raw
	return nil
}

// WithTx returns the mock itself.
func (m *MockProgressStore) WithTx(*sqlx.Tx) store.ProgressStore {
	return m
}

// SetRawScores stores quiz scores verbatim, for exercising decoding.
func (m *MockProgressStore) SetRawScores(userID uuid.UUID, raw json.RawMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.records[userID]
	if !ok {
		entry = &progressEntry{}
		m.records[userID] = entry
	}
	entry.raw = raw
	entry.attempts = nil
}

// FlashcardCount returns the stored count and whether a record exists.
func (m *MockProgressStore) FlashcardCount(userID uuid.UUID) (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.records[userID]
	if !ok {
		return 0, false
	}
	return entry.count, true
}

// UpdateCount returns how many successful PutProgress calls were made.
func (m *MockProgressStore) UpdateCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Updates)
}
