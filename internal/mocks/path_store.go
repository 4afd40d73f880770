package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/thinkforge-api/internal/domain"
	"github.com/phrazzld/thinkforge-api/internal/store"
)

// MockPathStore implements store.PathStore in memory, keeping insertion order.
type MockPathStore struct {
	ListErr   error
	CreateErr error
	DeleteErr error

	mu          sync.Mutex
	paths       []*domain.LearningPath
	CreateCalls int
	DeleteCalls int
}

var _ store.PathStore = (*MockPathStore)(nil)

// NewMockPathStore creates an empty MockPathStore.
func NewMockPathStore() *MockPathStore {
	return &MockPathStore{}
}

func (m *MockPathStore) ListPaths(_ context.Context, userID uuid.UUID) ([]*domain.LearningPath, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	out := []*domain.LearningPath{}
	for _, p := range m.paths {
		if p.UserID == userID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockPathStore) CreatePath(
	_ context.Context,
	userID uuid.UUID,
	topicName string,
	modules []domain.Module,
) (*domain.LearningPath, error) {
	m.mu.Lock()
	m.CreateCalls++
	m.mu.Unlock()

	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	path, err := domain.NewLearningPath(userID, topicName, modules)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *path
	m.paths = append(m.paths, &stored)
	return path, nil
}

func (m *MockPathStore) DeletePath(_ context.Context, userID, pathID uuid.UUID) error {
	m.mu.Lock()
	m.DeleteCalls++
	m.mu.Unlock()

	if m.DeleteErr != nil {
		return m.DeleteErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i, p := range m.paths {
		if p.ID == pathID && p.UserID == userID {
			m.paths = append(m.paths[:i], m.paths[i+1:]...)
			return nil
		}
	}
	return store.ErrPathNotFound
}

// Seed adds a path with the given progress directly, bypassing generation.
func (m *MockPathStore) Seed(userID uuid.UUID, topic string, progress int) *domain.LearningPath {
	now := time.Now().UTC()
	path := &domain.LearningPath{
		ID:        uuid.New(),
		UserID:    userID,
		TopicName: topic,
		Modules:   Modules(1),
		Progress:  progress,
		CreatedAt: now,
		UpdatedAt: now,
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.paths = append(m.paths, path)
	cp := *path
	return &cp
}

// Count returns the number of stored paths across all users.
func (m *MockPathStore) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.paths)
}
