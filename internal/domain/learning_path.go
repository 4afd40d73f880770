package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ProgressComplete is the path progress at which a path leaves in-progress views.
const ProgressComplete = 100

// Module is one generator-produced unit of a learning path. Its shape is
// owned by the generator; only a valid JSON value is required here.
type Module json.RawMessage

// MarshalJSON returns m verbatim.
func (m Module) MarshalJSON() ([]byte, error) {
	if len(m) == 0 {
		return []byte("null"), nil
	}
	return m, nil
}

// UnmarshalJSON keeps a copy of data.
func (m *Module) UnmarshalJSON(data []byte) error {
	if m == nil {
		return errors.New("domain.Module: UnmarshalJSON on nil pointer")
	}
	*m = append((*m)[0:0], data...)
	return nil
}

// IsEmpty reports whether the module carries no content.
func (m Module) IsEmpty() bool {
	trimmed := bytes.TrimSpace(m)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// LearningPath is a generated multi-module curriculum owned by a user.
type LearningPath struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	TopicName string    `json:"topic_name"`
	Modules   []Module  `json:"modules"`
	Progress  int       `json:"progress"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewLearningPath creates a path with progress 0.
func NewLearningPath(userID uuid.UUID, topic string, modules []Module) (*LearningPath, error) {
	now := time.Now().UTC()
	path := &LearningPath{
		ID:        uuid.New(),
		UserID:    userID,
		TopicName: topic,
		Modules:   modules,
		Progress:  0,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := path.Validate(); err != nil {
		return nil, err
	}
	return path, nil
}

// Validate checks the path invariants.
func (p *LearningPath) Validate() error {
	if p.ID == uuid.Nil {
		return NewValidationError("id", "must not be empty")
	}
	if p.UserID == uuid.Nil {
		return NewValidationError("user_id", "must not be empty")
	}
	if _, err := NormalizeTopic(p.TopicName); err != nil {
		return err
	}
	if len(p.Modules) == 0 {
		return NewValidationError("modules", "must contain at least one module")
	}
	for _, m := range p.Modules {
		if m.IsEmpty() {
			return NewValidationError("modules", "must not contain empty modules")
		}
	}
	if p.Progress < 0 || p.Progress > ProgressComplete {
		return NewValidationError("progress", "must be between 0 and 100")
	}
	return nil
}

// InProgress reports whether the path is still being worked through.
func (p *LearningPath) InProgress() bool {
	return p.Progress < ProgressComplete
}

// FilterInProgress keeps the paths with progress below 100, preserving order.
func FilterInProgress(paths []*LearningPath) []*LearningPath {
	out := make([]*LearningPath, 0, len(paths))
	for _, p := range paths {
		if p != nil && p.InProgress() {
			out = append(out, p)
		}
	}
	return out
}
