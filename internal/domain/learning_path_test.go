package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func modules(raw ...string) []Module {
	out := make([]Module, len(raw))
	for i, r := range raw {
		out[i] = Module(r)
	}
	return out
}

func TestNewLearningPath(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	path, err := NewLearningPath(userID, "Go", modules(`{"title":"Basics"}`))
	require.NoError(t, err)
	assert.Equal(t, 0, path.Progress)
	assert.Equal(t, userID, path.UserID)
	assert.True(t, path.InProgress())

	_, err = NewLearningPath(userID, "Go", nil)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = NewLearningPath(userID, "Go", modules("null"))
	assert.ErrorIs(t, err, ErrValidation)

	_, err = NewLearningPath(userID, "   ", modules(`{}`))
	assert.ErrorIs(t, err, ErrValidation)

	_, err = NewLearningPath(uuid.Nil, "Go", modules(`{}`))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestLearningPathValidateProgress(t *testing.T) {
	t.Parallel()

	path, err := NewLearningPath(uuid.New(), "Rust", modules(`{"title":"Ownership"}`))
	require.NoError(t, err)

	for _, p := range []int{-1, 101} {
		path.Progress = p
		var vErr *ValidationError
		require.ErrorAs(t, path.Validate(), &vErr)
		assert.Equal(t, "progress", vErr.Field)
	}

	path.Progress = 100
	assert.NoError(t, path.Validate())
	assert.False(t, path.InProgress())
}

func TestFilterInProgress(t *testing.T) {
	t.Parallel()

	a := &LearningPath{TopicName: "a", Progress: 0}
	b := &LearningPath{TopicName: "b", Progress: 100}
	c := &LearningPath{TopicName: "c", Progress: 40}
	d := &LearningPath{TopicName: "d", Progress: 99}

	got := FilterInProgress([]*LearningPath{a, b, nil, c, d})
	require.Len(t, got, 3)
	assert.Equal(t, []*LearningPath{a, c, d}, got)

	assert.Empty(t, FilterInProgress(nil))
}

func TestModuleJSONRoundTrip(t *testing.T) {
	t.Parallel()

	in := LearningPath{Modules: modules(`{"title":"Intro","topics":["a","b"]}`, `"plain"`)}
	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"modules":[{"title":"Intro","topics":["a","b"]},"plain"]`))

	var out LearningPath
	require.NoError(t, json.Unmarshal(data, &out))
	require.Len(t, out.Modules, 2)
	assert.JSONEq(t, `{"title":"Intro","topics":["a","b"]}`, string(out.Modules[0]))
}
