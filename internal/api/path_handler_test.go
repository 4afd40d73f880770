package api

import (
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/thinkforge-api/internal/api/shared"
	"github.com/phrazzld/thinkforge-api/internal/domain"
)

var errConnReset = errors.New("connection reset by peer")

func TestPathHandler_List(t *testing.T) {
	t.Parallel()

	a := newTestAPI(t)
	userID := uuid.New()
	first := a.paths.Seed(userID, "Go", 10)
	a.paths.Seed(userID, "Rust", 100)

	w := a.do(t, http.MethodGet, "/api/paths", userID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody[PathListResponse](t, w)
	require.Len(t, resp.Paths, 1)
	assert.Equal(t, first.ID, resp.Paths[0].ID)
	assert.False(t, resp.Stale)

	w = a.do(t, http.MethodGet, "/api/paths", uuid.New(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"paths":[]}`, w.Body.String())

	a.paths.ListErr = errConnReset
	w = a.do(t, http.MethodGet, "/api/paths", userID, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed to load learning paths", decodeBody[shared.ErrorResponse](t, w).Error)
}

func TestPathHandler_Create(t *testing.T) {
	t.Parallel()

	a := newTestAPI(t)
	userID := uuid.New()

	w := a.do(t, http.MethodPost, "/api/paths", userID, CreatePathRequest{Topic: "Compilers"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := decodeBody[CreatePathResponse](t, w)
	require.NotNil(t, resp.Path)
	assert.Equal(t, "Compilers", resp.Path.TopicName)
	assert.Equal(t, 0, resp.Path.Progress)
	assert.Len(t, resp.Path.Modules, 3)
	require.Len(t, resp.Paths, 1)
	assert.Equal(t, resp.Path.ID, resp.Paths[0].ID)

	w = a.do(t, http.MethodPost, "/api/paths", userID, CreatePathRequest{Topic: "Compilers"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Len(t, decodeBody[CreatePathResponse](t, w).Paths, 2, "creating the same topic twice stores two paths")
}

func TestPathHandler_CreateErrors(t *testing.T) {
	t.Parallel()

	a := newTestAPI(t)
	userID := uuid.New()

	w := a.do(t, http.MethodPost, "/api/paths", userID, CreatePathRequest{Topic: ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	a.generator.ModuleList = []domain.Module{}
	w = a.do(t, http.MethodPost, "/api/paths", userID, CreatePathRequest{Topic: "Go"})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Zero(t, a.paths.Count())
}

func TestPathHandler_CreateStaleListing(t *testing.T) {
	t.Parallel()

	a := newTestAPI(t)
	a.paths.ListErr = errConnReset

	w := a.do(t, http.MethodPost, "/api/paths", uuid.New(), CreatePathRequest{Topic: "Go"})
	require.Equal(t, http.StatusCreated, w.Code)
	resp := decodeBody[CreatePathResponse](t, w)
	assert.NotNil(t, resp.Path)
	assert.True(t, resp.Stale)
	assert.Empty(t, resp.Paths)
}

func TestPathHandler_Delete(t *testing.T) {
	t.Parallel()

	a := newTestAPI(t)
	owner := uuid.New()
	doomed := a.paths.Seed(owner, "Go", 10)
	kept := a.paths.Seed(owner, "Rust", 20)

	tests := []struct {
		name       string
		userID     uuid.UUID
		path       string
		wantStatus int
	}{
		{"malformed id", owner, "/api/paths/not-a-uuid", http.StatusBadRequest},
		{"other user's path", uuid.New(), "/api/paths/" + doomed.ID.String(), http.StatusNotFound},
		{"missing path", owner, "/api/paths/" + uuid.NewString(), http.StatusNotFound},
		{"unauthenticated", uuid.Nil, "/api/paths/" + doomed.ID.String(), http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := a.do(t, http.MethodDelete, tt.path, tt.userID, nil)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
	assert.Equal(t, 2, a.paths.Count())

	w := a.do(t, http.MethodDelete, "/api/paths/"+doomed.ID.String(), owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody[PathListResponse](t, w)
	require.Len(t, resp.Paths, 1)
	assert.Equal(t, kept.ID, resp.Paths[0].ID)
}
