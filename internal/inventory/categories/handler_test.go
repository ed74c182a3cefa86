package categories

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, map[string]string{
		"code":    code,
		"message": message,
	})
}

func decodeErrorEnvelope(t *testing.T, res *http.Response) map[string]string {
	t.Helper()
	var envelope map[string]string
	require.NoError(t, json.NewDecoder(res.Body).Decode(&envelope))
	return envelope
}

func TestHandleCreate_Created(t *testing.T) {
	mockService := &MockCategoryService{
		CreateFn: func(ctx context.Context, name, userID string) (*Category, error) {
			return &Category{ID: 11, UserID: userID, Name: name}, nil
		},
	}
	handler := NewCategoryHandler(mockService, respondJSON, respondError)

	req := httptest.NewRequest(http.MethodPost, "/categories", strings.NewReader(`{"name":"ガレージ"}`))
	w := httptest.NewRecorder()
	handler.HandleCreate(w, req)

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusCreated, res.StatusCode)

	var body categoryResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.Equal(t, 11, body.ID)
	assert.Equal(t, "ガレージ", body.Name)
}

func TestHandleCreate_InvalidJSON(t *testing.T) {
	handler := NewCategoryHandler(&MockCategoryService{}, respondJSON, respondError)

	req := httptest.NewRequest(http.MethodPost, "/categories", strings.NewReader(`{"name":`))
	w := httptest.NewRecorder()
	handler.HandleCreate(w, req)

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, "BAD_REQUEST", decodeErrorEnvelope(t, res)["code"])
}

func TestHandleCreate_BlankName(t *testing.T) {
	handler := NewCategoryHandler(&MockCategoryService{}, respondJSON, respondError)

	// full-width spaces only: passes required, caught by notblank
	req := httptest.NewRequest(http.MethodPost, "/categories", strings.NewReader(`{"name":"　　"}`))
	w := httptest.NewRecorder()
	handler.HandleCreate(w, req)

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, "CATEGORY_NAME_REQUIRED", decodeErrorEnvelope(t, res)["code"])
}

func TestHandleCreate_NameTooLong(t *testing.T) {
	handler := NewCategoryHandler(&MockCategoryService{}, respondJSON, respondError)

	name := strings.Repeat("あ", 51)
	req := httptest.NewRequest(http.MethodPost, "/categories", strings.NewReader(`{"name":"`+name+`"}`))
	w := httptest.NewRecorder()
	handler.HandleCreate(w, req)

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, "CATEGORY_NAME_TOO_LONG", decodeErrorEnvelope(t, res)["code"])
}

func TestHandleCreate_DuplicateName(t *testing.T) {
	mockService := &MockCategoryService{
		CreateFn: func(ctx context.Context, name, userID string) (*Category, error) {
			return nil, ErrNameDuplicate
		},
	}
	handler := NewCategoryHandler(mockService, respondJSON, respondError)

	req := httptest.NewRequest(http.MethodPost, "/categories", strings.NewReader(`{"name":"キッチン"}`))
	w := httptest.NewRecorder()
	handler.HandleCreate(w, req)

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusConflict, res.StatusCode)
	assert.Equal(t, "CATEGORY_NAME_DUPLICATE", decodeErrorEnvelope(t, res)["code"])
}

func TestHandleCreate_LimitExceeded(t *testing.T) {
	mockService := &MockCategoryService{
		CreateFn: func(ctx context.Context, name, userID string) (*Category, error) {
			return nil, ErrLimitExceeded
		},
	}
	handler := NewCategoryHandler(mockService, respondJSON, respondError)

	req := httptest.NewRequest(http.MethodPost, "/categories", strings.NewReader(`{"name":"51個目"}`))
	w := httptest.NewRecorder()
	handler.HandleCreate(w, req)

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, "CATEGORY_LIMIT_EXCEEDED", decodeErrorEnvelope(t, res)["code"])
}

func TestHandleList_ReturnsCategories(t *testing.T) {
	mockService := &MockCategoryService{
		ListFn: func(ctx context.Context, userID string) ([]Category, error) {
			return []Category{
				{ID: 1, Name: "BathRoom"},
				{ID: 2, Name: "キッチン"},
			}, nil
		},
	}
	handler := NewCategoryHandler(mockService, respondJSON, respondError)

	req := httptest.NewRequest(http.MethodGet, "/categories", nil)
	w := httptest.NewRecorder()
	handler.HandleList(w, req)

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	var body []categoryResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	require.Len(t, body, 2)
	assert.Equal(t, "BathRoom", body[0].Name)
}

func TestHandleList_RepositoryFailure(t *testing.T) {
	mockService := &MockCategoryService{
		ListFn: func(ctx context.Context, userID string) ([]Category, error) {
			return nil, errors.New("category data access failed: connection reset")
		},
	}
	handler := NewCategoryHandler(mockService, respondJSON, respondError)

	req := httptest.NewRequest(http.MethodGet, "/categories", nil)
	w := httptest.NewRecorder()
	handler.HandleList(w, req)

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)

	envelope := decodeErrorEnvelope(t, res)
	assert.Equal(t, "INTERNAL_SERVER_ERROR", envelope["code"])
	// internal cause detail must not leak into the response
	assert.NotContains(t, envelope["message"], "connection reset")
}

func TestHandleUpdate_Succeeds(t *testing.T) {
	mockService := &MockCategoryService{
		UpdateFn: func(ctx context.Context, categoryID int, name, userID string) (*Category, error) {
			return &Category{ID: categoryID, UserID: userID, Name: name}, nil
		},
	}
	handler := NewCategoryHandler(mockService, respondJSON, respondError)

	req := httptest.NewRequest(http.MethodPatch, "/categories/7", strings.NewReader(`{"name":"新名"}`))
	req.SetPathValue("categoryID", "7")
	w := httptest.NewRecorder()
	handler.HandleUpdate(w, req)

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	var body categoryResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.Equal(t, 7, body.ID)
	assert.Equal(t, "新名", body.Name)
}

func TestHandleUpdate_InvalidID(t *testing.T) {
	handler := NewCategoryHandler(&MockCategoryService{}, respondJSON, respondError)

	req := httptest.NewRequest(http.MethodPatch, "/categories/abc", strings.NewReader(`{"name":"新名"}`))
	req.SetPathValue("categoryID", "abc")
	w := httptest.NewRecorder()
	handler.HandleUpdate(w, req)

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, "BAD_REQUEST", decodeErrorEnvelope(t, res)["code"])
}

func TestHandleUpdate_DefaultCategory(t *testing.T) {
	mockService := &MockCategoryService{
		UpdateFn: func(ctx context.Context, categoryID int, name, userID string) (*Category, error) {
			return nil, ErrDefaultCategory
		},
	}
	handler := NewCategoryHandler(mockService, respondJSON, respondError)

	req := httptest.NewRequest(http.MethodPatch, "/categories/1", strings.NewReader(`{"name":"新名"}`))
	req.SetPathValue("categoryID", "1")
	w := httptest.NewRecorder()
	handler.HandleUpdate(w, req)

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
	assert.Equal(t, "DEFAULT_CATEGORY_IMMUTABLE", decodeErrorEnvelope(t, res)["code"])
}

func TestHandleDelete_NoContent(t *testing.T) {
	mockService := &MockCategoryService{
		DeleteFn: func(ctx context.Context, categoryID int, userID string) error {
			return nil
		},
	}
	handler := NewCategoryHandler(mockService, respondJSON, respondError)

	req := httptest.NewRequest(http.MethodDelete, "/categories/3", nil)
	req.SetPathValue("categoryID", "3")
	w := httptest.NewRecorder()
	handler.HandleDelete(w, req)

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusNoContent, res.StatusCode)
}

func TestHandleDelete_NotFound(t *testing.T) {
	mockService := &MockCategoryService{
		DeleteFn: func(ctx context.Context, categoryID int, userID string) error {
			return ErrNotFound
		},
	}
	handler := NewCategoryHandler(mockService, respondJSON, respondError)

	req := httptest.NewRequest(http.MethodDelete, "/categories/99", nil)
	req.SetPathValue("categoryID", "99")
	w := httptest.NewRecorder()
	handler.HandleDelete(w, req)

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Equal(t, "CATEGORY_NOT_FOUND", decodeErrorEnvelope(t, res)["code"])
}

func TestHandleDelete_BlockedByItems(t *testing.T) {
	mockService := &MockCategoryService{
		DeleteFn: func(ctx context.Context, categoryID int, userID string) error {
			return &NotEmptyError{ItemNames: []string{"醤油", "味噌"}}
		},
	}
	handler := NewCategoryHandler(mockService, respondJSON, respondError)

	req := httptest.NewRequest(http.MethodDelete, "/categories/3", nil)
	req.SetPathValue("categoryID", "3")
	w := httptest.NewRecorder()
	handler.HandleDelete(w, req)

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusConflict, res.StatusCode)

	envelope := decodeErrorEnvelope(t, res)
	assert.Equal(t, "CATEGORY_NOT_EMPTY", envelope["code"])
	assert.Contains(t, envelope["message"], "醤油")
	assert.Contains(t, envelope["message"], "味噌")
}
