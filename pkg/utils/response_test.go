package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"binsmart-backend/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondAppError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"not found", apperr.NotFound("user %s not found", "u1"), http.StatusNotFound, "user u1 not found"},
		{"invalid", apperr.Invalid("quantity must be positive"), http.StatusBadRequest, "quantity must be positive"},
		{"storage", apperr.Storage("get user", errors.New("dial tcp")), http.StatusServiceUnavailable, "Storage unavailable"},
		{"unclassified", errors.New("boom"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			RespondAppError(w, tt.err)
			assert.Equal(t, tt.status, w.Code)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.message, body["error"])
			assert.Equal(t, false, body["success"])
		})
	}
}

func TestRespondAppErrorInsufficientBalance(t *testing.T) {
	w := httptest.NewRecorder()
	RespondAppError(w, apperr.InsufficientBalance(40, 50))
	assert.Equal(t, http.StatusConflict, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Insufficient points", body["error"])
	assert.EqualValues(t, 40, body["balance"])
	assert.EqualValues(t, 50, body["required"])
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"bin"}`))
	require.NoError(t, DecodeJSON(req, &dst))
	assert.Equal(t, "bin", dst.Name)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
	err := DecodeJSON(req, &dst)
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))
}
