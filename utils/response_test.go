package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func respond(err error) (*httptest.ResponseRecorder, Envelope) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	RespondError(c, zap.NewNop(), err)

	var env Envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"validation", ValidationError("Validation error", "title is required"), http.StatusBadRequest, "Validation error"},
		{"unauthenticated", Unauthenticated("Invalid token"), http.StatusUnauthorized, "Invalid token"},
		{"forbidden", Forbidden("Admin access required"), http.StatusForbidden, "Admin access required"},
		{"not found", NotFound("Course not found"), http.StatusNotFound, "Course not found"},
		{"conflict", Conflict("You have already purchased this course"), http.StatusBadRequest, "You have already purchased this course"},
		{"wrapped app error", fmt.Errorf("ctx: %w", NotFound("Purchase not found")), http.StatusNotFound, "Purchase not found"},
		{"internal", Internal("db exploded", errors.New("socket closed")), http.StatusInternalServerError, "Internal server error"},
		{"plain error", errors.New("mongo: connection reset"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := respond(tt.err)
			assert.Equal(t, tt.status, w.Code)
			assert.False(t, env.Success)
			assert.Equal(t, tt.message, env.Message)
			assert.NotContains(t, w.Body.String(), "socket")
			assert.NotContains(t, w.Body.String(), "mongo")
		})
	}
}

func TestRespondError_Details(t *testing.T) {
	_, env := respond(ValidationError("Validation error", "price must be at least 0"))
	assert.Equal(t, "price must be at least 0", env.Details)
}

func TestSuccessEnvelope(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Created(c, "Course created successfully", gin.H{"id": "1"})

	require.Equal(t, http.StatusCreated, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Course created successfully", body["message"])
	assert.Contains(t, body, "data")
	assert.NotContains(t, body, "details")
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := errors.New("cause")
	err := Internal("failed", cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, KindInternal, KindOf(err))
	assert.Equal(t, KindInternal, KindOf(cause))
	assert.Equal(t, "failed: cause", err.Error())
}
