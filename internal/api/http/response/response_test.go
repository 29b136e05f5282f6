package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/primus-the-first/TutorMind-sub001/internal/apperrors"
	"github.com/primus-the-first/TutorMind-sub001/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   map[string]any
		wantRetry  string
	}{
		{
			name:       "validation",
			err:        apperrors.NewValidation("email is invalid"),
			wantStatus: http.StatusBadRequest,
			wantBody:   map[string]any{"success": false, "error": "email is invalid"},
		},
		{
			name:       "rate limited carries retry",
			err:        apperrors.NewRateLimited(42),
			wantStatus: http.StatusTooManyRequests,
			wantBody: map[string]any{
				"success":           false,
				"error":             "too many login attempts, try again later",
				"retryAfterSeconds": float64(42),
			},
			wantRetry: "42",
		},
		{
			name:       "unknown error is hidden",
			err:        errors.New("pq: relation users does not exist"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   map[string]any{"success": false, "error": "internal server error"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			c.Request = httptest.NewRequest(http.MethodPost, "/auth", nil)

			Error(c, testutil.MakeNoopLogger(), tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.True(t, c.IsAborted())
			assert.Equal(t, tt.wantRetry, rec.Header().Get("Retry-After"))

			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantBody, body)
		})
	}
}

func TestOK(t *testing.T) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	OK(c, http.StatusOK, "Login successful", gin.H{"csrf_token": "tok"})

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, map[string]any{"success": true, "message": "Login successful", "csrf_token": "tok"}, body)
}
