package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	httpcontext "github.com/primus-the-first/TutorMind-sub001/internal/api/http/context"
	"github.com/primus-the-first/TutorMind-sub001/internal/api/http/cookie"
	"github.com/primus-the-first/TutorMind-sub001/internal/api/http/mocks"
	"github.com/primus-the-first/TutorMind-sub001/internal/apperrors"
	"github.com/primus-the-first/TutorMind-sub001/internal/model"
	"github.com/primus-the-first/TutorMind-sub001/internal/service"
	"github.com/primus-the-first/TutorMind-sub001/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testCookies = cookie.Config{
	SessionName:  "tm_session",
	SessionTTL:   time.Hour,
	RememberName: "tm_remember",
}

func newTestEngine(gw Gateway, sess *model.Session) *gin.Engine {
	cm := httpcontext.NewManager()
	h := NewAuth(gw, cookie.NewJar(testCookies), cm, testutil.MakeNoopLogger())

	r := gin.New()
	r.POST("/auth", h.Handle)
	r.GET("/auth/csrf-token", h.CSRFToken)
	r.GET("/api/me", func(c *gin.Context) {
		if sess != nil {
			c.Request = c.Request.WithContext(cm.SetSessionToContext(c.Request.Context(), *sess))
		}
		c.Next()
	}, h.Me)
	return r
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestAuth_HandleLoginForm(t *testing.T) {
	t.Parallel()

	gw := mocks.NewGateway(t)
	gw.On("Dispatch",
		mock.Anything,
		mock.MatchedBy(func(rc model.RequestContext) bool {
			return rc.SessionID == "old-sid" && rc.CSRFToken == "form-token"
		}),
		service.LoginCommand{Email: "alice@example.com", Password: "correct-horse", Remember: true},
	).Return(service.Outcome{
		Message:  "Login successful",
		Session:  model.Session{ID: "new-sid", CSRFToken: "fresh-token"},
		Remember: service.IssuedToken{Value: "sel:val", ExpiresAt: time.Now().Add(24 * time.Hour)},
	}, nil)

	form := url.Values{
		"action":     {"login"},
		"email":      {"alice@example.com"},
		"password":   {"correct-horse"},
		"remember":   {"on"},
		"csrf_token": {"form-token"},
	}
	req := httptest.NewRequest(http.MethodPost, "/auth", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: "tm_session", Value: "old-sid"})
	rec := httptest.NewRecorder()

	newTestEngine(gw, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "fresh-token", rec.Header().Get(cookie.CSRFHeader))
	assert.Equal(t, map[string]any{
		"success":    true,
		"message":    "Login successful",
		"csrf_token": "fresh-token",
	}, decode(t, rec))

	sc := findCookie(rec, "tm_session")
	require.NotNil(t, sc)
	assert.Equal(t, "new-sid", sc.Value)
	assert.True(t, sc.HttpOnly)

	rm := findCookie(rec, "tm_remember")
	require.NotNil(t, rm)
	assert.Equal(t, "sel:val", rm.Value)
}

func TestAuth_HandleRegisterJSONWithQueryAction(t *testing.T) {
	t.Parallel()

	gw := mocks.NewGateway(t)
	gw.On("Dispatch", mock.Anything, mock.Anything,
		service.RegisterCommand{Username: "alice", Email: "alice@example.com", Password: "correct-horse"},
	).Return(service.Outcome{Message: "Registration successful"}, nil)

	body := `{"username":"alice","email":"alice@example.com","password":"correct-horse"}`
	req := httptest.NewRequest(http.MethodPost, "/auth?action=register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	newTestEngine(gw, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"success": true, "message": "Registration successful"}, decode(t, rec))
	assert.Empty(t, rec.Result().Cookies())
}

func TestAuth_HandleRejectsBeforeDispatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		target      string
		contentType string
		body        string
		wantError   string
	}{
		{
			name:        "unknown action",
			target:      "/auth",
			contentType: "application/x-www-form-urlencoded",
			body:        "action=delete_everything",
			wantError:   "unknown action",
		},
		{
			name:        "missing action",
			target:      "/auth",
			contentType: "application/x-www-form-urlencoded",
			body:        "email=a%40b.c",
			wantError:   "action is required",
		},
		{
			name:        "broken json",
			target:      "/auth?action=login",
			contentType: "application/json",
			body:        `{"email":`,
			wantError:   "invalid request body",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			gw := mocks.NewGateway(t)
			req := httptest.NewRequest(http.MethodPost, tt.target, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.contentType)
			rec := httptest.NewRecorder()

			newTestEngine(gw, nil).ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, map[string]any{"success": false, "error": tt.wantError}, decode(t, rec))
		})
	}
}

func TestAuth_HandleRateLimited(t *testing.T) {
	t.Parallel()

	gw := mocks.NewGateway(t)
	gw.On("Dispatch", mock.Anything, mock.Anything, mock.Anything).
		Return(service.Outcome{}, apperrors.NewRateLimited(840))

	req := httptest.NewRequest(http.MethodPost, "/auth", strings.NewReader("action=login&email=a%40b.c&password=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	newTestEngine(gw, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "840", rec.Header().Get("Retry-After"))
	assert.Equal(t, float64(840), decode(t, rec)["retryAfterSeconds"])
}

func TestAuth_HandleCSRFHeaderFallback(t *testing.T) {
	t.Parallel()

	gw := mocks.NewGateway(t)
	gw.On("Dispatch",
		mock.Anything,
		mock.MatchedBy(func(rc model.RequestContext) bool { return rc.CSRFToken == "header-token" }),
		service.LogoutCommand{},
	).Return(service.Outcome{Message: "Logged out successfully", ClearSession: true, ClearRemember: true}, nil)

	req := httptest.NewRequest(http.MethodPost, "/auth", strings.NewReader(`{"action":"logout"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(cookie.CSRFHeader, "header-token")
	rec := httptest.NewRecorder()

	newTestEngine(gw, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	for _, name := range []string{"tm_session", "tm_remember"} {
		c := findCookie(rec, name)
		require.NotNil(t, c, name)
		assert.Empty(t, c.Value)
		assert.Less(t, c.MaxAge, 0)
	}
}

func TestAuth_CSRFToken(t *testing.T) {
	t.Parallel()

	gw := mocks.NewGateway(t)
	gw.On("CSRFToken", mock.Anything, mock.Anything).
		Return(model.Session{ID: "anon-sid", CSRFToken: "tok"}, nil)

	rec := httptest.NewRecorder()
	newTestEngine(gw, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/csrf-token", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"token": "tok"}, decode(t, rec))
	assert.Equal(t, "tok", rec.Header().Get(cookie.CSRFHeader))

	sc := findCookie(rec, "tm_session")
	require.NotNil(t, sc)
	assert.Equal(t, "anon-sid", sc.Value)
}

func TestAuth_CSRFTokenStoreDown(t *testing.T) {
	t.Parallel()

	gw := mocks.NewGateway(t)
	gw.On("CSRFToken", mock.Anything, mock.Anything).Return(model.Session{}, apperrors.NewInternal())

	rec := httptest.NewRecorder()
	newTestEngine(gw, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/csrf-token", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Nil(t, findCookie(rec, "tm_session"))
}

func TestAuth_Me(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	sess := model.Session{ID: "sid", UserID: id, Username: "alice"}

	gw := mocks.NewGateway(t)
	gw.On("CurrentUser", mock.Anything, sess).
		Return(model.User{ID: id, Username: "alice", Email: "alice@example.com", PasswordHash: "secret"}, nil)

	rec := httptest.NewRecorder()
	newTestEngine(gw, &sess).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/me", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{
		"success": true,
		"user": map[string]any{
			"id":       id.String(),
			"username": "alice",
			"email":    "alice@example.com",
		},
	}, decode(t, rec))
}

func TestAuth_MeWithoutSession(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	newTestEngine(mocks.NewGateway(t), nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/me", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

type pingerStub struct{ err error }

func (p pingerStub) Ping(context.Context) error { return p.err }

func TestHealth_Handle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		probes     map[string]Pinger
		wantStatus int
		wantState  string
	}{
		{
			name:       "all up",
			probes:     map[string]Pinger{"postgres": pingerStub{}, "redis": pingerStub{}},
			wantStatus: http.StatusOK,
			wantState:  "ok",
		},
		{
			name:       "redis down",
			probes:     map[string]Pinger{"postgres": pingerStub{}, "redis": pingerStub{err: assert.AnError}},
			wantStatus: http.StatusServiceUnavailable,
			wantState:  "degraded",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := NewHealth(tt.probes, time.Second, testutil.MakeNoopLogger())
			r := gin.New()
			r.GET("/healthz", h.Handle)

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantState, decode(t, rec)["status"])
		})
	}
}
