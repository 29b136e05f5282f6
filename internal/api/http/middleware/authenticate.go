package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/primus-the-first/TutorMind-sub001/internal/api/http/cookie"
	"github.com/primus-the-first/TutorMind-sub001/internal/api/http/response"
	"github.com/primus-the-first/TutorMind-sub001/internal/apperrors"
	"github.com/primus-the-first/TutorMind-sub001/internal/logger"
	"github.com/primus-the-first/TutorMind-sub001/internal/model"
	"github.com/primus-the-first/TutorMind-sub001/internal/service"
)

// Authenticator resolves the caller of a protected request.
type Authenticator interface {
	Authenticate(ctx context.Context, rc model.RequestContext) service.Access
}

// Authenticate guards protected routes. Denied API calls get a 401 JSON body;
// denied page loads are redirected to the login page.
type Authenticate struct {
	authenticator  Authenticator
	jar            *cookie.Jar
	contextManager model.ContextManager
	loginPath      string
	logger         *logger.Logger
}

// NewAuthenticate creates a new Authenticate middleware.
func NewAuthenticate(
	authenticator Authenticator,
	jar *cookie.Jar,
	contextManager model.ContextManager,
	loginPath string,
	logger *logger.Logger,
) *Authenticate {
	return &Authenticate{
		authenticator:  authenticator,
		jar:            jar,
		contextManager: contextManager,
		loginPath:      loginPath,
		logger:         logger,
	}
}

// Handle runs the access check and attaches the session to the request context.
func (m *Authenticate) Handle(c *gin.Context) {
	rc := m.jar.RequestContext(c, "")
	access := m.authenticator.Authenticate(c.Request.Context(), rc)

	switch {
	case access.Remember.Value != "":
		m.jar.SetRemember(c, access.Remember)
	case access.ClearRemember:
		m.jar.ClearRemember(c)
	}

	if !access.Granted() {
		m.logger.Debug("Access middleware: request denied",
			"path", c.Request.URL.Path,
			"ip", rc.IP)

		if isAPIRequest(c) {
			response.Error(c, m.logger, apperrors.NewAuthentication("not authenticated"))
			return
		}
		c.Redirect(http.StatusFound, m.loginPath)
		c.Abort()
		return
	}

	if access.State == service.AccessTokenRecovered {
		m.jar.SetSession(c, access.Session.ID)
	}

	ctx := m.contextManager.SetSessionToContext(c.Request.Context(), access.Session)
	c.Request = c.Request.WithContext(ctx)
	c.Next()
}

// isAPIRequest tells script callers apart from browser navigation.
func isAPIRequest(c *gin.Context) bool {
	if c.Query("action") != "" {
		return true
	}
	if c.GetHeader("X-Requested-With") == "XMLHttpRequest" {
		return true
	}

	accept := c.GetHeader("Accept")
	contentType := c.GetHeader("Content-Type")
	switch {
	case strings.Contains(accept, "application/json"),
		strings.Contains(contentType, "application/json"),
		strings.HasPrefix(contentType, "multipart/form-data"):
		return true
	}

	return c.Request.Method == http.MethodPost && c.PostForm("action") != ""
}
