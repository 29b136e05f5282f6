// Package handler holds the gin handlers for the auth endpoints.
package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/primus-the-first/TutorMind-sub001/internal/api/http/cookie"
	"github.com/primus-the-first/TutorMind-sub001/internal/api/http/response"
	"github.com/primus-the-first/TutorMind-sub001/internal/apperrors"
	"github.com/primus-the-first/TutorMind-sub001/internal/logger"
	"github.com/primus-the-first/TutorMind-sub001/internal/model"
	"github.com/primus-the-first/TutorMind-sub001/internal/service"
)

// Gateway is the part of the auth service the handlers call.
type Gateway interface {
	Dispatch(ctx context.Context, rc model.RequestContext, cmd service.Command) (service.Outcome, error)
	CSRFToken(ctx context.Context, rc model.RequestContext) (model.Session, error)
	CurrentUser(ctx context.Context, sess model.Session) (model.User, error)
}

// Auth serves the action endpoint, the CSRF token endpoint and the current user.
type Auth struct {
	gateway        Gateway
	jar            *cookie.Jar
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuth creates a new Auth handler.
func NewAuth(gateway Gateway, jar *cookie.Jar, contextManager model.ContextManager, logger *logger.Logger) *Auth {
	return &Auth{
		gateway:        gateway,
		jar:            jar,
		contextManager: contextManager,
		logger:         logger,
	}
}

// Handle dispatches the action named in the request.
func (h *Auth) Handle(c *gin.Context) {
	var req authRequest
	if err := c.ShouldBind(&req); err != nil {
		h.logger.Debug("Auth handler: failed to bind request",
			"error", err.Error())
		response.Error(c, h.logger, apperrors.NewValidation("invalid request body"))
		return
	}
	if req.Action == "" {
		req.Action = c.Query("action")
	}

	cmd, err := req.command()
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	h.logger.Debug("Auth handler: processing request",
		"action", cmd.Action())

	rc := h.jar.RequestContext(c, req.CSRFToken)
	out, err := h.gateway.Dispatch(c.Request.Context(), rc, cmd)
	if err != nil {
		h.logger.Info("Auth handler: action rejected",
			"action", cmd.Action(),
			"ip", rc.IP,
			"error", err.Error())
		response.Error(c, h.logger, err)
		return
	}

	h.jar.Apply(c, out)

	var extra gin.H
	if out.Session.CSRFToken != "" {
		c.Header(cookie.CSRFHeader, out.Session.CSRFToken)
		extra = gin.H{"csrf_token": out.Session.CSRFToken}
	}

	h.logger.Info("Auth handler: action completed",
		"action", cmd.Action(),
		"ip", rc.IP)

	response.OK(c, http.StatusOK, out.Message, extra)
}

// CSRFToken returns the caller's CSRF token, starting an anonymous session if needed.
func (h *Auth) CSRFToken(c *gin.Context) {
	rc := h.jar.RequestContext(c, "")
	sess, err := h.gateway.CSRFToken(c.Request.Context(), rc)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	h.jar.SetSession(c, sess.ID)
	c.Header(cookie.CSRFHeader, sess.CSRFToken)
	c.JSON(http.StatusOK, gin.H{"token": sess.CSRFToken})
}

// Me returns the account behind the session the access middleware attached.
func (h *Auth) Me(c *gin.Context) {
	sess, ok := h.contextManager.GetSessionFromContext(c.Request.Context())
	if !ok {
		response.Error(c, h.logger, apperrors.NewAuthentication("not authenticated"))
		return
	}

	user, err := h.gateway.CurrentUser(c.Request.Context(), sess)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user": gin.H{
			"id":       user.ID.String(),
			"username": user.Username,
			"email":    user.Email,
		},
	})
}
