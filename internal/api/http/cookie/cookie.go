// Package cookie reads and writes the session and remember-me cookies and
// builds the explicit request context the auth core works with.
package cookie

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/primus-the-first/TutorMind-sub001/internal/model"
	"github.com/primus-the-first/TutorMind-sub001/internal/service"
)

// CSRFHeader is the header a client may send its CSRF token in.
const CSRFHeader = "X-CSRF-Token"

// Config holds cookie names and lifetimes.
type Config struct {
	SessionName  string
	SessionTTL   time.Duration
	RememberName string
	Secure       bool
}

// Jar is the single place cookies are set and cleared.
type Jar struct {
	cfg Config
	now func() time.Time
}

func NewJar(cfg Config) *Jar {
	return &Jar{cfg: cfg, now: time.Now}
}

// RequestContext collects everything the gateway needs from c. The CSRF
// candidate comes from the csrf_token form field, falling back to the header.
func (j *Jar) RequestContext(c *gin.Context, csrfField string) model.RequestContext {
	rc := model.RequestContext{
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		CSRFToken: csrfField,
	}
	if rc.CSRFToken == "" {
		rc.CSRFToken = c.GetHeader(CSRFHeader)
	}
	if v, err := c.Cookie(j.cfg.SessionName); err == nil {
		rc.SessionID = v
	}
	if v, err := c.Cookie(j.cfg.RememberName); err == nil {
		rc.RememberToken = v
	}
	return rc
}

func (j *Jar) SetSession(c *gin.Context, id string) {
	j.set(c, j.cfg.SessionName, id, j.now().Add(j.cfg.SessionTTL))
}

func (j *Jar) ClearSession(c *gin.Context) {
	j.clear(c, j.cfg.SessionName)
}

func (j *Jar) SetRemember(c *gin.Context, token service.IssuedToken) {
	j.set(c, j.cfg.RememberName, token.Value, token.ExpiresAt)
}

func (j *Jar) ClearRemember(c *gin.Context) {
	j.clear(c, j.cfg.RememberName)
}

// Apply writes the cookie changes an Outcome asks for.
func (j *Jar) Apply(c *gin.Context, out service.Outcome) {
	switch {
	case out.Session.ID != "":
		j.SetSession(c, out.Session.ID)
	case out.ClearSession:
		j.ClearSession(c)
	}

	switch {
	case out.Remember.Value != "":
		j.SetRemember(c, out.Remember)
	case out.ClearRemember:
		j.ClearRemember(c)
	}
}

func (j *Jar) set(c *gin.Context, name, value string, expires time.Time) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(expires.Sub(j.now()).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   j.cfg.Secure,
	})
}

func (j *Jar) clear(c *gin.Context, name string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   j.cfg.Secure,
	})
}
