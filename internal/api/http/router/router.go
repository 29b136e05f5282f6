package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/primus-the-first/TutorMind-sub001/internal/api/http/cookie"
	"github.com/primus-the-first/TutorMind-sub001/internal/api/http/handler"
	"github.com/primus-the-first/TutorMind-sub001/internal/api/http/middleware"
	"github.com/primus-the-first/TutorMind-sub001/internal/logger"
	"github.com/primus-the-first/TutorMind-sub001/internal/model"
)

// Gateway is everything the HTTP surface needs from the auth service.
type Gateway interface {
	handler.Gateway
	middleware.Authenticator
}

// Config holds the transport-level settings of the router.
type Config struct {
	AllowedOrigins []string
	LoginPath      string
	Cookies        cookie.Config
	HealthTimeout  time.Duration
}

// Router builds the gin engine serving the auth endpoints.
type Router struct {
	gateway        Gateway
	cfg            Config
	probes         map[string]handler.Pinger
	contextManager model.ContextManager
	logger         *logger.Logger
}

// New creates new HTTP Router instance.
func New(
	gateway Gateway,
	cfg Config,
	probes map[string]handler.Pinger,
	contextManager model.ContextManager,
	logger *logger.Logger,
) *Router {
	return &Router{
		gateway:        gateway,
		cfg:            cfg,
		probes:         probes,
		contextManager: contextManager,
		logger:         logger,
	}
}

// Register wires middleware and routes and returns the engine.
func (r *Router) Register() *gin.Engine {
	jar := cookie.NewJar(r.cfg.Cookies)
	logging := middleware.NewLogging(r.logger)
	authenticate := middleware.NewAuthenticate(r.gateway, jar, r.contextManager, r.cfg.LoginPath, r.logger)

	e := gin.New()
	e.Use(
		gin.Recovery(),
		middleware.RequestID(),
		logging.Handle,
		cors.New(cors.Config{
			AllowOrigins:     r.cfg.AllowedOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Requested-With", cookie.CSRFHeader},
			ExposeHeaders:    []string{cookie.CSRFHeader, middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
	)

	authHandler := handler.NewAuth(r.gateway, jar, r.contextManager, r.logger)
	healthHandler := handler.NewHealth(r.probes, r.healthTimeout(), r.logger)

	e.GET("/healthz", healthHandler.Handle)
	e.POST("/auth", authHandler.Handle)
	e.GET("/auth/csrf-token", authHandler.CSRFToken)

	api := e.Group("/api", authenticate.Handle)
	api.GET("/me", authHandler.Me)

	return e
}

func (r *Router) healthTimeout() time.Duration {
	if r.cfg.HealthTimeout > 0 {
		return r.cfg.HealthTimeout
	}
	return 2 * time.Second
}
