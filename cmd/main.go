package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/primus-the-first/TutorMind-sub001/internal/api/grpc/health"
	grpcRouter "github.com/primus-the-first/TutorMind-sub001/internal/api/grpc/router"
	grpcServer "github.com/primus-the-first/TutorMind-sub001/internal/api/grpc/server"
	httpcontext "github.com/primus-the-first/TutorMind-sub001/internal/api/http/context"
	"github.com/primus-the-first/TutorMind-sub001/internal/api/http/cookie"
	"github.com/primus-the-first/TutorMind-sub001/internal/api/http/handler"
	httpRouter "github.com/primus-the-first/TutorMind-sub001/internal/api/http/router"
	httpServer "github.com/primus-the-first/TutorMind-sub001/internal/api/http/server"
	"github.com/primus-the-first/TutorMind-sub001/internal/config"
	"github.com/primus-the-first/TutorMind-sub001/internal/credential"
	"github.com/primus-the-first/TutorMind-sub001/internal/jobs"
	"github.com/primus-the-first/TutorMind-sub001/internal/logger"
	"github.com/primus-the-first/TutorMind-sub001/internal/model"
	"github.com/primus-the-first/TutorMind-sub001/internal/repository/postgres"
	"github.com/primus-the-first/TutorMind-sub001/internal/server"
	"github.com/primus-the-first/TutorMind-sub001/internal/service"
	"github.com/primus-the-first/TutorMind-sub001/internal/session"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

const shutdownGrace = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)
	gin.SetMode(cfg.HTTP.GinMode)

	logAppVersion()

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer db.Close()

	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		logger.Fatal("failed to parse redis url", "error", err)
	}
	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()

	hasher, err := credential.NewHasher(credential.Config{
		MemoryKiB:   cfg.Password.MemoryKiB,
		Time:        cfg.Password.Time,
		Parallelism: cfg.Password.Parallelism,
		SaltLength:  cfg.Password.SaltLength,
		KeyLength:   cfg.Password.KeyLength,
	})
	if err != nil {
		logger.Fatal("invalid password hashing parameters", "error", err)
	}

	userRepo := postgres.NewUserRepository(db)
	tokenRepo := postgres.NewRememberTokenRepository(db)
	attemptRepo := postgres.NewLoginAttemptRepository(db)
	sessions := session.NewStore(rdb, cfg.Session.KeyPrefix, cfg.Session.TTL, logger)

	limiter := service.NewRateLimiter(attemptRepo, service.RateLimitPolicy{
		MaxAttempts: cfg.RateLimit.MaxAttempts,
		Window:      cfg.RateLimit.Window,
		Retention:   cfg.RateLimit.Retention,
	}, logger)
	remember := service.NewRememberService(tokenRepo, userRepo, cfg.Remember.TTL, logger)
	csrf := service.NewCSRFManager(sessions)

	authService, err := service.NewAuth(userRepo, sessions, hasher, limiter, remember, csrf, logger)
	if err != nil {
		logger.Fatal("failed to initialize auth service", "error", err)
	}

	checker := health.NewChecker(map[string]health.Probe{
		"postgres": db,
		"redis":    sessions,
	}, cfg.GRPC.ProbeInterval, logger)

	servers := []model.Server{
		registerHTTPServer(cfg, logger, authService, db, sessions),
		grpcServer.NewGRPCServer(grpcRouter.New(checker, logger).Register(), fmt.Sprintf(":%s", cfg.GRPC.Port)),
	}

	var httpSecurity model.SecurityLayer = server.NewPlainListener()
	if cfg.HTTP.EnableHTTPS {
		httpSecurity = server.NewTLSListener(cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)
	}
	securityLayers := map[string]model.SecurityLayer{
		"http": httpSecurity,
		"grpc": server.NewPlainListener(),
	}

	redisConnOpt, err := asynq.ParseRedisURI(cfg.Redis.URL)
	if err != nil {
		logger.Fatal("failed to parse redis url for jobs", "error", err)
	}
	jobManager, err := jobs.NewManager(redisConnOpt, cfg.Cleanup.Schedule, jobs.NewCleanup(limiter, remember, logger), logger)
	if err != nil {
		logger.Fatal("failed to initialize cleanup job", "error", err)
	}
	if err := jobManager.Start(); err != nil {
		logger.Fatal("failed to start cleanup job", "error", err)
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		checker.Run(ctx)
	}()

	for _, s := range servers {
		wg.Add(1)
		go func(s model.Server) {
			defer wg.Done()
			logger.Info("Starting server on", "name", s.Name(), "address", s.Address())
			if err := s.Start(securityLayers[s.Name()]); err != nil {
				logger.Error("failed to start server", "name", s.Name(), "error", err)
				stop()
			}
		}(s)
	}

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer shutdownCancel()

	for _, s := range servers {
		if err := s.Stop(shutdownCtx); err != nil {
			logger.Error("error during server shutdown", "name", s.Name(), "error", err, "address", s.Address())
		}
	}
	jobManager.Shutdown()

	wg.Wait()
	logger.Info("shutdown complete")
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}

func registerHTTPServer(
	cfg *config.Config,
	logger *logger.Logger,
	authService *service.Auth,
	db *postgres.Connection,
	sessions *session.Store,
) *httpServer.HTTPServer {
	r := httpRouter.New(authService, httpRouter.Config{
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		LoginPath:      cfg.HTTP.LoginPath,
		Cookies: cookie.Config{
			SessionName:  cfg.Session.CookieName,
			SessionTTL:   cfg.Session.TTL,
			RememberName: cfg.Remember.CookieName,
			Secure:       cfg.HTTP.SecureCookies,
		},
	}, map[string]handler.Pinger{
		"postgres": db,
		"redis":    sessions,
	}, httpcontext.NewManager(), logger)

	return httpServer.NewHTTPServer(r.Register(), fmt.Sprintf(":%s", cfg.HTTP.Port))
}
