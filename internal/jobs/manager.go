package jobs

import (
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/primus-the-first/TutorMind-sub001/internal/logger"
)

const queueMaintenance = "maintenance"

// Manager owns the scheduler that enqueues the purge and the worker that runs it.
type Manager struct {
	scheduler *asynq.Scheduler
	server    *asynq.Server
	mux       *asynq.ServeMux
	logger    *logger.Logger
}

// NewManager registers the purge on schedule, a cron expression or "@every <duration>".
func NewManager(opt asynq.RedisConnOpt, schedule string, cleanup *Cleanup, logger *logger.Logger) (*Manager, error) {
	al := asynqLogger{logger: logger}

	scheduler := asynq.NewScheduler(opt, &asynq.SchedulerOpts{
		Location: time.UTC,
		Logger:   al,
		LogLevel: asynq.WarnLevel,
		PostEnqueueFunc: func(info *asynq.TaskInfo, err error) {
			if err != nil {
				logger.Warn("Cleanup job: failed to enqueue",
					"error", err.Error())
			}
		},
	})

	task := asynq.NewTask(TaskTypeCleanup, nil)
	if _, err := scheduler.Register(schedule, task,
		asynq.Queue(queueMaintenance),
		asynq.MaxRetry(1),
		asynq.Unique(time.Minute),
	); err != nil {
		return nil, fmt.Errorf("failed to register cleanup schedule %q: %w", schedule, err)
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency:     1,
		Queues:          map[string]int{queueMaintenance: 1},
		Logger:          al,
		LogLevel:        asynq.WarnLevel,
		ShutdownTimeout: 8 * time.Second,
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskTypeCleanup, cleanup.HandleTask)

	return &Manager{
		scheduler: scheduler,
		server:    server,
		mux:       mux,
		logger:    logger,
	}, nil
}

// Start launches the scheduler and the worker in the background.
func (m *Manager) Start() error {
	if err := m.server.Start(m.mux); err != nil {
		return fmt.Errorf("failed to start cleanup worker: %w", err)
	}
	if err := m.scheduler.Start(); err != nil {
		m.server.Shutdown()
		return fmt.Errorf("failed to start cleanup scheduler: %w", err)
	}

	m.logger.Info("Cleanup job: scheduler started")
	return nil
}

// Shutdown stops enqueueing and waits for a running purge to finish.
func (m *Manager) Shutdown() {
	m.scheduler.Shutdown()
	m.server.Shutdown()
	m.logger.Info("Cleanup job: stopped")
}

// asynqLogger routes asynq's own logs through the service logger.
type asynqLogger struct {
	logger *logger.Logger
}

func (l asynqLogger) Debug(args ...any) { l.logger.Debug("asynq: " + fmt.Sprint(args...)) }
func (l asynqLogger) Info(args ...any)  { l.logger.Info("asynq: " + fmt.Sprint(args...)) }
func (l asynqLogger) Warn(args ...any)  { l.logger.Warn("asynq: " + fmt.Sprint(args...)) }
func (l asynqLogger) Error(args ...any) { l.logger.Error("asynq: " + fmt.Sprint(args...)) }
func (l asynqLogger) Fatal(args ...any) { l.logger.Fatal("asynq: " + fmt.Sprint(args...)) }
