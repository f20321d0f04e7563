package scheduler

import (
	"fmt"
	"sync"

	"palbot/internal/config"

	"github.com/charmbracelet/log"
	"github.com/robfig/cron/v3"
)

// Scheduler runs recurring tasks registered by modules and the bot itself.
type Scheduler struct {
	config *config.Config
	cron   *cron.Cron

	mu   sync.Mutex
	jobs []string
}

// NewScheduler creates a new scheduler instance
func NewScheduler(cfg *config.Config) *Scheduler {
	logger := cronLogger{cfg.Logger}
	return &Scheduler{
		config: cfg,
		cron: cron.New(
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
	}
}

// RegisterFunc schedules fn on a cron spec ("@hourly", "@every 1m",
// "0 3 * * *", ...). Errors returned by fn are logged, not propagated.
func (s *Scheduler) RegisterFunc(spec, name string, fn func() error) error {
	_, err := s.cron.AddFunc(spec, func() {
		if err := fn(); err != nil {
			s.config.Logger.Errorf("Scheduled task %s failed: %v", name, err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule %s (%s): %w", name, spec, err)
	}

	s.mu.Lock()
	s.jobs = append(s.jobs, name)
	s.mu.Unlock()
	return nil
}

// RegisterNewMinuteFunc runs fn once a minute.
func (s *Scheduler) RegisterNewMinuteFunc(fn func() error) {
	if err := s.RegisterFunc("@every 1m", "minute-task", fn); err != nil {
		s.config.Logger.Errorf("Failed to register minute task: %v", err)
	}
}

// RegisterNewHourFunc runs fn at the top of every hour.
func (s *Scheduler) RegisterNewHourFunc(fn func() error) {
	if err := s.RegisterFunc("@hourly", "hour-task", fn); err != nil {
		s.config.Logger.Errorf("Failed to register hour task: %v", err)
	}
}

// Jobs lists the names of registered tasks in registration order.
func (s *Scheduler) Jobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.jobs...)
}

// Start begins running tasks in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.config.Logger.Infof("Scheduler started with %d task(s)", len(s.Jobs()))
}

// Stop halts the scheduler and waits for running tasks to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.config.Logger.Info("Scheduler stopped")
}

// cronLogger adapts the bot logger to cron's logging interface.
type cronLogger struct {
	l *log.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error(msg, append(keysAndValues, "err", err)...)
}
