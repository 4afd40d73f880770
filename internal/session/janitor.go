package session

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// Janitor periodically evicts idle sessions from a Manager.
type Janitor struct {
	scheduler *gocron.Scheduler
	manager   *Manager
	idle      time.Duration
	logger    *slog.Logger
}

// NewJanitor creates a janitor that sweeps every interval and drops sessions
// idle for longer than idle.
func NewJanitor(manager *Manager, interval, idle time.Duration, logger *slog.Logger) (*Janitor, error) {
	if manager == nil {
		return nil, fmt.Errorf("manager cannot be nil")
	}
	if interval <= 0 || idle <= 0 {
		return nil, fmt.Errorf("interval and idle timeout must be positive")
	}
	if logger == nil {
		logger = slog.Default()
	}

	j := &Janitor{
		scheduler: gocron.NewScheduler(time.UTC),
		manager:   manager,
		idle:      idle,
		logger:    logger.With(slog.String("component", "session_janitor")),
	}

	j.scheduler.SingletonModeAll()
	if _, err := j.scheduler.Every(interval).WaitForSchedule().Do(j.Sweep); err != nil {
		return nil, fmt.Errorf("failed to schedule session sweep: %w", err)
	}
	return j, nil
}

// Start runs the sweep schedule in the background.
func (j *Janitor) Start() {
	j.scheduler.StartAsync()
	j.logger.Info("session janitor started", slog.Duration("idle_timeout", j.idle))
}

// Stop halts the schedule.
func (j *Janitor) Stop() {
	j.scheduler.Stop()
	j.logger.Info("session janitor stopped")
}

// Sweep evicts idle sessions once.
func (j *Janitor) Sweep() {
	if n := j.manager.EvictIdle(j.idle); n > 0 {
		j.logger.Info("evicted idle flashcard sessions",
			slog.Int("evicted", n),
			slog.Int("remaining", j.manager.Len()))
	}
}
