package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"
	_ "time/tzdata"
)

// JobFunc is the work of one scheduled run. tick is the wall-clock minute in
// the scheduler's location.
type JobFunc func(ctx context.Context, tick time.Time) error

// Job is a named unit of recurring work.
type Job struct {
	Name     string
	Schedule *Schedule
	Run      JobFunc
}

// RunStatus is the outcome of a job's last run.
type RunStatus string

const (
	StatusOK     RunStatus = "ok"
	StatusFailed RunStatus = "failed"
)

// RunRecord describes a finished run.
type RunRecord struct {
	Job      string        `json:"job"`
	Tick     time.Time     `json:"tick"`
	Status   RunStatus     `json:"status"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Config holds scheduler settings.
type Config struct {
	Enabled  bool          `envconfig:"SITESYNC_SCHEDULER_ENABLED" default:"true"`
	Tick     time.Duration `envconfig:"SITESYNC_SCHEDULER_TICK" default:"30s"`
	TZ       string        `envconfig:"SITESYNC_SCHEDULER_TZ"`
	LockPath string        `envconfig:"SITESYNC_SCHEDULER_LOCK_PATH"`
}

// DefaultLockPath is ~/.sitesync/scheduler.lock.
func DefaultLockPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	return filepath.Join(home, ".sitesync", "scheduler.lock")
}

// Scheduler evaluates jobs once per tick and runs the matching ones one after
// another while holding the lock.
type Scheduler struct {
	cfg  Config
	loc  *time.Location
	lock *FileLock

	mu    sync.Mutex
	jobs  []Job
	fired map[string]time.Time
	last  map[string]RunRecord
}

// New creates a scheduler. An unknown TZ falls back to UTC.
func New(cfg Config) *Scheduler {
	if cfg.Tick <= 0 {
		cfg.Tick = 30 * time.Second
	}
	if cfg.LockPath == "" {
		cfg.LockPath = DefaultLockPath()
	}
	loc := time.UTC
	if cfg.TZ != "" {
		l, err := time.LoadLocation(cfg.TZ)
		if err != nil {
			slog.Warn("Scheduler timezone invalid, using UTC", "tz", cfg.TZ, "error", err)
		} else {
			loc = l
		}
	}
	return &Scheduler{
		cfg:   cfg,
		loc:   loc,
		lock:  NewFileLock(cfg.LockPath),
		fired: make(map[string]time.Time),
		last:  make(map[string]RunRecord),
	}
}

// Register adds a job. Names must be unique.
func (s *Scheduler) Register(job Job) error {
	if job.Name == "" || job.Schedule == nil || job.Run == nil {
		return fmt.Errorf("scheduler: job needs a name, schedule and func")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if slices.ContainsFunc(s.jobs, func(j Job) bool { return j.Name == job.Name }) {
		return fmt.Errorf("scheduler: job %q already registered", job.Name)
	}
	s.jobs = append(s.jobs, job)
	slog.Info("Scheduler job registered", "name", job.Name, "cron", job.Schedule.String())
	return nil
}

// Jobs returns registered job names in registration order.
func (s *Scheduler) Jobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, len(s.jobs))
	for i, j := range s.jobs {
		names[i] = j.Name
	}
	return names
}

// NextRuns maps each job to its next scheduled time after now.
func (s *Scheduler) NextRuns(now time.Time) map[string]time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]time.Time, len(s.jobs))
	for _, j := range s.jobs {
		out[j.Name] = j.Schedule.Next(now.In(s.loc))
	}
	return out
}

// LastRuns returns the last recorded run per job.
func (s *Scheduler) LastRuns() map[string]RunRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]RunRecord, len(s.last))
	for k, v := range s.last {
		out[k] = v
	}
	return out
}

// Run ticks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	slog.Info("Scheduler started", "tick", s.cfg.Tick, "tz", s.loc.String(), "jobs", len(s.Jobs()))
	ticker := time.NewTicker(s.cfg.Tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			slog.Info("Scheduler stopped")
			return ctx.Err()
		case t := <-ticker.C:
			s.Tick(ctx, t)
		}
	}
}

// Tick runs every job due at now and returns how many ran. A job fires at
// most once per matching minute. Nothing runs while another process holds
// the lock.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) int {
	acquired, err := s.lock.TryLock()
	if err != nil {
		slog.Warn("Scheduler lock error", "error", err)
		return 0
	}
	if !acquired {
		slog.Debug("Scheduler tick skipped: lock held by another process")
		return 0
	}
	defer s.lock.Unlock()

	minute := now.In(s.loc).Truncate(time.Minute)
	s.mu.Lock()
	var due []Job
	for _, j := range s.jobs {
		if j.Schedule.Matches(minute) && !s.fired[j.Name].Equal(minute) {
			s.fired[j.Name] = minute
			due = append(due, j)
		}
	}
	s.mu.Unlock()

	for _, j := range due {
		if ctx.Err() != nil {
			break
		}
		s.runJob(ctx, j, minute)
	}
	return len(due)
}

func (s *Scheduler) runJob(ctx context.Context, j Job, tick time.Time) {
	start := time.Now()
	slog.Info("Scheduler running job", "job", j.Name, "tick", tick.Format(time.RFC3339))
	rec := RunRecord{Job: j.Name, Tick: tick, Status: StatusOK}

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return j.Run(ctx, tick)
	}()
	rec.Duration = time.Since(start)
	if err != nil {
		rec.Status, rec.Error = StatusFailed, err.Error()
		slog.Error("Scheduler job failed", "job", j.Name, "error", err)
	} else {
		slog.Info("Scheduler job finished", "job", j.Name, "duration", rec.Duration)
	}

	s.mu.Lock()
	s.last[j.Name] = rec
	s.mu.Unlock()
}
