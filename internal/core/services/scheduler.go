package services

import (
	"context"
	"sync"
	"time"

	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/ports/driving"
	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/logger"
)

// Task IDs for built-in maintenance.
const (
	TaskIDSessionSweep = "session_sweep"
)

// defaultSchedulerTick is how often the loop checks for due tasks.
const defaultSchedulerTick = time.Minute

// TaskFunc performs one run of a task and reports how many items it processed.
type TaskFunc func(ctx context.Context) (int, error)

// TaskStatus is the observable state of a scheduled task.
type TaskStatus struct {
	ID          string
	Interval    time.Duration
	LastRun     time.Time
	NextRun     time.Time
	LastSuccess time.Time
	LastError   string
	Processed   int
}

type scheduledTask struct {
	status TaskStatus
	fn     TaskFunc
	busy   bool
}

// Scheduler runs periodic maintenance for long-running servers.
// It is a pure core service with no external control API.
type Scheduler struct {
	tick time.Duration
	now  func() time.Time

	mu      sync.Mutex
	tasks   []*scheduledTask
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithSchedulerTick overrides how often due tasks are checked.
func WithSchedulerTick(tick time.Duration) SchedulerOption {
	return func(s *Scheduler) { s.tick = tick }
}

// WithSchedulerClock overrides the time source.
func WithSchedulerClock(now func() time.Time) SchedulerOption {
	return func(s *Scheduler) { s.now = now }
}

// NewScheduler creates an idle scheduler with no tasks.
func NewScheduler(opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		tick: defaultSchedulerTick,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register adds a task. The first run is due one interval after registration.
// Registering an existing ID replaces its interval and function.
func (s *Scheduler) Register(id string, interval time.Duration, fn TaskFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.tasks {
		if t.status.ID == id {
			if t.status.Interval != interval {
				t.status.Interval = interval
				t.status.NextRun = s.now().Add(interval)
			}
			t.fn = fn
			return
		}
	}
	s.tasks = append(s.tasks, &scheduledTask{
		status: TaskStatus{ID: id, Interval: interval, NextRun: s.now().Add(interval)},
		fn:     fn,
	})
}

// RegisterSessionSweep removes expired sessions every interval.
func (s *Scheduler) RegisterSessionSweep(sessions driving.SessionService, interval time.Duration) {
	s.Register(TaskIDSessionSweep, interval, sessions.SweepExpired)
}

// Tasks returns a snapshot of every task's status.
func (s *Scheduler) Tasks() []TaskStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]TaskStatus, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = t.status
	}
	return out
}

// Start begins the scheduler loop. This method blocks until Stop is called
// or ctx is done.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil // Already running
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.mu.Unlock()

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.markStopped()
			s.wg.Wait()
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-ticker.C:
			s.runDueTasks(ctx)
		}
	}
}

// Stop gracefully shuts down the scheduler and waits for running tasks.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

func (s *Scheduler) markStopped() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
}

// runDueTasks starts every task whose next run has passed and is not already running.
func (s *Scheduler) runDueTasks(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for _, t := range s.tasks {
		if t.busy || t.status.NextRun.After(now) {
			continue
		}
		t.busy = true
		s.wg.Add(1)
		go s.runTask(ctx, t)
	}
}

func (s *Scheduler) runTask(ctx context.Context, t *scheduledTask) {
	defer s.wg.Done()

	started := s.now()
	n, err := t.fn(ctx)
	ended := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	t.busy = false
	t.status.LastRun = started
	t.status.NextRun = ended.Add(t.status.Interval)
	t.status.Processed = n
	if err != nil {
		t.status.LastError = err.Error()
		logger.Warn("scheduler: task %s failed: %v", t.status.ID, err)
		return
	}
	t.status.LastError = ""
	t.status.LastSuccess = ended
	logger.Debug("scheduler: task %s processed %d items", t.status.ID, n)
}
