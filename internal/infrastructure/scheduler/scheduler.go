// Package scheduler runs periodic maintenance tasks in the background of
// the API server.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Task is one unit of periodic maintenance
type Task interface {
	Name() string
	Run(ctx context.Context) error
}

type funcTask struct {
	name string
	fn   func(ctx context.Context) error
}

func (t funcTask) Name() string                  { return t.name }
func (t funcTask) Run(ctx context.Context) error { return t.fn(ctx) }

// TaskFunc adapts a function into a Task
func TaskFunc(name string, fn func(ctx context.Context) error) Task {
	return funcTask{name: name, fn: fn}
}

// Config holds scheduler configuration
type Config struct {
	// Interval between two sweeps
	Interval time.Duration
	// TaskTimeout bounds a single task run
	TaskTimeout time.Duration
}

// DefaultConfig returns default scheduler configuration
func DefaultConfig() Config {
	return Config{
		Interval:    5 * time.Minute,
		TaskTimeout: time.Minute,
	}
}

// Scheduler runs every registered task once per interval. Tasks run
// sequentially; a failing task is logged and does not stop the others.
type Scheduler struct {
	config Config
	logger *zap.Logger
	tasks  []Task

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewScheduler creates a new scheduler instance
func NewScheduler(config Config, logger *zap.Logger) (*Scheduler, error) {
	if config.Interval <= 0 {
		return nil, fmt.Errorf("%w: interval must be positive", ErrInvalidConfig)
	}
	if config.TaskTimeout <= 0 {
		config.TaskTimeout = DefaultConfig().TaskTimeout
	}
	return &Scheduler{config: config, logger: logger}, nil
}

// Register adds a task. Tasks must be registered before Start.
func (s *Scheduler) Register(task Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return ErrSchedulerRunning
	}
	s.tasks = append(s.tasks, task)
	return nil
}

// Start starts the scheduler
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("Maintenance scheduler started",
		zap.Int("tasks", len(s.tasks)),
		zap.Duration("interval", s.config.Interval),
	)
	return nil
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Maintenance scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Maintenance scheduler stop timed out")
		return ctx.Err()
	}
}

func (s *Scheduler) runLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce runs every task immediately and returns the number that failed
func (s *Scheduler) RunOnce(ctx context.Context) int {
	failed := 0
	for _, task := range s.tasks {
		if ctx.Err() != nil {
			return failed
		}
		if err := s.runTask(ctx, task); err != nil {
			failed++
			s.logger.Error("Maintenance task failed",
				zap.String("task", task.Name()),
				zap.Error(err),
			)
		}
	}
	return failed
}

func (s *Scheduler) runTask(ctx context.Context, task Task) (err error) {
	taskCtx, cancel := context.WithTimeout(ctx, s.config.TaskTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()

	start := time.Now()
	err = task.Run(taskCtx)
	s.logger.Debug("Maintenance task finished",
		zap.String("task", task.Name()),
		zap.Duration("duration", time.Since(start)),
	)
	return err
}
