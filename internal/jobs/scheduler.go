package jobs

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"solardash/internal/models"
	"solardash/internal/tracking"
)

// ErrBusy is returned when a tracking run is already in progress.
var ErrBusy = errors.New("tracking run already in progress")

// ConfigLoader loads the current business configuration.
type ConfigLoader interface {
	GetCurrentBusinessConfig(ctx context.Context) (*models.BusinessConfig, error)
}

// Runner tracks every area of a business configuration.
type Runner interface {
	TrackAll(ctx context.Context, cfg *models.BusinessConfig) (*tracking.ScheduleResult, error)
}

// Scheduler serializes tracking runs. Manual triggers and the periodic loop
// share one lock so two passes never persist over each other.
type Scheduler struct {
	configs  ConfigLoader
	runner   Runner
	interval time.Duration
	onDone   func(*tracking.ScheduleResult)

	mu      sync.Mutex
	running atomic.Bool
	lastMu  sync.RWMutex
	lastRun time.Time
}

// Status is a point-in-time view of the scheduler.
type Status struct {
	Enabled  bool       `json:"enabled"`
	Interval string     `json:"interval,omitempty"`
	Running  bool       `json:"running"`
	LastRun  *time.Time `json:"lastRun"`
}

// NewScheduler creates a scheduler. onDone, if set, is called after every
// successful run.
func NewScheduler(configs ConfigLoader, runner Runner, interval time.Duration, onDone func(*tracking.ScheduleResult)) *Scheduler {
	return &Scheduler{
		configs:  configs,
		runner:   runner,
		interval: interval,
		onDone:   onDone,
	}
}

// Do runs fn while holding the run lock, or returns ErrBusy.
func (s *Scheduler) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if !s.mu.TryLock() {
		return ErrBusy
	}
	defer s.mu.Unlock()
	s.running.Store(true)
	defer s.running.Store(false)
	return fn(ctx)
}

// RunOnce tracks all configured areas.
func (s *Scheduler) RunOnce(ctx context.Context) (*tracking.ScheduleResult, error) {
	var result *tracking.ScheduleResult
	err := s.Do(ctx, func(ctx context.Context) error {
		cfg, err := s.configs.GetCurrentBusinessConfig(ctx)
		if err != nil {
			return err
		}
		result, err = s.runner.TrackAll(ctx, cfg)
		if err != nil {
			return err
		}
		s.lastMu.Lock()
		s.lastRun = time.Now().UTC()
		s.lastMu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.onDone != nil {
		s.onDone(result)
	}
	return result, nil
}

// Status reports whether the loop is enabled, whether a run holds the lock,
// and when the last successful run finished.
func (s *Scheduler) Status() Status {
	st := Status{Enabled: s.interval > 0, Running: s.running.Load()}
	if st.Enabled {
		st.Interval = s.interval.String()
	}
	s.lastMu.RLock()
	if !s.lastRun.IsZero() {
		last := s.lastRun
		st.LastRun = &last
	}
	s.lastMu.RUnlock()
	return st
}

// Start runs the tracking loop until ctx is cancelled. It does nothing when
// the interval is not positive.
func (s *Scheduler) Start(ctx context.Context) {
	if s.interval <= 0 {
		return
	}
	log.Printf("Tracking scheduler started (interval: %v)", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Tracking scheduler stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	result, err := s.RunOnce(ctx)
	switch {
	case errors.Is(err, ErrBusy):
		log.Println("Tracking scheduler: previous run still in progress, skipping")
	case errors.Is(err, models.ErrNoBusinessConfig):
		log.Println("Tracking scheduler: no business config, skipping")
	case err != nil:
		log.Printf("Tracking scheduler: run failed: %v", err)
	default:
		log.Printf("Tracking scheduler: tracked %d areas, %d rankings, %d errors",
			len(result.Areas), result.Rankings, len(result.Errors))
	}
}
