package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/nextlevelbuilder/taskcore/storage"
)

// defaultPollInterval matches the teacher's cron store poll cadence.
const defaultPollInterval = 1 * time.Second

// defaultShutdownGrace bounds how long Stop waits for in-flight runs.
const defaultShutdownGrace = 30 * time.Second

// Config tunes a Scheduler's poll loop and worker pool.
type Config struct {
	PollInterval  time.Duration
	MaxConcurrent int
	ClaimBatch    int
	ShutdownGrace time.Duration
	Logger        *slog.Logger
}

func (c Config) withDefaults() Config {
	if c.PollInterval <= 0 {
		c.PollInterval = defaultPollInterval
	}
	if c.ClaimBatch <= 0 {
		c.ClaimBatch = 10
	}
	if c.ShutdownGrace <= 0 {
		c.ShutdownGrace = defaultShutdownGrace
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// Scheduler owns the poll loop that claims ready tasks from storage and
// hands them to a Pool for execution. It is the generalization of the
// teacher's PGCronStore.runLoop to both cron and async task types.
type Scheduler struct {
	store    storage.Storage
	registry *Registry
	pool     *Pool
	cfg      Config
	log      *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	running bool
}

// New builds a Scheduler over store using registry to resolve handlers.
func New(store storage.Storage, registry *Registry, cfg Config) *Scheduler {
	cfg = cfg.withDefaults()
	return &Scheduler{
		store:    store,
		registry: registry,
		pool:     NewPool(store, registry, cfg.MaxConcurrent, cfg.Logger),
		cfg:      cfg,
		log:      cfg.Logger,
	}
}

// Start resets abandoned runs from a prior crash and begins polling.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.running = true
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	n, err := s.store.ResetAbandoned(ctx, time.Now().Unix())
	if err != nil {
		return err
	}
	if n > 0 {
		s.log.Warn("reset abandoned running tasks to pending", "count", n)
	}

	s.wg.Add(1)
	go s.runLoop(runCtx)
	return nil
}

// Stop halts the poll loop, cancels the contexts of in-flight runs, and
// waits up to the configured shutdown grace period for them to return.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return ErrNotStarted
	}
	s.running = false
	cancel := s.cancel
	s.mu.Unlock()

	cancel()
	s.wg.Wait()
	s.pool.Shutdown(s.cfg.ShutdownGrace)
	return nil
}

func (s *Scheduler) runLoop(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	if !s.pool.HasCapacity() {
		return
	}
	stats := s.pool.Stats()
	limit := s.cfg.ClaimBatch
	if stats.MaxConcurrent > 0 {
		if room := stats.MaxConcurrent - stats.InFlight; room < limit {
			limit = room
		}
	}
	if limit <= 0 {
		return
	}

	tasks, err := s.store.ClaimReady(ctx, time.Now().Unix(), limit)
	if err != nil {
		s.log.Error("claim ready tasks", "error", err)
		return
	}
	if len(tasks) == 0 {
		return
	}
	s.log.Debug("claimed tasks", "count", len(tasks))
	for _, t := range tasks {
		s.pool.Submit(ctx, t)
	}
}

// Stats exposes pool occupancy for the public API's Stats call.
func (s *Scheduler) Stats() PoolStats {
	return s.pool.Stats()
}
