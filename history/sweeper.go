package history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

var standardCronParser = cron.NewParser(
	cron.Minute |
		cron.Hour |
		cron.Dom |
		cron.Month |
		cron.Dow,
)

// SweeperConfig configures the retention sweeper.
type SweeperConfig struct {
	Store Store
	// Retention is how long entries are kept; entries older than now minus
	// Retention are pruned on each sweep.
	Retention time.Duration
	// Schedule is a five-field UTC cron expression; defaults to hourly.
	Schedule string
	Logger   *slog.Logger
}

// Sweeper prunes old history entries on a cron schedule.
type Sweeper struct {
	store     Store
	retention time.Duration
	logger    *slog.Logger

	mu   sync.Mutex
	cron *cron.Cron
}

// NewSweeper creates a retention sweeper.
func NewSweeper(cfg SweeperConfig) (*Sweeper, error) {
	if cfg.Store == nil {
		return nil, errors.New("history: sweeper store is required")
	}
	if cfg.Retention <= 0 {
		return nil, errors.New("history: sweeper retention must be positive")
	}
	schedule := strings.TrimSpace(cfg.Schedule)
	if schedule == "" {
		schedule = "0 * * * *"
	}
	if _, err := standardCronParser.Parse(schedule); err != nil {
		return nil, fmt.Errorf("history: invalid sweep schedule: %w", err)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Sweeper{
		store:     cfg.Store,
		retention: cfg.Retention,
		logger:    logger,
	}
	runner := cron.New(cron.WithParser(standardCronParser), cron.WithLocation(time.UTC))
	if _, err := runner.AddFunc(schedule, s.sweep); err != nil {
		return nil, fmt.Errorf("history: schedule sweep: %w", err)
	}
	s.cron = runner
	return s, nil
}

// Start begins scheduled sweeping.
func (s *Sweeper) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cron.Start()
}

// Stop halts scheduled sweeping and waits for an in-flight sweep.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	runner := s.cron
	s.mu.Unlock()
	<-runner.Stop().Done()
}

func (s *Sweeper) sweep() {
	cutoff := time.Now().Add(-s.retention)
	removed, err := s.store.Prune(context.Background(), cutoff)
	if err != nil {
		s.logger.Error("history sweep failed", "error", err)
		return
	}
	if removed > 0 {
		s.logger.Info("history sweep pruned entries", "removed", removed, "cutoff", cutoff)
	}
}
