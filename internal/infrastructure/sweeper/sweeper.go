package sweeper

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/mlmledger/internal/usecase"
)

// lockKey names the distributed lock shared by every sweeper instance.
const lockKey = "commission-sweep"

// CommissionProcessor settles pending revenue shares.
type CommissionProcessor interface {
	ProcessPendingCommissions(ctx context.Context, limit int) (*usecase.CommissionSweepResult, error)
}

// Recorder observes sweep outcomes.
type Recorder interface {
	SweepRun(outcome string)
}

// Sweeper periodically pays pending commissions. Runs are serialized across
// instances through a SweepLock.
type Sweeper struct {
	processor CommissionProcessor
	lock      usecase.SweepLock
	recorder  Recorder
	logger    zerolog.Logger
	interval  time.Duration
	batchSize int
	lockTTL   time.Duration
}

// Config for Sweeper.
type Config struct {
	Processor CommissionProcessor
	Lock      usecase.SweepLock // nil runs without cross-instance locking
	Recorder  Recorder
	Logger    zerolog.Logger
	Interval  time.Duration
	BatchSize int
	LockTTL   time.Duration
}

// New creates a new Sweeper.
func New(cfg Config) *Sweeper {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = usecase.DefaultSweepBatch
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 10 * time.Minute
	}

	return &Sweeper{
		processor: cfg.Processor,
		lock:      cfg.Lock,
		recorder:  cfg.Recorder,
		logger:    cfg.Logger.With().Str("component", "commission_sweeper").Logger(),
		interval:  cfg.Interval,
		batchSize: cfg.BatchSize,
		lockTTL:   cfg.LockTTL,
	}
}

// Start runs the sweep loop until ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) error {
	s.logger.Info().
		Dur("interval", s.interval).
		Int("batch_size", s.batchSize).
		Msg("commission sweeper started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("commission sweeper shutting down")
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil {
				s.logger.Error().Err(err).Msg("commission sweep failed")
			}
		}
	}
}

// RunOnce performs one sweep. It returns a nil result when another instance
// holds the lock.
func (s *Sweeper) RunOnce(ctx context.Context) (*usecase.CommissionSweepResult, error) {
	if s.lock != nil {
		ok, err := s.lock.Acquire(ctx, lockKey, s.lockTTL)
		if err != nil {
			s.record("failed")
			return nil, err
		}
		if !ok {
			s.logger.Debug().Msg("commission sweep already running elsewhere")
			s.record("skipped")
			return nil, nil
		}
		defer func() {
			if err := s.lock.Release(context.WithoutCancel(ctx), lockKey); err != nil {
				s.logger.Warn().Err(err).Msg("failed to release sweep lock")
			}
		}()
	}

	result, err := s.processor.ProcessPendingCommissions(ctx, s.batchSize)
	if err != nil {
		s.record("failed")
		return nil, err
	}

	s.record("ran")
	return result, nil
}

func (s *Sweeper) record(outcome string) {
	if s.recorder != nil {
		s.recorder.SweepRun(outcome)
	}
}
