package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/devagency/agency-api/internal/api/metrics"
	"github.com/devagency/agency-api/internal/core/ports"
)

const (
	// DefaultSweepSchedule runs the sweep every 15 minutes (seconds precision).
	DefaultSweepSchedule = "0 */15 * * * *"

	sweepLockKey = "session-sweep"
	sweepLockTTL = 5 * time.Minute
	sweepTimeout = 2 * time.Minute
)

// Sweeper removes expired sessions.
type Sweeper interface {
	SweepExpired(ctx context.Context) (int64, error)
}

// Scheduler runs periodic maintenance. A nil locker lets every replica sweep.
type Scheduler struct {
	cron     *cron.Cron
	sweeper  Sweeper
	locker   ports.Locker
	schedule string
	log      zerolog.Logger
}

func NewScheduler(sweeper Sweeper, locker ports.Locker, schedule string, log zerolog.Logger) *Scheduler {
	if schedule == "" {
		schedule = DefaultSweepSchedule
	}
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		sweeper:  sweeper,
		locker:   locker,
		schedule: schedule,
		log:      log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.sweep); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info().Str("schedule", s.schedule).Msg("session sweep scheduled")
	return nil
}

// Stop prevents new runs and returns a context that is done once the running
// job, if any, has finished.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	if _, err := s.RunSweep(ctx); err != nil {
		s.log.Error().Err(err).Msg("session sweep failed")
	}
}

// RunSweep performs one sweep under the distributed lock. It reports the
// number of deleted sessions; a run skipped because another replica holds
// the lock returns 0 and no error.
func (s *Scheduler) RunSweep(ctx context.Context) (int64, error) {
	if s.locker != nil {
		release, ok, err := s.locker.Acquire(ctx, sweepLockKey, sweepLockTTL)
		if err != nil {
			metrics.SessionSweepRunsTotal.WithLabelValues("error").Inc()
			return 0, err
		}
		if !ok {
			metrics.SessionSweepRunsTotal.WithLabelValues("skipped").Inc()
			s.log.Debug().Msg("session sweep skipped, lock held elsewhere")
			return 0, nil
		}
		defer func() {
			if err := release(context.Background()); err != nil {
				s.log.Warn().Err(err).Msg("failed to release sweep lock")
			}
		}()
	}

	n, err := s.sweeper.SweepExpired(ctx)
	if err != nil {
		metrics.SessionSweepRunsTotal.WithLabelValues("error").Inc()
		return 0, err
	}

	metrics.SessionSweepRunsTotal.WithLabelValues("ok").Inc()
	metrics.SessionsSweptTotal.Add(float64(n))
	if n > 0 {
		s.log.Info().Int64("deleted", n).Msg("expired sessions swept")
	}
	return n, nil
}
