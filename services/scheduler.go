package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"conference-management-api/config"
)

var ErrJobAlreadyRunning = errors.New("job already running")

// Job is one schedulable unit of background work.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

type scheduledJob struct {
	job      Job
	interval time.Duration
	lockName string
}

// Scheduler runs registered jobs on fixed intervals. Each run takes a MySQL
// named lock first so that a run left over from a previous deployment can
// never overlap with the current one; a held lock skips the tick.
type Scheduler struct {
	db     *gorm.DB
	logger zerolog.Logger
	jobs   []scheduledJob
	wg     sync.WaitGroup
}

func NewScheduler(db *gorm.DB, logger zerolog.Logger) *Scheduler {
	if db == nil {
		db = config.DB
	}
	return &Scheduler{db: db, logger: logger}
}

// Every registers job to run once per interval. An empty lockName disables
// the cross-process overlap guard (used by tests).
func (s *Scheduler) Every(interval time.Duration, lockName string, job Job) {
	s.jobs = append(s.jobs, scheduledJob{job: job, interval: interval, lockName: lockName})
}

// Start launches one goroutine per registered job and returns. Jobs stop
// when ctx is cancelled; Wait blocks until all have stopped.
func (s *Scheduler) Start(ctx context.Context) {
	for _, sj := range s.jobs {
		sj := sj
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.loop(ctx, sj)
		}()
	}
}

func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) loop(ctx context.Context, sj scheduledJob) {
	s.logger.Info().
		Str("job", sj.job.Name()).
		Dur("interval", sj.interval).
		Msg("job scheduled")

	ticker := time.NewTicker(sj.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx, sj)
		}
	}
}

// RunNow executes one registered job immediately, honoring its lock. Used
// by operator endpoints to trigger a job outside its cadence.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	for _, sj := range s.jobs {
		if sj.job.Name() == name {
			return s.guarded(ctx, sj)
		}
	}
	return errors.New("unknown job: " + name)
}

func (s *Scheduler) runOnce(ctx context.Context, sj scheduledJob) {
	start := time.Now()
	err := s.guarded(ctx, sj)
	switch {
	case errors.Is(err, ErrJobAlreadyRunning):
		s.logger.Warn().Str("job", sj.job.Name()).Msg("previous run still executing, skipping")
	case err != nil:
		s.logger.Error().Err(err).Str("job", sj.job.Name()).Msg("job failed")
	default:
		s.logger.Info().
			Str("job", sj.job.Name()).
			Dur("took", time.Since(start)).
			Msg("job completed")
	}
}

func (s *Scheduler) guarded(ctx context.Context, sj scheduledJob) error {
	release, err := s.acquireLock(ctx, sj.lockName)
	if err != nil {
		return err
	}
	if release != nil {
		defer func() {
			if relErr := release(); relErr != nil {
				s.logger.Error().Err(relErr).Str("job", sj.job.Name()).Msg("failed to release job lock")
			}
		}()
	}
	return sj.job.Run(ctx)
}

func (s *Scheduler) acquireLock(ctx context.Context, lockName string) (func() error, error) {
	if strings.TrimSpace(lockName) == "" {
		return nil, nil
	}

	var ok int
	if err := s.db.WithContext(ctx).Raw("SELECT GET_LOCK(?, 0)", lockName).Scan(&ok).Error; err != nil {
		return nil, err
	}
	if ok != 1 {
		return nil, ErrJobAlreadyRunning
	}

	return func() error {
		var released int
		return s.db.WithContext(ctx).Raw("SELECT RELEASE_LOCK(?)", lockName).Scan(&released).Error
	}, nil
}
