// Package scheduler drives the recurring digest jobs off plain tickers.
package scheduler

import (
	"context"
	"time"

	"campus-news-api/config"
	"campus-news-api/models"
	"campus-news-api/services"

	"go.uber.org/zap"
)

// DigestScheduler fires the daily and weekly digest jobs on their intervals.
type DigestScheduler struct {
	digests services.DigestService
	cfg     config.SchedulerConfig
	logger  *zap.Logger
	stop    chan struct{}
}

func NewDigestScheduler(digests services.DigestService, cfg config.SchedulerConfig, logger *zap.Logger) *DigestScheduler {
	return &DigestScheduler{
		digests: digests,
		cfg:     cfg,
		logger:  logger,
	}
}

// Start launches one goroutine per cadence. It is a no-op when already
// started.
func (s *DigestScheduler) Start(ctx context.Context) {
	if s.stop != nil {
		return
	}
	s.stop = make(chan struct{})

	go s.loop(ctx, s.stop, s.cfg.DailyInterval.Std(), models.FrequencyDaily)
	go s.loop(ctx, s.stop, s.cfg.WeeklyInterval.Std(), models.FrequencyWeekly)
}

// Stop halts the ticker goroutines.
func (s *DigestScheduler) Stop() {
	if s.stop == nil {
		return
	}
	close(s.stop)
	s.stop = nil
}

func (s *DigestScheduler) loop(ctx context.Context, stop <-chan struct{}, interval time.Duration, freq models.NotificationFrequency) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.run(ctx, freq)
		case <-ctx.Done():
			return
		case <-stop:
			return
		}
	}
}

func (s *DigestScheduler) run(ctx context.Context, freq models.NotificationFrequency) {
	result, err := s.digests.Run(ctx, freq)
	if err != nil {
		s.logger.Error("digest run failed",
			zap.String("cadence", string(freq)), zap.Error(err))
		return
	}
	s.logger.Info("scheduled digest finished",
		zap.String("cadence", string(freq)),
		zap.Int("users_mailed", result.UsersMailed))
}
