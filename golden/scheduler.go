package golden

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"pfas/domain"
)

// ReconcileFunc runs one full reconciliation pass for a user, typically
// closing over a CrossCorrelator plus the user's latest GoldenReference
// and computed SystemHolding[].
type ReconcileFunc func(ctx context.Context, userID string) error

// Scheduler drives reconciliation.json's mode=scheduled / frequency
// setting (spec.md §6) via a cron expression, grounded on
// aristath-sentinel's use of robfig/cron/v3 for its periodic jobs.
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger
}

func NewScheduler(log zerolog.Logger) *Scheduler {
	return &Scheduler{cron: cron.New(), log: log.With().Str("component", "golden.scheduler").Logger()}
}

// Schedule registers fn to run on spec per userID's reconciliation.json
// (e.g. "0 2 * * *" for nightly at 2am). Only takes effect for users whose
// ReconciliationConfig.Mode is ReconScheduled; callers filter before
// calling Schedule.
func (s *Scheduler) Schedule(userID, cronSpec string, fn ReconcileFunc) error {
	_, err := s.cron.AddFunc(cronSpec, func() {
		if err := fn(context.Background(), userID); err != nil {
			s.log.Error().Err(err).Str("user_id", userID).Msg("scheduled reconciliation failed")
		}
	})
	return err
}

func (s *Scheduler) Start() { s.cron.Start() }

func (s *Scheduler) Stop(ctx context.Context) {
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
}

// ShouldSchedule reports whether cfg calls for cron-driven reconciliation
// at all, versus manual or on-ingest triggering.
func ShouldSchedule(cfg domain.ReconciliationConfig) bool {
	return cfg.Mode == domain.ReconScheduled && cfg.Frequency != ""
}
