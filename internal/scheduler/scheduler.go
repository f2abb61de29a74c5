// Package scheduler drives the periodic background work of the simulation
// service: the re-preparation tick that continuous single-qubit sessions
// rely on.
package scheduler

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/azimonti/quantum-entanglement-simulation/internal/quantum"
	"github.com/azimonti/quantum-entanglement-simulation/internal/session"
)

// Scheduler owns the cron runner and the session registry it ticks.
type Scheduler struct {
	cron     *cron.Cron
	sessions *session.Manager
	log      zerolog.Logger
}

// New creates a scheduler bound to the session registry.
func New(sessions *session.Manager, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		sessions: sessions,
		log:      log.With().Str("component", "scheduler").Logger(),
	}
}

// SchedulePreparation registers the re-preparation tick. The interval is in
// seconds; cron would silently clamp a non-positive duration, so it is
// rejected here instead.
func (s *Scheduler) SchedulePreparation(intervalSeconds int) error {
	if intervalSeconds <= 0 {
		return fmt.Errorf("%w: preparation interval %ds", quantum.ErrConfiguration, intervalSeconds)
	}
	spec := fmt.Sprintf("@every %ds", intervalSeconds)
	if _, err := s.cron.AddFunc(spec, s.preparationTick); err != nil {
		return err
	}
	s.log.Info().Str("schedule", spec).Msg("Preparation tick registered")
	return nil
}

// preparationTick republishes the prepared state of every continuous
// single-qubit session, discarding any non-persistent collapse.
func (s *Scheduler) preparationTick() {
	s.sessions.Tick()
	s.log.Debug().Msg("Re-prepared continuous sessions")
}

// Start begins ticking.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Msg("Scheduler started")
}

// Stop halts scheduling and waits for an in-flight tick to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info().Msg("Scheduler stopped")
}
