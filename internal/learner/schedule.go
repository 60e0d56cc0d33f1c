package learner

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// QuarterlySpec fires at 03:00 UTC on the first day of each quarter.
const QuarterlySpec = "0 3 1 1,4,7,10 *"

// Scheduler runs the learning cycle on the quarterly cron schedule.
type Scheduler struct {
	cron    *cron.Cron
	learner *Learner
	log     zerolog.Logger
}

func NewScheduler(l *Learner, log zerolog.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:    cron.New(cron.WithLocation(time.UTC)),
		learner: l,
		log:     log,
	}
	_, err := s.cron.AddFunc(QuarterlySpec, s.run)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	report, err := s.learner.RunCycle(ctx, time.Now())
	if err != nil {
		s.log.Error().Err(err).Msg("quarterly learning cycle failed")
		return
	}
	s.log.Info().
		Int("samples", report.TotalSamples).
		Str("published", report.Published).
		Msg("quarterly learning cycle finished")
}

func (s *Scheduler) Start() { s.cron.Start() }

// Stop halts scheduling and waits for a running cycle to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
