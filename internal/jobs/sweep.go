package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Realizer marks elapsed confirmed appointments as realized.
type Realizer interface {
	RealizeElapsed(ctx context.Context, patientID string) (int, error)
}

// sweepTimeout bounds a single sweep run.
const sweepTimeout = time.Minute

// RunSweep realizes every elapsed confirmed appointment once.
func RunSweep(ctx context.Context, r Realizer, log zerolog.Logger) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, sweepTimeout)
	defer cancel()

	n, err := r.RealizeElapsed(ctx, "")
	if err != nil {
		log.Error().Err(err).Int("realized", n).Msg("realize sweep failed")
		return n, err
	}
	if n > 0 {
		log.Info().Int("realized", n).Msg("realize sweep finished")
	} else {
		log.Debug().Msg("realize sweep found nothing to do")
	}
	return n, nil
}

// NewScheduler registers the realize sweep on a cron expression. The caller starts and
// stops the returned scheduler.
func NewScheduler(expr string, r Realizer, log zerolog.Logger) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(expr, func() {
		_, _ = RunSweep(context.Background(), r, log)
	})
	if err != nil {
		return nil, fmt.Errorf("schedule realize sweep %q: %w", expr, err)
	}
	return c, nil
}
