package worker

import (
	"context"
	"log/slog"
	"time"

	"account-provisioner/internal/pkg/errs"
	"account-provisioner/internal/usecase/commands"
)

// Sweeper removes expired reservations on a fixed interval so the table does
// not grow between registrations.
type Sweeper struct {
	sweep    commands.SweepCommands
	interval time.Duration
	logger   *slog.Logger
}

func NewSweeper(sweep commands.SweepCommands, interval time.Duration, logger *slog.Logger) *Sweeper {
	return &Sweeper{sweep: sweep, interval: interval, logger: logger}
}

// Run sweeps until ctx is cancelled. A failed sweep is logged and retried on
// the next tick; only a broken invariant stops the loop.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.RunOnce(ctx); err != nil {
				return err
			}
		case <-ctx.Done():
			return nil
		}
	}
}

func (s *Sweeper) RunOnce(ctx context.Context) error {
	removed, err := s.sweep.Sweep(ctx)
	switch {
	case err == nil:
		if removed > 0 {
			s.logger.InfoContext(ctx, "swept expired reservations", slog.Int("removed", removed))
		}
		return nil
	case errs.Is(err, errs.ErrInvariantViolation):
		return err
	case ctx.Err() != nil:
		return nil
	default:
		s.logger.WarnContext(ctx, "sweep failed", slog.String("error", err.Error()))
		return nil
	}
}
