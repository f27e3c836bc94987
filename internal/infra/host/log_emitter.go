package host

import (
	"context"
	"log/slog"

	"account-provisioner/internal/domain/provisioning"
	"account-provisioner/internal/pkg/errs"
	"account-provisioner/internal/usecase/commands"
)

// LogEmitter writes each batch to the log and reports it accepted. It stands
// in for a host during development.
type LogEmitter struct {
	logger *slog.Logger
}

var _ commands.CommandEmitter = (*LogEmitter)(nil)

func NewLogEmitter(logger *slog.Logger) *LogEmitter {
	return &LogEmitter{logger: logger}
}

func (e *LogEmitter) Emit(ctx context.Context, batch *provisioning.Batch) error {
	payload, err := NewEnvelope(batch).Marshal()
	if err != nil {
		return errs.Wrap(err, "encode batch")
	}
	e.logger.InfoContext(ctx, "command batch",
		slog.String("batch_id", batch.ID.String()),
		slog.Int("actions", len(batch.Actions)),
		slog.String("payload", string(payload)),
	)
	return nil
}
