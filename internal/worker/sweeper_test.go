//go:build unit

package worker_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"account-provisioner/internal/pkg/errs"
	"account-provisioner/internal/worker"
	commandsmock "account-provisioner/tests/mock/commands"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSweeper_RunOnce(t *testing.T) {
	tests := []struct {
		name    string
		removed int
		err     error
		wantErr bool
	}{
		{name: "removes expired", removed: 2},
		{name: "nothing to do"},
		{name: "store failure is logged and survived", err: errors.New("connection reset")},
		{name: "broken invariant stops the worker", err: errs.Mark(errors.New("corrupt index"), errs.ErrInvariantViolation), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			sweep := commandsmock.NewMockSweepCommands(ctrl)
			sweep.EXPECT().Sweep(gomock.Any()).Return(tt.removed, tt.err)

			err := worker.NewSweeper(sweep, time.Minute, discardLogger()).RunOnce(context.Background())
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errs.Is(err, errs.ErrInvariantViolation))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestSweeper_RunStopsWithContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	sweep := commandsmock.NewMockSweepCommands(ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	sweep.EXPECT().Sweep(gomock.Any()).DoAndReturn(func(context.Context) (int, error) {
		cancel()
		return 1, nil
	}).MinTimes(1)

	done := make(chan error, 1)
	go func() { done <- worker.NewSweeper(sweep, time.Millisecond, discardLogger()).Run(ctx) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("sweeper did not stop")
	}
}
