//go:build unit

package components

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
)

type recordingShutdowner struct {
	calls atomic.Int32
}

func (s *recordingShutdowner) Shutdown(...fx.ShutdownOption) error {
	s.calls.Add(1)
	return nil
}

func TestRunInBackground(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name         string
		run          func(ctx context.Context) error
		wantShutdown bool
	}{
		{
			name: "loop ending on cancellation is a clean stop",
			run: func(ctx context.Context) error {
				<-ctx.Done()
				return ctx.Err()
			},
		},
		{
			name: "wrapped cancellation is a clean stop",
			run: func(ctx context.Context) error {
				<-ctx.Done()
				return fmt.Errorf("transfer at offset 7: %w", ctx.Err())
			},
		},
		{
			name: "loop returning nil is a clean stop",
			run: func(ctx context.Context) error {
				<-ctx.Done()
				return nil
			},
		},
		{
			name: "failure while running stops the application",
			run: func(context.Context) error {
				return errors.New("ids exhausted")
			},
			wantShutdown: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lc := fxtest.NewLifecycle(t)
			sd := &recordingShutdowner{}
			cleaned := false

			runInBackground(lc, sd, logger, "worker", tt.run, func() { cleaned = true })
			lc.RequireStart()
			lc.RequireStop()

			assert.True(t, cleaned)
			if tt.wantShutdown {
				assert.Equal(t, int32(1), sd.calls.Load())
			} else {
				assert.Zero(t, sd.calls.Load())
			}
		})
	}
}
