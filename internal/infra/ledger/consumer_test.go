//go:build unit

package ledger

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"account-provisioner/internal/pkg/errs"
	"account-provisioner/internal/usecase/commands"
	commandsmock "account-provisioner/tests/mock/commands"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/mock/gomock"
)

func newTestConsumer(t *testing.T) (*Consumer, *commandsmock.MockPaymentCommands) {
	ctrl := gomock.NewController(t)
	payments := commandsmock.NewMockPaymentCommands(ctrl)
	c := newConsumer(nil, payments, slog.New(slog.NewTextHandler(io.Discard, nil)))
	c.backoff = time.Millisecond
	return c, payments
}

func transferRecord(value string) *kgo.Record {
	return &kgo.Record{Topic: "ledger.transfers", Offset: 7, Value: []byte(value)}
}

const transferJSON = `{"from":"alice","to":"saccountcrtr","quantity":"1.0000 EOS","memo":"bob:KEY"}`

func TestConsumer_Process(t *testing.T) {
	want := commands.PaymentEvent{From: "alice", To: "saccountcrtr", Quantity: "1.0000 EOS", Memo: "bob:KEY"}
	transient := errors.New("store unavailable")

	tests := []struct {
		name    string
		results []error
		wantErr error
	}{
		{name: "handled", results: []error{nil}},
		{name: "format rejection is skipped", results: []error{errs.Mark(errors.New("bad memo"), errs.ErrFormat)}},
		{name: "short payment is skipped", results: []error{errs.Mark(errors.New("short"), errs.ErrInsufficientFunds)}},
		{name: "transient failure is retried", results: []error{transient, nil}},
		{name: "persistent failure stops the consumer", results: []error{transient, transient, transient}, wantErr: transient},
		{name: "invariant violation stops at once", results: []error{errs.Mark(errors.New("ids exhausted"), errs.ErrInvariantViolation)}, wantErr: errs.ErrInvariantViolation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, payments := newTestConsumer(t)
			calls := make([]any, 0, len(tt.results))
			for _, res := range tt.results {
				calls = append(calls, payments.EXPECT().HandlePayment(gomock.Any(), want).Return(nil, res))
			}
			gomock.InOrder(calls...)

			err := c.Process(context.Background(), transferRecord(transferJSON))
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errs.Is(err, tt.wantErr))
		})
	}
}

func TestConsumer_ProcessSkipsUndecodable(t *testing.T) {
	c, _ := newTestConsumer(t)
	assert.NoError(t, c.Process(context.Background(), transferRecord("not json")))
}

func TestConsumer_ProcessAll(t *testing.T) {
	want := commands.PaymentEvent{From: "alice", To: "saccountcrtr", Quantity: "1.0000 EOS", Memo: "bob:KEY"}

	t.Run("shutdown during a retry is a clean stop", func(t *testing.T) {
		c, payments := newTestConsumer(t)
		c.backoff = time.Hour
		ctx, cancel := context.WithCancel(context.Background())

		first, second := transferRecord(transferJSON), transferRecord(transferJSON)
		gomock.InOrder(
			payments.EXPECT().HandlePayment(gomock.Any(), want).Return(nil, nil),
			payments.EXPECT().HandlePayment(gomock.Any(), want).DoAndReturn(
				func(context.Context, commands.PaymentEvent) (*commands.PaymentResult, error) {
					cancel()
					return nil, errors.New("store unavailable")
				}),
		)

		handled, err := c.processAll(ctx, []*kgo.Record{first, second})
		require.NoError(t, err)
		assert.Equal(t, []*kgo.Record{first}, handled, "the interrupted record must not be committed")
	})

	t.Run("invariant violation still surfaces after shutdown", func(t *testing.T) {
		c, payments := newTestConsumer(t)
		ctx, cancel := context.WithCancel(context.Background())

		payments.EXPECT().HandlePayment(gomock.Any(), want).DoAndReturn(
			func(context.Context, commands.PaymentEvent) (*commands.PaymentResult, error) {
				cancel()
				return nil, errs.Mark(errors.New("ids exhausted"), errs.ErrInvariantViolation)
			})

		handled, err := c.processAll(ctx, []*kgo.Record{transferRecord(transferJSON)})
		require.Error(t, err)
		assert.True(t, errs.Is(err, errs.ErrInvariantViolation))
		assert.Empty(t, handled)
	})

	t.Run("persistent failure without shutdown is reported", func(t *testing.T) {
		c, payments := newTestConsumer(t)
		payments.EXPECT().HandlePayment(gomock.Any(), want).Return(nil, errors.New("store unavailable")).Times(3)

		handled, err := c.processAll(context.Background(), []*kgo.Record{transferRecord(transferJSON)})
		require.Error(t, err)
		assert.Empty(t, handled)
	})
}
