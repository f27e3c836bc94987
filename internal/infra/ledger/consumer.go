// Package ledger reads token transfers observed on the ledger from Kafka and
// feeds them to the payment handler.
package ledger

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"account-provisioner/internal/pkg/errs"
	"account-provisioner/internal/usecase/commands"

	"github.com/twmb/franz-go/pkg/kgo"
)

// TransferMessage is one transfer as published by the ledger indexer.
type TransferMessage struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Quantity string `json:"quantity"`
	Memo     string `json:"memo"`
}

type Consumer struct {
	client   *kgo.Client
	payments commands.PaymentCommands
	logger   *slog.Logger

	maxAttempts int
	backoff     time.Duration
}

func NewConsumer(brokers []string, topic, group string, payments commands.PaymentCommands, logger *slog.Logger) (*Consumer, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ConsumerGroup(group),
		kgo.ConsumeTopics(topic),
		kgo.DisableAutoCommit(),
		kgo.FetchIsolationLevel(kgo.ReadCommitted()),
	)
	if err != nil {
		return nil, errs.Wrap(err, "create kafka consumer")
	}
	return newConsumer(client, payments, logger), nil
}

func newConsumer(client *kgo.Client, payments commands.PaymentCommands, logger *slog.Logger) *Consumer {
	return &Consumer{
		client:      client,
		payments:    payments,
		logger:      logger,
		maxAttempts: 3,
		backoff:     500 * time.Millisecond,
	}
}

// Run polls until ctx ends or the client is closed. Offsets are committed
// only for records that were fully handled, so a returned error leaves the
// failing transfer to be redelivered after a restart.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() || ctx.Err() != nil {
			return nil
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			c.logger.WarnContext(ctx, "kafka fetch error",
				slog.String("topic", topic),
				slog.Int("partition", int(partition)),
				slog.String("error", err.Error()),
			)
		})

		handled, runErr := c.processAll(ctx, fetches.Records())
		if len(handled) > 0 {
			if err := c.client.CommitRecords(context.WithoutCancel(ctx), handled...); err != nil {
				c.logger.WarnContext(ctx, "failed to commit offsets", slog.String("error", err.Error()))
			}
		}
		if runErr != nil {
			return runErr
		}
	}
}

// processAll handles records in order and stops at the first failure. A
// failure caused by ctx ending is a clean stop: the record stays uncommitted
// and no error is reported.
func (c *Consumer) processAll(ctx context.Context, records []*kgo.Record) ([]*kgo.Record, error) {
	handled := make([]*kgo.Record, 0, len(records))
	for _, rec := range records {
		if err := c.Process(ctx, rec); err != nil {
			if ctx.Err() != nil && !errs.Is(err, errs.ErrInvariantViolation) {
				return handled, nil
			}
			return handled, err
		}
		handled = append(handled, rec)
	}
	return handled, nil
}

// Process handles one record. Rejected and undecodable transfers are logged
// and skipped; an error means the record must not be committed.
func (c *Consumer) Process(ctx context.Context, rec *kgo.Record) error {
	var msg TransferMessage
	if err := json.Unmarshal(rec.Value, &msg); err != nil {
		c.logger.WarnContext(ctx, "skipping undecodable transfer",
			slog.Int64("offset", rec.Offset),
			slog.String("error", err.Error()),
		)
		return nil
	}
	ev := commands.PaymentEvent(msg)

	var err error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		_, err = c.payments.HandlePayment(ctx, ev)
		switch {
		case err == nil:
			return nil
		case errs.Is(err, errs.ErrFormat), errs.Is(err, errs.ErrInsufficientFunds):
			c.logger.InfoContext(ctx, "transfer rejected",
				slog.String("from", msg.From),
				slog.String("quantity", msg.Quantity),
				slog.String("error", err.Error()),
			)
			return nil
		case errs.Is(err, errs.ErrInvariantViolation):
			return err
		}

		if attempt == c.maxAttempts {
			break
		}
		c.logger.WarnContext(ctx, "retrying transfer",
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * c.backoff):
		}
	}
	return errs.Wrapf(err, "transfer at offset %d", rec.Offset)
}

func (c *Consumer) Close() {
	c.client.Close()
}
