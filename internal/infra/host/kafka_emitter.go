package host

import (
	"context"
	"log/slog"
	"sync"

	"account-provisioner/internal/domain/provisioning"
	"account-provisioner/internal/pkg/errs"
	"account-provisioner/internal/usecase/commands"

	"github.com/twmb/franz-go/pkg/kgo"
)

const headerBatchID = "batch-id"

// KafkaEmitter publishes each batch as one record inside a Kafka
// transaction, so a read-committed host sees a batch exactly when Emit
// returns nil.
type KafkaEmitter struct {
	mu     sync.Mutex
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

var _ commands.CommandEmitter = (*KafkaEmitter)(nil)

func NewKafkaEmitter(brokers []string, topic, transactionalID string, logger *slog.Logger) (*KafkaEmitter, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.TransactionalID(transactionalID),
		kgo.DefaultProduceTopic(topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	)
	if err != nil {
		return nil, errs.Wrap(err, "create kafka producer")
	}
	return &KafkaEmitter{client: client, topic: topic, logger: logger}, nil
}

func (e *KafkaEmitter) Emit(ctx context.Context, batch *provisioning.Batch) error {
	payload, err := NewEnvelope(batch).Marshal()
	if err != nil {
		return errs.Wrap(err, "encode batch")
	}

	record := &kgo.Record{
		Topic: e.topic,
		Key:   []byte(batch.Account.String()),
		Value: payload,
		Headers: []kgo.RecordHeader{
			{Key: headerBatchID, Value: []byte(batch.ID.String())},
		},
	}

	// A transactional producer runs one transaction at a time.
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.client.BeginTransaction(); err != nil {
		return errs.Wrap(err, "begin kafka transaction")
	}

	if err := e.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		if abortErr := e.client.EndTransaction(ctx, kgo.TryAbort); abortErr != nil {
			e.logger.WarnContext(ctx, "failed to abort kafka transaction",
				slog.String("batch_id", batch.ID.String()),
				slog.String("error", abortErr.Error()),
			)
		}
		return errs.Wrap(err, "produce command batch")
	}

	if err := e.client.EndTransaction(ctx, kgo.TryCommit); err != nil {
		return errs.Wrap(err, "commit kafka transaction")
	}
	return nil
}

func (e *KafkaEmitter) Close() {
	e.client.Close()
}
