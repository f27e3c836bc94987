package ledger

import (
	"context"
	"errors"

	"account-provisioner/internal/pkg/errs"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

// EnsureTopics creates any missing topic with one partition, which keeps
// transfers totally ordered.
func EnsureTopics(ctx context.Context, brokers []string, replication int16, topics ...string) error {
	client, err := kgo.NewClient(kgo.SeedBrokers(brokers...))
	if err != nil {
		return errs.Wrap(err, "create kafka admin client")
	}
	defer client.Close()

	adm := kadm.NewClient(client)
	resp, err := adm.CreateTopics(ctx, 1, replication, nil, topics...)
	if err != nil {
		return errs.Wrap(err, "create topics")
	}
	for topic, r := range resp {
		if r.Err != nil && !errors.Is(r.Err, kerr.TopicAlreadyExists) {
			return errs.Wrapf(r.Err, "create topic %s", topic)
		}
	}
	return nil
}
