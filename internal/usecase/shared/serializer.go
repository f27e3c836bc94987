package shared

import (
	"context"

	"account-provisioner/internal/pkg/errs"

	"golang.org/x/sync/semaphore"
)

// Serializer runs store-mutating operations one at a time. Registration,
// payment handling and sweeping all check-then-act on the reservation table.
type Serializer struct {
	sem *semaphore.Weighted
}

func NewSerializer() *Serializer {
	return &Serializer{sem: semaphore.NewWeighted(1)}
}

// Do waits for the previous operation to finish, or for ctx to be done.
func (s *Serializer) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return errs.Wrap(err, "wait for serialized operation")
	}
	defer s.sem.Release(1)
	return fn(ctx)
}
