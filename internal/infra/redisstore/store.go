// Package redisstore keeps pending registrations in Redis so several
// provisioner replicas can share them. Writes made inside a unit of work are
// buffered and applied by one Lua script at commit.
package redisstore

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"account-provisioner/internal/domain/key"
	"account-provisioner/internal/domain/registration"
	"account-provisioner/internal/infra"
	"account-provisioner/internal/pkg/errs"
	"account-provisioner/internal/usecase/shared"

	"github.com/redis/go-redis/v9"
)

//go:embed commit.lua
var commitSource string

var commitScript = redis.NewScript(commitSource)

const duplicateReply = "DUPLICATE"

type Option func(*Store)

// WithNextID seeds the id sequence when it does not exist yet.
func WithNextID(id uint64) Option {
	return func(s *Store) { s.firstID = id }
}

type Store struct {
	client  redis.UniversalClient
	prefix  string
	logger  *slog.Logger
	firstID uint64
}

var _ shared.UnitOfWork = (*Store)(nil)

func New(ctx context.Context, client redis.UniversalClient, prefix string, logger *slog.Logger, opts ...Option) (*Store, error) {
	s := &Store{client: client, prefix: prefix, logger: logger, firstID: 1}
	for _, opt := range opts {
		opt(s)
	}
	if s.firstID == 0 {
		return nil, errs.New("first reservation id must be positive")
	}

	// INCR hands out firstID next.
	seed := strconv.FormatUint(s.firstID-1, 10)
	if err := client.SetNX(ctx, s.seqKey(), seed, 0).Err(); err != nil {
		return nil, errs.Wrap(err, "seed id sequence")
	}
	return s, nil
}

func (s *Store) seqKey() string    { return s.prefix + ":seq" }
func (s *Store) expiryKey() string { return s.prefix + ":expiry" }

func (s *Store) recordKey(member string) string {
	return s.prefix + ":r:" + member
}

func (s *Store) fingerprintKey(fp registration.Fingerprint) string {
	return s.prefix + ":fp:" + fp.String()
}

func (s *Store) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	tx := newRedisTx(s, true)
	if err := fn(ctx, tx); err != nil {
		return err
	}
	return tx.commit(ctx)
}

// WithinRetry is Within: the commit script is atomic and a lost race shows
// up as a duplicate fingerprint, which retrying would not fix.
func (s *Store) WithinRetry(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return s.Within(ctx, fn)
}

func (s *Store) WithinReadOnly(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return fn(ctx, newRedisTx(s, false))
}

// member renders an id as a fixed-width sorted-set member so equal scores
// still order by id.
func member(id int64) string {
	return fmt.Sprintf("%019d", id)
}

type redisTx struct {
	store    *Store
	writable bool

	inserts map[registration.Fingerprint]*registration.Reservation
	deletes map[int64]struct{}
}

func newRedisTx(s *Store, writable bool) *redisTx {
	return &redisTx{
		store:    s,
		writable: writable,
		inserts:  make(map[registration.Fingerprint]*registration.Reservation),
		deletes:  make(map[int64]struct{}),
	}
}

func (t *redisTx) Reservations() shared.ReservationRepository {
	return &reservationRepository{tx: t, logger: t.store.logger}
}

type insertOp struct {
	ID    string `json:"id"`
	FP    string `json:"fp"`
	Score string `json:"score"`
	Data  string `json:"data"`
}

type commitOps struct {
	Deletes []string   `json:"deletes"`
	Inserts []insertOp `json:"inserts"`
}

func (t *redisTx) commit(ctx context.Context) error {
	if len(t.inserts) == 0 && len(t.deletes) == 0 {
		return nil
	}

	ops := commitOps{
		Deletes: make([]string, 0, len(t.deletes)),
		Inserts: make([]insertOp, 0, len(t.inserts)),
	}
	for id := range t.deletes {
		ops.Deletes = append(ops.Deletes, member(id))
	}
	for _, res := range t.inserts {
		data, err := json.Marshal(toRecord(res))
		if err != nil {
			return infra.WrapRepoErr(t.store.logger, infra.KindStoreFailure, "encode reservation", err)
		}
		ops.Inserts = append(ops.Inserts, insertOp{
			ID:    member(res.ID()),
			FP:    res.Fingerprint().String(),
			Score: strconv.FormatInt(res.ExpiresAt().UnixMicro(), 10),
			Data:  string(data),
		})
	}

	payload, err := json.Marshal(ops)
	if err != nil {
		return infra.WrapRepoErr(t.store.logger, infra.KindStoreFailure, "encode commit", err)
	}

	err = commitScript.Run(ctx, t.store.client, nil, t.store.prefix, string(payload)).Err()
	switch {
	case err == nil:
		return nil
	case strings.HasPrefix(err.Error(), duplicateReply):
		return infra.WrapRepoErr(t.store.logger, infra.KindDuplicateKey, "fingerprint reserved concurrently", err)
	default:
		return infra.WrapRepoErr(t.store.logger, infra.KindStoreFailure, "commit reservations", err)
	}
}

type record struct {
	ID           int64     `json:"id"`
	Fingerprint  string    `json:"fingerprint"`
	OwnerKey     string    `json:"owner_key"`
	ActiveKey    string    `json:"active_key"`
	RegisteredBy string    `json:"registered_by"`
	CreatedAt    time.Time `json:"created_at"`
	ExpiresAt    time.Time `json:"expires_at"`
}

func toRecord(res *registration.Reservation) record {
	return record{
		ID:           res.ID(),
		Fingerprint:  res.Fingerprint().String(),
		OwnerKey:     res.OwnerKey().String(),
		ActiveKey:    res.ActiveKey().String(),
		RegisteredBy: res.RegisteredBy(),
		CreatedAt:    res.CreatedAt(),
		ExpiresAt:    res.ExpiresAt(),
	}
}

type reservationRepository struct {
	tx     *redisTx
	logger *slog.Logger
}

func (r *reservationRepository) Insert(ctx context.Context, res *registration.Reservation) (int64, error) {
	if !r.tx.writable {
		return 0, infra.WrapRepoErr(r.logger, infra.KindStoreFailure, "insert in read-only transaction", nil)
	}

	existing, err := r.FindByFingerprint(ctx, res.Fingerprint())
	if err != nil {
		return 0, err
	}
	if existing != nil {
		return 0, infra.WrapRepoErr(r.logger, infra.KindDuplicateKey, "fingerprint already reserved", nil)
	}

	id, err := r.tx.store.client.Incr(ctx, r.tx.store.seqKey()).Result()
	if err != nil {
		if strings.Contains(err.Error(), "overflow") {
			return 0, infra.WrapRepoErr(r.logger, infra.KindIDExhausted, "reservation id space exhausted", err)
		}
		return 0, infra.WrapRepoErr(r.logger, infra.KindStoreFailure, "advance id sequence", err)
	}

	r.tx.inserts[res.Fingerprint()] = res.WithID(id)
	return id, nil
}

func (r *reservationRepository) FindByFingerprint(ctx context.Context, fp registration.Fingerprint) (*registration.Reservation, error) {
	if res, ok := r.tx.inserts[fp]; ok {
		return res, nil
	}

	holder, err := r.tx.store.client.Get(ctx, r.tx.store.fingerprintKey(fp)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindStoreFailure, "find reservation by fingerprint", err)
	}

	id, err := strconv.ParseInt(holder, 10, 64)
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindCorruptRecord, "decode fingerprint index", err)
	}
	if _, gone := r.tx.deletes[id]; gone {
		return nil, nil
	}

	data, err := r.tx.store.client.HGet(ctx, r.tx.store.recordKey(holder), "data").Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindStoreFailure, "load reservation", err)
	}
	return r.decode(data)
}

func (r *reservationRepository) Delete(_ context.Context, id int64) error {
	if !r.tx.writable {
		return infra.WrapRepoErr(r.logger, infra.KindStoreFailure, "delete in read-only transaction", nil)
	}
	for fp, res := range r.tx.inserts {
		if res.ID() == id {
			delete(r.tx.inserts, fp)
			return nil
		}
	}
	if id > 0 {
		r.tx.deletes[id] = struct{}{}
	}
	return nil
}

func (r *reservationRepository) ListExpired(ctx context.Context, now time.Time) ([]*registration.Reservation, error) {
	client := r.tx.store.client

	members, err := client.ZRangeByScore(ctx, r.tx.store.expiryKey(), &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(now.UnixMicro(), 10),
	}).Result()
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindStoreFailure, "walk expiry index", err)
	}

	candidates := make([]*registration.Reservation, 0, len(members)+len(r.tx.inserts))
	if len(members) > 0 {
		pipe := client.Pipeline()
		cmds := make([]*redis.StringCmd, 0, len(members))
		for _, m := range members {
			cmds = append(cmds, pipe.HGet(ctx, r.tx.store.recordKey(m), "data"))
		}
		if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
			return nil, infra.WrapRepoErr(r.logger, infra.KindStoreFailure, "load expired reservations", err)
		}

		for _, cmd := range cmds {
			data, err := cmd.Result()
			if errors.Is(err, redis.Nil) {
				continue
			}
			if err != nil {
				return nil, infra.WrapRepoErr(r.logger, infra.KindStoreFailure, "load expired reservation", err)
			}
			res, err := r.decode(data)
			if err != nil {
				return nil, err
			}
			if _, gone := r.tx.deletes[res.ID()]; !gone {
				candidates = append(candidates, res)
			}
		}
	}
	for _, res := range r.tx.inserts {
		candidates = append(candidates, res)
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if !a.ExpiresAt().Equal(b.ExpiresAt()) {
			return a.ExpiresAt().Before(b.ExpiresAt())
		}
		return a.ID() < b.ID()
	})

	// Scores are truncated to microseconds; the cut is exact here.
	var expired []*registration.Reservation
	for _, res := range candidates {
		if !res.IsExpired(now) {
			break
		}
		expired = append(expired, res)
	}
	return expired, nil
}

func (r *reservationRepository) decode(data string) (*registration.Reservation, error) {
	var rec record
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindCorruptRecord, "decode reservation", err)
	}
	fp, err := registration.ParseFingerprint(rec.Fingerprint)
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindCorruptRecord, "decode fingerprint", err)
	}
	var owner, active key.Record
	if err := owner.UnmarshalText([]byte(rec.OwnerKey)); err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindCorruptRecord, "decode owner key", err)
	}
	if err := active.UnmarshalText([]byte(rec.ActiveKey)); err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindCorruptRecord, "decode active key", err)
	}
	return registration.Reconstruct(
		rec.ID,
		fp,
		owner,
		active,
		rec.RegisteredBy,
		rec.CreatedAt.UTC(),
		rec.ExpiresAt.UTC(),
	), nil
}
