package commands

import (
	"context"
	"log/slog"

	"account-provisioner/internal/domain/asset"
	"account-provisioner/internal/domain/key"
	"account-provisioner/internal/domain/provisioning"
	"account-provisioner/internal/domain/registration"
	"account-provisioner/internal/pkg/errs"
	"account-provisioner/internal/usecase/shared"
)

//go:generate mockgen -source=payment.go -destination=../../../tests/mock/commands/payment_mock.go -package=commandsmock

type PaymentOutcome string

const (
	PaymentProvisioned    PaymentOutcome = "provisioned"
	PaymentIgnored        PaymentOutcome = "ignored"
	PaymentRejectedFormat PaymentOutcome = "rejected_format"
	PaymentRejectedFunds  PaymentOutcome = "rejected_funds"
	PaymentFailed         PaymentOutcome = "failed"
)

// IgnoreReason says why a payment was not meant for this service.
type IgnoreReason string

const (
	IgnoreOutgoing        IgnoreReason = "outgoing"
	IgnoreNotAddressed    IgnoreReason = "not_addressed_to_self"
	IgnoreReferenceSender IgnoreReason = "reference_sender"
	IgnoreWrongSymbol     IgnoreReason = "wrong_symbol"
	IgnoreInvalidQuantity IgnoreReason = "invalid_quantity"
	IgnoreNonPositive     IgnoreReason = "non_positive_amount"
)

// PaymentEvent is an incoming token transfer as observed on the ledger.
type PaymentEvent struct {
	From     string
	To       string
	Quantity string
	Memo     string
}

type PaymentResult struct {
	Outcome      PaymentOutcome
	IgnoreReason IgnoreReason
	Batch        *provisioning.Batch
}

type PaymentCommands interface {
	// HandlePayment either provisions an account or does nothing. Routine
	// traffic is reported as PaymentIgnored with a nil error; malformed memos
	// and short payments are errors marked errs.ErrFormat and
	// errs.ErrInsufficientFunds.
	HandlePayment(ctx context.Context, ev PaymentEvent) (*PaymentResult, error)
}

type paymentCommandsImpl struct {
	uow        shared.UnitOfWork
	serializer *shared.Serializer
	policy     provisioning.Policy
	keys       key.Parser
	market     MarketReader
	emitter    CommandEmitter
	observer   Observer
	logger     *slog.Logger
}

func NewPaymentCommands(
	uow shared.UnitOfWork,
	serializer *shared.Serializer,
	policy provisioning.Policy,
	keys key.Parser,
	market MarketReader,
	emitter CommandEmitter,
	observer Observer,
	logger *slog.Logger,
) PaymentCommands {
	if observer == nil {
		observer = nopObserver{}
	}
	return &paymentCommandsImpl{
		uow:        uow,
		serializer: serializer,
		policy:     policy,
		keys:       keys,
		market:     market,
		emitter:    emitter,
		observer:   observer,
		logger:     logger,
	}
}

func (c *paymentCommandsImpl) HandlePayment(ctx context.Context, ev PaymentEvent) (*PaymentResult, error) {
	amount, reason := c.filter(ev)
	if reason != "" {
		c.observer.PaymentHandled(PaymentIgnored, provisioning.SourceMemo)
		c.logger.DebugContext(ctx, "payment ignored",
			slog.String("from", ev.From),
			slog.String("to", ev.To),
			slog.String("reason", string(reason)),
		)
		return &PaymentResult{Outcome: PaymentIgnored, IgnoreReason: reason}, nil
	}

	var batch *provisioning.Batch
	err := c.serializer.Do(ctx, func(ctx context.Context) error {
		return c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
			repo := tx.Reservations()

			req, err := c.resolve(ctx, repo, ev.Memo)
			if err != nil {
				return err
			}

			market, err := c.market.RAMMarket(ctx)
			if err != nil {
				return errs.Wrap(err, "read ram market")
			}

			batch, err = c.policy.Plan(amount, req, market)
			if err != nil {
				return err
			}

			if err := c.emitter.Emit(ctx, batch); err != nil {
				return errs.Mark(errs.Wrap(err, "emit command batch"), errs.ErrCommandRejected)
			}

			// Consumed only once the host has the batch; a failure above
			// leaves the reservation live for a retry.
			if req.Source == provisioning.SourceReservation {
				return repo.Delete(ctx, req.ReservationID)
			}
			return nil
		})
	})
	if err != nil {
		outcome := classify(err)
		source := provisioning.SourceMemo
		if batch != nil {
			source = batch.Source
		}
		c.observer.PaymentHandled(outcome, source)
		c.logger.WarnContext(ctx, "payment not provisioned",
			slog.String("from", ev.From),
			slog.String("quantity", ev.Quantity),
			slog.String("outcome", string(outcome)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	c.observer.PaymentHandled(PaymentProvisioned, batch.Source)
	c.logger.InfoContext(ctx, "account provisioned",
		slog.String("batch_id", batch.ID.String()),
		slog.String("account", batch.Account.String()),
		slog.String("source", batch.Source.String()),
		slog.Int64("amount", batch.Breakdown.Amount),
		slog.Int64("fee", batch.Breakdown.Fee),
		slog.Int64("remaining", batch.Breakdown.Remaining),
	)
	return &PaymentResult{Outcome: PaymentProvisioned, Batch: batch}, nil
}

func (c *paymentCommandsImpl) filter(ev PaymentEvent) (int64, IgnoreReason) {
	switch {
	case ev.From == c.policy.Self:
		return 0, IgnoreOutgoing
	case ev.To != c.policy.Self:
		return 0, IgnoreNotAddressed
	case c.policy.ReferenceSender != "" && ev.From == c.policy.ReferenceSender:
		return 0, IgnoreReferenceSender
	}

	quantity, err := asset.Parse(ev.Quantity)
	if err != nil {
		return 0, IgnoreInvalidQuantity
	}
	if quantity.Symbol != c.policy.Core {
		return 0, IgnoreWrongSymbol
	}
	if quantity.Amount <= 0 {
		return 0, IgnoreNonPositive
	}
	return quantity.Amount, ""
}

func (c *paymentCommandsImpl) resolve(ctx context.Context, repo shared.ReservationRepository, memo string) (provisioning.Request, error) {
	res, err := repo.FindByFingerprint(ctx, registration.FingerprintOf(memo))
	if err != nil {
		return provisioning.Request{}, err
	}
	if res != nil {
		return c.policy.ReservationRequest(memo, res)
	}
	return c.policy.ParseMemo(memo, c.keys)
}

func classify(err error) PaymentOutcome {
	switch {
	case errs.Is(err, errs.ErrFormat):
		return PaymentRejectedFormat
	case errs.Is(err, errs.ErrInsufficientFunds):
		return PaymentRejectedFunds
	default:
		return PaymentFailed
	}
}
