// Package reconcile sweeps UPI orders whose webhook never arrived and
// resolves them against the gateway's status API.
package reconcile

import (
	"context"
	"log/slog"
	"time"

	"github.com/nishkarsh/go-shop-api/internal/gateway"
	"github.com/nishkarsh/go-shop-api/internal/notify"
	"github.com/nishkarsh/go-shop-api/internal/orders"
)

type OrderStore interface {
	StalePendingUPI(ctx context.Context, cutoff time.Time) ([]orders.PendingPayment, error)
	SetPaymentResult(ctx context.Context, orderID string, status orders.PaymentStatus, transactionID string, paidAt *time.Time) error
	UpdateStatus(ctx context.Context, orderID string, to orders.Status) error
}

type Gateway interface {
	CheckOrderStatus(ctx context.Context, orderNumber string) (gateway.StatusResult, error)
}

type Notifier interface {
	OrderUnplaced(payload notify.OrderUnplacedPayload)
}

// Job periodically resolves payments stuck in PENDING past the grace
// window. Stock for these orders was never committed; marking them
// UNPLACED releases nothing because the soft reservation has long
// expired by the time an order qualifies.
type Job struct {
	Orders   OrderStore
	Gateway  Gateway
	Notifier Notifier
	Grace    time.Duration
	Every    time.Duration
	Clock    func() time.Time
}

// Run sweeps on a fixed interval until ctx is cancelled.
func (j *Job) Run(ctx context.Context) {
	t := time.NewTicker(j.Every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			j.Sweep(ctx)
		}
	}
}

// Sweep performs one reconciliation pass. Failures on individual
// orders are logged and do not stop the pass.
func (j *Job) Sweep(ctx context.Context) {
	cutoff := j.now().Add(-j.Grace)
	pending, err := j.Orders.StalePendingUPI(ctx, cutoff)
	if err != nil {
		slog.Error("reconcile: listing stale payments failed", "err", err)
		return
	}
	if len(pending) == 0 {
		return
	}
	slog.Info("reconcile: sweeping stale payments", "count", len(pending))

	for _, p := range pending {
		if err := j.resolve(ctx, p); err != nil {
			slog.Error("reconcile: order unresolved",
				"order_id", p.OrderID, "order_number", p.OrderNumber, "err", err)
		}
	}
}

func (j *Job) resolve(ctx context.Context, p orders.PendingPayment) error {
	res, err := j.Gateway.CheckOrderStatus(ctx, p.OrderNumber)
	if err != nil {
		return err
	}

	switch {
	case !res.Found:
		// The gateway never saw this order, so no money can arrive.
		return j.unplace(ctx, p, "gateway has no record of the transaction")
	case res.Success:
		// Paid, but the webhook was lost and the reservation snapshot
		// with it. The order is confirmed without a stock commit; the
		// shortfall surfaces in the next durable count and needs a
		// manual stock adjustment.
		paidAt := res.PaidAt
		if paidAt.IsZero() {
			paidAt = j.now()
		}
		if err := j.Orders.SetPaymentResult(ctx, p.OrderID, orders.PaymentCompleted, res.TxnRef, &paidAt); err != nil {
			return err
		}
		if err := j.Orders.UpdateStatus(ctx, p.OrderID, orders.StatusConfirmed); err != nil {
			return err
		}
		slog.Warn("reconcile: confirmed without stock settlement",
			"order_id", p.OrderID, "order_number", p.OrderNumber, "txn_ref", res.TxnRef)
		return nil
	case res.Failed:
		return j.unplace(ctx, p, "payment failed at the gateway")
	default:
		// Still pending upstream; leave it for the next pass.
		slog.Info("reconcile: still pending at gateway",
			"order_id", p.OrderID, "order_number", p.OrderNumber)
		return nil
	}
}

func (j *Job) unplace(ctx context.Context, p orders.PendingPayment, reason string) error {
	if err := j.Orders.SetPaymentResult(ctx, p.OrderID, orders.PaymentFailed, "", nil); err != nil {
		return err
	}
	if err := j.Orders.UpdateStatus(ctx, p.OrderID, orders.StatusUnplaced); err != nil {
		return err
	}
	if j.Notifier != nil {
		j.Notifier.OrderUnplaced(notify.OrderUnplacedPayload{
			OrderID:     p.OrderID,
			OrderNumber: p.OrderNumber,
			Reason:      reason,
		})
	}
	slog.Info("reconcile: order unplaced",
		"order_id", p.OrderID, "order_number", p.OrderNumber, "reason", reason)
	return nil
}

func (j *Job) now() time.Time {
	if j.Clock != nil {
		return j.Clock()
	}
	return time.Now().UTC()
}
