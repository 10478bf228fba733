// Package settlement converts a confirmed UPI payment into durable stock
// decrements and a CONFIRMED order. The verification token binds the
// gateway callback to its reservation snapshot; without it nothing is
// touched.
package settlement

import (
	"context"
	"log/slog"
	"time"

	"github.com/nishkarsh/go-shop-api/internal/apperr"
	"github.com/nishkarsh/go-shop-api/internal/notify"
	"github.com/nishkarsh/go-shop-api/internal/orders"
	"github.com/nishkarsh/go-shop-api/internal/stock"
)

type SnapshotStore interface {
	Get(ctx context.Context, token string) (stock.Snapshot, bool, error)
	Delete(ctx context.Context, token string) error
}

type PaymentStore interface {
	SetPaymentResult(ctx context.Context, orderID string, status orders.PaymentStatus, transactionID string, paidAt *time.Time) error
}

type StockCommitter interface {
	SettleOrder(ctx context.Context, orderID string, items []stock.Item, adjust func(context.Context, stock.Item)) error
}

type Ledger interface {
	Settle(ctx context.Context, it stock.Item) error
}

type Notifier interface {
	OrderConfirmed(payload notify.OrderConfirmedPayload)
}

type OrderReader interface {
	Summary(ctx context.Context, orderID string) (orders.Summary, error)
}

type Service struct {
	Snapshots SnapshotStore
	Payments  PaymentStore
	Stock     StockCommitter
	Ledger    Ledger
	Orders    OrderReader
	Notifier  Notifier
	Clock     func() time.Time
}

// Webhook is the inbound gateway notification. Token is remark1 from
// the create-order call.
type Webhook struct {
	OrderID string
	Status  string
	Token   string
}

const statusSuccess = "SUCCESS"

// Handle processes one webhook delivery. settled reports whether stock
// was committed; a failed payment is handled without error so the HTTP
// layer can acknowledge with 200 and stop gateway retries.
func (s *Service) Handle(ctx context.Context, wh Webhook) (settled bool, err error) {
	if wh.Token == "" {
		return false, apperr.Validation("MISSING_TOKEN", "missing verification token")
	}

	snap, found, err := s.Snapshots.Get(ctx, wh.Token)
	if err != nil {
		return false, apperr.Internal(err)
	}
	if !found {
		// expired, consumed, or forged: the single point of truth is gone
		return false, apperr.NotFound("RESERVATION_NOT_FOUND", "reservation not found or expired")
	}

	// Payment outcome is recorded regardless of what happens downstream.
	success := wh.Status == statusSuccess
	pstatus := orders.PaymentFailed
	var paidAt *time.Time
	if success {
		pstatus = orders.PaymentCompleted
		t := s.now()
		paidAt = &t
	}
	if err := s.Payments.SetPaymentResult(ctx, snap.OrderID, pstatus, wh.Token, paidAt); err != nil {
		return false, apperr.Internal(err)
	}

	if !success {
		return false, nil
	}

	// Row-locked re-check and decrement per line, ledger adjusted as
	// each line commits, order confirmed in the same transaction. A
	// shortfall here means the soft-reservation margin was violated
	// (e.g. an admin edit mid-flight); the whole transaction aborts and
	// the order stays PENDING for reconciliation.
	adjust := func(ctx context.Context, it stock.Item) {
		if err := s.Ledger.Settle(ctx, it); err != nil {
			slog.Warn("ledger adjust failed after decrement",
				"product_id", it.ProductID, "variant", it.Variant, "err", err)
		}
	}
	if err := s.Stock.SettleOrder(ctx, snap.OrderID, snap.Items, adjust); err != nil {
		return false, apperr.From(err)
	}

	// Token is consumed; deleting outside the transaction is safe.
	if err := s.Snapshots.Delete(ctx, wh.Token); err != nil {
		slog.Warn("snapshot delete failed", "order_id", snap.OrderID, "err", err)
	}

	s.notifyConfirmed(ctx, snap)
	return true, nil
}

// notifyConfirmed publishes the confirmation event. Strictly best
// effort: a lookup or publish problem never fails the webhook.
func (s *Service) notifyConfirmed(ctx context.Context, snap stock.Snapshot) {
	if s.Notifier == nil {
		return
	}
	payload := notify.OrderConfirmedPayload{
		OrderID:     snap.OrderID,
		AmountPaise: snap.AmountPaise,
	}
	if s.Orders != nil {
		if sum, err := s.Orders.Summary(ctx, snap.OrderID); err == nil {
			payload.OrderNumber = sum.Number
			payload.CustomerName = sum.CustomerName
			payload.CustomerEmail = sum.CustomerEmail
			for _, it := range sum.Items {
				payload.Items = append(payload.Items, notify.OrderItemSummary{
					ProductName: it.ProductName, Variant: it.Variant, Qty: it.Qty,
				})
			}
		} else {
			slog.Warn("order summary lookup failed for notification",
				"order_id", snap.OrderID, "err", err)
		}
	}
	s.Notifier.OrderConfirmed(payload)
}

func (s *Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now().UTC()
}
