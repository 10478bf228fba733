package settlement

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nishkarsh/go-shop-api/internal/apperr"
	"github.com/nishkarsh/go-shop-api/internal/notify"
	"github.com/nishkarsh/go-shop-api/internal/orders"
	"github.com/nishkarsh/go-shop-api/internal/stock"
)

type fakeSnapshots struct {
	snaps   map[string]stock.Snapshot
	deleted []string
}

func (f *fakeSnapshots) Get(ctx context.Context, token string) (stock.Snapshot, bool, error) {
	s, ok := f.snaps[token]
	return s, ok, nil
}
func (f *fakeSnapshots) Delete(ctx context.Context, token string) error {
	delete(f.snaps, token)
	f.deleted = append(f.deleted, token)
	return nil
}

type paymentWrite struct {
	orderID string
	status  orders.PaymentStatus
	txnID   string
	paidAt  *time.Time
}

type fakePayments struct{ writes []paymentWrite }

func (f *fakePayments) SetPaymentResult(ctx context.Context, orderID string, status orders.PaymentStatus, txnID string, paidAt *time.Time) error {
	f.writes = append(f.writes, paymentWrite{orderID, status, txnID, paidAt})
	return nil
}

type fakeCommitter struct {
	settled map[string][]stock.Item
	err     error
}

func (f *fakeCommitter) SettleOrder(ctx context.Context, orderID string, items []stock.Item, adjust func(context.Context, stock.Item)) error {
	if f.err != nil {
		return f.err
	}
	if f.settled == nil {
		f.settled = map[string][]stock.Item{}
	}
	f.settled[orderID] = items
	for _, it := range items {
		adjust(ctx, it)
	}
	return nil
}

type fakeLedger struct{ settled []stock.Item }

func (f *fakeLedger) Settle(ctx context.Context, it stock.Item) error {
	f.settled = append(f.settled, it)
	return nil
}

type fakeNotifier struct{ confirmed []notify.OrderConfirmedPayload }

func (f *fakeNotifier) OrderConfirmed(p notify.OrderConfirmedPayload) {
	f.confirmed = append(f.confirmed, p)
}

type fakeOrderReader struct{ sum orders.Summary }

func (f *fakeOrderReader) Summary(ctx context.Context, orderID string) (orders.Summary, error) {
	return f.sum, nil
}

func snapshot() stock.Snapshot {
	return stock.Snapshot{
		OrderID:     "order-1",
		UserID:      "u1",
		AmountPaise: 34_900,
		Items:       []stock.Item{{ProductID: "p1", Variant: "M", Qty: 3}},
	}
}

func newService(snaps map[string]stock.Snapshot) (*Service, *fakeSnapshots, *fakePayments, *fakeCommitter, *fakeLedger, *fakeNotifier) {
	fsnap := &fakeSnapshots{snaps: snaps}
	fp := &fakePayments{}
	fc := &fakeCommitter{}
	fl := &fakeLedger{}
	fn := &fakeNotifier{}
	svc := &Service{
		Snapshots: fsnap, Payments: fp, Stock: fc, Ledger: fl,
		Orders:   &fakeOrderReader{sum: orders.Summary{OrderID: "order-1", Number: "ORD-X", CustomerName: "A", CustomerEmail: "a@example.com"}},
		Notifier: fn,
		Clock:    func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) },
	}
	return svc, fsnap, fp, fc, fl, fn
}

func TestHandleMissingToken(t *testing.T) {
	svc, _, fp, fc, _, _ := newService(nil)
	_, err := svc.Handle(context.Background(), Webhook{Status: "SUCCESS"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.From(err).Kind)
	assert.Empty(t, fp.writes)
	assert.Empty(t, fc.settled)
}

func TestHandleUnknownToken(t *testing.T) {
	svc, _, fp, fc, _, _ := newService(map[string]stock.Snapshot{})
	_, err := svc.Handle(context.Background(), Webhook{Status: "SUCCESS", Token: "nope"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.From(err).Kind)
	assert.Empty(t, fp.writes)
	assert.Empty(t, fc.settled)
}

func TestHandleFailureStatusLeavesStockUntouched(t *testing.T) {
	svc, fsnap, fp, fc, fl, fn := newService(map[string]stock.Snapshot{"tok": snapshot()})

	settled, err := svc.Handle(context.Background(), Webhook{OrderID: "GW-1", Status: "FAILURE", Token: "tok"})
	require.NoError(t, err)
	assert.False(t, settled)

	// payment recorded FAILED for auditability, nothing else moves
	require.Len(t, fp.writes, 1)
	assert.Equal(t, orders.PaymentFailed, fp.writes[0].status)
	assert.Nil(t, fp.writes[0].paidAt)
	assert.Empty(t, fc.settled)
	assert.Empty(t, fl.settled)
	assert.Empty(t, fsnap.deleted)
	assert.Empty(t, fn.confirmed)
}

func TestHandleSuccessSettles(t *testing.T) {
	svc, fsnap, fp, fc, fl, fn := newService(map[string]stock.Snapshot{"tok": snapshot()})

	settled, err := svc.Handle(context.Background(), Webhook{OrderID: "GW-1", Status: "SUCCESS", Token: "tok"})
	require.NoError(t, err)
	assert.True(t, settled)

	require.Len(t, fp.writes, 1)
	assert.Equal(t, orders.PaymentCompleted, fp.writes[0].status)
	assert.Equal(t, "tok", fp.writes[0].txnID)
	require.NotNil(t, fp.writes[0].paidAt)

	require.Contains(t, fc.settled, "order-1")
	assert.Equal(t, snapshot().Items, fc.settled["order-1"])
	assert.Equal(t, snapshot().Items, fl.settled)

	assert.Equal(t, []string{"tok"}, fsnap.deleted)

	require.Len(t, fn.confirmed, 1)
	assert.Equal(t, "ORD-X", fn.confirmed[0].OrderNumber)
	assert.Equal(t, "a@example.com", fn.confirmed[0].CustomerEmail)
}

func TestHandleRedeliveryAfterSettlementIsRejected(t *testing.T) {
	svc, _, fp, fc, _, _ := newService(map[string]stock.Snapshot{"tok": snapshot()})

	_, err := svc.Handle(context.Background(), Webhook{Status: "SUCCESS", Token: "tok"})
	require.NoError(t, err)

	// snapshot consumed: second delivery must not double-decrement
	_, err = svc.Handle(context.Background(), Webhook{Status: "SUCCESS", Token: "tok"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.From(err).Kind)
	assert.Len(t, fp.writes, 1)
	assert.Len(t, fc.settled["order-1"], 1)
}

func TestHandleCommitFailureLeavesOrderPending(t *testing.T) {
	svc, fsnap, fp, fc, _, fn := newService(map[string]stock.Snapshot{"tok": snapshot()})
	fc.err = apperr.Conflict("INSUFFICIENT_STOCK", "p1/M: need 3, have 1")

	settled, err := svc.Handle(context.Background(), Webhook{Status: "SUCCESS", Token: "tok"})
	require.Error(t, err)
	assert.False(t, settled)
	assert.Equal(t, "INSUFFICIENT_STOCK", apperr.From(err).Code)

	// payment write already happened (audit), snapshot kept for retry,
	// no confirmation published
	assert.Len(t, fp.writes, 1)
	assert.Empty(t, fsnap.deleted)
	assert.Empty(t, fn.confirmed)
}
