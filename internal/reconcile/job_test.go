package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nishkarsh/go-shop-api/internal/gateway"
	"github.com/nishkarsh/go-shop-api/internal/notify"
	"github.com/nishkarsh/go-shop-api/internal/orders"
)

type statusChange struct {
	orderID string
	to      orders.Status
}

type paymentResult struct {
	orderID string
	status  orders.PaymentStatus
	txnRef  string
}

type fakeOrderStore struct {
	pending    []orders.PendingPayment
	listCutoff time.Time
	payments   []paymentResult
	statuses   []statusChange
}

func (f *fakeOrderStore) StalePendingUPI(ctx context.Context, cutoff time.Time) ([]orders.PendingPayment, error) {
	f.listCutoff = cutoff
	return f.pending, nil
}
func (f *fakeOrderStore) SetPaymentResult(ctx context.Context, orderID string, status orders.PaymentStatus, txnRef string, paidAt *time.Time) error {
	f.payments = append(f.payments, paymentResult{orderID, status, txnRef})
	return nil
}
func (f *fakeOrderStore) UpdateStatus(ctx context.Context, orderID string, to orders.Status) error {
	f.statuses = append(f.statuses, statusChange{orderID, to})
	return nil
}

type fakeGateway struct {
	results map[string]gateway.StatusResult
	errs    map[string]error
}

func (f *fakeGateway) CheckOrderStatus(ctx context.Context, number string) (gateway.StatusResult, error) {
	if err := f.errs[number]; err != nil {
		return gateway.StatusResult{}, err
	}
	return f.results[number], nil
}

type fakeUnplacedNotifier struct{ events []notify.OrderUnplacedPayload }

func (f *fakeUnplacedNotifier) OrderUnplaced(p notify.OrderUnplacedPayload) {
	f.events = append(f.events, p)
}

func fixedNow() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

func newJob(store *fakeOrderStore, gw *fakeGateway) (*Job, *fakeUnplacedNotifier) {
	n := &fakeUnplacedNotifier{}
	return &Job{
		Orders:   store,
		Gateway:  gw,
		Notifier: n,
		Grace:    time.Hour,
		Every:    time.Hour,
		Clock:    fixedNow,
	}, n
}

func TestSweepCutoffAppliesGrace(t *testing.T) {
	store := &fakeOrderStore{}
	job, _ := newJob(store, &fakeGateway{})
	job.Sweep(context.Background())
	assert.Equal(t, fixedNow().Add(-time.Hour), store.listCutoff)
}

func TestSweepUnknownOrderIsUnplaced(t *testing.T) {
	store := &fakeOrderStore{pending: []orders.PendingPayment{
		{PaymentID: "pay1", OrderID: "o1", OrderNumber: "ORD-1"},
	}}
	gw := &fakeGateway{results: map[string]gateway.StatusResult{
		"ORD-1": {Found: false},
	}}
	job, n := newJob(store, gw)

	job.Sweep(context.Background())

	require.Len(t, store.payments, 1)
	assert.Equal(t, orders.PaymentFailed, store.payments[0].status)
	require.Len(t, store.statuses, 1)
	assert.Equal(t, orders.StatusUnplaced, store.statuses[0].to)
	require.Len(t, n.events, 1)
	assert.Equal(t, "ORD-1", n.events[0].OrderNumber)
}

func TestSweepPaidOrderIsConfirmed(t *testing.T) {
	paid := time.Date(2026, 3, 1, 11, 30, 0, 0, time.UTC)
	store := &fakeOrderStore{pending: []orders.PendingPayment{
		{PaymentID: "pay1", OrderID: "o1", OrderNumber: "ORD-1"},
	}}
	gw := &fakeGateway{results: map[string]gateway.StatusResult{
		"ORD-1": {Found: true, Success: true, TxnRef: "UTR123", PaidAt: paid},
	}}
	job, n := newJob(store, gw)

	job.Sweep(context.Background())

	require.Len(t, store.payments, 1)
	assert.Equal(t, paymentResult{"o1", orders.PaymentCompleted, "UTR123"}, store.payments[0])
	require.Len(t, store.statuses, 1)
	assert.Equal(t, orders.StatusConfirmed, store.statuses[0].to)
	assert.Empty(t, n.events)
}

func TestSweepFailedOrderIsUnplaced(t *testing.T) {
	store := &fakeOrderStore{pending: []orders.PendingPayment{
		{PaymentID: "pay1", OrderID: "o1", OrderNumber: "ORD-1"},
	}}
	gw := &fakeGateway{results: map[string]gateway.StatusResult{
		"ORD-1": {Found: true, Failed: true},
	}}
	job, _ := newJob(store, gw)

	job.Sweep(context.Background())

	require.Len(t, store.statuses, 1)
	assert.Equal(t, orders.StatusUnplaced, store.statuses[0].to)
}

func TestSweepPendingOrderIsLeftAlone(t *testing.T) {
	store := &fakeOrderStore{pending: []orders.PendingPayment{
		{PaymentID: "pay1", OrderID: "o1", OrderNumber: "ORD-1"},
	}}
	gw := &fakeGateway{results: map[string]gateway.StatusResult{
		"ORD-1": {Found: true},
	}}
	job, _ := newJob(store, gw)

	job.Sweep(context.Background())

	assert.Empty(t, store.payments)
	assert.Empty(t, store.statuses)
}

func TestSweepGatewayErrorDoesNotStopPass(t *testing.T) {
	store := &fakeOrderStore{pending: []orders.PendingPayment{
		{PaymentID: "pay1", OrderID: "o1", OrderNumber: "ORD-1"},
		{PaymentID: "pay2", OrderID: "o2", OrderNumber: "ORD-2"},
	}}
	gw := &fakeGateway{
		errs:    map[string]error{"ORD-1": errors.New("timeout")},
		results: map[string]gateway.StatusResult{"ORD-2": {Found: true, Failed: true}},
	}
	job, _ := newJob(store, gw)

	job.Sweep(context.Background())

	// ORD-1 is skipped, ORD-2 still resolves
	require.Len(t, store.statuses, 1)
	assert.Equal(t, "o2", store.statuses[0].orderID)
}
