package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nishkarsh/go-shop-api/internal/apperr"
	"github.com/nishkarsh/go-shop-api/internal/settlement"
)

type fakeSettler struct {
	got     settlement.Webhook
	settled bool
	err     error
}

func (f *fakeSettler) Handle(ctx context.Context, wh settlement.Webhook) (bool, error) {
	f.got = wh
	return f.settled, f.err
}

func postWebhook(t *testing.T, s Settler, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	(&PaymentsHandler{Settlement: s}).Register(r)

	req := httptest.NewRequest(http.MethodPost, "/payments/webhook", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestWebhookFormFieldsArePassedThrough(t *testing.T) {
	f := &fakeSettler{settled: true}
	rec := postWebhook(t, f, url.Values{
		"order_id": {"GW-1"},
		"status":   {"SUCCESS"},
		"remark1":  {"tok123"},
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, settlement.Webhook{OrderID: "GW-1", Status: "SUCCESS", Token: "tok123"}, f.got)
	assert.Contains(t, rec.Body.String(), `"success":true`)
}

func TestWebhookFailedPaymentStillAnswers200(t *testing.T) {
	f := &fakeSettler{settled: false}
	rec := postWebhook(t, f, url.Values{
		"order_id": {"GW-1"},
		"status":   {"FAILURE"},
		"remark1":  {"tok123"},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Payment not successful")
}

func TestWebhookUnknownTokenIs404(t *testing.T) {
	f := &fakeSettler{err: apperr.NotFound("RESERVATION_NOT_FOUND", "no reservation for token")}
	rec := postWebhook(t, f, url.Values{
		"status":  {"SUCCESS"},
		"remark1": {"stale"},
	})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "RESERVATION_NOT_FOUND")
}

func TestWebhookMissingTokenIs400(t *testing.T) {
	f := &fakeSettler{err: apperr.Validation("MISSING_TOKEN", "missing verification token")}
	rec := postWebhook(t, f, url.Values{"status": {"SUCCESS"}})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "MISSING_TOKEN")
}
