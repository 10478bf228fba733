package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrder(t *testing.T) {
	var gotForm map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/create-order", r.URL.Path)
		require.NoError(t, r.ParseForm())
		gotForm = map[string]string{
			"customer_mobile": r.PostFormValue("customer_mobile"),
			"user_token":      r.PostFormValue("user_token"),
			"amount":          r.PostFormValue("amount"),
			"order_id":        r.PostFormValue("order_id"),
			"redirect_url":    r.PostFormValue("redirect_url"),
			"remark1":         r.PostFormValue("remark1"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":true,"message":"ok","result":{"orderId":"GW-1","payment_url":"https://pay.example/x"}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "tok-123", "https://shop.example.com/payment/result/")
	res, err := c.CreateOrder(context.Background(), "9999988888", 12_345, "order-1", "deadbeef")
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/x", res.PaymentURL)
	assert.Equal(t, "GW-1", res.GatewayOrderID)

	assert.Equal(t, "9999988888", gotForm["customer_mobile"])
	assert.Equal(t, "tok-123", gotForm["user_token"])
	assert.Equal(t, "123.45", gotForm["amount"])
	assert.Equal(t, "order-1", gotForm["order_id"])
	assert.Equal(t, "https://shop.example.com/payment/result/order-1", gotForm["redirect_url"])
	assert.Equal(t, "deadbeef", gotForm["remark1"])
}

func TestCreateOrderRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// string "false" is how the API spells failure
		_, _ = w.Write([]byte(`{"status":"false","message":"token invalid"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "bad", "https://x/")
	_, err := c.CreateOrder(context.Background(), "9", 100, "o", "t")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token invalid")
}

func TestCheckOrderStatus(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		found   bool
		success bool
		failed  bool
		txnRef  string
	}{
		{"not found", `{"status":"ok","message":"Order not found","result":null}`, false, false, false, ""},
		{"success via status", `{"status":"ok","result":{"status":"SUCCESS","utr":"UTR1"}}`, true, true, false, "UTR1"},
		{"success via txnStatus", `{"status":"ok","result":{"txnStatus":"COMPLETED","remark1":"tok"}}`, true, true, false, "tok"},
		{"failure", `{"status":"ok","result":{"status":"FAILURE","orderId":"GW-9"}}`, true, false, true, "GW-9"},
		{"still pending", `{"status":"ok","result":{"status":"PENDING"}}`, true, false, false, ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, "/api/check-order-status", r.URL.Path)
				_, _ = w.Write([]byte(c.body))
			}))
			defer srv.Close()

			cl := New(srv.URL, "tok", "https://x/")
			res, err := cl.CheckOrderStatus(context.Background(), "ORD-1")
			require.NoError(t, err)
			assert.Equal(t, c.found, res.Found)
			assert.Equal(t, c.success, res.Success)
			assert.Equal(t, c.failed, res.Failed)
			assert.Equal(t, c.txnRef, res.TxnRef)
		})
	}
}

func TestGatewayHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(srv.URL, "tok", "https://x/")
	_, err := c.CheckOrderStatus(context.Background(), "ORD-1")
	assert.Error(t, err)
}
