// Package gateway talks to the UPI QR payment provider. The API is
// form-encoded; trust on the inbound webhook side rests entirely on the
// opaque verification token passed here as remark1.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nishkarsh/go-shop-api/internal/apperr"
)

type Client struct {
	BaseURL     string
	Token       string
	RedirectURL string
	HTTP        *http.Client
}

func New(baseURL, token, redirectURL string) *Client {
	return &Client{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		Token:       token,
		RedirectURL: redirectURL,
		HTTP:        &http.Client{Timeout: 15 * time.Second},
	}
}

type CreateOrderResult struct {
	GatewayOrderID string `json:"orderId"`
	PaymentURL     string `json:"payment_url"`
}

type createOrderResponse struct {
	Status  json.RawMessage    `json:"status"` // boolean true on success, string "false" on failure
	Message string             `json:"message"`
	Result  *CreateOrderResult `json:"result"`
}

// CreateOrder requests a payment URL for the order. verificationToken
// rides along as remark1 and comes back untouched in the webhook.
func (c *Client) CreateOrder(ctx context.Context, customerPhone string, amountPaise int, orderID, verificationToken string) (CreateOrderResult, error) {
	form := url.Values{}
	form.Set("customer_mobile", customerPhone)
	form.Set("user_token", c.Token)
	form.Set("amount", formatAmount(amountPaise))
	form.Set("order_id", orderID)
	form.Set("redirect_url", c.RedirectURL+orderID)
	form.Set("remark1", verificationToken)

	var resp createOrderResponse
	if err := c.postForm(ctx, "/api/create-order", form, &resp); err != nil {
		return CreateOrderResult{}, err
	}
	if !statusOK(resp.Status) {
		msg := resp.Message
		if msg == "" {
			msg = "gateway rejected create-order"
		}
		return CreateOrderResult{}, apperr.Upstream("GATEWAY_CREATE_FAILED", msg, nil)
	}
	if resp.Result == nil || resp.Result.PaymentURL == "" {
		return CreateOrderResult{}, apperr.Upstream("GATEWAY_CREATE_FAILED", "missing result in gateway response", nil)
	}
	return *resp.Result, nil
}

// StatusResult maps the gateway's order-status triage: not found, a
// definite success or failure, or still pending (neither flag set).
type StatusResult struct {
	Found   bool
	Success bool
	Failed  bool
	TxnRef  string
	PaidAt  time.Time
}

type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Result  *struct {
		Status    string `json:"status"`    // SUCCESS | FAILURE
		TxnStatus string `json:"txnStatus"` // COMPLETED | FAILURE
		OrderID   string `json:"orderId"`
		UTR       string `json:"utr"`
		Remark1   string `json:"remark1"`
		Date      string `json:"date"`
	} `json:"result"`
}

func (c *Client) CheckOrderStatus(ctx context.Context, orderNumber string) (StatusResult, error) {
	form := url.Values{}
	form.Set("user_token", c.Token)
	form.Set("order_id", orderNumber)

	var resp statusResponse
	if err := c.postForm(ctx, "/api/check-order-status", form, &resp); err != nil {
		return StatusResult{}, err
	}

	r := resp.Result
	if r == nil {
		return StatusResult{Found: false}, nil
	}

	out := StatusResult{Found: true}
	switch {
	case r.Status == "SUCCESS" || r.TxnStatus == "COMPLETED":
		out.Success = true
	case r.Status == "FAILURE" || r.TxnStatus == "FAILURE":
		out.Failed = true
	}
	out.TxnRef = firstNonEmpty(r.UTR, r.Remark1, r.OrderID)
	if t, err := time.Parse(time.RFC3339, r.Date); err == nil {
		out.PaidAt = t
	} else {
		out.PaidAt = time.Now().UTC()
	}
	return out, nil
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path,
		strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := c.HTTP.Do(req)
	if err != nil {
		return apperr.Upstream("GATEWAY_UNREACHABLE", "payment gateway request failed", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return apperr.Upstream("GATEWAY_ERROR",
			fmt.Sprintf("payment gateway returned %d", res.StatusCode), nil)
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return apperr.Upstream("GATEWAY_BAD_RESPONSE", "undecodable gateway response", err)
	}
	return nil
}

// statusOK accepts boolean true; the API signals failure as either
// boolean false or the string "false".
func statusOK(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return s == "true" || s == `"true"`
}

func formatAmount(paise int) string {
	return fmt.Sprintf("%d.%02d", paise/100, paise%100)
}

func firstNonEmpty(xs ...string) string {
	for _, x := range xs {
		if x != "" {
			return x
		}
	}
	return ""
}
