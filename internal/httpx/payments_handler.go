package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nishkarsh/go-shop-api/internal/settlement"
)

// Settler is implemented by settlement.Service.
type Settler interface {
	Handle(ctx context.Context, wh settlement.Webhook) (bool, error)
}

// PaymentsHandler receives the gateway's server-to-server callback. The
// gateway retries non-200 responses, so a cleanly handled failed payment
// still answers 200.
type PaymentsHandler struct {
	Settlement Settler
}

func (h *PaymentsHandler) Register(r *chi.Mux) {
	r.Post("/payments/webhook", h.webhook)
}

func (h *PaymentsHandler) webhook(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid form"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	settled, err := h.Settlement.Handle(ctx, settlement.Webhook{
		OrderID: r.PostFormValue("order_id"),
		Status:  r.PostFormValue("status"),
		Token:   r.PostFormValue("remark1"),
	})
	if err != nil {
		writeErr(w, r, err)
		return
	}
	if !settled {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": false,
			"message": "Payment not successful",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
