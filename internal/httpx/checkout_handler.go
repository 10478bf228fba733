package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nishkarsh/go-shop-api/internal/cart"
	"github.com/nishkarsh/go-shop-api/internal/checkout"
	"github.com/nishkarsh/go-shop-api/internal/session"
)

// Checkouter is implemented by checkout.Service.
type Checkouter interface {
	UPI(ctx context.Context, req checkout.Request) (checkout.Result, error)
	COD(ctx context.Context, req checkout.Request) (checkout.Result, error)
}

type CheckoutHandler struct {
	Checkout Checkouter
}

type checkoutReq struct {
	Items    []cart.ItemRef    `json:"items"`
	Address  checkout.Address  `json:"address"`
	Customer checkout.Customer `json:"customer"`
}

func (h *CheckoutHandler) Register(r *chi.Mux) {
	r.Group(func(r chi.Router) {
		r.Use(session.RequireUser)
		r.Post("/checkout/upi", h.upi)
		r.Post("/checkout/cod", h.cod)
	})
}

func (h *CheckoutHandler) upi(w http.ResponseWriter, r *http.Request) {
	h.place(w, r, h.Checkout.UPI)
}

func (h *CheckoutHandler) cod(w http.ResponseWriter, r *http.Request) {
	h.place(w, r, h.Checkout.COD)
}

func (h *CheckoutHandler) place(w http.ResponseWriter, r *http.Request,
	fn func(context.Context, checkout.Request) (checkout.Result, error)) {

	var body checkoutReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	id, _ := session.FromContext(r.Context())
	user, ok := id.(session.AuthenticatedUser)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "sign in required"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := fn(ctx, checkout.Request{
		Owner:    user.CartOwner(),
		UserID:   user.UserID,
		Items:    body.Items,
		Address:  body.Address,
		Customer: body.Customer,
	})
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}
