package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nishkarsh/go-shop-api/internal/orders"
	"github.com/nishkarsh/go-shop-api/internal/session"
)

type OrdersHandler struct {
	Orders *orders.Repo
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Group(func(r chi.Router) {
		r.Use(session.RequireUser)
		r.Get("/orders", h.list)
		r.Get("/orders/{id}", h.get)
	})
}

func (h *OrdersHandler) list(w http.ResponseWriter, r *http.Request) {
	id, _ := session.FromContext(r.Context())
	user := id.(session.AuthenticatedUser)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	os, err := h.Orders.ListByUser(ctx, user.UserID)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, os)
}

// get scopes the lookup to the caller, so one user's order id is a 404
// for another.
func (h *OrdersHandler) get(w http.ResponseWriter, r *http.Request) {
	id, _ := session.FromContext(r.Context())
	user := id.(session.AuthenticatedUser)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Orders.Get(ctx, chi.URLParam(r, "id"), user.UserID)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}
