package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nishkarsh/go-shop-api/internal/pricing"
	"github.com/nishkarsh/go-shop-api/internal/session"
	"github.com/nishkarsh/go-shop-api/internal/stock"
)

type AdminHandler struct {
	Settings *pricing.SettingsRepo
	Pricer   *pricing.Engine
	Stock    *stock.Store
}

type adjustStockReq struct {
	Stock int `json:"stock"`
}

func (h *AdminHandler) Register(r *chi.Mux) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(session.RequireAdmin)
		r.Get("/settings/delivery", h.getSettings)
		r.Put("/settings/delivery", h.putSettings)
		r.Put("/stock/{productID}/{variant}", h.adjustStock)
	})
}

func (h *AdminHandler) getSettings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	s, err := h.Settings.Active(ctx)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// putSettings replaces the active delivery configuration and bumps the
// quote cache generation so stale quotes stop being served immediately.
func (h *AdminHandler) putSettings(w http.ResponseWriter, r *http.Request) {
	var s pricing.Settings
	if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Settings.Save(ctx, s); err != nil {
		writeErr(w, r, err)
		return
	}
	h.Pricer.Invalidate(ctx)
	writeJSON(w, http.StatusOK, s)
}

func (h *AdminHandler) adjustStock(w http.ResponseWriter, r *http.Request) {
	var body adjustStockReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	productID := chi.URLParam(r, "productID")
	variant := chi.URLParam(r, "variant")
	if err := h.Stock.AdjustStock(ctx, productID, variant, body.Stock); err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"product_id": productID,
		"variant":    variant,
		"stock":      body.Stock,
	})
}
