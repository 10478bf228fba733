package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nishkarsh/go-shop-api/internal/catalog"
	"github.com/nishkarsh/go-shop-api/internal/stock"
)

type CatalogHandler struct {
	Catalog *catalog.Repo
	Stock   *stock.Store
	Ledger  *stock.Ledger
}

type variantAvailability struct {
	Variant string      `json:"variant"`
	Check   stock.Check `json:"availability"`
}

type productDetail struct {
	catalog.Product
	Variants []variantAvailability `json:"variants"`
}

func (h *CatalogHandler) Register(r *chi.Mux) {
	r.Get("/products", h.list)
	r.Get("/products/{id}", h.get)
}

func (h *CatalogHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ps, err := h.Catalog.List(ctx)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

// get returns the product with live availability per variant. Sellable
// stock is the durable count minus active soft reservations, so a
// variant mid-checkout already shows as scarcer.
func (h *CatalogHandler) get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.Catalog.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	levels, err := h.Stock.ByProduct(ctx, p.ID)
	if err != nil {
		writeErr(w, r, err)
		return
	}

	out := productDetail{Product: p, Variants: make([]variantAvailability, 0, len(levels))}
	for _, lv := range levels {
		reserved := h.Ledger.Reserved(ctx, lv.ProductID, lv.Variant)
		avail := stock.Available(lv.Qty, reserved)
		out.Variants = append(out.Variants, variantAvailability{
			Variant: lv.Variant,
			Check:   stock.Classify(1, avail),
		})
	}
	writeJSON(w, http.StatusOK, out)
}
