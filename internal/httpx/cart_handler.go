package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nishkarsh/go-shop-api/internal/cart"
	"github.com/nishkarsh/go-shop-api/internal/catalog"
	"github.com/nishkarsh/go-shop-api/internal/session"
	"github.com/nishkarsh/go-shop-api/internal/stock"
)

// CartHandler works for signed-in users and guests alike; the session
// middleware guarantees an identity with a cart owner.
type CartHandler struct {
	Cart    *cart.Repo
	Catalog *catalog.Repo
	Stock   *stock.Store
	Ledger  *stock.Ledger
}

type addItemReq struct {
	ProductID string `json:"product_id"`
	Variant   string `json:"variant"`
	Qty       int    `json:"qty"`
}

type updateQtyReq struct {
	Qty int `json:"qty"`
}

type cartLine struct {
	cart.Item
	Name          string      `json:"name"`
	ImageURL      string      `json:"image_url,omitempty"`
	PricePaise    int         `json:"price_paise"`
	SubtotalPaise int         `json:"subtotal_paise"`
	Availability  stock.Check `json:"availability"`
}

type cartView struct {
	Items         []cartLine `json:"items"`
	SubtotalPaise int        `json:"subtotal_paise"`
}

func (h *CartHandler) Register(r *chi.Mux) {
	r.Route("/cart", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/items", h.add)
		r.Patch("/items/{id}", h.updateQty)
		r.Delete("/items/{id}", h.remove)
	})
}

func owner(r *http.Request) (cart.Owner, bool) {
	id, ok := session.FromContext(r.Context())
	if !ok {
		return "", false
	}
	return id.CartOwner(), true
}

func (h *CartHandler) add(w http.ResponseWriter, r *http.Request) {
	ow, ok := owner(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	var body addItemReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	item, existed, err := h.Cart.Add(ctx, ow, body.ProductID, body.Variant, body.Qty)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	code := http.StatusCreated
	if existed {
		code = http.StatusOK
	}
	writeJSON(w, code, map[string]any{"item": item, "existed": existed})
}

func (h *CartHandler) updateQty(w http.ResponseWriter, r *http.Request) {
	ow, ok := owner(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	var body updateQtyReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Cart.UpdateQty(ctx, ow, chi.URLParam(r, "id"), body.Qty); err != nil {
		writeErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandler) remove(w http.ResponseWriter, r *http.Request) {
	ow, ok := owner(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Cart.Remove(ctx, ow, chi.URLParam(r, "id")); err != nil {
		writeErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// list returns the cart with each line priced and classified against
// sellable stock, so the client can prompt reduce/remove before the
// checkout call fails.
func (h *CartHandler) list(w http.ResponseWriter, r *http.Request) {
	ow, ok := owner(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	items, err := h.Cart.List(ctx, ow)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	if len(items) == 0 {
		writeJSON(w, http.StatusOK, cartView{Items: []cartLine{}})
		return
	}

	ids := make([]string, 0, len(items))
	keys := make([]stock.ItemKey, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
		keys = append(keys, stock.ItemKey{ProductID: it.ProductID, Variant: it.Variant})
	}
	products, err := h.Catalog.ByIDs(ctx, ids)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	reserved := h.Ledger.ReservedMany(ctx, keys)

	view := cartView{Items: make([]cartLine, 0, len(items))}
	for _, it := range items {
		line := cartLine{Item: it}
		if p, ok := products[it.ProductID]; ok {
			line.Name = p.Name
			line.ImageURL = p.ImageURL
			line.PricePaise = p.PricePaise
			line.SubtotalPaise = p.PricePaise * it.Qty
		}
		durable, err := h.Stock.Level(ctx, it.ProductID, it.Variant)
		if err != nil {
			writeErr(w, r, err)
			return
		}
		key := stock.ItemKey{ProductID: it.ProductID, Variant: it.Variant}
		avail := stock.Available(durable, reserved[key])
		line.Availability = stock.Classify(it.Qty, avail)
		view.Items = append(view.Items, line)
		view.SubtotalPaise += line.SubtotalPaise
	}
	writeJSON(w, http.StatusOK, view)
}
