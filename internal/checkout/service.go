// Package checkout orchestrates order placement: cart validation,
// pricing, stock hold (UPI) or immediate commit (COD), order creation and
// payment setup.
package checkout

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nishkarsh/go-shop-api/internal/apperr"
	"github.com/nishkarsh/go-shop-api/internal/cart"
	"github.com/nishkarsh/go-shop-api/internal/gateway"
	"github.com/nishkarsh/go-shop-api/internal/orders"
	"github.com/nishkarsh/go-shop-api/internal/pricing"
	"github.com/nishkarsh/go-shop-api/internal/stock"
)

type CartStore interface {
	Validate(ctx context.Context, owner cart.Owner, refs []cart.ItemRef) (cart.ValidationResult, error)
	ClearProducts(ctx context.Context, owner cart.Owner, productIDs []string) error
}

type Pricer interface {
	Quote(ctx context.Context, subtotalPaise int, zip string) (pricing.Quote, error)
}

type Ledger interface {
	Reserve(ctx context.Context, items []stock.Item) error
	Unreserve(ctx context.Context, items []stock.Item)
	ReservedMany(ctx context.Context, keys []stock.ItemKey) map[stock.ItemKey]int
}

type StockCommitter interface {
	Decrement(ctx context.Context, items []stock.Item) error
}

type OrderStore interface {
	Create(ctx context.Context, in orders.NewOrder) (orders.Order, error)
	CreatePayment(ctx context.Context, orderID string, method orders.Method, status orders.PaymentStatus) error
}

type SnapshotStore interface {
	Save(ctx context.Context, token string, snap stock.Snapshot) error
}

type PaymentGateway interface {
	CreateOrder(ctx context.Context, customerPhone string, amountPaise int, orderID, verificationToken string) (gateway.CreateOrderResult, error)
}

type Service struct {
	Cart      CartStore
	Pricer    Pricer
	Ledger    Ledger
	Stock     StockCommitter
	Orders    OrderStore
	Snapshots SnapshotStore
	Gateway   PaymentGateway
}

type Address struct {
	FullName       string `json:"full_name"`
	Phone          string `json:"phone"`
	AlternatePhone string `json:"alternate_phone,omitempty"`
	Line1          string `json:"line1"`
	Line2          string `json:"line2,omitempty"`
	Landmark       string `json:"landmark,omitempty"`
	City           string `json:"city"`
	State          string `json:"state"`
	Country        string `json:"country"`
	ZipCode        string `json:"zip_code"`
}

type Customer struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type Request struct {
	Owner    cart.Owner
	UserID   string
	Items    []cart.ItemRef
	Address  Address
	Customer Customer
}

type Result struct {
	OrderID     string `json:"order_id"`
	OrderNumber string `json:"order_number"`
	AmountPaise int    `json:"amount_paise"`
	PaymentURL  string `json:"payment_url,omitempty"`
}

// UPI validates and prices the cart, soft-reserves every line, creates
// the PENDING order plus payment, snapshots the reservation under a
// fresh verification token, and asks the gateway for a payment URL.
func (s *Service) UPI(ctx context.Context, req Request) (Result, error) {
	validated, quote, err := s.validateAndPrice(ctx, req)
	if err != nil {
		return Result{}, err
	}
	items := reservedItems(validated)

	// Soft hold. No durable stock is touched; expiry is the safety net
	// if we crash before the order exists.
	if err := s.Ledger.Reserve(ctx, items); err != nil {
		return Result{}, apperr.Internal(err)
	}

	order, err := s.createOrder(ctx, req, validated, quote)
	if err != nil {
		s.Ledger.Unreserve(ctx, items)
		return Result{}, err
	}

	token := stock.NewToken()
	snap := stock.Snapshot{
		OrderID:     order.ID,
		UserID:      req.UserID,
		AmountPaise: quote.FinalTotalPaise,
		Items:       items,
	}
	if err := s.Snapshots.Save(ctx, token, snap); err != nil {
		s.Ledger.Unreserve(ctx, items)
		return Result{}, apperr.Internal(err)
	}

	if err := s.Orders.CreatePayment(ctx, order.ID, orders.MethodUPI, orders.PaymentPending); err != nil {
		s.Ledger.Unreserve(ctx, items)
		return Result{}, apperr.Internal(err)
	}

	gw, err := s.Gateway.CreateOrder(ctx, order.CustomerPhone, quote.FinalTotalPaise, order.ID, token)
	if err != nil {
		// Order and PENDING payment exist; the reconcile sweep will
		// resolve them, and the reservation expires on its own.
		return Result{}, err
	}

	s.clearCart(ctx, req)

	return Result{
		OrderID:     order.ID,
		OrderNumber: order.Number,
		AmountPaise: quote.FinalTotalPaise,
		PaymentURL:  gw.PaymentURL,
	}, nil
}

// COD validates and prices the cart, then commits durable stock in one
// row-locked transaction; no reservation is involved.
func (s *Service) COD(ctx context.Context, req Request) (Result, error) {
	validated, quote, err := s.validateAndPrice(ctx, req)
	if err != nil {
		return Result{}, err
	}

	if err := s.Stock.Decrement(ctx, reservedItems(validated)); err != nil {
		return Result{}, err
	}

	order, err := s.createOrder(ctx, req, validated, quote)
	if err != nil {
		return Result{}, err
	}
	if err := s.Orders.CreatePayment(ctx, order.ID, orders.MethodCOD, orders.PaymentCompleted); err != nil {
		return Result{}, apperr.Internal(err)
	}

	s.clearCart(ctx, req)

	return Result{
		OrderID:     order.ID,
		OrderNumber: order.Number,
		AmountPaise: quote.FinalTotalPaise,
	}, nil
}

// validateAndPrice runs steps the two payment methods share: cart
// validation against current availability (durable minus reserved), then
// the delivery quote. All-or-nothing: the first failing line aborts
// before anything is reserved.
func (s *Service) validateAndPrice(ctx context.Context, req Request) (cart.ValidationResult, pricing.Quote, error) {
	if len(req.Items) == 0 {
		return cart.ValidationResult{}, pricing.Quote{}, apperr.Validation("EMPTY_CHECKOUT", "no items in checkout request")
	}

	validated, err := s.Cart.Validate(ctx, req.Owner, req.Items)
	if err != nil {
		return cart.ValidationResult{}, pricing.Quote{}, apperr.Internal(err)
	}
	if !validated.OK {
		return cart.ValidationResult{}, pricing.Quote{}, apperr.Validation("CART_VALIDATION_FAILED", validated.Message)
	}

	keys := make([]stock.ItemKey, 0, len(validated.Items))
	for _, it := range validated.Items {
		keys = append(keys, stock.ItemKey{ProductID: it.ProductID, Variant: it.Variant})
	}
	reserved := s.Ledger.ReservedMany(ctx, keys)
	for _, it := range validated.Items {
		avail := stock.Available(it.StockLevel, reserved[stock.ItemKey{ProductID: it.ProductID, Variant: it.Variant}])
		if it.Qty > avail {
			return cart.ValidationResult{}, pricing.Quote{}, apperr.Validation("CART_VALIDATION_FAILED",
				fmt.Sprintf("Only %d available for %s (%s)", avail, it.Name, it.Variant))
		}
	}

	quote, err := s.Pricer.Quote(ctx, validated.SubtotalPaise, req.Address.ZipCode)
	if err != nil {
		return cart.ValidationResult{}, pricing.Quote{}, err
	}
	if !quote.CanDeliver {
		return cart.ValidationResult{}, pricing.Quote{}, apperr.Validation("DELIVERY_UNAVAILABLE", quote.Message)
	}
	return validated, quote, nil
}

func (s *Service) createOrder(ctx context.Context, req Request, validated cart.ValidationResult, quote pricing.Quote) (orders.Order, error) {
	in := orders.NewOrder{
		UserID:     req.UserID,
		TotalPaise: quote.FinalTotalPaise,

		CustomerName:  firstNonEmpty(req.Customer.Name, req.Address.FullName),
		CustomerEmail: req.Customer.Email,
		CustomerPhone: firstNonEmpty(req.Customer.Phone, req.Address.Phone),

		ShippingFullName: req.Address.FullName,
		ShippingPhone:    req.Address.Phone,
		ShippingAltPhone: req.Address.AlternatePhone,
		ShippingLine1:    req.Address.Line1,
		ShippingLine2:    req.Address.Line2,
		ShippingLandmark: req.Address.Landmark,
		ShippingCity:     req.Address.City,
		ShippingState:    req.Address.State,
		ShippingCountry:  req.Address.Country,
		ShippingZipCode:  req.Address.ZipCode,
	}
	for _, it := range validated.Items {
		in.Items = append(in.Items, orders.NewItem{
			ProductID:     it.ProductID,
			Variant:       it.Variant,
			Qty:           it.Qty,
			PricePaise:    it.PricePaise,
			SubtotalPaise: it.SubtotalPaise,

			ProductName:        it.Name,
			ProductDescription: it.Description,
			ProductImageURL:    it.ImageURL,
			ProductCategory:    it.Category,
		})
	}
	return s.Orders.Create(ctx, in)
}

func (s *Service) clearCart(ctx context.Context, req Request) {
	ids := make([]string, 0, len(req.Items))
	for _, ref := range req.Items {
		ids = append(ids, ref.ProductID)
	}
	if err := s.Cart.ClearProducts(ctx, req.Owner, ids); err != nil {
		slog.Warn("cart clear failed after order creation", "owner", string(req.Owner), "err", err)
	}
}

func reservedItems(v cart.ValidationResult) []stock.Item {
	out := make([]stock.Item, 0, len(v.Items))
	for _, it := range v.Items {
		out = append(out, stock.Item{ProductID: it.ProductID, Variant: it.Variant, Qty: it.Qty})
	}
	return out
}

func firstNonEmpty(xs ...string) string {
	for _, x := range xs {
		if x != "" {
			return x
		}
	}
	return ""
}
