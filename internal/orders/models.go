package orders

import "time"

// Order captures the customer and shipping details as a snapshot at
// creation time, independent of live user/address records.
type Order struct {
	ID         string    `json:"id"`
	Number     string    `json:"order_number"`
	UserID     string    `json:"user_id"`
	Status     Status    `json:"status"`
	TotalPaise int       `json:"total_paise"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email,omitempty"`
	CustomerPhone string `json:"customer_phone"`

	ShippingFullName  string `json:"shipping_full_name"`
	ShippingPhone     string `json:"shipping_phone"`
	ShippingAltPhone  string `json:"shipping_alt_phone,omitempty"`
	ShippingLine1     string `json:"shipping_line1"`
	ShippingLine2     string `json:"shipping_line2,omitempty"`
	ShippingLandmark  string `json:"shipping_landmark,omitempty"`
	ShippingCity      string `json:"shipping_city"`
	ShippingState     string `json:"shipping_state"`
	ShippingCountry   string `json:"shipping_country"`
	ShippingZipCode   string `json:"shipping_zip_code"`

	Items   []Item   `json:"items,omitempty"`
	Payment *Payment `json:"payment,omitempty"`
}

// Item snapshots the product at order time so later catalog edits do not
// rewrite order history.
type Item struct {
	ID            string `json:"id"`
	OrderID       string `json:"order_id"`
	ProductID     string `json:"product_id"`
	Variant       string `json:"variant"`
	Qty           int    `json:"qty"`
	PricePaise    int    `json:"price_paise"`
	SubtotalPaise int    `json:"subtotal_paise"`

	ProductName        string `json:"product_name"`
	ProductDescription string `json:"product_description,omitempty"`
	ProductImageURL    string `json:"product_image_url,omitempty"`
	ProductCategory    string `json:"product_category,omitempty"`
}

type Payment struct {
	ID            string        `json:"id"`
	OrderID       string        `json:"order_id"`
	Method        Method        `json:"method"`
	Status        PaymentStatus `json:"status"`
	TransactionID string        `json:"transaction_id,omitempty"`
	PaidAt        *time.Time    `json:"paid_at,omitempty"`
}

// NewOrder is the input to Create.
type NewOrder struct {
	UserID     string
	TotalPaise int

	CustomerName  string
	CustomerEmail string
	CustomerPhone string

	ShippingFullName string
	ShippingPhone    string
	ShippingAltPhone string
	ShippingLine1    string
	ShippingLine2    string
	ShippingLandmark string
	ShippingCity     string
	ShippingState    string
	ShippingCountry  string
	ShippingZipCode  string

	Items []NewItem
}

type NewItem struct {
	ProductID     string
	Variant       string
	Qty           int
	PricePaise    int
	SubtotalPaise int

	ProductName        string
	ProductDescription string
	ProductImageURL    string
	ProductCategory    string
}

// Summary is the slice of an order that notifications need.
type Summary struct {
	OrderID       string
	Number        string
	CustomerName  string
	CustomerEmail string
	Items         []Item
}

// PendingPayment is one row of the reconcile sweep.
type PendingPayment struct {
	PaymentID   string
	OrderID     string
	OrderNumber string
}
