package stock

// ItemKey identifies a product variant with its own stock count.
type ItemKey struct {
	ProductID string `json:"product_id"`
	Variant   string `json:"variant"`
}

// Item is a quantity against a variant, the unit of reservation and
// settlement.
type Item struct {
	ProductID string `json:"product_id"`
	Variant   string `json:"variant"`
	Qty       int    `json:"qty"`
}

func (it Item) Key() ItemKey { return ItemKey{ProductID: it.ProductID, Variant: it.Variant} }
