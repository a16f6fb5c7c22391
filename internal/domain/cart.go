package domain

const (
	MinLineQuantity = 1
	MaxLineQuantity = 5
)

// CartLine is a product with its quantity. At most one line exists per product id.
type CartLine struct {
	Product  `bson:",inline"`
	Quantity int `json:"quantity" bson:"quantity"`
}

// Subtotal treats an unpriced line as zero.
func (l CartLine) Subtotal() int64 {
	if l.PriceINR == nil {
		return 0
	}
	return *l.PriceINR * int64(l.Quantity)
}

// Cart is the ordered set of lines, in insertion order.
type Cart struct {
	Lines      []CartLine `json:"lines"`
	TotalPrice int64      `json:"total_price"`
	TotalCount int        `json:"total_count"`
	Visible    bool       `json:"visible"`
}
