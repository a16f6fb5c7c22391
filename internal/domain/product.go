package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ProductID is the catalog identifier. The catalog API sends numbers, the
// snapshot and the HTTP surface use strings.
type ProductID string

func (id *ProductID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode product id: %w", err)
		}
		*id = ProductID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decode product id: %w", err)
	}
	*id = ProductID(n.String())
	return nil
}

func (id ProductID) String() string {
	return string(id)
}

type Rating struct {
	Rate  float64 `json:"rate" bson:"rate"`
	Count int     `json:"count" bson:"count"`
}

// Product is immutable once fetched. PriceINR is nil when the rate lookup
// failed and the product is unpriced.
type Product struct {
	ID          ProductID `json:"id" bson:"product_id"`
	Title       string    `json:"title" bson:"title"`
	Description string    `json:"description" bson:"description"`
	Category    string    `json:"category" bson:"category"`
	Image       string    `json:"image" bson:"image"`
	PriceUSD    float64   `json:"price" bson:"price_usd"`
	PriceINR    *int64    `json:"priceINR" bson:"price_inr"`
	Rating      Rating    `json:"rating" bson:"rating"`
}

func (p Product) Priced() bool {
	return p.PriceINR != nil
}
