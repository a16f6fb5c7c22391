package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductID_DecodesNumberAndString(t *testing.T) {
	var products []Product
	err := json.Unmarshal([]byte(`[{"id":1,"title":"a","price":9.5},{"id":"p2","title":"b","price":1}]`), &products)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, ProductID("1"), products[0].ID)
	assert.Equal(t, ProductID("p2"), products[1].ID)
	assert.Nil(t, products[0].PriceINR)
	assert.False(t, products[0].Priced())
}

func TestProduct_UnpricedEncodesAsNull(t *testing.T) {
	data, err := json.Marshal(Product{ID: "p1"})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"priceINR":null`)
}

func TestCartLine_Subtotal(t *testing.T) {
	price := int64(100)
	line := CartLine{Product: Product{ID: "p1", PriceINR: &price}, Quantity: 3}
	assert.Equal(t, int64(300), line.Subtotal())

	unpriced := CartLine{Product: Product{ID: "p2"}, Quantity: 4}
	assert.Equal(t, int64(0), unpriced.Subtotal())
}

func TestCartLine_FlattensProductFields(t *testing.T) {
	data, err := json.Marshal(CartLine{Product: Product{ID: "p1", Title: "Shirt"}, Quantity: 2})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"p1","title":"Shirt","description":"","category":"","image":"","price":0,"priceINR":null,"rating":{"rate":0,"count":0},"quantity":2}`, string(data))
}
