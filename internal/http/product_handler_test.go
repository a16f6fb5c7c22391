package http

import (
	"net/http"
	"testing"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListProducts_PassesFilters(t *testing.T) {
	router, ts := setupRouter()

	rec := doRequest(t, router, http.MethodGet, "/api/v1/products/?category=jewelery&q=ring", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "jewelery", ts.catalog.lastCategory)
	assert.Equal(t, "ring", ts.catalog.lastTerm)
	assert.Len(t, decodeBody[[]domain.Product](t, rec), 2)
}

func TestListProducts_EmptyIsArray(t *testing.T) {
	router, ts := setupRouter()
	ts.catalog.products = nil

	rec := doRequest(t, router, http.MethodGet, "/api/v1/products/", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestListProducts_CatalogDown(t *testing.T) {
	router, ts := setupRouter()
	ts.catalog.err = &domain.FetchError{Source: "catalog", StatusCode: 503, Err: errBackendDown}

	rec := doRequest(t, router, http.MethodGet, "/api/v1/products/", "")

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "fetch_error", decodeBody[ErrorResponse](t, rec).Code)
}

func TestListCategories(t *testing.T) {
	router, _ := setupRouter()

	rec := doRequest(t, router, http.MethodGet, "/api/v1/products/categories", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"men's clothing", "jewelery"}, decodeBody[[]string](t, rec))
}

func TestGetProduct(t *testing.T) {
	router, _ := setupRouter()

	rec := doRequest(t, router, http.MethodGet, "/api/v1/products/1", "")

	require.Equal(t, http.StatusOK, rec.Code)
	product := decodeBody[domain.Product](t, rec)
	assert.Equal(t, domain.ProductID("1"), product.ID)
	require.NotNil(t, product.PriceINR)
	assert.Equal(t, int64(830), *product.PriceINR)
}

func TestGetProduct_Unpriced(t *testing.T) {
	router, _ := setupRouter()

	rec := doRequest(t, router, http.MethodGet, "/api/v1/products/2", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decodeBody[domain.Product](t, rec).PriceINR)
}

func TestGetProduct_NotFound(t *testing.T) {
	router, _ := setupRouter()

	rec := doRequest(t, router, http.MethodGet, "/api/v1/products/999", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeBody[ErrorResponse](t, rec).Code)
}

func TestRefreshProducts(t *testing.T) {
	router, ts := setupRouter()

	rec := doRequest(t, router, http.MethodPost, "/api/v1/products/refresh", "")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 1, ts.catalog.refreshes)
}

func TestRefreshProducts_CatalogDown(t *testing.T) {
	router, ts := setupRouter()
	ts.catalog.err = &domain.FetchError{Source: "catalog", Err: errBackendDown}

	rec := doRequest(t, router, http.MethodPost, "/api/v1/products/refresh", "")

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Zero(t, ts.catalog.refreshes)
}
