package cache

import (
	"context"
	"errors"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

var ErrCacheMiss = errors.New("cache miss")

// CatalogCache holds the decorated product list for one session.
type CatalogCache interface {
	Get(ctx context.Context, sessionID string) ([]domain.Product, error)
	Set(ctx context.Context, sessionID string, products []domain.Product) error
	Delete(ctx context.Context, sessionID string) error
}
