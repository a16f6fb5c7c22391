package repository

import (
	"context"
	"errors"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

var (
	ErrDuplicateOrder   = errors.New("order already exists")
	ErrSnapshotNotFound = errors.New("snapshot not found")
)

// OrderRepository is the append-only orders collection.
// Consumers define this interface, not the MongoDB implementation
type OrderRepository interface {
	// InsertOrder writes order and returns it with the store-assigned CreatedAt.
	InsertOrder(ctx context.Context, order *domain.Order) (*domain.Order, error)
	// ListOrdersByOwner returns the owner's orders, newest first.
	ListOrdersByOwner(ctx context.Context, ownerID string) ([]*domain.Order, error)
}

// SnapshotStore is durable key-value storage scoped to one installation.
type SnapshotStore interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}
