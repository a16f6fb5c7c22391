package http

import (
	"context"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/events"
	"github.com/fjod/go_cart/storefront/internal/identity"
)

// The interfaces below are what the handlers need from the storefront.

type AuthService interface {
	SignIn(ctx context.Context, creds identity.Credentials) (domain.AuthState, error)
	SignUp(ctx context.Context, creds identity.Credentials) (domain.AuthState, error)
	SignOut(ctx context.Context) error
	State() domain.AuthState
}

type CatalogService interface {
	Find(ctx context.Context, category, term string) ([]domain.Product, error)
	GetProduct(ctx context.Context, id domain.ProductID) (domain.Product, error)
	Categories(ctx context.Context) ([]string, error)
	Invalidate(ctx context.Context) error
}

type CartService interface {
	View() domain.Cart
	AddItem(ctx context.Context, product domain.Product, qty int) error
	SetQuantity(ctx context.Context, id domain.ProductID, qty int) error
	RemoveItem(ctx context.Context, id domain.ProductID) error
	Clear(ctx context.Context) error
	SetVisible(visible bool)
}

type CheckoutService interface {
	State() domain.FormState
	Open(ctx context.Context) error
	Close() error
	BuyNow(ctx context.Context, product domain.Product) error
	Submit(ctx context.Context, details domain.CustomerDetails) ([]*domain.Order, error)
}

type OrdersService interface {
	SubmitOne(ctx context.Context, req domain.OrderRequest) (*domain.Order, error)
	FetchForCurrentUser(ctx context.Context) ([]*domain.Order, error)
	Status() domain.OrderStatus
}

type EventSource interface {
	Subscribe(h events.Handler) func()
}
