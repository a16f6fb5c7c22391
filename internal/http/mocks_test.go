package http

import (
	"context"
	"errors"
	"sync"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/events"
	"github.com/fjod/go_cart/storefront/internal/identity"
)

var errBackendDown = errors.New("backend unavailable")

func price(v int64) *int64 { return &v }

type MockAuth struct {
	state    domain.AuthState
	err      error
	lastCred identity.Credentials
	signOuts int
}

func (m *MockAuth) SignIn(_ context.Context, creds identity.Credentials) (domain.AuthState, error) {
	return m.authenticate(creds)
}

func (m *MockAuth) SignUp(_ context.Context, creds identity.Credentials) (domain.AuthState, error) {
	return m.authenticate(creds)
}

func (m *MockAuth) authenticate(creds identity.Credentials) (domain.AuthState, error) {
	m.lastCred = creds
	if m.err != nil {
		return domain.AuthState{}, m.err
	}
	m.state = domain.AuthState{
		IsAuthenticated: true,
		User:            &domain.User{ID: "uid-1", Email: creds.Email, Token: "secret-token"},
	}
	return m.state, nil
}

func (m *MockAuth) SignOut(context.Context) error {
	m.signOuts++
	m.state = domain.AuthState{}
	return m.err
}

func (m *MockAuth) State() domain.AuthState { return m.state }

type MockCatalog struct {
	products     []domain.Product
	err          error
	lastCategory string
	lastTerm     string
	refreshes    int
}

func (m *MockCatalog) Find(_ context.Context, category, term string) ([]domain.Product, error) {
	m.lastCategory, m.lastTerm = category, term
	if m.err != nil {
		return nil, m.err
	}
	return m.products, nil
}

func (m *MockCatalog) GetProduct(_ context.Context, id domain.ProductID) (domain.Product, error) {
	if m.err != nil {
		return domain.Product{}, m.err
	}
	for _, p := range m.products {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Product{}, &domain.FetchError{Source: "catalog", StatusCode: 404, Err: domain.ErrProductNotFound}
}

func (m *MockCatalog) Categories(context.Context) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []string
	seen := map[string]bool{}
	for _, p := range m.products {
		if !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	return out, nil
}

func (m *MockCatalog) Invalidate(context.Context) error {
	if m.err != nil {
		return m.err
	}
	m.refreshes++
	return nil
}

// MockCart keeps lines in memory and fails every mutation with err when set
type MockCart struct {
	lines   []domain.CartLine
	visible bool
	err     error
}

func (m *MockCart) View() domain.Cart {
	lines := append([]domain.CartLine{}, m.lines...)
	var total int64
	for _, l := range lines {
		total += l.Subtotal()
	}
	return domain.Cart{Lines: lines, TotalPrice: total, TotalCount: len(lines), Visible: m.visible}
}

func (m *MockCart) AddItem(_ context.Context, product domain.Product, qty int) error {
	if m.err != nil {
		return m.err
	}
	for i := range m.lines {
		if m.lines[i].ID == product.ID {
			m.lines[i].Quantity += qty
			return nil
		}
	}
	m.lines = append(m.lines, domain.CartLine{Product: product, Quantity: qty})
	return nil
}

func (m *MockCart) SetQuantity(_ context.Context, id domain.ProductID, qty int) error {
	if m.err != nil {
		return m.err
	}
	for i := range m.lines {
		if m.lines[i].ID == id {
			m.lines[i].Quantity = qty
			return nil
		}
	}
	return domain.ErrLineNotFound
}

func (m *MockCart) RemoveItem(_ context.Context, id domain.ProductID) error {
	if m.err != nil {
		return m.err
	}
	for i := range m.lines {
		if m.lines[i].ID == id {
			m.lines = append(m.lines[:i], m.lines[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *MockCart) Clear(context.Context) error {
	if m.err != nil {
		return m.err
	}
	m.lines = nil
	return nil
}

func (m *MockCart) SetVisible(visible bool) { m.visible = visible }

type MockCheckout struct {
	state       domain.FormState
	err         error
	placed      []*domain.Order
	boughtNow   []domain.Product
	lastDetails domain.CustomerDetails
}

func (m *MockCheckout) State() domain.FormState {
	if m.state == "" {
		return domain.FormStateClosed
	}
	return m.state
}

func (m *MockCheckout) Open(context.Context) error {
	if m.err != nil {
		return m.err
	}
	m.state = domain.FormStateOpen
	return nil
}

func (m *MockCheckout) Close() error {
	m.state = domain.FormStateClosed
	return nil
}

func (m *MockCheckout) BuyNow(_ context.Context, product domain.Product) error {
	if m.err != nil {
		return m.err
	}
	m.boughtNow = append(m.boughtNow, product)
	m.state = domain.FormStateOpen
	return nil
}

func (m *MockCheckout) Submit(_ context.Context, details domain.CustomerDetails) ([]*domain.Order, error) {
	m.lastDetails = details
	if m.err != nil {
		return m.placed, m.err
	}
	m.state = domain.FormStateClosed
	return m.placed, nil
}

type MockOrders struct {
	orders      []*domain.Order
	status      domain.OrderStatus
	err         error
	lastRequest *domain.OrderRequest
}

func (m *MockOrders) SubmitOne(_ context.Context, req domain.OrderRequest) (*domain.Order, error) {
	m.lastRequest = &req
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Order{ID: "o-new", CartLine: req.Line, OwnerID: "uid-1"}, nil
}

func (m *MockOrders) FetchForCurrentUser(context.Context) ([]*domain.Order, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.orders, nil
}

func (m *MockOrders) Status() domain.OrderStatus { return m.status }

// MockEvents hands out the latest handler so tests can push events
type MockEvents struct {
	mu           sync.Mutex
	handler      events.Handler
	subscribed   chan struct{}
	unsubscribed chan struct{}
}

func NewMockEvents() *MockEvents {
	return &MockEvents{
		subscribed:   make(chan struct{}, 1),
		unsubscribed: make(chan struct{}, 1),
	}
}

func (m *MockEvents) Subscribe(h events.Handler) func() {
	m.mu.Lock()
	m.handler = h
	m.mu.Unlock()
	m.subscribed <- struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() { m.unsubscribed <- struct{}{} })
	}
}

func (m *MockEvents) Emit(ev events.Event) {
	m.mu.Lock()
	h := m.handler
	m.mu.Unlock()
	h(ev)
}
