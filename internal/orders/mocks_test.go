package orders

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/events"
)

var errStoreDown = errors.New("store unavailable")

// MockRepository implements repository.OrderRepository in memory
type MockRepository struct {
	mu        sync.Mutex
	Inserted  []*domain.Order
	FailFor   map[domain.ProductID]bool
	ListErr   error
	ListOrder []*domain.Order
	clock     time.Time
}

func (m *MockRepository) InsertOrder(_ context.Context, order *domain.Order) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailFor[order.Product.ID] {
		return nil, errStoreDown
	}
	if m.clock.IsZero() {
		m.clock = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	m.clock = m.clock.Add(time.Second)
	stored := *order
	stored.CreatedAt = m.clock
	m.Inserted = append(m.Inserted, &stored)
	return &stored, nil
}

func (m *MockRepository) ListOrdersByOwner(_ context.Context, ownerID string) ([]*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	if m.ListOrder != nil {
		return m.ListOrder, nil
	}
	var out []*domain.Order
	for _, o := range m.Inserted {
		if o.OwnerID == ownerID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *MockRepository) InsertCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Inserted)
}

// MockIdentity implements Identity and AuthGate
type MockIdentity struct {
	mu   sync.Mutex
	User *domain.User
}

func (m *MockIdentity) CurrentUser() (domain.User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.User == nil {
		return domain.User{}, false
	}
	return *m.User, true
}

func (m *MockIdentity) IsAuthenticated() bool {
	_, ok := m.CurrentUser()
	return ok
}

func (m *MockIdentity) SignOut() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.User = nil
}

// MockPlaced implements PlacedPublisher
type MockPlaced struct {
	mu      sync.Mutex
	Batches [][]*domain.Order
	Err     error
}

func (m *MockPlaced) PublishOrdersPlaced(_ context.Context, _ string, orders []*domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Batches = append(m.Batches, orders)
	return m.Err
}

// RecordingPublisher keeps every published event
type RecordingPublisher struct {
	mu       sync.Mutex
	Topics   []events.Topic
	Payloads []any
}

func (p *RecordingPublisher) Publish(topic events.Topic, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Topics = append(p.Topics, topic)
	p.Payloads = append(p.Payloads, payload)
}

func (p *RecordingPublisher) FormStates() []domain.FormState {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []domain.FormState
	for i, topic := range p.Topics {
		if topic == events.TopicFormChanged {
			out = append(out, p.Payloads[i].(domain.FormState))
		}
	}
	return out
}

// MockCart implements Cart
type MockCart struct {
	mu       sync.Mutex
	lines    []domain.CartLine
	AddErr   error
	Resets   int
	ResetErr error
}

func (c *MockCart) Lines() []domain.CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.CartLine(nil), c.lines...)
}

func (c *MockCart) AddItem(_ context.Context, product domain.Product, qty int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.AddErr != nil {
		return c.AddErr
	}
	c.lines = append(c.lines, domain.CartLine{Product: product, Quantity: qty})
	return nil
}

func (c *MockCart) Reset(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Resets++
	if c.ResetErr != nil {
		return c.ResetErr
	}
	c.lines = nil
	return nil
}

// BlockingSubmitter parks every SubmitMany call until Release is closed
type BlockingSubmitter struct {
	Entered chan struct{}
	Release chan struct{}

	mu    sync.Mutex
	calls int
}

func NewBlockingSubmitter() *BlockingSubmitter {
	return &BlockingSubmitter{
		Entered: make(chan struct{}, 4),
		Release: make(chan struct{}),
	}
}

func (b *BlockingSubmitter) SubmitMany(ctx context.Context, reqs []domain.OrderRequest) ([]*domain.Order, error) {
	b.mu.Lock()
	b.calls++
	b.mu.Unlock()
	b.Entered <- struct{}{}

	select {
	case <-b.Release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	out := make([]*domain.Order, len(reqs))
	for i, req := range reqs {
		out[i] = &domain.Order{ID: fmt.Sprintf("o-%d", i), CartLine: req.Line}
	}
	return out, nil
}

func (b *BlockingSubmitter) Calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}
