package orders

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/events"
)

// Cart is the part of the cart store the order form drives.
type Cart interface {
	Lines() []domain.CartLine
	AddItem(ctx context.Context, product domain.Product, qty int) error
	// Reset empties the cart after its lines were ordered. It does not
	// depend on the session still being signed in.
	Reset(ctx context.Context) error
}

type AuthGate interface {
	IsAuthenticated() bool
}

type BatchSubmitter interface {
	SubmitMany(ctx context.Context, reqs []domain.OrderRequest) ([]*domain.Order, error)
}

// Form is the order form lifecycle: closed, open, submitting.
type Form struct {
	mu        sync.Mutex
	state     domain.FormState
	cart      Cart
	gate      AuthGate
	submitter BatchSubmitter
	publisher events.Publisher
}

func NewForm(cart Cart, gate AuthGate, submitter BatchSubmitter, publisher events.Publisher) *Form {
	if publisher == nil {
		publisher = events.Discard
	}
	return &Form{
		state:     domain.FormStateClosed,
		cart:      cart,
		gate:      gate,
		submitter: submitter,
		publisher: publisher,
	}
}

func (f *Form) State() domain.FormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Open shows the form. Opening an open form is a no-op. A submission in
// flight cannot be reopened.
func (f *Form) Open(_ context.Context) error {
	if !f.gate.IsAuthenticated() {
		return domain.ErrAuthRequired
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == domain.FormStateOpen {
		return nil
	}
	if err := rejectWhileSubmitting(f.state, domain.FormStateOpen); err != nil {
		return err
	}
	return f.transitionLocked(domain.FormStateOpen)
}

// Close hides the form. Closing a closed form is a no-op. A submission in
// flight cannot be closed.
func (f *Form) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == domain.FormStateClosed {
		return nil
	}
	if err := rejectWhileSubmitting(f.state, domain.FormStateClosed); err != nil {
		return err
	}
	return f.transitionLocked(domain.FormStateClosed)
}

// only Submit leaves the submitting state
func rejectWhileSubmitting(from, to domain.FormState) error {
	if from == domain.FormStateSubmitting {
		return fmt.Errorf("%s -> %s while an order is being placed: %w", from, to, domain.ErrIllegalTransition)
	}
	return nil
}

// BuyNow puts one unit of product in the cart and opens the form. A line
// already at the limit still opens the form.
func (f *Form) BuyNow(ctx context.Context, product domain.Product) error {
	if !f.gate.IsAuthenticated() {
		return domain.ErrAuthRequired
	}

	err := f.cart.AddItem(ctx, product, 1)
	if err != nil && !errors.Is(err, domain.ErrQuantityLimitExceeded) {
		return err
	}
	return f.Open(ctx)
}

// Submit places one order per cart line with details. Once every order is
// written the cart is reset and the form closes. If the reset fails the
// placed orders come back with a WriteError. Any failure before that leaves
// the form open.
func (f *Form) Submit(ctx context.Context, details domain.CustomerDetails) ([]*domain.Order, error) {
	f.mu.Lock()
	if f.state != domain.FormStateOpen {
		state := f.state
		f.mu.Unlock()
		return nil, fmt.Errorf("submit from %s: %w", state, domain.ErrIllegalTransition)
	}
	if !f.gate.IsAuthenticated() {
		f.mu.Unlock()
		return nil, domain.ErrAuthRequired
	}
	if err := f.transitionLocked(domain.FormStateSubmitting); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	f.mu.Unlock()

	lines := f.cart.Lines()
	if len(lines) == 0 {
		f.settle(domain.FormStateOpen)
		return nil, domain.ErrEmptyCart
	}

	reqs := make([]domain.OrderRequest, len(lines))
	for i, line := range lines {
		d := details
		reqs[i] = domain.OrderRequest{Line: line, Customer: &d}
	}

	placed, err := f.submitter.SubmitMany(ctx, reqs)
	if err != nil {
		f.settle(domain.FormStateOpen)
		return placed, err
	}

	resetErr := f.cart.Reset(ctx)
	f.settle(domain.FormStateClosed)
	if resetErr != nil {
		log.Printf("cart reset after order error: %v", resetErr)
		return placed, &domain.WriteError{Err: fmt.Errorf("clear cart after order: %w", resetErr)}
	}
	return placed, nil
}

func (f *Form) settle(to domain.FormState) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.transitionLocked(to); err != nil {
		log.Printf("order form settle error: %v", err)
	}
}

func (f *Form) transitionLocked(to domain.FormState) error {
	if !CanTransition(f.state, to) {
		return fmt.Errorf("%s -> %s: %w", f.state, to, domain.ErrIllegalTransition)
	}
	f.state = to
	f.publisher.Publish(events.TopicFormChanged, to)
	return nil
}
