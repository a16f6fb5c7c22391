package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/events"
	"github.com/fjod/go_cart/storefront/internal/repository"
)

// SnapshotKey is where the cart lines live in durable storage.
const SnapshotKey = "cartItems"

// AuthGate reports whether the current actor may mutate the cart.
type AuthGate interface {
	IsAuthenticated() bool
}

// Store is the cart of one client installation. Lines keep insertion order
// and are unique by product id.
type Store struct {
	mu        sync.RWMutex
	lines     []domain.CartLine
	visible   bool
	snapshots repository.SnapshotStore
	gate      AuthGate
	publisher events.Publisher
}

// NewStore restores the persisted cart. A corrupt or unreadable snapshot is
// logged and the cart starts empty.
func NewStore(ctx context.Context, snapshots repository.SnapshotStore, gate AuthGate, publisher events.Publisher) *Store {
	if publisher == nil {
		publisher = events.Discard
	}
	s := &Store{
		snapshots: snapshots,
		gate:      gate,
		publisher: publisher,
	}

	lines, err := s.load(ctx)
	if err != nil {
		log.Printf("cart snapshot load error: %v", err)
	}
	s.lines = lines
	return s
}

func (s *Store) load(ctx context.Context) ([]domain.CartLine, error) {
	data, err := s.snapshots.Load(ctx, SnapshotKey)
	if errors.Is(err, repository.ErrSnapshotNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var lines []domain.CartLine
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, fmt.Errorf("unmarshal cart snapshot failed: %w", err)
	}

	// keep only lines that satisfy the invariants
	seen := make(map[domain.ProductID]struct{}, len(lines))
	valid := lines[:0]
	for _, l := range lines {
		if _, dup := seen[l.ID]; dup || l.ID == "" || !inRange(l.Quantity) {
			log.Printf("cart snapshot: dropping invalid line %q qty %d", l.ID, l.Quantity)
			continue
		}
		seen[l.ID] = struct{}{}
		valid = append(valid, l)
	}
	return valid, nil
}

// AddItem adds qty units of product. An existing line grows by qty; the
// result may not exceed the per-line limit.
func (s *Store) AddItem(ctx context.Context, product domain.Product, qty int) error {
	if !s.gate.IsAuthenticated() {
		return domain.ErrAuthRequired
	}
	if qty < domain.MinLineQuantity {
		return domain.NewValidationError("quantity", "min")
	}
	if product.ID == "" {
		return domain.NewValidationError("id", "required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := cloneLines(s.lines)
	if i := indexOf(next, product.ID); i >= 0 {
		if next[i].Quantity+qty > domain.MaxLineQuantity {
			return domain.ErrQuantityLimitExceeded
		}
		next[i].Quantity += qty
	} else {
		if qty > domain.MaxLineQuantity {
			return domain.ErrQuantityLimitExceeded
		}
		next = append(next, domain.CartLine{Product: product, Quantity: qty})
	}

	return s.commit(ctx, next)
}

// RemoveItem drops the line for id. Removing an absent id is a no-op.
func (s *Store) RemoveItem(ctx context.Context, id domain.ProductID) error {
	if !s.gate.IsAuthenticated() {
		return domain.ErrAuthRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.lines, id)
	if i < 0 {
		return nil
	}
	next := cloneLines(s.lines)
	next = append(next[:i], next[i+1:]...)
	return s.commit(ctx, next)
}

// SetQuantity replaces the quantity of an existing line. Anything below one
// removes the line.
func (s *Store) SetQuantity(ctx context.Context, id domain.ProductID, qty int) error {
	if qty < domain.MinLineQuantity {
		return s.RemoveItem(ctx, id)
	}
	if !s.gate.IsAuthenticated() {
		return domain.ErrAuthRequired
	}
	if qty > domain.MaxLineQuantity {
		return domain.ErrQuantityLimitExceeded
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.lines, id)
	if i < 0 {
		return domain.ErrLineNotFound
	}
	if s.lines[i].Quantity == qty {
		return nil
	}
	next := cloneLines(s.lines)
	next[i].Quantity = qty
	return s.commit(ctx, next)
}

// Clear empties the cart and removes the snapshot.
func (s *Store) Clear(ctx context.Context) error {
	if !s.gate.IsAuthenticated() {
		return domain.ErrAuthRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.snapshots.Delete(ctx, SnapshotKey); err != nil {
		log.Printf("cart snapshot delete error: %v", err)
		return &domain.WriteError{Err: err}
	}
	s.lines = nil
	s.publishLocked()
	return nil
}

// Reset empties the cart once its lines have been ordered. It needs no
// session, and the lines are dropped from memory even when the snapshot
// cannot be removed, so they are never ordered twice by this process.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = nil
	s.publishLocked()

	if err := s.snapshots.Delete(ctx, SnapshotKey); err != nil {
		log.Printf("cart snapshot delete error: %v", err)
		return &domain.WriteError{Err: err}
	}
	return nil
}

// commit persists next and only then makes it the current cart.
func (s *Store) commit(ctx context.Context, next []domain.CartLine) error {
	data, err := json.Marshal(next)
	if err != nil {
		return &domain.WriteError{Err: fmt.Errorf("marshal cart snapshot failed: %w", err)}
	}
	if err := s.snapshots.Save(ctx, SnapshotKey, data); err != nil {
		log.Printf("cart snapshot save error: %v", err)
		return &domain.WriteError{Err: err}
	}

	s.lines = next
	s.publishLocked()
	return nil
}

func (s *Store) publishLocked() {
	s.publisher.Publish(events.TopicCartChanged, s.viewLocked())
}

// Lines returns a copy of the cart lines in insertion order.
func (s *Store) Lines() []domain.CartLine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneLines(s.lines)
}

// Quantity returns the quantity held for id, zero when absent.
func (s *Store) Quantity(id domain.ProductID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := indexOf(s.lines, id); i >= 0 {
		return s.lines[i].Quantity
	}
	return 0
}

// TotalPrice sums priceINR*quantity. Unpriced lines count as zero, so the
// total understates a cart holding them.
func (s *Store) TotalPrice() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return totalPrice(s.lines)
}

// TotalCount is the number of distinct lines, not units.
func (s *Store) TotalCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.lines)
}

func (s *Store) Visible() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.visible
}

// SetVisible toggles the cart panel. It does not touch the lines.
func (s *Store) SetVisible(visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.visible == visible {
		return
	}
	s.visible = visible
	s.publishLocked()
}

// View is a consistent read of lines, totals and visibility.
func (s *Store) View() domain.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.viewLocked()
}

func (s *Store) viewLocked() domain.Cart {
	lines := cloneLines(s.lines)
	if lines == nil {
		lines = []domain.CartLine{}
	}
	return domain.Cart{
		Lines:      lines,
		TotalPrice: totalPrice(s.lines),
		TotalCount: len(s.lines),
		Visible:    s.visible,
	}
}

func totalPrice(lines []domain.CartLine) int64 {
	var total int64
	for _, l := range lines {
		total += l.Subtotal()
	}
	return total
}

func indexOf(lines []domain.CartLine, id domain.ProductID) int {
	for i, l := range lines {
		if l.ID == id {
			return i
		}
	}
	return -1
}

func inRange(qty int) bool {
	return qty >= domain.MinLineQuantity && qty <= domain.MaxLineQuantity
}

func cloneLines(lines []domain.CartLine) []domain.CartLine {
	if lines == nil {
		return nil
	}
	out := make([]domain.CartLine, len(lines))
	copy(out, lines)
	return out
}
