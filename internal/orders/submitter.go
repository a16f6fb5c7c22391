package orders

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/events"
	"github.com/fjod/go_cart/storefront/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Identity yields the user every order is stamped with.
type Identity interface {
	CurrentUser() (domain.User, bool)
}

// PlacedPublisher announces a successful batch to downstream consumers.
type PlacedPublisher interface {
	PublishOrdersPlaced(ctx context.Context, ownerID string, orders []*domain.Order) error
}

type Submitter struct {
	repo      repository.OrderRepository
	identity  Identity
	publisher events.Publisher
	placed    PlacedPublisher

	mu     sync.RWMutex
	status domain.OrderStatus
}

// NewSubmitter builds a Submitter. placed may be nil.
func NewSubmitter(repo repository.OrderRepository, identity Identity, publisher events.Publisher, placed PlacedPublisher) *Submitter {
	if publisher == nil {
		publisher = events.Discard
	}
	return &Submitter{
		repo:      repo,
		identity:  identity,
		publisher: publisher,
		placed:    placed,
	}
}

// SubmitOne writes a single order for the current user.
func (s *Submitter) SubmitOne(ctx context.Context, req domain.OrderRequest) (*domain.Order, error) {
	user, ok := s.identity.CurrentUser()
	if !ok {
		return nil, domain.ErrAuthRequired
	}
	order, verr := prepare(req, user.ID, "")
	if verr != nil {
		return nil, verr
	}

	s.beginAdding()
	stored, err := s.repo.InsertOrder(ctx, order)
	if err != nil {
		log.Printf("order insert error: %v", err)
		werr := &domain.WriteError{Failed: []int{0}, Err: err}
		s.endAdding(werr)
		return nil, werr
	}
	s.endAdding(nil)

	s.announce(ctx, user.ID, []*domain.Order{stored})
	return stored, nil
}

// SubmitMany validates every request, then writes them all concurrently
// under the same owner. It succeeds only when every write succeeds; on a
// partial failure the error lists the failed indexes and the stored orders
// are still returned.
func (s *Submitter) SubmitMany(ctx context.Context, reqs []domain.OrderRequest) ([]*domain.Order, error) {
	user, ok := s.identity.CurrentUser()
	if !ok {
		return nil, domain.ErrAuthRequired
	}
	if len(reqs) == 0 {
		return nil, domain.ErrEmptyCart
	}

	pending := make([]*domain.Order, len(reqs))
	var verr *domain.ValidationError
	for i, req := range reqs {
		order, err := prepare(req, user.ID, fmt.Sprintf("orders[%d].", i))
		if err != nil {
			verr = verr.Merge(err)
			continue
		}
		pending[i] = order
	}
	if verr != nil {
		return nil, verr
	}

	s.beginAdding()

	stored := make([]*domain.Order, len(pending))
	errs := make([]error, len(pending))
	var g errgroup.Group
	for i, order := range pending {
		g.Go(func() error {
			stored[i], errs[i] = s.repo.InsertOrder(ctx, order)
			return nil
		})
	}
	_ = g.Wait()

	var failed []int
	var written []*domain.Order
	for i, err := range errs {
		if err != nil {
			log.Printf("order %d insert error: %v", i, err)
			failed = append(failed, i)
			continue
		}
		written = append(written, stored[i])
	}

	if len(failed) > 0 {
		werr := &domain.WriteError{Failed: failed, Err: errors.Join(collect(errs)...)}
		s.endAdding(werr)
		return written, werr
	}
	s.endAdding(nil)

	s.announce(ctx, user.ID, written)
	return written, nil
}

// FetchForCurrentUser returns the current user's orders, newest first.
func (s *Submitter) FetchForCurrentUser(ctx context.Context) ([]*domain.Order, error) {
	user, ok := s.identity.CurrentUser()
	if !ok {
		return nil, domain.ErrAuthRequired
	}

	s.setStatus(func(st *domain.OrderStatus) {
		st.Fetching = true
		st.FetchError = ""
	})

	orders, err := s.repo.ListOrdersByOwner(ctx, user.ID)
	if err != nil {
		log.Printf("orders fetch error: %v", err)
		ferr := &domain.FetchError{Source: "orders", Err: err}
		s.setStatus(func(st *domain.OrderStatus) {
			st.Fetching = false
			st.FetchError = ferr.Error()
		})
		return nil, ferr
	}

	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	s.setStatus(func(st *domain.OrderStatus) { st.Fetching = false })
	return orders, nil
}

// Status returns the add and fetch flags.
func (s *Submitter) Status() domain.OrderStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *Submitter) beginAdding() {
	s.setStatus(func(st *domain.OrderStatus) {
		st.Adding = true
		st.AddError = ""
	})
}

func (s *Submitter) endAdding(err error) {
	s.setStatus(func(st *domain.OrderStatus) {
		st.Adding = false
		if err != nil {
			st.AddError = err.Error()
		}
	})
}

func (s *Submitter) setStatus(update func(*domain.OrderStatus)) {
	s.mu.Lock()
	update(&s.status)
	current := s.status
	s.mu.Unlock()

	s.publisher.Publish(events.TopicOrdersStatus, current)
}

func (s *Submitter) announce(ctx context.Context, ownerID string, orders []*domain.Order) {
	if s.placed == nil {
		return
	}
	if err := s.placed.PublishOrdersPlaced(ctx, ownerID, orders); err != nil {
		log.Printf("orders placed publish error: %v", err)
	}
}

// prepare validates req and stamps it with a fresh id and the owner.
func prepare(req domain.OrderRequest, ownerID, prefix string) (*domain.Order, *domain.ValidationError) {
	var verr *domain.ValidationError
	if req.Customer == nil {
		verr = verr.Merge(domain.NewValidationError(prefix+"customerDetails", "required"))
	} else {
		verr = verr.Merge(domain.Validate(req.Customer.Trimmed(), prefix+"customerDetails."))
	}
	if req.Line.ID == "" {
		verr = verr.Merge(domain.NewValidationError(prefix+"id", "required"))
	}
	if req.Line.Quantity < domain.MinLineQuantity || req.Line.Quantity > domain.MaxLineQuantity {
		verr = verr.Merge(domain.NewValidationError(prefix+"quantity", "range"))
	}
	if verr != nil {
		return nil, verr
	}

	return &domain.Order{
		ID:              uuid.NewString(),
		CartLine:        req.Line,
		CustomerDetails: req.Customer.Trimmed(),
		OwnerID:         ownerID,
	}, nil
}

func collect(errs []error) []error {
	out := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			out = append(out, err)
		}
	}
	return out
}
