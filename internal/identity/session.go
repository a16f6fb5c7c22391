package identity

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/events"
)

// Session is the identity gate. It owns the AuthState that cart and order
// components read.
type Session struct {
	mu        sync.RWMutex
	provider  Provider
	broker    events.Broker
	user      *domain.User
	expiresAt time.Time
	now       func() time.Time
}

func NewSession(provider Provider, broker events.Broker) *Session {
	return &Session{
		provider: provider,
		broker:   broker,
		now:      time.Now,
	}
}

func (s *Session) SignIn(ctx context.Context, creds Credentials) (domain.AuthState, error) {
	return s.authenticate(ctx, creds, s.provider.SignIn)
}

// SignUp registers the account and signs it in.
func (s *Session) SignUp(ctx context.Context, creds Credentials) (domain.AuthState, error) {
	return s.authenticate(ctx, creds, s.provider.SignUp)
}

func (s *Session) SignOut(ctx context.Context) error {
	s.mu.Lock()
	user := s.user
	s.user = nil
	s.expiresAt = time.Time{}
	s.mu.Unlock()

	if user == nil {
		return nil
	}
	s.broker.Publish(events.TopicAuthChanged, domain.AuthState{})

	if err := s.provider.SignOut(ctx, *user); err != nil {
		log.Printf("identity sign out error: %v", err)
		return err
	}
	return nil
}

func (s *Session) State() domain.AuthState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stateLocked()
}

func (s *Session) IsAuthenticated() bool {
	return s.State().IsAuthenticated
}

func (s *Session) CurrentUser() (domain.User, bool) {
	state := s.State()
	if !state.IsAuthenticated {
		return domain.User{}, false
	}
	return *state.User, true
}

// OnAuthStateChanged calls fn with the current state and then on every
// change, in order. Every call, the first included, runs on the bus
// dispatcher. The returned func stops the notifications.
func (s *Session) OnAuthStateChanged(fn func(domain.AuthState)) func() {
	current := func() any { return s.State().Public() }
	return s.broker.SubscribeWithCurrent(events.TopicAuthChanged, current, func(ev events.Event) {
		if ev.Topic != events.TopicAuthChanged {
			return
		}
		if state, ok := ev.Payload.(domain.AuthState); ok {
			fn(state)
		}
	})
}

func (s *Session) authenticate(ctx context.Context, creds Credentials, call func(context.Context, Credentials) (domain.User, error)) (domain.AuthState, error) {
	creds.Email = strings.TrimSpace(creds.Email)
	if verr := domain.Validate(creds, ""); verr != nil {
		return domain.AuthState{}, verr
	}

	user, err := call(ctx, creds)
	if err != nil {
		return domain.AuthState{}, err
	}

	var expiresAt time.Time
	if claims, err := ParseToken(user.Token); err != nil {
		log.Printf("identity token claims unavailable: %v", err)
	} else {
		expiresAt = claims.ExpiresAt
	}

	s.mu.Lock()
	s.user = &user
	s.expiresAt = expiresAt
	state := s.stateLocked()
	s.mu.Unlock()

	s.broker.Publish(events.TopicAuthChanged, state.Public())
	return state, nil
}

func (s *Session) stateLocked() domain.AuthState {
	if s.user == nil {
		return domain.AuthState{}
	}
	if !s.expiresAt.IsZero() && !s.now().Before(s.expiresAt) {
		return domain.AuthState{}
	}
	u := *s.user
	return domain.AuthState{IsAuthenticated: true, User: &u}
}
