package identity

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

// MockProvider implements Provider for testing
type MockProvider struct {
	mu         sync.Mutex
	User       domain.User
	Err        error
	SignOutErr error
	Calls      int
}

func (m *MockProvider) SignIn(_ context.Context, _ Credentials) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	return m.User, m.Err
}

func (m *MockProvider) SignUp(ctx context.Context, creds Credentials) (domain.User, error) {
	return m.SignIn(ctx, creds)
}

func (m *MockProvider) SignOut(_ context.Context, _ domain.User) error {
	return m.SignOutErr
}

func signedToken(t *testing.T, subject string, expiresAt time.Time) string {
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}
