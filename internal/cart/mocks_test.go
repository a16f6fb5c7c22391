package cart

import (
	"context"
	"errors"
	"sync"

	"github.com/fjod/go_cart/storefront/internal/events"
	"github.com/fjod/go_cart/storefront/internal/repository"
)

// MockSnapshots implements repository.SnapshotStore in memory
type MockSnapshots struct {
	mu        sync.Mutex
	data      map[string][]byte
	SaveErr   error
	DeleteErr error
	Saves     int
}

func NewMockSnapshots() *MockSnapshots {
	return &MockSnapshots{data: make(map[string][]byte)}
}

func (m *MockSnapshots) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, repository.ErrSnapshotNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *MockSnapshots) Save(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Saves++
	m.data[key] = append([]byte(nil), data...)
	return nil
}

func (m *MockSnapshots) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	delete(m.data, key)
	return nil
}

func (m *MockSnapshots) Raw(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok
}

var errDiskFull = errors.New("disk full")

// MockGate implements AuthGate
type MockGate struct {
	mu            sync.Mutex
	authenticated bool
}

func (g *MockGate) IsAuthenticated() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.authenticated
}

func (g *MockGate) Set(v bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.authenticated = v
}

// RecordingPublisher keeps every published event
type RecordingPublisher struct {
	mu     sync.Mutex
	Topics []events.Topic
	Last   any
}

func (p *RecordingPublisher) Publish(topic events.Topic, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Topics = append(p.Topics, topic)
	p.Last = payload
}

func (p *RecordingPublisher) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Topics)
}
